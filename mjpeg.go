package glyphmatrix

import (
	"bufio"
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"time"
)

// maxJPEGSize bounds a single frame of an MJPEG stream.
const maxJPEGSize = 32 << 20

/*
MJPEGDecoder decodes a motion-JPEG stream: JPEG images concatenated back to
back, each one a frame. Streams carry no timing, so every frame lasts
1/FPS seconds (DefaultFrameDelay when FPS is not positive). Streams whose
frames add up to more than MaxDecodedBytes (DefaultMaxDecodedBytes when zero)
fail with ErrTooLarge.
*/
type MJPEGDecoder struct {
	Filter          Filter
	FPS             int
	MaxDecodedBytes int64
}

func (d MJPEGDecoder) Decode(r io.Reader) (*FrameStore, error) {
	delay := DefaultFrameDelay
	if d.FPS > 0 {
		delay = time.Second / time.Duration(d.FPS)
	}

	limit := decodedLimit(d.MaxDecodedBytes)
	frames := newFrameCollector(d.Filter, limit)
	reader := NewMJPEGReader(r)
	reader.MaxDecodedBytes = limit
	for {
		img, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("mjpeg: frame %d: %w", len(frames.frames), err)
		}
		if err := frames.add(img, delay); err != nil {
			return nil, err
		}
	}
	return frames.store(true)
}

// MJPEGReader splits a motion-JPEG stream into images at each end-of-image
// marker (0xFF 0xD9).
// Images whose decoded size would exceed MaxDecodedBytes fail with
// ErrTooLarge before they are decoded.
type MJPEGReader struct {
	MaxDecodedBytes int64

	scanner *bufio.Scanner
}

func NewMJPEGReader(r io.Reader) *MJPEGReader {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64<<10), maxJPEGSize)
	scanner.Split(scanJPEG)
	return &MJPEGReader{
		MaxDecodedBytes: DefaultMaxDecodedBytes,
		scanner:         scanner,
	}
}

// Next decodes the next image. It returns io.EOF at the end of the stream.
func (mjpeg *MJPEGReader) Next() (image.Image, error) {
	if !mjpeg.scanner.Scan() {
		if err := mjpeg.scanner.Err(); err != nil {
			return nil, err
		}
		return nil, io.EOF
	}
	data := mjpeg.scanner.Bytes()
	if i := bytes.Index(data, startOfImage); i > 0 {
		data = data[i:]
	}
	cfg, err := jpeg.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	if err := checkDecodedSize(cfg.Width, cfg.Height, 1, decodedLimit(mjpeg.MaxDecodedBytes)); err != nil {
		return nil, err
	}
	return jpeg.Decode(bytes.NewReader(data))
}

var (
	startOfImage = []byte{0xff, 0xd8}
	endOfImage   = []byte{0xff, 0xd9}
)

func scanJPEG(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if i := bytes.Index(data, endOfImage); i >= 0 {
		return i + len(endOfImage), data[:i+len(endOfImage)], nil
	}
	if atEOF {
		// Trailing bytes without an end marker are not a frame.
		if len(bytes.TrimSpace(data)) > 0 {
			return 0, nil, io.ErrUnexpectedEOF
		}
		return len(data), nil, nil
	}
	return 0, nil, nil
}
