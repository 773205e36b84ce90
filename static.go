package glyphmatrix

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// StaticDecoder decodes a single still image (png, jpeg, gif, bmp, tiff or
// webp) into a one-frame store at the image's native size. For GIFs only the
// first frame is used. Images larger than MaxDecodedBytes
// (DefaultMaxDecodedBytes when zero) fail with ErrTooLarge before decoding.
type StaticDecoder struct {
	Filter          Filter
	MaxDecodedBytes int64
}

func (d StaticDecoder) Decode(r io.Reader) (*FrameStore, error) {
	limit := decodedLimit(d.MaxDecodedBytes)
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("static image: %w", err)
	}
	if err := checkDecodedSize(cfg.Width, cfg.Height, 1, limit); err != nil {
		return nil, err
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("static image: %w", err)
	}
	if img.Bounds().Empty() {
		return nil, fmt.Errorf("static %s: %w", format, ErrNoFrames)
	}
	frames := newFrameCollector(d.Filter, limit)
	if err := frames.add(img, DefaultFrameDelay); err != nil {
		return nil, err
	}
	return frames.store(false)
}
