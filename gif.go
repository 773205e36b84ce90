package glyphmatrix

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/gif"
	"io"
	"time"
)

var (
	ErrNoFrames    = errors.New("glyphmatrix: no frames")
	ErrTooLarge    = errors.New("glyphmatrix: source too large")
	ErrEmptySource = errors.New("glyphmatrix: empty source")
)

// Decoder turns an encoded image into a loaded FrameStore.
type Decoder interface {
	Decode(r io.Reader) (*FrameStore, error)
}

/*
GIFDecoder decodes animated GIFs. Every frame is composited onto a canvas the
size of the GIF's logical screen, so each FrameBuffer stands on its own.
Disposal methods are respected: DisposalBackground clears the frame's
rectangle to transparent, DisposalPrevious restores the canvas as it was
before the frame was drawn.

Frame delays declared by the GIF are kept on the store. Playback only follows
them when PerFrameTiming is set; otherwise every frame lasts DefaultFrameDelay.

GIFs whose frames would take more than MaxDecodedBytes (DefaultMaxDecodedBytes
when zero) once composited fail with ErrTooLarge. The logical screen is
checked before any frame is decoded.
*/
type GIFDecoder struct {
	Filter          Filter
	PerFrameTiming  bool
	MaxDecodedBytes int64
}

func (d GIFDecoder) Decode(r io.Reader) (*FrameStore, error) {
	limit := decodedLimit(d.MaxDecodedBytes)
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	cfg, err := gif.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("gif: %w", err)
	}
	if err := checkDecodedSize(cfg.Width, cfg.Height, 1, limit); err != nil {
		return nil, err
	}

	giff, err := gif.DecodeAll(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("gif: %w", err)
	}
	if len(giff.Image) == 0 {
		return nil, ErrNoFrames
	}

	bounds := image.Rect(0, 0, giff.Config.Width, giff.Config.Height)
	if bounds.Empty() {
		bounds = giff.Image[0].Bounds()
	}
	if err := checkDecodedSize(bounds.Dx(), bounds.Dy(), len(giff.Image), limit); err != nil {
		return nil, err
	}
	canvas := image.NewRGBA(bounds)
	var previous *image.RGBA

	frames := newFrameCollector(d.Filter, limit)
	for i, frame := range giff.Image {
		var disposal byte
		if i < len(giff.Disposal) {
			disposal = giff.Disposal[i]
		}
		if disposal == gif.DisposalPrevious {
			if previous == nil {
				previous = image.NewRGBA(canvas.Bounds())
			}
			copy(previous.Pix, canvas.Pix)
		}

		draw.Draw(canvas, frame.Bounds(), frame, frame.Bounds().Min, draw.Over)
		if err := frames.add(canvas, gifDelay(giff, i)); err != nil {
			return nil, err
		}

		switch disposal {
		case gif.DisposalBackground:
			draw.Draw(canvas, frame.Bounds(), image.Transparent, image.Point{}, draw.Src)
		case gif.DisposalPrevious:
			copy(canvas.Pix, previous.Pix)
		}
	}
	return frames.store(d.PerFrameTiming)
}

// gifDelay converts the i'th delay from 100ths of a second. Frames that
// declare no delay get DefaultFrameDelay.
func gifDelay(giff *gif.GIF, i int) time.Duration {
	if i >= len(giff.Delay) || giff.Delay[i] <= 0 {
		return DefaultFrameDelay
	}
	return time.Duration(giff.Delay[i]) * time.Second / 100
}
