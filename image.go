package glyphmatrix

import (
	"fmt"
	"image"
	"time"

	"github.com/disintegration/imaging"
	"github.com/nfnt/resize"
)

// Filter alters a composited frame before it is buffered for sampling.
// Filters must return images of identical size for identical input sizes.
type Filter interface {
	Filter(image.Image) image.Image
}

// FilterFunc adapts a plain function to Filter.
type FilterFunc func(image.Image) image.Image

func (f FilterFunc) Filter(img image.Image) image.Image {
	return f(img)
}

/*
Adjustments is the stock Filter. Zero values leave the frame alone, except
Gamma and SigmoidMidpoint whose neutral values are 1 and 0.5.

	MaxDimension     shrink frames to fit in a MaxDimension square, keeping aspect
	Gamma            < 1 darkens, > 1 lightens
	Brightness       percentage in [-100, 100]
	Contrast         percentage in [-100, 100]
	Sharpen          sigma of the sharpening blur, 0 disables
	SigmoidMidpoint  midpoint of the sigmoid contrast curve, in [0, 1]
	SigmoidFactor    > 0 increases contrast, < 0 decreases it
	Invert           negates the frame
*/
type Adjustments struct {
	MaxDimension    int
	Gamma           float64
	Brightness      float64
	Contrast        float64
	Sharpen         float64
	SigmoidMidpoint float64
	SigmoidFactor   float64
	Invert          bool
}

func (a Adjustments) Filter(img image.Image) image.Image {
	if a.MaxDimension > 0 {
		img = resize.Thumbnail(uint(a.MaxDimension), uint(a.MaxDimension), img, resize.Bilinear)
	}
	if a.Gamma > 0 && a.Gamma != 1 {
		img = imaging.AdjustGamma(img, a.Gamma)
	}
	if a.Brightness != 0 {
		img = imaging.AdjustBrightness(img, a.Brightness)
	}
	if a.Sharpen > 0 {
		img = imaging.Sharpen(img, a.Sharpen)
	}
	if a.Contrast != 0 {
		img = imaging.AdjustContrast(img, a.Contrast)
	}
	if a.SigmoidFactor != 0 {
		mid := a.SigmoidMidpoint
		if mid <= 0 || mid >= 1 {
			mid = 0.5
		}
		img = imaging.AdjustSigmoid(img, mid, a.SigmoidFactor)
	}
	if a.Invert {
		img = imaging.Invert(img)
	}
	return img
}

// DefaultMaxDecodedBytes bounds the decoded size of a source: every frame at
// 4 bytes per pixel.
const DefaultMaxDecodedBytes = 256 << 20

func decodedLimit(n int64) int64 {
	if n > 0 {
		return n
	}
	return DefaultMaxDecodedBytes
}

// checkDecodedSize fails with ErrTooLarge when frames RGBA images of w x h
// pixels would not fit in limit bytes.
func checkDecodedSize(w, h, frames int, limit int64) error {
	if w < 0 || h < 0 || frames < 1 {
		return nil
	}
	if int64(w)*int64(h) > limit/4/int64(frames) {
		return fmt.Errorf("glyphmatrix: %d frames of %dx%d: %w", frames, w, h, ErrTooLarge)
	}
	return nil
}

// frameCollector turns composited frames into FrameBuffers, running them
// through the filter and checking that every frame has the same size and
// that all of them fit in limit bytes.
type frameCollector struct {
	filter Filter
	limit  int64
	width  int
	height int
	frames []FrameBuffer
	delays []time.Duration
}

func newFrameCollector(f Filter, limit int64) *frameCollector {
	return &frameCollector{filter: f, limit: decodedLimit(limit)}
}

// add copies img, so callers may keep drawing on it afterwards.
func (c *frameCollector) add(img image.Image, delay time.Duration) error {
	if c.filter != nil {
		img = c.filter.Filter(img)
	}
	b := img.Bounds()
	if err := checkDecodedSize(b.Dx(), b.Dy(), len(c.frames)+1, c.limit); err != nil {
		return err
	}
	// Clone always copies into a zero-origin NRGBA with a tight stride, which
	// is exactly the FrameBuffer layout.
	nrgba := imaging.Clone(img)
	w, h := nrgba.Rect.Dx(), nrgba.Rect.Dy()
	if len(c.frames) == 0 {
		c.width, c.height = w, h
	} else if w != c.width || h != c.height {
		return fmt.Errorf("glyphmatrix: frame %d is %dx%d, want %dx%d", len(c.frames), w, h, c.width, c.height)
	}
	c.frames = append(c.frames, FrameBuffer(nrgba.Pix))
	c.delays = append(c.delays, delay)
	return nil
}

func (c *frameCollector) store(perFrameTiming bool) (*FrameStore, error) {
	if len(c.frames) == 0 {
		return nil, ErrNoFrames
	}
	store, err := NewLoadedFrameStore(c.width, c.height, c.frames, c.delays)
	if err != nil {
		return nil, err
	}
	store.SetPerFrameTiming(perFrameTiming)
	return store, nil
}
