package glyphmatrix

import "math"

const (
	defaultBlackPoint = 0.1
	defaultWhitePoint = 0.9

	// Brightness is sampled at most this far across an image, so that a
	// normalized 1.0 never indexes one pixel past the edge.
	maxNormalized = 0.999
)

type SamplerOpt func(s *Sampler)

// WithContrastWindow sets the luminance window that is stretched to [0,1].
// Windows with black >= white are ignored.
func WithContrastWindow(black, white float64) SamplerOpt {
	return func(s *Sampler) {
		if black < white {
			s.blackPoint = black
			s.whitePoint = white
		}
	}
}

// Sampler reads perceptual brightness out of a FrameStore's current frame.
type Sampler struct {
	blackPoint float64
	whitePoint float64
}

func NewSampler(opts ...SamplerOpt) *Sampler {
	s := Sampler{
		blackPoint: defaultBlackPoint,
		whitePoint: defaultWhitePoint,
	}
	for _, opt := range opts {
		opt(&s)
	}
	return &s
}

func (s *Sampler) ContrastWindow() (black, white float64) {
	return s.blackPoint, s.whitePoint
}

/*
BrightnessAt returns the contrast-adjusted luminance in [0,1] of the current
frame at normalized coordinates (nx, ny). Coordinates are clamped to
[0, 0.999] first. Stores that are not loaded, or whose cursor is out of range,
read as 0. The store is not modified.
*/
func (s *Sampler) BrightnessAt(store *FrameStore, nx, ny float64) float64 {
	if !store.Loaded() || store.CurrentFrame < 0 || store.CurrentFrame >= len(store.frames) {
		return 0
	}
	x := int(math.Floor(clampNormalized(nx) * float64(store.width)))
	y := int(math.Floor(clampNormalized(ny) * float64(store.height)))

	pix := store.frames[store.CurrentFrame]
	i := (y*store.width + x) * 4
	return EnhanceContrast(Luminance(pix[i], pix[i+1], pix[i+2]), s.blackPoint, s.whitePoint)
}

func clampNormalized(v float64) float64 {
	// NaN fails both comparisons and would survive math.Max/Min.
	if !(v > 0) {
		return 0
	}
	if v > maxNormalized {
		return maxNormalized
	}
	return v
}

// Luminance is the ITU-R BT.709 weighted sum of r, g and b, scaled to [0,1].
// Alpha does not contribute.
func Luminance(r, g, b uint8) float64 {
	return (0.2126*float64(r) + 0.7152*float64(g) + 0.0722*float64(b)) / 255
}

// EnhanceContrast clamps v to [black, white] and stretches that window
// linearly onto [0,1].
func EnhanceContrast(v, black, white float64) float64 {
	clamped := math.Max(black, math.Min(white, v))
	return (clamped - black) / (white - black)
}
