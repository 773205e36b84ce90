package glyphmatrix

import "time"

// ZoomDuration is how long a zoom-out transition takes.
const ZoomDuration = 3000 * time.Millisecond

// ScaleAnimation eases the render scale from one value to another.
type ScaleAnimation struct {
	From     float64
	To       float64
	Start    time.Duration
	Duration time.Duration
}

// At returns the scale at time now and whether the animation has finished.
// Progress follows easeOutQuad, t*(2-t), so the zoom decelerates.
func (a ScaleAnimation) At(now time.Duration) (scale float64, done bool) {
	progress := 1.0
	if a.Duration > 0 {
		progress = float64(now-a.Start) / float64(a.Duration)
	}
	if progress < 0 {
		progress = 0
	}
	if progress >= 1 {
		return a.To, true
	}
	eased := progress * (2 - progress)
	return a.From - (a.From-a.To)*eased, false
}
