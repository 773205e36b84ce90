package glyphmatrix

import (
	"context"
	"errors"
	"image/color"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// DefaultFPS is the tick rate of a Session.
const DefaultFPS = 30

// Mode is one selectable clip.
type Mode struct {
	Name   string
	Source string
}

// Control changes a running Session. Controls are applied by the tick
// goroutine between ticks, so they never race with rendering.
type Control interface {
	apply(s *Session, now time.Duration)
}

type controlFunc func(s *Session, now time.Duration)

func (f controlFunc) apply(s *Session, now time.Duration) { f(s, now) }

// SetMode selects the clip to display. Out of range modes render blank.
func SetMode(mode int) Control {
	return controlFunc(func(s *Session, _ time.Duration) {
		s.params.Mode = mode
	})
}

func SetRamp(ramp GlyphRamp) Control {
	return controlFunc(func(s *Session, _ time.Duration) {
		s.params.Ramp = ramp
	})
}

// SetScale sets the zoom, clamped to [MinScale, MaxScale], and stops any
// running zoom-out.
func SetScale(scale float64) Control {
	return controlFunc(func(s *Session, _ time.Duration) {
		s.zoom = nil
		s.params.Scale = clampScale(scale)
	})
}

// AdjustScale is SetScale relative to the current zoom.
func AdjustScale(delta float64) Control {
	return controlFunc(func(s *Session, _ time.Duration) {
		s.zoom = nil
		s.params.Scale = clampScale(s.params.Scale + delta)
	})
}

// SetSpacing sets the horizontal cell size as a multiple of the glyph size.
// Non-positive values are ignored.
func SetSpacing(spacing float64) Control {
	return controlFunc(func(s *Session, _ time.Duration) {
		if spacing > 0 {
			s.params.Spacing = spacing
		}
	})
}

func SetColors(background, foreground color.Color) Control {
	return controlFunc(func(s *Session, _ time.Duration) {
		if background != nil {
			s.params.Background = background
		}
		if foreground != nil {
			s.params.Foreground = foreground
		}
	})
}

// ZoomOut animates the scale down to MinScale over ZoomDuration, replacing
// any zoom in progress. It does nothing when already at MinScale.
func ZoomOut() Control {
	return controlFunc(func(s *Session, now time.Duration) {
		if s.params.Scale <= MinScale {
			return
		}
		s.zoom = &ScaleAnimation{
			From:     s.params.Scale,
			To:       MinScale,
			Start:    now,
			Duration: ZoomDuration,
		}
	})
}

func clampScale(scale float64) float64 {
	if !(scale > MinScale) {
		return MinScale
	}
	if scale > MaxScale {
		return MaxScale
	}
	return scale
}

type SessionOpt func(s *Session)

func WithSessionLoader(l *Loader) SessionOpt {
	return func(s *Session) {
		s.loader = l
	}
}

func WithSampler(sp *Sampler) SessionOpt {
	return func(s *Session) {
		s.raster = NewRasterizer(sp)
	}
}

func WithFPS(fps int) SessionOpt {
	return func(s *Session) {
		if fps > 0 {
			s.fps = fps
		}
	}
}

func WithSessionLogger(log logrus.FieldLogger) SessionOpt {
	return func(s *Session) {
		s.log = log
	}
}

// SessionStats is a snapshot of a running session.
type SessionStats struct {
	TickStats
	Ticks  int
	Mode   int
	Scale  float64
	Loaded []bool
}

type loadResult struct {
	mode  int
	store *FrameStore
}

/*
Session plays a set of clips on one surface. Run owns every FrameStore and
the render parameters: loads finish in background goroutines and hand their
stores to the tick loop over a channel, and Controls arrive the same way.
*/
type Session struct {
	modes  []Mode
	loader *Loader
	raster *Rasterizer
	fps    int
	log    logrus.FieldLogger

	// Owned by the goroutine running Run.
	params RenderParams
	stores []*FrameStore
	zoom   *ScaleAnimation

	controls chan Control

	mu    sync.Mutex
	stats SessionStats
}

func NewSession(modes []Mode, params RenderParams, opts ...SessionOpt) *Session {
	s := Session{
		modes:    modes,
		raster:   NewRasterizer(nil),
		fps:      DefaultFPS,
		log:      logrus.StandardLogger(),
		params:   params,
		controls: make(chan Control, 16),
	}
	for _, opt := range opts {
		opt(&s)
	}
	if s.loader == nil {
		s.loader = NewLoader(WithLogger(s.log))
	}
	return &s
}

// Controls accepts changes while Run is playing.
func (s *Session) Controls() chan<- Control {
	return s.controls
}

// Send queues c for Run. It gives up with ctx's error once ctx is done, so
// senders never block on a session that has stopped.
func (s *Session) Send(ctx context.Context, c Control) error {
	select {
	case s.controls <- c:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Session) Stats() SessionStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	stats := s.stats
	stats.Loaded = append([]bool(nil), s.stats.Loaded...)
	return stats
}

/*
Run loads every mode's source in the background and renders to surface at
the session's frame rate until ctx is done. Cancelling ctx stops ticking at
once and cancels loads still in flight; Run waits for them to unwind before
returning. A surface flush error stops Run and is returned.
*/
func (s *Session) Run(ctx context.Context, surface Surface) error {
	ctx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup
	defer func() {
		cancel()
		wg.Wait()
	}()

	s.stores = make([]*FrameStore, len(s.modes))
	for i := range s.stores {
		s.stores[i] = NewFrameStore()
	}

	loaded := make(chan loadResult)
	for i, m := range s.modes {
		wg.Add(1)
		go func(i int, m Mode) {
			defer wg.Done()
			store := s.loader.Load(ctx, m.Source)
			select {
			case loaded <- loadResult{mode: i, store: store}:
			case <-ctx.Done():
			}
		}(i, m)
	}

	ticker := time.NewTicker(time.Second / time.Duration(s.fps))
	defer ticker.Stop()

	start := time.Now()
	for {
		select {
		case <-ctx.Done():
			return teardownErr(ctx)
		case r := <-loaded:
			s.stores[r.mode] = r.store
			s.log.WithFields(logrus.Fields{
				"mode":   s.modes[r.mode].Name,
				"loaded": r.store.Loaded(),
				"frames": r.store.FrameCount(),
			}).Debug("mode ready")
		case c := <-s.controls:
			c.apply(s, time.Since(start))
		case <-ticker.C:
			if ctx.Err() != nil {
				return teardownErr(ctx)
			}
			if err := s.tick(surface, time.Since(start)); err != nil {
				return err
			}
		}
	}
}

func teardownErr(ctx context.Context) error {
	if err := ctx.Err(); !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func (s *Session) tick(surface Surface, now time.Duration) error {
	if s.zoom != nil {
		var done bool
		s.params.Scale, done = s.zoom.At(now)
		if done {
			s.zoom = nil
		}
	}

	stats := s.raster.Tick(surface, s.params, s.stores, now)
	if f, ok := surface.(Flusher); ok {
		if err := f.Flush(); err != nil {
			return err
		}
	}

	loaded := make([]bool, len(s.stores))
	for i, store := range s.stores {
		loaded[i] = store.Loaded()
	}
	s.mu.Lock()
	s.stats = SessionStats{
		TickStats: stats,
		Ticks:     s.stats.Ticks + 1,
		Mode:      s.params.Mode,
		Scale:     s.params.Scale,
		Loaded:    loaded,
	}
	s.mu.Unlock()
	return nil
}
