// Package glyphmatrix renders animated images as grids of glyphs, one glyph
// per cell, picked by the brightness of the image under that cell.
package glyphmatrix

import (
	"fmt"
	"time"
)

// DefaultFrameDelay is used when a source does not declare its own timing.
const DefaultFrameDelay = 100 * time.Millisecond

// FrameBuffer is one fully composited frame: width*height pixels of
// non-premultiplied R, G, B, A bytes. It is never modified after decode.
type FrameBuffer []byte

/*
FrameStore holds a decoded animation and its playback cursor. A store is
either empty (still loading, or the load failed) or loaded with at least one
frame; it never goes back from loaded to empty.

CurrentFrame and LastFrameTime are mutated by Advance on every tick, so a
store must only be touched by the goroutine that runs the tick loop.
*/
type FrameStore struct {
	width      int
	height     int
	frames     []FrameBuffer
	delays     []time.Duration
	frameDelay time.Duration
	perFrame   bool

	CurrentFrame  int
	LastFrameTime time.Duration
}

// NewFrameStore returns an empty store that is not loaded.
func NewFrameStore() *FrameStore {
	return &FrameStore{frameDelay: DefaultFrameDelay}
}

/*
NewLoadedFrameStore builds a store from already composited frames. Every
frame must hold exactly width*height*4 bytes. delays may be nil; otherwise it
must have one entry per frame, and non-positive entries mean
DefaultFrameDelay.
*/
func NewLoadedFrameStore(width, height int, frames []FrameBuffer, delays []time.Duration) (*FrameStore, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("glyphmatrix: invalid frame size %dx%d", width, height)
	}
	if len(frames) == 0 {
		return nil, ErrNoFrames
	}
	for i, f := range frames {
		if len(f) != width*height*4 {
			return nil, fmt.Errorf("glyphmatrix: frame %d has %d bytes, want %d", i, len(f), width*height*4)
		}
	}
	if delays == nil {
		delays = make([]time.Duration, len(frames))
	}
	if len(delays) != len(frames) {
		return nil, fmt.Errorf("glyphmatrix: %d delays for %d frames", len(delays), len(frames))
	}
	normalized := make([]time.Duration, len(delays))
	for i, d := range delays {
		if d <= 0 {
			d = DefaultFrameDelay
		}
		normalized[i] = d
	}
	return &FrameStore{
		width:      width,
		height:     height,
		frames:     frames,
		delays:     normalized,
		frameDelay: DefaultFrameDelay,
	}, nil
}

// Loaded reports whether the store has at least one frame.
func (s *FrameStore) Loaded() bool {
	return s != nil && len(s.frames) > 0
}

func (s *FrameStore) Width() int      { return s.width }
func (s *FrameStore) Height() int     { return s.height }
func (s *FrameStore) FrameCount() int { return len(s.frames) }

// Frame returns the i'th frame. It panics if i is out of range.
func (s *FrameStore) Frame(i int) FrameBuffer {
	return s.frames[i]
}

// Delay returns the display delay the source declared for frame i.
func (s *FrameStore) Delay(i int) time.Duration {
	return s.delays[i]
}

// FrameDelay is the minimum time between two frame advances when per-frame
// timing is off.
func (s *FrameStore) FrameDelay() time.Duration {
	return s.frameDelay
}

// SetPerFrameTiming makes Advance honor each frame's own delay instead of
// the fixed FrameDelay.
func (s *FrameStore) SetPerFrameTiming(on bool) {
	s.perFrame = on
}

/*
Advance moves the playback cursor forward by at most one frame. now is a
monotonic timestamp on the same clock as LastFrameTime. Nothing happens for
stores that are not loaded or have a single frame, or when no more than the
frame delay has elapsed since the last advance. Skipped ticks are not caught
up: a late call still advances a single frame.
*/
func (s *FrameStore) Advance(now time.Duration) {
	if !s.Loaded() || len(s.frames) <= 1 {
		return
	}
	if now-s.LastFrameTime > s.currentDelay() {
		s.CurrentFrame = (s.CurrentFrame + 1) % len(s.frames)
		s.LastFrameTime = now
	}
}

func (s *FrameStore) currentDelay() time.Duration {
	if s.perFrame && s.CurrentFrame >= 0 && s.CurrentFrame < len(s.delays) {
		return s.delays[s.CurrentFrame]
	}
	return s.frameDelay
}
