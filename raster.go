package glyphmatrix

import (
	"image/color"
	"math"
	"time"
)

const (
	// MinScale and MaxScale bound the zoom a caller should offer.
	MinScale = 0.5
	MaxScale = 3.0

	minGlyphSize   = 6
	defaultSpacing = 0.8
	// Glyph cells are this many times taller than the font size.
	glyphAspect    = 1.2
)

// Glyph is one draw instruction. X and Y are the top-left corner of the
// cell in surface pixels; Col and Row locate the same cell in the grid.
type Glyph struct {
	Rune rune
	X, Y float64
	Col  int
	Row  int
}

/*
Surface is what the rasterizer draws on. Size reports the backing store in
physical pixels. Glyphs are drawn in the most recent fill color, with their
top edge at Y.
*/
type Surface interface {
	Size() (width, height int)
	SetFillColor(c color.Color)
	FillRect(x, y, w, h float64)
	SetFontSize(px float64)
	DisableSmoothing()
	DrawGlyph(g Glyph)
}

// Flusher is implemented by surfaces that buffer a tick's drawing.
type Flusher interface {
	Flush() error
}

// PixelRatioer is implemented by surfaces whose backing store is denser
// than their logical size, like a canvas on a high-DPI display.
type PixelRatioer interface {
	PixelRatio() float64
}

// RenderParams is the caller's configuration for one tick. The rasterizer
// never modifies it.
type RenderParams struct {
	Mode       int
	Ramp       GlyphRamp
	Background color.Color
	Foreground color.Color
	Scale      float64
	Spacing    float64
}

func DefaultRenderParams() RenderParams {
	return RenderParams{
		Mode:       0,
		Ramp:       DefaultRamp,
		Background: color.RGBA{0x00, 0x00, 0x00, 0xff},
		Foreground: color.RGBA{0x00, 0xff, 0x00, 0xff},
		Scale:      MaxScale,
		Spacing:    defaultSpacing,
	}
}

// Grid is the glyph layout of one tick, in logical pixels.
type Grid struct {
	GlyphSize  float64
	CellWidth  float64
	CellHeight float64
	Cols       int
	Rows       int
}

/*
ComputeGrid lays out glyph cells over a width x height pixel surface. The
base glyph size is a hundredth of the surface's smaller side, at least 6,
multiplied by scale. Cells are spacing glyphs wide and 1.2 glyphs tall, and
enough of them are used to cover the surface's logical size.
*/
func ComputeGrid(width, height int, pixelRatio, scale, spacing float64) Grid {
	if !(pixelRatio > 0) {
		pixelRatio = 1
	}
	base := math.Max(minGlyphSize, math.Floor(float64(min(width, height))/100))
	g := Grid{GlyphSize: base * scale}
	g.CellWidth = g.GlyphSize * spacing
	g.CellHeight = g.GlyphSize * glyphAspect
	if !(g.CellWidth > 0) || !(g.CellHeight > 0) || width <= 0 || height <= 0 {
		return Grid{GlyphSize: g.GlyphSize, CellWidth: g.CellWidth, CellHeight: g.CellHeight}
	}
	g.Cols = int(math.Ceil(float64(width) / pixelRatio / g.CellWidth))
	g.Rows = int(math.Ceil(float64(height) / pixelRatio / g.CellHeight))
	return g
}

// TickStats describes what one tick drew.
type TickStats struct {
	Grid
	Drawn int
}

// Rasterizer draws FrameStores as glyph grids.
type Rasterizer struct {
	sampler *Sampler
}

// NewRasterizer returns a rasterizer reading brightness through s. A nil
// sampler means NewSampler().
func NewRasterizer(s *Sampler) *Rasterizer {
	if s == nil {
		s = NewSampler()
	}
	return &Rasterizer{sampler: s}
}

/*
Tick renders one frame. Every store is advanced to now, whether or not it is
visible, then the surface is cleared to the background and every grid cell is
visited in row-major order. Cells whose glyph is blank are not drawn. A mode
without a loaded store, or an empty ramp, leaves the surface blank.
*/
func (r *Rasterizer) Tick(surface Surface, params RenderParams, stores []*FrameStore, now time.Duration) TickStats {
	for _, store := range stores {
		store.Advance(now)
	}

	width, height := surface.Size()
	ratio := 1.0
	if pr, ok := surface.(PixelRatioer); ok && pr.PixelRatio() > 0 {
		ratio = pr.PixelRatio()
	}
	grid := ComputeGrid(width, height, ratio, params.Scale, params.Spacing)
	stats := TickStats{Grid: grid}

	surface.SetFillColor(params.Background)
	surface.FillRect(0, 0, float64(width), float64(height))
	surface.SetFillColor(params.Foreground)
	surface.SetFontSize(grid.GlyphSize * ratio)
	surface.DisableSmoothing()

	var store *FrameStore
	if params.Mode >= 0 && params.Mode < len(stores) {
		store = stores[params.Mode]
	}
	if !store.Loaded() || len(params.Ramp) == 0 {
		return stats
	}

	pw, ph := float64(width), float64(height)
	lw, lh := pw/ratio, ph/ratio
	for gy := 0; gy < grid.Rows; gy++ {
		y := float64(gy) * grid.CellHeight
		// Positions are first mapped onto the backing store, then normalized
		// against it, as a canvas with a device pixel ratio does.
		ny := (y / lh * ph) / ph
		for gx := 0; gx < grid.Cols; gx++ {
			x := float64(gx) * grid.CellWidth
			nx := (x / lw * pw) / pw

			ch := SelectGlyph(r.sampler.BrightnessAt(store, nx, ny), params.Ramp)
			if IsBlank(ch) {
				continue
			}
			surface.DrawGlyph(Glyph{Rune: ch, X: x * ratio, Y: y * ratio, Col: gx, Row: gy})
			stats.Drawn++
		}
	}
	return stats
}
