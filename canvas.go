package glyphmatrix

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/golang/freetype/truetype"
	"github.com/llgcode/draw2d/draw2dimg"
	"github.com/llgcode/draw2d/draw2dkit"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/math/fixed"
)

/*
ImageSurface renders into an in-memory RGBA image, the way a browser canvas
would: rectangles are filled with draw2d and glyphs are rasterized from Go
Mono. Ratio is the number of image pixels per logical pixel; zero means 1.
*/
type ImageSurface struct {
	Ratio float64

	img  *image.RGBA
	gc   *draw2dimg.GraphicContext
	fill color.Color

	font    *truetype.Font
	size    float64
	face    font.Face
	aliased bool
}

func NewImageSurface(width, height int) (*ImageSurface, error) {
	ttf, err := truetype.Parse(gomono.TTF)
	if err != nil {
		return nil, err
	}
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	return &ImageSurface{
		img:  img,
		gc:   draw2dimg.NewGraphicContext(img),
		fill: color.Black,
		font: ttf,
		size: minGlyphSize,
	}, nil
}

// Image is the backing store. It is drawn on by every tick.
func (s *ImageSurface) Image() *image.RGBA {
	return s.img
}

func (s *ImageSurface) Size() (int, int) {
	b := s.img.Bounds()
	return b.Dx(), b.Dy()
}

func (s *ImageSurface) PixelRatio() float64 {
	if s.Ratio > 0 {
		return s.Ratio
	}
	return 1
}

func (s *ImageSurface) SetFillColor(c color.Color) {
	s.fill = c
	s.gc.SetFillColor(c)
}

func (s *ImageSurface) FillRect(x, y, w, h float64) {
	s.gc.BeginPath()
	draw2dkit.Rectangle(s.gc, x, y, x+w, y+h)
	s.gc.Fill()
}

func (s *ImageSurface) SetFontSize(px float64) {
	if px <= 0 || px == s.size {
		return
	}
	s.size = px
	s.closeFace()
}

// DisableSmoothing switches glyphs to full hinting and whole-pixel positions,
// with alpha rounded to hard edges.
func (s *ImageSurface) DisableSmoothing() {
	if s.aliased {
		return
	}
	s.aliased = true
	s.closeFace()
}

func (s *ImageSurface) closeFace() {
	if s.face != nil {
		s.face.Close()
		s.face = nil
	}
}

func (s *ImageSurface) currentFace() font.Face {
	if s.face == nil {
		hinting := font.HintingNone
		if s.aliased {
			hinting = font.HintingFull
		}
		s.face = truetype.NewFace(s.font, &truetype.Options{
			Size:    s.size,
			DPI:     72,
			Hinting: hinting,
		})
	}
	return s.face
}

// DrawGlyph draws g with its top edge at g.Y.
func (s *ImageSurface) DrawGlyph(g Glyph) {
	face := s.currentFace()
	x, y := g.X, g.Y
	if s.aliased {
		x, y = math.Round(x), math.Round(y)
	}
	dot := fixed.Point26_6{
		X: fixed.Int26_6(x * 64),
		Y: fixed.Int26_6(y*64) + face.Metrics().Ascent,
	}
	dr, mask, maskp, _, ok := face.Glyph(dot, g.Rune)
	if !ok {
		return
	}
	if s.aliased {
		mask = hardEdges{mask}
	}
	draw.DrawMask(s.img, dr, image.NewUniform(s.fill), image.Point{}, mask, maskp, draw.Over)
}

// hardEdges rounds a glyph mask to fully opaque or fully transparent.
type hardEdges struct {
	image.Image
}

func (m hardEdges) ColorModel() color.Model {
	return color.AlphaModel
}

func (m hardEdges) At(x, y int) color.Color {
	_, _, _, a := m.Image.At(x, y).RGBA()
	if a >= 0x8000 {
		return color.Opaque
	}
	return color.Transparent
}
