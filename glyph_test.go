package glyphmatrix_test

import (
	"math"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/ginkgo/extensions/table"
	. "github.com/onsi/gomega"

	"github.com/kevin-cantwell/glyphmatrix"
)

var _ = Describe("SelectGlyph", func() {
	ramp := glyphmatrix.GlyphRamp(" .:+*#")

	DescribeTable("maps luminance through a square-root curve",
		func(lum float64, want rune) {
			Expect(glyphmatrix.SelectGlyph(lum, ramp)).To(Equal(want))
		},
		Entry("black", 0.0, ' '),
		Entry("0.04", 0.04, '.'),
		Entry("0.25", 0.25, '+'),
		Entry("0.5", 0.5, '*'),
		Entry("0.81", 0.81, '#'),
		Entry("white", 1.0, '#'),
		Entry("above 1", 1.7, '#'),
		Entry("negative", -0.3, ' '),
		Entry("NaN", math.NaN(), ' '),
	)

	It("returns a blank for an empty ramp", func() {
		Expect(glyphmatrix.SelectGlyph(0.7, nil)).To(Equal(glyphmatrix.Blank))
		Expect(glyphmatrix.SelectGlyph(0.7, glyphmatrix.GlyphRamp{})).To(Equal(glyphmatrix.Blank))
	})

	It("only ever returns glyphs from the ramp", func() {
		for lum := 0.0; lum <= 1.0; lum += 0.001 {
			Expect(ramp).To(ContainElement(glyphmatrix.SelectGlyph(lum, ramp)))
		}
	})

	It("handles multi-byte glyphs", func() {
		Expect(glyphmatrix.SelectGlyph(1, glyphmatrix.DefaultRamp)).To(Equal('$'))
		Expect(glyphmatrix.SelectGlyph(0.01, glyphmatrix.DefaultRamp)).To(Equal('*'))
	})
})

var _ = Describe("Ramps", func() {
	It("starts the default ramp with a blank", func() {
		Expect(glyphmatrix.DefaultRamp[0]).To(Equal(' '))
		Expect(glyphmatrix.DefaultRamp).To(HaveLen(58))
	})

	It("builds braille cells with one more dot per step", func() {
		Expect(glyphmatrix.BrailleRamp().String()).To(Equal("⠀⡀⣀⣄⣤⣦⣶⣷⣿"))
	})

	It("resolves presets by name and anything else literally", func() {
		Expect(glyphmatrix.ResolveRamp("ascii")).To(Equal(glyphmatrix.ASCIIRamp))
		Expect(glyphmatrix.ResolveRamp("braille")).To(Equal(glyphmatrix.BrailleRamp()))
		Expect(glyphmatrix.ResolveRamp("default")).To(Equal(glyphmatrix.DefaultRamp))
		Expect(glyphmatrix.ResolveRamp(" xX")).To(Equal(glyphmatrix.GlyphRamp{' ', 'x', 'X'}))
		Expect(glyphmatrix.RampPresets()).To(Equal([]string{"ascii", "braille", "default"}))
	})

	It("treats spaces and NUL as blank", func() {
		Expect(glyphmatrix.IsBlank(' ')).To(BeTrue())
		Expect(glyphmatrix.IsBlank(0)).To(BeTrue())
		Expect(glyphmatrix.IsBlank('⠀')).To(BeFalse())
		Expect(glyphmatrix.IsBlank('#')).To(BeFalse())
	})
})

var _ = Describe("Braille", func() {
	It("encodes dots in unicode order", func() {
		Expect(glyphmatrix.Braille{}.Rune()).To(Equal('⠀'))
		Expect(glyphmatrix.Braille{{1, 0, 0, 0}, {0, 0, 0, 0}}.String()).To(Equal("⠁"))
		Expect(glyphmatrix.Braille{{1, 1, 1, 1}, {1, 1, 1, 1}}.Rune()).To(Equal('⣿'))
	})
})
