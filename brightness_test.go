package glyphmatrix_test

import (
	"image/color"
	"math"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/ginkgo/extensions/table"
	. "github.com/onsi/gomega"

	"github.com/kevin-cantwell/glyphmatrix"
)

var _ = Describe("Sampler", func() {
	var linear *glyphmatrix.Sampler

	BeforeEach(func() {
		linear = glyphmatrix.NewSampler(glyphmatrix.WithContrastWindow(0, 1))
	})

	It("reads unloaded stores as 0", func() {
		Expect(glyphmatrix.NewSampler().BrightnessAt(glyphmatrix.NewFrameStore(), 0.5, 0.5)).To(BeZero())
		Expect(glyphmatrix.NewSampler().BrightnessAt(nil, 0.5, 0.5)).To(BeZero())
	})

	It("reads 0 when the cursor is out of range", func() {
		store := solidStore(1, 1, gray(200))
		store.CurrentFrame = 3
		Expect(linear.BrightnessAt(store, 0, 0)).To(BeZero())
	})

	It("weights channels as BT.709", func() {
		store := solidStore(3, 3, color.NRGBA{R: 255, A: 255})
		Expect(linear.BrightnessAt(store, 0.5, 0.5)).To(BeNumerically("~", 0.2126, 1e-9))
		store = solidStore(3, 3, color.NRGBA{G: 255, A: 255})
		Expect(linear.BrightnessAt(store, 0.5, 0.5)).To(BeNumerically("~", 0.7152, 1e-9))
		store = solidStore(3, 3, color.NRGBA{B: 255, A: 255})
		Expect(linear.BrightnessAt(store, 0.5, 0.5)).To(BeNumerically("~", 0.0722, 1e-9))
	})

	It("ignores alpha", func() {
		store := solidStore(1, 1, color.NRGBA{R: 255, G: 255, B: 255, A: 0})
		Expect(linear.BrightnessAt(store, 0, 0)).To(BeNumerically("~", 1, 1e-9))
	})

	It("stretches the default window onto [0,1]", func() {
		sampler := glyphmatrix.NewSampler()
		Expect(sampler.BrightnessAt(solidStore(1, 1, gray(10)), 0, 0)).To(BeZero())
		Expect(sampler.BrightnessAt(solidStore(1, 1, gray(250)), 0, 0)).To(Equal(1.0))
		mid := solidStore(1, 1, color.NRGBA{R: 51, G: 51, B: 51, A: 255})
		Expect(sampler.BrightnessAt(mid, 0, 0)).To(BeNumerically("~", (0.2-0.1)/0.8, 1e-9))
	})

	It("keeps windows that are not increasing at the default", func() {
		black, white := glyphmatrix.NewSampler(glyphmatrix.WithContrastWindow(0.8, 0.2)).ContrastWindow()
		Expect(black).To(Equal(0.1))
		Expect(white).To(Equal(0.9))
	})

	It("samples the current frame", func() {
		store := solidStore(1, 1, gray(0), color.NRGBA{R: 255, G: 255, B: 255, A: 255})
		Expect(linear.BrightnessAt(store, 0, 0)).To(BeZero())
		store.CurrentFrame = 1
		Expect(linear.BrightnessAt(store, 0, 0)).To(BeNumerically("~", 1, 1e-9))
	})

	DescribeTable("clamps coordinates into the frame",
		func(nx, ny float64, want float64) {
			// Left pixel black, right pixel white.
			frame := glyphmatrix.FrameBuffer{0, 0, 0, 255, 255, 255, 255, 255}
			store, err := glyphmatrix.NewLoadedFrameStore(2, 1, []glyphmatrix.FrameBuffer{frame}, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(linear.BrightnessAt(store, nx, ny)).To(BeNumerically("~", want, 1e-9))
		},
		Entry("left half", 0.49, 0.0, 0.0),
		Entry("right half", 0.5, 0.0, 1.0),
		Entry("exactly 1", 1.0, 1.0, 1.0),
		Entry("past the right edge", 7.0, 3.0, 1.0),
		Entry("negative", -2.0, -2.0, 0.0),
		Entry("NaN", math.NaN(), math.NaN(), 0.0),
		Entry("+Inf", math.Inf(1), 0.5, 1.0),
	)

	It("always returns values in [0,1]", func() {
		store := solidStore(4, 4, gray(0), gray(60), gray(128), gray(254))
		sampler := glyphmatrix.NewSampler()
		for f := 0; f < store.FrameCount(); f++ {
			store.CurrentFrame = f
			for _, n := range []float64{-1, 0, 0.25, 0.5, 0.999, 1, 2} {
				v := sampler.BrightnessAt(store, n, 1-n)
				Expect(v).To(BeNumerically(">=", 0))
				Expect(v).To(BeNumerically("<=", 1))
			}
		}
	})
})

var _ = Describe("EnhanceContrast", func() {
	It("maps the window edges to 0 and 1", func() {
		Expect(glyphmatrix.EnhanceContrast(0.1, 0.1, 0.9)).To(BeZero())
		Expect(glyphmatrix.EnhanceContrast(0.9, 0.1, 0.9)).To(BeNumerically("~", 1, 1e-12))
		Expect(glyphmatrix.EnhanceContrast(0, 0.1, 0.9)).To(BeZero())
		Expect(glyphmatrix.EnhanceContrast(1, 0.1, 0.9)).To(BeNumerically("~", 1, 1e-12))
	})

	It("is monotonic", func() {
		prev := -1.0
		for v := 0.0; v <= 1.0; v += 0.01 {
			got := glyphmatrix.EnhanceContrast(v, 0.1, 0.9)
			Expect(got).To(BeNumerically(">=", prev))
			prev = got
		}
	})
})
