package glyphmatrix_test

import (
	"time"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/kevin-cantwell/glyphmatrix"
)

var _ = Describe("FrameStore", func() {
	Context("when empty", func() {
		It("is not loaded and ignores Advance", func() {
			store := glyphmatrix.NewFrameStore()
			Expect(store.Loaded()).To(BeFalse())
			store.Advance(time.Hour)
			Expect(store.CurrentFrame).To(Equal(0))
			Expect(store.LastFrameTime).To(BeZero())
			Expect(store.FrameDelay()).To(Equal(glyphmatrix.DefaultFrameDelay))
		})

		It("treats a nil store as not loaded", func() {
			var store *glyphmatrix.FrameStore
			Expect(store.Loaded()).To(BeFalse())
		})
	})

	Describe("NewLoadedFrameStore", func() {
		It("rejects frames of the wrong size", func() {
			_, err := glyphmatrix.NewLoadedFrameStore(2, 2, []glyphmatrix.FrameBuffer{make(glyphmatrix.FrameBuffer, 15)}, nil)
			Expect(err).To(HaveOccurred())
		})

		It("rejects zero frames", func() {
			_, err := glyphmatrix.NewLoadedFrameStore(2, 2, nil, nil)
			Expect(err).To(MatchError(glyphmatrix.ErrNoFrames))
		})

		It("rejects a delay count that does not match", func() {
			frames := []glyphmatrix.FrameBuffer{make(glyphmatrix.FrameBuffer, 4)}
			_, err := glyphmatrix.NewLoadedFrameStore(1, 1, frames, []time.Duration{ms(10), ms(20)})
			Expect(err).To(HaveOccurred())
		})

		It("replaces non-positive delays with the default", func() {
			frames := []glyphmatrix.FrameBuffer{make(glyphmatrix.FrameBuffer, 4), make(glyphmatrix.FrameBuffer, 4)}
			store, err := glyphmatrix.NewLoadedFrameStore(1, 1, frames, []time.Duration{0, ms(40)})
			Expect(err).NotTo(HaveOccurred())
			Expect(store.Delay(0)).To(Equal(glyphmatrix.DefaultFrameDelay))
			Expect(store.Delay(1)).To(Equal(ms(40)))
		})
	})

	Describe("Advance", func() {
		var store *glyphmatrix.FrameStore

		BeforeEach(func() {
			store = solidStore(1, 1, gray(0), gray(100), gray(200))
		})

		It("waits strictly longer than the frame delay", func() {
			store.Advance(ms(100))
			Expect(store.CurrentFrame).To(Equal(0))
			Expect(store.LastFrameTime).To(BeZero())

			store.Advance(ms(101))
			Expect(store.CurrentFrame).To(Equal(1))
			Expect(store.LastFrameTime).To(Equal(ms(101)))
		})

		It("advances a single frame however late the call is", func() {
			store.Advance(10 * time.Second)
			Expect(store.CurrentFrame).To(Equal(1))
			Expect(store.LastFrameTime).To(Equal(10 * time.Second))
		})

		It("wraps around to the first frame", func() {
			for i, now := range []int{101, 202, 303} {
				store.Advance(ms(now))
				Expect(store.CurrentFrame).To(Equal((i + 1) % 3))
			}
		})

		It("keeps the cursor in range for any sequence of calls", func() {
			for now := 0; now < 5000; now += 37 {
				store.Advance(ms(now))
				Expect(store.CurrentFrame).To(BeNumerically(">=", 0))
				Expect(store.CurrentFrame).To(BeNumerically("<", store.FrameCount()))
			}
		})

		It("never advances a single-frame store", func() {
			single := solidStore(1, 1, gray(10))
			single.Advance(time.Minute)
			Expect(single.CurrentFrame).To(Equal(0))
			Expect(single.LastFrameTime).To(BeZero())
		})

		It("follows each frame's delay with per-frame timing", func() {
			frames := []glyphmatrix.FrameBuffer{make(glyphmatrix.FrameBuffer, 4), make(glyphmatrix.FrameBuffer, 4)}
			timed, err := glyphmatrix.NewLoadedFrameStore(1, 1, frames, []time.Duration{ms(50), ms(200)})
			Expect(err).NotTo(HaveOccurred())
			timed.SetPerFrameTiming(true)

			timed.Advance(ms(60))
			Expect(timed.CurrentFrame).To(Equal(1))
			timed.Advance(ms(200))
			Expect(timed.CurrentFrame).To(Equal(1))
			timed.Advance(ms(261))
			Expect(timed.CurrentFrame).To(Equal(0))
		})
	})
})
