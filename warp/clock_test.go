package warp

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/rs/zerolog"

	"github.com/sarchlab/timewarp/sim/timing"
)

var _ = Describe("Virtual clock", func() {
	var (
		start  time.Time
		loop   *timing.ManualLoop
		engine *Engine
	)

	BeforeEach(func() {
		start = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		loop = timing.NewManualLoop(start)
		engine = MakeBuilder().
			WithHost(loop).
			WithLogger(zerolog.Nop()).
			Build()
	})

	It("should follow the host at normal speed", func() {
		loop.Advance(time.Second)

		Expect(engine.Now()).To(Equal(start.Add(time.Second)))
		Expect(engine.Since(start)).To(Equal(time.Second))
	})

	It("should run faster at higher speed", func() {
		loop.Advance(time.Second)
		engine.SetSpeed(2)
		loop.Advance(time.Second)

		Expect(engine.Now()).To(Equal(start.Add(3 * time.Second)))
	})

	It("should run slower at lower speed", func() {
		engine.SetSpeed(0.5)
		loop.Advance(time.Second)

		Expect(engine.Now()).To(Equal(start.Add(500 * time.Millisecond)))
	})

	It("should stand still while paused", func() {
		loop.Advance(time.Second)
		engine.Pause()
		loop.Advance(time.Hour)

		Expect(engine.Now()).To(Equal(start.Add(time.Second)))

		engine.Resume()
		loop.Advance(time.Second)

		Expect(engine.Now()).To(Equal(start.Add(2 * time.Second)))
	})

	It("should keep the paused reading across a speed change", func() {
		engine.Pause()
		engine.SetSpeed(4)
		loop.Advance(time.Second)

		Expect(engine.Now()).To(Equal(start))

		engine.Resume()
		loop.Advance(time.Second)

		Expect(engine.Now()).To(Equal(start.Add(4 * time.Second)))
	})
})
