package warp

import (
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/rs/zerolog"
	"go.uber.org/mock/gomock"

	"github.com/sarchlab/timewarp/sim/hooking"
	"github.com/sarchlab/timewarp/sim/timing"
)

var _ = Describe("Engine scheduling", func() {
	var (
		mockCtrl *gomock.Controller
		host     *MockHost
		engine   *Engine
		t0       time.Time
		noop     timing.Callback
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		host = NewMockHost(mockCtrl)
		t0 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		host.EXPECT().Now().Return(t0).AnyTimes()
		noop = func(...any) {}

		engine = MakeBuilder().
			WithHost(host).
			WithLogger(zerolog.Nop()).
			Build()
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should panic when built without a host", func() {
		Expect(func() { MakeBuilder().Build() }).To(Panic())
	})

	DescribeTable("native delay is the requested delay over the speed",
		func(speed float64, kind Kind, requested, native time.Duration) {
			engine.SetSpeed(speed)

			if kind == KindOnce {
				host.EXPECT().
					ScheduleOnce(gomock.Any(), native).
					Return(timing.TimerID("n"))
				engine.ScheduleOnce(noop, requested)
			} else {
				host.EXPECT().
					ScheduleRepeating(gomock.Any(), native).
					Return(timing.TimerID("n"))
				engine.ScheduleRepeating(noop, requested)
			}
		},
		Entry("one-shot at 1x", 1.0, KindOnce,
			time.Second, time.Second),
		Entry("one-shot at 2x", 2.0, KindOnce,
			time.Second, 500*time.Millisecond),
		Entry("one-shot at 0.5x", 0.5, KindOnce,
			time.Second, 2*time.Second),
		Entry("zero one-shot", 4.0, KindOnce,
			time.Duration(0), time.Duration(0)),
		Entry("negative one-shot", 1.0, KindOnce,
			-time.Second, time.Duration(0)),
		Entry("repeating at 2x", 2.0, KindRepeating,
			200*time.Millisecond, 100*time.Millisecond),
		Entry("zero repeating", 1.0, KindRepeating,
			time.Duration(0), time.Millisecond),
		Entry("repeating below the floor", 4.0, KindRepeating,
			2*time.Millisecond, time.Millisecond),
	)

	It("should issue namespaced, increasing IDs", func() {
		host.EXPECT().ScheduleOnce(gomock.Any(), gomock.Any()).
			Return(timing.TimerID("n1")).Times(2)
		host.EXPECT().ScheduleRepeating(gomock.Any(), gomock.Any()).
			Return(timing.TimerID("n2"))

		Expect(engine.ScheduleOnce(noop, time.Second)).
			To(Equal(timing.TimerID("once-1")))
		Expect(engine.ScheduleRepeating(noop, time.Second)).
			To(Equal(timing.TimerID("repeat-1")))
		Expect(engine.ScheduleOnce(noop, time.Second)).
			To(Equal(timing.TimerID("once-2")))
	})

	It("should forward a nil callback untouched", func() {
		host.EXPECT().
			ScheduleOnce(gomock.Nil(), 10*time.Millisecond, "x").
			Return(timing.TimerID("native-7"))

		id := engine.ScheduleOnce(nil, 10*time.Millisecond, "x")

		Expect(id).To(Equal(timing.TimerID("native-7")))
		Expect(engine.NumTimers()).To(Equal(0))
	})

	It("should forward cancellation of unknown IDs", func() {
		host.EXPECT().CancelOnce(timing.TimerID("foreign-1"))
		host.EXPECT().CancelRepeating(timing.TimerID("foreign-2"))

		Expect(func() {
			engine.CancelOnce("foreign-1")
			engine.CancelRepeating("foreign-2")
		}).NotTo(Panic())
	})

	It("should forward cancellation with the wrong kind", func() {
		host.EXPECT().ScheduleRepeating(gomock.Any(), time.Second).
			Return(timing.TimerID("n1"))
		id := engine.ScheduleRepeating(noop, time.Second)

		host.EXPECT().CancelOnce(id)
		engine.CancelOnce(id)

		Expect(engine.NumTimers()).To(Equal(1))
	})

	It("should cancel the native handle of a known timer once", func() {
		host.EXPECT().ScheduleOnce(gomock.Any(), time.Second).
			Return(timing.TimerID("n1"))
		id := engine.ScheduleOnce(noop, time.Second)

		host.EXPECT().CancelOnce(timing.TimerID("n1"))
		engine.CancelOnce(id)
		Expect(engine.NumTimers()).To(Equal(0))

		host.EXPECT().CancelOnce(id)
		engine.CancelOnce(id)
	})

	It("should not arm timers scheduled while paused", func() {
		engine.Pause()

		id := engine.ScheduleOnce(noop, time.Second)

		info, found := engine.Timer(id)
		Expect(found).To(BeTrue())
		Expect(info.Armed).To(BeFalse())
		Expect(info.Requested).To(Equal(time.Second))
	})

	It("should ignore a stale one-shot native callback", func() {
		var native timing.Callback
		fired := false

		host.EXPECT().ScheduleOnce(gomock.Any(), time.Second).
			DoAndReturn(func(
				cb timing.Callback, _ time.Duration, _ ...any,
			) timing.TimerID {
				native = cb
				return "n1"
			})
		id := engine.ScheduleOnce(func(...any) { fired = true }, time.Second)

		host.EXPECT().CancelOnce(timing.TimerID("n1"))
		engine.CancelOnce(id)

		native()

		Expect(fired).To(BeFalse())
	})

	It("should cancel a stray repeating native callback", func() {
		var native timing.Callback
		fired := false

		host.EXPECT().ScheduleRepeating(gomock.Any(), time.Second).
			DoAndReturn(func(
				cb timing.Callback, _ time.Duration, _ ...any,
			) timing.TimerID {
				native = cb
				return "n1"
			})
		id := engine.ScheduleRepeating(
			func(...any) { fired = true }, time.Second)

		host.EXPECT().CancelRepeating(timing.TimerID("n1")).Times(2)
		engine.CancelRepeating(id)

		native()

		Expect(fired).To(BeFalse())
	})

	It("should report panicking callbacks through hooks", func() {
		var native timing.Callback
		var failure *CallbackError
		positions := []string{}

		engine.AcceptHook(hooking.HookFunc(func(ctx hooking.HookCtx) {
			positions = append(positions, ctx.Pos.Name)
			if ctx.Pos == HookPosCallbackFailed {
				failure = ctx.Detail.(*CallbackError)
			}
		}))

		host.EXPECT().ScheduleOnce(gomock.Any(), time.Second).
			DoAndReturn(func(
				cb timing.Callback, _ time.Duration, _ ...any,
			) timing.TimerID {
				native = cb
				return "n1"
			})
		boom := errors.New("boom")
		id := engine.ScheduleOnce(func(...any) { panic(boom) }, time.Second)

		Expect(func() { native() }).NotTo(Panic())

		Expect(engine.NumTimers()).To(Equal(0))
		Expect(positions).To(Equal([]string{
			"TimerScheduled", "BeforeFire", "CallbackFailed", "AfterFire",
		}))
		Expect(failure.TimerID).To(Equal(id))
		Expect(errors.Is(failure, boom)).To(BeTrue())
	})
})
