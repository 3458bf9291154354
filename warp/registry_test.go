package warp

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/timewarp/sim/timing"
)

var _ = Describe("TimerRegistry", func() {
	var r *TimerRegistry

	BeforeEach(func() {
		r = NewTimerRegistry()
		r.Insert(&VirtualTimer{ID: "once-1", Kind: KindOnce})
		r.Insert(&VirtualTimer{ID: "repeat-1", Kind: KindRepeating})
		r.Insert(&VirtualTimer{ID: "once-2", Kind: KindOnce})
	})

	ids := func() []timing.TimerID {
		out := []timing.TimerID{}
		r.Each(func(t *VirtualTimer) { out = append(out, t.ID) })

		return out
	}

	It("should keep insertion order", func() {
		Expect(ids()).To(Equal([]timing.TimerID{"once-1", "repeat-1", "once-2"}))
	})

	It("should panic on duplicated IDs", func() {
		Expect(func() {
			r.Insert(&VirtualTimer{ID: "once-1"})
		}).To(Panic())
	})

	It("should look up by kind", func() {
		_, found := r.Lookup("repeat-1", KindOnce)
		Expect(found).To(BeFalse())

		t, found := r.Lookup("repeat-1", KindRepeating)
		Expect(found).To(BeTrue())
		Expect(t.Kind).To(Equal(KindRepeating))
	})

	It("should remove", func() {
		Expect(r.Remove("repeat-1")).To(BeTrue())
		Expect(r.Remove("repeat-1")).To(BeFalse())
		Expect(r.Len()).To(Equal(2))
		Expect(ids()).To(Equal([]timing.TimerID{"once-1", "once-2"}))
	})

	It("should allow removal while iterating", func() {
		r.Each(func(t *VirtualTimer) { r.Remove(t.ID) })

		Expect(r.Len()).To(Equal(0))
	})

	It("should clear", func() {
		timers := r.Clear()

		Expect(timers).To(HaveLen(3))
		Expect(timers[2].ID).To(Equal(timing.TimerID("once-2")))
		Expect(r.Len()).To(Equal(0))

		_, found := r.Get("once-1")
		Expect(found).To(BeFalse())
	})
})
