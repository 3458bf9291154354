package timing

import (
	"container/heap"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/sarchlab/timewarp/sim/id"
)

// nativeTimer is a timer owned by a host loop.
type nativeTimer struct {
	id        TimerID
	when      time.Time
	seq       uint64
	repeating bool
	interval  time.Duration
	cb        Callback
	args      []any
	index     int
}

// timerHeap orders timers by due time. Timers due at the same time keep the
// order in which they were queued.
type timerHeap []*nativeTimer

func (h timerHeap) Len() int {
	return len(h)
}

func (h timerHeap) Less(i, j int) bool {
	if h[i].when.Equal(h[j].when) {
		return h[i].seq < h[j].seq
	}

	return h[i].when.Before(h[j].when)
}

func (h timerHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *timerHeap) Push(x any) {
	t := x.(*nativeTimer)
	t.index = len(*h)
	*h = append(*h, t)
}

func (h *timerHeap) Pop() any {
	old := *h
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	t.index = -1
	*h = old[0 : n-1]

	return t
}

// timerSet is the bookkeeping shared by the host loops. It is not safe for
// concurrent use.
type timerSet struct {
	queue timerHeap
	byID  map[TimerID]*nativeTimer
	ids   id.Generator
	seq   uint64
}

func newTimerSet(prefix string) *timerSet {
	return &timerSet{
		byID: make(map[TimerID]*nativeTimer),
		ids:  id.NewPrefixedGenerator(prefix),
	}
}

func (s *timerSet) add(
	now time.Time,
	cb Callback,
	d time.Duration,
	repeating bool,
	args []any,
) TimerID {
	if d < 0 {
		d = 0
	}

	if repeating && d < MinInterval {
		d = MinInterval
	}

	t := &nativeTimer{
		id:        TimerID(s.ids.Generate()),
		when:      now.Add(d),
		repeating: repeating,
		interval:  d,
		cb:        cb,
		args:      args,
	}
	s.push(t)
	s.byID[t.id] = t

	return t.id
}

func (s *timerSet) push(t *nativeTimer) {
	s.seq++
	t.seq = s.seq
	heap.Push(&s.queue, t)
}

func (s *timerSet) cancel(id TimerID) bool {
	t, ok := s.byID[id]
	if !ok {
		return false
	}

	delete(s.byID, id)

	if t.index >= 0 {
		heap.Remove(&s.queue, t.index)
	}

	return true
}

// popDue removes the earliest timer due at or before now. A repeating timer
// is queued again for its next run before it is returned, so that its
// callback can cancel it.
func (s *timerSet) popDue(now time.Time) *nativeTimer {
	if len(s.queue) == 0 || s.queue[0].when.After(now) {
		return nil
	}

	t := heap.Pop(&s.queue).(*nativeTimer)

	if t.repeating {
		next := t.when.Add(t.interval)
		if next.Before(now) {
			next = now.Add(t.interval)
		}

		t.when = next
		s.push(t)
	} else {
		delete(s.byID, t.id)
	}

	return t
}

func (s *timerSet) next() (time.Time, bool) {
	if len(s.queue) == 0 {
		return time.Time{}, false
	}

	return s.queue[0].when, true
}

func (s *timerSet) len() int {
	return len(s.byID)
}

func (s *timerSet) clear() {
	s.queue = nil
	s.byID = make(map[TimerID]*nativeTimer)
}

// safeExecute runs a timer callback, recovering a panic so that one failing
// callback does not take the loop down.
func safeExecute(log zerolog.Logger, t *nativeTimer) {
	if t.cb == nil {
		return
	}

	defer func() {
		if r := recover(); r != nil {
			log.Error().
				Str("timer", string(t.id)).
				Str("panic", fmt.Sprint(r)).
				Msg("native timer callback panicked")
		}
	}()

	t.cb(t.args...)
}

// safeRun is safeExecute for submitted tasks.
func safeRun(log zerolog.Logger, fn func()) {
	if fn == nil {
		return
	}

	defer func() {
		if r := recover(); r != nil {
			log.Error().
				Str("panic", fmt.Sprint(r)).
				Msg("loop task panicked")
		}
	}()

	fn()
}
