package tracing

import (
	"sync"
	"time"

	"github.com/sarchlab/timewarp/sim/timing"
)

// BusyTimeTracer measures how long at least one matching timer was pending.
// Overlapping lifetimes are only counted once.
type BusyTimeTracer struct {
	timeTeller    timing.TimeTeller
	filter        TaskFilter
	lock          sync.Mutex
	inflightTasks map[string]struct{}
	busySince     time.Time
	busyTime      time.Duration
}

// NewBusyTimeTracer creates a new BusyTimeTracer. A nil filter accepts every
// task.
func NewBusyTimeTracer(
	timeTeller timing.TimeTeller,
	filter TaskFilter,
) *BusyTimeTracer {
	return &BusyTimeTracer{
		timeTeller:    timeTeller,
		filter:        filter,
		inflightTasks: make(map[string]struct{}),
	}
}

// BusyTime returns the busy time of the periods that have ended. A period
// still open counts up to now.
func (t *BusyTimeTracer) BusyTime() time.Duration {
	t.lock.Lock()
	defer t.lock.Unlock()

	if len(t.inflightTasks) == 0 {
		return t.busyTime
	}

	return t.busyTime + t.timeTeller.Now().Sub(t.busySince)
}

// TerminateAllTasks ends every pending task now.
func (t *BusyTimeTracer) TerminateAllTasks() {
	t.lock.Lock()
	defer t.lock.Unlock()

	if len(t.inflightTasks) == 0 {
		return
	}

	t.busyTime += t.timeTeller.Now().Sub(t.busySince)
	t.inflightTasks = make(map[string]struct{})
}

// StartTask records the task start time
func (t *BusyTimeTracer) StartTask(task Task) {
	if t.filter != nil && !t.filter(task) {
		return
	}

	t.lock.Lock()
	defer t.lock.Unlock()

	if len(t.inflightTasks) == 0 {
		t.busySince = t.timeTeller.Now()
	}

	t.inflightTasks[task.ID] = struct{}{}
}

// EndTask records the end of the task
func (t *BusyTimeTracer) EndTask(task Task) {
	t.lock.Lock()
	defer t.lock.Unlock()

	if _, ok := t.inflightTasks[task.ID]; !ok {
		return
	}

	delete(t.inflightTasks, task.ID)

	if len(t.inflightTasks) == 0 {
		t.busyTime += t.timeTeller.Now().Sub(t.busySince)
	}
}

// AddMilestone does nothing.
func (t *BusyTimeTracer) AddMilestone(Milestone) {}
