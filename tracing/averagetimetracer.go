package tracing

import (
	"sync"
	"time"

	"github.com/sarchlab/timewarp/sim/timing"
)

// TotalAvgTimeTracer collects the total and average lifetime of timers, from
// scheduling to firing or cancellation. Overlapping lifetimes are simply
// added together.
type TotalAvgTimeTracer struct {
	timeTeller    timing.TimeTeller
	filter        TaskFilter
	lock          sync.Mutex
	inflightTasks map[string]time.Time
	totalTime     time.Duration
	taskCount     uint64
}

// NewAverageTimeTracer creates a new TotalAvgTimeTracer. A nil filter
// accepts every task.
func NewAverageTimeTracer(
	timeTeller timing.TimeTeller,
	filter TaskFilter,
) *TotalAvgTimeTracer {
	if filter == nil {
		filter = func(Task) bool { return true }
	}

	return &TotalAvgTimeTracer{
		timeTeller:    timeTeller,
		filter:        filter,
		inflightTasks: make(map[string]time.Time),
	}
}

// AverageTime returns the average lifetime of the ended tasks, or 0 if none
// has ended.
func (t *TotalAvgTimeTracer) AverageTime() time.Duration {
	t.lock.Lock()
	defer t.lock.Unlock()

	if t.taskCount == 0 {
		return 0
	}

	return t.totalTime / time.Duration(t.taskCount)
}

// TotalTime returns the summed lifetime of the ended tasks.
func (t *TotalAvgTimeTracer) TotalTime() time.Duration {
	t.lock.Lock()
	defer t.lock.Unlock()

	return t.totalTime
}

// TotalCount returns the number of ended tasks.
func (t *TotalAvgTimeTracer) TotalCount() uint64 {
	t.lock.Lock()
	defer t.lock.Unlock()

	return t.taskCount
}

// StartTask records the task start time
func (t *TotalAvgTimeTracer) StartTask(task Task) {
	if !t.filter(task) {
		return
	}

	t.lock.Lock()
	t.inflightTasks[task.ID] = t.timeTeller.Now()
	t.lock.Unlock()
}

// EndTask records the end of the task
func (t *TotalAvgTimeTracer) EndTask(task Task) {
	t.lock.Lock()
	defer t.lock.Unlock()

	start, ok := t.inflightTasks[task.ID]
	if !ok {
		return
	}

	t.totalTime += t.timeTeller.Now().Sub(start)
	t.taskCount++

	delete(t.inflightTasks, task.ID)
}

// AddMilestone does nothing.
func (t *TotalAvgTimeTracer) AddMilestone(Milestone) {}
