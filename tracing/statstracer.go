package tracing

import (
	"sort"
	"sync"
)

// Stats are the counters collected by a StatsTracer.
type Stats struct {
	Scheduled map[string]uint64 `json:"scheduled"`
	Ended     map[string]uint64 `json:"ended"`
	Inflight  int               `json:"inflight"`
	Fires     uint64            `json:"fires"`
	Failures  uint64            `json:"failures"`
	Controls  map[string]uint64 `json:"controls"`
}

// StatsTracer counts tasks by kind and milestones by kind, in memory.
type StatsTracer struct {
	filter        TaskFilter
	lock          sync.Mutex
	inflightTasks map[string]Task
	scheduled     map[string]uint64
	ended         map[string]uint64
	fires         uint64
	failures      uint64
	controls      map[string]uint64
	controlNames  []string
}

// NewStatsTracer creates a new StatsTracer. A nil filter accepts every task.
func NewStatsTracer(filter TaskFilter) *StatsTracer {
	if filter == nil {
		filter = func(Task) bool { return true }
	}

	t := &StatsTracer{
		filter:        filter,
		inflightTasks: make(map[string]Task),
		scheduled:     make(map[string]uint64),
		ended:         make(map[string]uint64),
		controls:      make(map[string]uint64),
	}

	return t
}

// StartTask counts a scheduled timer.
func (t *StatsTracer) StartTask(task Task) {
	if !t.filter(task) {
		return
	}

	t.lock.Lock()
	defer t.lock.Unlock()

	t.inflightTasks[task.ID] = task
	t.scheduled[task.Kind]++
}

// EndTask counts a timer that fired or was canceled, by end reason.
func (t *StatsTracer) EndTask(task Task) {
	t.lock.Lock()
	defer t.lock.Unlock()

	_, ok := t.inflightTasks[task.ID]
	if !ok {
		return
	}

	delete(t.inflightTasks, task.ID)
	t.ended[task.What]++
}

// AddMilestone counts fires, failures and engine controls.
func (t *StatsTracer) AddMilestone(milestone Milestone) {
	t.lock.Lock()
	defer t.lock.Unlock()

	switch milestone.Kind {
	case MilestoneKindFire:
		t.fires++
	case MilestoneKindFailure:
		t.failures++
	case MilestoneKindControl:
		name := controlName(milestone.What)
		if _, ok := t.controls[name]; !ok {
			t.controlNames = append(t.controlNames, name)
		}
		t.controls[name]++
	}
}

// controlName drops the values from a control milestone, so that every
// speed change is counted under "speed".
func controlName(what string) string {
	for i, c := range what {
		if c == ' ' {
			return what[:i]
		}
	}

	return what
}

// GetControlNames returns the control milestones seen, in first-seen order.
func (t *StatsTracer) GetControlNames() []string {
	t.lock.Lock()
	defer t.lock.Unlock()

	names := make([]string, len(t.controlNames))
	copy(names, t.controlNames)

	return names
}

// Stats returns a copy of the counters.
func (t *StatsTracer) Stats() Stats {
	t.lock.Lock()
	defer t.lock.Unlock()

	return Stats{
		Scheduled: copyCounts(t.scheduled),
		Ended:     copyCounts(t.ended),
		Inflight:  len(t.inflightTasks),
		Fires:     t.fires,
		Failures:  t.failures,
		Controls:  copyCounts(t.controls),
	}
}

// InflightTaskIDs returns the IDs of the tasks that have not ended, sorted.
func (t *StatsTracer) InflightTaskIDs() []string {
	t.lock.Lock()
	defer t.lock.Unlock()

	ids := make([]string, 0, len(t.inflightTasks))
	for id := range t.inflightTasks {
		ids = append(ids, id)
	}

	sort.Strings(ids)

	return ids
}

func copyCounts(m map[string]uint64) map[string]uint64 {
	c := make(map[string]uint64, len(m))
	for k, v := range m {
		c[k] = v
	}

	return c
}
