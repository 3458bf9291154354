package tracing

import (
	"sync"

	"github.com/tebeka/atexit"

	"github.com/sarchlab/timewarp/datarecording"
	"github.com/sarchlab/timewarp/sim/timing"
)

// Table names used by the DBTracer.
const (
	TaskTableName      = "timer_tasks"
	MilestoneTableName = "timer_milestones"
)

// TaskTableEntry is a row of the task table. Times are Unix nanoseconds of
// the host clock.
type TaskTableEntry struct {
	ID        string
	ParentID  string
	Kind      string
	What      string
	Location  string
	EndReason string
	StartTime int64
	EndTime   int64
}

// MilestoneTableEntry is a row of the milestone table.
type MilestoneTableEntry struct {
	ID       string
	TaskID   string
	Kind     string
	What     string
	Location string
	Time     int64
}

// DBTracer is a tracer that can store tasks into a database.
type DBTracer struct {
	mu         sync.Mutex
	timeTeller timing.TimeTeller
	backend    datarecording.DataRecorder

	tracingTasks map[string]Task
	terminated   bool
}

// NewDBTracer creates a new DBTracer. Tasks still running when the program
// exits are written with the exit time as their end.
func NewDBTracer(
	timeTeller timing.TimeTeller,
	dataRecorder datarecording.DataRecorder,
) *DBTracer {
	dataRecorder.CreateTable(TaskTableName, TaskTableEntry{})
	dataRecorder.CreateTable(MilestoneTableName, MilestoneTableEntry{})

	t := &DBTracer{
		timeTeller:   timeTeller,
		backend:      dataRecorder,
		tracingTasks: make(map[string]Task),
	}

	atexit.Register(func() {
		t.Terminate()
	})

	return t
}

// StartTask marks the start of a task.
func (t *DBTracer) StartTask(task Task) {
	t.mu.Lock()
	defer t.mu.Unlock()

	startingTaskMustBeValid(task)

	if t.terminated {
		return
	}

	task.StartTime = t.timeTeller.Now()
	t.tracingTasks[task.ID] = task
}

func startingTaskMustBeValid(task Task) {
	if task.ID == "" {
		panic("task ID must be set")
	}

	if task.Kind == "" {
		panic("task kind must be set")
	}

	if task.Location == "" {
		panic("task location must be set")
	}
}

// AddMilestone records a milestone.
func (t *DBTracer) AddMilestone(milestone Milestone) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.terminated {
		return
	}

	milestone.Time = t.timeTeller.Now()

	t.backend.InsertData(MilestoneTableName, MilestoneTableEntry{
		ID:       milestone.ID,
		TaskID:   milestone.TaskID,
		Kind:     string(milestone.Kind),
		What:     milestone.What,
		Location: milestone.Location,
		Time:     milestone.Time.UnixNano(),
	})
}

// EndTask marks the end of a task. The What of the ending task becomes the
// end reason.
func (t *DBTracer) EndTask(task Task) {
	t.mu.Lock()
	defer t.mu.Unlock()

	originalTask, ok := t.tracingTasks[task.ID]
	if !ok {
		return
	}

	originalTask.EndTime = t.timeTeller.Now()
	t.writeTask(originalTask, task.What)

	delete(t.tracingTasks, task.ID)
}

// NumInflightTasks returns the number of tasks started and not yet ended.
func (t *DBTracer) NumInflightTasks() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	return len(t.tracingTasks)
}

// Terminate writes the tasks that are still running and flushes the backend.
// Later calls do nothing.
func (t *DBTracer) Terminate() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.terminated {
		return
	}

	now := t.timeTeller.Now()
	for _, task := range t.tracingTasks {
		task.EndTime = now
		t.writeTask(task, "unfinished")
	}

	t.tracingTasks = nil
	t.terminated = true
	t.backend.Flush()
}

func (t *DBTracer) writeTask(task Task, reason string) {
	t.backend.InsertData(TaskTableName, TaskTableEntry{
		ID:        task.ID,
		ParentID:  task.ParentID,
		Kind:      task.Kind,
		What:      task.What,
		Location:  task.Location,
		EndReason: reason,
		StartTime: task.StartTime.UnixNano(),
		EndTime:   task.EndTime.UnixNano(),
	})
}
