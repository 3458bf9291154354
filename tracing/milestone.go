package tracing

import "time"

// MilestoneKind groups milestones.
type MilestoneKind string

// Milestone kinds.
const (
	MilestoneKindFire    MilestoneKind = "fire"
	MilestoneKindFailure MilestoneKind = "failure"
	MilestoneKindControl MilestoneKind = "control"
)

// A Milestone is a point in time worth recording, either in the life of a
// task or in the life of the engine. Engine milestones have no task ID.
type Milestone struct {
	ID       string        `json:"id"`
	TaskID   string        `json:"task_id"`
	Kind     MilestoneKind `json:"kind"`
	What     string        `json:"what"`
	Location string        `json:"location"`
	Time     time.Time     `json:"time"`
}
