// Package tracing turns engine hooks into tasks and milestones and hands them
// to tracers.
package tracing

import "time"

// A Task is the life of one virtual timer, from scheduling to firing or
// cancellation.
type Task struct {
	ID        string    `json:"id"`
	ParentID  string    `json:"parent_id"`
	Kind      string    `json:"kind"`
	What      string    `json:"what"`
	Location  string    `json:"location"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	Detail    any       `json:"-"`
}

// TaskFilter is a function that can filter interesting tasks. If this function
// returns true, the task is considered useful.
type TaskFilter func(t Task) bool
