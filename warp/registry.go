package warp

import (
	"container/list"

	"github.com/sarchlab/timewarp/sim/timing"
)

// A TimerRegistry maps virtual timer IDs to timers. It remembers insertion
// order so that pause and resume visit timers in the order they were
// scheduled. It does not schedule anything.
type TimerRegistry struct {
	order *list.List
	byID  map[timing.TimerID]*list.Element
}

// NewTimerRegistry creates an empty TimerRegistry.
func NewTimerRegistry() *TimerRegistry {
	return &TimerRegistry{
		order: list.New(),
		byID:  make(map[timing.TimerID]*list.Element),
	}
}

// Insert adds a timer. Inserting an ID twice panics.
func (r *TimerRegistry) Insert(t *VirtualTimer) {
	if _, found := r.byID[t.ID]; found {
		panic("timer " + string(t.ID) + " is already registered")
	}

	r.byID[t.ID] = r.order.PushBack(t)
}

// Get returns the timer with the given ID.
func (r *TimerRegistry) Get(id timing.TimerID) (*VirtualTimer, bool) {
	e, found := r.byID[id]
	if !found {
		return nil, false
	}

	return e.Value.(*VirtualTimer), true
}

// Lookup returns the timer with the given ID only if it is of the given kind.
func (r *TimerRegistry) Lookup(
	id timing.TimerID,
	kind Kind,
) (*VirtualTimer, bool) {
	t, found := r.Get(id)
	if !found || t.Kind != kind {
		return nil, false
	}

	return t, true
}

// Remove deletes a timer and reports whether it was registered.
func (r *TimerRegistry) Remove(id timing.TimerID) bool {
	e, found := r.byID[id]
	if !found {
		return false
	}

	r.order.Remove(e)
	delete(r.byID, id)

	return true
}

// Len returns the number of registered timers.
func (r *TimerRegistry) Len() int {
	return len(r.byID)
}

// Each calls fn for every timer in insertion order. fn may remove the timer
// it is given.
func (r *TimerRegistry) Each(fn func(t *VirtualTimer)) {
	for e := r.order.Front(); e != nil; {
		next := e.Next()
		fn(e.Value.(*VirtualTimer))
		e = next
	}
}

// Clear removes every timer and returns them in insertion order.
func (r *TimerRegistry) Clear() []*VirtualTimer {
	timers := make([]*VirtualTimer, 0, r.Len())
	r.Each(func(t *VirtualTimer) {
		timers = append(timers, t)
	})

	r.order.Init()
	r.byID = make(map[timing.TimerID]*list.Element)

	return timers
}
