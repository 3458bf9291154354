package warp

import (
	"fmt"

	"github.com/sarchlab/timewarp/sim/timing"
)

// A CallbackError reports a timer callback that panicked.
type CallbackError struct {
	TimerID timing.TimerID
	Kind    Kind
	Value   any
}

func (e *CallbackError) Error() string {
	return fmt.Sprintf("timer %s (%s) callback panicked: %v",
		e.TimerID, e.Kind, e.Value)
}

// Unwrap returns the panic value if it is an error.
func (e *CallbackError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}

	return nil
}
