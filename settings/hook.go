package settings

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/sarchlab/timewarp/sim/hooking"
	"github.com/sarchlab/timewarp/warp"
)

// A SpeedSaver is a hook that saves every speed change of an engine.
type SpeedSaver struct {
	store *Store
	log   zerolog.Logger
}

// NewSpeedSaver creates a SpeedSaver writing into store. Write failures are
// logged, never returned to the engine.
func NewSpeedSaver(store *Store, log zerolog.Logger) *SpeedSaver {
	return &SpeedSaver{store: store, log: log}
}

// Func saves the new speed when the speed changes.
func (h *SpeedSaver) Func(ctx hooking.HookCtx) {
	if ctx.Pos != warp.HookPosSpeedChange {
		return
	}

	change := ctx.Item.(warp.SpeedChange)

	err := h.store.SaveSpeed(context.Background(), change.New)
	if err != nil {
		h.log.Warn().Err(err).Float64("speed", change.New).
			Msg("cannot save speed")
	}
}
