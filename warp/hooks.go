package warp

import "github.com/sarchlab/timewarp/sim/hooking"

// Hook positions triggered by an Engine. Timer positions carry a TimerInfo as
// the item.
var (
	// HookPosTimerScheduled triggers after a timer is registered.
	HookPosTimerScheduled = &hooking.HookPos{Name: "TimerScheduled"}

	// HookPosBeforeFire triggers right before a callback runs.
	HookPosBeforeFire = &hooking.HookPos{Name: "BeforeFire"}

	// HookPosAfterFire triggers after a callback returns or panics.
	HookPosAfterFire = &hooking.HookPos{Name: "AfterFire"}

	// HookPosTimerCanceled triggers after a registered timer is canceled.
	// Timers dropped by Restore carry "restore" as the detail.
	HookPosTimerCanceled = &hooking.HookPos{Name: "TimerCanceled"}

	// HookPosCallbackFailed triggers when a callback panics. The detail is
	// the *CallbackError.
	HookPosCallbackFailed = &hooking.HookPos{Name: "CallbackFailed"}

	// HookPosPause triggers after the engine pauses. The item is a Status.
	HookPosPause = &hooking.HookPos{Name: "Pause"}

	// HookPosResume triggers after the engine resumes. The item is a Status.
	HookPosResume = &hooking.HookPos{Name: "Resume"}

	// HookPosSpeedChange triggers when the speed factor changes. The item is
	// a SpeedChange.
	HookPosSpeedChange = &hooking.HookPos{Name: "SpeedChange"}

	// HookPosInstall triggers after the engine is installed.
	HookPosInstall = &hooking.HookPos{Name: "Install"}

	// HookPosRestore triggers after the engine is restored.
	HookPosRestore = &hooking.HookPos{Name: "Restore"}
)

// SpeedChange is the item of a HookPosSpeedChange hook.
type SpeedChange struct {
	Old float64
	New float64
}

func (e *Engine) invokeTimerHook(
	pos *hooking.HookPos,
	t *VirtualTimer,
	detail any,
) {
	if e.NumHooks() == 0 {
		return
	}

	e.InvokeHook(hooking.HookCtx{
		Domain: e,
		Pos:    pos,
		Item:   t.Info(),
		Detail: detail,
	})
}

func (e *Engine) invokeStateHook(pos *hooking.HookPos, item any) {
	if e.NumHooks() == 0 {
		return
	}

	e.InvokeHook(hooking.HookCtx{
		Domain: e,
		Pos:    pos,
		Item:   item,
	})
}
