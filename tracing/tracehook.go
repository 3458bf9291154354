package tracing

import (
	"fmt"
	"reflect"

	"github.com/sarchlab/timewarp/sim/hooking"
	"github.com/sarchlab/timewarp/sim/id"
	"github.com/sarchlab/timewarp/warp"
)

// NamedHookable is a hookable domain that has a name.
type NamedHookable interface {
	hooking.Hookable
	Name() string
}

// CollectTrace let the tracer to collect trace from an engine.
func CollectTrace(domain NamedHookable, tracer Tracer) {
	hooks := domain.Hooks()
	for _, hook := range hooks {
		hook, ok := hook.(*traceHook)
		if ok && hook.t == tracer {
			panic(fmt.Sprintf(
				"domain %s already has tracer %s",
				domain.Name(), reflect.TypeOf(tracer)))
		}
	}

	h := traceHook{
		t:            tracer,
		location:     domain.Name(),
		milestoneIDs: id.NewPrefixedGenerator(domain.Name() + "-milestone-"),
	}
	domain.AcceptHook(&h)
}

// A traceHook is a hook that traces timers.
type traceHook struct {
	t            Tracer
	location     string
	milestoneIDs id.Generator
}

// Func calls the tracer interfaces when the hook is triggered
func (h *traceHook) Func(ctx hooking.HookCtx) {
	switch ctx.Pos {
	case warp.HookPosTimerScheduled:
		h.t.StartTask(h.task(ctx))
	case warp.HookPosBeforeFire:
		h.milestone(ctx, MilestoneKindFire, "fire")
	case warp.HookPosCallbackFailed:
		h.milestone(ctx, MilestoneKindFailure, fmt.Sprint(ctx.Detail))
	case warp.HookPosAfterFire:
		if ctx.Item.(warp.TimerInfo).Kind == warp.KindOnce {
			task := h.task(ctx)
			task.What = "fired"
			h.t.EndTask(task)
		}
	case warp.HookPosTimerCanceled:
		task := h.task(ctx)
		task.What = "canceled"
		h.t.EndTask(task)
	case warp.HookPosPause:
		h.engineMilestone("pause")
	case warp.HookPosResume:
		h.engineMilestone("resume")
	case warp.HookPosSpeedChange:
		change := ctx.Item.(warp.SpeedChange)
		h.engineMilestone(fmt.Sprintf("speed %.2f -> %.2f",
			change.Old, change.New))
	case warp.HookPosRestore:
		h.engineMilestone("restore")
	}
}

func (h *traceHook) task(ctx hooking.HookCtx) Task {
	info := ctx.Item.(warp.TimerInfo)

	return Task{
		ID:       string(info.ID),
		Kind:     info.Kind.String(),
		What:     info.Requested.String(),
		Location: h.location,
		Detail:   info,
	}
}

func (h *traceHook) milestone(
	ctx hooking.HookCtx,
	kind MilestoneKind,
	what string,
) {
	info := ctx.Item.(warp.TimerInfo)

	h.t.AddMilestone(Milestone{
		ID:       h.milestoneIDs.Generate(),
		TaskID:   string(info.ID),
		Kind:     kind,
		What:     what,
		Location: h.location,
	})
}

func (h *traceHook) engineMilestone(what string) {
	h.t.AddMilestone(Milestone{
		ID:       h.milestoneIDs.Generate(),
		Kind:     MilestoneKindControl,
		What:     what,
		Location: h.location,
	})
}
