// Package hooking lets observers attach to the points where an engine or a
// host loop does something worth recording.
package hooking

// HookPos names a place where hooks are triggered.
type HookPos struct {
	Name string
}

// HookCtx is the context that holds all the information about the site that a
// hook is triggered.
type HookCtx struct {
	Domain Hookable
	Pos    *HookPos
	Item   any
	Detail any
}

// Hookable defines an object that accept Hooks.
type Hookable interface {
	// AcceptHook registers a hook.
	AcceptHook(hook Hook)

	// NumHooks returns the number of hooks registered.
	NumHooks() int

	// Hooks returns all the hooks registered.
	Hooks() []Hook
}

// Hook is a short piece of program that can be invoked by a hookable object.
type Hook interface {
	// Func determines what to do if hook is invoked.
	Func(ctx HookCtx)
}

// HookFunc adapts a plain function to the Hook interface.
type HookFunc func(ctx HookCtx)

// Func calls f.
func (f HookFunc) Func(ctx HookCtx) {
	f(ctx)
}

// A HookableBase provides some utility function for other type that implement
// the Hookable interface.
type HookableBase struct {
	hookList []Hook
}

// NumHooks returns the number of hooks registered.
func (h *HookableBase) NumHooks() int {
	return len(h.hookList)
}

// Hooks returns all the hooks registered.
func (h *HookableBase) Hooks() []Hook {
	return h.hookList
}

// AcceptHook register a hook. Pointer hooks may only be registered once.
func (h *HookableBase) AcceptHook(hook Hook) {
	if hook == nil {
		panic("nil hook")
	}

	h.mustNotHaveDuplicatedHook(hook)
	h.hookList = append(h.hookList, hook)
}

// RemoveHook unregisters a hook. It reports whether the hook was registered.
func (h *HookableBase) RemoveHook(hook Hook) bool {
	for i, registered := range h.hookList {
		if sameHook(registered, hook) {
			h.hookList = append(h.hookList[:i:i], h.hookList[i+1:]...)
			return true
		}
	}

	return false
}

func (h *HookableBase) mustNotHaveDuplicatedHook(hook Hook) {
	for _, registered := range h.hookList {
		if sameHook(registered, hook) {
			panic("duplicated hook")
		}
	}
}

// InvokeHook triggers the registered Hooks in registration order.
func (h *HookableBase) InvokeHook(ctx HookCtx) {
	for _, hook := range h.hookList {
		hook.Func(ctx)
	}
}

// sameHook compares hooks without panicking on uncomparable dynamic types
// such as HookFunc.
func sameHook(a, b Hook) bool {
	switch a.(type) {
	case HookFunc:
		return false
	}

	switch b.(type) {
	case HookFunc:
		return false
	}

	return a == b
}
