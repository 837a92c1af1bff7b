package sched

// HookPos identifies a position in the tick loop where hooks can be invoked.
type HookPos struct {
	Name string
}

// HookPosBeforeTick triggers before the scheduler executes a tick. The item
// is the Tick about to run.
var HookPosBeforeTick = &HookPos{Name: "BeforeTick"}

// HookPosAfterTick triggers after the scheduler finishes a tick. The item is
// the TickResult.
var HookPosAfterTick = &HookPos{Name: "AfterTick"}

// HookPosStateChange triggers whenever a process changes state. The detail is
// a *StateChange.
var HookPosStateChange = &HookPos{Name: "StateChange"}

// HookCtx carries the information about the site where a hook is invoked.
type HookCtx struct {
	Domain Hookable
	Pos    *HookPos
	Item   interface{}
	Detail interface{}
}

// A Hook is a piece of program that a hookable object invokes at well-known
// positions. Hooks observe the simulation; they must not drive it.
type Hook interface {
	Func(ctx HookCtx)
}

// Hookable defines an object that accepts hooks.
type Hookable interface {
	AcceptHook(hook Hook)
}

// HookableBase provides the hook bookkeeping for types that implement
// Hookable.
type HookableBase struct {
	hooks []Hook
}

// AcceptHook registers a hook.
func (h *HookableBase) AcceptHook(hook Hook) {
	h.hooks = append(h.hooks, hook)
}

// InvokeHook triggers all registered hooks.
func (h *HookableBase) InvokeHook(ctx HookCtx) {
	for _, hook := range h.hooks {
		hook.Func(ctx)
	}
}
