package sim

// HookPos names a point in the run where hooks are invoked.
type HookPos struct {
	Name string
}

// HookCtx carries what a hook is told about the site it fired at.
type HookCtx struct {
	Domain Hookable
	Pos    *HookPos
	Item   interface{}
	Detail interface{}
}

// Hookable accepts hooks.
type Hookable interface {
	AcceptHook(hook Hook)
}

// HookPosStepCommitted fires after a step is committed and sampled. Item is
// the committed dynamo.Clock.
var HookPosStepCommitted = &HookPos{Name: "StepCommitted"}

// HookPosEventApplied fires after an event action ran. Item is the
// EventRecord.
var HookPosEventApplied = &HookPos{Name: "EventApplied"}

// Hook is invoked by a Hookable at its hook positions.
type Hook interface {
	Func(ctx HookCtx)
}

// HookFunc adapts a plain function to a Hook.
type HookFunc func(ctx HookCtx)

func (f HookFunc) Func(ctx HookCtx) { f(ctx) }

// HookableBase implements Hookable for embedding.
type HookableBase struct {
	Hooks []Hook
}

// AcceptHook registers a hook.
func (h *HookableBase) AcceptHook(hook Hook) {
	h.Hooks = append(h.Hooks, hook)
}

// InvokeHook triggers the registered hooks in registration order.
func (h *HookableBase) InvokeHook(ctx HookCtx) {
	for _, hook := range h.Hooks {
		hook.Func(ctx)
	}
}
