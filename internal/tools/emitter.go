package tools

import "context"

// emitterKey uses an empty struct for a zero-allocation context key.
type emitterKey struct{}

// Emitter receives tool lifecycle events. Minimal on purpose: only the
// tool name crosses this boundary, presentation stays with whoever
// bound the emitter.
type Emitter interface {
	// OnToolStart signals that a tool began executing.
	OnToolStart(name string)

	// OnToolComplete signals that a tool finished successfully.
	OnToolComplete(name string)

	// OnToolError signals that a tool execution failed.
	OnToolError(name string)
}

// ContextWithEmitter stores an Emitter in the context.
func ContextWithEmitter(ctx context.Context, emitter Emitter) context.Context {
	return context.WithValue(ctx, emitterKey{}, emitter)
}

// EmitterFromContext retrieves the Emitter from the context. Returns
// nil if not set, allowing graceful degradation (no events).
func EmitterFromContext(ctx context.Context) Emitter {
	emitter, _ := ctx.Value(emitterKey{}).(Emitter)
	return emitter
}
