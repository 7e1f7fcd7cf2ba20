package download

import "context"

// emitterKey uses an empty struct for a zero-allocation context key.
type emitterKey struct{}

// Emitter receives download lifecycle events. The interface is
// minimal: URL plus outcome, no UI concerns. Presentation belongs to
// whatever layer bound the emitter.
//
// Usage:
//  1. The caller builds an emitter and stores it via ContextWithEmitter.
//  2. The fetcher retrieves it via EmitterFromContext at each download.
//  3. A nil emitter disables events; all call sites tolerate absence.
type Emitter interface {
	// OnStart signals that a download began.
	OnStart(url string)

	// OnComplete signals a successful download and its on-disk size.
	OnComplete(url string, size int64)

	// OnError signals a failed download.
	OnError(url string, err error)
}

// ContextWithEmitter stores an Emitter in the context.
func ContextWithEmitter(ctx context.Context, e Emitter) context.Context {
	return context.WithValue(ctx, emitterKey{}, e)
}

// EmitterFromContext retrieves the Emitter from the context. Returns
// nil if none is set, allowing graceful degradation (no events).
func EmitterFromContext(ctx context.Context) Emitter {
	e, _ := ctx.Value(emitterKey{}).(Emitter)
	return e
}
