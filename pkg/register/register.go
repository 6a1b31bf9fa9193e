// Package register collects init-time hooks so each store can wire itself
// into the provider without the provider importing every store.
package register

import "sync"

// Handler is one wiring hook. T is the object being assembled, typically
// a store provider.
type Handler[T any] func(T)

type hookSet struct {
	mu    sync.RWMutex
	hooks map[any][]any
}

var global = &hookSet{hooks: make(map[any][]any)}

func (s *hookSet) add(key any, h any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hooks[key] = append(s.hooks[key], h)
}

func (s *hookSet) get(key any) []any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hooks[key]
}

// RegisterFunc queues handler under key. Meant to be called from init(),
// registration order follows package init order.
func RegisterFunc[T any](key any, handler Handler[T]) {
	global.add(key, handler)
}

// ResolveFuncHandlers returns the handlers queued under key whose type
// matches T. Hooks registered with a different T stay untouched.
func ResolveFuncHandlers[T any](key any) []Handler[T] {
	stored := global.get(key)
	matched := make([]Handler[T], 0, len(stored))
	for _, v := range stored {
		if h, ok := v.(Handler[T]); ok {
			matched = append(matched, h)
		}
	}
	return matched
}
