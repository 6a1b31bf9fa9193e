package register

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type wiringKey struct{}

func TestResolveMatchesRegisteredType(t *testing.T) {
	type target struct{ wired []string }

	RegisterFunc[*target](wiringKey{}, func(tg *target) { tg.wired = append(tg.wired, "a") })
	RegisterFunc[*target](wiringKey{}, func(tg *target) { tg.wired = append(tg.wired, "b") })
	// different T under the same key must not leak into the resolved set
	RegisterFunc[int](wiringKey{}, func(int) {})

	handlers := ResolveFuncHandlers[*target](wiringKey{})
	require.Len(t, handlers, 2)

	tg := &target{}
	for _, h := range handlers {
		h(tg)
	}
	assert.Equal(t, []string{"a", "b"}, tg.wired)
}

func TestResolveUnknownKeyIsEmpty(t *testing.T) {
	type otherKey struct{}
	assert.Empty(t, ResolveFuncHandlers[*struct{}](otherKey{}))
}
