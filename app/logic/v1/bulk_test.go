package v1

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/linkmesh-ai/linkmesh/pkg/jobs"
	"github.com/linkmesh-ai/linkmesh/pkg/suggest"
)

func TestClassifySuggestError(t *testing.T) {
	t.Run("not ready aborts the job", func(t *testing.T) {
		err := classifySuggestError(suggest.ErrNotReady)
		assert.True(t, jobs.IsFatal(err))
		assert.False(t, jobs.IsTransient(err))
	})

	t.Run("deadline exceeded is retried", func(t *testing.T) {
		wrapped := fmt.Errorf("embed batch: %w", context.DeadlineExceeded)
		err := classifySuggestError(wrapped)
		assert.True(t, jobs.IsTransient(err))
		assert.False(t, jobs.IsFatal(err))
	})

	t.Run("store fault aborts the job", func(t *testing.T) {
		err := classifySuggestError(errors.New("pq: connection refused"))
		assert.True(t, jobs.IsFatal(err))
	})
}
