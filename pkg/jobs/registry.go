package jobs

import (
	"context"

	cmap "github.com/orcaman/concurrent-map/v2"

	"github.com/linkmesh-ai/linkmesh/pkg/safe"
)

// Registry tracks the runners of in-flight jobs. Exactly one runner per
// job id; finished runners stay queryable until Retire removes them.
type Registry struct {
	runners cmap.ConcurrentMap[string, *Runner]
}

func NewRegistry() *Registry {
	return &Registry{
		runners: cmap.New[*Runner](),
	}
}

// Start launches the runner on its own goroutine. A second start for the
// same job id is a no-op and returns false.
func (g *Registry) Start(ctx context.Context, runner *Runner) bool {
	if !g.runners.SetIfAbsent(runner.job.ID, runner) {
		return false
	}
	safe.Go(func() {
		runner.Run(ctx)
	})
	return true
}

func (g *Registry) Get(jobID string) (*Runner, bool) {
	return g.runners.Get(jobID)
}

// Stop requests a stop for the job. Returns false when the job is not
// running here.
func (g *Registry) Stop(jobID string) bool {
	runner, ok := g.runners.Get(jobID)
	if !ok {
		return false
	}
	runner.Stop()
	return true
}

// Retire drops runners that reached a terminal state, returning how many
// were removed. The persisted job rows remain the source of truth.
func (g *Registry) Retire() int {
	var retired int
	for _, key := range g.runners.Keys() {
		runner, ok := g.runners.Get(key)
		if !ok {
			continue
		}
		select {
		case <-runner.Done():
			g.runners.Remove(key)
			retired++
		default:
		}
	}
	return retired
}

func (g *Registry) Running() int {
	return g.runners.Count()
}
