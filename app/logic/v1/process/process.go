// Package process hosts the background sweeps that keep the runtime tidy:
// retiring finished job runners and enforcing the knowledge capacity bound.
package process

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/linkmesh-ai/linkmesh/app/core"
	"github.com/linkmesh-ai/linkmesh/pkg/safe"
)

type Process struct {
	cron *cron.Cron
	core *core.Core
}

var p *Process

func NewProcess(core *core.Core) *Process {
	p = &Process{
		cron: cron.New(),
		core: core,
	}
	return p
}

func (p *Process) Start() {
	p.setupJobSweep()
	p.setupEvictionSweep()
	p.cron.Start()
}

func (p *Process) Stop() {
	p.cron.Stop()
}

// setupJobSweep drops finished runners from the registry. The persisted
// job rows stay queryable.
func (p *Process) setupJobSweep() {
	if _, err := p.cron.AddFunc("@every 1m", func() {
		safe.Run(func() {
			if retired := p.core.Jobs().Retire(); retired > 0 {
				slog.Debug("retired finished job runners", slog.Int("count", retired))
			}
		})
	}); err != nil {
		slog.Error("failed to register job sweep", slog.String("error", err.Error()))
	}
}

// setupEvictionSweep backstops the per-upsert eviction check, covering
// capacity overshoot from concurrent jobs.
func (p *Process) setupEvictionSweep() {
	if _, err := p.cron.AddFunc("@every 10m", func() {
		safe.Run(func() {
			ctx, cancel := context.WithTimeout(context.Background(), time.Minute*5)
			defer cancel()

			if _, err := p.core.Knowledge().EvictIfOverCapacity(ctx); err != nil {
				slog.Error("eviction sweep failed", slog.String("error", err.Error()))
			}
		})
	}); err != nil {
		slog.Error("failed to register eviction sweep", slog.String("error", err.Error()))
	}
}
