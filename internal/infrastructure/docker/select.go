package docker

import (
	"context"

	"github.com/lite-lake/infra-swarmops/internal/domain/contract"
	"github.com/lite-lake/infra-swarmops/internal/domain/entity"
	"github.com/lite-lake/infra-swarmops/internal/infrastructure/logger"
)

// ForHost returns the API engine for a local host and the CLI engine over
// the host's runner otherwise. A local daemon the current user cannot reach
// through the socket is driven through sudo docker instead.
func ForHost(ctx context.Context, host *entity.Host, runner contract.Runner) contract.Engine {
	if !host.Local {
		return NewCLIEngine(runner)
	}
	api, err := NewAPIEngine(runner)
	if err != nil {
		logger.Warn("docker api client unavailable, using cli", "host", host.Name, "error", err)
		return NewCLIEngine(runner)
	}
	if _, err := api.Info(ctx); err != nil {
		logger.Warn("docker api unreachable, using cli", "host", host.Name, "error", err)
		_ = api.Close()
		return NewCLIEngine(runner)
	}
	return api
}
