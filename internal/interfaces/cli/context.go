package cli

import (
	"context"

	"github.com/lite-lake/infra-swarmops/internal/application/orchestrator"
	"github.com/lite-lake/infra-swarmops/internal/domain/entity"
	"github.com/lite-lake/infra-swarmops/internal/infrastructure/logger"
)

type Context struct {
	Env       string
	ConfigDir string
}

func NewContext() *Context {
	return &Context{
		Env:       "dev",
		ConfigDir: ".",
	}
}

func (c *Context) Workflow() *orchestrator.Workflow {
	return orchestrator.NewWorkflow(c.Env, c.ConfigDir)
}

// load returns the validated config together with a workflow for the current env.
func (c *Context) load(ctx context.Context) (*orchestrator.Workflow, *entity.Config, error) {
	wf := c.Workflow()
	cfg, err := wf.LoadAndValidate(ctx)
	if err != nil {
		return nil, nil, err
	}
	return wf, cfg, nil
}

func commandContext(op string) context.Context {
	return logger.WithOperation(context.Background(), op)
}

type Filters struct {
	Host  string
	Stack string
}
