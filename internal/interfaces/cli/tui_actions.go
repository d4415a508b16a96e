package cli

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbletea"

	"github.com/lite-lake/infra-swarmops/internal/application/deploy"
	"github.com/lite-lake/infra-swarmops/internal/application/orchestrator"
	"github.com/lite-lake/infra-swarmops/internal/domain/entity"
	"github.com/lite-lake/infra-swarmops/internal/infrastructure/logger"
	"github.com/lite-lake/infra-swarmops/internal/infrastructure/transport"
	"github.com/lite-lake/infra-swarmops/internal/provision"
	"github.com/lite-lake/infra-swarmops/internal/stacks"
)

func loadConfigCmd(env, configDir string) tea.Cmd {
	return func() tea.Msg {
		wf := orchestrator.NewWorkflow(env, configDir)
		cfg, err := wf.LoadAndValidate(context.Background())
		return configLoadedMsg{workflow: wf, config: cfg, err: err}
	}
}

func deployCmd(wf *orchestrator.Workflow, cfg *entity.Config, pool *transport.Pool, stack string, answers map[string]string) tea.Cmd {
	return func() tea.Msg {
		ctx := logger.WithOperation(context.Background(), "tui.deploy")
		prompt := func(in stacks.Input) (string, error) {
			return answers[in.Key], nil
		}
		res, err := wf.NewDeployer(cfg, pool).Deploy(ctx, stack, deploy.Options{Prompt: prompt})
		if err != nil {
			return taskDoneMsg{output: deploy.GeneratedSecrets(res), err: err}
		}
		return taskDoneMsg{output: deploy.Instructions(res)}
	}
}

func hostCheckCmd(wf *orchestrator.Workflow, pool *transport.Pool, host *entity.Host) tea.Cmd {
	return func() tea.Msg {
		ctx := logger.WithHost(logger.WithOperation(context.Background(), "tui.check"), host.Name)
		client, engine, err := wf.OpenHost(ctx, pool, host)
		if err != nil {
			return taskDoneMsg{err: fmt.Errorf("connection failed: %w", err)}
		}
		defer engine.Close()
		results := provision.NewChecker(client, host, engine).CheckAll(ctx)
		return taskDoneMsg{output: provision.FormatResults(host.Name, results)}
	}
}

func provisionCmd(wf *orchestrator.Workflow, pool *transport.Pool, host *entity.Host) tea.Cmd {
	return func() tea.Msg {
		ctx := logger.WithHost(logger.WithOperation(context.Background(), "tui.provision"), host.Name)
		client, engine, err := wf.OpenHost(ctx, pool, host)
		if err != nil {
			return taskDoneMsg{err: fmt.Errorf("connection failed: %w", err)}
		}
		defer engine.Close()
		results := provision.NewProvisioner(client, host, engine).Run(ctx, provision.AllSteps)
		out := provision.FormatSyncResults(host.Name, results)
		if f := provision.Failed(results); f != nil {
			return taskDoneMsg{output: out, err: f.Error}
		}
		return taskDoneMsg{output: out}
	}
}
