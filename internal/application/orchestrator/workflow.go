package orchestrator

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/lite-lake/infra-swarmops/internal/application/deploy"
	"github.com/lite-lake/infra-swarmops/internal/application/dnssync"
	"github.com/lite-lake/infra-swarmops/internal/constants"
	"github.com/lite-lake/infra-swarmops/internal/domain/contract"
	"github.com/lite-lake/infra-swarmops/internal/domain/entity"
	"github.com/lite-lake/infra-swarmops/internal/domain/repository"
	"github.com/lite-lake/infra-swarmops/internal/infrastructure/dns"
	"github.com/lite-lake/infra-swarmops/internal/infrastructure/docker"
	"github.com/lite-lake/infra-swarmops/internal/infrastructure/persistence"
	"github.com/lite-lake/infra-swarmops/internal/infrastructure/state"
	"github.com/lite-lake/infra-swarmops/internal/infrastructure/transport"
	"github.com/lite-lake/infra-swarmops/internal/stacks"
)

// Workflow wires config, catalogue, state and host connections for one environment.
type Workflow struct {
	env       string
	configDir string
	registry  *stacks.Registry
	loader    repository.ConfigLoader
	engineFor deploy.EngineFactory
}

func NewWorkflow(env, configDir string) *Workflow {
	registry := stacks.DefaultRegistry()
	return &Workflow{
		env:       env,
		configDir: configDir,
		registry:  registry,
		loader:    persistence.NewConfigLoader(configDir, registry.Kinds()...),
		engineFor: docker.ForHost,
	}
}

func (w *Workflow) Env() string { return w.env }

func (w *Workflow) ConfigDir() string { return w.configDir }

func (w *Workflow) Registry() *stacks.Registry { return w.registry }

func (w *Workflow) LoadConfig(ctx context.Context) (*entity.Config, error) {
	cfg, err := w.loader.Load(ctx, w.env)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func (w *Workflow) LoadAndValidate(ctx context.Context) (*entity.Config, error) {
	cfg, err := w.LoadConfig(ctx)
	if err != nil {
		return nil, err
	}
	if err := w.loader.Validate(cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	if err := w.registry.ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// OutputDir is where rendered compose files and the state file live.
func (w *Workflow) OutputDir() string {
	return filepath.Join(w.configDir, constants.DeploymentsDir, w.env)
}

func (w *Workflow) StateStore() *state.FileStore {
	return state.NewFileStore(state.PathFor(w.configDir, w.env))
}

func (w *Workflow) NewDeployer(cfg *entity.Config, pool deploy.HostPool) *deploy.Deployer {
	d := deploy.NewDeployer(cfg, w.registry, w.StateStore(), pool, w.OutputDir())
	d.SetEngineFactory(w.engineFor)
	return d
}

func (w *Workflow) NewDNSSyncer(cfg *entity.Config) *dnssync.Syncer {
	return dnssync.NewSyncer(cfg, w.registry, dns.NewFactory())
}

func (w *Workflow) NewPool(cfg *entity.Config) *transport.Pool {
	return transport.NewPool(cfg.GetSecretsMap())
}

// OpenHost connects to host through pool and picks its docker engine.
func (w *Workflow) OpenHost(ctx context.Context, pool deploy.HostPool, host *entity.Host) (contract.HostClient, contract.Engine, error) {
	client, err := pool.Get(host)
	if err != nil {
		return nil, nil, err
	}
	return client, w.engineFor(ctx, host, client), nil
}

// SelectHosts returns every host, or only the named one.
func SelectHosts(cfg *entity.Config, name string) ([]*entity.Host, error) {
	if name != "" {
		h, err := cfg.FindHost(name)
		if err != nil {
			return nil, err
		}
		return []*entity.Host{h}, nil
	}
	hosts := make([]*entity.Host, 0, len(cfg.Hosts))
	for i := range cfg.Hosts {
		hosts = append(hosts, &cfg.Hosts[i])
	}
	return hosts, nil
}
