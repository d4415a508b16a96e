package deploy

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/lite-lake/infra-swarmops/internal/application/ensure"
	"github.com/lite-lake/infra-swarmops/internal/compose"
	"github.com/lite-lake/infra-swarmops/internal/constants"
	"github.com/lite-lake/infra-swarmops/internal/domain"
	"github.com/lite-lake/infra-swarmops/internal/domain/contract"
	"github.com/lite-lake/infra-swarmops/internal/domain/entity"
	"github.com/lite-lake/infra-swarmops/internal/domain/repository"
	"github.com/lite-lake/infra-swarmops/internal/infrastructure/docker"
	"github.com/lite-lake/infra-swarmops/internal/infrastructure/logger"
	"github.com/lite-lake/infra-swarmops/internal/infrastructure/transport"
	"github.com/lite-lake/infra-swarmops/internal/stacks"
)

// EngineFactory picks the docker engine for a host.
type EngineFactory func(ctx context.Context, host *entity.Host, runner contract.Runner) contract.Engine

// HostPool hands out open host connections.
type HostPool interface {
	Get(host *entity.Host) (contract.HostClient, error)
}

type Options struct {
	DryRun        bool
	RotateSecrets bool
	Prompt        stacks.PromptFunc
}

type Result struct {
	Stack       string
	Kind        string
	Host        string
	ComposePath string
	ComposeHash string
	DryRun      bool
	Ensured     []ensure.Result
	URLs        []string
	// Generated maps docker secret names to values created during this run.
	Generated  map[string]string
	Deployment *repository.Deployment
}

type Deployer struct {
	cfg       *entity.Config
	registry  *stacks.Registry
	state     repository.StateRepository
	pool      HostPool
	outputDir string
	engineFor EngineFactory
	now       func() time.Time
}

// NewDeployer writes rendered files below outputDir, i.e. <config>/deployments/<env>.
func NewDeployer(cfg *entity.Config, registry *stacks.Registry, state repository.StateRepository, pool HostPool, outputDir string) *Deployer {
	return &Deployer{
		cfg:       cfg,
		registry:  registry,
		state:     state,
		pool:      pool,
		outputDir: outputDir,
		engineFor: docker.ForHost,
		now:       time.Now,
	}
}

func (d *Deployer) SetEngineFactory(f EngineFactory) {
	d.engineFor = f
}

type target struct {
	stack *entity.Stack
	def   stacks.Definition
	host  *entity.Host
}

func (d *Deployer) resolve(stackName string) (*target, error) {
	s, err := d.cfg.FindStack(stackName)
	if err != nil {
		return nil, err
	}
	def, err := d.registry.Lookup(s.Kind)
	if err != nil {
		return nil, domain.WrapEntity("stack", s.Name, err)
	}
	host, err := d.cfg.FindHost(s.Host)
	if err != nil {
		return nil, domain.WrapEntity("stack", s.Name, err)
	}
	return &target{stack: s, def: def, host: host}, nil
}

func (d *Deployer) connect(ctx context.Context, host *entity.Host) (contract.HostClient, contract.Engine, error) {
	client, err := d.pool.Get(host)
	if err != nil {
		return nil, nil, err
	}
	return client, d.engineFor(ctx, host, client), nil
}

// Render resolves plain inputs and writes the compose file without touching the host.
func (d *Deployer) Render(ctx context.Context, stackName string, prompt stacks.PromptFunc) (*Result, error) {
	t, err := d.resolve(stackName)
	if err != nil {
		return nil, err
	}
	values, err := stacks.ResolveValues(t.def, t.stack, d.cfg.GetSecretsMap(), prompt, func(in stacks.Input) bool {
		return !in.IsSecret()
	})
	if err != nil {
		return nil, domain.WrapEntity("stack", t.stack.Name, err)
	}
	if err := stacks.ValidateValues(t.def, values); err != nil {
		return nil, domain.WrapEntity("stack", t.stack.Name, err)
	}
	data, err := d.build(t, values)
	if err != nil {
		return nil, err
	}
	res := d.newResult(t, values)
	res.DryRun = true
	if err := d.store(t, data, res); err != nil {
		return nil, err
	}
	return res, nil
}

func (d *Deployer) Deploy(ctx context.Context, stackName string, opts Options) (*Result, error) {
	if opts.DryRun {
		return d.Render(ctx, stackName, opts.Prompt)
	}

	t, err := d.resolve(stackName)
	if err != nil {
		return nil, err
	}
	ctx = logger.WithStack(logger.WithHost(logger.WithOperation(ctx, "deploy"), t.host.Name), t.stack.Name)
	log := logger.FromContext(ctx)

	client, engine, err := d.connect(ctx, t.host)
	if err != nil {
		return nil, err
	}
	defer engine.Close()

	if err := preflight(ctx, engine); err != nil {
		return nil, domain.WrapEntity("host", t.host.Name, err)
	}

	values, err := stacks.ResolveValues(t.def, t.stack, d.cfg.GetSecretsMap(), opts.Prompt, d.needInput(ctx, engine, t.stack, opts.RotateSecrets))
	if err != nil {
		return nil, domain.WrapEntity("stack", t.stack.Name, err)
	}
	if err := stacks.ValidateValues(t.def, values); err != nil {
		return nil, domain.WrapEntity("stack", t.stack.Name, err)
	}

	data, err := d.build(t, values)
	if err != nil {
		return nil, err
	}

	res := d.newResult(t, values)
	if err := d.ensureObjects(ctx, engine, t, values, opts.RotateSecrets, res); err != nil {
		return res, err
	}
	if err := d.store(t, data, res); err != nil {
		return res, err
	}

	composePath := res.ComposePath
	if !t.host.Local {
		remoteDir := filepath.ToSlash(filepath.Join(constants.RemoteStackDir, t.stack.Name))
		if err := client.MkdirAllSudoWithPerm(remoteDir, "750"); err != nil {
			return res, domain.WrapEntity("stack", t.stack.Name, err)
		}
		composePath = remoteDir + "/" + constants.RemoteComposeFile
		if err := transport.SyncContent(client, data, composePath, "640"); err != nil {
			return res, domain.WrapEntity("stack", t.stack.Name, err)
		}
	}

	log.Info("deploying stack", "kind", t.def.Kind(), "compose", composePath)
	err = logger.TimedOperation(ctx, "stack.deploy", func() error {
		return engine.DeployStack(ctx, t.stack.Name, composePath)
	})
	if err != nil {
		return res, domain.WrapEntity("stack", t.stack.Name, err)
	}

	dep := &repository.Deployment{
		ID:          uuid.NewString(),
		Stack:       t.stack.Name,
		Kind:        t.def.Kind(),
		Host:        t.host.Name,
		ComposeHash: res.ComposeHash,
		ComposePath: res.ComposePath,
		Volumes:     t.def.Volumes(t.stack),
		Secrets:     t.def.Secrets(t.stack),
		DeployedAt:  d.now().UTC(),
	}
	err = d.state.Update(ctx, func(st *repository.DeploymentState) error {
		st.Record(dep)
		return nil
	})
	if err != nil {
		return res, fmt.Errorf("record deployment: %w", err)
	}
	res.Deployment = dep
	return res, nil
}

func preflight(ctx context.Context, engine contract.Engine) error {
	info, err := engine.Info(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrDockerUnavailable) {
			return err
		}
		return fmt.Errorf("%w: %w", domain.ErrDockerUnavailable, err)
	}
	if !info.SwarmActive {
		return domain.ErrSwarmInactive
	}
	return nil
}

// needInput skips prompting for secrets that already exist in the swarm,
// unless they are being rotated.
func (d *Deployer) needInput(ctx context.Context, engine contract.Engine, s *entity.Stack, rotate bool) func(stacks.Input) bool {
	return func(in stacks.Input) bool {
		if !in.IsSecret() || rotate {
			return true
		}
		exists, err := engine.SecretExists(ctx, s.ResourceName(in.Secret))
		if err != nil {
			logger.Warn("secret lookup failed", "secret", s.ResourceName(in.Secret), "error", err)
			return true
		}
		return !exists
	}
}

func (d *Deployer) ensureObjects(ctx context.Context, engine contract.Engine, t *target, values stacks.Values, rotate bool, res *Result) error {
	ens := ensure.New(engine)
	labels := ensure.Labels(t.stack.Name)

	r, err := ens.EnsureNetwork(ctx, constants.ProxyNetwork, ensure.Labels(""))
	if err != nil {
		return err
	}
	res.Ensured = append(res.Ensured, r)

	for _, name := range t.def.Volumes(t.stack) {
		r, err := ens.EnsureVolume(ctx, name, labels)
		if err != nil {
			return err
		}
		res.Ensured = append(res.Ensured, r)
	}

	for _, si := range stacks.SecretInputs(t.def, t.stack) {
		r, err := ens.EnsureSecret(ctx, ensure.SecretRequest{
			Name:     si.Name,
			Value:    values.Get(si.Input.Key),
			Generate: si.Input.Generate,
			Rotate:   rotate,
			Labels:   labels,
		})
		if err != nil {
			return domain.WrapEntity("stack", t.stack.Name, err)
		}
		res.Ensured = append(res.Ensured, r)
		if r.Action == ensure.ActionGenerated {
			res.Generated[r.Name] = r.Value
		}
	}
	return nil
}

func (d *Deployer) newResult(t *target, values stacks.Values) *Result {
	res := &Result{
		Stack:     t.stack.Name,
		Kind:      t.def.Kind(),
		Host:      t.host.Name,
		Generated: make(map[string]string),
	}
	for _, h := range t.def.Hostnames(t.stack, values) {
		res.URLs = append(res.URLs, "https://"+h)
	}
	return res
}

// build renders and validates the compose file. Secret values never reach it,
// so it runs before any docker object is created.
func (d *Deployer) build(t *target, values stacks.Values) ([]byte, error) {
	if err := stacks.ValidateStack(t.def, t.stack); err != nil {
		return nil, domain.WrapEntity("stack", t.stack.Name, err)
	}
	file, err := t.def.Build(t.stack, values)
	if err != nil {
		return nil, domain.WrapEntity("stack", t.stack.Name, err)
	}
	if err := file.Validate(); err != nil {
		return nil, domain.WrapEntity("stack", t.stack.Name, err)
	}
	data, err := compose.Marshal(file)
	if err != nil {
		return nil, domain.WrapEntity("stack", t.stack.Name, err)
	}
	return data, nil
}

// store writes data to <outputDir>/<host>/<stack>.compose.yaml.
func (d *Deployer) store(t *target, data []byte, res *Result) error {
	dir := filepath.Join(d.outputDir, t.host.Name)
	if err := os.MkdirAll(dir, constants.DirPermissionOwner); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	path := filepath.Join(dir, t.stack.Name+constants.ComposeFileSuffix)
	if err := os.WriteFile(path, data, constants.FilePermissionOwnerRW); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	res.ComposePath = path
	res.ComposeHash = compose.Hash(data)
	logger.Debug("compose file written", "stack", t.stack.Name, "path", path, "sha256", res.ComposeHash)
	return nil
}

// Remove stops the stack and drops it from state. Volumes and secrets are kept.
func (d *Deployer) Remove(ctx context.Context, stackName string) error {
	t, err := d.resolve(stackName)
	if err != nil {
		return err
	}
	_, engine, err := d.connect(ctx, t.host)
	if err != nil {
		return err
	}
	defer engine.Close()

	if err := engine.RemoveStack(ctx, t.stack.Name); err != nil {
		if !errors.Is(err, domain.ErrStackNotFound) {
			return domain.WrapEntity("stack", t.stack.Name, err)
		}
		logger.Warn("stack not running, clearing state only", "stack", t.stack.Name, "host", t.host.Name)
	}

	return d.state.Update(ctx, func(st *repository.DeploymentState) error {
		st.Forget(t.stack.Name)
		return nil
	})
}

func (d *Deployer) Status(ctx context.Context, stackName string) ([]contract.ServiceStatus, error) {
	t, err := d.resolve(stackName)
	if err != nil {
		return nil, err
	}
	_, engine, err := d.connect(ctx, t.host)
	if err != nil {
		return nil, err
	}
	defer engine.Close()

	services, err := engine.StackServices(ctx, t.stack.Name)
	if err != nil {
		return nil, domain.WrapEntity("stack", t.stack.Name, err)
	}
	return services, nil
}

// Deployments returns the recorded deployments sorted by stack name.
func (d *Deployer) Deployments(ctx context.Context) ([]*repository.Deployment, error) {
	st, err := d.state.Load(ctx)
	if err != nil {
		return nil, err
	}
	return st.Sorted(), nil
}

// GeneratedSecrets returns the generated secret names in a stable order.
func (r *Result) GeneratedSecrets() []string {
	names := make([]string, 0, len(r.Generated))
	for name := range r.Generated {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
