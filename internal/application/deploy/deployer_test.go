package deploy

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/lite-lake/infra-swarmops/internal/constants"
	"github.com/lite-lake/infra-swarmops/internal/domain"
	"github.com/lite-lake/infra-swarmops/internal/domain/contract"
	"github.com/lite-lake/infra-swarmops/internal/domain/entity"
	"github.com/lite-lake/infra-swarmops/internal/domain/repository"
	"github.com/lite-lake/infra-swarmops/internal/infrastructure/state"
	"github.com/lite-lake/infra-swarmops/internal/stacks"
)

type fakeEngine struct {
	infoErr     error
	swarmActive bool
	secrets     map[string]string
	volumes     map[string]bool
	networks    map[string]bool
	removeErr   error
	deployErr   error
	deployed    map[string]string
	services    []contract.ServiceStatus
	closed      bool
}

func newFakeEngine() *fakeEngine {
	return &fakeEngine{
		swarmActive: true,
		secrets:     make(map[string]string),
		volumes:     make(map[string]bool),
		networks:    make(map[string]bool),
		deployed:    make(map[string]string),
	}
}

func (f *fakeEngine) Info(context.Context) (*contract.EngineInfo, error) {
	if f.infoErr != nil {
		return nil, f.infoErr
	}
	return &contract.EngineInfo{ServerVersion: "28.5.2", SwarmActive: f.swarmActive, SwarmManager: f.swarmActive}, nil
}

func (f *fakeEngine) SwarmInit(context.Context, string) error { return nil }

func (f *fakeEngine) VolumeExists(_ context.Context, name string) (bool, error) {
	return f.volumes[name], nil
}

func (f *fakeEngine) CreateVolume(_ context.Context, name string, _ map[string]string) error {
	f.volumes[name] = true
	return nil
}

func (f *fakeEngine) SecretExists(_ context.Context, name string) (bool, error) {
	_, ok := f.secrets[name]
	return ok, nil
}

func (f *fakeEngine) CreateSecret(_ context.Context, name, value string, _ map[string]string) error {
	f.secrets[name] = value
	return nil
}

func (f *fakeEngine) RemoveSecret(_ context.Context, name string) error {
	delete(f.secrets, name)
	return nil
}

func (f *fakeEngine) NetworkExists(_ context.Context, name string) (bool, error) {
	return f.networks[name], nil
}

func (f *fakeEngine) CreateNetwork(_ context.Context, name string, _ map[string]string) error {
	f.networks[name] = true
	return nil
}

func (f *fakeEngine) DeployStack(_ context.Context, name, path string) error {
	if f.deployErr != nil {
		return f.deployErr
	}
	f.deployed[name] = path
	return nil
}

func (f *fakeEngine) RemoveStack(_ context.Context, name string) error {
	if f.removeErr != nil {
		return f.removeErr
	}
	delete(f.deployed, name)
	return nil
}

func (f *fakeEngine) StackServices(context.Context, string) ([]contract.ServiceStatus, error) {
	return f.services, nil
}

func (f *fakeEngine) Close() error {
	f.closed = true
	return nil
}

type fakeClient struct {
	dirs    []string
	uploads map[string]string
}

func (c *fakeClient) Run(string) (string, string, error) { return "", "", nil }

func (c *fakeClient) RunWithStdin(string, string) (string, string, error) { return "", "", nil }

func (c *fakeClient) MkdirAllSudoWithPerm(path, _ string) error {
	c.dirs = append(c.dirs, path)
	return nil
}

func (c *fakeClient) UploadFileSudoWithPerm(localPath, remotePath, _ string) error {
	data, err := os.ReadFile(localPath)
	if err != nil {
		return err
	}
	c.uploads[remotePath] = string(data)
	return nil
}

func (c *fakeClient) Close() error { return nil }

type fakePool struct {
	client *fakeClient
	err    error
	gets   int
}

func (p *fakePool) Get(*entity.Host) (contract.HostClient, error) {
	p.gets++
	if p.err != nil {
		return nil, p.err
	}
	return p.client, nil
}

type fixture struct {
	deployer *Deployer
	engine   *fakeEngine
	pool     *fakePool
	store    *state.FileStore
	outDir   string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	cfg := &entity.Config{
		Hosts: []entity.Host{{
			Name: "vps1",
			IP:   entity.HostIP{Public: "203.0.113.10"},
			SSH:  entity.HostSSH{Host: "203.0.113.10", User: "deploy"},
		}},
		Stacks: []entity.Stack{
			{Name: "db", Kind: "postgres", Host: "vps1"},
			{Name: "proxy", Kind: "traefik", Host: "vps1", Domain: "traefik.example.com"},
		},
	}
	dir := t.TempDir()
	outDir := filepath.Join(dir, constants.DeploymentsDir, "prod")
	store := state.NewFileStore(state.PathFor(dir, "prod"))
	engine := newFakeEngine()
	pool := &fakePool{client: &fakeClient{uploads: make(map[string]string)}}

	d := NewDeployer(cfg, stacks.DefaultRegistry(), store, pool, outDir)
	d.SetEngineFactory(func(context.Context, *entity.Host, contract.Runner) contract.Engine { return engine })
	return &fixture{deployer: d, engine: engine, pool: pool, store: store, outDir: outDir}
}

func TestDeployer_Deploy(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.deployer.Deploy(ctx, "db", Options{})
	if err != nil {
		t.Fatalf("Deploy() error = %v", err)
	}

	wantLocal := filepath.Join(f.outDir, "vps1", "db"+constants.ComposeFileSuffix)
	if res.ComposePath != wantLocal {
		t.Errorf("ComposePath = %s, want %s", res.ComposePath, wantLocal)
	}
	local, err := os.ReadFile(wantLocal)
	if err != nil {
		t.Fatalf("compose file not written: %v", err)
	}

	remote := constants.RemoteStackDir + "/db/" + constants.RemoteComposeFile
	if got := f.pool.client.uploads[remote]; got != string(local) {
		t.Errorf("uploaded compose differs from local file")
	}
	if f.engine.deployed["db"] != remote {
		t.Errorf("DeployStack path = %q, want %q", f.engine.deployed["db"], remote)
	}

	if !f.engine.networks[constants.ProxyNetwork] || !f.engine.volumes["db_data"] {
		t.Errorf("network or volume not ensured: %v %v", f.engine.networks, f.engine.volumes)
	}
	generated := res.Generated["db_password"]
	if len(generated) != 43 || f.engine.secrets["db_password"] != generated {
		t.Errorf("generated secret = %q, engine has %q", generated, f.engine.secrets["db_password"])
	}
	if !strings.Contains(string(local), "/run/secrets/db_password") {
		t.Errorf("compose does not reference the secret file:\n%s", local)
	}
	if strings.Contains(string(local), generated) {
		t.Error("secret value leaked into compose file")
	}

	st, err := f.store.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	dep := st.Deployments["db"]
	if dep == nil {
		t.Fatal("deployment not recorded")
	}
	if _, err := uuid.Parse(dep.ID); err != nil {
		t.Errorf("deployment id %q is not a uuid", dep.ID)
	}
	if dep.ComposeHash != res.ComposeHash || dep.Host != "vps1" || dep.Kind != "postgres" {
		t.Errorf("deployment = %+v", dep)
	}
	if !f.engine.closed {
		t.Error("engine not closed")
	}
}

func TestDeployer_ExistingSecretNotPrompted(t *testing.T) {
	f := newFixture(t)
	f.engine.secrets["db_password"] = "kept"

	var asked []string
	prompt := func(in stacks.Input) (string, error) {
		asked = append(asked, in.Key)
		return "", nil
	}
	res, err := f.deployer.Deploy(context.Background(), "db", Options{Prompt: prompt})
	if err != nil {
		t.Fatalf("Deploy() error = %v", err)
	}
	for _, k := range asked {
		if k == "password" {
			t.Error("prompted for a secret that already exists")
		}
	}
	if f.engine.secrets["db_password"] != "kept" || len(res.Generated) != 0 {
		t.Errorf("existing secret changed: %q, generated %v", f.engine.secrets["db_password"], res.Generated)
	}
}

func TestDeployer_RotateSecrets(t *testing.T) {
	f := newFixture(t)
	f.engine.secrets["db_password"] = "old"

	res, err := f.deployer.Deploy(context.Background(), "db", Options{RotateSecrets: true})
	if err != nil {
		t.Fatalf("Deploy() error = %v", err)
	}
	if got := f.engine.secrets["db_password"]; got == "old" || got != res.Generated["db_password"] {
		t.Errorf("secret not rotated: %q", got)
	}
}

func TestDeployer_Preflight(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(*fakeEngine)
		wantErr error
	}{
		{name: "docker down", setup: func(e *fakeEngine) { e.infoErr = errors.New("connection refused") }, wantErr: domain.ErrDockerUnavailable},
		{name: "swarm inactive", setup: func(e *fakeEngine) { e.swarmActive = false }, wantErr: domain.ErrSwarmInactive},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			tt.setup(f.engine)
			_, err := f.deployer.Deploy(context.Background(), "db", Options{})
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Deploy() error = %v, want %v", err, tt.wantErr)
			}
			if len(f.engine.deployed) != 0 || len(f.engine.secrets) != 0 {
				t.Error("objects touched after failed preflight")
			}
		})
	}
}

func TestDeployer_BuildFailureCreatesNothing(t *testing.T) {
	f := newFixture(t)
	f.deployer.cfg.Stacks = append(f.deployer.cfg.Stacks, entity.Stack{Name: "ui", Kind: "portainer", Host: "vps1"})

	for i := 0; i < 2; i++ {
		res, err := f.deployer.Deploy(context.Background(), "ui", Options{})
		if !errors.Is(err, domain.ErrRequired) {
			t.Fatalf("Deploy() error = %v, want ErrRequired", err)
		}
		if res != nil {
			t.Errorf("Deploy() result = %+v, want nil", res)
		}
	}
	if len(f.engine.secrets) != 0 || len(f.engine.volumes) != 0 || len(f.engine.networks) != 0 {
		t.Errorf("objects created for an unbuildable stack: secrets %v volumes %v networks %v",
			f.engine.secrets, f.engine.volumes, f.engine.networks)
	}
}

func TestDeployer_FailedDeployKeepsGeneratedSecrets(t *testing.T) {
	f := newFixture(t)
	f.engine.deployErr = errors.New("docker stack deploy: exit status 1")

	res, err := f.deployer.Deploy(context.Background(), "db", Options{})
	if err == nil {
		t.Fatal("Deploy() should fail")
	}
	if res == nil {
		t.Fatal("Deploy() should return the partial result")
	}
	value := f.engine.secrets["db_password"]
	if value == "" || res.Generated["db_password"] != value {
		t.Fatalf("generated = %v, engine has %q", res.Generated, value)
	}
	if out := GeneratedSecrets(res); !strings.Contains(out, "db_password") || !strings.Contains(out, value) {
		t.Errorf("GeneratedSecrets() = %q", out)
	}
	if GeneratedSecrets(nil) != "" {
		t.Error("GeneratedSecrets(nil) should be empty")
	}
}

func TestDeployer_DryRun(t *testing.T) {
	f := newFixture(t)
	f.pool.err = errors.New("must not dial")

	res, err := f.deployer.Deploy(context.Background(), "db", Options{DryRun: true})
	if err != nil {
		t.Fatalf("Deploy(dry-run) error = %v", err)
	}
	if !res.DryRun || f.pool.gets != 0 {
		t.Errorf("dry run connected to host: gets=%d", f.pool.gets)
	}
	if _, err := os.Stat(res.ComposePath); err != nil {
		t.Errorf("compose file not written: %v", err)
	}
	if len(f.engine.deployed) != 0 {
		t.Error("dry run deployed")
	}
}

func TestDeployer_RenderMissingInput(t *testing.T) {
	f := newFixture(t)
	_, err := f.deployer.Render(context.Background(), "proxy", func(stacks.Input) (string, error) { return "", nil })
	if !errors.Is(err, domain.ErrRequired) {
		t.Fatalf("Render() error = %v, want ErrRequired", err)
	}
}

func TestDeployer_UnknownStack(t *testing.T) {
	f := newFixture(t)
	if _, err := f.deployer.Deploy(context.Background(), "cache", Options{}); !errors.Is(err, domain.ErrStackNotFound) {
		t.Fatalf("Deploy() error = %v, want ErrStackNotFound", err)
	}
}

func TestDeployer_Remove(t *testing.T) {
	tests := []struct {
		name      string
		removeErr error
		wantErr   error
		wantKept  bool
	}{
		{name: "running"},
		{name: "already gone", removeErr: domain.ErrStackNotFound},
		{name: "engine failure", removeErr: domain.ErrStackRemoveFailed, wantErr: domain.ErrStackRemoveFailed, wantKept: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			ctx := context.Background()
			if _, err := f.deployer.Deploy(ctx, "db", Options{}); err != nil {
				t.Fatal(err)
			}
			f.engine.removeErr = tt.removeErr

			err := f.deployer.Remove(ctx, "db")
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Remove() error = %v, want %v", err, tt.wantErr)
				}
			} else if err != nil {
				t.Fatalf("Remove() error = %v", err)
			}

			deps, err := f.deployer.Deployments(ctx)
			if err != nil {
				t.Fatal(err)
			}
			if kept := len(deps) == 1; kept != tt.wantKept {
				t.Errorf("deployment kept = %v, want %v", kept, tt.wantKept)
			}
			if !f.engine.volumes["db_data"] {
				t.Error("volume removed with the stack")
			}
		})
	}
}

func TestDeployer_Status(t *testing.T) {
	f := newFixture(t)
	f.engine.services = []contract.ServiceStatus{{Name: "db_db", Mode: "replicated", Replicas: "1/1", Image: "postgres:16-alpine"}}

	got, err := f.deployer.Status(context.Background(), "db")
	if err != nil {
		t.Fatalf("Status() error = %v", err)
	}
	if len(got) != 1 || got[0].Replicas != "1/1" {
		t.Errorf("Status() = %+v", got)
	}
}

func TestInstructions(t *testing.T) {
	res := &Result{
		Stack:     "proxy",
		Kind:      "traefik",
		Host:      "vps1",
		URLs:      []string{"https://traefik.example.com"},
		Generated: map[string]string{"proxy_token": "s3cr3t"},
		Deployment: &repository.Deployment{
			Stack: "proxy",
		},
	}
	out := Instructions(res)
	for _, want := range []string{"Deployed proxy (traefik) to host vps1", "https://traefik.example.com", "proxy_token", "s3cr3t"} {
		if !strings.Contains(out, want) {
			t.Errorf("Instructions() missing %q:\n%s", want, out)
		}
	}
}
