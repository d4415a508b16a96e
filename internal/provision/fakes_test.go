package provision

import (
	"context"
	"errors"
	"os"
	"strings"

	"github.com/lite-lake/infra-swarmops/internal/domain/contract"
)

type response struct {
	stdout string
	stderr string
	err    error
}

type fakeClient struct {
	responses map[string]response
	commands  []string
	uploads   map[string]string
	perms     map[string]string
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		responses: make(map[string]response),
		uploads:   make(map[string]string),
		perms:     make(map[string]string),
	}
}

// on registers a response for commands containing fragment once unquoted.
func (f *fakeClient) on(fragment string, r response) *fakeClient {
	f.responses[fragment] = r
	return f
}

func (f *fakeClient) Run(cmd string) (string, string, error) {
	f.commands = append(f.commands, cmd)
	plain := strings.ReplaceAll(cmd, "'", "")
	for frag, r := range f.responses {
		if strings.Contains(plain, frag) {
			return r.stdout, r.stderr, r.err
		}
	}
	return "", "", nil
}

func (f *fakeClient) RunWithStdin(_ string, cmd string) (string, string, error) {
	return f.Run(cmd)
}

func (f *fakeClient) MkdirAllSudoWithPerm(path, perm string) error {
	f.commands = append(f.commands, "mkdir "+path)
	return nil
}

func (f *fakeClient) UploadFileSudoWithPerm(localPath, remotePath, perm string) error {
	data, err := os.ReadFile(localPath)
	if err != nil {
		return err
	}
	f.uploads[remotePath] = string(data)
	f.perms[remotePath] = perm
	return nil
}

func (f *fakeClient) Close() error { return nil }

// ran reports whether any command contained fragment once unquoted.
func (f *fakeClient) ran(fragment string) bool {
	for _, c := range f.commands {
		if strings.Contains(strings.ReplaceAll(c, "'", ""), fragment) {
			return true
		}
	}
	return false
}

var errExit = errors.New("exit status 1")

type fakeEngine struct {
	swarmActive bool
	manager     bool
	infoErr     error
	networks    map[string]bool
	calls       []string
}

func newFakeEngine() *fakeEngine {
	return &fakeEngine{networks: make(map[string]bool)}
}

func (f *fakeEngine) Info(context.Context) (*contract.EngineInfo, error) {
	if f.infoErr != nil {
		return nil, f.infoErr
	}
	return &contract.EngineInfo{ServerVersion: "28.5.2", SwarmActive: f.swarmActive, SwarmManager: f.manager}, nil
}

func (f *fakeEngine) SwarmInit(_ context.Context, addr string) error {
	f.calls = append(f.calls, "swarm init "+addr)
	f.swarmActive, f.manager = true, true
	return nil
}

func (f *fakeEngine) VolumeExists(context.Context, string) (bool, error) { return false, nil }

func (f *fakeEngine) CreateVolume(context.Context, string, map[string]string) error { return nil }

func (f *fakeEngine) SecretExists(context.Context, string) (bool, error) { return false, nil }

func (f *fakeEngine) CreateSecret(context.Context, string, string, map[string]string) error {
	return nil
}

func (f *fakeEngine) RemoveSecret(context.Context, string) error { return nil }

func (f *fakeEngine) NetworkExists(_ context.Context, name string) (bool, error) {
	return f.networks[name], nil
}

func (f *fakeEngine) CreateNetwork(_ context.Context, name string, _ map[string]string) error {
	f.calls = append(f.calls, "network create "+name)
	f.networks[name] = true
	return nil
}

func (f *fakeEngine) DeployStack(context.Context, string, string) error { return nil }

func (f *fakeEngine) RemoveStack(context.Context, string) error { return nil }

func (f *fakeEngine) StackServices(context.Context, string) ([]contract.ServiceStatus, error) {
	return nil, nil
}

func (f *fakeEngine) Close() error { return nil }
