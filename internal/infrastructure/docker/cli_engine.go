package docker

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/lite-lake/infra-swarmops/internal/domain"
	"github.com/lite-lake/infra-swarmops/internal/domain/contract"
	"github.com/lite-lake/infra-swarmops/internal/infrastructure/ssh"
)

var _ contract.Engine = (*CLIEngine)(nil)

// CLIEngine drives the docker CLI through a Runner, so it works over SSH
// as well as on the local machine.
type CLIEngine struct {
	runner contract.Runner
}

func NewCLIEngine(runner contract.Runner) *CLIEngine {
	return &CLIEngine{runner: runner}
}

type NetworkInfo struct {
	Name   string
	Driver string
	Scope  string
}

func dockerCmd(args ...string) string {
	return "sudo docker " + ssh.ShellJoin(args...)
}

func labelArgs(labels map[string]string) []string {
	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	args := make([]string, 0, 2*len(keys))
	for _, k := range keys {
		args = append(args, "--label", k+"="+labels[k])
	}
	return args
}

func isNotFound(stderr string) bool {
	s := strings.ToLower(stderr)
	return strings.Contains(s, "no such") || strings.Contains(s, "not found")
}

func (e *CLIEngine) Info(_ context.Context) (*contract.EngineInfo, error) {
	stdout, stderr, err := e.runner.Run(dockerCmd("info", "--format",
		"{{.ServerVersion}}|{{.Swarm.LocalNodeState}}|{{.Swarm.ControlAvailable}}|{{.Swarm.NodeID}}"))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrDockerUnavailable, domain.NewCommandError("docker info", stderr, err))
	}
	parts := strings.Split(strings.TrimSpace(stdout), "|")
	if len(parts) < 4 {
		return nil, fmt.Errorf("%w: unexpected docker info output %q", domain.ErrDockerUnavailable, stdout)
	}
	return &contract.EngineInfo{
		ServerVersion: parts[0],
		SwarmActive:   parts[1] == "active",
		SwarmManager:  parts[2] == "true",
		NodeID:        parts[3],
	}, nil
}

func (e *CLIEngine) SwarmInit(_ context.Context, advertiseAddr string) error {
	args := []string{"swarm", "init"}
	if advertiseAddr != "" {
		args = append(args, "--advertise-addr", advertiseAddr)
	}
	if _, stderr, err := e.runner.Run(dockerCmd(args...)); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrSwarmInitFailed, domain.NewCommandError("docker swarm init", stderr, err))
	}
	return nil
}

func (e *CLIEngine) VolumeExists(_ context.Context, name string) (bool, error) {
	_, stderr, err := e.runner.Run(dockerCmd("volume", "inspect", "--format", "{{.Name}}", name))
	if err == nil {
		return true, nil
	}
	if isNotFound(stderr) {
		return false, nil
	}
	return false, fmt.Errorf("%w: %w", domain.ErrVolumeCheckFailed, domain.NewCommandError("docker volume inspect "+name, stderr, err))
}

func (e *CLIEngine) CreateVolume(_ context.Context, name string, labels map[string]string) error {
	args := append([]string{"volume", "create"}, labelArgs(labels)...)
	args = append(args, name)
	if _, stderr, err := e.runner.Run(dockerCmd(args...)); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrVolumeCreate, domain.NewCommandError("docker volume create "+name, stderr, err))
	}
	return nil
}

func (e *CLIEngine) SecretExists(_ context.Context, name string) (bool, error) {
	_, stderr, err := e.runner.Run(dockerCmd("secret", "inspect", "--format", "{{.ID}}", name))
	if err == nil {
		return true, nil
	}
	if isNotFound(stderr) {
		return false, nil
	}
	return false, fmt.Errorf("%w: %w", domain.ErrSecretCheckFailed, domain.NewCommandError("docker secret inspect "+name, stderr, err))
}

// CreateSecret pipes the value through stdin so it never shows up in a process list.
func (e *CLIEngine) CreateSecret(_ context.Context, name, value string, labels map[string]string) error {
	args := append([]string{"secret", "create"}, labelArgs(labels)...)
	args = append(args, name, "-")
	if _, stderr, err := e.runner.RunWithStdin(value, dockerCmd(args...)); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrSecretCreate, domain.NewCommandError("docker secret create "+name, stderr, err))
	}
	return nil
}

func (e *CLIEngine) RemoveSecret(_ context.Context, name string) error {
	_, stderr, err := e.runner.Run(dockerCmd("secret", "rm", name))
	if err == nil {
		return nil
	}
	if strings.Contains(stderr, "in use") {
		return fmt.Errorf("%w: %s", domain.ErrSecretInUse, name)
	}
	return fmt.Errorf("%w: %w", domain.ErrSecretRemove, domain.NewCommandError("docker secret rm "+name, stderr, err))
}

func (e *CLIEngine) ListNetworks() ([]NetworkInfo, error) {
	stdout, stderr, err := e.runner.Run(dockerCmd("network", "ls", "--format", "{{.Name}}|{{.Driver}}|{{.Scope}}"))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrNetworkCheck, domain.NewCommandError("docker network ls", stderr, err))
	}

	var networks []NetworkInfo
	for _, line := range strings.Split(strings.TrimSpace(stdout), "\n") {
		if line == "" {
			continue
		}
		parts := strings.Split(line, "|")
		if len(parts) >= 3 {
			networks = append(networks, NetworkInfo{
				Name:   strings.TrimSpace(parts[0]),
				Driver: strings.TrimSpace(parts[1]),
				Scope:  strings.TrimSpace(parts[2]),
			})
		}
	}
	return networks, nil
}

func (e *CLIEngine) NetworkExists(_ context.Context, name string) (bool, error) {
	networks, err := e.ListNetworks()
	if err != nil {
		return false, err
	}
	for _, n := range networks {
		if n.Name == name {
			return true, nil
		}
	}
	return false, nil
}

func (e *CLIEngine) CreateNetwork(_ context.Context, name string, labels map[string]string) error {
	args := append([]string{"network", "create", "--driver", "overlay", "--attachable"}, labelArgs(labels)...)
	args = append(args, name)
	if _, stderr, err := e.runner.Run(dockerCmd(args...)); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrNetworkCreate, domain.NewCommandError("docker network create "+name, stderr, err))
	}
	return nil
}

func (e *CLIEngine) DeployStack(_ context.Context, name, composePath string) error {
	_, stderr, err := e.runner.Run(dockerCmd("stack", "deploy", "-c", composePath, "--with-registry-auth", name))
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrStackDeployFailed, domain.NewCommandError("docker stack deploy "+name, stderr, err))
	}
	return nil
}

func (e *CLIEngine) RemoveStack(_ context.Context, name string) error {
	stdout, stderr, err := e.runner.Run(dockerCmd("stack", "rm", name))
	if strings.Contains(stdout+stderr, "Nothing found in stack") {
		return fmt.Errorf("%w: %s", domain.ErrStackNotFound, name)
	}
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrStackRemoveFailed, domain.NewCommandError("docker stack rm "+name, stderr, err))
	}
	return nil
}

func (e *CLIEngine) StackServices(_ context.Context, name string) ([]contract.ServiceStatus, error) {
	stdout, stderr, err := e.runner.Run(dockerCmd("stack", "services", "--format",
		"{{.Name}}|{{.Mode}}|{{.Replicas}}|{{.Image}}|{{.Ports}}", name))
	if strings.Contains(stdout+stderr, "Nothing found in stack") {
		return nil, fmt.Errorf("%w: %s", domain.ErrStackNotFound, name)
	}
	if err != nil {
		return nil, domain.NewCommandError("docker stack services "+name, stderr, err)
	}

	var services []contract.ServiceStatus
	for _, line := range strings.Split(strings.TrimSpace(stdout), "\n") {
		parts := strings.Split(line, "|")
		if len(parts) < 4 {
			continue
		}
		svc := contract.ServiceStatus{
			Name:     parts[0],
			Mode:     parts[1],
			Replicas: parts[2],
			Image:    parts[3],
		}
		if len(parts) > 4 {
			svc.Ports = parts[4]
		}
		services = append(services, svc)
	}
	return services, nil
}

// Close is a no-op: the runner belongs to the caller.
func (e *CLIEngine) Close() error {
	return nil
}
