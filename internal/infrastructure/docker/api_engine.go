package docker

import (
	"context"
	"fmt"
	"strings"

	"github.com/containerd/errdefs"
	"github.com/docker/docker/api/types/network"
	"github.com/docker/docker/api/types/swarm"
	"github.com/docker/docker/api/types/volume"
	"github.com/docker/docker/client"

	"github.com/lite-lake/infra-swarmops/internal/domain"
	"github.com/lite-lake/infra-swarmops/internal/domain/contract"
)

const swarmListenAddr = "0.0.0.0:2377"

var _ contract.Engine = (*APIEngine)(nil)

// APIEngine talks to the local daemon through the Engine API. Stacks only
// exist on the CLI side, so stack operations go through the CLI delegate.
type APIEngine struct {
	cli    *client.Client
	stacks *CLIEngine
}

func NewAPIEngine(stackRunner contract.Runner) (*APIEngine, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrDockerUnavailable, err)
	}
	return &APIEngine{cli: cli, stacks: NewCLIEngine(stackRunner)}, nil
}

func (e *APIEngine) Info(ctx context.Context) (*contract.EngineInfo, error) {
	info, err := e.cli.Info(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrDockerUnavailable, err)
	}
	return &contract.EngineInfo{
		ServerVersion: info.ServerVersion,
		SwarmActive:   info.Swarm.LocalNodeState == swarm.LocalNodeStateActive,
		SwarmManager:  info.Swarm.ControlAvailable,
		NodeID:        info.Swarm.NodeID,
	}, nil
}

func (e *APIEngine) SwarmInit(ctx context.Context, advertiseAddr string) error {
	_, err := e.cli.SwarmInit(ctx, swarm.InitRequest{
		ListenAddr:    swarmListenAddr,
		AdvertiseAddr: advertiseAddr,
	})
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrSwarmInitFailed, err)
	}
	return nil
}

func (e *APIEngine) VolumeExists(ctx context.Context, name string) (bool, error) {
	_, err := e.cli.VolumeInspect(ctx, name)
	if err == nil {
		return true, nil
	}
	if errdefs.IsNotFound(err) {
		return false, nil
	}
	return false, fmt.Errorf("%w: %s: %w", domain.ErrVolumeCheckFailed, name, err)
}

func (e *APIEngine) CreateVolume(ctx context.Context, name string, labels map[string]string) error {
	_, err := e.cli.VolumeCreate(ctx, volume.CreateOptions{Name: name, Labels: labels})
	if err != nil {
		return fmt.Errorf("%w: %s: %w", domain.ErrVolumeCreate, name, err)
	}
	return nil
}

func (e *APIEngine) SecretExists(ctx context.Context, name string) (bool, error) {
	_, _, err := e.cli.SecretInspectWithRaw(ctx, name)
	if err == nil {
		return true, nil
	}
	if errdefs.IsNotFound(err) {
		return false, nil
	}
	return false, fmt.Errorf("%w: %s: %w", domain.ErrSecretCheckFailed, name, err)
}

func (e *APIEngine) CreateSecret(ctx context.Context, name, value string, labels map[string]string) error {
	_, err := e.cli.SecretCreate(ctx, swarm.SecretSpec{
		Annotations: swarm.Annotations{Name: name, Labels: labels},
		Data:        []byte(value),
	})
	if err != nil {
		return fmt.Errorf("%w: %s: %w", domain.ErrSecretCreate, name, err)
	}
	return nil
}

func (e *APIEngine) RemoveSecret(ctx context.Context, name string) error {
	err := e.cli.SecretRemove(ctx, name)
	if err == nil {
		return nil
	}
	if strings.Contains(err.Error(), "in use") {
		return fmt.Errorf("%w: %s", domain.ErrSecretInUse, name)
	}
	return fmt.Errorf("%w: %s: %w", domain.ErrSecretRemove, name, err)
}

func (e *APIEngine) NetworkExists(ctx context.Context, name string) (bool, error) {
	_, err := e.cli.NetworkInspect(ctx, name, network.InspectOptions{})
	if err == nil {
		return true, nil
	}
	if errdefs.IsNotFound(err) {
		return false, nil
	}
	return false, fmt.Errorf("%w: %s: %w", domain.ErrNetworkCheck, name, err)
}

func (e *APIEngine) CreateNetwork(ctx context.Context, name string, labels map[string]string) error {
	_, err := e.cli.NetworkCreate(ctx, name, network.CreateOptions{
		Driver:     "overlay",
		Attachable: true,
		Labels:     labels,
	})
	if err != nil {
		return fmt.Errorf("%w: %s: %w", domain.ErrNetworkCreate, name, err)
	}
	return nil
}

func (e *APIEngine) DeployStack(ctx context.Context, name, composePath string) error {
	return e.stacks.DeployStack(ctx, name, composePath)
}

func (e *APIEngine) RemoveStack(ctx context.Context, name string) error {
	return e.stacks.RemoveStack(ctx, name)
}

func (e *APIEngine) StackServices(ctx context.Context, name string) ([]contract.ServiceStatus, error) {
	return e.stacks.StackServices(ctx, name)
}

func (e *APIEngine) Close() error {
	return e.cli.Close()
}
