package contract

import "context"

type EngineInfo struct {
	ServerVersion string
	SwarmActive   bool
	SwarmManager  bool
	NodeID        string
}

type ServiceStatus struct {
	Name     string
	Mode     string
	Replicas string
	Image    string
	Ports    string
}

// Engine covers the docker objects a stack deployment depends on.
type Engine interface {
	Info(ctx context.Context) (*EngineInfo, error)
	SwarmInit(ctx context.Context, advertiseAddr string) error

	VolumeExists(ctx context.Context, name string) (bool, error)
	CreateVolume(ctx context.Context, name string, labels map[string]string) error

	SecretExists(ctx context.Context, name string) (bool, error)
	CreateSecret(ctx context.Context, name, value string, labels map[string]string) error
	RemoveSecret(ctx context.Context, name string) error

	NetworkExists(ctx context.Context, name string) (bool, error)
	CreateNetwork(ctx context.Context, name string, labels map[string]string) error

	DeployStack(ctx context.Context, name, composePath string) error
	RemoveStack(ctx context.Context, name string) error
	StackServices(ctx context.Context, name string) ([]ServiceStatus, error)

	Close() error
}
