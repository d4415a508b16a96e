package stacks

import (
	"github.com/lite-lake/infra-swarmops/internal/compose"
	"github.com/lite-lake/infra-swarmops/internal/constants"
	"github.com/lite-lake/infra-swarmops/internal/domain/entity"
)

const postgresImage = "postgres:16-alpine"

type postgres struct{ base }

func newPostgres() *postgres {
	return &postgres{base{
		kind:        "postgres",
		description: "PostgreSQL database",
		inputs: []Input{
			{Key: "user", Label: "Database user", Default: "postgres", Required: true},
			{Key: "database", Label: "Database name", Default: "postgres", Required: true},
			{Key: "password", Label: "Database password", Required: true, Sensitive: true, Secret: "password", Generate: true},
		},
		volumes:   []string{"data"},
		singleton: true,
	}}
}

// Hostnames is empty: postgres is only reachable on the proxy network.
func (p *postgres) Hostnames(*entity.Stack, Values) []string { return nil }

func (p *postgres) Build(s *entity.Stack, v Values) (*compose.File, error) {
	secret := s.ResourceName("password")
	f := newFile(p, s)
	f.Services[s.Name] = &compose.Service{
		Image: postgresImage,
		Environment: map[string]string{
			"POSTGRES_USER":          v.Get("user"),
			"POSTGRES_DB":            v.Get("database"),
			"POSTGRES_PASSWORD_FILE": secretPath(secret),
		},
		Volumes:  []string{s.ResourceName("data") + ":/var/lib/postgresql/data"},
		Secrets:  []string{secret},
		Networks: []string{constants.ProxyNetwork},
		HealthCheck: &compose.HealthCheck{
			Test:     []string{"CMD-SHELL", "pg_isready -U " + v.Get("user")},
			Interval: "10s",
			Timeout:  "5s",
			Retries:  5,
		},
		Deploy: &compose.Deploy{
			Mode:          "replicated",
			Replicas:      replicas(1),
			Placement:     managerPlacement(),
			RestartPolicy: restartOnFailure(),
		},
	}
	return f, nil
}
