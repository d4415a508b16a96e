package stacks

import (
	"fmt"

	"github.com/lite-lake/infra-swarmops/internal/compose"
	"github.com/lite-lake/infra-swarmops/internal/constants"
	"github.com/lite-lake/infra-swarmops/internal/domain/entity"
)

const redisImage = "redis:7-alpine"

type redis struct{ base }

func newRedis() *redis {
	return &redis{base{
		kind:        "redis",
		description: "Redis with password auth and AOF persistence",
		inputs: []Input{
			{Key: "password", Label: "Redis password", Required: true, Sensitive: true, Secret: "password", Generate: true},
		},
		volumes:   []string{"data"},
		singleton: true,
	}}
}

func (r *redis) Hostnames(*entity.Stack, Values) []string { return nil }

func (r *redis) Build(s *entity.Stack, _ Values) (*compose.File, error) {
	secret := s.ResourceName("password")
	f := newFile(r, s)
	f.Services[s.Name] = &compose.Service{
		Image:      redisImage,
		Entrypoint: []string{"sh", "-c"},
		// $$ survives stack deploy interpolation as a literal $ for the shell.
		Command: []string{
			fmt.Sprintf(`exec redis-server --appendonly yes --requirepass "$$(cat %s)"`, secretPath(secret)),
		},
		Volumes:  []string{s.ResourceName("data") + ":/data"},
		Secrets:  []string{secret},
		Networks: []string{constants.ProxyNetwork},
		Deploy: &compose.Deploy{
			Mode:          "replicated",
			Replicas:      replicas(1),
			Placement:     managerPlacement(),
			RestartPolicy: restartOnFailure(),
		},
	}
	return f, nil
}
