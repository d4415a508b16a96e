package stacks

import (
	"github.com/lite-lake/infra-swarmops/internal/compose"
	"github.com/lite-lake/infra-swarmops/internal/constants"
	"github.com/lite-lake/infra-swarmops/internal/domain/entity"
)

const pgadminImage = "dpage/pgadmin4:8"

type pgadmin struct{ base }

func newPgAdmin() *pgadmin {
	return &pgadmin{base{
		kind:        "pgadmin",
		description: "pgAdmin web console",
		inputs: []Input{
			{Key: "email", Label: "Login email", Required: true, Validate: entity.ValidateEmail},
			{Key: "password", Label: "Login password", Required: true, Sensitive: true, Secret: "password", Generate: true},
		},
		volumes: []string{"data"},
	}}
}

func (p *pgadmin) Build(s *entity.Stack, v Values) (*compose.File, error) {
	if err := requireDomain(s); err != nil {
		return nil, err
	}
	secret := s.ResourceName("password")
	f := newFile(p, s)
	f.Services[s.Name] = &compose.Service{
		Image: pgadminImage,
		Environment: map[string]string{
			"PGADMIN_DEFAULT_EMAIL":         v.Get("email"),
			"PGADMIN_DEFAULT_PASSWORD_FILE": secretPath(secret),
		},
		Volumes:  []string{s.ResourceName("data") + ":/var/lib/pgadmin"},
		Secrets:  []string{secret},
		Networks: []string{constants.ProxyNetwork},
		Deploy: &compose.Deploy{
			Mode:     "replicated",
			Replicas: replicas(s.GetReplicas()),
			Labels: compose.TraefikLabels(compose.Route{
				Name: s.Name,
				Host: s.Domain,
				Port: 80,
			}),
			RestartPolicy: restartOnFailure(),
		},
	}
	return f, nil
}
