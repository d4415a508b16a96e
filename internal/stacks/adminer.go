package stacks

import (
	"github.com/lite-lake/infra-swarmops/internal/compose"
	"github.com/lite-lake/infra-swarmops/internal/constants"
	"github.com/lite-lake/infra-swarmops/internal/domain/entity"
)

const adminerImage = "adminer:4"

type adminer struct{ base }

func newAdminer() *adminer {
	return &adminer{base{
		kind:        "adminer",
		description: "Adminer database console",
		inputs: []Input{
			{Key: "default_server", Label: "Default database server", Default: "postgres_postgres"},
		},
	}}
}

func (a *adminer) Build(s *entity.Stack, v Values) (*compose.File, error) {
	if err := requireDomain(s); err != nil {
		return nil, err
	}
	env := map[string]string{}
	if server := v.Get("default_server"); server != "" {
		env["ADMINER_DEFAULT_SERVER"] = server
	}
	f := newFile(a, s)
	f.Services[s.Name] = &compose.Service{
		Image:       adminerImage,
		Environment: env,
		Networks:    []string{constants.ProxyNetwork},
		Deploy: &compose.Deploy{
			Mode:     "replicated",
			Replicas: replicas(s.GetReplicas()),
			Labels: compose.TraefikLabels(compose.Route{
				Name: s.Name,
				Host: s.Domain,
				Port: 8080,
			}),
		},
	}
	return f, nil
}
