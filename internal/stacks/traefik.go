package stacks

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/lite-lake/infra-swarmops/internal/compose"
	"github.com/lite-lake/infra-swarmops/internal/constants"
	"github.com/lite-lake/infra-swarmops/internal/domain/entity"
)

const traefikImage = "traefik:v3.1"

type traefik struct{ base }

func newTraefik() *traefik {
	return &traefik{base{
		kind:        "traefik",
		description: "Reverse proxy with Let's Encrypt certificates",
		inputs: []Input{
			{Key: "email", Label: "Let's Encrypt email", Required: true, Validate: entity.ValidateEmail},
			{Key: "dashboard_user", Label: "Dashboard user", Default: "admin", Required: true},
			{Key: "dashboard_password", Label: "Dashboard password", Required: true, Sensitive: true},
		},
		volumes:   []string{"certificates"},
		singleton: true,
	}}
}

func (t *traefik) Build(s *entity.Stack, v Values) (*compose.File, error) {
	if err := requireDomain(s); err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(v.Get("dashboard_password")), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash dashboard password: %w", err)
	}

	auth := s.Name + "-auth"
	labels := compose.TraefikLabels(compose.Route{
		Name:        s.Name + "-dashboard",
		Host:        s.Domain,
		Port:        8080,
		Service:     "api@internal",
		Middlewares: []string{auth},
	})
	labels["traefik.http.middlewares."+auth+".basicauth.users"] =
		compose.EscapeDollar(v.Get("dashboard_user") + ":" + string(hash))

	f := newFile(t, s)
	f.Services[s.Name] = &compose.Service{
		Image: traefikImage,
		Command: []string{
			"--providers.swarm=true",
			"--providers.swarm.endpoint=unix:///var/run/docker.sock",
			"--providers.swarm.exposedByDefault=false",
			"--providers.swarm.network=" + constants.ProxyNetwork,
			"--entrypoints.web.address=:80",
			"--entrypoints.web.http.redirections.entrypoint.to=" + compose.EntrypointWebSecure,
			"--entrypoints.web.http.redirections.entrypoint.scheme=https",
			"--entrypoints.websecure.address=:443",
			"--certificatesresolvers." + compose.CertResolver + ".acme.httpchallenge=true",
			"--certificatesresolvers." + compose.CertResolver + ".acme.httpchallenge.entrypoint=" + compose.EntrypointWeb,
			"--certificatesresolvers." + compose.CertResolver + ".acme.email=" + v.Get("email"),
			"--certificatesresolvers." + compose.CertResolver + ".acme.storage=/letsencrypt/acme.json",
			"--api.dashboard=true",
			"--log.level=INFO",
			"--accesslog=true",
		},
		Ports: []compose.Port{
			{Target: 80, Published: 80, Protocol: "tcp", Mode: "host"},
			{Target: 443, Published: 443, Protocol: "tcp", Mode: "host"},
		},
		Volumes: []string{
			"/var/run/docker.sock:/var/run/docker.sock:ro",
			s.ResourceName("certificates") + ":/letsencrypt",
		},
		Networks: []string{constants.ProxyNetwork},
		Deploy: &compose.Deploy{
			Mode:          "replicated",
			Replicas:      replicas(1),
			Placement:     managerPlacement(),
			Labels:        labels,
			RestartPolicy: restartOnFailure(),
		},
	}
	return f, nil
}
