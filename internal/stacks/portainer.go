package stacks

import (
	"github.com/lite-lake/infra-swarmops/internal/compose"
	"github.com/lite-lake/infra-swarmops/internal/constants"
	"github.com/lite-lake/infra-swarmops/internal/domain/entity"
)

const (
	portainerImage      = "portainer/portainer-ce:2.21.4"
	portainerAgentImage = "portainer/agent:2.21.4"
	portainerAgentNet   = "agent_network"
)

type portainer struct{ base }

func newPortainer() *portainer {
	return &portainer{base{
		kind:        "portainer",
		description: "Portainer CE with a swarm-wide agent",
		inputs: []Input{
			{Key: "admin_password", Label: "Admin password", Required: true, Sensitive: true, Secret: "admin_password", Generate: true},
		},
		volumes:   []string{"data"},
		singleton: true,
	}}
}

func (p *portainer) Build(s *entity.Stack, _ Values) (*compose.File, error) {
	if err := requireDomain(s); err != nil {
		return nil, err
	}
	secret := s.ResourceName("admin_password")
	agent := s.Name + "_agent"

	f := newFile(p, s)
	f.AddOverlayNetwork(portainerAgentNet)
	f.Services["agent"] = &compose.Service{
		Image: portainerAgentImage,
		Volumes: []string{
			"/var/run/docker.sock:/var/run/docker.sock",
			"/var/lib/docker/volumes:/var/lib/docker/volumes",
		},
		Networks: []string{portainerAgentNet},
		Deploy: &compose.Deploy{
			Mode:      "global",
			Placement: &compose.Placement{Constraints: []string{"node.platform.os == linux"}},
		},
	}
	f.Services[s.Name] = &compose.Service{
		Image: portainerImage,
		Command: []string{
			"-H", "tcp://tasks." + agent + ":9001",
			"--tlsskipverify",
			"--admin-password-file", secretPath(secret),
		},
		Volumes:  []string{s.ResourceName("data") + ":/data"},
		Secrets:  []string{secret},
		Networks: []string{portainerAgentNet, constants.ProxyNetwork},
		Deploy: &compose.Deploy{
			Mode:      "replicated",
			Replicas:  replicas(1),
			Placement: managerPlacement(),
			Labels: compose.TraefikLabels(compose.Route{
				Name: s.Name,
				Host: s.Domain,
				Port: 9000,
			}),
		},
	}
	return f, nil
}
