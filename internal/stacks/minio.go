package stacks

import (
	"github.com/lite-lake/infra-swarmops/internal/compose"
	"github.com/lite-lake/infra-swarmops/internal/constants"
	"github.com/lite-lake/infra-swarmops/internal/domain/entity"
)

const minioImage = "minio/minio:RELEASE.2024-10-13T13-34-11Z"

type minio struct{ base }

func newMinio() *minio {
	return &minio{base{
		kind:        "minio",
		description: "MinIO object storage with console",
		inputs: []Input{
			{Key: "api_domain", Label: "S3 API hostname", Required: true, Validate: entity.ValidateHostname},
			{Key: "root_user", Label: "Root user", Default: "admin", Required: true, Secret: "root_user"},
			{Key: "root_password", Label: "Root password", Required: true, Sensitive: true, Secret: "root_password", Generate: true},
		},
		volumes:   []string{"data"},
		singleton: true,
	}}
}

func (m *minio) Hostnames(s *entity.Stack, v Values) []string {
	var hosts []string
	if s.Domain != "" {
		hosts = append(hosts, s.Domain)
	}
	if api := v.Get("api_domain"); api != "" {
		hosts = append(hosts, api)
	}
	return hosts
}

func (m *minio) Build(s *entity.Stack, v Values) (*compose.File, error) {
	if err := requireDomain(s); err != nil {
		return nil, err
	}
	user := s.ResourceName("root_user")
	password := s.ResourceName("root_password")

	f := newFile(m, s)
	f.Services[s.Name] = &compose.Service{
		Image:   minioImage,
		Command: []string{"server", "/data", "--console-address", ":9001"},
		Environment: map[string]string{
			"MINIO_ROOT_USER_FILE":       secretPath(user),
			"MINIO_ROOT_PASSWORD_FILE":   secretPath(password),
			"MINIO_BROWSER_REDIRECT_URL": "https://" + s.Domain,
		},
		Volumes:  []string{s.ResourceName("data") + ":/data"},
		Secrets:  []string{user, password},
		Networks: []string{constants.ProxyNetwork},
		Deploy: &compose.Deploy{
			Mode:      "replicated",
			Replicas:  replicas(1),
			Placement: managerPlacement(),
			Labels: compose.TraefikLabels(
				compose.Route{Name: s.Name + "-console", Host: s.Domain, Port: 9001},
				compose.Route{Name: s.Name + "-api", Host: v.Get("api_domain"), Port: 9000},
			),
			RestartPolicy: restartOnFailure(),
		},
	}
	return f, nil
}
