package stacks

import (
	"fmt"

	"github.com/lite-lake/infra-swarmops/internal/compose"
	"github.com/lite-lake/infra-swarmops/internal/constants"
	"github.com/lite-lake/infra-swarmops/internal/domain"
	"github.com/lite-lake/infra-swarmops/internal/domain/entity"
)

// Input is one value a stack kind needs before it can be rendered.
// Secret holds the docker secret suffix when the value is stored as a swarm secret.
type Input struct {
	Key       string
	Label     string
	Default   string
	Required  bool
	Sensitive bool
	Secret    string
	Generate  bool
	Validate  func(string) error
}

func (i Input) IsSecret() bool {
	return i.Secret != ""
}

type Values map[string]string

func (v Values) Get(key string) string {
	return v[key]
}

type Definition interface {
	Kind() string
	Description() string
	Inputs() []Input
	Volumes(s *entity.Stack) []string
	Secrets(s *entity.Stack) []string
	Hostnames(s *entity.Stack, v Values) []string
	// Singleton kinds run exactly one replica.
	Singleton() bool
	Build(s *entity.Stack, v Values) (*compose.File, error)
}

// SecretInput pairs a docker secret name with the input that feeds it.
type SecretInput struct {
	Name  string
	Input Input
}

type base struct {
	kind        string
	description string
	inputs      []Input
	volumes     []string
	singleton   bool
}

func (b base) Kind() string { return b.kind }
func (b base) Description() string { return b.description }
func (b base) Singleton() bool { return b.singleton }

func (b base) Inputs() []Input {
	out := make([]Input, len(b.inputs))
	copy(out, b.inputs)
	return out
}

func (b base) Volumes(s *entity.Stack) []string {
	names := make([]string, 0, len(b.volumes))
	for _, suffix := range b.volumes {
		names = append(names, s.ResourceName(suffix))
	}
	return names
}

func (b base) Secrets(s *entity.Stack) []string {
	var names []string
	for _, in := range b.inputs {
		if in.IsSecret() {
			names = append(names, s.ResourceName(in.Secret))
		}
	}
	return names
}

func (b base) Hostnames(s *entity.Stack, _ Values) []string {
	if s.Domain == "" {
		return nil
	}
	return []string{s.Domain}
}

// SecretInputs lists the secret-backed inputs of def with their docker names.
func SecretInputs(def Definition, s *entity.Stack) []SecretInput {
	var out []SecretInput
	for _, in := range def.Inputs() {
		if in.IsSecret() {
			out = append(out, SecretInput{Name: s.ResourceName(in.Secret), Input: in})
		}
	}
	return out
}

// ValidateValues checks required plain inputs and runs per-input validators.
// Secret-backed inputs may be empty here; an existing swarm secret satisfies them.
func ValidateValues(def Definition, v Values) error {
	for _, in := range def.Inputs() {
		val := v[in.Key]
		if val == "" {
			if in.Required && !in.IsSecret() {
				return domain.RequiredField(in.Key)
			}
			continue
		}
		if in.Validate != nil {
			if err := in.Validate(val); err != nil {
				return fmt.Errorf("%s: %w", in.Key, err)
			}
		}
	}
	return nil
}

// newFile starts a compose file that joins the proxy network and declares
// the stack's volumes and secrets as external objects.
func newFile(def Definition, s *entity.Stack) *compose.File {
	f := compose.NewFile()
	f.AddExternalNetwork(constants.ProxyNetwork)
	for _, v := range def.Volumes(s) {
		f.AddExternalVolume(v)
	}
	for _, sec := range def.Secrets(s) {
		f.AddExternalSecret(sec)
	}
	return f
}

func requireDomain(s *entity.Stack) error {
	if s.Domain == "" {
		return fmt.Errorf("stack %s: %w", s.Name, domain.RequiredField("domain"))
	}
	return nil
}

func secretPath(name string) string {
	return "/run/secrets/" + name
}

func replicas(n int) *int {
	return &n
}

func managerPlacement() *compose.Placement {
	return &compose.Placement{Constraints: []string{"node.role == manager"}}
}

func restartOnFailure() *compose.RestartPolicy {
	return &compose.RestartPolicy{Condition: "on-failure", Delay: "5s", MaxAttempts: 3}
}
