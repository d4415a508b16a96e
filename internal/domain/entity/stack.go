package entity

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/lite-lake/infra-swarmops/internal/domain"
	"github.com/lite-lake/infra-swarmops/internal/domain/valueobject"
)

var (
	stackNamePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]{0,62}$`)
	hostnamePattern  = regexp.MustCompile(`^([a-zA-Z0-9]([a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?\.)+[a-zA-Z]{2,}$`)
)

// Stack is one `docker stack deploy` unit built from a catalogue kind.
type Stack struct {
	Name     string                           `yaml:"name"`
	Kind     string                           `yaml:"kind"`
	Host     string                           `yaml:"host"`
	Domain   string                           `yaml:"domain,omitempty"`
	DNS      string                           `yaml:"dns,omitempty"`
	Replicas int                              `yaml:"replicas,omitempty"`
	Params   map[string]valueobject.SecretRef `yaml:"params,omitempty"`
}

func (s *Stack) Validate() error {
	if s.Name == "" {
		s.Name = s.Kind
	}
	if !stackNamePattern.MatchString(s.Name) {
		return fmt.Errorf("%w: stack name %q", domain.ErrInvalidName, s.Name)
	}
	if s.Kind == "" {
		return domain.RequiredField("kind")
	}
	if s.Host == "" {
		return domain.RequiredField("host")
	}
	if s.Domain != "" {
		if err := ValidateHostname(s.Domain); err != nil {
			return err
		}
	}
	if s.Replicas < 0 {
		return fmt.Errorf("%w: replicas must not be negative", domain.ErrInvalidType)
	}
	return nil
}

func (s *Stack) GetReplicas() int {
	if s.Replicas == 0 {
		return 1
	}
	return s.Replicas
}

// ResourceName derives a docker object name from the stack name, e.g. postgres_data.
func (s *Stack) ResourceName(suffix string) string {
	return s.Name + "_" + suffix
}

func (s *Stack) ParamKeys() []string {
	keys := make([]string, 0, len(s.Params))
	for k := range s.Params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func ValidateHostname(hostname string) error {
	if len(hostname) > 253 || !hostnamePattern.MatchString(hostname) {
		return fmt.Errorf("%w: %s", domain.ErrInvalidDomain, hostname)
	}
	return nil
}

func ValidateEmail(email string) error {
	at := strings.LastIndex(email, "@")
	if at <= 0 || at == len(email)-1 {
		return fmt.Errorf("%w: %s", domain.ErrInvalidEmail, email)
	}
	if err := ValidateHostname(email[at+1:]); err != nil {
		return fmt.Errorf("%w: %s", domain.ErrInvalidEmail, email)
	}
	return nil
}
