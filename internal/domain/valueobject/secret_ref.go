package valueobject

import (
	"fmt"
	"log/slog"

	"github.com/lite-lake/infra-swarmops/internal/domain"
)

// SecretRef is either an inline value or the name of an entry in secrets.yaml.
type SecretRef struct {
	Plain  string `yaml:"plain,omitempty"`
	Secret string `yaml:"secret,omitempty"`
}

func NewSecretRef(plain, secret string) *SecretRef {
	return &SecretRef{Plain: plain, Secret: secret}
}

func NewSecretRefPlain(plain string) *SecretRef {
	return &SecretRef{Plain: plain}
}

func NewSecretRefSecret(secret string) *SecretRef {
	return &SecretRef{Secret: secret}
}

func (s *SecretRef) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var plain string
	if err := unmarshal(&plain); err == nil {
		s.Plain = plain
		return nil
	}

	type alias SecretRef
	var ref alias
	if err := unmarshal(&ref); err != nil {
		return err
	}
	s.Plain = ref.Plain
	s.Secret = ref.Secret
	return nil
}

func (s SecretRef) MarshalYAML() (interface{}, error) {
	if s.Secret != "" {
		return map[string]string{"secret": s.Secret}, nil
	}
	return s.Plain, nil
}

func (s *SecretRef) Resolve(secrets map[string]string) (string, error) {
	if s.Secret != "" {
		val, ok := secrets[s.Secret]
		if !ok {
			return "", fmt.Errorf("%w: %s", domain.ErrMissingSecret, s.Secret)
		}
		return val, nil
	}
	return s.Plain, nil
}

func (s *SecretRef) IsEmpty() bool {
	return s.Plain == "" && s.Secret == ""
}

func (s *SecretRef) Validate() error {
	if s.IsEmpty() {
		return domain.ErrEmptyValue
	}
	return nil
}

func (s *SecretRef) LogValue() slog.Value {
	return slog.StringValue("***")
}
