package persistence

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/lite-lake/infra-swarmops/internal/domain"
	"github.com/lite-lake/infra-swarmops/internal/domain/entity"
	"github.com/lite-lake/infra-swarmops/internal/domain/repository"
	"github.com/lite-lake/infra-swarmops/internal/domain/valueobject"
)

const proxyKind = "traefik"

type ConfigLoader struct {
	baseDir string
	kinds   map[string]bool
}

// NewConfigLoader reads <baseDir>/userdata/<env>. When kinds is non-empty,
// Validate also rejects stacks of any other kind.
func NewConfigLoader(baseDir string, kinds ...string) *ConfigLoader {
	l := &ConfigLoader{baseDir: baseDir, kinds: make(map[string]bool, len(kinds))}
	for _, k := range kinds {
		l.kinds[k] = true
	}
	return l
}

func (l *ConfigLoader) EnvDir(env string) string {
	return filepath.Join(l.baseDir, "userdata", env)
}

func (l *ConfigLoader) Load(_ context.Context, env string) (*entity.Config, error) {
	configDir := l.EnvDir(env)

	if _, err := os.Stat(configDir); os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: config directory does not exist: %s", domain.ErrConfigNotFound, configDir)
	}

	cfg := &entity.Config{}

	loaders := []struct {
		filename string
		loader   func(string, *entity.Config) error
	}{
		{"secrets.yaml", loadSecrets},
		{"hosts.yaml", loadHosts},
		{"stacks.yaml", loadStacks},
		{"dns.yaml", loadDNSProviders},
	}

	for _, f := range loaders {
		filePath := filepath.Join(configDir, f.filename)
		if _, err := os.Stat(filePath); os.IsNotExist(err) {
			continue
		}
		if err := f.loader(filePath, cfg); err != nil {
			return nil, fmt.Errorf("%w: failed to load %s: %w", domain.ErrConfigParseFailed, f.filename, err)
		}
	}

	return cfg, nil
}

func (l *ConfigLoader) Validate(cfg *entity.Config) error {
	if cfg == nil {
		return domain.ErrConfigNotLoaded
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := validateNameConflicts(cfg); err != nil {
		return err
	}

	if err := l.validateReferences(cfg); err != nil {
		return err
	}

	if err := validateHostnameConflicts(cfg); err != nil {
		return err
	}

	return validateProxyConflicts(cfg)
}

func loadEntity[T any](filePath, yamlKey string) ([]T, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	var raw map[string]interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	itemsRaw, ok := raw[yamlKey]
	if !ok {
		return nil, nil
	}

	itemsData, err := yaml.Marshal(itemsRaw)
	if err != nil {
		return nil, err
	}

	var items []T
	if err := yaml.Unmarshal(itemsData, &items); err != nil {
		return nil, err
	}

	return items, nil
}

func loadSecrets(filePath string, cfg *entity.Config) error {
	items, err := loadEntity[entity.Secret](filePath, "secrets")
	if err != nil {
		return err
	}
	cfg.Secrets = items
	return nil
}

func loadHosts(filePath string, cfg *entity.Config) error {
	items, err := loadEntity[entity.Host](filePath, "hosts")
	if err != nil {
		return err
	}
	cfg.Hosts = items
	return nil
}

func loadStacks(filePath string, cfg *entity.Config) error {
	items, err := loadEntity[entity.Stack](filePath, "stacks")
	if err != nil {
		return err
	}
	cfg.Stacks = items
	return nil
}

func loadDNSProviders(filePath string, cfg *entity.Config) error {
	items, err := loadEntity[entity.DNSProvider](filePath, "providers")
	if err != nil {
		return err
	}
	cfg.DNSProviders = items
	return nil
}

func validateNameConflicts(cfg *entity.Config) error {
	check := func(kind string, names []string) error {
		seen := make(map[string]bool, len(names))
		for _, n := range names {
			if seen[n] {
				return fmt.Errorf("%w: %s '%s' is defined multiple times", domain.ErrResourceConflict, kind, n)
			}
			seen[n] = true
		}
		return nil
	}

	var secrets, hosts, stacks, providers []string
	for _, s := range cfg.Secrets {
		secrets = append(secrets, s.Name)
	}
	for _, h := range cfg.Hosts {
		hosts = append(hosts, h.Name)
	}
	for _, s := range cfg.Stacks {
		stacks = append(stacks, s.Name)
	}
	for _, p := range cfg.DNSProviders {
		providers = append(providers, p.Name)
	}

	if err := check("secret", secrets); err != nil {
		return err
	}
	if err := check("host", hosts); err != nil {
		return err
	}
	if err := check("stack", stacks); err != nil {
		return err
	}
	return check("dns provider", providers)
}

func (l *ConfigLoader) validateReferences(cfg *entity.Config) error {
	secrets := cfg.GetSecretsMap()
	hosts := cfg.GetHostMap()
	providers := cfg.GetDNSProviderMap()

	requireSecret := func(ref valueobject.SecretRef, owner string) error {
		if ref.Secret == "" {
			return nil
		}
		if _, ok := secrets[ref.Secret]; !ok {
			return fmt.Errorf("%w: secret '%s' referenced by %s does not exist", domain.ErrMissingReference, ref.Secret, owner)
		}
		return nil
	}

	for _, h := range cfg.Hosts {
		if err := requireSecret(h.SSH.Password, fmt.Sprintf("host '%s' ssh password", h.Name)); err != nil {
			return err
		}
	}

	for _, s := range cfg.Stacks {
		if _, ok := hosts[s.Host]; !ok {
			return fmt.Errorf("%w: host '%s' referenced by stack '%s' does not exist", domain.ErrMissingReference, s.Host, s.Name)
		}
		if s.DNS != "" {
			if _, ok := providers[s.DNS]; !ok {
				return fmt.Errorf("%w: dns provider '%s' referenced by stack '%s' does not exist", domain.ErrMissingReference, s.DNS, s.Name)
			}
		}
		if len(l.kinds) > 0 && !l.kinds[s.Kind] {
			return fmt.Errorf("%w: '%s' used by stack '%s'", domain.ErrUnknownStackKind, s.Kind, s.Name)
		}
		for _, key := range s.ParamKeys() {
			if err := requireSecret(s.Params[key], fmt.Sprintf("stack '%s' param '%s'", s.Name, key)); err != nil {
				return err
			}
		}
	}

	for _, p := range cfg.DNSProviders {
		for key, ref := range p.Credentials {
			if err := requireSecret(ref, fmt.Sprintf("dns provider '%s' credential '%s'", p.Name, key)); err != nil {
				return err
			}
		}
	}
	return nil
}

// validateHostnameConflicts rejects two stacks routing the same hostname.
// Only the primary domain and plain api_domain params are known here.
func validateHostnameConflicts(cfg *entity.Config) error {
	hostnames := make(map[string]string)
	claim := func(hostname, stack string) error {
		hostname = strings.ToLower(hostname)
		if existing, ok := hostnames[hostname]; ok && existing != stack {
			return fmt.Errorf("%w: hostname '%s' is used by both stacks '%s' and '%s'", domain.ErrHostnameConflict, hostname, existing, stack)
		}
		hostnames[hostname] = stack
		return nil
	}

	for _, s := range cfg.Stacks {
		if s.Domain != "" {
			if err := claim(s.Domain, s.Name); err != nil {
				return err
			}
		}
		if ref, ok := s.Params["api_domain"]; ok && ref.Plain != "" {
			if err := claim(ref.Plain, s.Name); err != nil {
				return err
			}
		}
	}
	return nil
}

// validateProxyConflicts allows one proxy per host since it binds 80/443 in host mode.
func validateProxyConflicts(cfg *entity.Config) error {
	proxies := make(map[string]string)
	for _, s := range cfg.Stacks {
		if s.Kind != proxyKind {
			continue
		}
		if existing, ok := proxies[s.Host]; ok {
			return fmt.Errorf("%w: host '%s' runs both proxy stacks '%s' and '%s'", domain.ErrResourceConflict, s.Host, existing, s.Name)
		}
		proxies[s.Host] = s.Name
	}
	return nil
}

var _ repository.ConfigLoader = (*ConfigLoader)(nil)
