package entity

import (
	"fmt"
	"strconv"

	"github.com/lite-lake/infra-swarmops/internal/constants"
	"github.com/lite-lake/infra-swarmops/internal/domain"
)

type Config struct {
	Secrets      []Secret      `yaml:"secrets,omitempty"`
	Hosts        []Host        `yaml:"hosts,omitempty"`
	Stacks       []Stack       `yaml:"stacks,omitempty"`
	DNSProviders []DNSProvider `yaml:"providers,omitempty"`
}

func (c *Config) Validate() error {
	for i := range c.Secrets {
		if err := c.Secrets[i].Validate(); err != nil {
			return fmt.Errorf("secrets[%d]: %w", i, err)
		}
	}
	for i := range c.Hosts {
		if err := c.Hosts[i].Validate(); err != nil {
			return fmt.Errorf("hosts[%d]: %w", i, err)
		}
	}
	for i := range c.Stacks {
		if err := c.Stacks[i].Validate(); err != nil {
			return fmt.Errorf("stacks[%d]: %w", i, err)
		}
	}
	for i := range c.DNSProviders {
		if err := c.DNSProviders[i].Validate(); err != nil {
			return fmt.Errorf("providers[%d]: %w", i, err)
		}
	}
	return nil
}

func toMapPtr[T any](items []T, getName func(T) string) map[string]*T {
	m := make(map[string]*T)
	for i := range items {
		m[getName(items[i])] = &items[i]
	}
	return m
}

func (c *Config) GetSecretsMap() map[string]string {
	m := make(map[string]string)
	for _, s := range c.Secrets {
		m[s.Name] = s.Value
	}
	return m
}

func (c *Config) GetHostMap() map[string]*Host {
	return toMapPtr(c.Hosts, func(h Host) string { return h.Name })
}

func (c *Config) GetStackMap() map[string]*Stack {
	return toMapPtr(c.Stacks, func(s Stack) string { return s.Name })
}

func (c *Config) GetDNSProviderMap() map[string]*DNSProvider {
	return toMapPtr(c.DNSProviders, func(p DNSProvider) string { return p.Name })
}

func (c *Config) FindStack(name string) (*Stack, error) {
	if s, ok := c.GetStackMap()[name]; ok {
		return s, nil
	}
	return nil, fmt.Errorf("%w: %s", domain.ErrStackNotFound, name)
}

func (c *Config) FindHost(name string) (*Host, error) {
	if h, ok := c.GetHostMap()[name]; ok {
		return h, nil
	}
	return nil, fmt.Errorf("%w: host '%s'", domain.ErrMissingReference, name)
}

func ParsePort(s string) (int, error) {
	port, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %s", domain.ErrInvalidPort, s)
	}
	if port <= 0 || port > constants.MaxPortNumber {
		return 0, fmt.Errorf("%w: %d", domain.ErrInvalidPort, port)
	}
	return port, nil
}
