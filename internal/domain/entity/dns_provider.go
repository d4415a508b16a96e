package entity

import (
	"fmt"
	"strings"

	"github.com/lite-lake/infra-swarmops/internal/domain"
	"github.com/lite-lake/infra-swarmops/internal/domain/valueobject"
)

type DNSProviderType string

const (
	DNSProviderAliyun     DNSProviderType = "aliyun"
	DNSProviderCloudflare DNSProviderType = "cloudflare"
	DNSProviderTencent    DNSProviderType = "tencent"
)

// DNSProvider is an account at a DNS host and the zones it serves.
type DNSProvider struct {
	Name        string                           `yaml:"name"`
	Type        DNSProviderType                  `yaml:"type"`
	Domains     []string                         `yaml:"domains"`
	TTL         int                              `yaml:"ttl,omitempty"`
	Credentials map[string]valueobject.SecretRef `yaml:"credentials"`
}

func (p *DNSProvider) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("%w: dns provider name is required", domain.ErrInvalidName)
	}
	if p.Type == "" {
		p.Type = DNSProviderType(p.Name)
	}
	switch p.Type {
	case DNSProviderAliyun, DNSProviderCloudflare, DNSProviderTencent:
	default:
		return fmt.Errorf("%w: %s", domain.ErrUnsupportedProvider, p.Type)
	}
	if len(p.Domains) == 0 {
		return domain.RequiredField("domains")
	}
	for _, d := range p.Domains {
		if err := ValidateHostname(d); err != nil {
			return err
		}
	}
	if len(p.Credentials) == 0 {
		return domain.RequiredField("credentials")
	}
	for key, ref := range p.Credentials {
		if err := ref.Validate(); err != nil {
			return fmt.Errorf("credential %s: %w", key, err)
		}
	}
	return nil
}

// ZoneFor returns the longest managed zone that contains hostname.
func (p *DNSProvider) ZoneFor(hostname string) (string, bool) {
	hostname = strings.ToLower(strings.TrimSuffix(hostname, "."))
	best := ""
	for _, d := range p.Domains {
		zone := strings.ToLower(d)
		if hostname == zone || strings.HasSuffix(hostname, "."+zone) {
			if len(zone) > len(best) {
				best = zone
			}
		}
	}
	return best, best != ""
}
