package dns

import (
	"fmt"

	domainerr "github.com/lite-lake/infra-swarmops/internal/domain"
	"github.com/lite-lake/infra-swarmops/internal/domain/entity"
	"github.com/lite-lake/infra-swarmops/internal/domain/valueobject"
)

type CreatorFunc func(p *entity.DNSProvider, secrets map[string]string) (Provider, error)

type Factory struct {
	creators map[entity.DNSProviderType]CreatorFunc
}

func NewFactory() *Factory {
	return &Factory{
		creators: map[entity.DNSProviderType]CreatorFunc{
			entity.DNSProviderCloudflare: createCloudflare,
			entity.DNSProviderAliyun:     createAliyun,
			entity.DNSProviderTencent:    createTencent,
		},
	}
}

func (f *Factory) Create(p *entity.DNSProvider, secrets map[string]string) (Provider, error) {
	creator, ok := f.creators[p.Type]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domainerr.ErrUnsupportedProvider, p.Type)
	}
	return creator(p, secrets)
}

func (f *Factory) Register(providerType entity.DNSProviderType, creator CreatorFunc) {
	f.creators[providerType] = creator
}

func resolveCredential(creds map[string]valueobject.SecretRef, key string, secrets map[string]string) (string, error) {
	ref, ok := creds[key]
	if !ok {
		return "", fmt.Errorf("%w: %s", domainerr.ErrMissingCredential, key)
	}
	return ref.Resolve(secrets)
}

func createCloudflare(p *entity.DNSProvider, secrets map[string]string) (Provider, error) {
	apiToken, err := resolveCredential(p.Credentials, "api_token", secrets)
	if err != nil {
		return nil, fmt.Errorf("resolve api_token: %w", err)
	}
	accountID := ""
	if ref, ok := p.Credentials["account_id"]; ok {
		accountID, err = ref.Resolve(secrets)
		if err != nil {
			return nil, fmt.Errorf("resolve account_id: %w", err)
		}
	}
	return NewCloudflareProvider(apiToken, accountID), nil
}

func createAliyun(p *entity.DNSProvider, secrets map[string]string) (Provider, error) {
	accessKeyID, err := resolveCredential(p.Credentials, "access_key_id", secrets)
	if err != nil {
		return nil, fmt.Errorf("resolve access_key_id: %w", err)
	}
	accessKeySecret, err := resolveCredential(p.Credentials, "access_key_secret", secrets)
	if err != nil {
		return nil, fmt.Errorf("resolve access_key_secret: %w", err)
	}
	return NewAliyunProvider(accessKeyID, accessKeySecret)
}

func createTencent(p *entity.DNSProvider, secrets map[string]string) (Provider, error) {
	secretID, err := resolveCredential(p.Credentials, "secret_id", secrets)
	if err != nil {
		return nil, fmt.Errorf("resolve secret_id: %w", err)
	}
	secretKey, err := resolveCredential(p.Credentials, "secret_key", secrets)
	if err != nil {
		return nil, fmt.Errorf("resolve secret_key: %w", err)
	}
	return NewTencentProvider(secretID, secretKey)
}
