package dns

import (
	"context"

	alidns "github.com/alibabacloud-go/alidns-20150109/v4/client"
	openapi "github.com/alibabacloud-go/darabonba-openapi/v2/client"
	"github.com/alibabacloud-go/tea/tea"

	"github.com/lite-lake/infra-swarmops/internal/constants"
	domainerr "github.com/lite-lake/infra-swarmops/internal/domain"
)

const aliyunPageSize = 500

// AliyunProvider uses RR names, which are already zone-relative.
// The SDK takes no context.
type AliyunProvider struct {
	client *alidns.Client
}

func NewAliyunProvider(accessKeyID, accessKeySecret string) (*AliyunProvider, error) {
	config := &openapi.Config{
		AccessKeyId:     tea.String(accessKeyID),
		AccessKeySecret: tea.String(accessKeySecret),
	}
	config.Endpoint = tea.String("dns.aliyuncs.com")
	client, err := alidns.NewClient(config)
	if err != nil {
		return nil, domainerr.WrapOp("create aliyun dns client", err)
	}
	return &AliyunProvider{client: client}, nil
}

func (p *AliyunProvider) Name() string {
	return "aliyun"
}

func (p *AliyunProvider) ListRecords(_ context.Context, zone string) ([]DNSRecord, error) {
	req := &alidns.DescribeDomainRecordsRequest{
		DomainName: tea.String(zone),
		PageSize:   tea.Int64(aliyunPageSize),
	}
	resp, err := p.client.DescribeDomainRecords(req)
	if err != nil {
		return nil, domainerr.WrapOp("list records", err)
	}

	var records []DNSRecord
	if resp.Body != nil && resp.Body.DomainRecords != nil {
		for _, r := range resp.Body.DomainRecords.Record {
			ttl := constants.DefaultDNSTTL
			if r.TTL != nil {
				ttl = int(*r.TTL)
			}
			records = append(records, DNSRecord{
				ID:    tea.StringValue(r.RecordId),
				Name:  tea.StringValue(r.RR),
				Type:  tea.StringValue(r.Type),
				Value: tea.StringValue(r.Value),
				TTL:   ttl,
			})
		}
	}
	return records, nil
}

func (p *AliyunProvider) CreateRecord(_ context.Context, zone string, record *DNSRecord) error {
	req := &alidns.AddDomainRecordRequest{
		DomainName: tea.String(zone),
		RR:         tea.String(record.Name),
		Type:       tea.String(record.Type),
		Value:      tea.String(record.Value),
		TTL:        tea.Int64(aliyunTTL(record)),
	}
	if _, err := p.client.AddDomainRecord(req); err != nil {
		return domainerr.WrapOp("create record", err)
	}
	return nil
}

func (p *AliyunProvider) UpdateRecord(_ context.Context, _ string, recordID string, record *DNSRecord) error {
	req := &alidns.UpdateDomainRecordRequest{
		RecordId: tea.String(recordID),
		RR:       tea.String(record.Name),
		Type:     tea.String(record.Type),
		Value:    tea.String(record.Value),
		TTL:      tea.Int64(aliyunTTL(record)),
	}
	if _, err := p.client.UpdateDomainRecord(req); err != nil {
		return domainerr.WrapOp("update record", err)
	}
	return nil
}

func (p *AliyunProvider) DeleteRecord(_ context.Context, _ string, recordID string) error {
	req := &alidns.DeleteDomainRecordRequest{
		RecordId: tea.String(recordID),
	}
	if _, err := p.client.DeleteDomainRecord(req); err != nil {
		return domainerr.WrapOp("delete record", err)
	}
	return nil
}

func (p *AliyunProvider) ListDomains(_ context.Context) ([]string, error) {
	resp, err := p.client.DescribeDomains(&alidns.DescribeDomainsRequest{
		PageSize: tea.Int64(100),
	})
	if err != nil {
		return nil, domainerr.WrapOp("list domains", err)
	}

	var domains []string
	if resp.Body != nil && resp.Body.Domains != nil {
		for _, d := range resp.Body.Domains.Domain {
			domains = append(domains, tea.StringValue(d.DomainName))
		}
	}
	return domains, nil
}

func aliyunTTL(record *DNSRecord) int64 {
	if record.TTL == 0 {
		return constants.DefaultDNSTTL
	}
	return int64(record.TTL)
}
