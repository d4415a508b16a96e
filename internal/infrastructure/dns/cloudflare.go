package dns

import (
	"context"

	"github.com/cloudflare/cloudflare-go/v2"
	"github.com/cloudflare/cloudflare-go/v2/dns"
	"github.com/cloudflare/cloudflare-go/v2/option"
	"github.com/cloudflare/cloudflare-go/v2/zones"

	domainerr "github.com/lite-lake/infra-swarmops/internal/domain"
	"github.com/lite-lake/infra-swarmops/internal/infrastructure/logger"
)

// CloudflareProvider speaks fully qualified names to the API and zone-relative
// names to callers.
type CloudflareProvider struct {
	client    *cloudflare.Client
	accountID string
}

func NewCloudflareProvider(apiToken string, accountID string) *CloudflareProvider {
	client := cloudflare.NewClient(
		option.WithAPIToken(apiToken),
	)
	return &CloudflareProvider{client: client, accountID: accountID}
}

func (p *CloudflareProvider) Name() string {
	return "cloudflare"
}

func (p *CloudflareProvider) getZoneID(ctx context.Context, zone string) (string, error) {
	resp, err := p.client.Zones.List(ctx, zones.ZoneListParams{
		Name: cloudflare.F(zone),
	})
	if err != nil {
		return "", domainerr.WrapOp("list zones", err)
	}
	if len(resp.Result) == 0 {
		return "", ErrDomainNotFound
	}
	return resp.Result[0].ID, nil
}

func (p *CloudflareProvider) ListRecords(ctx context.Context, zone string) ([]DNSRecord, error) {
	logger.Debug("listing DNS records", "provider", "cloudflare", "zone", zone)

	zoneID, err := p.getZoneID(ctx, zone)
	if err != nil {
		return nil, err
	}

	var records []DNSRecord
	pager := p.client.DNS.Records.ListAutoPaging(ctx, dns.RecordListParams{
		ZoneID: cloudflare.F(zoneID),
	})
	for pager.Next() {
		record := pager.Current()
		content := ""
		if str, ok := record.Content.(string); ok {
			content = str
		}
		records = append(records, DNSRecord{
			ID:    record.ID,
			Name:  GetSubDomain(record.Name, zone),
			Type:  string(record.Type),
			Value: content,
			TTL:   int(record.TTL),
		})
	}
	if err := pager.Err(); err != nil {
		return nil, domainerr.WrapOp("list records", err)
	}
	return records, nil
}

func (p *CloudflareProvider) CreateRecord(ctx context.Context, zone string, record *DNSRecord) error {
	zoneID, err := p.getZoneID(ctx, zone)
	if err != nil {
		return err
	}

	_, err = p.client.DNS.Records.New(ctx, dns.RecordNewParams{
		ZoneID: cloudflare.F(zoneID),
		Record: buildRecordParam(record, zone),
	})
	if err != nil {
		return domainerr.WrapOp("create record", err)
	}

	logger.Info("DNS record created", "provider", "cloudflare", "zone", zone, "name", record.Name, "type", record.Type)
	return nil
}

func (p *CloudflareProvider) UpdateRecord(ctx context.Context, zone string, recordID string, record *DNSRecord) error {
	zoneID, err := p.getZoneID(ctx, zone)
	if err != nil {
		return err
	}

	_, err = p.client.DNS.Records.Edit(ctx, recordID, dns.RecordEditParams{
		ZoneID: cloudflare.F(zoneID),
		Record: buildRecordParam(record, zone),
	})
	if err != nil {
		return domainerr.WrapOp("update record", err)
	}

	logger.Info("DNS record updated", "provider", "cloudflare", "zone", zone, "record_id", recordID)
	return nil
}

func (p *CloudflareProvider) DeleteRecord(ctx context.Context, zone string, recordID string) error {
	zoneID, err := p.getZoneID(ctx, zone)
	if err != nil {
		return err
	}

	_, err = p.client.DNS.Records.Delete(ctx, recordID, dns.RecordDeleteParams{
		ZoneID: cloudflare.F(zoneID),
	})
	if err != nil {
		return domainerr.WrapOp("delete record", err)
	}

	logger.Info("DNS record deleted", "provider", "cloudflare", "zone", zone, "record_id", recordID)
	return nil
}

func (p *CloudflareProvider) ListDomains(ctx context.Context) ([]string, error) {
	var names []string
	params := zones.ZoneListParams{}
	if p.accountID != "" {
		params.Account = cloudflare.F(zones.ZoneListParamsAccount{
			ID: cloudflare.F(p.accountID),
		})
	}
	pager := p.client.Zones.ListAutoPaging(ctx, params)
	for pager.Next() {
		names = append(names, pager.Current().Name)
	}
	if err := pager.Err(); err != nil {
		return nil, domainerr.WrapOp("list zones", err)
	}
	return names, nil
}

// buildRecordParam covers the record types stack routing needs. TTL 1 is
// Cloudflare's "automatic".
func buildRecordParam(record *DNSRecord, zone string) dns.RecordUnionParam {
	name := GetFullDomain(record.Name, zone)
	ttl := record.TTL
	if ttl == 0 {
		ttl = 1
	}
	switch record.Type {
	case "AAAA":
		return dns.AAAARecordParam{
			Name:    cloudflare.F(name),
			Type:    cloudflare.F(dns.AAAARecordTypeAAAA),
			Content: cloudflare.F(record.Value),
			TTL:     cloudflare.F(dns.TTL(ttl)),
		}
	case "CNAME":
		return dns.CNAMERecordParam{
			Name:    cloudflare.F(name),
			Type:    cloudflare.F(dns.CNAMERecordTypeCNAME),
			Content: cloudflare.F[interface{}](record.Value),
			TTL:     cloudflare.F(dns.TTL(ttl)),
		}
	case "TXT":
		return dns.TXTRecordParam{
			Name:    cloudflare.F(name),
			Type:    cloudflare.F(dns.TXTRecordTypeTXT),
			Content: cloudflare.F(record.Value),
			TTL:     cloudflare.F(dns.TTL(ttl)),
		}
	default:
		return dns.ARecordParam{
			Name:    cloudflare.F(name),
			Type:    cloudflare.F(dns.ARecordTypeA),
			Content: cloudflare.F(record.Value),
			TTL:     cloudflare.F(dns.TTL(ttl)),
		}
	}
}
