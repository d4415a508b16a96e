package dns

import (
	"context"
	"strconv"

	"github.com/tencentcloud/tencentcloud-sdk-go/tencentcloud/common"
	"github.com/tencentcloud/tencentcloud-sdk-go/tencentcloud/common/profile"
	dnspod "github.com/tencentcloud/tencentcloud-sdk-go/tencentcloud/dnspod/v20210323"

	"github.com/lite-lake/infra-swarmops/internal/constants"
	domainerr "github.com/lite-lake/infra-swarmops/internal/domain"
)

type TencentProvider struct {
	client *dnspod.Client
}

func NewTencentProvider(secretID, secretKey string) (*TencentProvider, error) {
	credential := common.NewCredential(secretID, secretKey)
	cpf := profile.NewClientProfile()
	cpf.HttpProfile.Endpoint = "dnspod.tencentcloudapi.com"
	client, err := dnspod.NewClient(credential, "", cpf)
	if err != nil {
		return nil, domainerr.WrapOp("create tencent dns client", err)
	}
	return &TencentProvider{client: client}, nil
}

func (p *TencentProvider) Name() string {
	return "tencent"
}

func (p *TencentProvider) ListRecords(ctx context.Context, zone string) ([]DNSRecord, error) {
	req := dnspod.NewDescribeRecordListRequest()
	req.Domain = common.StringPtr(zone)

	resp, err := p.client.DescribeRecordListWithContext(ctx, req)
	if err != nil {
		return nil, domainerr.WrapOp("list records", err)
	}

	var records []DNSRecord
	if resp.Response != nil {
		for _, r := range resp.Response.RecordList {
			if r.RecordId == nil || r.Name == nil || r.Type == nil || r.Value == nil {
				continue
			}
			ttl := constants.DefaultDNSTTL
			if r.TTL != nil {
				ttl = int(*r.TTL)
			}
			records = append(records, DNSRecord{
				ID:    strconv.FormatUint(*r.RecordId, 10),
				Name:  *r.Name,
				Type:  *r.Type,
				Value: *r.Value,
				TTL:   ttl,
			})
		}
	}
	return records, nil
}

func (p *TencentProvider) CreateRecord(ctx context.Context, zone string, record *DNSRecord) error {
	req := dnspod.NewCreateRecordRequest()
	req.Domain = common.StringPtr(zone)
	req.SubDomain = common.StringPtr(record.Name)
	req.RecordType = common.StringPtr(record.Type)
	req.RecordLine = common.StringPtr("默认")
	req.Value = common.StringPtr(record.Value)
	req.TTL = common.Uint64Ptr(tencentTTL(record))

	if _, err := p.client.CreateRecordWithContext(ctx, req); err != nil {
		return domainerr.WrapOp("create record", err)
	}
	return nil
}

func (p *TencentProvider) UpdateRecord(ctx context.Context, zone string, recordID string, record *DNSRecord) error {
	id, err := strconv.ParseUint(recordID, 10, 64)
	if err != nil {
		return domainerr.WrapOp("parse record ID", err)
	}

	req := dnspod.NewModifyRecordRequest()
	req.Domain = common.StringPtr(zone)
	req.RecordId = common.Uint64Ptr(id)
	req.SubDomain = common.StringPtr(record.Name)
	req.RecordType = common.StringPtr(record.Type)
	req.RecordLine = common.StringPtr("默认")
	req.Value = common.StringPtr(record.Value)
	req.TTL = common.Uint64Ptr(tencentTTL(record))

	if _, err := p.client.ModifyRecordWithContext(ctx, req); err != nil {
		return domainerr.WrapOp("update record", err)
	}
	return nil
}

func (p *TencentProvider) DeleteRecord(ctx context.Context, zone string, recordID string) error {
	id, err := strconv.ParseUint(recordID, 10, 64)
	if err != nil {
		return domainerr.WrapOp("parse record ID", err)
	}

	req := dnspod.NewDeleteRecordRequest()
	req.Domain = common.StringPtr(zone)
	req.RecordId = common.Uint64Ptr(id)

	if _, err := p.client.DeleteRecordWithContext(ctx, req); err != nil {
		return domainerr.WrapOp("delete record", err)
	}
	return nil
}

func (p *TencentProvider) ListDomains(ctx context.Context) ([]string, error) {
	resp, err := p.client.DescribeDomainListWithContext(ctx, dnspod.NewDescribeDomainListRequest())
	if err != nil {
		return nil, domainerr.WrapOp("list domains", err)
	}

	var domains []string
	if resp.Response != nil {
		for _, d := range resp.Response.DomainList {
			if d.Name != nil {
				domains = append(domains, *d.Name)
			}
		}
	}
	return domains, nil
}

func tencentTTL(record *DNSRecord) uint64 {
	if record.TTL == 0 {
		return constants.DefaultDNSTTL
	}
	return uint64(record.TTL)
}
