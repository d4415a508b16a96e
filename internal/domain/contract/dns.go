package contract

import "context"

// DNSRecord names are relative to the zone; "@" is the apex.
type DNSRecord struct {
	ID    string
	Name  string
	Type  string
	Value string
	TTL   int
}

type DNSProvider interface {
	Name() string
	ListDomains(ctx context.Context) ([]string, error)
	ListRecords(ctx context.Context, domain string) ([]DNSRecord, error)
	CreateRecord(ctx context.Context, domain string, record *DNSRecord) error
	DeleteRecord(ctx context.Context, domain string, recordID string) error
	UpdateRecord(ctx context.Context, domain string, recordID string, record *DNSRecord) error
}
