package dnssync

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/lite-lake/infra-swarmops/internal/domain"
	"github.com/lite-lake/infra-swarmops/internal/domain/entity"
	"github.com/lite-lake/infra-swarmops/internal/domain/valueobject"
	"github.com/lite-lake/infra-swarmops/internal/infrastructure/dns"
	"github.com/lite-lake/infra-swarmops/internal/stacks"
)

type memProvider struct {
	domains []string
	records map[string][]dns.DNSRecord
}

func (m *memProvider) Name() string { return "mem" }

func (m *memProvider) ListDomains(context.Context) ([]string, error) { return m.domains, nil }

func (m *memProvider) ListRecords(_ context.Context, zone string) ([]dns.DNSRecord, error) {
	return m.records[zone], nil
}

func (m *memProvider) CreateRecord(_ context.Context, zone string, r *dns.DNSRecord) error {
	m.records[zone] = append(m.records[zone], *r)
	return nil
}

func (m *memProvider) DeleteRecord(_ context.Context, zone, id string) error {
	m.records[zone] = slices.DeleteFunc(m.records[zone], func(r dns.DNSRecord) bool { return r.ID == id })
	return nil
}

func (m *memProvider) UpdateRecord(_ context.Context, zone, id string, r *dns.DNSRecord) error {
	for i, rec := range m.records[zone] {
		if rec.ID == id {
			m.records[zone][i] = *r
		}
	}
	return nil
}

type fakeFactory struct {
	provider *memProvider
	calls    int
}

func (f *fakeFactory) Create(*entity.DNSProvider, map[string]string) (dns.Provider, error) {
	f.calls++
	return f.provider, nil
}

func testConfig() *entity.Config {
	return &entity.Config{
		Hosts: []entity.Host{{Name: "vps1", IP: entity.HostIP{Public: "203.0.113.10"}}},
		Stacks: []entity.Stack{
			{Name: "traefik", Kind: "traefik", Host: "vps1", Domain: "traefik.example.com", DNS: "cf"},
			{
				Name: "minio", Kind: "minio", Host: "vps1", Domain: "console.files.example.com", DNS: "cf",
				Params: map[string]valueobject.SecretRef{"api_domain": {Plain: "s3.files.example.com"}},
			},
			{Name: "postgres", Kind: "postgres", Host: "vps1", DNS: "cf"},
			{Name: "adminer", Kind: "adminer", Host: "vps1", Domain: "db.example.com"},
		},
		DNSProviders: []entity.DNSProvider{
			{Name: "cf", Type: entity.DNSProviderCloudflare, Domains: []string{"example.com", "files.example.com"}},
		},
	}
}

func TestSyncer_Targets(t *testing.T) {
	s := NewSyncer(testConfig(), stacks.DefaultRegistry(), &fakeFactory{})
	targets, err := s.Targets("")
	if err != nil {
		t.Fatalf("Targets() error = %v", err)
	}

	want := map[string]struct{ zone, name string }{
		"console.files.example.com": {zone: "files.example.com", name: "console"},
		"s3.files.example.com":      {zone: "files.example.com", name: "s3"},
		"traefik.example.com":       {zone: "example.com", name: "traefik"},
	}
	if len(targets) != len(want) {
		t.Fatalf("got %d targets, want %d: %+v", len(targets), len(want), targets)
	}
	for _, tg := range targets {
		w, ok := want[tg.Hostname]
		if !ok {
			t.Errorf("unexpected target %s", tg.Hostname)
			continue
		}
		if tg.Zone != w.zone || tg.Record.Name != w.name {
			t.Errorf("%s: zone=%s name=%s, want zone=%s name=%s", tg.Hostname, tg.Zone, tg.Record.Name, w.zone, w.name)
		}
		if tg.Record.Type != "A" || tg.Record.Value != "203.0.113.10" || tg.Record.TTL != 600 {
			t.Errorf("%s: record = %+v", tg.Hostname, tg.Record)
		}
	}
}

func TestSyncer_Sync(t *testing.T) {
	mem := &memProvider{
		domains: []string{"example.com", "files.example.com"},
		records: map[string][]dns.DNSRecord{
			"example.com": {{ID: "1", Name: "traefik", Type: "A", Value: "198.51.100.1", TTL: 600}},
		},
	}
	factory := &fakeFactory{provider: mem}
	s := NewSyncer(testConfig(), stacks.DefaultRegistry(), factory)

	changes, err := s.Sync(context.Background(), "traefik", false)
	if err != nil {
		t.Fatalf("Sync() error = %v", err)
	}
	if len(changes) != 1 || changes[0].Action != dns.RecordUpdated {
		t.Fatalf("changes = %+v", changes)
	}
	if mem.records["example.com"][0].Value != "203.0.113.10" {
		t.Errorf("record not updated: %+v", mem.records["example.com"])
	}

	changes, err = s.Sync(context.Background(), "traefik", false)
	if err != nil || changes[0].Action != dns.RecordUnchanged {
		t.Errorf("second Sync() = %+v, %v", changes, err)
	}
}

func TestSyncer_ZoneNotHostedByProvider(t *testing.T) {
	mem := &memProvider{
		domains: []string{"Example.com."},
		records: map[string][]dns.DNSRecord{},
	}
	s := NewSyncer(testConfig(), stacks.DefaultRegistry(), &fakeFactory{provider: mem})

	changes, err := s.Sync(context.Background(), "", false)
	if err != nil {
		t.Fatalf("Sync() error = %v", err)
	}
	if len(changes) != 3 {
		t.Fatalf("got %d changes, want 3", len(changes))
	}
	for _, c := range changes {
		switch c.Zone {
		case "example.com":
			if c.Err != nil || c.Action != dns.RecordCreated {
				t.Errorf("%s: action=%s err=%v, want created", c.Hostname, c.Action, c.Err)
			}
		case "files.example.com":
			if !errors.Is(c.Err, domain.ErrDNSDomainNotFound) {
				t.Errorf("%s: err = %v, want ErrDNSDomainNotFound", c.Hostname, c.Err)
			}
		}
	}
	if len(mem.records["files.example.com"]) != 0 {
		t.Errorf("records created in unhosted zone: %+v", mem.records["files.example.com"])
	}
}

func TestSyncer_DryRunDoesNotConnect(t *testing.T) {
	factory := &fakeFactory{}
	changes, err := NewSyncer(testConfig(), stacks.DefaultRegistry(), factory).Sync(context.Background(), "", true)
	if err != nil {
		t.Fatalf("Sync() error = %v", err)
	}
	if factory.calls != 0 {
		t.Error("dry run should not build provider clients")
	}
	if len(changes) != 3 {
		t.Errorf("got %d changes, want 3", len(changes))
	}
}

func TestSyncer_Errors(t *testing.T) {
	cfg := testConfig()
	cfg.Stacks[0].DNS = "missing"
	_, err := NewSyncer(cfg, stacks.DefaultRegistry(), &fakeFactory{}).Targets("traefik")
	if !errors.Is(err, domain.ErrMissingReference) {
		t.Errorf("Targets() error = %v, want ErrMissingReference", err)
	}

	cfg = testConfig()
	cfg.Stacks[3].Domain = "db.other.org"
	cfg.Stacks[3].DNS = "cf"
	_, err = NewSyncer(cfg, stacks.DefaultRegistry(), &fakeFactory{}).Targets("adminer")
	if !errors.Is(err, domain.ErrDNSDomainNotFound) {
		t.Errorf("Targets() error = %v, want ErrDNSDomainNotFound", err)
	}

	_, err = NewSyncer(testConfig(), stacks.DefaultRegistry(), &fakeFactory{}).Targets("ghost")
	if !errors.Is(err, domain.ErrStackNotFound) {
		t.Errorf("Targets() error = %v, want ErrStackNotFound", err)
	}
}
