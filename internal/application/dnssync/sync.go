package dnssync

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/lite-lake/infra-swarmops/internal/constants"
	"github.com/lite-lake/infra-swarmops/internal/domain"
	"github.com/lite-lake/infra-swarmops/internal/domain/entity"
	"github.com/lite-lake/infra-swarmops/internal/infrastructure/dns"
	"github.com/lite-lake/infra-swarmops/internal/infrastructure/logger"
	"github.com/lite-lake/infra-swarmops/internal/stacks"
)

// ProviderFactory builds a live provider client from its config entry.
type ProviderFactory interface {
	Create(p *entity.DNSProvider, secrets map[string]string) (dns.Provider, error)
}

// Target is one A record a stack needs.
type Target struct {
	Stack    string
	Hostname string
	Provider string
	Zone     string
	Record   dns.DNSRecord
}

type Change struct {
	Target
	Action dns.RecordAction
	Err    error
}

type Syncer struct {
	cfg      *entity.Config
	registry *stacks.Registry
	factory  ProviderFactory
}

func NewSyncer(cfg *entity.Config, registry *stacks.Registry, factory ProviderFactory) *Syncer {
	return &Syncer{cfg: cfg, registry: registry, factory: factory}
}

// Targets lists the records for every stack with a dns provider, or only
// stackName when it is set.
func (s *Syncer) Targets(stackName string) ([]Target, error) {
	secrets := s.cfg.GetSecretsMap()
	hosts := s.cfg.GetHostMap()
	providers := s.cfg.GetDNSProviderMap()

	var targets []Target
	for i := range s.cfg.Stacks {
		st := &s.cfg.Stacks[i]
		if stackName != "" && st.Name != stackName {
			continue
		}
		if st.DNS == "" {
			continue
		}
		provider, ok := providers[st.DNS]
		if !ok {
			return nil, fmt.Errorf("%w: stack %s dns provider %s", domain.ErrMissingReference, st.Name, st.DNS)
		}
		host, ok := hosts[st.Host]
		if !ok {
			return nil, fmt.Errorf("%w: stack %s host %s", domain.ErrMissingReference, st.Name, st.Host)
		}
		if host.IP.Public == "" {
			return nil, fmt.Errorf("stack %s: %w", st.Name, domain.RequiredField("host "+host.Name+" ip.public"))
		}
		def, err := s.registry.Lookup(st.Kind)
		if err != nil {
			return nil, err
		}
		values, err := stacks.ResolveValues(def, st, secrets, nil, nil)
		if err != nil {
			return nil, domain.WrapEntity("stack", st.Name, err)
		}

		for _, hostname := range def.Hostnames(st, values) {
			zone, ok := provider.ZoneFor(hostname)
			if !ok {
				return nil, fmt.Errorf("%w: %s is not under any domain of provider %s", domain.ErrDNSDomainNotFound, hostname, provider.Name)
			}
			targets = append(targets, Target{
				Stack:    st.Name,
				Hostname: hostname,
				Provider: provider.Name,
				Zone:     zone,
				Record: dns.DNSRecord{
					Name:  dns.GetSubDomain(hostname, zone),
					Type:  "A",
					Value: host.IP.Public,
					TTL:   recordTTL(provider),
				},
			})
		}
	}
	if stackName != "" && len(targets) == 0 {
		if _, err := s.cfg.FindStack(stackName); err != nil {
			return nil, err
		}
	}
	sort.Slice(targets, func(i, j int) bool { return targets[i].Hostname < targets[j].Hostname })
	return targets, nil
}

// Sync applies every target. A failed record is reported in its Change and
// does not stop the others.
func (s *Syncer) Sync(ctx context.Context, stackName string, dryRun bool) ([]Change, error) {
	targets, err := s.Targets(stackName)
	if err != nil {
		return nil, err
	}

	secrets := s.cfg.GetSecretsMap()
	providers := s.cfg.GetDNSProviderMap()
	clients := make(map[string]dns.Provider)
	hosted := make(map[string]map[string]bool)

	changes := make([]Change, 0, len(targets))
	for _, t := range targets {
		change := Change{Target: t}
		if dryRun {
			changes = append(changes, change)
			continue
		}

		client, ok := clients[t.Provider]
		if !ok {
			client, err = s.factory.Create(providers[t.Provider], secrets)
			if err != nil {
				return changes, domain.WrapEntity("provider", t.Provider, err)
			}
			clients[t.Provider] = client
		}

		zones, ok := hosted[t.Provider]
		if !ok {
			zones, err = hostedZones(ctx, client)
			if err != nil {
				return changes, domain.WrapEntity("provider", t.Provider, err)
			}
			hosted[t.Provider] = zones
		}
		if !zones[strings.ToLower(t.Zone)] {
			change.Err = fmt.Errorf("%w: zone %s is not hosted by provider %s", domain.ErrDNSDomainNotFound, t.Zone, t.Provider)
			logger.Error("dns record sync failed", "hostname", t.Hostname, "error", change.Err)
			changes = append(changes, change)
			continue
		}

		record := t.Record
		change.Action, change.Err = dns.EnsureRecord(ctx, client, t.Zone, &record)
		if change.Err != nil {
			logger.Error("dns record sync failed", "hostname", t.Hostname, "error", change.Err)
		} else {
			logger.Info("dns record synced", "hostname", t.Hostname, "action", change.Action)
		}
		changes = append(changes, change)
	}
	return changes, nil
}

// hostedZones lists the zones the provider account actually serves.
func hostedZones(ctx context.Context, client dns.Provider) (map[string]bool, error) {
	domains, err := client.ListDomains(ctx)
	if err != nil {
		return nil, domain.WrapOp("list domains", err)
	}
	zones := make(map[string]bool, len(domains))
	for _, d := range domains {
		zones[strings.TrimSuffix(strings.ToLower(d), ".")] = true
	}
	return zones, nil
}

func recordTTL(p *entity.DNSProvider) int {
	if p.TTL > 0 {
		return dns.NormalizeTTL(p.TTL)
	}
	return constants.DefaultDNSTTL
}
