package dns

import (
	"context"
	"slices"
	"strings"

	"github.com/lite-lake/infra-swarmops/internal/domain"
	"github.com/lite-lake/infra-swarmops/internal/infrastructure/logger"
)

var validTTLs = []int{1, 5, 10, 20, 30, 60, 120, 180, 300, 600, 900, 1800, 3600, 7200, 18000, 43200, 86400}

// NormalizeTTL rounds down to the nearest TTL every provider accepts.
func NormalizeTTL(ttl int) int {
	idx, _ := slices.BinarySearch(validTTLs, ttl)
	if idx < len(validTTLs) && validTTLs[idx] == ttl {
		return ttl
	}
	if idx > 0 {
		return validTTLs[idx-1]
	}
	return 1
}

func GetFullDomain(subDomain, zone string) string {
	if subDomain == "@" || subDomain == "" {
		return zone
	}
	return subDomain + "." + zone
}

func GetSubDomain(fullDomain, zone string) string {
	if fullDomain == zone {
		return "@"
	}
	suffix := "." + zone
	if strings.HasSuffix(fullDomain, suffix) {
		return strings.TrimSuffix(fullDomain, suffix)
	}
	return fullDomain
}

type RecordAction string

const (
	RecordUnchanged RecordAction = "unchanged"
	RecordCreated   RecordAction = "created"
	RecordUpdated   RecordAction = "updated"
)

// EnsureRecord makes desired the only record of its name and type in zone.
// Extra records of the same name and type are deleted.
func EnsureRecord(ctx context.Context, provider Provider, zone string, desired *DNSRecord) (RecordAction, error) {
	records, err := provider.ListRecords(ctx, zone)
	if err != nil {
		return "", domain.WrapOp("list records", err)
	}

	var matches []DNSRecord
	for _, existing := range records {
		if existing.Type == desired.Type && existing.Name == desired.Name {
			matches = append(matches, existing)
		}
	}
	if len(matches) == 0 {
		if err := provider.CreateRecord(ctx, zone, desired); err != nil {
			return "", err
		}
		return RecordCreated, nil
	}

	keep := matches[0]
	for _, m := range matches {
		if sameRecord(m, desired) {
			keep = m
			break
		}
	}

	action := RecordUnchanged
	if !sameRecord(keep, desired) {
		logger.Debug("updating DNS record", "provider", provider.Name(), "zone", zone, "name", desired.Name,
			"old", keep.Value, "new", desired.Value)
		if err := provider.UpdateRecord(ctx, zone, keep.ID, desired); err != nil {
			return "", err
		}
		action = RecordUpdated
	}

	for _, extra := range matches {
		if extra.ID == keep.ID {
			continue
		}
		logger.Debug("deleting duplicate DNS record", "provider", provider.Name(), "zone", zone, "name", extra.Name, "value", extra.Value)
		if err := provider.DeleteRecord(ctx, zone, extra.ID); err != nil {
			return "", domain.WrapOp("delete record "+extra.ID, err)
		}
		action = RecordUpdated
	}
	return action, nil
}

func sameRecord(r DNSRecord, desired *DNSRecord) bool {
	return r.Value == desired.Value && r.TTL == desired.TTL
}
