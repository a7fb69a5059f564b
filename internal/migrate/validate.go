package migrate

import (
	"context"
	"fmt"

	"github.com/yuriy-kovalchuk/yk-dns-migrator/internal/dns"
)

// Validation lists what still blocks a zone from serving traffic.
type Validation struct {
	ZoneID string   `json:"zone_id"`
	Valid  bool     `json:"valid"`
	Issues []string `json:"issues"`
}

// ValidateZoneSetup checks that the zone is active, has nameservers assigned
// and holds at least one record. Each failed check adds one issue.
func (o *Orchestrator) ValidateZoneSetup(ctx context.Context, zoneID string) (*Validation, error) {
	zone, err := o.provider.GetZone(ctx, zoneID)
	if err != nil {
		return nil, fmt.Errorf("validate zone: %w", err)
	}
	records, err := o.provider.ListRecords(ctx, zone.ID, dns.RecordFilter{})
	if err != nil {
		return nil, fmt.Errorf("validate zone %s: %w", zone.ID, err)
	}

	v := &Validation{ZoneID: zone.ID, Issues: []string{}}
	if zone.Status != dns.ZoneActive {
		v.Issues = append(v.Issues, fmt.Sprintf("zone status is %q, expected %q", zone.Status, dns.ZoneActive))
	}
	if len(zone.NameServers) == 0 {
		v.Issues = append(v.Issues, "zone has no nameservers assigned")
	}
	if len(records) == 0 {
		v.Issues = append(v.Issues, "zone has no DNS records")
	}
	v.Valid = len(v.Issues) == 0
	o.log.Info("zone validated", "zone", zone.ID, "valid", v.Valid, "issues", len(v.Issues))
	return v, nil
}
