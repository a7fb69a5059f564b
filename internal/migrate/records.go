package migrate

import (
	"context"
	"fmt"

	"github.com/yuriy-kovalchuk/yk-dns-migrator/internal/dns"
	"github.com/yuriy-kovalchuk/yk-dns-migrator/internal/replicate"
	"github.com/yuriy-kovalchuk/yk-dns-migrator/internal/zonefile"
)

// ExportRecords lists the records of a zone.
func (o *Orchestrator) ExportRecords(ctx context.Context, zoneID string, filter dns.RecordFilter) ([]dns.ManagedRecord, error) {
	records, err := o.provider.ListRecords(ctx, zoneID, filter)
	if err != nil {
		return nil, fmt.Errorf("export records: %w", err)
	}
	return records, nil
}

// ImportRecords creates records in a zone without detection.
func (o *Orchestrator) ImportRecords(ctx context.Context, zoneID string, records []dns.Record) (*replicate.ImportResult, error) {
	return o.importer.Import(ctx, zoneID, records)
}

// ExportZoneFile renders the records of a zone as zone file text.
func (o *Orchestrator) ExportZoneFile(ctx context.Context, zoneID string) (string, error) {
	zone, err := o.provider.GetZone(ctx, zoneID)
	if err != nil {
		return "", fmt.Errorf("export zone file: %w", err)
	}
	managed, err := o.provider.ListRecords(ctx, zone.ID, dns.RecordFilter{})
	if err != nil {
		return "", fmt.Errorf("export zone file %s: %w", zone.ID, err)
	}
	records := make([]dns.Record, 0, len(managed))
	for _, m := range managed {
		records = append(records, m.Record)
	}
	return zonefile.Export(records, zone.Name, zonefile.ExportOptions{}), nil
}

// ZoneFileImport is an import result together with the problems found while
// reading the zone file.
type ZoneFileImport struct {
	replicate.ImportResult
	Parsed int              `json:"parsed"`
	Issues []zonefile.Issue `json:"issues"`
}

// ImportZoneFile parses text and creates the records it contains.
func (o *Orchestrator) ImportZoneFile(ctx context.Context, zoneID, text string) (*ZoneFileImport, error) {
	records, issues, err := zonefile.ParseString(text)
	if err != nil {
		return nil, fmt.Errorf("import zone file: %w", err)
	}
	res, err := o.importer.Import(ctx, zoneID, records)
	if err != nil {
		return nil, err
	}
	if issues == nil {
		issues = []zonefile.Issue{}
	}
	return &ZoneFileImport{ImportResult: *res, Parsed: len(records), Issues: issues}, nil
}
