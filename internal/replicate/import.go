// Package replicate copies record descriptors into a provider zone, one create
// call per record. Partial success is the normal outcome: failures are
// collected next to whatever was created.
package replicate

import (
	"context"
	"fmt"

	"github.com/go-logr/logr"
	"golang.org/x/sync/errgroup"

	"github.com/yuriy-kovalchuk/yk-dns-migrator/internal/dns"
)

// ImportResult lists the records the provider accepted and one message per
// rejected record.
type ImportResult struct {
	Imported []dns.ManagedRecord `json:"imported"`
	Errors   []string            `json:"errors"`
}

// Importer creates records in a zone.
type Importer struct {
	provider    dns.Provider
	concurrency int
	log         logr.Logger
}

// NewImporter creates an Importer. A concurrency below 1 means sequential.
func NewImporter(log logr.Logger, provider dns.Provider, concurrency int) *Importer {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Importer{provider: provider, concurrency: concurrency, log: log}
}

type outcome struct {
	record *dns.ManagedRecord
	err    error
}

// Import creates every record in zoneID. The zone is resolved before any
// record is sent, so missing configuration fails the whole call. Per-record
// failures are formatted as "<type> <name>: <cause>" in input order.
func (im *Importer) Import(ctx context.Context, zoneID string, records []dns.Record) (*ImportResult, error) {
	zoneID, err := im.provider.ResolveZone(zoneID)
	if err != nil {
		return nil, fmt.Errorf("import: %w", err)
	}
	im.log.Info("importing records", "zone", zoneID, "count", len(records))

	outcomes := make([]outcome, len(records))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(im.concurrency)
	for i, rec := range records {
		g.Go(func() error {
			if err := rec.Validate(); err != nil {
				outcomes[i].err = err
				return nil
			}
			if err := gctx.Err(); err != nil {
				return err
			}
			created, err := im.provider.CreateRecord(gctx, zoneID, rec)
			outcomes[i] = outcome{record: created, err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("import into zone %s: %w", zoneID, err)
	}

	res := &ImportResult{Imported: []dns.ManagedRecord{}, Errors: []string{}}
	for i, o := range outcomes {
		if o.err != nil {
			msg := fmt.Sprintf("%s %s: %v", records[i].Type, records[i].Name, o.err)
			im.log.Info("record import failed", "type", records[i].Type, "name", records[i].Name, "error", o.err.Error())
			res.Errors = append(res.Errors, msg)
			continue
		}
		res.Imported = append(res.Imported, *o.record)
	}
	im.log.Info("import finished", "zone", zoneID, "imported", len(res.Imported), "failed", len(res.Errors))
	return res, nil
}
