package replicate

import (
	"context"
	"fmt"

	"github.com/go-logr/logr"

	"github.com/yuriy-kovalchuk/yk-dns-migrator/internal/dns"
)

// Detector finds the records currently published for a domain.
type Detector interface {
	Detect(ctx context.Context, domain string) ([]dns.Record, error)
}

// Result is the outcome of a replication run. Replicated never holds more
// entries than Detected.
type Result struct {
	Detected   []dns.Record        `json:"detected"`
	Replicated []dns.ManagedRecord `json:"replicated"`
	Errors     []string            `json:"errors"`
}

// Replicator detects a source domain's records and imports them into a zone.
type Replicator struct {
	detector Detector
	importer *Importer
	log      logr.Logger
}

// NewReplicator creates a Replicator.
func NewReplicator(log logr.Logger, detector Detector, importer *Importer) *Replicator {
	return &Replicator{detector: detector, importer: importer, log: log}
}

// Replicate copies the detected records of sourceDomain into targetZoneID.
// Finding nothing is reported in Errors, not as a failure.
func (r *Replicator) Replicate(ctx context.Context, sourceDomain, targetZoneID string) (*Result, error) {
	detected, err := r.detector.Detect(ctx, sourceDomain)
	if err != nil {
		return nil, fmt.Errorf("replicate %s: %w", sourceDomain, err)
	}

	res := &Result{Detected: detected, Replicated: []dns.ManagedRecord{}, Errors: []string{}}
	if len(detected) == 0 {
		r.log.Info("no records detected", "domain", sourceDomain)
		res.Errors = append(res.Errors, fmt.Sprintf("no DNS records detected for %s", sourceDomain))
		return res, nil
	}

	imported, err := r.importer.Import(ctx, targetZoneID, detected)
	if err != nil {
		return nil, fmt.Errorf("replicate %s: %w", sourceDomain, err)
	}
	res.Replicated = imported.Imported
	res.Errors = imported.Errors
	r.log.Info("replication finished", "domain", sourceDomain, "detected", len(detected),
		"replicated", len(res.Replicated), "failed", len(res.Errors))
	return res, nil
}
