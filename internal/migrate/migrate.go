// Package migrate drives a domain move onto the provider: zone creation,
// record replication, propagation checks and zone validation.
package migrate

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-logr/logr"

	"github.com/yuriy-kovalchuk/yk-dns-migrator/internal/detect"
	"github.com/yuriy-kovalchuk/yk-dns-migrator/internal/dns"
	"github.com/yuriy-kovalchuk/yk-dns-migrator/internal/replicate"
)

// Options tunes the pipeline. Zero values select the package defaults.
type Options struct {
	DetectConcurrency int
	ImportConcurrency int
}

// Orchestrator ties the provider, the public resolver and the replication
// pipeline together.
type Orchestrator struct {
	provider   dns.Provider
	prober     detect.Prober
	detector   *detect.Detector
	importer   *replicate.Importer
	replicator *replicate.Replicator
	log        logr.Logger
}

// New creates an Orchestrator.
func New(log logr.Logger, provider dns.Provider, prober detect.Prober, opts Options) *Orchestrator {
	detector := detect.New(log.WithName("detect"), prober, opts.DetectConcurrency)
	importer := replicate.NewImporter(log.WithName("import"), provider, opts.ImportConcurrency)
	return &Orchestrator{
		provider:   provider,
		prober:     prober,
		detector:   detector,
		importer:   importer,
		replicator: replicate.NewReplicator(log.WithName("replicate"), detector, importer),
		log:        log,
	}
}

// Detector returns the detector used for replication.
func (o *Orchestrator) Detector() *detect.Detector { return o.detector }

// Replicator returns the replicator used by MigrateWithDetection.
func (o *Orchestrator) Replicator() *replicate.Replicator { return o.replicator }

// MigrationResult aggregates the zone creation outcome with a replication
// result. NextSteps is advisory text for the operator.
type MigrationResult struct {
	Zone       dns.Zone            `json:"zone"`
	Detected   []dns.Record        `json:"detected"`
	Replicated []dns.ManagedRecord `json:"replicated"`
	Errors     []string            `json:"errors"`
	NextSteps  []string            `json:"next_steps"`
}

func newResult() *MigrationResult {
	return &MigrationResult{
		Detected:   []dns.Record{},
		Replicated: []dns.ManagedRecord{},
		Errors:     []string{},
		NextSteps:  []string{},
	}
}

// createZone records a creation failure in res and reports whether the zone exists.
func (o *Orchestrator) createZone(ctx context.Context, res *MigrationResult, domain string, zoneType dns.ZoneType) bool {
	zone, err := o.provider.CreateZone(ctx, domain, zoneType)
	if err != nil {
		o.log.Info("zone creation failed", "domain", domain, "error", err.Error())
		res.Errors = append(res.Errors, fmt.Sprintf("create zone %s: %v", domain, err))
		return false
	}
	res.Zone = *zone
	return true
}

// StartMigration only creates the zone. Records are expected to be brought
// over separately through an import.
func (o *Orchestrator) StartMigration(ctx context.Context, domain string, zoneType dns.ZoneType) (*MigrationResult, error) {
	domain = dns.TrimDot(domain)
	res := newResult()
	if !o.createZone(ctx, res, domain, zoneType) {
		return res, nil
	}
	res.NextSteps = []string{
		nameserverStep(res.Zone.NameServers),
		fmt.Sprintf("Import the existing records: yk-dns-migrator records import --zone %s <records.json> or yk-dns-migrator zonefile import --zone %s <zone.txt>", res.Zone.ID, res.Zone.ID),
		propagationStep(domain, res.Zone.NameServers),
		validateStep(res.Zone.ID),
	}
	o.log.Info("migration started", "domain", domain, "zone", res.Zone.ID)
	return res, nil
}

// MigrateWithDetection creates a zone for domain and replicates the records
// currently published for it. A zone creation failure is returned as a
// result with an empty zone and the error recorded.
func (o *Orchestrator) MigrateWithDetection(ctx context.Context, domain string, zoneType dns.ZoneType) (*MigrationResult, error) {
	domain = dns.TrimDot(domain)
	res := newResult()
	if !o.createZone(ctx, res, domain, zoneType) {
		return res, nil
	}

	rep, err := o.replicator.Replicate(ctx, domain, res.Zone.ID)
	if err != nil {
		res.Errors = append(res.Errors, err.Error())
	} else {
		res.Detected = rep.Detected
		res.Replicated = rep.Replicated
		res.Errors = append(res.Errors, rep.Errors...)
	}

	res.NextSteps = []string{
		nameserverStep(res.Zone.NameServers),
		propagationStep(domain, res.Zone.NameServers),
		validateStep(res.Zone.ID),
	}
	if len(res.Errors) > 0 {
		res.NextSteps = append(res.NextSteps, "Review the replication errors: "+strings.Join(res.Errors, "; "))
	}
	o.log.Info("migration finished", "domain", domain, "zone", res.Zone.ID,
		"detected", len(res.Detected), "replicated", len(res.Replicated), "errors", len(res.Errors))
	return res, nil
}

func nameserverStep(ns []string) string {
	return "Update the nameservers at your registrar to: " + strings.Join(ns, ", ")
}

func propagationStep(domain string, ns []string) string {
	return fmt.Sprintf("Check propagation: yk-dns-migrator propagation check %s --nameservers %s", domain, strings.Join(ns, ","))
}

func validateStep(zoneID string) string {
	return "Validate the zone setup: yk-dns-migrator validate " + zoneID
}
