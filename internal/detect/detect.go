// Package detect discovers a domain's published records through a public
// resolver. Detection is a bounded enumeration: every detectable type at the
// apex plus A records for a fixed list of common subdomains. Anything outside
// that set is silently missed.
package detect

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-logr/logr"
	mdns "github.com/miekg/dns"
	"golang.org/x/sync/errgroup"

	"github.com/yuriy-kovalchuk/yk-dns-migrator/internal/dns"
	"github.com/yuriy-kovalchuk/yk-dns-migrator/internal/resolver"
)

// DefaultConcurrency is the number of probes in flight when none is configured.
const DefaultConcurrency = 4

// Subdomains are probed for A records after the apex pass, in this order.
var Subdomains = []string{"www", "mail", "ftp", "blog", "shop", "api", "admin"}

// Prober performs a single resolver lookup.
type Prober interface {
	Lookup(ctx context.Context, name string, typ dns.RecordType) resolver.Result
}

// Scan is the full outcome of a detection run. Probes holds one entry per
// lookup in probe order, so a caller can tell a missing record from a
// lookup that failed. Notes lists answer data that was kept but only
// partially understood.
type Scan struct {
	Domain  string            `json:"domain"`
	Records []dns.Record      `json:"records"`
	Notes   []string          `json:"notes,omitempty"`
	Probes  []resolver.Result `json:"-"`
}

// Failed returns the probes that errored.
func (s *Scan) Failed() []resolver.Result {
	var out []resolver.Result
	for _, p := range s.Probes {
		if p.Outcome() == resolver.Failed {
			out = append(out, p)
		}
	}
	return out
}

// Detector turns resolver answers into record descriptors.
type Detector struct {
	prober      Prober
	concurrency int
	log         logr.Logger
}

// New creates a Detector. A concurrency below 1 selects DefaultConcurrency.
func New(log logr.Logger, prober Prober, concurrency int) *Detector {
	if concurrency < 1 {
		concurrency = DefaultConcurrency
	}
	return &Detector{prober: prober, concurrency: concurrency, log: log}
}

// Detect returns the records found for domain.
func (d *Detector) Detect(ctx context.Context, domain string) ([]dns.Record, error) {
	scan, err := d.Scan(ctx, domain)
	if err != nil {
		return nil, err
	}
	return scan.Records, nil
}

type probe struct {
	name string
	typ  dns.RecordType
	apex bool
}

// Scan runs every probe and keeps the per-probe results alongside the records.
func (d *Detector) Scan(ctx context.Context, domain string) (*Scan, error) {
	domain = dns.TrimDot(domain)
	if domain == "" {
		return nil, fmt.Errorf("detect: domain is empty")
	}
	if _, ok := mdns.IsDomainName(domain); !ok || !strings.Contains(domain, ".") {
		return nil, fmt.Errorf("detect %s: invalid domain name", domain)
	}

	probes := make([]probe, 0, len(dns.DetectableTypes)+len(Subdomains))
	for _, t := range dns.DetectableTypes {
		probes = append(probes, probe{name: domain, typ: t, apex: true})
	}
	for _, sub := range Subdomains {
		probes = append(probes, probe{name: sub + "." + domain, typ: dns.TypeA})
	}

	d.log.Info("detecting records", "domain", domain, "probes", len(probes))

	results := make([]resolver.Result, len(probes))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.concurrency)
	for i, p := range probes {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = d.prober.Lookup(gctx, p.name, p.typ)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("detect %s: %w", domain, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("detect %s: %w", domain, err)
	}

	scan := &Scan{Domain: domain, Probes: results, Records: []dns.Record{}}
	for i, p := range probes {
		records, notes := toRecords(p, results[i].Answers)
		scan.Records = append(scan.Records, records...)
		scan.Notes = append(scan.Notes, notes...)
	}

	failed := len(scan.Failed())
	d.log.Info("detection finished", "domain", domain, "records", len(scan.Records), "failedProbes", failed, "notes", len(scan.Notes))
	return scan, nil
}

// toRecords keeps the answers of the probed type and converts them.
func toRecords(p probe, answers []resolver.Answer) ([]dns.Record, []string) {
	code := p.typ.Code()
	var out []dns.Record
	var notes []string
	for _, a := range answers {
		if a.TypeCode != code {
			continue
		}
		r := dns.Record{
			Type:    p.typ,
			Name:    p.name,
			Content: a.Data,
			TTL:     dns.Int(answerTTL(a)),
		}
		if p.apex {
			prio, ok := leadingPriority(a.Data)
			if !ok {
				notes = append(notes, fmt.Sprintf("%s %s: leading value of %q is outside 0..65535, priority dropped", p.typ, p.name, a.Data))
			}
			r.Priority = prio
		} else {
			r.Proxied = dns.Bool(false)
		}
		out = append(out, r)
	}
	return out, notes
}

func answerTTL(a resolver.Answer) int {
	if a.TTL == nil || *a.TTL <= 0 {
		return dns.DefaultTTL
	}
	return *a.TTL
}

// leadingPriority applies to any answer type: rdata with a space and an
// integer first token in the 16-bit range, such as "10 mail.example.com." or
// "0 issue ca.example", yields that integer. ok is false when the first token
// is an integer outside that range.
func leadingPriority(data string) (prio *int, ok bool) {
	if !strings.Contains(data, " ") {
		return nil, true
	}
	first := strings.Fields(data)
	if len(first) == 0 {
		return nil, true
	}
	v, err := strconv.Atoi(first[0])
	if err != nil {
		return nil, true
	}
	if v < 0 || v > 65535 {
		return nil, false
	}
	return &v, true
}
