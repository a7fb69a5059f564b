package migrate

import (
	"context"
	"fmt"
	"time"

	"k8s.io/apimachinery/pkg/util/sets"
	"k8s.io/apimachinery/pkg/util/wait"

	"github.com/yuriy-kovalchuk/yk-dns-migrator/internal/dns"
)

// Propagation describes how far a nameserver change has spread.
type Propagation struct {
	Domain     string   `json:"domain"`
	Expected   []string `json:"expected"`
	Resolved   []string `json:"resolved"`
	Missing    []string `json:"missing"`
	Propagated bool     `json:"propagated"`
	Error      string   `json:"error,omitempty"`
}

// PropagationStatus resolves the NS records of domain and compares them with
// expected. Names are compared case-insensitively without the trailing dot.
func (o *Orchestrator) PropagationStatus(ctx context.Context, domain string, expected []string) *Propagation {
	domain = dns.TrimDot(domain)
	want := sets.New[string]()
	for _, ns := range expected {
		if n := dns.TrimDot(ns); n != "" {
			want.Insert(n)
		}
	}
	p := &Propagation{Domain: domain, Expected: sets.List(want), Resolved: []string{}, Missing: sets.List(want)}

	res := o.prober.Lookup(ctx, domain, dns.TypeNS)
	if res.Err != nil {
		p.Error = res.Err.Error()
		return p
	}
	got := sets.New[string]()
	code := dns.TypeNS.Code()
	for _, a := range res.Answers {
		if a.TypeCode == code {
			got.Insert(dns.TrimDot(a.Data))
		}
	}
	p.Resolved = sets.List(got)
	p.Missing = sets.List(want.Difference(got))
	p.Propagated = got.IsSuperset(want)
	return p
}

// CheckPropagation reports whether every expected nameserver is served for
// domain. A failed lookup counts as not propagated.
func (o *Orchestrator) CheckPropagation(ctx context.Context, domain string, expected []string) bool {
	p := o.PropagationStatus(ctx, domain, expected)
	o.log.V(1).Info("propagation check", "domain", p.Domain, "propagated", p.Propagated, "missing", p.Missing)
	return p.Propagated
}

// WaitForPropagation polls CheckPropagation every interval until it succeeds
// or timeout expires.
func (o *Orchestrator) WaitForPropagation(ctx context.Context, domain string, expected []string, interval, timeout time.Duration) error {
	o.log.Info("waiting for propagation", "domain", domain, "nameservers", expected, "timeout", timeout)
	err := wait.PollUntilContextTimeout(ctx, interval, timeout, true, func(ctx context.Context) (bool, error) {
		return o.CheckPropagation(ctx, domain, expected), nil
	})
	if err != nil {
		return fmt.Errorf("wait for propagation of %s: %w", domain, err)
	}
	o.log.Info("nameservers propagated", "domain", domain)
	return nil
}
