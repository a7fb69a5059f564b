// Package dnstest provides an in-memory dns.Provider for tests.
package dnstest

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/yuriy-kovalchuk/yk-dns-migrator/internal/dns"
)

// Provider is a mutex-protected in-memory zone store. Fail hooks let tests
// reject individual calls.
type Provider struct {
	mu      sync.Mutex
	nextID  int
	zones   map[string]*dns.Zone
	records map[string][]dns.ManagedRecord

	// DefaultZone is returned by ResolveZone for an empty zone id.
	DefaultZone string
	// Unconfigured makes ResolveZone report dns.ErrConfigMissing.
	Unconfigured bool
	// FailCreate rejects CreateRecord when it returns a non-nil error.
	FailCreate func(dns.Record) error
	// FailZone rejects CreateZone with this error.
	FailZone error
	// NameServers are assigned to every created zone.
	NameServers []string

	Creates int
}

// New returns an empty provider with a default zone "zone-default".
func New() *Provider {
	return &Provider{
		zones:       map[string]*dns.Zone{},
		records:     map[string][]dns.ManagedRecord{},
		DefaultZone: "zone-default",
		NameServers: []string{"ada.ns.example.net", "bob.ns.example.net"},
	}
}

// AddZone stores z as is.
func (p *Provider) AddZone(z dns.Zone) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.zones[z.ID] = &z
}

// Records returns a copy of the records stored in zoneID.
func (p *Provider) Records(zoneID string) []dns.ManagedRecord {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]dns.ManagedRecord(nil), p.records[zoneID]...)
}

func (p *Provider) ResolveZone(zoneID string) (string, error) {
	if p.Unconfigured {
		return "", fmt.Errorf("dnstest: %w", dns.ErrConfigMissing)
	}
	if zoneID != "" {
		return zoneID, nil
	}
	if p.DefaultZone == "" {
		return "", fmt.Errorf("dnstest: no default zone: %w", dns.ErrConfigMissing)
	}
	return p.DefaultZone, nil
}

func (p *Provider) ListRecords(_ context.Context, zoneID string, filter dns.RecordFilter) ([]dns.ManagedRecord, error) {
	zoneID, err := p.ResolveZone(zoneID)
	if err != nil {
		return nil, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	out := []dns.ManagedRecord{}
	for _, r := range p.records[zoneID] {
		if filter.Type != "" && r.Type != filter.Type {
			continue
		}
		if filter.Name != "" && !strings.EqualFold(r.Name, filter.Name) {
			continue
		}
		if filter.Content != "" && r.Content != filter.Content {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (p *Provider) GetRecord(_ context.Context, zoneID, recordID string) (*dns.ManagedRecord, error) {
	zoneID, err := p.ResolveZone(zoneID)
	if err != nil {
		return nil, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, r := range p.records[zoneID] {
		if r.ID == recordID {
			return &r, nil
		}
	}
	return nil, fmt.Errorf("dnstest: record %s: %w", recordID, dns.ErrNotFound)
}

func (p *Provider) CreateRecord(_ context.Context, zoneID string, record dns.Record) (*dns.ManagedRecord, error) {
	zoneID, err := p.ResolveZone(zoneID)
	if err != nil {
		return nil, err
	}
	if p.FailCreate != nil {
		if err := p.FailCreate(record); err != nil {
			return nil, err
		}
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Creates++
	p.nextID++
	now := time.Now().UTC()
	m := dns.ManagedRecord{
		Record:     record,
		ID:         fmt.Sprintf("rec-%d", p.nextID),
		ZoneID:     zoneID,
		CreatedOn:  now,
		ModifiedOn: now,
	}
	if z, ok := p.zones[zoneID]; ok {
		m.ZoneName = z.Name
	}
	p.records[zoneID] = append(p.records[zoneID], m)
	return &m, nil
}

func (p *Provider) UpdateRecord(_ context.Context, zoneID, recordID string, record dns.Record) (*dns.ManagedRecord, error) {
	zoneID, err := p.ResolveZone(zoneID)
	if err != nil {
		return nil, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	for i, r := range p.records[zoneID] {
		if r.ID == recordID {
			r.Record = record
			r.ModifiedOn = time.Now().UTC()
			p.records[zoneID][i] = r
			return &r, nil
		}
	}
	return nil, fmt.Errorf("dnstest: record %s: %w", recordID, dns.ErrNotFound)
}

func (p *Provider) DeleteRecord(_ context.Context, zoneID, recordID string) error {
	zoneID, err := p.ResolveZone(zoneID)
	if err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	recs := p.records[zoneID]
	for i, r := range recs {
		if r.ID == recordID {
			p.records[zoneID] = append(recs[:i], recs[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("dnstest: record %s: %w", recordID, dns.ErrNotFound)
}

func (p *Provider) CreateZone(_ context.Context, name string, zoneType dns.ZoneType) (*dns.Zone, error) {
	if p.Unconfigured {
		return nil, fmt.Errorf("dnstest: %w", dns.ErrConfigMissing)
	}
	if p.FailZone != nil {
		return nil, p.FailZone
	}
	if zoneType == "" {
		zoneType = dns.ZoneFull
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.nextID++
	z := &dns.Zone{
		ID:          fmt.Sprintf("zone-%d", p.nextID),
		Name:        dns.TrimDot(name),
		Status:      dns.ZonePending,
		Type:        zoneType,
		NameServers: append([]string(nil), p.NameServers...),
		CreatedOn:   time.Now().UTC(),
	}
	p.zones[z.ID] = z
	out := *z
	return &out, nil
}

func (p *Provider) GetZone(_ context.Context, zoneID string) (*dns.Zone, error) {
	zoneID, err := p.ResolveZone(zoneID)
	if err != nil {
		return nil, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	z, ok := p.zones[zoneID]
	if !ok {
		return nil, fmt.Errorf("dnstest: zone %s: %w", zoneID, dns.ErrNotFound)
	}
	out := *z
	return &out, nil
}

func (p *Provider) ListZones(_ context.Context, filter dns.ZoneFilter) ([]dns.Zone, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := []dns.Zone{}
	for _, z := range p.zones {
		if filter.Name != "" && z.Name != dns.TrimDot(filter.Name) {
			continue
		}
		if filter.Status != "" && z.Status != filter.Status {
			continue
		}
		out = append(out, *z)
	}
	return out, nil
}

var _ dns.Provider = (*Provider)(nil)
