package cloudflare

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/yuriy-kovalchuk/yk-dns-migrator/internal/dns"
)

// cfRecord is the wire shape of a DNS record.
type cfRecord struct {
	ID         string         `json:"id"`
	ZoneID     string         `json:"zone_id,omitempty"`
	ZoneName   string         `json:"zone_name,omitempty"`
	Type       string         `json:"type"`
	Name       string         `json:"name"`
	Content    string         `json:"content"`
	TTL        int            `json:"ttl"`
	Priority   *int           `json:"priority,omitempty"`
	Proxied    *bool          `json:"proxied,omitempty"`
	Data       map[string]any `json:"data,omitempty"`
	CreatedOn  time.Time      `json:"created_on"`
	ModifiedOn time.Time      `json:"modified_on"`
}

func (r cfRecord) managed(zoneID string) dns.ManagedRecord {
	m := dns.ManagedRecord{
		Record: dns.Record{
			Type:     dns.RecordType(strings.ToUpper(r.Type)),
			Name:     r.Name,
			Content:  r.Content,
			Priority: r.Priority,
			Proxied:  r.Proxied,
		},
		ID:         r.ID,
		ZoneID:     r.ZoneID,
		ZoneName:   r.ZoneName,
		CreatedOn:  r.CreatedOn,
		ModifiedOn: r.ModifiedOn,
	}
	if r.TTL > 0 {
		m.TTL = dns.Int(r.TTL)
	}
	if m.ZoneID == "" {
		m.ZoneID = zoneID
	}
	return m
}

func recordsPath(zoneID string) string {
	return "zones/" + url.PathEscape(zoneID) + "/dns_records"
}

func recordPath(zoneID, recordID string) string {
	return recordsPath(zoneID) + "/" + url.PathEscape(strings.TrimSpace(recordID))
}

// ListRecords returns every record in the zone matching filter.
func (p *Provider) ListRecords(ctx context.Context, zoneID string, filter dns.RecordFilter) ([]dns.ManagedRecord, error) {
	zoneID, err := p.ResolveZone(zoneID)
	if err != nil {
		return nil, err
	}

	query := url.Values{}
	if filter.Type != "" {
		query.Set("type", string(filter.Type))
	}
	if filter.Name != "" {
		query.Set("name", filter.Name)
	}
	if filter.Content != "" {
		query.Set("content", filter.Content)
	}

	var out []dns.ManagedRecord
	err = p.listAll(ctx, recordsPath(zoneID), query, func(raw json.RawMessage) error {
		var page []cfRecord
		if err := json.Unmarshal(raw, &page); err != nil {
			return err
		}
		for _, r := range page {
			out = append(out, r.managed(zoneID))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	p.log.V(1).Info("listed records", "zone", zoneID, "count", len(out))
	return out, nil
}

// GetRecord fetches a single record by id.
func (p *Provider) GetRecord(ctx context.Context, zoneID, recordID string) (*dns.ManagedRecord, error) {
	zoneID, err := p.ResolveZone(zoneID)
	if err != nil {
		return nil, err
	}
	env, err := p.do(ctx, http.MethodGet, recordPath(zoneID, recordID), nil, nil)
	if err != nil {
		return nil, err
	}
	var r cfRecord
	if err := decodeOne(env, "record "+recordID, &r); err != nil {
		return nil, err
	}
	m := r.managed(zoneID)
	return &m, nil
}

// CreateRecord adds a record to the zone and returns the provider's copy.
func (p *Provider) CreateRecord(ctx context.Context, zoneID string, record dns.Record) (*dns.ManagedRecord, error) {
	zoneID, err := p.ResolveZone(zoneID)
	if err != nil {
		return nil, err
	}
	p.log.Info("creating record", "zone", zoneID, "name", record.Name, "type", record.Type, "content", record.Content)

	env, err := p.do(ctx, http.MethodPost, recordsPath(zoneID), nil, buildRecordBody(record))
	if err != nil {
		return nil, err
	}
	var r cfRecord
	if err := decodeOne(env, "created record "+record.Name, &r); err != nil {
		return nil, err
	}
	m := r.managed(zoneID)
	p.log.Info("record created", "id", m.ID)
	return &m, nil
}

// UpdateRecord overwrites the record with the given id, keeping its id.
func (p *Provider) UpdateRecord(ctx context.Context, zoneID, recordID string, record dns.Record) (*dns.ManagedRecord, error) {
	zoneID, err := p.ResolveZone(zoneID)
	if err != nil {
		return nil, err
	}
	p.log.Info("updating record", "zone", zoneID, "id", recordID, "name", record.Name, "type", record.Type)

	env, err := p.do(ctx, http.MethodPut, recordPath(zoneID, recordID), nil, buildRecordBody(record))
	if err != nil {
		return nil, err
	}
	var r cfRecord
	if err := decodeOne(env, "record "+recordID, &r); err != nil {
		return nil, err
	}
	m := r.managed(zoneID)
	return &m, nil
}

// DeleteRecord removes the record with the given id.
func (p *Provider) DeleteRecord(ctx context.Context, zoneID, recordID string) error {
	zoneID, err := p.ResolveZone(zoneID)
	if err != nil {
		return err
	}
	p.log.Info("deleting record", "zone", zoneID, "id", recordID)

	if _, err := p.do(ctx, http.MethodDelete, recordPath(zoneID, recordID), nil, nil); err != nil {
		return err
	}
	p.log.Info("record deleted", "id", recordID)
	return nil
}

// buildRecordBody creates the JSON body for create and update calls.
func buildRecordBody(record dns.Record) map[string]any {
	content := strings.TrimSpace(record.Content)
	priority := record.Priority
	body := map[string]any{
		"type": string(record.Type),
		"name": strings.TrimSuffix(strings.TrimSpace(record.Name), "."),
		"ttl":  ttlOrAuto(record.TTL),
	}
	if record.Proxied != nil {
		body["proxied"] = *record.Proxied
	}

	f := strings.Fields(content)
	switch record.Type {
	case dns.TypeMX:
		// Resolver answers carry the preference inside the rdata.
		if len(f) == 2 {
			if v, err := strconv.Atoi(f[0]); err == nil {
				content = f[1]
				if priority == nil {
					priority = &v
				}
			}
		}
	case dns.TypeSRV:
		if data, ok := srvData(f, priority); ok {
			body["data"] = data
			content = ""
		}
	case dns.TypeCAA:
		if data, ok := caaData(f); ok {
			body["data"] = data
			content = ""
		}
	}
	if content != "" {
		body["content"] = content
	}
	if priority != nil {
		body["priority"] = *priority
	}
	return body
}

// srvData accepts "priority weight port target" or "weight port target"
// with the priority carried separately.
func srvData(f []string, priority *int) (map[string]any, bool) {
	if len(f) == 3 && priority != nil {
		f = append([]string{strconv.Itoa(*priority)}, f...)
	}
	if len(f) != 4 {
		return nil, false
	}
	nums := make([]int, 3)
	for i := range nums {
		v, err := strconv.Atoi(f[i])
		if err != nil {
			return nil, false
		}
		nums[i] = v
	}
	return map[string]any{
		"priority": nums[0],
		"weight":   nums[1],
		"port":     nums[2],
		"target":   strings.TrimSuffix(f[3], "."),
	}, true
}

// caaData accepts "flags tag value".
func caaData(f []string) (map[string]any, bool) {
	if len(f) < 3 {
		return nil, false
	}
	flags, err := strconv.Atoi(f[0])
	if err != nil {
		return nil, false
	}
	return map[string]any{
		"flags": flags,
		"tag":   f[1],
		"value": strings.Trim(strings.Join(f[2:], " "), "\""),
	}, true
}

// ttlOrAuto maps an unset TTL to 1, Cloudflare's "automatic".
func ttlOrAuto(v *int) int {
	if v == nil || *v <= 0 {
		return 1
	}
	return *v
}

var _ dns.Provider = (*Provider)(nil)
