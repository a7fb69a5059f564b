package cloudflare

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/yuriy-kovalchuk/yk-dns-migrator/internal/dns"
)

type cfZone struct {
	ID                  string    `json:"id"`
	Name                string    `json:"name"`
	Status              string    `json:"status"`
	Type                string    `json:"type"`
	NameServers         []string  `json:"name_servers"`
	OriginalNameServers []string  `json:"original_name_servers,omitempty"`
	CreatedOn           time.Time `json:"created_on"`
	ModifiedOn          time.Time `json:"modified_on"`
}

func (z cfZone) zone() dns.Zone {
	return dns.Zone{
		ID:                  z.ID,
		Name:                z.Name,
		Status:              dns.ZoneStatus(z.Status),
		Type:                dns.ZoneType(z.Type),
		NameServers:         z.NameServers,
		OriginalNameServers: z.OriginalNameServers,
		CreatedOn:           z.CreatedOn,
		ModifiedOn:          z.ModifiedOn,
	}
}

// CreateZone adds a zone for name. Jump-start record scanning is always
// disabled; records are brought over by the caller.
func (p *Provider) CreateZone(ctx context.Context, name string, zoneType dns.ZoneType) (*dns.Zone, error) {
	name = strings.TrimSuffix(strings.TrimSpace(name), ".")
	if zoneType == "" {
		zoneType = dns.ZoneFull
	}
	p.log.Info("creating zone", "name", name, "type", zoneType)

	body := map[string]any{
		"name":       name,
		"type":       string(zoneType),
		"jump_start": false,
	}
	if p.accountID != "" {
		body["account"] = map[string]string{"id": p.accountID}
	}

	env, err := p.do(ctx, http.MethodPost, "zones", nil, body)
	if err != nil {
		return nil, err
	}
	var z cfZone
	if err := decodeOne(env, "created zone "+name, &z); err != nil {
		return nil, err
	}
	zone := z.zone()
	p.log.Info("zone created", "id", zone.ID, "status", zone.Status, "nameservers", zone.NameServers)
	return &zone, nil
}

// GetZone fetches a zone by id; an empty id means the default zone.
func (p *Provider) GetZone(ctx context.Context, zoneID string) (*dns.Zone, error) {
	zoneID, err := p.ResolveZone(zoneID)
	if err != nil {
		return nil, err
	}
	env, err := p.do(ctx, http.MethodGet, "zones/"+url.PathEscape(zoneID), nil, nil)
	if err != nil {
		return nil, err
	}
	var z cfZone
	if err := decodeOne(env, "zone "+zoneID, &z); err != nil {
		return nil, err
	}
	zone := z.zone()
	return &zone, nil
}

// ListZones returns every zone visible to the token that matches filter.
func (p *Provider) ListZones(ctx context.Context, filter dns.ZoneFilter) ([]dns.Zone, error) {
	query := url.Values{}
	if filter.Name != "" {
		query.Set("name", strings.TrimSuffix(filter.Name, "."))
	}
	if filter.Status != "" {
		query.Set("status", string(filter.Status))
	}

	var out []dns.Zone
	err := p.listAll(ctx, "zones", query, func(raw json.RawMessage) error {
		var page []cfZone
		if err := json.Unmarshal(raw, &page); err != nil {
			return err
		}
		for _, z := range page {
			out = append(out, z.zone())
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
