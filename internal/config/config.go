package config

import (
	"sort"
	"strings"
)

// ZoneMap maps domains to provider zone ids.
type ZoneMap struct {
	entries map[string]string
}

// NewZoneMap builds a ZoneMap from domain → zone id pairs. Keys are
// lower-cased and stripped of the trailing dot.
func NewZoneMap(entries map[string]string) *ZoneMap {
	m := make(map[string]string, len(entries))
	for k, v := range entries {
		m[strings.ToLower(strings.TrimSuffix(strings.TrimSpace(k), "."))] = strings.TrimSpace(v)
	}
	return &ZoneMap{entries: m}
}

// LookupZone finds the zone id for a hostname by matching against domain entries.
// It walks up the domain labels checking for exact matches and wildcard entries.
// Exact matches take priority over wildcards. For example, given:
//
//	"*.example.com":   "zone-a"
//	"shop.example.com": "zone-b"
//
// "api.example.com" returns "zone-a" (wildcard match)
// "shop.example.com" returns "zone-b" (exact match wins)
func (zm *ZoneMap) LookupZone(hostname string) (string, bool) {
	hostname = strings.ToLower(strings.TrimSuffix(hostname, "."))
	// Walk up the domain labels until we find a match
	for h := hostname; h != ""; {
		if id, ok := zm.entries[h]; ok {
			return id, true
		}
		idx := strings.Index(h, ".")
		if idx < 0 {
			break
		}
		if id, ok := zm.entries["*."+h[idx+1:]]; ok {
			return id, true
		}
		h = h[idx+1:]
	}
	return "", false
}

// Domains returns all configured domains, sorted.
func (zm *ZoneMap) Domains() []string {
	domains := make([]string, 0, len(zm.entries))
	for d := range zm.entries {
		domains = append(domains, d)
	}
	sort.Strings(domains)
	return domains
}
