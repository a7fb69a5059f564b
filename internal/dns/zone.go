package dns

import (
	"fmt"
	"strings"
	"time"
)

// ZoneStatus is observed from the provider and never set locally.
type ZoneStatus string

const (
	ZoneActive       ZoneStatus = "active"
	ZonePending      ZoneStatus = "pending"
	ZoneInitializing ZoneStatus = "initializing"
	ZoneMoved        ZoneStatus = "moved"
	ZoneDeleted      ZoneStatus = "deleted"
	ZoneDeactivated  ZoneStatus = "deactivated"
)

// ZoneType selects full (authoritative) or partial (CNAME setup) hosting.
type ZoneType string

const (
	ZoneFull    ZoneType = "full"
	ZonePartial ZoneType = "partial"
)

// ParseZoneType returns ZoneFull for an empty string.
func ParseZoneType(s string) (ZoneType, error) {
	switch ZoneType(strings.ToLower(strings.TrimSpace(s))) {
	case "", ZoneFull:
		return ZoneFull, nil
	case ZonePartial:
		return ZonePartial, nil
	default:
		return "", fmt.Errorf("invalid zone type %q (want full or partial)", s)
	}
}

// Zone is a provider-managed collection of records for one domain. ID is the
// durable key for every record operation against the zone.
type Zone struct {
	ID                  string     `json:"id"`
	Name                string     `json:"name"`
	Status              ZoneStatus `json:"status"`
	Type                ZoneType   `json:"type"`
	NameServers         []string   `json:"name_servers"`
	OriginalNameServers []string   `json:"original_name_servers,omitempty"`
	CreatedOn           time.Time  `json:"created_on"`
	ModifiedOn          time.Time  `json:"modified_on"`
}

// ZoneFilter narrows a zone listing.
type ZoneFilter struct {
	Name   string
	Status ZoneStatus
}
