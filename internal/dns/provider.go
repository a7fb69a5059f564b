package dns

import "context"

// Provider is the interface that DNS providers must implement. An empty
// zoneID always means the provider's configured default zone.
type Provider interface {
	ListRecords(ctx context.Context, zoneID string, filter RecordFilter) ([]ManagedRecord, error)
	GetRecord(ctx context.Context, zoneID, recordID string) (*ManagedRecord, error)
	CreateRecord(ctx context.Context, zoneID string, record Record) (*ManagedRecord, error)
	UpdateRecord(ctx context.Context, zoneID, recordID string, record Record) (*ManagedRecord, error)
	DeleteRecord(ctx context.Context, zoneID, recordID string) error

	CreateZone(ctx context.Context, name string, zoneType ZoneType) (*Zone, error)
	GetZone(ctx context.Context, zoneID string) (*Zone, error)
	ListZones(ctx context.Context, filter ZoneFilter) ([]Zone, error)

	// ResolveZone maps an empty zoneID to the default zone and reports
	// ErrConfigMissing when credentials or the zone id are absent. It never
	// touches the network.
	ResolveZone(zoneID string) (string, error)
}
