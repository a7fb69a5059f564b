package dns

import (
	"fmt"
	"strings"
	"time"

	mdns "github.com/miekg/dns"
)

// DefaultTTL is used wherever a record carries no TTL of its own.
const DefaultTTL = 300

// RecordType is a DNS resource record type supported by the provider.
type RecordType string

const (
	TypeA     RecordType = "A"
	TypeAAAA  RecordType = "AAAA"
	TypeCNAME RecordType = "CNAME"
	TypeMX    RecordType = "MX"
	TypeTXT   RecordType = "TXT"
	TypeNS    RecordType = "NS"
	TypeSRV   RecordType = "SRV"
	TypeCAA   RecordType = "CAA"
	TypePTR   RecordType = "PTR"
)

// DetectableTypes lists, in probe order, the types that can be discovered
// through public resolution and read back from a zone file.
var DetectableTypes = []RecordType{TypeA, TypeAAAA, TypeCNAME, TypeMX, TypeTXT, TypeNS, TypeSRV, TypeCAA}

var knownTypes = map[RecordType]bool{
	TypeA: true, TypeAAAA: true, TypeCNAME: true, TypeMX: true, TypeTXT: true,
	TypeNS: true, TypeSRV: true, TypeCAA: true, TypePTR: true,
}

// ParseRecordType normalizes s and checks it against the supported types.
func ParseRecordType(s string) (RecordType, error) {
	t := RecordType(strings.ToUpper(strings.TrimSpace(s)))
	if !knownTypes[t] {
		return "", fmt.Errorf("unsupported record type %q", s)
	}
	return t, nil
}

// Code returns the numeric RR type code, e.g. 1 for A and 257 for CAA.
func (t RecordType) Code() uint16 {
	return mdns.StringToType[string(t)]
}

// Detectable reports whether t is part of DetectableTypes. PTR records
// exist only on the provider side.
func (t RecordType) Detectable() bool {
	return knownTypes[t] && t != TypePTR
}

// Record is a provider-agnostic DNS record value. It carries no identity and
// is used both as detection output and as import input.
type Record struct {
	Type     RecordType `json:"type"`
	Name     string     `json:"name"`
	Content  string     `json:"content"`
	TTL      *int       `json:"ttl,omitempty"`
	Priority *int       `json:"priority,omitempty"`
	Proxied  *bool      `json:"proxied,omitempty"`
}

// Validate checks the acceptance rules for a record descriptor.
func (r Record) Validate() error {
	if !knownTypes[r.Type] {
		return fmt.Errorf("unsupported record type %q", r.Type)
	}
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("%s record: name is empty", r.Type)
	}
	if strings.TrimSpace(r.Content) == "" {
		return fmt.Errorf("%s record %s: content is empty", r.Type, r.Name)
	}
	if r.TTL != nil && *r.TTL < 1 {
		return fmt.Errorf("%s record %s: invalid ttl %d", r.Type, r.Name, *r.TTL)
	}
	if r.Priority != nil && (*r.Priority < 0 || *r.Priority > 65535) {
		return fmt.Errorf("%s record %s: priority %d out of range", r.Type, r.Name, *r.Priority)
	}
	return nil
}

// TTLOrDefault returns the record TTL, or DefaultTTL when none is set.
func (r Record) TTLOrDefault() int {
	if r.TTL == nil {
		return DefaultTTL
	}
	return *r.TTL
}

// ManagedRecord is a record as stored by the provider. ID is assigned by the
// provider and never invented locally.
type ManagedRecord struct {
	Record
	ID         string    `json:"id"`
	ZoneID     string    `json:"zone_id,omitempty"`
	ZoneName   string    `json:"zone_name,omitempty"`
	CreatedOn  time.Time `json:"created_on"`
	ModifiedOn time.Time `json:"modified_on"`
}

// RecordFilter narrows a record listing. Empty fields match everything.
type RecordFilter struct {
	Type    RecordType
	Name    string
	Content string
}

// Int returns a pointer to v.
func Int(v int) *int { return &v }

// Bool returns a pointer to v.
func Bool(v bool) *bool { return &v }
