// Package zonefile reads and writes records in a simplified BIND-style text
// format.
package zonefile

import (
	"strconv"
	"strings"

	"github.com/yuriy-kovalchuk/yk-dns-migrator/internal/dns"
)

// ExportOptions controls the zone file header.
type ExportOptions struct {
	// DefaultTTL is written as $TTL and used for records without a TTL.
	DefaultTTL int
}

// Export renders records as a zone file for zoneName. Owner names are written
// relative to the zone: "@" for the apex, leading labels for names inside the
// zone and an absolute "name." for anything else.
func Export(records []dns.Record, zoneName string, opts ExportOptions) string {
	origin := dns.TrimDot(zoneName)
	if opts.DefaultTTL <= 0 {
		opts.DefaultTTL = dns.DefaultTTL
	}

	var b strings.Builder
	if origin != "" {
		b.WriteString("$ORIGIN " + origin + ".\n")
	}
	b.WriteString("$TTL " + strconv.Itoa(opts.DefaultTTL) + "\n\n")

	for _, r := range records {
		ttl := opts.DefaultTTL
		if r.TTL != nil && *r.TTL > 0 {
			ttl = *r.TTL
		}
		fields := []string{
			RelativeOwner(r.Name, origin),
			strconv.Itoa(ttl),
			"IN",
			string(r.Type),
		}
		switch r.Type {
		case dns.TypeMX:
			fields = append(fields, strconv.Itoa(mxPreference(r)), strings.TrimSpace(r.Content))
		case dns.TypeSRV:
			fields = append(fields, srvContent(r))
		default:
			fields = append(fields, strings.TrimSpace(r.Content))
		}
		b.WriteString(strings.Join(fields, "\t"))
		b.WriteString("\n")
	}
	return b.String()
}

// RelativeOwner is dns.RelativeName with an empty origin treated as no zone:
// names are then written absolute.
func RelativeOwner(name, origin string) string {
	if origin == "" {
		if n := dns.TrimDot(name); n != "" {
			return n + "."
		}
		return "@"
	}
	return dns.RelativeName(name, origin)
}

// mxPreference returns the priority field written before MX content.
// Detected MX content carries the preference inline ("10 mail.example.com."),
// which is used when Priority is unset. The content itself is written as is.
func mxPreference(r dns.Record) int {
	if r.Priority != nil {
		return *r.Priority
	}
	if v, _, ok := inlinePreference(r.Content); ok {
		return v
	}
	return 0
}

// inlinePreference splits MX content of the form "preference exchange".
func inlinePreference(content string) (int, string, bool) {
	f := strings.Fields(content)
	if len(f) != 2 {
		return 0, "", false
	}
	v, err := strconv.Atoi(f[0])
	if err != nil {
		return 0, "", false
	}
	return v, f[1], true
}

// srvContent returns "priority weight port target", prepending Priority when
// the content only holds weight, port and target.
func srvContent(r dns.Record) string {
	content := strings.TrimSpace(r.Content)
	if len(strings.Fields(content)) == 3 && r.Priority != nil {
		return strconv.Itoa(*r.Priority) + " " + content
	}
	return content
}
