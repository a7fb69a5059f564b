package dns

import (
	"strings"
)

// TrimDot lower-cases a name and strips surrounding space and the trailing root dot.
func TrimDot(name string) string {
	return strings.ToLower(strings.TrimSuffix(strings.TrimSpace(name), "."))
}

// RelativeName returns name relative to zone: "@" for the apex, the leading
// labels for names under the zone, and the absolute "name." otherwise.
func RelativeName(name, zone string) string {
	n, z := TrimDot(name), TrimDot(zone)
	if n == z || n == "" {
		return "@"
	}
	if z != "" && strings.HasSuffix(n, "."+z) {
		return strings.TrimSuffix(n, "."+z)
	}
	return n + "."
}

// JoinName expands a zone-relative owner name against origin. Absolute names
// keep their labels; "@" becomes the origin itself.
func JoinName(owner, origin string) string {
	owner = strings.TrimSpace(owner)
	origin = strings.TrimSuffix(strings.TrimSpace(origin), ".")
	switch {
	case owner == "@":
		return origin
	case strings.HasSuffix(owner, "."):
		return strings.TrimSuffix(owner, ".")
	case origin == "":
		return owner
	default:
		return owner + "." + origin
	}
}
