package dns

import "testing"

func TestRelativeName(t *testing.T) {
	tests := []struct {
		name, zone, want string
	}{
		{"example.com", "example.com", "@"},
		{"Example.COM.", "example.com", "@"},
		{"www.example.com", "example.com.", "www"},
		{"a.b.example.com", "example.com", "a.b"},
		{"other.org", "example.com", "other.org."},
		{"notexample.com", "example.com", "notexample.com."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RelativeName(tt.name, tt.zone); got != tt.want {
				t.Errorf("RelativeName(%q, %q) = %q, want %q", tt.name, tt.zone, got, tt.want)
			}
		})
	}
}

func TestJoinName(t *testing.T) {
	tests := []struct {
		owner, origin, want string
	}{
		{"@", "example.com.", "example.com"},
		{"@", "", ""},
		{"www", "example.com.", "www.example.com"},
		{"www", "", "www"},
		{"mail.other.org.", "example.com.", "mail.other.org"},
	}
	for _, tt := range tests {
		t.Run(tt.owner+"/"+tt.origin, func(t *testing.T) {
			if got := JoinName(tt.owner, tt.origin); got != tt.want {
				t.Errorf("JoinName(%q, %q) = %q, want %q", tt.owner, tt.origin, got, tt.want)
			}
		})
	}
}
