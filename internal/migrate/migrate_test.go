package migrate

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-logr/logr"
	logrtesting "github.com/go-logr/logr/testing"
	"github.com/google/go-cmp/cmp"

	"github.com/yuriy-kovalchuk/yk-dns-migrator/internal/dns"
	"github.com/yuriy-kovalchuk/yk-dns-migrator/internal/dns/dnstest"
	"github.com/yuriy-kovalchuk/yk-dns-migrator/internal/resolver"
)

type tableProber struct {
	answers map[string][]resolver.Answer
	fail    bool
	calls   atomic.Int32
}

func (p *tableProber) Lookup(_ context.Context, name string, typ dns.RecordType) resolver.Result {
	p.calls.Add(1)
	res := resolver.Result{Name: name, Type: typ}
	if p.fail {
		res.Err = errors.New("resolver unreachable")
		return res
	}
	res.Answers = p.answers[name+"/"+string(typ)]
	return res
}

func threeARecords() *tableProber {
	return &tableProber{answers: map[string][]resolver.Answer{
		"example.com/A":      {{Data: "192.0.2.1", TTL: dns.Int(300), TypeCode: 1}},
		"www.example.com/A":  {{Data: "192.0.2.2", TTL: dns.Int(300), TypeCode: 1}},
		"shop.example.com/A": {{Data: "192.0.2.3", TTL: dns.Int(300), TypeCode: 1}},
	}}
}

func TestMigrateWithDetection(t *testing.T) {
	p := dnstest.New()
	o := New(logrtesting.NewTestLogger(t), p, threeARecords(), Options{})

	res, err := o.MigrateWithDetection(context.Background(), "example.com", dns.ZoneFull)
	if err != nil {
		t.Fatalf("MigrateWithDetection: %v", err)
	}
	if res.Zone.Name != "example.com" {
		t.Errorf("expected zone name example.com, got %q", res.Zone.Name)
	}
	if len(res.Detected) != 3 || len(res.Replicated) != 3 {
		t.Errorf("expected 3 detected and 3 replicated, got %d and %d", len(res.Detected), len(res.Replicated))
	}
	if len(res.Errors) != 0 {
		t.Errorf("expected no errors, got %v", res.Errors)
	}
	if len(res.NextSteps) != 3 {
		t.Fatalf("expected 3 next steps, got %v", res.NextSteps)
	}
	if !strings.Contains(res.NextSteps[0], "ada.ns.example.net, bob.ns.example.net") {
		t.Errorf("expected nameservers in first step, got %q", res.NextSteps[0])
	}
	if !strings.Contains(res.NextSteps[2], res.Zone.ID) {
		t.Errorf("expected zone id in validation step, got %q", res.NextSteps[2])
	}
	if got := len(p.Records(res.Zone.ID)); got != 3 {
		t.Errorf("expected 3 records stored in the new zone, got %d", got)
	}
}

func TestMigrateWithDetectionReplicationErrors(t *testing.T) {
	p := dnstest.New()
	p.FailCreate = func(r dns.Record) error {
		if r.Name == "shop.example.com" {
			return &dns.RejectedError{Errors: []dns.APIError{{Code: 9005, Message: "Content for A record is invalid."}}}
		}
		return nil
	}
	o := New(logr.Discard(), p, threeARecords(), Options{ImportConcurrency: 3})

	res, err := o.MigrateWithDetection(context.Background(), "example.com", "")
	if err != nil {
		t.Fatalf("MigrateWithDetection: %v", err)
	}
	if len(res.Replicated) != 2 || len(res.Errors) != 1 {
		t.Fatalf("expected 2 replicated and 1 error, got %d and %v", len(res.Replicated), res.Errors)
	}
	if len(res.NextSteps) != 4 || !strings.Contains(res.NextSteps[3], "A shop.example.com") {
		t.Errorf("expected a fourth step listing the failure, got %v", res.NextSteps)
	}
	if res.Zone.Type != dns.ZoneFull {
		t.Errorf("expected default zone type full, got %q", res.Zone.Type)
	}
}

func TestMigrateWithDetectionNothingDetected(t *testing.T) {
	o := New(logr.Discard(), dnstest.New(), &tableProber{}, Options{})
	res, err := o.MigrateWithDetection(context.Background(), "example.com", dns.ZoneFull)
	if err != nil {
		t.Fatalf("MigrateWithDetection: %v", err)
	}
	if len(res.Errors) != 1 || len(res.NextSteps) != 4 {
		t.Errorf("expected 1 error and 4 next steps, got %v / %v", res.Errors, res.NextSteps)
	}
}

func TestMigrateWithDetectionZoneFailure(t *testing.T) {
	p := dnstest.New()
	p.FailZone = &dns.RejectedError{Errors: []dns.APIError{{Code: 1061, Message: "example.com already exists"}}}
	prober := threeARecords()
	o := New(logr.Discard(), p, prober, Options{})

	res, err := o.MigrateWithDetection(context.Background(), "example.com", dns.ZoneFull)
	if err != nil {
		t.Fatalf("expected zone failure to be recorded, got error %v", err)
	}
	if diff := cmp.Diff(dns.Zone{}, res.Zone); diff != "" {
		t.Errorf("expected empty placeholder zone (-want +got):\n%s", diff)
	}
	if len(res.Errors) != 1 || !strings.Contains(res.Errors[0], "already exists") {
		t.Errorf("expected the creation error, got %v", res.Errors)
	}
	if n := prober.calls.Load(); n != 0 {
		t.Errorf("expected no detection after zone failure, got %d probes", n)
	}
	if p.Creates != 0 {
		t.Errorf("expected no records created, got %d", p.Creates)
	}
}

func TestStartMigration(t *testing.T) {
	o := New(logr.Discard(), dnstest.New(), &tableProber{}, Options{})
	res, err := o.StartMigration(context.Background(), "example.com.", dns.ZonePartial)
	if err != nil {
		t.Fatalf("StartMigration: %v", err)
	}
	if res.Zone.Name != "example.com" || res.Zone.Type != dns.ZonePartial {
		t.Errorf("unexpected zone %+v", res.Zone)
	}
	if len(res.NextSteps) != 4 || len(res.Detected) != 0 {
		t.Errorf("unexpected result %+v", res)
	}
}

func TestCheckPropagation(t *testing.T) {
	prober := &tableProber{answers: map[string][]resolver.Answer{
		"example.com/NS": {
			{Data: "ADA.ns.example.net.", TypeCode: 2},
			{Data: "bob.ns.example.net.", TypeCode: 2},
			{Data: "extra.ns.example.net.", TypeCode: 2},
		},
	}}
	o := New(logr.Discard(), dnstest.New(), prober, Options{})
	ctx := context.Background()

	tests := []struct {
		name     string
		expected []string
		want     bool
	}{
		{"superset", []string{"ada.ns.example.net", "bob.ns.example.net"}, true},
		{"trailing dots", []string{"ada.ns.example.net.", "BOB.ns.example.net."}, true},
		{"missing one", []string{"ada.ns.example.net", "carl.ns.example.net"}, false},
		{"nothing expected", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := o.CheckPropagation(ctx, "example.com", tt.expected); got != tt.want {
				t.Errorf("CheckPropagation(%v) = %v, want %v", tt.expected, got, tt.want)
			}
		})
	}

	status := o.PropagationStatus(ctx, "example.com", []string{"ada.ns.example.net", "carl.ns.example.net"})
	if diff := cmp.Diff([]string{"carl.ns.example.net"}, status.Missing); diff != "" {
		t.Errorf("missing mismatch (-want +got):\n%s", diff)
	}
}

func TestCheckPropagationLookupFailure(t *testing.T) {
	o := New(logr.Discard(), dnstest.New(), &tableProber{fail: true}, Options{})
	if o.CheckPropagation(context.Background(), "example.com", []string{"ns1.x.com", "ns2.x.com"}) {
		t.Fatal("expected false on resolver failure")
	}
	if o.CheckPropagation(context.Background(), "example.com", nil) {
		t.Fatal("expected false on resolver failure even with nothing expected")
	}
}

func TestWaitForPropagation(t *testing.T) {
	prober := &tableProber{answers: map[string][]resolver.Answer{
		"example.com/NS": {{Data: "ns1.x.com.", TypeCode: 2}},
	}}
	o := New(logr.Discard(), dnstest.New(), prober, Options{})

	if err := o.WaitForPropagation(context.Background(), "example.com", []string{"ns1.x.com"}, 10*time.Millisecond, time.Second); err != nil {
		t.Fatalf("expected propagation, got %v", err)
	}
	err := o.WaitForPropagation(context.Background(), "example.com", []string{"ns2.x.com"}, 10*time.Millisecond, 50*time.Millisecond)
	if err == nil {
		t.Fatal("expected timeout error")
	}
}

func TestValidateZoneSetup(t *testing.T) {
	p := dnstest.New()
	p.AddZone(dns.Zone{ID: "pending", Name: "example.com", Status: dns.ZonePending, NameServers: []string{"ns1.x.com"}})
	p.AddZone(dns.Zone{ID: "bare", Name: "example.org", Status: dns.ZoneActive})
	p.AddZone(dns.Zone{ID: "ready", Name: "example.net", Status: dns.ZoneActive, NameServers: []string{"ns1.x.com"}})
	if _, err := p.CreateRecord(context.Background(), "ready", dns.Record{Type: dns.TypeA, Name: "example.net", Content: "192.0.2.1"}); err != nil {
		t.Fatal(err)
	}
	o := New(logr.Discard(), p, &tableProber{}, Options{})
	ctx := context.Background()

	v, err := o.ValidateZoneSetup(ctx, "pending")
	if err != nil {
		t.Fatalf("ValidateZoneSetup: %v", err)
	}
	if v.Valid || len(v.Issues) != 2 {
		t.Errorf("expected invalid with exactly 2 issues, got %+v", v)
	}

	v, err = o.ValidateZoneSetup(ctx, "bare")
	if err != nil {
		t.Fatalf("ValidateZoneSetup: %v", err)
	}
	want := []string{"zone has no nameservers assigned", "zone has no DNS records"}
	if diff := cmp.Diff(want, v.Issues); diff != "" {
		t.Errorf("issues mismatch (-want +got):\n%s", diff)
	}

	v, err = o.ValidateZoneSetup(ctx, "ready")
	if err != nil {
		t.Fatalf("ValidateZoneSetup: %v", err)
	}
	if !v.Valid || len(v.Issues) != 0 {
		t.Errorf("expected valid zone, got %+v", v)
	}

	if _, err := o.ValidateZoneSetup(ctx, "missing"); !errors.Is(err, dns.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestZoneFileExportImport(t *testing.T) {
	p := dnstest.New()
	p.AddZone(dns.Zone{ID: "src", Name: "example.com", Status: dns.ZoneActive})
	p.AddZone(dns.Zone{ID: "dst", Name: "example.com", Status: dns.ZonePending})
	ctx := context.Background()
	for _, r := range []dns.Record{
		{Type: dns.TypeA, Name: "example.com", Content: "192.0.2.1", TTL: dns.Int(300)},
		{Type: dns.TypeMX, Name: "example.com", Content: "mail.example.com.", TTL: dns.Int(300), Priority: dns.Int(10)},
		{Type: dns.TypeCNAME, Name: "www.example.com", Content: "example.com.", TTL: dns.Int(300)},
	} {
		if _, err := p.CreateRecord(ctx, "src", r); err != nil {
			t.Fatal(err)
		}
	}
	o := New(logr.Discard(), p, &tableProber{}, Options{})

	text, err := o.ExportZoneFile(ctx, "src")
	if err != nil {
		t.Fatalf("ExportZoneFile: %v", err)
	}
	if !strings.HasPrefix(text, "$ORIGIN example.com.\n") {
		t.Errorf("expected origin header, got %q", text)
	}

	res, err := o.ImportZoneFile(ctx, "dst", text+"@ 300 IN A\n")
	if err != nil {
		t.Fatalf("ImportZoneFile: %v", err)
	}
	if res.Parsed != 3 || len(res.Imported) != 3 || len(res.Errors) != 0 {
		t.Errorf("unexpected import result %+v", res)
	}
	if len(res.Issues) != 1 {
		t.Errorf("expected one issue for the incomplete line, got %v", res.Issues)
	}

	exported, err := o.ExportRecords(ctx, "dst", dns.RecordFilter{Type: dns.TypeMX})
	if err != nil {
		t.Fatalf("ExportRecords: %v", err)
	}
	if len(exported) != 1 || *exported[0].Priority != 10 || exported[0].Content != "mail.example.com." {
		t.Errorf("unexpected MX record after round trip: %+v", exported)
	}
}

func TestImportRecordsConfigMissing(t *testing.T) {
	p := dnstest.New()
	p.Unconfigured = true
	o := New(logr.Discard(), p, &tableProber{}, Options{})
	_, err := o.ImportRecords(context.Background(), "", []dns.Record{{Type: dns.TypeA, Name: "a", Content: "b"}})
	if !errors.Is(err, dns.ErrConfigMissing) {
		t.Fatalf("expected ErrConfigMissing, got %v", err)
	}
}
