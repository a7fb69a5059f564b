package zonefile

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	mdns "github.com/miekg/dns"

	"github.com/yuriy-kovalchuk/yk-dns-migrator/internal/dns"
)

// Issue is a non-fatal problem found on one line.
type Issue struct {
	Line    int    `json:"line"`
	Level   string `json:"level"`
	Message string `json:"message"`
}

func (i Issue) String() string {
	return fmt.Sprintf("line %d: %s: %s", i.Line, i.Level, i.Message)
}

// ParseError is returned when the input cannot be read at all.
type ParseError struct {
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("zonefile: read failed after line %d: %v", e.Line, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ParseString parses zone file text.
func ParseString(text string) ([]dns.Record, []Issue, error) {
	return Parse(strings.NewReader(text))
}

// Parse reads records line by line. Directives apply only to the lines that
// follow them: "@" seen before any $ORIGIN resolves to the empty name. Lines
// with an unrecognized type are skipped without an issue.
func Parse(r io.Reader) ([]dns.Record, []Issue, error) {
	var (
		records    []dns.Record
		issues     []Issue
		origin     string
		defaultTTL *int
	)

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(strings.TrimPrefix(sc.Text(), "\ufeff"))
		if line == "" || strings.HasPrefix(line, ";") {
			continue
		}
		fields := strings.Fields(line)

		switch strings.ToUpper(fields[0]) {
		case "$TTL":
			if len(fields) < 2 {
				issues = append(issues, Issue{Line: lineNo, Level: "warn", Message: "$TTL without value"})
				continue
			}
			v, err := strconv.Atoi(fields[1])
			if err != nil || v < 1 {
				issues = append(issues, Issue{Line: lineNo, Level: "warn", Message: fmt.Sprintf("invalid $TTL %q", fields[1])})
				continue
			}
			defaultTTL = dns.Int(v)
			continue
		case "$ORIGIN":
			if len(fields) < 2 {
				issues = append(issues, Issue{Line: lineNo, Level: "warn", Message: "$ORIGIN without value"})
				continue
			}
			origin = fields[1]
			continue
		}

		if len(fields) < 4 {
			issues = append(issues, Issue{Line: lineNo, Level: "warn", Message: fmt.Sprintf("expected at least 4 fields, got %d", len(fields))})
			continue
		}
		typ, err := dns.ParseRecordType(fields[3])
		if err != nil || !typ.Detectable() {
			continue
		}

		rec := dns.Record{Type: typ, Name: dns.JoinName(fields[0], origin)}
		if v, err := strconv.Atoi(fields[1]); err == nil && v > 0 {
			rec.TTL = dns.Int(v)
		} else {
			rec.TTL = defaultTTL
		}

		rdata := fields[4:]
		if typ == dns.TypeMX && len(rdata) > 0 {
			prio, err := strconv.Atoi(rdata[0])
			if err != nil {
				issues = append(issues, Issue{Line: lineNo, Level: "warn", Message: fmt.Sprintf("invalid MX priority %q", rdata[0])})
				continue
			}
			rec.Priority = dns.Int(prio)
			rdata = rdata[1:]
		}
		rec.Content = strings.Join(rdata, " ")
		if rec.Content == "" {
			issues = append(issues, Issue{Line: lineNo, Level: "warn", Message: fmt.Sprintf("%s record %q has no content", typ, fields[0])})
			continue
		}

		if msg := checkRData(rec); msg != "" {
			issues = append(issues, Issue{Line: lineNo, Level: "warn", Message: msg})
		}
		records = append(records, rec)
	}
	if err := sc.Err(); err != nil {
		return nil, issues, &ParseError{Line: lineNo, Err: err}
	}
	return records, issues, nil
}

// checkRData runs the record through a full RR parser and reports why it
// would not be accepted. The record is kept either way.
func checkRData(rec dns.Record) string {
	if rec.Name == "" {
		return ""
	}
	rdata := rec.Content
	if rec.Type == dns.TypeMX {
		if _, _, ok := inlinePreference(rdata); !ok {
			rdata = strconv.Itoa(*rec.Priority) + " " + rdata
		}
	}
	text := fmt.Sprintf("%s. %d IN %s %s", dns.TrimDot(rec.Name), rec.TTLOrDefault(), rec.Type, rdata)
	if _, err := mdns.NewRR(text); err != nil {
		return fmt.Sprintf("%s record %s: %v", rec.Type, rec.Name, err)
	}
	return ""
}
