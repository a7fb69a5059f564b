// Package resolver queries a public DNS-over-HTTPS resolver through its JSON API.
package resolver

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-logr/logr"

	"github.com/yuriy-kovalchuk/yk-dns-migrator/internal/dns"
)

const (
	DefaultBaseURL = "https://dns.google"
	DefaultTimeout = 15 * time.Second

	// maxResponseSize bounds the resolver response body.
	maxResponseSize = 1 << 20
)

// Answer is one raw resolver answer.
type Answer struct {
	Data     string `json:"data"`
	TTL      *int   `json:"ttl,omitempty"`
	TypeCode uint16 `json:"type"`
}

// Outcome classifies a single probe.
type Outcome string

const (
	Answered Outcome = "answered"
	Empty    Outcome = "empty"
	Failed   Outcome = "failed"
)

// Result is the outcome of one lookup. Err is set only for transport or
// decoding failures; a resolver that reports no data yields an empty Answers
// slice and a nil Err.
type Result struct {
	Name    string
	Type    dns.RecordType
	Status  int
	Answers []Answer
	Err     error
}

// Outcome reports whether the probe answered, came back empty or failed.
func (r Result) Outcome() Outcome {
	switch {
	case r.Err != nil:
		return Failed
	case len(r.Answers) == 0:
		return Empty
	default:
		return Answered
	}
}

// Options configures a Client. Zero values select the defaults.
type Options struct {
	BaseURL string
	Timeout time.Duration
}

// Client issues unauthenticated lookups against the resolver. It keeps no
// state between calls.
type Client struct {
	baseURL string
	client  *http.Client
	log     logr.Logger
}

// New creates a resolver client.
func New(log logr.Logger, opts Options) (*Client, error) {
	base := strings.TrimSpace(opts.BaseURL)
	if base == "" {
		base = DefaultBaseURL
	}
	if _, err := url.Parse(base); err != nil {
		return nil, fmt.Errorf("resolver: invalid url %q: %w", base, err)
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(base, "/"),
		client:  &http.Client{Timeout: timeout},
		log:     log,
	}, nil
}

type response struct {
	Status int `json:"Status"`
	Answer []struct {
		Name string `json:"name"`
		Type uint16 `json:"type"`
		TTL  *int   `json:"TTL"`
		Data string `json:"data"`
	} `json:"Answer"`
}

// Lookup performs one GET {base}/resolve?name=&type= request.
func (c *Client) Lookup(ctx context.Context, name string, typ dns.RecordType) Result {
	res := Result{Name: name, Type: typ}

	q := url.Values{}
	q.Set("name", name)
	q.Set("type", string(typ))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/resolve?"+q.Encode(), nil)
	if err != nil {
		res.Err = fmt.Errorf("resolver: build request: %w", err)
		return res
	}
	req.Header.Set("Accept", "application/dns-json")

	resp, err := c.client.Do(req)
	if err != nil {
		res.Err = fmt.Errorf("resolver: %s %s: %w", typ, name, err)
		c.log.V(1).Info("lookup failed", "name", name, "type", typ, "error", err.Error())
		return res
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		res.Err = fmt.Errorf("resolver: %s %s: unexpected status %d", typ, name, resp.StatusCode)
		c.log.V(1).Info("lookup failed", "name", name, "type", typ, "status", resp.StatusCode)
		return res
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		res.Err = fmt.Errorf("resolver: read %s %s response: %w", typ, name, err)
		return res
	}
	var body response
	if err := json.Unmarshal(data, &body); err != nil {
		res.Err = fmt.Errorf("resolver: decode %s %s response: %w", typ, name, err)
		return res
	}

	res.Status = body.Status
	if body.Status != 0 {
		c.log.V(1).Info("resolver returned no data", "name", name, "type", typ, "status", body.Status)
		return res
	}
	for _, a := range body.Answer {
		res.Answers = append(res.Answers, Answer{Data: a.Data, TTL: a.TTL, TypeCode: a.Type})
	}
	c.log.V(1).Info("lookup done", "name", name, "type", typ, "answers", len(res.Answers))
	return res
}

// Resolve is the best-effort form of Lookup: any failure yields no answers.
func (c *Client) Resolve(ctx context.Context, name string, typ dns.RecordType) []Answer {
	res := c.Lookup(ctx, name, typ)
	if res.Err != nil {
		return nil
	}
	return res.Answers
}
