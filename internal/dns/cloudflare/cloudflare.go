package cloudflare

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-logr/logr"
	"k8s.io/client-go/util/flowcontrol"

	"github.com/yuriy-kovalchuk/yk-dns-migrator/internal/dns"
)

const (
	defaultBaseURL   = "https://api.cloudflare.com/client/v4"
	defaultTimeout   = 15 * time.Second
	defaultRateLimit = 4
	defaultRateBurst = 10
	pageSize         = 100

	// maxResponseSize bounds an API response body.
	maxResponseSize = 8 << 20
)

func init() {
	dns.Register("cloudflare", func(log logr.Logger, settings map[string]string) (dns.Provider, error) {
		return New(log, settings)
	})
}

// Provider implements dns.Provider for the Cloudflare v4 API.
type Provider struct {
	baseURL   string
	apiToken  string
	email     string
	accountID string
	zoneID    string
	client    *http.Client
	limiter   flowcontrol.RateLimiter
	log       logr.Logger
}

// New creates a Cloudflare DNS provider from the given settings map.
// Recognized settings: api_token, zone_id, account_email, account_id,
// base_url, timeout (default 15s), rate_limit (default 4/s), rate_burst (default 10).
// A missing api_token or zone_id is not an error here; operations that need
// them fail with dns.ErrConfigMissing.
func New(log logr.Logger, settings map[string]string) (*Provider, error) {
	baseURL := strings.TrimSpace(settings["base_url"])
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("cloudflare: invalid base_url %q: %w", baseURL, err)
	}

	timeout := defaultTimeout
	if v := settings["timeout"]; v != "" {
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("cloudflare: invalid timeout %q: %w", v, err)
		}
		timeout = parsed
	}

	qps := float64(defaultRateLimit)
	if v := settings["rate_limit"]; v != "" {
		parsed, err := strconv.ParseFloat(v, 32)
		if err != nil || parsed <= 0 {
			return nil, fmt.Errorf("cloudflare: invalid rate_limit %q", v)
		}
		qps = parsed
	}
	burst := defaultRateBurst
	if v := settings["rate_burst"]; v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 {
			return nil, fmt.Errorf("cloudflare: invalid rate_burst %q", v)
		}
		burst = parsed
	}

	return &Provider{
		baseURL:   strings.TrimRight(baseURL, "/"),
		apiToken:  strings.TrimSpace(settings["api_token"]),
		email:     strings.TrimSpace(settings["account_email"]),
		accountID: strings.TrimSpace(settings["account_id"]),
		zoneID:    strings.TrimSpace(settings["zone_id"]),
		client:    &http.Client{Timeout: timeout},
		limiter:   flowcontrol.NewTokenBucketRateLimiter(float32(qps), burst),
		log:       log,
	}, nil
}

// ResolveZone returns zoneID, or the configured default zone when zoneID is empty.
func (p *Provider) ResolveZone(zoneID string) (string, error) {
	if p.apiToken == "" {
		return "", fmt.Errorf("cloudflare: api token not set: %w", dns.ErrConfigMissing)
	}
	if id := strings.TrimSpace(zoneID); id != "" {
		return id, nil
	}
	if p.zoneID == "" {
		return "", fmt.Errorf("cloudflare: no zone id given and no default zone configured: %w", dns.ErrConfigMissing)
	}
	return p.zoneID, nil
}

// envelope is the response wrapper shared by every Cloudflare endpoint.
type envelope struct {
	Success    bool            `json:"success"`
	Errors     []dns.APIError  `json:"errors"`
	Result     json.RawMessage `json:"result"`
	ResultInfo *resultInfo     `json:"result_info,omitempty"`
}

type resultInfo struct {
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	TotalPages int `json:"total_pages"`
	Count      int `json:"count"`
	TotalCount int `json:"total_count"`
}

// do executes one API call and unwraps the envelope. The returned envelope
// is always successful.
func (p *Provider) do(ctx context.Context, method, path string, query url.Values, body interface{}) (*envelope, error) {
	if p.apiToken == "" {
		return nil, fmt.Errorf("cloudflare: api token not set: %w", dns.ErrConfigMissing)
	}
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("cloudflare: %s %s: %w", method, path, err)
	}

	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("cloudflare: marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	u := p.baseURL + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, u, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("cloudflare: build request: %w", err)
	}
	if p.email != "" {
		req.Header.Set("X-Auth-Email", p.email)
		req.Header.Set("X-Auth-Key", p.apiToken)
	} else {
		req.Header.Set("Authorization", "Bearer "+p.apiToken)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	p.log.V(1).Info("sending request", "method", method, "path", path)
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("cloudflare: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize+1))
	if err != nil {
		return nil, fmt.Errorf("cloudflare: read %s %s response: %w", method, path, err)
	}
	if len(data) > maxResponseSize {
		return nil, fmt.Errorf("cloudflare: %s %s: response exceeds %d bytes", method, path, maxResponseSize)
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, fmt.Errorf("cloudflare: %s %s: %w", method, path,
				dns.APIError{Code: resp.StatusCode, Message: string(bytes.TrimSpace(data))})
		}
		return nil, fmt.Errorf("cloudflare: decode %s %s response: %w", method, path, err)
	}
	if !env.Success {
		return nil, fmt.Errorf("cloudflare: %s %s: %w", method, path, &dns.RejectedError{Errors: env.Errors})
	}
	return &env, nil
}

// decodeOne decodes a singular result, treating null or a missing result as not found.
func decodeOne(env *envelope, what string, out interface{}) error {
	raw := bytes.TrimSpace(env.Result)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return fmt.Errorf("cloudflare: %s: %w", what, dns.ErrNotFound)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("cloudflare: decode %s: %w", what, err)
	}
	return nil
}

// listAll walks every page of a listing endpoint and hands each page's raw
// result to collect.
func (p *Provider) listAll(ctx context.Context, path string, query url.Values, collect func(json.RawMessage) error) error {
	if query == nil {
		query = url.Values{}
	}
	query.Set("per_page", strconv.Itoa(pageSize))
	for page := 1; ; page++ {
		query.Set("page", strconv.Itoa(page))
		env, err := p.do(ctx, http.MethodGet, path, query, nil)
		if err != nil {
			return err
		}
		raw := bytes.TrimSpace(env.Result)
		if len(raw) != 0 && !bytes.Equal(raw, []byte("null")) {
			if err := collect(raw); err != nil {
				return fmt.Errorf("cloudflare: decode %s page %d: %w", path, page, err)
			}
		}
		if env.ResultInfo == nil || page >= env.ResultInfo.TotalPages {
			return nil
		}
	}
}
