package technitium

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/lite-lake/technisync/internal/domain"
	"github.com/lite-lake/technisync/internal/domain/entity"
	"github.com/lite-lake/technisync/internal/domain/retry"
	"github.com/lite-lake/technisync/internal/infrastructure/logger"
)

const defaultTimeout = 30 * time.Second

// Client talks to one Technitium DNS server over its HTTP API. Every
// call authenticates with the API token as the `token` parameter; the
// token never appears in errors or logs.
type Client struct {
	baseURL string
	token   string
	httpc   *http.Client
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpc = hc
	}
}

func NewClient(baseURL, token string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		token:   token,
		httpc:   &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// envelope is the fixed response shape of the Technitium API: a status
// string, an error message when status is not ok, and the payload.
type envelope struct {
	Status       string          `json:"status"`
	ErrorMessage string          `json:"errorMessage"`
	Response     json.RawMessage `json:"response"`
}

// APIError is a request the server understood but rejected, e.g. a
// record that does not exist. Not retryable.
type APIError struct {
	Endpoint string
	Message  string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Endpoint, e.Message)
}

func (e *APIError) Unwrap() error {
	return domain.ErrAPIStatus
}

type httpStatusError struct {
	endpoint string
	code     int
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("%s: unexpected HTTP status %d", e.endpoint, e.code)
}

// transportError keeps the underlying error chain intact for retry
// classification, but its message scrubs the token: a url.Error quotes
// the full request URL, query string included.
type transportError struct {
	endpoint string
	err      error
}

func (e *transportError) Error() string {
	return fmt.Sprintf("request %s: %s", e.endpoint, logger.Scrub(e.err.Error()))
}

func (e *transportError) Unwrap() error {
	return e.err
}

func (c *Client) call(ctx context.Context, method, endpoint string, params url.Values, out any) error {
	return retry.Do(ctx, func() error {
		return c.doOnce(ctx, method, endpoint, params, out)
	}, retry.WithIsRetryable(IsRetryableError))
}

func (c *Client) doOnce(ctx context.Context, method, endpoint string, params url.Values, out any) error {
	if params == nil {
		params = url.Values{}
	}
	params.Set("token", c.token)

	var req *http.Request
	var err error
	switch method {
	case http.MethodPost:
		req, err = http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, strings.NewReader(params.Encode()))
		if err == nil {
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		}
	default:
		req, err = http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+endpoint+"?"+params.Encode(), nil)
	}
	if err != nil {
		return domain.WrapOp("build request", err)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return &transportError{endpoint: endpoint, err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &httpStatusError{endpoint: endpoint, code: resp.StatusCode}
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("%w: %s: %v", domain.ErrAPIDecodeFailed, endpoint, err)
	}

	if env.Status != "ok" {
		msg := env.ErrorMessage
		if msg == "" {
			msg = "unknown error"
		}
		return &APIError{Endpoint: endpoint, Message: msg}
	}

	if out != nil && len(env.Response) > 0 {
		if err := json.Unmarshal(env.Response, out); err != nil {
			return fmt.Errorf("%w: %s: %v", domain.ErrAPIDecodeFailed, endpoint, err)
		}
	}
	return nil
}

func (c *Client) ListZones(ctx context.Context) ([]Zone, error) {
	var resp struct {
		Zones []Zone `json:"zones"`
	}
	if err := c.call(ctx, http.MethodGet, "/api/zones/list", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Zones, nil
}

func (c *Client) CreateZone(ctx context.Context, zone string) error {
	params := url.Values{}
	params.Set("domain", zone)
	params.Set("type", "Primary")
	return c.call(ctx, http.MethodPost, "/api/zones/create", params, nil)
}

func (c *Client) GetRecords(ctx context.Context, zone string) ([]entity.Record, error) {
	params := url.Values{}
	params.Set("domain", zone)
	params.Set("listZone", "true")

	var resp struct {
		Records []entity.Record `json:"records"`
	}
	if err := c.call(ctx, http.MethodGet, "/api/zones/records/get", params, &resp); err != nil {
		return nil, err
	}
	return resp.Records, nil
}

func (c *Client) AddRecord(ctx context.Context, zone string, rec *entity.Record) error {
	params := url.Values{}
	params.Set("domain", apexName(rec.Name, zone))
	params.Set("zone", zone)
	params.Set("type", string(rec.Type))
	params.Set("ttl", strconv.Itoa(rec.TTL))
	applyRData(params, rec, "")
	return c.call(ctx, http.MethodPost, "/api/zones/records/add", params, nil)
}

// UpdateRecord rewrites a record in place: the old rdata identifies
// it, the new-prefixed parameters carry the replacement.
func (c *Client) UpdateRecord(ctx context.Context, zone string, old, updated *entity.Record) error {
	params := url.Values{}
	params.Set("domain", apexName(updated.Name, zone))
	params.Set("zone", zone)
	params.Set("type", string(updated.Type))
	params.Set("ttl", strconv.Itoa(updated.TTL))
	applyRData(params, old, "")
	applyRData(params, updated, "new")
	return c.call(ctx, http.MethodPost, "/api/zones/records/update", params, nil)
}

func (c *Client) DeleteRecord(ctx context.Context, zone string, rec *entity.Record) error {
	params := url.Values{}
	params.Set("domain", apexName(rec.Name, zone))
	params.Set("zone", zone)
	params.Set("type", string(rec.Type))
	applyRData(params, rec, "")
	return c.call(ctx, http.MethodPost, "/api/zones/records/delete", params, nil)
}

func (c *Client) ListDHCPScopes(ctx context.Context) ([]DHCPScope, error) {
	var resp struct {
		Scopes []DHCPScope `json:"scopes"`
	}
	if err := c.call(ctx, http.MethodGet, "/api/dhcp/scopes/list", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Scopes, nil
}

// apexName maps the "@" convention onto the wire format, which wants
// the zone name itself at the apex.
func apexName(name, zone string) string {
	if name == "@" || name == "" {
		return zone
	}
	return name
}

// IsRetryableError classifies transport-level failures worth retrying.
// API-level rejections are final.
func IsRetryableError(err error) bool {
	if err == nil {
		return false
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return false
	}

	var statusErr *httpStatusError
	if errors.As(err, &statusErr) {
		return statusErr.code >= 500 || statusErr.code == http.StatusTooManyRequests
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}

	errStr := strings.ToLower(err.Error())
	retryablePatterns := []string{
		"timeout",
		"connection reset",
		"connection refused",
		"temporary failure",
		"service unavailable",
		"bad gateway",
		"gateway timeout",
		"eof",
	}
	for _, pattern := range retryablePatterns {
		if strings.Contains(errStr, pattern) {
			return true
		}
	}
	return false
}
