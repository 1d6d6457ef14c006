package technitium

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/lite-lake/technisync/internal/domain"
	"github.com/lite-lake/technisync/internal/domain/entity"
)

func TestClient_ListZones(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/zones/list" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("token") != "secret" {
			t.Error("expected token parameter")
		}
		fmt.Fprint(w, `{"status":"ok","response":{"zones":[
			{"name":"example.com","type":"Primary","internal":false},
			{"name":"127.in-addr.arpa","type":"Primary","internal":true}
		]}}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "secret")
	zones, err := c.ListZones(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(zones) != 2 {
		t.Fatalf("expected 2 zones, got %d", len(zones))
	}
	if zones[0].Name != "example.com" || zones[1].Internal != true {
		t.Errorf("unexpected zones: %+v", zones)
	}
}

func TestClient_GetRecords(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("domain") != "example.com" || q.Get("listZone") != "true" {
			t.Errorf("unexpected query: %v", q)
		}
		fmt.Fprint(w, `{"status":"ok","response":{"records":[
			{"name":"www.example.com","type":"A","ttl":300,"rData":{"ipAddress":"10.0.0.1"}}
		]}}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "secret")
	records, err := c.GetRecords(context.Background(), "example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if records[0].RDataString("ipAddress") != "10.0.0.1" {
		t.Errorf("unexpected record: %+v", records[0])
	}
}

func TestClient_AddRecord(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		if r.PostForm.Get("domain") != "www.example.com" {
			t.Errorf("unexpected domain %q", r.PostForm.Get("domain"))
		}
		if r.PostForm.Get("zone") != "example.com" || r.PostForm.Get("type") != "A" {
			t.Errorf("unexpected form: %v", r.PostForm)
		}
		if r.PostForm.Get("ipAddress") != "10.0.0.1" {
			t.Errorf("expected rdata parameter, got %v", r.PostForm)
		}
		fmt.Fprint(w, `{"status":"ok"}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "secret")
	rec := &entity.Record{Name: "www.example.com", Type: entity.RecordTypeA, TTL: 300, RData: map[string]any{"ipAddress": "10.0.0.1"}}
	if err := c.AddRecord(context.Background(), "example.com", rec); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestClient_AddRecord_ApexName(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		if r.PostForm.Get("domain") != "example.com" {
			t.Errorf("expected apex mapped to zone, got %q", r.PostForm.Get("domain"))
		}
		fmt.Fprint(w, `{"status":"ok"}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "secret")
	rec := &entity.Record{Name: "@", Type: entity.RecordTypeTXT, TTL: 300, RData: map[string]any{"text": "hello"}}
	if err := c.AddRecord(context.Background(), "example.com", rec); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestClient_UpdateRecord_NewPrefix(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		if r.PostForm.Get("ipAddress") != "10.0.0.1" {
			t.Errorf("expected old rdata, got %v", r.PostForm)
		}
		if r.PostForm.Get("newipAddress") != "10.0.0.2" {
			t.Errorf("expected new-prefixed rdata, got %v", r.PostForm)
		}
		if r.PostForm.Get("ttl") != "600" {
			t.Errorf("expected new ttl, got %q", r.PostForm.Get("ttl"))
		}
		fmt.Fprint(w, `{"status":"ok"}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "secret")
	old := &entity.Record{Name: "www.example.com", Type: entity.RecordTypeA, TTL: 300, RData: map[string]any{"ipAddress": "10.0.0.1"}}
	updated := &entity.Record{Name: "www.example.com", Type: entity.RecordTypeA, TTL: 600, RData: map[string]any{"ipAddress": "10.0.0.2"}}
	if err := c.UpdateRecord(context.Background(), "example.com", old, updated); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestClient_APIErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status":"error","errorMessage":"no such zone"}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "secret")
	_, err := c.GetRecords(context.Background(), "missing.example")
	if !errors.Is(err, domain.ErrAPIStatus) {
		t.Fatalf("expected ErrAPIStatus, got %v", err)
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %T", err)
	}
	if apiErr.Message != "no such zone" {
		t.Errorf("unexpected message %q", apiErr.Message)
	}
}

func TestClient_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		fmt.Fprint(w, `{"status":"ok","response":{"zones":[]}}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "secret")
	if _, err := c.ListZones(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls.Load() != 3 {
		t.Errorf("expected 3 attempts, got %d", calls.Load())
	}
}

func TestClient_DoesNotRetryAPIErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		fmt.Fprint(w, `{"status":"error","errorMessage":"bad request"}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "secret")
	if _, err := c.ListZones(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	if calls.Load() != 1 {
		t.Errorf("expected 1 attempt, got %d", calls.Load())
	}
}

func TestIsRetryableError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{name: "nil", err: nil, expected: false},
		{name: "api error", err: &APIError{Endpoint: "/api", Message: "denied"}, expected: false},
		{name: "http 500", err: &httpStatusError{endpoint: "/api", code: 500}, expected: true},
		{name: "http 429", err: &httpStatusError{endpoint: "/api", code: 429}, expected: true},
		{name: "http 404", err: &httpStatusError{endpoint: "/api", code: 404}, expected: false},
		{name: "connection refused", err: errors.New("dial tcp: connection refused"), expected: true},
		{name: "plain error", err: errors.New("something else"), expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRetryableError(tt.err); got != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, got)
			}
		})
	}
}

type failingTransport struct {
	err error
}

func (t *failingTransport) RoundTrip(*http.Request) (*http.Response, error) {
	return nil, t.err
}

func TestClient_TransportErrorHidesToken(t *testing.T) {
	hc := &http.Client{Transport: &failingTransport{err: errors.New("connection refused")}}

	c := NewClient("http://ns1.example:5380", "supersecret", WithHTTPClient(hc))
	_, err := c.ListZones(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}

	msg := err.Error()
	if strings.Contains(msg, "supersecret") {
		t.Fatalf("token leaked into error message: %s", msg)
	}
	if !strings.Contains(msg, "token=[REDACTED]") {
		t.Errorf("expected redacted token marker in error message: %s", msg)
	}
	if !strings.Contains(msg, "connection refused") {
		t.Errorf("underlying cause dropped from error message: %s", msg)
	}
}
