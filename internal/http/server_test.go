package http

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"cantiere/internal/core"
	mailmem "cantiere/internal/mail/memory"
	"cantiere/internal/services"
	"cantiere/internal/storage"
	visionmem "cantiere/internal/vision/memory"
)

func testExtraction() core.ReceiptExtraction {
	return core.ReceiptExtraction{
		Vendor:   "Ferramenta Parodi",
		Date:     "2025-03-12",
		Subtotal: core.Money{Cents: 10800},
		Tax:      core.Money{Cents: 2376},
		Total:    core.Money{Cents: 13176},
		LineItems: []core.ReceiptLineItem{
			{Description: "Lumber 2x4", Quantity: 24, Price: core.Money{Cents: 450}, Total: core.Money{Cents: 10800}},
		},
	}
}

// newTestServer wires the full stack over a throwaway SQLite file, with the
// in-memory mail and vision backends standing in for Gmail and Anthropic.
func newTestServer(t *testing.T, opts ...func(*Deps)) *Server {
	t.Helper()

	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	receipts := services.NewReceiptService(repo, visionmem.New(testExtraction()), t.TempDir())
	ingestion := services.NewIngestionService(repo, receipts, mailmem.New("site@example.com"), 10)

	deps := Deps{
		Projects:    services.NewProjectService(repo),
		Entries:     services.NewEntryService(repo),
		Taxonomy:    services.NewTaxonomyService(repo),
		Stats:       services.NewStatsService(repo),
		Receipts:    receipts,
		Connections: services.NewConnectionService(repo),
		Export:      services.NewExportService(repo),
		Scans:       services.NewLocalDispatcher(ingestion),
	}
	for _, opt := range opts {
		opt(&deps)
	}

	srv := NewServer(":0", deps)
	t.Cleanup(func() { srv.Shutdown(context.Background()) })
	return srv
}

func doJSON(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, req)
	return rr
}

func decodeBody[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rr.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode response %q: %v", rr.Body.String(), err)
	}
	return v
}

func createProject(t *testing.T, srv *Server, name string) core.Project {
	t.Helper()
	body := fmt.Sprintf(`{"name":%q,"totalBudget":100000,"startDate":"2025-01-06"}`, name)
	rr := doJSON(t, srv, http.MethodPost, "/projects", body)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create project status = %d, body %s", rr.Code, rr.Body.String())
	}
	return decodeBody[core.Project](t, rr)
}

func TestHealthEndpoints(t *testing.T) {
	srv := newTestServer(t)

	for _, path := range []string{"/healthz", "/readyz"} {
		rr := doJSON(t, srv, http.MethodGet, path, "")
		if rr.Code != http.StatusOK {
			t.Fatalf("%s status = %d", path, rr.Code)
		}
		if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
			t.Errorf("%s Content-Type = %q", path, ct)
		}
	}

	health := decodeBody[map[string]any](t, doJSON(t, srv, http.MethodGet, "/healthz", ""))
	if health["status"] != "ok" {
		t.Errorf("health status = %v, want ok", health["status"])
	}
	ready := decodeBody[map[string]any](t, doJSON(t, srv, http.MethodGet, "/readyz", ""))
	if ready["status"] != "ready" {
		t.Errorf("ready status = %v, want ready", ready["status"])
	}
}

func TestResponsesCarrySecurityHeaders(t *testing.T) {
	srv := newTestServer(t)
	rr := doJSON(t, srv, http.MethodGet, "/healthz", "")

	want := map[string]string{
		"X-Content-Type-Options":  "nosniff",
		"X-Frame-Options":         "DENY",
		"Content-Security-Policy": "default-src 'none'; frame-ancestors 'none'",
		"Referrer-Policy":         "no-referrer",
	}
	for header, value := range want {
		if got := rr.Header().Get(header); got != value {
			t.Errorf("%s = %q, want %q", header, got, value)
		}
	}
	if rr.Header().Get("X-Request-ID") == "" {
		t.Error("X-Request-ID header missing")
	}
}

func TestUnknownRouteAndMethod(t *testing.T) {
	srv := newTestServer(t)

	if rr := doJSON(t, srv, http.MethodGet, "/nope", ""); rr.Code != http.StatusNotFound {
		t.Fatalf("unknown route status = %d, want 404", rr.Code)
	}
	if rr := doJSON(t, srv, http.MethodPatch, "/projects", ""); rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("unsupported method status = %d, want 405", rr.Code)
	}
}

func TestBearerTokenGuard(t *testing.T) {
	srv := newTestServer(t, func(d *Deps) { d.APIToken = "sesame" })

	rr := doJSON(t, srv, http.MethodGet, "/projects", "")
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("no token status = %d, want 401", rr.Code)
	}
	if rr.Header().Get("WWW-Authenticate") == "" {
		t.Error("WWW-Authenticate header missing on 401")
	}

	req := httptest.NewRequest(http.MethodGet, "/projects", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	rr = httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("wrong token status = %d, want 401", rr.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/projects", nil)
	req.Header.Set("Authorization", "Bearer sesame")
	rr = httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("valid token status = %d, want 200", rr.Code)
	}

	// Health probes stay reachable without credentials.
	if rr := doJSON(t, srv, http.MethodGet, "/healthz", ""); rr.Code != http.StatusOK {
		t.Fatalf("healthz status = %d, want 200", rr.Code)
	}
}

func TestMutationRateLimit(t *testing.T) {
	srv := newTestServer(t)

	for i := 0; i < 60; i++ {
		if rr := doJSON(t, srv, http.MethodPost, "/projects", `{}`); rr.Code == http.StatusTooManyRequests {
			t.Fatalf("throttled at request %d, below the limit", i+1)
		}
	}
	rr := doJSON(t, srv, http.MethodPost, "/projects", `{}`)
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", rr.Code)
	}
	if got := rr.Header().Get("Retry-After"); got != "60" {
		t.Errorf("Retry-After = %q, want 60", got)
	}

	// Reads stay unthrottled.
	if rr := doJSON(t, srv, http.MethodGet, "/projects", ""); rr.Code != http.StatusOK {
		t.Fatalf("GET after throttle status = %d, want 200", rr.Code)
	}
}

func TestMalformedJSONAnswers400(t *testing.T) {
	srv := newTestServer(t)

	rr := doJSON(t, srv, http.MethodPost, "/projects", `{"name":`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
	body := decodeBody[errorBody](t, rr)
	if body.Error == "" {
		t.Error("error body missing message")
	}
	if body.RequestID == "" {
		t.Error("error body missing request id")
	}
}
