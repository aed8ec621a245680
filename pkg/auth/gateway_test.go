package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func testHandler(cfg SecConfig) http.Handler {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return AuthenticateRequestMiddleware(cfg)(ok)
}

func baseCfg() SecConfig {
	return SecConfig{
		AllowedOrigins: []string{"https://clinic.example"},
		BackendKeys:    map[string]struct{}{"bk1": {}},
		FrontendKeys:   map[string]struct{}{"fk1": {}},
	}
}

func do(h http.Handler, method, path string, hdr map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	req.RemoteAddr = "10.0.0.1:52000"
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestUnauthenticatedBlocked(t *testing.T) {
	h := testHandler(baseCfg())
	if rr := do(h, http.MethodGet, "/v1/contacts", nil); rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
	if rr := do(h, http.MethodGet, "/v1/contacts", map[string]string{"X-API-Key": "wrong"}); rr.Code != http.StatusUnauthorized {
		t.Fatalf("bad key: expected 401, got %d", rr.Code)
	}
}

func TestHealthBypassesAuth(t *testing.T) {
	h := testHandler(baseCfg())
	for _, p := range []string{"/healthz", "/readyz"} {
		if rr := do(h, http.MethodGet, p, nil); rr.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", p, rr.Code)
		}
	}
}

func TestBackendKeyAllowed(t *testing.T) {
	h := testHandler(baseCfg())
	rr := do(h, http.MethodPut, "/v1/records/staff", map[string]string{"Authorization": "Bearer bk1"})
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	// x-api-key works too
	rr = do(h, http.MethodGet, "/v1/contacts", map[string]string{"X-API-Key": "bk1"})
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
}

func TestFrontendKeyScoping(t *testing.T) {
	h := testHandler(baseCfg())
	hdr := map[string]string{"X-API-Key": "fk1"}

	allowed := []struct{ method, path string }{
		{http.MethodGet, "/v1/contacts"},
		{http.MethodGet, "/v1/records/staff"},
		{http.MethodPost, "/v1/session/composer"},
		{http.MethodDelete, "/v1/conversation"},
	}
	for _, c := range allowed {
		if rr := do(h, c.method, c.path, hdr); rr.Code != http.StatusOK {
			t.Fatalf("%s %s: expected 200, got %d", c.method, c.path, rr.Code)
		}
	}

	// record writes are backend-only
	if rr := do(h, http.MethodPut, "/v1/records/staff", hdr); rr.Code != http.StatusForbidden {
		t.Fatalf("frontend record write: expected 403, got %d", rr.Code)
	}
}

func TestIPWhitelist(t *testing.T) {
	cfg := baseCfg()
	cfg.IPWhitelist = []string{"192.168.1.1"}
	h := testHandler(cfg)
	rr := do(h, http.MethodGet, "/v1/contacts", map[string]string{"X-API-Key": "bk1"})
	if rr.Code != http.StatusForbidden {
		t.Fatalf("non-whitelisted ip: expected 403, got %d", rr.Code)
	}
}

func TestCORSPreflightAndHeaders(t *testing.T) {
	h := testHandler(baseCfg())

	req := httptest.NewRequest(http.MethodOptions, "/v1/contacts", nil)
	req.Header.Set("Origin", "https://clinic.example")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("preflight: expected 204, got %d", rr.Code)
	}
	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "https://clinic.example" {
		t.Fatalf("unexpected allow-origin: %q", got)
	}

	// disallowed origin gets no CORS headers
	rr = do(h, http.MethodGet, "/v1/contacts", map[string]string{"Origin": "https://evil.example", "X-API-Key": "bk1"})
	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Fatalf("disallowed origin leaked CORS header: %q", got)
	}
}

func TestRateLimitKicksIn(t *testing.T) {
	cfg := baseCfg()
	cfg.RPS = 1
	cfg.Burst = 2
	h := testHandler(cfg)
	hdr := map[string]string{"X-API-Key": "bk1"}

	limited := false
	for i := 0; i < 5; i++ {
		if rr := do(h, http.MethodGet, "/v1/contacts", hdr); rr.Code == http.StatusTooManyRequests {
			limited = true
			break
		}
	}
	if !limited {
		t.Fatalf("expected a 429 after exhausting the burst")
	}
}
