package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"favtunes/internal/logging"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestCORSAllowList(t *testing.T) {
	h := CORS([]string{"https://app.example", " http://localhost:5173 "})(okHandler)

	tests := []struct {
		origin      string
		allowOrigin string
	}{
		{origin: "https://app.example", allowOrigin: "https://app.example"},
		{origin: "http://localhost:5173", allowOrigin: "http://localhost:5173"},
		{origin: "https://evil.example", allowOrigin: ""},
		{origin: "", allowOrigin: ""},
	}

	for _, tc := range tests {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/favorites", nil)
		if tc.origin != "" {
			req.Header.Set("Origin", tc.origin)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		if got := rec.Header().Get("Access-Control-Allow-Origin"); got != tc.allowOrigin {
			t.Errorf("origin %q: expected allow-origin %q, got %q", tc.origin, tc.allowOrigin, got)
		}
		if tc.allowOrigin != "" && rec.Header().Get("Access-Control-Allow-Credentials") != "true" {
			t.Errorf("origin %q: expected credentials allowed", tc.origin)
		}
	}
}

func TestCORSWildcardAndPreflight(t *testing.T) {
	called := false
	h := CORS([]string{"*"})(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { called = true }))

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/favorites", nil)
	req.Header.Set("Origin", "https://any.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodDelete)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204 for preflight, got %d", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Fatalf("expected wildcard origin")
	}
	if called {
		t.Fatalf("preflight must not reach the handler")
	}
}

func TestRequestLoggingPropagatesID(t *testing.T) {
	var seen string
	h := RequestLogging()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = logging.RequestID(r.Context())
		w.WriteHeader(http.StatusTeapot)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "req-1")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if seen != "req-1" || rec.Header().Get(RequestIDHeader) != "req-1" {
		t.Fatalf("expected request id to propagate, got ctx=%q header=%q", seen, rec.Header().Get(RequestIDHeader))
	}
	if rec.Code != http.StatusTeapot {
		t.Fatalf("status not passed through: %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if seen == "" || seen == "req-1" || rec.Header().Get(RequestIDHeader) != seen {
		t.Fatalf("expected generated request id, got %q", seen)
	}
}

func TestRecovery(t *testing.T) {
	h := Chain(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}), RequestLogging(), Recovery())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if rec.Body.String() != `{"success":false,"error":"Internal Server Error"}` {
		t.Fatalf("unexpected body %q", rec.Body.String())
	}
}
