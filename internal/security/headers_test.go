package security

import (
	"crypto/tls"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHeadersMiddleware(t *testing.T) {
	mw := Headers{Enable: true, EnableHSTS: true, HSTSMaxAge: 86400, HSTSIncludeSubdomains: true}
	handler := mw.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "https://grosir.example/api/v1/quotes", nil)
	req.TLS = &tls.ConnectionState{}
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	headers := rr.Result().Header
	if got := headers.Get("X-Content-Type-Options"); got != "nosniff" {
		t.Fatalf("expected nosniff, got %q", got)
	}
	if got := headers.Get("Strict-Transport-Security"); got != "max-age=86400; includeSubDomains" {
		t.Fatalf("unexpected hsts header %q", got)
	}
}

func TestHeadersMiddlewareNoHSTSOverPlainHTTP(t *testing.T) {
	mw := Headers{Enable: true, EnableHSTS: true}
	handler := mw.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "http://grosir.example/", nil))
	if rr.Header().Get("Strict-Transport-Security") != "" {
		t.Fatal("expected no hsts header without tls")
	}
	if rr.Header().Get("X-Frame-Options") != "DENY" {
		t.Fatal("expected frame options header")
	}
}

func TestHeadersMiddlewareDisabled(t *testing.T) {
	mw := Headers{Enable: false, EnableHSTS: true}
	handler := mw.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "http://grosir.example/", nil))
	if rr.Header().Get("X-Content-Type-Options") != "" {
		t.Fatal("expected no headers when disabled")
	}
}
