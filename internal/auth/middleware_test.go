package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"

	"github.com/noah-isme/backend-grosir/internal/common"
)

func signedToken(t *testing.T, secret []byte, subject string, expires time.Time) string {
	t.Helper()
	token, err := jwt.NewBuilder().
		Issuer("grosir").
		Audience([]string{"grosir-api"}).
		Subject(subject).
		IssuedAt(time.Now()).
		Expiration(expires).
		Build()
	if err != nil {
		t.Fatalf("build token: %v", err)
	}
	signed, err := jwt.Sign(token, jwt.WithKey(jwa.HS256, secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return string(signed)
}

func TestRequireAuth(t *testing.T) {
	secret := []byte("test-secret")
	m := Middleware{
		Secret:    secret,
		Validator: TokenValidator{Issuer: "grosir", Audience: "grosir-api", Algorithm: jwa.HS256},
	}

	var gotUser string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser, _ = common.UserID(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/quotes", nil)
	req.Header.Set("Authorization", "Bearer "+signedToken(t, secret, "store-42", time.Now().Add(time.Minute)))
	rec := httptest.NewRecorder()
	m.RequireAuth(next).ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if gotUser != "store-42" {
		t.Fatalf("user id = %q, want store-42", gotUser)
	}
}

func TestRequireAuthRejections(t *testing.T) {
	secret := []byte("test-secret")
	m := Middleware{
		Secret:    secret,
		Validator: TokenValidator{Issuer: "grosir", Audience: "grosir-api", Algorithm: jwa.HS256},
	}
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	})

	cases := []struct {
		name  string
		token string
	}{
		{"missing token", ""},
		{"garbage token", "not-a-jwt"},
		{"expired token", signedToken(t, secret, "store-42", time.Now().Add(-time.Minute))},
		{"wrong secret", signedToken(t, []byte("other-secret"), "store-42", time.Now().Add(time.Minute))},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/quotes", nil)
			if tc.token != "" {
				req.Header.Set("Authorization", "Bearer "+tc.token)
			}
			rec := httptest.NewRecorder()
			m.RequireAuth(next).ServeHTTP(rec, req)
			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("status = %d, want 401", rec.Code)
			}
		})
	}
}
