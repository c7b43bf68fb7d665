package auth

import (
	"testing"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

func buildToken(t *testing.T, mutate func(*jwt.Builder)) jwt.Token {
	t.Helper()
	now := time.Now()
	b := jwt.NewBuilder().
		Issuer("grosir-idp").
		Audience([]string{"grosir-api"}).
		Subject("store-1").
		IssuedAt(now).
		NotBefore(now).
		Expiration(now.Add(time.Minute))
	if mutate != nil {
		mutate(b)
	}
	tok, err := b.Build()
	if err != nil {
		t.Fatalf("build token: %v", err)
	}
	return tok
}

func TestTokenValidatorValid(t *testing.T) {
	tok := buildToken(t, nil)
	v := TokenValidator{Issuer: "grosir-idp", Audience: "grosir-api", ClockSkew: time.Second, Algorithm: jwa.HS256}
	if err := v.Validate(tok, jwa.HS256, time.Now()); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestTokenValidatorIssuerMismatch(t *testing.T) {
	tok := buildToken(t, func(b *jwt.Builder) { b.Issuer("someone-else") })
	v := TokenValidator{Issuer: "grosir-idp", Audience: "grosir-api", Algorithm: jwa.HS256}
	if err := v.Validate(tok, jwa.HS256, time.Now()); err == nil {
		t.Fatal("expected issuer mismatch error")
	}
}

func TestTokenValidatorExpired(t *testing.T) {
	now := time.Now()
	tok := buildToken(t, func(b *jwt.Builder) {
		b.IssuedAt(now.Add(-2 * time.Hour))
		b.NotBefore(now.Add(-2 * time.Hour))
		b.Expiration(now.Add(-time.Minute))
	})
	v := TokenValidator{Issuer: "grosir-idp", Audience: "grosir-api", Algorithm: jwa.HS256}
	if err := v.Validate(tok, jwa.HS256, now); err == nil {
		t.Fatal("expected expiration error")
	}
}

func TestTokenValidatorNotYetValid(t *testing.T) {
	now := time.Now()
	tok := buildToken(t, func(b *jwt.Builder) {
		b.NotBefore(now.Add(5 * time.Minute))
		b.Expiration(now.Add(10 * time.Minute))
	})
	v := TokenValidator{Issuer: "grosir-idp", Audience: "grosir-api", Algorithm: jwa.HS256, ClockSkew: time.Second}
	if err := v.Validate(tok, jwa.HS256, now); err == nil {
		t.Fatal("expected not-before error")
	}
}

func TestTokenValidatorAlgorithmMismatch(t *testing.T) {
	tok := buildToken(t, nil)
	v := TokenValidator{Issuer: "grosir-idp", Audience: "grosir-api", Algorithm: jwa.HS256}
	if err := v.Validate(tok, jwa.RS256, time.Now()); err == nil {
		t.Fatal("expected algorithm mismatch error")
	}
}

func TestTokenValidatorNilToken(t *testing.T) {
	v := TokenValidator{Algorithm: jwa.HS256}
	if err := v.Validate(nil, jwa.HS256, time.Now()); err == nil {
		t.Fatal("expected error for nil token")
	}
}
