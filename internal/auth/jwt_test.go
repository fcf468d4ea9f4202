package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "test-secret-at-least-16-chars!!"

// newTestTokenService creates a TokenService with a fixed, known secret.
func newTestTokenService(t *testing.T) *TokenService {
	t.Helper()
	ts, err := NewTokenService(testSecret)
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}
	return ts
}

// =========================================================================
// TOKEN SERVICE CONSTRUCTION TESTS
// =========================================================================

func TestNewTokenService_RejectsMissingOrShortSecret(t *testing.T) {
	for _, secret := range []string{"", "short", "fifteen-chars!!"} {
		if _, err := NewTokenService(secret); err == nil {
			t.Errorf("NewTokenService(%q) should be rejected", secret)
		}
	}
}

func TestNewTokenService_ValidSecret(t *testing.T) {
	if _, err := NewTokenService("this-is-16-chars"); err != nil {
		t.Fatalf("NewTokenService() unexpected error for valid secret: %v", err)
	}
}

// =========================================================================
// GENERATE TESTS
// =========================================================================

func TestGenerate_LooksLikeJWT(t *testing.T) {
	ts := newTestTokenService(t)

	token, err := ts.Generate(1, "alice")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if strings.Count(token, ".") != 2 {
		t.Errorf("Generate() token doesn't look like a JWT: %q", token)
	}
}

func TestGenerate_UniquePerCall(t *testing.T) {
	ts := newTestTokenService(t)

	token1, _ := ts.Generate(1, "alice")
	token2, _ := ts.Generate(1, "alice")

	if token1 == token2 {
		t.Error("Generate() returned identical tokens for two calls; jti should differ")
	}
}

func TestGenerate_ClaimsShape(t *testing.T) {
	ts := newTestTokenService(t)

	token, _ := ts.Generate(7, "alice")

	var c Claims
	_, _, err := jwt.NewParser().ParseUnverified(token, &c)
	if err != nil {
		t.Fatalf("ParseUnverified() error = %v", err)
	}
	if c.UserID != 7 || c.Username != "alice" || c.Subject != "7" {
		t.Errorf("claims = %+v, want id 7, username alice, sub 7", c)
	}
	if c.Issuer != "todo-app" || c.ID == "" {
		t.Errorf("issuer = %q, jti = %q", c.Issuer, c.ID)
	}
	ttl := c.ExpiresAt.Sub(c.IssuedAt.Time)
	if ttl != TokenTTL {
		t.Errorf("exp - iat = %v, want %v", ttl, TokenTTL)
	}
}

// =========================================================================
// VALIDATE TESTS
// =========================================================================

func TestValidate_RoundTrip(t *testing.T) {
	ts := newTestTokenService(t)

	token, err := ts.Generate(42, "alice")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	got, err := ts.Validate(token)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if got.UserID != 42 || got.Username != "alice" {
		t.Errorf("Validate() = %+v, want {42 alice}", got)
	}
}

func TestValidate_ExpiredToken(t *testing.T) {
	ts := newTestTokenService(t)

	token, err := ts.GenerateWithDuration(1, "alice", -1*time.Second)
	if err != nil {
		t.Fatalf("GenerateWithDuration() error = %v", err)
	}

	_, err = ts.Validate(token)
	if !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("Validate() error = %v, want ErrTokenExpired", err)
	}
}

func TestValidate_TamperedToken(t *testing.T) {
	ts := newTestTokenService(t)

	token, _ := ts.Generate(1, "alice")
	tampered := token[:len(token)-3] + "xxx"

	if _, err := ts.Validate(tampered); err == nil {
		t.Fatal("Validate() should return an error for a tampered token")
	}
}

func TestValidate_WrongSecret(t *testing.T) {
	ts1, _ := NewTokenService("correct-secret-32-chars-long!!!!")
	ts2, _ := NewTokenService("wrong-secret-32-chars-long!!!!!!")

	token, _ := ts1.Generate(1, "alice")

	if _, err := ts2.Validate(token); err == nil {
		t.Fatal("Validate() should fail when using a different secret")
	}
}

func TestValidate_RejectsForeignIssuer(t *testing.T) {
	ts := newTestTokenService(t)

	c := Claims{
		UserID:   1,
		Username: "alice",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "1",
			Issuer:    "someone-else",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString([]byte(testSecret))

	if _, err := ts.Validate(token); err == nil {
		t.Fatal("Validate() should reject a token from another issuer")
	}
}

func TestValidate_RejectsMissingExpiry(t *testing.T) {
	ts := newTestTokenService(t)

	c := Claims{
		UserID:   1,
		Username: "alice",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject: "1",
			Issuer:  "todo-app",
		},
	}
	token, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString([]byte(testSecret))

	if _, err := ts.Validate(token); err == nil {
		t.Fatal("Validate() should reject a token without exp")
	}
}

func TestValidate_RejectsSubjectMismatch(t *testing.T) {
	ts := newTestTokenService(t)

	c := Claims{
		UserID:   1,
		Username: "alice",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "2",
			Issuer:    "todo-app",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString([]byte(testSecret))

	if _, err := ts.Validate(token); err == nil {
		t.Fatal("Validate() should reject a token whose sub differs from id")
	}
}

func TestValidate_Garbage(t *testing.T) {
	ts := newTestTokenService(t)

	for _, s := range []string{"", "not.a.jwt.token", "abc"} {
		if _, err := ts.Validate(s); err == nil {
			t.Errorf("Validate(%q) should return an error", s)
		}
	}
}
