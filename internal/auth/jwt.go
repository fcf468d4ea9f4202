// Package auth provides bearer-token issuance and validation, password
// hashing, and the HTTP middleware that guards protected routes.
//
// Tokens are HS256 JWTs:
//
//	HEADER.PAYLOAD.SIGNATURE
//	- Header:  {"alg":"HS256","typ":"JWT"}
//	- Payload: {"id":7,"username":"alice","sub":"7","iss":"todo-app","exp":...,"jti":...}
//
// Verification needs only the secret; there is no server-side session state
// and no revocation list.
package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/xid"
)

const (
	// TokenTTL is the lifetime of an issued token.
	TokenTTL = 24 * time.Hour

	// MinSecretLength is the shortest signing secret NewTokenService accepts.
	MinSecretLength = 16

	tokenIssuer = "todo-app"
)

// ErrTokenExpired is returned by Validate for a well-formed token past its
// expiry.
var ErrTokenExpired = errors.New("auth: token expired")

// Identity is the authenticated caller carried by a valid token.
type Identity struct {
	UserID   int64
	Username string
}

// Claims is the JWT payload. UserID and Username travel as the "id" and
// "username" claims; Subject repeats the id in string form.
type Claims struct {
	UserID   int64  `json:"id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// TokenService signs and verifies tokens with a single HMAC secret.
type TokenService struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenService creates a TokenService. There is no fallback secret: an
// empty or short secret is rejected.
func NewTokenService(secret string) (*TokenService, error) {
	if len(secret) < MinSecretLength {
		return nil, fmt.Errorf("auth: JWT secret must be at least %d characters", MinSecretLength)
	}
	return &TokenService{secret: []byte(secret), ttl: TokenTTL}, nil
}

// Generate issues a token for the given user valid for TokenTTL.
func (s *TokenService) Generate(userID int64, username string) (string, error) {
	return s.GenerateWithDuration(userID, username, s.ttl)
}

// GenerateWithDuration issues a token with a custom lifetime. A negative
// duration yields an already expired token, which tests rely on.
func (s *TokenService) GenerateWithDuration(userID int64, username string, d time.Duration) (string, error) {
	now := time.Now()

	c := Claims{
		UserID:   userID,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        xid.New().String(),
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(d)),
			Issuer:    tokenIssuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}

	return signed, nil
}

// Validate parses and verifies a token and returns the identity it carries.
//
// Checked: HS256 signature, issuer, presence and validity of exp, and that
// the id claim matches the subject.
func (s *TokenService) Validate(tokenStr string) (*Identity, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&Claims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("auth: unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("auth: invalid token: %w", err)
	}

	c, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("auth: invalid token claims")
	}

	if c.UserID <= 0 || c.Subject != strconv.FormatInt(c.UserID, 10) {
		return nil, fmt.Errorf("auth: token subject does not match user id")
	}

	return &Identity{UserID: c.UserID, Username: c.Username}, nil
}
