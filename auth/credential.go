package auth

import (
	"encoding/base64"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Credential is one Authorization header value. The zero value is "no
// credential configured".
type Credential struct {
	scheme string
	param  string
}

// Bearer creates a bearer credential from token. A blank token yields
// ErrMissingCredentials.
func Bearer(token string) (Credential, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Credential{}, ErrMissingCredentials
	}
	return Credential{scheme: "Bearer", param: token}, nil
}

// Basic creates a basic-auth credential encoding user:password in base64.
// A blank user or password yields ErrMissingCredentials.
func Basic(user, password string) (Credential, error) {
	if strings.TrimSpace(user) == "" || strings.TrimSpace(password) == "" {
		return Credential{}, ErrMissingCredentials
	}
	encoded := base64.StdEncoding.EncodeToString([]byte(user + ":" + password))
	return Credential{scheme: "Basic", param: encoded}, nil
}

// IsZero reports whether no credential has been configured.
func (c Credential) IsZero() bool {
	return c.scheme == ""
}

// Scheme returns the authorization scheme ("Bearer" or "Basic").
func (c Credential) Scheme() string {
	return c.scheme
}

// HeaderValue returns the full Authorization header value, or "" for the
// zero credential.
func (c Credential) HeaderValue() string {
	if c.scheme == "" {
		return ""
	}
	return c.scheme + " " + c.param
}

// TokenExpiry extracts the expiry claim from a bearer token that is a
// JWT. The token is parsed without signature verification; the result is
// advisory only (e.g. warning about a token that is already expired).
// ok is false when the token is not a parseable JWT or carries no exp
// claim.
func TokenExpiry(token string) (expiry time.Time, ok bool) {
	parser := jwt.NewParser()

	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
