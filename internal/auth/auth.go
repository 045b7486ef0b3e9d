// Package auth implements the token lifecycle: issuance of an access/refresh
// pair on login, verification of bearer tokens on every request, transparent
// renewal of expired access tokens from the refresh cookie, and role gating.
//
// Refresh tokens are rotated on every renewal but are not single-use: a
// superseded refresh token keeps verifying until its own expiry, because no
// server-side token state exists. This is a known, accepted exposure window.
package auth

import (
	"errors"
	"time"
)

const (
	// AccessCookieName is one of the bearer presentation locations probed
	// by the authenticator.
	AccessCookieName = "access_token"

	// RefreshCookieName is the dedicated, HTTP-only cookie carrying the
	// refresh token. It never appears in a JSON body.
	RefreshCookieName = "refresh_token"

	// RenewedTokenHeader carries the fresh access token back to the client
	// whenever a transparent renewal happened mid-request.
	RenewedTokenHeader = "X-Renewed-Access-Token"

	// refreshCookiePath scopes the refresh cookie to the API root.
	refreshCookiePath = "/api"
)

// Machine-readable rejection codes surfaced to clients.
const (
	ReasonTokenRequired      = "TOKEN_REQUIRED"
	ReasonInvalidToken       = "INVALID_TOKEN"
	ReasonInvalidTokenFormat = "INVALID_TOKEN_FORMAT"
	ReasonSessionExpired     = "SESSION_EXPIRED"
	ReasonInvalidSession     = "INVALID_SESSION"
	ReasonInvalidCredentials = "INVALID_CREDENTIALS"
	ReasonNotAuthenticated   = "NOT_AUTHENTICATED"
)

var ErrInvalidCredentials = errors.New("invalid email or password")

type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// Config is injected at startup; the signing secrets are never read from
// ambient state at call time.
type Config struct {
	Issuer          string
	AccessSecret    string
	RefreshSecret   string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	SecureCookies   bool
}
