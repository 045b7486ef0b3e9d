package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"arvel.dev/salesline/internal/account"
)

type Kind string

const (
	KindAccess  Kind = "access"
	KindRefresh Kind = "refresh"
)

// Verification verdicts. Callers branch on these, never on error strings:
// an expired token is the only recoverable condition, while tampered and
// malformed tokens are hard rejects.
var (
	ErrTokenExpired   = errors.New("token expired")
	ErrTokenTampered  = errors.New("token signature mismatch")
	ErrTokenMalformed = errors.New("token malformed")
)

type Claims struct {
	UserID  int64        `json:"user_id"`
	Email   string       `json:"email"`
	Name    string       `json:"name,omitempty"`
	Surname string       `json:"surname,omitempty"`
	Role    account.Role `json:"role"`
	Kind    Kind         `json:"kind"`
	jwt.RegisteredClaims
}

// Codec signs and verifies both token kinds. Access and refresh use
// independent secrets and lifetimes.
type Codec struct {
	config Config
}

func NewCodec(config Config) *Codec {
	return &Codec{config: config}
}

// Issue mints a signed token of the given kind from the user's identity.
// Refresh tokens carry only the claims needed to re-mint a pair; names are
// left out. Nothing derived from the password hash is ever embedded.
func (c *Codec) Issue(kind Kind, user *account.User) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
		Kind:   kind,
		RegisteredClaims: jwt.RegisteredClaims{
			// The token id makes every mint unique; without it two tokens
			// issued within the same second would be byte-identical and
			// rotation would be unobservable.
			ID:        uuid.NewString(),
			Issuer:    c.config.Issuer,
			Subject:   user.Email,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl(kind))),
		},
	}
	if kind == KindAccess {
		claims.Name = user.Name
		claims.Surname = user.Surname
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(c.secret(kind))
	if err != nil {
		return "", errors.New("failed to sign token")
	}
	return signed, nil
}

// Verify checks signature and expiry with the secret for the given kind.
// The failure is one of exactly three verdicts: ErrTokenExpired (signature
// valid, lifetime over), ErrTokenTampered (signature mismatch, including a
// token of the other kind), or ErrTokenMalformed (not parseable as a token).
func (c *Codec) Verify(kind Kind, tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return c.secret(kind), nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, ErrTokenMalformed
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrTokenExpired
		default:
			return nil, ErrTokenTampered
		}
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrTokenTampered
	}
	if claims.Kind != kind {
		return nil, ErrTokenTampered
	}
	return claims, nil
}

func (c *Codec) secret(kind Kind) []byte {
	if kind == KindRefresh {
		return []byte(c.config.RefreshSecret)
	}
	return []byte(c.config.AccessSecret)
}

func (c *Codec) ttl(kind Kind) time.Duration {
	if kind == KindRefresh {
		return c.config.RefreshTokenTTL
	}
	return c.config.AccessTokenTTL
}

// Identity returns the claims as the read-only identity handed to
// downstream handlers.
func (claims *Claims) Identity() *Identity {
	return &Identity{
		UserID:  claims.UserID,
		Email:   claims.Email,
		Name:    claims.Name,
		Surname: claims.Surname,
		Role:    claims.Role,
	}
}
