package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"
	"arvel.dev/salesline/internal/account"
	"arvel.dev/salesline/internal/platform/web"
)

// Authenticate locates and verifies the bearer access token, attaching a
// SecurityContext for the rest of the pipeline. An expired token does not
// reject here: the request continues in StateExpired so RenewExpired can
// attempt recovery. Tampered or malformed tokens are rejected outright and
// never reach renewal.
func (s *Service) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, source, found := ExtractToken(r)
		if !found {
			web.WriteError(w, r, &web.Error{
				Code:    http.StatusUnauthorized,
				Reason:  ReasonTokenRequired,
				Message: "Authentication token required",
			})
			return
		}

		claims, err := s.codec.Verify(KindAccess, token)
		if err != nil {
			if errors.Is(err, ErrTokenExpired) {
				sc := &SecurityContext{State: StateExpired, RawToken: token, Source: source}
				next.ServeHTTP(w, r.WithContext(WithSecurityContext(r.Context(), sc)))
				return
			}
			web.WriteError(w, r, &web.Error{
				Code:    http.StatusUnauthorized,
				Reason:  ReasonInvalidToken,
				Message: "Invalid authentication token",
				Err:     err,
			})
			return
		}

		// A claim set without a user id was signed under an incompatible
		// schema; it must not pass as authenticated.
		if claims.UserID == 0 {
			web.WriteError(w, r, &web.Error{
				Code:    http.StatusUnauthorized,
				Reason:  ReasonInvalidTokenFormat,
				Message: "Token claims are missing a user identifier",
			})
			return
		}

		log.Debug().
			Int64("user_id", claims.UserID).
			Str("source", string(source)).
			Msg("request authenticated")

		sc := &SecurityContext{State: StateAuthenticated, Identity: claims.Identity(), Source: source}
		next.ServeHTTP(w, r.WithContext(WithSecurityContext(r.Context(), sc)))
	})
}

// RenewExpired recovers a request whose access token expired, consuming the
// refresh cookie to mint a rotated pair. It is a no-op unless the
// authenticator left the request in StateExpired. Every rejection path that
// saw a refresh token clears the cookie, so a broken session cannot be
// retried indefinitely; recovery itself is attempted exactly once.
func (s *Service) RenewExpired(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sc, ok := SecurityContextFrom(r.Context())
		if !ok || sc.State != StateExpired {
			next.ServeHTTP(w, r)
			return
		}

		cookie, err := r.Cookie(RefreshCookieName)
		if err != nil || cookie.Value == "" {
			web.WriteError(w, r, &web.Error{
				Code:    http.StatusUnauthorized,
				Reason:  ReasonSessionExpired,
				Message: "Session expired, please log in again",
			})
			return
		}

		tokenPair, user, err := s.Refresh(r.Context(), cookie.Value)
		if err != nil {
			s.clearRefreshCookie(w)
			web.WriteError(w, r, &web.Error{
				Code:    http.StatusUnauthorized,
				Reason:  ReasonInvalidSession,
				Message: "Session is no longer valid",
				Err:     err,
			})
			return
		}

		s.setRefreshCookie(w, tokenPair.RefreshToken)
		w.Header().Set(RenewedTokenHeader, tokenPair.AccessToken)

		log.Info().
			Int64("user_id", user.ID).
			Msg("access token renewed transparently")

		renewed := &SecurityContext{
			State: StateAuthenticated,
			Identity: &Identity{
				UserID:  user.ID,
				Email:   user.Email,
				Name:    user.Name,
				Surname: user.Surname,
				Role:    user.Role,
			},
			Source: sc.Source,
		}
		next.ServeHTTP(w, r.WithContext(WithSecurityContext(r.Context(), renewed)))
	})
}

// RequireRole gates a route to exactly one role.
func RequireRole(role account.Role) func(http.Handler) http.Handler {
	return RequireAnyRole(role)
}

// RequireAnyRole gates a route to a set of permitted roles. It must run
// after Authenticate (and RenewExpired); an unauthenticated context fails
// regardless of role. It has no side effects.
func RequireAnyRole(roles ...account.Role) func(http.Handler) http.Handler {
	reason := roleReason(roles)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := IdentityFrom(r.Context())
			if !ok {
				web.WriteError(w, r, &web.Error{
					Code:    http.StatusUnauthorized,
					Reason:  ReasonNotAuthenticated,
					Message: "Authentication required",
				})
				return
			}

			for _, role := range roles {
				if identity.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}

			web.WriteError(w, r, &web.Error{
				Code:    http.StatusForbidden,
				Reason:  reason,
				Message: "Insufficient role for this resource",
			})
		})
	}
}

// roleReason builds the rejection code for a role set, e.g. ADMIN_REQUIRED
// or ADMIN_OR_HR_REQUIRED.
func roleReason(roles []account.Role) string {
	names := make([]string, len(roles))
	for i, role := range roles {
		names[i] = strings.ToUpper(string(role))
	}
	return strings.Join(names, "_OR_") + "_REQUIRED"
}
