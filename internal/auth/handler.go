package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"arvel.dev/salesline/internal/platform/web"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the public auth endpoints. Protected routes are
// wired in main with the middleware chain; login and logout stay outside it.
func (h *Handler) RegisterRoutes(mux *http.ServeMux, protect func(http.Handler) http.Handler) {
	mux.Handle("POST /api/auth/login", web.Handler(h.handleLogin))
	mux.Handle("POST /api/auth/logout", web.Handler(h.handleLogout))
	mux.Handle("GET /api/auth/me", protect(web.Handler(h.handleMe)))
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string    `json:"accessToken"`
	ExpiresIn   int       `json:"expiresIn"`
	User        *Identity `json:"user"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) *web.Error {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return &web.Error{Code: http.StatusBadRequest, Message: "Invalid request body", Err: err}
	}

	tokenPair, user, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			return &web.Error{
				Code:    http.StatusUnauthorized,
				Reason:  ReasonInvalidCredentials,
				Message: "Invalid email or password",
				Err:     err,
			}
		}
		return &web.Error{Code: http.StatusInternalServerError, Message: "Failed to login", Err: err}
	}

	// The refresh token travels only in its cookie; the response body
	// carries the access token and the identity.
	h.service.setRefreshCookie(w, tokenPair.RefreshToken)

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(loginResponse{
		AccessToken: tokenPair.AccessToken,
		ExpiresIn:   h.service.AccessTokenTTLSeconds(),
		User: &Identity{
			UserID:  user.ID,
			Email:   user.Email,
			Name:    user.Name,
			Surname: user.Surname,
			Role:    user.Role,
		},
	})
	return nil
}

// handleLogout clears the refresh cookie and always succeeds, whatever the
// prior session state. A still-unexpired access token remains usable until
// its own expiry; there is no server-side invalidation.
func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) *web.Error {
	h.service.clearRefreshCookie(w)

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{
		"message": "Logged out",
	})
	return nil
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) *web.Error {
	identity, ok := IdentityFrom(r.Context())
	if !ok {
		return &web.Error{
			Code:    http.StatusUnauthorized,
			Reason:  ReasonNotAuthenticated,
			Message: "Authentication required",
		}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(identity)
	return nil
}

// setRefreshCookie writes the refresh cookie with its full attribute set.
// clearRefreshCookie must use the exact same attributes or some clients
// will not drop the cookie.
func (s *Service) setRefreshCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     RefreshCookieName,
		Value:    token,
		Path:     refreshCookiePath,
		HttpOnly: true,
		Secure:   s.config.SecureCookies,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   int(s.config.RefreshTokenTTL.Seconds()),
	})
}

func (s *Service) clearRefreshCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     RefreshCookieName,
		Value:    "",
		Path:     refreshCookiePath,
		HttpOnly: true,
		Secure:   s.config.SecureCookies,
		SameSite: http.SameSiteStrictMode,
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
	})
}
