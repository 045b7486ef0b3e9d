package auth_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"arvel.dev/salesline/internal/account"
	"arvel.dev/salesline/internal/auth"
)

func loginForTest(t *testing.T, authSvc *auth.Service, email, password string) *auth.TokenPair {
	t.Helper()

	tokenPair, _, err := authSvc.Login(context.Background(), email, password)
	if err != nil {
		t.Fatalf("login failed for %s: %v", email, err)
	}
	return tokenPair
}

func protectedChain(authSvc *auth.Service, next http.Handler, gates ...func(http.Handler) http.Handler) http.Handler {
	for i := len(gates) - 1; i >= 0; i-- {
		next = gates[i](next)
	}
	return authSvc.Authenticate(authSvc.RenewExpired(next))
}

func executeRequest(t *testing.T, handler http.Handler, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return body["code"]
}

func okHandler(called *bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if called != nil {
			*called = true
		}
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestAuthenticate_RejectsWithoutToken(t *testing.T) {
	authSvc, _, db := setupAuthTestService(t)
	defer db.Close()

	req := httptest.NewRequest(http.MethodGet, "/api/sales", nil)
	rec := executeRequest(t, protectedChain(authSvc, okHandler(nil)), req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status %d, got %d", http.StatusUnauthorized, rec.Code)
	}
	if code := errorCode(t, rec); code != auth.ReasonTokenRequired {
		t.Fatalf("expected code %q, got %q", auth.ReasonTokenRequired, code)
	}
}

func TestAuthenticate_RejectsTamperedToken_WithoutAttemptingRenewal(t *testing.T) {
	authSvc, accountSvc, db := setupAuthTestService(t)
	defer db.Close()
	seedAuthUsers(t, accountSvc)

	tokenPair := loginForTest(t, authSvc, testHREmail, testHRPassword)

	req := httptest.NewRequest(http.MethodGet, "/api/sales", nil)
	req.Header.Set("Authorization", "Bearer "+tamperSignature(t, tokenPair.AccessToken))
	// A refresh cookie is present; a structurally invalid access token must
	// still be a hard reject, never a renewal.
	req.AddCookie(&http.Cookie{Name: auth.RefreshCookieName, Value: tokenPair.RefreshToken})

	rec := executeRequest(t, protectedChain(authSvc, okHandler(nil)), req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status %d, got %d", http.StatusUnauthorized, rec.Code)
	}
	if code := errorCode(t, rec); code != auth.ReasonInvalidToken {
		t.Fatalf("expected code %q, got %q", auth.ReasonInvalidToken, code)
	}
	if rec.Header().Get(auth.RenewedTokenHeader) != "" {
		t.Fatal("expected no renewal header for a tampered token")
	}
}

func TestAuthenticate_HeaderBeatsQueryAndCookie(t *testing.T) {
	authSvc, accountSvc, db := setupAuthTestService(t)
	defer db.Close()
	_, hrUser := seedAuthUsers(t, accountSvc)

	tokenPair := loginForTest(t, authSvc, testHREmail, testHRPassword)

	req := httptest.NewRequest(http.MethodGet, "/api/sales?token=garbage", nil)
	req.Header.Set("Authorization", "Bearer "+tokenPair.AccessToken)
	req.AddCookie(&http.Cookie{Name: auth.AccessCookieName, Value: "garbage"})

	called := false
	rec := executeRequest(t, protectedChain(authSvc, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		identity, ok := auth.IdentityFrom(r.Context())
		if !ok {
			t.Fatal("expected identity in request context")
		}
		if identity.UserID != hrUser.ID {
			t.Fatalf("expected user id %d, got %d", hrUser.ID, identity.UserID)
		}
		sc, _ := auth.SecurityContextFrom(r.Context())
		if sc.Source != auth.SourceHeader {
			t.Fatalf("expected token source %q, got %q", auth.SourceHeader, sc.Source)
		}
		w.WriteHeader(http.StatusNoContent)
	})), req)

	if !called {
		t.Fatal("expected next handler to be called")
	}
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected status %d, got %d", http.StatusNoContent, rec.Code)
	}
}

func TestRenewExpired_MintsRotatedPair_Transparently(t *testing.T) {
	authSvc, accountSvc, db := setupAuthTestService(t)
	defer db.Close()
	_, hrUser := seedAuthUsers(t, accountSvc)

	tokenPair := loginForTest(t, authSvc, testHREmail, testHRPassword)

	req := httptest.NewRequest(http.MethodGet, "/api/sales", nil)
	req.Header.Set("Authorization", "Bearer "+expiredAccessToken(t, hrUser))
	req.AddCookie(&http.Cookie{Name: auth.RefreshCookieName, Value: tokenPair.RefreshToken})

	called := false
	rec := executeRequest(t, protectedChain(authSvc, okHandler(&called)), req)

	if !called {
		t.Fatal("expected business handler to run after transparent renewal")
	}
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected status %d, got %d", http.StatusNoContent, rec.Code)
	}

	renewed := rec.Header().Get(auth.RenewedTokenHeader)
	if renewed == "" {
		t.Fatal("expected renewed access token header")
	}
	claims, err := authSvc.Codec().Verify(auth.KindAccess, renewed)
	if err != nil {
		t.Fatalf("verify renewed access token: %v", err)
	}
	if claims.UserID != hrUser.ID {
		t.Fatalf("expected renewed token user id %d, got %d", hrUser.ID, claims.UserID)
	}

	var refreshCookie *http.Cookie
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == auth.RefreshCookieName {
			refreshCookie = cookie
		}
	}
	if refreshCookie == nil {
		t.Fatal("expected rotated refresh cookie")
	}
	if refreshCookie.Value == tokenPair.RefreshToken {
		t.Fatal("expected refresh cookie value to differ after rotation")
	}
	if !refreshCookie.HttpOnly || refreshCookie.SameSite != http.SameSiteStrictMode || refreshCookie.Path != "/api" {
		t.Fatalf("unexpected refresh cookie attributes: %+v", refreshCookie)
	}
}

func TestRenewExpired_MissingRefreshCookie_IsSessionExpired(t *testing.T) {
	authSvc, accountSvc, db := setupAuthTestService(t)
	defer db.Close()
	_, hrUser := seedAuthUsers(t, accountSvc)

	req := httptest.NewRequest(http.MethodGet, "/api/sales", nil)
	req.Header.Set("Authorization", "Bearer "+expiredAccessToken(t, hrUser))

	rec := executeRequest(t, protectedChain(authSvc, okHandler(nil)), req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status %d, got %d", http.StatusUnauthorized, rec.Code)
	}
	if code := errorCode(t, rec); code != auth.ReasonSessionExpired {
		t.Fatalf("expected code %q, got %q", auth.ReasonSessionExpired, code)
	}
	// There was no refresh token, so there is nothing to clear.
	if len(rec.Result().Cookies()) != 0 {
		t.Fatalf("expected no cookies, got %v", rec.Result().Cookies())
	}
}

func TestRenewExpired_InvalidRefreshToken_ClearsCookie(t *testing.T) {
	authSvc, accountSvc, db := setupAuthTestService(t)
	defer db.Close()
	_, hrUser := seedAuthUsers(t, accountSvc)

	req := httptest.NewRequest(http.MethodGet, "/api/sales", nil)
	req.Header.Set("Authorization", "Bearer "+expiredAccessToken(t, hrUser))
	req.AddCookie(&http.Cookie{Name: auth.RefreshCookieName, Value: "forged-refresh-token"})

	rec := executeRequest(t, protectedChain(authSvc, okHandler(nil)), req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status %d, got %d", http.StatusUnauthorized, rec.Code)
	}
	if code := errorCode(t, rec); code != auth.ReasonInvalidSession {
		t.Fatalf("expected code %q, got %q", auth.ReasonInvalidSession, code)
	}

	var cleared *http.Cookie
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == auth.RefreshCookieName {
			cleared = cookie
		}
	}
	if cleared == nil {
		t.Fatal("expected refresh cookie to be cleared")
	}
	if cleared.Value != "" || cleared.MaxAge >= 0 {
		t.Fatalf("expected expired empty cookie, got value=%q maxAge=%d", cleared.Value, cleared.MaxAge)
	}
}

func TestRoleGate_HRDeniedOnAdminRoute_AllowedOnHRRoute(t *testing.T) {
	authSvc, accountSvc, db := setupAuthTestService(t)
	defer db.Close()
	seedAuthUsers(t, accountSvc)

	tokenPair := loginForTest(t, authSvc, testHREmail, testHRPassword)

	adminRoute := protectedChain(authSvc, okHandler(nil), auth.RequireRole(account.RoleAdmin))
	req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
	req.Header.Set("Authorization", "Bearer "+tokenPair.AccessToken)
	rec := executeRequest(t, adminRoute, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected status %d, got %d", http.StatusForbidden, rec.Code)
	}
	if code := errorCode(t, rec); code != "ADMIN_REQUIRED" {
		t.Fatalf("expected code ADMIN_REQUIRED, got %q", code)
	}

	hrRoute := protectedChain(authSvc, okHandler(nil), auth.RequireAnyRole(account.RoleAdmin, account.RoleHR))
	req = httptest.NewRequest(http.MethodGet, "/api/employees", nil)
	req.Header.Set("Authorization", "Bearer "+tokenPair.AccessToken)
	rec = executeRequest(t, hrRoute, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected status %d, got %d", http.StatusNoContent, rec.Code)
	}
}

func TestRoleGate_WithoutAuthenticator_IsNotAuthenticated(t *testing.T) {
	gate := auth.RequireRole(account.RoleAdmin)(okHandler(nil))

	req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
	rec := executeRequest(t, gate, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status %d, got %d", http.StatusUnauthorized, rec.Code)
	}
	if code := errorCode(t, rec); code != auth.ReasonNotAuthenticated {
		t.Fatalf("expected code %q, got %q", auth.ReasonNotAuthenticated, code)
	}
}
