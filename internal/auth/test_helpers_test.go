package auth_test

import (
	"context"
	"database/sql"
	"strings"
	"testing"
	"time"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
	"arvel.dev/salesline/internal/account"
	accountstore "arvel.dev/salesline/internal/account/store"
	"arvel.dev/salesline/internal/auth"
	"arvel.dev/salesline/internal/platform/database"
)

const (
	testAdminEmail    = "admin@salesline.test"
	testAdminPassword = "admin-test-password"
	testHREmail       = "hr@salesline.test"
	testHRPassword    = "hr-test-password"
)

func testAuthConfig() auth.Config {
	return auth.Config{
		Issuer:          "salesline-test",
		AccessSecret:    "test-access-secret",
		RefreshSecret:   "test-refresh-secret",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 7 * 24 * time.Hour,
	}
}

func setupAuthTestService(t *testing.T) (*auth.Service, *account.Service, *sql.DB) {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := database.Migrate(context.Background(), db); err != nil {
		t.Fatalf("migrate db: %v", err)
	}

	cfg := testAuthConfig()
	accountSvc := account.NewService(accountstore.NewStore(db))
	authSvc := auth.NewService(accountSvc, auth.NewCodec(cfg), cfg)

	return authSvc, accountSvc, db
}

func seedAuthUsers(t *testing.T, accountSvc *account.Service) (*account.User, *account.User) {
	t.Helper()

	ctx := context.Background()

	admin, err := accountSvc.CreateUser(ctx, &account.CreateUserRequest{
		Email:    testAdminEmail,
		Password: testAdminPassword,
		Name:     "Admin",
		Surname:  "Tester",
		Role:     account.RoleAdmin,
	})
	if err != nil {
		t.Fatalf("create admin: %v", err)
	}

	hrUser, err := accountSvc.CreateUser(ctx, &account.CreateUserRequest{
		Email:    testHREmail,
		Password: testHRPassword,
		Name:     "Human",
		Surname:  "Resources",
		Role:     account.RoleHR,
	})
	if err != nil {
		t.Fatalf("create hr user: %v", err)
	}

	return admin, hrUser
}

// expiredAccessToken signs an access token whose expiry is already in the
// past, using the same secret the service verifies with.
func expiredAccessToken(t *testing.T, user *account.User) string {
	t.Helper()

	cfg := testAuthConfig()
	cfg.AccessTokenTTL = -time.Minute
	token, err := auth.NewCodec(cfg).Issue(auth.KindAccess, user)
	if err != nil {
		t.Fatalf("issue expired access token: %v", err)
	}
	return token
}

// tamperSignature flips one byte inside the signature segment.
func tamperSignature(t *testing.T, token string) string {
	t.Helper()

	i := strings.LastIndex(token, ".")
	if i < 0 || len(token) < i+12 {
		t.Fatalf("unexpected token shape: %q", token)
	}
	sig := []byte(token[i+1:])
	if sig[10] == 'A' {
		sig[10] = 'B'
	} else {
		sig[10] = 'A'
	}
	return token[:i+1] + string(sig)
}
