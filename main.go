package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"arvel.dev/salesline/internal/account"
	accountstore "arvel.dev/salesline/internal/account/store"
	"arvel.dev/salesline/internal/auth"
	"arvel.dev/salesline/internal/catalog"
	catalogstore "arvel.dev/salesline/internal/catalog/store"
	"arvel.dev/salesline/internal/config"
	"arvel.dev/salesline/internal/platform/database"
	"arvel.dev/salesline/internal/platform/web"
	"arvel.dev/salesline/internal/status"
)

var goEnv string = "development"

func main() {
	setupLogger()

	log.Info().Str("environment", goEnv).Msg("Starting salesline backend")

	config.SetConfig(goEnv)

	db, err := database.NewDB()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open database")
	}
	defer db.Close()

	accountSvc := account.NewService(accountstore.NewStore(db))
	if err := accountSvc.EnsureDefaultAdmin(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to ensure default admin")
	}

	authConfig := auth.Config{
		Issuer:          config.Conf.Auth.Issuer,
		AccessSecret:    config.Conf.Auth.AccessSecret,
		RefreshSecret:   config.Conf.Auth.RefreshSecret,
		AccessTokenTTL:  config.Conf.Auth.AccessTokenTTL,
		RefreshTokenTTL: config.Conf.Auth.RefreshTokenTTL,
		SecureCookies:   config.Conf.IsProduction(),
	}
	authSvc := auth.NewService(accountSvc, auth.NewCodec(authConfig), authConfig)

	port := config.Conf.Server.Port

	mux := http.NewServeMux()

	// Every protected route runs the same ordered pipeline: authenticate,
	// then renew an expired access token if possible, then the role gate.
	protect := func(h http.Handler, gates ...func(http.Handler) http.Handler) http.Handler {
		for i := len(gates) - 1; i >= 0; i-- {
			h = gates[i](h)
		}
		return authSvc.Authenticate(authSvc.RenewExpired(h))
	}
	adminOnly := auth.RequireRole(account.RoleAdmin)

	mux.HandleFunc("GET /api/health", handleHealth)

	authHandler := auth.NewHandler(authSvc)
	authHandler.RegisterRoutes(mux, func(h http.Handler) http.Handler { return protect(h) })

	accountHandler := account.NewHandler(accountSvc)
	accountHandler.RegisterRoutes(mux, func(h http.Handler) http.Handler { return protect(h, adminOnly) })

	catalogHandler := catalog.NewHandler(catalogstore.NewStore(db))
	mux.Handle("GET /api/employees", protect(
		web.Handler(catalogHandler.HandleEmployees),
		auth.RequireAnyRole(account.RoleAdmin, account.RoleHR),
	))
	mux.Handle("GET /api/products", protect(
		web.Handler(catalogHandler.HandleProducts),
		auth.RequireAnyRole(account.RoleAdmin, account.RoleMarketing),
	))
	mux.Handle("GET /api/sales", protect(web.Handler(catalogHandler.HandleSales)))

	statusHandler := status.NewHandler(db, port)
	mux.Handle("GET /api/status", protect(web.Handler(statusHandler.HandleStatus), adminOnly))

	configHandler := config.NewHandler()
	mux.Handle("GET /api/config", protect(web.Handler(configHandler.GetConfig), adminOnly))
	mux.Handle("PUT /api/config", protect(web.Handler(configHandler.UpdateConfig), adminOnly))

	log.Info().Str("port", port).Msg("Server is running")

	if err := http.ListenAndServe(":"+port, requestLogger(mux)); err != nil {
		log.Fatal().Err(err).Msg("Server failed")
	}
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte("{\"status\": \"ok\"}"))
}

func setupLogger() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if goEnv != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("remote", r.RemoteAddr).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	})
}
