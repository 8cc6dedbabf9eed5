package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/estately/portal-server-go/internal/config"
	"github.com/estately/portal-server-go/internal/database"
	"github.com/estately/portal-server-go/internal/guard"
	"github.com/estately/portal-server-go/internal/handler"
	"github.com/estately/portal-server-go/internal/jobs"
	"github.com/estately/portal-server-go/internal/middleware"
	"github.com/estately/portal-server-go/internal/model"
	"github.com/estately/portal-server-go/internal/redis"
	"github.com/estately/portal-server-go/internal/repository"
	"github.com/estately/portal-server-go/internal/session"
	"github.com/estately/portal-server-go/internal/upstream"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	setLogLevel(cfg.LogLevel)

	isProduction := os.Getenv("FLY_APP_NAME") != ""
	if err := cfg.Validate(isProduction); err != nil {
		log.Fatal().Err(err).Msg("invalid config")
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), config.DBPingTimeout)
	if err := db.Ping(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to ping database")
	}
	cancel()
	log.Info().Msg("database connected")

	redisClient, err := redis.NewClient(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	log.Info().Msg("redis connected")

	sessionRepo := repository.NewPortalSessionRepository(db.DB)

	marketplace := upstream.NewClient(cfg.MarketplaceBaseURL, cfg.UpstreamTimeout())
	sessionStore := session.NewStore(sessionRepo, marketplace, cfg.SessionSecret, cfg.SessionTTL(), cfg.UpstreamTokenSecret)

	// Any marketplace call that answers 401 tears the browser session
	// down, so the next guarded request lands on the login page.
	marketplace.SetUnauthorizedHook(sessionStore.DestroyFromContext)

	guardTable := guard.Table{
		{Prefix: "/api/owner", Roles: []model.Role{model.RoleOwner}},
		{Prefix: "/api/customer", Roles: []model.Role{model.RoleCustomer}},
		{Prefix: "/api/admin", Roles: []model.Role{model.RoleAdmin}},
		{Prefix: "/api/media", Roles: []model.Role{model.RoleOwner}},
	}
	guardMiddleware := guard.NewMiddleware(sessionStore, guardTable)

	loginLimiter := middleware.NewLoginRateLimiter()
	rateLimitMiddleware := middleware.NewRedisRateLimitMiddleware(redisClient.Client, config.DefaultRateLimitPerMin)
	csrfMiddleware := middleware.NewCSRFMiddleware(isProduction)
	bodyLimitMiddleware := middleware.NewBodyLimitMiddleware(0)
	uploadBodyLimit := middleware.NewBodyLimitMiddleware(middleware.UploadMaxBodySize)
	securityHeadersMiddleware := middleware.NewSecurityHeadersMiddleware(isProduction)

	authHandler := handler.NewAuthHandler(sessionStore, loginLimiter.Handler, isProduction)
	propertyHandler := handler.NewPropertyHandler(marketplace, cfg.DefaultPageSize, cfg.FeaturedPageSize)
	ownerHandler := handler.NewOwnerHandler(marketplace, cfg.DefaultPageSize)
	customerHandler := handler.NewCustomerHandler(marketplace, cfg.DefaultPageSize)
	adminHandler := handler.NewAdminHandler(marketplace)
	mediaHandler := handler.NewMediaHandler(marketplace)

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(config.ServerRequestTimeout))
	r.Use(securityHeadersMiddleware.Handler)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]any{
			"status":    "ok",
			"timestamp": time.Now().UnixMilli(),
		})
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(guardMiddleware.Handler)
		r.Use(rateLimitMiddleware.Handler)
		r.Use(csrfMiddleware.Handler)

		r.With(bodyLimitMiddleware.Handler).Mount("/auth", authHandler.Routes())
		r.With(bodyLimitMiddleware.Handler).Mount("/properties", propertyHandler.Routes())
		r.With(bodyLimitMiddleware.Handler).Mount("/owner", ownerHandler.Routes())
		r.With(bodyLimitMiddleware.Handler).Mount("/customer", customerHandler.Routes())
		r.With(bodyLimitMiddleware.Handler).Mount("/admin", adminHandler.Routes())
		r.With(uploadBodyLimit.Handler).Mount("/media", mediaHandler.Routes())
	})

	r.NotFound(handler.StaticFileServer(cfg.StaticDir).ServeHTTP)

	cleanupJob := jobs.NewCleanupJob(sessionRepo, config.CleanupJobInterval)
	cleanupJob.Start()
	defer cleanupJob.Stop()

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  config.ServerReadTimeout,
		WriteTimeout: 0,
		IdleTimeout:  config.ServerIdleTimeout,
	}

	go func() {
		log.Info().Str("addr", cfg.Addr()).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), config.ServerShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}

func setLogLevel(level string) {
	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}
