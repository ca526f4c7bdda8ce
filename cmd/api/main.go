package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"geniefy-platform/internal/audit"
	"geniefy-platform/internal/auth"
	"geniefy-platform/internal/authsync"
	"geniefy-platform/internal/backend"
	"geniefy-platform/internal/config"
	"geniefy-platform/internal/httpapi"
	"geniefy-platform/internal/integration"
	"geniefy-platform/internal/session"
	"geniefy-platform/internal/subscription"
	"geniefy-platform/pkg/logger"
	"geniefy-platform/pkg/utils"

	"github.com/gin-gonic/gin"
	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	// Root context that cancels on shutdown
	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "err", err)
		os.Exit(1)
	}

	log := logger.New(cfg.App.Env, "geniefy-api")
	slog.SetDefault(log)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	tokens, err := auth.NewManager(cfg.Auth)
	if err != nil {
		log.Error("auth init failed", "err", err)
		os.Exit(1)
	}

	db, err := utils.OpenPostgres(rootCtx, "pgx", cfg.PostgresDSN(), utils.PostgresPoolConfig{})
	if err != nil {
		log.Error("postgres init failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	rdb, err := utils.OpenRedis(rootCtx, utils.RedisConfig{Addr: cfg.RedisAddr()})
	if err != nil {
		log.Error("redis init failed", "err", err)
		os.Exit(1)
	}
	defer rdb.Close()

	upstream, err := backend.NewClient(cfg.Backend)
	if err != nil {
		log.Error("backend client init failed", "err", err)
		os.Exit(1)
	}

	broadcaster, err := authsync.NewRedisBroadcaster(rdb, "")
	if err != nil {
		log.Error("authsync init failed", "err", err)
		os.Exit(1)
	}

	auditor := audit.NewService(audit.NewPostgresRepo(db))

	sessions, err := session.NewService(session.ServiceDeps{
		Tokens:      tokens,
		Repo:        session.NewPostgresRepo(db),
		Verifier:    upstream,
		Broadcaster: broadcaster,
		Audit:       auditor,
		Logger:      log,
		ValidityTTL: cfg.Session.ValidityCacheTTL,
	})
	if err != nil {
		log.Error("session service init failed", "err", err)
		os.Exit(1)
	}

	// Peer sign-outs must not leave stale validity verdicts behind.
	listener := authsync.NewListener(authsync.State{})
	listener.OnSignedOut = func(ctx context.Context) { sessions.FlushValidity() }
	if ch, cancelSub, err := broadcaster.Subscribe(rootCtx); err != nil {
		log.Error("authsync subscribe failed", "err", err)
		os.Exit(1)
	} else {
		defer cancelSub()
		go listener.Run(rootCtx, ch)
	}

	subs := subscription.NewService(subscription.NewPostgresRepo(db), upstream, log)
	integrations := integration.NewRegistry(rootCtx, upstream, 0, log)

	h := httpapi.Handlers{
		Sessions:      sessions,
		Cookies:       session.NewCookieWriter(cfg.Session, cfg.App.Env),
		Backend:       upstream,
		Subscriptions: subs,
		Integrations:  integrations,
		Redis:         rdb,
		OTP:           cfg.OTP,
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.Middleware(log))

	registerRoutes(r, h, auth.RequireAccessToken(sessions))

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("api listening", "addr", srv.Addr, "env", cfg.App.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", "err", err)
			stop()
		}
	}()

	<-rootCtx.Done()
	log.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown failed", "err", err)
	}
}
