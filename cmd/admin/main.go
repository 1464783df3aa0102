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

	"github.com/hibiken/asynq"
	"golang.org/x/sync/errgroup"

	"github.com/Satu-Teladan-App/admin-dashboard/internal/alumni"
	"github.com/Satu-Teladan-App/admin-dashboard/internal/app"
	"github.com/Satu-Teladan-App/admin-dashboard/internal/auth"
	"github.com/Satu-Teladan-App/admin-dashboard/internal/berita"
	"github.com/Satu-Teladan-App/admin-dashboard/internal/blacklist"
	"github.com/Satu-Teladan-App/admin-dashboard/internal/observability"
	"github.com/Satu-Teladan-App/admin-dashboard/internal/platform/cache"
	"github.com/Satu-Teladan-App/admin-dashboard/internal/platform/db"
	"github.com/Satu-Teladan-App/admin-dashboard/internal/rbac"
	"github.com/Satu-Teladan-App/admin-dashboard/internal/roles"
	"github.com/Satu-Teladan-App/admin-dashboard/internal/shared"
	"github.com/Satu-Teladan-App/admin-dashboard/internal/users"
	"github.com/Satu-Teladan-App/admin-dashboard/internal/view"
	"github.com/Satu-Teladan-App/admin-dashboard/jobs"
)

func main() {
	if err := run(); err != nil {
		slog.Error("admin dashboard exited", slog.Any("error", err))
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		return err
	}
	logger := app.NewLogger(cfg)
	slog.SetDefault(logger)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		return err
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		return err
	}
	defer redisClient.Close()

	sessionManager := shared.NewSessionManager(redisClient, "teladan_session", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)
	auditLogger := shared.NewAuditLogger(pool)

	templates, err := view.NewEngine()
	if err != nil {
		return err
	}

	rbacRepo := rbac.NewRepository(pool)
	rbacService := rbac.NewService(rbacRepo, auditLogger, logger)
	guard := rbac.Guard{Service: rbacService, Sessions: sessionManager, Logger: logger}
	rbacMW := rbac.Middleware{Service: rbacService, Logger: logger}

	authRepo := auth.NewRepository(pool)
	authService := auth.NewService(authRepo)
	authHandler := auth.NewHandler(logger, authService, templates, sessionManager, csrfManager, guard)

	rolesHandler := roles.NewHandler(logger, rbacService, templates, csrfManager, rbacMW)
	permissionsHandler := rbac.NewPermissionsHandler(logger, rbacService, templates, csrfManager, sessionManager, rbacMW)
	capabilityHandler := rbac.NewCapabilityHandler(logger, rbacService)

	usersRepo := users.NewRepository(pool)
	usersService := users.NewService(usersRepo, rbacService)
	usersHandler := users.NewHandler(logger, usersService, rbacService, templates, csrfManager, rbacMW)

	alumniService := alumni.NewService(alumni.NewRepository(pool), auditLogger, logger)
	alumniHandler := alumni.NewHandler(logger, alumniService, templates, csrfManager, rbacMW)

	beritaService := berita.NewService(berita.NewRepository(pool), auditLogger, logger)
	beritaHandler := berita.NewHandler(logger, beritaService, templates, csrfManager, rbacMW)

	blacklistService := blacklist.NewService(blacklist.NewRepository(pool), auditLogger, logger)
	blacklistHandler := blacklist.NewHandler(logger, blacklistService, templates, csrfManager, rbacMW)

	redisOpts := asynq.RedisClientOpt{Addr: cfg.RedisAddr}
	inspector := asynq.NewInspector(redisOpts)
	defer inspector.Close()
	jobClient, err := jobs.NewClient(redisOpts)
	if err != nil {
		return err
	}
	defer jobClient.Close()
	jobHandler := jobs.NewHandler(inspector, jobClient, logger)

	metrics := observability.NewMetrics()

	router := app.NewRouter(app.RouterParams{
		Logger:             logger,
		Config:             cfg,
		Templates:          templates,
		SessionManager:     sessionManager,
		CSRFManager:        csrfManager,
		AuthHandler:        authHandler,
		RolesHandler:       rolesHandler,
		UsersHandler:       usersHandler,
		PermissionsHandler: permissionsHandler,
		CapabilityHandler:  capabilityHandler,
		AlumniHandler:      alumniHandler,
		BeritaHandler:      beritaHandler,
		BlacklistHandler:   blacklistHandler,
		JobHandler:         jobHandler,
		Guard:              guard,
		RBACMiddleware:     rbacMW,
		Metrics:            metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		logger.Info("admin dashboard listening", slog.String("addr", cfg.AppAddr), slog.String("env", cfg.AppEnv))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logger.Info("admin dashboard stopped")
	return nil
}
