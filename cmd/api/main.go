package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"planillas/internal/config"
	"planillas/internal/database"
	"planillas/internal/logger"
	"planillas/internal/metrics"
	"planillas/internal/middleware"
	"planillas/internal/repository"
	"planillas/internal/service"
	"planillas/internal/token"
	"planillas/internal/webhook"
	"planillas/internal/websocket"
)

const shutdownTimeout = 15 * time.Second

// @title           Planillas API
// @version         1.0
// @description     Invoice batch (planilla) registration against the workflow automation service.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		// the logger level comes from config; fall back to stderr
		_, _ = os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		_, _ = os.Stderr.WriteString("logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg config.Config, log *zap.Logger) error {
	gin.SetMode(cfg.GinMode)

	db, err := database.NewConnection(cfg.DB.DSN(), cfg.DB.AutoMigrate, log)
	if err != nil {
		return err
	}
	log.Info("connected to the user directory", zap.String("host", cfg.DB.Host), zap.String("database", cfg.DB.Name))

	m := metrics.New(nil)
	tokens := token.NewManager(cfg.JWTSecret, cfg.SessionTTL)
	auth := middleware.NewAuthenticator(tokens, cfg.IsRelease())
	workflow := webhook.NewClient(cfg.Webhooks, m, log)

	hub := websocket.NewHub(log, cfg.CORSOrigins)
	go hub.Run()
	defer hub.Stop()

	// Repository -> Service -> Handler
	userRepo := repository.NewUserRepository(db)
	authn := service.NewAuthService(userRepo, tokens, workflow, m, log)
	planillas := service.NewPlanillaService(service.PlanillaServiceParams{
		Workflow:  workflow,
		Publisher: hub,
		Metrics:   m,
		Log:       log,
	})
	deps := routerDeps{
		cfg:       cfg,
		log:       log,
		auth:      auth,
		hub:       hub,
		users:     service.NewUserService(userRepo, repository.NewTransactionManager(db)),
		authn:     authn,
		planillas: planillas,
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           newRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", zap.String("addr", srv.Addr), zap.String("mode", cfg.GinMode))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := planillas.Wait(shutdownCtx); err != nil {
		log.Warn("remove notifications still pending at shutdown", zap.Error(err))
	}
	if err := authn.Wait(shutdownCtx); err != nil {
		log.Warn("login audits still pending at shutdown", zap.Error(err))
	}
	return nil
}
