package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/you/meeting-room-booking/pkg/auth"
	"github.com/you/meeting-room-booking/pkg/clock"
	"github.com/you/meeting-room-booking/pkg/config"
	"github.com/you/meeting-room-booking/pkg/db"
	"github.com/you/meeting-room-booking/pkg/mq"
	"github.com/you/meeting-room-booking/pkg/obs"
	"github.com/you/meeting-room-booking/services/reservation-service/internal/handlers"
	"github.com/you/meeting-room-booking/services/reservation-service/internal/repository"
	"github.com/you/meeting-room-booking/services/reservation-service/internal/service"
)

var version = "dev"

func must[T any](v T, err error) T {
	if err != nil {
		slog.Error("startup failed", "err", err)
		os.Exit(1)
	}
	return v
}

func newLogger(level string) *slog.Logger {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.ToUpper(level))); err != nil {
		l = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: l}))
}

func main() {
	cfg := must(config.Load())
	log := newLogger(cfg.LogLevel).With("service", cfg.ServiceName)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Tracing (no-op without an OTLP endpoint)
	shutdownTracer := must(obs.InitTracer(ctx, obs.TracerConfig{
		ServiceName: cfg.ServiceName,
		Version:     version,
		Env:         cfg.Env,
		Endpoint:    cfg.OTLPEndpoint,
	}))
	defer func() { _ = shutdownTracer(context.Background()) }()

	// DB
	gdb := must(db.Open(db.Config{
		Driver:             cfg.DBDriver,
		DSN:                cfg.DBDSN,
		MaxOpenConns:       20,
		MaxIdleConns:       5,
		ConnMaxLifetime:    30 * time.Minute,
		SlowQueryThreshold: 200 * time.Millisecond,
		Logger:             log,
	}))
	defer func() { _ = db.Close(gdb) }()

	users := repository.NewUserRepo(gdb)
	reservations := repository.NewReservationRepo(gdb)
	if cfg.AutoMigrate {
		must(0, users.Migrate())
		must(0, reservations.Migrate())
	}

	// Publisher for reservation.* events (optional)
	var pub service.EventPublisher
	if cfg.RabbitURL != "" {
		p := must(mq.NewPublisher(cfg.RabbitURL, cfg.ReservationExchange))
		defer p.Close()
		pub = p
	} else {
		log.Info("RABBIT_URL not set; reservation events disabled")
	}

	clk := clock.RealClock{}
	issuer := auth.NewIssuer(cfg.JWTSecret, cfg.TokenTTL(), clk)
	authSvc := service.NewAuthSvc(users, issuer, cfg.AllowAdminSignup, log)
	scheduler := service.NewScheduler(reservations, users, clk, pub, log, cfg.StoreTimeout)

	if cfg.AdminEmail != "" && cfg.AdminPassword != "" {
		created := must(authSvc.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword))
		if created {
			log.Info("bootstrap admin created", "email", cfg.AdminEmail)
		}
	}

	gin.SetMode(gin.ReleaseMode)
	router := handlers.NewRouter(handlers.Deps{
		Auth:        authSvc,
		Scheduler:   scheduler,
		Ping:        func(ctx context.Context) error { return db.Ping(ctx, gdb) },
		CORSOrigins: cfg.CORSOrigins,
		Log:         log,
	})
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info("http listening", "addr", cfg.HTTPAddr, "driver", cfg.DBDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", "err", err)
			stop()
		}
	}()

	// graceful shutdown
	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown", "err", err)
	}
	log.Info("stopped")
}
