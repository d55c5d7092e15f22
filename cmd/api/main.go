package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/config"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/shift"
	appHTTP "github.com/cmlabs-hris/attendance-backend-go/internal/handler/http"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/clock"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/cron"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/lock"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/metrics"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/sse"
	"github.com/cmlabs-hris/attendance-backend-go/internal/repository/postgresql"
	attendanceService "github.com/cmlabs-hris/attendance-backend-go/internal/service/attendance"
	shiftService "github.com/cmlabs-hris/attendance-backend-go/internal/service/shift"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		os.Exit(1)
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLevel(cfg.App.LogLevel),
	})))

	if err := run(cfg); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL(), database.PoolOptions{
		MaxConns: cfg.Database.MaxConns,
		MinConns: cfg.Database.MinConns,
	})
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := postgresql.EnsureSchema(ctx, db); err != nil {
			return err
		}
		slog.Info("database schema applied")
	}

	loc := cfg.Location()
	appMetrics := metrics.New()
	scheduler := cron.NewScheduler(slog.Default())
	hub := sse.NewHub()

	var locker lock.Locker
	switch cfg.Lock.Backend {
	case "redis":
		client := lock.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		defer client.Close()
		if err := client.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("connect to redis: %w", err)
		}
		locker = lock.NewRedisLocker(client, cfg.Lock.TTL)
	default:
		keyed := lock.NewKeyedMutex()
		cron.NewLockSweepJob(keyed, appMetrics, cfg.Lock.SweepInterval).RegisterJobs(scheduler)
		locker = keyed
	}

	attendanceRepo := postgresql.NewAttendanceRepository(db, loc)
	shiftRepo := postgresql.NewShiftRepository(db)
	transactor := postgresql.NewTransactor(db)

	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)
	systemClock := clock.System(loc)

	attendanceSvc := attendanceService.NewAttendanceService(
		transactor,
		attendanceRepo,
		shiftRepo,
		locker,
		systemClock,
		appMetrics,
		attendanceService.Options{
			Location: loc,
			DefaultShift: shift.Shift{
				Name:      cfg.Attendance.DefaultShiftName,
				StartTime: cfg.Attendance.DefaultShiftStart,
				EndTime:   cfg.Attendance.DefaultShiftEnd,
			},
			Events: hub,
		},
	)
	statsSvc := attendanceService.NewStatsService(attendanceRepo, systemClock, loc)
	shiftSvc := shiftService.NewShiftService(shiftRepo)

	router := appHTTP.NewRouter(
		cfg.App,
		JWTService,
		appMetrics.Handler(),
		appHTTP.NewAttendanceHandler(attendanceSvc, statsSvc),
		appHTTP.NewShiftHandler(shiftSvc),
		appHTTP.NewStreamHandler(hub),
	)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	scheduler.Start()
	defer scheduler.Stop()

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("server running", "addr", srv.Addr, "timezone", loc.String(), "lock_backend", cfg.Lock.Backend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced shutdown: %w", err)
	}
	return nil
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
