package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/academiapadel/backend/internal/app"
	"github.com/academiapadel/backend/internal/config"
	"github.com/academiapadel/backend/internal/controller"
	"github.com/academiapadel/backend/internal/notify"
	"github.com/academiapadel/backend/internal/repository"
	"github.com/academiapadel/backend/internal/service"
	"github.com/academiapadel/backend/internal/verify"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := app.NewLogger(cfg.Environment)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.DBDSN)
	if err != nil {
		logger.Fatal("Failed to create database pool", zap.Error(err))
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		logger.Fatal("Failed to reach database", zap.Error(err))
	}

	migrator, err := app.NewMigrator(pool, cfg.MigrationsPath, logger)
	if err != nil {
		logger.Fatal("Failed to create migrator", zap.Error(err))
	}
	if err := migrator.Run(ctx); err != nil {
		logger.Fatal("Failed to apply migrations", zap.Error(err))
	}
	migrator.Close()

	userRepo := repository.NewUserRepository(pool)
	studentRepo := repository.NewStudentRepository(pool)
	classRepo := repository.NewClassRepository(pool)
	attendanceRepo := repository.NewAttendanceRepository(pool)
	recoveryRepo := repository.NewRecoveryRepository(pool)
	courtRepo := repository.NewCourtRepository(pool)
	bookingRepo := repository.NewBookingRepository(pool)
	tournamentRepo := repository.NewTournamentRepository(pool)

	notifier := notify.NewLogNotifier(logger)
	verifier := verify.NewClient(cfg.VerifierURL, cfg.VerifierTimeout, logger)

	userService := service.NewUserService(userRepo, studentRepo, logger)
	recoveryService := service.NewRecoveryService(recoveryRepo, studentRepo, notifier, cfg.RecoveryWindow, logger)
	attendanceService := service.NewAttendanceService(attendanceRepo, classRepo, studentRepo, recoveryService, cfg.CancellationWindow, time.Local, logger)
	bookingService := service.NewBookingService(bookingRepo, courtRepo, verifier, notifier, logger)
	tournamentService := service.NewTournamentService(tournamentRepo, notifier, logger)
	classService := service.NewClassService(classRepo, logger)

	scheduler := app.NewScheduler(recoveryService, attendanceService, tournamentService, cfg.SweepInterval, logger)
	scheduler.Start(ctx)
	defer scheduler.Stop()

	handler := controller.NewHandler(userService, attendanceService, recoveryService, bookingService, tournamentService, classService, logger)
	router := controller.NewRouter(handler, cfg.Environment, cfg.AuthMode)

	server := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: router,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("HTTP server listening",
			zap.String("addr", cfg.HTTPAddr),
			zap.String("auth_mode", string(cfg.AuthMode)),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Fatal("Server error", zap.Error(err))
	}

	logger.Info("Server stopped")
}
