package main

import (
	"context"
	"errors"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/chachabrian/ridelink-backend/internal/config"
	"github.com/chachabrian/ridelink-backend/internal/handlers"
	"github.com/chachabrian/ridelink-backend/internal/logging"
	"github.com/chachabrian/ridelink-backend/internal/seed"
	"github.com/chachabrian/ridelink-backend/internal/services"
	"github.com/chachabrian/ridelink-backend/internal/store"
	"github.com/chachabrian/ridelink-backend/pkg/utils"
)

const redisLocationTTL = 5 * time.Minute

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	logger := logging.NewLogger(cfg.LogLevel)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st := store.New()
	if cfg.SeedDemoData {
		if _, err := seed.New(st, rand.New(rand.NewSource(time.Now().UnixNano())), logger).Run(seed.DefaultOptions()); err != nil {
			return err
		}
	}

	hub := services.NewHub(logger)
	notifier := services.NewNotifier(hub, st)

	var sinks []services.LocationSink
	if cfg.RedisURL != "" {
		client, err := services.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return err
		}
		defer client.Close()
		sinks = append(sinks, services.NewLocationCache(client, redisLocationTTL))
		logger.Info("redis location cache enabled")
	}
	if len(cfg.KafkaBrokers) > 0 {
		stream := services.NewLocationStream(cfg.KafkaBrokers, cfg.KafkaLocationTopic, logger)
		defer stream.Close()
		sinks = append(sinks, stream)
		logger.Info("kafka location stream enabled", "topic", cfg.KafkaLocationTopic)
	}

	locations := services.NewLocationBroadcaster(st, hub, logger, sinks...)
	simulators := services.NewLocationSimulator(st, locations, cfg.LocationTickInterval, logger)
	defer simulators.StopAll()

	bookings := services.NewBookingSimulator(st, notifier, cfg.BookingSweepInterval, cfg.BookingConfirmProbability, logger)
	go bookings.Run(ctx)

	jwt := utils.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL)
	gateway := services.NewGateway(st, hub, locations, simulators, notifier, jwt, logger)

	avatars, err := newAvatarStorage(cfg)
	if err != nil {
		return err
	}

	gin.SetMode(gin.ReleaseMode)
	router := handlers.NewRouter(handlers.Deps{
		Store:     st,
		Hub:       hub,
		Notifier:  notifier,
		Locations: locations,
		Gateway:   gateway,
		JWT:       jwt,
		Avatars:   avatars,
		UploadDir: uploadDir(cfg, avatars),
		Logger:    logger,
		Started:   time.Now(),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", srv.Addr)
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

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func newAvatarStorage(cfg config.Config) (*services.AvatarStorage, error) {
	if cfg.S3Enabled() {
		return services.NewS3AvatarStorage(cfg.AWSRegion, cfg.AWSAccessKeyID, cfg.AWSSecretAccessKey, cfg.AWSS3Bucket)
	}
	return services.NewLocalAvatarStorage(cfg.UploadDir, cfg.BaseURL)
}

// uploadDir is served statically only when avatars are written to disk.
func uploadDir(cfg config.Config, avatars *services.AvatarStorage) string {
	if avatars.UsingS3() {
		return ""
	}
	return cfg.UploadDir
}
