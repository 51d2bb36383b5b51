package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/phonefeed-api/internal/application/media"
	"github.com/phonefeed-api/internal/application/notification"
	"github.com/phonefeed-api/internal/config"
	"github.com/phonefeed-api/internal/infrastructure/dynamo"
	jwtinfra "github.com/phonefeed-api/internal/infrastructure/jwt"
	"github.com/phonefeed-api/internal/infrastructure/memory"
	"github.com/phonefeed-api/internal/infrastructure/rabbitmq"
	s3infra "github.com/phonefeed-api/internal/infrastructure/s3"
	"github.com/phonefeed-api/internal/infrastructure/sns"
	"github.com/phonefeed-api/internal/pkg/logger"
	"github.com/phonefeed-api/internal/pkg/obs"
	transporthttp "github.com/phonefeed-api/internal/transport/http"
	"github.com/rs/zerolog/log"
)

func main() {
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	logger.Install(logger.New(cfg.AppEnv, cfg.LogLevel))
	if envErr != nil {
		log.Info().Msg("No .env file found, reading from environment")
	}

	ctx := context.Background()

	shutdownTracer, err := obs.InitTracer(ctx, transporthttp.ServiceName, cfg.AppEnv, cfg.OTLPEndpoint)
	if err != nil {
		log.Fatal().Err(err).Msg("tracing setup failed")
	}

	deps := &transporthttp.Deps{}
	if err := wireStores(ctx, cfg, deps); err != nil {
		log.Fatal().Err(err).Msg("store setup failed")
	}

	// Notifications go to RabbitMQ when configured, otherwise to an in-process worker pool.
	var stopNotifier func(context.Context) error
	if cfg.RabbitMQ.URL != "" {
		pub, err := rabbitmq.NewPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange)
		if err != nil {
			log.Fatal().Err(err).Msg("rabbitmq publisher setup failed")
		}
		deps.Notifier = pub
		stopNotifier = func(context.Context) error { return pub.Close() }
		log.Info().Str("exchange", cfg.RabbitMQ.Exchange).Msg("publishing notifications to rabbitmq")
	} else {
		sender, err := sns.NewSender(ctx, cfg)
		if err != nil {
			log.Fatal().Err(err).Msg("sns sender setup failed")
		}
		worker := notification.NewWorker(notification.NewDeliverer(sender, notification.DeliveryOptions{
			MaxAttempts: cfg.Notify.MaxAttempts,
			Backoff:     cfg.Notify.Backoff,
			RatePerSec:  cfg.Notify.RatePerSec,
		}), cfg.Notify.Workers, cfg.Notify.QueueSize)
		deps.Notifier = worker
		stopNotifier = worker.Stop
	}

	// JWT provider (optional unless identity tokens are required).
	if p, err := jwtinfra.NewProvider(cfg); err == nil {
		deps.JWTProvider = p
	} else if cfg.RequireIdentityToken {
		log.Fatal().Err(err).Msg("REQUIRE_IDENTITY_TOKEN set but JWT keys are unavailable")
	} else {
		log.Warn().Err(err).Msg("JWT provider not available; identity tokens disabled")
	}

	// S3 upload URLs (optional).
	if cfg.S3BucketName != "" {
		s3Client, err := s3infra.NewClient(ctx, cfg)
		if err != nil {
			log.Fatal().Err(err).Msg("s3 client setup failed")
		}
		var presigner media.Presigner = s3infra.NewStore(s3Client, cfg.S3BucketName, cfg.S3PublicBaseURL, cfg.AWSRegion)
		deps.Presigner = presigner
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      transporthttp.NewRouter(cfg, deps),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.AppPort).Str("env", cfg.AppEnv).Str("store", cfg.StoreBackend).Msg("Server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}
	// Pending notifications are drained after the last request has been served.
	if err := stopNotifier(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("notification queue not drained")
	}
	if err := shutdownTracer(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("tracer shutdown")
	}
	log.Info().Msg("Server stopped")
}

// wireStores fills the record stores for the configured backend. The DynamoDB
// client is built once and shared by the three repos.
func wireStores(ctx context.Context, cfg *config.Config, deps *transporthttp.Deps) error {
	if cfg.StoreBackend == config.StoreMemory {
		log.Warn().Msg("using in-memory store; data is lost on restart")
		deps.VerificationStore = memory.NewPhoneVerificationStore()
		deps.ProfileStore = memory.NewProfileStore()
		deps.PostStore = memory.NewPostStore()
		return nil
	}

	client, err := dynamo.NewClient(ctx, cfg)
	if err != nil {
		return err
	}
	// Creates the tables if they don't exist.
	dynamo.Bootstrap(ctx, client, cfg.DynamoTables)

	deps.VerificationStore = dynamo.NewPhoneVerificationRepo(client, cfg.DynamoTables.PhoneNumbers)
	deps.ProfileStore = dynamo.NewProfileRepo(client, cfg.DynamoTables.UserData)
	deps.PostStore = dynamo.NewPostRepo(client, cfg.DynamoTables.Posts)
	return nil
}
