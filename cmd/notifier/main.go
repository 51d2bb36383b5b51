// Command notifier consumes push notifications published by the API when
// RABBITMQ_URL is set and delivers them through SNS.
package main

import (
	"context"
	"os/signal"
	"sync"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/phonefeed-api/internal/application/notification"
	"github.com/phonefeed-api/internal/config"
	"github.com/phonefeed-api/internal/infrastructure/rabbitmq"
	"github.com/phonefeed-api/internal/infrastructure/sns"
	"github.com/phonefeed-api/internal/pkg/logger"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	logger.Install(logger.New(cfg.AppEnv, cfg.LogLevel))
	if cfg.RabbitMQ.URL == "" {
		log.Fatal().Msg("RABBITMQ_URL is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sender, err := sns.NewSender(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("sns sender setup failed")
	}
	deliverer := notification.NewDeliverer(sender, notification.DeliveryOptions{
		MaxAttempts: cfg.Notify.MaxAttempts,
		Backoff:     cfg.Notify.Backoff,
		RatePerSec:  cfg.Notify.RatePerSec,
	})

	consumer, err := rabbitmq.NewConsumer(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange, cfg.RabbitMQ.Queue, cfg.Notify.Workers)
	if err != nil {
		log.Fatal().Err(err).Msg("rabbitmq consumer setup failed")
	}
	defer consumer.Close()

	deliveries, err := consumer.Deliveries(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("start consuming")
	}
	log.Info().Str("queue", cfg.RabbitMQ.Queue).Int("workers", cfg.Notify.Workers).Msg("notifier started")

	workers := cfg.Notify.Workers
	if workers < 1 {
		workers = 1
	}
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			consume(ctx, deliveries, deliverer)
		}()
	}
	wg.Wait()
	log.Info().Msg("notifier stopped")
}

func consume(ctx context.Context, deliveries <-chan amqp.Delivery, deliverer *notification.Deliverer) {
	for {
		select {
		case <-ctx.Done():
			return
		case d, ok := <-deliveries:
			if !ok {
				log.Error().Msg("delivery channel closed")
				return
			}
			n, err := rabbitmq.Decode(d.Body)
			if err != nil {
				log.Error().Err(err).Msg("discarding malformed notification")
				_ = d.Nack(false, false)
				continue
			}
			// Delivery failures are terminal after retries; the message is acked either way.
			if err := deliverer.Deliver(ctx, n); err != nil {
				log.Error().Err(err).Str("title", n.Title).Msg("push notification dropped")
			}
			_ = d.Ack(false)
		}
	}
}
