package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/phonefeed-api/internal/domain"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

// Sender delivers one push notification to a device token.
type Sender interface {
	Send(ctx context.Context, token, title, body string) error
}

// DeliveryOptions tunes retries and throughput.
type DeliveryOptions struct {
	MaxAttempts int
	Backoff     time.Duration // delay before the second attempt; doubles after each failure
	RatePerSec  float64       // <= 0 disables throttling
}

// Deliverer sends notifications with bounded retries, throttled by a token bucket
// shared by every caller.
type Deliverer struct {
	sender  Sender
	limiter *rate.Limiter
	opts    DeliveryOptions
}

func NewDeliverer(sender Sender, opts DeliveryOptions) *Deliverer {
	if opts.MaxAttempts < 1 {
		opts.MaxAttempts = 1
	}
	limiter := rate.NewLimiter(rate.Inf, 0)
	if opts.RatePerSec > 0 {
		burst := int(opts.RatePerSec)
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RatePerSec), burst)
	}
	return &Deliverer{sender: sender, limiter: limiter, opts: opts}
}

// Deliver returns the last send error once every attempt has failed.
func (d *Deliverer) Deliver(ctx context.Context, n domain.PushNotification) error {
	delay := d.opts.Backoff
	var err error
	for attempt := 1; attempt <= d.opts.MaxAttempts; attempt++ {
		if werr := d.limiter.Wait(ctx); werr != nil {
			return fmt.Errorf("deliver notification: %w", werr)
		}
		if err = d.sender.Send(ctx, n.Token, n.Title, n.Body); err == nil {
			return nil
		}
		log.Warn().Err(err).Int("attempt", attempt).Str("title", n.Title).Msg("push notification attempt failed")
		if attempt == d.opts.MaxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("deliver notification: %w", ctx.Err())
		case <-time.After(delay):
		}
		delay *= 2
	}
	return fmt.Errorf("deliver notification after %d attempts: %w", d.opts.MaxAttempts, err)
}
