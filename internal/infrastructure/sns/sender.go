package sns

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/phonefeed-api/internal/config"
	"github.com/phonefeed-api/internal/infrastructure/awsconf"
	"github.com/rs/zerolog/log"
)

// PushSender delivers a single notification to a device token.
type PushSender interface {
	Send(ctx context.Context, token, title, body string) error
}

// API is the subset of the SNS client the sender uses.
type API interface {
	CreatePlatformEndpoint(ctx context.Context, in *sns.CreatePlatformEndpointInput, optFns ...func(*sns.Options)) (*sns.CreatePlatformEndpointOutput, error)
	Publish(ctx context.Context, in *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

type sender struct {
	client      API
	platformARN string
}

// NewSender returns an SNS mobile-push sender. Without a platform application
// ARN it falls back to a sender that only logs, which keeps local runs working.
func NewSender(ctx context.Context, cfg *config.Config) (PushSender, error) {
	if cfg.SNSPlatformApplicationARN == "" {
		log.Warn().Msg("SNS_PLATFORM_APPLICATION_ARN not set; push notifications are logged only")
		return LogSender{}, nil
	}
	awsCfg, err := awsconf.Load(ctx, cfg, cfg.SNSRegion)
	if err != nil {
		return nil, err
	}
	clientOpts := []func(*sns.Options){}
	if cfg.AWSEndpointURL != "" {
		clientOpts = append(clientOpts, func(o *sns.Options) {
			o.BaseEndpoint = aws.String(cfg.AWSEndpointURL)
		})
	}
	return NewSenderWithClient(sns.NewFromConfig(awsCfg, clientOpts...), cfg.SNSPlatformApplicationARN), nil
}

func NewSenderWithClient(client API, platformARN string) PushSender {
	return &sender{client: client, platformARN: platformARN}
}

// Send registers the FCM token as a platform endpoint (idempotent on SNS's side
// for identical attributes) and publishes a GCM-structured message to it.
func (s *sender) Send(ctx context.Context, token, title, body string) error {
	ep, err := s.client.CreatePlatformEndpoint(ctx, &sns.CreatePlatformEndpointInput{
		PlatformApplicationArn: aws.String(s.platformARN),
		Token:                  aws.String(token),
	})
	if err != nil {
		return fmt.Errorf("create platform endpoint: %w", err)
	}
	msg, err := gcmMessage(title, body)
	if err != nil {
		return err
	}
	_, err = s.client.Publish(ctx, &sns.PublishInput{
		TargetArn:        ep.EndpointArn,
		Message:          aws.String(msg),
		MessageStructure: aws.String("json"),
	})
	if err != nil {
		return fmt.Errorf("sns publish: %w", err)
	}
	return nil
}

func gcmMessage(title, body string) (string, error) {
	gcm, err := json.Marshal(map[string]any{
		"notification": map[string]string{"title": title, "body": body},
	})
	if err != nil {
		return "", err
	}
	msg, err := json.Marshal(map[string]string{"default": body, "GCM": string(gcm)})
	if err != nil {
		return "", err
	}
	return string(msg), nil
}

// LogSender writes notifications to the process log instead of delivering them.
type LogSender struct{}

func (LogSender) Send(_ context.Context, token, title, _ string) error {
	log.Info().Str("token", token).Str("title", title).Msg("push notification (log only)")
	return nil
}
