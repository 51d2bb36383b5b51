package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Store backends selectable through STORE_BACKEND.
const (
	StoreDynamo = "dynamo"
	StoreMemory = "memory"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort      string `envconfig:"APP_PORT" default:"3000"`
	AppEnv       string `envconfig:"APP_ENV" default:"development"`
	LogLevel     string `envconfig:"LOG_LEVEL" default:"info"`
	StoreBackend string `envconfig:"STORE_BACKEND" default:"dynamo"`

	AWSRegion      string `envconfig:"AWS_REGION" default:"us-east-1"`
	AWSEndpointURL string `envconfig:"AWS_ENDPOINT_URL"` // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string `envconfig:"AWS_ACCESS_KEY_ID"`
	AWSSecretKey   string `envconfig:"AWS_SECRET_ACCESS_KEY"`

	// Nested groups are embedded so envconfig does not prefix their keys.
	DynamoTables

	SNSRegion                 string `envconfig:"SNS_REGION" default:"us-east-1"`
	SNSPlatformApplicationARN string `envconfig:"SNS_PLATFORM_APPLICATION_ARN"`

	Notify
	RabbitMQ

	JWTPrivateKeyPath    string        `envconfig:"JWT_PRIVATE_KEY_PATH" default:"./private_key.pem"`
	JWTPublicKeyPath     string        `envconfig:"JWT_PUBLIC_KEY_PATH" default:"./public_key.pem"`
	JWTExpiry            time.Duration `envconfig:"JWT_EXPIRY" default:"720h"`
	RequireIdentityToken bool          `envconfig:"REQUIRE_IDENTITY_TOKEN" default:"false"`

	S3BucketName    string        `envconfig:"S3_BUCKET_NAME" default:"phonefeed-media"`
	S3PublicBaseURL string        `envconfig:"S3_PUBLIC_BASE_URL"`
	S3UploadExpiry  time.Duration `envconfig:"S3_UPLOAD_EXPIRY" default:"15m"`

	OTLPEndpoint   string   `envconfig:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	AllowedOrigins []string `envconfig:"ALLOWED_ORIGINS" default:"*"` // CORS allowed origins
}

// DynamoTables holds the DynamoDB table name for each record collection.
type DynamoTables struct {
	PhoneNumbers string `envconfig:"DYNAMO_TABLE_PHONE_NUMBERS" default:"phoneNumbers"`
	UserData     string `envconfig:"DYNAMO_TABLE_USER_DATA" default:"userData"`
	Posts        string `envconfig:"DYNAMO_TABLE_POSTS" default:"posts"`
}

// Notify tunes push-notification delivery.
type Notify struct {
	Workers     int           `envconfig:"NOTIFY_WORKERS" default:"4"`
	QueueSize   int           `envconfig:"NOTIFY_QUEUE_SIZE" default:"256"`
	MaxAttempts int           `envconfig:"NOTIFY_MAX_ATTEMPTS" default:"3"`
	Backoff     time.Duration `envconfig:"NOTIFY_BACKOFF" default:"500ms"`
	RatePerSec  float64       `envconfig:"NOTIFY_RATE" default:"20"`
}

// RabbitMQ is optional; when URL is empty notifications go through the in-process queue.
type RabbitMQ struct {
	URL      string `envconfig:"RABBITMQ_URL"`
	Exchange string `envconfig:"RABBITMQ_EXCHANGE" default:"notifications"`
	Queue    string `envconfig:"RABBITMQ_QUEUE" default:"push-notifications"`
}

// Load reads all configuration from environment variables.
func Load() (*Config, error) {
	var c Config
	if err := envconfig.Process("", &c); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	switch c.StoreBackend {
	case StoreDynamo, StoreMemory:
	default:
		return nil, fmt.Errorf("load config: unknown STORE_BACKEND %q", c.StoreBackend)
	}
	return &c, nil
}

// IsDevelopment reports whether the process runs with development defaults.
func (c *Config) IsDevelopment() bool { return c.AppEnv == "development" }
