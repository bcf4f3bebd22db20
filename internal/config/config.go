package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port               string `envconfig:"PORT" default:"8080"`
	Environment        string `envconfig:"ENV" default:"development"`
	DBConnectionString string `envconfig:"DB_CONNECTION_STRING" required:"true"`
	JWTSecret          string `envconfig:"AUTH_JWT_SECRET" required:"true"`
	AppBaseURL         string `envconfig:"APP_BASE_URL" default:"http://localhost:3000"`

	// Object storage
	S3URL             string `envconfig:"S3_URL"`
	S3Bucket          string `envconfig:"S3_BUCKET" required:"true"`
	S3Region          string `envconfig:"S3_REGION" required:"true"`
	S3AccessKey       string `envconfig:"S3_ACCESS_KEY" required:"true"`
	S3SecretKey       string `envconfig:"S3_SECRET_KEY" required:"true"`
	PlaybackURLTTLSec int    `envconfig:"PLAYBACK_URL_TTL_SEC" default:"3600"`
	UploadURLTTLSec   int    `envconfig:"UPLOAD_URL_TTL_SEC" default:"900"`

	// Job queue
	JobQueueBackend         string `envconfig:"JOB_QUEUE_BACKEND" default:"pubsub"`
	PubSubProcessVideoTopic string `envconfig:"PUBSUB_PROCESS_VIDEO_TOPIC" default:"process-video-events"`
	PGMQProcessVideoQueue   string `envconfig:"PGMQ_PROCESS_VIDEO_QUEUE" default:"process_video_events"`
	SubmitClaimLeaseSec     int    `envconfig:"SUBMIT_CLAIM_LEASE_SEC" default:"300"`

	// Pub/Sub
	PubSubEmulatorHost            string `envconfig:"PUBSUB_EMULATOR_HOST"`
	GCPProjectID                  string `envconfig:"GCP_PROJECT_ID"`
	DLQEndpointURL                string `envconfig:"DLQ_ENDPOINT_URL"`
	PubSubPushServiceAccountEmail string `envconfig:"PUBSUB_PUSH_SERVICE_ACCOUNT_EMAIL"`

	// Stripe
	StripeSecretKey        string `envconfig:"STRIPE_SECRET_KEY"`
	StripeWebhookSecret    string `envconfig:"STRIPE_WEBHOOK_SECRET"`
	StripeSmallCreditPack  string `envconfig:"STRIPE_SMALL_CREDIT_PACK" required:"true"`
	StripeMediumCreditPack string `envconfig:"STRIPE_MEDIUM_CREDIT_PACK" required:"true"`
	StripeLargeCreditPack  string `envconfig:"STRIPE_LARGE_CREDIT_PACK" required:"true"`

	// When set, Stripe secrets are read from Secret Manager instead of the environment.
	SecretManagerProjectID string `envconfig:"SECRET_MANAGER_PROJECT_ID"`

	// Dashboard cache
	RedisURL             string `envconfig:"REDIS_URL"`
	DashboardCacheTTLSec int    `envconfig:"DASHBOARD_CACHE_TTL_SEC" default:"60"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// IsLocalPubSub reports whether Pub/Sub traffic goes to the local emulator.
func (c *Config) IsLocalPubSub() bool {
	return c.PubSubEmulatorHost != ""
}

func (c *Config) PlaybackURLTTL() time.Duration {
	return time.Duration(c.PlaybackURLTTLSec) * time.Second
}

func (c *Config) UploadURLTTL() time.Duration {
	return time.Duration(c.UploadURLTTLSec) * time.Second
}

func (c *Config) SubmitClaimLease() time.Duration {
	return time.Duration(c.SubmitClaimLeaseSec) * time.Second
}

func (c *Config) DashboardCacheTTL() time.Duration {
	return time.Duration(c.DashboardCacheTTLSec) * time.Second
}
