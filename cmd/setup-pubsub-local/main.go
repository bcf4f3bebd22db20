package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"clipper/internal/logger"

	"cloud.google.com/go/pubsub"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"google.golang.org/api/option"
)

// 'host.docker.internal' lets the emulator container reach the host machine.
const (
	defaultPipelineEndpoint = "http://host.docker.internal:8000/process-video"
	defaultDLQEndpoint      = "http://host.docker.internal:8080/v1/dlq"
)

func main() {
	pipelineEndpoint := flag.String("pipeline-endpoint", defaultPipelineEndpoint, "push endpoint of the clip pipeline")
	dlqEndpoint := flag.String("dlq-endpoint", defaultDLQEndpoint, "push endpoint for dead-lettered jobs")
	topicID := flag.String("topic", "process-video-events", "process-video topic")
	flag.Parse()

	_ = godotenv.Load()
	logger := logger.New()

	projectID := os.Getenv("GCP_PROJECT_ID")
	emulatorHost := os.Getenv("PUBSUB_EMULATOR_HOST")
	if projectID == "" || emulatorHost == "" {
		logger.Fatal().Msg("GCP_PROJECT_ID and PUBSUB_EMULATOR_HOST must be set for the local emulator")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := pubsub.NewClient(ctx, projectID,
		option.WithEndpoint(emulatorHost),
		option.WithoutAuthentication(),
	)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create Pub/Sub client")
	}
	defer client.Close()

	if err := ensureResources(ctx, client, logger, *topicID, *pipelineEndpoint, *dlqEndpoint); err != nil {
		logger.Fatal().Err(err).Msg("Pub/Sub setup failed")
	}
	logger.Info().Msg("Pub/Sub setup for local environment complete")
}

// ensureResources creates the topic, its dead-letter topic, the pipeline
// push subscription and the dead-letter push subscription.
func ensureResources(ctx context.Context, client *pubsub.Client, logger zerolog.Logger, topicID, pipelineEndpoint, dlqEndpoint string) error {
	retention := 7 * 24 * time.Hour
	dlqTopic, err := ensureTopic(ctx, client, logger, topicID+"-dlq", retention)
	if err != nil {
		return err
	}
	mainTopic, err := ensureTopic(ctx, client, logger, topicID, retention)
	if err != nil {
		return err
	}

	retry := &pubsub.RetryPolicy{MinimumBackoff: 10 * time.Second, MaximumBackoff: 600 * time.Second}
	if err := ensureSubscription(ctx, client, logger, topicID+"-sub", pubsub.SubscriptionConfig{
		Topic:       mainTopic,
		PushConfig:  pubsub.PushConfig{Endpoint: pipelineEndpoint},
		AckDeadline: 180 * time.Second,
		RetryPolicy: retry,
		DeadLetterPolicy: &pubsub.DeadLetterPolicy{
			DeadLetterTopic:     dlqTopic.String(),
			MaxDeliveryAttempts: 5,
		},
	}); err != nil {
		return err
	}
	return ensureSubscription(ctx, client, logger, topicID+"-dlq-sub", pubsub.SubscriptionConfig{
		Topic:       dlqTopic,
		PushConfig:  pubsub.PushConfig{Endpoint: dlqEndpoint},
		AckDeadline: 60 * time.Second,
		RetryPolicy: retry,
	})
}

func ensureTopic(ctx context.Context, client *pubsub.Client, logger zerolog.Logger, topicID string, retention time.Duration) (*pubsub.Topic, error) {
	topic := client.Topic(topicID)
	exists, err := topic.Exists(ctx)
	if err != nil {
		return nil, fmt.Errorf("check topic %s: %w", topicID, err)
	}
	if exists {
		logger.Info().Str("topic", topicID).Msg("Topic already exists")
		return topic, nil
	}
	logger.Info().Str("topic", topicID).Dur("retention", retention).Msg("Creating topic")
	return client.CreateTopicWithConfig(ctx, topicID, &pubsub.TopicConfig{RetentionDuration: retention})
}

func ensureSubscription(ctx context.Context, client *pubsub.Client, logger zerolog.Logger, subID string, cfg pubsub.SubscriptionConfig) error {
	sub := client.Subscription(subID)
	exists, err := sub.Exists(ctx)
	if err != nil {
		return fmt.Errorf("check subscription %s: %w", subID, err)
	}
	if !exists {
		logger.Info().Str("subscription", subID).Str("endpoint", cfg.PushConfig.Endpoint).Msg("Creating subscription")
		_, err := client.CreateSubscription(ctx, subID, cfg)
		return err
	}

	existing, err := sub.Config(ctx)
	if err != nil {
		return fmt.Errorf("read subscription %s: %w", subID, err)
	}
	if existing.PushConfig.Endpoint == cfg.PushConfig.Endpoint && existing.AckDeadline == cfg.AckDeadline {
		logger.Info().Str("subscription", subID).Msg("Subscription is up to date")
		return nil
	}
	logger.Info().Str("subscription", subID).Msg("Updating subscription")
	_, err = sub.Update(ctx, pubsub.SubscriptionConfigToUpdate{
		PushConfig:  &cfg.PushConfig,
		AckDeadline: cfg.AckDeadline,
		RetryPolicy: cfg.RetryPolicy,
	})
	if err != nil {
		return fmt.Errorf("update subscription %s: %w", subID, err)
	}
	return nil
}
