// Package queue submits process-video jobs to the external clip pipeline.
// Delivery is at-least-once; consumers must tolerate duplicates.
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"clipper/internal/pgmq"
	"clipper/internal/pubsub"
)

// ProcessVideoEventName names the event the pipeline subscribes to.
const ProcessVideoEventName = "process-video-events"

// ProcessVideoEvent asks the pipeline to cut clips from an uploaded file.
type ProcessVideoEvent struct {
	UploadedFileID string `json:"uploadedFileId"`
	UserID         string `json:"userId"`
}

// envelope is the wire shape shared by every backend.
type envelope struct {
	Name string            `json:"name"`
	Data ProcessVideoEvent `json:"data"`
}

func encode(ev ProcessVideoEvent) ([]byte, error) {
	data, err := json.Marshal(envelope{Name: ProcessVideoEventName, Data: ev})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s event: %w", ProcessVideoEventName, err)
	}
	return data, nil
}

// PubSubQueue publishes jobs to a Pub/Sub topic.
type PubSubQueue struct {
	publisher pubsub.Publisher
	topic     string
}

func NewPubSubQueue(publisher pubsub.Publisher, topic string) *PubSubQueue {
	return &PubSubQueue{publisher: publisher, topic: topic}
}

// EnqueueProcessVideo publishes ev and returns the Pub/Sub message id.
func (q *PubSubQueue) EnqueueProcessVideo(ctx context.Context, ev ProcessVideoEvent) (string, error) {
	data, err := encode(ev)
	if err != nil {
		return "", err
	}
	attrs := map[string]string{
		"event":            ProcessVideoEventName,
		"uploaded_file_id": ev.UploadedFileID,
		"user_id":          ev.UserID,
	}
	return q.publisher.Publish(ctx, q.topic, data, attrs)
}

// Sender is the part of the pgmq client PGMQQueue needs.
type Sender interface {
	Send(ctx context.Context, queue string, payload []byte) (int64, error)
}

var _ Sender = (*pgmq.Client)(nil)

// PGMQQueue sends jobs to a pgmq queue in the application database.
type PGMQQueue struct {
	client Sender
	queue  string
}

func NewPGMQQueue(client Sender, queue string) *PGMQQueue {
	return &PGMQQueue{client: client, queue: queue}
}

func (q *PGMQQueue) EnqueueProcessVideo(ctx context.Context, ev ProcessVideoEvent) (string, error) {
	data, err := encode(ev)
	if err != nil {
		return "", err
	}
	id, err := q.client.Send(ctx, q.queue, data)
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(id, 10), nil
}
