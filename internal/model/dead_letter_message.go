package model

import "time"

// DeadLetterMessage is a process-video job that exhausted its delivery
// attempts and was pushed to the dead-letter endpoint.
type DeadLetterMessage struct {
	ID               string    `db:"id"`
	SubscriptionName string    `db:"subscription_name"`
	MessageID        string    `db:"message_id"`
	UploadedFileID   *string   `db:"uploaded_file_id"`
	Payload          string    `db:"payload"`    // JSON
	Attributes       *string   `db:"attributes"` // JSON, nullable
	Status           string    `db:"status"`
	CreatedAt        time.Time `db:"created_at"`
	UpdatedAt        time.Time `db:"updated_at"`
}
