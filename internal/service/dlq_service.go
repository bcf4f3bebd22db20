package service

import (
	"context"
	"encoding/base64"
	"encoding/json"

	"clipper/internal/api/v1/dto"
	"clipper/internal/model"
	"clipper/internal/repository"
)

type DLQService interface {
	ProcessAndSave(ctx context.Context, req *dto.PubSubPushRequest) error
}

type dlqService struct {
	repo repository.DLQRepository
}

func NewDLQService(repo repository.DLQRepository) DLQService {
	return &dlqService{repo: repo}
}

func (s *dlqService) ProcessAndSave(ctx context.Context, req *dto.PubSubPushRequest) error {
	decodedPayload, err := base64.StdEncoding.DecodeString(req.Message.Data)
	if err != nil {
		// Keep undecodable data as-is so nothing is lost.
		decodedPayload = []byte(req.Message.Data)
	}

	var attributesJSON *string
	if len(req.Message.Attributes) > 0 {
		if attrBytes, err := json.Marshal(req.Message.Attributes); err == nil {
			attrStr := string(attrBytes)
			attributesJSON = &attrStr
		}
	}

	dbMessage := &model.DeadLetterMessage{
		SubscriptionName: req.Subscription,
		MessageID:        req.Message.MessageID,
		UploadedFileID:   deadLetterUploadedFileID(req.Message.Attributes, decodedPayload),
		Payload:          string(decodedPayload),
		Attributes:       attributesJSON,
		Status:           "unprocessed",
	}
	return s.repo.Create(ctx, dbMessage)
}

// deadLetterUploadedFileID finds the uploaded file a dead job was for, from
// the message attributes or, failing that, the event envelope.
func deadLetterUploadedFileID(attrs map[string]string, payload []byte) *string {
	if id := attrs["uploaded_file_id"]; id != "" {
		return &id
	}
	var env struct {
		Data struct {
			UploadedFileID string `json:"uploadedFileId"`
		} `json:"data"`
	}
	if err := json.Unmarshal(payload, &env); err == nil && env.Data.UploadedFileID != "" {
		return &env.Data.UploadedFileID
	}
	return nil
}
