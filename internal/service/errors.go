package service

import "errors"

var (
	ErrUnauthorized     = errors.New("unauthorized")
	ErrNotFound         = errors.New("not found")
	ErrUserNotFound     = errors.New("user not found")
	ErrSignatureInvalid = errors.New("webhook signature verification failed")
	ErrMalformedPayload = errors.New("malformed webhook payload")
	ErrUnknownSku       = errors.New("unknown price id")
	ErrInvalidPack      = errors.New("invalid credit pack")
	ErrUpstreamFailure  = errors.New("upstream failure")
	ErrPresignFailed    = errors.New("failed to generate play URL")
	ErrDeleteFailed     = errors.New("failed to delete clip")
)
