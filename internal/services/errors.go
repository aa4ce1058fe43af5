package services

import "errors"

var (
	ErrCampaignNotFound  = errors.New("campaign not found")
	ErrCampaignArchived  = errors.New("campaign is archived")
	ErrBusinessNotFound  = errors.New("business not found")
	ErrVideoTooLong      = errors.New("video is too long")
	ErrVideoTooLarge     = errors.New("video file is too large")
	ErrRequestInProgress = errors.New("a request with this idempotency key is in progress")
	ErrInvalidAction     = errors.New("action must be approve or reject")
)
