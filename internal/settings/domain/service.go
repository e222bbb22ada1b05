package domain

import (
	"context"
	"errors"
)

type Service interface {
	// Get returns the settings row, creating it with defaults on first read.
	Get(context.Context) (Settings, error)
	Update(context.Context, UpdateRequest) (Settings, error)
}

type UpdateRequest struct {
	SenderName          *string `json:"sender_name"`
	SenderEmail         *string `json:"sender_email"`
	DefaultTemplateName *string `json:"default_template_name"`
}

var (
	ErrInvalidSenderName  = errors.New("invalid_sender_name")
	ErrInvalidSenderEmail = errors.New("invalid_sender_email")
	ErrInvalidTemplate    = errors.New("invalid_template_name")
)
