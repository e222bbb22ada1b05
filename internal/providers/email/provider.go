package email

import (
	"context"
	"errors"
)

var ErrNoRecipient = errors.New("no_recipient")

type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

type Message struct {
	To          []string
	ReplyTo     string
	FromName    string
	Subject     string
	Body        string
	Attachments []Attachment
}

type Provider interface {
	Enabled() bool
	Send(ctx context.Context, msg Message) error
}

type NoOpProvider struct{}

func (p *NoOpProvider) Enabled() bool { return false }

func (p *NoOpProvider) Send(ctx context.Context, msg Message) error {
	return nil
}
