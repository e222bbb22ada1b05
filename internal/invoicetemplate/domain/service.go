package domain

import (
	"context"
	"errors"
)

type Service interface {
	List(ctx context.Context) ([]Template, error)
	Load(ctx context.Context, name string) (*Loaded, error)
	Inspect(ctx context.Context, name string) (*Inspection, error)
	// EnsureDefault writes the built-in template when name does not exist yet.
	EnsureDefault(ctx context.Context, name string) (bool, error)
}

var (
	ErrInvalidName = errors.New("invalid_template_name")
	ErrNotFound    = errors.New("template_not_found")
)
