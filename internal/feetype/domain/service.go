package domain

import (
	"context"
	"errors"
)

type Service interface {
	List(context.Context) ([]FeeType, error)
	Create(ctx context.Context, name string) (FeeType, error)
	Delete(ctx context.Context, id string) error
	// EnsureDefaults creates any missing default fee types and reports how many were added.
	EnsureDefaults(context.Context) (int, error)
}

var (
	ErrInvalidName = errors.New("invalid_name")
	ErrInvalidID   = errors.New("invalid_id")
	ErrDuplicate   = errors.New("fee_type_exists")
	ErrNotFound    = errors.New("not_found")
)
