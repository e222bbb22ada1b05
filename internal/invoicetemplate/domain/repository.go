package domain

import "context"

type Repository interface {
	List(ctx context.Context) ([]Template, error)
	Read(ctx context.Context, name string) (*Loaded, error)
	Write(ctx context.Context, name string, data []byte) error
}
