package repository

import (
	"context"

	"github.com/smallbiznis/propbill/pkg/db/option"
	"gorm.io/gorm"
)

// Repository is a generic gorm-backed store for the small lookup tables
// (fee types, settings) that need nothing beyond filtered CRUD.
type Repository[T any] interface {
	WithTrx(tx *gorm.DB) Repository[T]
	Find(ctx context.Context, filter *T, opts ...option.QueryOption) ([]*T, error)
	// FindOne returns nil, nil when no row matches.
	FindOne(ctx context.Context, filter *T, opts ...option.QueryOption) (*T, error)
	// FirstOrCreate returns the row matching filter, inserting defaults when
	// none exists. A concurrent insert of the same row is not an error.
	FirstOrCreate(ctx context.Context, filter *T, defaults *T) (*T, error)
	Create(ctx context.Context, row *T) error
	Update(ctx context.Context, id any, fields map[string]any) error
	Delete(ctx context.Context, id any) (int64, error)
}
