package repository

import (
	"context"
	"errors"

	"github.com/smallbiznis/propbill/pkg/db"
	"github.com/smallbiznis/propbill/pkg/db/option"
	"gorm.io/gorm"
)

type store[T any] struct {
	db *gorm.DB
}

func ProvideStore[T any](conn *gorm.DB) Repository[T] {
	return &store[T]{db: conn}
}

func (s *store[T]) WithTrx(tx *gorm.DB) Repository[T] {
	return &store[T]{db: tx}
}

func (s *store[T]) scoped(ctx context.Context, filter *T, opts []option.QueryOption) *gorm.DB {
	q := s.db.WithContext(ctx).Model(new(T))
	if filter != nil {
		q = q.Where(filter)
	}
	for _, opt := range opts {
		q = opt.Apply(q)
	}
	return q
}

func (s *store[T]) Find(ctx context.Context, filter *T, opts ...option.QueryOption) ([]*T, error) {
	rows := []*T{}
	if err := s.scoped(ctx, filter, opts).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *store[T]) FindOne(ctx context.Context, filter *T, opts ...option.QueryOption) (*T, error) {
	row := new(T)
	err := s.scoped(ctx, filter, opts).Take(row).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, nil
	case err != nil:
		return nil, err
	}
	return row, nil
}

func (s *store[T]) FirstOrCreate(ctx context.Context, filter *T, defaults *T) (*T, error) {
	existing, err := s.FindOne(ctx, filter)
	if err != nil || existing != nil {
		return existing, err
	}
	if err := s.Create(ctx, defaults); err != nil {
		if !db.IsDuplicateKeyErr(err) {
			return nil, err
		}
		return s.FindOne(ctx, filter)
	}
	return defaults, nil
}

func (s *store[T]) Create(ctx context.Context, row *T) error {
	return s.db.WithContext(ctx).Create(row).Error
}

func (s *store[T]) Update(ctx context.Context, id any, fields map[string]any) error {
	return s.db.WithContext(ctx).Model(new(T)).Where("id = ?", id).Updates(fields).Error
}

func (s *store[T]) Delete(ctx context.Context, id any) (int64, error) {
	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(new(T))
	return res.RowsAffected, res.Error
}
