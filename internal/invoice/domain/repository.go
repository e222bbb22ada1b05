package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, invoice *Invoice) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Invoice, error)
	ExistsForPeriod(ctx context.Context, db *gorm.DB, customerID snowflake.ID, periodLabel string) (bool, error)
	List(ctx context.Context, db *gorm.DB) ([]ListItem, error)
	UpdateStatus(ctx context.Context, db *gorm.DB, invoice *Invoice) error
	MarkSent(ctx context.Context, db *gorm.DB, invoice *Invoice) error
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) (int64, error)
	DeleteAll(ctx context.Context, db *gorm.DB) (int64, error)
	StorageKeys(ctx context.Context, db *gorm.DB) ([]string, error)
}
