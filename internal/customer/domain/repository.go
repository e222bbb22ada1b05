package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, customer *Customer) error
	Update(ctx context.Context, db *gorm.DB, customer *Customer) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Customer, error)
	List(ctx context.Context, db *gorm.DB) ([]*Customer, error)
	ListDue(ctx context.Context, db *gorm.DB, asOf time.Time) ([]*Customer, error)
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) (int64, error)
	UpdateNextBillDate(ctx context.Context, db *gorm.DB, id snowflake.ID, next time.Time) error

	InsertProperty(ctx context.Context, db *gorm.DB, property *Property) error
	DeleteProperty(ctx context.Context, db *gorm.DB, customerID, propertyID snowflake.ID) (int64, error)
	ListProperties(ctx context.Context, db *gorm.DB, customerIDs ...snowflake.ID) ([]*Property, error)
}
