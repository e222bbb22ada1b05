package domain

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

type CreateCustomerRequest struct {
	Name                string
	Email               string
	PropertyAddress     string
	PropertyCity        string
	PropertyState       string
	PropertyZip         string
	Rate                decimal.Decimal
	Cadence             string
	FeeType             string
	Fee2Type            string
	Fee2Rate            decimal.NullDecimal
	Fee3Type            string
	Fee3Rate            decimal.NullDecimal
	AdditionalFeeDesc   string
	AdditionalFeeAmount decimal.NullDecimal
	NextBillDate        time.Time
}

type UpdateCustomerRequest struct {
	ID string
	CreateCustomerRequest
}

type AddPropertyRequest struct {
	CustomerID string
	Address    string
	City       string
	State      string
	ZipCode    string
	FeeAmount  decimal.NullDecimal
	IsPrimary  bool
}

type Service interface {
	Create(context.Context, CreateCustomerRequest) (Customer, error)
	Update(context.Context, UpdateCustomerRequest) (Customer, error)
	GetByID(ctx context.Context, id string) (Customer, error)
	List(context.Context) ([]Customer, error)
	Delete(ctx context.Context, id string) error

	AddProperty(context.Context, AddPropertyRequest) (Property, error)
	DeleteProperty(ctx context.Context, customerID, propertyID string) error

	// ListDue returns customers whose next bill date is on or before asOf, ordered by id.
	ListDue(ctx context.Context, asOf time.Time) ([]Customer, error)
	SetNextBillDate(ctx context.Context, id string, next time.Time) error
}

var (
	ErrInvalidName         = errors.New("invalid_name")
	ErrInvalidEmail        = errors.New("invalid_email")
	ErrInvalidAddress      = errors.New("invalid_address")
	ErrInvalidRate         = errors.New("invalid_rate")
	ErrInvalidCadence      = errors.New("invalid_cadence")
	ErrInvalidNextBillDate = errors.New("invalid_next_bill_date")
	ErrInvalidID           = errors.New("invalid_id")
	ErrInvalidPropertyID   = errors.New("invalid_property_id")
	ErrNotFound            = errors.New("not_found")
	ErrPropertyNotFound    = errors.New("property_not_found")
)
