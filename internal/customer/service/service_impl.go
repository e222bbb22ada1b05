package service

import (
	"context"
	"net/mail"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/propbill/internal/clock"
	"github.com/smallbiznis/propbill/internal/customer/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("customer.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateCustomerRequest) (domain.Customer, error) {
	now := s.clock.Now()
	customer := domain.Customer{
		ID:        s.genID.Generate(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := applyRequest(&customer, req); err != nil {
		return domain.Customer{}, err
	}

	if err := s.repo.Insert(ctx, s.db, &customer); err != nil {
		return domain.Customer{}, err
	}
	customer.Properties = []domain.Property{}

	s.log.Info("customer created",
		zap.String("customer_id", customer.ID.String()),
		zap.String("cadence", customer.Cadence),
	)
	return customer, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateCustomerRequest) (domain.Customer, error) {
	id, err := parseID(req.ID, domain.ErrInvalidID)
	if err != nil {
		return domain.Customer{}, err
	}

	var updated domain.Customer
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := s.repo.FindByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if existing == nil {
			return domain.ErrNotFound
		}
		if err := applyRequest(existing, req.CreateCustomerRequest); err != nil {
			return err
		}
		existing.UpdatedAt = s.clock.Now()
		if err := s.repo.Update(ctx, tx, existing); err != nil {
			return err
		}
		updated = *existing
		return nil
	})
	if err != nil {
		return domain.Customer{}, err
	}
	return updated, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.Customer, error) {
	customerID, err := parseID(id, domain.ErrInvalidID)
	if err != nil {
		return domain.Customer{}, err
	}

	item, err := s.repo.FindByID(ctx, s.db, customerID)
	if err != nil {
		return domain.Customer{}, err
	}
	if item == nil {
		return domain.Customer{}, domain.ErrNotFound
	}
	return *item, nil
}

func (s *Service) List(ctx context.Context) ([]domain.Customer, error) {
	items, err := s.repo.List(ctx, s.db)
	if err != nil {
		return nil, err
	}
	return deref(items), nil
}

// Delete removes the customer and its properties. Invoices are kept and become orphaned.
func (s *Service) Delete(ctx context.Context, id string) error {
	customerID, err := parseID(id, domain.ErrInvalidID)
	if err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		affected, err := s.repo.Delete(ctx, tx, customerID)
		if err != nil {
			return err
		}
		if affected == 0 {
			return domain.ErrNotFound
		}
		s.log.Info("customer deleted", zap.String("customer_id", customerID.String()))
		return nil
	})
}

func (s *Service) AddProperty(ctx context.Context, req domain.AddPropertyRequest) (domain.Property, error) {
	customerID, err := parseID(req.CustomerID, domain.ErrInvalidID)
	if err != nil {
		return domain.Property{}, err
	}
	address := strings.TrimSpace(req.Address)
	if address == "" {
		return domain.Property{}, domain.ErrInvalidAddress
	}

	existing, err := s.repo.FindByID(ctx, s.db, customerID)
	if err != nil {
		return domain.Property{}, err
	}
	if existing == nil {
		return domain.Property{}, domain.ErrNotFound
	}

	property := domain.Property{
		ID:         s.genID.Generate(),
		CustomerID: customerID,
		Address:    address,
		City:       strings.TrimSpace(req.City),
		State:      strings.TrimSpace(req.State),
		ZipCode:    strings.TrimSpace(req.ZipCode),
		FeeAmount:  req.FeeAmount,
		IsPrimary:  req.IsPrimary,
		CreatedAt:  s.clock.Now(),
	}
	if err := s.repo.InsertProperty(ctx, s.db, &property); err != nil {
		return domain.Property{}, err
	}
	return property, nil
}

// DeleteProperty only removes the property when it belongs to the customer.
func (s *Service) DeleteProperty(ctx context.Context, customerID, propertyID string) error {
	cid, err := parseID(customerID, domain.ErrInvalidID)
	if err != nil {
		return err
	}
	pid, err := parseID(propertyID, domain.ErrInvalidPropertyID)
	if err != nil {
		return err
	}

	affected, err := s.repo.DeleteProperty(ctx, s.db, cid, pid)
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrPropertyNotFound
	}
	return nil
}

func (s *Service) ListDue(ctx context.Context, asOf time.Time) ([]domain.Customer, error) {
	items, err := s.repo.ListDue(ctx, s.db, dateOnly(asOf))
	if err != nil {
		return nil, err
	}
	return deref(items), nil
}

func (s *Service) SetNextBillDate(ctx context.Context, id string, next time.Time) error {
	customerID, err := parseID(id, domain.ErrInvalidID)
	if err != nil {
		return err
	}
	if next.IsZero() {
		return domain.ErrInvalidNextBillDate
	}
	return s.repo.UpdateNextBillDate(ctx, s.db, customerID, dateOnly(next))
}

func applyRequest(c *domain.Customer, req domain.CreateCustomerRequest) error {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.ErrInvalidName
	}
	email := strings.TrimSpace(req.Email)
	if _, err := mail.ParseAddress(email); err != nil {
		return domain.ErrInvalidEmail
	}
	address := strings.TrimSpace(req.PropertyAddress)
	if address == "" {
		return domain.ErrInvalidAddress
	}
	if req.Rate.IsNegative() {
		return domain.ErrInvalidRate
	}
	cadence := strings.ToLower(strings.TrimSpace(req.Cadence))
	if cadence == "" {
		return domain.ErrInvalidCadence
	}
	if req.NextBillDate.IsZero() {
		return domain.ErrInvalidNextBillDate
	}

	feeType := strings.TrimSpace(req.FeeType)
	if feeType == "" {
		feeType = domain.DefaultFeeType
	}

	c.Name = name
	c.Email = email
	c.PropertyAddress = address
	c.PropertyCity = strings.TrimSpace(req.PropertyCity)
	c.PropertyState = strings.TrimSpace(req.PropertyState)
	c.PropertyZip = strings.TrimSpace(req.PropertyZip)
	c.Rate = req.Rate.Round(2)
	c.Cadence = cadence
	c.FeeType = feeType
	c.Fee2Type = strings.TrimSpace(req.Fee2Type)
	c.Fee2Rate = roundNull(req.Fee2Rate)
	c.Fee3Type = strings.TrimSpace(req.Fee3Type)
	c.Fee3Rate = roundNull(req.Fee3Rate)
	c.AdditionalFeeDesc = strings.TrimSpace(req.AdditionalFeeDesc)
	c.AdditionalFeeAmount = roundNull(req.AdditionalFeeAmount)
	c.NextBillDate = datatypes.Date(dateOnly(req.NextBillDate))
	return nil
}

func roundNull(v decimal.NullDecimal) decimal.NullDecimal {
	if !v.Valid {
		return v
	}
	return decimal.NewNullDecimal(v.Decimal.Round(2))
}

func dateOnly(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func deref(items []*domain.Customer) []domain.Customer {
	out := make([]domain.Customer, 0, len(items))
	for _, item := range items {
		if item != nil {
			out = append(out, *item)
		}
	}
	return out
}

func parseID(value string, invalid error) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, invalid
	}
	return id, nil
}
