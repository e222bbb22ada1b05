package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/propbill/internal/clock"
	"github.com/smallbiznis/propbill/internal/customer/domain"
	"github.com/smallbiznis/propbill/internal/customer/repository"
	"github.com/smallbiznis/propbill/internal/customer/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupService(t *testing.T, now time.Time) (domain.Service, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&domain.Customer{}, &domain.Property{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := service.New(service.Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Clock: clock.NewFakeClock(now),
		Repo:  repository.Provide(),
	})
	return svc, db
}

func baseRequest(name string, next time.Time) domain.CreateCustomerRequest {
	return domain.CreateCustomerRequest{
		Name:            name,
		Email:           "owner@example.com",
		PropertyAddress: "115 Elm Street",
		Rate:            decimal.NewFromInt(1500),
		Cadence:         "Quarterly",
		Fee2Type:        "Late Fee",
		Fee2Rate:        decimal.NewNullDecimal(decimal.NewFromInt(50)),
		NextBillDate:    next,
	}
}

func TestCreateAndGet(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, time.March, 1, 9, 0, 0, 0, time.UTC)
	svc, _ := setupService(t, now)

	created, err := svc.Create(ctx, baseRequest("Jane Doe", now))
	require.NoError(t, err)
	assert.Equal(t, "quarterly", created.Cadence)
	assert.Equal(t, domain.DefaultFeeType, created.FeeType)

	_, err = svc.AddProperty(ctx, domain.AddPropertyRequest{
		CustomerID: created.ID.String(),
		Address:    "12 Oak St",
		FeeAmount:  decimal.NewNullDecimal(decimal.NewFromInt(125)),
	})
	require.NoError(t, err)
	_, err = svc.AddProperty(ctx, domain.AddPropertyRequest{
		CustomerID: created.ID.String(),
		Address:    "14 Oak St",
	})
	require.NoError(t, err)

	got, err := svc.GetByID(ctx, created.ID.String())
	require.NoError(t, err)
	require.Len(t, got.Properties, 2)
	assert.Equal(t, "12 Oak St", got.Properties[0].Address)
	assert.True(t, got.Rate.Equal(decimal.NewFromInt(1500)))

	fees := got.DefaultFees()
	assert.Equal(t, "Late Fee", fees.Fee2.Type)
	assert.True(t, fees.Fee2.Amount.Equal(decimal.NewFromInt(50)))
	assert.False(t, fees.Fee3.Applied())

	propFees := got.PropertyFees()
	require.Len(t, propFees, 2)
	assert.True(t, propFees[1].Amount.IsZero())
}

func TestCreateValidation(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)
	svc, _ := setupService(t, now)

	req := baseRequest(" ", now)
	_, err := svc.Create(ctx, req)
	assert.ErrorIs(t, err, domain.ErrInvalidName)

	req = baseRequest("Jane", now)
	req.Email = "not-an-email"
	_, err = svc.Create(ctx, req)
	assert.ErrorIs(t, err, domain.ErrInvalidEmail)

	req = baseRequest("Jane", now)
	req.Rate = decimal.NewFromInt(-1)
	_, err = svc.Create(ctx, req)
	assert.ErrorIs(t, err, domain.ErrInvalidRate)

	req = baseRequest("Jane", time.Time{})
	_, err = svc.Create(ctx, req)
	assert.ErrorIs(t, err, domain.ErrInvalidNextBillDate)
}

func TestListOrdersByName(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)
	svc, _ := setupService(t, now)

	for _, name := range []string{"Zed", "Amy", "Mia"} {
		_, err := svc.Create(ctx, baseRequest(name, now))
		require.NoError(t, err)
	}

	items, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "Amy", items[0].Name)
	assert.Equal(t, "Zed", items[2].Name)
}

func TestListDueAndAdvance(t *testing.T) {
	ctx := context.Background()
	today := time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC)
	svc, _ := setupService(t, today)

	due, err := svc.Create(ctx, baseRequest("Due", today))
	require.NoError(t, err)
	_, err = svc.Create(ctx, baseRequest("Later", today.AddDate(0, 0, 1)))
	require.NoError(t, err)

	items, err := svc.ListDue(ctx, today.Add(15*time.Hour))
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, due.ID, items[0].ID)

	require.NoError(t, svc.SetNextBillDate(ctx, due.ID.String(), time.Date(2025, time.July, 1, 0, 0, 0, 0, time.UTC)))
	items, err = svc.ListDue(ctx, today)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestDeleteProperty(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)
	svc, _ := setupService(t, now)

	owner, err := svc.Create(ctx, baseRequest("Owner", now))
	require.NoError(t, err)
	other, err := svc.Create(ctx, baseRequest("Other", now))
	require.NoError(t, err)

	prop, err := svc.AddProperty(ctx, domain.AddPropertyRequest{CustomerID: owner.ID.String(), Address: "1 Main St"})
	require.NoError(t, err)

	err = svc.DeleteProperty(ctx, other.ID.String(), prop.ID.String())
	assert.ErrorIs(t, err, domain.ErrPropertyNotFound)

	require.NoError(t, svc.DeleteProperty(ctx, owner.ID.String(), prop.ID.String()))
}

func TestUpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)
	svc, _ := setupService(t, now)

	created, err := svc.Create(ctx, baseRequest("Jane", now))
	require.NoError(t, err)

	req := baseRequest("Jane Smith", now)
	req.Fee2Rate = decimal.NullDecimal{}
	updated, err := svc.Update(ctx, domain.UpdateCustomerRequest{ID: created.ID.String(), CreateCustomerRequest: req})
	require.NoError(t, err)
	assert.Equal(t, "Jane Smith", updated.Name)

	got, err := svc.GetByID(ctx, created.ID.String())
	require.NoError(t, err)
	assert.False(t, got.Fee2Rate.Valid)

	require.NoError(t, svc.Delete(ctx, created.ID.String()))
	_, err = svc.GetByID(ctx, created.ID.String())
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, created.ID.String()), domain.ErrNotFound)
}
