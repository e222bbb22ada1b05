package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/samber/lo"
	"github.com/smallbiznis/propbill/internal/customer/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

const customerColumns = `id, name, email, property_address, property_city, property_state, property_zip,
	rate, cadence, fee_type, fee_2_type, fee_2_rate, fee_3_type, fee_3_rate,
	additional_fee_desc, additional_fee_amount, next_bill_date, created_at, updated_at`

func (r *repo) Insert(ctx context.Context, db *gorm.DB, customer *domain.Customer) error {
	return db.WithContext(ctx).Omit("Properties").Create(customer).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, customer *domain.Customer) error {
	return db.WithContext(ctx).Exec(
		`UPDATE customers SET name = ?, email = ?, property_address = ?, property_city = ?,
		 property_state = ?, property_zip = ?, rate = ?, cadence = ?, fee_type = ?,
		 fee_2_type = ?, fee_2_rate = ?, fee_3_type = ?, fee_3_rate = ?,
		 additional_fee_desc = ?, additional_fee_amount = ?, next_bill_date = ?, updated_at = ?
		 WHERE id = ?`,
		customer.Name,
		customer.Email,
		customer.PropertyAddress,
		customer.PropertyCity,
		customer.PropertyState,
		customer.PropertyZip,
		customer.Rate,
		customer.Cadence,
		customer.FeeType,
		customer.Fee2Type,
		customer.Fee2Rate,
		customer.Fee3Type,
		customer.Fee3Rate,
		customer.AdditionalFeeDesc,
		customer.AdditionalFeeAmount,
		customer.NextBillDate,
		customer.UpdatedAt,
		customer.ID,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Customer, error) {
	var customer domain.Customer
	err := db.WithContext(ctx).Raw(
		`SELECT `+customerColumns+` FROM customers WHERE id = ?`,
		id,
	).Scan(&customer).Error
	if err != nil {
		return nil, err
	}
	if customer.ID == 0 {
		return nil, nil
	}

	props, err := r.ListProperties(ctx, db, customer.ID)
	if err != nil {
		return nil, err
	}
	customer.Properties = derefProperties(props)
	return &customer, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB) ([]*domain.Customer, error) {
	var customers []*domain.Customer
	err := db.WithContext(ctx).Raw(
		`SELECT ` + customerColumns + ` FROM customers ORDER BY name ASC, id ASC`,
	).Scan(&customers).Error
	if err != nil {
		return nil, err
	}
	return customers, r.attachProperties(ctx, db, customers)
}

func (r *repo) ListDue(ctx context.Context, db *gorm.DB, asOf time.Time) ([]*domain.Customer, error) {
	var customers []*domain.Customer
	err := db.WithContext(ctx).Raw(
		`SELECT `+customerColumns+` FROM customers WHERE next_bill_date <= ? ORDER BY id ASC`,
		asOf,
	).Scan(&customers).Error
	if err != nil {
		return nil, err
	}
	return customers, r.attachProperties(ctx, db, customers)
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) (int64, error) {
	if err := db.WithContext(ctx).Exec(`DELETE FROM properties WHERE customer_id = ?`, id).Error; err != nil {
		return 0, err
	}
	res := db.WithContext(ctx).Exec(`DELETE FROM customers WHERE id = ?`, id)
	return res.RowsAffected, res.Error
}

func (r *repo) UpdateNextBillDate(ctx context.Context, db *gorm.DB, id snowflake.ID, next time.Time) error {
	return db.WithContext(ctx).Exec(
		`UPDATE customers SET next_bill_date = ?, updated_at = ? WHERE id = ?`,
		next,
		time.Now().UTC(),
		id,
	).Error
}

func (r *repo) InsertProperty(ctx context.Context, db *gorm.DB, property *domain.Property) error {
	return db.WithContext(ctx).Create(property).Error
}

func (r *repo) DeleteProperty(ctx context.Context, db *gorm.DB, customerID, propertyID snowflake.ID) (int64, error) {
	res := db.WithContext(ctx).Exec(
		`DELETE FROM properties WHERE id = ? AND customer_id = ?`,
		propertyID,
		customerID,
	)
	return res.RowsAffected, res.Error
}

func (r *repo) ListProperties(ctx context.Context, db *gorm.DB, customerIDs ...snowflake.ID) ([]*domain.Property, error) {
	if len(customerIDs) == 0 {
		return nil, nil
	}
	var props []*domain.Property
	err := db.WithContext(ctx).Raw(
		`SELECT id, customer_id, address, city, state, zip_code, fee_amount, is_primary, created_at
		 FROM properties WHERE customer_id IN ? ORDER BY id ASC`,
		customerIDs,
	).Scan(&props).Error
	if err != nil {
		return nil, err
	}
	return props, nil
}

func (r *repo) attachProperties(ctx context.Context, db *gorm.DB, customers []*domain.Customer) error {
	if len(customers) == 0 {
		return nil
	}
	ids := lo.Map(customers, func(c *domain.Customer, _ int) snowflake.ID { return c.ID })
	props, err := r.ListProperties(ctx, db, ids...)
	if err != nil {
		return err
	}
	byCustomer := lo.GroupBy(props, func(p *domain.Property) snowflake.ID { return p.CustomerID })
	for _, c := range customers {
		c.Properties = derefProperties(byCustomer[c.ID])
	}
	return nil
}

func derefProperties(props []*domain.Property) []domain.Property {
	out := make([]domain.Property, 0, len(props))
	for _, p := range props {
		if p != nil {
			out = append(out, *p)
		}
	}
	return out
}
