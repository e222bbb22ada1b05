package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	invoicedomain "github.com/smallbiznis/propbill/internal/invoice/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() invoicedomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, invoice *invoicedomain.Invoice) error {
	return db.WithContext(ctx).Create(invoice).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*invoicedomain.Invoice, error) {
	var invoice invoicedomain.Invoice
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM invoices WHERE id = ?`,
		id,
	).Scan(&invoice).Error
	if err != nil {
		return nil, err
	}
	if invoice.ID == 0 {
		return nil, nil
	}
	return &invoice, nil
}

func (r *repo) ExistsForPeriod(ctx context.Context, db *gorm.DB, customerID snowflake.ID, periodLabel string) (bool, error) {
	var count int64
	err := db.WithContext(ctx).Raw(
		`SELECT COUNT(1) FROM invoices WHERE customer_id = ? AND period_label = ?`,
		customerID,
		periodLabel,
	).Scan(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB) ([]invoicedomain.ListItem, error) {
	var items []invoicedomain.ListItem
	err := db.WithContext(ctx).Raw(
		`SELECT i.*, c.name AS customer_name
		 FROM invoices i
		 LEFT JOIN customers c ON c.id = i.customer_id
		 ORDER BY CASE WHEN c.id IS NULL THEN 1 ELSE 0 END ASC,
		 	c.name ASC, i.invoice_date DESC, i.id DESC`,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) UpdateStatus(ctx context.Context, db *gorm.DB, invoice *invoicedomain.Invoice) error {
	return db.WithContext(ctx).Exec(
		`UPDATE invoices SET status = ?, paid_date = ?, updated_at = ? WHERE id = ?`,
		invoice.Status,
		invoice.PaidDate,
		invoice.UpdatedAt,
		invoice.ID,
	).Error
}

func (r *repo) MarkSent(ctx context.Context, db *gorm.DB, invoice *invoicedomain.Invoice) error {
	return db.WithContext(ctx).Exec(
		`UPDATE invoices SET sent_at = ?, updated_at = ? WHERE id = ?`,
		invoice.SentAt,
		invoice.UpdatedAt,
		invoice.ID,
	).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) (int64, error) {
	res := db.WithContext(ctx).Exec(`DELETE FROM invoices WHERE id = ?`, id)
	return res.RowsAffected, res.Error
}

func (r *repo) DeleteAll(ctx context.Context, db *gorm.DB) (int64, error) {
	res := db.WithContext(ctx).Exec(`DELETE FROM invoices`)
	return res.RowsAffected, res.Error
}

func (r *repo) StorageKeys(ctx context.Context, db *gorm.DB) ([]string, error) {
	var keys []string
	err := db.WithContext(ctx).Raw(
		`SELECT storage_key FROM invoices WHERE storage_key <> ''`,
	).Scan(&keys).Error
	if err != nil {
		return nil, err
	}
	return keys, nil
}
