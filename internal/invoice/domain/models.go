// Package domain contains persistence models for invoicing.
package domain

import (
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/propbill/internal/billing/fee"
	"github.com/smallbiznis/propbill/internal/billing/lineitem"
	"gorm.io/datatypes"
)

// InvoiceStatus represents the payment state of an invoice.
type InvoiceStatus string

const (
	InvoiceStatusUnpaid InvoiceStatus = "Unpaid"
	InvoiceStatusPaid   InvoiceStatus = "Paid"
)

// UnknownCustomerName is shown for invoices whose customer no longer exists.
const UnknownCustomerName = "Unknown customer"

// Invoice is a generated invoice. BaseAmount is the customer's rate at
// generation time and never includes fees; ComputedTotal is what the customer owes.
type Invoice struct {
	ID                  snowflake.ID                              `gorm:"primaryKey" json:"id"`
	CustomerID          *snowflake.ID                             `gorm:"uniqueIndex:ux_invoices_customer_period" json:"customer_id"`
	InvoiceDate         datatypes.Date                            `gorm:"not null;index" json:"invoice_date"`
	PeriodLabel         string                                    `gorm:"not null;uniqueIndex:ux_invoices_customer_period" json:"period_label"`
	TemplateName        string                                    `gorm:"not null" json:"template_name"`
	BaseAmount          decimal.Decimal                           `gorm:"type:numeric(12,2);not null" json:"base_amount"`
	ComputedTotal       decimal.Decimal                           `gorm:"type:numeric(12,2);not null" json:"computed_total"`
	Fee2Type            string                                    `gorm:"column:fee_2_type;not null;default:''" json:"fee_2_type"`
	Fee2Amount          decimal.NullDecimal                       `gorm:"column:fee_2_amount;type:numeric(12,2)" json:"fee_2_amount"`
	Fee3Type            string                                    `gorm:"column:fee_3_type;not null;default:''" json:"fee_3_type"`
	Fee3Amount          decimal.NullDecimal                       `gorm:"column:fee_3_amount;type:numeric(12,2)" json:"fee_3_amount"`
	AdditionalFeeDesc   string                                    `gorm:"not null;default:''" json:"additional_fee_desc"`
	AdditionalFeeAmount decimal.NullDecimal                       `gorm:"type:numeric(12,2)" json:"additional_fee_amount"`
	PropertyFees        datatypes.JSONSlice[lineitem.PropertyFee] `json:"property_fees"`
	Filename            string                                    `gorm:"not null" json:"filename"`
	StorageKey          string                                    `gorm:"not null;default:''" json:"storage_key,omitempty"`
	EmailSubject        string                                    `gorm:"not null" json:"email_subject"`
	EmailBody           string                                    `gorm:"type:text;not null" json:"email_body"`
	Status              InvoiceStatus                             `gorm:"type:text;not null;default:'Unpaid'" json:"status"`
	PaidDate            *datatypes.Date                           `json:"paid_date"`
	SentAt              *time.Time                                `json:"sent_at"`
	CreatedAt           time.Time                                 `gorm:"not null" json:"created_at"`
	UpdatedAt           time.Time                                 `gorm:"not null" json:"updated_at"`
}

// TableName sets the database table name.
func (Invoice) TableName() string { return "invoices" }

// Date returns the invoice date as a UTC midnight time.
func (i Invoice) Date() time.Time {
	return time.Time(i.InvoiceDate).UTC()
}

// FrozenFees returns the fee values captured when the invoice was generated.
func (i Invoice) FrozenFees() fee.Set {
	return fee.Set{
		Fee2:       fee.Fee{Type: i.Fee2Type, Amount: nullAmount(i.Fee2Amount)},
		Fee3:       fee.Fee{Type: i.Fee3Type, Amount: nullAmount(i.Fee3Amount)},
		Additional: fee.Fee{Type: i.AdditionalFeeDesc, Amount: nullAmount(i.AdditionalFeeAmount)},
	}
}

// Freeze stores resolved fees on the record.
func (i *Invoice) Freeze(fees fee.Set, properties []lineitem.PropertyFee) {
	i.Fee2Type, i.Fee2Amount = fees.Fee2.Type, nullable(fees.Fee2)
	i.Fee3Type, i.Fee3Amount = fees.Fee3.Type, nullable(fees.Fee3)
	i.AdditionalFeeDesc, i.AdditionalFeeAmount = fees.Additional.Type, nullable(fees.Additional)
	i.PropertyFees = datatypes.NewJSONSlice(properties)
}

func nullable(f fee.Fee) decimal.NullDecimal {
	if !f.Applied() {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(f.Amount)
}

func nullAmount(v decimal.NullDecimal) decimal.Decimal {
	if !v.Valid {
		return decimal.Zero
	}
	return v.Decimal
}

// ListItem is an invoice with its customer's name when the customer still exists.
type ListItem struct {
	Invoice
	CustomerName *string
}

// DisplayCustomerName falls back to UnknownCustomerName for orphaned invoices.
func (l ListItem) DisplayCustomerName() string {
	if l.CustomerName == nil || strings.TrimSpace(*l.CustomerName) == "" {
		return UnknownCustomerName
	}
	return *l.CustomerName
}
