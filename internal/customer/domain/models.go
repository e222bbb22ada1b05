package domain

import (
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/propbill/internal/billing/fee"
	"github.com/smallbiznis/propbill/internal/billing/lineitem"
	"github.com/smallbiznis/propbill/internal/billing/period"
	"gorm.io/datatypes"
)

const DefaultFeeType = "Management Fee"

type Customer struct {
	ID                  snowflake.ID        `gorm:"primaryKey" json:"id"`
	Name                string              `gorm:"not null" json:"name"`
	Email               string              `gorm:"not null" json:"email"`
	PropertyAddress     string              `gorm:"not null" json:"property_address"`
	PropertyCity        string              `gorm:"not null;default:''" json:"property_city"`
	PropertyState       string              `gorm:"not null;default:''" json:"property_state"`
	PropertyZip         string              `gorm:"not null;default:''" json:"property_zip"`
	Rate                decimal.Decimal     `gorm:"type:numeric(12,2);not null" json:"rate"`
	Cadence             string              `gorm:"not null" json:"cadence"`
	FeeType             string              `gorm:"not null;default:'Management Fee'" json:"fee_type"`
	Fee2Type            string              `gorm:"column:fee_2_type;not null;default:''" json:"fee_2_type"`
	Fee2Rate            decimal.NullDecimal `gorm:"column:fee_2_rate;type:numeric(12,2)" json:"fee_2_rate"`
	Fee3Type            string              `gorm:"column:fee_3_type;not null;default:''" json:"fee_3_type"`
	Fee3Rate            decimal.NullDecimal `gorm:"column:fee_3_rate;type:numeric(12,2)" json:"fee_3_rate"`
	AdditionalFeeDesc   string              `gorm:"not null;default:''" json:"additional_fee_desc"`
	AdditionalFeeAmount decimal.NullDecimal `gorm:"type:numeric(12,2)" json:"additional_fee_amount"`
	NextBillDate        datatypes.Date      `gorm:"not null;index" json:"next_bill_date"`
	CreatedAt           time.Time           `gorm:"not null" json:"created_at"`
	UpdatedAt           time.Time           `gorm:"not null" json:"updated_at"`
	Properties          []Property          `gorm:"foreignKey:CustomerID;constraint:OnDelete:CASCADE" json:"properties"`
}

func (Customer) TableName() string { return "customers" }

type Property struct {
	ID         snowflake.ID        `gorm:"primaryKey" json:"id"`
	CustomerID snowflake.ID        `gorm:"not null;index" json:"customer_id"`
	Address    string              `gorm:"not null" json:"address"`
	City       string              `gorm:"not null;default:''" json:"city"`
	State      string              `gorm:"not null;default:''" json:"state"`
	ZipCode    string              `gorm:"not null;default:''" json:"zip_code"`
	FeeAmount  decimal.NullDecimal `gorm:"type:numeric(12,2)" json:"fee_amount"`
	IsPrimary  bool                `gorm:"not null;default:false" json:"is_primary"`
	CreatedAt  time.Time           `gorm:"not null" json:"created_at"`
}

func (Property) TableName() string { return "properties" }

// CadenceValue returns the normalized billing cadence.
func (c Customer) CadenceValue() period.Cadence {
	return period.Normalize(c.Cadence)
}

// FeeTypeLabel is the primary fee label with its fallback.
func (c Customer) FeeTypeLabel() string {
	if label := strings.TrimSpace(c.FeeType); label != "" {
		return label
	}
	return DefaultFeeType
}

// DefaultFees is the customer's stored optional fee configuration.
func (c Customer) DefaultFees() fee.Set {
	return fee.Set{
		Fee2:       fee.Fee{Type: c.Fee2Type, Amount: nullAmount(c.Fee2Rate)},
		Fee3:       fee.Fee{Type: c.Fee3Type, Amount: nullAmount(c.Fee3Rate)},
		Additional: fee.Fee{Type: c.AdditionalFeeDesc, Amount: nullAmount(c.AdditionalFeeAmount)},
	}
}

// PropertyFees lists property surcharges in iteration order.
func (c Customer) PropertyFees() []lineitem.PropertyFee {
	out := make([]lineitem.PropertyFee, 0, len(c.Properties))
	for _, p := range c.Properties {
		out = append(out, lineitem.PropertyFee{Address: p.Address, Amount: nullAmount(p.FeeAmount)})
	}
	return out
}

func nullAmount(v decimal.NullDecimal) decimal.Decimal {
	if !v.Valid {
		return decimal.Zero
	}
	return v.Decimal
}
