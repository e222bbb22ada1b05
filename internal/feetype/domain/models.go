package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type FeeType struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	Name      string       `gorm:"not null;uniqueIndex" json:"name"`
	Code      string       `gorm:"not null;uniqueIndex" json:"code"`
	CreatedAt time.Time    `gorm:"not null" json:"created_at"`
}

func (FeeType) TableName() string { return "fee_types" }

// DefaultNames are the fee types available on a fresh install.
var DefaultNames = []string{
	"Management Fee",
	"Assessment",
	"Special Assessment",
	"Late Fee",
}
