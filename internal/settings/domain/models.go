package domain

import (
	"strings"
	"time"
)

// SingletonID is the primary key of the only settings row.
const SingletonID int64 = 1

const (
	DefaultSenderName   = "Property Manager"
	DefaultTemplateName = "base_invoice_template.docx"
)

type Settings struct {
	ID                  int64     `gorm:"primaryKey;autoIncrement:false" json:"-"`
	SenderName          string    `gorm:"not null" json:"sender_name"`
	SenderEmail         string    `json:"sender_email"`
	DefaultTemplateName string    `gorm:"not null" json:"default_template_name"`
	UpdatedAt           time.Time `gorm:"not null" json:"updated_at"`
}

func (Settings) TableName() string { return "settings" }

// Sender returns the configured sender name or fallback when unset.
func (s Settings) Sender(fallback string) string {
	if name := strings.TrimSpace(s.SenderName); name != "" {
		return name
	}
	if fallback = strings.TrimSpace(fallback); fallback != "" {
		return fallback
	}
	return DefaultSenderName
}

// Template returns the default template name or the built-in one.
func (s Settings) Template() string {
	if name := strings.TrimSpace(s.DefaultTemplateName); name != "" {
		return name
	}
	return DefaultTemplateName
}
