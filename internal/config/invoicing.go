package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// InvoicingConfig controls how generated documents look and where templates live.
type InvoicingConfig struct {
	TemplateDir        string  `mapstructure:"templateDir"`
	FontFamily         string  `mapstructure:"fontFamily"`
	FontSizePt         float64 `mapstructure:"fontSizePt"`
	FeeLineSpaceAfter  float64 `mapstructure:"feeLineSpaceAfterPt"`
	FallbackSenderName string  `mapstructure:"fallbackSenderName"`
}

func DefaultInvoicingConfig() InvoicingConfig {
	return InvoicingConfig{
		TemplateDir:        "templates",
		FontFamily:         "Calibri",
		FontSizePt:         14,
		FeeLineSpaceAfter:  12,
		FallbackSenderName: "Property Manager",
	}
}

type InvoicingConfigHolder struct {
	current atomic.Value // holds InvoicingConfig
}

// NewStaticInvoicingConfigHolder returns a holder that never reloads.
func NewStaticInvoicingConfigHolder(cfg InvoicingConfig) *InvoicingConfigHolder {
	holder := &InvoicingConfigHolder{}
	holder.current.Store(cfg)
	return holder
}

func NewInvoicingConfigHolder() (*InvoicingConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("invoicing")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/propbill/config")
	v.AddConfigPath("/etc/propbill")
	v.AddConfigPath(".")

	v.SetEnvPrefix("PROPBILL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultInvoicingConfig()
	v.SetDefault("invoicing.templateDir", defaults.TemplateDir)
	v.SetDefault("invoicing.fontFamily", defaults.FontFamily)
	v.SetDefault("invoicing.fontSizePt", defaults.FontSizePt)
	v.SetDefault("invoicing.feeLineSpaceAfterPt", defaults.FeeLineSpaceAfter)
	v.SetDefault("invoicing.fallbackSenderName", defaults.FallbackSenderName)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg InvoicingConfig
	if err := v.UnmarshalKey("invoicing", &cfg); err != nil {
		return nil, err
	}
	if err := validateInvoicingConfig(cfg); err != nil {
		return nil, err
	}

	holder := &InvoicingConfigHolder{}
	holder.current.Store(cfg)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated InvoicingConfig
		if err := v.UnmarshalKey("invoicing", &updated); err != nil {
			log.Printf("[invoicing-config] reload failed: %v", err)
			return
		}
		if err := validateInvoicingConfig(updated); err != nil {
			log.Printf("[invoicing-config] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[invoicing-config] reloaded from %s", e.Name)
	})

	return holder, nil
}

func (h *InvoicingConfigHolder) Get() InvoicingConfig {
	return h.current.Load().(InvoicingConfig)
}

func validateInvoicingConfig(cfg InvoicingConfig) error {
	if strings.TrimSpace(cfg.TemplateDir) == "" {
		return errors.New("invoicing.templateDir cannot be empty")
	}
	if strings.TrimSpace(cfg.FontFamily) == "" {
		return errors.New("invoicing.fontFamily cannot be empty")
	}
	if cfg.FontSizePt <= 0 {
		return errors.New("invoicing.fontSizePt must be positive")
	}
	if cfg.FeeLineSpaceAfter < 0 {
		return errors.New("invoicing.feeLineSpaceAfterPt cannot be negative")
	}
	return nil
}
