package seed

import (
	"context"
	"errors"

	feetypedomain "github.com/smallbiznis/propbill/internal/feetype/domain"
	templatedomain "github.com/smallbiznis/propbill/internal/invoicetemplate/domain"
	settingsdomain "github.com/smallbiznis/propbill/internal/settings/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log       *zap.Logger
	FeeTypes  feetypedomain.Service
	Settings  settingsdomain.Service
	Templates templatedomain.Service
}

// EnsureDefaults seeds the fee type catalog, the settings row and the
// built-in invoice template. Safe to run on every startup.
func EnsureDefaults(ctx context.Context, p Params) error {
	if p.FeeTypes == nil || p.Settings == nil || p.Templates == nil {
		return errors.New("seed services are required")
	}
	log := p.Log.Named("seed")

	added, err := p.FeeTypes.EnsureDefaults(ctx)
	if err != nil {
		return err
	}

	settings, err := p.Settings.Get(ctx)
	if err != nil {
		return err
	}

	created, err := p.Templates.EnsureDefault(ctx, settings.Template())
	if err != nil {
		return err
	}

	log.Info("defaults ensured",
		zap.Int("fee_types_added", added),
		zap.String("template", settings.Template()),
		zap.Bool("template_created", created),
	)
	return nil
}
