package migration

import (
	"context"

	"github.com/smallbiznis/propbill/internal/config"
	"github.com/smallbiznis/propbill/internal/seed"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config, p seed.Params) error {
		if err := Apply(conn, cfg.DBType); err != nil {
			return err
		}
		return seed.EnsureDefaults(context.Background(), p)
	}),
)
