// Package bootstrap holds the fx module set shared by every propbill binary.
package bootstrap

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/propbill/internal/cache"
	"github.com/smallbiznis/propbill/internal/clock"
	"github.com/smallbiznis/propbill/internal/config"
	"github.com/smallbiznis/propbill/internal/customer"
	"github.com/smallbiznis/propbill/internal/feetype"
	"github.com/smallbiznis/propbill/internal/invoice"
	"github.com/smallbiznis/propbill/internal/invoicetemplate"
	"github.com/smallbiznis/propbill/internal/observability"
	"github.com/smallbiznis/propbill/internal/providers"
	"github.com/smallbiznis/propbill/internal/ratelimit"
	"github.com/smallbiznis/propbill/internal/scheduler"
	"github.com/smallbiznis/propbill/internal/settings"
	"github.com/smallbiznis/propbill/internal/storage"
	"github.com/smallbiznis/propbill/pkg/db"
	"go.uber.org/fx"
)

// Infrastructure provides config, telemetry, the database and the
// side-effect providers (cache, locks, storage, email, pdf).
var Infrastructure = fx.Options(
	config.Module,
	observability.Module,
	fx.Provide(NewSnowflake),
	db.Module,
	clock.Module,
	cache.Module,
	ratelimit.Module,
	storage.Module,
	providers.Module,
)

// Billing provides every domain service plus the bill-due scheduler. The
// scheduler loop itself is started by scheduler.RunnerModule or LoopModule.
var Billing = fx.Options(
	customer.Module,
	feetype.Module,
	settings.Module,
	invoicetemplate.Module,
	invoice.Module,
	scheduler.Module,
)

// Core is Infrastructure plus Billing.
func Core() fx.Option {
	return fx.Options(Infrastructure, Billing)
}

// NewSnowflake returns the id generator for customers, properties and invoices.
func NewSnowflake(cfg config.Config) (*snowflake.Node, error) {
	return snowflake.NewNode(cfg.NodeID)
}
