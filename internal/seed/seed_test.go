package seed_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/propbill/internal/clock"
	"github.com/smallbiznis/propbill/internal/config"
	feetypedomain "github.com/smallbiznis/propbill/internal/feetype/domain"
	feetypeservice "github.com/smallbiznis/propbill/internal/feetype/service"
	templaterepo "github.com/smallbiznis/propbill/internal/invoicetemplate/repository"
	templateservice "github.com/smallbiznis/propbill/internal/invoicetemplate/service"
	"github.com/smallbiznis/propbill/internal/seed"
	settingsdomain "github.com/smallbiznis/propbill/internal/settings/domain"
	settingsservice "github.com/smallbiznis/propbill/internal/settings/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func TestEnsureDefaultsIsIdempotent(t *testing.T) {
	ctx := context.Background()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&feetypedomain.FeeType{}, &settingsdomain.Settings{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	clk := clock.NewFakeClock(time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC))
	log := zap.NewNop()

	invoicingCfg := config.DefaultInvoicingConfig()
	invoicingCfg.TemplateDir = t.TempDir()
	invoicing := config.NewStaticInvoicingConfigHolder(invoicingCfg)

	feeTypes := feetypeservice.New(feetypeservice.Params{DB: db, Log: log, GenID: node, Clock: clk})
	p := seed.Params{
		Log:       log,
		FeeTypes:  feeTypes,
		Settings:  settingsservice.New(settingsservice.Params{DB: db, Log: log, Clock: clk, Invoicing: invoicing}),
		Templates: templateservice.NewService(templateservice.Params{Log: log, Repo: templaterepo.Provide(invoicing)}),
	}

	require.NoError(t, seed.EnsureDefaults(ctx, p))
	require.NoError(t, seed.EnsureDefaults(ctx, p))

	types, err := feeTypes.List(ctx)
	require.NoError(t, err)
	assert.Len(t, types, len(feetypedomain.DefaultNames))

	_, err = os.Stat(filepath.Join(invoicingCfg.TemplateDir, settingsdomain.DefaultTemplateName))
	assert.NoError(t, err)
}
