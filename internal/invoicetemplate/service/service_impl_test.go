package service_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/smallbiznis/propbill/internal/config"
	templatedomain "github.com/smallbiznis/propbill/internal/invoicetemplate/domain"
	"github.com/smallbiznis/propbill/internal/invoicetemplate/repository"
	"github.com/smallbiznis/propbill/internal/invoicetemplate/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupService(t *testing.T) (templatedomain.Service, string) {
	t.Helper()
	dir := t.TempDir()
	cfg := config.DefaultInvoicingConfig()
	cfg.TemplateDir = dir

	svc := service.NewService(service.Params{
		Log:  zap.NewNop(),
		Repo: repository.Provide(config.NewStaticInvoicingConfigHolder(cfg)),
	})
	return svc, dir
}

func TestListSkipsLockFilesAndSorts(t *testing.T) {
	svc, dir := setupService(t)
	for _, name := range []string{"zeta.docx", "alpha.docx", "~$alpha.docx", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.docx"), 0o755))

	items, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "alpha.docx", items[0].Name)
	assert.Equal(t, "zeta.docx", items[1].Name)
}

func TestListMissingDirectory(t *testing.T) {
	cfg := config.DefaultInvoicingConfig()
	cfg.TemplateDir = filepath.Join(t.TempDir(), "absent")
	svc := service.NewService(service.Params{
		Log:  zap.NewNop(),
		Repo: repository.Provide(config.NewStaticInvoicingConfigHolder(cfg)),
	})

	items, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestLoadErrors(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	_, err := svc.Load(ctx, "missing.docx")
	assert.ErrorIs(t, err, templatedomain.ErrNotFound)

	_, err = svc.Load(ctx, "../escape.docx")
	assert.ErrorIs(t, err, templatedomain.ErrInvalidName)

	_, err = svc.Load(ctx, "template.pdf")
	assert.ErrorIs(t, err, templatedomain.ErrInvalidName)
}

func TestEnsureDefaultWritesFullVocabulary(t *testing.T) {
	svc, dir := setupService(t)
	ctx := context.Background()

	created, err := svc.EnsureDefault(ctx, "base_invoice_template.docx")
	require.NoError(t, err)
	assert.True(t, created)
	assert.FileExists(t, filepath.Join(dir, "base_invoice_template.docx"))

	created, err = svc.EnsureDefault(ctx, "base_invoice_template.docx")
	require.NoError(t, err)
	assert.False(t, created)

	report, err := svc.Inspect(ctx, "base_invoice_template.docx")
	require.NoError(t, err)
	assert.Empty(t, report.Missing)
	assert.Empty(t, report.Unknown)
	assert.Equal(t, 5, report.TableRows)
}
