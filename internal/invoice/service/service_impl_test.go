package service_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/propbill/internal/billing/fee"
	"github.com/smallbiznis/propbill/internal/cache"
	"github.com/smallbiznis/propbill/internal/clock"
	"github.com/smallbiznis/propbill/internal/config"
	customerdomain "github.com/smallbiznis/propbill/internal/customer/domain"
	customerrepo "github.com/smallbiznis/propbill/internal/customer/repository"
	customerservice "github.com/smallbiznis/propbill/internal/customer/service"
	"github.com/smallbiznis/propbill/internal/docx"
	invoicedomain "github.com/smallbiznis/propbill/internal/invoice/domain"
	"github.com/smallbiznis/propbill/internal/invoice/render"
	invoicerepo "github.com/smallbiznis/propbill/internal/invoice/repository"
	"github.com/smallbiznis/propbill/internal/invoice/service"
	templaterepo "github.com/smallbiznis/propbill/internal/invoicetemplate/repository"
	templateservice "github.com/smallbiznis/propbill/internal/invoicetemplate/service"
	"github.com/smallbiznis/propbill/internal/providers/email"
	"github.com/smallbiznis/propbill/internal/providers/pdf"
	settingsdomain "github.com/smallbiznis/propbill/internal/settings/domain"
	settingsservice "github.com/smallbiznis/propbill/internal/settings/service"
	"github.com/smallbiznis/propbill/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type mockEmail struct {
	mock.Mock
}

func (m *mockEmail) Enabled() bool {
	return m.Called().Bool(0)
}

func (m *mockEmail) Send(ctx context.Context, msg email.Message) error {
	return m.Called(ctx, msg).Error(0)
}

type mockPDF struct {
	mock.Mock
}

func (m *mockPDF) GenerateInvoice(ctx context.Context, data pdf.InvoiceData) ([]byte, error) {
	args := m.Called(ctx, data)
	out, _ := args.Get(0).([]byte)
	return out, args.Error(1)
}

type testEnv struct {
	svc       invoicedomain.Service
	db        *gorm.DB
	customers customerdomain.Service
	email     *mockEmail
	pdf       *mockPDF
	archive   string
	templates string
}

var today = time.Date(2025, time.March, 10, 8, 0, 0, 0, time.UTC)

func setup(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(
		&customerdomain.Customer{},
		&customerdomain.Property{},
		&invoicedomain.Invoice{},
		&settingsdomain.Settings{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	clk := clock.NewFakeClock(today)
	log := zap.NewNop()

	invoicingCfg := config.DefaultInvoicingConfig()
	invoicingCfg.TemplateDir = t.TempDir()
	invoicing := config.NewStaticInvoicingConfigHolder(invoicingCfg)

	templates := templateservice.NewService(templateservice.Params{Log: log, Repo: templaterepo.Provide(invoicing)})
	_, err = templates.EnsureDefault(context.Background(), settingsdomain.DefaultTemplateName)
	require.NoError(t, err)

	customers := customerservice.New(customerservice.Params{
		DB:    db,
		Log:   log,
		GenID: node,
		Clock: clk,
		Repo:  customerrepo.Provide(),
	})

	env := &testEnv{
		db:        db,
		customers: customers,
		email:     &mockEmail{},
		pdf:       &mockPDF{},
		archive:   t.TempDir(),
		templates: invoicingCfg.TemplateDir,
	}
	env.svc = service.NewService(service.ServiceParam{
		DB:          db,
		Log:         log,
		GenID:       node,
		Clock:       clk,
		Repo:        invoicerepo.Provide(),
		CustomerSvc: customers,
		SettingsSvc: settingsservice.New(settingsservice.Params{DB: db, Log: log, Clock: clk, Invoicing: invoicing}),
		TemplateSvc: templates,
		Assembler:   render.NewAssembler(cache.NewDocumentCache(nil, log), log),
		Invoicing:   invoicing,
		Store:       storage.NewLocal(env.archive),
		Email:       env.email,
		PDF:         env.pdf,
	})
	return env
}

func (e *testEnv) createCustomer(t *testing.T, name string) customerdomain.Customer {
	t.Helper()
	ctx := context.Background()
	c, err := e.customers.Create(ctx, customerdomain.CreateCustomerRequest{
		Name:                name,
		Email:               "owner@example.com",
		PropertyAddress:     "123 Main St",
		Rate:                decimal.NewFromInt(100),
		Cadence:             "monthly",
		FeeType:             "Management Fee",
		Fee2Type:            "Late Fee",
		Fee2Rate:            decimal.NewNullDecimal(decimal.NewFromInt(50)),
		Fee3Rate:            decimal.NewNullDecimal(decimal.NewFromInt(30)),
		AdditionalFeeDesc:   "Air Purifier",
		AdditionalFeeAmount: decimal.NewNullDecimal(decimal.NewFromInt(300)),
		NextBillDate:        time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	_, err = e.customers.AddProperty(ctx, customerdomain.AddPropertyRequest{
		CustomerID: c.ID.String(),
		Address:    "45 Side St",
		FeeAmount:  decimal.NewNullDecimal(decimal.NewFromInt(125)),
	})
	require.NoError(t, err)
	return c
}

func march(day int) time.Time {
	return time.Date(2025, time.March, day, 0, 0, 0, 0, time.UTC)
}

func documentText(t *testing.T, data []byte) string {
	t.Helper()
	doc, err := docx.Open(data)
	require.NoError(t, err)
	return doc.Text()
}

func TestGenerateBatchStoresBaseAndTotal(t *testing.T) {
	env := setup(t)
	c := env.createCustomer(t, "Jane Doe")

	res, err := env.svc.Generate(context.Background(), invoicedomain.GenerateRequest{
		CustomerID:  c.ID.String(),
		InvoiceDate: march(1),
	})
	require.NoError(t, err)

	inv := res.Invoice
	assert.Equal(t, "March 2025", inv.PeriodLabel)
	assert.Equal(t, "100.00", inv.BaseAmount.StringFixed(2))
	assert.Equal(t, "605.00", inv.ComputedTotal.StringFixed(2))
	assert.Equal(t, "Invoice_March_2025_Main_St.docx", inv.Filename)
	assert.Equal(t, invoicedomain.InvoiceStatusUnpaid, inv.Status)
	assert.Equal(t, "Late Fee", inv.Fee2Type)
	assert.True(t, inv.Fee3Amount.Valid)
	require.Len(t, inv.PropertyFees, 1)
	assert.Contains(t, inv.EmailBody, "Amount due: $605.00")
	assert.Equal(t, docx.MIMEType, res.Document.ContentType)
	assert.NotEmpty(t, inv.StorageKey)

	text := documentText(t, res.Document.Data)
	assert.Contains(t, text, "Total due: $605.00")
	assert.Contains(t, text, "Management Fee (45 Side St) = $125.00")

	stored, err := env.svc.GetByID(context.Background(), inv.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "100.00", stored.BaseAmount.StringFixed(2))
	assert.Equal(t, "605.00", stored.ComputedTotal.StringFixed(2))
}

func TestGenerateDedupsByPeriodLabel(t *testing.T) {
	ctx := context.Background()
	env := setup(t)
	c := env.createCustomer(t, "Jane Doe")

	_, err := env.svc.Generate(ctx, invoicedomain.GenerateRequest{CustomerID: c.ID.String(), InvoiceDate: march(1)})
	require.NoError(t, err)

	_, err = env.svc.Generate(ctx, invoicedomain.GenerateRequest{CustomerID: c.ID.String(), InvoiceDate: march(20)})
	assert.ErrorIs(t, err, invoicedomain.ErrAlreadyExists)

	_, err = env.svc.Generate(ctx, invoicedomain.GenerateRequest{
		CustomerID:  c.ID.String(),
		InvoiceDate: time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	exists, err := env.svc.ExistsForPeriod(ctx, c.ID.String(), "April 2025")
	require.NoError(t, err)
	assert.True(t, exists)

	items, err := env.svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestManualOverrideSuppressesDefault(t *testing.T) {
	ctx := context.Background()
	env := setup(t)
	c := env.createCustomer(t, "Jane Doe")

	manual, err := env.svc.Generate(ctx, invoicedomain.GenerateRequest{
		CustomerID:  c.ID.String(),
		InvoiceDate: march(1),
		Overrides:   &fee.Overrides{Fee2: fee.Suppress()},
	})
	require.NoError(t, err)
	assert.Equal(t, "555.00", manual.Invoice.ComputedTotal.StringFixed(2))
	assert.False(t, manual.Invoice.Fee2Amount.Valid)
	assert.NotContains(t, documentText(t, manual.Document.Data), "Late Fee")

	batch, err := env.svc.Generate(ctx, invoicedomain.GenerateRequest{
		CustomerID:  c.ID.String(),
		InvoiceDate: time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Equal(t, "605.00", batch.Invoice.ComputedTotal.StringFixed(2))
}

func TestRegenerateUsesFrozenValues(t *testing.T) {
	ctx := context.Background()
	env := setup(t)
	c := env.createCustomer(t, "Jane Doe")

	res, err := env.svc.Generate(ctx, invoicedomain.GenerateRequest{
		CustomerID:  c.ID.String(),
		InvoiceDate: march(1),
		Overrides:   &fee.Overrides{Fee3: fee.SetTo("Special Assessment", decimal.NewFromInt(75))},
	})
	require.NoError(t, err)

	current, err := env.customers.GetByID(ctx, c.ID.String())
	require.NoError(t, err)
	_, err = env.customers.Update(ctx, customerdomain.UpdateCustomerRequest{
		ID: c.ID.String(),
		CreateCustomerRequest: customerdomain.CreateCustomerRequest{
			Name:            current.Name,
			Email:           current.Email,
			PropertyAddress: current.PropertyAddress,
			Rate:            decimal.NewFromInt(999),
			Cadence:         current.Cadence,
			Fee2Type:        "Late Fee",
			Fee2Rate:        decimal.NewNullDecimal(decimal.NewFromInt(999)),
			NextBillDate:    time.Time(current.NextBillDate),
		},
	})
	require.NoError(t, err)

	first, err := env.svc.Regenerate(ctx, res.Invoice.ID.String())
	require.NoError(t, err)
	second, err := env.svc.Regenerate(ctx, res.Invoice.ID.String())
	require.NoError(t, err)

	assert.Equal(t, first.Data, second.Data)
	assert.Equal(t, res.Invoice.Filename, first.Filename)

	text := documentText(t, first.Data)
	assert.Contains(t, text, "Total due: $650.00")
	assert.Contains(t, text, "March 2025 Special Assessment (03/01/2025 - 03/31/2025) = $75.00")
	assert.NotContains(t, text, "$999.00")
}

func TestGenerateFailuresLeaveNoRecord(t *testing.T) {
	ctx := context.Background()
	env := setup(t)
	c := env.createCustomer(t, "Jane Doe")

	_, err := env.svc.Generate(ctx, invoicedomain.GenerateRequest{
		CustomerID:   c.ID.String(),
		InvoiceDate:  march(1),
		TemplateName: "missing.docx",
	})
	assert.ErrorIs(t, err, invoicedomain.ErrTemplateNotFound)

	_, err = env.svc.Generate(ctx, invoicedomain.GenerateRequest{
		CustomerID:  snowflake.ID(12345).String(),
		InvoiceDate: march(1),
	})
	assert.ErrorIs(t, err, invoicedomain.ErrCustomerNotFound)

	_, err = env.svc.Generate(ctx, invoicedomain.GenerateRequest{CustomerID: c.ID.String()})
	assert.ErrorIs(t, err, invoicedomain.ErrInvalidInvoiceDate)

	var count int64
	require.NoError(t, env.db.Model(&invoicedomain.Invoice{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestListShowsOrphanedInvoicesLast(t *testing.T) {
	ctx := context.Background()
	env := setup(t)
	bob := env.createCustomer(t, "Bob")
	alice := env.createCustomer(t, "Alice")

	for _, c := range []customerdomain.Customer{bob, alice} {
		_, err := env.svc.Generate(ctx, invoicedomain.GenerateRequest{CustomerID: c.ID.String(), InvoiceDate: march(1)})
		require.NoError(t, err)
	}
	_, err := env.svc.Generate(ctx, invoicedomain.GenerateRequest{
		CustomerID:  alice.ID.String(),
		InvoiceDate: time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	require.NoError(t, env.customers.Delete(ctx, bob.ID.String()))

	items, err := env.svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "Alice", items[0].DisplayCustomerName())
	assert.Equal(t, "April 2025", items[0].PeriodLabel)
	assert.Equal(t, "Alice", items[1].DisplayCustomerName())
	assert.Equal(t, "March 2025", items[1].PeriodLabel)
	assert.Equal(t, invoicedomain.UnknownCustomerName, items[2].DisplayCustomerName())

	_, err = env.svc.Regenerate(ctx, items[2].ID.String())
	assert.ErrorIs(t, err, invoicedomain.ErrCustomerNotFound)
}

func TestToggleStatus(t *testing.T) {
	ctx := context.Background()
	env := setup(t)
	c := env.createCustomer(t, "Jane Doe")
	res, err := env.svc.Generate(ctx, invoicedomain.GenerateRequest{CustomerID: c.ID.String(), InvoiceDate: march(1)})
	require.NoError(t, err)
	id := res.Invoice.ID.String()

	paid, err := env.svc.ToggleStatus(ctx, invoicedomain.ToggleStatusRequest{ID: id})
	require.NoError(t, err)
	assert.Equal(t, invoicedomain.InvoiceStatusPaid, paid.Status)
	require.NotNil(t, paid.PaidDate)
	assert.Equal(t, march(10), time.Time(*paid.PaidDate))

	unpaid, err := env.svc.ToggleStatus(ctx, invoicedomain.ToggleStatusRequest{ID: id})
	require.NoError(t, err)
	assert.Equal(t, invoicedomain.InvoiceStatusUnpaid, unpaid.Status)
	assert.Nil(t, unpaid.PaidDate)

	explicit := march(5)
	paid, err = env.svc.ToggleStatus(ctx, invoicedomain.ToggleStatusRequest{ID: id, PaidDate: &explicit})
	require.NoError(t, err)
	assert.Equal(t, march(5), time.Time(*paid.PaidDate))

	_, err = env.svc.ToggleStatus(ctx, invoicedomain.ToggleStatusRequest{ID: "bogus"})
	assert.ErrorIs(t, err, invoicedomain.ErrInvalidID)
}

func TestDeleteAndClear(t *testing.T) {
	ctx := context.Background()
	env := setup(t)
	c := env.createCustomer(t, "Jane Doe")

	first, err := env.svc.Generate(ctx, invoicedomain.GenerateRequest{CustomerID: c.ID.String(), InvoiceDate: march(1)})
	require.NoError(t, err)
	second, err := env.svc.Generate(ctx, invoicedomain.GenerateRequest{
		CustomerID:  c.ID.String(),
		InvoiceDate: time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.NotEmpty(t, second.Invoice.StorageKey)

	require.NoError(t, env.svc.Delete(ctx, first.Invoice.ID.String()))
	assert.ErrorIs(t, env.svc.Delete(ctx, first.Invoice.ID.String()), invoicedomain.ErrNotFound)

	_, err = storage.NewLocal(env.archive).Get(ctx, first.Invoice.StorageKey)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	cleared, err := env.svc.Clear(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), cleared)

	_, err = storage.NewLocal(env.archive).Get(ctx, second.Invoice.StorageKey)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestRegenerateServesArchiveWhenTemplateRemoved(t *testing.T) {
	ctx := context.Background()
	env := setup(t)
	c := env.createCustomer(t, "Jane Doe")

	res, err := env.svc.Generate(ctx, invoicedomain.GenerateRequest{CustomerID: c.ID.String(), InvoiceDate: march(1)})
	require.NoError(t, err)

	require.NoError(t, os.Remove(filepath.Join(env.templates, settingsdomain.DefaultTemplateName)))

	doc, err := env.svc.Regenerate(ctx, res.Invoice.ID.String())
	require.NoError(t, err)
	assert.Equal(t, res.Document.Data, doc.Data)
	assert.Equal(t, res.Invoice.Filename, doc.Filename)

	require.NoError(t, storage.NewLocal(env.archive).Delete(ctx, res.Invoice.StorageKey))
	_, err = env.svc.Regenerate(ctx, res.Invoice.ID.String())
	assert.ErrorIs(t, err, invoicedomain.ErrTemplateNotFound)
}

func TestSendEmailsDraftWithAttachment(t *testing.T) {
	ctx := context.Background()
	env := setup(t)
	c := env.createCustomer(t, "Jane Doe")
	res, err := env.svc.Generate(ctx, invoicedomain.GenerateRequest{CustomerID: c.ID.String(), InvoiceDate: march(1)})
	require.NoError(t, err)

	env.email.On("Enabled").Return(true)
	env.email.On("Send", mock.Anything, mock.MatchedBy(func(msg email.Message) bool {
		return len(msg.To) == 1 &&
			msg.To[0] == "owner@example.com" &&
			msg.Subject == res.Invoice.EmailSubject &&
			msg.Body == res.Invoice.EmailBody &&
			len(msg.Attachments) == 1 &&
			msg.Attachments[0].Filename == "Invoice_March_2025_Main_St.docx"
	})).Return(nil).Once()

	sent, err := env.svc.Send(ctx, res.Invoice.ID.String())
	require.NoError(t, err)
	require.NotNil(t, sent.SentAt)
	env.email.AssertExpectations(t)
}

func TestSendWithoutEmailProvider(t *testing.T) {
	env := setup(t)
	env.email.On("Enabled").Return(false)

	_, err := env.svc.Send(context.Background(), "1")
	assert.ErrorIs(t, err, invoicedomain.ErrEmailNotConfigured)
}

func TestRenderPDFForOrphanedInvoice(t *testing.T) {
	ctx := context.Background()
	env := setup(t)
	c := env.createCustomer(t, "Jane Doe")
	res, err := env.svc.Generate(ctx, invoicedomain.GenerateRequest{CustomerID: c.ID.String(), InvoiceDate: march(1)})
	require.NoError(t, err)
	require.NoError(t, env.customers.Delete(ctx, c.ID.String()))

	env.pdf.On("GenerateInvoice", mock.Anything, mock.MatchedBy(func(data pdf.InvoiceData) bool {
		return data.BillToName == invoicedomain.UnknownCustomerName &&
			data.Total == "$605.00" &&
			data.Period == "March 2025" &&
			len(data.Items) == 5
	})).Return([]byte("%PDF-1.7"), nil).Once()

	doc, err := env.svc.RenderPDF(ctx, res.Invoice.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "Invoice_March_2025_Main_St.pdf", doc.Filename)
	assert.Equal(t, "application/pdf", doc.ContentType)
	env.pdf.AssertExpectations(t)
}
