package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/propbill/internal/clock"
	"github.com/smallbiznis/propbill/internal/config"
	customerdomain "github.com/smallbiznis/propbill/internal/customer/domain"
	"github.com/smallbiznis/propbill/internal/docx"
	invoicedomain "github.com/smallbiznis/propbill/internal/invoice/domain"
	"github.com/smallbiznis/propbill/internal/invoice/render"
	templatedomain "github.com/smallbiznis/propbill/internal/invoicetemplate/domain"
	"github.com/smallbiznis/propbill/internal/observability/metrics"
	"github.com/smallbiznis/propbill/internal/providers/email"
	"github.com/smallbiznis/propbill/internal/providers/pdf"
	"github.com/smallbiznis/propbill/internal/ratelimit"
	settingsdomain "github.com/smallbiznis/propbill/internal/settings/domain"
	"github.com/smallbiznis/propbill/internal/storage"
	"github.com/smallbiznis/propbill/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ServiceParam struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	GenID       *snowflake.Node
	Clock       clock.Clock
	Repo        invoicedomain.Repository
	CustomerSvc customerdomain.Service
	SettingsSvc settingsdomain.Service
	TemplateSvc templatedomain.Service
	Assembler   *render.Assembler
	Invoicing   *config.InvoicingConfigHolder
	Store       storage.Store
	Email       email.Provider
	PDF         pdf.Provider
	Limiter     *ratelimit.InvoiceSendLimiter `optional:"true"`
	Metrics     *metrics.Metrics              `optional:"true"`
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock

	repo        invoicedomain.Repository
	customerSvc customerdomain.Service
	settingsSvc settingsdomain.Service
	templateSvc templatedomain.Service
	assembler   *render.Assembler
	invoicing   *config.InvoicingConfigHolder
	store       storage.Store
	email       email.Provider
	pdf         pdf.Provider
	limiter     *ratelimit.InvoiceSendLimiter
	metrics     *metrics.Metrics
}

func NewService(p ServiceParam) invoicedomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("invoice.service"),
		genID: p.GenID,
		clock: p.Clock,

		repo:        p.Repo,
		customerSvc: p.CustomerSvc,
		settingsSvc: p.SettingsSvc,
		templateSvc: p.TemplateSvc,
		assembler:   p.Assembler,
		invoicing:   p.Invoicing,
		store:       p.Store,
		email:       p.Email,
		pdf:         p.PDF,
		limiter:     p.Limiter,
		metrics:     p.Metrics,
	}
}

// Generate assembles and persists one invoice. The dedup check, document
// assembly, archive upload and insert share one transaction.
func (s *Service) Generate(ctx context.Context, req invoicedomain.GenerateRequest) (*invoicedomain.GenerateResult, error) {
	mode := string(req.Mode())
	res, err := s.generate(ctx, req)
	switch {
	case err == nil:
		total, _ := res.Invoice.ComputedTotal.Float64()
		s.metrics.RecordInvoiceGenerated(ctx, mode, res.customerCadence, total)
		return &res.GenerateResult, nil
	case errors.Is(err, invoicedomain.ErrAlreadyExists):
		s.metrics.RecordInvoiceSkipped(ctx, mode)
	default:
		s.metrics.RecordInvoiceFailed(ctx, mode, failureReason(err))
	}
	return nil, err
}

type generated struct {
	invoicedomain.GenerateResult
	customerCadence string
}

func (s *Service) generate(ctx context.Context, req invoicedomain.GenerateRequest) (*generated, error) {
	if req.InvoiceDate.IsZero() {
		return nil, invoicedomain.ErrInvalidInvoiceDate
	}
	invoiceDate := dateOnly(req.InvoiceDate)

	customer, err := s.loadCustomer(ctx, strings.TrimSpace(req.CustomerID))
	if err != nil {
		return nil, err
	}

	settings, err := s.settingsSvc.Get(ctx)
	if err != nil {
		return nil, err
	}
	templateName := strings.TrimSpace(req.TemplateName)
	if templateName == "" {
		templateName = settings.Template()
	}
	tmpl, err := s.loadTemplate(ctx, templateName)
	if err != nil {
		return nil, err
	}

	invoicingCfg := s.invoicing.Get()
	in := render.Input{
		Customer:    customer,
		InvoiceDate: invoiceDate,
		Base:        customer.Rate,
		Defaults:    customer.DefaultFees(),
		Overrides:   req.Overrides,
		Properties:  customer.PropertyFees(),
		Template:    tmpl,
		SenderName:  settings.Sender(invoicingCfg.FallbackSenderName),
		Style:       render.StyleFrom(invoicingCfg),
	}

	var out generated
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		label := render.Compute(in).Period.Label
		exists, err := s.repo.ExistsForPeriod(ctx, tx, customer.ID, label)
		if err != nil {
			return err
		}
		if exists {
			return invoicedomain.ErrAlreadyExists
		}

		assembled, err := s.assembler.Assemble(ctx, in)
		if err != nil {
			return err
		}

		now := s.clock.Now()
		customerID := customer.ID
		invoice := invoicedomain.Invoice{
			ID:            s.genID.Generate(),
			CustomerID:    &customerID,
			InvoiceDate:   datatypes.Date(invoiceDate),
			PeriodLabel:   assembled.Period.Label,
			TemplateName:  tmpl.Name,
			BaseAmount:    customer.Rate,
			ComputedTotal: assembled.Lines.Total,
			Filename:      assembled.Filename,
			EmailSubject:  assembled.EmailSubject,
			EmailBody:     assembled.EmailBody,
			Status:        invoicedomain.InvoiceStatusUnpaid,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		invoice.Freeze(assembled.Fees, in.Properties)

		if s.store != nil && s.store.Enabled() {
			invoice.StorageKey = storage.ObjectKey("invoices", customerID.String(), invoice.ID.String(), invoice.Filename)
			if err := s.store.Put(ctx, invoice.StorageKey, assembled.Document, docx.MIMEType); err != nil {
				return fmt.Errorf("archive invoice: %w", err)
			}
		}

		if err := s.repo.Insert(ctx, tx, &invoice); err != nil {
			s.discardArchive(ctx, invoice.StorageKey)
			if db.IsDuplicateKeyErr(err) {
				return invoicedomain.ErrAlreadyExists
			}
			return err
		}

		out = generated{
			GenerateResult: invoicedomain.GenerateResult{
				Invoice: invoice,
				Document: invoicedomain.Document{
					Filename:    invoice.Filename,
					ContentType: docx.MIMEType,
					Data:        assembled.Document,
				},
			},
			customerCadence: string(customer.CadenceValue()),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("invoice generated",
		zap.String("invoice_id", out.Invoice.ID.String()),
		zap.String("customer_id", customer.ID.String()),
		zap.String("period", out.Invoice.PeriodLabel),
		zap.String("mode", string(req.Mode())),
		zap.String("total", out.Invoice.ComputedTotal.StringFixed(2)),
	)
	return &out, nil
}

// Regenerate rebuilds the document from the stored record. Fees, base amount,
// property surcharges and period label come from the record; period dates use
// the customer's current cadence.
func (s *Service) Regenerate(ctx context.Context, id string) (*invoicedomain.Document, error) {
	invoice, err := s.findInvoice(ctx, id)
	if err != nil {
		return nil, err
	}
	if invoice.CustomerID == nil {
		return nil, invoicedomain.ErrCustomerNotFound
	}
	customer, err := s.loadCustomer(ctx, invoice.CustomerID.String())
	if err != nil {
		return nil, err
	}

	settings, err := s.settingsSvc.Get(ctx)
	if err != nil {
		return nil, err
	}
	templateName := invoice.TemplateName
	if templateName == "" {
		templateName = settings.Template()
	}
	tmpl, err := s.loadTemplate(ctx, templateName)
	if err != nil {
		if !errors.Is(err, invoicedomain.ErrTemplateNotFound) {
			return nil, err
		}
		if doc, ok := s.archivedDocument(ctx, invoice); ok {
			s.log.Info("template missing, serving archived invoice",
				zap.String("invoice_id", invoice.ID.String()),
				zap.String("template", templateName),
			)
			return doc, nil
		}
		return nil, err
	}

	invoicingCfg := s.invoicing.Get()
	assembled, err := s.assembler.Assemble(ctx, render.Input{
		Customer:    customer,
		InvoiceDate: invoice.Date(),
		PeriodLabel: invoice.PeriodLabel,
		Base:        invoice.BaseAmount,
		Defaults:    invoice.FrozenFees(),
		Properties:  invoice.PropertyFees,
		Template:    tmpl,
		SenderName:  settings.Sender(invoicingCfg.FallbackSenderName),
		Style:       render.StyleFrom(invoicingCfg),
	})
	if err != nil {
		return nil, err
	}

	filename := invoice.Filename
	if filename == "" {
		filename = assembled.Filename
	}
	return &invoicedomain.Document{
		Filename:    filename,
		ContentType: docx.MIMEType,
		Data:        assembled.Document,
	}, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (invoicedomain.Invoice, error) {
	invoice, err := s.findInvoice(ctx, id)
	if err != nil {
		return invoicedomain.Invoice{}, err
	}
	return *invoice, nil
}

func (s *Service) List(ctx context.Context) ([]invoicedomain.ListItem, error) {
	return s.repo.List(ctx, s.db)
}

func (s *Service) ExistsForPeriod(ctx context.Context, customerID string, periodLabel string) (bool, error) {
	cid, err := parseID(customerID, invoicedomain.ErrInvalidCustomerID)
	if err != nil {
		return false, err
	}
	return s.repo.ExistsForPeriod(ctx, s.db, cid, periodLabel)
}

func (s *Service) ToggleStatus(ctx context.Context, req invoicedomain.ToggleStatusRequest) (invoicedomain.Invoice, error) {
	invoice, err := s.findInvoice(ctx, req.ID)
	if err != nil {
		return invoicedomain.Invoice{}, err
	}

	if invoice.Status == invoicedomain.InvoiceStatusPaid {
		invoice.Status = invoicedomain.InvoiceStatusUnpaid
		invoice.PaidDate = nil
	} else {
		paid := clock.Today(s.clock)
		if req.PaidDate != nil {
			if req.PaidDate.IsZero() {
				return invoicedomain.Invoice{}, invoicedomain.ErrInvalidPaidDate
			}
			paid = dateOnly(*req.PaidDate)
		}
		paidDate := datatypes.Date(paid)
		invoice.Status = invoicedomain.InvoiceStatusPaid
		invoice.PaidDate = &paidDate
	}
	invoice.UpdatedAt = s.clock.Now()

	if err := s.repo.UpdateStatus(ctx, s.db, invoice); err != nil {
		return invoicedomain.Invoice{}, err
	}

	s.log.Info("invoice status changed",
		zap.String("invoice_id", invoice.ID.String()),
		zap.String("status", string(invoice.Status)),
	)
	return *invoice, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	invoiceID, err := parseID(id, invoicedomain.ErrInvalidID)
	if err != nil {
		return err
	}
	invoice, err := s.repo.FindByID(ctx, s.db, invoiceID)
	if err != nil {
		return err
	}
	if invoice == nil {
		return invoicedomain.ErrNotFound
	}

	affected, err := s.repo.Delete(ctx, s.db, invoiceID)
	if err != nil {
		return err
	}
	if affected == 0 {
		return invoicedomain.ErrNotFound
	}
	s.discardArchive(ctx, invoice.StorageKey)
	return nil
}

func (s *Service) Clear(ctx context.Context) (int64, error) {
	keys, err := s.repo.StorageKeys(ctx, s.db)
	if err != nil {
		return 0, err
	}
	deleted, err := s.repo.DeleteAll(ctx, s.db)
	if err != nil {
		return 0, err
	}
	for _, key := range keys {
		s.discardArchive(ctx, key)
	}
	s.log.Warn("all invoices cleared",
		zap.Int64("count", deleted),
		zap.Int("archived", len(keys)),
	)
	return deleted, nil
}

// Send emails the stored draft to the customer with the regenerated document attached.
func (s *Service) Send(ctx context.Context, id string) (invoicedomain.Invoice, error) {
	if s.email == nil || !s.email.Enabled() {
		return invoicedomain.Invoice{}, invoicedomain.ErrEmailNotConfigured
	}

	invoice, err := s.findInvoice(ctx, id)
	if err != nil {
		return invoicedomain.Invoice{}, err
	}
	if invoice.CustomerID == nil {
		return invoicedomain.Invoice{}, invoicedomain.ErrCustomerNotFound
	}
	customer, err := s.loadCustomer(ctx, invoice.CustomerID.String())
	if err != nil {
		return invoicedomain.Invoice{}, err
	}
	if strings.TrimSpace(customer.Email) == "" {
		return invoicedomain.Invoice{}, invoicedomain.ErrNoRecipient
	}

	if allowed, retryAfter := s.limiter.Allow(ctx, customer.ID.String()); !allowed {
		s.log.Warn("invoice send throttled",
			zap.String("invoice_id", invoice.ID.String()),
			zap.Duration("retry_after", retryAfter),
		)
		return invoicedomain.Invoice{}, invoicedomain.ErrSendThrottled
	}

	doc, err := s.Regenerate(ctx, id)
	if err != nil {
		return invoicedomain.Invoice{}, err
	}

	settings, err := s.settingsSvc.Get(ctx)
	if err != nil {
		return invoicedomain.Invoice{}, err
	}

	err = s.email.Send(ctx, email.Message{
		To:       []string{customer.Email},
		ReplyTo:  settings.SenderEmail,
		FromName: settings.Sender(s.invoicing.Get().FallbackSenderName),
		Subject:  invoice.EmailSubject,
		Body:     invoice.EmailBody,
		Attachments: []email.Attachment{{
			Filename:    doc.Filename,
			ContentType: doc.ContentType,
			Data:        doc.Data,
		}},
	})
	if err != nil {
		return invoicedomain.Invoice{}, err
	}

	now := s.clock.Now()
	invoice.SentAt = &now
	invoice.UpdatedAt = now
	if err := s.repo.MarkSent(ctx, s.db, invoice); err != nil {
		return invoicedomain.Invoice{}, err
	}

	s.metrics.RecordEmailSent(ctx, "smtp")
	s.log.Info("invoice sent", zap.String("invoice_id", invoice.ID.String()))
	return *invoice, nil
}

func (s *Service) findInvoice(ctx context.Context, id string) (*invoicedomain.Invoice, error) {
	invoiceID, err := parseID(id, invoicedomain.ErrInvalidID)
	if err != nil {
		return nil, err
	}
	invoice, err := s.repo.FindByID(ctx, s.db, invoiceID)
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, invoicedomain.ErrNotFound
	}
	return invoice, nil
}

func (s *Service) loadCustomer(ctx context.Context, id string) (customerdomain.Customer, error) {
	customer, err := s.customerSvc.GetByID(ctx, id)
	if err != nil {
		switch {
		case errors.Is(err, customerdomain.ErrNotFound):
			return customerdomain.Customer{}, invoicedomain.ErrCustomerNotFound
		case errors.Is(err, customerdomain.ErrInvalidID):
			return customerdomain.Customer{}, invoicedomain.ErrInvalidCustomerID
		}
		return customerdomain.Customer{}, err
	}
	return customer, nil
}

func (s *Service) loadTemplate(ctx context.Context, name string) (*templatedomain.Loaded, error) {
	tmpl, err := s.templateSvc.Load(ctx, name)
	if err != nil {
		if errors.Is(err, templatedomain.ErrNotFound) || errors.Is(err, templatedomain.ErrInvalidName) {
			return nil, fmt.Errorf("%w: %s", invoicedomain.ErrTemplateNotFound, name)
		}
		return nil, err
	}
	return tmpl, nil
}

// archivedDocument returns the copy stored when the invoice was generated.
func (s *Service) archivedDocument(ctx context.Context, invoice *invoicedomain.Invoice) (*invoicedomain.Document, bool) {
	if invoice.StorageKey == "" || s.store == nil || !s.store.Enabled() {
		return nil, false
	}
	data, err := s.store.Get(ctx, invoice.StorageKey)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.log.Warn("failed to read archived invoice", zap.String("key", invoice.StorageKey), zap.Error(err))
		}
		return nil, false
	}
	return &invoicedomain.Document{
		Filename:    invoice.Filename,
		ContentType: docx.MIMEType,
		Data:        data,
	}, true
}

func (s *Service) discardArchive(ctx context.Context, key string) {
	if key == "" || s.store == nil || !s.store.Enabled() {
		return
	}
	if err := s.store.Delete(ctx, key); err != nil {
		s.log.Warn("failed to remove archived invoice", zap.String("key", key), zap.Error(err))
	}
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, invoicedomain.ErrCustomerNotFound):
		return "customer_not_found"
	case errors.Is(err, invoicedomain.ErrTemplateNotFound):
		return "template_not_found"
	case errors.Is(err, invoicedomain.ErrInvalidInvoiceDate), errors.Is(err, invoicedomain.ErrInvalidCustomerID):
		return "invalid_request"
	default:
		return "internal"
	}
}

func parseID(value string, invalid error) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, invalid
	}
	return id, nil
}

func dateOnly(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
