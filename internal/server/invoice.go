package server

import (
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/propbill/internal/billing/fee"
	invoicedomain "github.com/smallbiznis/propbill/internal/invoice/domain"
	"go.uber.org/zap"
)

type feeOverrideRequest struct {
	Mode   string              `json:"mode" validate:"omitempty,override_mode"`
	Type   string              `json:"type"`
	Amount decimal.NullDecimal `json:"amount"`
}

func (r *feeOverrideRequest) toDomain(field string) (fee.Override, error) {
	if r == nil {
		return fee.UseDefault(), nil
	}
	mode, err := r.mode()
	if err != nil {
		return fee.Override{}, err
	}
	switch mode {
	case fee.ModeSuppress:
		return fee.Suppress(), nil
	case fee.ModeSetTo:
		if !r.Amount.Valid {
			return fee.Override{}, newValidationError(field+".amount", "invalid_amount", "amount is required when mode is set")
		}
		if r.Amount.Decimal.IsNegative() {
			return fee.Override{}, newValidationError(field+".amount", "invalid_amount", "amount cannot be negative")
		}
		return fee.SetTo(strings.TrimSpace(r.Type), r.Amount.Decimal), nil
	default:
		return fee.UseDefault(), nil
	}
}

// mode infers the tag of a slot sent without one: an amount sets the fee,
// no amount suppresses it.
func (r *feeOverrideRequest) mode() (fee.Mode, error) {
	if strings.TrimSpace(r.Mode) != "" {
		return fee.ParseMode(r.Mode)
	}
	if r.Amount.Valid {
		return fee.ModeSetTo, nil
	}
	return fee.ModeSuppress, nil
}

type generateInvoiceRequest struct {
	CustomerID   string              `json:"customer_id" validate:"required"`
	InvoiceDate  string              `json:"invoice_date" validate:"required,datetime=2006-01-02"`
	TemplateName string              `json:"template_name"`
	Fee2         *feeOverrideRequest `json:"fee_2"`
	Fee3         *feeOverrideRequest `json:"fee_3"`
	Additional   *feeOverrideRequest `json:"additional"`
}

func (r generateInvoiceRequest) overrides() (*fee.Overrides, error) {
	fee2, err := r.Fee2.toDomain("fee_2")
	if err != nil {
		return nil, err
	}
	fee3, err := r.Fee3.toDomain("fee_3")
	if err != nil {
		return nil, err
	}
	additional, err := r.Additional.toDomain("additional")
	if err != nil {
		return nil, err
	}
	return &fee.Overrides{Fee2: fee2, Fee3: fee3, Additional: additional}, nil
}

type invoiceListItem struct {
	invoicedomain.Invoice
	CustomerName string `json:"customer_name"`
	Orphaned     bool   `json:"orphaned"`
}

func (s *Server) GenerateInvoice(c *gin.Context) {
	var req generateInvoiceRequest
	if err := bindJSON(c, &req); err != nil {
		AbortWithError(c, err)
		return
	}

	invoiceDate, err := time.Parse(dateOnlyLayout, strings.TrimSpace(req.InvoiceDate))
	if err != nil {
		AbortWithError(c, invoicedomain.ErrInvalidInvoiceDate)
		return
	}
	overrides, err := req.overrides()
	if err != nil {
		AbortWithError(c, err)
		return
	}

	result, err := s.invoiceSvc.Generate(c.Request.Context(), invoicedomain.GenerateRequest{
		CustomerID:   strings.TrimSpace(req.CustomerID),
		InvoiceDate:  invoiceDate,
		TemplateName: strings.TrimSpace(req.TemplateName),
		Overrides:    overrides,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if download, _ := parseOptionalBool(c.Query("download")); download != nil && *download {
		writeDocument(c, &result.Document)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": result.Invoice})
}

func (s *Server) ListInvoices(c *gin.Context) {
	items, err := s.invoiceSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp := lo.Map(items, func(item invoicedomain.ListItem, _ int) invoiceListItem {
		return invoiceListItem{
			Invoice:      item.Invoice,
			CustomerName: item.DisplayCustomerName(),
			Orphaned:     item.CustomerName == nil,
		}
	})

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetInvoiceByID(c *gin.Context) {
	resp, err := s.invoiceSvc.GetByID(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DownloadInvoice(c *gin.Context) {
	doc, err := s.invoiceSvc.Regenerate(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	writeDocument(c, doc)
}

func (s *Server) DownloadInvoicePDF(c *gin.Context) {
	doc, err := s.invoiceSvc.RenderPDF(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	writeDocument(c, doc)
}

type toggleStatusRequest struct {
	PaidDate string `json:"paid_date" validate:"omitempty,datetime=2006-01-02"`
}

func (s *Server) ToggleInvoiceStatus(c *gin.Context) {
	var req toggleStatusRequest
	if c.Request.ContentLength > 0 {
		if err := bindJSON(c, &req); err != nil {
			AbortWithError(c, err)
			return
		}
	}

	paidDate, err := parseOptionalDate(req.PaidDate)
	if err != nil {
		AbortWithError(c, invoicedomain.ErrInvalidPaidDate)
		return
	}

	resp, err := s.invoiceSvc.ToggleStatus(c.Request.Context(), invoicedomain.ToggleStatusRequest{
		ID:       strings.TrimSpace(c.Param("id")),
		PaidDate: paidDate,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) SendInvoice(c *gin.Context) {
	resp, err := s.invoiceSvc.Send(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteInvoice(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if err := s.invoiceSvc.Delete(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (s *Server) ClearInvoices(c *gin.Context) {
	deleted, err := s.invoiceSvc.Clear(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.log.Warn("all invoices cleared", zap.Int64("deleted", deleted))
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"deleted": deleted}})
}

func writeDocument(c *gin.Context, doc *invoicedomain.Document) {
	writeAttachment(c, doc.Filename, doc.ContentType, doc.Data)
}

func writeAttachment(c *gin.Context, filename, contentType string, data []byte) {
	c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
	c.Data(http.StatusOK, contentType, data)
}
