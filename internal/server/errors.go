package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/propbill/internal/billing/fee"
	customerdomain "github.com/smallbiznis/propbill/internal/customer/domain"
	feetypedomain "github.com/smallbiznis/propbill/internal/feetype/domain"
	invoicedomain "github.com/smallbiznis/propbill/internal/invoice/domain"
	templatedomain "github.com/smallbiznis/propbill/internal/invoicetemplate/domain"
	"github.com/smallbiznis/propbill/internal/ratelimit"
	settingsdomain "github.com/smallbiznis/propbill/internal/settings/domain"
	"gorm.io/gorm"
)

// ValidationError points at one offending request field.
type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrConflict           = errors.New("conflict")
	ErrNotFound           = errors.New("not_found")
	ErrInvalidRequest     = errors.New("invalid_request")
	ErrTooManyRequests    = errors.New("too_many_requests")
	ErrServiceUnavailable = errors.New("service_unavailable")
)

// errorClass maps a family of errors onto one HTTP status and envelope type.
type errorClass struct {
	status  int
	typ     string
	message func(error) string
	members []error
}

func fixed(msg string) func(error) string {
	return func(error) string { return msg }
}

var errorClasses = []errorClass{
	{
		status:  http.StatusConflict,
		typ:     "conflict",
		message: conflictMessage,
		members: []error{
			ErrConflict,
			invoicedomain.ErrAlreadyExists,
			feetypedomain.ErrDuplicate,
			ratelimit.ErrLockHeld,
		},
	},
	{
		status:  http.StatusNotFound,
		typ:     "not_found",
		message: fixed("not found"),
		members: []error{
			ErrNotFound,
			customerdomain.ErrNotFound,
			customerdomain.ErrPropertyNotFound,
			feetypedomain.ErrNotFound,
			templatedomain.ErrNotFound,
			invoicedomain.ErrNotFound,
			invoicedomain.ErrCustomerNotFound,
			invoicedomain.ErrTemplateNotFound,
			gorm.ErrRecordNotFound,
		},
	},
	{
		status:  http.StatusTooManyRequests,
		typ:     "too_many_requests",
		message: fixed("too many requests"),
		members: []error{ErrTooManyRequests, invoicedomain.ErrSendThrottled},
	},
	{
		status:  http.StatusServiceUnavailable,
		typ:     "service_unavailable",
		message: fixed("service unavailable"),
		members: []error{ErrServiceUnavailable, invoicedomain.ErrEmailNotConfigured},
	},
}

// fieldErrors are domain sentinels reported as a 400 against a single field.
// The sentinel text doubles as the error code.
var fieldErrors = []error{
	ErrInvalidRequest,
	fee.ErrInvalidMode,

	customerdomain.ErrInvalidID,
	customerdomain.ErrInvalidName,
	customerdomain.ErrInvalidEmail,
	customerdomain.ErrInvalidAddress,
	customerdomain.ErrInvalidRate,
	customerdomain.ErrInvalidCadence,
	customerdomain.ErrInvalidNextBillDate,
	customerdomain.ErrInvalidPropertyID,

	feetypedomain.ErrInvalidID,
	feetypedomain.ErrInvalidName,

	settingsdomain.ErrInvalidSenderName,
	settingsdomain.ErrInvalidSenderEmail,
	settingsdomain.ErrInvalidTemplate,

	templatedomain.ErrInvalidName,

	invoicedomain.ErrInvalidID,
	invoicedomain.ErrInvalidCustomerID,
	invoicedomain.ErrInvalidInvoiceDate,
	invoicedomain.ErrInvalidPaidDate,
	invoicedomain.ErrNoRecipient,
}

// ErrorHandlingMiddleware renders the last handler error as the JSON error
// envelope unless the handler already wrote a response.
func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		last := c.Errors.Last()
		if last == nil || c.Writer.Written() {
			return
		}
		status, payload := mapError(last.Err)
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func invalidRequestError() error {
	return newValidationError("request", "invalid_request", "invalid request")
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{Errors: []ValidationError{{Field: field, Code: code, Message: message}}}
}

func mapError(err error) (int, errorPayload) {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return http.StatusBadRequest, validationPayload(vErr.Errors)
	}
	if sentinel, ok := matchAny(err, fieldErrors); ok {
		code := sentinel.Error()
		return http.StatusBadRequest, validationPayload([]ValidationError{{
			Field:   fieldForCode(code),
			Code:    code,
			Message: messageForCode(code),
		}})
	}
	for _, class := range errorClasses {
		if _, ok := matchAny(err, class.members); ok {
			return class.status, errorPayload{Type: class.typ, Message: class.message(err)}
		}
	}
	return http.StatusInternalServerError, errorPayload{Type: "internal_error", Message: "internal server error"}
}

func validationPayload(errs []ValidationError) errorPayload {
	return errorPayload{Type: "validation_error", Message: "validation error", Errors: errs}
}

func matchAny(err error, targets []error) (error, bool) {
	if err == nil {
		return nil, false
	}
	for _, target := range targets {
		if errors.Is(err, target) {
			return target, true
		}
	}
	return nil, false
}

// classifyErrorForLog returns the error type and code attached to request log lines.
func classifyErrorForLog(err error) (string, string) {
	if err == nil {
		return "", ""
	}
	_, payload := mapError(err)
	if len(payload.Errors) > 0 {
		return payload.Type, payload.Errors[0].Code
	}
	return payload.Type, payload.Type
}

func conflictMessage(err error) string {
	switch {
	case errors.Is(err, invoicedomain.ErrAlreadyExists):
		return "an invoice already exists for this period"
	case errors.Is(err, feetypedomain.ErrDuplicate):
		return "fee type already exists"
	case errors.Is(err, ratelimit.ErrLockHeld):
		return "a bill-due sweep is already running"
	default:
		return "conflict"
	}
}

// fieldForCode derives the field name from codes shaped invalid_<field>.
func fieldForCode(code string) string {
	if code == "invalid_request" {
		return "request"
	}
	field, ok := strings.CutPrefix(code, "invalid_")
	if !ok {
		return ""
	}
	return field
}

func messageForCode(code string) string {
	switch code {
	case "invalid_request":
		return "invalid request"
	case "customer_has_no_email":
		return "customer has no email address"
	default:
		return "invalid value"
	}
}
