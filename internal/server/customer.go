package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	customerdomain "github.com/smallbiznis/propbill/internal/customer/domain"
	"go.uber.org/zap"
)

type customerRequest struct {
	Name                string              `json:"name" validate:"required"`
	Email               string              `json:"email" validate:"required,email"`
	PropertyAddress     string              `json:"property_address" validate:"required"`
	PropertyCity        string              `json:"property_city"`
	PropertyState       string              `json:"property_state"`
	PropertyZip         string              `json:"property_zip"`
	Rate                decimal.Decimal     `json:"rate"`
	Cadence             string              `json:"cadence" validate:"required,cadence"`
	FeeType             string              `json:"fee_type"`
	Fee2Type            string              `json:"fee_2_type"`
	Fee2Rate            decimal.NullDecimal `json:"fee_2_rate"`
	Fee3Type            string              `json:"fee_3_type"`
	Fee3Rate            decimal.NullDecimal `json:"fee_3_rate"`
	AdditionalFeeDesc   string              `json:"additional_fee_desc"`
	AdditionalFeeAmount decimal.NullDecimal `json:"additional_fee_amount"`
	NextBillDate        string              `json:"next_bill_date" validate:"required,datetime=2006-01-02"`
}

func (r customerRequest) toDomain() (customerdomain.CreateCustomerRequest, error) {
	next, err := time.Parse(dateOnlyLayout, strings.TrimSpace(r.NextBillDate))
	if err != nil {
		return customerdomain.CreateCustomerRequest{}, customerdomain.ErrInvalidNextBillDate
	}
	return customerdomain.CreateCustomerRequest{
		Name:                strings.TrimSpace(r.Name),
		Email:               strings.TrimSpace(r.Email),
		PropertyAddress:     strings.TrimSpace(r.PropertyAddress),
		PropertyCity:        strings.TrimSpace(r.PropertyCity),
		PropertyState:       strings.TrimSpace(r.PropertyState),
		PropertyZip:         strings.TrimSpace(r.PropertyZip),
		Rate:                r.Rate,
		Cadence:             strings.ToLower(strings.TrimSpace(r.Cadence)),
		FeeType:             strings.TrimSpace(r.FeeType),
		Fee2Type:            strings.TrimSpace(r.Fee2Type),
		Fee2Rate:            r.Fee2Rate,
		Fee3Type:            strings.TrimSpace(r.Fee3Type),
		Fee3Rate:            r.Fee3Rate,
		AdditionalFeeDesc:   strings.TrimSpace(r.AdditionalFeeDesc),
		AdditionalFeeAmount: r.AdditionalFeeAmount,
		NextBillDate:        next,
	}, nil
}

func (s *Server) CreateCustomer(c *gin.Context) {
	var req customerRequest
	if err := bindJSON(c, &req); err != nil {
		AbortWithError(c, err)
		return
	}
	create, err := req.toDomain()
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.customerSvc.Create(c.Request.Context(), create)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateCustomer(c *gin.Context) {
	var req customerRequest
	if err := bindJSON(c, &req); err != nil {
		AbortWithError(c, err)
		return
	}
	update, err := req.toDomain()
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.customerSvc.Update(c.Request.Context(), customerdomain.UpdateCustomerRequest{
		ID:                    strings.TrimSpace(c.Param("id")),
		CreateCustomerRequest: update,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListCustomers(c *gin.Context) {
	resp, err := s.customerSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetCustomerByID(c *gin.Context) {
	resp, err := s.customerSvc.GetByID(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteCustomer(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if err := s.customerSvc.Delete(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	s.log.Info("customer deleted", zap.String("customer_id", id))
	c.Status(http.StatusNoContent)
}

type addPropertyRequest struct {
	Address   string              `json:"address" validate:"required"`
	City      string              `json:"city"`
	State     string              `json:"state"`
	ZipCode   string              `json:"zip_code"`
	FeeAmount decimal.NullDecimal `json:"fee_amount"`
	IsPrimary bool                `json:"is_primary"`
}

func (s *Server) AddProperty(c *gin.Context) {
	var req addPropertyRequest
	if err := bindJSON(c, &req); err != nil {
		AbortWithError(c, err)
		return
	}
	if req.FeeAmount.Valid && req.FeeAmount.Decimal.IsNegative() {
		AbortWithError(c, newValidationError("fee_amount", "invalid_fee_amount", "fee_amount cannot be negative"))
		return
	}

	resp, err := s.customerSvc.AddProperty(c.Request.Context(), customerdomain.AddPropertyRequest{
		CustomerID: strings.TrimSpace(c.Param("id")),
		Address:    strings.TrimSpace(req.Address),
		City:       strings.TrimSpace(req.City),
		State:      strings.TrimSpace(req.State),
		ZipCode:    strings.TrimSpace(req.ZipCode),
		FeeAmount:  req.FeeAmount,
		IsPrimary:  req.IsPrimary,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteProperty(c *gin.Context) {
	err := s.customerSvc.DeleteProperty(
		c.Request.Context(),
		strings.TrimSpace(c.Param("id")),
		strings.TrimSpace(c.Param("propertyId")),
	)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
