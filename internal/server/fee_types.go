package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

type createFeeTypeRequest struct {
	Name string `json:"name" validate:"required"`
}

func (s *Server) ListFeeTypes(c *gin.Context) {
	resp, err := s.feeTypeSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) CreateFeeType(c *gin.Context) {
	var req createFeeTypeRequest
	if err := bindJSON(c, &req); err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.feeTypeSvc.Create(c.Request.Context(), strings.TrimSpace(req.Name))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteFeeType(c *gin.Context) {
	if err := s.feeTypeSvc.Delete(c.Request.Context(), strings.TrimSpace(c.Param("id"))); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
