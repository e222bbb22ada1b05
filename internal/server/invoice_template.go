package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/propbill/internal/docx"
)

func (s *Server) ListInvoiceTemplates(c *gin.Context) {
	resp, err := s.templateSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) InspectInvoiceTemplate(c *gin.Context) {
	resp, err := s.templateSvc.Inspect(c.Request.Context(), strings.TrimSpace(c.Param("name")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DownloadInvoiceTemplate(c *gin.Context) {
	loaded, err := s.templateSvc.Load(c.Request.Context(), strings.TrimSpace(c.Param("name")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	writeAttachment(c, loaded.Name, docx.MIMEType, loaded.Data)
}
