package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RunToday executes the bill-due sweep immediately and reports its summary.
func (s *Server) RunToday(c *gin.Context) {
	if s.billing == nil {
		AbortWithError(c, ErrServiceUnavailable)
		return
	}

	summary, err := s.billing.BillDue(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.log.Info("bill-due sweep triggered over http",
		zap.Int("customers", summary.Customers),
		zap.Int("generated", summary.Generated),
		zap.Int("skipped", summary.Skipped),
		zap.Int("failed", summary.Failed),
	)
	c.JSON(http.StatusOK, gin.H{"data": summary})
}
