package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	settingsdomain "github.com/smallbiznis/propbill/internal/settings/domain"
)

type updateSettingsRequest struct {
	SenderName          *string `json:"sender_name"`
	SenderEmail         *string `json:"sender_email" validate:"omitempty,email"`
	DefaultTemplateName *string `json:"default_template_name"`
}

func (s *Server) GetSettings(c *gin.Context) {
	resp, err := s.settingsSvc.Get(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateSettings(c *gin.Context) {
	var req updateSettingsRequest
	if err := bindJSON(c, &req); err != nil {
		AbortWithError(c, err)
		return
	}

	ctx := c.Request.Context()
	if req.DefaultTemplateName != nil && *req.DefaultTemplateName != "" {
		if _, err := s.templateSvc.Load(ctx, *req.DefaultTemplateName); err != nil {
			AbortWithError(c, err)
			return
		}
	}

	resp, err := s.settingsSvc.Update(ctx, settingsdomain.UpdateRequest{
		SenderName:          req.SenderName,
		SenderEmail:         req.SenderEmail,
		DefaultTemplateName: req.DefaultTemplateName,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
