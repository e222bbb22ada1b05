package service

import (
	"context"
	"net/mail"
	"path/filepath"
	"strings"
	"time"

	"github.com/smallbiznis/propbill/internal/cache"
	"github.com/smallbiznis/propbill/internal/clock"
	"github.com/smallbiznis/propbill/internal/config"
	"github.com/smallbiznis/propbill/internal/settings/domain"
	"github.com/smallbiznis/propbill/pkg/repository"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	settingsCacheKey = "settings"
	settingsCacheTTL = time.Minute
)

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	Clock     clock.Clock
	Invoicing *config.InvoicingConfigHolder
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	clock     clock.Clock
	invoicing *config.InvoicingConfigHolder

	settingsrepo repository.Repository[domain.Settings]
	cache        cache.Cache[string, domain.Settings]
}

func New(p Params) domain.Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("settings.service"),
		clock:     p.Clock,
		invoicing: p.Invoicing,

		settingsrepo: repository.ProvideStore[domain.Settings](p.DB),
		cache:        cache.NewTTLCache[string, domain.Settings](),
	}
}

func (s *Service) Get(ctx context.Context) (domain.Settings, error) {
	if cached, ok := s.cache.Get(settingsCacheKey); ok {
		return cached, nil
	}

	item, err := s.settingsrepo.FirstOrCreate(ctx, &domain.Settings{ID: domain.SingletonID}, s.defaults())
	if err != nil {
		return domain.Settings{}, err
	}

	s.cache.Set(settingsCacheKey, *item, settingsCacheTTL)
	return *item, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateRequest) (domain.Settings, error) {
	current, err := s.Get(ctx)
	if err != nil {
		return domain.Settings{}, err
	}

	if req.SenderName != nil {
		name := strings.TrimSpace(*req.SenderName)
		if name == "" {
			return domain.Settings{}, domain.ErrInvalidSenderName
		}
		current.SenderName = name
	}
	if req.SenderEmail != nil {
		email := strings.TrimSpace(*req.SenderEmail)
		if email != "" {
			if _, err := mail.ParseAddress(email); err != nil {
				return domain.Settings{}, domain.ErrInvalidSenderEmail
			}
		}
		current.SenderEmail = email
	}
	if req.DefaultTemplateName != nil {
		name := strings.TrimSpace(*req.DefaultTemplateName)
		if name == "" || filepath.Base(name) != name || !strings.EqualFold(filepath.Ext(name), ".docx") {
			return domain.Settings{}, domain.ErrInvalidTemplate
		}
		current.DefaultTemplateName = name
	}
	current.UpdatedAt = s.clock.Now()

	err = s.settingsrepo.Update(ctx, domain.SingletonID, map[string]any{
		"sender_name":           current.SenderName,
		"sender_email":          current.SenderEmail,
		"default_template_name": current.DefaultTemplateName,
		"updated_at":            current.UpdatedAt,
	})
	if err != nil {
		return domain.Settings{}, err
	}

	s.cache.Delete(settingsCacheKey)
	s.log.Info("settings updated", zap.String("sender_name", current.SenderName), zap.String("default_template", current.DefaultTemplateName))
	return current, nil
}

func (s *Service) defaults() *domain.Settings {
	senderName := domain.DefaultSenderName
	if s.invoicing != nil {
		senderName = s.invoicing.Get().FallbackSenderName
	}
	return &domain.Settings{
		ID:                  domain.SingletonID,
		SenderName:          senderName,
		DefaultTemplateName: domain.DefaultTemplateName,
		UpdatedAt:           s.clock.Now(),
	}
}
