package service

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/samber/lo"
	"github.com/smallbiznis/propbill/internal/docx"
	templatedomain "github.com/smallbiznis/propbill/internal/invoicetemplate/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log  *zap.Logger
	Repo templatedomain.Repository
}

type Service struct {
	log  *zap.Logger
	repo templatedomain.Repository
}

func NewService(p Params) templatedomain.Service {
	return &Service{
		log:  p.Log.Named("invoicetemplate.service"),
		repo: p.Repo,
	}
}

func (s *Service) List(ctx context.Context) ([]templatedomain.Template, error) {
	return s.repo.List(ctx)
}

func (s *Service) Load(ctx context.Context, name string) (*templatedomain.Loaded, error) {
	name, err := normalizeName(name)
	if err != nil {
		return nil, err
	}

	item, err := s.repo.Read(ctx, name)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, templatedomain.ErrNotFound
	}
	return item, nil
}

func (s *Service) Inspect(ctx context.Context, name string) (*templatedomain.Inspection, error) {
	item, err := s.Load(ctx, name)
	if err != nil {
		return nil, err
	}

	doc, err := docx.Open(item.Data)
	if err != nil {
		return nil, err
	}

	found := doc.Placeholders()
	missing, unknown := lo.Difference(templatedomain.Vocabulary, found)
	return &templatedomain.Inspection{
		Name:         item.Name,
		Placeholders: found,
		Missing:      missing,
		Unknown:      unknown,
		TableRows:    doc.TableRowCount(),
	}, nil
}

func (s *Service) EnsureDefault(ctx context.Context, name string) (bool, error) {
	name, err := normalizeName(name)
	if err != nil {
		return false, err
	}

	existing, err := s.repo.Read(ctx, name)
	if err != nil {
		return false, err
	}
	if existing != nil {
		return false, nil
	}

	data, err := defaultTemplate()
	if err != nil {
		return false, err
	}
	if err := s.repo.Write(ctx, name, data); err != nil {
		return false, err
	}

	s.log.Info("wrote default invoice template", zap.String("template", name))
	return true, nil
}

func normalizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || filepath.Base(name) != name || strings.HasPrefix(name, "~") {
		return "", templatedomain.ErrInvalidName
	}
	if !strings.EqualFold(filepath.Ext(name), ".docx") {
		return "", templatedomain.ErrInvalidName
	}
	return name, nil
}
