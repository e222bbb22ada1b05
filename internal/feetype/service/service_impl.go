package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"github.com/smallbiznis/propbill/internal/clock"
	"github.com/smallbiznis/propbill/internal/feetype/domain"
	"github.com/smallbiznis/propbill/pkg/db"
	"github.com/smallbiznis/propbill/pkg/db/option"
	"github.com/smallbiznis/propbill/pkg/repository"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock

	feetyperepo repository.Repository[domain.FeeType]
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("feetype.service"),
		genID: p.GenID,
		clock: p.Clock,

		feetyperepo: repository.ProvideStore[domain.FeeType](p.DB),
	}
}

func (s *Service) List(ctx context.Context) ([]domain.FeeType, error) {
	items, err := s.feetyperepo.Find(ctx, &domain.FeeType{}, option.ApplyOrder("name", option.ASC))
	if err != nil {
		return nil, err
	}
	out := make([]domain.FeeType, 0, len(items))
	for _, item := range items {
		out = append(out, *item)
	}
	return out, nil
}

func (s *Service) Create(ctx context.Context, name string) (domain.FeeType, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.FeeType{}, domain.ErrInvalidName
	}

	existing, err := s.feetyperepo.FindOne(ctx, &domain.FeeType{Name: name})
	if err != nil {
		return domain.FeeType{}, err
	}
	if existing != nil {
		return domain.FeeType{}, domain.ErrDuplicate
	}

	item := domain.FeeType{
		ID:        s.genID.Generate(),
		Name:      name,
		Code:      slug.Make(name),
		CreatedAt: s.clock.Now(),
	}
	if err := s.feetyperepo.Create(ctx, &item); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.FeeType{}, domain.ErrDuplicate
		}
		return domain.FeeType{}, err
	}
	return item, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	feeTypeID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil || feeTypeID == 0 {
		return domain.ErrInvalidID
	}
	affected, err := s.feetyperepo.Delete(ctx, feeTypeID)
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *Service) EnsureDefaults(ctx context.Context) (int, error) {
	created := 0
	for _, name := range domain.DefaultNames {
		_, err := s.Create(ctx, name)
		switch {
		case err == nil:
			created++
		case err == domain.ErrDuplicate:
		default:
			return created, err
		}
	}
	if created > 0 {
		s.log.Info("seeded fee types", zap.Int("count", created))
	}
	return created, nil
}
