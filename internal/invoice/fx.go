package invoice

import (
	"github.com/smallbiznis/propbill/internal/invoice/render"
	"github.com/smallbiznis/propbill/internal/invoice/repository"
	"github.com/smallbiznis/propbill/internal/invoice/service"
	"go.uber.org/fx"
)

var Module = fx.Module("invoice.service",
	fx.Provide(repository.Provide),
	fx.Provide(render.NewAssembler),
	fx.Provide(service.NewService),
)
