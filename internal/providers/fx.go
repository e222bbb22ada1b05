package providers

import (
	"github.com/smallbiznis/propbill/internal/providers/email"
	"github.com/smallbiznis/propbill/internal/providers/pdf"
	"go.uber.org/fx"
)

var Module = fx.Module("providers",
	email.Module,
	pdf.Module,
)
