package customer

import (
	"github.com/sagarpandeyprofessional/next-version-keasy-sub003/internal/customer/service"
	"go.uber.org/fx"
)

var Module = fx.Module("customer.service",
	fx.Provide(service.New),
)
