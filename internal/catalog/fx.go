package catalog

import (
	"github.com/sagarpandeyprofessional/next-version-keasy-sub003/internal/catalog/service"
	"go.uber.org/fx"
)

var Module = fx.Module("catalog.service",
	fx.Provide(service.New),
)
