package billing

import (
	"github.com/redis/go-redis/v9"
	"github.com/sagarpandeyprofessional/next-version-keasy-sub003/internal/billing/domain"
	"github.com/sagarpandeyprofessional/next-version-keasy-sub003/internal/billing/gateway/toss"
	"github.com/sagarpandeyprofessional/next-version-keasy-sub003/internal/billing/reconcile"
	"github.com/sagarpandeyprofessional/next-version-keasy-sub003/internal/billing/repository"
	billingservice "github.com/sagarpandeyprofessional/next-version-keasy-sub003/internal/billing/service"
	"github.com/sagarpandeyprofessional/next-version-keasy-sub003/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("billing.service",
	fx.Provide(repository.Provide),
	fx.Provide(NewGateway),
	fx.Provide(func(client *redis.Client, log *zap.Logger) reconcile.Queue {
		return reconcile.NewRedisQueue(client, log)
	}),
	fx.Provide(billingservice.NewOrchestrator),
)

func NewGateway(cfg config.Config) (domain.Gateway, error) {
	return toss.NewFactory().NewAdapter(domain.AdapterConfig{
		BaseURL:   cfg.Gateway.BaseURL,
		SecretKey: cfg.Gateway.SecretKey,
		ClientKey: cfg.Gateway.ClientKey,
	})
}
