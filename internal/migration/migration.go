package migration

import (
	billingdomain "github.com/sagarpandeyprofessional/next-version-keasy-sub003/internal/billing/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("migration",
	fx.Invoke(Run),
)

func Run(db *gorm.DB, log *zap.Logger) error {
	if err := db.AutoMigrate(&billingdomain.SubscriptionRecord{}); err != nil {
		return err
	}
	log.Info("migrations applied")
	return nil
}
