package repository

import (
	"context"
	"errors"

	"github.com/sagarpandeyprofessional/next-version-keasy-sub003/internal/billing/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ledgerRepo struct {
	db *gorm.DB
}

func Provide(db *gorm.DB) domain.LedgerRepository {
	return &ledgerRepo{db: db}
}

// InsertIfAbsent appends a record, relying on the order_id unique
// index. A conflicting order_id reports ErrDuplicateOrder and leaves
// the stored row untouched.
func (r *ledgerRepo) InsertIfAbsent(ctx context.Context, db *gorm.DB, record *domain.SubscriptionRecord) error {
	if db == nil {
		db = r.db
	}

	result := db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "order_id"}},
			DoNothing: true,
		}).
		Create(record)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrDuplicateOrder
	}
	return nil
}

func (r *ledgerRepo) FindByOrderID(ctx context.Context, db *gorm.DB, orderID string) (*domain.SubscriptionRecord, error) {
	if db == nil {
		db = r.db
	}

	var record domain.SubscriptionRecord
	if err := db.WithContext(ctx).
		Where("order_id = ?", orderID).
		First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

func (r *ledgerRepo) ListByUserID(ctx context.Context, db *gorm.DB, userID string) ([]domain.SubscriptionRecord, error) {
	if db == nil {
		db = r.db
	}

	var records []domain.SubscriptionRecord
	if err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("approved_at DESC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}
