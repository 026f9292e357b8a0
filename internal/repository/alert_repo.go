package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/lotscout/lotscout-go-api/internal/models"
)

// AlertRepository logs dispatched hot-deal alerts.
type AlertRepository interface {
	Save(ctx context.Context, alert *models.HotDealAlert) error
	ListForDealer(ctx context.Context, dealerID uint, limit int) ([]models.HotDealAlert, error)
}

// NewAlertRepository constructs an alert repository.
func NewAlertRepository(db *gorm.DB) AlertRepository {
	return &alertRepository{db: db}
}

type alertRepository struct {
	db *gorm.DB
}

func (r *alertRepository) Save(ctx context.Context, alert *models.HotDealAlert) error {
	return r.db.WithContext(ctx).Create(alert).Error
}

func (r *alertRepository) ListForDealer(ctx context.Context, dealerID uint, limit int) ([]models.HotDealAlert, error) {
	if limit <= 0 || limit > 100 {
		limit = 25
	}

	var alerts []models.HotDealAlert
	err := r.db.WithContext(ctx).
		Where("dealer_id = ?", dealerID).
		Order("created_at DESC").
		Limit(limit).
		Find(&alerts).Error
	return alerts, err
}
