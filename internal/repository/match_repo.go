package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/lotscout/lotscout-go-api/internal/models"
)

// MatchRepository persists scoring-run matches for analytics and dealer feeds.
type MatchRepository interface {
	SaveBatch(ctx context.Context, matches []models.VehicleMatch) error
	ListForDealer(ctx context.Context, dealerID uint, limit int) ([]models.VehicleMatch, error)
}

// NewMatchRepository constructs a match repository.
func NewMatchRepository(db *gorm.DB) MatchRepository {
	return &matchRepository{db: db}
}

type matchRepository struct {
	db *gorm.DB
}

func (r *matchRepository) SaveBatch(ctx context.Context, matches []models.VehicleMatch) error {
	if len(matches) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(matches, 50).Error
}

func (r *matchRepository) ListForDealer(ctx context.Context, dealerID uint, limit int) ([]models.VehicleMatch, error) {
	if limit <= 0 || limit > 100 {
		limit = 25
	}

	var matches []models.VehicleMatch
	err := r.db.WithContext(ctx).
		Preload("Listing").
		Preload("Classification").
		Where("dealer_id = ?", dealerID).
		Order("match_score DESC, created_at DESC").
		Limit(limit).
		Find(&matches).Error
	return matches, err
}
