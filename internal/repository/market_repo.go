package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/lotscout/lotscout-go-api/internal/models"
)

// MarketRepository looks up market intelligence rows maintained by the
// external data feed.
type MarketRepository interface {
	Lookup(ctx context.Context, make, model, region string) (models.MarketIntelligence, error)
	Save(ctx context.Context, intel *models.MarketIntelligence) error
}

// NewMarketRepository constructs a market intelligence repository.
func NewMarketRepository(db *gorm.DB) MarketRepository {
	return &marketRepository{db: db}
}

type marketRepository struct {
	db *gorm.DB
}

func (r *marketRepository) Lookup(ctx context.Context, make, model, region string) (models.MarketIntelligence, error) {
	var intel models.MarketIntelligence
	err := r.db.WithContext(ctx).
		Where("make = ? AND model = ? AND region = ?", make, model, region).
		First(&intel).Error
	if err != nil {
		return models.MarketIntelligence{}, err
	}
	return intel, nil
}

func (r *marketRepository) Save(ctx context.Context, intel *models.MarketIntelligence) error {
	return r.db.WithContext(ctx).Save(intel).Error
}
