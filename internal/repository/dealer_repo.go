package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/lotscout/lotscout-go-api/internal/models"
)

// DealerRepository exposes persistence helpers for dealers and their
// matching preferences.
type DealerRepository interface {
	GetByID(ctx context.Context, id uint) (models.Dealer, error)
	ListActive(ctx context.Context) ([]models.Dealer, error)
	GetPreferences(ctx context.Context, dealerID uint) (models.DealerPreferences, error)
	SavePreferences(ctx context.Context, prefs *models.DealerPreferences) error
}

// NewDealerRepository constructs a dealer repository.
func NewDealerRepository(db *gorm.DB) DealerRepository {
	return &dealerRepository{db: db}
}

type dealerRepository struct {
	db *gorm.DB
}

func (r *dealerRepository) GetByID(ctx context.Context, id uint) (models.Dealer, error) {
	var dealer models.Dealer
	err := r.db.WithContext(ctx).
		Preload("Preferences").
		First(&dealer, id).Error
	if err != nil {
		return models.Dealer{}, err
	}
	return dealer, nil
}

// ListActive returns every active dealer with preferences preloaded; these
// are the dealers the pipeline matches against.
func (r *dealerRepository) ListActive(ctx context.Context) ([]models.Dealer, error) {
	var dealers []models.Dealer
	err := r.db.WithContext(ctx).
		Preload("Preferences").
		Where("active = ?", true).
		Find(&dealers).Error
	return dealers, err
}

func (r *dealerRepository) GetPreferences(ctx context.Context, dealerID uint) (models.DealerPreferences, error) {
	var prefs models.DealerPreferences
	err := r.db.WithContext(ctx).
		Where("dealer_id = ?", dealerID).
		First(&prefs).Error
	if err != nil {
		return models.DealerPreferences{}, err
	}
	return prefs, nil
}

func (r *dealerRepository) SavePreferences(ctx context.Context, prefs *models.DealerPreferences) error {
	var existing models.DealerPreferences
	err := r.db.WithContext(ctx).
		Where("dealer_id = ?", prefs.DealerID).
		First(&existing).Error
	if err == nil {
		prefs.ID = existing.ID
		prefs.CreatedAt = existing.CreatedAt
		return r.db.WithContext(ctx).Save(prefs).Error
	}
	return r.db.WithContext(ctx).Create(prefs).Error
}
