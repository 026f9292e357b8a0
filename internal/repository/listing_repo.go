package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/lotscout/lotscout-go-api/internal/models"
)

// ListingQuery narrows listing lookups.
type ListingQuery struct {
	Make    string
	MaxAge  int
	Limit   int
	Offset  int
	Verdict string
}

// ListingRepository exposes persistence helpers for vehicle listings and
// their classifications.
type ListingRepository interface {
	Upsert(ctx context.Context, listing *models.VehicleListing) (bool, error)
	List(ctx context.Context, query ListingQuery) ([]models.VehicleListing, int64, error)
	GetByID(ctx context.Context, id uint) (models.VehicleListing, error)
	ListUnclassified(ctx context.Context) ([]models.VehicleListing, error)
	ListClassified(ctx context.Context) ([]models.VehicleListing, error)
	SaveClassification(ctx context.Context, classification *models.AIClassification) error
}

// NewListingRepository constructs a listing repository.
func NewListingRepository(db *gorm.DB) ListingRepository {
	return &listingRepository{db: db}
}

type listingRepository struct {
	db *gorm.DB
}

// Upsert inserts a listing unless one with the same source site and lot
// number already exists. Reports whether a row was created.
func (r *listingRepository) Upsert(ctx context.Context, listing *models.VehicleListing) (bool, error) {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "source_site"}, {Name: "lot_number"}},
			DoNothing: true,
		}).
		Create(listing)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *listingRepository) List(ctx context.Context, query ListingQuery) ([]models.VehicleListing, int64, error) {
	tx := r.db.WithContext(ctx).Model(&models.VehicleListing{})
	if query.Make != "" {
		tx = tx.Where("make = ?", query.Make)
	}
	if query.MaxAge > 0 {
		tx = tx.Where("year >= ?", time.Now().Year()-query.MaxAge)
	}
	if query.Verdict != "" {
		tx = tx.Where("EXISTS (SELECT 1 FROM ai_classifications WHERE ai_classifications.listing_id = vehicle_listings.id AND ai_classifications.verdict = ?)", query.Verdict)
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	limit := query.Limit
	if limit <= 0 || limit > 100 {
		limit = 25
	}

	var listings []models.VehicleListing
	err := tx.Preload("Classifications").
		Order("scraped_at DESC").
		Limit(limit).
		Offset(query.Offset).
		Find(&listings).Error
	if err != nil {
		return nil, 0, err
	}

	return listings, total, nil
}

func (r *listingRepository) GetByID(ctx context.Context, id uint) (models.VehicleListing, error) {
	var listing models.VehicleListing
	err := r.db.WithContext(ctx).
		Preload("Classifications").
		First(&listing, id).Error
	if err != nil {
		return models.VehicleListing{}, err
	}
	return listing, nil
}

// ListUnclassified returns listings without any classification pass yet.
func (r *listingRepository) ListUnclassified(ctx context.Context) ([]models.VehicleListing, error) {
	var listings []models.VehicleListing
	err := r.db.WithContext(ctx).
		Where("NOT EXISTS (SELECT 1 FROM ai_classifications WHERE ai_classifications.listing_id = vehicle_listings.id)").
		Find(&listings).Error
	return listings, err
}

// ListClassified returns listings with at least one classification, with the
// classifications preloaded.
func (r *listingRepository) ListClassified(ctx context.Context) ([]models.VehicleListing, error) {
	var listings []models.VehicleListing
	err := r.db.WithContext(ctx).
		Preload("Classifications").
		Where("EXISTS (SELECT 1 FROM ai_classifications WHERE ai_classifications.listing_id = vehicle_listings.id)").
		Find(&listings).Error
	return listings, err
}

func (r *listingRepository) SaveClassification(ctx context.Context, classification *models.AIClassification) error {
	if classification.ListingID == 0 {
		return errors.New("classification requires a listing id")
	}
	return r.db.WithContext(ctx).Create(classification).Error
}
