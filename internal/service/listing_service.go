package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/lotscout/lotscout-go-api/internal/dto"
	"github.com/lotscout/lotscout-go-api/internal/repository"
)

// ErrListingNotFound indicates the listing cannot be located.
var ErrListingNotFound = errors.New("listing not found")

// ListingService exposes read access to scraped listings.
type ListingService interface {
	List(ctx context.Context, query repository.ListingQuery) (dto.ListingListResponse, error)
	Get(ctx context.Context, id uint) (dto.ListingResponse, error)
}

type listingService struct {
	listings repository.ListingRepository
	logger   zerolog.Logger
}

// NewListingService constructs the listing read service.
func NewListingService(listings repository.ListingRepository, logger zerolog.Logger) ListingService {
	return &listingService{
		listings: listings,
		logger:   logger.With().Str("component", "listing_service").Logger(),
	}
}

func (s *listingService) List(ctx context.Context, query repository.ListingQuery) (dto.ListingListResponse, error) {
	listings, total, err := s.listings.List(ctx, query)
	if err != nil {
		return dto.ListingListResponse{}, err
	}

	response := dto.ListingListResponse{Total: total, Listings: make([]dto.ListingResponse, 0, len(listings))}
	for _, listing := range listings {
		response.Listings = append(response.Listings, dto.NewListingResponse(listing))
	}
	return response, nil
}

func (s *listingService) Get(ctx context.Context, id uint) (dto.ListingResponse, error) {
	listing, err := s.listings.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ListingResponse{}, ErrListingNotFound
		}
		return dto.ListingResponse{}, err
	}
	return dto.NewListingResponse(listing), nil
}
