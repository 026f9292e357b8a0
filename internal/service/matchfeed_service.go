package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/lotscout/lotscout-go-api/internal/dto"
	"github.com/lotscout/lotscout-go-api/internal/repository"
)

// MatchFeedService serves a dealer's ranked match feed and alert history.
type MatchFeedService interface {
	GetFeed(ctx context.Context, dealerID uint, limit int) (dto.MatchFeedResponse, error)
	GetAlerts(ctx context.Context, dealerID uint, limit int) ([]dto.HotDealAlertResponse, error)
}

type matchFeedService struct {
	matches  repository.MatchRepository
	alerts   repository.AlertRepository
	cache    *redis.Client
	cacheTTL time.Duration
	logger   zerolog.Logger
}

// NewMatchFeedService builds the feed aggregator. The feed is cached per
// dealer; pipeline runs are far less frequent than dashboard loads.
func NewMatchFeedService(matches repository.MatchRepository, alerts repository.AlertRepository, cache *redis.Client, ttl time.Duration, logger zerolog.Logger) MatchFeedService {
	return &matchFeedService{
		matches:  matches,
		alerts:   alerts,
		cache:    cache,
		cacheTTL: ttl,
		logger:   logger.With().Str("component", "matchfeed_service").Logger(),
	}
}

func (s *matchFeedService) GetFeed(ctx context.Context, dealerID uint, limit int) (dto.MatchFeedResponse, error) {
	cacheKey := fmt.Sprintf("matchfeed:dealer:%d:%d", dealerID, limit)

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey).Result(); err == nil {
			var response dto.MatchFeedResponse
			if unmarshalErr := json.Unmarshal([]byte(cached), &response); unmarshalErr == nil {
				s.logger.Debug().Uint("dealer_id", dealerID).Msg("match feed cache hit")
				return response, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read match feed cache")
		}
	}

	matches, err := s.matches.ListForDealer(ctx, dealerID, limit)
	if err != nil {
		return dto.MatchFeedResponse{}, err
	}

	response := dto.MatchFeedResponse{DealerID: dealerID, Matches: make([]dto.MatchResponse, 0, len(matches))}
	for _, match := range matches {
		response.Matches = append(response.Matches, dto.NewMatchResponse(match))
	}

	if s.cache != nil {
		if payload, err := json.Marshal(response); err == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store match feed cache")
			}
		}
	}

	return response, nil
}

func (s *matchFeedService) GetAlerts(ctx context.Context, dealerID uint, limit int) ([]dto.HotDealAlertResponse, error) {
	alerts, err := s.alerts.ListForDealer(ctx, dealerID, limit)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.HotDealAlertResponse, 0, len(alerts))
	for _, alert := range alerts {
		responses = append(responses, dto.NewHotDealAlertResponse(alert))
	}
	return responses, nil
}
