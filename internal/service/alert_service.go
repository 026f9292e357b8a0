package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"

	"github.com/lotscout/lotscout-go-api/internal/models"
	"github.com/lotscout/lotscout-go-api/internal/observability"
	"github.com/lotscout/lotscout-go-api/internal/repository"
	"github.com/lotscout/lotscout-go-api/pkg/mailer"
)

const hotDealSubject = "lotscout.alerts.hotdeal"

// AlertService dispatches instant hot-deal alerts: an email to the dealer
// and a NATS event for any subscribed surfaces.
type AlertService interface {
	SendHotDealAlert(ctx context.Context, dealer models.Dealer, deal ScoredHotDeal, runID string) error
}

type alertService struct {
	alerts repository.AlertRepository
	mail   mailer.Mailer
	nats   *nats.Conn
	logger zerolog.Logger
	now    func() time.Time
}

// NewAlertService constructs the alert sender. Both mail and nats may be nil
// in development; nil channels are skipped.
func NewAlertService(alerts repository.AlertRepository, mail mailer.Mailer, natsConn *nats.Conn, logger zerolog.Logger) AlertService {
	return &alertService{
		alerts: alerts,
		mail:   mail,
		nats:   natsConn,
		logger: logger.With().Str("component", "alert_service").Logger(),
		now:    time.Now,
	}
}

type hotDealEvent struct {
	DealerID  uint      `json:"dealer_id"`
	ListingID uint      `json:"listing_id"`
	Make      string    `json:"make"`
	Model     string    `json:"model"`
	Score     int       `json:"score"`
	Urgency   string    `json:"urgency"`
	RunID     string    `json:"run_id"`
	SentAt    time.Time `json:"sent_at"`
}

func (s *alertService) SendHotDealAlert(ctx context.Context, dealer models.Dealer, deal ScoredHotDeal, runID string) error {
	listing := deal.Input.Listing
	sentAt := s.now()

	if s.mail != nil {
		subject := fmt.Sprintf("Hot deal: %d %s %s at £%.0f", listing.Year, listing.Make, listing.Model, listing.PriceGBP)
		if err := s.mail.Send(ctx, mailer.Email{
			To:       dealer.Email,
			Subject:  subject,
			HTMLBody: renderHotDealEmail(listing, deal.Result),
		}); err != nil {
			return fmt.Errorf("send hot deal email: %w", err)
		}
		observability.EmailsSent().WithLabelValues("hot_deal").Inc()
	}

	if s.nats != nil {
		event := hotDealEvent{
			DealerID:  dealer.ID,
			ListingID: listing.ID,
			Make:      listing.Make,
			Model:     listing.Model,
			Score:     deal.Result.Score,
			Urgency:   deal.Result.Urgency,
			RunID:     runID,
			SentAt:    sentAt,
		}
		if payload, err := json.Marshal(event); err == nil {
			if err := s.nats.Publish(hotDealSubject, payload); err != nil {
				s.logger.Warn().Err(err).Msg("failed to publish hot deal event")
			}
		}
	}

	alert := models.HotDealAlert{
		DealerID:  dealer.ID,
		ListingID: listing.ID,
		Score:     deal.Result.Score,
		Urgency:   deal.Result.Urgency,
		Reasons:   datatypes.NewJSONSlice(deal.Result.Reasons),
		RunID:     runID,
		SentAt:    sentAt,
	}
	if err := s.alerts.Save(ctx, &alert); err != nil {
		s.logger.Error().Err(err).Uint("dealer_id", dealer.ID).Msg("failed to log hot deal alert")
	}

	s.logger.Info().
		Uint("dealer_id", dealer.ID).
		Uint("listing_id", listing.ID).
		Int("score", deal.Result.Score).
		Str("urgency", deal.Result.Urgency).
		Msg("hot deal alert sent")

	return nil
}
