package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/lotscout/lotscout-go-api/internal/service"
	"github.com/lotscout/lotscout-go-api/internal/utils"
)

// MatchHandler serves the authenticated dealer's ranked match feed and
// hot-deal alert history.
type MatchHandler struct {
	service service.MatchFeedService
	logger  zerolog.Logger
}

// NewMatchHandler constructs the handler.
func NewMatchHandler(service service.MatchFeedService, logger zerolog.Logger) *MatchHandler {
	return &MatchHandler{
		service: service,
		logger:  logger.With().Str("component", "match_handler").Logger(),
	}
}

// Register wires match feed routes behind the JWT middleware.
func (h *MatchHandler) Register(router fiber.Router) {
	router.Get("/feed", h.feed)
	router.Get("/alerts", h.alerts)
}

func (h *MatchHandler) feed(c *fiber.Ctx) error {
	dealerID, ok := dealerIDFromContext(c)
	if !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	limit := c.QueryInt("limit", 25)
	feed, err := h.service.GetFeed(c.Context(), dealerID, limit)
	if err != nil {
		h.logger.Error().Err(err).Uint("dealer_id", dealerID).Msg("failed to load match feed")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to load match feed")
	}

	return utils.SendSuccess(c, "match feed retrieved", feed)
}

func (h *MatchHandler) alerts(c *fiber.Ctx) error {
	dealerID, ok := dealerIDFromContext(c)
	if !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	limit := c.QueryInt("limit", 25)
	alerts, err := h.service.GetAlerts(c.Context(), dealerID, limit)
	if err != nil {
		h.logger.Error().Err(err).Uint("dealer_id", dealerID).Msg("failed to load alerts")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to load alerts")
	}

	return utils.SendSuccess(c, "alerts retrieved", alerts)
}
