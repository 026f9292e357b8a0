package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/lotscout/lotscout-go-api/internal/dto"
	"github.com/lotscout/lotscout-go-api/internal/service"
	"github.com/lotscout/lotscout-go-api/internal/utils"
)

// DealerHandler exposes the authenticated dealer's preference endpoints.
type DealerHandler struct {
	service service.DealerService
	logger  zerolog.Logger
}

// NewDealerHandler constructs the handler.
func NewDealerHandler(service service.DealerService, logger zerolog.Logger) *DealerHandler {
	return &DealerHandler{
		service: service,
		logger:  logger.With().Str("component", "dealer_handler").Logger(),
	}
}

// Register wires preference routes. The group is expected to sit behind the
// JWT middleware.
func (h *DealerHandler) Register(router fiber.Router) {
	router.Get("/preferences", h.getPreferences)
	router.Put("/preferences", h.updatePreferences)
}

func (h *DealerHandler) getPreferences(c *fiber.Ctx) error {
	dealerID, ok := dealerIDFromContext(c)
	if !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	prefs, err := h.service.GetPreferences(c.Context(), dealerID)
	if err != nil {
		h.logger.Error().Err(err).Uint("dealer_id", dealerID).Msg("failed to load preferences")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to load preferences")
	}

	return utils.SendSuccess(c, "preferences retrieved", prefs)
}

func (h *DealerHandler) updatePreferences(c *fiber.Ctx) error {
	dealerID, ok := dealerIDFromContext(c)
	if !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	var payload dto.PreferencesRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	prefs, err := h.service.UpdatePreferences(c.Context(), dealerID, payload)
	if err != nil {
		switch {
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, "invalid preferences payload")
		case errors.Is(err, service.ErrDealerNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "dealer not found")
		default:
			h.logger.Error().Err(err).Uint("dealer_id", dealerID).Msg("failed to update preferences")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to update preferences")
		}
	}

	return utils.SendSuccess(c, "preferences updated", prefs)
}
