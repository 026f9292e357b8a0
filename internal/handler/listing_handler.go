package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/lotscout/lotscout-go-api/internal/repository"
	"github.com/lotscout/lotscout-go-api/internal/service"
	"github.com/lotscout/lotscout-go-api/internal/utils"
)

// ListingHandler wires listing HTTP routes.
type ListingHandler struct {
	service service.ListingService
	logger  zerolog.Logger
}

// NewListingHandler constructs the handler.
func NewListingHandler(service service.ListingService, logger zerolog.Logger) *ListingHandler {
	return &ListingHandler{
		service: service,
		logger:  logger.With().Str("component", "listing_handler").Logger(),
	}
}

// Register attaches listing endpoints to the router group.
func (h *ListingHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Get("/:id", h.get)
}

func (h *ListingHandler) list(c *fiber.Ctx) error {
	query := repository.ListingQuery{
		Make:    c.Query("make"),
		Verdict: c.Query("verdict"),
		MaxAge:  c.QueryInt("max_age", 0),
		Limit:   c.QueryInt("limit", 25),
		Offset:  c.QueryInt("offset", 0),
	}

	listings, err := h.service.List(c.Context(), query)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list listings")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list listings")
	}

	return utils.SendSuccess(c, "listings retrieved", listings)
}

func (h *ListingHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	listing, err := h.service.Get(c.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrListingNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "listing not found")
		}
		h.logger.Error().Err(err).Uint("listing_id", id).Msg("failed to get listing")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to get listing")
	}

	return utils.SendSuccess(c, "listing retrieved", listing)
}
