package handler

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/lotscout/lotscout-go-api/internal/dto"
	"github.com/lotscout/lotscout-go-api/internal/service"
	"github.com/lotscout/lotscout-go-api/internal/utils"
)

// PredictionHandler exposes market-fit predictions for arbitrary vehicles.
type PredictionHandler struct {
	service  service.MarketFitService
	validate *validator.Validate
	logger   zerolog.Logger
}

// NewPredictionHandler constructs the handler.
func NewPredictionHandler(service service.MarketFitService, validate *validator.Validate, logger zerolog.Logger) *PredictionHandler {
	return &PredictionHandler{
		service:  service,
		validate: validate,
		logger:   logger.With().Str("component", "prediction_handler").Logger(),
	}
}

// Register wires the prediction route behind the JWT middleware.
func (h *PredictionHandler) Register(router fiber.Router) {
	router.Post("", h.predict)
}

func (h *PredictionHandler) predict(c *fiber.Ctx) error {
	if _, ok := dealerIDFromContext(c); !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	var payload dto.PredictionRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}
	if err := h.validate.Struct(payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid prediction payload")
	}

	prediction, err := h.service.Predict(c.Context(), service.PredictionInput{
		Make:      payload.Make,
		Model:     payload.Model,
		Year:      payload.Year,
		PriceGBP:  payload.PriceGBP,
		Mileage:   payload.Mileage,
		Condition: payload.Condition,
		Region:    payload.Region,
	})
	if err != nil {
		h.logger.Error().Err(err).Str("make", payload.Make).Str("model", payload.Model).Msg("failed to predict market fit")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to predict market fit")
	}

	return utils.SendSuccess(c, "prediction generated", prediction)
}
