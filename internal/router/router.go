package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/lotscout/lotscout-go-api/internal/config"
	"github.com/lotscout/lotscout-go-api/internal/handler"
	"github.com/lotscout/lotscout-go-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	ListingHandler    *handler.ListingHandler
	DealerHandler     *handler.DealerHandler
	MatchHandler      *handler.MatchHandler
	PredictionHandler *handler.PredictionHandler
	JWTMiddleware     fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	// Common v1 group for health & headers
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))

	app.Get("/metrics", observability.MetricsHandler())

	// Use provided JWT middleware, or a no-op if nil
	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	// Listings are readable without dealer context
	if deps.ListingHandler != nil {
		listings := api.Group("/listings")
		deps.ListingHandler.Register(listings)
	}

	// Dealer preferences
	if deps.DealerHandler != nil {
		dealer := api.Group("/dealer", jwtMiddleware)
		deps.DealerHandler.Register(dealer)
	}

	// Ranked match feed & alert history
	if deps.MatchHandler != nil {
		matches := api.Group("/matches", jwtMiddleware)
		deps.MatchHandler.Register(matches)
	}

	// Market-fit predictions
	if deps.PredictionHandler != nil {
		predictions := api.Group("/predictions", jwtMiddleware)
		deps.PredictionHandler.Register(predictions)
	}
}
