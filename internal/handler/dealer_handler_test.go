package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/lotscout/lotscout-go-api/internal/dto"
	"github.com/lotscout/lotscout-go-api/internal/handler"
)

type mockDealerService struct {
	prefs       dto.PreferencesResponse
	lastPayload dto.PreferencesRequest
	err         error
}

func (m *mockDealerService) GetPreferences(_ context.Context, dealerID uint) (dto.PreferencesResponse, error) {
	if m.err != nil {
		return dto.PreferencesResponse{}, m.err
	}
	m.prefs.DealerID = dealerID
	return m.prefs, nil
}

func (m *mockDealerService) UpdatePreferences(_ context.Context, dealerID uint, payload dto.PreferencesRequest) (dto.PreferencesResponse, error) {
	m.lastPayload = payload
	if m.err != nil {
		return dto.PreferencesResponse{}, m.err
	}
	return dto.PreferencesResponse{
		DealerID:   dealerID,
		Makes:      payload.Makes,
		MinYear:    payload.MinYear,
		MaxMileage: payload.MaxMileage,
		MaxBidGBP:  payload.MaxBidGBP,
		Locations:  payload.Locations,
	}, nil
}

func newDealerTestApp(svc *mockDealerService, dealerID uint) *fiber.App {
	app := fiber.New()
	group := app.Group("/api/v1/dealer", func(c *fiber.Ctx) error {
		if dealerID > 0 {
			c.Locals("dealer_id", dealerID)
		}
		return c.Next()
	})
	handler.NewDealerHandler(svc, zerolog.New(io.Discard)).Register(group)
	return app
}

func TestDealerHandler_GetPreferences(t *testing.T) {
	svc := &mockDealerService{prefs: dto.PreferencesResponse{Makes: []string{"BMW"}, MaxBidGBP: 20000}}
	app := newDealerTestApp(svc, 7)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/dealer/preferences", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var response struct {
		Success bool                    `json:"success"`
		Data    dto.PreferencesResponse `json:"data"`
	}
	decodeResponse(t, resp, &response)
	require.True(t, response.Success)
	require.Equal(t, uint(7), response.Data.DealerID)
	require.Equal(t, []string{"BMW"}, response.Data.Makes)
}

func TestDealerHandler_UpdatePreferences(t *testing.T) {
	svc := &mockDealerService{}
	app := newDealerTestApp(svc, 7)

	payload := dto.PreferencesRequest{Makes: []string{"Audi"}, MinYear: 2017, MaxBidGBP: 18000}
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPut, "/api/v1/dealer/preferences", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, []string{"Audi"}, svc.lastPayload.Makes)
	require.Equal(t, 2017, svc.lastPayload.MinYear)
}

func TestDealerHandler_RequiresAuthentication(t *testing.T) {
	svc := &mockDealerService{}
	app := newDealerTestApp(svc, 0)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/dealer/preferences", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func decodeResponse(t *testing.T, resp *http.Response, target interface{}) {
	t.Helper()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	require.NoError(t, json.Unmarshal(data, target))
}
