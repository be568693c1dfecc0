package httpapi

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/agrotm/weather-oracle/internal/cache"
	"github.com/agrotm/weather-oracle/internal/weather"
)

func newTestApp() *fiber.App {
	app := fiber.New()
	svc := weather.NewService(cache.NewMemory(), nil, nil, weather.DefaultTTLs())
	RegisterRoutes(app, svc, nil)
	return app
}

func expectStatus(t *testing.T, app *fiber.App, url string, want int) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, url, nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error for %s: %v", url, err)
	}
	if resp.StatusCode != want {
		t.Fatalf("%s: expected status %d, got %d", url, want, resp.StatusCode)
	}
}

// TestLocationValidation verifies that every weather endpoint rejects
// requests with neither a place query nor a coordinate pair.
func TestLocationValidation(t *testing.T) {
	app := newTestApp()

	endpoints := []string{
		"/api/v1/weather/current",
		"/api/v1/weather/forecast",
		"/api/v1/weather/alerts",
		"/api/v1/crops/corn/impact",
	}
	for _, ep := range endpoints {
		expectStatus(t, app, ep, http.StatusBadRequest)
	}

	// Half a coordinate pair is also invalid.
	expectStatus(t, app, "/api/v1/weather/current?lat=-22.9", http.StatusBadRequest)
	// Out-of-range latitude.
	expectStatus(t, app, "/api/v1/weather/current?lat=97&lon=10", http.StatusBadRequest)
}

// TestForecastDaysValidation verifies the 1-7 range for the forecast `days`
// query parameter.
func TestForecastDaysValidation(t *testing.T) {
	app := newTestApp()

	expectStatus(t, app, "/api/v1/weather/forecast?q=Campinas&days=8", http.StatusBadRequest)
	expectStatus(t, app, "/api/v1/weather/forecast?q=Campinas&days=0", http.StatusBadRequest)
	expectStatus(t, app, "/api/v1/weather/forecast?q=Campinas&days=abc", http.StatusBadRequest)
}

// TestHistoryDateValidation verifies the ISO date requirement.
func TestHistoryDateValidation(t *testing.T) {
	app := newTestApp()

	expectStatus(t, app, "/api/v1/weather/history?q=Campinas", http.StatusBadRequest)
	expectStatus(t, app, "/api/v1/weather/history?q=Campinas&date=28-08-2026", http.StatusBadRequest)
}

// TestChainFeedsWithoutReader verifies the on-chain endpoint degrades when
// no RPC endpoint is configured.
func TestChainFeedsWithoutReader(t *testing.T) {
	app := newTestApp()

	expectStatus(t, app, "/api/v1/chain/feeds/PRECIPITATION", http.StatusServiceUnavailable)
}
