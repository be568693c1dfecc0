package providers

import (
	"context"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/agrotm/weather-oracle/internal/weather"
)

func TestOpenWeatherNormalizesUnits(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("units") != "metric" {
			t.Errorf("units param = %s, want metric", r.URL.Query().Get("units"))
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"name": "Sorriso",
			"coord": {"lat": -12.55, "lon": -55.72},
			"sys": {"country": "BR"},
			"main": {"temp": 31.2, "feels_like": 33.0, "humidity": 48, "pressure": 1010},
			"wind": {"speed": 5, "deg": 90},
			"rain": {"1h": 0.4},
			"clouds": {"all": 40},
			"visibility": 8000,
			"weather": [{"id": 500, "description": "light rain", "icon": "10d"}]
		}`))
	}))
	defer srv.Close()

	p := NewOpenWeather(srv.Client(), "test-key")
	p.baseURL = srv.URL

	snap, err := p.FetchCurrent(context.Background(), weather.LocationFromQuery("Sorriso"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// 5 m/s must come out as 18 km/h.
	if math.Abs(snap.Current.WindSpeed-18) > 1e-9 {
		t.Errorf("windSpeed = %v, want 18 (5 m/s * 3.6)", snap.Current.WindSpeed)
	}
	// 8000 m visibility must come out as 8 km.
	if snap.Current.Visibility != 8 {
		t.Errorf("visibility = %v, want 8", snap.Current.Visibility)
	}
	// OWM's basic API has no UV index; it defaults to 0, never absent.
	if snap.Current.UVIndex != 0 {
		t.Errorf("uvIndex = %v, want 0", snap.Current.UVIndex)
	}
	if snap.Source != weather.SourceOpenWeather {
		t.Errorf("source = %q, want %q", snap.Source, weather.SourceOpenWeather)
	}
	if snap.Current.Condition.Icon != "https://openweathermap.org/img/wn/10d@2x.png" {
		t.Errorf("unexpected icon url: %s", snap.Current.Condition.Icon)
	}
}

func TestOpenWeatherUsesCoordinatesWhenGiven(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("lat") == "" || r.URL.Query().Get("lon") == "" {
			t.Errorf("expected lat/lon params, got %s", r.URL.RawQuery)
		}
		if r.URL.Query().Get("q") != "" {
			t.Errorf("q param should be absent for coordinate lookups")
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"name":"","coord":{"lat":-12.55,"lon":-55.72},"sys":{"country":"BR"},"main":{"temp":30},"wind":{},"clouds":{},"weather":[]}`))
	}))
	defer srv.Close()

	p := NewOpenWeather(srv.Client(), "test-key")
	p.baseURL = srv.URL

	snap, err := p.FetchCurrent(context.Background(), weather.LocationFromCoords(-12.55, -55.72))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snap.Current.Temperature != 30 {
		t.Errorf("temperature = %v, want 30", snap.Current.Temperature)
	}
	// No weather block: condition stays zero-valued rather than absent.
	if snap.Current.Condition.Code != 0 || snap.Current.Condition.Text != "" {
		t.Errorf("expected zero condition, got %+v", snap.Current.Condition)
	}
}

func TestOpenWeatherRequiresKey(t *testing.T) {
	p := NewOpenWeather(http.DefaultClient, "")
	if _, err := p.FetchCurrent(context.Background(), weather.LocationFromQuery("Sorriso")); err == nil {
		t.Fatal("expected an error when the api key is missing")
	}
}
