package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/agrotm/weather-oracle/internal/weather"
	"github.com/sony/gobreaker"
)

// WeatherAPI is the primary upstream adapter (weatherapi.com). It covers
// current conditions, multi-day forecasts, per-day history and alerts.
type WeatherAPI struct {
	name    string
	apiKey  string
	baseURL string
	client  *http.Client
	backoff backoffConfig
	circuit *gobreaker.CircuitBreaker
}

func NewWeatherAPI(client *http.Client, apiKey string) *WeatherAPI {
	return &WeatherAPI{
		name:    weather.SourceWeatherAPI,
		apiKey:  apiKey,
		baseURL: "https://api.weatherapi.com/v1",
		client:  client,
		backoff: defaultBackoff(),
		circuit: newBreaker("weatherapi"),
	}
}

func (p *WeatherAPI) Name() string {
	return p.name
}

// waLocation is the location block shared by every weatherapi.com payload.
type waLocation struct {
	Name    string  `json:"name"`
	Region  string  `json:"region"`
	Country string  `json:"country"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

func (l waLocation) toInfo() weather.LocationInfo {
	return weather.LocationInfo{
		Name:    l.Name,
		Region:  l.Region,
		Country: l.Country,
		Coordinates: weather.Coordinates{
			Latitude:  l.Lat,
			Longitude: l.Lon,
		},
	}
}

// waDay is the per-day aggregate block shared by forecast and history payloads.
type waDay struct {
	MaxTempC      float64 `json:"maxtemp_c"`
	MinTempC      float64 `json:"mintemp_c"`
	AvgTempC      float64 `json:"avgtemp_c"`
	MaxWindKph    float64 `json:"maxwind_kph"`
	TotalPrecipMm float64 `json:"totalprecip_mm"`
	AvgHumidity   float64 `json:"avghumidity"`
	ChanceOfRain  float64 `json:"daily_chance_of_rain"`
	UV            float64 `json:"uv"`
	Condition     struct {
		Code int    `json:"code"`
		Text string `json:"text"`
		Icon string `json:"icon"`
	} `json:"condition"`
}

func (p *WeatherAPI) get(ctx context.Context, endpoint string, params url.Values, out interface{}) error {
	if p.apiKey == "" {
		return fmt.Errorf("weatherapi api key is not configured")
	}

	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("key", p.apiKey)
		for k, vs := range params {
			for _, v := range vs {
				values.Set(k, v)
			}
		}
		u := fmt.Sprintf("%s/%s?%s", p.baseURL, endpoint, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	resp, err := doResilient(ctx, p.client, p.backoff, p.circuit, buildRequest)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return json.NewDecoder(resp.Body).Decode(out)
}

func (p *WeatherAPI) FetchCurrent(ctx context.Context, loc weather.Location) (*weather.WeatherSnapshot, error) {
	params := url.Values{}
	params.Set("q", loc.Param())
	params.Set("aqi", "no")

	var payload struct {
		Location waLocation `json:"location"`
		Current  struct {
			TempC      float64 `json:"temp_c"`
			FeelslikeC float64 `json:"feelslike_c"`
			Humidity   float64 `json:"humidity"`
			PressureMb float64 `json:"pressure_mb"`
			WindKph    float64 `json:"wind_kph"`
			WindDegree float64 `json:"wind_degree"`
			PrecipMm   float64 `json:"precip_mm"`
			UV         float64 `json:"uv"`
			Cloud      float64 `json:"cloud"`
			VisKm      float64 `json:"vis_km"`
			Condition  struct {
				Code int    `json:"code"`
				Text string `json:"text"`
				Icon string `json:"icon"`
			} `json:"condition"`
		} `json:"current"`
	}

	if err := p.get(ctx, "current.json", params, &payload); err != nil {
		return nil, err
	}

	return &weather.WeatherSnapshot{
		Location: payload.Location.toInfo(),
		Current: weather.CurrentConditions{
			Temperature:   payload.Current.TempC,
			FeelsLike:     payload.Current.FeelslikeC,
			Humidity:      payload.Current.Humidity,
			Pressure:      payload.Current.PressureMb,
			WindSpeed:     payload.Current.WindKph,
			WindDirection: payload.Current.WindDegree,
			Precipitation: payload.Current.PrecipMm,
			UVIndex:       payload.Current.UV,
			CloudCover:    payload.Current.Cloud,
			Visibility:    payload.Current.VisKm,
			Condition: weather.Condition{
				Code: payload.Current.Condition.Code,
				Text: payload.Current.Condition.Text,
				Icon: payload.Current.Condition.Icon,
			},
		},
		UpdatedAt: time.Now().UTC(),
		Source:    p.name,
	}, nil
}

func (p *WeatherAPI) FetchForecast(ctx context.Context, loc weather.Location, days int) (*weather.WeatherForecast, error) {
	params := url.Values{}
	params.Set("q", loc.Param())
	params.Set("days", strconv.Itoa(days))
	params.Set("aqi", "no")
	params.Set("alerts", "no")

	var payload struct {
		Location waLocation `json:"location"`
		Forecast struct {
			ForecastDay []struct {
				Date string `json:"date"`
				Day  waDay  `json:"day"`
			} `json:"forecastday"`
		} `json:"forecast"`
	}

	if err := p.get(ctx, "forecast.json", params, &payload); err != nil {
		return nil, err
	}

	forecast := make([]weather.ForecastDay, 0, len(payload.Forecast.ForecastDay))
	for _, fd := range payload.Forecast.ForecastDay {
		forecast = append(forecast, weather.ForecastDay{
			Date:               fd.Date,
			MaxTemp:            fd.Day.MaxTempC,
			MinTemp:            fd.Day.MinTempC,
			AvgTemp:            fd.Day.AvgTempC,
			MaxWindSpeed:       fd.Day.MaxWindKph,
			TotalPrecipitation: fd.Day.TotalPrecipMm,
			AvgHumidity:        fd.Day.AvgHumidity,
			ChanceOfRain:       fd.Day.ChanceOfRain,
			UVIndex:            fd.Day.UV,
			Condition: weather.Condition{
				Code: fd.Day.Condition.Code,
				Text: fd.Day.Condition.Text,
				Icon: fd.Day.Condition.Icon,
			},
		})
	}

	return &weather.WeatherForecast{
		Location:  payload.Location.toInfo(),
		Forecast:  forecast,
		UpdatedAt: time.Now().UTC(),
		Source:    p.name,
	}, nil
}

func (p *WeatherAPI) FetchHistorical(ctx context.Context, loc weather.Location, date string) (*weather.HistoricalDay, error) {
	params := url.Values{}
	params.Set("q", loc.Param())
	params.Set("dt", date)

	var payload struct {
		Location waLocation `json:"location"`
		Forecast struct {
			ForecastDay []struct {
				Date string `json:"date"`
				Day  waDay  `json:"day"`
			} `json:"forecastday"`
		} `json:"forecast"`
	}

	if err := p.get(ctx, "history.json", params, &payload); err != nil {
		return nil, err
	}
	if len(payload.Forecast.ForecastDay) == 0 {
		return nil, fmt.Errorf("no historical data for %s on %s", loc.Key(), date)
	}

	day := payload.Forecast.ForecastDay[0].Day
	return &weather.HistoricalDay{
		Location:           payload.Location.toInfo(),
		Date:               date,
		MaxTemp:            day.MaxTempC,
		MinTemp:            day.MinTempC,
		AvgTemp:            day.AvgTempC,
		MaxWindSpeed:       day.MaxWindKph,
		TotalPrecipitation: day.TotalPrecipMm,
		AvgHumidity:        day.AvgHumidity,
		UVIndex:            day.UV,
		UpdatedAt:          time.Now().UTC(),
		Source:             p.name,
	}, nil
}

func (p *WeatherAPI) FetchAlerts(ctx context.Context, loc weather.Location) (*weather.AlertBundle, error) {
	params := url.Values{}
	params.Set("q", loc.Param())
	params.Set("days", "1")
	params.Set("aqi", "no")
	params.Set("alerts", "yes")

	var payload struct {
		Location waLocation `json:"location"`
		Alerts   struct {
			Alert []struct {
				Event     string `json:"event"`
				Headline  string `json:"headline"`
				Desc      string `json:"desc"`
				Effective string `json:"effective"`
				Expires   string `json:"expires"`
				Areas     string `json:"areas"`
			} `json:"alert"`
		} `json:"alerts"`
	}

	if err := p.get(ctx, "forecast.json", params, &payload); err != nil {
		return nil, err
	}

	alerts := make([]weather.Alert, 0, len(payload.Alerts.Alert))
	for _, a := range payload.Alerts.Alert {
		alerts = append(alerts, weather.Alert{
			Event:       a.Event,
			Severity:    deriveSeverity(a.Event),
			Headline:    a.Headline,
			Description: a.Desc,
			Effective:   a.Effective,
			Expires:     a.Expires,
			Areas:       splitAreas(a.Areas),
		})
	}

	return &weather.AlertBundle{
		Location:  payload.Location.toInfo(),
		Alerts:    alerts,
		UpdatedAt: time.Now().UTC(),
		Source:    p.name,
	}, nil
}

// deriveSeverity classifies an alert from keywords in its event name.
// Families are checked most-severe first; the first match wins, and
// anything unmatched is medium.
func deriveSeverity(event string) weather.Severity {
	e := strings.ToLower(event)
	switch {
	case containsAny(e, "extreme", "severe", "emergency"):
		return weather.SeverityExtreme
	case containsAny(e, "warning", "danger"):
		return weather.SeverityHigh
	case containsAny(e, "watch", "advisory"):
		return weather.SeverityMedium
	case containsAny(e, "statement", "outlook"):
		return weather.SeverityLow
	default:
		return weather.SeverityMedium
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// splitAreas breaks the provider's semicolon-joined area list into trimmed parts.
func splitAreas(areas string) []string {
	if strings.TrimSpace(areas) == "" {
		return []string{}
	}
	parts := strings.Split(areas, ";")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		out = append(out, strings.TrimSpace(p))
	}
	return out
}
