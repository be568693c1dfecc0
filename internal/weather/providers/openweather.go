package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/agrotm/weather-oracle/internal/weather"
	"github.com/sony/gobreaker"
)

// OpenWeather is the fallback upstream adapter (OpenWeatherMap). It only
// supports current conditions; forecast, history and alerts have no
// fallback path.
type OpenWeather struct {
	name    string
	apiKey  string
	baseURL string
	client  *http.Client
	backoff backoffConfig
	circuit *gobreaker.CircuitBreaker
}

func NewOpenWeather(client *http.Client, apiKey string) *OpenWeather {
	return &OpenWeather{
		name:    weather.SourceOpenWeather,
		apiKey:  apiKey,
		baseURL: "https://api.openweathermap.org/data/2.5/weather",
		client:  client,
		backoff: defaultBackoff(),
		circuit: newBreaker("openweather"),
	}
}

func (p *OpenWeather) Name() string {
	return p.name
}

func (p *OpenWeather) FetchCurrent(ctx context.Context, loc weather.Location) (*weather.WeatherSnapshot, error) {
	if p.apiKey == "" {
		return nil, fmt.Errorf("openweathermap api key is not configured")
	}

	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("appid", p.apiKey)
		values.Set("units", "metric")
		if loc.Coords != nil {
			values.Set("lat", fmt.Sprintf("%g", loc.Coords.Latitude))
			values.Set("lon", fmt.Sprintf("%g", loc.Coords.Longitude))
		} else {
			values.Set("q", loc.Query)
		}
		u := fmt.Sprintf("%s?%s", p.baseURL, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	resp, err := doResilient(ctx, p.client, p.backoff, p.circuit, buildRequest)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var payload struct {
		Name  string `json:"name"`
		Coord struct {
			Lat float64 `json:"lat"`
			Lon float64 `json:"lon"`
		} `json:"coord"`
		Sys struct {
			Country string `json:"country"`
		} `json:"sys"`
		Main struct {
			Temp      float64 `json:"temp"`
			FeelsLike float64 `json:"feels_like"`
			Humidity  float64 `json:"humidity"`
			Pressure  float64 `json:"pressure"`
		} `json:"main"`
		Wind struct {
			Speed float64 `json:"speed"`
			Deg   float64 `json:"deg"`
		} `json:"wind"`
		Rain struct {
			OneH float64 `json:"1h"`
		} `json:"rain"`
		Clouds struct {
			All float64 `json:"all"`
		} `json:"clouds"`
		Visibility float64 `json:"visibility"`
		Weather    []struct {
			ID          int    `json:"id"`
			Description string `json:"description"`
			Icon        string `json:"icon"`
		} `json:"weather"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}

	cond := weather.Condition{}
	if len(payload.Weather) > 0 {
		cond = weather.Condition{
			Code: payload.Weather[0].ID,
			Text: payload.Weather[0].Description,
			Icon: fmt.Sprintf("https://openweathermap.org/img/wn/%s@2x.png", payload.Weather[0].Icon),
		}
	}

	return &weather.WeatherSnapshot{
		Location: weather.LocationInfo{
			Name:    payload.Name,
			Country: payload.Sys.Country,
			Coordinates: weather.Coordinates{
				Latitude:  payload.Coord.Lat,
				Longitude: payload.Coord.Lon,
			},
		},
		Current: weather.CurrentConditions{
			Temperature:   payload.Main.Temp,
			FeelsLike:     payload.Main.FeelsLike,
			Humidity:      payload.Main.Humidity,
			Pressure:      payload.Main.Pressure,
			WindSpeed:     payload.Wind.Speed * 3.6, // m/s to km/h
			WindDirection: payload.Wind.Deg,
			Precipitation: payload.Rain.OneH,
			UVIndex:       0, // not available from the basic OWM API
			CloudCover:    payload.Clouds.All,
			Visibility:    payload.Visibility / 1000, // m to km
			Condition:     cond,
		},
		UpdatedAt: time.Now().UTC(),
		Source:    p.name,
	}, nil
}
