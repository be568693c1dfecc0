package weather

import (
	"fmt"
	"strings"
	"time"
)

// Source tags identifying which provider produced a record.
const (
	SourceWeatherAPI  = "weatherapi"
	SourceOpenWeather = "openweathermap"
	SourceChainlink   = "chainlink"
)

// Coordinates is a latitude/longitude pair in decimal degrees.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Location addresses a place either by a free-text query (city name,
// postcode, "city,country") or by coordinates. Exactly one form is used.
type Location struct {
	Query  string
	Coords *Coordinates
}

// LocationFromQuery builds a Location from a free-text place query.
func LocationFromQuery(q string) Location {
	return Location{Query: q}
}

// LocationFromCoords builds a Location from a coordinate pair.
func LocationFromCoords(lat, lon float64) Location {
	return Location{Coords: &Coordinates{Latitude: lat, Longitude: lon}}
}

// Key returns the canonical, case-normalized string used for cache keys.
func (l Location) Key() string {
	if l.Coords != nil {
		return fmt.Sprintf("%g,%g", l.Coords.Latitude, l.Coords.Longitude)
	}
	return strings.ToLower(strings.TrimSpace(l.Query))
}

// Param returns the location formatted as the upstream query parameter.
// Both upstream APIs accept either a place name or "lat,lon".
func (l Location) Param() string {
	if l.Coords != nil {
		return fmt.Sprintf("%g,%g", l.Coords.Latitude, l.Coords.Longitude)
	}
	return l.Query
}

// LocationInfo is the resolved place metadata returned by providers.
type LocationInfo struct {
	Name        string      `json:"name"`
	Region      string      `json:"region,omitempty"`
	Country     string      `json:"country"`
	Coordinates Coordinates `json:"coordinates"`
}

// Condition is the normalized condition triple shared by all records.
type Condition struct {
	Code int    `json:"code"`
	Text string `json:"text"`
	Icon string `json:"icon"`
}

// CurrentConditions is the reading block of a WeatherSnapshot.
// Units: temperature °C, wind km/h, precipitation mm, visibility km.
// Fields an upstream cannot supply are zero, never absent.
type CurrentConditions struct {
	Temperature   float64   `json:"temperature"`
	FeelsLike     float64   `json:"feelsLike"`
	Humidity      float64   `json:"humidity"`
	Pressure      float64   `json:"pressure"`
	WindSpeed     float64   `json:"windSpeed"`
	WindDirection float64   `json:"windDirection"`
	Precipitation float64   `json:"precipitation"`
	UVIndex       float64   `json:"uvIndex"`
	CloudCover    float64   `json:"cloudCover"`
	Visibility    float64   `json:"visibility"`
	Condition     Condition `json:"condition"`
}

// WeatherSnapshot is the normalized current-weather view. UpdatedAt is set
// when the record enters the system, not at upstream-provider time; cache
// TTLs key off that moment.
type WeatherSnapshot struct {
	Location  LocationInfo      `json:"location"`
	Current   CurrentConditions `json:"current"`
	UpdatedAt time.Time         `json:"updatedAt"`
	Source    string            `json:"source"`
}

// ForecastDay is one day of a multi-day forecast.
type ForecastDay struct {
	Date               string    `json:"date"` // YYYY-MM-DD
	MaxTemp            float64   `json:"maxTemp"`
	MinTemp            float64   `json:"minTemp"`
	AvgTemp            float64   `json:"avgTemp"`
	MaxWindSpeed       float64   `json:"maxWindSpeed"`
	TotalPrecipitation float64   `json:"totalPrecipitation"`
	AvgHumidity        float64   `json:"avgHumidity"`
	ChanceOfRain       float64   `json:"chanceOfRain"`
	UVIndex            float64   `json:"uvIndex"`
	Condition          Condition `json:"condition"`
}

// WeatherForecast is a chronologically ordered multi-day forecast.
type WeatherForecast struct {
	Location  LocationInfo  `json:"location"`
	Forecast  []ForecastDay `json:"forecast"`
	UpdatedAt time.Time     `json:"updatedAt"`
	Source    string        `json:"source"`
}

// HistoricalDay aggregates one past calendar day.
type HistoricalDay struct {
	Location           LocationInfo `json:"location"`
	Date               string       `json:"date"`
	MaxTemp            float64      `json:"maxTemp"`
	MinTemp            float64      `json:"minTemp"`
	AvgTemp            float64      `json:"avgTemp"`
	MaxWindSpeed       float64      `json:"maxWindSpeed"`
	TotalPrecipitation float64      `json:"totalPrecipitation"`
	AvgHumidity        float64      `json:"avgHumidity"`
	UVIndex            float64      `json:"uvIndex"`
	UpdatedAt          time.Time    `json:"updatedAt"`
	Source             string       `json:"source"`
}

// Severity classifies an alert. Derived client-side from the event name;
// upstream does not supply it in a normalized form.
type Severity string

const (
	SeverityLow     Severity = "low"
	SeverityMedium  Severity = "medium"
	SeverityHigh    Severity = "high"
	SeverityExtreme Severity = "extreme"
)

// Alert is a single normalized weather alert.
type Alert struct {
	Event       string   `json:"event"`
	Severity    Severity `json:"severity"`
	Headline    string   `json:"headline"`
	Description string   `json:"description"`
	Effective   string   `json:"effective"`
	Expires     string   `json:"expires"`
	Areas       []string `json:"areas"`
}

// AlertBundle carries the alerts in effect for a location.
type AlertBundle struct {
	Location  LocationInfo `json:"location"`
	Alerts    []Alert      `json:"alerts"`
	UpdatedAt time.Time    `json:"updatedAt"`
	Source    string       `json:"source"`
}

// PrecipitationPoint is one day of a precipitation history series.
type PrecipitationPoint struct {
	Date          string  `json:"date"`
	Precipitation float64 `json:"precipitation"`
}

// PrecipitationHistory is a date-sorted precipitation series.
type PrecipitationHistory struct {
	Location string               `json:"location"`
	Data     []PrecipitationPoint `json:"data"`
}

// TemperaturePoint is one day of a temperature history series.
type TemperaturePoint struct {
	Date string  `json:"date"`
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
	Avg  float64 `json:"avg"`
}

// TemperatureHistory is a date-sorted temperature series.
type TemperatureHistory struct {
	Location string             `json:"location"`
	Data     []TemperaturePoint `json:"data"`
}
