package weather

import "context"

// CurrentProvider is the minimum capability a weather upstream must offer.
type CurrentProvider interface {
	Name() string
	FetchCurrent(ctx context.Context, loc Location) (*WeatherSnapshot, error)
}

// ForecastProvider fetches a multi-day forecast. Only the primary upstream
// implements it; there is no fallback path for forecasts.
type ForecastProvider interface {
	FetchForecast(ctx context.Context, loc Location, days int) (*WeatherForecast, error)
}

// HistoryProvider fetches aggregated data for a single past calendar day
// (date in YYYY-MM-DD form).
type HistoryProvider interface {
	FetchHistorical(ctx context.Context, loc Location, date string) (*HistoricalDay, error)
}

// AlertProvider fetches the alerts currently in effect for a location.
type AlertProvider interface {
	FetchAlerts(ctx context.Context, loc Location) (*AlertBundle, error)
}

// PrimaryProvider bundles every capability the orchestrator expects from
// the first-choice upstream.
type PrimaryProvider interface {
	CurrentProvider
	ForecastProvider
	HistoryProvider
	AlertProvider
}
