package agro

import (
	"context"
	"log"

	"github.com/agrotm/weather-oracle/internal/weather"
)

// WeatherSource is the slice of the weather orchestrator the impact
// operation needs.
type WeatherSource interface {
	FetchForAnalysis(ctx context.Context, loc weather.Location) (*weather.WeatherSnapshot, *weather.WeatherForecast, error)
}

// AnalyzeLocation fetches current conditions and a 7-day forecast for the
// location and runs the crop analyzer on them. This is the recovery
// boundary: a stray panic from bad upstream data becomes an ErrUnavailable
// plus a logged error instead of crashing the caller.
func AnalyzeLocation(ctx context.Context, src WeatherSource, cropType string, loc weather.Location) (assessment *Assessment, err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("ERROR: crop impact analysis panicked for %s at %s: %v", cropType, loc.Key(), r)
			assessment = nil
			err = weather.ErrUnavailable
		}
	}()

	snapshot, forecast, err := src.FetchForAnalysis(ctx, loc)
	if err != nil {
		return nil, err
	}

	return Analyze(cropType, snapshot, forecast), nil
}
