package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/agrotm/weather-oracle/internal/cache"
)

// ErrUnavailable is returned when no provider could serve a request. It is
// an expected, recoverable outcome in a multi-provider design; callers
// should treat it as "data temporarily unavailable", not as a fault.
var ErrUnavailable = errors.New("weather data unavailable")

// CacheTTLs holds per-category cache expirations in seconds.
type CacheTTLs struct {
	Current    int
	Forecast   int
	Historical int
}

// DefaultTTLs mirrors the time-sensitivity of each category: current data
// goes stale fastest, historical data effectively never changes.
func DefaultTTLs() CacheTTLs {
	return CacheTTLs{
		Current:    30 * 60,
		Forecast:   2 * 60 * 60,
		Historical: 24 * 60 * 60,
	}
}

// historyConcurrency bounds the per-day fan-out of the history helpers.
const historyConcurrency = 8

// Service orchestrates the cache, the primary and fallback providers, and
// the crop analyzer inputs. All state is injected; the cache backend is the
// only thing shared across calls.
type Service struct {
	cache    cache.Cache
	primary  PrimaryProvider
	fallback CurrentProvider
	ttls     CacheTTLs
}

// NewService creates a Service. fallback may be nil when no second current-
// weather source is configured.
func NewService(c cache.Cache, primary PrimaryProvider, fallback CurrentProvider, ttls CacheTTLs) *Service {
	return &Service{
		cache:    c,
		primary:  primary,
		fallback: fallback,
		ttls:     ttls,
	}
}

// CurrentWeather returns the current conditions for a location, trying
// cache, then the primary provider, then the fallback.
func (s *Service) CurrentWeather(ctx context.Context, loc Location) (*WeatherSnapshot, error) {
	key := "current:" + loc.Key()

	var cached WeatherSnapshot
	if s.cacheGet(ctx, key, &cached) {
		return &cached, nil
	}

	snapshot, err := s.primary.FetchCurrent(ctx, loc)
	if err != nil {
		log.Printf("ERROR: %s current fetch failed for %s: %v", s.primary.Name(), loc.Key(), err)
		snapshot = nil
	}

	if snapshot == nil && s.fallback != nil {
		snapshot, err = s.fallback.FetchCurrent(ctx, loc)
		if err != nil {
			log.Printf("ERROR: %s current fetch failed for %s: %v", s.fallback.Name(), loc.Key(), err)
			snapshot = nil
		}
	}

	if snapshot == nil {
		log.Printf("WARN: no current weather available for %s", loc.Key())
		return nil, ErrUnavailable
	}

	s.cacheSet(ctx, key, snapshot, s.ttls.Current)
	return snapshot, nil
}

// Forecast returns a multi-day forecast. Only the primary provider serves
// forecasts; there is no fallback path.
func (s *Service) Forecast(ctx context.Context, loc Location, days int) (*WeatherForecast, error) {
	if days <= 0 {
		days = 7
	}
	key := fmt.Sprintf("forecast:%s:%d", loc.Key(), days)

	var cached WeatherForecast
	if s.cacheGet(ctx, key, &cached) {
		return &cached, nil
	}

	forecast, err := s.primary.FetchForecast(ctx, loc, days)
	if err != nil {
		log.Printf("ERROR: %s forecast fetch failed for %s: %v", s.primary.Name(), loc.Key(), err)
		return nil, ErrUnavailable
	}

	s.cacheSet(ctx, key, forecast, s.ttls.Forecast)
	return forecast, nil
}

// Historical returns aggregated data for a single past day (YYYY-MM-DD).
func (s *Service) Historical(ctx context.Context, loc Location, date string) (*HistoricalDay, error) {
	key := fmt.Sprintf("historical:%s:%s", loc.Key(), date)

	var cached HistoricalDay
	if s.cacheGet(ctx, key, &cached) {
		return &cached, nil
	}

	day, err := s.primary.FetchHistorical(ctx, loc, date)
	if err != nil {
		log.Printf("ERROR: %s historical fetch failed for %s on %s: %v", s.primary.Name(), loc.Key(), date, err)
		return nil, ErrUnavailable
	}

	s.cacheSet(ctx, key, day, s.ttls.Historical)
	return day, nil
}

// Alerts returns the alerts in effect for a location. Never cached: a
// stale extreme-weather warning is worse than a slow fresh one.
func (s *Service) Alerts(ctx context.Context, loc Location) (*AlertBundle, error) {
	bundle, err := s.primary.FetchAlerts(ctx, loc)
	if err != nil {
		log.Printf("ERROR: %s alerts fetch failed for %s: %v", s.primary.Name(), loc.Key(), err)
		return nil, ErrUnavailable
	}
	return bundle, nil
}

// PrecipitationHistory fetches per-day precipitation for the past N days
// (default 30), fanning out bounded concurrent historical reads. Days that
// fail are skipped; results are sorted by date.
func (s *Service) PrecipitationHistory(ctx context.Context, loc Location, days int) (*PrecipitationHistory, error) {
	records := s.fetchHistoryRange(ctx, loc, days)
	if len(records) == 0 {
		return nil, ErrUnavailable
	}

	data := make([]PrecipitationPoint, 0, len(records))
	for _, r := range records {
		data = append(data, PrecipitationPoint{
			Date:          r.Date,
			Precipitation: r.TotalPrecipitation,
		})
	}

	return &PrecipitationHistory{Location: loc.Param(), Data: data}, nil
}

// TemperatureHistory fetches per-day temperature aggregates for the past N
// days (default 30), sorted by date.
func (s *Service) TemperatureHistory(ctx context.Context, loc Location, days int) (*TemperatureHistory, error) {
	records := s.fetchHistoryRange(ctx, loc, days)
	if len(records) == 0 {
		return nil, ErrUnavailable
	}

	data := make([]TemperaturePoint, 0, len(records))
	for _, r := range records {
		data = append(data, TemperaturePoint{
			Date: r.Date,
			Min:  r.MinTemp,
			Max:  r.MaxTemp,
			Avg:  r.AvgTemp,
		})
	}

	return &TemperatureHistory{Location: loc.Param(), Data: data}, nil
}

// fetchHistoryRange issues one historical fetch per day in the window with
// bounded concurrency. Completion order is not issuance order, so results
// are re-sorted by date before returning.
func (s *Service) fetchHistoryRange(ctx context.Context, loc Location, days int) []*HistoricalDay {
	if days <= 0 {
		days = 30
	}

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		gate    = make(chan struct{}, historyConcurrency)
		records []*HistoricalDay
	)

	now := time.Now().UTC()
	for i := 0; i < days; i++ {
		date := now.AddDate(0, 0, -i).Format("2006-01-02")

		wg.Add(1)
		go func() {
			defer wg.Done()

			gate <- struct{}{}
			defer func() { <-gate }()

			day, err := s.Historical(ctx, loc, date)
			if err != nil {
				return
			}

			mu.Lock()
			records = append(records, day)
			mu.Unlock()
		}()
	}
	wg.Wait()

	sort.Slice(records, func(i, j int) bool {
		return records[i].Date < records[j].Date
	})
	return records
}

// FetchForAnalysis returns the current snapshot and 7-day forecast needed
// by the crop analyzer, fetched concurrently. Either missing means the
// analysis cannot run.
func (s *Service) FetchForAnalysis(ctx context.Context, loc Location) (*WeatherSnapshot, *WeatherForecast, error) {
	var (
		wg          sync.WaitGroup
		snapshot    *WeatherSnapshot
		forecast    *WeatherForecast
		snapErr     error
		forecastErr error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		snapshot, snapErr = s.CurrentWeather(ctx, loc)
	}()
	go func() {
		defer wg.Done()
		forecast, forecastErr = s.Forecast(ctx, loc, 7)
	}()
	wg.Wait()

	if snapErr != nil || forecastErr != nil {
		log.Printf("WARN: insufficient weather data for analysis at %s", loc.Key())
		return nil, nil, ErrUnavailable
	}
	return snapshot, forecast, nil
}

func (s *Service) cacheGet(ctx context.Context, key string, out interface{}) bool {
	if s.cache == nil {
		return false
	}
	raw, ok := s.cache.Get(ctx, key)
	if !ok {
		return false
	}
	if err := json.Unmarshal(raw, out); err != nil {
		log.Printf("WARN: corrupt cache entry for %s: %v", key, err)
		return false
	}
	return true
}

func (s *Service) cacheSet(ctx context.Context, key string, value interface{}, ttlSeconds int) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		log.Printf("WARN: cannot serialize cache entry for %s: %v", key, err)
		return
	}
	s.cache.Set(ctx, key, raw, ttlSeconds)
}
