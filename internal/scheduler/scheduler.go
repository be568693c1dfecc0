package scheduler

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/agrotm/weather-oracle/internal/weather"
)

// Warmer periodically refreshes current weather and the 7-day forecast for
// configured locations so interactive requests hit a warm cache. Purely an
// optimization: failures are logged and skipped.
type Warmer struct {
	scheduler *gocron.Scheduler
	service   *weather.Service
	locations []weather.Location
	interval  time.Duration
}

// New creates a Warmer for the given free-text locations.
func New(locations []string, interval time.Duration, service *weather.Service) *Warmer {
	locs := make([]weather.Location, 0, len(locations))
	for _, q := range locations {
		locs = append(locs, weather.LocationFromQuery(q))
	}
	return &Warmer{
		scheduler: gocron.NewScheduler(time.UTC),
		service:   service,
		locations: locs,
		interval:  interval,
	}
}

// Start schedules the periodic refresh and starts the underlying scheduler.
func (w *Warmer) Start() error {
	if len(w.locations) == 0 {
		log.Println("warmer: no locations configured; nothing to schedule")
		return nil
	}

	minutes := int(w.interval.Minutes())
	if minutes <= 0 {
		minutes = 30
	}

	_, err := w.scheduler.Every(minutes).Minutes().Do(func() {
		log.Println("warmer: refreshing cached weather")

		var wg sync.WaitGroup
		for _, loc := range w.locations {
			loc := loc
			wg.Add(1)
			go func() {
				defer wg.Done()

				ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				defer cancel()

				if _, err := w.service.CurrentWeather(ctx, loc); err != nil {
					log.Printf("warmer: current refresh failed for %s: %v", loc.Key(), err)
				}
				if _, err := w.service.Forecast(ctx, loc, 7); err != nil {
					log.Printf("warmer: forecast refresh failed for %s: %v", loc.Key(), err)
				}
			}()
		}
		wg.Wait()
		log.Println("warmer: refresh complete")
	})
	if err != nil {
		return err
	}

	w.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler and cancels any future jobs.
func (w *Warmer) Stop() {
	if w.scheduler != nil {
		w.scheduler.Stop()
	}
}
