package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	httpapi "github.com/agrotm/weather-oracle/internal/api/http"
	"github.com/agrotm/weather-oracle/internal/cache"
	"github.com/agrotm/weather-oracle/internal/chain"
	"github.com/agrotm/weather-oracle/internal/config"
	"github.com/agrotm/weather-oracle/internal/scheduler"
	"github.com/agrotm/weather-oracle/internal/weather"
	"github.com/agrotm/weather-oracle/internal/weather/providers"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if cfg.WeatherAPIKey == "" {
		log.Println("WARN: WEATHERAPI_API_KEY is not set; primary provider disabled")
	}
	if cfg.OpenWeatherAPIKey == "" {
		log.Println("WARN: OPENWEATHER_API_KEY is not set; fallback provider disabled")
	}

	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	// Cache backend: Redis when configured, in-process otherwise.
	var weatherCache cache.Cache
	if cfg.RedisURL != "" {
		redisCache, err := cache.NewRedis(cfg.RedisURL)
		if err != nil {
			log.Fatalf("invalid REDIS_URL: %v", err)
		}
		defer redisCache.Close()
		weatherCache = redisCache
	} else {
		log.Println("WARN: REDIS_URL is not set; using in-process cache")
		weatherCache = cache.NewMemory()
	}

	primary := providers.NewWeatherAPI(httpClient, cfg.WeatherAPIKey)
	fallback := providers.NewOpenWeather(httpClient, cfg.OpenWeatherAPIKey)

	ttls := weather.CacheTTLs{
		Current:    cfg.TTLCurrent,
		Forecast:   cfg.TTLForecast,
		Historical: cfg.TTLHistorical,
	}
	service := weather.NewService(weatherCache, primary, fallback, ttls)

	// On-chain reader is optional; it sits outside the fallback chain.
	var reader *chain.Reader
	if cfg.EthRPCURL != "" {
		reader, err = chain.NewReader(cfg.EthRPCURL)
		if err != nil {
			log.Printf("WARN: on-chain reader disabled: %v", err)
			reader = nil
		}
	} else {
		log.Println("WARN: ETH_RPC_URL is not set; on-chain reader disabled")
	}

	// Cache warmer for configured locations.
	warmer := scheduler.New(cfg.WarmLocations, cfg.WarmInterval, service)
	if err := warmer.Start(); err != nil {
		log.Fatalf("failed to start cache warmer: %v", err)
	}
	defer warmer.Stop()

	app := fiber.New(fiber.Config{
		AppName:               "weather-oracle",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          30 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	app.Use(logger.New())
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "weather-oracle",
		})
	})

	httpapi.RegisterRoutes(app, service, reader)

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Printf("fiber server stopped: %v", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("error during shutdown: %v", err)
	}
}
