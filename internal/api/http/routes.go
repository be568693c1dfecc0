package httpapi

import (
	"errors"
	"regexp"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/agrotm/weather-oracle/internal/agro"
	"github.com/agrotm/weather-oracle/internal/chain"
	"github.com/agrotm/weather-oracle/internal/weather"
)

var validate = validator.New()

var isoDate = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// RegisterRoutes wires the HTTP handlers into the Fiber app. reader may be
// nil when no RPC endpoint is configured.
func RegisterRoutes(app *fiber.App, service *weather.Service, reader *chain.Reader) {
	v1 := app.Group("/api/v1")

	v1.Get("/weather/current", func(c *fiber.Ctx) error {
		loc, err := parseLocation(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		snapshot, err := service.CurrentWeather(c.Context(), loc)
		if err != nil {
			return unavailable(err)
		}
		return c.JSON(snapshot)
	})

	v1.Get("/weather/forecast", func(c *fiber.Ctx) error {
		loc, err := parseLocation(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		days, err := parseDays(c, 7, 7)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		forecast, err := service.Forecast(c.Context(), loc, days)
		if err != nil {
			return unavailable(err)
		}
		return c.JSON(forecast)
	})

	v1.Get("/weather/history", func(c *fiber.Ctx) error {
		loc, err := parseLocation(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		date := c.Query("date")
		if !isoDate.MatchString(date) {
			return fiber.NewError(fiber.StatusBadRequest, "date must be YYYY-MM-DD")
		}

		day, err := service.Historical(c.Context(), loc, date)
		if err != nil {
			return unavailable(err)
		}
		return c.JSON(day)
	})

	v1.Get("/weather/history/precipitation", func(c *fiber.Ctx) error {
		loc, err := parseLocation(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		days, err := parseDays(c, 30, 90)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		history, err := service.PrecipitationHistory(c.Context(), loc, days)
		if err != nil {
			return unavailable(err)
		}
		return c.JSON(history)
	})

	v1.Get("/weather/history/temperature", func(c *fiber.Ctx) error {
		loc, err := parseLocation(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		days, err := parseDays(c, 30, 90)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		history, err := service.TemperatureHistory(c.Context(), loc, days)
		if err != nil {
			return unavailable(err)
		}
		return c.JSON(history)
	})

	v1.Get("/weather/alerts", func(c *fiber.Ctx) error {
		loc, err := parseLocation(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		bundle, err := service.Alerts(c.Context(), loc)
		if err != nil {
			return unavailable(err)
		}
		return c.JSON(bundle)
	})

	v1.Get("/crops/:crop/impact", func(c *fiber.Ctx) error {
		loc, err := parseLocation(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		assessment, err := agro.AnalyzeLocation(c.Context(), service, c.Params("crop"), loc)
		if err != nil {
			return unavailable(err)
		}
		return c.JSON(assessment)
	})

	v1.Get("/chain/feeds/:feed", func(c *fiber.Ctx) error {
		if reader == nil {
			return fiber.NewError(fiber.StatusServiceUnavailable, "on-chain reader is not configured")
		}

		reading, err := reader.ReadFeed(c.Context(), c.Params("feed"))
		if err != nil {
			if errors.Is(err, chain.ErrUnknownFeed) {
				return fiber.NewError(fiber.StatusNotFound, "unknown feed")
			}
			return fiber.NewError(fiber.StatusServiceUnavailable, "feed read failed")
		}
		return c.JSON(reading)
	})
}

func unavailable(err error) error {
	if errors.Is(err, weather.ErrUnavailable) {
		return fiber.NewError(fiber.StatusServiceUnavailable, "weather data unavailable for this location right now")
	}
	return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch weather data")
}

// locationQuery holds the two accepted addressing forms: a free-text q, or
// a lat/lon pair.
type locationQuery struct {
	Q   string   `validate:"required_without=Lat"`
	Lat *float64 `validate:"omitempty,gte=-90,lte=90"`
	Lon *float64 `validate:"required_with=Lat,omitempty,gte=-180,lte=180"`
}

func parseLocation(c *fiber.Ctx) (weather.Location, error) {
	var q locationQuery
	q.Q = c.Query("q")

	latStr, lonStr := c.Query("lat"), c.Query("lon")
	if latStr != "" || lonStr != "" {
		lat, err := strconv.ParseFloat(latStr, 64)
		if err != nil {
			return weather.Location{}, errors.New("invalid lat")
		}
		lon, err := strconv.ParseFloat(lonStr, 64)
		if err != nil {
			return weather.Location{}, errors.New("invalid lon")
		}
		q.Lat, q.Lon = &lat, &lon
	}

	if err := validate.Struct(q); err != nil {
		return weather.Location{}, err
	}

	if q.Lat != nil && q.Lon != nil {
		return weather.LocationFromCoords(*q.Lat, *q.Lon), nil
	}
	return weather.LocationFromQuery(q.Q), nil
}

func parseDays(c *fiber.Ctx, def, max int) (int, error) {
	s := c.Query("days")
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n > max {
		return 0, errors.New("days must be between 1 and " + strconv.Itoa(max))
	}
	return n, nil
}
