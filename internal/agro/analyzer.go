package agro

import (
	"math"
	"strings"

	"github.com/agrotm/weather-oracle/internal/weather"
)

// Impact classifies the overall effect of the weather on a crop.
type Impact string

const (
	ImpactPositive Impact = "positive"
	ImpactNeutral  Impact = "neutral"
	ImpactNegative Impact = "negative"
)

// Factor is one scored climatic contribution, in [-10, 10].
type Factor struct {
	Factor      string  `json:"factor"`
	Impact      float64 `json:"impact"`
	Description string  `json:"description"`
}

// Assessment is the full crop-impact result. It has no lifecycle of its
// own: recomputed on every call, never persisted.
type Assessment struct {
	CropType        string   `json:"cropType"`
	Impact          Impact   `json:"impact"`
	Score           float64  `json:"score"`
	Factors         []Factor `json:"factors"`
	Recommendations []string `json:"recommendations"`
}

// Analyze scores the effect of current conditions plus a multi-day forecast
// on the given crop. Pure function, no I/O; the orchestrator is the
// recovery boundary for malformed input.
func Analyze(cropType string, snapshot *weather.WeatherSnapshot, forecast *weather.WeatherForecast) *Assessment {
	params := LookupParameters(cropType)

	currentTemp := snapshot.Current.Temperature
	currentHumidity := snapshot.Current.Humidity
	currentPrecip := snapshot.Current.Precipitation

	// Temperature: penalties scale with deviation from the ideal band;
	// inside the band the reward peaks at the midpoint and decays to 8 at
	// either edge.
	var tempImpact float64
	switch {
	case currentTemp < params.IdealTempMin:
		deviation := params.IdealTempMin - currentTemp
		tempImpact = -math.Min(10, deviation*2)
	case currentTemp > params.IdealTempMax:
		deviation := currentTemp - params.IdealTempMax
		if params.ToleratesHeat {
			tempImpact = -math.Min(10, deviation)
		} else {
			tempImpact = -math.Min(10, deviation*2)
		}
	default:
		tempImpact = midpointReward(currentTemp, params.IdealTempMin, params.IdealTempMax)
	}

	// Humidity: symmetric deviation/5 penalty on both sides.
	var humidityImpact float64
	switch {
	case currentHumidity < params.IdealHumidityMin:
		deviation := params.IdealHumidityMin - currentHumidity
		humidityImpact = -math.Min(10, deviation/5)
	case currentHumidity > params.IdealHumidityMax:
		deviation := currentHumidity - params.IdealHumidityMax
		humidityImpact = -math.Min(10, deviation/5)
	default:
		humidityImpact = midpointReward(currentHumidity, params.IdealHumidityMin, params.IdealHumidityMax)
	}

	// Precipitation: blends current with the forecast-average daily total.
	var forecastPrecip float64
	for _, day := range forecast.Forecast {
		forecastPrecip += day.TotalPrecipitation
	}
	forecastPrecip /= float64(len(forecast.Forecast))
	effectivePrecip := (currentPrecip + forecastPrecip) / 2

	var precipImpact float64
	switch {
	case effectivePrecip < params.IdealPrecipitationMin:
		deviation := params.IdealPrecipitationMin - effectivePrecip
		if params.ToleratesDrought {
			precipImpact = -math.Min(10, deviation*2)
		} else {
			precipImpact = -math.Min(10, deviation*3)
		}
	case effectivePrecip > params.IdealPrecipitationMax:
		deviation := effectivePrecip - params.IdealPrecipitationMax
		if params.ToleratesExcessRain {
			precipImpact = -math.Min(10, deviation)
		} else {
			precipImpact = -math.Min(10, deviation*2)
		}
	default:
		precipImpact = midpointReward(effectivePrecip, params.IdealPrecipitationMin, params.IdealPrecipitationMax)
	}

	// Extreme conditions in the forecast window; accumulated and floored
	// at -10, only reported as a factor when something triggered.
	var extremeImpact float64
	var extremeDesc strings.Builder

	hasFrost := anyDay(forecast.Forecast, func(d weather.ForecastDay) bool { return d.MinTemp <= 0 })
	if hasFrost {
		if params.ToleratesFrost {
			extremeImpact += -3
		} else {
			extremeImpact += -8
		}
		extremeDesc.WriteString("Frost expected. ")
	}

	hasExtremeHeat := anyDay(forecast.Forecast, func(d weather.ForecastDay) bool { return d.MaxTemp >= 35 })
	if hasExtremeHeat {
		if params.ToleratesHeat {
			extremeImpact += -2
		} else {
			extremeImpact += -6
		}
		extremeDesc.WriteString("Extreme heat expected. ")
	}

	hasExcessiveRain := anyDay(forecast.Forecast, func(d weather.ForecastDay) bool { return d.TotalPrecipitation >= 20 })
	if hasExcessiveRain {
		if params.ToleratesExcessRain {
			extremeImpact += -2
		} else {
			extremeImpact += -7
		}
		extremeDesc.WriteString("Excessive rain expected. ")
	}

	hasDrought := len(forecast.Forecast) >= 5 &&
		everyDay(forecast.Forecast, func(d weather.ForecastDay) bool { return d.TotalPrecipitation <= 1 })
	if hasDrought {
		if params.ToleratesDrought {
			extremeImpact += -3
		} else {
			extremeImpact += -7
		}
		extremeDesc.WriteString("Prolonged drought expected. ")
	}

	extremeImpact = math.Max(-10, extremeImpact)

	factors := []Factor{
		{
			Factor:      "Temperature",
			Impact:      tempImpact,
			Description: rangeDescription(tempImpact > 0, "Temperature", currentTemp < params.IdealTempMin),
		},
		{
			Factor:      "Humidity",
			Impact:      humidityImpact,
			Description: rangeDescription(humidityImpact > 0, "Humidity", currentHumidity < params.IdealHumidityMin),
		},
		{
			Factor:      "Precipitation",
			Impact:      precipImpact,
			Description: rangeDescription(precipImpact > 0, "Precipitation", effectivePrecip < params.IdealPrecipitationMin),
		},
	}

	if extremeImpact < 0 {
		factors = append(factors, Factor{
			Factor:      "Extreme Conditions",
			Impact:      extremeImpact,
			Description: strings.TrimSpace(extremeDesc.String()),
		})
	}

	var total float64
	for _, f := range factors {
		total += f.Impact
	}
	score := total / float64(len(factors))

	var impact Impact
	switch {
	case score >= 3:
		impact = ImpactPositive
	case score >= -3:
		impact = ImpactNeutral
	default:
		impact = ImpactNegative
	}

	var recommendations []string
	if tempImpact < 0 {
		if currentTemp < params.IdealTempMin {
			recommendations = append(recommendations,
				"Consider greenhouses or row covers to protect the crop from cold.")
		} else {
			recommendations = append(recommendations,
				"Deploy irrigation or shading systems to reduce heat stress.")
		}
	}
	if humidityImpact < 0 {
		if currentHumidity < params.IdealHumidityMin {
			recommendations = append(recommendations,
				"Increase irrigation frequency to raise soil and ambient humidity.")
		} else {
			recommendations = append(recommendations,
				"Improve soil drainage and consider lowering planting density to increase airflow.")
		}
	}
	if precipImpact < 0 {
		if effectivePrecip < params.IdealPrecipitationMin {
			recommendations = append(recommendations,
				"Set up supplemental irrigation and consider mulching to conserve soil moisture.")
		} else {
			recommendations = append(recommendations,
				"Improve drainage systems and consider raised beds to prevent waterlogging.")
		}
	}
	if hasFrost && !params.ToleratesFrost {
		recommendations = append(recommendations,
			"Apply frost protection such as covers, heaters or water sprinkling.")
	}
	if hasExtremeHeat && !params.ToleratesHeat {
		recommendations = append(recommendations,
			"Install temporary shading and increase irrigation frequency during the hottest hours.")
	}
	if hasExcessiveRain && !params.ToleratesExcessRain {
		recommendations = append(recommendations,
			"Improve soil drainage, consider raised beds and apply preventive fungicides against fungal disease.")
	}
	if hasDrought && !params.ToleratesDrought {
		recommendations = append(recommendations,
			"Set up efficient irrigation, use mulch to conserve soil moisture and consider drought-resistant varieties.")
	}

	return &Assessment{
		CropType:        cropType,
		Impact:          impact,
		Score:           score,
		Factors:         factors,
		Recommendations: recommendations,
	}
}

// midpointReward scores a value inside [min, max]: 10 at the exact middle
// of the band, decaying linearly to 8 at either edge.
func midpointReward(value, min, max float64) float64 {
	position := (value - min) / (max - min)
	return 10 - math.Abs(position-0.5)*4
}

func rangeDescription(withinIdeal bool, name string, belowIdeal bool) string {
	if withinIdeal {
		return name + " within the ideal range for the crop."
	}
	direction := "above"
	if belowIdeal {
		direction = "below"
	}
	return name + " " + direction + " the ideal range for the crop."
}

func anyDay(days []weather.ForecastDay, pred func(weather.ForecastDay) bool) bool {
	for _, d := range days {
		if pred(d) {
			return true
		}
	}
	return false
}

func everyDay(days []weather.ForecastDay, pred func(weather.ForecastDay) bool) bool {
	for _, d := range days {
		if !pred(d) {
			return false
		}
	}
	return true
}
