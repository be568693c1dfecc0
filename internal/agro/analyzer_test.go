package agro

import (
	"math"
	"strings"
	"testing"

	"github.com/agrotm/weather-oracle/internal/weather"
)

func snapshotWith(temp, humidity, precip float64) *weather.WeatherSnapshot {
	return &weather.WeatherSnapshot{
		Current: weather.CurrentConditions{
			Temperature:   temp,
			Humidity:      humidity,
			Precipitation: precip,
		},
		Source: weather.SourceWeatherAPI,
	}
}

func forecastOf(days ...weather.ForecastDay) *weather.WeatherForecast {
	return &weather.WeatherForecast{Forecast: days}
}

// mildDay is a forecast day that triggers no extreme-condition clause.
func mildDay(precip float64) weather.ForecastDay {
	return weather.ForecastDay{
		MinTemp:            12,
		MaxTemp:            26,
		TotalPrecipitation: precip,
	}
}

func factorByName(t *testing.T, a *Assessment, name string) Factor {
	t.Helper()
	for _, f := range a.Factors {
		if f.Factor == name {
			return f
		}
	}
	t.Fatalf("factor %q not found in %+v", name, a.Factors)
	return Factor{}
}

func TestTemperatureMidpointReward(t *testing.T) {
	// Corn's ideal band is 20-30; 25°C sits exactly at the midpoint.
	snapshot := snapshotWith(25, 60, 5)
	forecast := forecastOf(mildDay(5), mildDay(5), mildDay(5))

	assessment := Analyze("corn", snapshot, forecast)

	temp := factorByName(t, assessment, "Temperature")
	if temp.Impact != 10 {
		t.Fatalf("expected temperature impact 10 at band midpoint, got %v", temp.Impact)
	}
}

func TestTemperatureEdgeOfBand(t *testing.T) {
	// At the band edge the reward decays to 8.
	snapshot := snapshotWith(30, 60, 5)
	forecast := forecastOf(mildDay(5), mildDay(5), mildDay(5))

	assessment := Analyze("corn", snapshot, forecast)

	temp := factorByName(t, assessment, "Temperature")
	if math.Abs(temp.Impact-8) > 1e-9 {
		t.Fatalf("expected temperature impact 8 at band edge, got %v", temp.Impact)
	}
}

func TestFrostPenaltyRespectsTolerance(t *testing.T) {
	// Wheat tolerates frost: a sub-zero forecast day costs -3, not -8.
	snapshot := snapshotWith(19.5, 55, 3)
	forecast := forecastOf(
		weather.ForecastDay{MinTemp: -1, MaxTemp: 10, TotalPrecipitation: 3},
		mildDay(3),
		mildDay(3),
	)

	assessment := Analyze("wheat", snapshot, forecast)

	extreme := factorByName(t, assessment, "Extreme Conditions")
	if extreme.Impact != -3 {
		t.Fatalf("expected frost penalty -3 for frost-tolerant wheat, got %v", extreme.Impact)
	}

	// Corn does not tolerate frost.
	assessment = Analyze("corn", snapshotWith(25, 60, 5), forecastOf(
		weather.ForecastDay{MinTemp: -1, MaxTemp: 10, TotalPrecipitation: 5},
		mildDay(5),
	))
	extreme = factorByName(t, assessment, "Extreme Conditions")
	if extreme.Impact != -8 {
		t.Fatalf("expected frost penalty -8 for corn, got %v", extreme.Impact)
	}
}

func TestDroughtRequiresFiveForecastDays(t *testing.T) {
	snapshot := snapshotWith(25, 60, 6)

	dry := make([]weather.ForecastDay, 0, 5)
	for i := 0; i < 5; i++ {
		dry = append(dry, mildDay(0.5))
	}

	assessment := Analyze("corn", snapshot, forecastOf(dry...))
	extreme := factorByName(t, assessment, "Extreme Conditions")
	if extreme.Impact != -7 {
		t.Fatalf("expected drought penalty -7 over 5 dry days, got %v", extreme.Impact)
	}
	if !strings.Contains(extreme.Description, "drought") {
		t.Fatalf("expected drought in description, got %q", extreme.Description)
	}

	// Same conditions over only 4 days must not trigger the drought clause.
	assessment = Analyze("corn", snapshot, forecastOf(dry[:4]...))
	for _, f := range assessment.Factors {
		if f.Factor == "Extreme Conditions" {
			t.Fatalf("4-day forecast should not trigger extreme conditions, got %+v", f)
		}
	}
}

func TestExtremePenaltyFloor(t *testing.T) {
	// Frost + heat + excessive rain on a coffee crop (tolerates nothing)
	// sums past -10 and must be clamped.
	snapshot := snapshotWith(22, 70, 5)
	forecast := forecastOf(
		weather.ForecastDay{MinTemp: -2, MaxTemp: 36, TotalPrecipitation: 25},
		mildDay(5),
	)

	assessment := Analyze("coffee", snapshot, forecast)
	extreme := factorByName(t, assessment, "Extreme Conditions")
	if extreme.Impact != -10 {
		t.Fatalf("expected extreme penalty floored at -10, got %v", extreme.Impact)
	}
}

func TestUnknownCropUsesCornParameters(t *testing.T) {
	snapshot := snapshotWith(25, 60, 5)
	forecast := forecastOf(mildDay(5), mildDay(5), mildDay(5))

	known := Analyze("corn", snapshot, forecast)
	unknown := Analyze("quinoa", snapshot, forecast)

	if known.Score != unknown.Score {
		t.Fatalf("unknown crop should score like corn: %v vs %v", known.Score, unknown.Score)
	}
}

func TestCropLookupIsCaseInsensitive(t *testing.T) {
	if LookupParameters("WHEAT") != LookupParameters("wheat") {
		t.Fatal("crop lookup should ignore case")
	}
}

func TestSoybeanHotDryScenario(t *testing.T) {
	// 32°C, 45% humidity, no rain, and a week averaging 1mm/day.
	snapshot := snapshotWith(32, 45, 0)
	dry := make([]weather.ForecastDay, 0, 7)
	for i := 0; i < 7; i++ {
		dry = append(dry, mildDay(1))
	}

	assessment := Analyze("soybean", snapshot, forecastOf(dry...))

	// Heat-tolerant: 2 degrees over idealMax costs -min(10, 2) = -2.
	temp := factorByName(t, assessment, "Temperature")
	if temp.Impact != -2 {
		t.Fatalf("expected temperature impact -2, got %v", temp.Impact)
	}

	// Effective precipitation (0 + 1)/2 = 0.5, idealMin 3, drought-tolerant:
	// -min(10, 2*2.5) = -5.
	precip := factorByName(t, assessment, "Precipitation")
	if precip.Impact != -5 {
		t.Fatalf("expected precipitation impact -5, got %v", precip.Impact)
	}

	// Humidity 45 under idealMin 50: -5/5 = -1. Drought clause (tolerant): -3.
	// Mean of (-2, -1, -5, -3) = -2.75.
	if math.Abs(assessment.Score-(-2.75)) > 1e-9 {
		t.Fatalf("expected score -2.75, got %v", assessment.Score)
	}
	if assessment.Impact == ImpactPositive {
		t.Fatalf("hot dry week should never read positive, got %v", assessment.Impact)
	}

	var hasIrrigation bool
	for _, r := range assessment.Recommendations {
		if strings.Contains(r, "supplemental irrigation") {
			hasIrrigation = true
		}
	}
	if !hasIrrigation {
		t.Fatalf("expected a supplemental irrigation recommendation, got %v", assessment.Recommendations)
	}
}

func TestRecommendationOrder(t *testing.T) {
	// Cold, dry and frosty for coffee: temperature, humidity, precipitation
	// and frost advisories must come out in factor order.
	snapshot := snapshotWith(10, 30, 0)
	forecast := forecastOf(
		weather.ForecastDay{MinTemp: -1, MaxTemp: 12, TotalPrecipitation: 0},
		mildDay(0),
		mildDay(0),
	)

	assessment := Analyze("coffee", snapshot, forecast)

	if len(assessment.Recommendations) != 4 {
		t.Fatalf("expected 4 recommendations, got %v", assessment.Recommendations)
	}
	checks := []string{"cold", "humidity", "irrigation", "frost"}
	for i, want := range checks {
		if !strings.Contains(strings.ToLower(assessment.Recommendations[i]), want) {
			t.Fatalf("recommendation %d should mention %q, got %q", i, want, assessment.Recommendations[i])
		}
	}
}
