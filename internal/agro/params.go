package agro

import "strings"

// CropParameters describes the agronomic comfort envelope for one crop:
// ideal ranges for temperature (°C), relative humidity (%) and daily
// precipitation (mm), plus stress tolerances.
type CropParameters struct {
	IdealTempMin          float64
	IdealTempMax          float64
	IdealHumidityMin      float64
	IdealHumidityMax      float64
	IdealPrecipitationMin float64
	IdealPrecipitationMax float64
	ToleratesHeat         bool
	ToleratesFrost        bool
	ToleratesDrought      bool
	ToleratesExcessRain   bool
}

// cropTable holds per-crop parameters keyed by lowercase crop name.
var cropTable = map[string]CropParameters{
	"corn": {
		IdealTempMin:          20,
		IdealTempMax:          30,
		IdealHumidityMin:      40,
		IdealHumidityMax:      80,
		IdealPrecipitationMin: 2,
		IdealPrecipitationMax: 10,
		ToleratesHeat:         true,
	},
	"soybean": {
		IdealTempMin:          20,
		IdealTempMax:          30,
		IdealHumidityMin:      50,
		IdealHumidityMax:      70,
		IdealPrecipitationMin: 3,
		IdealPrecipitationMax: 8,
		ToleratesHeat:         true,
		ToleratesDrought:      true,
	},
	"wheat": {
		IdealTempMin:          15,
		IdealTempMax:          24,
		IdealHumidityMin:      40,
		IdealHumidityMax:      70,
		IdealPrecipitationMin: 1,
		IdealPrecipitationMax: 5,
		ToleratesFrost:        true,
		ToleratesDrought:      true,
	},
	"coffee": {
		IdealTempMin:          18,
		IdealTempMax:          26,
		IdealHumidityMin:      60,
		IdealHumidityMax:      85,
		IdealPrecipitationMin: 3,
		IdealPrecipitationMax: 7,
	},
	"cotton": {
		IdealTempMin:          21,
		IdealTempMax:          32,
		IdealHumidityMin:      40,
		IdealHumidityMax:      70,
		IdealPrecipitationMin: 2,
		IdealPrecipitationMax: 7,
		ToleratesHeat:         true,
		ToleratesDrought:      true,
	},
	"rice": {
		IdealTempMin:          20,
		IdealTempMax:          30,
		IdealHumidityMin:      60,
		IdealHumidityMax:      90,
		IdealPrecipitationMin: 5,
		IdealPrecipitationMax: 15,
		ToleratesHeat:         true,
		ToleratesExcessRain:   true,
	},
	"sugarcane": {
		IdealTempMin:          22,
		IdealTempMax:          32,
		IdealHumidityMin:      50,
		IdealHumidityMax:      85,
		IdealPrecipitationMin: 4,
		IdealPrecipitationMax: 12,
		ToleratesHeat:         true,
	},
}

// LookupParameters resolves a crop type case-insensitively. Unknown crops
// fall back to the corn parameter set.
func LookupParameters(cropType string) CropParameters {
	if p, ok := cropTable[strings.ToLower(cropType)]; ok {
		return p
	}
	return cropTable["corn"]
}
