package domain

import (
	"math"
	"time"

	"gonum.org/v1/gonum/floats"
)

// ComputeOutput runs the canonical weather frame through the PV performance
// model and returns whole-plant hourly power, hourly energy and the daily
// total. An empty frame yields empty series without touching the model.
//
// The function is deterministic and side-effect-free: identical inputs
// always produce identical outputs.
func ComputeOutput(weather WeatherFrame, cfg PlantConfiguration, module, inverter EquipmentRecord) ForecastResult {
	cfg.Normalize()

	if weather.Empty() {
		return ForecastResult{
			Hours:           []time.Time{},
			ACPowerKW:       []float64{},
			HourlyEnergyKWh: []float64{},
		}
	}

	mp := ModuleParamsFrom(module)
	ip := InverterParamsFrom(inverter)
	scale := float64(cfg.PanelCount) * float64(cfg.InverterCount)

	result := ForecastResult{
		Hours:           make([]time.Time, len(weather)),
		ACPowerKW:       make([]float64, len(weather)),
		HourlyEnergyKWh: make([]float64, len(weather)),
	}

	for i, hour := range weather {
		result.Hours[i] = hour.Timestamp
		result.ACPowerKW[i] = hourlyPlantPowerKW(hour, cfg, mp, ip, scale)
	}

	// The sampling interval is exactly one hour, so hourly energy in kWh is
	// numerically equal to average power in kW.
	copy(result.HourlyEnergyKWh, result.ACPowerKW)
	result.DailyEnergyKWh = floats.Sum(result.HourlyEnergyKWh)

	return result
}

// hourlyPlantPowerKW computes whole-plant AC power for one hour.
func hourlyPlantPowerKW(hour HourlyWeather, cfg PlantConfiguration, mp ModuleParams, ip InverterParams, scale float64) float64 {
	ghi := math.Max(hour.GHI, 0)
	dni := math.Max(hour.DNI, 0)
	dhi := math.Max(hour.DHI, 0)
	if ghi == 0 && dni == 0 && dhi == 0 {
		return 0
	}

	sun := SolarPosition(hour.Timestamp, cfg.Latitude, cfg.Longitude)
	poa := PlaneOfArray(hour, sun, cfg.SurfaceTilt, cfg.SurfaceAzimuth, cfg.Transposition)
	cellTemp := CellTemperature(poa, hour.AirTemperature, hour.WindSpeed)

	_, vMP, pDC := mp.MaxPowerPoint(poa, cellTemp)
	acWatts := ip.ACPower(vMP, pDC)

	return acWatts * scale / 1000.0
}
