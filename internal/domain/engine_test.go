package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testModuleRecord() EquipmentRecord {
	return EquipmentRecord{
		ID: "Canadian_Solar_CS5P_220M___2009_",
		Params: map[string]float64{
			"Isco": 5.09, "Impo": 4.55, "Vmpo": 48.32,
			"I02": 9.0e-10, "R_s": 1.07, "R_sh": 381.7, "nNsVth": 2.64,
		},
	}
}

func testInverterRecord() EquipmentRecord {
	return EquipmentRecord{
		ID: "ABB__MICRO_0_25_I_OUTD_US_208__208V_",
		Params: map[string]float64{
			"Paco": 250.0, "Pdco": 259.6, "Vdco": 40.0, "Pso": 1.77,
			"C0": -0.000041, "C1": -0.000091, "C2": 0.000494, "C3": -0.013171,
			"Pnt": 0.075, "Vac": 208,
		},
	}
}

// clearSkyBerlinFrame builds a plausible clear-sky profile for the day after
// the June solstice in Berlin.
func clearSkyBerlinFrame(t *testing.T) WeatherFrame {
	t.Helper()
	loc, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)

	profile := []struct{ ghi, dni, dhi float64 }{
		{0, 0, 0}, {0, 0, 0}, {0, 0, 0}, {0, 0, 0},
		{10, 50, 8}, {60, 250, 30}, {150, 450, 60}, {280, 600, 80},
		{420, 700, 95}, {550, 780, 105}, {660, 830, 110}, {740, 860, 115},
		{790, 880, 118}, {810, 890, 120}, {790, 880, 118}, {740, 860, 115},
		{660, 830, 110}, {550, 780, 105}, {420, 700, 95}, {280, 600, 80},
		{150, 450, 60}, {60, 250, 30}, {10, 50, 8}, {0, 0, 0},
	}

	frame := make(WeatherFrame, 0, len(profile))
	for h, p := range profile {
		frame = append(frame, HourlyWeather{
			Timestamp:      time.Date(2025, 6, 21, h, 0, 0, 0, loc),
			GHI:            p.ghi,
			DNI:            p.dni,
			DHI:            p.dhi,
			AirTemperature: 18 + 8*float64(h%13)/12,
			WindSpeed:      3,
		})
	}
	return frame
}

func berlinPlant() PlantConfiguration {
	return PlantConfiguration{
		Latitude:       51.5074,
		Longitude:      13.4050,
		SurfaceTilt:    30,
		SurfaceAzimuth: 180,
		ModuleID:       "Canadian_Solar_CS5P_220M___2009_",
		InverterID:     "ABB__MICRO_0_25_I_OUTD_US_208__208V_",
		PanelCount:     1,
		InverterCount:  1,
		Transposition:  TranspositionPerez,
	}
}

func TestComputeOutputClearSkyDay(t *testing.T) {
	frame := clearSkyBerlinFrame(t)
	result := ComputeOutput(frame, berlinPlant(), testModuleRecord(), testInverterRecord())

	require.Len(t, result.Hours, 24)
	require.Len(t, result.ACPowerKW, 24)
	require.Len(t, result.HourlyEnergyKWh, 24)

	// One 220 W STC module: the inverter-clipped output must stay strictly
	// below the module's rated STC power, at every hour.
	for h, kw := range result.ACPowerKW {
		assert.Lessf(t, kw, 0.220, "hour %d exceeds module STC rating", h)
		assert.GreaterOrEqualf(t, kw, 0.0, "hour %d is negative", h)
	}

	// Positive production around local solar noon
	assert.Greater(t, result.ACPowerKW[13], 0.0)
	assert.Greater(t, result.DailyEnergyKWh, 0.5)

	// Nighttime hours are exactly zero
	for _, h := range []int{0, 1, 2, 3, 23} {
		assert.Zerof(t, result.ACPowerKW[h], "hour %d should be exactly zero", h)
	}
}

func TestComputeOutputScalesLinearlyWithPlantSize(t *testing.T) {
	frame := clearSkyBerlinFrame(t)
	module, inverter := testModuleRecord(), testInverterRecord()

	single := berlinPlant()
	tenfold := berlinPlant()
	tenfold.PanelCount = 10

	base := ComputeOutput(frame, single, module, inverter)
	scaled := ComputeOutput(frame, tenfold, module, inverter)

	require.Len(t, scaled.ACPowerKW, len(base.ACPowerKW))
	for h := range base.ACPowerKW {
		assert.InDeltaf(t, 10*base.ACPowerKW[h], scaled.ACPowerKW[h], 1e-9,
			"hour %d does not scale linearly", h)
	}
	assert.InDelta(t, 10*base.DailyEnergyKWh, scaled.DailyEnergyKWh, 1e-6)
}

func TestComputeOutputDailyTotalConsistency(t *testing.T) {
	result := ComputeOutput(clearSkyBerlinFrame(t), berlinPlant(), testModuleRecord(), testInverterRecord())

	var sum float64
	for _, kwh := range result.HourlyEnergyKWh {
		sum += kwh
	}
	require.Greater(t, sum, 0.0)
	assert.InEpsilon(t, sum, result.DailyEnergyKWh, 1e-9)

	// Hourly energy equals hourly power because the sampling period is 1h
	assert.Equal(t, result.ACPowerKW, result.HourlyEnergyKWh)
}

func TestComputeOutputIdempotent(t *testing.T) {
	frame := clearSkyBerlinFrame(t)
	first := ComputeOutput(frame, berlinPlant(), testModuleRecord(), testInverterRecord())
	second := ComputeOutput(frame, berlinPlant(), testModuleRecord(), testInverterRecord())
	assert.Equal(t, first, second)
}

func TestComputeOutputEmptyFrame(t *testing.T) {
	result := ComputeOutput(WeatherFrame{}, berlinPlant(), testModuleRecord(), testInverterRecord())

	assert.True(t, result.Empty())
	assert.Empty(t, result.ACPowerKW)
	assert.Empty(t, result.HourlyEnergyKWh)
	assert.Zero(t, result.DailyEnergyKWh)
}

func TestComputeOutputClampsNegativeIrradiance(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)

	frame := WeatherFrame{{
		Timestamp:      time.Date(2025, 6, 21, 12, 0, 0, 0, loc),
		GHI:            -5,
		DNI:            -20,
		DHI:            -3,
		AirTemperature: 20,
		WindSpeed:      2,
	}}

	result := ComputeOutput(frame, berlinPlant(), testModuleRecord(), testInverterRecord())
	require.Len(t, result.ACPowerKW, 1)
	assert.Zero(t, result.ACPowerKW[0])
}
