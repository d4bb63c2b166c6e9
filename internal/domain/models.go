package domain

import (
	"context"
	"errors"
	"math"
	"time"
)

// Solar reference constants
const (
	// STCIrradiance is the Standard Test Condition reference irradiance (W/m²)
	STCIrradiance = 1000.0

	// STCTemperature is the Standard Test Condition reference cell temperature (°C)
	STCTemperature = 25.0

	// GroundAlbedo is the ground reflectance used for the reflected
	// irradiance term of the transposition models.
	GroundAlbedo = 0.2
)

// ErrNoForecastData signals that the provider responded but carried no rows
// for the requested target day.
var ErrNoForecastData = errors.New("no forecast data for target day")

// Logger defines the interface for logging
type Logger interface {
	Info(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Debug(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
}

// WeatherProvider defines the interface for fetching next-day weather data
type WeatherProvider interface {
	// FetchForecast retrieves the hourly weather frame for tomorrow in the
	// given location's timezone. An absent target day is reported through
	// ErrNoForecastData rather than returned as a silent empty frame.
	FetchForecast(ctx context.Context, latitude, longitude float64, loc *time.Location) (WeatherFrame, error)
}

// EquipmentCatalog defines read-only access to the module/inverter tables
type EquipmentCatalog interface {
	Module(id string) (EquipmentRecord, bool)
	Inverter(id string) (EquipmentRecord, bool)
	ModuleIDs() []string
	InverterIDs() []string
}

// HourlyWeather is one hour of normalized forecast data.
type HourlyWeather struct {
	Timestamp      time.Time // hour-aligned, in the target timezone
	GHI            float64   // global horizontal irradiance, W/m²
	DNI            float64   // direct normal irradiance, W/m²
	DHI            float64   // diffuse horizontal irradiance, W/m²
	AirTemperature float64   // °C
	WindSpeed      float64   // m/s
}

// WeatherFrame is the canonical hourly weather table for one civil day.
// An empty frame is a legitimate "no data" signal, never an error state.
type WeatherFrame []HourlyWeather

func (f WeatherFrame) Empty() bool { return len(f) == 0 }

// TranspositionModel selects the sky-diffuse decomposition strategy used
// when projecting horizontal irradiance onto the array plane.
type TranspositionModel string

const (
	// TranspositionPerez is the anisotropic Perez 1990 model (default).
	TranspositionPerez TranspositionModel = "perez"
	// TranspositionIsotropic treats sky diffuse as uniform.
	TranspositionIsotropic TranspositionModel = "isotropic"
)

// PlantConfiguration describes one forecast request: location, mounting
// geometry, equipment selection and plant size.
type PlantConfiguration struct {
	Latitude       float64 // degrees, WGS84
	Longitude      float64 // degrees, WGS84
	SurfaceTilt    float64 // degrees from horizontal, 0-90
	SurfaceAzimuth float64 // compass bearing of panel face, 0-360
	ModuleID       string
	InverterID     string
	PanelCount     int
	InverterCount  int
	Transposition  TranspositionModel
}

// Normalize forces tilt, azimuth, counts and model choice into their valid
// ranges. Called before any computation so the engine never sees raw input.
func (c *PlantConfiguration) Normalize() {
	if c.SurfaceTilt < 0 {
		c.SurfaceTilt = 0
	}
	if c.SurfaceTilt > 90 {
		c.SurfaceTilt = 90
	}
	c.SurfaceAzimuth = math.Mod(c.SurfaceAzimuth, 360)
	if c.SurfaceAzimuth < 0 {
		c.SurfaceAzimuth += 360
	}
	if c.PanelCount < 1 {
		c.PanelCount = 1
	}
	if c.InverterCount < 1 {
		c.InverterCount = 1
	}
	if c.Transposition != TranspositionIsotropic {
		c.Transposition = TranspositionPerez
	}
}

// Validate reports out-of-range coordinates.
func (c PlantConfiguration) Validate() error {
	if c.Latitude < -90 || c.Latitude > 90 {
		return errors.New("latitude must be within [-90, 90]")
	}
	if c.Longitude < -180 || c.Longitude > 180 {
		return errors.New("longitude must be within [-180, 180]")
	}
	return nil
}

// EquipmentRecord is a named mapping of manufacturer-published parameters
// for either a module or an inverter. Records are read-only after load.
type EquipmentRecord struct {
	ID     string
	Params map[string]float64
}

// Param returns the named parameter, or 0 when absent.
func (r EquipmentRecord) Param(name string) float64 {
	return r.Params[name]
}

// ForecastResult holds the three aligned output series for one target day.
// All series are empty when the weather frame was empty; Diagnostic carries
// the human-readable reason in that case.
type ForecastResult struct {
	Hours           []time.Time `json:"hours"`
	ACPowerKW       []float64   `json:"ac_power_kw"`
	HourlyEnergyKWh []float64   `json:"hourly_energy_kwh"`
	DailyEnergyKWh  float64     `json:"daily_energy_kwh"`
	Diagnostic      string      `json:"diagnostic,omitempty"`
}

func (r ForecastResult) Empty() bool { return len(r.Hours) == 0 }
