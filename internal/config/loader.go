package config

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/b0d/pv-forecast/internal/domain"
)

// Config holds all application configuration.
type Config struct {
	// Location and timezone of the installation
	Latitude  float64
	Longitude float64
	Timezone  string

	// Mounting geometry
	SurfaceTilt    float64
	SurfaceAzimuth float64

	// Default equipment selection and plant size
	ModuleID      string
	InverterID    string
	PanelCount    int
	InverterCount int

	// Irradiance transposition strategy ("perez" or "isotropic")
	Transposition string

	// Server and outbound HTTP
	ListenAddr        string
	APITimeoutSeconds int
}

// Defaults returns the configuration the tool ships with.
func Defaults() *Config {
	return &Config{
		Latitude:          51.5074,
		Longitude:         13.4050,
		Timezone:          "Europe/Berlin",
		SurfaceTilt:       30,
		SurfaceAzimuth:    180,
		ModuleID:          "Canadian_Solar_CS5P_220M___2009_",
		InverterID:        "ABB__MICRO_0_25_I_OUTD_US_208__208V_",
		PanelCount:        1,
		InverterCount:     1,
		Transposition:     string(domain.TranspositionPerez),
		ListenAddr:        ":8080",
		APITimeoutSeconds: 15,
	}
}

// LoadConfig loads configuration from an application.properties file,
// falling back to defaults when the file does not exist. Environment
// variables with a PV_ prefix override file values.
func LoadConfig(configPath string) (*Config, error) {
	config := Defaults()

	// Expand ~ to home directory
	if strings.HasPrefix(configPath, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		configPath = filepath.Join(home, configPath[1:])
	}

	file, err := os.Open(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			applyEnvOverrides(config)
			return config, nil
		}
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Skip comments and empty lines
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		// Remove trailing comments
		if idx := strings.Index(value, "#"); idx != -1 {
			value = strings.TrimSpace(value[:idx])
		}

		applyKey(config, key, value)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	applyEnvOverrides(config)

	if config.Timezone == "" {
		return nil, fmt.Errorf("timezone must be configured")
	}

	return config, nil
}

func applyKey(config *Config, key, value string) {
	switch key {
	case "latitude":
		if v, err := strconv.ParseFloat(value, 64); err == nil {
			config.Latitude = v
		}
	case "longitude":
		if v, err := strconv.ParseFloat(value, 64); err == nil {
			config.Longitude = v
		}
	case "timezone":
		config.Timezone = value
	case "surface_tilt":
		if v, err := strconv.ParseFloat(value, 64); err == nil {
			config.SurfaceTilt = v
		}
	case "surface_azimuth":
		if v, err := strconv.ParseFloat(value, 64); err == nil {
			config.SurfaceAzimuth = v
		}
	case "module_id":
		config.ModuleID = value
	case "inverter_id":
		config.InverterID = value
	case "panel_count":
		if v, err := strconv.Atoi(value); err == nil {
			config.PanelCount = v
		}
	case "inverter_count":
		if v, err := strconv.Atoi(value); err == nil {
			config.InverterCount = v
		}
	case "transposition":
		config.Transposition = value
	case "listen_addr":
		config.ListenAddr = value
	case "api_timeout_seconds":
		if v, err := strconv.Atoi(value); err == nil {
			config.APITimeoutSeconds = v
		}
	}
}

// applyEnvOverrides applies PV_* environment variable overrides.
func applyEnvOverrides(config *Config) {
	if v := os.Getenv("PV_LATITUDE"); v != "" {
		if val, err := strconv.ParseFloat(v, 64); err == nil {
			config.Latitude = val
		}
	}
	if v := os.Getenv("PV_LONGITUDE"); v != "" {
		if val, err := strconv.ParseFloat(v, 64); err == nil {
			config.Longitude = val
		}
	}
	if v := os.Getenv("PV_TIMEZONE"); v != "" {
		config.Timezone = v
	}
	if v := os.Getenv("PV_SURFACE_TILT"); v != "" {
		if val, err := strconv.ParseFloat(v, 64); err == nil {
			config.SurfaceTilt = val
		}
	}
	if v := os.Getenv("PV_SURFACE_AZIMUTH"); v != "" {
		if val, err := strconv.ParseFloat(v, 64); err == nil {
			config.SurfaceAzimuth = val
		}
	}
	if v := os.Getenv("PV_MODULE_ID"); v != "" {
		config.ModuleID = v
	}
	if v := os.Getenv("PV_INVERTER_ID"); v != "" {
		config.InverterID = v
	}
	if v := os.Getenv("PV_PANEL_COUNT"); v != "" {
		if val, err := strconv.Atoi(v); err == nil {
			config.PanelCount = val
		}
	}
	if v := os.Getenv("PV_INVERTER_COUNT"); v != "" {
		if val, err := strconv.Atoi(v); err == nil {
			config.InverterCount = val
		}
	}
	if v := os.Getenv("PV_TRANSPOSITION"); v != "" {
		config.Transposition = v
	}
	if v := os.Getenv("PV_LISTEN_ADDR"); v != "" {
		config.ListenAddr = v
	}
	if v := os.Getenv("PV_API_TIMEOUT_SECONDS"); v != "" {
		if val, err := strconv.Atoi(v); err == nil {
			config.APITimeoutSeconds = val
		}
	}
}

// PlantConfiguration converts the configured defaults into a request.
func (c *Config) PlantConfiguration() domain.PlantConfiguration {
	return domain.PlantConfiguration{
		Latitude:       c.Latitude,
		Longitude:      c.Longitude,
		SurfaceTilt:    c.SurfaceTilt,
		SurfaceAzimuth: c.SurfaceAzimuth,
		ModuleID:       c.ModuleID,
		InverterID:     c.InverterID,
		PanelCount:     c.PanelCount,
		InverterCount:  c.InverterCount,
		Transposition:  domain.TranspositionModel(c.Transposition),
	}
}
