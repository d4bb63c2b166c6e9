package domain

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// ForecastService orchestrates the fetch, model and aggregation pipeline.
//
// All recoverable failures (transport, schema, missing target day, unknown
// equipment ids) are absorbed here and converted into an empty-but-valid
// ForecastResult carrying a diagnostic; no error escapes to the caller.
type ForecastService struct {
	provider WeatherProvider
	catalog  EquipmentCatalog
	logger   Logger
	now      func() time.Time

	mu    sync.RWMutex
	cache map[string]cacheEntry
}

// cacheEntry pairs a memoized result with the moment it stops being a
// next-day forecast: local midnight, when "tomorrow" moves on.
type cacheEntry struct {
	result  ForecastResult
	expires time.Time
}

// NewForecastService creates a new service instance.
func NewForecastService(provider WeatherProvider, catalog EquipmentCatalog, logger Logger) *ForecastService {
	return &ForecastService{
		provider: provider,
		catalog:  catalog,
		logger:   logger,
		now:      time.Now,
		cache:    make(map[string]cacheEntry),
	}
}

// Run executes one forecast request for tomorrow in the given IANA timezone.
func (s *ForecastService) Run(ctx context.Context, cfg PlantConfiguration, timezone string) ForecastResult {
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return diagnosticResult(err.Error())
	}

	loc, err := time.LoadLocation(timezone)
	if err != nil {
		s.logger.Error("Invalid timezone", "timezone", timezone, "error", err.Error())
		return diagnosticResult(fmt.Sprintf("unknown timezone %q", timezone))
	}

	module, inverter, selDiag := s.resolveEquipment(&cfg)
	if selDiag != "" {
		return diagnosticResult(selDiag)
	}

	// Results are memoized per full input tuple plus the calendar day of the
	// request: "tomorrow" is a moving target, so any entry written before
	// midnight is unreachable after the day rolls over.
	key := s.cacheKey(cfg, timezone, loc)
	s.mu.RLock()
	entry, hit := s.cache[key]
	s.mu.RUnlock()
	if hit && s.now().Before(entry.expires) {
		s.logger.Debug("Forecast cache hit", "key", key)
		return entry.result
	}

	frame, err := s.provider.FetchForecast(ctx, cfg.Latitude, cfg.Longitude, loc)
	if err != nil {
		tomorrow := s.now().In(loc).AddDate(0, 0, 1).Format("2006-01-02")
		var diag string
		if errors.Is(err, ErrNoForecastData) {
			diag = fmt.Sprintf("no forecast rows for %s in timezone %s", tomorrow, timezone)
		} else {
			diag = fmt.Sprintf("weather fetch failed: %v", err)
		}
		s.logger.Error("Weather fetch failed", "error", err.Error(), "target_day", tomorrow, "timezone", timezone)
		// Failed fetches are not cached; the user re-runs for a fresh attempt.
		return diagnosticResult(diag)
	}

	s.logger.Info("Weather frame fetched", "hours", len(frame), "timezone", timezone)

	result := ComputeOutput(frame, cfg, module, inverter)
	s.logger.Info("Forecast computed",
		"hours", len(result.Hours),
		"daily_energy_kwh", result.DailyEnergyKWh,
		"module", module.ID,
		"inverter", inverter.ID,
	)

	s.storeCached(key, result, loc)

	return result
}

// storeCached inserts a result and sweeps every entry whose day has rolled
// over, so the map stays bounded by the distinct inputs seen today.
func (s *ForecastService) storeCached(key string, result ForecastResult, loc *time.Location) {
	nowLoc := s.now().In(loc)
	expires := time.Date(nowLoc.Year(), nowLoc.Month(), nowLoc.Day()+1, 0, 0, 0, 0, loc)

	s.mu.Lock()
	for k, e := range s.cache {
		if !s.now().Before(e.expires) {
			delete(s.cache, k)
		}
	}
	s.cache[key] = cacheEntry{result: result, expires: expires}
	s.mu.Unlock()
}

// resolveEquipment looks up the selected module and inverter, falling back
// to the first catalog entry when an id is unknown. Only a fully empty
// catalog is unrecoverable.
func (s *ForecastService) resolveEquipment(cfg *PlantConfiguration) (module, inverter EquipmentRecord, diag string) {
	module, ok := s.catalog.Module(cfg.ModuleID)
	if !ok {
		ids := s.catalog.ModuleIDs()
		if len(ids) == 0 {
			return module, inverter, "equipment catalog has no modules"
		}
		s.logger.Warn("Unknown module id, falling back to first entry", "requested", cfg.ModuleID, "fallback", ids[0])
		cfg.ModuleID = ids[0]
		module, _ = s.catalog.Module(ids[0])
	}

	inverter, ok = s.catalog.Inverter(cfg.InverterID)
	if !ok {
		ids := s.catalog.InverterIDs()
		if len(ids) == 0 {
			return module, inverter, "equipment catalog has no inverters"
		}
		s.logger.Warn("Unknown inverter id, falling back to first entry", "requested", cfg.InverterID, "fallback", ids[0])
		cfg.InverterID = ids[0]
		inverter, _ = s.catalog.Inverter(ids[0])
	}

	return module, inverter, ""
}

// cacheKey composes every input the pipeline depends on, including the
// calendar day of the call in the target zone.
func (s *ForecastService) cacheKey(cfg PlantConfiguration, timezone string, loc *time.Location) string {
	day := s.now().In(loc).Format("2006-01-02")
	return fmt.Sprintf("%.4f|%.4f|%s|%.1f|%.1f|%s|%s|%d|%d|%s|%s",
		cfg.Latitude, cfg.Longitude, timezone,
		cfg.SurfaceTilt, cfg.SurfaceAzimuth,
		cfg.ModuleID, cfg.InverterID,
		cfg.PanelCount, cfg.InverterCount,
		cfg.Transposition, day,
	)
}

func diagnosticResult(diag string) ForecastResult {
	return ForecastResult{
		Hours:           []time.Time{},
		ACPowerKW:       []float64{},
		HourlyEnergyKWh: []float64{},
		Diagnostic:      diag,
	}
}
