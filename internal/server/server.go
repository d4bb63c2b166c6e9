// Package server exposes the forecast pipeline to the user-facing screen as
// a small JSON/CSV/PNG HTTP surface.
package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/b0d/pv-forecast/internal/adapters"
	"github.com/b0d/pv-forecast/internal/catalog"
	"github.com/b0d/pv-forecast/internal/config"
	"github.com/b0d/pv-forecast/internal/domain"
)

// Server wires the forecast service and catalog into HTTP handlers.
type Server struct {
	service  *domain.ForecastService
	catalog  *catalog.Catalog
	defaults *config.Config
	logger   domain.Logger
}

// New creates a server around the given service and catalog.
func New(service *domain.ForecastService, cat *catalog.Catalog, defaults *config.Config, logger domain.Logger) *Server {
	return &Server{
		service:  service,
		catalog:  cat,
		defaults: defaults,
		logger:   logger,
	}
}

// Router builds the route table.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/api/catalog", s.handleCatalog).Methods(http.MethodGet)
	r.HandleFunc("/api/forecast", s.handleForecast).Methods(http.MethodGet)
	r.HandleFunc("/api/forecast.csv", s.handleForecastCSV).Methods(http.MethodGet)
	r.HandleFunc("/api/forecast.png", s.handleForecastPNG).Methods(http.MethodGet)
	return r
}

type catalogEntry struct {
	ID    string `json:"id"`
	Brand string `json:"brand"`
	Label string `json:"label"`
}

type catalogResponse struct {
	Modules         []catalogEntry `json:"modules"`
	Inverters       []catalogEntry `json:"inverters"`
	ModuleBrands    []string       `json:"module_brands"`
	InverterBrands  []string       `json:"inverter_brands"`
	DefaultModule   int            `json:"default_module"`
	DefaultInverter int            `json:"default_inverter"`
}

// handleCatalog lists the equipment tables for the selection widgets.
func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	moduleIDs := s.catalog.ModuleIDs()
	inverterIDs := s.catalog.InverterIDs()

	resp := catalogResponse{
		ModuleBrands:    catalog.BrandsOf(moduleIDs),
		InverterBrands:  catalog.BrandsOf(inverterIDs),
		DefaultModule:   catalog.DefaultSelection(moduleIDs, s.defaults.ModuleID),
		DefaultInverter: catalog.DefaultSelection(inverterIDs, s.defaults.InverterID),
	}
	if brand := r.URL.Query().Get("module_brand"); brand != "" {
		moduleIDs = catalog.ModelsForBrand(moduleIDs, brand)
	}
	if brand := r.URL.Query().Get("inverter_brand"); brand != "" {
		inverterIDs = catalog.ModelsForBrand(inverterIDs, brand)
	}
	for _, id := range moduleIDs {
		rec, _ := s.catalog.Module(id)
		resp.Modules = append(resp.Modules, catalogEntry{ID: id, Brand: brandPrefix(id), Label: catalog.ModuleLabel(rec)})
	}
	for _, id := range inverterIDs {
		rec, _ := s.catalog.Inverter(id)
		resp.Inverters = append(resp.Inverters, catalogEntry{ID: id, Brand: brandPrefix(id), Label: catalog.InverterLabel(rec)})
	}

	writeJSON(w, http.StatusOK, resp)
}

// handleForecast runs the full pipeline and returns the three series.
func (s *Server) handleForecast(w http.ResponseWriter, r *http.Request) {
	cfg, tz, err := s.requestConfig(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	result := s.service.Run(r.Context(), cfg, tz)
	writeJSON(w, http.StatusOK, result)
}

// handleForecastCSV streams the hourly energy series as a download.
func (s *Server) handleForecastCSV(w http.ResponseWriter, r *http.Request) {
	cfg, tz, err := s.requestConfig(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	result := s.service.Run(r.Context(), cfg, tz)

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="hourly_kwh_forecast.csv"`)
	if err := result.WriteCSV(w); err != nil {
		s.logger.Error("Failed to write forecast CSV", "error", err.Error())
	}
}

// handleForecastPNG renders the hourly power chart.
func (s *Server) handleForecastPNG(w http.ResponseWriter, r *http.Request) {
	cfg, tz, err := s.requestConfig(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	result := s.service.Run(r.Context(), cfg, tz)
	img, err := adapters.RenderPowerChart(result)
	if err != nil {
		writeJSON(w, http.StatusOK, map[string]string{"diagnostic": result.Diagnostic})
		return
	}

	w.Header().Set("Content-Type", "image/png")
	if _, err := w.Write(img); err != nil {
		s.logger.Error("Failed to write chart", "error", err.Error())
	}
}

// requestConfig merges query parameters over the configured defaults.
func (s *Server) requestConfig(r *http.Request) (domain.PlantConfiguration, string, error) {
	cfg := s.defaults.PlantConfiguration()
	tz := s.defaults.Timezone
	q := r.URL.Query()

	var err error
	if cfg.Latitude, err = floatParam(q.Get("lat"), cfg.Latitude); err != nil {
		return cfg, tz, fmt.Errorf("invalid lat: %w", err)
	}
	if cfg.Longitude, err = floatParam(q.Get("lon"), cfg.Longitude); err != nil {
		return cfg, tz, fmt.Errorf("invalid lon: %w", err)
	}
	if cfg.SurfaceTilt, err = floatParam(q.Get("tilt"), cfg.SurfaceTilt); err != nil {
		return cfg, tz, fmt.Errorf("invalid tilt: %w", err)
	}
	if cfg.SurfaceAzimuth, err = floatParam(q.Get("azimuth"), cfg.SurfaceAzimuth); err != nil {
		return cfg, tz, fmt.Errorf("invalid azimuth: %w", err)
	}
	if cfg.PanelCount, err = intParam(q.Get("panels"), cfg.PanelCount); err != nil {
		return cfg, tz, fmt.Errorf("invalid panels: %w", err)
	}
	if cfg.InverterCount, err = intParam(q.Get("inverters"), cfg.InverterCount); err != nil {
		return cfg, tz, fmt.Errorf("invalid inverters: %w", err)
	}
	if v := q.Get("module"); v != "" {
		cfg.ModuleID = v
	}
	if v := q.Get("inverter"); v != "" {
		cfg.InverterID = v
	}
	if v := q.Get("model"); v != "" {
		cfg.Transposition = domain.TranspositionModel(v)
	}
	if v := q.Get("tz"); v != "" {
		tz = v
	}

	if err := cfg.Validate(); err != nil {
		return cfg, tz, err
	}
	return cfg, tz, nil
}

func floatParam(raw string, fallback float64) (float64, error) {
	if raw == "" {
		return fallback, nil
	}
	return strconv.ParseFloat(raw, 64)
}

func intParam(raw string, fallback int) (int, error) {
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}

func brandPrefix(id string) string {
	brands := catalog.BrandsOf([]string{id})
	if len(brands) == 0 {
		return ""
	}
	return brands[0]
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
