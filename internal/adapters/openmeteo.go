package adapters

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/b0d/pv-forecast/internal/domain"
)

const defaultOpenMeteoBaseURL = "https://api.open-meteo.com"

// hourlyVariables are the Open-Meteo hourly fields the pipeline depends on,
// in canonical-schema order.
const hourlyVariables = "shortwave_radiation,direct_normal_irradiance,diffuse_radiation,temperature_2m,wind_speed_10m"

// OpenMeteoProvider implements domain.WeatherProvider using the Open-Meteo
// forecast API. Timestamps are requested in UTC and converted client-side so
// the resulting frame is civil-time-correct in the caller's zone.
type OpenMeteoProvider struct {
	httpClient *http.Client
	baseURL    string
	limiter    *rate.Limiter
	logger     domain.Logger
	now        func() time.Time
}

// OpenMeteoResponse represents the API response structure
type OpenMeteoResponse struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Hourly    struct {
		Time                   []string  `json:"time"`
		ShortwaveRadiation     []float64 `json:"shortwave_radiation"`
		DirectNormalIrradiance []float64 `json:"direct_normal_irradiance"`
		DiffuseRadiation       []float64 `json:"diffuse_radiation"`
		Temperature2m          []float64 `json:"temperature_2m"`
		WindSpeed10m           []float64 `json:"wind_speed_10m"`
	} `json:"hourly"`
}

// NewOpenMeteoProvider creates a new Open-Meteo provider with a bounded
// request timeout and a courtesy rate limit on the shared public API.
func NewOpenMeteoProvider(timeout time.Duration, logger domain.Logger) *OpenMeteoProvider {
	return &OpenMeteoProvider{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    defaultOpenMeteoBaseURL,
		limiter:    rate.NewLimiter(rate.Every(time.Second), 2),
		logger:     logger,
		now:        time.Now,
	}
}

// FetchForecast fetches the hourly forecast, normalizes it to the canonical
// schema and keeps only the rows whose civil date is tomorrow in loc.
func (p *OpenMeteoProvider) FetchForecast(ctx context.Context, latitude, longitude float64, loc *time.Location) (domain.WeatherFrame, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	url := fmt.Sprintf(
		"%s/v1/forecast?latitude=%.4f&longitude=%.4f&hourly=%s&timezone=UTC",
		p.baseURL, latitude, longitude, hourlyVariables,
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "pv-forecast/1.0")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		p.logger.Error("Failed to fetch from Open-Meteo", "error", err.Error())
		return nil, fmt.Errorf("open-meteo request failed: %w", err)
	}
	defer resp.Body.Close()

	frame, err := p.parseResponse(resp, loc)
	if err != nil {
		p.logger.Error("Failed to parse Open-Meteo response", "error", err.Error())
		return nil, err
	}

	p.logger.Info("Fetched next-day forecast from Open-Meteo", "hours", len(frame))
	return frame, nil
}

func (p *OpenMeteoProvider) parseResponse(resp *http.Response, loc *time.Location) (domain.WeatherFrame, error) {
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("open-meteo returned status %d: %s", resp.StatusCode, string(body))
	}

	var apiResp OpenMeteoResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("failed to decode open-meteo response: %w", err)
	}
	if len(apiResp.Hourly.Time) == 0 {
		return nil, fmt.Errorf("open-meteo response has no hourly block: %w", domain.ErrNoForecastData)
	}

	return p.buildFrame(apiResp, loc)
}

// buildFrame converts the parallel hourly arrays into the canonical frame,
// keeping only tomorrow's rows in the target zone.
func (p *OpenMeteoProvider) buildFrame(apiResp OpenMeteoResponse, loc *time.Location) (domain.WeatherFrame, error) {
	h := apiResp.Hourly
	n := len(h.Time)
	for _, l := range []int{len(h.ShortwaveRadiation), len(h.DirectNormalIrradiance), len(h.DiffuseRadiation), len(h.Temperature2m), len(h.WindSpeed10m)} {
		if l < n {
			n = l
		}
	}

	tomorrow := p.now().In(loc).AddDate(0, 0, 1)
	ty, tm, td := tomorrow.Date()

	frame := make(domain.WeatherFrame, 0, 24)
	for i := 0; i < n; i++ {
		ts, err := time.ParseInLocation("2006-01-02T15:04", h.Time[i], time.UTC)
		if err != nil {
			p.logger.Warn("Skipping unparseable timestamp", "time_string", h.Time[i], "error", err.Error())
			continue
		}
		local := ts.In(loc)
		y, m, d := local.Date()
		if y != ty || m != tm || d != td {
			continue
		}

		frame = append(frame, domain.HourlyWeather{
			Timestamp:      local,
			GHI:            clampNonNegative(h.ShortwaveRadiation[i]),
			DNI:            clampNonNegative(h.DirectNormalIrradiance[i]),
			DHI:            clampNonNegative(h.DiffuseRadiation[i]),
			AirTemperature: h.Temperature2m[i],
			WindSpeed:      h.WindSpeed10m[i],
		})
	}

	if len(frame) == 0 {
		return nil, fmt.Errorf("%w: %04d-%02d-%02d in %s", domain.ErrNoForecastData, ty, tm, td, loc)
	}
	return frame, nil
}

func clampNonNegative(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
