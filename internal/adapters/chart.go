package adapters

import (
	"bytes"
	"fmt"
	"image/color"
	"image/png"

	"github.com/fogleman/gg"
	"gonum.org/v1/gonum/floats"

	"github.com/b0d/pv-forecast/internal/domain"
)

// MinChartPowerScale keeps the Y axis readable on low-output days (kW).
const MinChartPowerScale = 0.1

// RenderPowerChart draws the hourly whole-plant AC power series as a PNG
// line chart for the target day.
func RenderPowerChart(result domain.ForecastResult) ([]byte, error) {
	if result.Empty() {
		return nil, fmt.Errorf("no forecast data available")
	}

	// Image dimensions
	width := 800
	height := 400
	padding := 60

	dc := gg.NewContext(width, height)

	// Background
	dc.SetColor(color.RGBA{255, 255, 255, 255})
	dc.Clear()

	// Y scale from the series peak, rounded up for headroom
	maxPower := floats.Max(result.ACPowerKW)
	maxPower = float64(int(maxPower*10)+1) / 10
	if maxPower < MinChartPowerScale {
		maxPower = MinChartPowerScale
	}

	chartWidth := width - padding
	chartHeight := height - 2*padding

	// Grid lines
	dc.SetColor(color.RGBA{224, 230, 237, 255})
	dc.SetLineWidth(1)
	for i := 0; i <= 4; i++ {
		y := float64(padding) + (float64(i)/4.0)*float64(chartHeight)
		dc.DrawLine(float64(padding), y, float64(chartWidth), y)
		dc.Stroke()
	}

	// Y-axis labels (kW)
	dc.SetColor(color.RGBA{127, 140, 141, 255})
	for i := 0; i <= 4; i++ {
		y := float64(padding) + (float64(i)/4.0)*float64(chartHeight)
		value := maxPower - (float64(i)/4.0)*maxPower
		dc.DrawStringAnchored(fmt.Sprintf("%.2f kW", value), float64(padding-10), y, 1, 0.5)
	}

	pointSpacing := float64(chartWidth - padding)
	if len(result.ACPowerKW) > 1 {
		pointSpacing /= float64(len(result.ACPowerKW) - 1)
	}

	// Power line (orange)
	dc.SetColor(color.RGBA{247, 147, 30, 255})
	dc.SetLineWidth(3)
	for i, kw := range result.ACPowerKW {
		x := float64(padding) + float64(i)*pointSpacing
		y := float64(padding+chartHeight) - (kw/maxPower)*float64(chartHeight)
		if i == 0 {
			dc.MoveTo(x, y)
		} else {
			dc.LineTo(x, y)
		}
	}
	dc.Stroke()

	// Data point dots
	for i, kw := range result.ACPowerKW {
		x := float64(padding) + float64(i)*pointSpacing
		y := float64(padding+chartHeight) - (kw/maxPower)*float64(chartHeight)
		dc.DrawCircle(x, y, 3)
		dc.Fill()
	}

	// X-axis labels every third hour
	dc.SetColor(color.RGBA{44, 62, 80, 255})
	for i, ts := range result.Hours {
		if i%3 != 0 {
			continue
		}
		x := float64(padding) + float64(i)*pointSpacing
		dc.DrawStringAnchored(ts.Format("15:04"), x, float64(padding+chartHeight+20), 0.5, 0)
	}

	// Title
	title := fmt.Sprintf("Next-Day PV Forecast %s (%.2f kWh total)",
		result.Hours[0].Format("2006-01-02"), result.DailyEnergyKWh)
	dc.DrawStringAnchored(title, float64(width/2), 25, 0.5, 0.5)

	// Encode to PNG
	var buf bytes.Buffer
	if err := png.Encode(&buf, dc.Image()); err != nil {
		return nil, fmt.Errorf("failed to encode PNG: %w", err)
	}

	return buf.Bytes(), nil
}
