package domain

import (
	"testing"
	"time"
)

func TestPlaneOfArrayHorizontal(t *testing.T) {
	// On a horizontal surface the transposition must reconstruct GHI from
	// consistent components: GHI = DNI·cos(zenith) + DHI.
	sun := SunPosition{ZenithDeg: 60, ElevationDeg: 30, AzimuthDeg: 180}
	w := HourlyWeather{
		Timestamp: time.Date(2025, 6, 21, 12, 0, 0, 0, time.UTC),
		GHI:       350,
		DNI:       500,
		DHI:       100,
	}

	poa := PlaneOfArray(w, sun, 0, 180, TranspositionIsotropic)
	if poa < 349 || poa > 351 {
		t.Errorf("horizontal POA = %.2f, want ~350", poa)
	}
}

func TestPlaneOfArrayFacingSun(t *testing.T) {
	// Surface normal pointed straight at the sun: the beam term equals DNI.
	sun := SunPosition{ZenithDeg: 60, ElevationDeg: 30, AzimuthDeg: 180}
	w := HourlyWeather{
		Timestamp: time.Date(2025, 6, 21, 12, 0, 0, 0, time.UTC),
		GHI:       350,
		DNI:       500,
		DHI:       100,
	}

	// beam 500, isotropic diffuse 75, ground 17.5
	poa := PlaneOfArray(w, sun, 60, 180, TranspositionIsotropic)
	if poa < 590 || poa > 595 {
		t.Errorf("sun-normal POA = %.2f, want ~592.5", poa)
	}
}

func TestPlaneOfArrayZeroIrradiance(t *testing.T) {
	sun := SunPosition{ZenithDeg: 100, ElevationDeg: -10}
	w := HourlyWeather{Timestamp: time.Date(2025, 6, 21, 22, 0, 0, 0, time.UTC)}

	for _, model := range []TranspositionModel{TranspositionPerez, TranspositionIsotropic} {
		if poa := PlaneOfArray(w, sun, 30, 180, model); poa != 0 {
			t.Errorf("model %s: POA = %.2f for dark sky, want 0", model, poa)
		}
	}
}

func TestPlaneOfArrayNegativeInputsClamped(t *testing.T) {
	sun := SunPosition{ZenithDeg: 60, ElevationDeg: 30, AzimuthDeg: 180}
	w := HourlyWeather{
		Timestamp: time.Date(2025, 6, 21, 12, 0, 0, 0, time.UTC),
		GHI:       -5,
		DNI:       -10,
		DHI:       -2,
	}

	if poa := PlaneOfArray(w, sun, 30, 180, TranspositionPerez); poa != 0 {
		t.Errorf("POA = %.2f for negative inputs, want 0", poa)
	}
}

func TestPerezVersusIsotropic(t *testing.T) {
	// Under a clear sky (high DNI relative to DHI) the anisotropic model
	// shifts diffuse toward the circumsolar region; on a south-facing tilt
	// with the sun in front of the array it should not fall below ~70% of
	// the isotropic estimate and typically exceeds it.
	sun := SunPosition{ZenithDeg: 40, ElevationDeg: 50, AzimuthDeg: 180}
	w := HourlyWeather{
		Timestamp: time.Date(2025, 6, 21, 12, 0, 0, 0, time.UTC),
		GHI:       800,
		DNI:       850,
		DHI:       120,
	}

	perez := PlaneOfArray(w, sun, 30, 180, TranspositionPerez)
	iso := PlaneOfArray(w, sun, 30, 180, TranspositionIsotropic)

	if perez <= 0 || iso <= 0 {
		t.Fatalf("POA must be positive: perez=%.2f iso=%.2f", perez, iso)
	}
	if perez < 0.7*iso || perez > 1.3*iso {
		t.Errorf("perez POA %.2f out of plausible range around isotropic %.2f", perez, iso)
	}
}

func TestRelativeAirmass(t *testing.T) {
	tests := []struct {
		zenith  float64
		wantMin float64
		wantMax float64
	}{
		{0, 0.99, 1.01},
		{60, 1.95, 2.05},
		{85, 10, 12},
		{95, 0, 0}, // below horizon
	}

	for _, tt := range tests {
		got := relativeAirmass(tt.zenith)
		if got < tt.wantMin || got > tt.wantMax {
			t.Errorf("relativeAirmass(%.0f) = %.3f, want between %.2f and %.2f",
				tt.zenith, got, tt.wantMin, tt.wantMax)
		}
	}
}
