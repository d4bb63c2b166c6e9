package domain

import "testing"

// cs5p220m matches the bundled Canadian Solar CS5P-220M record (220 W STC).
var cs5p220m = ModuleParams{
	Isco:  5.09,
	Impo:  4.55,
	Vmpo:  48.32,
	I0:    9.0e-10,
	Rs:    1.07,
	Rsh:   381.7,
	NsVth: 2.64,
}

// abbMicro025 matches the bundled ABB MICRO-0.25 record (250 W rated).
var abbMicro025 = InverterParams{
	Paco: 250.0,
	Pdco: 259.6,
	Vdco: 40.0,
	Pso:  1.77,
	C0:   -0.000041,
	C1:   -0.000091,
	C2:   0.000494,
	C3:   -0.013171,
	Pnt:  0.075,
	Vac:  208,
}

func TestMaxPowerPointSTC(t *testing.T) {
	i, v, p := cs5p220m.MaxPowerPoint(STCIrradiance, STCTemperature)

	if p < 205 || p > 235 {
		t.Errorf("STC power = %.2f W, want ~220 W", p)
	}
	if v < 40 || v > 55 {
		t.Errorf("STC Vmp = %.2f V, want near 48 V", v)
	}
	if i < 3.5 || i > cs5p220m.Isco {
		t.Errorf("STC Imp = %.3f A, want below Isc %.2f A", i, cs5p220m.Isco)
	}
	if diff := p - i*v; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("power %.6f inconsistent with i*v %.6f", p, i*v)
	}
}

func TestMaxPowerPointShortCircuits(t *testing.T) {
	tests := []struct {
		name   string
		params ModuleParams
		poa    float64
	}{
		{"zero irradiance", cs5p220m, 0},
		{"negative irradiance", cs5p220m, -50},
		{"zero rated current", ModuleParams{I0: 1e-9, NsVth: 2.6}, 800},
		{"zero saturation current", ModuleParams{Isco: 5, NsVth: 2.6}, 800},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			i, v, p := tt.params.MaxPowerPoint(tt.poa, 25)
			if i != 0 || v != 0 || p != 0 {
				t.Errorf("got (%.3f, %.3f, %.3f), want all zero", i, v, p)
			}
		})
	}
}

func TestMaxPowerPointMonotonicInIrradiance(t *testing.T) {
	_, _, pHalf := cs5p220m.MaxPowerPoint(500, 25)
	_, _, pFull := cs5p220m.MaxPowerPoint(1000, 25)

	if pHalf <= 0 || pFull <= 0 {
		t.Fatalf("expected positive power, got %.2f and %.2f", pHalf, pFull)
	}
	if pHalf >= pFull {
		t.Errorf("power at 500 W/m² (%.2f) should be below power at 1000 W/m² (%.2f)", pHalf, pFull)
	}
}

func TestMaxPowerPointHotCellLosesPower(t *testing.T) {
	_, _, pCool := cs5p220m.MaxPowerPoint(1000, 25)
	_, _, pHot := cs5p220m.MaxPowerPoint(1000, 60)

	if pHot >= pCool {
		t.Errorf("power at 60°C (%.2f) should be below power at 25°C (%.2f)", pHot, pCool)
	}
	// Typical crystalline modules lose roughly 0.3-0.5% per kelvin
	lossPerK := (pCool - pHot) / pCool / 35 * 100
	if lossPerK < 0.2 || lossPerK > 0.7 {
		t.Errorf("temperature loss = %.3f %%/K, want between 0.2 and 0.7", lossPerK)
	}
}

func TestCellTemperature(t *testing.T) {
	tests := []struct {
		name    string
		poa     float64
		airTemp float64
		wind    float64
		wantMin float64
		wantMax float64
	}{
		{"night equals ambient", 0, 10, 2, 10, 10},
		{"full sun calm", 1000, 25, 1, 50, 60},
		{"full sun windy", 1000, 25, 10, 40, 50},
		{"partial sun", 400, 15, 3, 23, 30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CellTemperature(tt.poa, tt.airTemp, tt.wind)
			if got < tt.wantMin || got > tt.wantMax {
				t.Errorf("CellTemperature = %.2f, want between %.1f and %.1f", got, tt.wantMin, tt.wantMax)
			}
		})
	}
}

func TestInverterACPower(t *testing.T) {
	tests := []struct {
		name    string
		vdc     float64
		pdc     float64
		wantMin float64
		wantMax float64
	}{
		{"zero input", 0, 0, 0, 0},
		{"below inversion threshold clamps to zero", 48, 1.0, 0, 0},
		{"normal operating point", 48, 200, 180, 200},
		{"clipping at rated power", 48, 400, 250, 250},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := abbMicro025.ACPower(tt.vdc, tt.pdc)
			if got < tt.wantMin || got > tt.wantMax {
				t.Errorf("ACPower(%.0f V, %.0f W) = %.2f, want between %.1f and %.1f",
					tt.vdc, tt.pdc, got, tt.wantMin, tt.wantMax)
			}
		})
	}
}
