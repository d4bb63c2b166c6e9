package domain

import "math"

// SAPM open-rack glass/glass thermal model coefficients.
const (
	openRackA      = -3.47
	openRackB      = -0.0594
	openRackDeltaT = 3.0
)

// ModuleParams are the single-diode equivalent-circuit parameters of one PV
// module, taken from the catalog record at STC.
type ModuleParams struct {
	Isco  float64 // short-circuit current, A
	Impo  float64 // max-power current, A
	Vmpo  float64 // max-power voltage, V
	I0    float64 // diode saturation current, A
	Rs    float64 // series resistance, Ω
	Rsh   float64 // shunt resistance, Ω
	NsVth float64 // n·Ns·Vth thermal voltage product at STC, V
}

// ModuleParamsFrom extracts single-diode parameters from a catalog record.
func ModuleParamsFrom(rec EquipmentRecord) ModuleParams {
	return ModuleParams{
		Isco:  rec.Param("Isco"),
		Impo:  rec.Param("Impo"),
		Vmpo:  rec.Param("Vmpo"),
		I0:    rec.Param("I02"),
		Rs:    rec.Param("R_s"),
		Rsh:   rec.Param("R_sh"),
		NsVth: rec.Param("nNsVth"),
	}
}

// InverterParams are Sandia inverter model coefficients from the catalog.
type InverterParams struct {
	Paco float64 // rated AC power, W
	Pdco float64 // DC power at which rated AC power is reached, W
	Vdco float64 // DC voltage at the rating point, V
	Pso  float64 // DC power required to start inversion, W
	C0   float64
	C1   float64
	C2   float64
	C3   float64
	Pnt  float64 // night tare, W
	Vac  float64 // nominal AC voltage, V
}

// InverterParamsFrom extracts Sandia inverter parameters from a catalog record.
func InverterParamsFrom(rec EquipmentRecord) InverterParams {
	return InverterParams{
		Paco: rec.Param("Paco"),
		Pdco: rec.Param("Pdco"),
		Vdco: rec.Param("Vdco"),
		Pso:  rec.Param("Pso"),
		C0:   rec.Param("C0"),
		C1:   rec.Param("C1"),
		C2:   rec.Param("C2"),
		C3:   rec.Param("C3"),
		Pnt:  rec.Param("Pnt"),
		Vac:  rec.Param("Vac"),
	}
}

// CellTemperature maps plane-of-array irradiance and ambient conditions to
// cell temperature (°C) using the SAPM open-rack glass/glass model.
func CellTemperature(poa, airTempC, windSpeed float64) float64 {
	if poa <= 0 {
		return airTempC
	}
	moduleTemp := poa*math.Exp(openRackA+openRackB*windSpeed) + airTempC
	return moduleTemp + poa/STCIrradiance*openRackDeltaT
}

// MaxPowerPoint solves the single-diode equation for the maximum-power
// operating point under the given plane-of-array irradiance and cell
// temperature. Zero irradiance or a degenerate parameter set short-circuits
// to a zero operating point; the solver is never entered.
func (m ModuleParams) MaxPowerPoint(poa, cellTempC float64) (current, voltage, power float64) {
	if poa <= 0 || m.Isco <= 0 || m.I0 <= 0 || m.NsVth <= 0 {
		return 0, 0, 0
	}

	// Photocurrent scales with the irradiance ratio; thermal voltage scales
	// with absolute cell temperature; saturation current follows the usual
	// T³·exp(Eg/k·(1/Tref-1/T)) law so open-circuit voltage falls as the
	// cell heats up.
	const (
		egEV        = 1.121
		boltzmannEV = 8.617332478e-5
		tRefK       = STCTemperature + 273.15
	)
	tK := cellTempC + 273.15
	il := m.Isco * poa / STCIrradiance
	a := m.NsVth * tK / tRefK
	i0 := m.I0 * math.Pow(tK/tRefK, 3) * math.Exp(egEV/boltzmannEV*(1/tRefK-1/tK))

	// Open-circuit voltage ignoring the shunt term is a strict upper bound
	// for the max-power voltage search interval.
	vocBound := a * math.Log1p(il/i0)

	// Golden-section search for the voltage maximizing P = V·I(V).
	const invPhi = 0.6180339887498949
	lo, hi := 0.0, vocBound
	x1 := hi - invPhi*(hi-lo)
	x2 := lo + invPhi*(hi-lo)
	p1 := x1 * m.currentAt(x1, il, i0, a)
	p2 := x2 * m.currentAt(x2, il, i0, a)
	for i := 0; i < 80 && hi-lo > 1e-7; i++ {
		if p1 < p2 {
			lo = x1
			x1, p1 = x2, p2
			x2 = lo + invPhi*(hi-lo)
			p2 = x2 * m.currentAt(x2, il, i0, a)
		} else {
			hi = x2
			x2, p2 = x1, p1
			x1 = hi - invPhi*(hi-lo)
			p1 = x1 * m.currentAt(x1, il, i0, a)
		}
	}

	voltage = (lo + hi) / 2
	current = m.currentAt(voltage, il, i0, a)
	if current < 0 {
		return 0, 0, 0
	}
	return current, voltage, current * voltage
}

// currentAt solves the implicit diode equation
//
//	I = IL - I0·(exp((V+I·Rs)/a) - 1) - (V+I·Rs)/Rsh
//
// for I at a fixed terminal voltage via Newton iteration. The residual is
// strictly decreasing in I, so iteration from I=IL converges.
func (m ModuleParams) currentAt(v, il, i0, a float64) float64 {
	rsh := m.Rsh
	if rsh <= 0 {
		rsh = math.Inf(1)
	}

	i := il
	for iter := 0; iter < 50; iter++ {
		vd := v + i*m.Rs
		expTerm := math.Exp(vd / a)
		f := il - i0*(expTerm-1) - vd/rsh - i
		df := -i0*expTerm*m.Rs/a - m.Rs/rsh - 1
		step := f / df
		i -= step
		if math.Abs(step) < 1e-12 {
			break
		}
	}
	return i
}

// ACPower maps a DC operating point through the Sandia inverter efficiency
// curve. Output is clipped at the rated AC power; operating points below the
// inversion threshold clamp to zero rather than drawing tare power, so
// nighttime hours report exactly zero generation.
func (p InverterParams) ACPower(vdc, pdc float64) float64 {
	if pdc <= 0 || vdc <= 0 || p.Paco <= 0 {
		return 0
	}

	dv := vdc - p.Vdco
	a := p.Pdco * (1 + p.C1*dv)
	b := p.Pso * (1 + p.C2*dv)
	c := p.C0 * (1 + p.C3*dv)
	if a-b == 0 {
		return 0
	}

	pac := (p.Paco/(a-b)-c*(a-b))*(pdc-b) + c*(pdc-b)*(pdc-b)
	if pac > p.Paco {
		return p.Paco
	}
	if pac < 0 {
		return 0
	}
	return pac
}
