package domain

import (
	"math"
	"time"
)

// perezCoefficients holds the Perez 1990 "allsitescomposite1990" brightness
// coefficients F11,F12,F13,F21,F22,F23 per clearness bin.
var perezCoefficients = [8][6]float64{
	{-0.008, 0.588, -0.062, -0.060, 0.072, -0.022},
	{0.130, 0.683, -0.151, -0.019, 0.066, -0.029},
	{0.330, 0.487, -0.221, 0.055, -0.064, -0.026},
	{0.568, 0.187, -0.295, 0.109, -0.152, -0.014},
	{0.873, -0.392, -0.362, 0.226, -0.462, 0.001},
	{1.132, -1.237, -0.412, 0.288, -0.823, 0.056},
	{1.060, -1.600, -0.359, 0.264, -1.127, 0.131},
	{0.678, -0.327, -0.250, 0.156, -1.377, 0.251},
}

// Upper edges of the Perez sky-clearness bins (epsilon).
var perezClearnessBins = [7]float64{1.065, 1.23, 1.5, 1.95, 2.8, 4.5, 6.2}

// PlaneOfArray transposes the three horizontal irradiance components onto
// the tilted array plane for one hour, returning global POA irradiance in
// W/m². Negative inputs are treated as zero.
func PlaneOfArray(w HourlyWeather, sun SunPosition, tiltDeg, surfaceAzimuthDeg float64, model TranspositionModel) float64 {
	ghi := math.Max(w.GHI, 0)
	dni := math.Max(w.DNI, 0)
	dhi := math.Max(w.DHI, 0)
	if ghi == 0 && dni == 0 && dhi == 0 {
		return 0
	}

	cosAOI := cosAngleOfIncidence(sun, tiltDeg, surfaceAzimuthDeg)
	tiltRad := degToRad(tiltDeg)

	beam := dni * math.Max(cosAOI, 0)
	ground := ghi * GroundAlbedo * (1 - math.Cos(tiltRad)) / 2

	var diffuse float64
	switch model {
	case TranspositionIsotropic:
		diffuse = dhi * (1 + math.Cos(tiltRad)) / 2
	default:
		diffuse = perezDiffuse(w.Timestamp, dhi, dni, sun, cosAOI, tiltRad)
	}

	poa := beam + diffuse + ground
	if poa < 0 {
		return 0
	}
	return poa
}

// cosAngleOfIncidence is the cosine of the angle between the sun and the
// array normal.
func cosAngleOfIncidence(sun SunPosition, tiltDeg, surfaceAzimuthDeg float64) float64 {
	zenRad := degToRad(sun.ZenithDeg)
	tiltRad := degToRad(tiltDeg)
	return math.Cos(tiltRad)*math.Cos(zenRad) +
		math.Sin(tiltRad)*math.Sin(zenRad)*math.Cos(degToRad(sun.AzimuthDeg-surfaceAzimuthDeg))
}

// relativeAirmass uses the Kasten & Young 1989 formula. Returns 0 when the
// sun is below the horizon.
func relativeAirmass(zenithDeg float64) float64 {
	if zenithDeg >= 90 {
		return 0
	}
	return 1 / (math.Cos(degToRad(zenithDeg)) + 0.50572*math.Pow(96.07995-zenithDeg, -1.6364))
}

// extraterrestrialDNI is the normal-incidence extraterrestrial irradiance
// for the day of year, W/m².
func extraterrestrialDNI(t time.Time) float64 {
	doy := float64(t.YearDay())
	return 1367.0 * (1 + 0.033*math.Cos(2*math.Pi*doy/365))
}

// perezDiffuse computes the anisotropic sky-diffuse component on the tilted
// plane following Perez et al. 1990.
func perezDiffuse(ts time.Time, dhi, dni float64, sun SunPosition, cosAOI, tiltRad float64) float64 {
	if dhi <= 0 {
		return 0
	}

	zenRad := degToRad(sun.ZenithDeg)
	const kappa = 1.041
	z3 := kappa * zenRad * zenRad * zenRad

	// Sky clearness epsilon and its coefficient bin
	epsilon := ((dhi+dni)/dhi + z3) / (1 + z3)
	bin := 0
	for bin < len(perezClearnessBins) && epsilon > perezClearnessBins[bin] {
		bin++
	}
	f := perezCoefficients[bin]

	// Sky brightness delta
	am := relativeAirmass(sun.ZenithDeg)
	delta := dhi * am / extraterrestrialDNI(ts)

	f1 := math.Max(0, f[0]+f[1]*delta+f[2]*zenRad)
	f2 := f[3] + f[4]*delta + f[5]*zenRad

	a := math.Max(0, cosAOI)
	b := math.Max(math.Cos(degToRad(85)), math.Cos(zenRad))

	diffuse := dhi * ((1-f1)*(1+math.Cos(tiltRad))/2 + f1*a/b + f2*math.Sin(tiltRad))
	if diffuse < 0 {
		return 0
	}
	return diffuse
}
