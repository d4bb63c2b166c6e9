package domain

import (
	"math"
	"time"

	"github.com/soniakeys/meeus/v3/julian"
)

// SunPosition is the apparent position of the sun for one instant and
// location, in degrees.
type SunPosition struct {
	ZenithDeg    float64
	ElevationDeg float64
	AzimuthDeg   float64 // compass bearing, 0=N 90=E 180=S
}

func degToRad(deg float64) float64 { return deg * math.Pi / 180.0 }
func radToDeg(rad float64) float64 { return rad * 180.0 / math.Pi }
func fixAngle(a float64) float64   { return a - 360.0*math.Floor(a/360.0) }

// SolarPosition computes the sun's zenith and azimuth for a given instant
// and location using the NOAA solar position algorithm.
func SolarPosition(t time.Time, latitude, longitude float64) SunPosition {
	utc := t.UTC()
	jd := julian.TimeToJD(utc)

	// Julian century
	T := (jd - 2451545.0) / 36525.0

	// Geometric mean longitude and anomaly of the sun (degrees)
	l0 := fixAngle(280.46646 + T*(36000.76983+0.0003032*T))
	m := fixAngle(357.52911 + T*(35999.05029-0.0001537*T))

	// Eccentricity of Earth's orbit
	e := 0.016708634 - T*(0.000042037+0.0000001267*T)

	// Equation of center
	mRad := degToRad(m)
	c := (1.914602-T*(0.004817+0.000014*T))*math.Sin(mRad) +
		(0.019993-0.000101*T)*math.Sin(2*mRad) +
		0.000289*math.Sin(3*mRad)

	// Sun's true and apparent longitude
	sunLon := l0 + c
	omega := 125.04 - 1934.136*T
	sunAppLon := sunLon - 0.00569 - 0.00478*math.Sin(degToRad(omega))

	// Obliquity, corrected for nutation
	obliq := 23.0 + (26.0+(21.448-T*(46.8150+T*(0.00059-T*0.001813)))/60.0)/60.0
	obliqCorr := obliq + 0.00256*math.Cos(degToRad(omega))

	// Sun's declination
	declRad := math.Asin(math.Sin(degToRad(obliqCorr)) * math.Sin(degToRad(sunAppLon)))

	// Equation of time (minutes)
	y := math.Tan(degToRad(obliqCorr) / 2)
	y = y * y
	l0Rad := degToRad(l0)
	eqTimeMin := 4 * radToDeg(y*math.Sin(2*l0Rad)-
		2*e*math.Sin(mRad)+
		4*e*y*math.Sin(mRad)*math.Cos(2*l0Rad)-
		0.5*y*y*math.Sin(4*l0Rad)-
		1.25*e*e*math.Sin(2*mRad))

	// True solar time, normalized into [0, 1440) so the hour angle stays in
	// [-180, 180) regardless of longitude
	utcMin := float64(utc.Hour()*60+utc.Minute()) + float64(utc.Second())/60.0
	tst := math.Mod(utcMin+4*longitude+eqTimeMin, 1440)
	if tst < 0 {
		tst += 1440
	}
	ha := tst/4 - 180
	haRad := degToRad(ha)

	latRad := degToRad(latitude)
	cosZen := math.Sin(latRad)*math.Sin(declRad) + math.Cos(latRad)*math.Cos(declRad)*math.Cos(haRad)
	if cosZen > 1 {
		cosZen = 1
	}
	if cosZen < -1 {
		cosZen = -1
	}
	zenRad := math.Acos(cosZen)
	zenDeg := radToDeg(zenRad)

	pos := SunPosition{
		ZenithDeg:    zenDeg,
		ElevationDeg: 90 - zenDeg,
	}

	// Azimuth from north, flipped to the west sector for positive hour angles
	sinZen := math.Sin(zenRad)
	if sinZen > 1e-9 {
		azCos := (math.Sin(declRad) - math.Sin(latRad)*cosZen) / (math.Cos(latRad) * sinZen)
		if azCos > 1 {
			azCos = 1
		}
		if azCos < -1 {
			azCos = -1
		}
		azDeg := radToDeg(math.Acos(azCos))
		if ha > 0 {
			azDeg = 360 - azDeg
		}
		pos.AzimuthDeg = azDeg
	}

	return pos
}
