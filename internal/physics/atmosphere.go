package physics

import "math"

// Piecewise fit of the standard atmosphere: troposphere below 11 km, lower
// stratosphere up to 25 km, upper stratosphere above.
const (
	tropopause   = 11000.0
	stratosphere = 25000.0

	gammaAir = 1.4
	rAir     = 287.05
)

// Temperature returns the air temperature in degrees Celsius at altitude
// (m).
func Temperature(altitude float64) float64 {
	switch {
	case altitude > stratosphere:
		return -131.21 + 0.00299*altitude
	case altitude > tropopause:
		return -56.46
	}
	return 15.04 - 0.00649*altitude
}

// Pressure returns the static pressure in kPa at altitude (m).
func Pressure(altitude float64) float64 {
	t := Temperature(altitude)
	switch {
	case altitude > stratosphere:
		return 2.488 * math.Pow((t+273.1)/216.6, -11.388)
	case altitude > tropopause:
		return 22.65 * math.Exp(1.73-0.000157*altitude)
	}
	return 101.29 * math.Pow((t+273.1)/288.08, 5.256)
}

// Density returns the air density in kg/m^3 at altitude (m).
func Density(altitude float64) float64 {
	return Pressure(altitude) / (0.2869 * (Temperature(altitude) + 273.1))
}

// SpeedOfSound returns the speed of sound in m/s at altitude (m).
func SpeedOfSound(altitude float64) float64 {
	return math.Sqrt(gammaAir * rAir * (Temperature(altitude) + 273.15))
}

// Mach converts a speed (m/s) at altitude (m) to a Mach number.
func Mach(speed, altitude float64) float64 {
	return speed / SpeedOfSound(altitude)
}
