package physics

import "github.com/san-kum/phasesim/internal/lut"

// AeroCoefficients describe a finned body of revolution. Positions are
// measured from the nose tip.
type AeroCoefficients struct {
	CP   float64 // centre of pressure, m
	CG   float64 // centre of gravity, m
	Area float64 // reference area, m^2

	// CA is the axial force coefficient against Mach number.
	CA *lut.Table1
	// CNAlpha is the normal force slope (per rad) against Mach number.
	CNAlpha *lut.Table1
}

// DefaultAero is roughly a 4 inch fin-stabilised sport rocket.
func DefaultAero() AeroCoefficients {
	ca, err := lut.NewTable1(
		[]float64{0.0, 0.025, 0.12, 0.4, 1.0, 1.1, 1.27, 3.0},
		[]float64{1.95, 0.85, 0.73, 0.75, 0.91, 0.96, 0.84, 0.62},
		lut.Clamp,
	)
	if err != nil {
		panic(err)
	}
	cn, err := lut.NewTable1(
		[]float64{0.0, 0.4, 0.6, 1.0, 1.2, 1.32, 1.4, 2.0, 3.0},
		[]float64{21.0, 21.27, 21.66, 23.12, 23.84, 23.48, 22.72, 14.22, 9.5},
		lut.Clamp,
	)
	if err != nil {
		panic(err)
	}
	return AeroCoefficients{
		CP:      1.625,
		CG:      1.466,
		Area:    8.13e-3,
		CA:      ca,
		CNAlpha: cn,
	}
}

// StaticMargin is the distance the centre of pressure sits behind the
// centre of gravity.
func (a AeroCoefficients) StaticMargin() float64 {
	return a.CP - a.CG
}
