package physics

import (
	"fmt"
	"math"

	"github.com/san-kum/phasesim/internal/dynamo"
)

// StandardGravity in m/s^2.
const StandardGravity = 9.81

// Projectile is a point mass in a uniform gravity field, launched from the
// origin. Once Landed it no longer moves.
type Projectile struct {
	X, Y    float64
	VX, VY  float64
	Gravity float64
	Landed  bool
}

// NewProjectile launches at angle (radians above horizontal) and speed (m/s).
func NewProjectile(angle, speed float64) *Projectile {
	return &Projectile{
		VX:      speed * math.Cos(angle),
		VY:      speed * math.Sin(angle),
		Gravity: StandardGravity,
	}
}

func (p *Projectile) Load(dynamo.Clock) []float64 {
	return []float64{p.X, p.Y, p.VX, p.VY}
}

func (p *Projectile) Derive(dynamo.Clock) []float64 {
	if p.Landed {
		return []float64{0, 0, 0, 0}
	}
	return []float64{p.VX, p.VY, 0, -p.Gravity}
}

func (p *Projectile) Store(y []float64) {
	p.X, p.Y, p.VX, p.VY = y[0], y[1], y[2], y[3]
}

// Land stops the projectile on the ground.
func (p *Projectile) Land() {
	p.Landed = true
	p.Y, p.VX, p.VY = 0, 0, 0
}

// Speed returns the magnitude of the velocity.
func (p *Projectile) Speed() float64 {
	return math.Hypot(p.VX, p.VY)
}

// Energy per unit mass.
func (p *Projectile) Energy() float64 {
	return 0.5*(p.VX*p.VX+p.VY*p.VY) + p.Gravity*p.Y
}

// FlightTime is the analytic time of flight back to launch height.
func (p *Projectile) FlightTime() float64 {
	return 2 * p.VY / p.Gravity
}

// Range is the analytic horizontal distance at landing.
func (p *Projectile) Range() float64 {
	return p.VX * p.FlightTime()
}

// ProjectileParams are the launch settings a projectile is built from.
type ProjectileParams struct {
	Angle   float64 // degrees above horizontal
	Speed   float64
	Gravity float64
}

func DefaultProjectileParams() ProjectileParams {
	return ProjectileParams{Angle: 60, Speed: 50, Gravity: StandardGravity}
}

func (pp ProjectileParams) Build() *Projectile {
	p := NewProjectile(pp.Angle*math.Pi/180, pp.Speed)
	p.Gravity = pp.Gravity
	return p
}

func (pp ProjectileParams) GetParams() map[string]float64 {
	return map[string]float64{
		"angle":   pp.Angle,
		"speed":   pp.Speed,
		"gravity": pp.Gravity,
	}
}

func (pp *ProjectileParams) SetParam(name string, value float64) error {
	switch name {
	case "angle":
		pp.Angle = value
	case "speed":
		pp.Speed = value
	case "gravity":
		pp.Gravity = value
	default:
		return fmt.Errorf("unknown param: %s", name)
	}
	return nil
}
