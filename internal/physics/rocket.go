package physics

import (
	"fmt"
	"math"

	"github.com/san-kum/phasesim/internal/dynamo"
)

// FlightPhase is the regime a rocket is flying in.
type FlightPhase int

const (
	OnRail FlightPhase = iota
	Boost
	Coast
	Descent
	Ground
)

func (p FlightPhase) String() string {
	switch p {
	case OnRail:
		return "on-rail"
	case Boost:
		return "boost"
	case Coast:
		return "coast"
	case Descent:
		return "descent"
	case Ground:
		return "ground"
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

// Rail is the launch rail. Angle is measured from the horizontal.
type Rail struct {
	Angle  float64 // rad
	Length float64 // m
}

// Rocket is a planar three degree of freedom model of a fin-stabilised
// rocket.
//
// Frames: the world frame has x right and y up. The body frame has x along
// the nose. Theta is the body angle from world +x, counter-clockwise
// positive.
type Rocket struct {
	X, Y   float64 // m
	VX, VY float64 // m/s
	Theta  float64 // rad
	Omega  float64 // rad/s

	// Elapsed is the time since ignition. It is integrated with the rest of
	// the state so that event functions can see it.
	Elapsed float64

	// Last evaluated accelerations, refreshed by Refresh.
	AX, AY, AngularAccel float64

	Phase FlightPhase

	DryMass float64 // kg, without motor
	Inertia float64 // kg.m^2
	Gravity float64

	Motor *Motor
	Aero  AeroCoefficients
	Rail  Rail
}

const rocketDim = 7

// NewRocket places a rocket at the bottom of rail, pointing along it.
func NewRocket(motor *Motor, aero AeroCoefficients, rail Rail) *Rocket {
	return &Rocket{
		Theta:   rail.Angle,
		DryMass: 2.0,
		Inertia: 0.62,
		Gravity: StandardGravity,
		Motor:   motor,
		Aero:    aero,
		Rail:    rail,
	}
}

func (r *Rocket) Load(dynamo.Clock) []float64 {
	return []float64{r.X, r.Y, r.VX, r.VY, r.Theta, r.Omega, r.Elapsed}
}

func (r *Rocket) Store(y []float64) {
	r.X, r.Y, r.VX, r.VY = y[0], y[1], y[2], y[3]
	r.Theta, r.Omega, r.Elapsed = y[4], y[5], y[6]
}

// Derive returns the state derivative for the current phase.
func (r *Rocket) Derive(dynamo.Clock) []float64 {
	d := make([]float64, rocketDim)
	d[6] = 1

	switch r.Phase {
	case Ground:
		return d
	case OnRail:
		a := r.railAccel()
		d[0], d[1] = r.VX, r.VY
		d[2] = a * math.Cos(r.Rail.Angle)
		d[3] = a * math.Sin(r.Rail.Angle)
		return d
	}

	fx, fy := r.aeroForceBody()
	fx += r.Motor.Thrust(r.Elapsed)
	m := r.Mass()

	c, s := math.Cos(r.Theta), math.Sin(r.Theta)
	d[0], d[1] = r.VX, r.VY
	d[2] = (c*fx - s*fy) / m
	d[3] = (s*fx+c*fy)/m - r.Gravity
	d[4] = r.Omega
	d[5] = -fy * r.Aero.StaticMargin() / r.Inertia
	return d
}

// railAccel is the acceleration along the rail. The rail holds the rocket
// until thrust overcomes weight.
func (r *Rocket) railAccel() float64 {
	v := r.Speed()
	drag := r.dynamicPressure() * r.Aero.Area * r.Aero.CA.At(r.Mach())
	if v == 0 {
		drag = 0
	}
	m := r.Mass()
	a := (r.Motor.Thrust(r.Elapsed)-drag)/m - r.Gravity*math.Sin(r.Rail.Angle)
	along := r.VX*math.Cos(r.Rail.Angle) + r.VY*math.Sin(r.Rail.Angle)
	if a < 0 && along <= 0 {
		return 0
	}
	return a
}

// aeroForceBody returns the axial and normal aerodynamic forces in the body
// frame, using small angle of attack approximations.
func (r *Rocket) aeroForceBody() (float64, float64) {
	v := r.Speed()
	if v < 0.1 {
		return 0, 0
	}
	c, s := math.Cos(r.Theta), math.Sin(r.Theta)
	vbx := c*r.VX + s*r.VY
	vby := -s*r.VX + c*r.VY
	alpha := -math.Atan2(vby, vbx)

	mach := r.Mach()
	load := r.dynamicPressure() * r.Aero.Area
	return -load * r.Aero.CA.At(mach), load * r.Aero.CNAlpha.At(mach) * alpha
}

func (r *Rocket) dynamicPressure() float64 {
	v := r.Speed()
	return 0.5 * Density(r.Y) * v * v
}

// Mass returns the total mass including the burning motor.
func (r *Rocket) Mass() float64 {
	return r.DryMass + r.Motor.Mass(r.Elapsed)
}

func (r *Rocket) Speed() float64 {
	return math.Hypot(r.VX, r.VY)
}

func (r *Rocket) Mach() float64 {
	return Mach(r.Speed(), r.Y)
}

// RailTravel is the distance moved along the rail from the pad.
func (r *Rocket) RailTravel() float64 {
	return math.Hypot(r.X, r.Y)
}

// Refresh stores the current accelerations for recording.
func (r *Rocket) Refresh(clock dynamo.Clock) {
	d := r.Derive(clock)
	r.AX, r.AY, r.AngularAccel = d[2], d[3], d[5]
}

// LeaveRail switches from the rail to free flight.
func (r *Rocket) LeaveRail() {
	if r.Phase != OnRail {
		return
	}
	if r.Elapsed < r.Motor.BurnTime {
		r.Phase = Boost
	} else {
		r.Phase = Coast
	}
}

// Burnout ends the boost phase.
func (r *Rocket) Burnout() {
	if r.Phase == Boost {
		r.Phase = Coast
	}
}

// Apogee starts the descent.
func (r *Rocket) Apogee() {
	if r.Phase == Boost || r.Phase == Coast {
		r.Phase = Descent
	}
}

// Touchdown stops the rocket on the ground.
func (r *Rocket) Touchdown() {
	r.Phase = Ground
	r.Y, r.VX, r.VY, r.Omega = 0, 0, 0, 0
	r.AX, r.AY, r.AngularAccel = 0, 0, 0
}

// RocketParams are the settings a rocket scenario is built from.
type RocketParams struct {
	RailAngle  float64 // degrees above horizontal
	RailLength float64
	DryMass    float64
	Inertia    float64
	Gravity    float64
	MotorFile  string
}

func DefaultRocketParams() RocketParams {
	return RocketParams{
		RailAngle:  85,
		RailLength: 3.084,
		DryMass:    2.0,
		Inertia:    0.62,
		Gravity:    StandardGravity,
	}
}

// Build creates the rocket, reading the motor from MotorFile when set.
func (rp RocketParams) Build() (*Rocket, error) {
	motor := SampleMotor()
	if rp.MotorFile != "" {
		m, err := LoadEng(rp.MotorFile)
		if err != nil {
			return nil, fmt.Errorf("load motor: %w", err)
		}
		motor = m
	}
	if rp.DryMass <= 0 || rp.Inertia <= 0 || rp.RailLength < 0 {
		return nil, fmt.Errorf("rocket mass, inertia and rail length must be positive: %w", dynamo.ErrInvalidConfig)
	}
	r := NewRocket(motor, DefaultAero(), Rail{
		Angle:  rp.RailAngle * math.Pi / 180,
		Length: rp.RailLength,
	})
	r.DryMass = rp.DryMass
	r.Inertia = rp.Inertia
	r.Gravity = rp.Gravity
	return r, nil
}

func (rp RocketParams) GetParams() map[string]float64 {
	return map[string]float64{
		"rail_angle":  rp.RailAngle,
		"rail_length": rp.RailLength,
		"dry_mass":    rp.DryMass,
		"inertia":     rp.Inertia,
		"gravity":     rp.Gravity,
	}
}

func (rp *RocketParams) SetParam(name string, value float64) error {
	switch name {
	case "rail_angle":
		rp.RailAngle = value
	case "rail_length":
		rp.RailLength = value
	case "dry_mass":
		rp.DryMass = value
	case "inertia":
		rp.Inertia = value
	case "gravity":
		rp.Gravity = value
	default:
		return fmt.Errorf("unknown param: %s", name)
	}
	return nil
}
