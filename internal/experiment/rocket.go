package experiment

import (
	"context"
	"math"

	"github.com/san-kum/phasesim/internal/dynamo"
	"github.com/san-kum/phasesim/internal/events"
	"github.com/san-kum/phasesim/internal/metrics"
	"github.com/san-kum/phasesim/internal/physics"
	"github.com/san-kum/phasesim/internal/recorder"
)

// Rocket flies a fin-stabilised rocket off a launch rail through boost,
// coast and descent until it hits the ground.
type Rocket struct{}

func (Rocket) Name() string { return "rocket" }

func (Rocket) Description() string {
	return "planar 3-DOF rocket with launch rail, motor burn, apogee and ground events"
}

func (Rocket) Run(ctx context.Context, cfg Config) (*Outcome, error) {
	params := physics.DefaultRocketParams()
	params.MotorFile = cfg.MotorFile
	if err := applyParams(cfg, params.SetParam); err != nil {
		return nil, err
	}
	state, err := params.Build()
	if err != nil {
		return nil, err
	}
	log := cfg.logger().With("scenario", cfg.Scenario)

	rec := recorder.New[physics.Rocket](cfg.CSVPath)
	for _, ch := range []struct {
		name string
		fn   recorder.Accessor[physics.Rocket]
	}{
		{"pos_x", func(r *physics.Rocket) float64 { return r.X }},
		{"pos_y", func(r *physics.Rocket) float64 { return r.Y }},
		{"vel_x", func(r *physics.Rocket) float64 { return r.VX }},
		{"vel_y", func(r *physics.Rocket) float64 { return r.VY }},
		{"acc_x", func(r *physics.Rocket) float64 { return r.AX }},
		{"acc_y", func(r *physics.Rocket) float64 { return r.AY }},
		{"orientation", func(r *physics.Rocket) float64 { return r.Theta }},
		{"angular_vel", func(r *physics.Rocket) float64 { return r.Omega }},
		{"angular_accel", func(r *physics.Rocket) float64 { return r.AngularAccel }},
		{"mach", (*physics.Rocket).Mach},
		{"thrust", func(r *physics.Rocket) float64 { return r.Motor.Thrust(r.Elapsed) }},
		{"phase", func(r *physics.Rocket) float64 { return float64(r.Phase) }},
	} {
		if err := rec.Track(ch.name, ch.fn); err != nil {
			return nil, err
		}
	}

	exec, err := newExecutor(cfg, rec)
	if err != nil {
		return nil, err
	}
	if err := exec.SetIntegrator(
		(*physics.Rocket).Load,
		(*physics.Rocket).Derive,
		(*physics.Rocket).Store,
	); err != nil {
		return nil, err
	}

	var railExitSpeed float64
	phaseEvents := []struct {
		name   string
		errFn  events.ErrorFunc[physics.Rocket]
		action events.Action[physics.Rocket]
		mode   events.CrossingMode
	}{
		{
			name:  "rail_exit",
			errFn: func(r *physics.Rocket) float64 { return r.RailTravel() - r.Rail.Length },
			action: func(r *physics.Rocket, _ dynamo.Clock) {
				railExitSpeed = r.Speed()
				r.LeaveRail()
			},
			mode: events.Increasing,
		},
		{
			name:   "burnout",
			errFn:  func(r *physics.Rocket) float64 { return r.Elapsed - r.Motor.BurnTime },
			action: func(r *physics.Rocket, _ dynamo.Clock) { r.Burnout() },
			mode:   events.Increasing,
		},
		{
			name:   "apogee",
			errFn:  func(r *physics.Rocket) float64 { return r.VY },
			action: func(r *physics.Rocket, _ dynamo.Clock) { r.Apogee() },
			mode:   events.Decreasing,
		},
		{
			name:   "ground",
			errFn:  func(r *physics.Rocket) float64 { return r.Y },
			action: func(r *physics.Rocket, _ dynamo.Clock) { r.Touchdown() },
			mode:   events.Decreasing,
		},
	}
	for _, pe := range phaseEvents {
		ev := events.NewRegulaFalsi(pe.errFn, pe.action, events.WithMode(pe.mode))
		if err := exec.AddEvent(pe.name, ev); err != nil {
			return nil, err
		}
	}

	if err := exec.AddJob(dynamo.Init, func(r *physics.Rocket, c dynamo.Clock) {
		r.Refresh(c)
		log.Info("starting rocket",
			"motor", r.Motor.Designation,
			"rail_length", r.Rail.Length,
			"rail_angle_deg", r.Rail.Angle*180/math.Pi,
		)
	}); err != nil {
		return nil, err
	}

	prev := state.Phase
	if err := exec.AddJob(dynamo.PostIntegrate, func(r *physics.Rocket, c dynamo.Clock) {
		r.Refresh(c)
		if r.Phase != prev {
			log.Info("phase change", "phase", r.Phase.String(), "t", c.T)
			prev = r.Phase
		}
	}); err != nil {
		return nil, err
	}
	if err := exec.AddJob(dynamo.Shutdown, func(r *physics.Rocket, c dynamo.Clock) {
		log.Info("finished", "t", c.T, "phase", r.Phase.String(), "x", r.X)
	}); err != nil {
		return nil, err
	}

	out, err := run(ctx, cfg, exec, rec, state)
	if err != nil {
		return nil, err
	}
	if err := summarize(out, out.Table,
		metrics.NewPeak("apogee", "pos_y"),
		metrics.NewPeak("max_mach", "mach"),
		metrics.NewIntegral("recorded_impulse", "thrust"),
	); err != nil {
		return nil, err
	}
	out.Summary["rail_exit_speed"] = railExitSpeed
	out.Summary["final_phase"] = float64(state.Phase)
	if ev, ok := out.Event("ground"); ok {
		out.Summary["flight_time"] = ev.Time
		out.Summary["range"] = state.X
	}
	return out, nil
}
