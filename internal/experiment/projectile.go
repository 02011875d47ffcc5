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

// Projectile fires a cannonball and stops it where it lands.
type Projectile struct{}

func (Projectile) Name() string { return "projectile" }

func (Projectile) Description() string {
	return "cannonball in uniform gravity, stopped at ground impact"
}

func (Projectile) Run(ctx context.Context, cfg Config) (*Outcome, error) {
	params := physics.DefaultProjectileParams()
	if err := applyParams(cfg, params.SetParam); err != nil {
		return nil, err
	}
	state := params.Build()
	log := cfg.logger().With("scenario", cfg.Scenario)

	rec := recorder.New[physics.Projectile](cfg.CSVPath)
	for _, ch := range []struct {
		name string
		fn   recorder.Accessor[physics.Projectile]
	}{
		{"pos_x", func(p *physics.Projectile) float64 { return p.X }},
		{"pos_y", func(p *physics.Projectile) float64 { return p.Y }},
		{"vel_x", func(p *physics.Projectile) float64 { return p.VX }},
		{"vel_y", func(p *physics.Projectile) float64 { return p.VY }},
		{"speed", (*physics.Projectile).Speed},
		{"energy", (*physics.Projectile).Energy},
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
		(*physics.Projectile).Load,
		(*physics.Projectile).Derive,
		(*physics.Projectile).Store,
	); err != nil {
		return nil, err
	}

	impact := math.NaN()
	ground := events.NewRegulaFalsi(
		func(p *physics.Projectile) float64 { return p.Y },
		func(p *physics.Projectile, c dynamo.Clock) {
			impact = c.T
			p.Land()
		},
		events.WithMode(events.Decreasing),
	)
	if err := exec.AddEvent("ground", ground); err != nil {
		return nil, err
	}

	if err := exec.AddJob(dynamo.Init, func(p *physics.Projectile, _ dynamo.Clock) {
		log.Info("launch", "angle", params.Angle, "speed", params.Speed)
	}); err != nil {
		return nil, err
	}
	if err := exec.AddJob(dynamo.Shutdown, func(p *physics.Projectile, c dynamo.Clock) {
		log.Info("finished", "t", c.T, "x", p.X, "y", p.Y, "landed", p.Landed)
	}); err != nil {
		return nil, err
	}

	out, err := run(ctx, cfg, exec, rec, state)
	if err != nil {
		return nil, err
	}
	// energy is only conserved in flight
	flight := out.Table
	if state.Landed {
		flight = out.Table.Until(impact)
	}
	if err := summarize(out, flight,
		metrics.NewPeak("max_height", "pos_y"),
		metrics.NewDrift("energy_drift", "energy"),
	); err != nil {
		return nil, err
	}
	out.Summary["final_x"] = state.X
	if state.Landed {
		out.Summary["flight_time"] = impact
		out.Summary["range"] = state.X
	}
	return out, nil
}
