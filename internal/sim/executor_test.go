package sim

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/san-kum/phasesim/internal/dynamo"
	"github.com/san-kum/phasesim/internal/events"
	"github.com/san-kum/phasesim/internal/integrators"
)

type trace struct {
	Log []string
}

type body struct {
	Y, V float64
}

func loadBody(s *body, _ dynamo.Clock) []float64 { return []float64{s.Y, s.V} }
func deriveBody(s *body, _ dynamo.Clock) []float64 {
	return []float64{s.V, -10}
}
func storeBody(s *body, y []float64) { s.Y, s.V = y[0], y[1] }

// ramp integrates S' = 1, so S tracks time; Z' = Rate is switched by events.
type ramp struct {
	S, Z, Rate float64
}

func loadRamp(s *ramp, _ dynamo.Clock) []float64   { return []float64{s.S, s.Z} }
func deriveRamp(s *ramp, _ dynamo.Clock) []float64 { return []float64{1, s.Rate} }
func storeRamp(s *ramp, y []float64)               { s.S, s.Z = y[0], y[1] }

type oscillator struct {
	X, V float64
}

type projectile struct {
	X, Y, VX, VY float64
	Landed       bool
}

type tank struct {
	Levels []float64
}

func (t tank) Clone() tank {
	return tank{Levels: append([]float64(nil), t.Levels...)}
}

// vanishingEvent reports one crossing halfway through the first step, then
// loses it.
type vanishingEvent struct {
	calls int
}

func (v *vanishingEvent) Reset(*ramp, float64) {}
func (v *vanishingEvent) TimeToGo(_ *ramp, _, _ float64) float64 {
	v.calls++
	if v.calls == 1 {
		return 0.5
	}
	return math.Inf(1)
}
func (v *vanishingEvent) Converged() bool           { return false }
func (v *vanishingEvent) Apply(*ramp, dynamo.Clock) {}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newExecutor[S any](dt, end float64, opts ...Option) *Executor[S] {
	opts = append([]Option{WithLogger(quietLogger())}, opts...)
	exec, err := New[S](dt, end, opts...)
	Expect(err).NotTo(HaveOccurred())
	return exec
}

func appendJob(name string) Job[trace] {
	return func(s *trace, _ dynamo.Clock) {
		s.Log = append(s.Log, name)
	}
}

var _ = Describe("Executor", func() {
	Context("construction", func() {
		It("should reject a non-positive or NaN step", func() {
			for _, dt := range []float64{0, -0.1, math.NaN(), math.Inf(1)} {
				_, err := New[trace](dt, 1)
				Expect(errors.Is(err, dynamo.ErrInvalidConfig)).To(BeTrue())
			}
		})

		It("should reject a negative end time", func() {
			_, err := New[trace](0.1, -1)
			Expect(errors.Is(err, dynamo.ErrInvalidConfig)).To(BeTrue())
		})

		It("should reject a zero iteration budget", func() {
			_, err := New[trace](0.1, 1, WithEventIterations(0))
			Expect(errors.Is(err, dynamo.ErrInvalidConfig)).To(BeTrue())
		})
	})

	Context("scheduling", func() {
		It("should run phases in order and jobs in registration order", func() {
			exec := newExecutor[trace](0.5, 1.0)
			Expect(exec.AddJob(dynamo.Shutdown, appendJob("shutdown"))).To(Succeed())
			Expect(exec.AddJob(dynamo.PostIntegrate, appendJob("post"))).To(Succeed())
			Expect(exec.AddJob(dynamo.Integrate, appendJob("integrate"))).To(Succeed())
			Expect(exec.AddJob(dynamo.PreIntegrate, appendJob("pre-a"))).To(Succeed())
			Expect(exec.AddJob(dynamo.PreIntegrate, appendJob("pre-b"))).To(Succeed())
			Expect(exec.AddJob(dynamo.Init, appendJob("init"))).To(Succeed())

			state := trace{}
			Expect(exec.Run(&state)).To(Succeed())

			Expect(state.Log).To(Equal([]string{
				"init",
				"pre-a", "pre-b", "integrate", "post",
				"pre-a", "pre-b", "integrate", "post",
				"shutdown",
			}))
		})

		It("should run only Init and Shutdown when the end time is zero", func() {
			exec := newExecutor[trace](0.5, 0)
			Expect(exec.AddJob(dynamo.Init, appendJob("init"))).To(Succeed())
			Expect(exec.AddJob(dynamo.PreIntegrate, appendJob("pre"))).To(Succeed())
			Expect(exec.AddJob(dynamo.Shutdown, appendJob("shutdown"))).To(Succeed())

			state := trace{}
			Expect(exec.Run(&state)).To(Succeed())
			Expect(state.Log).To(Equal([]string{"init", "shutdown"}))
			Expect(exec.Clock().Step).To(BeZero())
		})

		It("should reject invalid phases and nil jobs", func() {
			exec := newExecutor[trace](0.5, 1)
			Expect(errors.Is(exec.AddJob(dynamo.Phase(42), appendJob("x")), dynamo.ErrInvalidConfig)).To(BeTrue())
			Expect(errors.Is(exec.AddJob(dynamo.Init, nil), dynamo.ErrInvalidConfig)).To(BeTrue())
		})

		It("should keep the clock on the step grid", func() {
			exec := newExecutor[trace](0.1, 1.0)
			var seen []dynamo.Clock
			Expect(exec.AddJob(dynamo.PostIntegrate, func(_ *trace, c dynamo.Clock) {
				seen = append(seen, c)
			})).To(Succeed())

			Expect(exec.Run(&trace{})).To(Succeed())

			Expect(seen).To(HaveLen(10))
			for i, c := range seen {
				Expect(c.Step).To(Equal(uint64(i)))
				Expect(c.T).To(Equal(c.Dt * float64(c.Step)))
			}
			Expect(exec.Clock().Step).To(Equal(uint64(10)))
			Expect(exec.Clock().T).To(Equal(1.0))
		})

		It("should close registration once the run starts", func() {
			exec := newExecutor[trace](0.5, 1)
			var inside error
			Expect(exec.AddJob(dynamo.Init, func(_ *trace, _ dynamo.Clock) {
				inside = exec.AddJob(dynamo.PreIntegrate, appendJob("late"))
			})).To(Succeed())

			Expect(exec.Run(&trace{})).To(Succeed())

			Expect(inside).To(MatchError(dynamo.ErrRegistrationClosed))
			Expect(exec.AddJob(dynamo.Init, appendJob("x"))).To(MatchError(dynamo.ErrRegistrationClosed))
			Expect(exec.SetRecorder(nil)).To(MatchError(dynamo.ErrRegistrationClosed))
		})

		It("should finish the step in progress and shut down when stopped", func() {
			exec := newExecutor[trace](0.1, 1.0)
			Expect(exec.AddJob(dynamo.PostIntegrate, appendJob("post"))).To(Succeed())
			Expect(exec.AddJob(dynamo.Shutdown, appendJob("shutdown"))).To(Succeed())
			exec.AcceptHook(HookFunc(func(ctx HookCtx) {
				if ctx.Item.(dynamo.Clock).Step == 2 {
					exec.Stop()
				}
			}))

			state := trace{}
			Expect(exec.Run(&state)).To(Succeed())

			Expect(state.Log).To(Equal([]string{"post", "post", "shutdown"}))
			Expect(exec.Clock().Step).To(Equal(uint64(2)))
		})

		It("should refuse a second run", func() {
			exec := newExecutor[trace](0.5, 1)
			Expect(exec.Run(&trace{})).To(Succeed())
			Expect(exec.Run(&trace{})).To(MatchError(dynamo.ErrAlreadyRan))
		})
	})

	Context("with an integrator", func() {
		It("should refuse Integrate jobs once an integrator is installed", func() {
			exec := newExecutor[body](0.5, 1)
			Expect(exec.SetIntegrator(loadBody, deriveBody, storeBody)).To(Succeed())
			err := exec.AddJob(dynamo.Integrate, func(*body, dynamo.Clock) {})
			Expect(errors.Is(err, dynamo.ErrPhaseNotSchedulable)).To(BeTrue())
		})

		It("should refuse an integrator over existing Integrate jobs", func() {
			exec := newExecutor[body](0.5, 1)
			Expect(exec.AddJob(dynamo.Integrate, func(*body, dynamo.Clock) {})).To(Succeed())
			err := exec.SetIntegrator(loadBody, deriveBody, storeBody)
			Expect(errors.Is(err, dynamo.ErrPhaseNotSchedulable)).To(BeTrue())
		})

		It("should reject a missing adapter function", func() {
			exec := newExecutor[body](0.5, 1)
			err := exec.SetIntegrator(loadBody, nil, storeBody)
			Expect(errors.Is(err, dynamo.ErrInvalidConfig)).To(BeTrue())
		})

		It("should show the integrated state to PostIntegrate jobs", func() {
			exec := newExecutor[body](0.5, 1)
			Expect(exec.SetIntegrator(loadBody, deriveBody, storeBody)).To(Succeed())
			var pre, post []float64
			Expect(exec.AddJob(dynamo.PreIntegrate, func(s *body, _ dynamo.Clock) {
				pre = append(pre, s.V)
			})).To(Succeed())
			Expect(exec.AddJob(dynamo.PostIntegrate, func(s *body, _ dynamo.Clock) {
				post = append(post, s.V)
			})).To(Succeed())

			state := body{Y: 100}
			Expect(exec.Run(&state)).To(Succeed())

			Expect(pre).To(Equal([]float64{0, -5}))
			Expect(post).To(Equal([]float64{-5, -10}))
			Expect(state.Y).To(BeNumerically("~", 100-0.5*10*1*1, 1e-12))
		})

		It("should fail with an empty state vector", func() {
			exec := newExecutor[body](0.5, 1)
			Expect(exec.SetIntegrator(
				func(*body, dynamo.Clock) []float64 { return nil },
				deriveBody,
				storeBody,
			)).To(Succeed())

			err := exec.Run(&body{})
			Expect(errors.Is(err, dynamo.ErrEmptyVector)).To(BeTrue())
		})

		It("should honour a replacement method", func() {
			exec := newExecutor[body](0.5, 1)
			Expect(exec.SetMethod(integrators.NewEuler[body]())).To(Succeed())
			Expect(exec.SetIntegrator(loadBody, deriveBody, storeBody)).To(Succeed())

			state := body{Y: 100}
			Expect(exec.Run(&state)).To(Succeed())

			Expect(state.Y).To(BeNumerically("~", 97.5, 1e-12))
		})

		It("should let Integrate jobs step their own vectors", func() {
			exec := newExecutor[body](0.5, 1)
			Expect(exec.AddJob(dynamo.Integrate, func(s *body, c dynamo.Clock) {
				y := integrators.RK4Vector([]float64{s.Y, s.V}, c.Dt, func(y []float64) []float64 {
					return []float64{y[1], -10}
				})
				s.Y, s.V = y[0], y[1]
			})).To(Succeed())

			state := body{Y: 100}
			Expect(exec.Run(&state)).To(Succeed())
			Expect(state.Y).To(BeNumerically("~", 95, 1e-12))
			Expect(state.V).To(BeNumerically("~", -10, 1e-12))
		})

		It("should keep an independent checkpoint of the committed state", func() {
			exec := newExecutor[tank](0.25, 1)
			Expect(exec.SetIntegrator(
				func(s *tank, _ dynamo.Clock) []float64 { return append([]float64(nil), s.Levels...) },
				func(s *tank, _ dynamo.Clock) []float64 { return []float64{-1, 1} },
				func(s *tank, y []float64) { copy(s.Levels, y) },
			)).To(Succeed())

			state := tank{Levels: []float64{5, 0}}
			Expect(exec.Run(&state)).To(Succeed())

			cp := exec.Checkpoint()
			Expect(cp.Levels).To(Equal(state.Levels))
			cp.Levels[0] = 99
			Expect(exec.Checkpoint().Levels[0]).To(BeNumerically("~", 4, 1e-12))
			Expect(state.Levels[0]).To(BeNumerically("~", 4, 1e-12))
		})
	})

	Context("with a recorder", func() {
		var mockCtrl *gomock.Controller

		BeforeEach(func() {
			mockCtrl = gomock.NewController(GinkgoT())
		})

		AfterEach(func() {
			mockCtrl.Finish()
		})

		It("should sample every committed step and flush once", func() {
			exec := newExecutor[body](0.25, 1)
			Expect(exec.SetIntegrator(loadBody, deriveBody, storeBody)).To(Succeed())
			sampler := NewMockSampler[body](mockCtrl)
			Expect(exec.SetRecorder(sampler)).To(Succeed())

			gomock.InOrder(
				sampler.EXPECT().Sample(gomock.Any(), 0.25),
				sampler.EXPECT().Sample(gomock.Any(), 0.5),
				sampler.EXPECT().Sample(gomock.Any(), 0.75),
				sampler.EXPECT().Sample(gomock.Any(), 1.0),
				sampler.EXPECT().Flush().Return(nil),
			)

			Expect(exec.Run(&body{})).To(Succeed())
		})

		It("should report a failing flush", func() {
			exec := newExecutor[body](0.5, 0.5)
			sampler := NewMockSampler[body](mockCtrl)
			Expect(exec.SetRecorder(sampler)).To(Succeed())
			diskFull := errors.New("disk full")

			sampler.EXPECT().Sample(gomock.Any(), 0.5)
			sampler.EXPECT().Flush().Return(diskFull)

			err := exec.Run(&body{})
			Expect(errors.Is(err, diskFull)).To(BeTrue())
		})
	})

	Context("with events", func() {
		It("should refuse events without an integrator", func() {
			exec := newExecutor[ramp](0.5, 1)
			ev := events.NewRegulaFalsi(func(s *ramp) float64 { return s.S - 0.7 }, nil)
			Expect(exec.AddEvent("x", ev)).To(Succeed())

			err := exec.Run(&ramp{})
			Expect(errors.Is(err, dynamo.ErrInvalidConfig)).To(BeTrue())
		})

		It("should locate and apply a rising crossing once", func() {
			exec := newExecutor[ramp](0.3, 10)
			Expect(exec.SetIntegrator(loadRamp, deriveRamp, storeRamp)).To(Succeed())

			fired := 0
			var at float64
			ev := events.NewRegulaFalsi(
				func(s *ramp) float64 { return s.S - 5 },
				func(s *ramp, c dynamo.Clock) {
					fired++
					at = c.T
				},
				events.WithMode(events.Increasing),
			)
			Expect(exec.AddEvent("five", ev)).To(Succeed())

			Expect(exec.Run(&ramp{})).To(Succeed())

			Expect(fired).To(Equal(1))
			Expect(at).To(BeNumerically("~", 5, 1e-9))
			recs := exec.Events()
			Expect(recs).To(HaveLen(1))
			Expect(recs[0].Name).To(Equal("five"))
			Expect(recs[0].Converged).To(BeTrue())
			Expect(recs[0].Time).To(BeNumerically("~", 5, 1e-9))
			Expect(exec.Clock().T).To(BeNumerically(">=", 10))
		})

		DescribeTable("should filter crossings of sin(t) by direction",
			func(mode events.CrossingMode, want []float64) {
				exec := newExecutor[oscillator](0.01, 10)
				Expect(exec.SetIntegrator(
					func(s *oscillator, _ dynamo.Clock) []float64 { return []float64{s.X, s.V} },
					func(s *oscillator, _ dynamo.Clock) []float64 { return []float64{s.V, -s.X} },
					func(s *oscillator, y []float64) { s.X, s.V = y[0], y[1] },
				)).To(Succeed())
				ev := events.NewRegulaFalsi(
					func(s *oscillator) float64 { return s.X },
					nil,
					events.WithMode(mode),
				)
				Expect(exec.AddEvent("zero", ev)).To(Succeed())

				Expect(exec.Run(&oscillator{V: 1})).To(Succeed())

				recs := exec.Events()
				Expect(recs).To(HaveLen(len(want)))
				for i, r := range recs {
					Expect(r.Time).To(BeNumerically("~", want[i], 1e-6))
					Expect(r.Converged).To(BeTrue())
				}
				Expect(ev.Applied()).To(Equal(len(want)))
			},
			Entry("increasing", events.Increasing, []float64{2 * math.Pi}),
			Entry("decreasing", events.Decreasing, []float64{math.Pi, 3 * math.Pi}),
			Entry("any", events.Any, []float64{math.Pi, 2 * math.Pi, 3 * math.Pi}),
		)

		It("should stop a projectile on the ground", func() {
			exec := newExecutor[projectile](0.01, 6)
			Expect(exec.SetIntegrator(
				func(s *projectile, _ dynamo.Clock) []float64 {
					return []float64{s.X, s.Y, s.VX, s.VY}
				},
				func(s *projectile, _ dynamo.Clock) []float64 {
					if s.Landed {
						return []float64{0, 0, 0, 0}
					}
					return []float64{s.VX, s.VY, 0, -9.81}
				},
				func(s *projectile, y []float64) {
					s.X, s.Y, s.VX, s.VY = y[0], y[1], y[2], y[3]
				},
			)).To(Succeed())
			ground := events.NewRegulaFalsi(
				func(s *projectile) float64 { return s.Y },
				func(s *projectile, _ dynamo.Clock) {
					s.Landed = true
					s.Y, s.VX, s.VY = 0, 0, 0
				},
				events.WithMode(events.Decreasing),
			)
			Expect(exec.AddEvent("ground", ground)).To(Succeed())

			state := projectile{VX: 10, VY: 20}
			Expect(exec.Run(&state)).To(Succeed())

			flight := 40 / 9.81
			recs := exec.Events()
			Expect(recs).To(HaveLen(1))
			Expect(recs[0].Time).To(BeNumerically("~", flight, 1e-6))
			Expect(state.Landed).To(BeTrue())
			Expect(state.X).To(BeNumerically("~", 10*flight, 10*flight*1e-3))
			Expect(state.Y).To(BeZero())
		})

		It("should apply several crossings in one step in time order", func() {
			exec := newExecutor[ramp](0.5, 2)
			Expect(exec.SetIntegrator(loadRamp, deriveRamp, storeRamp)).To(Succeed())
			late := events.NewRegulaFalsi(func(s *ramp) float64 { return s.S - 1.4 }, nil)
			early := events.NewRegulaFalsi(func(s *ramp) float64 { return s.S - 1.2 }, nil)
			Expect(exec.AddEvent("late", late)).To(Succeed())
			Expect(exec.AddEvent("early", early)).To(Succeed())

			Expect(exec.Run(&ramp{})).To(Succeed())

			recs := exec.Events()
			Expect(recs).To(HaveLen(2))
			Expect(recs[0].Name).To(Equal("early"))
			Expect(recs[0].Time).To(BeNumerically("~", 1.2, 1e-9))
			Expect(recs[0].Step).To(Equal(uint64(2)))
			Expect(recs[1].Name).To(Equal("late"))
			Expect(recs[1].Time).To(BeNumerically("~", 1.4, 1e-9))
			Expect(recs[1].Step).To(Equal(uint64(2)))
		})

		It("should apply a curved crossing before a straight one its estimate trails", func() {
			exec := newExecutor[ramp](1, 1)
			Expect(exec.SetIntegrator(loadRamp, deriveRamp, storeRamp)).To(Succeed())
			// the chord from 0 to 1 puts this root at 0.3, past the straight one
			curved := events.NewRegulaFalsi(func(s *ramp) float64 {
				return 0.7 - (1-s.S)*(1-s.S)
			}, nil)
			straight := events.NewRegulaFalsi(func(s *ramp) float64 { return s.S - 0.25 }, nil)
			Expect(exec.AddEvent("straight", straight)).To(Succeed())
			Expect(exec.AddEvent("curved", curved)).To(Succeed())

			Expect(exec.Run(&ramp{})).To(Succeed())

			recs := exec.Events()
			Expect(recs).To(HaveLen(2))
			Expect(recs[0].Name).To(Equal("curved"))
			Expect(recs[0].Time).To(BeNumerically("~", 1-math.Sqrt(0.7), 1e-8))
			Expect(recs[0].Converged).To(BeTrue())
			Expect(recs[1].Name).To(Equal("straight"))
			Expect(recs[1].Time).To(BeNumerically("~", 0.25, 1e-9))
			Expect(curved.Applied()).To(Equal(1))
			Expect(straight.Applied()).To(Equal(1))
		})

		It("should count only the refinements made when an estimate is lost", func() {
			exec := newExecutor[ramp](1, 1)
			Expect(exec.SetIntegrator(loadRamp, deriveRamp, storeRamp)).To(Succeed())
			Expect(exec.AddEvent("lost", &vanishingEvent{})).To(Succeed())

			Expect(exec.Run(&ramp{})).To(Succeed())

			recs := exec.Events()
			Expect(recs).To(HaveLen(1))
			Expect(recs[0].Time).To(BeNumerically("~", 0.5, 1e-12))
			Expect(recs[0].Iterations).To(Equal(1))
			Expect(recs[0].Converged).To(BeFalse())
		})

		It("should finish the step with the state an action produced", func() {
			exec := newExecutor[ramp](0.25, 1.5)
			Expect(exec.SetIntegrator(loadRamp, deriveRamp, storeRamp)).To(Succeed())
			open := events.NewRegulaFalsi(
				func(s *ramp) float64 { return s.S - 0.9 },
				func(s *ramp, _ dynamo.Clock) { s.Rate = 10 },
			)
			full := events.NewRegulaFalsi(
				func(s *ramp) float64 { return s.Z },
				nil,
				events.WithMode(events.Increasing),
			)
			Expect(exec.AddEvent("open", open)).To(Succeed())
			Expect(exec.AddEvent("full", full)).To(Succeed())

			state := ramp{Z: -0.5}
			Expect(exec.Run(&state)).To(Succeed())

			recs := exec.Events()
			Expect(recs).To(HaveLen(2))
			Expect(recs[0].Name).To(Equal("open"))
			Expect(recs[0].Time).To(BeNumerically("~", 0.9, 1e-9))
			Expect(recs[1].Name).To(Equal("full"))
			Expect(recs[1].Time).To(BeNumerically("~", 0.95, 1e-9))
			Expect(state.Z).To(BeNumerically("~", -0.5+10*(1.5-0.9), 1e-9))
		})

		It("should apply at the best estimate and warn when the search runs out", func() {
			var buf bytes.Buffer
			exec, err := New[ramp](0.5, 3,
				WithLogger(slog.New(slog.NewTextHandler(&buf, nil))),
				WithEventIterations(5),
			)
			Expect(err).NotTo(HaveOccurred())
			Expect(exec.SetIntegrator(loadRamp, deriveRamp, storeRamp)).To(Succeed())
			ev := events.NewRegulaFalsi(func(s *ramp) float64 {
				if s.S < 1.8 {
					return -1
				}
				return 1
			}, nil)
			Expect(exec.AddEvent("switch", ev)).To(Succeed())

			Expect(exec.Run(&ramp{})).To(Succeed())

			recs := exec.Events()
			Expect(recs).To(HaveLen(1))
			Expect(recs[0].Converged).To(BeFalse())
			Expect(recs[0].Iterations).To(Equal(5))
			Expect(recs[0].Time).To(BeNumerically(">", 1.5))
			Expect(recs[0].Time).To(BeNumerically("<", 2))
			Expect(buf.String()).To(ContainSubstring("did not converge"))
		})
	})

	Context("hooks", func() {
		It("should report committed steps and applied events", func() {
			exec := newExecutor[ramp](0.25, 1)
			Expect(exec.SetIntegrator(loadRamp, deriveRamp, storeRamp)).To(Succeed())
			Expect(exec.AddEvent("half", events.NewRegulaFalsi(
				func(s *ramp) float64 { return s.S - 0.6 }, nil,
			))).To(Succeed())

			var steps []uint64
			var applied []EventRecord
			exec.AcceptHook(HookFunc(func(ctx HookCtx) {
				switch ctx.Pos {
				case HookPosStepCommitted:
					steps = append(steps, ctx.Item.(dynamo.Clock).Step)
				case HookPosEventApplied:
					applied = append(applied, ctx.Item.(EventRecord))
				}
			}))

			Expect(exec.Run(&ramp{})).To(Succeed())

			Expect(steps).To(Equal([]uint64{1, 2, 3, 4}))
			Expect(applied).To(HaveLen(1))
			Expect(applied[0].Name).To(Equal("half"))
		})
	})
})
