// Package physics provides the models the built-in scenarios integrate.
//
// Each model exposes Load, Derive and Store methods that plug directly into
// an executor's integrator:
//
//   - [Projectile]: point mass under uniform gravity
//   - [Rocket]: planar three degree of freedom rocket with a launch rail
//
// [Density] and [Mach] evaluate the standard atmosphere. [Motor] reads RASP
// .eng thrust curves and [AeroCoefficients] holds Mach-dependent
// aerodynamics.
//
// Flight phase changes of a rocket are not detected here; they are actions
// of events registered by the caller (see LeaveRail, Burnout, Apogee and
// Touchdown).
package physics
