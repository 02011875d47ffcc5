// Package lut provides one and two dimensional lookup tables with linear
// interpolation between breakpoints.
//
// Queries outside the breakpoint range either fail with a *DomainError
// (Strict) or return the nearest edge value (Clamp), chosen per table.
package lut
