// Package solver defines the boundary to the external decision procedure
// that fills a sketch's holes, together with a brute-force reference solver
// usable at small widths. The quantification is: for every assignment of the
// free variables, the candidate must equal the specification.
package solver

import "github.com/lutsmith/lutsmith/ir"

// Status is the outcome of a solve call. "No solution" and "unknown" are
// reported results, not errors; the caller may retry with another generator
// or a wider architecture.
type Status int

const (
	Unknown Status = iota
	Sat
	Unsat
)

func (s Status) String() string {
	switch s {
	case Sat:
		return "sat"
	case Unsat:
		return "unsat"
	default:
		return "unknown"
	}
}

// Result carries the status and, when Sat, the hole assignment that realizes
// the specification.
type Result struct {
	Status     Status
	Assignment ir.Assignment
}

// Solver decides whether a candidate sketch can realize a specification.
type Solver interface {
	Solve(spec, candidate ir.Expr, vars []*ir.Var) (Result, error)
}
