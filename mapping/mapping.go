// Package mapping provides the logical-to-physical bit reordering strategies
// used to route logical bit-vector lanes onto the physical ports of
// instantiated primitives, and back. Every strategy is a pure bijection:
// ToLogical(ToPhysical(x)) must equal x, because a broken round trip silently
// swaps wires and yields an incorrect circuit.
package mapping

import "github.com/lutsmith/lutsmith/ir"

// Strategy reorders rows, where the outer index is a bit position and each
// inner slice holds that position's value for every logical input.
type Strategy interface {
	Name() string
	ToPhysical(rows [][]ir.Expr) [][]ir.Expr
	ToLogical(rows [][]ir.Expr) [][]ir.Expr
}

type identity struct{}

// Identity keeps logical and physical orders equal.
var Identity Strategy = identity{}

func (identity) Name() string { return "identity" }

func (identity) ToPhysical(rows [][]ir.Expr) [][]ir.Expr { return copyRows(rows) }
func (identity) ToLogical(rows [][]ir.Expr) [][]ir.Expr  { return copyRows(rows) }

type reversed struct{}

// Reversed maps logical position i to physical position n-1-i.
var Reversed Strategy = reversed{}

func (reversed) Name() string { return "reversed" }

func (reversed) ToPhysical(rows [][]ir.Expr) [][]ir.Expr { return reverseRows(rows) }
func (reversed) ToLogical(rows [][]ir.Expr) [][]ir.Expr  { return reverseRows(rows) }

type selected struct {
	sel  *ir.Hole
	a, b Strategy
}

// Selected combines two strategies under a one-bit hole: the solver picks the
// ordering that admits a valid implementation. Each output position becomes a
// Choose between the two strategies' values, so the round trip holds under
// every assignment of the hole rather than structurally.
func Selected(sel *ir.Hole, a, b Strategy) Strategy {
	return &selected{sel: sel, a: a, b: b}
}

func (s *selected) Name() string {
	return "selected(" + s.a.Name() + "," + s.b.Name() + ")"
}

func (s *selected) ToPhysical(rows [][]ir.Expr) [][]ir.Expr {
	return s.choose(s.a.ToPhysical(rows), s.b.ToPhysical(rows))
}

func (s *selected) ToLogical(rows [][]ir.Expr) [][]ir.Expr {
	return s.choose(s.a.ToLogical(rows), s.b.ToLogical(rows))
}

func (s *selected) choose(pa, pb [][]ir.Expr) [][]ir.Expr {
	out := make([][]ir.Expr, len(pa))
	for i := range pa {
		out[i] = make([]ir.Expr, len(pa[i]))
		for j := range pa[i] {
			out[i][j] = ir.NewChoose(s.sel, pa[i][j], pb[i][j])
		}
	}
	return out
}

func copyRows(rows [][]ir.Expr) [][]ir.Expr {
	out := make([][]ir.Expr, len(rows))
	for i, r := range rows {
		out[i] = append([]ir.Expr(nil), r...)
	}
	return out
}

func reverseRows(rows [][]ir.Expr) [][]ir.Expr {
	out := make([][]ir.Expr, len(rows))
	for i, r := range rows {
		out[len(rows)-1-i] = append([]ir.Expr(nil), r...)
	}
	return out
}
