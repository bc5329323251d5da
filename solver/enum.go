package solver

import (
	"fmt"

	"github.com/lutsmith/lutsmith/interp"
	"github.com/lutsmith/lutsmith/ir"
	"github.com/lutsmith/lutsmith/logger"
)

// Enumeration bails out beyond these budgets and reports Unknown instead of
// running forever.
const (
	maxHoleBits = 24
	maxVarBits  = 20
)

// Enum is an exhaustive reference solver: it enumerates every hole
// assignment and checks each against every variable assignment using the
// given primitive semantics.
type Enum struct {
	sem interp.Semantics
}

func NewEnum(sem interp.Semantics) *Enum {
	return &Enum{sem: sem}
}

func (e *Enum) Solve(spec, candidate ir.Expr, vars []*ir.Var) (Result, error) {
	if spec.Width() != candidate.Width() {
		return Result{}, fmt.Errorf("solver: specification width %d, candidate width %d", spec.Width(), candidate.Width())
	}
	holes := ir.Symbolics(candidate)
	holeBits := 0
	for _, h := range holes {
		holeBits += h.W
	}
	varBits := 0
	for _, v := range vars {
		varBits += v.W
	}
	if holeBits > maxHoleBits || varBits > maxVarBits {
		lg := logger.Logger()
		lg.Debug().
			Int("hole_bits", holeBits).
			Int("var_bits", varBits).
			Msg("enumeration budget exceeded")
		return Result{Status: Unknown}, nil
	}

	for h := uint64(0); h < 1<<uint(holeBits); h++ {
		asg := make(ir.Assignment, len(holes))
		off := 0
		for _, hole := range holes {
			asg[hole.ID] = ir.ConstFromUint64(hole.W, h>>uint(off))
			off += hole.W
		}
		sub, err := ir.Substitute(candidate, asg)
		if err != nil {
			return Result{}, err
		}
		ok, err := e.holds(spec, sub, vars, varBits)
		if err != nil {
			return Result{}, err
		}
		if ok {
			return Result{Status: Sat, Assignment: asg}, nil
		}
	}
	return Result{Status: Unsat}, nil
}

// holds checks candidate == spec for every assignment of the free variables.
func (e *Enum) holds(spec, candidate ir.Expr, vars []*ir.Var, varBits int) (bool, error) {
	for v := uint64(0); v < 1<<uint(varBits); v++ {
		env := make(map[string]*ir.Const, len(vars))
		off := 0
		for _, fv := range vars {
			env[fv.Name] = ir.ConstFromUint64(fv.W, v>>uint(off))
			off += fv.W
		}
		want, err := interp.Eval(spec, env, e.sem)
		if err != nil {
			return false, err
		}
		got, err := interp.Eval(candidate, env, e.sem)
		if err != nil {
			return false, err
		}
		if !got.EqualConst(want) {
			return false, nil
		}
	}
	return true, nil
}
