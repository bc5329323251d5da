// Package interp evaluates fully-resolved expressions against a set of
// primitive behavioral semantics. It is the verification boundary: sketches
// are substituted with a solver's assignment first, then evaluated here and
// compared against the specification.
package interp

import (
	"errors"
	"fmt"

	"github.com/bits-and-blooms/bitset"

	"github.com/lutsmith/lutsmith/ir"
)

// PrimFunc is the reference behavior of one platform primitive: given the
// instantiation parameters and concrete port values, it produces the values
// of all output ports.
type PrimFunc func(params map[string]int, ports map[string]*ir.Const) (map[string]*ir.Const, error)

// Semantics maps primitive names to their reference behavior.
type Semantics map[string]PrimFunc

// ErrHole is returned when evaluation reaches an unresolved hole or an
// unresolved choice; substitute the solver's assignment first.
var ErrHole = errors.New("interp: expression contains an unresolved hole")

// Eval computes the value of e. Free variables are read from env; primitive
// instantiations are evaluated through sem. Expressions are treated as DAGs:
// a sub-expression aliased into several places (stage outputs, shared
// operands) is evaluated once.
func Eval(e ir.Expr, env map[string]*ir.Const, sem Semantics) (*ir.Const, error) {
	ev := &evaluator{env: env, sem: sem, memo: make(map[ir.Expr]*ir.Const)}
	return ev.eval(e)
}

type evaluator struct {
	env  map[string]*ir.Const
	sem  Semantics
	memo map[ir.Expr]*ir.Const
}

func (ev *evaluator) eval(e ir.Expr) (*ir.Const, error) {
	if v, ok := ev.memo[e]; ok {
		return v, nil
	}
	v, err := ev.evalNode(e)
	if err != nil {
		return nil, err
	}
	ev.memo[e] = v
	return v, nil
}

func (ev *evaluator) evalNode(e ir.Expr) (*ir.Const, error) {
	switch n := e.(type) {
	case *ir.Const:
		return n, nil
	case *ir.Var:
		v, ok := ev.env[n.Name]
		if !ok {
			return nil, fmt.Errorf("interp: variable %s is unbound", n.Name)
		}
		if v.W != n.W {
			return nil, fmt.Errorf("interp: variable %s bound at width %d, declared %d", n.Name, v.W, n.W)
		}
		return v, nil
	case *ir.Hole:
		return nil, fmt.Errorf("%w (hole %d)", ErrHole, n.ID)
	case *ir.Extract:
		arg, err := ev.eval(n.Arg)
		if err != nil {
			return nil, err
		}
		w := n.Hi - n.Lo + 1
		b := bitset.New(uint(w))
		for i := 0; i < w; i++ {
			if arg.Bit(n.Lo + i) {
				b.Set(uint(i))
			}
		}
		return ir.NewConst(w, b), nil
	case *ir.Concat:
		// Operands are most significant first.
		vals := make([]*ir.Const, len(n.Args))
		total := 0
		for i, a := range n.Args {
			v, err := ev.eval(a)
			if err != nil {
				return nil, err
			}
			vals[i] = v
			total += v.W
		}
		b := bitset.New(uint(total))
		off := 0
		for i := len(vals) - 1; i >= 0; i-- {
			v := vals[i]
			for j := 0; j < v.W; j++ {
				if v.Bit(j) {
					b.Set(uint(off + j))
				}
			}
			off += v.W
		}
		return ir.NewConst(total, b), nil
	case *ir.ZeroExt:
		arg, err := ev.eval(n.Arg)
		if err != nil {
			return nil, err
		}
		b := bitset.New(uint(n.W))
		for i := 0; i < arg.W; i++ {
			if arg.Bit(i) {
				b.Set(uint(i))
			}
		}
		return ir.NewConst(n.W, b), nil
	case *ir.DupExt:
		arg, err := ev.eval(n.Arg)
		if err != nil {
			return nil, err
		}
		b := bitset.New(uint(n.W))
		for i := 0; i < n.W; i++ {
			if arg.Bit(i % arg.W) {
				b.Set(uint(i))
			}
		}
		return ir.NewConst(n.W, b), nil
	case *ir.List, *ir.Map:
		return nil, fmt.Errorf("interp: %T is not a bit vector", e)
	case *ir.ListRef:
		l := n.Arg.(*ir.List)
		return ev.eval(l.Elems[n.Index])
	case *ir.MapRef:
		m := n.Arg.(*ir.Map)
		for i, k := range m.Keys {
			if k == n.Key {
				return ev.eval(m.Vals[i])
			}
		}
		return nil, fmt.Errorf("interp: map key %q not present", n.Key)
	case *ir.Choose:
		return nil, fmt.Errorf("%w (choice on hole %d)", ErrHole, n.Sel.ID)
	case *ir.Prim:
		fn, ok := ev.sem[n.Name]
		if !ok {
			return nil, fmt.Errorf("interp: no semantics for primitive %q", n.Name)
		}
		ports := make(map[string]*ir.Const, len(n.PortNames))
		for i, name := range n.PortNames {
			v, err := ev.eval(n.PortExprs[i])
			if err != nil {
				return nil, err
			}
			ports[name] = v
		}
		outs, err := fn(n.Params, ports)
		if err != nil {
			return nil, err
		}
		out, ok := outs[n.Out]
		if !ok {
			return nil, fmt.Errorf("interp: primitive %q produced no output %q", n.Name, n.Out)
		}
		if out.W != n.W {
			return nil, fmt.Errorf("interp: primitive %q output %q has width %d, want %d", n.Name, n.Out, out.W, n.W)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("interp: unknown node %T", e)
	}
}
