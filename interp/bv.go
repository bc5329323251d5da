package interp

import (
	"fmt"

	"github.com/bits-and-blooms/bitset"

	"github.com/lutsmith/lutsmith/ir"
)

// Specification expressions are ordinary expression trees whose operations
// are primitives with reference behavior: BVOp builds such a node and
// BVSemantics supplies the behavior. Callers merge these with a platform's
// primitive semantics before solving or evaluating.

// BVOp builds a specification operation node of the given result width.
func BVOp(name string, w int, args ...ir.Expr) ir.Expr {
	names := make([]string, len(args))
	for i := range args {
		names[i] = fmt.Sprintf("A%d", i)
	}
	return ir.NewPrim(name, map[string]int{"width": w}, names, args, "O", w)
}

// Merge combines semantics maps; later entries win.
func Merge(ms ...Semantics) Semantics {
	out := make(Semantics)
	for _, m := range ms {
		for k, v := range m {
			out[k] = v
		}
	}
	return out
}

// BVSemantics returns reference behavior for the specification operations:
// bvand, bvor, bvxor, bvnot, bvadd, bvsub, bvmul (truncated), bveq (one-bit
// flag) and bvashr.
func BVSemantics() Semantics {
	return Semantics{
		"bvand": bitwiseSem(func(a, b bool) bool { return a && b }),
		"bvor":  bitwiseSem(func(a, b bool) bool { return a || b }),
		"bvxor": bitwiseSem(func(a, b bool) bool { return a != b }),
		"bvnot": notSem,
		"bvadd": arithSem(func(a, b, m uint64) uint64 { return (a + b) & m }),
		"bvsub": arithSem(func(a, b, m uint64) uint64 { return (a - b) & m }),
		"bvmul": arithSem(func(a, b, m uint64) uint64 { return (a * b) & m }),
		"bveq":  eqSem,
		"bvashr": func(params map[string]int, ports map[string]*ir.Const) (map[string]*ir.Const, error) {
			w := params["width"]
			a, b, err := twoPorts(ports)
			if err != nil {
				return nil, err
			}
			amt := int(b.Uint64())
			if amt > w {
				amt = w
			}
			out := bitset.New(uint(w))
			for i := 0; i < w; i++ {
				src := i + amt
				bit := a.Bit(w - 1) // sign fill
				if src < w {
					bit = a.Bit(src)
				}
				if bit {
					out.Set(uint(i))
				}
			}
			return map[string]*ir.Const{"O": ir.NewConst(w, out)}, nil
		},
	}
}

func twoPorts(ports map[string]*ir.Const) (*ir.Const, *ir.Const, error) {
	a, okA := ports["A0"]
	b, okB := ports["A1"]
	if !okA || !okB {
		return nil, nil, fmt.Errorf("interp: specification op needs ports A0 and A1")
	}
	return a, b, nil
}

func bitwiseSem(op func(a, b bool) bool) PrimFunc {
	return func(params map[string]int, ports map[string]*ir.Const) (map[string]*ir.Const, error) {
		w := params["width"]
		a, b, err := twoPorts(ports)
		if err != nil {
			return nil, err
		}
		out := bitset.New(uint(w))
		for i := 0; i < w; i++ {
			if op(a.Bit(i), b.Bit(i)) {
				out.Set(uint(i))
			}
		}
		return map[string]*ir.Const{"O": ir.NewConst(w, out)}, nil
	}
}

func notSem(params map[string]int, ports map[string]*ir.Const) (map[string]*ir.Const, error) {
	w := params["width"]
	a, ok := ports["A0"]
	if !ok {
		return nil, fmt.Errorf("interp: bvnot needs port A0")
	}
	out := bitset.New(uint(w))
	for i := 0; i < w; i++ {
		if !a.Bit(i) {
			out.Set(uint(i))
		}
	}
	return map[string]*ir.Const{"O": ir.NewConst(w, out)}, nil
}

func arithSem(op func(a, b, mask uint64) uint64) PrimFunc {
	return func(params map[string]int, ports map[string]*ir.Const) (map[string]*ir.Const, error) {
		w := params["width"]
		a, b, err := twoPorts(ports)
		if err != nil {
			return nil, err
		}
		mask := uint64(1)<<uint(w) - 1
		return map[string]*ir.Const{"O": ir.ConstFromUint64(w, op(a.Uint64(), b.Uint64(), mask))}, nil
	}
}

func eqSem(params map[string]int, ports map[string]*ir.Const) (map[string]*ir.Const, error) {
	a, b, err := twoPorts(ports)
	if err != nil {
		return nil, err
	}
	out := uint64(0)
	if a.EqualConst(b) {
		out = 1
	}
	return map[string]*ir.Const{"O": ir.ConstFromUint64(1, out)}, nil
}
