package sketch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lutsmith/lutsmith/arch"
	"github.com/lutsmith/lutsmith/interp"
	"github.com/lutsmith/lutsmith/ir"
)

// assignMultiply programs a multiply state as an actual multiplier: AND
// partial products, an adder front-end that forwards its second operand, and
// a low carry-in.
func assignMultiply(asg ir.Assignment, st *State) {
	assignLUT(asg, st.internals["and"], 0b1000)
	add := st.children["add"]
	assignBitwise(asg, add.children["bitwise"], 0b1100) // forward I1
	asg[add.children["carry"].holes["ci"].ID] = ir.Zero(1)
}

func TestMultiplyTruncated(t *testing.T) {
	g := arch.NewGeneric(4)
	const w = 3
	a := ir.NewVar("a", w)
	b := ir.NewVar("b", w)

	cand, st, err := Multiply(g, []ir.Expr{a, b}, 2, w, nil)
	require.NoError(t, err)
	assert.Equal(t, w, cand.Width())

	asg := ir.Assignment{}
	assignMultiply(asg, st)
	got, err := ir.Substitute(cand, asg)
	require.NoError(t, err)

	for av := uint64(0); av < 1<<w; av++ {
		for bv := uint64(0); bv < 1<<w; bv++ {
			env := map[string]*ir.Const{
				"a": ir.ConstFromUint64(w, av),
				"b": ir.ConstFromUint64(w, bv),
			}
			v, err := interp.Eval(got, env, g.Semantics())
			require.NoError(t, err)
			assert.Equal(t, (av*bv)&(1<<w-1), v.Uint64(), "a=%d b=%d", av, bv)
		}
	}
}

func TestMultiplySharing(t *testing.T) {
	g := arch.NewGeneric(4)
	const w = 4
	a := ir.NewVar("a", w)
	b := ir.NewVar("b", w)

	e1, st, err := Multiply(g, []ir.Expr{a, b}, 2, w, nil)
	require.NoError(t, err)

	// one AND table, one adder front-end (2 ext + order + 4 truth), one
	// carry-in: twelve decisions regardless of width
	assert.Len(t, st.Symbolics(), 12)

	e2, _, err := Multiply(g, []ir.Expr{b, a}, 2, w, st)
	require.NoError(t, err)
	assert.Equal(t, holeIDs(ir.Symbolics(e1)), holeIDs(ir.Symbolics(e2)))
}

func TestMultiplyPartialProductsUniform(t *testing.T) {
	// every partial-product primitive must carry the same truth-table holes
	g := arch.NewGeneric(4)
	const w = 3
	a := ir.NewVar("a", w)
	b := ir.NewVar("b", w)

	cand, st, err := Multiply(g, []ir.Expr{a, b}, 2, w, nil)
	require.NoError(t, err)

	want := holeIDs(st.internals["and"].Holes())
	seen := make(map[*ir.Prim]bool)
	ir.Walk(cand, func(e ir.Expr) bool {
		p, ok := e.(*ir.Prim)
		if !ok || seen[p] || p.Name != arch.KindLUT || p.Params["num_inputs"] != 2 {
			return true
		}
		// adder LUTs live below a choose; partial products are wired
		// straight to input extracts
		if _, direct := p.Port("I0").(*ir.Extract); !direct {
			return true
		}
		seen[p] = true
		assert.ElementsMatch(t, want, holeIDs(ir.Symbolics(p.Port(arch.PortInit))))
		return true
	})
	assert.Len(t, seen, w*(w+1)/2)
}

func TestMultiplyErrors(t *testing.T) {
	g := arch.NewGeneric(4)
	a := ir.NewVar("a", 3)

	var ae *ArityError
	_, _, err := Multiply(g, []ir.Expr{a}, 1, 3, nil)
	assert.ErrorAs(t, err, &ae)

	var we *InputWidthError
	_, _, err = Multiply(g, []ir.Expr{a, ir.NewVar("b", 4)}, 2, 3, nil)
	assert.ErrorAs(t, err, &we)
}
