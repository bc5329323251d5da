package sketch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lutsmith/lutsmith/arch"
	"github.com/lutsmith/lutsmith/interp"
	"github.com/lutsmith/lutsmith/ir"
	"github.com/lutsmith/lutsmith/solver"
)

func holeIDs(holes []*ir.Hole) []uint64 {
	out := make([]uint64, len(holes))
	for i, h := range holes {
		out[i] = h.ID
	}
	return out
}

func fullSem(g *arch.Generic) interp.Semantics {
	return interp.Merge(g.Semantics(), interp.BVSemantics())
}

func TestBitwiseSharing(t *testing.T) {
	g := arch.NewGeneric(4)
	a := ir.NewVar("a", 4)
	b := ir.NewVar("b", 4)

	e1, st, err := Bitwise(g, []ir.Expr{a, b}, 2, 4, nil)
	require.NoError(t, err)
	e2, st2, err := Bitwise(g, []ir.Expr{b, a}, 2, 4, st)
	require.NoError(t, err)
	assert.Same(t, st, st2)

	// reuse of the state reproduces the identical hole identities
	assert.Equal(t, holeIDs(ir.Symbolics(e1)), holeIDs(ir.Symbolics(e2)))

	// a fresh state allocates fresh decisions
	e3, _, err := Bitwise(g, []ir.Expr{a, b}, 2, 4, nil)
	require.NoError(t, err)
	assert.NotEqual(t, holeIDs(ir.Symbolics(e1)), holeIDs(ir.Symbolics(e3)))

	// ext choice per input, one order choice, one shared truth table
	assert.Len(t, st.Symbolics(), 2+1+4)
}

func TestBitwiseErrors(t *testing.T) {
	g := arch.NewGeneric(4)
	a := ir.NewVar("a", 4)

	_, _, err := Bitwise(g, []ir.Expr{a}, 2, 4, nil)
	var ae *ArityError
	assert.ErrorAs(t, err, &ae)

	_, _, err = Bitwise(g, []ir.Expr{a, ir.NewVar("b", 3)}, 2, 4, nil)
	var we *InputWidthError
	require.ErrorAs(t, err, &we)
	assert.Equal(t, 1, we.Index)

	// a state cannot cross generators or shapes
	_, st, err := Bitwise(g, []ir.Expr{a, a}, 2, 4, nil)
	require.NoError(t, err)
	_, _, err = Carry(g, []ir.Expr{a, a}, 2, 4, st)
	var se *StateMismatchError
	assert.ErrorAs(t, err, &se)
	_, _, err = Bitwise(g, []ir.Expr{ir.NewVar("c", 8), ir.NewVar("d", 8)}, 2, 8, st)
	assert.ErrorAs(t, err, &se)
}

func TestBitwiseSolvesAnd(t *testing.T) {
	g := arch.NewGeneric(4)
	const w = 2
	a := ir.NewVar("a", w)
	b := ir.NewVar("b", w)
	vars := []*ir.Var{a, b}

	cand, _, err := Bitwise(g, []ir.Expr{a, b}, 2, w, nil)
	require.NoError(t, err)
	spec := interp.BVOp("bvand", w, a, b)

	res, err := solver.NewEnum(fullSem(g)).Solve(spec, cand, vars)
	require.NoError(t, err)
	require.Equal(t, solver.Sat, res.Status)

	got, err := ir.Substitute(cand, res.Assignment)
	require.NoError(t, err)
	for av := uint64(0); av < 1<<w; av++ {
		for bv := uint64(0); bv < 1<<w; bv++ {
			env := map[string]*ir.Const{
				"a": ir.ConstFromUint64(w, av),
				"b": ir.ConstFromUint64(w, bv),
			}
			v, err := interp.Eval(got, env, g.Semantics())
			require.NoError(t, err)
			assert.Equal(t, av&bv, v.Uint64(), "a=%d b=%d", av, bv)
		}
	}
}

func TestBitwiseCannotAdd(t *testing.T) {
	// addition carries between positions, which no per-position function
	// realizes
	g := arch.NewGeneric(4)
	const w = 2
	a := ir.NewVar("a", w)
	b := ir.NewVar("b", w)

	cand, _, err := Bitwise(g, []ir.Expr{a, b}, 2, w, nil)
	require.NoError(t, err)
	spec := interp.BVOp("bvadd", w, a, b)

	res, err := solver.NewEnum(fullSem(g)).Solve(spec, cand, []*ir.Var{a, b})
	require.NoError(t, err)
	assert.Equal(t, solver.Unsat, res.Status)
}
