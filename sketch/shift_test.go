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

// muxDepth reports the deepest nesting of mux primitives, which equals the
// number of selection stages.
func muxDepth(e ir.Expr) int {
	memo := make(map[ir.Expr]int)
	var depth func(ir.Expr) int
	depth = func(e ir.Expr) int {
		if d, ok := memo[e]; ok {
			return d
		}
		max := 0
		var args []ir.Expr
		switch n := e.(type) {
		case *ir.Extract:
			args = []ir.Expr{n.Arg}
		case *ir.Concat:
			args = n.Args
		case *ir.ZeroExt:
			args = []ir.Expr{n.Arg}
		case *ir.DupExt:
			args = []ir.Expr{n.Arg}
		case *ir.Choose:
			args = []ir.Expr{n.A, n.B}
		case *ir.Prim:
			args = n.PortExprs
		}
		for _, a := range args {
			if d := depth(a); d > max {
				max = d
			}
		}
		if p, ok := e.(*ir.Prim); ok && p.Name == arch.KindMUX {
			max++
		}
		memo[e] = max
		return max
	}
	return depth(e)
}

func TestShiftStageCount(t *testing.T) {
	g := arch.NewGeneric(4)
	const w = 4
	a := ir.NewVar("a", w)
	b := ir.NewVar("b", w)

	e, _, err := Shift(g, []ir.Expr{a, b}, 2, w, nil)
	require.NoError(t, err)
	assert.Equal(t, w, muxDepth(e)) // one stage per amount bit

	e, _, err = ShiftWithOptions(g, []ir.Expr{a, b}, 2, w, nil, ShiftOptions{LogStages: true})
	require.NoError(t, err)
	assert.Equal(t, 3, muxDepth(e)) // ceil(log2(4+2))
}

// assignShift programs a shift state for one direction with neutral mux
// polarity and an identity saturation table; fill policies other than
// FillHole leave no fill decisions.
func assignShift(asg ir.Assignment, st *State, right bool) {
	dir := ir.Zero(1)
	if right {
		dir = ir.One()
	}
	asg[st.holes["dir"].ID] = dir
	asg[st.internals["mux"].Holes()[0].ID] = ir.Zero(1)
	assignLUT(asg, st.children["sat0"].internals["win"], 0b10)
}

func TestShiftArithmeticRight(t *testing.T) {
	g := arch.NewGeneric(4)
	const w = 3
	a := ir.NewVar("a", w)
	b := ir.NewVar("b", w)

	cand, st, err := ShiftWithOptions(g, []ir.Expr{a, b}, 2, w, nil, ShiftOptions{Fill: FillSign})
	require.NoError(t, err)

	asg := ir.Assignment{}
	assignShift(asg, st, true)
	got, err := ir.Substitute(cand, asg)
	require.NoError(t, err)

	mask := uint64(1<<w - 1)
	for av := uint64(0); av < 1<<w; av++ {
		for bv := uint64(0); bv < 1<<w; bv++ {
			env := map[string]*ir.Const{
				"a": ir.ConstFromUint64(w, av),
				"b": ir.ConstFromUint64(w, bv),
			}
			v, err := interp.Eval(got, env, g.Semantics())
			require.NoError(t, err)

			amt := bv
			if amt > w {
				amt = w
			}
			sext := av
			if av&(1<<(w-1)) != 0 {
				sext |= ^mask
			}
			want := uint64(int64(sext)>>amt) & mask
			assert.Equal(t, want, v.Uint64(), "a=%d b=%d", av, bv)
		}
	}
}

func TestShiftArithmeticRightWide(t *testing.T) {
	g := arch.NewGeneric(4)
	const w = 8
	a := ir.NewVar("a", w)
	b := ir.NewVar("b", w)

	cand, st, err := ShiftWithOptions(g, []ir.Expr{a, b}, 2, w, nil, ShiftOptions{Fill: FillSign})
	require.NoError(t, err)
	assert.Equal(t, w, muxDepth(cand))

	asg := ir.Assignment{}
	assignShift(asg, st, true)
	got, err := ir.Substitute(cand, asg)
	require.NoError(t, err)

	// shift by one across the whole signed range
	env := map[string]*ir.Const{"b": ir.ConstFromUint64(w, 1)}
	for av := uint64(0); av < 1<<w; av++ {
		env["a"] = ir.ConstFromUint64(w, av)
		v, err := interp.Eval(got, env, g.Semantics())
		require.NoError(t, err)
		want := uint64(int64(int8(av))>>1) & 0xff
		assert.Equal(t, want, v.Uint64(), "a=%d", av)
	}
}

func TestShiftLogicalLeft(t *testing.T) {
	g := arch.NewGeneric(4)
	const w = 3
	a := ir.NewVar("a", w)
	b := ir.NewVar("b", w)

	cand, st, err := ShiftWithOptions(g, []ir.Expr{a, b}, 2, w, nil, ShiftOptions{Fill: FillZero})
	require.NoError(t, err)

	asg := ir.Assignment{}
	assignShift(asg, st, false)
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
			want := uint64(0)
			if bv < w {
				want = (av << bv) & (1<<w - 1)
			}
			assert.Equal(t, want, v.Uint64(), "a=%d b=%d", av, bv)
		}
	}
}

func TestShiftSolvesArithmeticRight(t *testing.T) {
	// with the fill left open the solver settles direction, polarity,
	// saturation and fill in one search
	g := arch.NewGeneric(4)
	const w = 2
	a := ir.NewVar("a", w)
	b := ir.NewVar("b", w)

	cand, _, err := Shift(g, []ir.Expr{a, b}, 2, w, nil)
	require.NoError(t, err)

	spec := interp.BVOp("bvashr", w, a, b)
	res, err := solver.NewEnum(fullSem(g)).Solve(spec, cand, []*ir.Var{a, b})
	require.NoError(t, err)
	assert.Equal(t, solver.Sat, res.Status)
}

func TestShiftStateTiedToOptions(t *testing.T) {
	g := arch.NewGeneric(4)
	a := ir.NewVar("a", 4)
	b := ir.NewVar("b", 4)

	_, st, err := Shift(g, []ir.Expr{a, b}, 2, 4, nil)
	require.NoError(t, err)
	_, _, err = ShiftWithOptions(g, []ir.Expr{a, b}, 2, 4, st, ShiftOptions{LogStages: true})
	var se *StateMismatchError
	assert.ErrorAs(t, err, &se)

	// same options reuse the same decisions
	e1, _, err := Shift(g, []ir.Expr{a, b}, 2, 4, st)
	require.NoError(t, err)
	e2, _, err := Shift(g, []ir.Expr{b, a}, 2, 4, st)
	require.NoError(t, err)
	assert.Equal(t, holeIDs(ir.Symbolics(e1)), holeIDs(ir.Symbolics(e2)))
}
