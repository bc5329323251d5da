package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstFromUint64(t *testing.T) {
	c := ConstFromUint64(4, 0b1010)
	assert.Equal(t, 4, c.Width())
	assert.False(t, c.Bit(0))
	assert.True(t, c.Bit(1))
	assert.False(t, c.Bit(2))
	assert.True(t, c.Bit(3))
	assert.Equal(t, uint64(0b1010), c.Uint64())

	// values are truncated to the width
	assert.Equal(t, uint64(0b10), ConstFromUint64(2, 0b110).Uint64())
}

func TestShapeErrors(t *testing.T) {
	a := NewVar("a", 4)

	assert.PanicsWithError(t, "ir: extract: bounds [2,1] invalid for width 4", func() {
		NewExtract(2, 1, a)
	})
	assert.Panics(t, func() { NewExtract(0, 4, a) })
	assert.Panics(t, func() { NewExtract(-1, 0, a) })
	assert.Panics(t, func() { NewZeroExt(a, 3) })
	assert.Panics(t, func() { NewDupExt(a, 2) })
	assert.Panics(t, func() { NewConcat() })
	assert.Panics(t, func() { NewChoose(NewHole(2), a, a) })
	assert.Panics(t, func() { NewChoose(NewHole(1), a, NewVar("b", 3)) })
	assert.Panics(t, func() { NewListRef(a, 0) })
	assert.Panics(t, func() { NewListRef(NewList(a), 1) })
	assert.Panics(t, func() { NewMapRef(NewMap([]string{"x"}, []Expr{a}), "y") })
	assert.Panics(t, func() { ConstFromUint64(0, 1) })
	assert.Panics(t, func() { NewHole(0) })

	// the panic value is the typed error
	defer func() {
		r := recover()
		require.NotNil(t, r)
		_, ok := r.(*ShapeError)
		require.True(t, ok)
	}()
	NewExtract(0, 9, a)
}

func TestWidths(t *testing.T) {
	a := NewVar("a", 4)
	b := NewVar("b", 2)

	assert.Equal(t, 6, NewConcat(a, b).Width())
	assert.Equal(t, 3, NewExtract(1, 3, a).Width())
	assert.Equal(t, 1, Bit(0, a).Width())
	assert.Equal(t, 8, NewZeroExt(a, 8).Width())
	assert.Equal(t, 8, NewDupExt(a, 8).Width())
	assert.Equal(t, 0, NewList(a, b).Width())
	assert.Equal(t, 2, NewListRef(NewList(a, b), 1).Width())
	assert.Equal(t, 4, NewMapRef(NewMap([]string{"x"}, []Expr{a}), "x").Width())
	assert.Equal(t, 4, NewChoose(NewHole(1), a, NewVar("c", 4)).Width())
}

func TestHoleIdentity(t *testing.T) {
	h1 := NewHole(1)
	h2 := NewHole(1)
	assert.NotEqual(t, h1.ID, h2.ID)

	// equal width, distinct identity: not Equal
	assert.False(t, Equal(h1, h2))
	assert.True(t, Equal(h1, h1))
}

func TestSymbolics(t *testing.T) {
	h1 := NewHole(1)
	h2 := NewHole(1)
	a := NewVar("a", 1)

	// h1 appears twice but is reported once, in first-visit order
	e := NewConcat(NewChoose(h1, a, h2), h1)
	holes := Symbolics(e)
	require.Len(t, holes, 2)
	assert.Equal(t, h1.ID, holes[0].ID)
	assert.Equal(t, h2.ID, holes[1].ID)

	assert.Empty(t, Symbolics(a))
}

func TestSubstitute(t *testing.T) {
	h := NewHole(2)
	sel := NewHole(1)
	a := NewVar("a", 2)
	b := NewVar("b", 2)
	e := NewConcat(NewChoose(sel, a, b), h)

	// selector clear picks the first operand
	got, err := Substitute(e, Assignment{
		h.ID:   ConstFromUint64(2, 0b01),
		sel.ID: ConstFromUint64(1, 0),
	})
	require.NoError(t, err)
	assert.True(t, Equal(got, NewConcat(a, ConstFromUint64(2, 0b01))))
	assert.Empty(t, Symbolics(got))

	// selector set picks the second operand
	got, err = Substitute(e, Assignment{
		h.ID:   ConstFromUint64(2, 0b01),
		sel.ID: ConstFromUint64(1, 1),
	})
	require.NoError(t, err)
	assert.True(t, Equal(got, NewConcat(b, ConstFromUint64(2, 0b01))))

	// missing assignment
	_, err = Substitute(e, Assignment{h.ID: ConstFromUint64(2, 0)})
	require.Error(t, err)
	var uh *UnresolvedHoleError
	require.ErrorAs(t, err, &uh)
	assert.Equal(t, sel.ID, uh.ID)

	// width mismatch
	_, err = Substitute(h, Assignment{h.ID: ConstFromUint64(1, 0)})
	require.Error(t, err)
}

func TestEqual(t *testing.T) {
	a := NewVar("a", 4)
	assert.True(t, Equal(NewExtract(1, 2, a), NewExtract(1, 2, NewVar("a", 4))))
	assert.False(t, Equal(NewExtract(1, 2, a), NewExtract(0, 1, a)))
	assert.True(t, Equal(ConstFromUint64(4, 9), ConstFromUint64(4, 9)))
	assert.False(t, Equal(ConstFromUint64(4, 9), ConstFromUint64(5, 9)))
	assert.False(t, Equal(a, ConstFromUint64(4, 9)))

	m1 := NewMap([]string{"x", "y"}, []Expr{a, a})
	m2 := NewMap([]string{"x", "y"}, []Expr{a, a})
	m3 := NewMap([]string{"x", "z"}, []Expr{a, a})
	assert.True(t, Equal(m1, m2))
	assert.False(t, Equal(m1, m3))
}

func TestString(t *testing.T) {
	a := NewVar("a", 2)
	assert.Equal(t, "(var a 2)", String(a))
	assert.Equal(t, "0b10", String(ConstFromUint64(2, 2)))
	assert.Equal(t, "(extract 1 0 (var a 2))", String(NewExtract(0, 1, a)))
}
