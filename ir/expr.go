// Package ir defines the expression tree representation shared by all sketch
// generators: constants, variables, bit extraction and concatenation,
// extensions, containers, hole-selected choices, unresolved holes and
// primitive instantiations. Expressions are immutable values; sub-expressions
// may be shared by reference but are never mutated in place.
package ir

import (
	"fmt"
	"sync/atomic"

	"github.com/bits-and-blooms/bitset"
)

// Expr is a node of the expression tree. Width reports the bit width of the
// value the node denotes; container nodes (List, Map) have width 0.
type Expr interface {
	Width() int
	expr()
}

func (*Const) expr()   {}
func (*Var) expr()     {}
func (*Hole) expr()    {}
func (*Extract) expr() {}
func (*Concat) expr()  {}
func (*ZeroExt) expr() {}
func (*DupExt) expr()  {}
func (*List) expr()    {}
func (*ListRef) expr() {}
func (*Map) expr()     {}
func (*MapRef) expr()  {}
func (*Choose) expr()  {}
func (*Prim) expr()    {}

// ShapeError reports a malformed expression: a width or bound invariant
// violated at construction time. It indicates a caller bug, so constructors
// panic with it rather than returning it.
type ShapeError struct {
	Op  string
	Msg string
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("ir: %s: %s", e.Op, e.Msg)
}

func shapef(op, format string, args ...interface{}) {
	panic(&ShapeError{Op: op, Msg: fmt.Sprintf(format, args...)})
}

// Const is a bit-vector constant of a fixed width. Bits beyond the width are
// always clear.
type Const struct {
	W    int
	bits *bitset.BitSet
}

// NewConst builds a constant of the given width from a bit set. The bit set
// is cloned; bits at positions >= w must be clear.
func NewConst(w int, bits *bitset.BitSet) *Const {
	if w <= 0 {
		shapef("const", "non-positive width %d", w)
	}
	b := bits.Clone()
	for i, ok := b.NextSet(uint(w)); ok; i, ok = b.NextSet(i + 1) {
		shapef("const", "bit %d set beyond width %d", i, w)
	}
	return &Const{W: w, bits: b}
}

// ConstFromUint64 builds a constant of width w (w <= 64) holding v mod 2^w.
func ConstFromUint64(w int, v uint64) *Const {
	if w <= 0 || w > 64 {
		shapef("const", "width %d out of range for uint64", w)
	}
	if w < 64 {
		v &= (1 << uint(w)) - 1
	}
	b := bitset.New(uint(w))
	for i := 0; i < w; i++ {
		if v&(1<<uint(i)) != 0 {
			b.Set(uint(i))
		}
	}
	return &Const{W: w, bits: b}
}

// Zero returns the all-zero constant of width w.
func Zero(w int) *Const {
	return ConstFromUint64(w, 0)
}

// One is the single set bit of width 1.
func One() *Const {
	return ConstFromUint64(1, 1)
}

func (c *Const) Width() int { return c.W }

// Bit reports bit i of the constant.
func (c *Const) Bit(i int) bool {
	if i < 0 || i >= c.W {
		shapef("const.bit", "bit %d out of range [0,%d)", i, c.W)
	}
	return c.bits.Test(uint(i))
}

// Uint64 returns the value of the constant; the width must not exceed 64.
func (c *Const) Uint64() uint64 {
	if c.W > 64 {
		shapef("const.uint64", "width %d exceeds 64", c.W)
	}
	var v uint64
	for i := 0; i < c.W; i++ {
		if c.bits.Test(uint(i)) {
			v |= 1 << uint(i)
		}
	}
	return v
}

// Words returns the underlying bit words, least significant first.
func (c *Const) Words() []uint64 {
	return c.bits.Bytes()
}

// EqualConst reports value and width equality.
func (c *Const) EqualConst(o *Const) bool {
	return c.W == o.W && c.bits.Equal(o.bits)
}

// Var is a free named input of a fixed width.
type Var struct {
	Name string
	W    int
}

func NewVar(name string, w int) *Var {
	if w <= 0 {
		shapef("var", "non-positive width %d", w)
	}
	return &Var{Name: name, W: w}
}

func (v *Var) Width() int { return v.W }

var holeSeq uint64

// Hole is an unresolved decision point of a declared width. Identity (the ID)
// is what sharing copies across instantiations; two holes with distinct IDs
// are distinct decisions even when their widths match.
type Hole struct {
	ID uint64
	W  int
}

// NewHole allocates a fresh hole with a globally unique identity.
func NewHole(w int) *Hole {
	if w <= 0 {
		shapef("hole", "non-positive width %d", w)
	}
	return &Hole{ID: atomic.AddUint64(&holeSeq, 1), W: w}
}

func (h *Hole) Width() int { return h.W }

// Extract selects bits Lo..Hi (inclusive, LSB first) of Arg.
type Extract struct {
	Lo, Hi int
	Arg    Expr
}

func NewExtract(lo, hi int, arg Expr) *Extract {
	if lo < 0 || lo > hi || hi >= arg.Width() {
		shapef("extract", "bounds [%d,%d] invalid for width %d", lo, hi, arg.Width())
	}
	return &Extract{Lo: lo, Hi: hi, Arg: arg}
}

// Bit extracts the single bit at position i.
func Bit(i int, arg Expr) *Extract {
	return NewExtract(i, i, arg)
}

func (e *Extract) Width() int { return e.Hi - e.Lo + 1 }

// Concat joins operands most significant first; the result width is the sum
// of the operand widths.
type Concat struct {
	Args []Expr
}

func NewConcat(args ...Expr) *Concat {
	if len(args) == 0 {
		shapef("concat", "no operands")
	}
	for i, a := range args {
		if a.Width() <= 0 {
			shapef("concat", "operand %d is not a bit vector", i)
		}
	}
	return &Concat{Args: args}
}

// ConcatBits joins single-position operands given least significant first.
func ConcatBits(bits []Expr) Expr {
	if len(bits) == 1 {
		return bits[0]
	}
	rev := make([]Expr, len(bits))
	for i, b := range bits {
		rev[len(bits)-1-i] = b
	}
	return NewConcat(rev...)
}

func (e *Concat) Width() int {
	w := 0
	for _, a := range e.Args {
		w += a.Width()
	}
	return w
}

// ZeroExt widens Arg to W by padding the high end with zeros.
type ZeroExt struct {
	Arg Expr
	W   int
}

func NewZeroExt(arg Expr, w int) *ZeroExt {
	if w < arg.Width() {
		shapef("zero-ext", "target width %d below operand width %d", w, arg.Width())
	}
	return &ZeroExt{Arg: arg, W: w}
}

func (e *ZeroExt) Width() int { return e.W }

// DupExt widens Arg to W by repeating its bits cyclically from the low end;
// for a one-bit operand this broadcasts the bit across the result.
type DupExt struct {
	Arg Expr
	W   int
}

func NewDupExt(arg Expr, w int) *DupExt {
	if w < arg.Width() {
		shapef("dup-ext", "target width %d below operand width %d", w, arg.Width())
	}
	return &DupExt{Arg: arg, W: w}
}

func (e *DupExt) Width() int { return e.W }

// List is an ordered container of expressions. It is not itself a bit vector.
type List struct {
	Elems []Expr
}

func NewList(elems ...Expr) *List {
	return &List{Elems: elems}
}

func (e *List) Width() int { return 0 }

// ListRef selects element Index of a list literal.
type ListRef struct {
	Arg   Expr
	Index int
}

func NewListRef(arg Expr, index int) *ListRef {
	l, ok := arg.(*List)
	if !ok {
		shapef("list-ref", "operand is not a list literal")
	}
	if index < 0 || index >= len(l.Elems) {
		shapef("list-ref", "index %d out of range [0,%d)", index, len(l.Elems))
	}
	return &ListRef{Arg: arg, Index: index}
}

func (e *ListRef) Width() int {
	return e.Arg.(*List).Elems[e.Index].Width()
}

// Map is an ordered keyed container of expressions.
type Map struct {
	Keys []string
	Vals []Expr
}

func NewMap(keys []string, vals []Expr) *Map {
	if len(keys) != len(vals) {
		shapef("map", "%d keys but %d values", len(keys), len(vals))
	}
	seen := make(map[string]bool, len(keys))
	for _, k := range keys {
		if seen[k] {
			shapef("map", "duplicate key %q", k)
		}
		seen[k] = true
	}
	return &Map{Keys: keys, Vals: vals}
}

func (e *Map) Width() int { return 0 }

// MapRef selects the value stored under Key of a map literal.
type MapRef struct {
	Arg Expr
	Key string
}

func NewMapRef(arg Expr, key string) *MapRef {
	m, ok := arg.(*Map)
	if !ok {
		shapef("map-ref", "operand is not a map literal")
	}
	for _, k := range m.Keys {
		if k == key {
			return &MapRef{Arg: arg, Key: key}
		}
	}
	shapef("map-ref", "key %q not present", key)
	return nil
}

func (e *MapRef) Width() int {
	m := e.Arg.(*Map)
	for i, k := range m.Keys {
		if k == e.Key {
			return m.Vals[i].Width()
		}
	}
	return 0
}

// Choose is a binary choice between two equal-width sub-expressions, resolved
// by a one-bit hole: clear selects A, set selects B.
type Choose struct {
	Sel  *Hole
	A, B Expr
}

func NewChoose(sel *Hole, a, b Expr) *Choose {
	if sel.W != 1 {
		shapef("choose", "selector width %d, want 1", sel.W)
	}
	if a.Width() != b.Width() {
		shapef("choose", "operand widths differ: %d vs %d", a.Width(), b.Width())
	}
	return &Choose{Sel: sel, A: a, B: b}
}

func (e *Choose) Width() int { return e.A.Width() }

// Prim is one named output of a platform primitive instantiation. Ports are
// ordered; their expressions carry both wiring and programming (for example a
// LUT's INIT operand is a concatenation of truth-table holes). The behavioral
// meaning of a Prim is supplied externally at evaluation time.
type Prim struct {
	Name      string
	Params    map[string]int
	PortNames []string
	PortExprs []Expr
	Out       string
	W         int
}

func NewPrim(name string, params map[string]int, portNames []string, portExprs []Expr, out string, w int) *Prim {
	if len(portNames) != len(portExprs) {
		shapef("prim", "%d port names but %d expressions", len(portNames), len(portExprs))
	}
	if w <= 0 {
		shapef("prim", "non-positive output width %d", w)
	}
	return &Prim{
		Name:      name,
		Params:    params,
		PortNames: portNames,
		PortExprs: portExprs,
		Out:       out,
		W:         w,
	}
}

func (e *Prim) Width() int { return e.W }

// Port returns the expression wired to the named port, or nil.
func (e *Prim) Port(name string) Expr {
	for i, n := range e.PortNames {
		if n == name {
			return e.PortExprs[i]
		}
	}
	return nil
}
