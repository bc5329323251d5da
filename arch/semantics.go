package arch

import (
	"fmt"

	"github.com/bits-and-blooms/bitset"

	"github.com/lutsmith/lutsmith/interp"
	"github.com/lutsmith/lutsmith/ir"
)

// Semantics returns the reference behavior of the Generic platform's
// primitives, for use with interp.Eval.
func (g *Generic) Semantics() interp.Semantics {
	return interp.Semantics{
		KindLUT:   lutSem,
		KindMUX:   muxSem,
		KindCarry: carrySem,
	}
}

// lutSem reads the truth-table bit addressed by the input bits: input I0 is
// the least significant address bit.
func lutSem(params map[string]int, ports map[string]*ir.Const) (map[string]*ir.Const, error) {
	n := params["num_inputs"]
	init, ok := ports[PortInit]
	if !ok || init.W != 1<<uint(n) {
		return nil, fmt.Errorf("arch: LUT%d needs a %d-bit INIT", n, 1<<uint(n))
	}
	idx := 0
	for i := 0; i < n; i++ {
		in, ok := ports[fmt.Sprintf("I%d", i)]
		if !ok {
			return nil, fmt.Errorf("arch: LUT%d missing input I%d", n, i)
		}
		if in.Bit(0) {
			idx |= 1 << uint(i)
		}
	}
	out := uint64(0)
	if init.Bit(idx) {
		out = 1
	}
	return map[string]*ir.Const{PortO: ir.ConstFromUint64(1, out)}, nil
}

// muxSem forwards the input addressed by S xor POL.
func muxSem(params map[string]int, ports map[string]*ir.Const) (map[string]*ir.Const, error) {
	n := params["num_inputs"]
	s, ok := ports[PortS]
	if !ok {
		return nil, fmt.Errorf("arch: MUX%d missing select", n)
	}
	pol, ok := ports[PortPol]
	if !ok || pol.W != s.W {
		return nil, fmt.Errorf("arch: MUX%d needs a %d-bit POL", n, s.W)
	}
	idx := s.Uint64() ^ pol.Uint64()
	if idx >= uint64(n) {
		return nil, fmt.Errorf("arch: MUX%d select %d out of range", n, idx)
	}
	in, ok := ports[fmt.Sprintf("I%d", idx)]
	if !ok {
		return nil, fmt.Errorf("arch: MUX%d missing input I%d", n, idx)
	}
	return map[string]*ir.Const{PortO: in}, nil
}

// carrySem ripples a full adder: O = (DI + S + CI) mod 2^width, CO the final
// carry.
func carrySem(params map[string]int, ports map[string]*ir.Const) (map[string]*ir.Const, error) {
	w := params["width"]
	ci, okC := ports[PortCI]
	di, okD := ports[PortDI]
	s, okS := ports[PortS]
	if !okC || !okD || !okS || di.W != w || s.W != w {
		return nil, fmt.Errorf("arch: carry%d wired incorrectly", w)
	}
	carry := ci.Bit(0)
	b := bitset.New(uint(w))
	for i := 0; i < w; i++ {
		d, x := di.Bit(i), s.Bit(i)
		if (d != x) != carry { // d xor x xor carry
			b.Set(uint(i))
		}
		carry = (d && x) || (carry && (d || x))
	}
	co := uint64(0)
	if carry {
		co = 1
	}
	return map[string]*ir.Const{
		PortO:  ir.NewConst(w, b),
		PortCO: ir.ConstFromUint64(1, co),
	}, nil
}
