package sketch

import (
	"github.com/lutsmith/lutsmith/arch"
	"github.com/lutsmith/lutsmith/ir"
)

// Carry builds a single carry-chain instantiation at the given width: the
// carry-in is a one-bit hole, logical input 0 feeds the data port and logical
// input 1 the select port. The sum-like output port is returned.
func Carry(d arch.Description, inputs []ir.Expr, n, width int, st *State) (ir.Expr, *State, error) {
	st, err := ensureState(st, "carry", n, width)
	if err != nil {
		return nil, nil, err
	}
	if n != 2 {
		return nil, nil, &ArityError{Generator: "carry", Got: n, Want: 2}
	}
	if err := checkInputs("carry", inputs, n, width); err != nil {
		return nil, nil, err
	}
	ports := arch.Ports{
		arch.PortCI: st.hole("ci", 1),
		arch.PortDI: inputs[0],
		arch.PortS:  inputs[1],
	}
	out, err := st.construct(d, arch.Carry(width), ports, "chain")
	if err != nil {
		return nil, nil, err
	}
	return out[arch.PortO], st, nil
}

// BitwiseWithCarry runs Bitwise over the logical inputs to produce the select
// operand, then feeds it together with logical input 0 into one carry
// instantiation. Suited to addition- and subtraction-class operations.
func BitwiseWithCarry(d arch.Description, inputs []ir.Expr, n, width int, st *State) (ir.Expr, *State, error) {
	st, err := ensureState(st, "bitwise-carry", n, width)
	if err != nil {
		return nil, nil, err
	}
	if n != 2 {
		return nil, nil, &ArityError{Generator: "bitwise-carry", Got: n, Want: 2}
	}
	if err := checkInputs("bitwise-carry", inputs, n, width); err != nil {
		return nil, nil, err
	}
	s, bwSt, err := Bitwise(d, inputs, n, width, st.children["bitwise"])
	if err != nil {
		return nil, nil, err
	}
	st.children["bitwise"] = bwSt
	sum, caSt, err := Carry(d, []ir.Expr{inputs[0], s}, 2, width, st.children["carry"])
	if err != nil {
		return nil, nil, err
	}
	st.children["carry"] = caSt
	return sum, st, nil
}

// Comparison runs Bitwise twice, independently, feeding the two results into
// the data and select ports of one carry instantiation, and returns the
// carry-out port: a one-bit reduction flag rather than an arithmetic output.
// The two bitwise networks deliberately do not share state, since each
// computes its own per-bit reduction function.
func Comparison(d arch.Description, inputs []ir.Expr, n, width int, st *State) (ir.Expr, *State, error) {
	st, err := ensureState(st, "comparison", n, width)
	if err != nil {
		return nil, nil, err
	}
	if n != 2 {
		return nil, nil, &ArityError{Generator: "comparison", Got: n, Want: 2}
	}
	if err := checkInputs("comparison", inputs, n, width); err != nil {
		return nil, nil, err
	}
	di, diSt, err := Bitwise(d, inputs, n, width, st.children["di"])
	if err != nil {
		return nil, nil, err
	}
	st.children["di"] = diSt
	s, sSt, err := Bitwise(d, inputs, n, width, st.children["s"])
	if err != nil {
		return nil, nil, err
	}
	st.children["s"] = sSt
	ports := arch.Ports{
		arch.PortCI: st.hole("ci", 1),
		arch.PortDI: di,
		arch.PortS:  s,
	}
	out, err := st.construct(d, arch.Carry(width), ports, "chain")
	if err != nil {
		return nil, nil, err
	}
	return out[arch.PortCO], st, nil
}
