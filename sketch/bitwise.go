package sketch

import (
	"fmt"

	"github.com/lutsmith/lutsmith/arch"
	"github.com/lutsmith/lutsmith/ir"
	"github.com/lutsmith/lutsmith/mapping"
)

// Bitwise builds a sketch applying one solver-chosen n-ary bit function at
// every bit position: per input, a hole selects zero- versus duplicate-
// extension; the inputs are permuted to physical order by a hole-selected
// mapping strategy; one n-input LUT is instantiated per bit position, all
// positions sharing a single truth table so every position computes the same
// logical function; and the outputs are permuted back to logical order.
func Bitwise(d arch.Description, inputs []ir.Expr, n, width int, st *State) (ir.Expr, *State, error) {
	st, err := ensureState(st, "bitwise", n, width)
	if err != nil {
		return nil, nil, err
	}
	if err := checkInputs("bitwise", inputs, n, width); err != nil {
		return nil, nil, err
	}
	bits, err := bitwiseBits(d, inputs, n, width, st)
	if err != nil {
		return nil, nil, err
	}
	return ir.ConcatBits(bits), st, nil
}

// bitwiseBits is the shared core: it returns the per-position output bits,
// least significant first. Each primitive may expose several outputs; only
// output 0 is taken.
func bitwiseBits(d arch.Description, inputs []ir.Expr, n, width int, st *State) ([]ir.Expr, error) {
	exts := make([]ir.Expr, n)
	for i, in := range inputs {
		h := st.hole(fmt.Sprintf("ext%d", i), 1)
		exts[i] = ir.NewChoose(h, ir.NewZeroExt(in, width), ir.NewDupExt(in, width))
	}

	rows := make([][]ir.Expr, width)
	for p := 0; p < width; p++ {
		row := make([]ir.Expr, n)
		for j := 0; j < n; j++ {
			row[j] = ir.Bit(p, exts[j])
		}
		rows[p] = row
	}

	strat := mapping.Selected(st.hole("order", 1), mapping.Identity, mapping.Reversed)
	phys := strat.ToPhysical(rows)

	outRows := make([][]ir.Expr, width)
	for p := range phys {
		ports := make(arch.Ports, n)
		for j := 0; j < n; j++ {
			ports[fmt.Sprintf("I%d", j)] = phys[p][j]
		}
		out, err := st.construct(d, arch.LUT(n), ports, "lut")
		if err != nil {
			return nil, err
		}
		outRows[p] = []ir.Expr{out[arch.PortO]}
	}

	back := strat.ToLogical(outRows)
	bits := make([]ir.Expr, width)
	for p := range back {
		bits[p] = back[p][0]
	}
	return bits, nil
}
