package sketch

import (
	"fmt"

	"github.com/lutsmith/lutsmith/arch"
	"github.com/lutsmith/lutsmith/ir"
	"github.com/lutsmith/lutsmith/logger"
)

// FillPolicy controls the bits shifted in past the vector edge.
type FillPolicy int

const (
	// FillHole leaves the decision to the solver: one hole per boundary
	// position chooses between zero-fill and sign-fill.
	FillHole FillPolicy = iota
	FillZero
	FillSign
)

// ShiftOptions configure the shift generator.
type ShiftOptions struct {
	// LogStages uses the minimal ceil(log2(width+2)) stage count. The
	// default builds width stages, one per shift-amount bit; the original
	// stage-count override is kept as the default because the logarithmic
	// variant has not been validated against every platform.
	LogStages bool
	Fill      FillPolicy
}

// Shift builds the default barrel-shifter sketch; see ShiftWithOptions.
func Shift(d arch.Description, inputs []ir.Expr, n, width int, st *State) (ir.Expr, *State, error) {
	return ShiftWithOptions(d, inputs, n, width, st, ShiftOptions{})
}

// ShiftWithOptions builds a chain of mux-selection stages over logical input
// 0, with logical input 1 as the shift amount. At stage i every output bit
// chooses, through one two-input mux programming shared across the whole
// network, between its current value and the value 2^i positions away; a
// Choose node per bit lets the solver pick shift-left versus shift-right
// wiring, so one template realizes either direction. The final stage's select
// is an OR-style LUT reduction over the remaining high-order amount bits, so
// oversized shift amounts saturate to pure fill.
func ShiftWithOptions(d arch.Description, inputs []ir.Expr, n, width int, st *State, opts ShiftOptions) (ir.Expr, *State, error) {
	kind := fmt.Sprintf("shift[log=%v,fill=%d]", opts.LogStages, opts.Fill)
	st, err := ensureState(st, kind, n, width)
	if err != nil {
		return nil, nil, err
	}
	if n != 2 {
		return nil, nil, &ArityError{Generator: "shift", Got: n, Want: 2}
	}
	if err := checkInputs("shift", inputs, n, width); err != nil {
		return nil, nil, err
	}
	a, b := inputs[0], inputs[1]

	stages := width
	if opts.LogStages {
		stages = log2Ceil(width + 2)
	}
	dir := st.hole("dir", 1) // clear: left wiring, set: right wiring

	v := a
	for i := 0; i < stages; i++ {
		amount := width // beyond the vector edge every bit is fill
		if i < 31 && 1<<uint(i) < width {
			amount = 1 << uint(i)
		}

		var sel ir.Expr
		if i < stages-1 {
			sel = ir.Bit(i, b)
		} else {
			sel, err = saturateSelect(d, b, i, width, st)
			if err != nil {
				return nil, nil, err
			}
		}

		bits := make([]ir.Expr, width)
		for j := 0; j < width; j++ {
			var left, right ir.Expr
			if j-amount >= 0 {
				left = ir.Bit(j-amount, v)
			} else {
				left = fillBit(st, opts, v, width, i, j, "l")
			}
			if j+amount < width {
				right = ir.Bit(j+amount, v)
			} else {
				right = fillBit(st, opts, v, width, i, j, "r")
			}
			cand := ir.NewChoose(dir, left, right)
			ports := arch.Ports{
				"I0":       ir.Bit(j, v),
				"I1":       cand,
				arch.PortS: sel,
			}
			out, err := st.construct(d, arch.MUX(2), ports, "mux")
			if err != nil {
				return nil, nil, err
			}
			bits[j] = out[arch.PortO]
		}
		v = ir.ConcatBits(bits)
	}

	lg := logger.Logger()
	lg.Debug().
		Str("generator", "shift").
		Int("width", width).
		Int("stages", stages).
		Msg("built mux chain")
	return v, st, nil
}

// saturateSelect reduces the amount bits from position start upward to one
// bit through densely packed LUT rows; the solver programs the reduction as
// an OR.
func saturateSelect(d arch.Description, b ir.Expr, start, width int, st *State) (ir.Expr, error) {
	bits := make([]ir.Expr, 0, width-start)
	for i := start; i < width; i++ {
		bits = append(bits, ir.Bit(i, b))
	}
	level := 0
	for {
		key := fmt.Sprintf("sat%d", level)
		out, ps, err := DenselyPack(d, [][]ir.Expr{bits}, st.children[key], PackOptions{})
		if err != nil {
			return nil, err
		}
		st.children[key] = ps
		bits = out
		if len(bits) == 1 {
			return bits[0], nil
		}
		level++
	}
}

// fillBit produces the bit shifted in at a boundary position.
func fillBit(st *State, opts ShiftOptions, v ir.Expr, width, stage, pos int, side string) ir.Expr {
	sign := ir.Bit(width-1, v)
	switch opts.Fill {
	case FillZero:
		return ir.Zero(1)
	case FillSign:
		return sign
	default:
		h := st.hole(fmt.Sprintf("fill:%s:%d:%d", side, stage, pos), 1)
		return ir.NewChoose(h, ir.Zero(1), sign)
	}
}

func log2Ceil(v int) int {
	n := 0
	for 1<<uint(n) < v {
		n++
	}
	return n
}
