package sketch

import (
	"github.com/lutsmith/lutsmith/arch"
	"github.com/lutsmith/lutsmith/ir"
	"github.com/lutsmith/lutsmith/logger"
)

// Multiply builds the two's-complement partial-product matrix and reduces it
// by ripple accumulation. Row i holds a[j-i] AND b[i] at column j for j >= i
// and zeros below the diagonal. Every partial-product primitive shares one
// internal token, which pins all of them to the same two-input function; the
// row vectors are then summed left to right by BitwiseWithCarry invocations
// that likewise share one state across all additions. Only the equal-width,
// truncated product is produced.
func Multiply(d arch.Description, inputs []ir.Expr, n, width int, st *State) (ir.Expr, *State, error) {
	st, err := ensureState(st, "multiply", n, width)
	if err != nil {
		return nil, nil, err
	}
	if n != 2 {
		return nil, nil, &ArityError{Generator: "multiply", Got: n, Want: 2}
	}
	if err := checkInputs("multiply", inputs, n, width); err != nil {
		return nil, nil, err
	}
	a, b := inputs[0], inputs[1]

	rows := make([]ir.Expr, width)
	for i := 0; i < width; i++ {
		bits := make([]ir.Expr, width)
		for j := 0; j < width; j++ {
			if j < i {
				bits[j] = ir.Zero(1)
				continue
			}
			ports := arch.Ports{
				"I0": ir.Bit(j-i, a),
				"I1": ir.Bit(i, b),
			}
			out, err := st.construct(d, arch.LUT(2), ports, "and")
			if err != nil {
				return nil, nil, err
			}
			bits[j] = out[arch.PortO]
		}
		rows[i] = ir.ConcatBits(bits)
	}

	acc := rows[0]
	addSt := st.children["add"]
	for i := 1; i < width; i++ {
		acc, addSt, err = BitwiseWithCarry(d, []ir.Expr{acc, rows[i]}, 2, width, addSt)
		if err != nil {
			return nil, nil, err
		}
	}
	st.children["add"] = addSt

	lg := logger.Logger()
	lg.Debug().
		Str("generator", "multiply").
		Int("width", width).
		Int("partial_products", width*(width+1)/2).
		Msg("built partial-product matrix")
	return acc, st, nil
}
