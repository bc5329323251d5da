package sketch

import (
	"fmt"

	"github.com/lutsmith/lutsmith/arch"
	"github.com/lutsmith/lutsmith/ir"
	"github.com/lutsmith/lutsmith/logger"
)

// PackOptions configure dense packing.
type PackOptions struct {
	// IndependentWindows gives every window of a row its own primitive
	// programming. The default shares one programming across the row, so
	// all windows compute the same function of their bit slice.
	IndependentWindows bool
	// EvenWindows constrains the window size to an even number of bit
	// positions, required when outputs are later interleaved.
	EvenWindows bool
}

// DenselyPack builds one row of primitives that each consume a fixed-size
// window of bit positions across all rows. The window size is chosen to fill
// the architecture's largest LUT for the given row count; the last window is
// padded with zero bits. One output bit per window is returned, least
// significant first.
func DenselyPack(d arch.Description, rows [][]ir.Expr, st *State, opts PackOptions) ([]ir.Expr, *State, error) {
	n := len(rows)
	if n == 0 {
		return nil, nil, fmt.Errorf("sketch: densely-pack needs at least one row")
	}
	length := len(rows[0])
	for i, r := range rows {
		if len(r) != length {
			return nil, nil, fmt.Errorf("sketch: densely-pack row %d has %d positions, row 0 has %d", i, len(r), length)
		}
		for p, e := range r {
			if e.Width() != 1 {
				return nil, nil, &InputWidthError{Generator: "densely-pack", Index: i*length + p, Got: e.Width(), Want: 1}
			}
		}
	}
	if length == 0 {
		return nil, nil, fmt.Errorf("sketch: densely-pack needs at least one bit position")
	}
	st, err := ensureState(st, "pack", n, length)
	if err != nil {
		return nil, nil, err
	}

	window := d.MaxLUTInputs() / n
	if window < 1 {
		return nil, nil, fmt.Errorf("sketch: cannot pack %d rows into %d-input LUTs", n, d.MaxLUTInputs())
	}
	if opts.EvenWindows && window > 1 && window%2 == 1 {
		window--
	}
	if window > length {
		window = length
	}

	numWin := (length + window - 1) / window
	bits := make([]ir.Expr, numWin)
	for wi := 0; wi < numWin; wi++ {
		ports := make(arch.Ports, window*n)
		for p := 0; p < window; p++ {
			pos := wi*window + p
			for j := 0; j < n; j++ {
				var e ir.Expr = ir.Zero(1)
				if pos < length {
					e = rows[j][pos]
				}
				ports[fmt.Sprintf("I%d", p*n+j)] = e
			}
		}
		key := "win"
		if opts.IndependentWindows {
			key = fmt.Sprintf("win%d", wi)
		}
		out, err := st.construct(d, arch.LUT(window*n), ports, key)
		if err != nil {
			return nil, nil, err
		}
		bits[wi] = out[arch.PortO]
	}
	return bits, st, nil
}

// ShallowComparison reduces the inputs' bits through a tree of densely packed
// LUT rows instead of a carry chain, trading primitive count for a depth
// logarithmic in the bit width. The reduction runs as an iterative worklist
// over rows, so the depth is directly observable and the stack stays flat.
func ShallowComparison(d arch.Description, inputs []ir.Expr, n, width int, st *State) (ir.Expr, *State, error) {
	st, err := ensureState(st, "shallow-comparison", n, width)
	if err != nil {
		return nil, nil, err
	}
	if err := checkInputs("shallow-comparison", inputs, n, width); err != nil {
		return nil, nil, err
	}

	rows := make([][]ir.Expr, n)
	for i, in := range inputs {
		row := make([]ir.Expr, width)
		for p := 0; p < width; p++ {
			row[p] = ir.Bit(p, in)
		}
		rows[i] = row
	}

	bits, levels, err := reduceRows(d, rows, st, PackOptions{})
	if err != nil {
		return nil, nil, err
	}
	lg := logger.Logger()
	lg.Debug().
		Str("generator", "shallow-comparison").
		Int("width", width).
		Int("levels", levels).
		Msg("built reduction tree")
	return bits[0], st, nil
}

// reduceRows packs rows into a first reduction row, then repacks the
// resulting bits as a single row until exactly one bit remains. Each level's
// packing state is kept under its own child key so a reused State reproduces
// the whole tree's holes.
func reduceRows(d arch.Description, rows [][]ir.Expr, st *State, opts PackOptions) ([]ir.Expr, int, error) {
	level := 0
	bits, ps, err := DenselyPack(d, rows, st.children["level0"], opts)
	if err != nil {
		return nil, 0, err
	}
	st.children["level0"] = ps
	for len(bits) > 1 {
		level++
		key := fmt.Sprintf("level%d", level)
		bits, ps, err = DenselyPack(d, [][]ir.Expr{bits}, st.children[key], opts)
		if err != nil {
			return nil, 0, err
		}
		st.children[key] = ps
	}
	return bits, level + 1, nil
}
