// Package sketch provides the sketch generators: composable functions that
// combine the expression IR, the architecture capability protocol and the
// bit-mapping strategies into expression trees with holes. Every generator
// accepts and returns an opaque shareable State; passing a State returned by
// an earlier call of the same generator reuses that call's hole identities,
// so reused hardware primitives are consistently programmed. Aliasing a State
// is the only sharing mechanism; generators never consult global state.
package sketch

import (
	"fmt"

	"github.com/lutsmith/lutsmith/arch"
	"github.com/lutsmith/lutsmith/ir"
)

// State is the internal synthesis state of one generator invocation family.
// It is opaque to callers; its contract is that the same State passed to the
// same generator with the same shape yields expressions whose corresponding
// hole identities are pairwise identical.
type State struct {
	kind      string
	n, w      int
	holes     map[string]*ir.Hole
	internals map[string]*arch.Internal
	children  map[string]*State
}

// ArityError reports a generator invoked with the wrong number of logical
// inputs.
type ArityError struct {
	Generator string
	Got, Want int
}

func (e *ArityError) Error() string {
	return fmt.Sprintf("sketch: %s takes %d logical inputs, got %d", e.Generator, e.Want, e.Got)
}

// InputWidthError reports a logical input whose width differs from the
// requested bit width.
type InputWidthError struct {
	Generator string
	Index     int
	Got, Want int
}

func (e *InputWidthError) Error() string {
	return fmt.Sprintf("sketch: %s input %d has width %d, want %d", e.Generator, e.Index, e.Got, e.Want)
}

// StateMismatchError reports a State reused with a generator or shape it was
// not allocated for.
type StateMismatchError struct {
	Got, Want string
}

func (e *StateMismatchError) Error() string {
	return fmt.Sprintf("sketch: state allocated by %s reused by %s", e.Got, e.Want)
}

func ensureState(st *State, kind string, n, w int) (*State, error) {
	if st == nil {
		return &State{
			kind:      kind,
			n:         n,
			w:         w,
			holes:     make(map[string]*ir.Hole),
			internals: make(map[string]*arch.Internal),
			children:  make(map[string]*State),
		}, nil
	}
	if st.kind != kind || st.n != n || st.w != w {
		return nil, &StateMismatchError{
			Got:  fmt.Sprintf("%s(n=%d,w=%d)", st.kind, st.n, st.w),
			Want: fmt.Sprintf("%s(n=%d,w=%d)", kind, n, w),
		}
	}
	return st, nil
}

// hole returns the named hole, allocating it on first use.
func (s *State) hole(key string, w int) *ir.Hole {
	if h, ok := s.holes[key]; ok {
		return h
	}
	h := ir.NewHole(w)
	s.holes[key] = h
	return h
}

// construct instantiates id through d, threading the named internal token so
// that repeated calls under the same key share one programming.
func (s *State) construct(d arch.Description, id arch.Iface, ports arch.Ports, key string) (arch.Ports, error) {
	out, in, err := d.Construct(id, ports, s.internals[key])
	if err != nil {
		return nil, err
	}
	s.internals[key] = in
	return out, nil
}

// Symbolics returns every hole identity owned by the state, including those
// of nested generator states and architecture internals.
func (s *State) Symbolics() []*ir.Hole {
	var out []*ir.Hole
	seen := make(map[uint64]bool)
	s.collect(&out, seen)
	return out
}

func (s *State) collect(out *[]*ir.Hole, seen map[uint64]bool) {
	for _, h := range s.holes {
		if !seen[h.ID] {
			seen[h.ID] = true
			*out = append(*out, h)
		}
	}
	for _, in := range s.internals {
		for _, h := range in.Holes() {
			if !seen[h.ID] {
				seen[h.ID] = true
				*out = append(*out, h)
			}
		}
	}
	for _, c := range s.children {
		c.collect(out, seen)
	}
}

func checkInputs(gen string, inputs []ir.Expr, n, w int) error {
	if len(inputs) != n {
		return &ArityError{Generator: gen, Got: len(inputs), Want: n}
	}
	for i, in := range inputs {
		if in.Width() != w {
			return &InputWidthError{Generator: gen, Index: i, Got: in.Width(), Want: w}
		}
	}
	return nil
}
