package arch

import "github.com/lutsmith/lutsmith/ir"

// Internal is the opaque token produced by Construct. It owns the hole
// identities of one instantiation family: passing the same token into two
// Construct calls with the same interface identifier makes both
// instantiations share the identical holes (the same truth-table bits, the
// same select programming). The token is tagged with the interface that
// allocated it, so cross-kind reuse is a typed error instead of undefined
// behavior.
type Internal struct {
	iface Iface
	holes []*ir.Hole
}

func newInternal(id Iface, holes []*ir.Hole) *Internal {
	return &Internal{iface: id, holes: holes}
}

// Iface returns the interface identifier this token was allocated for.
func (in *Internal) Iface() Iface {
	return in.iface
}

// Holes returns the hole identities owned by the token, in allocation order.
func (in *Internal) Holes() []*ir.Hole {
	out := make([]*ir.Hole, len(in.holes))
	copy(out, in.holes)
	return out
}

func (in *Internal) check(id Iface) error {
	if !in.iface.Equal(id) {
		return &InternalMismatchError{Got: in.iface, Want: id}
	}
	return nil
}
