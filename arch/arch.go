// Package arch defines the architecture capability protocol: the single
// Construct operation that resolves an abstract primitive request (an
// interface identifier) into a platform-specific instantiation expression,
// together with the opaque internal-data token that controls hole sharing
// across instantiations. It also ships Generic, a reference platform used by
// tests and as the model implementation of the protocol.
package arch

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/exp/maps"

	"github.com/lutsmith/lutsmith/ir"
)

// Interface kinds understood by the sketch generators.
const (
	KindLUT   = "LUT"
	KindMUX   = "MUX"
	KindCarry = "carry"
)

// Conventional port names.
const (
	PortO    = "O"
	PortCI   = "CI"
	PortDI   = "DI"
	PortS    = "S"
	PortCO   = "CO"
	PortInit = "INIT"
	PortPol  = "POL"
)

// Params are the parameters of an interface identifier. Equality is
// structural.
type Params map[string]int

func (p Params) Equal(q Params) bool {
	return maps.Equal(p, q)
}

// Iface identifies an abstract primitive request: a kind plus parameters.
type Iface struct {
	Kind   string
	Params Params
}

func (i Iface) Equal(o Iface) bool {
	return i.Kind == o.Kind && i.Params.Equal(o.Params)
}

func (i Iface) String() string {
	keys := maps.Keys(i.Params)
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for j, k := range keys {
		parts[j] = fmt.Sprintf("%s:%d", k, i.Params[k])
	}
	return i.Kind + "{" + strings.Join(parts, ",") + "}"
}

// LUT identifies an n-input lookup table.
func LUT(n int) Iface {
	return Iface{Kind: KindLUT, Params: Params{"num_inputs": n}}
}

// MUX identifies an n-input multiplexer.
func MUX(n int) Iface {
	return Iface{Kind: KindMUX, Params: Params{"num_inputs": n}}
}

// Carry identifies a carry chain of the given width.
func Carry(w int) Iface {
	return Iface{Kind: KindCarry, Params: Params{"width": w}}
}

// Ports maps conventional port names to the expressions wired to them. The
// same type carries instantiation inputs and instantiation outputs.
type Ports map[string]ir.Expr

// Description is the sole boundary to a platform's primitive library.
//
// Construct resolves id into an instantiation wired to the given ports. When
// shared is nil, fresh internal state (including fresh holes, such as LUT
// truth-table bits) is allocated; when shared is the token returned by an
// earlier Construct call with a structurally equal id, that call's holes are
// reused verbatim and only the wiring changes. Construct never invokes a
// solver.
type Description interface {
	Construct(id Iface, ports Ports, shared *Internal) (Ports, *Internal, error)

	// MaxLUTInputs reports the largest LUT the platform offers; dense
	// packing sizes its windows from it.
	MaxLUTInputs() int
}

// UnsupportedInterfaceError reports a request for a kind or parameterization
// the description cannot satisfy.
type UnsupportedInterfaceError struct {
	Iface Iface
}

func (e *UnsupportedInterfaceError) Error() string {
	return fmt.Sprintf("arch: unsupported interface %s", e.Iface)
}

// PortMismatchError reports a missing or unexpected port.
type PortMismatchError struct {
	Iface   Iface
	Port    string
	Missing bool
}

func (e *PortMismatchError) Error() string {
	if e.Missing {
		return fmt.Sprintf("arch: %s: missing port %s", e.Iface, e.Port)
	}
	return fmt.Sprintf("arch: %s: unexpected port %s", e.Iface, e.Port)
}

// WidthMismatchError reports a port expression whose width does not match the
// interface's declared parameters.
type WidthMismatchError struct {
	Iface     Iface
	Port      string
	Got, Want int
}

func (e *WidthMismatchError) Error() string {
	return fmt.Sprintf("arch: %s: port %s has width %d, want %d", e.Iface, e.Port, e.Got, e.Want)
}

// InternalMismatchError reports internal data allocated for one interface
// being passed to a structurally different one.
type InternalMismatchError struct {
	Got, Want Iface
}

func (e *InternalMismatchError) Error() string {
	return fmt.Sprintf("arch: internal data for %s reused with %s", e.Got, e.Want)
}

// checkPorts verifies that ports carries exactly the named ports at the
// expected widths.
func checkPorts(id Iface, ports Ports, want map[string]int) error {
	for name, w := range want {
		e, ok := ports[name]
		if !ok {
			return &PortMismatchError{Iface: id, Port: name, Missing: true}
		}
		if e.Width() != w {
			return &WidthMismatchError{Iface: id, Port: name, Got: e.Width(), Want: w}
		}
	}
	for name := range ports {
		if _, ok := want[name]; !ok {
			return &PortMismatchError{Iface: id, Port: name}
		}
	}
	return nil
}
