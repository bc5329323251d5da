package arch

import (
	"fmt"

	"github.com/lutsmith/lutsmith/ir"
)

// Generic is a reference platform offering LUTs up to a configurable input
// count, power-of-two multiplexers, and full-adder carry chains of any width.
// It exists to exercise the protocol and to give tests a platform with known
// behavioral semantics; real chip families live outside this module.
type Generic struct {
	maxLUT int
}

// NewGeneric returns a description whose largest LUT has maxLUT inputs.
func NewGeneric(maxLUT int) *Generic {
	if maxLUT < 2 {
		panic(fmt.Sprintf("arch: generic platform needs LUTs of at least 2 inputs, got %d", maxLUT))
	}
	return &Generic{maxLUT: maxLUT}
}

func (g *Generic) MaxLUTInputs() int {
	return g.maxLUT
}

func (g *Generic) Construct(id Iface, ports Ports, shared *Internal) (Ports, *Internal, error) {
	if shared != nil {
		if err := shared.check(id); err != nil {
			return nil, nil, err
		}
	}
	switch id.Kind {
	case KindLUT:
		return g.constructLUT(id, ports, shared)
	case KindMUX:
		return g.constructMUX(id, ports, shared)
	case KindCarry:
		return g.constructCarry(id, ports, shared)
	default:
		return nil, nil, &UnsupportedInterfaceError{Iface: id}
	}
}

func (g *Generic) constructLUT(id Iface, ports Ports, shared *Internal) (Ports, *Internal, error) {
	n, ok := id.Params["num_inputs"]
	if !ok || n < 1 || n > g.maxLUT {
		return nil, nil, &UnsupportedInterfaceError{Iface: id}
	}
	want := make(map[string]int, n)
	for i := 0; i < n; i++ {
		want[fmt.Sprintf("I%d", i)] = 1
	}
	if err := checkPorts(id, ports, want); err != nil {
		return nil, nil, err
	}
	if shared == nil {
		holes := make([]*ir.Hole, 1<<uint(n))
		for i := range holes {
			holes[i] = ir.NewHole(1)
		}
		shared = newInternal(id, holes)
	}
	names := make([]string, 0, n+1)
	exprs := make([]ir.Expr, 0, n+1)
	for i := 0; i < n; i++ {
		name := fmt.Sprintf("I%d", i)
		names = append(names, name)
		exprs = append(exprs, ports[name])
	}
	names = append(names, PortInit)
	exprs = append(exprs, concatHoles(shared.holes))
	prim := ir.NewPrim(KindLUT, id.Params, names, exprs, PortO, 1)
	return Ports{PortO: prim}, shared, nil
}

func (g *Generic) constructMUX(id Iface, ports Ports, shared *Internal) (Ports, *Internal, error) {
	n, ok := id.Params["num_inputs"]
	if !ok || n < 2 || n&(n-1) != 0 {
		return nil, nil, &UnsupportedInterfaceError{Iface: id}
	}
	selW := 0
	for 1<<uint(selW) < n {
		selW++
	}
	want := make(map[string]int, n+1)
	for i := 0; i < n; i++ {
		want[fmt.Sprintf("I%d", i)] = 1
	}
	want[PortS] = selW
	if err := checkPorts(id, ports, want); err != nil {
		return nil, nil, err
	}
	if shared == nil {
		holes := make([]*ir.Hole, selW)
		for i := range holes {
			holes[i] = ir.NewHole(1)
		}
		shared = newInternal(id, holes)
	}
	names := make([]string, 0, n+2)
	exprs := make([]ir.Expr, 0, n+2)
	for i := 0; i < n; i++ {
		name := fmt.Sprintf("I%d", i)
		names = append(names, name)
		exprs = append(exprs, ports[name])
	}
	names = append(names, PortS, PortPol)
	exprs = append(exprs, ports[PortS], concatHoles(shared.holes))
	prim := ir.NewPrim(KindMUX, id.Params, names, exprs, PortO, 1)
	return Ports{PortO: prim}, shared, nil
}

func (g *Generic) constructCarry(id Iface, ports Ports, shared *Internal) (Ports, *Internal, error) {
	w, ok := id.Params["width"]
	if !ok || w < 1 {
		return nil, nil, &UnsupportedInterfaceError{Iface: id}
	}
	want := map[string]int{PortCI: 1, PortDI: w, PortS: w}
	if err := checkPorts(id, ports, want); err != nil {
		return nil, nil, err
	}
	if shared == nil {
		// The chain has no programming of its own, but the token stays
		// shareable so callers can mark chains as one family.
		shared = newInternal(id, nil)
	}
	names := []string{PortCI, PortDI, PortS}
	exprs := []ir.Expr{ports[PortCI], ports[PortDI], ports[PortS]}
	sum := ir.NewPrim(KindCarry, id.Params, names, exprs, PortO, w)
	cout := ir.NewPrim(KindCarry, id.Params, names, exprs, PortCO, 1)
	return Ports{PortO: sum, PortCO: cout}, shared, nil
}

func concatHoles(holes []*ir.Hole) ir.Expr {
	bits := make([]ir.Expr, len(holes))
	for i, h := range holes {
		bits[i] = h
	}
	return ir.ConcatBits(bits)
}
