package ir

import "fmt"

// children returns the direct sub-expressions of e in a fixed order.
func children(e Expr) []Expr {
	switch n := e.(type) {
	case *Const, *Var, *Hole:
		return nil
	case *Extract:
		return []Expr{n.Arg}
	case *Concat:
		return n.Args
	case *ZeroExt:
		return []Expr{n.Arg}
	case *DupExt:
		return []Expr{n.Arg}
	case *List:
		return n.Elems
	case *ListRef:
		return []Expr{n.Arg}
	case *Map:
		return n.Vals
	case *MapRef:
		return []Expr{n.Arg}
	case *Choose:
		return []Expr{n.Sel, n.A, n.B}
	case *Prim:
		return n.PortExprs
	default:
		panic(fmt.Sprintf("ir: unknown node %T", e))
	}
}

// Walk visits e and its sub-expressions depth first, left to right. The visit
// stops early when fn returns false.
func Walk(e Expr, fn func(Expr) bool) bool {
	if !fn(e) {
		return false
	}
	for _, c := range children(e) {
		if !Walk(c, fn) {
			return false
		}
	}
	return true
}

// Symbolics returns the holes of e, deduplicated by identity, in first-visit
// order. The returned set is exactly what a solver must resolve.
func Symbolics(e Expr) []*Hole {
	var out []*Hole
	seen := make(map[uint64]bool)
	Walk(e, func(x Expr) bool {
		if h, ok := x.(*Hole); ok && !seen[h.ID] {
			seen[h.ID] = true
			out = append(out, h)
		}
		return true
	})
	return out
}

// Assignment maps hole identities to constant values.
type Assignment map[uint64]*Const

// UnresolvedHoleError reports a hole left without a value by Substitute.
type UnresolvedHoleError struct {
	ID uint64
	W  int
}

func (e *UnresolvedHoleError) Error() string {
	return fmt.Sprintf("ir: hole %d (width %d) has no assignment", e.ID, e.W)
}

// Substitute replaces every hole of e with its assigned constant and resolves
// every Choose according to its selector's value. On success the result
// contains no holes. Assigned values must match the holes' declared widths.
// Aliased sub-expressions stay aliased in the result, so a sketch's DAG shape
// survives substitution.
func Substitute(e Expr, a Assignment) (Expr, error) {
	s := &substituter{a: a, memo: make(map[Expr]Expr)}
	return s.substitute(e)
}

type substituter struct {
	a    Assignment
	memo map[Expr]Expr
}

func (s *substituter) substitute(e Expr) (Expr, error) {
	if r, ok := s.memo[e]; ok {
		return r, nil
	}
	r, err := s.node(e)
	if err != nil {
		return nil, err
	}
	s.memo[e] = r
	return r, nil
}

func (s *substituter) node(e Expr) (Expr, error) {
	a := s.a
	switch n := e.(type) {
	case *Const, *Var:
		return e, nil
	case *Hole:
		c, ok := a[n.ID]
		if !ok {
			return nil, &UnresolvedHoleError{ID: n.ID, W: n.W}
		}
		if c.W != n.W {
			return nil, fmt.Errorf("ir: hole %d has width %d but assignment has width %d", n.ID, n.W, c.W)
		}
		return c, nil
	case *Extract:
		arg, err := s.substitute(n.Arg)
		if err != nil {
			return nil, err
		}
		return &Extract{Lo: n.Lo, Hi: n.Hi, Arg: arg}, nil
	case *Concat:
		args, err := s.substituteAll(n.Args)
		if err != nil {
			return nil, err
		}
		return &Concat{Args: args}, nil
	case *ZeroExt:
		arg, err := s.substitute(n.Arg)
		if err != nil {
			return nil, err
		}
		return &ZeroExt{Arg: arg, W: n.W}, nil
	case *DupExt:
		arg, err := s.substitute(n.Arg)
		if err != nil {
			return nil, err
		}
		return &DupExt{Arg: arg, W: n.W}, nil
	case *List:
		elems, err := s.substituteAll(n.Elems)
		if err != nil {
			return nil, err
		}
		return &List{Elems: elems}, nil
	case *ListRef:
		arg, err := s.substitute(n.Arg)
		if err != nil {
			return nil, err
		}
		return &ListRef{Arg: arg, Index: n.Index}, nil
	case *Map:
		vals, err := s.substituteAll(n.Vals)
		if err != nil {
			return nil, err
		}
		return &Map{Keys: n.Keys, Vals: vals}, nil
	case *MapRef:
		arg, err := s.substitute(n.Arg)
		if err != nil {
			return nil, err
		}
		return &MapRef{Arg: arg, Key: n.Key}, nil
	case *Choose:
		c, ok := a[n.Sel.ID]
		if !ok {
			return nil, &UnresolvedHoleError{ID: n.Sel.ID, W: n.Sel.W}
		}
		if c.Bit(0) {
			return s.substitute(n.B)
		}
		return s.substitute(n.A)
	case *Prim:
		ports, err := s.substituteAll(n.PortExprs)
		if err != nil {
			return nil, err
		}
		return &Prim{
			Name:      n.Name,
			Params:    n.Params,
			PortNames: n.PortNames,
			PortExprs: ports,
			Out:       n.Out,
			W:         n.W,
		}, nil
	default:
		panic(fmt.Sprintf("ir: unknown node %T", e))
	}
}

func (s *substituter) substituteAll(es []Expr) ([]Expr, error) {
	out := make([]Expr, len(es))
	for i, e := range es {
		r, err := s.substitute(e)
		if err != nil {
			return nil, err
		}
		out[i] = r
	}
	return out, nil
}

// Equal reports structural equality. Holes compare by identity, constants by
// value and width.
func Equal(a, b Expr) bool {
	switch x := a.(type) {
	case *Const:
		y, ok := b.(*Const)
		return ok && x.EqualConst(y)
	case *Var:
		y, ok := b.(*Var)
		return ok && x.Name == y.Name && x.W == y.W
	case *Hole:
		y, ok := b.(*Hole)
		return ok && x.ID == y.ID
	case *Extract:
		y, ok := b.(*Extract)
		return ok && x.Lo == y.Lo && x.Hi == y.Hi && Equal(x.Arg, y.Arg)
	case *Concat:
		y, ok := b.(*Concat)
		return ok && equalAll(x.Args, y.Args)
	case *ZeroExt:
		y, ok := b.(*ZeroExt)
		return ok && x.W == y.W && Equal(x.Arg, y.Arg)
	case *DupExt:
		y, ok := b.(*DupExt)
		return ok && x.W == y.W && Equal(x.Arg, y.Arg)
	case *List:
		y, ok := b.(*List)
		return ok && equalAll(x.Elems, y.Elems)
	case *ListRef:
		y, ok := b.(*ListRef)
		return ok && x.Index == y.Index && Equal(x.Arg, y.Arg)
	case *Map:
		y, ok := b.(*Map)
		if !ok || len(x.Keys) != len(y.Keys) {
			return false
		}
		for i := range x.Keys {
			if x.Keys[i] != y.Keys[i] {
				return false
			}
		}
		return equalAll(x.Vals, y.Vals)
	case *MapRef:
		y, ok := b.(*MapRef)
		return ok && x.Key == y.Key && Equal(x.Arg, y.Arg)
	case *Choose:
		y, ok := b.(*Choose)
		return ok && x.Sel.ID == y.Sel.ID && Equal(x.A, y.A) && Equal(x.B, y.B)
	case *Prim:
		y, ok := b.(*Prim)
		if !ok || x.Name != y.Name || x.Out != y.Out || x.W != y.W {
			return false
		}
		if len(x.Params) != len(y.Params) {
			return false
		}
		for k, v := range x.Params {
			if y.Params[k] != v {
				return false
			}
		}
		if len(x.PortNames) != len(y.PortNames) {
			return false
		}
		for i := range x.PortNames {
			if x.PortNames[i] != y.PortNames[i] {
				return false
			}
		}
		return equalAll(x.PortExprs, y.PortExprs)
	default:
		panic(fmt.Sprintf("ir: unknown node %T", a))
	}
}

func equalAll(a, b []Expr) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}
