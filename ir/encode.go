package ir

import (
	"fmt"

	"github.com/bits-and-blooms/bitset"
	"github.com/blang/semver/v4"
	"github.com/fxamacker/cbor/v2"
	"golang.org/x/crypto/blake2b"

	lutsmith "github.com/lutsmith/lutsmith"
)

// The wire format is the hand-off boundary to an out-of-process solver: a
// CBOR document carrying the library version and the expression tree, holes
// serialized by identity.

type wireSketch struct {
	Version string    `cbor:"v"`
	Root    *wireExpr `cbor:"e"`
}

type wireExpr struct {
	Kind   string         `cbor:"k"`
	W      int            `cbor:"w,omitempty"`
	Lo     int            `cbor:"lo,omitempty"`
	Hi     int            `cbor:"hi,omitempty"`
	Name   string         `cbor:"n,omitempty"`
	ID     uint64         `cbor:"id,omitempty"`
	Words  []uint64       `cbor:"b,omitempty"`
	Index  int            `cbor:"i,omitempty"`
	Key    string         `cbor:"key,omitempty"`
	Keys   []string       `cbor:"ks,omitempty"`
	Args   []*wireExpr    `cbor:"a,omitempty"`
	Params map[string]int `cbor:"p,omitempty"`
	Ports  []string       `cbor:"pt,omitempty"`
	Out    string         `cbor:"o,omitempty"`
}

var encMode cbor.EncMode

func init() {
	var err error
	encMode, err = cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(err)
	}
}

// Encode serializes e with a version header.
func Encode(e Expr) ([]byte, error) {
	return encMode.Marshal(&wireSketch{
		Version: lutsmith.Version.String(),
		Root:    toWire(e),
	})
}

// Fingerprint returns a stable blake2b digest of the canonical encoding of e,
// usable as a cache key for candidate sketches.
func Fingerprint(e Expr) ([32]byte, error) {
	data, err := Encode(e)
	if err != nil {
		return [32]byte{}, err
	}
	return blake2b.Sum256(data), nil
}

// Decode rebuilds an expression from its wire form, re-validating every shape
// invariant. It rejects artifacts from a different major version.
func Decode(data []byte) (Expr, error) {
	var ws wireSketch
	if err := cbor.Unmarshal(data, &ws); err != nil {
		return nil, err
	}
	v, err := semver.Parse(ws.Version)
	if err != nil {
		return nil, fmt.Errorf("ir: bad version %q: %w", ws.Version, err)
	}
	if v.Major != lutsmith.Version.Major {
		return nil, fmt.Errorf("ir: version %s incompatible with %s", v, lutsmith.Version)
	}
	if ws.Root == nil {
		return nil, fmt.Errorf("ir: empty sketch")
	}
	return safeBuild(func() Expr { return fromWire(ws.Root) })
}

func safeBuild(fn func() Expr) (e Expr, err error) {
	defer func() {
		if r := recover(); r != nil {
			if se, ok := r.(*ShapeError); ok {
				err = se
				return
			}
			panic(r)
		}
	}()
	return fn(), nil
}

func toWire(e Expr) *wireExpr {
	switch n := e.(type) {
	case *Const:
		return &wireExpr{Kind: "const", W: n.W, Words: n.Words()}
	case *Var:
		return &wireExpr{Kind: "var", Name: n.Name, W: n.W}
	case *Hole:
		return &wireExpr{Kind: "hole", ID: n.ID, W: n.W}
	case *Extract:
		return &wireExpr{Kind: "extract", Lo: n.Lo, Hi: n.Hi, Args: toWireAll(n.Arg)}
	case *Concat:
		return &wireExpr{Kind: "concat", Args: toWireAll(n.Args...)}
	case *ZeroExt:
		return &wireExpr{Kind: "zext", W: n.W, Args: toWireAll(n.Arg)}
	case *DupExt:
		return &wireExpr{Kind: "dext", W: n.W, Args: toWireAll(n.Arg)}
	case *List:
		return &wireExpr{Kind: "list", Args: toWireAll(n.Elems...)}
	case *ListRef:
		return &wireExpr{Kind: "listref", Index: n.Index, Args: toWireAll(n.Arg)}
	case *Map:
		return &wireExpr{Kind: "map", Keys: n.Keys, Args: toWireAll(n.Vals...)}
	case *MapRef:
		return &wireExpr{Kind: "mapref", Key: n.Key, Args: toWireAll(n.Arg)}
	case *Choose:
		return &wireExpr{Kind: "choose", Args: toWireAll(n.Sel, n.A, n.B)}
	case *Prim:
		return &wireExpr{
			Kind:   "prim",
			Name:   n.Name,
			Params: n.Params,
			Ports:  n.PortNames,
			Args:   toWireAll(n.PortExprs...),
			Out:    n.Out,
			W:      n.W,
		}
	default:
		panic(fmt.Sprintf("ir: unknown node %T", e))
	}
}

func toWireAll(es ...Expr) []*wireExpr {
	out := make([]*wireExpr, len(es))
	for i, e := range es {
		out[i] = toWire(e)
	}
	return out
}

func fromWire(w *wireExpr) Expr {
	switch w.Kind {
	case "const":
		return NewConst(w.W, bitset.From(w.Words))
	case "var":
		return NewVar(w.Name, w.W)
	case "hole":
		if w.W <= 0 {
			shapef("decode", "hole %d has width %d", w.ID, w.W)
		}
		return &Hole{ID: w.ID, W: w.W}
	case "extract":
		return NewExtract(w.Lo, w.Hi, fromWireOne(w))
	case "concat":
		return NewConcat(fromWireAll(w.Args)...)
	case "zext":
		return NewZeroExt(fromWireOne(w), w.W)
	case "dext":
		return NewDupExt(fromWireOne(w), w.W)
	case "list":
		return NewList(fromWireAll(w.Args)...)
	case "listref":
		return NewListRef(fromWireOne(w), w.Index)
	case "map":
		return NewMap(w.Keys, fromWireAll(w.Args))
	case "mapref":
		return NewMapRef(fromWireOne(w), w.Key)
	case "choose":
		if len(w.Args) != 3 {
			shapef("decode", "choose has %d operands", len(w.Args))
		}
		sel, ok := fromWire(w.Args[0]).(*Hole)
		if !ok {
			shapef("decode", "choose selector is not a hole")
		}
		return NewChoose(sel, fromWire(w.Args[1]), fromWire(w.Args[2]))
	case "prim":
		return NewPrim(w.Name, w.Params, w.Ports, fromWireAll(w.Args), w.Out, w.W)
	default:
		shapef("decode", "unknown node kind %q", w.Kind)
		return nil
	}
}

func fromWireOne(w *wireExpr) Expr {
	if len(w.Args) != 1 {
		shapef("decode", "%s has %d operands, want 1", w.Kind, len(w.Args))
	}
	return fromWire(w.Args[0])
}

func fromWireAll(ws []*wireExpr) []Expr {
	out := make([]Expr, len(ws))
	for i, w := range ws {
		out[i] = fromWire(w)
	}
	return out
}
