package ir

import (
	"fmt"
	"strings"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// String renders e as an s-expression for debugging and error reporting.
func String(e Expr) string {
	var sb strings.Builder
	write(&sb, e)
	return sb.String()
}

func write(sb *strings.Builder, e Expr) {
	switch n := e.(type) {
	case *Const:
		sb.WriteString("0b")
		for i := n.W - 1; i >= 0; i-- {
			if n.Bit(i) {
				sb.WriteByte('1')
			} else {
				sb.WriteByte('0')
			}
		}
	case *Var:
		fmt.Fprintf(sb, "(var %s %d)", n.Name, n.W)
	case *Hole:
		fmt.Fprintf(sb, "(hole %d %d)", n.ID, n.W)
	case *Extract:
		fmt.Fprintf(sb, "(extract %d %d ", n.Hi, n.Lo)
		write(sb, n.Arg)
		sb.WriteByte(')')
	case *Concat:
		sb.WriteString("(concat")
		writeAll(sb, n.Args)
	case *ZeroExt:
		fmt.Fprintf(sb, "(zero-ext %d ", n.W)
		write(sb, n.Arg)
		sb.WriteByte(')')
	case *DupExt:
		fmt.Fprintf(sb, "(dup-ext %d ", n.W)
		write(sb, n.Arg)
		sb.WriteByte(')')
	case *List:
		sb.WriteString("(list")
		writeAll(sb, n.Elems)
	case *ListRef:
		fmt.Fprintf(sb, "(list-ref %d ", n.Index)
		write(sb, n.Arg)
		sb.WriteByte(')')
	case *Map:
		sb.WriteString("(map")
		for i, k := range n.Keys {
			fmt.Fprintf(sb, " (%s ", k)
			write(sb, n.Vals[i])
			sb.WriteByte(')')
		}
		sb.WriteByte(')')
	case *MapRef:
		fmt.Fprintf(sb, "(map-ref %s ", n.Key)
		write(sb, n.Arg)
		sb.WriteByte(')')
	case *Choose:
		fmt.Fprintf(sb, "(choose (hole %d 1) ", n.Sel.ID)
		write(sb, n.A)
		sb.WriteByte(' ')
		write(sb, n.B)
		sb.WriteByte(')')
	case *Prim:
		fmt.Fprintf(sb, "(%s", n.Name)
		keys := maps.Keys(n.Params)
		slices.Sort(keys)
		for _, k := range keys {
			fmt.Fprintf(sb, " %s=%d", k, n.Params[k])
		}
		for i, pn := range n.PortNames {
			fmt.Fprintf(sb, " (%s ", pn)
			write(sb, n.PortExprs[i])
			sb.WriteByte(')')
		}
		fmt.Fprintf(sb, " .%s)", n.Out)
	default:
		fmt.Fprintf(sb, "<%T>", e)
	}
}

func writeAll(sb *strings.Builder, es []Expr) {
	for _, a := range es {
		sb.WriteByte(' ')
		write(sb, a)
	}
	sb.WriteByte(')')
}
