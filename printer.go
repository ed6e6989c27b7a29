package shi

import (
	"strconv"
	"strings"
)

// prStrInteger formats an integer the same way pr-str does, so the
// key hash (equality.go) and the printer agree on "printable form".
func prStrInteger(n int64) string {
	return strconv.FormatInt(n, 10)
}

// prStr implements the `pr-str` primitive (spec.md §4.8): return the
// printed form of a value. Strings are escaped per the reader's
// supported escapes (spec.md §4.5) so that pr-str and the reader round
// trip (spec.md §8's reader round-trip invariant).
func (in *Interp) prStr(v Value) (string, error) {
	var b strings.Builder
	if err := in.writeValue(&b, v, map[ref]bool{}); err != nil {
		return "", err
	}
	return b.String(), nil
}

var stringEscaper = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	"\n", `\n`,
	"\r", `\r`,
	"\t", `\t`,
)

func (in *Interp) writeValue(b *strings.Builder, v Value, seen map[ref]bool) error {
	switch v.tag {
	case TagNil:
		b.WriteString("nil")
	case TagTrue:
		b.WriteString("true")
	case TagInteger:
		b.WriteString(prStrInteger(v.i))
	case TagString:
		b.WriteByte('"')
		b.WriteString(stringEscaper.Replace(in.heap.object(v.r).str))
		b.WriteByte('"')
	case TagSymbol:
		b.WriteString(in.symbolName(v))
	case TagCell:
		if seen[v.r] {
			b.WriteString("...")
			return nil
		}
		b.WriteByte('(')
		cur := v
		first := true
		for cur.tag == TagCell {
			if seen[cur.r] {
				b.WriteString("...")
				cur = Nil
				break
			}
			seen[cur.r] = true
			if !first {
				b.WriteByte(' ')
			}
			first = false
			cell := in.heap.object(cur.r)
			if err := in.writeValue(b, cell.car, seen); err != nil {
				return err
			}
			cur = cell.cdr
		}
		if cur.tag != TagNil {
			b.WriteString(" . ")
			if err := in.writeValue(b, cur, seen); err != nil {
				return err
			}
		}
		b.WriteByte(')')
	case TagObject:
		obj := in.heap.object(v.r)
		if obj.name != "" {
			b.WriteString("#<object " + obj.name + ">")
		} else {
			b.WriteString("#<object>")
		}
	case TagPrimitive:
		b.WriteString("#<primitive " + in.heap.object(v.r).prim.name + ">")
	case TagClosure:
		b.WriteString("#<closure>")
	case TagMacro:
		b.WriteString("#<macro>")
	default:
		b.WriteString("#<sentinel>")
	}
	return nil
}
