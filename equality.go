package shi

// valueEq implements the `eq?` / key-equality rule of spec.md §3.1:
// identical interned symbols are identical (ref equality, since
// interning guarantees one heap slot per name); integers compare by
// value; strings compare byte-for-byte; everything else is pointer
// (ref) identity.
func (in *Interp) valueEq(a, b Value) bool {
	if a.tag != b.tag {
		return false
	}
	switch a.tag {
	case TagInteger:
		return a.i == b.i
	case TagNil, TagTrue:
		return true
	case TagString:
		return in.heap.object(a.r).str == in.heap.object(b.r).str
	default:
		if isHeapTag(a.tag) {
			return a.r == b.r
		}
		return true
	}
}

// objKeyHash computes the Jenkins one-at-a-time hash (spec.md §3.3:
// "acceptable; the exact mix is unspecified but must be stable for the
// run") over a key's printable form, and reduces it into a bucket
// index.
func (in *Interp) objKeyHash(key Value) (int, error) {
	s, err := in.keyPrintableForm(key)
	if err != nil {
		return 0, err
	}
	var h uint32
	for i := 0; i < len(s); i++ {
		h += uint32(s[i])
		h += h << 10
		h ^= h >> 6
	}
	h += h << 3
	h ^= h >> 11
	h += h << 15
	return int(h % objectBuckets), nil
}

// keyPrintableForm is the printable form hashing is keyed on; key
// equality itself goes through valueEq (see keyEqual). Symbol/String/Integer are the
// only valid key kinds (spec.md §3.3); obj_valid_key's role is
// reimplemented straightforwardly here rather than inverted, per the
// Open Question in spec.md §9.
func (in *Interp) keyPrintableForm(key Value) (string, error) {
	switch key.tag {
	case TagSymbol:
		return "s:" + in.symbolName(key), nil
	case TagString:
		s, _ := in.stringValue(key)
		return "\"" + s, nil
	case TagInteger:
		return "i:" + prStrInteger(key.i), nil
	default:
		return "", &TypeError{Who: "object key", Expected: "symbol, string, or integer", Got: key.tag}
	}
}

// isValidObjectKey reports whether key may be used as an Object
// property key (spec.md §3.3). Spec.md §9 documents the source's
// obj_valid_key as inverted for obj-del — this rewrite uses the same
// (correct) predicate everywhere, including obj-del.
func (in *Interp) isValidObjectKey(key Value) bool {
	switch key.tag {
	case TagSymbol, TagString, TagInteger:
		return true
	default:
		return false
	}
}

// keyEqual compares two valid object keys per §3.1's equality rules.
func (in *Interp) keyEqual(a, b Value) bool {
	return in.valueEq(a, b)
}
