package shi

import "strconv"

// SymbolTable is the interned symbol list of spec.md §3.5: a
// globally-accessible (per-Interp) list of every Symbol ever created.
// The list is itself a GC root, forwarded first on every cycle per
// spec.md §4.3, which is why Interp keeps it as a dedicated field
// rather than just another handle.
type SymbolTable struct {
	// head is a proper list of Symbol Values, most recently interned
	// first. It is exactly the "symbol list" spec.md describes — we
	// build it out of ordinary Cells so the GC's normal Cell-walk
	// also reaches it once the head itself has been forwarded.
	head Value
}

// intern returns the existing Symbol Value with this name, or
// allocates and prepends a new one. Spec.md §4.3: "linear scan of the
// symbol list for a byte-equal name; if found, return; else allocate a
// new Symbol and prepend."
func (in *Interp) intern(name string) (Value, error) {
	for cur := in.symtab.head; cur.tag == TagCell; {
		cell := in.heap.object(cur.r)
		sym := cell.car
		if sym.tag == TagSymbol && in.heap.object(sym.r).str == name {
			return sym, nil
		}
		cur = cell.cdr
	}

	f := in.roots.PushFrame()
	defer in.roots.Release(f)

	symRef, err := in.heap.alloc(in, newSymbolObject(name))
	if err != nil {
		return Nil, err
	}
	sym := Value{tag: TagSymbol, r: symRef}
	h := in.roots.NewHandle(sym)

	headRef, err := in.heap.alloc(in, newCellObject(in.roots.Get(h), in.symtab.head))
	if err != nil {
		return Nil, err
	}
	in.symtab.head = Value{tag: TagCell, r: headRef}
	return in.roots.Get(h), nil
}

// symbolName returns the printable name backing a Symbol Value.
func (in *Interp) symbolName(sym Value) string {
	return in.heap.object(sym.r).str
}

// gensym produces a Symbol guaranteed distinct from every interned or
// previously generated symbol, per spec.md §4.7: it is intentionally
// never inserted into in.symtab.head, so repeated calls never collide
// with user code that happens to type the same generated name.
func (in *Interp) gensym(prefix string) (Value, error) {
	in.gensymCounter++
	name := prefix + "__" + strconv.FormatInt(in.gensymCounter, 10)
	ref, err := in.heap.alloc(in, newSymbolObject(name))
	if err != nil {
		return Nil, err
	}
	return Value{tag: TagSymbol, r: ref}, nil
}
