package shi

// Environment is an Object used as a lexical scope frame (spec.md
// §4.6, GLOSSARY). All the helpers below just call through to the
// Object primitives in object.go with environment-flavored names and
// semantics layered on top.

// envGet performs a prototype-chain lookup (spec.md §4.6) and returns
// the bound value together with whether sym was found at all.
func (in *Interp) envGet(env Value, sym Value) (Value, bool, error) {
	_, val, ok, err := in.objFindChain(env, sym)
	return val, ok, err
}

// envSet writes directly on env, the innermost frame (spec.md §4.6).
func (in *Interp) envSet(env Value, sym Value, val Value) error {
	return in.objSet(env, sym, val)
}

// def creates a binding in the current (innermost) Environment.
func (in *Interp) def(env Value, sym Value, val Value) error {
	return in.envSet(env, sym, val)
}

// defGlobal walks to the topmost Environment (the one whose proto is
// Nil) and binds there (spec.md §4.6).
func (in *Interp) defGlobal(env Value, sym Value, val Value) error {
	top := env
	for {
		proto := in.heap.object(top.r).proto
		if proto.tag != TagObject {
			break
		}
		top = proto
	}
	return in.envSet(top, sym, val)
}

// setExisting mutates the existing binding of sym in the nearest
// enclosing Environment that defines it; it errors if sym is unbound
// anywhere in the chain (spec.md §4.6: "`set` on a bare Symbol mutates
// the existing binding... (error if unbound)").
func (in *Interp) setExisting(env Value, sym Value, val Value) error {
	owner, _, ok, err := in.objFindChain(env, sym)
	if err != nil {
		return err
	}
	if !ok {
		return &UnboundError{Name: in.symbolName(sym)}
	}
	return in.objSet(owner, sym, val)
}

// pushEnv constructs a new Environment with proto = parent and
// populates it from the formal/actual pairing described in spec.md
// §4.6:
//   - a lone Symbol in params binds the whole values list (variadic);
//   - otherwise params and values are walked pairwise; a non-Nil
//     Symbol dotted tail in params binds the remaining values;
//   - running out of values before required formals are consumed is
//     an error.
func (in *Interp) pushEnv(parent Value, params Value, values Value) (Value, error) {
	f := in.roots.PushFrame()
	defer in.roots.Release(f)
	parentH := in.roots.NewHandle(parent)
	paramsH := in.roots.NewHandle(params)
	valuesH := in.roots.NewHandle(values)

	r, err := in.heap.alloc(in, newObjectObject(in.roots.Get(parentH)))
	if err != nil {
		return Nil, err
	}
	envH := in.roots.NewHandle(Value{tag: TagObject, r: r})

	p := in.roots.Get(paramsH)
	if p.tag == TagSymbol {
		if err := in.objSet(in.roots.Get(envH), p, in.roots.Get(valuesH)); err != nil {
			return Nil, err
		}
		return in.roots.Get(envH), nil
	}

	cpH, cvH := in.roots.NewHandle(p), in.roots.NewHandle(in.roots.Get(valuesH))
	for in.roots.Get(cpH).tag == TagCell {
		if in.roots.Get(cvH).tag != TagCell {
			return Nil, &ArityError{Who: "fn", Expected: "at least " + prStrInteger(int64(in.length(in.roots.Get(paramsH)))), Got: in.length(in.roots.Get(valuesH))}
		}
		pCell := in.heap.object(in.roots.Get(cpH).r)
		vCell := in.heap.object(in.roots.Get(cvH).r)
		if err := in.objSet(in.roots.Get(envH), pCell.car, vCell.car); err != nil {
			return Nil, err
		}
		in.roots.Set(cpH, in.heap.object(in.roots.Get(cpH).r).cdr)
		in.roots.Set(cvH, in.heap.object(in.roots.Get(cvH).r).cdr)
	}
	cp, cv := in.roots.Get(cpH), in.roots.Get(cvH)
	if cp.tag == TagSymbol {
		// dotted rest-arg: bind the remainder of the actuals
		if err := in.objSet(in.roots.Get(envH), cp, cv); err != nil {
			return Nil, err
		}
	} else if cp.tag != TagNil {
		return Nil, &TypeError{Who: "fn", Expected: "symbol or nil tail in parameter list", Got: cp.tag}
	} else if cv.tag != TagNil {
		return Nil, &ArityError{Who: "fn", Expected: "exactly " + prStrInteger(int64(in.length(in.roots.Get(paramsH)))), Got: in.length(in.roots.Get(valuesH))}
	}

	return in.roots.Get(envH), nil
}
