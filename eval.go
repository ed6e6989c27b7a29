package shi

// Eval implements spec.md §4.7's evaluation table. Every Value but a
// Symbol or a Cell evaluates to itself; the symbol `*env*` evaluates to
// the current Environment; any other Symbol is looked up; a Cell goes
// through applyForm.
func (in *Interp) Eval(env Value, expr Value) (Value, error) {
	switch expr.tag {
	case TagSymbol:
		if in.symbolName(expr) == "*env*" {
			return env, nil
		}
		val, ok, err := in.envGet(env, expr)
		if err != nil {
			return Nil, err
		}
		if !ok {
			return Nil, &UnboundError{Name: in.symbolName(expr)}
		}
		return val, nil
	case TagCell:
		return in.applyForm(env, expr)
	default:
		return expr, nil
	}
}

// evalSequence evaluates a sequence of expressions in order and
// returns the last value, or Nil for an empty sequence (spec.md §4.7's
// `do` semantics, reused for closure/macro bodies).
func (in *Interp) evalSequence(env Value, body []Value) (Value, error) {
	f := in.roots.PushFrame()
	defer in.roots.Release(f)
	envH := in.roots.NewHandle(env)
	bodyHs := make([]Handle, len(body))
	for i, b := range body {
		bodyHs[i] = in.roots.NewHandle(b)
	}
	result := Nil
	for _, h := range bodyHs {
		v, err := in.Eval(in.roots.Get(envH), in.roots.Get(h))
		if err != nil {
			return Nil, err
		}
		result = v
	}
	return result, nil
}

// applyForm implements spec.md §4.7's apply-form procedure on a Cell
// `(head . tail)`.
func (in *Interp) applyForm(env Value, form Value) (Value, error) {
	f := in.roots.PushFrame()
	defer in.roots.Release(f)
	envH := in.roots.NewHandle(env)
	formH := in.roots.NewHandle(form)

	head, err := in.car(in.roots.Get(formH))
	if err != nil {
		return Nil, err
	}
	headH := in.roots.NewHandle(head)

	// Step 1: macro expansion. A Symbol bound to a Macro, or a bare
	// Macro value in head position, expands before anything else.
	resolved := in.roots.Get(headH)
	if resolved.tag == TagSymbol {
		if v, ok, lerr := in.envGet(in.roots.Get(envH), resolved); lerr != nil {
			return Nil, lerr
		} else if ok {
			resolved = v
		}
	}

	if resolved.tag == TagMacro {
		return in.applyMacro(in.roots.Get(envH), resolved, in.roots.Get(formH))
	}

	// Step 2: a compound head (e.g. `((f 1) 2)`) is evaluated to get
	// the function.
	if resolved.tag == TagCell {
		v, err := in.Eval(in.roots.Get(envH), resolved)
		if err != nil {
			return Nil, err
		}
		resolved = v
	}

	tail, err := in.cdr(in.roots.Get(formH))
	if err != nil {
		return Nil, err
	}
	tailH := in.roots.NewHandle(tail)

	switch resolved.tag {
	case TagPrimitive:
		return in.applyPrimitive(in.roots.Get(envH), resolved, in.roots.Get(tailH))
	case TagClosure:
		return in.applyClosureForm(in.roots.Get(envH), resolved, in.roots.Get(tailH))
	default:
		return Nil, &TypeError{Who: "apply-form", Expected: "function in head position", Got: resolved.tag}
	}
}

func (in *Interp) applyMacro(env Value, macro Value, form Value) (Value, error) {
	f := in.roots.PushFrame()
	defer in.roots.Release(f)
	envH := in.roots.NewHandle(env)
	macroH := in.roots.NewHandle(macro)

	tail, err := in.cdr(form)
	if err != nil {
		return Nil, err
	}
	tailH := in.roots.NewHandle(tail)

	m := in.heap.object(in.roots.Get(macroH).r)
	macroEnv, err := in.pushEnv(m.env, m.params, in.roots.Get(tailH))
	if err != nil {
		return Nil, err
	}
	macroEnvH := in.roots.NewHandle(macroEnv)

	expansion, err := in.evalSequence(in.roots.Get(macroEnvH), in.heap.object(in.roots.Get(macroH).r).body)
	if err != nil {
		return Nil, err
	}
	expH := in.roots.NewHandle(expansion)
	return in.Eval(in.roots.Get(envH), in.roots.Get(expH))
}

// applyPrimitive dispatches to a Primitive: raw-args primitives (the
// special forms of spec.md §4.7) receive tail unevaluated; ordinary
// primitives receive the evaluated argument list.
func (in *Interp) applyPrimitive(env Value, primVal Value, tail Value) (Value, error) {
	def := in.heap.object(primVal.r).prim
	if def.rawArgs {
		return def.fn(in, env, tail)
	}
	evaluated, err := in.evalArgs(env, tail)
	if err != nil {
		return Nil, err
	}
	return def.fn(in, env, evaluated)
}

// evalArgs evaluates tail left-to-right into a fresh argument list,
// per spec.md §4.7 step 4.
func (in *Interp) evalArgs(env Value, tail Value) (Value, error) {
	f := in.roots.PushFrame()
	defer in.roots.Release(f)
	envH := in.roots.NewHandle(env)

	rawArgs, ok := in.listToSlice(tail)
	if !ok {
		return Nil, &TypeError{Who: "apply-form", Expected: "proper argument list", Got: tail.tag}
	}
	// Protect every unevaluated form behind a handle before evaluating
	// any of them: evaluating form i may trigger a GC that would
	// otherwise leave the raw Values for forms i+1.. pointing at
	// stale, already-forwarded refs.
	argHandles := make([]Handle, len(rawArgs))
	for i, a := range rawArgs {
		argHandles[i] = in.roots.NewHandle(a)
	}
	handles := make([]Handle, len(rawArgs))
	for i, ah := range argHandles {
		v, err := in.Eval(in.roots.Get(envH), in.roots.Get(ah))
		if err != nil {
			return Nil, err
		}
		handles[i] = in.roots.NewHandle(v)
	}
	vals := make([]Value, len(handles))
	for i, h := range handles {
		vals[i] = in.roots.Get(h)
	}
	return in.list(vals...)
}

// applyClosureForm evaluates tail to a list of actuals, then applies
// closure to them (spec.md §4.7 step 4, §3.4's partial application).
func (in *Interp) applyClosureForm(env Value, closure Value, tail Value) (Value, error) {
	f := in.roots.PushFrame()
	defer in.roots.Release(f)
	closureH := in.roots.NewHandle(closure)

	evaluated, err := in.evalArgs(env, tail)
	if err != nil {
		return Nil, err
	}
	return in.ApplyClosure(in.roots.Get(closureH), evaluated)
}

// ApplyClosure applies an already-evaluated argument list to a
// Closure, implementing partial application when fewer values than
// formals are supplied (spec.md §3.4, tested by §8's closure partial
// application property).
func (in *Interp) ApplyClosure(closure Value, args Value) (Value, error) {
	if closure.tag != TagClosure {
		return Nil, &TypeError{Who: "apply", Expected: "closure", Got: closure.tag}
	}
	f := in.roots.PushFrame()
	defer in.roots.Release(f)
	closureH := in.roots.NewHandle(closure)
	argsH := in.roots.NewHandle(args)

	c := in.heap.object(in.roots.Get(closureH).r)
	params := c.params

	if params.tag == TagSymbol {
		// Variadic: the lone Symbol always binds the whole list, so
		// there is no partial-application case to consider.
		newEnv, err := in.pushEnv(c.env, params, in.roots.Get(argsH))
		if err != nil {
			return Nil, err
		}
		return in.evalSequence(newEnv, in.heap.object(in.roots.Get(closureH).r).body)
	}

	given := in.length(in.roots.Get(argsH))
	if given < 0 {
		return Nil, &TypeError{Who: "apply", Expected: "proper argument list", Got: args.tag}
	}
	required, dotted := countRequiredFormals(in, params)

	if given < required {
		return in.partialApply(in.roots.Get(closureH), params, in.roots.Get(argsH), given)
	}
	if given > required && !dotted {
		return Nil, &ArityError{Who: "closure", Expected: "exactly " + prStrInteger(int64(required)), Got: given}
	}

	newEnv, err := in.pushEnv(c.env, params, in.roots.Get(argsH))
	if err != nil {
		return Nil, err
	}
	return in.evalSequence(newEnv, in.heap.object(in.roots.Get(closureH).r).body)
}

// countRequiredFormals walks a (possibly dotted) parameter list and
// counts the fixed-position formals before any dotted rest-arg.
func countRequiredFormals(in *Interp, params Value) (required int, dotted bool) {
	cur := params
	for cur.tag == TagCell {
		required++
		cur = in.heap.object(cur.r).cdr
	}
	return required, cur.tag == TagSymbol
}

// partialApply builds the curried Closure described in spec.md §3.4:
// it captures the already-bound prefix of formals and awaits the
// remaining ones.
func (in *Interp) partialApply(closure Value, params Value, args Value, given int) (Value, error) {
	f := in.roots.PushFrame()
	defer in.roots.Release(f)
	closureH := in.roots.NewHandle(closure)
	paramsH := in.roots.NewHandle(params)
	argsH := in.roots.NewHandle(args)

	var prefixSyms []Handle
	cur := in.roots.Get(paramsH)
	for i := 0; i < given; i++ {
		cell := in.heap.object(cur.r)
		prefixSyms = append(prefixSyms, in.roots.NewHandle(cell.car))
		cur = cell.cdr
	}
	remainingParamsH := in.roots.NewHandle(cur)

	prefixVals := make([]Value, len(prefixSyms))
	for i, h := range prefixSyms {
		prefixVals[i] = in.roots.Get(h)
	}
	prefixList, err := in.list(prefixVals...)
	if err != nil {
		return Nil, err
	}
	prefixListH := in.roots.NewHandle(prefixList)

	c := in.heap.object(in.roots.Get(closureH).r)
	boundEnv, err := in.pushEnv(c.env, in.roots.Get(prefixListH), in.roots.Get(argsH))
	if err != nil {
		return Nil, err
	}
	boundEnvH := in.roots.NewHandle(boundEnv)

	body := in.heap.object(in.roots.Get(closureH).r).body
	r, err := in.heap.alloc(in, newClosureObject(in.roots.Get(remainingParamsH), body, in.roots.Get(boundEnvH)))
	if err != nil {
		return Nil, err
	}
	return Value{tag: TagClosure, r: r}, nil
}
