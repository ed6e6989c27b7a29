package shi

// The primitives in this file are spec.md §4.7's "special forms
// (implemented as Primitives receiving unevaluated arguments)": each
// is registered with rawArgs true in installPrimitives, so args here
// is always the unevaluated tail of the call form.

func primQuote(in *Interp, env Value, args Value) (Value, error) {
	return in.car(args)
}

// primIf implements `(if c1 t1 c2 t2 ... else?)` per spec.md §4.7:
// test each ci in order, returning the first ti whose ci is truthy; a
// trailing odd arm is an unconditional else; otherwise Nil.
func primIf(in *Interp, env Value, args Value) (Value, error) {
	clauses, ok := in.listToSlice(args)
	if !ok {
		return Nil, &TypeError{Who: "if", Expected: "proper argument list", Got: args.tag}
	}
	f := in.roots.PushFrame()
	defer in.roots.Release(f)
	envH := in.roots.NewHandle(env)
	clauseHs := make([]Handle, len(clauses))
	for i, c := range clauses {
		clauseHs[i] = in.roots.NewHandle(c)
	}
	i := 0
	for i+1 < len(clauseHs) {
		test, err := in.Eval(in.roots.Get(envH), in.roots.Get(clauseHs[i]))
		if err != nil {
			return Nil, err
		}
		if test.Truthy() {
			return in.Eval(in.roots.Get(envH), in.roots.Get(clauseHs[i+1]))
		}
		i += 2
	}
	if i < len(clauseHs) {
		return in.Eval(in.roots.Get(envH), in.roots.Get(clauseHs[i]))
	}
	return Nil, nil
}

// primDo evaluates a sequence, returning the last value (Nil if
// empty), per spec.md §4.7.
func primDo(in *Interp, env Value, args Value) (Value, error) {
	forms, ok := in.listToSlice(args)
	if !ok {
		return Nil, &TypeError{Who: "do", Expected: "proper argument list", Got: args.tag}
	}
	return in.evalSequence(env, forms)
}

// primWhile evaluates its condition; while truthy, evaluates the body
// forms in sequence; returns Nil (spec.md §4.7).
func primWhile(in *Interp, env Value, args Value) (Value, error) {
	if args.tag != TagCell {
		return Nil, &TypeError{Who: "while", Expected: "condition and body", Got: args.tag}
	}
	cond, err := in.car(args)
	if err != nil {
		return Nil, err
	}
	body, err := in.cdr(args)
	if err != nil {
		return Nil, err
	}
	if _, ok := in.listToSlice(body); !ok {
		return Nil, &TypeError{Who: "while", Expected: "proper body list", Got: body.tag}
	}
	f := in.roots.PushFrame()
	defer in.roots.Release(f)
	envH := in.roots.NewHandle(env)
	condH := in.roots.NewHandle(cond)
	bodyH := in.roots.NewHandle(body)
	for {
		test, err := in.Eval(in.roots.Get(envH), in.roots.Get(condH))
		if err != nil {
			return Nil, err
		}
		if !test.Truthy() {
			return Nil, nil
		}
		bodyForms, _ := in.listToSlice(in.roots.Get(bodyH))
		if _, err := in.evalSequence(in.roots.Get(envH), bodyForms); err != nil {
			return Nil, err
		}
	}
}

// primDef binds a Symbol in the innermost Environment (spec.md §4.6,
// §8's "def creates a binding only in the innermost environment").
func primDef(in *Interp, env Value, args Value) (Value, error) {
	return in.defLike(env, args, "def", in.def)
}

// primDefGlobal binds a Symbol in the topmost Environment.
func primDefGlobal(in *Interp, env Value, args Value) (Value, error) {
	return in.defLike(env, args, "def-global", in.defGlobal)
}

func (in *Interp) defLike(env Value, args Value, who string, binder func(Value, Value, Value) error) (Value, error) {
	sym, err := in.car(args)
	if err != nil {
		return Nil, err
	}
	if sym.tag != TagSymbol {
		return Nil, &TypeError{Who: who, Expected: "symbol", Got: sym.tag}
	}
	rest, err := in.cdr(args)
	if err != nil {
		return Nil, err
	}
	f := in.roots.PushFrame()
	defer in.roots.Release(f)
	envH := in.roots.NewHandle(env)
	symH := in.roots.NewHandle(sym)

	valForm, ferr := in.car(rest)
	if ferr != nil {
		return Nil, ferr
	}
	val, err := in.Eval(in.roots.Get(envH), valForm)
	if err != nil {
		return Nil, err
	}
	valH := in.roots.NewHandle(val)
	if err := binder(in.roots.Get(envH), in.roots.Get(symH), in.roots.Get(valH)); err != nil {
		return Nil, err
	}
	return in.roots.Get(valH), nil
}

// primSet implements `set` (spec.md §4.6): a bare Symbol mutates its
// existing binding (error if unbound); a `(: obj key)` target writes
// through obj-set directly on obj.
func primSet(in *Interp, env Value, args Value) (Value, error) {
	target, err := in.car(args)
	if err != nil {
		return Nil, err
	}
	rest, err := in.cdr(args)
	if err != nil {
		return Nil, err
	}
	valForm, err := in.car(rest)
	if err != nil {
		return Nil, err
	}

	f := in.roots.PushFrame()
	defer in.roots.Release(f)
	envH := in.roots.NewHandle(env)
	targetH := in.roots.NewHandle(target)

	val, err := in.Eval(in.roots.Get(envH), valForm)
	if err != nil {
		return Nil, err
	}
	valH := in.roots.NewHandle(val)

	tgt := in.roots.Get(targetH)
	if tgt.tag == TagSymbol {
		if err := in.setExisting(in.roots.Get(envH), tgt, in.roots.Get(valH)); err != nil {
			return Nil, err
		}
		return in.roots.Get(valH), nil
	}

	if tgt.tag == TagCell {
		head, herr := in.car(tgt)
		if herr != nil {
			return Nil, herr
		}
		if head.tag == TagSymbol && in.symbolName(head) == ":" {
			afterHead, err := in.cdr(tgt)
			if err != nil {
				return Nil, err
			}
			objForm, err := in.car(afterHead)
			if err != nil {
				return Nil, err
			}
			afterObj, err := in.cdr(afterHead)
			if err != nil {
				return Nil, err
			}
			keyForm, err := in.car(afterObj)
			if err != nil {
				return Nil, err
			}
			keyFormH := in.roots.NewHandle(keyForm)

			obj, err := in.Eval(in.roots.Get(envH), objForm)
			if err != nil {
				return Nil, err
			}
			objH := in.roots.NewHandle(obj)

			key, err := in.resolveKeyForm(in.roots.Get(envH), in.roots.Get(keyFormH))
			if err != nil {
				return Nil, err
			}
			if err := in.objSet(in.roots.Get(objH), key, in.roots.Get(valH)); err != nil {
				return Nil, err
			}
			return in.roots.Get(valH), nil
		}
	}
	return Nil, &TypeError{Who: "set", Expected: "symbol or (: obj key) target", Got: tgt.tag}
}

// resolveKeyForm evaluates the key expression of a `(: obj key)` form.
// The reader desugars `obj:prop` into `(: obj (quote prop))`, so the
// common case is a quoted Symbol; a key written as an explicit
// `(: obj expr)` form is evaluated the same way.
func (in *Interp) resolveKeyForm(env Value, keyForm Value) (Value, error) {
	return in.Eval(env, keyForm)
}

// primColonAccess implements the `:` operator produced by the reader's
// colon-access desugaring: `(: obj key)` evaluates obj and key, then
// performs a prototype-chain lookup (spec.md §3.3, §4.8).
func primColonAccess(in *Interp, env Value, args Value) (Value, error) {
	objForm, err := in.car(args)
	if err != nil {
		return Nil, err
	}
	rest, err := in.cdr(args)
	if err != nil {
		return Nil, err
	}
	keyForm, err := in.car(rest)
	if err != nil {
		return Nil, err
	}

	f := in.roots.PushFrame()
	defer in.roots.Release(f)
	envH := in.roots.NewHandle(env)
	keyFormH := in.roots.NewHandle(keyForm)

	obj, err := in.Eval(in.roots.Get(envH), objForm)
	if err != nil {
		return Nil, err
	}
	objH := in.roots.NewHandle(obj)

	key, err := in.Eval(in.roots.Get(envH), in.roots.Get(keyFormH))
	if err != nil {
		return Nil, err
	}
	keyH := in.roots.NewHandle(key)

	if in.roots.Get(objH).tag != TagObject {
		return Nil, &TypeError{Who: ":", Expected: "object", Got: in.roots.Get(objH).tag}
	}
	_, val, ok, err := in.objFindChain(in.roots.Get(objH), in.roots.Get(keyH))
	if err != nil {
		return Nil, err
	}
	if !ok {
		return Nil, &UnboundError{Name: in.prStrOrDash(in.roots.Get(keyH))}
	}
	return val, nil
}

func (in *Interp) prStrOrDash(v Value) string {
	s, err := in.prStr(v)
	if err != nil {
		return "?"
	}
	return s
}

// primFn builds a Closure capturing the defining Environment (spec.md
// §3.4): `(fn params body...)`.
func primFn(in *Interp, env Value, args Value) (Value, error) {
	return in.buildLambda(env, args, newClosureObject)
}

// primMacro builds a Macro the same way fn builds a Closure (spec.md
// §3.4): it differs only in apply-form's treatment of its arguments.
func primMacro(in *Interp, env Value, args Value) (Value, error) {
	return in.buildLambda(env, args, newMacroObject)
}

func (in *Interp) buildLambda(env Value, args Value, ctor func(Value, []Value, Value) heapObject) (Value, error) {
	params, err := in.car(args)
	if err != nil {
		return Nil, err
	}
	rest, err := in.cdr(args)
	if err != nil {
		return Nil, err
	}
	body, ok := in.listToSlice(rest)
	if !ok {
		return Nil, &TypeError{Who: "fn", Expected: "proper body list", Got: rest.tag}
	}

	f := in.roots.PushFrame()
	defer in.roots.Release(f)
	paramsH := in.roots.NewHandle(params)
	envH := in.roots.NewHandle(env)
	bodyHandles := make([]Handle, len(body))
	for i, b := range body {
		bodyHandles[i] = in.roots.NewHandle(b)
	}
	bodyVals := make([]Value, len(bodyHandles))
	for i, h := range bodyHandles {
		bodyVals[i] = in.roots.Get(h)
	}

	r, err := in.heap.alloc(in, ctor(in.roots.Get(paramsH), bodyVals, in.roots.Get(envH)))
	if err != nil {
		return Nil, err
	}
	return Value{tag: in.heap.object(r).kind, r: r}, nil
}

// primEval implements `(eval expr [env])`: evaluates its first
// argument (itself evaluated, since eval's own args are evaluated
// normally) in the given environment, or the caller's if omitted.
func primEval(in *Interp, env Value, args []Value) (Value, error) {
	if len(args) < 1 || len(args) > 2 {
		return Nil, &ArityError{Who: "eval", Expected: "1 or 2", Got: len(args)}
	}
	target := env
	if len(args) == 2 {
		if args[1].tag != TagObject {
			return Nil, &TypeError{Who: "eval", Expected: "environment", Got: args[1].tag}
		}
		target = args[1]
	}
	return in.Eval(target, args[0])
}

// primApply implements `(apply fn args-list)`.
func primApply(in *Interp, env Value, args []Value) (Value, error) {
	if len(args) != 2 {
		return Nil, &ArityError{Who: "apply", Expected: "exactly 2", Got: len(args)}
	}
	if args[0].tag != TagClosure {
		return Nil, &TypeError{Who: "apply", Expected: "closure", Got: args[0].tag}
	}
	return in.ApplyClosure(args[0], args[1])
}

// primTrapError implements `(trap-error thunk handler)` (spec.md
// §4.7): both arguments are evaluated (they are raw-args only in the
// sense that the call forms built from them are not pre-evaluated).
func primTrapError(in *Interp, env Value, args Value) (Value, error) {
	thunkForm, err := in.car(args)
	if err != nil {
		return Nil, err
	}
	rest, err := in.cdr(args)
	if err != nil {
		return Nil, err
	}
	handlerForm, err := in.car(rest)
	if err != nil {
		return Nil, err
	}

	f := in.roots.PushFrame()
	defer in.roots.Release(f)
	envH := in.roots.NewHandle(env)

	thunk, err := in.Eval(in.roots.Get(envH), thunkForm)
	if err != nil {
		return Nil, err
	}
	thunkH := in.roots.NewHandle(thunk)

	handler, err := in.Eval(in.roots.Get(envH), handlerForm)
	if err != nil {
		return Nil, err
	}
	handlerH := in.roots.NewHandle(handler)

	return in.trapError(in.roots.Get(envH), in.roots.Get(thunkH), in.roots.Get(handlerH))
}

// primError raises a UserError with a String message (spec.md §7).
func primError(in *Interp, env Value, args []Value) (Value, error) {
	if len(args) != 1 || args[0].tag != TagString {
		return Nil, &TypeError{Who: "error", Expected: "exactly 1 string", Got: 0}
	}
	msg, _ := in.stringValue(args[0])
	return Nil, &UserError{Message: msg}
}

// primType returns the Symbol naming a value's Tag.
func primType(in *Interp, env Value, args []Value) (Value, error) {
	if len(args) != 1 {
		return Nil, &ArityError{Who: "type", Expected: "exactly 1", Got: len(args)}
	}
	return in.intern(args[0].tag.String())
}

// primEqP implements `eq?` (spec.md §3.1).
func primEqP(in *Interp, env Value, args []Value) (Value, error) {
	if len(args) != 2 {
		return Nil, &ArityError{Who: "eq?", Expected: "exactly 2", Got: len(args)}
	}
	if in.valueEq(args[0], args[1]) {
		return True, nil
	}
	return Nil, nil
}

// primPrStr implements `pr-str`.
func primPrStr(in *Interp, env Value, args []Value) (Value, error) {
	if len(args) != 1 {
		return Nil, &ArityError{Who: "pr-str", Expected: "exactly 1", Got: len(args)}
	}
	s, err := in.prStr(args[0])
	if err != nil {
		return Nil, err
	}
	return in.newString(s)
}

// primReadSexp implements `read-sexp str` (spec.md §4.7): parse str;
// one expression returns it bare, several are wrapped in `(do ...)`,
// none yields Nil.
func primReadSexp(in *Interp, env Value, args []Value) (Value, error) {
	if len(args) != 1 || args[0].tag != TagString {
		return Nil, &TypeError{Who: "read-sexp", Expected: "exactly 1 string", Got: 0}
	}
	src, _ := in.stringValue(args[0])
	forms, err := in.ReadAll([]byte(src))
	if err != nil {
		return Nil, err
	}
	switch len(forms) {
	case 0:
		return Nil, nil
	case 1:
		return forms[0], nil
	default:
		doSym, err := in.intern("do")
		if err != nil {
			return Nil, err
		}
		return in.list(append([]Value{doSym}, forms...)...)
	}
}

// primSym implements `sym str`: intern a Symbol from a String's bytes.
func primSym(in *Interp, env Value, args []Value) (Value, error) {
	if len(args) != 1 || args[0].tag != TagString {
		return Nil, &TypeError{Who: "sym", Expected: "exactly 1 string", Got: 0}
	}
	s, _ := in.stringValue(args[0])
	return in.intern(s)
}

// primMacroExpand implements `macro-expand form`: if form's head names
// a Macro, expand it once and return the expansion (unevaluated);
// otherwise return form unchanged.
func primMacroExpand(in *Interp, env Value, args []Value) (Value, error) {
	if len(args) != 1 {
		return Nil, &ArityError{Who: "macro-expand", Expected: "exactly 1", Got: len(args)}
	}
	form := args[0]
	if form.tag != TagCell {
		return form, nil
	}
	head, err := in.car(form)
	if err != nil {
		return Nil, err
	}
	resolved := head
	if head.tag == TagSymbol {
		if v, ok, lerr := in.envGet(env, head); lerr != nil {
			return Nil, lerr
		} else if ok {
			resolved = v
		}
	}
	if resolved.tag != TagMacro {
		return form, nil
	}

	f := in.roots.PushFrame()
	defer in.roots.Release(f)
	macroH := in.roots.NewHandle(resolved)
	formH := in.roots.NewHandle(form)

	tail, err := in.cdr(in.roots.Get(formH))
	if err != nil {
		return Nil, err
	}
	tailH := in.roots.NewHandle(tail)

	m := in.heap.object(in.roots.Get(macroH).r)
	macroEnv, err := in.pushEnv(m.env, m.params, in.roots.Get(tailH))
	if err != nil {
		return Nil, err
	}
	return in.evalSequence(macroEnv, in.heap.object(in.roots.Get(macroH).r).body)
}

// primGensym implements `gensym [prefix]`.
func primGensym(in *Interp, env Value, args []Value) (Value, error) {
	prefix := "g"
	if len(args) == 1 {
		if args[0].tag != TagString {
			return Nil, &TypeError{Who: "gensym", Expected: "string prefix", Got: args[0].tag}
		}
		prefix, _ = in.stringValue(args[0])
	} else if len(args) > 1 {
		return Nil, &ArityError{Who: "gensym", Expected: "0 or 1", Got: len(args)}
	}
	return in.gensym(prefix)
}
