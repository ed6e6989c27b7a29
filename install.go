package shi

// installPrimitives binds the special forms of spec.md §4.7 and the
// primitive surface of §4.8 and §6 into the global Environment. Raw-args
// primitives (the special forms) receive the call's unevaluated tail
// directly; evaluate-args primitives are registered through withArgs,
// which converts the already-evaluated argument list into a Go slice so
// the Value-list detail in PrimitiveFn's signature does not leak into
// every primitive body.
func (in *Interp) installPrimitives() error {
	raw := map[string]PrimitiveFn{
		"quote":          primQuote,
		"if":             primIf,
		"do":             primDo,
		"while":          primWhile,
		"def":            primDef,
		"def-global":     primDefGlobal,
		"set":            primSet,
		"fn":             primFn,
		"macro":          primMacro,
		"trap-error":     primTrapError,
		":":              primColonAccess,
	}
	for name, fn := range raw {
		if err := in.defPrimitive(name, true, fn); err != nil {
			return err
		}
	}

	evaluated := map[string]func(*Interp, Value, []Value) (Value, error){
		"eval":             primEval,
		"apply":            primApply,
		"error":            primError,
		"type":             primType,
		"eq?":              primEqP,
		"pr-str":           primPrStr,
		"read-sexp":        primReadSexp,
		"sym":              primSym,
		"macro-expand":     primMacroExpand,
		"gensym":           primGensym,
		"def-export":       primDefExport,
		"cons":             primCons,
		"car":              primCar,
		"cdr":              primCdr,
		"set-car!":         primSetCarBang,
		"+":                primAdd,
		"-":                primSub,
		"<":                primLt,
		"=":                primNumEq,
		"rand":             primRand,
		"str":              primStr,
		"str-len":          primStrLen,
		"obj":              primObj,
		"obj-get":          primObjGet,
		"obj-set":          primObjSet,
		"obj-del":          primObjDel,
		"obj-proto":        primObjProto,
		"obj-proto-set!":   primObjProtoSetBang,
		"obj->alist":       primObjToAlist,
		"write":            primWrite,
		"read":             primRead,
		"open":             primOpen,
		"close":            primClose,
		"isatty":           primIsatty,
		"getenv":           primGetenv,
		"seconds":          primSeconds,
		"sleep":            primSleep,
		"exit":             primExit,
		"socket":           primSocket,
		"bind-inet":        primBindInet,
		"listen":           primListen,
		"accept":           primAccept,
		"ev-start":         primEvStart,
		"ev-stop":          primEvStop,
		"term-raw":         primTermRaw,
	}
	for name, fn := range evaluated {
		if err := in.defPrimitive(name, false, withArgs(fn)); err != nil {
			return err
		}
	}
	return nil
}

// withArgs adapts a primitive body that wants a Go slice of evaluated
// arguments to PrimitiveFn's Value-list convention.
func withArgs(f func(*Interp, Value, []Value) (Value, error)) PrimitiveFn {
	return func(in *Interp, env Value, args Value) (Value, error) {
		vals, ok := in.listToSlice(args)
		if !ok {
			return Nil, &TypeError{Who: "apply-form", Expected: "proper argument list", Got: args.tag}
		}
		return f(in, env, vals)
	}
}

// defPrimitive interns name, allocates a Primitive Value wrapping fn,
// and binds it in the global environment (spec.md §4.7's note that
// special forms are just primitives with raw-args metadata).
func (in *Interp) defPrimitive(name string, rawArgs bool, fn PrimitiveFn) error {
	f := in.roots.PushFrame()
	defer in.roots.Release(f)

	sym, err := in.intern(name)
	if err != nil {
		return err
	}
	symH := in.roots.NewHandle(sym)

	def := &primitiveDef{name: name, rawArgs: rawArgs, fn: fn}
	r, err := in.heap.alloc(in, newPrimitiveObject(def))
	if err != nil {
		return err
	}
	prim := Value{tag: TagPrimitive, r: r}
	return in.defGlobal(in.globalEnv, in.roots.Get(symH), prim)
}
