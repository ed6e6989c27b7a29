package shi

import (
	"math/rand"
)

// The primitives in this file receive already-evaluated arguments
// (rawArgs false), per spec.md §4.7 step 4 / §4.8.

// primDefExport implements `def-export`, the REPL-time wrapper's
// binder (spec.md §9's Open Question: bind under the caller-supplied
// name, not a literal quoted symbol). It must be a core primitive
// rather than a prelude macro built on `def-global`: `def-global` is a
// raw-args special form that requires its target to be a literal
// Symbol written in the call form, so it cannot bind under a Symbol
// value computed at runtime.
func primDefExport(in *Interp, env Value, args []Value) (Value, error) {
	if len(args) != 2 {
		return Nil, &ArityError{Who: "def-export", Expected: "exactly 2", Got: len(args)}
	}
	if args[0].tag != TagSymbol {
		return Nil, &TypeError{Who: "def-export", Expected: "symbol", Got: args[0].tag}
	}
	if err := in.defGlobal(in.globalEnv, args[0], args[1]); err != nil {
		return Nil, err
	}
	return args[1], nil
}

func primCons(in *Interp, env Value, args []Value) (Value, error) {
	if len(args) != 2 {
		return Nil, &ArityError{Who: "cons", Expected: "exactly 2", Got: len(args)}
	}
	return in.cons(args[0], args[1])
}

func primCar(in *Interp, env Value, args []Value) (Value, error) {
	if len(args) != 1 {
		return Nil, &ArityError{Who: "car", Expected: "exactly 1", Got: len(args)}
	}
	return in.car(args[0])
}

func primCdr(in *Interp, env Value, args []Value) (Value, error) {
	if len(args) != 1 {
		return Nil, &ArityError{Who: "cdr", Expected: "exactly 1", Got: len(args)}
	}
	return in.cdr(args[0])
}

func primSetCarBang(in *Interp, env Value, args []Value) (Value, error) {
	if len(args) != 2 {
		return Nil, &ArityError{Who: "set-car!", Expected: "exactly 2", Got: len(args)}
	}
	if err := in.setCar(args[0], args[1]); err != nil {
		return Nil, err
	}
	return args[1], nil
}

// primAdd implements `+`: integer-only, zero args is 0 (spec.md §4.8).
func primAdd(in *Interp, env Value, args []Value) (Value, error) {
	var sum int64
	for _, a := range args {
		if a.tag != TagInteger {
			return Nil, &TypeError{Who: "+", Expected: "integer", Got: a.tag}
		}
		sum += a.Int()
	}
	return Integer(sum), nil
}

// primSub implements `-`: one arg negates, two-or-more subtracts
// left-to-right (spec.md §4.8).
func primSub(in *Interp, env Value, args []Value) (Value, error) {
	if len(args) == 0 {
		return Nil, &ArityError{Who: "-", Expected: "at least 1", Got: 0}
	}
	for _, a := range args {
		if a.tag != TagInteger {
			return Nil, &TypeError{Who: "-", Expected: "integer", Got: a.tag}
		}
	}
	if len(args) == 1 {
		return Integer(-args[0].Int()), nil
	}
	acc := args[0].Int()
	for _, a := range args[1:] {
		acc -= a.Int()
	}
	return Integer(acc), nil
}

// primLt implements `<`: exactly two integers (spec.md §4.8).
func primLt(in *Interp, env Value, args []Value) (Value, error) {
	if len(args) != 2 {
		return Nil, &ArityError{Who: "<", Expected: "exactly 2", Got: len(args)}
	}
	if args[0].tag != TagInteger || args[1].tag != TagInteger {
		return Nil, &TypeError{Who: "<", Expected: "integer", Got: args[0].tag}
	}
	if args[0].Int() < args[1].Int() {
		return True, nil
	}
	return Nil, nil
}

// primNumEq implements `=`: exactly two integers (spec.md §4.8).
func primNumEq(in *Interp, env Value, args []Value) (Value, error) {
	if len(args) != 2 {
		return Nil, &ArityError{Who: "=", Expected: "exactly 2", Got: len(args)}
	}
	if args[0].tag != TagInteger || args[1].tag != TagInteger {
		return Nil, &TypeError{Who: "=", Expected: "integer", Got: args[0].tag}
	}
	if args[0].Int() == args[1].Int() {
		return True, nil
	}
	return Nil, nil
}

// primRand implements `rand`: a non-negative Integer below its single
// integer argument, or below 2^31 with no argument.
func primRand(in *Interp, env Value, args []Value) (Value, error) {
	bound := int64(1) << 31
	if len(args) == 1 {
		if args[0].tag != TagInteger || args[0].Int() <= 0 {
			return Nil, &TypeError{Who: "rand", Expected: "positive integer", Got: args[0].tag}
		}
		bound = args[0].Int()
	} else if len(args) > 1 {
		return Nil, &ArityError{Who: "rand", Expected: "0 or 1", Got: len(args)}
	}
	return Integer(rand.Int63n(bound)), nil
}

// primStr implements `str`: concatenates all-String arguments
// (spec.md §4.8).
func primStr(in *Interp, env Value, args []Value) (Value, error) {
	var out []byte
	for _, a := range args {
		if a.tag != TagString {
			return Nil, &TypeError{Who: "str", Expected: "string", Got: a.tag}
		}
		s, _ := in.stringValue(a)
		out = append(out, s...)
	}
	return in.newString(string(out))
}

// primStrLen implements `str-len`: byte length of its single String
// argument.
func primStrLen(in *Interp, env Value, args []Value) (Value, error) {
	if len(args) != 1 || args[0].tag != TagString {
		return Nil, &TypeError{Who: "str-len", Expected: "exactly 1 string", Got: 0}
	}
	s, _ := in.stringValue(args[0])
	return Integer(int64(len(s))), nil
}

// primObj implements `obj proto props` (spec.md §4.8).
func primObj(in *Interp, env Value, args []Value) (Value, error) {
	if len(args) != 2 {
		return Nil, &ArityError{Who: "obj", Expected: "exactly 2", Got: len(args)}
	}
	return in.newObject(args[0], args[1])
}

// primObjGet implements `obj-get`: own-table only, no prototype walk
// (spec.md §4.8); unbound keys report an UnboundError the way a bare
// Symbol lookup does, matching §8's "obj-get(o, k) signals 'unbound'".
func primObjGet(in *Interp, env Value, args []Value) (Value, error) {
	if len(args) != 2 {
		return Nil, &ArityError{Who: "obj-get", Expected: "exactly 2", Got: len(args)}
	}
	v, ok, err := in.objFind(args[0], args[1])
	if err != nil {
		return Nil, err
	}
	if !ok {
		return Nil, &UnboundError{Name: in.prStrOrDash(args[1])}
	}
	return v, nil
}

func primObjSet(in *Interp, env Value, args []Value) (Value, error) {
	if len(args) != 3 {
		return Nil, &ArityError{Who: "obj-set", Expected: "exactly 3", Got: len(args)}
	}
	if err := in.objSet(args[0], args[1], args[2]); err != nil {
		return Nil, err
	}
	return args[2], nil
}

func primObjDel(in *Interp, env Value, args []Value) (Value, error) {
	if len(args) != 2 {
		return Nil, &ArityError{Who: "obj-del", Expected: "exactly 2", Got: len(args)}
	}
	if err := in.objDel(args[0], args[1]); err != nil {
		return Nil, err
	}
	return Nil, nil
}

func primObjProto(in *Interp, env Value, args []Value) (Value, error) {
	if len(args) != 1 {
		return Nil, &ArityError{Who: "obj-proto", Expected: "exactly 1", Got: len(args)}
	}
	return in.objProto(args[0])
}

func primObjProtoSetBang(in *Interp, env Value, args []Value) (Value, error) {
	if len(args) != 2 {
		return Nil, &ArityError{Who: "obj-proto-set!", Expected: "exactly 2", Got: len(args)}
	}
	if err := in.objProtoSet(args[0], args[1]); err != nil {
		return Nil, err
	}
	return args[1], nil
}

func primObjToAlist(in *Interp, env Value, args []Value) (Value, error) {
	if len(args) != 1 {
		return Nil, &ArityError{Who: "obj->alist", Expected: "exactly 1", Got: len(args)}
	}
	return in.objToAlist(args[0])
}
