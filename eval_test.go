package shi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func evalString(t *testing.T, in *Interp, src string) Value {
	t.Helper()
	forms, err := in.ReadAll([]byte(src))
	require.NoError(t, err)
	var result Value
	for _, f := range forms {
		result, err = in.Eval(in.globalEnv, f)
		require.NoError(t, err)
	}
	return result
}

func TestEval_Arithmetic(t *testing.T) {
	in := newTestInterp(t)
	assert.Equal(t, int64(3), evalString(t, in, "(+ 1 2)").Int())
	assert.Equal(t, int64(0), evalString(t, in, "(+)").Int())
	assert.Equal(t, int64(-5), evalString(t, in, "(- 5)").Int())
	assert.Equal(t, int64(1), evalString(t, in, "(- 5 4)").Int())
}

func TestEval_If(t *testing.T) {
	in := newTestInterp(t)
	assert.Equal(t, int64(1), evalString(t, in, "(if true 1 2)").Int())
	assert.Equal(t, int64(2), evalString(t, in, "(if nil 1 2)").Int())
	assert.True(t, evalString(t, in, "(if nil 1)").IsNil())
}

func TestEval_NilAndTrueResolveAsGlobalSymbols(t *testing.T) {
	in := newTestInterp(t)
	assert.True(t, evalString(t, in, "nil").IsNil())
	assert.True(t, evalString(t, in, "true").Truthy())
	// spec.md's own worked example (minus `list`, which this plain
	// shi-package test has no prelude loaded to supply): a bare `nil`
	// literal argument to a primitive.
	result := evalString(t, in, "(def o (obj nil (cons (cons 'x 1) nil)))")
	assert.Equal(t, TagObject, result.Type())
}

func TestEval_DefAndLookup(t *testing.T) {
	in := newTestInterp(t)
	evalString(t, in, "(def x 10)")
	assert.Equal(t, int64(10), evalString(t, in, "x").Int())
}

func TestEval_FnDefinitionIsBound(t *testing.T) {
	in := newTestInterp(t)
	evalString(t, in, "(def sq (fn (x) (* x x)))")
	_, _, err := in.envGet(in.globalEnv, mustIntern(t, in, "sq"))
	require.NoError(t, err)
}

func TestEval_ClosureOverEnv(t *testing.T) {
	in := newTestInterp(t)
	evalString(t, in, "(def make-adder (fn (n) (fn (x) (+ x n))))")
	evalString(t, in, "(def add5 (make-adder 5))")
	assert.Equal(t, int64(8), evalString(t, in, "(add5 3)").Int())
}

func TestEval_PartialApplication(t *testing.T) {
	in := newTestInterp(t)
	evalString(t, in, "(def add3 (fn (a b c) (+ a (+ b c))))")
	result := evalString(t, in, "((add3 1) 2 3)")
	assert.Equal(t, int64(6), result.Int())

	result = evalString(t, in, "(((add3 1) 2) 3)")
	assert.Equal(t, int64(6), result.Int())
}

func TestEval_VariadicDottedParams(t *testing.T) {
	in := newTestInterp(t)
	evalString(t, in, "(def f (fn (a . rest) rest))")
	result := evalString(t, in, "(f 1 2 3)")
	vals, ok := in.listToSlice(result)
	require.True(t, ok)
	require.Len(t, vals, 2)
	assert.Equal(t, int64(2), vals[0].Int())
	assert.Equal(t, int64(3), vals[1].Int())
}

func TestEval_Macro(t *testing.T) {
	in := newTestInterp(t)
	// No prelude is loaded here, so the expansion is built with cons
	// rather than the prelude's `list`.
	evalString(t, in, "(def unless (macro (c body) (cons 'if (cons c (cons nil (cons body nil))))))")
	assert.Equal(t, int64(5), evalString(t, in, "(unless nil 5)").Int())
	assert.True(t, evalString(t, in, "(unless true 5)").IsNil())
}

func TestEval_DoSequencesAndReturnsLast(t *testing.T) {
	in := newTestInterp(t)
	result := evalString(t, in, "(do 1 2 3)")
	assert.Equal(t, int64(3), result.Int())
}

func TestEval_WhileLoop(t *testing.T) {
	in := newTestInterp(t)
	evalString(t, in, "(def i 0)")
	evalString(t, in, "(def acc 0)")
	evalString(t, in, "(while (< i 5) (do (set acc (+ acc i)) (set i (+ i 1))))")
	assert.Equal(t, int64(10), evalString(t, in, "acc").Int())
}

func TestEval_UnboundSymbolErrors(t *testing.T) {
	in := newTestInterp(t)
	forms, err := in.ReadAll([]byte("never-defined"))
	require.NoError(t, err)
	_, err = in.Eval(in.globalEnv, forms[0])
	require.Error(t, err)
	var uerr *UnboundError
	assert.ErrorAs(t, err, &uerr)
}

func TestEval_TooManyArgsWithoutDottedTailErrors(t *testing.T) {
	in := newTestInterp(t)
	evalString(t, in, "(def f (fn (a b) (+ a b)))")
	forms, err := in.ReadAll([]byte("(f 1 2 3)"))
	require.NoError(t, err)
	_, err = in.Eval(in.globalEnv, forms[0])
	require.Error(t, err)
}

func mustIntern(t *testing.T, in *Interp, name string) Value {
	t.Helper()
	sym, err := in.intern(name)
	require.NoError(t, err)
	return sym
}
