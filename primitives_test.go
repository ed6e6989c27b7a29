package shi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrimitives_ConsCarCdr(t *testing.T) {
	in := newTestInterp(t)
	assert.Equal(t, int64(1), evalString(t, in, "(car (cons 1 2))").Int())
	assert.Equal(t, int64(2), evalString(t, in, "(cdr (cons 1 2))").Int())
}

func TestPrimitives_SetCarBang(t *testing.T) {
	in := newTestInterp(t)
	evalString(t, in, "(def p (cons 1 2))")
	evalString(t, in, "(set-car! p 99)")
	assert.Equal(t, int64(99), evalString(t, in, "(car p)").Int())
}

func TestPrimitives_ComparisonAndEquality(t *testing.T) {
	in := newTestInterp(t)
	assert.True(t, evalString(t, in, "(< 1 2)").Truthy())
	assert.False(t, evalString(t, in, "(< 2 1)").Truthy())
	assert.True(t, evalString(t, in, "(= 3 3)").Truthy())
	assert.True(t, evalString(t, in, `(eq? "ab" "ab")`).Truthy())
	assert.True(t, evalString(t, in, "(eq? 5 5)").Truthy())
}

func TestPrimitives_StrConcatAndLen(t *testing.T) {
	in := newTestInterp(t)
	result := evalString(t, in, `(str "foo" "bar")`)
	text, err := in.stringValue(result)
	require.NoError(t, err)
	assert.Equal(t, "foobar", text)

	assert.Equal(t, int64(6), evalString(t, in, `(str-len "foobar")`).Int())
}

func TestPrimitives_ObjGetErrorsOnOwnTableMiss(t *testing.T) {
	in := newTestInterp(t)
	evalString(t, in, "(def base (obj nil nil))")
	evalString(t, in, "(def child (obj base nil))")
	evalString(t, in, "(obj-set base 'k 1)")

	forms, err := in.ReadAll([]byte("(obj-get child 'k)"))
	require.NoError(t, err)
	_, evalErr := in.Eval(in.globalEnv, forms[0])
	require.Error(t, evalErr)
	var uerr *UnboundError
	assert.ErrorAs(t, evalErr, &uerr)
}

func TestPrimitives_ColonAccessWalksPrototypeChain(t *testing.T) {
	in := newTestInterp(t)
	evalString(t, in, "(def base (obj nil nil))")
	evalString(t, in, "(obj-set base 'k 1)")
	evalString(t, in, "(def child (obj base nil))")

	assert.Equal(t, int64(1), evalString(t, in, "child:k").Int())
}

func TestPrimitives_DefExportRejectsNonSymbolTarget(t *testing.T) {
	in := newTestInterp(t)
	forms, err := in.ReadAll([]byte(`(def-export 5 "x")`))
	require.NoError(t, err)
	_, evalErr := in.Eval(in.globalEnv, forms[0])
	require.Error(t, evalErr)
	var terr *TypeError
	assert.ErrorAs(t, evalErr, &terr)
}

func TestPrimitives_DefExportReturnsTheBoundValue(t *testing.T) {
	in := newTestInterp(t)
	result := evalString(t, in, `(def-export 'k 42)`)
	assert.Equal(t, int64(42), result.Int())
}
