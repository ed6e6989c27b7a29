package shi

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTrapError_CatchesUnboundSymbol(t *testing.T) {
	in := newTestInterp(t)
	result := evalString(t, in, `(trap-error (fn () never-defined) (fn (msg) msg))`)
	assert.Equal(t, TagString, result.Type())
	text, err := in.stringValue(result)
	assert.NoError(t, err)
	assert.Contains(t, text, "unbound")
}

func TestTrapError_PassesThroughOnSuccess(t *testing.T) {
	in := newTestInterp(t)
	result := evalString(t, in, `(trap-error (fn () (+ 1 2)) (fn (msg) -1))`)
	assert.Equal(t, int64(3), result.Int())
}

func TestTrapError_CatchesUserError(t *testing.T) {
	in := newTestInterp(t)
	result := evalString(t, in, `(trap-error (fn () (error "boom")) (fn (msg) msg))`)
	text, err := in.stringValue(result)
	assert.NoError(t, err)
	assert.Equal(t, "boom", text)
}

func TestTrapError_NestedTrapRestoresDepthOnReturn(t *testing.T) {
	in := newTestInterp(t)
	evalString(t, in, `(trap-error (fn () (trap-error (fn () (error "inner")) (fn (m) m))) (fn (m) m))`)
	assert.Equal(t, 0, in.rescue.depth())
}

func TestTrapError_OverflowsAfterMaxDepth(t *testing.T) {
	in := newTestInterp(t)

	var src string
	for i := 0; i < defaultMaxRescueDepth+5; i++ {
		src += "(trap-error (fn () "
	}
	src += "(error \"deep\")"
	for i := 0; i < defaultMaxRescueDepth+5; i++ {
		src += ") (fn (m) (error m)))"
	}

	forms, err := in.ReadAll([]byte(src))
	assert.NoError(t, err)
	_, evalErr := in.Eval(in.globalEnv, forms[0])
	assert.Error(t, evalErr)
}
