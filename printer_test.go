package shi

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrStr_Atoms(t *testing.T) {
	in := newTestInterp(t)

	assert.Equal(t, "nil", mustPrStr(t, in, Nil))
	assert.Equal(t, "true", mustPrStr(t, in, True))
	assert.Equal(t, "42", mustPrStr(t, in, Integer(42)))
	assert.Equal(t, "-3", mustPrStr(t, in, Integer(-3)))
}

func TestPrStr_StringEscaping(t *testing.T) {
	in := newTestInterp(t)
	s, err := in.newString("a\n\"b\"\t\\c")
	require.NoError(t, err)
	assert.Equal(t, `"a\n\"b\"\t\\c"`, mustPrStr(t, in, s))
}

func TestPrStr_List(t *testing.T) {
	in := newTestInterp(t)
	lst, err := in.list(Integer(1), Integer(2), Integer(3))
	require.NoError(t, err)
	assert.Equal(t, "(1 2 3)", mustPrStr(t, in, lst))
}

func TestPrStr_DottedPair(t *testing.T) {
	in := newTestInterp(t)
	pair, err := in.cons(Integer(1), Integer(2))
	require.NoError(t, err)
	assert.Equal(t, "(1 . 2)", mustPrStr(t, in, pair))
}

func TestPrStr_CyclicListDoesNotHang(t *testing.T) {
	in := newTestInterp(t)
	cell, err := in.cons(Integer(1), Nil)
	require.NoError(t, err)
	require.NoError(t, in.setCdr(cell, cell))

	done := make(chan string, 1)
	go func() {
		s, _ := in.prStr(cell)
		done <- s
	}()
	select {
	case s := <-done:
		assert.Contains(t, s, "...")
	case <-time.After(2 * time.Second):
		t.Fatal("pr-str did not terminate on a cyclic list")
	}
}

func mustPrStr(t *testing.T, in *Interp, v Value) string {
	t.Helper()
	s, err := in.prStr(v)
	require.NoError(t, err)
	return s
}
