package shi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestGC_SurvivesHandleProtectedValue forces enough allocation to
// trigger several collection cycles and checks that a Value kept
// alive only via a Handle still reads back correctly afterward
// (spec.md §4.4's contract: anything reachable from a root survives).
func TestGC_SurvivesHandleProtectedValue(t *testing.T) {
	in, err := NewInterp(InterpOptions{HeapCapacity: 400})
	require.NoError(t, err)

	f := in.roots.PushFrame()
	defer in.roots.Release(f)

	s, err := in.newString("still here")
	require.NoError(t, err)
	h := in.roots.NewHandle(s)

	// Allocate well past the semispace capacity, forcing multiple GC
	// cycles; s is not referenced by anything except h.
	for i := 0; i < 500; i++ {
		_, err := in.newString("garbage")
		require.NoError(t, err)
	}

	text, err := in.stringValue(in.roots.Get(h))
	require.NoError(t, err)
	assert.Equal(t, "still here", text)
}

// TestGC_AlwaysGCDoesNotCorruptLiveChain exercises the
// allocation path with AlwaysGC forcing a cycle on every single
// allocation, the most adversarial schedule for a forwarding bug.
func TestGC_AlwaysGCDoesNotCorruptLiveChain(t *testing.T) {
	in, err := NewInterp(InterpOptions{HeapCapacity: 400, AlwaysGC: true})
	require.NoError(t, err)

	f := in.roots.PushFrame()
	defer in.roots.Release(f)

	list := Nil
	lh := in.roots.NewHandle(list)
	for i := int64(0); i < 20; i++ {
		cell, err := in.cons(Integer(i), in.roots.Get(lh))
		require.NoError(t, err)
		in.roots.Set(lh, cell)
	}

	vals, ok := in.listToSlice(in.roots.Get(lh))
	require.True(t, ok)
	require.Len(t, vals, 20)
	for i, v := range vals {
		assert.Equal(t, int64(19-i), v.Int())
	}
}

// TestGC_SymtabAndGlobalEnvSurviveAsRoots checks the two dedicated
// roots gc.go forwards explicitly, not through the handle stack.
func TestGC_SymtabAndGlobalEnvSurviveAsRoots(t *testing.T) {
	in, err := NewInterp(InterpOptions{HeapCapacity: 400})
	require.NoError(t, err)

	f := in.roots.PushFrame()
	defer in.roots.Release(f)

	sym, err := in.intern("keep-me")
	require.NoError(t, err)
	symH := in.roots.NewHandle(sym)
	require.NoError(t, in.defGlobal(in.globalEnv, in.roots.Get(symH), Integer(99)))

	for i := 0; i < 500; i++ {
		_, err := in.newString("pressure")
		require.NoError(t, err)
	}

	again, err := in.intern("keep-me")
	require.NoError(t, err)
	assert.True(t, in.valueEq(in.roots.Get(symH), again))

	val, ok, err := in.envGet(in.globalEnv, again)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(99), val.Int())
}
