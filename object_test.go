package shi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObject_SetAndFindOwnTableOnly(t *testing.T) {
	in := newTestInterp(t)

	parent, err := in.newObject(Nil, Nil)
	require.NoError(t, err)
	key, err := in.intern("color")
	require.NoError(t, err)
	require.NoError(t, in.objSet(parent, key, Integer(1)))

	child, err := in.newObject(parent, Nil)
	require.NoError(t, err)

	_, ok, err := in.objFind(child, key)
	require.NoError(t, err)
	assert.False(t, ok, "objFind must not walk the prototype chain")

	owner, val, ok, err := in.objFindChain(child, key)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, in.valueEq(owner, parent))
	assert.Equal(t, int64(1), val.Int())
}

func TestObject_SetOverwritesExactlyOneEntry(t *testing.T) {
	in := newTestInterp(t)

	obj, err := in.newObject(Nil, Nil)
	require.NoError(t, err)
	key, err := in.intern("k")
	require.NoError(t, err)

	require.NoError(t, in.objSet(obj, key, Integer(1)))
	require.NoError(t, in.objSet(obj, key, Integer(2)))

	val, ok, err := in.objFind(obj, key)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(2), val.Int())

	alist, err := in.objToAlist(obj)
	require.NoError(t, err)
	pairs, ok := in.listToSlice(alist)
	require.True(t, ok)
	assert.Len(t, pairs, 1)
}

func TestObject_Del(t *testing.T) {
	in := newTestInterp(t)

	obj, err := in.newObject(Nil, Nil)
	require.NoError(t, err)
	key, err := in.intern("k")
	require.NoError(t, err)
	require.NoError(t, in.objSet(obj, key, Integer(1)))

	require.NoError(t, in.objDel(obj, key))

	_, ok, err := in.objFind(obj, key)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestObject_DelAcceptsIntegerAndStringKeys(t *testing.T) {
	in := newTestInterp(t)

	obj, err := in.newObject(Nil, Nil)
	require.NoError(t, err)
	str, err := in.newString("k")
	require.NoError(t, err)

	require.NoError(t, in.objSet(obj, Integer(7), True))
	require.NoError(t, in.objSet(obj, str, True))
	assert.NoError(t, in.objDel(obj, Integer(7)))
	assert.NoError(t, in.objDel(obj, str))
}

func TestObject_ProtoGetAndSet(t *testing.T) {
	in := newTestInterp(t)

	parent, err := in.newObject(Nil, Nil)
	require.NoError(t, err)
	child, err := in.newObject(Nil, Nil)
	require.NoError(t, err)

	require.NoError(t, in.objProtoSet(child, parent))
	proto, err := in.objProto(child)
	require.NoError(t, err)
	assert.True(t, in.valueEq(proto, parent))
}

func TestObject_InvalidKeyRejected(t *testing.T) {
	in := newTestInterp(t)

	obj, err := in.newObject(Nil, Nil)
	require.NoError(t, err)
	cell, err := in.cons(Integer(1), Integer(2))
	require.NoError(t, err)

	err = in.objSet(obj, cell, Integer(1))
	require.Error(t, err)
	var terr *TypeError
	assert.ErrorAs(t, err, &terr)
}
