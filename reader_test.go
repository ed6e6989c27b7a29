package shi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestInterp(t *testing.T) *Interp {
	t.Helper()
	in, err := NewInterp(InterpOptions{HeapCapacity: 1024})
	require.NoError(t, err)
	return in
}

func TestReader_Atoms(t *testing.T) {
	in := newTestInterp(t)

	tests := []struct {
		name string
		src  string
		tag  Tag
	}{
		{"integer", "42", TagInteger},
		{"negative integer", "-7", TagInteger},
		{"string", `"hi"`, TagString},
		{"symbol", "foo", TagSymbol},
		{"nil", "nil", TagSymbol},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			forms, err := in.ReadAll([]byte(tt.src))
			require.NoError(t, err)
			require.Len(t, forms, 1)
			assert.Equal(t, tt.tag, forms[0].Type())
		})
	}
}

func TestReader_List(t *testing.T) {
	in := newTestInterp(t)
	forms, err := in.ReadAll([]byte("(+ 1 2)"))
	require.NoError(t, err)
	require.Len(t, forms, 1)
	assert.Equal(t, TagCell, forms[0].Type())

	vals, ok := in.listToSlice(forms[0])
	require.True(t, ok)
	require.Len(t, vals, 3)
	assert.Equal(t, "+", in.symbolName(vals[0]))
	assert.Equal(t, int64(1), vals[1].Int())
	assert.Equal(t, int64(2), vals[2].Int())
}

func TestReader_DottedTail(t *testing.T) {
	in := newTestInterp(t)
	forms, err := in.ReadAll([]byte("(a b . c)"))
	require.NoError(t, err)
	require.Len(t, forms, 1)

	cdr, err := in.cdr(forms[0])
	require.NoError(t, err)
	cdr, err = in.cdr(cdr)
	require.NoError(t, err)
	assert.Equal(t, TagSymbol, cdr.Type())
	assert.Equal(t, "c", in.symbolName(cdr))
}

func TestReader_QuotePrefixesDesugar(t *testing.T) {
	in := newTestInterp(t)

	tests := []struct {
		src  string
		head string
	}{
		{"'x", "quote"},
		{"`x", "quasiquote"},
		{",x", "unquote"},
		{",@x", "unquote-splicing"},
		{"@x", "unbox"},
	}
	for _, tt := range tests {
		t.Run(tt.head, func(t *testing.T) {
			forms, err := in.ReadAll([]byte(tt.src))
			require.NoError(t, err)
			require.Len(t, forms, 1)
			head, err := in.car(forms[0])
			require.NoError(t, err)
			assert.Equal(t, tt.head, in.symbolName(head))
		})
	}
}

func TestReader_ColonAccessDesugar(t *testing.T) {
	in := newTestInterp(t)
	forms, err := in.ReadAll([]byte("obj:prop"))
	require.NoError(t, err)
	require.Len(t, forms, 1)

	vals, ok := in.listToSlice(forms[0])
	require.True(t, ok)
	require.Len(t, vals, 3)
	assert.Equal(t, ":", in.symbolName(vals[0]))
	assert.Equal(t, "obj", in.symbolName(vals[1]))

	quoted, ok := in.listToSlice(vals[2])
	require.True(t, ok)
	require.Len(t, quoted, 2)
	assert.Equal(t, "quote", in.symbolName(quoted[0]))
	assert.Equal(t, "prop", in.symbolName(quoted[1]))
}

func TestReader_AlistDesugar(t *testing.T) {
	in := newTestInterp(t)
	forms, err := in.ReadAll([]byte("{a 1 b 2}"))
	require.NoError(t, err)
	require.Len(t, forms, 1)

	vals, ok := in.listToSlice(forms[0])
	require.True(t, ok)
	require.Len(t, vals, 3) // (list (cons a 1) (cons b 2))
	assert.Equal(t, "list", in.symbolName(vals[0]))
}

func TestReader_UnterminatedListIsAnError(t *testing.T) {
	in := newTestInterp(t)
	_, err := in.ReadAll([]byte("(a b"))
	require.Error(t, err)
	var rerr *ReaderError
	assert.ErrorAs(t, err, &rerr)
}

func TestReader_OddAlistIsAnError(t *testing.T) {
	in := newTestInterp(t)
	_, err := in.ReadAll([]byte("{a 1 b}"))
	require.Error(t, err)
}
