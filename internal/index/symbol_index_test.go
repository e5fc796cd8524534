package index

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ctxengine/ctxengine/internal/astx"
)

func fn(name string, line int) astx.CodeElement {
	return astx.CodeElement{Kind: astx.KindFunction, Name: name, StartLine: line, EndLine: line + 1}
}

func TestAdd_RejectsDuplicateID(t *testing.T) {
	idx := New()
	sym := NewSymbol("a.go", fn("Handler", 1))
	require.NoError(t, idx.Add(sym))
	err := idx.Add(NewSymbol("a.go", fn("Handler", 1)))
	assert.ErrorIs(t, err, ErrDuplicateSymbol)
}

func TestAddBatch_AllOrNothingOnDuplicateWithinBatch(t *testing.T) {
	idx := New()
	err := idx.AddBatch([]*Symbol{
		NewSymbol("a.go", fn("Handler", 1)),
		NewSymbol("a.go", fn("Handler", 1)),
	})
	require.Error(t, err)
	assert.Equal(t, 0, idx.Stats().TotalSymbols)
}

func TestGetByName_ReturnsDefensiveCopy(t *testing.T) {
	idx := New()
	require.NoError(t, idx.Add(NewSymbol("a.go", fn("Handler", 1))))
	got := idx.GetByName("Handler")
	require.Len(t, got, 1)
	got[0] = nil
	assert.Len(t, idx.GetByName("Handler"), 1)
	assert.NotNil(t, idx.GetByName("Handler")[0])
}

func TestSearch_RanksExactBeforePrefixBeforeSubstring(t *testing.T) {
	idx := New()
	require.NoError(t, idx.AddBatch([]*Symbol{
		NewSymbol("a.go", fn("HandleRequest", 1)),
		NewSymbol("b.go", fn("Handle", 5)),
		NewSymbol("c.go", fn("MyHandle", 10)),
	}))
	results, err := idx.Search(context.Background(), "Handle", 0)
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, "Handle", results[0].Element.Name)
	assert.Equal(t, "HandleRequest", results[1].Element.Name)
	assert.Equal(t, "MyHandle", results[2].Element.Name)
}

func TestRemoveByFile_DropsAllIndexesForThatFile(t *testing.T) {
	idx := New()
	require.NoError(t, idx.AddBatch([]*Symbol{
		NewSymbol("a.go", fn("Foo", 1)),
		NewSymbol("a.go", fn("Bar", 5)),
		NewSymbol("b.go", fn("Baz", 1)),
	}))
	removed := idx.RemoveByFile("a.go")
	assert.Equal(t, 2, removed)
	assert.Empty(t, idx.GetByFile("a.go"))
	assert.Len(t, idx.GetByFile("b.go"), 1)
	assert.Equal(t, 1, idx.Stats().TotalSymbols)
}

func TestMaxSymbols_RejectsOverCapacity(t *testing.T) {
	idx := New(WithMaxSymbols(1))
	require.NoError(t, idx.Add(NewSymbol("a.go", fn("Foo", 1))))
	err := idx.Add(NewSymbol("a.go", fn("Bar", 5)))
	assert.ErrorIs(t, err, ErrMaxSymbolsExceeded)
}
