package symbols

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scrybe/scrybe/pkg/entry"
)

func openTestIndex(t *testing.T) *Index {
	t.Helper()
	idx, err := Open(filepath.Join(t.TempDir(), "symbols.db"))
	require.NoError(t, err)
	t.Cleanup(func() { idx.Close() })
	return idx
}

func TestReplaceFile(t *testing.T) {
	idx := openTestIndex(t)

	require.NoError(t, idx.ReplaceFile("src/a.go", []Symbol{
		{Name: "Parse", File: "src/a.go", Line: 10, Category: entry.CategoryFunction},
		{Name: "maxDepth", File: "src/a.go", Line: 3, Category: entry.CategoryConstant},
	}))

	cats, err := idx.CategoriesWithSymbols(entry.AllCategories)
	require.NoError(t, err)
	assert.Equal(t, []entry.Category{
		entry.CategoryGeneral,
		entry.CategoryFunction,
		entry.CategoryConstant,
	}, cats)

	// Replacing drops the old rows for the file.
	require.NoError(t, idx.ReplaceFile("src/a.go", []Symbol{
		{Name: "Parse", File: "src/a.go", Line: 12, Category: entry.CategoryFunction},
	}))
	cats, err = idx.CategoriesWithSymbols(entry.AllCategories)
	require.NoError(t, err)
	assert.Equal(t, []entry.Category{
		entry.CategoryGeneral,
		entry.CategoryFunction,
	}, cats)
}

func TestRemoveFile(t *testing.T) {
	idx := openTestIndex(t)
	require.NoError(t, idx.ReplaceFile("src/a.go", []Symbol{
		{Name: "Widget", File: "src/a.go", Line: 1, Category: entry.CategoryType},
	}))
	require.NoError(t, idx.ReplaceFile("src/b.go", []Symbol{
		{Name: "count", File: "src/b.go", Line: 2, Category: entry.CategoryVariable},
	}))

	require.NoError(t, idx.RemoveFile("src/a.go"))

	cats, err := idx.CategoriesWithSymbols(entry.AllCategories)
	require.NoError(t, err)
	assert.Equal(t, []entry.Category{
		entry.CategoryGeneral,
		entry.CategoryVariable,
	}, cats)
}

func TestPrune(t *testing.T) {
	idx := openTestIndex(t)
	require.NoError(t, idx.ReplaceFile("src/a.go", []Symbol{
		{Name: "DoIt", File: "src/a.go", Line: 1, Category: entry.CategoryFunction},
	}))
	require.NoError(t, idx.ReplaceFile("src/b.go", []Symbol{
		{Name: "count", File: "src/b.go", Line: 2, Category: entry.CategoryVariable},
	}))

	require.NoError(t, idx.Prune(map[string]bool{"src/b.go": true}))

	cats, err := idx.CategoriesWithSymbols(entry.AllCategories)
	require.NoError(t, err)
	assert.Equal(t, []entry.Category{
		entry.CategoryGeneral,
		entry.CategoryVariable,
	}, cats)

	require.NoError(t, idx.Prune(map[string]bool{}))
	cats, err = idx.CategoriesWithSymbols(entry.AllCategories)
	require.NoError(t, err)
	assert.Empty(t, cats)
}

func TestGeneralRequiresAnySymbol(t *testing.T) {
	idx := openTestIndex(t)

	cats, err := idx.CategoriesWithSymbols(entry.AllCategories)
	require.NoError(t, err)
	assert.Empty(t, cats, "an empty index must report no categories, general included")

	require.NoError(t, idx.ReplaceFile("src/a.go", []Symbol{
		{Name: "Thing", File: "src/a.go", Line: 1, Category: entry.CategoryClass},
	}))
	cats, err = idx.CategoriesWithSymbols([]entry.Category{entry.CategoryGeneral})
	require.NoError(t, err)
	assert.Equal(t, []entry.Category{entry.CategoryGeneral}, cats)
}

func TestReopenPersists(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "symbols.db")
	idx, err := Open(dbPath)
	require.NoError(t, err)
	require.NoError(t, idx.ReplaceFile("src/a.go", []Symbol{
		{Name: "Parse", File: "src/a.go", Line: 1, Category: entry.CategoryFunction},
	}))
	require.NoError(t, idx.Close())

	idx, err = Open(dbPath)
	require.NoError(t, err)
	defer idx.Close()
	cats, err := idx.CategoriesWithSymbols(entry.AllCategories)
	require.NoError(t, err)
	assert.Contains(t, cats, entry.CategoryFunction)
}
