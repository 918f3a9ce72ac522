package recipe

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalog(t *testing.T) {
	c, err := DefaultCatalog()
	require.NoError(t, err)
	require.Equal(t, 8, c.Len())

	omelette, ok := c.Find(1)
	require.True(t, ok)
	assert.Equal(t, "Omelette au fromage", omelette.Name)
	assert.Equal(t, []string{"oeufs", "fromage", "beurre"}, omelette.Ingredients)
	assert.Equal(t, 10, omelette.Time)
	assert.Equal(t, "easy", omelette.Difficulty)
	assert.Len(t, omelette.Instructions, 4)

	quiche, ok := c.Find(8)
	require.True(t, ok)
	assert.Equal(t, "Quiche lorraine", quiche.Name)

	_, ok = c.Find(99)
	assert.False(t, ok)
}

func TestCatalog_AllIsACopy(t *testing.T) {
	c, err := DefaultCatalog()
	require.NoError(t, err)

	all := c.All()
	all[0].Name = "changed"
	all[0].Ingredients[0] = "changed"

	first, _ := c.Find(all[0].ID)
	assert.Equal(t, "Omelette au fromage", first.Name)
	assert.Equal(t, "oeufs", first.Ingredients[0])
}

func TestLoadCatalog_Validation(t *testing.T) {
	tests := map[string]string{
		"duplicate id": `
recipes:
  - {id: 1, name: a, ingredients: [x]}
  - {id: 1, name: b, ingredients: [y]}
`,
		"no name": `
recipes:
  - {id: 1, ingredients: [x]}
`,
		"no ingredients": `
recipes:
  - {id: 1, name: a, ingredients: []}
`,
		"empty ingredient": `
recipes:
  - {id: 1, name: a, ingredients: [x, ""]}
`,
		"unknown field": `
recipes:
  - {id: 1, name: a, ingredients: [x], calories: 300}
`,
	}

	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := LoadCatalog(strings.NewReader(doc))
			assert.ErrorIs(t, err, ErrInvalidCatalog)
		})
	}
}

func TestLoadCatalogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
recipes:
  - id: 42
    name: Tartine
    emoji: "🍞"
    ingredients: [pain, beurre]
    time: 2
    difficulty: easy
    servings: 1
    instructions: [Beurrer le pain]
`), 0o600))

	c, err := LoadCatalogFile(path)
	require.NoError(t, err)
	r, ok := c.Find(42)
	require.True(t, ok)
	assert.Equal(t, "Tartine", r.Name)

	def, err := LoadCatalogFile("")
	require.NoError(t, err)
	assert.Equal(t, 8, def.Len())

	_, err = LoadCatalogFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
