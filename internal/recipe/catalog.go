package recipe

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalog []byte

var ErrInvalidCatalog = errors.New("invalid recipe catalog")

// CatalogRecipe is a fixed reference recipe used for suggestions.
type CatalogRecipe struct {
	ID           int      `yaml:"id" json:"id"`
	Name         string   `yaml:"name" json:"name"`
	Emoji        string   `yaml:"emoji" json:"emoji"`
	Ingredients  []string `yaml:"ingredients" json:"ingredients"`
	Time         int      `yaml:"time" json:"time"`
	Difficulty   string   `yaml:"difficulty" json:"difficulty"`
	Servings     int      `yaml:"servings" json:"servings"`
	Instructions []string `yaml:"instructions" json:"instructions"`
}

// Catalog is an immutable, ordered list of reference recipes. The zero value
// is an empty catalog.
type Catalog struct {
	recipes []CatalogRecipe
}

type catalogFile struct {
	Recipes []CatalogRecipe `yaml:"recipes"`
}

// NewCatalog validates recipes and copies them into a Catalog.
func NewCatalog(recipes []CatalogRecipe) (Catalog, error) {
	seen := make(map[int]bool, len(recipes))
	out := make([]CatalogRecipe, 0, len(recipes))
	for i, r := range recipes {
		if seen[r.ID] {
			return Catalog{}, fmt.Errorf("%w: duplicate id %d", ErrInvalidCatalog, r.ID)
		}
		seen[r.ID] = true
		if strings.TrimSpace(r.Name) == "" {
			return Catalog{}, fmt.Errorf("%w: recipe #%d has no name", ErrInvalidCatalog, i)
		}
		if len(r.Ingredients) == 0 {
			return Catalog{}, fmt.Errorf("%w: recipe %q has no ingredients", ErrInvalidCatalog, r.Name)
		}
		for _, ing := range r.Ingredients {
			if strings.TrimSpace(ing) == "" {
				return Catalog{}, fmt.Errorf("%w: recipe %q has an empty ingredient", ErrInvalidCatalog, r.Name)
			}
		}
		out = append(out, cloneRecipe(r))
	}
	return Catalog{recipes: out}, nil
}

// LoadCatalog decodes a YAML catalog.
func LoadCatalog(r io.Reader) (Catalog, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f catalogFile
	if err := dec.Decode(&f); err != nil {
		return Catalog{}, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}
	return NewCatalog(f.Recipes)
}

// LoadCatalogFile reads the catalog at path, or the embedded one when path
// is empty.
func LoadCatalogFile(path string) (Catalog, error) {
	if path == "" {
		return DefaultCatalog()
	}
	f, err := os.Open(path)
	if err != nil {
		return Catalog{}, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()
	return LoadCatalog(f)
}

// DefaultCatalog returns the catalog shipped with the binary.
func DefaultCatalog() (Catalog, error) {
	return LoadCatalog(bytes.NewReader(defaultCatalog))
}

// All returns a copy of every recipe in catalog order.
func (c Catalog) All() []CatalogRecipe {
	out := make([]CatalogRecipe, len(c.recipes))
	for i, r := range c.recipes {
		out[i] = cloneRecipe(r)
	}
	return out
}

// Find returns the recipe with the given id.
func (c Catalog) Find(id int) (CatalogRecipe, bool) {
	for _, r := range c.recipes {
		if r.ID == id {
			return cloneRecipe(r), true
		}
	}
	return CatalogRecipe{}, false
}

func (c Catalog) Len() int {
	return len(c.recipes)
}

func cloneRecipe(r CatalogRecipe) CatalogRecipe {
	r.Ingredients = append([]string(nil), r.Ingredients...)
	r.Instructions = append([]string(nil), r.Instructions...)
	return r
}
