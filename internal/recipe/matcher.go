package recipe

import (
	"math"
	"sort"
	"strings"
)

// MaxSuggestions caps the number of scored recipes returned by Match.
const MaxSuggestions = 10

// ScoredRecipe is a catalog recipe annotated with its overlap against the
// available ingredients.
type ScoredRecipe struct {
	CatalogRecipe       `yaml:",inline"`
	MatchingIngredients []string `json:"matchingIngredients" yaml:"matchingIngredients"`
	MatchCount          int      `json:"matchCount" yaml:"matchCount"`
	MatchPercentage     int      `json:"matchPercentage" yaml:"matchPercentage"`
	MissingIngredients  []string `json:"missingIngredients" yaml:"missingIngredients"`
}

// Match ranks catalog recipes by how many of their ingredients are
// available. An ingredient matches when either name contains the other,
// case-insensitively. Recipes without any match are dropped, the rest are
// ordered by percentage then count, and at most MaxSuggestions are kept.
// Fully tied recipes keep catalog order.
func Match(catalog Catalog, available []string) []ScoredRecipe {
	have := normalize(available)
	if len(have) == 0 {
		return []ScoredRecipe{}
	}

	scored := make([]ScoredRecipe, 0, catalog.Len())
	for _, r := range catalog.recipes {
		if len(r.Ingredients) == 0 {
			continue
		}

		matching := make([]string, 0, len(r.Ingredients))
		missing := make([]string, 0, len(r.Ingredients))
		for _, ing := range r.Ingredients {
			if matches(strings.ToLower(ing), have) {
				matching = append(matching, ing)
			} else {
				missing = append(missing, ing)
			}
		}
		if len(matching) == 0 {
			continue
		}

		scored = append(scored, ScoredRecipe{
			CatalogRecipe:       cloneRecipe(r),
			MatchingIngredients: matching,
			MatchCount:          len(matching),
			MatchPercentage:     percentage(len(matching), len(r.Ingredients)),
			MissingIngredients:  missing,
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].MatchPercentage != scored[j].MatchPercentage {
			return scored[i].MatchPercentage > scored[j].MatchPercentage
		}
		return scored[i].MatchCount > scored[j].MatchCount
	})

	if len(scored) > MaxSuggestions {
		scored = scored[:MaxSuggestions]
	}
	return scored
}

func normalize(names []string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.ToLower(n)
		if n != "" {
			out = append(out, n)
		}
	}
	return out
}

func matches(ingredient string, have []string) bool {
	for _, a := range have {
		if strings.Contains(ingredient, a) || strings.Contains(a, ingredient) {
			return true
		}
	}
	return false
}

func percentage(count, total int) int {
	return int(math.Floor(float64(count)/float64(total)*100 + 0.5))
}
