package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"foodsync/internal/nutrition"
	"foodsync/internal/recipe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runApp(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := newApp(&out).Run(context.Background(), append([]string{"foodsync"}, args...))
	return out.String(), err
}

func TestNutritionCommand(t *testing.T) {
	out, err := runApp(t, "nutrition",
		"--weight", "70", "--height", "175", "--age", "30",
		"--gender", "male", "--activity", "sedentary", "--goal", "maintain")
	require.NoError(t, err)

	var targets nutrition.Targets
	require.NoError(t, json.Unmarshal([]byte(out), &targets))
	assert.Equal(t, 1979, targets.DailyCalorieTarget)
	assert.Equal(t, 22.9, targets.BMI)
	assert.Equal(t, nutrition.BMINormal, targets.BMICategory)
}

func TestNutritionCommand_MissingFlags(t *testing.T) {
	_, err := runApp(t, "nutrition", "--weight", "70")
	require.Error(t, err)

	var incomplete *nutrition.IncompleteProfileError
	require.ErrorAs(t, err, &incomplete)
	assert.Equal(t, []string{"height", "age", "gender", "activityLevel", "goal"}, incomplete.Missing)
}

func TestNutritionCommand_OutOfDomain(t *testing.T) {
	_, err := runApp(t, "nutrition",
		"--weight", "500", "--height", "175", "--age", "30",
		"--gender", "male", "--activity", "sedentary", "--goal", "maintain")
	assert.ErrorIs(t, err, nutrition.ErrInvalidDomain)

	_, err = runApp(t, "nutrition",
		"--weight", "NaN", "--height", "175", "--age", "30",
		"--gender", "male", "--activity", "sedentary", "--goal", "maintain")
	assert.ErrorIs(t, err, nutrition.ErrInvalidDomain)
}

func TestMatchCommand(t *testing.T) {
	out, err := runApp(t, "match", "--have", "oeufs", "--have", "fromage", "beurre")
	require.NoError(t, err)

	var ranked []recipe.ScoredRecipe
	require.NoError(t, json.Unmarshal([]byte(out), &ranked))
	require.NotEmpty(t, ranked)
	assert.Equal(t, "Omelette au fromage", ranked[0].Name)
	assert.Equal(t, 100, ranked[0].MatchPercentage)
}

func TestCatalogCommand_YAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`recipes:
  - id: 7
    name: Tartine
    ingredients: [pain, beurre]
    time: 5
    difficulty: easy
    servings: 1
    instructions: [Beurrer le pain]
`), 0o600))

	out, err := runApp(t, "catalog", "--catalog", path, "--format", "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "name: Tartine")

	_, err = runApp(t, "catalog", "--catalog", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = runApp(t, "catalog", "--format", "xml")
	assert.Error(t, err)
}
