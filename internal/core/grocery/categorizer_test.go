package grocery

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategorize_DefaultCategories(t *testing.T) {
	t.Parallel()

	items := ParseIngredients("chicken breast\n3 eggs\n1.5 cups flour\nsalt\npepper\n2 kg potatoes\nonions\nmilk")
	got := Categorize(items, DefaultCategories())

	bucketNames := func(name string) []string {
		b, ok := got.Bucket(name)
		require.True(t, ok, "bucket %s", name)
		return names(b.Items)
	}

	assert.Equal(t, []string{"onions", "potatoes"}, bucketNames("Produce"))
	assert.Equal(t, []string{"chicken breast"}, bucketNames("Meat & Seafood"))
	assert.Equal(t, []string{"eggs", "milk"}, bucketNames("Dairy & Eggs"))
	assert.Equal(t, []string{"flour"}, bucketNames("Pantry"))
	assert.Equal(t, []string{"pepper", "salt"}, bucketNames("Spices & Condiments"))

	// declared categories are always present, empty or not
	assert.Equal(t, []string{}, bucketNames("Bakery"))
	assert.Equal(t, []string{}, bucketNames("Frozen"))
	assert.Len(t, got.Buckets, len(DefaultCategories()))

	_, ok := got.Bucket(OtherCategoryName)
	assert.False(t, ok)
}

func TestCategorize_OtherOnlyWhenNeeded(t *testing.T) {
	t.Parallel()

	got := Categorize(ParseIngredients("widgets\nsalt"), DefaultCategories())
	require.Len(t, got.Buckets, len(DefaultCategories())+1)

	last := got.Buckets[len(got.Buckets)-1]
	assert.Equal(t, OtherCategoryName, last.Category.Name)
	assert.Equal(t, []string{"widgets"}, names(last.Items))

	empty := Categorize(nil, DefaultCategories())
	assert.Len(t, empty.Buckets, len(DefaultCategories()))
	assert.Empty(t, empty.NonEmpty())
}

func TestCategorize_FirstMatchWins(t *testing.T) {
	t.Parallel()

	// "butter lettuce" hits Produce (lettuce) and Dairy (butter); Produce comes first
	items := ParseIngredients("butter lettuce\nbutter\nred bell pepper")
	reversed := make([]Item, len(items))
	for i, it := range items {
		reversed[len(items)-1-i] = it
	}

	for _, in := range [][]Item{items, reversed} {
		got := Categorize(in, DefaultCategories())
		produce, _ := got.Bucket("Produce")
		dairy, _ := got.Bucket("Dairy & Eggs")
		spices, _ := got.Bucket("Spices & Condiments")
		assert.Equal(t, []string{"butter lettuce", "red bell pepper"}, names(produce.Items))
		assert.Equal(t, []string{"butter"}, names(dairy.Items))
		assert.Empty(t, spices.Items)
	}

	assert.Equal(t, Categorize(items, DefaultCategories()), Categorize(reversed, DefaultCategories()))
}

func TestCategorize_OrderIsAuthoritative(t *testing.T) {
	t.Parallel()

	cats := []Category{
		{Name: "Dairy", Keywords: []string{"butter"}},
		{Name: "Greens", Keywords: []string{"lettuce"}},
	}
	got := Categorize(ParseIngredients("butter lettuce"), cats)
	dairy, _ := got.Bucket("Dairy")
	assert.Equal(t, []string{"butter lettuce"}, names(dairy.Items))
}

func TestCategory_Matches(t *testing.T) {
	t.Parallel()

	c := Category{Name: "Produce", Keywords: []string{"Tomato", " ", ""}}
	assert.True(t, c.Matches("cherry tomatoes"))
	assert.True(t, c.Matches("TOMATO"))
	assert.False(t, c.Matches("potato"))
	assert.False(t, OtherCategory.Matches("anything"))
}

func TestLoadCategories(t *testing.T) {
	t.Parallel()

	t.Run("empty path uses defaults", func(t *testing.T) {
		t.Parallel()
		got, err := LoadCategories("")
		require.NoError(t, err)
		assert.Equal(t, DefaultCategories(), got)
	})

	t.Run("yaml file", func(t *testing.T) {
		t.Parallel()
		path := writeFile(t, `
categories:
  - name: Veg
    color: green
    icon: "🥕"
    keywords: [carrot, leek]
  - name: Dairy
    keywords: [milk]
`)
		got, err := LoadCategories(path)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, Category{Name: "Veg", Color: "green", Icon: "🥕", Keywords: []string{"carrot", "leek"}}, got[0])
		assert.Equal(t, "Dairy", got[1].Name)
	})

	t.Run("invalid files", func(t *testing.T) {
		t.Parallel()
		for name, body := range map[string]string{
			"empty":     "categories: []",
			"no name":   "categories:\n  - keywords: [a]",
			"reserved":  "categories:\n  - name: other",
			"duplicate": "categories:\n  - name: A\n  - name: a",
			"bad yaml":  "categories: [",
		} {
			_, err := LoadCategories(writeFile(t, body))
			assert.Error(t, err, name)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()
		_, err := LoadCategories(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})
}

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "categories.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}
