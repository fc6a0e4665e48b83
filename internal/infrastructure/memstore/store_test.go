package memstore

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"meal-planner/internal/core/grocery"
	"meal-planner/internal/core/shopping"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(d int) time.Time {
	return time.Date(2026, 5, d, 0, 0, 0, 0, time.UTC)
}

func seeded(t *testing.T) *Store {
	t.Helper()
	s := New()
	s.AddHousehold("h1", "Home")
	require.NoError(t, s.AddMember("h1", "alice"))
	require.NoError(t, s.AddMeal(shopping.Meal{ID: "m1", HouseholdID: "h1", Date: day(4), Notes: "2 kg potatoes"}))
	require.NoError(t, s.AddMeal(shopping.Meal{ID: "m2", HouseholdID: "h1", Date: day(5), RecipeIngredients: "1 kg potatoes"}))
	require.NoError(t, s.AddMeal(shopping.Meal{ID: "m3", HouseholdID: "h1", Date: day(6)}))
	require.NoError(t, s.AddMeal(shopping.Meal{ID: "m4", HouseholdID: "h1", Date: day(20), Notes: "salt"}))
	return s
}

func TestStore_Membership(t *testing.T) {
	t.Parallel()

	s := seeded(t)
	ok, err := s.IsMember(context.Background(), "h1", "alice")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.IsMember(context.Background(), "h1", "bob")
	require.NoError(t, err)
	assert.False(t, ok)

	assert.ErrorIs(t, s.AddMember("missing", "bob"), shopping.ErrNotFound)
}

func TestStore_ListWithIngredients(t *testing.T) {
	t.Parallel()

	s := seeded(t)
	meals, err := s.ListWithIngredients(context.Background(), "h1", day(1), day(10))
	require.NoError(t, err)
	require.Len(t, meals, 2)
	assert.Equal(t, "m1", meals[0].ID)
	assert.Equal(t, "m2", meals[1].ID)

	meals, err = s.ListWithIngredients(context.Background(), "other", day(1), day(30))
	require.NoError(t, err)
	assert.Empty(t, meals)
}

func TestStore_ListWithIngredients_EndDateWithTime(t *testing.T) {
	t.Parallel()

	s := New()
	s.AddHousehold("h1", "Home")
	require.NoError(t, s.AddMeal(shopping.Meal{ID: "dinner", HouseholdID: "h1", Date: day(10).Add(19 * time.Hour), Notes: "1 kg rice"}))
	require.NoError(t, s.AddMeal(shopping.Meal{ID: "late", HouseholdID: "h1", Date: day(11).Add(time.Hour), Notes: "salt"}))

	meals, err := s.ListWithIngredients(context.Background(), "h1", day(1), day(10))
	require.NoError(t, err)
	require.Len(t, meals, 1)
	assert.Equal(t, "dinner", meals[0].ID)
}

func TestStore_FindOrCreate(t *testing.T) {
	t.Parallel()

	s := New()
	var wg sync.WaitGroup
	ids := make([]string, 20)
	for i := range ids {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id, err := s.FindOrCreate(context.Background(), "Potatoes")
			assert.NoError(t, err)
			ids[i] = id
		}(i)
	}
	wg.Wait()

	for _, id := range ids {
		assert.Equal(t, ids[0], id)
	}
	again, err := s.FindOrCreate(context.Background(), " potatoes ")
	require.NoError(t, err)
	assert.Equal(t, ids[0], again)
}

func TestStore_ListLifecycle(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := seeded(t)
	list := &shopping.GroceryList{
		ID:          "l1",
		HouseholdID: "h1",
		Items:       grocery.ParseIngredients("3 eggs\nsalt"),
		CreatedAt:   day(4),
	}
	require.NoError(t, s.Create(ctx, list))
	assert.ErrorIs(t, s.Create(ctx, list), shopping.ErrConflict)

	// stored copy is isolated from the caller
	list.Items[0].Name = "mutated"
	got, err := s.Get(ctx, "h1", "l1")
	require.NoError(t, err)
	assert.Equal(t, "eggs", got.Items[0].Name)

	_, err = s.Get(ctx, "h2", "l1")
	assert.ErrorIs(t, err, shopping.ErrNotFound)

	item, err := s.TogglePurchased(ctx, "l1", "eggs", "alice", day(5))
	require.NoError(t, err)
	assert.True(t, item.Purchased)
	assert.Equal(t, "alice", *item.PurchasedBy)

	item, err = s.TogglePurchased(ctx, "l1", "eggs", "alice", day(6))
	require.NoError(t, err)
	assert.False(t, item.Purchased)
	assert.Nil(t, item.PurchasedAt)

	_, err = s.TogglePurchased(ctx, "l1", "nope", "alice", day(6))
	assert.ErrorIs(t, err, shopping.ErrNotFound)

	require.NoError(t, s.DeleteItem(ctx, "l1", "eggs"))
	assert.ErrorIs(t, s.DeleteItem(ctx, "l1", "eggs"), shopping.ErrNotFound)
	got, err = s.Get(ctx, "h1", "l1")
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.Equal(t, "salt", got.Items[0].ID)

	require.NoError(t, s.Create(ctx, &shopping.GroceryList{ID: "l2", HouseholdID: "h1", CreatedAt: day(9)}))
	lists, err := s.ListByHousehold(ctx, "h1")
	require.NoError(t, err)
	require.Len(t, lists, 2)
	assert.Equal(t, "l2", lists[0].ID)

	assert.ErrorIs(t, s.Delete(ctx, "h2", "l1"), shopping.ErrNotFound)
	require.NoError(t, s.Delete(ctx, "h1", "l1"))
	_, err = s.Get(ctx, "h1", "l1")
	assert.ErrorIs(t, err, shopping.ErrNotFound)
}

func TestStore_ConcurrentToggle(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := seeded(t)
	require.NoError(t, s.Create(ctx, &shopping.GroceryList{
		ID:          "l1",
		HouseholdID: "h1",
		Items:       grocery.ParseIngredients("milk"),
	}))

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.TogglePurchased(ctx, "l1", "milk", "alice", day(5))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	// an even number of toggles lands back on unpurchased
	got, err := s.Get(ctx, "h1", "l1")
	require.NoError(t, err)
	assert.False(t, got.Items[0].Purchased)
	assert.Nil(t, got.Items[0].PurchasedBy)
}

func TestStore_LoadSeed(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
households:
  - id: h1
    name: Home
    members: [alice, bob]
    meals:
      - id: m1
        date: "2026-05-04"
        title: Stew
        notes: |
          2 kg potatoes
          1 kg carrots
      - date: "2026-05-05"
        title: Omelette
        recipe_ingredients: "3 eggs"
`), 0o600))

	s := New()
	require.NoError(t, s.LoadSeed(path))

	ok, _ := s.IsMember(context.Background(), "h1", "bob")
	assert.True(t, ok)

	meals, err := s.ListWithIngredients(context.Background(), "h1", day(1), day(31))
	require.NoError(t, err)
	require.Len(t, meals, 2)
	assert.Equal(t, "m1", meals[0].ID)
	assert.Equal(t, "3 eggs", meals[1].IngredientText())

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("households:\n  - id: h1\n    meals:\n      - date: tomorrow\n"), 0o600))
	assert.Error(t, New().LoadSeed(bad))
}
