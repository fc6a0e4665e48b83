package postgres

import (
	"context"
	"fmt"
	"time"

	"meal-planner/internal/core/shopping"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
)

// MealRepo 餐點查詢
type MealRepo struct {
	db DB
}

// NewMealRepo 創建餐點 repository
func NewMealRepo(db DB) *MealRepo {
	return &MealRepo{db: db}
}

// mealRow meals 與連結食譜的查詢結果
type mealRow struct {
	ID                string    `db:"id"`
	HouseholdID       string    `db:"household_id"`
	Date              time.Time `db:"date"`
	Title             string    `db:"title"`
	Notes             string    `db:"notes"`
	RecipeID          *string   `db:"recipe_id"`
	RecipeIngredients string    `db:"recipe_ingredients"`
}

// ListWithIngredients 範圍內帶有食材文字（備註或連結食譜）的餐點，依日期排序
func (r *MealRepo) ListWithIngredients(ctx context.Context, householdID string, from, to time.Time) ([]shopping.Meal, error) {
	query, args, err := psql.
		Select(
			"m.id", "m.household_id", "m.date", "m.title", "m.notes", "m.recipe_id",
			"COALESCE(r.ingredients, '') AS recipe_ingredients",
		).
		From("meals m").
		LeftJoin("recipes r ON r.id = m.recipe_id").
		Where(squirrel.Eq{"m.household_id": householdID}).
		Where("m.date BETWEEN ? AND ?", from, to).
		Where("(m.notes <> '' OR COALESCE(r.ingredients, '') <> '')").
		OrderBy("m.date", "m.id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build meals query: %w", err)
	}

	var rows []mealRow
	if err := pgxscan.Select(ctx, QuerierFromCtx(ctx, r.db), &rows, query, args...); err != nil {
		return nil, mapError(err, "household", householdID)
	}

	meals := make([]shopping.Meal, 0, len(rows))
	for _, row := range rows {
		meals = append(meals, shopping.Meal{
			ID:                row.ID,
			HouseholdID:       row.HouseholdID,
			Date:              row.Date,
			Title:             row.Title,
			Notes:             row.Notes,
			RecipeID:          row.RecipeID,
			RecipeIngredients: row.RecipeIngredients,
		})
	}
	return meals, nil
}
