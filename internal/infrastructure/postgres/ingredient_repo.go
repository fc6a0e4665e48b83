package postgres

import (
	"context"
	"fmt"
	"strings"

	"meal-planner/internal/pkg/common"
)

// IngredientRepo 食材目錄
type IngredientRepo struct {
	db DB
}

// NewIngredientRepo 創建食材 repository
func NewIngredientRepo(db DB) *IngredientRepo {
	return &IngredientRepo{db: db}
}

// FindOrCreate 依小寫名稱取得或建立食材，單一語句完成，並發呼叫不會產生重複資料
func (r *IngredientRepo) FindOrCreate(ctx context.Context, name string) (string, error) {
	name = strings.ToLower(strings.TrimSpace(name))

	query, args, err := psql.
		Insert("ingredients").
		Columns("id", "name").
		Values(common.GenerateUUID(), name).
		Suffix("ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name RETURNING id").
		ToSql()
	if err != nil {
		return "", fmt.Errorf("build ingredient upsert: %w", err)
	}

	var id string
	if err := QuerierFromCtx(ctx, r.db).QueryRow(ctx, query, args...).Scan(&id); err != nil {
		return "", mapError(err, "ingredient", name)
	}
	return id, nil
}
