package postgres

import (
	"context"
	"fmt"
	"time"

	"meal-planner/internal/core/grocery"
	"meal-planner/internal/core/shopping"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
)

var (
	listColumns = []string{"id", "household_id", "start_date", "end_date", "created_by", "created_at"}
	itemColumns = []string{"item_key", "ingredient_id", "name", "quantity", "unit", "purchased", "purchased_by", "purchased_at"}
)

// ListRepo 購物清單與項目
type ListRepo struct {
	db DB
}

// NewListRepo 創建清單 repository
func NewListRepo(db DB) *ListRepo {
	return &ListRepo{db: db}
}

// Create 寫入清單與所有項目，呼叫端負責包在交易中
func (r *ListRepo) Create(ctx context.Context, list *shopping.GroceryList) error {
	q := QuerierFromCtx(ctx, r.db)

	query, args, err := psql.
		Insert("grocery_lists").
		Columns(listColumns...).
		Values(list.ID, list.HouseholdID, list.StartDate, list.EndDate, list.CreatedBy, list.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build list insert: %w", err)
	}
	if _, err := q.Exec(ctx, query, args...); err != nil {
		return mapError(err, "grocery list", list.ID)
	}

	if len(list.Items) == 0 {
		return nil
	}

	insert := psql.
		Insert("grocery_items").
		Columns("list_id", "position", "item_key", "ingredient_id", "name", "quantity", "unit", "purchased", "purchased_by", "purchased_at")
	for i, it := range list.Items {
		insert = insert.Values(list.ID, i, it.ID, nullable(it.IngredientID), it.Name, it.Quantity, it.Unit, it.Purchased, it.PurchasedBy, it.PurchasedAt)
	}
	query, args, err = insert.ToSql()
	if err != nil {
		return fmt.Errorf("build items insert: %w", err)
	}
	if _, err := q.Exec(ctx, query, args...); err != nil {
		return mapError(err, "grocery list", list.ID)
	}
	return nil
}

// Get 取得屬於該家庭的清單
func (r *ListRepo) Get(ctx context.Context, householdID, listID string) (*shopping.GroceryList, error) {
	q := QuerierFromCtx(ctx, r.db)

	query, args, err := psql.
		Select(listColumns...).
		From("grocery_lists").
		Where(squirrel.Eq{"id": listID, "household_id": householdID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list query: %w", err)
	}

	list, err := scanList(q.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, mapError(err, "grocery list", listID)
	}

	items, err := r.items(ctx, q, []string{listID})
	if err != nil {
		return nil, err
	}
	list.Items = items[listID]
	return list, nil
}

// ListByHousehold 家庭所有清單，新的在前
func (r *ListRepo) ListByHousehold(ctx context.Context, householdID string) ([]shopping.GroceryList, error) {
	q := QuerierFromCtx(ctx, r.db)

	query, args, err := psql.
		Select(listColumns...).
		From("grocery_lists").
		Where(squirrel.Eq{"household_id": householdID}).
		OrderBy("created_at DESC", "id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build lists query: %w", err)
	}

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError(err, "household", householdID)
	}
	defer rows.Close()

	lists := make([]shopping.GroceryList, 0)
	ids := make([]string, 0)
	for rows.Next() {
		l, err := scanList(rows)
		if err != nil {
			return nil, fmt.Errorf("scan list: %w", err)
		}
		lists = append(lists, *l)
		ids = append(ids, l.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err, "household", householdID)
	}
	rows.Close()

	if len(ids) == 0 {
		return lists, nil
	}

	items, err := r.items(ctx, q, ids)
	if err != nil {
		return nil, err
	}
	for i := range lists {
		lists[i].Items = items[lists[i].ID]
	}
	return lists, nil
}

// Delete 刪除清單，項目隨外鍵一併刪除
func (r *ListRepo) Delete(ctx context.Context, householdID, listID string) error {
	query, args, err := psql.
		Delete("grocery_lists").
		Where(squirrel.Eq{"id": listID, "household_id": householdID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build list delete: %w", err)
	}

	tag, err := QuerierFromCtx(ctx, r.db).Exec(ctx, query, args...)
	if err != nil {
		return mapError(err, "grocery list", listID)
	}
	if tag.RowsAffected() == 0 {
		return mapError(pgx.ErrNoRows, "grocery list", listID)
	}
	return nil
}

// DeleteItem 刪除單一項目
func (r *ListRepo) DeleteItem(ctx context.Context, listID, itemID string) error {
	query, args, err := psql.
		Delete("grocery_items").
		Where(squirrel.Eq{"list_id": listID, "item_key": itemID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build item delete: %w", err)
	}

	tag, err := QuerierFromCtx(ctx, r.db).Exec(ctx, query, args...)
	if err != nil {
		return mapError(err, "grocery item", itemID)
	}
	if tag.RowsAffected() == 0 {
		return mapError(pgx.ErrNoRows, "grocery item", itemID)
	}
	return nil
}

// TogglePurchased 單一 UPDATE 完成切換，SET 右側讀到的是更新前的值
func (r *ListRepo) TogglePurchased(ctx context.Context, listID, itemID, actorID string, now time.Time) (*grocery.Item, error) {
	query, args, err := psql.
		Update("grocery_items").
		Set("purchased", squirrel.Expr("NOT purchased")).
		Set("purchased_by", squirrel.Expr("CASE WHEN purchased THEN NULL ELSE ?::text END", actorID)).
		Set("purchased_at", squirrel.Expr("CASE WHEN purchased THEN NULL ELSE ?::timestamptz END", now)).
		Where(squirrel.Eq{"list_id": listID, "item_key": itemID}).
		Suffix("RETURNING item_key, ingredient_id, name, quantity, unit, purchased, purchased_by, purchased_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build toggle: %w", err)
	}

	item, err := scanItem(QuerierFromCtx(ctx, r.db).QueryRow(ctx, query, args...))
	if err != nil {
		return nil, mapError(err, "grocery item", itemID)
	}
	return item, nil
}

// items 依清單 ID 取得項目，保留寫入時的順序
func (r *ListRepo) items(ctx context.Context, q Querier, listIDs []string) (map[string][]grocery.Item, error) {
	query, args, err := psql.
		Select(append([]string{"list_id"}, itemColumns...)...).
		From("grocery_items").
		Where(squirrel.Eq{"list_id": listIDs}).
		OrderBy("list_id", "position").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build items query: %w", err)
	}

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError(err, "grocery list", listIDs[0])
	}
	defer rows.Close()

	out := make(map[string][]grocery.Item, len(listIDs))
	for _, id := range listIDs {
		out[id] = []grocery.Item{}
	}
	for rows.Next() {
		var (
			listID       string
			it           grocery.Item
			ingredientID *string
		)
		if err := rows.Scan(&listID, &it.ID, &ingredientID, &it.Name, &it.Quantity, &it.Unit, &it.Purchased, &it.PurchasedBy, &it.PurchasedAt); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		if ingredientID != nil {
			it.IngredientID = *ingredientID
		}
		out[listID] = append(out[listID], it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate items: %w", err)
	}
	return out, nil
}

func scanList(row pgx.Row) (*shopping.GroceryList, error) {
	var l shopping.GroceryList
	if err := row.Scan(&l.ID, &l.HouseholdID, &l.StartDate, &l.EndDate, &l.CreatedBy, &l.CreatedAt); err != nil {
		return nil, err
	}
	return &l, nil
}

func scanItem(row pgx.Row) (*grocery.Item, error) {
	var (
		it           grocery.Item
		ingredientID *string
	)
	if err := row.Scan(&it.ID, &ingredientID, &it.Name, &it.Quantity, &it.Unit, &it.Purchased, &it.PurchasedBy, &it.PurchasedAt); err != nil {
		return nil, err
	}
	if ingredientID != nil {
		it.IngredientID = *ingredientID
	}
	return &it, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
