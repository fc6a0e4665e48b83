package memstore

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"meal-planner/internal/core/grocery"
	"meal-planner/internal/core/shopping"
	"meal-planner/internal/pkg/common"

	"go.uber.org/zap"
)

var (
	_ shopping.MealRepository    = (*Store)(nil)
	_ shopping.ListRepository    = (*Store)(nil)
	_ shopping.IngredientCatalog = (*Store)(nil)
	_ shopping.MembershipChecker = (*Store)(nil)
	_ shopping.TxManager         = (*Store)(nil)
)

// Store 記憶體儲存
// 所有讀寫都經過同一把鎖，回傳值皆為複本
type Store struct {
	mu          sync.RWMutex
	households  map[string]string          // id -> name
	members     map[string]map[string]bool // householdID -> memberID
	meals       map[string]shopping.Meal
	lists       map[string]*shopping.GroceryList
	ingredients map[string]string // name -> id
}

// New 創建記憶體儲存
func New() *Store {
	return &Store{
		households:  make(map[string]string),
		members:     make(map[string]map[string]bool),
		meals:       make(map[string]shopping.Meal),
		lists:       make(map[string]*shopping.GroceryList),
		ingredients: make(map[string]string),
	}
}

// Ping 記憶體儲存永遠可用
func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

// RunInTx 直接執行，記憶體儲存的每個操作本身即為原子
func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// AddHousehold 新增家庭
func (s *Store) AddHousehold(id, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.households[id] = name
	if s.members[id] == nil {
		s.members[id] = make(map[string]bool)
	}
}

// AddMember 新增家庭成員
func (s *Store) AddMember(householdID, memberID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.households[householdID]; !ok {
		return fmt.Errorf("household %s: %w", householdID, shopping.ErrNotFound)
	}
	s.members[householdID][memberID] = true
	return nil
}

// AddMeal 新增餐點
func (s *Store) AddMeal(meal shopping.Meal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.households[meal.HouseholdID]; !ok {
		return fmt.Errorf("household %s: %w", meal.HouseholdID, shopping.ErrNotFound)
	}
	if meal.ID == "" {
		meal.ID = common.GenerateUUID()
	}
	s.meals[meal.ID] = meal
	return nil
}

// IsMember 實作 shopping.MembershipChecker
func (s *Store) IsMember(ctx context.Context, householdID, memberID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.members[householdID][memberID], nil
}

// ListWithIngredients 實作 shopping.MealRepository
func (s *Store) ListWithIngredients(ctx context.Context, householdID string, from, to time.Time) ([]shopping.Meal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]shopping.Meal, 0)
	for _, m := range s.meals {
		if m.HouseholdID != householdID {
			continue
		}
		// 以日期比較，忽略時刻
		mealDay := time.Date(m.Date.Year(), m.Date.Month(), m.Date.Day(), 0, 0, 0, 0, time.UTC)
		if mealDay.Before(from) || mealDay.After(to) {
			continue
		}
		if strings.TrimSpace(m.IngredientText()) == "" {
			continue
		}
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// FindOrCreate 實作 shopping.IngredientCatalog
func (s *Store) FindOrCreate(ctx context.Context, name string) (string, error) {
	name = strings.ToLower(strings.TrimSpace(name))

	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := s.ingredients[name]; ok {
		return id, nil
	}
	id := common.GenerateUUID()
	s.ingredients[name] = id
	return id, nil
}

// Create 實作 shopping.ListRepository
func (s *Store) Create(ctx context.Context, list *shopping.GroceryList) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.lists[list.ID]; ok {
		return fmt.Errorf("list %s: %w", list.ID, shopping.ErrConflict)
	}
	s.lists[list.ID] = cloneList(list)

	common.LogDebug("Grocery list stored",
		zap.String("list_id", list.ID),
		zap.Int("items", len(list.Items)),
	)
	return nil
}

// Get 實作 shopping.ListRepository
func (s *Store) Get(ctx context.Context, householdID, listID string) (*shopping.GroceryList, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list, ok := s.lists[listID]
	if !ok || list.HouseholdID != householdID {
		return nil, fmt.Errorf("list %s: %w", listID, shopping.ErrNotFound)
	}
	return cloneList(list), nil
}

// ListByHousehold 實作 shopping.ListRepository
func (s *Store) ListByHousehold(ctx context.Context, householdID string) ([]shopping.GroceryList, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]shopping.GroceryList, 0)
	for _, l := range s.lists {
		if l.HouseholdID == householdID {
			out = append(out, *cloneList(l))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// Delete 實作 shopping.ListRepository
func (s *Store) Delete(ctx context.Context, householdID, listID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	list, ok := s.lists[listID]
	if !ok || list.HouseholdID != householdID {
		return fmt.Errorf("list %s: %w", listID, shopping.ErrNotFound)
	}
	delete(s.lists, listID)
	return nil
}

// DeleteItem 實作 shopping.ListRepository
func (s *Store) DeleteItem(ctx context.Context, listID, itemID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	list, ok := s.lists[listID]
	if !ok {
		return fmt.Errorf("list %s: %w", listID, shopping.ErrNotFound)
	}
	for i := range list.Items {
		if list.Items[i].ID == itemID {
			list.Items = append(list.Items[:i], list.Items[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("item %s: %w", itemID, shopping.ErrNotFound)
}

// TogglePurchased 實作 shopping.ListRepository，在鎖內完成讀取與寫回
func (s *Store) TogglePurchased(ctx context.Context, listID, itemID, actorID string, now time.Time) (*grocery.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list, ok := s.lists[listID]
	if !ok {
		return nil, fmt.Errorf("list %s: %w", listID, shopping.ErrNotFound)
	}
	for i := range list.Items {
		if list.Items[i].ID == itemID {
			list.Items[i].TogglePurchased(actorID, now)
			item := cloneItem(list.Items[i])
			return &item, nil
		}
	}
	return nil, fmt.Errorf("item %s: %w", itemID, shopping.ErrNotFound)
}

func cloneList(l *shopping.GroceryList) *shopping.GroceryList {
	cp := *l
	cp.Items = make([]grocery.Item, len(l.Items))
	for i, it := range l.Items {
		cp.Items[i] = cloneItem(it)
	}
	return &cp
}

func cloneItem(it grocery.Item) grocery.Item {
	if it.PurchasedBy != nil {
		by := *it.PurchasedBy
		it.PurchasedBy = &by
	}
	if it.PurchasedAt != nil {
		at := *it.PurchasedAt
		it.PurchasedAt = &at
	}
	return it
}
