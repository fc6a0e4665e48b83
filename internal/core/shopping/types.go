package shopping

import (
	"context"
	"errors"
	"strings"
	"time"

	"meal-planner/internal/core/grocery"
)

// 儲存層回傳的錯誤，由服務層轉為 API 錯誤
var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")
)

// Meal 排入行事曆的一餐
type Meal struct {
	ID                string
	HouseholdID       string
	Date              time.Time
	Title             string
	Notes             string
	RecipeID          *string
	RecipeIngredients string
}

// IngredientText 食材文字：有連結食譜且食譜食材非空時用食譜，否則用備註
func (m Meal) IngredientText() string {
	if strings.TrimSpace(m.RecipeIngredients) != "" {
		return m.RecipeIngredients
	}
	return m.Notes
}

// GroceryList 某段日期產生的購物清單快照
type GroceryList struct {
	ID          string         `json:"id"`
	HouseholdID string         `json:"household_id"`
	StartDate   time.Time      `json:"start_date"`
	EndDate     time.Time      `json:"end_date"`
	Items       []grocery.Item `json:"items"`
	CreatedBy   string         `json:"created_by"`
	CreatedAt   time.Time      `json:"created_at"`
}

// Item 依 ID 取得項目
func (l *GroceryList) Item(itemID string) (grocery.Item, bool) {
	for _, it := range l.Items {
		if it.ID == itemID {
			return it, true
		}
	}
	return grocery.Item{}, false
}

// CategorizedList 清單加上分類結果
type CategorizedList struct {
	List        *GroceryList        `json:"list"`
	Categorized grocery.Categorized `json:"categorized"`
}

// Preview 不落地的解析結果
type Preview struct {
	Items       []grocery.Item      `json:"items"`
	Categorized grocery.Categorized `json:"categorized"`
}

// Export 匯出檔案
type Export struct {
	Filename    string
	ContentType string
	Data        []byte
}

// 家庭事件類型
const (
	EventListCreated = "grocery_list.created"
	EventListDeleted = "grocery_list.deleted"
	EventItemUpdated = "grocery_item.updated"
	EventItemDeleted = "grocery_item.deleted"
)

// Event 推送給同一家庭其他成員的事件
type Event struct {
	Type        string        `json:"type"`
	HouseholdID string        `json:"household_id"`
	ListID      string        `json:"list_id"`
	ItemID      string        `json:"item_id,omitempty"`
	Item        *grocery.Item `json:"item,omitempty"`
	List        *GroceryList  `json:"list,omitempty"`
	ActorID     string        `json:"actor_id"`
	OccurredAt  time.Time     `json:"occurred_at"`
}

// MealRepository 讀取日期範圍內帶有食材文字的餐點
type MealRepository interface {
	ListWithIngredients(ctx context.Context, householdID string, from, to time.Time) ([]Meal, error)
}

// ListRepository 購物清單儲存
// TogglePurchased 必須是單一原子操作
type ListRepository interface {
	Create(ctx context.Context, list *GroceryList) error
	Get(ctx context.Context, householdID, listID string) (*GroceryList, error)
	ListByHousehold(ctx context.Context, householdID string) ([]GroceryList, error)
	Delete(ctx context.Context, householdID, listID string) error
	DeleteItem(ctx context.Context, listID, itemID string) error
	TogglePurchased(ctx context.Context, listID, itemID, actorID string, now time.Time) (*grocery.Item, error)
}

// IngredientCatalog 食材目錄，依小寫名稱 find-or-create
type IngredientCatalog interface {
	FindOrCreate(ctx context.Context, name string) (string, error)
}

// MembershipChecker 家庭成員檢查
type MembershipChecker interface {
	IsMember(ctx context.Context, householdID, memberID string) (bool, error)
}

// TxManager 交易管理
type TxManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Publisher 家庭事件發布
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// Recorder 業務指標
type Recorder interface {
	ListGenerated(items int)
	ItemToggled(purchased bool)
	PublishFailed(eventType string)
}

type nopRecorder struct{}

func (nopRecorder) ListGenerated(int)    {}
func (nopRecorder) ItemToggled(bool)     {}
func (nopRecorder) PublishFailed(string) {}
