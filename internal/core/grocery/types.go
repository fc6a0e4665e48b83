package grocery

import (
	"strings"
	"time"
)

// ParsedEntry 單行食材解析結果
type ParsedEntry struct {
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit,omitempty"` // 空字串表示沒有單位
}

// Key 回傳合併用的標準鍵
func (e ParsedEntry) Key() string {
	return CanonicalKey(e.Name, e.Unit)
}

// Item 合併後的購物項目
// ID 即為標準鍵（name 或 name|unit）
type Item struct {
	ID           string     `json:"id"`
	IngredientID string     `json:"ingredient_id,omitempty"`
	Name         string     `json:"name"`
	Quantity     float64    `json:"quantity"`
	Unit         string     `json:"unit,omitempty"`
	Purchased    bool       `json:"purchased"`
	PurchasedBy  *string    `json:"purchased_by,omitempty"`
	PurchasedAt  *time.Time `json:"purchased_at,omitempty"`
}

// HasUnit 是否帶有單位
func (i Item) HasUnit() bool {
	return i.Unit != ""
}

// TogglePurchased 切換購買狀態
// false → true 時記錄操作者與時間；true → false 時一併清除
func (i *Item) TogglePurchased(actor string, now time.Time) {
	if i.Purchased {
		i.Purchased = false
		i.PurchasedBy = nil
		i.PurchasedAt = nil
		return
	}

	by := actor
	at := now
	i.Purchased = true
	i.PurchasedBy = &by
	i.PurchasedAt = &at
}

// CanonicalKey 產生標準合併鍵
func CanonicalKey(name, unit string) string {
	name = strings.ToLower(name)
	if unit == "" {
		return name
	}
	return name + "|" + strings.ToLower(unit)
}

// sortKey 排序比較用的名稱
func sortKey(name string) string {
	return strings.ToLower(name)
}
