package grocery

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// OtherCategoryName 未匹配任何分類時使用的分類名稱
const OtherCategoryName = "Other"

// Category 購物分類
// 分類清單由上而下比對，順序即優先權
type Category struct {
	Name     string   `json:"name" yaml:"name"`
	Keywords []string `json:"keywords" yaml:"keywords"`
	Color    string   `json:"color" yaml:"color"`
	Icon     string   `json:"icon" yaml:"icon"`
}

// Matches 名稱是否包含任一關鍵字（不分大小寫的子字串比對）
func (c Category) Matches(name string) bool {
	name = strings.ToLower(name)
	for _, kw := range c.Keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" {
			continue
		}
		if strings.Contains(name, kw) {
			return true
		}
	}
	return false
}

// OtherCategory 兜底分類（沒有關鍵字）
var OtherCategory = Category{
	Name:  OtherCategoryName,
	Color: "gray",
	Icon:  "🛒",
}

// DefaultCategories 預設分類清單
func DefaultCategories() []Category {
	return []Category{
		{
			Name:  "Produce",
			Color: "green",
			Icon:  "🥬",
			Keywords: []string{
				"apple", "banana", "orange", "lemon", "lime", "berry", "grape", "melon", "avocado",
				"tomato", "potato", "onion", "garlic", "carrot", "lettuce", "spinach", "kale",
				"cabbage", "broccoli", "cauliflower", "cucumber", "zucchini", "eggplant", "mushroom",
				"celery", "bell pepper", "ginger", "herb", "parsley", "cilantro", "basil", "scallion",
			},
		},
		{
			Name:  "Meat & Seafood",
			Color: "red",
			Icon:  "🥩",
			Keywords: []string{
				"chicken", "beef", "pork", "lamb", "turkey", "bacon", "sausage", "ham", "steak",
				"mince", "fish", "salmon", "tuna", "cod", "shrimp", "prawn",
			},
		},
		{
			Name:  "Dairy & Eggs",
			Color: "yellow",
			Icon:  "🧀",
			Keywords: []string{
				"milk", "cheese", "butter", "yogurt", "yoghurt", "cream", "egg",
			},
		},
		{
			Name:  "Bakery",
			Color: "orange",
			Icon:  "🍞",
			Keywords: []string{
				"bread", "bagel", "bun", "roll", "tortilla", "pita", "croissant", "baguette",
			},
		},
		{
			Name:  "Pantry",
			Color: "brown",
			Icon:  "🥫",
			Keywords: []string{
				"flour", "sugar", "rice", "pasta", "noodle", "oat", "bean", "lentil", "oil",
				"vinegar", "can", "stock", "broth", "honey", "nut", "cereal",
			},
		},
		{
			Name:  "Frozen",
			Color: "blue",
			Icon:  "🧊",
			Keywords: []string{
				"frozen", "popsicle", "peas",
			},
		},
		{
			Name:  "Beverages",
			Color: "teal",
			Icon:  "🥤",
			Keywords: []string{
				"juice", "coffee", "tea", "water", "soda", "wine", "beer",
			},
		},
		{
			Name:  "Spices & Condiments",
			Color: "purple",
			Icon:  "🧂",
			Keywords: []string{
				"salt", "pepper", "spice", "cumin", "paprika", "cinnamon", "oregano", "thyme",
				"sauce", "ketchup", "mustard", "mayo",
			},
		},
	}
}

// categoryFile YAML 分類設定檔格式
type categoryFile struct {
	Categories []Category `yaml:"categories"`
}

// LoadCategories 從 YAML 檔載入分類清單，路徑為空時回傳預設清單
func LoadCategories(path string) ([]Category, error) {
	if path == "" {
		return DefaultCategories(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read category file: %w", err)
	}

	var file categoryFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse category file: %w", err)
	}

	if err := validateCategories(file.Categories); err != nil {
		return nil, fmt.Errorf("invalid category file %s: %w", path, err)
	}
	return file.Categories, nil
}

func validateCategories(categories []Category) error {
	if len(categories) == 0 {
		return fmt.Errorf("no categories defined")
	}

	seen := make(map[string]bool, len(categories))
	for i, c := range categories {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			return fmt.Errorf("category %d has no name", i)
		}
		if strings.EqualFold(name, OtherCategoryName) {
			return fmt.Errorf("category name %q is reserved", OtherCategoryName)
		}
		if seen[strings.ToLower(name)] {
			return fmt.Errorf("duplicate category %q", name)
		}
		seen[strings.ToLower(name)] = true
	}
	return nil
}

// Bucket 分類後的項目群組
type Bucket struct {
	Category Category `json:"category"`
	Items    []Item   `json:"items"`
}

// Categorized 分類結果，Buckets 依分類清單順序排列
// 宣告的分類一律存在（可能為空），Other 只在有項目時出現於最後
type Categorized struct {
	Buckets []Bucket `json:"buckets"`
}

// Bucket 依名稱取得群組
func (c Categorized) Bucket(name string) (Bucket, bool) {
	for _, b := range c.Buckets {
		if b.Category.Name == name {
			return b, true
		}
	}
	return Bucket{}, false
}

// NonEmpty 回傳有項目的群組
func (c Categorized) NonEmpty() []Bucket {
	out := make([]Bucket, 0, len(c.Buckets))
	for _, b := range c.Buckets {
		if len(b.Items) > 0 {
			out = append(out, b)
		}
	}
	return out
}

// Categorize 依關鍵字將項目分類，第一個命中的分類勝出
func Categorize(items []Item, categories []Category) Categorized {
	buckets := make([]Bucket, len(categories))
	for i, c := range categories {
		buckets[i] = Bucket{Category: c, Items: []Item{}}
	}
	other := Bucket{Category: OtherCategory, Items: []Item{}}

	for _, item := range items {
		placed := false
		for i := range categories {
			if categories[i].Matches(item.Name) {
				buckets[i].Items = append(buckets[i].Items, item)
				placed = true
				break
			}
		}
		if !placed {
			other.Items = append(other.Items, item)
		}
	}

	for i := range buckets {
		SortItems(buckets[i].Items)
	}
	if len(other.Items) > 0 {
		SortItems(other.Items)
		buckets = append(buckets, other)
	}

	return Categorized{Buckets: buckets}
}
