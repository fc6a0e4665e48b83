package grocery

import "sort"

// Consolidate 依標準鍵合併解析結果並加總數量
//
// 輸出依名稱（不分大小寫）遞增排序，名稱相同時以標準鍵排序，
// 因此同一組輸入不論順序都會得到相同結果。
func Consolidate(entries []ParsedEntry) []Item {
	index := make(map[string]int, len(entries))
	items := make([]Item, 0, len(entries))

	for _, e := range entries {
		key := e.Key()
		if pos, ok := index[key]; ok {
			items[pos].Quantity += e.Quantity
			continue
		}
		index[key] = len(items)
		items = append(items, Item{
			ID:       key,
			Name:     e.Name,
			Quantity: e.Quantity,
			Unit:     e.Unit,
		})
	}

	SortItems(items)
	return items
}

// SortItems 依名稱排序（穩定排序）
// 同名項目依 canonical key 排序而非插入順序，
// 因此 "2 kg potatoes" 與 "500 g potatoes" 會得到 potatoes|g 在前。
func SortItems(items []Item) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := sortKey(items[i].Name), sortKey(items[j].Name)
		if a != b {
			return a < b
		}
		return items[i].ID < items[j].ID
	})
}
