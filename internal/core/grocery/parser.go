package grocery

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	// 數量 + 單位 + 名稱，至少三個以空白分隔的片段
	quantityUnitNamePattern = regexp.MustCompile(`^(\d+(?:\.\d+)?)\s+(\S+)\s+(.+)$`)
	// 數量 + 名稱，恰好兩個片段
	quantityNamePattern = regexp.MustCompile(`^(\d+(?:\.\d+)?)\s+(\S+)$`)
)

// ParseLine 解析單行食材
//
// 規則依序套用，每行只會命中一條：
//  1. "2 kg potatoes" → 數量 2、單位 kg、名稱 potatoes
//  2. "3 eggs"        → 數量 3、名稱 eggs、無單位
//  3. 其餘            → 整行（小寫）為名稱、數量 1
//
// 單位只依片段數判斷，"2 large onions" 會得到單位 large。
// 任何 Unicode 空白（含不換行空白）都視為片段分隔，連續空白合併為一個。
func ParseLine(line string) ParsedEntry {
	line = strings.Join(strings.Fields(line), " ")

	if m := quantityUnitNamePattern.FindStringSubmatch(line); m != nil {
		if qty, err := strconv.ParseFloat(m[1], 64); err == nil {
			return ParsedEntry{
				Name:     strings.ToLower(strings.TrimSpace(m[3])),
				Quantity: qty,
				Unit:     strings.ToLower(m[2]),
			}
		}
	}

	if m := quantityNamePattern.FindStringSubmatch(line); m != nil {
		if qty, err := strconv.ParseFloat(m[1], 64); err == nil {
			return ParsedEntry{
				Name:     strings.ToLower(m[2]),
				Quantity: qty,
			}
		}
	}

	return ParsedEntry{
		Name:     strings.ToLower(line),
		Quantity: 1,
	}
}

// ParseLines 逐行解析
func ParseLines(lines []string) []ParsedEntry {
	entries := make([]ParsedEntry, 0, len(lines))
	for _, line := range lines {
		entries = append(entries, ParseLine(line))
	}
	return entries
}

// ParseIngredients 將原始食材文字轉為合併、排序後的購物項目
func ParseIngredients(text string) []Item {
	return Consolidate(ParseLines(SplitLines(text)))
}
