package grocery

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

const (
	// DownloadFilename 下載檔案名稱
	DownloadFilename = "grocery_list.txt"
	// DownloadContentType 下載檔案 MIME 類型
	DownloadContentType = "text/plain; charset=utf-8"

	// SpreadsheetFilename 試算表檔案名稱
	SpreadsheetFilename = "grocery_list.xlsx"
	// SpreadsheetContentType 試算表 MIME 類型
	SpreadsheetContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	checkMark   = "✓"
	uncheckMark = "☐"
	bullet      = "•"
	times       = "×"
)

// FormatQuantity 數量轉字串，最多保留兩位小數並去除多餘的 0
func FormatQuantity(q float64) string {
	rounded := math.Round(q*100) / 100
	return strconv.FormatFloat(rounded, 'f', -1, 64)
}

// formatItemLine 單一項目的複製文字格式
func formatItemLine(item Item) string {
	var sb strings.Builder
	sb.WriteString(bullet)
	sb.WriteString(" ")
	if item.Purchased {
		sb.WriteString(checkMark)
		sb.WriteString(" ")
	}
	sb.WriteString(FormatQuantity(item.Quantity))
	if item.HasUnit() {
		sb.WriteString(" ")
		sb.WriteString(item.Unit)
	}
	sb.WriteString(" ")
	sb.WriteString(times)
	sb.WriteString(" ")
	sb.WriteString(item.Name)
	return sb.String()
}

// FormatPlain 每個項目一行，依合併後的順序輸出
func FormatPlain(items []Item) string {
	lines := make([]string, 0, len(items))
	for _, item := range items {
		lines = append(lines, formatItemLine(item))
	}
	return strings.Join(lines, "\n")
}

// FormatCategorized 依分類輸出，每個非空分類先輸出標題行，分類之間空一行
func FormatCategorized(c Categorized) string {
	sections := make([]string, 0, len(c.Buckets))
	for _, b := range c.NonEmpty() {
		lines := make([]string, 0, len(b.Items)+1)
		lines = append(lines, b.Category.Icon+" "+b.Category.Name)
		for _, item := range b.Items {
			lines = append(lines, formatItemLine(item))
		}
		sections = append(sections, strings.Join(lines, "\n"))
	}
	return strings.Join(sections, "\n\n")
}

// FormatDownload 下載用的 tab 分隔文字，每行一個項目，無標題
func FormatDownload(items []Item) string {
	var sb strings.Builder
	for _, item := range items {
		if item.Purchased {
			sb.WriteString(checkMark)
		} else {
			sb.WriteString(uncheckMark)
		}
		sb.WriteString(" ")
		sb.WriteString(FormatQuantity(item.Quantity))
		sb.WriteString("\t")
		sb.WriteString(item.Name)
		if item.HasUnit() {
			sb.WriteString(" (")
			sb.WriteString(item.Unit)
			sb.WriteString(")")
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// FormatSpreadsheet 輸出 xlsx 試算表
func FormatSpreadsheet(c Categorized) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())

	header := []interface{}{"Category", "Item", "Quantity", "Unit", "Purchased"}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}

	row := 2
	for _, b := range c.NonEmpty() {
		for _, item := range b.Items {
			purchased := ""
			if item.Purchased {
				purchased = checkMark
			}
			values := []interface{}{
				b.Category.Name,
				item.Name,
				item.Quantity,
				item.Unit,
				purchased,
			}
			cell, err := excelize.CoordinatesToCellName(1, row)
			if err != nil {
				return nil, fmt.Errorf("failed to resolve cell: %w", err)
			}
			if err := f.SetSheetRow(sheet, cell, &values); err != nil {
				return nil, fmt.Errorf("failed to write row %d: %w", row, err)
			}
			row++
		}
	}

	buf := &bytes.Buffer{}
	if err := f.Write(buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
