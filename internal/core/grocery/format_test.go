package grocery

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleItems(t *testing.T) []Item {
	t.Helper()
	items := ParseIngredients("2 kg potatoes\n1.5 cups flour\n3 eggs")
	require.Len(t, items, 3)
	require.Equal(t, "eggs", items[0].Name)
	items[0].TogglePurchased("member-1", time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	return items
}

func TestFormatQuantity(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "2", FormatQuantity(2))
	assert.Equal(t, "3.5", FormatQuantity(3.5))
	assert.Equal(t, "0.3", FormatQuantity(0.1+0.2))
	assert.Equal(t, "0.33", FormatQuantity(1.0/3.0))
	assert.Equal(t, "500", FormatQuantity(500))
}

func TestFormatPlain(t *testing.T) {
	t.Parallel()

	want := "• ✓ 3 × eggs\n" +
		"• 1.5 cups × flour\n" +
		"• 2 kg × potatoes"
	assert.Equal(t, want, FormatPlain(sampleItems(t)))
	assert.Equal(t, "", FormatPlain(nil))
}

func TestFormatCategorized(t *testing.T) {
	t.Parallel()

	got := FormatCategorized(Categorize(sampleItems(t), DefaultCategories()))
	want := "🥬 Produce\n" +
		"• 2 kg × potatoes\n" +
		"\n" +
		"🧀 Dairy & Eggs\n" +
		"• ✓ 3 × eggs\n" +
		"\n" +
		"🥫 Pantry\n" +
		"• 1.5 cups × flour"
	assert.Equal(t, want, got)

	withOther := FormatCategorized(Categorize(ParseIngredients("widgets"), DefaultCategories()))
	assert.Equal(t, "🛒 Other\n• 1 × widgets", withOther)
}

func TestFormatDownload(t *testing.T) {
	t.Parallel()

	want := "✓ 3\teggs\n" +
		"☐ 1.5\tflour (cups)\n" +
		"☐ 2\tpotatoes (kg)\n"
	assert.Equal(t, want, FormatDownload(sampleItems(t)))
	assert.Equal(t, "", FormatDownload(nil))
	assert.Equal(t, "grocery_list.txt", DownloadFilename)
}

func TestFormatSpreadsheet(t *testing.T) {
	t.Parallel()

	data, err := FormatSpreadsheet(Categorize(sampleItems(t), DefaultCategories()))
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(f.GetSheetName(f.GetActiveSheetIndex()))
	require.NoError(t, err)
	require.Len(t, rows, 4)

	assert.Equal(t, []string{"Category", "Item", "Quantity", "Unit", "Purchased"}, rows[0])
	assert.Equal(t, []string{"Produce", "potatoes", "2", "kg"}, rows[1][:4])
	assert.Equal(t, []string{"Dairy & Eggs", "eggs", "3"}, rows[2][:3])
	assert.Equal(t, "✓", rows[2][4])
	assert.Equal(t, []string{"Pantry", "flour", "1.5", "cups"}, rows[3][:4])
}
