// Package shoplist turns the ingredient quantities of a user's cart into a
// flat shopping list and renders it as text or PDF.
package shoplist

import (
	"bufio"
	"fmt"
	"io"
	"sort"

	"foodgram/internal/model"
)

// key groups lines by display name and unit, so two ingredient rows that
// share both collapse into a single shopping line.
type key struct {
	name string
	unit string
}

// Aggregate sums amounts per (name, unit) and returns the groups sorted by
// name, then unit. An empty input yields an empty, non-nil list.
func Aggregate(lines []model.IngredientLine) []model.ShoppingItem {
	totals := make(map[key]int, len(lines))
	for _, l := range lines {
		totals[key{name: l.Name, unit: l.MeasurementUnit}] += l.Amount
	}

	items := make([]model.ShoppingItem, 0, len(totals))
	for k, amount := range totals {
		items = append(items, model.ShoppingItem{
			Name:            k.name,
			MeasurementUnit: k.unit,
			Amount:          amount,
		})
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].Name != items[j].Name {
			return items[i].Name < items[j].Name
		}
		return items[i].MeasurementUnit < items[j].MeasurementUnit
	})

	return items
}

// FormatLine renders one item as "<name> (<unit>) — <amount>".
func FormatLine(item model.ShoppingItem) string {
	return fmt.Sprintf("%s (%s) — %d", item.Name, item.MeasurementUnit, item.Amount)
}

// RenderText writes one CRLF terminated line per item.
func RenderText(w io.Writer, items []model.ShoppingItem) error {
	bw := bufio.NewWriter(w)
	for _, item := range items {
		if _, err := bw.WriteString(FormatLine(item) + "\r\n"); err != nil {
			return fmt.Errorf("failed to write shopping list: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to write shopping list: %w", err)
	}
	return nil
}
