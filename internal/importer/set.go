package importer

import "foodgram/internal/model"

type ingredientKey struct {
	name string
	unit string
}

// ingredientSet deduplicates ingredients by (name, unit) and keeps first-seen order.
type ingredientSet struct {
	seen  map[ingredientKey]struct{}
	items []model.Ingredient
}

func newIngredientSet(capacity int) *ingredientSet {
	return &ingredientSet{
		seen:  make(map[ingredientKey]struct{}, capacity),
		items: make([]model.Ingredient, 0, capacity),
	}
}

// Add inserts item unless an equal one is already present. Reports whether it was added.
func (s *ingredientSet) Add(item model.Ingredient) bool {
	key := ingredientKey{name: item.Name, unit: item.MeasurementUnit}
	if _, exists := s.seen[key]; exists {
		return false
	}
	s.seen[key] = struct{}{}
	s.items = append(s.items, item)
	return true
}

func (s *ingredientSet) Size() int {
	return len(s.items)
}

// Items returns the ingredients in insertion order.
func (s *ingredientSet) Items() []model.Ingredient {
	return s.items
}
