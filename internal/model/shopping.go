package model

// IngredientLine is one ingredient quantity of one recipe in a user's cart.
type IngredientLine struct {
	RecipeID        int64
	Name            string
	MeasurementUnit string
	Amount          int
}

// ShoppingItem is one aggregated line of a shopping list.
type ShoppingItem struct {
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
	Amount          int    `json:"amount"`
}
