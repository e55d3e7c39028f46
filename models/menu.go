package models

// MenuCategory groups catalog items on the order-entry screen.
type MenuCategory string

const (
	CategoryAppetizer MenuCategory = "appetizer"
	CategoryMain      MenuCategory = "main"
	CategoryDessert   MenuCategory = "dessert"
	CategoryDrink     MenuCategory = "drink"
	CategorySide      MenuCategory = "side"
)

// MenuItem is a catalog entry consulted when composing orders. The
// catalog itself is managed elsewhere; this system only reads it.
type MenuItem struct {
	ID        string       `json:"product_id"`
	Name      string       `json:"name"`
	Category  MenuCategory `json:"category"`
	Price     float64      `json:"price"`
	Available bool         `json:"available"`
}
