package store

// Line is one row in the cart: a product plus the shopper's variant
// selection and quantity. Price and inventory are snapshots taken when the
// line was created, never re-fetched.
type Line struct {
	ID            string   `json:"id"`
	ProductID     string   `json:"product_id"`
	Name          string   `json:"name"`
	UnitPrice     float64  `json:"unit_price"`
	OriginalPrice *float64 `json:"original_price,omitempty"`
	Quantity      int      `json:"quantity"`
	SizeID        string   `json:"size_id,omitempty"`
	ColorID       string   `json:"color_id,omitempty"`
	MaterialID    string   `json:"material_id,omitempty"`
	Inventory     int      `json:"inventory"`
	Category      string   `json:"category"`
	Images        []string `json:"images,omitempty"`
}

// document is the shape persisted to the storage slot: the whole cart and
// the wishlist together, one JSON document.
type document struct {
	Lines    []Line   `json:"lines"`
	Wishlist []string `json:"wishlist"`
}
