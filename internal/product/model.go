package product

// Product is the catalog snapshot handed to the cart when a line is created.
// Inventory is nil when the catalog does not report remaining stock.
type Product struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Price         float64  `json:"price"`
	OriginalPrice *float64 `json:"original_price,omitempty"`
	Inventory     *int     `json:"inventory,omitempty"`
	Category      string   `json:"category"`
	Images        []string `json:"images,omitempty"`
}

// Selection is the variant the shopper picked. Every axis is optional;
// an empty id means the axis was not selected.
type Selection struct {
	SizeID     string `json:"size_id,omitempty"`
	ColorID    string `json:"color_id,omitempty"`
	MaterialID string `json:"material_id,omitempty"`
}
