package domain

import "time"

// LineItem is one cart entry: a product snapshot and its quantity.
// A cart holds at most one line item per product id.
type LineItem struct {
	Product  Product `json:"product" bson:"product"`
	Quantity int     `json:"quantity" bson:"quantity"`
}

func (li LineItem) Subtotal() float64 {
	return li.Product.Price * float64(li.Quantity)
}

// Cart is the persisted representation of one session's cart.
type Cart struct {
	SessionID string     `bson:"session_id"`
	Items     []LineItem `bson:"items"`
	CreatedAt time.Time  `bson:"created_at"`
	UpdatedAt time.Time  `bson:"updated_at"`
}
