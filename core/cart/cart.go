package cart

import (
	"time"

	"github.com/shopspring/decimal"
)

// Cart is the per-user document. Version backs the conditional writes that
// keep concurrent mutations from losing updates.
type Cart struct {
	ID        string          `json:"id,omitempty" bson:"_id"`
	UserID    string          `json:"userId" bson:"user_id"`
	Items     []Item          `json:"items" bson:"items"`
	Total     decimal.Decimal `json:"total" bson:"total"`
	UpdatedAt time.Time       `json:"updatedAt" bson:"updated_at"`
	Version   int             `json:"-" bson:"version"`
}

// Item is one line of a cart. UnitPrice and ProductName are snapshots taken
// when the item was added and are never refreshed from the catalog.
type Item struct {
	ProductID   string          `json:"productId" bson:"product_id"`
	Quantity    int             `json:"quantity" bson:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice" bson:"unit_price"`
	ProductName string          `json:"productName" bson:"product_name"`
}

type ItemNew struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,gt=0"`
}

// QuantityUp sets an absolute quantity. Zero is invalid input here, not an
// implicit remove.
type QuantityUp struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,gt=0"`
}

// Empty is the canonical representation of a user without a stored cart.
func Empty(userID string) Cart {
	return Cart{
		UserID: userID,
		Items:  []Item{},
		Total:  decimal.Zero,
	}
}

// ComputeTotal sums unitPrice×quantity over all items with exact decimal
// arithmetic. Every mutation stores this value, never an increment.
func (c Cart) ComputeTotal() decimal.Decimal {
	total := decimal.Zero
	for _, it := range c.Items {
		total = total.Add(it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return total
}

func (c Cart) itemIndex(productID string) int {
	for i, it := range c.Items {
		if it.ProductID == productID {
			return i
		}
	}
	return -1
}
