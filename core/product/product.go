package product

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID          string          `json:"id" bson:"_id"`
	Name        string          `json:"name" bson:"name"`
	Price       decimal.Decimal `json:"price" bson:"price"`
	PhotoURL    string          `json:"photoUrl" bson:"photo_url"`
	Description string          `json:"description" bson:"description"`
	CreatedBy   *string         `json:"createdBy,omitempty" bson:"created_by,omitempty"`
	CreatedAt   time.Time       `json:"createdAt" bson:"created_at"`
	UpdatedAt   time.Time       `json:"updatedAt" bson:"updated_at"`
	Version     int             `json:"-" bson:"version"`
}

type ProductNew struct {
	Name        string          `json:"name" validate:"required"`
	Price       decimal.Decimal `json:"price"`
	PhotoURL    string          `json:"photoUrl" validate:"required,url"`
	Description string          `json:"description" validate:"required"`
}

type ProductUp struct {
	Name        *string          `json:"name"`
	Price       *decimal.Decimal `json:"price"`
	PhotoURL    *string          `json:"photoUrl" validate:"omitempty,url"`
	Description *string          `json:"description"`
}
