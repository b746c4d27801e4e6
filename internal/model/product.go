package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	BaseModel
	SKU          string          `gorm:"type:varchar(50);uniqueIndex;not null" json:"sku" validate:"required"`
	Name         string          `gorm:"type:varchar(255);not null" json:"name" validate:"required"`
	Category     string          `gorm:"type:varchar(100);index" json:"category"`
	Unit         string          `gorm:"type:varchar(20)" json:"unit"`
	UnitPrice    decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"unit_price"`
	Quantity     int             `gorm:"not null;default:0" json:"quantity"`
	ReorderLevel int             `gorm:"default:0" json:"reorder_level"`
	ExpiryDate   *time.Time      `gorm:"type:date" json:"expiry_date,omitempty"`
}

// Sellable reports whether the product can be priced onto a bill.
func (p *Product) Sellable() bool {
	return p.UnitPrice.IsPositive()
}
