package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Bill is immutable once persisted. Its ID doubles as the idempotency key
// for replays from offline clients.
type Bill struct {
	ID string `gorm:"type:varchar(64);primaryKey" json:"id"`

	// Denormalized customer snapshot so historical bills stay stable even
	// if the customer record changes later. Empty when the sale was anonymous.
	CustomerName   string  `gorm:"type:varchar(255)" json:"customer_name,omitempty"`
	CustomerMobile string  `gorm:"type:varchar(20);index" json:"customer_mobile,omitempty"`
	CustomerEmail  *string `gorm:"type:varchar(255)" json:"customer_email,omitempty"`

	Items       []BillItem      `gorm:"foreignKey:BillID;constraint:OnDelete:CASCADE" json:"items"`
	TotalAmount decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"total_amount"`

	AddedBy        string    `gorm:"type:varchar(255);not null" json:"added_by"`
	PDFAccessToken string    `gorm:"type:varchar(128);not null" json:"pdf_access_token"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// BillItem is a value owned by its Bill; UnitPriceAtSale is the server-side
// price snapshot taken at transaction time, never client supplied.
type BillItem struct {
	ID              uint            `gorm:"primaryKey;autoIncrement" json:"-"`
	BillID          string          `gorm:"type:varchar(64);index;not null" json:"-"`
	ProductID       uuid.UUID       `gorm:"type:uuid;not null" json:"product_id"`
	ProductName     string          `gorm:"type:varchar(255)" json:"product_name"`
	Quantity        int             `gorm:"not null" json:"quantity"`
	UnitPriceAtSale decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"unit_price_at_sale"`
}
