package model

import "github.com/google/uuid"

type MovementType string

const (
	MovementSale    MovementType = "SALE"
	MovementRestock MovementType = "RESTOCK"
	MovementSyncSet MovementType = "SYNC_SET"
)

// StockMovement is the audit trail of every quantity change the ledger
// applies. SALE rows carry the bill that consumed the stock; SYNC_SET rows
// record the absolute quantity a client reconciled to.
type StockMovement struct {
	BaseModel
	ProductID uuid.UUID    `gorm:"type:uuid;not null;index" json:"product_id"`
	Product   Product      `json:"product,omitempty" validate:"-"` // Relation - skip validation
	Type      MovementType `gorm:"type:varchar(10);not null" json:"type"`
	Quantity  int          `gorm:"not null" json:"quantity"`
	BillID    *string      `gorm:"type:varchar(64);index" json:"bill_id,omitempty"`
	Note      string       `json:"note"`
}
