package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// BillRefs is the ordered list of bill ids a customer has purchased,
// stored as a jsonb column.
type BillRefs []string

func (b BillRefs) Value() (driver.Value, error) {
	if b == nil {
		return "[]", nil
	}
	data, err := json.Marshal(b)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func (b *BillRefs) Scan(value interface{}) error {
	if value == nil {
		*b = BillRefs{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, b)
	case string:
		return json.Unmarshal([]byte(v), b)
	default:
		return errors.New("unsupported type for BillRefs")
	}
}

type Customer struct {
	BaseModel
	Name   string  `gorm:"type:varchar(255);not null" json:"name" validate:"required"`
	Mobile string  `gorm:"type:varchar(20);uniqueIndex;not null" json:"mobile" validate:"required"`
	Email  *string `gorm:"type:varchar(255)" json:"email,omitempty"`

	// Purchase tracking. Invariant: len(PurchaseHistory) == PurchaseCount.
	PurchaseHistory  BillRefs   `gorm:"type:jsonb;default:'[]'" json:"purchase_history"`
	PurchaseCount    int        `gorm:"default:0" json:"purchase_count"`
	LastPurchaseDate *time.Time `json:"last_purchase_date,omitempty"`
}

// CustomerInfo is the snapshot a bill request carries. The mobile is the
// identity key; name/email are only used when the customer is created.
type CustomerInfo struct {
	Name   string  `json:"name" validate:"required"`
	Mobile string  `json:"mobile" validate:"required"`
	Email  *string `json:"email,omitempty"`
}
