package service

import (
	"fmt"

	"github.com/google/uuid"
)

// SyncInventoryUpdate carries a client's authoritative on-hand count for
// one product.
type SyncInventoryUpdate struct {
	ProductID uuid.UUID `json:"product_id" validate:"uuid_required"`
	Quantity  int       `json:"quantity"`
}

type SyncRequest struct {
	Bills            []CreateBillRequest   `json:"bills"`
	InventoryUpdates []SyncInventoryUpdate `json:"inventory_updates"`
}

type SyncResult struct {
	ProcessedBills    []string `json:"processed_bills"`
	ProcessedProducts []string `json:"processed_products"`
	Errors            []string `json:"errors"`
	Message           string   `json:"message"`
}

// SyncService replays a batch of bills and inventory counts produced by
// disconnected POS clients. Items are processed strictly sequentially and
// independently: a failing item becomes an error string, never an aborted
// batch, and output order follows input order.
type SyncService interface {
	Reconcile(req *SyncRequest, actor string) *SyncResult
}

type syncService struct {
	billing   BillingService
	inventory InventoryService
}

func NewSyncService(billing BillingService, inventory InventoryService) SyncService {
	return &syncService{
		billing:   billing,
		inventory: inventory,
	}
}

func (s *syncService) Reconcile(req *SyncRequest, actor string) *SyncResult {
	result := &SyncResult{
		ProcessedBills:    []string{},
		ProcessedProducts: []string{},
		Errors:            []string{},
	}

	for i := range req.Bills {
		bill := &req.Bills[i]
		if bill.ID == "" {
			result.Errors = append(result.Errors, "Bill: missing id")
			continue
		}
		if _, err := s.billing.CreateBill(bill, actor); err != nil {
			// A known id means the bill was already applied; the replay
			// changed no state, which is the point of the idempotency key.
			// It is still reported so the client can reconcile its queue.
			result.Errors = append(result.Errors, fmt.Sprintf("Bill %s: %s", bill.ID, err.Error()))
			continue
		}
		result.ProcessedBills = append(result.ProcessedBills, bill.ID)
	}

	for _, update := range req.InventoryUpdates {
		if err := s.inventory.SetQuantity(update.ProductID, update.Quantity, actor); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Product %s: %s", update.ProductID, err.Error()))
			continue
		}
		result.ProcessedProducts = append(result.ProcessedProducts, update.ProductID.String())
	}

	if len(result.Errors) == 0 {
		result.Message = "Sync completed successfully"
	} else {
		result.Message = "Sync completed with errors"
	}
	return result
}
