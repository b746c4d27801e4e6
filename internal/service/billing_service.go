package service

import (
	"crypto/rand"
	"encoding/hex"
	"errors"

	"go-retail-pos/internal/apperr"
	"go-retail-pos/internal/model"
	"go-retail-pos/internal/repository"
	"go-retail-pos/internal/ws"
	"go-retail-pos/pkg/validator"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type BillItemRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"uuid_required"`
	Quantity  int       `json:"qty" validate:"required,gt=0"`
}

type CreateBillRequest struct {
	// ID is optional; when present it acts as the idempotency key for
	// replays from offline clients.
	ID       string              `json:"id,omitempty"`
	Customer *model.CustomerInfo `json:"customer,omitempty"`
	Items    []BillItemRequest   `json:"items" validate:"required,min=1,dive"`
}

// BillingService orchestrates a single sale: authoritative pricing, stock
// reservation with all-or-nothing semantics, customer resolution and the
// durable bill record.
type BillingService interface {
	CreateBill(req *CreateBillRequest, actor string) (*model.Bill, error)
	GetBill(id string) (*model.Bill, error)
	ListBills(limit int) ([]model.Bill, error)
}

type billingService struct {
	billRepo  repository.BillRepository
	inventory InventoryService
	customers CustomerService
	hub       *ws.Hub
	log       *logrus.Logger
	now       nowFunc
}

func NewBillingService(bRepo repository.BillRepository, inventory InventoryService, customers CustomerService, hub *ws.Hub, log *logrus.Logger) BillingService {
	return &billingService{
		billRepo:  bRepo,
		inventory: inventory,
		customers: customers,
		hub:       hub,
		log:       log,
		now:       utcNow,
	}
}

func (s *billingService) CreateBill(req *CreateBillRequest, actor string) (*model.Bill, error) {
	// 1. Identify: fresh id, or reject a known idempotency key.
	billID := req.ID
	if billID == "" {
		billID = uuid.New().String()
	} else {
		exists, err := s.billRepo.Exists(billID)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, apperr.Newf(apperr.KindDuplicateResource, "bill %s already exists", billID)
		}
	}

	// 2. Validate items.
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return nil, apperr.New(apperr.KindInvalidArgument, errs[0].Message())
	}
	for _, item := range req.Items {
		if item.Quantity <= 0 {
			return nil, apperr.New(apperr.KindInvalidArgument, "item quantity must be greater than zero")
		}
	}

	// 3. Price & reserve: every lookup happens before any stock mutation,
	// so a missing or unsellable product aborts with nothing touched.
	items := make([]model.BillItem, 0, len(req.Items))
	totalAmount := decimal.Zero
	for _, item := range req.Items {
		product, err := s.inventory.GetProduct(item.ProductID)
		if err != nil {
			return nil, err
		}
		if !product.Sellable() {
			return nil, apperr.Newf(apperr.KindInvalidArgument, "product %s is not sellable", product.ID)
		}
		items = append(items, model.BillItem{
			BillID:          billID,
			ProductID:       product.ID,
			ProductName:     product.Name,
			Quantity:        item.Quantity,
			UnitPriceAtSale: product.UnitPrice,
		})
		totalAmount = totalAmount.Add(product.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}

	// 4. Commit stock, in order. A failed decrement rolls back the ones
	// already applied for this bill.
	for i, item := range items {
		if err := s.inventory.Decrement(item.ProductID, item.Quantity, &billID, actor); err != nil {
			return nil, s.abort(billID, items[:i], actor, err)
		}
	}

	// 5. Customer side effects, only when a snapshot was supplied.
	bill := &model.Bill{
		ID:          billID,
		Items:       items,
		TotalAmount: totalAmount,
		AddedBy:     actor,
	}
	if req.Customer != nil {
		customer, err := s.customers.FindOrCreate(req.Customer, actor)
		if err != nil {
			return nil, s.abort(billID, items, actor, err)
		}
		if err := s.customers.AddPurchase(customer.Mobile, billID); err != nil {
			return nil, s.abort(billID, items, actor, err)
		}
		bill.CustomerName = customer.Name
		bill.CustomerMobile = customer.Mobile
		bill.CustomerEmail = customer.Email
	}

	// 6. Finalize.
	bill.PDFAccessToken = newPDFAccessToken()
	bill.CreatedAt = s.now()

	if err := s.billRepo.Create(bill); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			err = apperr.Newf(apperr.KindDuplicateResource, "bill %s already exists", billID)
		}
		return nil, s.abort(billID, items, actor, err)
	}

	s.hub.Publish(map[string]interface{}{
		"type": "bill_created",
		"bill": map[string]interface{}{
			"id":           bill.ID,
			"total_amount": bill.TotalAmount,
			"added_by":     bill.AddedBy,
		},
	})

	return bill, nil
}

func (s *billingService) GetBill(id string) (*model.Bill, error) {
	bill, err := s.billRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Newf(apperr.KindNotFound, "bill %s not found", id)
		}
		return nil, err
	}
	return bill, nil
}

func (s *billingService) ListBills(limit int) ([]model.Bill, error) {
	if limit <= 0 {
		limit = 100
	}
	return s.billRepo.FindAll(limit)
}

// abort restocks the quantities already decremented for a failed bill and
// returns the causing error. A failed restock leaves stock short; that is
// logged and escalated as a data integrity alert instead of the original
// error, never silently dropped.
func (s *billingService) abort(billID string, items []model.BillItem, actor string, cause error) error {
	dataIntegrity := false
	for _, item := range items {
		if err := s.inventory.Restock(item.ProductID, item.Quantity, actor); err != nil {
			dataIntegrity = true
			s.log.WithFields(logrus.Fields{
				"module":     "billing",
				"alert":      "DATA_INTEGRITY",
				"bill_id":    billID,
				"product_id": item.ProductID,
				"quantity":   item.Quantity,
			}).Error("compensating restock failed; stock is short by the listed quantity: " + err.Error())
		}
	}
	if dataIntegrity {
		return apperr.Wrap(apperr.KindDataIntegrity,
			"bill aborted and compensation failed; manual stock reconciliation required", cause)
	}
	return cause
}

// newPDFAccessToken returns an unguessable token the document-rendering
// collaborator uses to authorize unauthenticated PDF retrieval.
func newPDFAccessToken() string {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand failing means the process is in no state to serve
		// anything; fall back to a uuid rather than a predictable token.
		return uuid.New().String()
	}
	return hex.EncodeToString(buf)
}
