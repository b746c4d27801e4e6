package service

import (
	"errors"

	"go-retail-pos/internal/apperr"
	"go-retail-pos/internal/model"
	"go-retail-pos/internal/repository"
	"go-retail-pos/internal/ws"
	"go-retail-pos/pkg/validator"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// decrementRetries bounds the read-check-write cycle when the conditional
// stock decrement keeps losing the race to concurrent sales.
const decrementRetries = 3

// InventoryService owns product stock. Quantity changes go through
// Decrement/Restock/SetQuantity only; catalog updates never touch quantity.
type InventoryService interface {
	CreateProduct(req *model.Product, actor string) error
	UpdateProduct(id uuid.UUID, req *model.Product, actor string) (*model.Product, error)
	DeleteProduct(id uuid.UUID, actor string) error
	GetProduct(id uuid.UUID) (*model.Product, error)
	ListProducts() ([]model.Product, error)

	Decrement(productID uuid.UUID, qty int, billID *string, actor string) error
	Restock(productID uuid.UUID, qty int, actor string) error
	SetQuantity(productID uuid.UUID, qty int, actor string) error

	ListLowStock(threshold int) ([]model.Product, error)
	ListExpiring(days int) ([]model.Product, error)
}

type inventoryService struct {
	productRepo  repository.ProductRepository
	movementRepo repository.MovementRepository
	hub          *ws.Hub
	log          *logrus.Logger
	now          nowFunc
}

func NewInventoryService(pRepo repository.ProductRepository, mRepo repository.MovementRepository, hub *ws.Hub, log *logrus.Logger) InventoryService {
	return &inventoryService{
		productRepo:  pRepo,
		movementRepo: mRepo,
		hub:          hub,
		log:          log,
		now:          utcNow,
	}
}

func (s *inventoryService) CreateProduct(req *model.Product, actor string) error {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return apperr.New(apperr.KindInvalidArgument, errs[0].Message())
	}
	if req.Quantity < 0 {
		return apperr.New(apperr.KindInvalidArgument, "quantity cannot be negative")
	}
	if req.UnitPrice.IsNegative() {
		return apperr.New(apperr.KindInvalidArgument, "unit price cannot be negative")
	}

	// SKU duplication check
	existing, _ := s.productRepo.FindBySKU(req.SKU)
	if existing != nil && existing.ID != uuid.Nil {
		return apperr.Newf(apperr.KindDuplicateResource, "SKU %s already exists", req.SKU)
	}

	req.CreatedBy = actor
	req.UpdatedBy = actor

	if err := s.productRepo.Create(req); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperr.Newf(apperr.KindDuplicateResource, "SKU %s already exists", req.SKU)
		}
		return err
	}

	s.hub.Publish(map[string]interface{}{
		"type":   "stock_update",
		"action": "product_created",
		"product": map[string]interface{}{
			"id":       req.ID,
			"sku":      req.SKU,
			"name":     req.Name,
			"quantity": req.Quantity,
		},
	})

	return nil
}

// UpdateProduct merges catalog fields. Quantity is deliberately left alone:
// stock is only mutated by Decrement/Restock/SetQuantity.
func (s *inventoryService) UpdateProduct(id uuid.UUID, req *model.Product, actor string) (*model.Product, error) {
	existing, err := s.productRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Newf(apperr.KindNotFound, "product %s not found", id)
		}
		return nil, err
	}

	if req.SKU != "" && req.SKU != existing.SKU {
		other, _ := s.productRepo.FindBySKU(req.SKU)
		if other != nil && other.ID != uuid.Nil && other.ID != id {
			return nil, apperr.Newf(apperr.KindDuplicateResource, "SKU %s already exists", req.SKU)
		}
		existing.SKU = req.SKU
	}
	if req.Name != "" {
		existing.Name = req.Name
	}
	if req.Category != "" {
		existing.Category = req.Category
	}
	if req.Unit != "" {
		existing.Unit = req.Unit
	}
	if !req.UnitPrice.IsZero() {
		if req.UnitPrice.IsNegative() {
			return nil, apperr.New(apperr.KindInvalidArgument, "unit price cannot be negative")
		}
		existing.UnitPrice = req.UnitPrice
	}
	if req.ReorderLevel > 0 {
		existing.ReorderLevel = req.ReorderLevel
	}
	if req.ExpiryDate != nil {
		existing.ExpiryDate = req.ExpiryDate
	}
	existing.UpdatedBy = actor

	if err := s.productRepo.Update(existing); err != nil {
		return nil, err
	}
	return existing, nil
}

func (s *inventoryService) DeleteProduct(id uuid.UUID, actor string) error {
	if err := s.productRepo.Delete(id, actor); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.Newf(apperr.KindNotFound, "product %s not found", id)
		}
		return err
	}
	return nil
}

func (s *inventoryService) GetProduct(id uuid.UUID) (*model.Product, error) {
	product, err := s.productRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Newf(apperr.KindNotFound, "product %s not found", id)
		}
		return nil, err
	}
	return product, nil
}

func (s *inventoryService) ListProducts() ([]model.Product, error) {
	return s.productRepo.FindAll()
}

// Decrement reserves qty units of stock for a sale. The store applies the
// decrement only while quantity >= qty still holds; losing that race is
// retried a bounded number of times before giving up with Conflict.
func (s *inventoryService) Decrement(productID uuid.UUID, qty int, billID *string, actor string) error {
	if qty <= 0 {
		return apperr.New(apperr.KindInvalidArgument, "quantity must be greater than zero")
	}

	for attempt := 0; attempt < decrementRetries; attempt++ {
		product, err := s.productRepo.FindByID(productID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.Newf(apperr.KindNotFound, "product %s not found", productID)
			}
			return err
		}
		if product.Quantity < qty {
			return apperr.Newf(apperr.KindInsufficientStock,
				"insufficient stock for product %s: have %d, need %d", productID, product.Quantity, qty)
		}

		applied, err := s.productRepo.DecrementQuantity(productID, qty, actor)
		if err != nil {
			return err
		}
		if applied {
			s.recordMovement(productID, model.MovementSale, qty, billID, actor, "")
			s.publishStockChange(product, product.Quantity-qty, "sale")
			return nil
		}
		// Lost the race to a concurrent sale; re-read and try again.
	}

	return apperr.Newf(apperr.KindConflict,
		"stock decrement for product %s contended after %d attempts", productID, decrementRetries)
}

func (s *inventoryService) Restock(productID uuid.UUID, qty int, actor string) error {
	if qty <= 0 {
		return apperr.New(apperr.KindInvalidArgument, "quantity must be greater than zero")
	}

	applied, err := s.productRepo.AddQuantity(productID, qty, actor)
	if err != nil {
		return err
	}
	if !applied {
		return apperr.Newf(apperr.KindNotFound, "product %s not found", productID)
	}

	s.recordMovement(productID, model.MovementRestock, qty, nil, actor, "")
	s.publishQuantityDelta(productID, qty, "restock")
	return nil
}

// SetQuantity overwrites the quantity with a client's authoritative count.
// It is a direct state transfer, not a sale, so the decrement invariants do
// not apply.
func (s *inventoryService) SetQuantity(productID uuid.UUID, qty int, actor string) error {
	if qty < 0 {
		return apperr.New(apperr.KindInvalidArgument, "quantity cannot be negative")
	}

	applied, err := s.productRepo.SetQuantity(productID, qty, actor)
	if err != nil {
		return err
	}
	if !applied {
		return apperr.Newf(apperr.KindNotFound, "product %s not found", productID)
	}

	s.recordMovement(productID, model.MovementSyncSet, qty, nil, actor, "client reconciliation")
	s.publishQuantityDelta(productID, qty, "sync")
	return nil
}

func (s *inventoryService) ListLowStock(threshold int) ([]model.Product, error) {
	if threshold < 0 {
		return nil, apperr.New(apperr.KindInvalidArgument, "threshold cannot be negative")
	}
	return s.productRepo.FindLowStock(threshold)
}

// ListExpiring returns products whose expiry date falls on or before
// now + days, computed in UTC.
func (s *inventoryService) ListExpiring(days int) ([]model.Product, error) {
	if days < 0 {
		return nil, apperr.New(apperr.KindInvalidArgument, "days cannot be negative")
	}
	cutoff := s.now().AddDate(0, 0, days)
	return s.productRepo.FindExpiringBefore(cutoff)
}

// recordMovement writes the audit row for a quantity change. The movement
// trail is secondary to the stock change itself, so a failure here is
// logged rather than failing the already-applied mutation.
func (s *inventoryService) recordMovement(productID uuid.UUID, typ model.MovementType, qty int, billID *string, actor, note string) {
	movement := &model.StockMovement{
		ProductID: productID,
		Type:      typ,
		Quantity:  qty,
		BillID:    billID,
		Note:      note,
	}
	movement.CreatedBy = actor
	movement.UpdatedBy = actor

	if err := s.movementRepo.Create(movement); err != nil {
		s.log.WithFields(logrus.Fields{
			"module":     "inventory",
			"product_id": productID,
			"type":       typ,
			"quantity":   qty,
		}).Warn("failed to record stock movement: " + err.Error())
	}
}

func (s *inventoryService) publishStockChange(product *model.Product, newQuantity int, reason string) {
	s.hub.Publish(map[string]interface{}{
		"type":   "stock_update",
		"action": reason,
		"product": map[string]interface{}{
			"id":           product.ID,
			"sku":          product.SKU,
			"name":         product.Name,
			"new_quantity": newQuantity,
		},
	})
}

func (s *inventoryService) publishQuantityDelta(productID uuid.UUID, qty int, reason string) {
	s.hub.Publish(map[string]interface{}{
		"type":   "stock_update",
		"action": reason,
		"product": map[string]interface{}{
			"id":       productID,
			"quantity": qty,
		},
	})
}
