package repository

import (
	"time"

	"go-retail-pos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProductRepository interface {
	Create(product *model.Product) error
	FindAll() ([]model.Product, error)
	FindByID(id uuid.UUID) (*model.Product, error)
	FindBySKU(sku string) (*model.Product, error)
	Update(product *model.Product) error
	Delete(id uuid.UUID, deletedBy string) error
	Count() (int64, error)

	// DecrementQuantity applies "quantity -= qty" only while quantity >= qty
	// still holds, in a single conditional UPDATE. Returns false when the
	// condition did not hold (missing row or not enough stock).
	DecrementQuantity(id uuid.UUID, qty int, updatedBy string) (bool, error)
	AddQuantity(id uuid.UUID, qty int, updatedBy string) (bool, error)
	SetQuantity(id uuid.UUID, qty int, updatedBy string) (bool, error)

	FindLowStock(threshold int) ([]model.Product, error)
	FindExpiringBefore(cutoff time.Time) ([]model.Product, error)
}

type productRepo struct {
	db *gorm.DB
}

func NewProductRepo(db *gorm.DB) ProductRepository {
	return &productRepo{db}
}

func (r *productRepo) Create(product *model.Product) error {
	return r.db.Create(product).Error
}

func (r *productRepo) FindAll() ([]model.Product, error) {
	var products []model.Product
	err := r.db.Order("name ASC").Find(&products).Error
	return products, err
}

func (r *productRepo) FindByID(id uuid.UUID) (*model.Product, error) {
	var product model.Product
	err := r.db.First(&product, "id = ?", id).Error
	return &product, err
}

func (r *productRepo) FindBySKU(sku string) (*model.Product, error) {
	var product model.Product
	err := r.db.First(&product, "sku = ?", sku).Error
	return &product, err
}

func (r *productRepo) Update(product *model.Product) error {
	return r.db.Save(product).Error
}

func (r *productRepo) Delete(id uuid.UUID, deletedBy string) error {
	res := r.db.Model(&model.Product{}).
		Where("id = ?", id).
		Update("updated_by", deletedBy)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return r.db.Delete(&model.Product{}, "id = ?", id).Error
}

func (r *productRepo) Count() (int64, error) {
	var count int64
	err := r.db.Model(&model.Product{}).Count(&count).Error
	return count, err
}

func (r *productRepo) DecrementQuantity(id uuid.UUID, qty int, updatedBy string) (bool, error) {
	res := r.db.Model(&model.Product{}).
		Where("id = ? AND quantity >= ?", id, qty).
		Updates(map[string]interface{}{
			"quantity":   gorm.Expr("quantity - ?", qty),
			"updated_by": updatedBy,
		})
	return res.RowsAffected > 0, res.Error
}

func (r *productRepo) AddQuantity(id uuid.UUID, qty int, updatedBy string) (bool, error) {
	res := r.db.Model(&model.Product{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"quantity":   gorm.Expr("quantity + ?", qty),
			"updated_by": updatedBy,
		})
	return res.RowsAffected > 0, res.Error
}

// SetQuantity overwrites the quantity unconditionally. Sync reconciliation
// only; sale paths must go through DecrementQuantity.
func (r *productRepo) SetQuantity(id uuid.UUID, qty int, updatedBy string) (bool, error) {
	res := r.db.Model(&model.Product{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"quantity":   qty,
			"updated_by": updatedBy,
		})
	return res.RowsAffected > 0, res.Error
}

func (r *productRepo) FindLowStock(threshold int) ([]model.Product, error) {
	var products []model.Product
	err := r.db.Where("quantity <= ?", threshold).Order("quantity ASC").Find(&products).Error
	return products, err
}

func (r *productRepo) FindExpiringBefore(cutoff time.Time) ([]model.Product, error) {
	var products []model.Product
	err := r.db.Where("expiry_date IS NOT NULL AND expiry_date <= ?", cutoff).
		Order("expiry_date ASC").
		Find(&products).Error
	return products, err
}
