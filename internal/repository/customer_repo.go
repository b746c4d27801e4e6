package repository

import (
	"time"

	"go-retail-pos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CustomerRepository interface {
	Create(customer *model.Customer) error
	FindAll() ([]model.Customer, error)
	FindByID(id uuid.UUID) (*model.Customer, error)
	FindByMobile(mobile string) (*model.Customer, error)
	Update(customer *model.Customer) error
	AppendPurchase(mobile, billID string, at time.Time) error
}

type customerRepo struct {
	db *gorm.DB
}

func NewCustomerRepo(db *gorm.DB) CustomerRepository {
	return &customerRepo{db}
}

func (r *customerRepo) Create(customer *model.Customer) error {
	return r.db.Create(customer).Error
}

func (r *customerRepo) FindAll() ([]model.Customer, error) {
	var customers []model.Customer
	err := r.db.Order("name ASC").Find(&customers).Error
	return customers, err
}

func (r *customerRepo) FindByID(id uuid.UUID) (*model.Customer, error) {
	var customer model.Customer
	err := r.db.First(&customer, "id = ?", id).Error
	return &customer, err
}

func (r *customerRepo) FindByMobile(mobile string) (*model.Customer, error) {
	var customer model.Customer
	err := r.db.First(&customer, "mobile = ?", mobile).Error
	return &customer, err
}

func (r *customerRepo) Update(customer *model.Customer) error {
	return r.db.Save(customer).Error
}

// AppendPurchase appends the bill id to the purchase history and bumps the
// counters under a row lock, so concurrent sales to the same customer
// cannot drop entries.
func (r *customerRepo) AppendPurchase(mobile, billID string, at time.Time) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var customer model.Customer
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&customer, "mobile = ?", mobile).Error; err != nil {
			return err
		}

		history := append(customer.PurchaseHistory, billID)

		return tx.Model(&customer).Updates(map[string]interface{}{
			"purchase_history":   history,
			"purchase_count":     customer.PurchaseCount + 1,
			"last_purchase_date": at,
		}).Error
	})
}
