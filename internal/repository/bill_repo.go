package repository

import (
	"time"

	"go-retail-pos/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type BillRepository interface {
	Create(bill *model.Bill) error
	FindByID(id string) (*model.Bill, error)
	Exists(id string) (bool, error)
	FindAll(limit int) ([]model.Bill, error)
	// FindByDateRange returns bills with created_at in [start, end] inclusive,
	// in deterministic (created_at, id) order, capped at limit.
	FindByDateRange(start, end time.Time, limit int) ([]model.Bill, error)
	SalesTotals(start, end time.Time) (decimal.Decimal, int64, error)
}

type billRepo struct {
	db *gorm.DB
}

func NewBillRepo(db *gorm.DB) BillRepository {
	return &billRepo{db}
}

// Create persists the bill and its items in one transaction; gorm cascades
// the Items association. A duplicate id surfaces gorm.ErrDuplicatedKey.
func (r *billRepo) Create(bill *model.Bill) error {
	return r.db.Create(bill).Error
}

func (r *billRepo) FindByID(id string) (*model.Bill, error) {
	var bill model.Bill
	err := r.db.Preload("Items").First(&bill, "id = ?", id).Error
	return &bill, err
}

func (r *billRepo) Exists(id string) (bool, error) {
	var count int64
	err := r.db.Model(&model.Bill{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

func (r *billRepo) FindAll(limit int) ([]model.Bill, error) {
	var bills []model.Bill
	err := r.db.Preload("Items").Order("created_at DESC").Limit(limit).Find(&bills).Error
	return bills, err
}

func (r *billRepo) FindByDateRange(start, end time.Time, limit int) ([]model.Bill, error) {
	var bills []model.Bill
	err := r.db.Preload("Items").
		Where("created_at BETWEEN ? AND ?", start, end).
		Order("created_at ASC, id ASC").
		Limit(limit).
		Find(&bills).Error
	return bills, err
}

func (r *billRepo) SalesTotals(start, end time.Time) (decimal.Decimal, int64, error) {
	var count int64
	if err := r.db.Model(&model.Bill{}).
		Where("created_at BETWEEN ? AND ?", start, end).
		Count(&count).Error; err != nil {
		return decimal.Zero, 0, err
	}

	var total decimal.Decimal
	err := r.db.Model(&model.Bill{}).
		Where("created_at BETWEEN ? AND ?", start, end).
		Select("COALESCE(SUM(total_amount), 0)").
		Scan(&total).Error
	if err != nil {
		return decimal.Zero, 0, err
	}

	return total, count, nil
}
