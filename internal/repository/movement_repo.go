package repository

import (
	"time"

	"go-retail-pos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MovementRepository interface {
	Create(movement *model.StockMovement) error
	FindByProduct(productID uuid.UUID, limit int) ([]model.StockMovement, error)
	GetDailyMovement(startDate, endDate time.Time) ([]DailyMovementData, error)
}

// DailyMovementData aggregates units sold vs restocked per day, for the
// stock movement chart.
type DailyMovementData struct {
	Date      string `json:"date"`
	Sold      int    `json:"sold"`
	Restocked int    `json:"restocked"`
}

type movementRepo struct {
	db *gorm.DB
}

func NewMovementRepo(db *gorm.DB) MovementRepository {
	return &movementRepo{db}
}

func (r *movementRepo) Create(movement *model.StockMovement) error {
	return r.db.Create(movement).Error
}

func (r *movementRepo) FindByProduct(productID uuid.UUID, limit int) ([]model.StockMovement, error) {
	var movements []model.StockMovement
	err := r.db.Where("product_id = ?", productID).
		Order("created_at DESC").
		Limit(limit).
		Find(&movements).Error
	return movements, err
}

func (r *movementRepo) GetDailyMovement(startDate, endDate time.Time) ([]DailyMovementData, error) {
	var results []DailyMovementData

	rows, err := r.db.Model(&model.StockMovement{}).
		Select(`
			DATE(created_at) as date,
			COALESCE(SUM(CASE WHEN type = 'SALE' THEN quantity ELSE 0 END), 0) as sold,
			COALESCE(SUM(CASE WHEN type = 'RESTOCK' THEN quantity ELSE 0 END), 0) as restocked
		`).
		Where("created_at BETWEEN ? AND ?", startDate, endDate).
		Group("DATE(created_at)").
		Order("date ASC").
		Rows()

	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var data DailyMovementData
		if err := rows.Scan(&data.Date, &data.Sold, &data.Restocked); err != nil {
			return nil, err
		}
		results = append(results, data)
	}

	return results, nil
}
