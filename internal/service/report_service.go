package service

import (
	"time"

	"go-retail-pos/internal/apperr"
	"go-retail-pos/internal/model"
	"go-retail-pos/internal/repository"

	"github.com/shopspring/decimal"
)

// salesReportSampleSize caps the bill preview in a sales report; the
// aggregates always cover the full range.
const salesReportSampleSize = 100

type SalesReport struct {
	TotalSales        decimal.Decimal `json:"total_sales"`
	BillCount         int64           `json:"bill_count"`
	AverageBillAmount decimal.Decimal `json:"average_bill_amount"`
	SampleBills       []model.Bill    `json:"sample_bills"`
}

type InventoryReport struct {
	TotalProducts    int64           `json:"total_products"`
	LowStockProducts []model.Product `json:"low_stock_products"`
	ExpiringProducts []model.Product `json:"expiring_products"`
	LowStockCount    int             `json:"low_stock_count"`
	ExpiringCount    int             `json:"expiring_count"`
}

// ReportService derives read-only summaries from persisted bills and
// products.
type ReportService interface {
	SalesReport(start, end time.Time) (*SalesReport, error)
	InventoryReport(lowStockThreshold, expiryDays int) (*InventoryReport, error)
	StockMovement(days int) ([]repository.DailyMovementData, error)
}

type reportService struct {
	billRepo     repository.BillRepository
	productRepo  repository.ProductRepository
	movementRepo repository.MovementRepository
	now          nowFunc
}

func NewReportService(bRepo repository.BillRepository, pRepo repository.ProductRepository, mRepo repository.MovementRepository) ReportService {
	return &reportService{
		billRepo:     bRepo,
		productRepo:  pRepo,
		movementRepo: mRepo,
		now:          utcNow,
	}
}

// SalesReport aggregates bills with created_at in [start, end] inclusive.
// End-of-day adjustment is the caller's responsibility.
func (s *reportService) SalesReport(start, end time.Time) (*SalesReport, error) {
	if start.After(end) {
		return nil, apperr.New(apperr.KindInvalidArgument, "start date must not be after end date")
	}

	total, count, err := s.billRepo.SalesTotals(start, end)
	if err != nil {
		return nil, err
	}

	average := decimal.Zero
	if count > 0 {
		average = total.Div(decimal.NewFromInt(count)).Round(2)
	}

	sample, err := s.billRepo.FindByDateRange(start, end, salesReportSampleSize)
	if err != nil {
		return nil, err
	}

	return &SalesReport{
		TotalSales:        total,
		BillCount:         count,
		AverageBillAmount: average,
		SampleBills:       sample,
	}, nil
}

func (s *reportService) InventoryReport(lowStockThreshold, expiryDays int) (*InventoryReport, error) {
	if lowStockThreshold < 0 || expiryDays < 0 {
		return nil, apperr.New(apperr.KindInvalidArgument, "thresholds cannot be negative")
	}

	totalProducts, err := s.productRepo.Count()
	if err != nil {
		return nil, err
	}
	if totalProducts == 0 {
		return nil, apperr.New(apperr.KindInvalidArgument, "no products")
	}

	lowStock, err := s.productRepo.FindLowStock(lowStockThreshold)
	if err != nil {
		return nil, err
	}

	cutoff := s.now().AddDate(0, 0, expiryDays)
	expiring, err := s.productRepo.FindExpiringBefore(cutoff)
	if err != nil {
		return nil, err
	}

	return &InventoryReport{
		TotalProducts:    totalProducts,
		LowStockProducts: lowStock,
		ExpiringProducts: expiring,
		LowStockCount:    len(lowStock),
		ExpiringCount:    len(expiring),
	}, nil
}

func (s *reportService) StockMovement(days int) ([]repository.DailyMovementData, error) {
	if days <= 0 {
		days = 7
	}
	end := s.now()
	start := end.AddDate(0, 0, -days)
	return s.movementRepo.GetDailyMovement(start, end)
}
