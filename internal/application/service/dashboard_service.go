package service

import (
	"context"
	"time"

	"github.com/sangkips/ledgerpos-api/internal/domain/entity"
	"github.com/sangkips/ledgerpos-api/internal/domain/enum"
	"github.com/sangkips/ledgerpos-api/internal/domain/repository"
	"github.com/sangkips/ledgerpos-api/pkg/pagination"
)

// LowStockThreshold is the container count at or below which a basic product is flagged
const LowStockThreshold = 5

// DashboardService provides dashboard statistics for a source
type DashboardService struct {
	billRepo        repository.BillRepository
	productRepo     repository.ProductRepository
	transactionRepo repository.TransactionRepository
	payers          *PayerService
	now             func() time.Time
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(
	billRepo repository.BillRepository,
	productRepo repository.ProductRepository,
	transactionRepo repository.TransactionRepository,
	payers *PayerService,
) *DashboardService {
	return &DashboardService{
		billRepo:        billRepo,
		productRepo:     productRepo,
		transactionRepo: transactionRepo,
		payers:          payers,
		now:             time.Now,
	}
}

// DashboardStats represents dashboard statistics
type DashboardStats struct {
	TotalProducts      int64                 `json:"total_products"`
	LowStockCount      int64                 `json:"low_stock_count"`
	OpenBills          int64                 `json:"open_bills"`
	PartiallyPaidBills int64                 `json:"partially_paid_bills"`
	Receivable         entity.Money          `json:"receivable"`
	Overdue            entity.Money          `json:"overdue"`
	OverdueBills       int64                 `json:"overdue_bills"`
	Month              *entity.LedgerSummary `json:"month"`
	DailySalesData     []DailySalesPoint     `json:"daily_sales_data"`
}

// DailySalesPoint is one day of booked income and expense
type DailySalesPoint struct {
	Date    string       `json:"date"`
	Income  entity.Money `json:"income"`
	Expense entity.Money `json:"expense"`
}

func countOnly() *pagination.PaginationParams {
	return &pagination.PaginationParams{Page: 1, PerPage: 1}
}

// GetDashboardStats returns dashboard statistics for the scoped source
func (s *DashboardService) GetDashboardStats(ctx context.Context) (*DashboardStats, error) {
	if _, err := requireSource(ctx); err != nil {
		return nil, err
	}
	stats := &DashboardStats{}

	_, productCount, err := s.productRepo.List(ctx, &repository.ProductFilterParams{Pagination: countOnly()})
	if err != nil {
		return nil, err
	}
	stats.TotalProducts = productCount

	if stats.LowStockCount, err = s.lowStock(ctx); err != nil {
		return nil, err
	}

	_, stats.OpenBills, err = s.billRepo.List(ctx, &repository.BillFilterParams{
		Pagination: countOnly(),
		Statuses:   []enum.BillStatus{enum.BillStatusActive, enum.BillStatusOnHold},
	})
	if err != nil {
		return nil, err
	}
	_, stats.PartiallyPaidBills, err = s.billRepo.List(ctx, &repository.BillFilterParams{
		Pagination: countOnly(),
		Statuses:   []enum.BillStatus{enum.BillStatusPartiallyPaid},
	})
	if err != nil {
		return nil, err
	}

	if err := s.receivables(ctx, stats); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	startOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	if stats.Month, err = s.transactionRepo.Summary(ctx, startOfMonth, now); err != nil {
		return nil, err
	}

	// Last 7 days, oldest first
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	stats.DailySalesData = make([]DailySalesPoint, 0, 7)
	for i := 6; i >= 0; i-- {
		day := today.AddDate(0, 0, -i)
		sum, err := s.transactionRepo.Summary(ctx, day, day.Add(24*time.Hour-time.Nanosecond))
		if err != nil {
			return nil, err
		}
		stats.DailySalesData = append(stats.DailySalesData, DailySalesPoint{
			Date:    day.Format("Jan 02"),
			Income:  sum.Income,
			Expense: sum.Expense,
		})
	}

	return stats, nil
}

func (s *DashboardService) lowStock(ctx context.Context) (int64, error) {
	basic := enum.ItemTypeBasic
	params := &repository.ProductFilterParams{
		Pagination: &pagination.PaginationParams{Page: 1, PerPage: 100},
		Type:       &basic,
		ActiveOnly: true,
	}

	var count int64
	for {
		products, total, err := s.productRepo.List(ctx, params)
		if err != nil {
			return 0, err
		}
		for _, p := range products {
			if p.Stock != nil && *p.Stock <= LowStockThreshold {
				count++
			}
		}
		if int64(params.Pagination.Page*params.Pagination.PerPage) >= total || len(products) == 0 {
			return count, nil
		}
		params.Pagination.Page++
	}
}

func (s *DashboardService) receivables(ctx context.Context, stats *DashboardStats) error {
	params := &pagination.PaginationParams{Page: 1, PerPage: 100}
	for {
		page, err := s.payers.Receivables(ctx, nil, params)
		if err != nil {
			return err
		}
		for _, r := range page.Items {
			stats.Receivable += r.Due
			if r.Status == enum.PaymentStatusOverdue {
				stats.Overdue += r.Due
				stats.OverdueBills++
			}
		}
		if !page.Pagination.HasNext {
			return nil
		}
		params.Page++
	}
}
