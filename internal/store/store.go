package store

import (
	"context"
	"errors"
	"time"

	"github.com/fadyboles-sys/presteg-store/internal/domain"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
)

// Ledger is the durable product/sale record set treated as source of truth.
// RecordSale and AddStockEntry are composite operations: the stock change,
// the appended row and the recomputed daily report for the entry's date
// commit together or not at all.
type Ledger interface {
	CreateProduct(ctx context.Context, product domain.Product) (*domain.Product, error)
	ListProducts(ctx context.Context) ([]domain.Product, error)
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)
	RecordSale(ctx context.Context, sale domain.Sale) (*domain.Sale, error)
	AddStockEntry(ctx context.Context, entry domain.StockEntry) (*domain.StockEntry, error)
	ListSalesForDate(ctx context.Context, day time.Time) ([]domain.SaleView, error)
	GetDailyReport(ctx context.Context, day time.Time) (*domain.DailyReport, error)
	MonthlyReport(ctx context.Context, month time.Month, year int) ([]domain.MonthlyRow, error)
}
