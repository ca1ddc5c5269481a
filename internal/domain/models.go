package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID           int64           `json:"id"`
	Brand        string          `json:"brand"`
	Name         string          `json:"name"`
	CostPrice    decimal.Decimal `json:"cost_price"`
	SellingPrice decimal.Decimal `json:"selling_price"`
	Discount     decimal.Decimal `json:"discount"`
	Stock        int             `json:"stock"`
	Supplier     string          `json:"supplier,omitempty"`
	AddedAt      time.Time       `json:"added_date"`
}

type ProductCreateRequest struct {
	Brand        string          `json:"brand" validate:"required"`
	Name         string          `json:"name" validate:"required"`
	CostPrice    decimal.Decimal `json:"cost_price"`
	SellingPrice decimal.Decimal `json:"selling_price"`
	Discount     decimal.Decimal `json:"discount"`
	Stock        int             `json:"stock" validate:"gte=0"`
	Supplier     string          `json:"supplier"`
}

type Sale struct {
	ID              int64           `json:"id"`
	ProductID       int64           `json:"product_id"`
	Quantity        int             `json:"quantity"`
	SalePrice       decimal.Decimal `json:"sale_price"`
	DiscountApplied decimal.Decimal `json:"discount_applied"`
	SoldAt          time.Time       `json:"sale_date"`
}

type SaleCreateRequest struct {
	ProductID       int64           `json:"product_id" validate:"required,gt=0"`
	Quantity        int             `json:"quantity" validate:"required,gt=0"`
	SalePrice       decimal.Decimal `json:"sale_price"`
	DiscountApplied decimal.Decimal `json:"discount_applied"`
}

// SaleView is a sale joined with the brand, name and current cost price of
// the product it references. Cost price is read live, not snapshotted, so
// per-sale profit follows later cost edits.
type SaleView struct {
	ID              int64           `json:"id"`
	ProductID       int64           `json:"product_id"`
	ProductName     string          `json:"product_name"`
	Brand           string          `json:"brand"`
	Quantity        int             `json:"quantity"`
	SalePrice       decimal.Decimal `json:"sale_price"`
	DiscountApplied decimal.Decimal `json:"discount_applied"`
	CostPrice       decimal.Decimal `json:"cost_price"`
	SoldAt          time.Time       `json:"sale_date"`
}

type StockEntry struct {
	ID        int64     `json:"id"`
	ProductID int64     `json:"product_id"`
	Quantity  int       `json:"quantity"`
	Supplier  string    `json:"supplier,omitempty"`
	AddedAt   time.Time `json:"added_date"`
}

type RestockRequest struct {
	ProductID int64  `json:"product_id" validate:"required,gt=0"`
	Quantity  int    `json:"quantity" validate:"required,gt=0"`
	Supplier  string `json:"supplier"`
}

// DailyReport is a materialized aggregate over the sales of one calendar
// date, fully recomputed from the ledger on every write for that date.
type DailyReport struct {
	ReportDate     string          `json:"report_date"`
	TotalSales     decimal.Decimal `json:"total_sales"`
	TotalProfit    decimal.Decimal `json:"total_profit"`
	ItemsSold      int             `json:"items_sold"`
	NewStockAdded  int             `json:"new_stock_added"`
	RemainingStock int             `json:"remaining_stock"`
}

type MonthlyRow struct {
	Day         int             `json:"day"`
	DailySales  decimal.Decimal `json:"daily_sales"`
	DailyProfit decimal.Decimal `json:"daily_profit"`
}

type SummaryStats struct {
	TopProduct    string          `json:"top_product"`
	TopBrand      string          `json:"top_brand"`
	AveragePrice  decimal.Decimal `json:"average_price"`
	TotalDiscount decimal.Decimal `json:"total_discount"`
}

// NoneSentinel is reported for top product/brand when there are no sales.
const NoneSentinel = "-"
