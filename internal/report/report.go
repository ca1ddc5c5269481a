package report

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/fadyboles-sys/presteg-store/internal/domain"
)

// DateKey formats a timestamp as the calendar-date bucket used throughout
// the ledger (report_date, sale day filters, cache keys).
func DateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// DayBounds returns the half-open UTC interval [start, end) covering the
// calendar date of t.
func DayBounds(t time.Time) (time.Time, time.Time) {
	t = t.UTC()
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 0, 1)
}

// MonthBounds returns the half-open UTC interval covering the given month.
func MonthBounds(month time.Month, year int) (time.Time, time.Time) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0)
}

// DailyTotals recomputes the daily report row for day from scratch:
// total sales = Σ(qty·salePrice − discountApplied), items sold = Σqty,
// total profit = Σ((salePrice − currentCostPrice)·qty − discountApplied).
// Remaining stock and new stock are supplied by the caller because they are
// not derivable from the sale rows (remaining stock is global across all
// products; new stock comes from the day's stock entries).
func DailyTotals(day time.Time, sales []domain.SaleView, remainingStock, newStock int) domain.DailyReport {
	totalSales := decimal.Zero
	totalProfit := decimal.Zero
	itemsSold := 0

	for _, s := range sales {
		qty := decimal.NewFromInt(int64(s.Quantity))
		totalSales = totalSales.Add(s.SalePrice.Mul(qty).Sub(s.DiscountApplied))
		totalProfit = totalProfit.Add(s.SalePrice.Sub(s.CostPrice).Mul(qty).Sub(s.DiscountApplied))
		itemsSold += s.Quantity
	}

	return domain.DailyReport{
		ReportDate:     DateKey(day),
		TotalSales:     totalSales,
		TotalProfit:    totalProfit,
		ItemsSold:      itemsSold,
		NewStockAdded:  newStock,
		RemainingStock: remainingStock,
	}
}

// Summary derives live statistics from a sequence of joined sale rows,
// typically today's sales. Top product and top brand are the argmax of total
// quantity sold; ties break lexicographically by name so the result does not
// depend on iteration order. Empty input yields the none sentinel and zeros.
func Summary(sales []domain.SaleView) domain.SummaryStats {
	if len(sales) == 0 {
		return domain.SummaryStats{
			TopProduct:    domain.NoneSentinel,
			TopBrand:      domain.NoneSentinel,
			AveragePrice:  decimal.Zero,
			TotalDiscount: decimal.Zero,
		}
	}

	productQty := make(map[string]int, len(sales))
	brandQty := make(map[string]int, len(sales))
	grossSales := decimal.Zero
	totalDiscount := decimal.Zero
	totalItems := 0

	for _, s := range sales {
		productQty[s.ProductName] += s.Quantity
		brandQty[s.Brand] += s.Quantity
		grossSales = grossSales.Add(s.SalePrice.Mul(decimal.NewFromInt(int64(s.Quantity))))
		totalDiscount = totalDiscount.Add(s.DiscountApplied)
		totalItems += s.Quantity
	}

	avgPrice := decimal.Zero
	if totalItems > 0 {
		avgPrice = grossSales.DivRound(decimal.NewFromInt(int64(totalItems)), 2)
	}

	return domain.SummaryStats{
		TopProduct:    argmax(productQty),
		TopBrand:      argmax(brandQty),
		AveragePrice:  avgPrice,
		TotalDiscount: totalDiscount,
	}
}

func argmax(qtyByName map[string]int) string {
	best := ""
	bestQty := 0
	for name, qty := range qtyByName {
		if qty > bestQty || (qty == bestQty && (best == "" || name < best)) {
			best = name
			bestQty = qty
		}
	}
	if best == "" {
		return domain.NoneSentinel
	}
	return best
}
