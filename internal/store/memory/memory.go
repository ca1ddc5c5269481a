package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fadyboles-sys/presteg-store/internal/domain"
	"github.com/fadyboles-sys/presteg-store/internal/report"
	"github.com/fadyboles-sys/presteg-store/internal/store"
)

// Store is an in-memory Ledger used for tests and for running the backend
// without PostgreSQL. The single mutex makes every composite operation
// atomic and serializes concurrent sales.
type Store struct {
	mu            sync.RWMutex
	products      map[int64]domain.Product
	productOrder  []int64
	sales         []domain.Sale
	stockEntries  []domain.StockEntry
	reports       map[string]domain.DailyReport
	nextProductID int64
	nextSaleID    int64
	nextEntryID   int64
}

func New() *Store {
	return &Store{
		products: make(map[int64]domain.Product),
		reports:  make(map[string]domain.DailyReport),
	}
}

// NewSeeded returns a store pre-loaded with a small clothing catalog for
// dev/demo mode.
func NewSeeded() *Store {
	s := New()
	now := time.Now().UTC()
	for _, p := range []domain.Product{
		{Brand: "Nike", Name: "Air", CostPrice: dec("50"), SellingPrice: dec("80"), Stock: 10, Supplier: "Al Noor Trading"},
		{Brand: "Adidas", Name: "Superstar", CostPrice: dec("40"), SellingPrice: dec("60"), Stock: 15, Supplier: "Al Noor Trading"},
		{Brand: "Zara", Name: "Slim Shirt", CostPrice: dec("18"), SellingPrice: dec("35"), Discount: dec("5"), Stock: 25},
		{Brand: "Puma", Name: "Runner Tee", CostPrice: dec("12"), SellingPrice: dec("22"), Stock: 30, Supplier: "City Apparel"},
	} {
		s.nextProductID++
		p.ID = s.nextProductID
		p.AddedAt = now
		s.products[p.ID] = p
		s.productOrder = append(s.productOrder, p.ID)
	}
	return s
}

func dec(v string) decimal.Decimal {
	d, err := decimal.NewFromString(v)
	if err != nil {
		panic(err)
	}
	return d
}

func (s *Store) CreateProduct(_ context.Context, product domain.Product) (*domain.Product, error) {
	if product.Brand == "" || product.Name == "" {
		return nil, store.ErrInvalidInput
	}
	if product.CostPrice.IsNegative() || product.SellingPrice.IsNegative() || product.Discount.IsNegative() {
		return nil, store.ErrInvalidInput
	}
	if product.Stock < 0 {
		return nil, store.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextProductID++
	product.ID = s.nextProductID
	if product.AddedAt.IsZero() {
		product.AddedAt = time.Now().UTC()
	}
	s.products[product.ID] = product
	s.productOrder = append(s.productOrder, product.ID)

	created := product
	return &created, nil
}

func (s *Store) ListProducts(_ context.Context) ([]domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	products := make([]domain.Product, 0, len(s.productOrder))
	for _, id := range s.productOrder {
		products = append(products, s.products[id])
	}
	return products, nil
}

func (s *Store) GetProduct(_ context.Context, id int64) (*domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	product, ok := s.products[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	found := product
	return &found, nil
}

func (s *Store) RecordSale(_ context.Context, sale domain.Sale) (*domain.Sale, error) {
	if sale.Quantity < 1 || sale.SalePrice.IsNegative() || sale.DiscountApplied.IsNegative() {
		return nil, store.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	product, ok := s.products[sale.ProductID]
	if !ok {
		return nil, store.ErrNotFound
	}

	// Snapshot the current selling price when the caller did not pin one.
	if sale.SalePrice.IsZero() {
		sale.SalePrice = product.SellingPrice
	}

	product.Stock -= sale.Quantity
	s.products[product.ID] = product

	s.nextSaleID++
	sale.ID = s.nextSaleID
	if sale.SoldAt.IsZero() {
		sale.SoldAt = time.Now().UTC()
	}
	s.sales = append(s.sales, sale)

	s.refreshDailyReportLocked(sale.SoldAt)

	recorded := sale
	return &recorded, nil
}

func (s *Store) AddStockEntry(_ context.Context, entry domain.StockEntry) (*domain.StockEntry, error) {
	if entry.Quantity < 1 {
		return nil, store.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	product, ok := s.products[entry.ProductID]
	if !ok {
		return nil, store.ErrNotFound
	}

	product.Stock += entry.Quantity
	s.products[product.ID] = product

	s.nextEntryID++
	entry.ID = s.nextEntryID
	if entry.AddedAt.IsZero() {
		entry.AddedAt = time.Now().UTC()
	}
	s.stockEntries = append(s.stockEntries, entry)

	s.refreshDailyReportLocked(entry.AddedAt)

	added := entry
	return &added, nil
}

func (s *Store) ListSalesForDate(_ context.Context, day time.Time) ([]domain.SaleView, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.salesForDateLocked(day), nil
}

func (s *Store) GetDailyReport(_ context.Context, day time.Time) (*domain.DailyReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rep, ok := s.reports[report.DateKey(day)]
	if !ok {
		return nil, store.ErrNotFound
	}
	found := rep
	return &found, nil
}

func (s *Store) MonthlyReport(_ context.Context, month time.Month, year int) ([]domain.MonthlyRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	from, to := report.MonthBounds(month, year)

	rows := make([]domain.MonthlyRow, 0, 31)
	for key, rep := range s.reports {
		date, err := time.Parse("2006-01-02", key)
		if err != nil {
			continue
		}
		if date.Before(from) || !date.Before(to) {
			continue
		}
		rows = append(rows, domain.MonthlyRow{
			Day:         date.Day(),
			DailySales:  rep.TotalSales,
			DailyProfit: rep.TotalProfit,
		})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Day < rows[j].Day })
	return rows, nil
}

func (s *Store) salesForDateLocked(day time.Time) []domain.SaleView {
	key := report.DateKey(day)

	views := make([]domain.SaleView, 0, len(s.sales))
	for _, sale := range s.sales {
		if report.DateKey(sale.SoldAt) != key {
			continue
		}
		product := s.products[sale.ProductID]
		views = append(views, domain.SaleView{
			ID:              sale.ID,
			ProductID:       sale.ProductID,
			ProductName:     product.Name,
			Brand:           product.Brand,
			Quantity:        sale.Quantity,
			SalePrice:       sale.SalePrice,
			DiscountApplied: sale.DiscountApplied,
			CostPrice:       product.CostPrice,
			SoldAt:          sale.SoldAt,
		})
	}
	return views
}

// refreshDailyReportLocked overwrites the report row for the given day with
// a full recompute from the sale rows, never an incremental delta.
func (s *Store) refreshDailyReportLocked(day time.Time) {
	remaining := 0
	for _, p := range s.products {
		remaining += p.Stock
	}

	key := report.DateKey(day)
	newStock := 0
	for _, entry := range s.stockEntries {
		if report.DateKey(entry.AddedAt) == key {
			newStock += entry.Quantity
		}
	}

	s.reports[key] = report.DailyTotals(day, s.salesForDateLocked(day), remaining, newStock)
}
