package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/fadyboles-sys/presteg-store/internal/domain"
	"github.com/fadyboles-sys/presteg-store/internal/report"
	"github.com/fadyboles-sys/presteg-store/internal/store"
)

func seedProduct(t *testing.T, s *Store, stock int) *domain.Product {
	t.Helper()

	product, err := s.CreateProduct(context.Background(), domain.Product{
		Brand:        "Nike",
		Name:         "Air",
		CostPrice:    dec("50"),
		SellingPrice: dec("80"),
		Stock:        stock,
	})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}
	return product
}

func TestStockConservation(t *testing.T) {
	s := New()
	ctx := context.Background()
	product := seedProduct(t, s, 100)

	quantities := []int{3, 7, 1, 9, 4}
	total := 0
	for _, qty := range quantities {
		if _, err := s.RecordSale(ctx, domain.Sale{ProductID: product.ID, Quantity: qty, SalePrice: dec("80")}); err != nil {
			t.Fatalf("record sale qty=%d: %v", qty, err)
		}
		total += qty
	}

	got, err := s.GetProduct(ctx, product.ID)
	if err != nil {
		t.Fatalf("get product: %v", err)
	}
	if got.Stock != 100-total {
		t.Fatalf("stock = %d, want %d", got.Stock, 100-total)
	}
}

func TestConcurrentSalesDoNotLoseDecrements(t *testing.T) {
	s := New()
	ctx := context.Background()
	product := seedProduct(t, s, 1000)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = s.RecordSale(ctx, domain.Sale{ProductID: product.ID, Quantity: 2, SalePrice: dec("80")})
		}()
	}
	wg.Wait()

	got, err := s.GetProduct(ctx, product.ID)
	if err != nil {
		t.Fatalf("get product: %v", err)
	}
	if got.Stock != 900 {
		t.Fatalf("stock = %d, want 900", got.Stock)
	}
}

func TestRecordSaleMissingProductIsAtomic(t *testing.T) {
	s := New()
	ctx := context.Background()
	seedProduct(t, s, 10)

	_, err := s.RecordSale(ctx, domain.Sale{ProductID: 42, Quantity: 1, SalePrice: dec("80")})
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	sales, err := s.ListSalesForDate(ctx, time.Now().UTC())
	if err != nil {
		t.Fatalf("list sales: %v", err)
	}
	if len(sales) != 0 {
		t.Fatalf("expected no sale rows, got %d", len(sales))
	}
	if _, err := s.GetDailyReport(ctx, time.Now().UTC()); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected no report row, got %v", err)
	}
}

// Report consistency: the stored row must always equal a fresh recompute
// over the day's sale views.
func TestDailyReportMatchesRecompute(t *testing.T) {
	s := New()
	ctx := context.Background()
	product := seedProduct(t, s, 20)

	for _, qty := range []int{2, 5} {
		if _, err := s.RecordSale(ctx, domain.Sale{ProductID: product.ID, Quantity: qty, SalePrice: dec("80"), DiscountApplied: dec("1")}); err != nil {
			t.Fatalf("record sale: %v", err)
		}
	}

	now := time.Now().UTC()
	stored, err := s.GetDailyReport(ctx, now)
	if err != nil {
		t.Fatalf("get report: %v", err)
	}
	views, err := s.ListSalesForDate(ctx, now)
	if err != nil {
		t.Fatalf("list sales: %v", err)
	}
	remaining := 20 - 7
	recomputed := report.DailyTotals(now, views, remaining, 0)

	if !stored.TotalSales.Equal(recomputed.TotalSales) ||
		!stored.TotalProfit.Equal(recomputed.TotalProfit) ||
		stored.ItemsSold != recomputed.ItemsSold ||
		stored.RemainingStock != recomputed.RemainingStock {
		t.Fatalf("stored %+v != recomputed %+v", stored, recomputed)
	}
}
