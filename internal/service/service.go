package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/fadyboles-sys/presteg-store/internal/cache"
	"github.com/fadyboles-sys/presteg-store/internal/domain"
	"github.com/fadyboles-sys/presteg-store/internal/report"
	"github.com/fadyboles-sys/presteg-store/internal/store"
)

// Service is the application facade: the only boundary the UI shell may
// cross. It re-validates every input defensively before delegating to the
// ledger, and keeps the read-side report cache coherent with writes.
type Service struct {
	ledger   store.Ledger
	reports  cache.ReportCache
	log      *logrus.Logger
	validate *validator.Validate
	cacheTTL time.Duration
}

func New(ledger store.Ledger, reports cache.ReportCache, logger *logrus.Logger, cacheTTL time.Duration) *Service {
	if reports == nil {
		reports = cache.NoopReportCache{}
	}
	if logger == nil {
		logger = logrus.New()
	}
	if cacheTTL <= 0 {
		cacheTTL = time.Minute
	}

	return &Service{
		ledger:   ledger,
		reports:  reports,
		log:      logger,
		validate: validator.New(),
		cacheTTL: cacheTTL,
	}
}

func (s *Service) AddProduct(ctx context.Context, req domain.ProductCreateRequest) (domain.Product, error) {
	req.Brand = strings.TrimSpace(req.Brand)
	req.Name = strings.TrimSpace(req.Name)
	req.Supplier = strings.TrimSpace(req.Supplier)

	if err := s.validate.Struct(req); err != nil {
		return domain.Product{}, fmt.Errorf("%w: %s", store.ErrInvalidInput, err)
	}
	if req.CostPrice.IsNegative() || req.SellingPrice.IsNegative() {
		return domain.Product{}, fmt.Errorf("%w: prices must not be negative", store.ErrInvalidInput)
	}
	if req.Discount.IsNegative() {
		return domain.Product{}, fmt.Errorf("%w: discount must not be negative", store.ErrInvalidInput)
	}

	created, err := s.ledger.CreateProduct(ctx, domain.Product{
		Brand:        req.Brand,
		Name:         req.Name,
		CostPrice:    req.CostPrice,
		SellingPrice: req.SellingPrice,
		Discount:     req.Discount,
		Stock:        req.Stock,
		Supplier:     req.Supplier,
	})
	if err != nil {
		return domain.Product{}, err
	}

	s.log.WithFields(logrus.Fields{
		"product_id": created.ID,
		"brand":      created.Brand,
		"name":       created.Name,
		"stock":      created.Stock,
	}).Info("product created")

	return *created, nil
}

func (s *Service) ListProducts(ctx context.Context) ([]domain.Product, error) {
	return s.ledger.ListProducts(ctx)
}

func (s *Service) RecordSale(ctx context.Context, req domain.SaleCreateRequest) (domain.Sale, error) {
	if err := s.validate.Struct(req); err != nil {
		return domain.Sale{}, fmt.Errorf("%w: %s", store.ErrInvalidInput, err)
	}
	if req.SalePrice.IsNegative() || req.DiscountApplied.IsNegative() {
		return domain.Sale{}, fmt.Errorf("%w: amounts must not be negative", store.ErrInvalidInput)
	}

	recorded, err := s.ledger.RecordSale(ctx, domain.Sale{
		ProductID:       req.ProductID,
		Quantity:        req.Quantity,
		SalePrice:       req.SalePrice,
		DiscountApplied: req.DiscountApplied,
	})
	if err != nil {
		return domain.Sale{}, err
	}

	s.invalidateReport(ctx, recorded.SoldAt)

	s.log.WithFields(logrus.Fields{
		"sale_id":    recorded.ID,
		"product_id": recorded.ProductID,
		"quantity":   recorded.Quantity,
		"sale_price": recorded.SalePrice.String(),
	}).Info("sale recorded")

	return *recorded, nil
}

func (s *Service) RestockProduct(ctx context.Context, req domain.RestockRequest) (domain.StockEntry, error) {
	req.Supplier = strings.TrimSpace(req.Supplier)
	if err := s.validate.Struct(req); err != nil {
		return domain.StockEntry{}, fmt.Errorf("%w: %s", store.ErrInvalidInput, err)
	}

	added, err := s.ledger.AddStockEntry(ctx, domain.StockEntry{
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
		Supplier:  req.Supplier,
	})
	if err != nil {
		return domain.StockEntry{}, err
	}

	s.invalidateReport(ctx, added.AddedAt)

	s.log.WithFields(logrus.Fields{
		"entry_id":   added.ID,
		"product_id": added.ProductID,
		"quantity":   added.Quantity,
	}).Info("stock entry added")

	return *added, nil
}

func (s *Service) TodaySales(ctx context.Context) ([]domain.SaleView, error) {
	return s.ledger.ListSalesForDate(ctx, time.Now().UTC())
}

// DailyReport returns today's report row, or nil when no sale or restock has
// touched today yet.
func (s *Service) DailyReport(ctx context.Context) (*domain.DailyReport, error) {
	now := time.Now().UTC()
	key := reportCacheKey(now)

	if cached, hit, err := s.reports.Get(ctx, key); err != nil {
		s.log.WithError(err).Warn("report cache read failed")
	} else if hit {
		return cached, nil
	}

	rep, err := s.ledger.GetDailyReport(ctx, now)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	if err := s.reports.Set(ctx, key, rep, s.cacheTTL); err != nil {
		s.log.WithError(err).Warn("report cache write failed")
	}
	return rep, nil
}

func (s *Service) MonthlyReport(ctx context.Context, month int, year int) ([]domain.MonthlyRow, error) {
	if month < 1 || month > 12 {
		return nil, fmt.Errorf("%w: month must be 1-12", store.ErrInvalidInput)
	}
	if year < 1 {
		return nil, fmt.Errorf("%w: year must be positive", store.ErrInvalidInput)
	}
	return s.ledger.MonthlyReport(ctx, time.Month(month), year)
}

// SummaryStats derives the live statistics block over today's sales.
func (s *Service) SummaryStats(ctx context.Context) (domain.SummaryStats, error) {
	sales, err := s.TodaySales(ctx)
	if err != nil {
		return domain.SummaryStats{}, err
	}
	return report.Summary(sales), nil
}

func (s *Service) invalidateReport(ctx context.Context, at time.Time) {
	if err := s.reports.Invalidate(ctx, reportCacheKey(at)); err != nil {
		s.log.WithError(err).Warn("report cache invalidation failed")
	}
}

func reportCacheKey(t time.Time) string {
	return "daily-report:" + report.DateKey(t)
}
