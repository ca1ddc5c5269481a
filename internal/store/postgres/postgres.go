package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/shopspring/decimal"

	"github.com/fadyboles-sys/presteg-store/internal/domain"
	"github.com/fadyboles-sys/presteg-store/internal/report"
	"github.com/fadyboles-sys/presteg-store/internal/store"
)

type Store struct {
	db *sql.DB
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, err
	}

	db.SetMaxIdleConns(4)
	db.SetMaxOpenConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 6*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &Store{db: db}
	if err := s.ensureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS products (
			id BIGSERIAL PRIMARY KEY,
			brand TEXT NOT NULL,
			name TEXT NOT NULL,
			cost_price NUMERIC(20,4) NOT NULL,
			selling_price NUMERIC(20,4) NOT NULL,
			discount NUMERIC(20,4) NOT NULL DEFAULT 0,
			stock INTEGER NOT NULL,
			supplier TEXT,
			added_date TIMESTAMPTZ NOT NULL DEFAULT now()
		);

		CREATE TABLE IF NOT EXISTS sales (
			id BIGSERIAL PRIMARY KEY,
			product_id BIGINT NOT NULL REFERENCES products(id),
			quantity INTEGER NOT NULL,
			sale_price NUMERIC(20,4) NOT NULL,
			discount_applied NUMERIC(20,4) NOT NULL DEFAULT 0,
			sale_date TIMESTAMPTZ NOT NULL DEFAULT now()
		);

		CREATE TABLE IF NOT EXISTS stock_entries (
			id BIGSERIAL PRIMARY KEY,
			product_id BIGINT NOT NULL REFERENCES products(id),
			quantity INTEGER NOT NULL,
			supplier TEXT,
			added_date TIMESTAMPTZ NOT NULL DEFAULT now()
		);

		CREATE TABLE IF NOT EXISTS daily_reports (
			id BIGSERIAL PRIMARY KEY,
			report_date DATE UNIQUE NOT NULL,
			total_sales NUMERIC(20,4) NOT NULL DEFAULT 0,
			total_profit NUMERIC(20,4) NOT NULL DEFAULT 0,
			items_sold INTEGER NOT NULL DEFAULT 0,
			new_stock_added INTEGER NOT NULL DEFAULT 0,
			remaining_stock INTEGER NOT NULL DEFAULT 0
		);

		CREATE INDEX IF NOT EXISTS idx_sales_sale_date ON sales (sale_date);
		CREATE INDEX IF NOT EXISTS idx_stock_entries_added_date ON stock_entries (added_date);
	`)
	return err
}

func (s *Store) CreateProduct(ctx context.Context, product domain.Product) (*domain.Product, error) {
	if product.Brand == "" || product.Name == "" {
		return nil, store.ErrInvalidInput
	}
	if product.CostPrice.IsNegative() || product.SellingPrice.IsNegative() || product.Discount.IsNegative() {
		return nil, store.ErrInvalidInput
	}
	if product.Stock < 0 {
		return nil, store.ErrInvalidInput
	}

	err := s.db.QueryRowContext(ctx, `
		INSERT INTO products (brand, name, cost_price, selling_price, discount, stock, supplier)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING id, added_date
	`, product.Brand, product.Name, product.CostPrice, product.SellingPrice, product.Discount,
		product.Stock, nullIfEmpty(product.Supplier)).Scan(&product.ID, &product.AddedAt)
	if err != nil {
		return nil, err
	}
	product.AddedAt = product.AddedAt.UTC()

	created := product
	return &created, nil
}

func (s *Store) ListProducts(ctx context.Context) ([]domain.Product, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, brand, name, cost_price, selling_price, discount, stock, supplier, added_date
		FROM products
		ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := make([]domain.Product, 0, 64)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return products, nil
}

func (s *Store) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, brand, name, cost_price, selling_price, discount, stock, supplier, added_date
		FROM products
		WHERE id = $1
	`, id)

	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// RecordSale applies the one composite atomic operation of the ledger: the
// stock decrement, the sale row and the recomputed daily report commit as a
// single serializable transaction. The product row lock serializes
// concurrent sales against the same product so decrements never race.
func (s *Store) RecordSale(ctx context.Context, sale domain.Sale) (*domain.Sale, error) {
	if sale.Quantity < 1 || sale.SalePrice.IsNegative() || sale.DiscountApplied.IsNegative() {
		return nil, store.ErrInvalidInput
	}

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	var sellingPrice decimal.Decimal
	err = tx.QueryRowContext(ctx, `
		SELECT selling_price
		FROM products
		WHERE id = $1
		FOR UPDATE
	`, sale.ProductID).Scan(&sellingPrice)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}

	// Snapshot the current selling price when the caller did not pin one.
	if sale.SalePrice.IsZero() {
		sale.SalePrice = sellingPrice
	}

	// Stock may go negative when oversold; that is the accepted policy.
	_, err = tx.ExecContext(ctx, `
		UPDATE products SET stock = stock - $1 WHERE id = $2
	`, sale.Quantity, sale.ProductID)
	if err != nil {
		return nil, err
	}

	err = tx.QueryRowContext(ctx, `
		INSERT INTO sales (product_id, quantity, sale_price, discount_applied)
		VALUES ($1,$2,$3,$4)
		RETURNING id, sale_date
	`, sale.ProductID, sale.Quantity, sale.SalePrice, sale.DiscountApplied).Scan(&sale.ID, &sale.SoldAt)
	if err != nil {
		return nil, err
	}
	sale.SoldAt = sale.SoldAt.UTC()

	if err := refreshDailyReport(ctx, tx, sale.SoldAt); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	recorded := sale
	return &recorded, nil
}

// AddStockEntry mirrors RecordSale for the stock-in direction: increment,
// append, recompute, all in one transaction.
func (s *Store) AddStockEntry(ctx context.Context, entry domain.StockEntry) (*domain.StockEntry, error) {
	if entry.Quantity < 1 {
		return nil, store.ErrInvalidInput
	}

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	var productID int64
	err = tx.QueryRowContext(ctx, `
		SELECT id FROM products WHERE id = $1 FOR UPDATE
	`, entry.ProductID).Scan(&productID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE products SET stock = stock + $1 WHERE id = $2
	`, entry.Quantity, entry.ProductID)
	if err != nil {
		return nil, err
	}

	err = tx.QueryRowContext(ctx, `
		INSERT INTO stock_entries (product_id, quantity, supplier)
		VALUES ($1,$2,$3)
		RETURNING id, added_date
	`, entry.ProductID, entry.Quantity, nullIfEmpty(entry.Supplier)).Scan(&entry.ID, &entry.AddedAt)
	if err != nil {
		return nil, err
	}
	entry.AddedAt = entry.AddedAt.UTC()

	if err := refreshDailyReport(ctx, tx, entry.AddedAt); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	added := entry
	return &added, nil
}

// refreshDailyReport recomputes the report row for the given day from the
// raw sale rows joined with current product cost prices, then upserts it.
// Full recompute, not an incremental delta.
func refreshDailyReport(ctx context.Context, tx *sql.Tx, day time.Time) error {
	from, to := report.DayBounds(day)

	var totalSales, totalProfit decimal.Decimal
	var itemsSold int
	err := tx.QueryRowContext(ctx, `
		SELECT
			COALESCE(SUM(s.quantity * s.sale_price - s.discount_applied), 0),
			COALESCE(SUM((s.sale_price - p.cost_price) * s.quantity - s.discount_applied), 0),
			COALESCE(SUM(s.quantity), 0)
		FROM sales s
		JOIN products p ON p.id = s.product_id
		WHERE s.sale_date >= $1 AND s.sale_date < $2
	`, from, to).Scan(&totalSales, &totalProfit, &itemsSold)
	if err != nil {
		return err
	}

	var remainingStock int
	err = tx.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(stock), 0) FROM products
	`).Scan(&remainingStock)
	if err != nil {
		return err
	}

	var newStock int
	err = tx.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(quantity), 0)
		FROM stock_entries
		WHERE added_date >= $1 AND added_date < $2
	`, from, to).Scan(&newStock)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO daily_reports (report_date, total_sales, total_profit, items_sold, new_stock_added, remaining_stock)
		VALUES ($1,$2,$3,$4,$5,$6)
		ON CONFLICT (report_date)
		DO UPDATE SET
			total_sales = EXCLUDED.total_sales,
			total_profit = EXCLUDED.total_profit,
			items_sold = EXCLUDED.items_sold,
			new_stock_added = EXCLUDED.new_stock_added,
			remaining_stock = EXCLUDED.remaining_stock
	`, from, totalSales, totalProfit, itemsSold, newStock, remainingStock)
	return err
}

func (s *Store) ListSalesForDate(ctx context.Context, day time.Time) ([]domain.SaleView, error) {
	from, to := report.DayBounds(day)

	rows, err := s.db.QueryContext(ctx, `
		SELECT s.id, s.product_id, p.name, p.brand, s.quantity, s.sale_price,
			s.discount_applied, p.cost_price, s.sale_date
		FROM sales s
		JOIN products p ON p.id = s.product_id
		WHERE s.sale_date >= $1 AND s.sale_date < $2
		ORDER BY s.id
	`, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	views := make([]domain.SaleView, 0, 32)
	for rows.Next() {
		var v domain.SaleView
		if err := rows.Scan(&v.ID, &v.ProductID, &v.ProductName, &v.Brand, &v.Quantity,
			&v.SalePrice, &v.DiscountApplied, &v.CostPrice, &v.SoldAt); err != nil {
			return nil, err
		}
		v.SoldAt = v.SoldAt.UTC()
		views = append(views, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return views, nil
}

func (s *Store) GetDailyReport(ctx context.Context, day time.Time) (*domain.DailyReport, error) {
	from, _ := report.DayBounds(day)

	var rep domain.DailyReport
	var reportDate time.Time
	err := s.db.QueryRowContext(ctx, `
		SELECT report_date, total_sales, total_profit, items_sold, new_stock_added, remaining_stock
		FROM daily_reports
		WHERE report_date = $1
	`, from).Scan(&reportDate, &rep.TotalSales, &rep.TotalProfit, &rep.ItemsSold,
		&rep.NewStockAdded, &rep.RemainingStock)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	rep.ReportDate = report.DateKey(reportDate)
	return &rep, nil
}

func (s *Store) MonthlyReport(ctx context.Context, month time.Month, year int) ([]domain.MonthlyRow, error) {
	from, to := report.MonthBounds(month, year)

	rows, err := s.db.QueryContext(ctx, `
		SELECT EXTRACT(DAY FROM report_date)::int, total_sales, total_profit
		FROM daily_reports
		WHERE report_date >= $1 AND report_date < $2
		ORDER BY report_date
	`, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]domain.MonthlyRow, 0, 31)
	for rows.Next() {
		var row domain.MonthlyRow
		if err := rows.Scan(&row.Day, &row.DailySales, &row.DailyProfit); err != nil {
			return nil, err
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProduct(row scanner) (domain.Product, error) {
	var p domain.Product
	var supplier sql.NullString
	err := row.Scan(&p.ID, &p.Brand, &p.Name, &p.CostPrice, &p.SellingPrice, &p.Discount,
		&p.Stock, &supplier, &p.AddedAt)
	if err != nil {
		return p, err
	}
	if supplier.Valid {
		p.Supplier = supplier.String
	}
	p.AddedAt = p.AddedAt.UTC()
	return p, nil
}

func nullIfEmpty(v string) any {
	if v == "" {
		return nil
	}
	return v
}
