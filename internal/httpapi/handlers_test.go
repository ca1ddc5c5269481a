package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fadyboles-sys/presteg-store/internal/service"
	"github.com/fadyboles-sys/presteg-store/internal/store/memory"
)

// newTestAPI builds a full API over an in-memory ledger so handler tests
// exercise the complete request path.
func newTestAPI(t *testing.T) *API {
	t.Helper()

	svc := service.New(memory.New(), nil, nil, time.Minute)
	return New(svc, "*")
}

func postJSON(t *testing.T, handler http.Handler, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()

	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func addProduct(t *testing.T, handler http.Handler) int64 {
	t.Helper()

	rec := postJSON(t, handler, "/api/v1/products", map[string]any{
		"brand":         "Nike",
		"name":          "Air",
		"cost_price":    "50",
		"selling_price": "80",
		"stock":         10,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d (body: %s)", rec.Code, rec.Body.String())
	}

	var product struct {
		ID int64 `json:"id"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&product); err != nil {
		t.Fatalf("decode product: %v", err)
	}
	return product.ID
}

func TestHandleHealth(t *testing.T) {
	handler := newTestAPI(t).Handler()

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["ok"] != true {
		t.Fatalf("expected ok:true, got %v", body["ok"])
	}
}

func TestCreateProductAndList(t *testing.T) {
	handler := newTestAPI(t).Handler()

	id := addProduct(t, handler)
	if id != 1 {
		t.Fatalf("expected id 1, got %d", id)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body struct {
		Products []map[string]any `json:"products"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(body.Products) != 1 {
		t.Fatalf("expected 1 product, got %d", len(body.Products))
	}
	if body.Products[0]["brand"] != "Nike" {
		t.Fatalf("brand = %v", body.Products[0]["brand"])
	}
}

func TestCreateProductValidationError(t *testing.T) {
	handler := newTestAPI(t).Handler()

	rec := postJSON(t, handler, "/api/v1/products", map[string]any{
		"name":          "Air",
		"selling_price": "80",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d (body: %s)", rec.Code, rec.Body.String())
	}
}

func TestRecordSaleAndDailyReport(t *testing.T) {
	handler := newTestAPI(t).Handler()
	id := addProduct(t, handler)

	rec := postJSON(t, handler, "/api/v1/sales", map[string]any{
		"product_id":       id,
		"quantity":         3,
		"sale_price":       "80",
		"discount_applied": "5",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d (body: %s)", rec.Code, rec.Body.String())
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/reports/daily", nil)
	reportRec := httptest.NewRecorder()
	handler.ServeHTTP(reportRec, req)

	if reportRec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", reportRec.Code)
	}
	var body struct {
		Report *struct {
			TotalSales     string `json:"total_sales"`
			ItemsSold      int    `json:"items_sold"`
			RemainingStock int    `json:"remaining_stock"`
		} `json:"report"`
	}
	if err := json.NewDecoder(reportRec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Report == nil {
		t.Fatalf("expected report row")
	}
	if body.Report.TotalSales != "235" {
		t.Fatalf("total sales = %s, want 235", body.Report.TotalSales)
	}
	if body.Report.ItemsSold != 3 || body.Report.RemainingStock != 7 {
		t.Fatalf("unexpected report: %+v", body.Report)
	}
}

func TestRecordSaleUnknownProduct(t *testing.T) {
	handler := newTestAPI(t).Handler()

	rec := postJSON(t, handler, "/api/v1/sales", map[string]any{
		"product_id": 999,
		"quantity":   1,
		"sale_price": "80",
	})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d (body: %s)", rec.Code, rec.Body.String())
	}
}

func TestDailyReportNullWhenEmpty(t *testing.T) {
	handler := newTestAPI(t).Handler()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/reports/daily", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["report"] != nil {
		t.Fatalf("expected null report, got %v", body["report"])
	}
}

func TestMonthlyReportRequiresIntegerParams(t *testing.T) {
	handler := newTestAPI(t).Handler()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/reports/monthly?month=march&year=2026", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestSummaryEndpointEmptyDay(t *testing.T) {
	handler := newTestAPI(t).Handler()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/reports/summary", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var stats struct {
		TopProduct string `json:"top_product"`
		TopBrand   string `json:"top_brand"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&stats); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if stats.TopProduct != "-" || stats.TopBrand != "-" {
		t.Fatalf("expected sentinel stats, got %+v", stats)
	}
}

func TestRestockEndpoint(t *testing.T) {
	handler := newTestAPI(t).Handler()
	id := addProduct(t, handler)

	rec := postJSON(t, handler, "/api/v1/products/restock", map[string]any{
		"product_id": id,
		"quantity":   5,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d (body: %s)", rec.Code, rec.Body.String())
	}
}
