package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	stocksapp "stock-market-service/stocks/application"
	stocksdomain "stock-market-service/stocks/domain"
	usersinfra "stock-market-service/users/infra"
)

type stubFetcher struct {
	series stocksdomain.DailySeries
	err    error
	calls  int
}

func (f *stubFetcher) Fetch(_ context.Context, _ string) (stocksdomain.DailySeries, error) {
	f.calls++
	return f.series, f.err
}

func newStockInfoFixture(t *testing.T, fetcher *stubFetcher) (http.HandlerFunc, string) {
	t.Helper()
	dir := usersinfra.NewMemoryDirectory()
	u, err := dir.Register(context.Background(), "Ana", "Souza", "ana@example.com")
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	h := StockInfoHandler(dir, stocksapp.Service{Fetcher: fetcher}, quietLogger())
	return h, u.APIKey
}

func errorBody(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON error body: %v (%s)", err, w.Body.String())
	}
	return resp.Error
}

func TestStockInfoHandler_MissingAPIKeyStopsBeforeUpstream(t *testing.T) {
	fetcher := &stubFetcher{}
	h, _ := newStockInfoFixture(t, fetcher)

	r := httptest.NewRequest(http.MethodGet, "http://example/stock-info?symbol=AAPL", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
	if got := errorBody(t, w); got != "API key is missing" {
		t.Fatalf("unexpected error message: %q", got)
	}
	if fetcher.calls != 0 {
		t.Fatalf("expected no upstream call, got %d", fetcher.calls)
	}
}

func TestStockInfoHandler_UnknownAPIKeyIs401(t *testing.T) {
	fetcher := &stubFetcher{}
	h, _ := newStockInfoFixture(t, fetcher)

	r := httptest.NewRequest(http.MethodGet, "http://example/stock-info?symbol=AAPL", nil)
	r.Header.Set("API-Key", "wrong")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
	if got := errorBody(t, w); got != "Invalid API key" {
		t.Fatalf("unexpected error message: %q", got)
	}
	if fetcher.calls != 0 {
		t.Fatalf("expected no upstream call, got %d", fetcher.calls)
	}
}

func TestStockInfoHandler_MissingSymbolIs400(t *testing.T) {
	fetcher := &stubFetcher{}
	h, key := newStockInfoFixture(t, fetcher)

	r := httptest.NewRequest(http.MethodGet, "http://example/stock-info", nil)
	r.Header.Set("API-Key", key)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if got := errorBody(t, w); got != "Symbol is missing" {
		t.Fatalf("unexpected error message: %q", got)
	}
}

func TestStockInfoHandler_HappyPathReturnsEnrichedQuote(t *testing.T) {
	fetcher := &stubFetcher{series: stocksdomain.DailySeries{
		"2024-05-08": {Open: 90, High: 95, Low: 88, Close: 110.0},
		"2024-05-09": {Open: 101.5, High: 103.2, Low: 99.1, Close: 100.0},
	}}
	h, key := newStockInfoFixture(t, fetcher)

	r := httptest.NewRequest(http.MethodGet, "http://example/stock-info?symbol=AAPL", nil)
	r.Header.Set("API-Key", key)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", w.Code, w.Body.String())
	}

	var quote struct {
		Symbol    string  `json:"symbol"`
		OpenPrice float64 `json:"open_price"`
		HighPrice float64 `json:"high_price"`
		LowPrice  float64 `json:"low_price"`
		Variation float64 `json:"variation"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &quote); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	if quote.Symbol != "AAPL" || quote.OpenPrice != 101.5 || quote.HighPrice != 103.2 || quote.LowPrice != 99.1 {
		t.Fatalf("unexpected quote: %+v", quote)
	}
	if quote.Variation != -10.0 {
		t.Fatalf("expected variation -10.0, got %v", quote.Variation)
	}
}

func TestStockInfoHandler_UpstreamFailureIs500WithPrefix(t *testing.T) {
	fetcher := &stubFetcher{err: &stocksdomain.UpstreamError{Reason: "Service Unavailable"}}
	h, key := newStockInfoFixture(t, fetcher)

	r := httptest.NewRequest(http.MethodGet, "http://example/stock-info?symbol=AAPL", nil)
	r.Header.Set("API-Key", key)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	want := "Failed to retrieve stock info from Alpha Vantage: Service Unavailable"
	if got := errorBody(t, w); got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestStockInfoHandler_ParseFailureIs500WithPrefix(t *testing.T) {
	fetcher := &stubFetcher{err: &stocksdomain.ParseError{Reason: "daily time series has fewer than two entries"}}
	h, key := newStockInfoFixture(t, fetcher)

	r := httptest.NewRequest(http.MethodGet, "http://example/stock-info?symbol=AAPL", nil)
	r.Header.Set("API-Key", key)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	if got := errorBody(t, w); !strings.HasPrefix(got, alphaErrorPrefix) {
		t.Fatalf("expected error with Alpha Vantage prefix, got %q", got)
	}
}

func TestIndexHandler_RedirectsToProjectURL(t *testing.T) {
	h := IndexHandler("https://example.com/project")

	r := httptest.NewRequest(http.MethodGet, "http://example/", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	if w.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d", w.Code)
	}
	if got := w.Header().Get("Location"); got != "https://example.com/project" {
		t.Fatalf("unexpected redirect target: %q", got)
	}
}
