package infra

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"stock-market-service/stocks/domain"

	"golang.org/x/time/rate"
)

const (
	defaultBaseURL = "https://www.alphavantage.co"
	fetchTimeout   = 10 * time.Second
)

// AlphaVantageClient implementa domain.SeriesFetcher contra o endpoint
// TIME_SERIES_DAILY_ADJUSTED. Uma chamada de saída por Fetch, timeout de 10s,
// sem retry: toda falha é terminal para a requisição.
type AlphaVantageClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string

	// throttle protege a cota do plano (ex: 5 req/min no tier gratuito).
	// nil = desligado.
	throttle *rate.Limiter
}

var _ domain.SeriesFetcher = (*AlphaVantageClient)(nil)

type ClientOption func(*AlphaVantageClient)

func WithBaseURL(base string) ClientOption {
	return func(c *AlphaVantageClient) { c.baseURL = base }
}

func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *AlphaVantageClient) { c.httpClient = hc }
}

// WithThrottle limita as chamadas de saída a n por minuto (token bucket).
func WithThrottle(perMinute int) ClientOption {
	return func(c *AlphaVantageClient) {
		if perMinute > 0 {
			c.throttle = rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), 1)
		}
	}
}

func NewAlphaVantageClient(apiKey string, opts ...ClientOption) *AlphaVantageClient {
	c := &AlphaVantageClient{
		httpClient: &http.Client{Timeout: fetchTimeout},
		baseURL:    defaultBaseURL,
		apiKey:     apiKey,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// payload cobre os três formatos de resposta do provedor: erro, aviso de
// limite ("Note") e a série propriamente dita, com valores decimais em string.
type payload struct {
	ErrorMessage string                       `json:"Error Message"`
	Note         string                       `json:"Note"`
	Series       map[string]map[string]string `json:"Time Series (Daily)"`
}

func (c *AlphaVantageClient) Fetch(ctx context.Context, symbol string) (domain.DailySeries, error) {
	if c.throttle != nil && !c.throttle.Allow() {
		return nil, &domain.UpstreamError{Reason: "local request budget exhausted"}
	}

	q := url.Values{}
	q.Set("function", "TIME_SERIES_DAILY_ADJUSTED")
	q.Set("symbol", symbol)
	q.Set("outputsize", "compact")
	q.Set("apikey", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/query?"+q.Encode(), nil)
	if err != nil {
		return nil, &domain.UpstreamError{Reason: err.Error()}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// inclui timeout do client (10s) e cancelamento de contexto
		return nil, &domain.UpstreamError{Reason: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		reason := http.StatusText(resp.StatusCode)
		if reason == "" {
			reason = resp.Status
		}
		return nil, &domain.UpstreamError{Reason: reason}
	}

	var body payload
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, &domain.ParseError{Reason: "malformed provider payload: " + err.Error()}
	}

	if body.ErrorMessage != "" {
		return nil, &domain.UpstreamError{Reason: body.ErrorMessage}
	}
	if body.Note != "" {
		return nil, &domain.UpstreamError{Reason: body.Note}
	}
	if body.Series == nil {
		return nil, &domain.ParseError{Reason: "daily time series missing from provider payload"}
	}

	series := make(domain.DailySeries, len(body.Series))
	for date, fields := range body.Series {
		bar, err := parseBar(fields)
		if err != nil {
			return nil, &domain.ParseError{Reason: fmt.Sprintf("entry %s: %v", date, err)}
		}
		series[date] = bar
	}
	return series, nil
}

func parseBar(fields map[string]string) (domain.DailyBar, error) {
	var (
		bar domain.DailyBar
		err error
	)
	if bar.Open, err = parsePrice(fields, "1. open"); err != nil {
		return domain.DailyBar{}, err
	}
	if bar.High, err = parsePrice(fields, "2. high"); err != nil {
		return domain.DailyBar{}, err
	}
	if bar.Low, err = parsePrice(fields, "3. low"); err != nil {
		return domain.DailyBar{}, err
	}
	if bar.Close, err = parsePrice(fields, "4. close"); err != nil {
		return domain.DailyBar{}, err
	}
	return bar, nil
}

func parsePrice(fields map[string]string, key string) (float64, error) {
	raw, ok := fields[key]
	if !ok {
		return 0, fmt.Errorf("field %q missing", key)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("field %q is not numeric: %q", key, raw)
	}
	return v, nil
}
