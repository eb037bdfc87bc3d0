package domain

import "context"

// Quote é a resposta enriquecida do stock-info: preços do dia mais recente
// mais a variação contra o fechamento do dia anterior.
type Quote struct {
	Symbol    string  `json:"symbol"`
	OpenPrice float64 `json:"open_price"`
	HighPrice float64 `json:"high_price"`
	LowPrice  float64 `json:"low_price"`
	Variation float64 `json:"variation"`
}

// DailyBar é a barra OHLC de um dia.
type DailyBar struct {
	Open  float64
	High  float64
	Low   float64
	Close float64
}

// DailySeries mapeia data ISO (AAAA-MM-DD) para a barra do dia.
// Datas ISO ordenam cronologicamente por comparação de strings.
type DailySeries map[string]DailyBar

// SeriesFetcher busca a série diária de um símbolo no provedor externo.
type SeriesFetcher interface {
	Fetch(ctx context.Context, symbol string) (DailySeries, error)
}

// UpstreamError cobre falha de transporte e erro reportado pelo próprio
// provedor ("Error Message" / "Note"). Reason vai verbatim para o cliente.
type UpstreamError struct {
	Reason string
}

func (e *UpstreamError) Error() string { return "upstream: " + e.Reason }

// ParseError indica payload do provedor malformado ou insuficiente
// (série ausente, menos de dois dias, campo não numérico...).
type ParseError struct {
	Reason string
}

func (e *ParseError) Error() string { return "parse: " + e.Reason }
