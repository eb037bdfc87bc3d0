package application

import (
	"context"
	"math"
	"sort"

	"stock-market-service/stocks/domain"
)

// Service transforma a série diária crua em uma Quote.
type Service struct {
	Fetcher domain.SeriesFetcher
}

// Quote busca a série do símbolo e devolve open/high/low do dia mais recente
// mais a variação round(últimoFechamento - fechamentoAnterior, 2).
//
// Série com menos de dois dias é *domain.ParseError; erros do fetcher são
// propagados como vieram.
func (s Service) Quote(ctx context.Context, symbol string) (domain.Quote, error) {
	series, err := s.Fetcher.Fetch(ctx, symbol)
	if err != nil {
		return domain.Quote{}, err
	}
	if len(series) < 2 {
		return domain.Quote{}, &domain.ParseError{Reason: "daily time series has fewer than two entries"}
	}

	dates := make([]string, 0, len(series))
	for d := range series {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	latest := series[dates[len(dates)-1]]
	previous := series[dates[len(dates)-2]]

	return domain.Quote{
		Symbol:    symbol,
		OpenPrice: latest.Open,
		HighPrice: latest.High,
		LowPrice:  latest.Low,
		Variation: round2(latest.Close - previous.Close),
	}, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
