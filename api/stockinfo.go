package api

import (
	"errors"
	"net/http"

	stocksapp "stock-market-service/stocks/application"
	stocksdomain "stock-market-service/stocks/domain"
	usersdomain "stock-market-service/users/domain"

	"github.com/sirupsen/logrus"
)

// alphaErrorPrefix abre toda mensagem de erro 500 do stock-info.
// Faz parte do contrato público do endpoint.
const alphaErrorPrefix = "Failed to retrieve stock info from Alpha Vantage: "

// StockInfoHandler orquestra o pipeline do stock-info em estágios lineares
// com saída antecipada na primeira falha:
//
//	API key presente -> usuário existe -> símbolo presente -> busca -> resposta
//
// (O rate limit roda antes, como middleware aplicado no registro da rota.)
func StockInfoHandler(users usersdomain.Directory, quotes stocksapp.Service, log *logrus.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		apiKey := r.Header.Get("API-Key")
		if apiKey == "" {
			writeError(w, http.StatusUnauthorized, "API key is missing")
			return
		}

		if _, err := users.FindByAPIKey(r.Context(), apiKey); err != nil {
			if errors.Is(err, usersdomain.ErrNotFound) {
				writeError(w, http.StatusUnauthorized, "Invalid API key")
				return
			}
			log.WithError(err).Error("user lookup failed")
			writeError(w, http.StatusInternalServerError, "Internal server error")
			return
		}

		symbol := r.URL.Query().Get("symbol")
		if symbol == "" {
			writeError(w, http.StatusBadRequest, "Symbol is missing")
			return
		}

		quote, err := quotes.Quote(r.Context(), symbol)
		if err != nil {
			var (
				uErr *stocksdomain.UpstreamError
				pErr *stocksdomain.ParseError
			)
			switch {
			case errors.As(err, &uErr):
				writeError(w, http.StatusInternalServerError, alphaErrorPrefix+uErr.Reason)
			case errors.As(err, &pErr):
				writeError(w, http.StatusInternalServerError, alphaErrorPrefix+pErr.Reason)
			default:
				log.WithError(err).Error("quote fetch failed")
				writeError(w, http.StatusInternalServerError, "Internal server error")
			}
			return
		}

		writeJSON(w, http.StatusOK, quote)
	}
}
