// Package infra contém o cliente HTTP do provedor de dados financeiros
// (Alpha Vantage) que implementa o contrato domain.SeriesFetcher.
package infra
