package repository

import (
	"context"
	"errors"

	"CoinCast/internal/domain/models"
)

// ErrUnknownCrypto is returned by history sources for ids outside the catalogue.
var ErrUnknownCrypto = errors.New("unknown crypto")

// PriceHistory provides read-only access to daily closing prices.
type PriceHistory interface {
	// LatestCloses returns at most n of the most recent valid closes for
	// crypto, ordered oldest to newest. Rows without a close are skipped.
	// Errors leave the returned series empty.
	LatestCloses(ctx context.Context, crypto string, n int) (models.CryptoSeries, error)
}

// ForecastPublisher ships completed forecasts to downstream consumers.
type ForecastPublisher interface {
	Publish(ctx context.Context, ev *models.ForecastEvent) error
	Close() error
}

type Metrics interface {
	RecordForecast(crypto, model string, horizon int)
	RecordError(kind string)
	RecordLastPrice(crypto, model string, price float64)
	RecordLatency(op string, seconds float64)
	RecordCache(hit bool)
}
