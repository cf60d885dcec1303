package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"CoinCast/internal/domain/models"
	domrepo "CoinCast/internal/domain/repository"
	pkgch "CoinCast/pkg/clickhouse"
	applogger "CoinCast/pkg/logger"
)

// CHPriceHistory reads daily closes from a ClickHouse table created by
// clickhouse.DailyClosesSchema.
type CHPriceHistory struct {
	db    *sql.DB
	table string
	l     *applogger.Logger
}

func NewCHPriceHistory(ch *pkgch.Client, table string) *CHPriceHistory {
	return &CHPriceHistory{db: ch.DB(), table: table}
}

// SetLogger injects a structured logger.
func (s *CHPriceHistory) SetLogger(l *applogger.Logger) { s.l = l }

func (s *CHPriceHistory) LatestCloses(ctx context.Context, crypto string, n int) (models.CryptoSeries, error) {
	if !models.IsKnownCrypto(crypto) {
		return models.CryptoSeries{}, fmt.Errorf("%w: %s", domrepo.ErrUnknownCrypto, crypto)
	}
	start := time.Now()
	const qtpl = `
        SELECT day, assumeNotNull(close) AS close
        FROM %s FINAL
        WHERE crypto = ? AND close IS NOT NULL AND NOT isNaN(close)
        ORDER BY day DESC
        LIMIT ?
    `
	q := fmt.Sprintf(qtpl, s.table)
	rows, err := s.db.QueryContext(ctx, q, crypto, n)
	if err != nil {
		s.logError("clickhouse latest_closes query error", crypto, n, err)
		return models.CryptoSeries{}, fmt.Errorf("latest closes: %w", err)
	}
	defer rows.Close()

	tmp := make([]models.ClosePoint, 0, n)
	for rows.Next() {
		var p models.ClosePoint
		if err := rows.Scan(&p.Date, &p.Close); err != nil {
			s.logError("clickhouse latest_closes scan error", crypto, n, err)
			return models.CryptoSeries{}, fmt.Errorf("scan close: %w", err)
		}
		tmp = append(tmp, p)
	}
	if err := rows.Err(); err != nil {
		s.logError("clickhouse latest_closes rows error", crypto, n, err)
		return models.CryptoSeries{}, fmt.Errorf("rows: %w", err)
	}

	// newest first from the query
	out := make([]models.ClosePoint, len(tmp))
	for i := range tmp {
		out[len(tmp)-1-i] = tmp[i]
	}
	if s.l != nil {
		s.l.Debug("clickhouse latest_closes ok",
			applogger.String("table", s.table),
			applogger.String("crypto", crypto),
			applogger.Int("rows", len(out)),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return models.CryptoSeries{Crypto: crypto, Points: out}, nil
}

func (s *CHPriceHistory) logError(msg, crypto string, n int, err error) {
	if s.l == nil {
		return
	}
	s.l.Error(msg,
		applogger.String("table", s.table),
		applogger.String("crypto", crypto),
		applogger.Int("limit", n),
		applogger.Error(err),
	)
}

var _ domrepo.PriceHistory = (*CHPriceHistory)(nil)
