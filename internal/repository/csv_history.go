package repository

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"CoinCast/internal/domain/models"
	domrepo "CoinCast/internal/domain/repository"
	applogger "CoinCast/pkg/logger"
	"CoinCast/pkg/util"
)

// CSVPriceHistory reads "<dataDir>/<Crypto>_data.csv" exports with at least
// a Date and a Close column. Files are read on every call so refreshed
// exports are picked up without a restart.
type CSVPriceHistory struct {
	dataDir string
	l       *applogger.Logger
}

func NewCSVPriceHistory(dataDir string) *CSVPriceHistory {
	return &CSVPriceHistory{dataDir: dataDir}
}

func (s *CSVPriceHistory) SetLogger(l *applogger.Logger) { s.l = l }

func (s *CSVPriceHistory) LatestCloses(ctx context.Context, crypto string, n int) (models.CryptoSeries, error) {
	c, ok := models.LookupCrypto(crypto)
	if !ok {
		return models.CryptoSeries{}, fmt.Errorf("%w: %s", domrepo.ErrUnknownCrypto, crypto)
	}
	if err := ctx.Err(); err != nil {
		return models.CryptoSeries{}, err
	}
	start := time.Now()
	path := filepath.Join(s.dataDir, c.File)
	f, err := os.Open(path)
	if err != nil {
		return models.CryptoSeries{}, fmt.Errorf("open history %s: %w", crypto, err)
	}
	defer f.Close()

	points, skipped, err := parseCloses(f)
	if err != nil {
		if s.l != nil {
			s.l.Error("csv history parse error", applogger.String("path", path), applogger.Error(err))
		}
		return models.CryptoSeries{}, fmt.Errorf("read history %s: %w", crypto, err)
	}
	if n > 0 && len(points) > n {
		points = points[len(points)-n:]
	}
	if s.l != nil {
		s.l.Debug("csv history loaded",
			applogger.String("crypto", crypto),
			applogger.Int("rows", len(points)),
			applogger.Int("skipped", skipped),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return models.CryptoSeries{Crypto: crypto, Points: points}, nil
}

// parseCloses returns valid closes sorted by date and the number of rows
// dropped for a missing close.
func parseCloses(r io.Reader) ([]models.ClosePoint, int, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, 0, fmt.Errorf("header: %w", err)
	}
	dateCol, closeCol := -1, -1
	for i, h := range header {
		switch strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))) {
		case "date":
			dateCol = i
		case "close":
			closeCol = i
		}
	}
	if dateCol < 0 || closeCol < 0 {
		return nil, 0, fmt.Errorf("header %v lacks Date/Close columns", header)
	}

	var (
		out     []models.ClosePoint
		skipped int
		line    = 1
	)
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, 0, fmt.Errorf("line %d: %w", line, err)
		}
		if len(rec) <= dateCol || len(rec) <= closeCol {
			skipped++
			continue
		}
		v, ok, err := parseClose(rec[closeCol])
		if err != nil {
			return nil, 0, fmt.Errorf("line %d: %w", line, err)
		}
		if !ok {
			skipped++
			continue
		}
		d, ok := util.ParseTime(rec[dateCol])
		if !ok {
			return nil, 0, fmt.Errorf("line %d: bad date %q", line, rec[dateCol])
		}
		out = append(out, models.ClosePoint{Date: d, Close: v})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, skipped, nil
}

// parseClose reports ok=false for blank or NaN cells.
func parseClose(s string) (float64, bool, error) {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "", "nan", "null", "none":
		return 0, false, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false, fmt.Errorf("bad close %q: %w", s, err)
	}
	if v != v {
		return 0, false, nil
	}
	return v, true, nil
}

var _ domrepo.PriceHistory = (*CSVPriceHistory)(nil)
