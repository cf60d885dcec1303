package repository

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"CoinCast/internal/domain/models"
	domrepo "CoinCast/internal/domain/repository"
)

func writeCSV(t *testing.T, dir, name, body string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestCSVLatestClosesSkipsMissingAndOrders(t *testing.T) {
	dir := t.TempDir()
	writeCSV(t, dir, "Bitcoin_data.csv", strings.Join([]string{
		"Date,Open,High,Low,Close,Volume",
		"2024-01-03,1,1,1,103.5,10",
		"2024-01-01,1,1,1,101,10",
		"2024-01-02,1,1,1,,10",
		"2024-01-04,1,1,1,NaN,10",
		"2024-01-05,1,1,1,105,10",
	}, "\n"))

	h := NewCSVPriceHistory(dir)
	series, err := h.LatestCloses(context.Background(), "Bitcoin", 30)
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if series.Crypto != "Bitcoin" {
		t.Fatalf("series crypto = %q", series.Crypto)
	}
	got := series.Points
	want := []float64{101, 103.5, 105}
	if len(got) != len(want) {
		t.Fatalf("got %d points, want %d: %+v", len(got), len(want), got)
	}
	for i, p := range got {
		if p.Close != want[i] {
			t.Fatalf("point %d close = %v, want %v", i, p.Close, want[i])
		}
	}
	if got[0].Date.Day() != 1 || got[2].Date.Day() != 5 {
		t.Fatalf("points not date ordered: %+v", got)
	}

	last2, _ := h.LatestCloses(context.Background(), "Bitcoin", 2)
	if c := last2.Closes(); len(c) != 2 || c[0] != 103.5 || c[1] != 105 {
		t.Fatalf("want the two newest closes, got %+v", c)
	}
}

func TestCSVUsesCatalogueFileName(t *testing.T) {
	dir := t.TempDir()
	writeCSV(t, dir, "USD_Coin_data.csv", "Date,Close\n2024-01-01,1.0001\n2024-01-02,0.9998\n")

	got, err := NewCSVPriceHistory(dir).LatestCloses(context.Background(), "USD Coin", 30)
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if len(got.Points) != 2 {
		t.Fatalf("want 2 points, got %d", len(got.Points))
	}
}

func TestCSVErrors(t *testing.T) {
	dir := t.TempDir()
	writeCSV(t, dir, "Ethereum_data.csv", "Day,Price\n2024-01-01,1\n")
	writeCSV(t, dir, "Solana_data.csv", "Date,Close\n2024-01-01,abc\n")

	h := NewCSVPriceHistory(dir)
	ctx := context.Background()
	tests := []struct {
		name   string
		crypto string
		is     error
	}{
		{"unknown crypto", "Monero", domrepo.ErrUnknownCrypto},
		{"missing file", "Bitcoin", os.ErrNotExist},
		{"no close column", "Ethereum", nil},
		{"garbage close", "Solana", nil},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := h.LatestCloses(ctx, tc.crypto, 30)
			if err == nil {
				t.Fatalf("expected error")
			}
			if tc.is != nil && !errors.Is(err, tc.is) {
				t.Fatalf("want %v, got %v", tc.is, err)
			}
		})
	}
}

func TestParseCloseCells(t *testing.T) {
	tests := []struct {
		in     string
		want   float64
		ok     bool
		hasErr bool
	}{
		{"42000.5", 42000.5, true, false},
		{" 1e3 ", 1000, true, false},
		{"", 0, false, false},
		{"nan", 0, false, false},
		{"null", 0, false, false},
		{"n/a", 0, false, true},
	}
	for _, tc := range tests {
		v, ok, err := parseClose(tc.in)
		if (err != nil) != tc.hasErr || ok != tc.ok || v != tc.want {
			t.Fatalf("parseClose(%q) = %v, %v, %v", tc.in, v, ok, err)
		}
	}
}

func TestNopPublisher(t *testing.T) {
	var p NopForecastPublisher
	if err := p.Publish(context.Background(), &models.ForecastEvent{}); err != nil {
		t.Fatalf("nop publish: %v", err)
	}
}
