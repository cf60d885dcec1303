package usecase

import (
	"context"
	"errors"
	"fmt"

	domrepo "CoinCast/internal/domain/repository"
	domsvc "CoinCast/internal/domain/service"
	applogger "CoinCast/pkg/logger"
)

// ErrInsufficientHistory means fewer valid closes exist than the window needs.
var ErrInsufficientHistory = errors.New("insufficient history")

// Window is a normalized input window, oldest value first.
type Window []float64

// Clone returns a copy that can be modified freely.
func (w Window) Clone() Window {
	out := make(Window, len(w))
	copy(out, w)
	return out
}

// WindowExtractor turns a price history into the model input window.
type WindowExtractor struct {
	history domrepo.PriceHistory
	scaler  domsvc.Scaler
	size    int
	l       *applogger.Logger
}

func NewWindowExtractor(history domrepo.PriceHistory, scaler domsvc.Scaler, size int) *WindowExtractor {
	return &WindowExtractor{history: history, scaler: scaler, size: size, l: applogger.Nop()}
}

func (w *WindowExtractor) SetLogger(l *applogger.Logger) { w.l = l }

func (w *WindowExtractor) Size() int { return w.size }

// Extract returns the last Size() valid closes of crypto, normalized.
func (w *WindowExtractor) Extract(ctx context.Context, crypto string) (Window, error) {
	series, err := w.history.LatestCloses(ctx, crypto, w.size)
	if err != nil {
		return nil, fmt.Errorf("history %s: %w", crypto, err)
	}
	closes := series.Closes()
	if len(closes) < w.size {
		w.l.Warn("not enough history",
			applogger.String("crypto", crypto),
			applogger.Int("have", len(closes)),
			applogger.Int("need", w.size),
		)
		return nil, fmt.Errorf("%w: %s has %d closes, need %d", ErrInsufficientHistory, crypto, len(closes), w.size)
	}
	closes = closes[len(closes)-w.size:]

	win := make(Window, w.size)
	for i, c := range closes {
		win[i] = w.scaler.Transform(c)
	}
	return win, nil
}
