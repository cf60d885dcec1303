package usecase

import (
	"context"
	"fmt"

	"CoinCast/internal/domain/models"
	domsvc "CoinCast/internal/domain/service"
)

// StepFunc observes each forecast step as it is produced.
type StepFunc func(models.ForecastStep)

// ForecastEngine runs auto-regressive multi-step inference.
type ForecastEngine struct {
	scaler domsvc.Scaler
}

func NewForecastEngine(scaler domsvc.Scaler) *ForecastEngine {
	return &ForecastEngine{scaler: scaler}
}

// Forecast predicts horizon future prices. Each step feeds the normalized
// prediction back into the window (oldest dropped); the returned prices are
// de-normalized. window is not modified. Any failed step aborts the run.
func (e *ForecastEngine) Forecast(ctx context.Context, window Window, p domsvc.Predictor, horizon int, onStep StepFunc) ([]float64, error) {
	if horizon < 1 {
		return nil, fmt.Errorf("horizon must be at least 1, got %d", horizon)
	}
	if len(window) == 0 {
		return nil, fmt.Errorf("empty window")
	}

	cur := window.Clone()
	out := make([]float64, 0, horizon)
	for step := 1; step <= horizon; step++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		ys, err := p.PredictOne(cur)
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", step, err)
		}
		y := e.scaler.InverseTransform(ys)
		out = append(out, y)
		if onStep != nil {
			onStep(models.ForecastStep{Step: step, Price: y})
		}
		copy(cur, cur[1:])
		cur[len(cur)-1] = ys
	}
	return out, nil
}
