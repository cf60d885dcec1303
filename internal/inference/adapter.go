package inference

import (
	"fmt"

	"CoinCast/internal/domain/models"
	domsvc "CoinCast/internal/domain/service"
)

// RowModel is any model scoring one flat feature row.
type RowModel interface {
	NumFeatures() int
	PredictRow(row []float64) (float64, error)
}

// SequenceModel is any model scoring a sequence of timesteps.
type SequenceModel interface {
	InputSize() int
	PredictSequence(steps [][]float64) (float64, error)
}

// TabularAdapter feeds the whole window as a single feature row.
type TabularAdapter struct {
	id    models.ModelID
	model RowModel
}

func NewTabularAdapter(id models.ModelID, m RowModel) *TabularAdapter {
	return &TabularAdapter{id: id, model: m}
}

func (a *TabularAdapter) Kind() models.ModelKind { return models.KindTabular }

func (a *TabularAdapter) PredictOne(window []float64) (float64, error) {
	if len(window) != a.model.NumFeatures() {
		return 0, fmt.Errorf("%s: window of %d, model wants %d: %w", a.id, len(window), a.model.NumFeatures(), ErrShape)
	}
	y, err := a.model.PredictRow(window)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", a.id, err)
	}
	return y, nil
}

// SequenceAdapter reshapes the window into len(window) single-feature timesteps.
type SequenceAdapter struct {
	id    models.ModelID
	model SequenceModel
}

func NewSequenceAdapter(id models.ModelID, m SequenceModel) *SequenceAdapter {
	return &SequenceAdapter{id: id, model: m}
}

func (a *SequenceAdapter) Kind() models.ModelKind { return models.KindSequential }

func (a *SequenceAdapter) PredictOne(window []float64) (float64, error) {
	if a.model.InputSize() != 1 {
		return 0, fmt.Errorf("%s: model expects %d features per step, windows carry 1: %w", a.id, a.model.InputSize(), ErrShape)
	}
	steps := make([][]float64, len(window))
	for i, v := range window {
		steps[i] = []float64{v}
	}
	y, err := a.model.PredictSequence(steps)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", a.id, err)
	}
	return y, nil
}

var (
	_ domsvc.Predictor = (*TabularAdapter)(nil)
	_ domsvc.Predictor = (*SequenceAdapter)(nil)

	_ RowModel      = (*LinearRegression)(nil)
	_ RowModel      = (*RandomForest)(nil)
	_ RowModel      = (*GradientBoosted)(nil)
	_ SequenceModel = (*RecurrentRegressor)(nil)
)
