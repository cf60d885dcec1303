package inference

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// LinearRegression is an ordinary least squares model: y = coef·x + intercept.
type LinearRegression struct {
	Coef      []float64 `json:"coef"`
	Intercept float64   `json:"intercept"`
}

func (m *LinearRegression) Validate() error {
	if len(m.Coef) == 0 {
		return fmt.Errorf("linear regression: empty coefficients")
	}
	return nil
}

func (m *LinearRegression) NumFeatures() int { return len(m.Coef) }

func (m *LinearRegression) PredictRow(row []float64) (float64, error) {
	if len(row) != len(m.Coef) {
		return 0, fmt.Errorf("linear regression: %d features, model wants %d: %w", len(row), len(m.Coef), ErrShape)
	}
	return floats.Dot(m.Coef, row) + m.Intercept, nil
}
