package inference

import (
	"fmt"
	"math"

	domsvc "CoinCast/internal/domain/service"
)

// MinMaxScaler is a fitted single-feature min-max transform with the same
// parameterisation as scikit-learn: x_s = x*Scale + Min.
type MinMaxScaler struct {
	Min          float64
	Scale        float64
	DataMin      float64
	DataMax      float64
	FeatureRange [2]float64
}

// ScalerParams is the exported form of a fitted scaler. Each slice holds one
// entry per feature; only single-feature scalers are accepted.
type ScalerParams struct {
	Min          []float64 `json:"min_"`
	Scale        []float64 `json:"scale_"`
	DataMin      []float64 `json:"data_min_"`
	DataMax      []float64 `json:"data_max_"`
	FeatureRange []float64 `json:"feature_range"`
}

// NewMinMaxScaler validates exported parameters.
func NewMinMaxScaler(p ScalerParams) (*MinMaxScaler, error) {
	if len(p.Min) != 1 || len(p.Scale) != 1 {
		return nil, fmt.Errorf("scaler: want 1 feature, got min=%d scale=%d: %w", len(p.Min), len(p.Scale), ErrShape)
	}
	s := &MinMaxScaler{Min: p.Min[0], Scale: p.Scale[0], FeatureRange: [2]float64{0, 1}}
	if s.Scale == 0 || math.IsNaN(s.Scale) || math.IsInf(s.Scale, 0) || math.IsNaN(s.Min) || math.IsInf(s.Min, 0) {
		return nil, fmt.Errorf("scaler: degenerate parameters min=%v scale=%v", s.Min, s.Scale)
	}
	if len(p.DataMin) == 1 {
		s.DataMin = p.DataMin[0]
	}
	if len(p.DataMax) == 1 {
		s.DataMax = p.DataMax[0]
	}
	if len(p.FeatureRange) == 2 {
		s.FeatureRange = [2]float64{p.FeatureRange[0], p.FeatureRange[1]}
	}
	return s, nil
}

func (s *MinMaxScaler) Transform(x float64) float64 { return x*s.Scale + s.Min }

func (s *MinMaxScaler) InverseTransform(y float64) float64 { return (y - s.Min) / s.Scale }

// TransformAll returns a new slice with every value transformed.
func (s *MinMaxScaler) TransformAll(xs []float64) []float64 {
	out := make([]float64, len(xs))
	for i, x := range xs {
		out[i] = s.Transform(x)
	}
	return out
}

var _ domsvc.Scaler = (*MinMaxScaler)(nil)
