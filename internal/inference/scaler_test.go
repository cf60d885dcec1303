package inference

import (
	"errors"
	"math"
	"testing"
)

func TestNewMinMaxScaler(t *testing.T) {
	tests := []struct {
		name    string
		params  ScalerParams
		wantErr bool
	}{
		{"ok", ScalerParams{Min: []float64{-1}, Scale: []float64{0.01}}, false},
		{"zero scale", ScalerParams{Min: []float64{0}, Scale: []float64{0}}, true},
		{"nan min", ScalerParams{Min: []float64{math.NaN()}, Scale: []float64{1}}, true},
		{"two features", ScalerParams{Min: []float64{0, 0}, Scale: []float64{1, 1}}, true},
		{"missing", ScalerParams{}, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewMinMaxScaler(tc.params)
			if (err != nil) != tc.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}

	_, err := NewMinMaxScaler(ScalerParams{Min: []float64{0, 0}, Scale: []float64{1, 1}})
	if !errors.Is(err, ErrShape) {
		t.Fatalf("want ErrShape, got %v", err)
	}
}

func TestTransformAllDoesNotAlias(t *testing.T) {
	s, _ := NewMinMaxScaler(ScalerParams{Min: []float64{-1}, Scale: []float64{0.01}})
	in := []float64{100, 150, 200}
	out := s.TransformAll(in)
	want := []float64{0, 0.5, 1}
	for i := range want {
		if math.Abs(out[i]-want[i]) > 1e-12 {
			t.Fatalf("out[%d] = %v, want %v", i, out[i], want[i])
		}
	}
	if in[0] != 100 {
		t.Fatalf("input mutated: %v", in)
	}
}
