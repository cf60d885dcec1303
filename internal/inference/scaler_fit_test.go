package inference_test

import (
	"math"
	"testing"

	"CoinCast/internal/inference/inferencetest"
)

func TestMinMaxScalerRoundTrip(t *testing.T) {
	s := inferencetest.FitScaler(t, []float64{0.05, 120, 69000, 3.2}, 0, 1)
	for _, x := range []float64{0.05, 1, 3.2, 1500.75, 42000, 69000, 100000} {
		got := s.InverseTransform(s.Transform(x))
		if math.Abs(got-x) > 1e-9*math.Max(1, math.Abs(x)) {
			t.Fatalf("round trip %v -> %v", x, got)
		}
	}
	if v := s.Transform(0.05); math.Abs(v) > 1e-12 {
		t.Fatalf("data min should map to 0, got %v", v)
	}
	if v := s.Transform(69000); math.Abs(v-1) > 1e-12 {
		t.Fatalf("data max should map to 1, got %v", v)
	}
}
