// Package inferencetest builds small deterministic model artifacts for tests.
package inferencetest

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"testing"

	"CoinCast/internal/inference"
)

// Scaler maps prices in [100, 200] onto [0, 1].
func Scaler() inference.ScalerParams {
	return inference.ScalerParams{
		Min:          []float64{-1},
		Scale:        []float64{0.01},
		DataMin:      []float64{100},
		DataMax:      []float64{200},
		FeatureRange: []float64{0, 1},
	}
}

// FitScaler fits a min-max scaler over values into [lo, hi], the way
// sklearn's MinMaxScaler.fit does for a single feature.
func FitScaler(tb testing.TB, values []float64, lo, hi float64) *inference.MinMaxScaler {
	tb.Helper()
	if len(values) == 0 {
		tb.Fatalf("fit scaler: no values")
	}
	dmin, dmax := values[0], values[0]
	for _, v := range values[1:] {
		dmin = math.Min(dmin, v)
		dmax = math.Max(dmax, v)
	}
	span := dmax - dmin
	if span == 0 {
		span = 1
	}
	scale := (hi - lo) / span
	s, err := inference.NewMinMaxScaler(inference.ScalerParams{
		Min:          []float64{lo - dmin*scale},
		Scale:        []float64{scale},
		DataMin:      []float64{dmin},
		DataMax:      []float64{dmax},
		FeatureRange: []float64{lo, hi},
	})
	if err != nil {
		tb.Fatalf("fit scaler: %v", err)
	}
	return s
}

// Linear averages the window and adds a small drift.
func Linear(window int) *inference.LinearRegression {
	coef := make([]float64, window)
	for i := range coef {
		coef[i] = 1 / float64(window)
	}
	return &inference.LinearRegression{Coef: coef, Intercept: 0.01}
}

// Forest has two stumps splitting on the newest value.
func Forest(window int) *inference.RandomForest {
	last := window - 1
	stump := func(th, lo, hi float64) inference.DecisionTree {
		return inference.DecisionTree{
			ChildrenLeft:  []int{1, -1, -1},
			ChildrenRight: []int{2, -1, -1},
			Feature:       []int{last, -2, -2},
			Threshold:     []float64{th, -2, -2},
			Value:         []float64{0, lo, hi},
		}
	}
	return &inference.RandomForest{
		NFeatures: window,
		Trees:     []inference.DecisionTree{stump(0.5, 0.4, 0.6), stump(0.3, 0.2, 0.8)},
	}
}

// XGBoostJSON is a one-tree XGBoost model in native JSON form.
func XGBoostJSON(window int) []byte {
	return []byte(fmt.Sprintf(`{
  "learner": {
    "learner_model_param": {"base_score": "[5E-1]", "num_feature": "%d"},
    "objective": {"name": "reg:squarederror"},
    "gradient_booster": {
      "name": "gbtree",
      "model": {
        "trees": [{
          "left_children": [1, -1, -1],
          "right_children": [2, -1, -1],
          "split_indices": [%d, 0, 0],
          "split_conditions": [0.5, -0.1, 0.1],
          "default_left": [1, 0, 0]
        }]
      }
    }
  }
}`, window, window-1))
}

// fill produces a deterministic, small-magnitude tensor.
func fill(seed float64, shape ...int) inference.Tensor {
	n := 1
	for _, d := range shape {
		n *= d
	}
	data := make([]float64, n)
	for i := range data {
		data[i] = 0.3 * math.Sin(seed+float64(i)*0.7)
	}
	return inference.Tensor{Shape: shape, Data: data}
}

func addRecurrent(sd inference.StateDict, prefix string, gates, in, hidden int, bidirectional bool) {
	suffixes := []string{"_l0"}
	if bidirectional {
		suffixes = append(suffixes, "_l0_reverse")
	}
	for i, s := range suffixes {
		seed := float64(i * 10)
		sd[prefix+".weight_ih"+s] = fill(seed+1, gates*hidden, in)
		sd[prefix+".weight_hh"+s] = fill(seed+2, gates*hidden, hidden)
		sd[prefix+".bias_ih"+s] = fill(seed+3, gates*hidden)
		sd[prefix+".bias_hh"+s] = fill(seed+4, gates*hidden)
	}
}

func addHead(sd inference.StateDict, width int) {
	sd["fc.weight"] = fill(5, 1, width)
	sd["fc.bias"] = inference.Tensor{Shape: []int{1}, Data: []float64{0.5}}
}

// LSTM returns a one-layer LSTM state dict with the given hidden size.
func LSTM(hidden int, bidirectional bool) inference.StateDict {
	sd := inference.StateDict{}
	addRecurrent(sd, "lstm", 4, 1, hidden, bidirectional)
	width := hidden
	if bidirectional {
		width *= 2
	}
	addHead(sd, width)
	return sd
}

// CNNBiLSTM returns a Conv1d(1, channels, 3) -> BiLSTM state dict.
func CNNBiLSTM(channels, hidden int) inference.StateDict {
	sd := inference.StateDict{
		"cnn.weight": fill(7, channels, 1, 3),
		"cnn.bias":   fill(8, channels),
	}
	addRecurrent(sd, "bilstm", 4, channels, hidden, true)
	addHead(sd, 2*hidden)
	return sd
}

// GRU returns a one-layer GRU state dict.
func GRU(hidden int) inference.StateDict {
	sd := inference.StateDict{}
	addRecurrent(sd, "gru", 3, 1, hidden, false)
	addHead(sd, hidden)
	return sd
}

// WriteArtifacts writes a complete artifacts directory for the given window.
func WriteArtifacts(tb testing.TB, dir string, window int) {
	tb.Helper()
	files := map[string]any{
		"minmax_scaler.json":     Scaler(),
		"linear_regression.json": Linear(window),
		"random_forest.json":     Forest(window),
		"lstm_model.json":        LSTM(2, false),
		"bilstm_model.json":      LSTM(2, true),
		"cnn_bilstm_model.json":  CNNBiLSTM(3, 2),
		"gru_model.json":         GRU(2),
	}
	for name, v := range files {
		b, err := json.Marshal(v)
		if err != nil {
			tb.Fatalf("marshal %s: %v", name, err)
		}
		WriteFile(tb, dir, name, b)
	}
	WriteFile(tb, dir, "xgb_best.json", XGBoostJSON(window))
}

func WriteFile(tb testing.TB, dir, name string, b []byte) {
	tb.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), b, 0o644); err != nil {
		tb.Fatalf("write %s: %v", name, err)
	}
}

// Closes returns n synthetic closes between 100 and 200.
func Closes(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 150 + 40*math.Sin(float64(i)/5)
	}
	return out
}
