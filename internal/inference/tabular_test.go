package inference

import (
	"errors"
	"math"
	"strings"
	"testing"
)

func TestLinearRegressionPredictRow(t *testing.T) {
	m := &LinearRegression{Coef: []float64{0.5, -1, 2}, Intercept: 0.25}
	got, err := m.PredictRow([]float64{2, 1, 0.5})
	if err != nil {
		t.Fatalf("predict: %v", err)
	}
	if want := 0.5*2 - 1 + 2*0.5 + 0.25; math.Abs(got-want) > 1e-12 {
		t.Fatalf("got %v, want %v", got, want)
	}
	if _, err := m.PredictRow([]float64{1, 2}); !errors.Is(err, ErrShape) {
		t.Fatalf("want ErrShape, got %v", err)
	}
}

func TestRandomForestThresholdGoesLeft(t *testing.T) {
	f := &RandomForest{
		NFeatures: 2,
		Trees: []DecisionTree{
			{
				ChildrenLeft:  []int{1, -1, -1},
				ChildrenRight: []int{2, -1, -1},
				Feature:       []int{1, -2, -2},
				Threshold:     []float64{0.5, -2, -2},
				Value:         []float64{0, 1, 3},
			},
			{
				ChildrenLeft:  []int{-1},
				ChildrenRight: []int{-1},
				Feature:       []int{-2},
				Threshold:     []float64{-2},
				Value:         []float64{5},
			},
		},
	}
	if err := f.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}

	tests := []struct {
		row  []float64
		want float64
	}{
		{[]float64{9, 0.5}, (1 + 5) / 2.0},
		{[]float64{9, 0.1}, (1 + 5) / 2.0},
		{[]float64{9, 0.51}, (3 + 5) / 2.0},
	}
	for _, tc := range tests {
		got, err := f.PredictRow(tc.row)
		if err != nil {
			t.Fatalf("predict %v: %v", tc.row, err)
		}
		if got != tc.want {
			t.Fatalf("row %v: got %v, want %v", tc.row, got, tc.want)
		}
	}
}

func TestRandomForestComparesInFloat32(t *testing.T) {
	cut := float64(float32(0.1))
	tree := DecisionTree{
		ChildrenLeft:  []int{1, -1, -1},
		ChildrenRight: []int{2, -1, -1},
		Feature:       []int{0, -2, -2},
		Threshold:     []float64{cut, -2, -2},
		Value:         []float64{0, -1, 1},
	}
	f := &RandomForest{NFeatures: 1, Trees: []DecisionTree{tree}}

	// above the cut in float64, equal to it once rounded to float32
	x := cut + 1e-11
	if float64(float32(x)) != cut || x <= cut {
		t.Fatalf("bad fixture: x=%v cut=%v", x, cut)
	}
	got, err := f.PredictRow([]float64{x})
	if err != nil {
		t.Fatalf("predict: %v", err)
	}
	if got != -1 {
		t.Fatalf("value at the float32 cut should go left, got %v", got)
	}
	if got, _ := f.PredictRow([]float64{0.11}); got != 1 {
		t.Fatalf("value above the cut should go right, got %v", got)
	}
}

func TestParseRandomForestRejectsCycles(t *testing.T) {
	raw := `{"n_features_in_":1,"estimators":[{"children_left":[0],"children_right":[0],"feature":[0],"threshold":[1],"value":[1]}]}`
	if _, err := ParseRandomForest([]byte(raw)); err == nil {
		t.Fatalf("expected error for self-referencing node")
	}
}

const xgbTemplate = `{
  "learner": {
    "learner_model_param": {"base_score": "%BASE%", "num_feature": "2"},
    "objective": {"name": "%OBJ%"},
    "gradient_booster": {"name": "gbtree", "model": {"trees": [
      {"left_children": [1, -1, -1], "right_children": [2, -1, -1],
       "split_indices": [0, 0, 0], "split_conditions": [0.5, -0.25, 0.75],
       "default_left": [true, false, false]},
      {"left_children": [1, -1, -1], "right_children": [2, -1, -1],
       "split_indices": [1, 0, 0], "split_conditions": [0.2, 0.1, 0.2],
       "default_left": [0, 0, 0]}
    ]}}
  }
}`

func xgbJSON(base, obj string) []byte {
	s := strings.ReplaceAll(xgbTemplate, "%BASE%", base)
	return []byte(strings.ReplaceAll(s, "%OBJ%", obj))
}

func TestGradientBoostedPredict(t *testing.T) {
	m, err := ParseGradientBoosted(xgbJSON("[5E-1]", "reg:squarederror"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if m.NumTrees() != 2 || m.NumFeatures() != 2 || m.BaseScore != 0.5 {
		t.Fatalf("unexpected model %+v trees=%d", m, m.NumTrees())
	}

	tests := []struct {
		name string
		row  []float64
		want float64
	}{
		{"both left", []float64{0.1, 0.1}, 0.5 - 0.25 + 0.1},
		// equality goes right in xgboost
		{"split equal", []float64{0.5, 0.2}, 0.5 + 0.75 + 0.2},
		{"missing uses default", []float64{math.NaN(), math.NaN()}, 0.5 - 0.25 + 0.2},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := m.PredictRow(tc.row)
			if err != nil {
				t.Fatalf("predict: %v", err)
			}
			if math.Abs(got-tc.want) > 1e-12 {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestGradientBoostedComparesInFloat32(t *testing.T) {
	// split condition as xgboost serializes float32(0.1)
	raw := `{"learner": {
	  "learner_model_param": {"base_score": "0", "num_feature": "1"},
	  "objective": {"name": "reg:squarederror"},
	  "gradient_booster": {"name": "gbtree", "model": {"trees": [
	    {"left_children": [1, -1, -1], "right_children": [2, -1, -1],
	     "split_indices": [0, 0, 0], "split_conditions": [0.10000000149011612, -1, 1],
	     "default_left": [0, 0, 0]}
	  ]}}
	}}`
	m, err := ParseGradientBoosted([]byte(raw))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	tests := []struct {
		x    float64
		want float64
	}{
		// 0.1 < cut in float64, but float32(0.1) == cut
		{0.1, 1},
		{0.09, -1},
		{0.2, 1},
	}
	for _, tc := range tests {
		got, err := m.PredictRow([]float64{tc.x})
		if err != nil {
			t.Fatalf("predict %v: %v", tc.x, err)
		}
		if got != tc.want {
			t.Fatalf("x=%v: got %v, want %v", tc.x, got, tc.want)
		}
	}
}

func TestParseGradientBoostedErrors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"logistic objective", xgbJSON("5E-1", "binary:logistic")},
		{"bad base score", xgbJSON("abc", "reg:squarederror")},
		{"not json", []byte("{")},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := ParseGradientBoosted(tc.data); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}
