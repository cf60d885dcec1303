package inference

import (
	"encoding/json"
	"fmt"
)

// DecisionTree is a regression tree in scikit-learn's flat array layout.
// A node is a leaf when ChildrenLeft is -1; internal nodes send a row left
// when row[Feature] <= Threshold.
type DecisionTree struct {
	ChildrenLeft  []int     `json:"children_left"`
	ChildrenRight []int     `json:"children_right"`
	Feature       []int     `json:"feature"`
	Threshold     []float64 `json:"threshold"`
	Value         []float64 `json:"value"`
}

// RandomForest averages the leaves of its trees.
type RandomForest struct {
	NFeatures int            `json:"n_features_in_"`
	Trees     []DecisionTree `json:"estimators"`
}

// ParseRandomForest decodes and validates an exported forest.
func ParseRandomForest(data []byte) (*RandomForest, error) {
	var f RandomForest
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("random forest: decode: %w", err)
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

func (f *RandomForest) Validate() error {
	if f.NFeatures <= 0 {
		return fmt.Errorf("random forest: n_features_in_ must be positive")
	}
	if len(f.Trees) == 0 {
		return fmt.Errorf("random forest: no estimators")
	}
	for i := range f.Trees {
		if err := f.Trees[i].validate(f.NFeatures); err != nil {
			return fmt.Errorf("random forest: tree %d: %w", i, err)
		}
	}
	return nil
}

func (t *DecisionTree) validate(nFeatures int) error {
	n := len(t.ChildrenLeft)
	if n == 0 {
		return fmt.Errorf("empty tree")
	}
	if len(t.ChildrenRight) != n || len(t.Feature) != n || len(t.Threshold) != n || len(t.Value) != n {
		return fmt.Errorf("node arrays differ in length: %w", ErrShape)
	}
	for i := 0; i < n; i++ {
		l, r := t.ChildrenLeft[i], t.ChildrenRight[i]
		if l == -1 {
			continue
		}
		// children always follow their parent, which also rules out cycles
		if l <= i || r <= i || l >= n || r >= n {
			return fmt.Errorf("node %d: bad children %d/%d", i, l, r)
		}
		if t.Feature[i] < 0 || t.Feature[i] >= nFeatures {
			return fmt.Errorf("node %d: feature %d out of range", i, t.Feature[i])
		}
	}
	return nil
}

// predict rounds inputs to float32 before comparing, as sklearn trees do.
func (t *DecisionTree) predict(row []float64) float64 {
	node := 0
	for t.ChildrenLeft[node] != -1 {
		if float64(float32(row[t.Feature[node]])) <= t.Threshold[node] {
			node = t.ChildrenLeft[node]
		} else {
			node = t.ChildrenRight[node]
		}
	}
	return t.Value[node]
}

func (f *RandomForest) NumFeatures() int { return f.NFeatures }

func (f *RandomForest) PredictRow(row []float64) (float64, error) {
	if len(row) != f.NFeatures {
		return 0, fmt.Errorf("random forest: %d features, model wants %d: %w", len(row), f.NFeatures, ErrShape)
	}
	sum := 0.0
	for i := range f.Trees {
		sum += f.Trees[i].predict(row)
	}
	return sum / float64(len(f.Trees)), nil
}
