package inference

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// GradientBoosted evaluates an XGBoost gbtree regressor loaded from the
// library's native JSON model format.
type GradientBoosted struct {
	BaseScore float64
	NFeatures int
	Objective string
	trees     []boostedTree
}

type boostedTree struct {
	left, right []int
	split       []int
	cond        []float64
	defaultLeft []bool
}

type xgbModelFile struct {
	Learner struct {
		LearnerModelParam struct {
			BaseScore  string `json:"base_score"`
			NumFeature string `json:"num_feature"`
		} `json:"learner_model_param"`
		GradientBooster struct {
			Name  string `json:"name"`
			Model struct {
				Trees []xgbTreeFile `json:"trees"`
			} `json:"model"`
		} `json:"gradient_booster"`
		Objective struct {
			Name string `json:"name"`
		} `json:"objective"`
	} `json:"learner"`
}

type xgbTreeFile struct {
	LeftChildren    []int     `json:"left_children"`
	RightChildren   []int     `json:"right_children"`
	SplitIndices    []int     `json:"split_indices"`
	SplitConditions []float64 `json:"split_conditions"`
	DefaultLeft     flexBools `json:"default_left"`
}

// flexBools accepts both [0,1] and [false,true]; XGBoost versions differ.
type flexBools []bool

func (b *flexBools) UnmarshalJSON(data []byte) error {
	var asBool []bool
	if err := json.Unmarshal(data, &asBool); err == nil {
		*b = asBool
		return nil
	}
	var asInt []int
	if err := json.Unmarshal(data, &asInt); err != nil {
		return fmt.Errorf("default_left: %w", err)
	}
	out := make([]bool, len(asInt))
	for i, v := range asInt {
		out[i] = v != 0
	}
	*b = out
	return nil
}

// identity-link objectives; the margin is the prediction
var regressionObjectives = map[string]bool{
	"reg:squarederror":     true,
	"reg:linear":           true,
	"reg:absoluteerror":    true,
	"reg:pseudohubererror": true,
	"reg:quantileerror":    true,
}

// ParseGradientBoosted decodes an XGBoost JSON model.
func ParseGradientBoosted(data []byte) (*GradientBoosted, error) {
	var f xgbModelFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("xgboost: decode: %w", err)
	}
	l := f.Learner
	if name := l.GradientBooster.Name; name != "gbtree" {
		return nil, fmt.Errorf("xgboost: unsupported booster %q", name)
	}
	if !regressionObjectives[l.Objective.Name] {
		return nil, fmt.Errorf("xgboost: unsupported objective %q", l.Objective.Name)
	}
	base, err := parseXGBNumber(l.LearnerModelParam.BaseScore)
	if err != nil {
		return nil, fmt.Errorf("xgboost: base_score: %w", err)
	}
	nf, err := strconv.Atoi(strings.TrimSpace(l.LearnerModelParam.NumFeature))
	if err != nil || nf <= 0 {
		return nil, fmt.Errorf("xgboost: bad num_feature %q", l.LearnerModelParam.NumFeature)
	}
	m := &GradientBoosted{BaseScore: base, NFeatures: nf, Objective: l.Objective.Name}
	if len(l.GradientBooster.Model.Trees) == 0 {
		return nil, fmt.Errorf("xgboost: model has no trees")
	}
	for i, tf := range l.GradientBooster.Model.Trees {
		t, err := newBoostedTree(tf, nf)
		if err != nil {
			return nil, fmt.Errorf("xgboost: tree %d: %w", i, err)
		}
		m.trees = append(m.trees, t)
	}
	return m, nil
}

// parseXGBNumber reads "5E-1" as well as the bracketed "[5E-1]" of newer releases.
func parseXGBNumber(s string) (float64, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(strings.TrimPrefix(s, "["), "]")
	return strconv.ParseFloat(s, 64)
}

func newBoostedTree(tf xgbTreeFile, nFeatures int) (boostedTree, error) {
	n := len(tf.LeftChildren)
	if n == 0 {
		return boostedTree{}, fmt.Errorf("empty tree")
	}
	if len(tf.RightChildren) != n || len(tf.SplitIndices) != n || len(tf.SplitConditions) != n || len(tf.DefaultLeft) != n {
		return boostedTree{}, fmt.Errorf("node arrays differ in length: %w", ErrShape)
	}
	for i := 0; i < n; i++ {
		l, r := tf.LeftChildren[i], tf.RightChildren[i]
		if l == -1 {
			continue
		}
		if l <= i || r <= i || l >= n || r >= n {
			return boostedTree{}, fmt.Errorf("node %d: bad children %d/%d", i, l, r)
		}
		if tf.SplitIndices[i] < 0 || tf.SplitIndices[i] >= nFeatures {
			return boostedTree{}, fmt.Errorf("node %d: feature %d out of range", i, tf.SplitIndices[i])
		}
	}
	return boostedTree{
		left:        tf.LeftChildren,
		right:       tf.RightChildren,
		split:       tf.SplitIndices,
		cond:        tf.SplitConditions,
		defaultLeft: tf.DefaultLeft,
	}, nil
}

// leaf walks the tree; at a leaf the split condition slot holds the weight.
// Splits compare in float32, the precision xgboost stores and evaluates them in.
func (t *boostedTree) leaf(row []float64) float64 {
	node := 0
	for t.left[node] != -1 {
		x := row[t.split[node]]
		switch {
		case math.IsNaN(x):
			if t.defaultLeft[node] {
				node = t.left[node]
			} else {
				node = t.right[node]
			}
		case float32(x) < float32(t.cond[node]):
			node = t.left[node]
		default:
			node = t.right[node]
		}
	}
	return t.cond[node]
}

func (m *GradientBoosted) NumFeatures() int { return m.NFeatures }

func (m *GradientBoosted) NumTrees() int { return len(m.trees) }

func (m *GradientBoosted) PredictRow(row []float64) (float64, error) {
	if len(row) != m.NFeatures {
		return 0, fmt.Errorf("xgboost: %d features, model wants %d: %w", len(row), m.NFeatures, ErrShape)
	}
	sum := m.BaseScore
	for i := range m.trees {
		sum += m.trees[i].leaf(row)
	}
	return sum, nil
}
