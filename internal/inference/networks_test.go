package inference

import (
	"errors"
	"math"
	"testing"
)

func scalar(v float64) Tensor { return Tensor{Shape: []int{1}, Data: []float64{v}} }

func col(vs ...float64) Tensor { return Tensor{Shape: []int{len(vs), 1}, Data: vs} }

func vec(vs ...float64) Tensor { return Tensor{Shape: []int{len(vs)}, Data: vs} }

// one-unit LSTM parameters in gate order i, f, g, o
type lstmParams struct {
	wi, wh, bi, bh [4]float64
}

func (p lstmParams) step(x, h, c float64) (float64, float64) {
	pre := func(k int) float64 { return p.wi[k]*x + p.wh[k]*h + p.bi[k] + p.bh[k] }
	i := sigmoid(pre(0))
	f := sigmoid(pre(1))
	g := math.Tanh(pre(2))
	o := sigmoid(pre(3))
	c = f*c + i*g
	return o * math.Tanh(c), c
}

func (p lstmParams) put(sd StateDict, prefix, suffix string) {
	sd[prefix+".weight_ih"+suffix] = col(p.wi[:]...)
	sd[prefix+".weight_hh"+suffix] = col(p.wh[:]...)
	sd[prefix+".bias_ih"+suffix] = vec(p.bi[:]...)
	sd[prefix+".bias_hh"+suffix] = vec(p.bh[:]...)
}

var (
	fwdParams = lstmParams{
		wi: [4]float64{0.5, -0.3, 0.8, 0.2},
		wh: [4]float64{0.1, 0.4, -0.6, 0.3},
		bi: [4]float64{0.05, 0.1, -0.05, 0},
		bh: [4]float64{0, 0.2, 0.1, -0.1},
	}
	revParams = lstmParams{
		wi: [4]float64{-0.4, 0.6, 0.3, 0.9},
		wh: [4]float64{0.2, -0.1, 0.5, 0.1},
		bi: [4]float64{0.1, 0, 0.2, 0.05},
		bh: [4]float64{-0.2, 0.1, 0, 0.3},
	}
)

func TestLSTMMatchesScalarRecurrence(t *testing.T) {
	sd := StateDict{"fc.weight": {Shape: []int{1, 1}, Data: []float64{1.5}}, "fc.bias": scalar(0.1)}
	fwdParams.put(sd, "lstm", "_l0")
	m, err := LoadLSTMRegressor(sd)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if m.Name() != "lstm" || m.InputSize() != 1 {
		t.Fatalf("unexpected model %s in=%d", m.Name(), m.InputSize())
	}

	xs := []float64{0.1, 0.4, 0.35, 0.8, 0.6}
	var h, c float64
	for _, x := range xs {
		h, c = fwdParams.step(x, h, c)
	}
	want := 1.5*h + 0.1

	got, err := m.PredictSequence(steps(xs))
	if err != nil {
		t.Fatalf("predict: %v", err)
	}
	if math.Abs(got-want) > 1e-12 {
		t.Fatalf("got %v, want %v", got, want)
	}

	again, _ := m.PredictSequence(steps(xs))
	if again != got {
		t.Fatalf("state leaked between calls: %v then %v", got, again)
	}
}

func TestBidirectionalUsesLastStepOfBackwardPass(t *testing.T) {
	sd := StateDict{"fc.weight": {Shape: []int{1, 2}, Data: []float64{0.7, -1.2}}, "fc.bias": scalar(0.05)}
	fwdParams.put(sd, "lstm", "_l0")
	revParams.put(sd, "lstm", "_l0_reverse")
	m, err := LoadLSTMRegressor(sd)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if m.Name() != "bilstm" {
		t.Fatalf("want bilstm, got %s", m.Name())
	}

	xs := []float64{0.2, 0.9, 0.4, 0.3}
	var hf, cf float64
	for _, x := range xs {
		hf, cf = fwdParams.step(x, hf, cf)
	}
	// at the final index the backward direction has consumed only xs[last]
	hb, _ := revParams.step(xs[len(xs)-1], 0, 0)
	want := 0.7*hf - 1.2*hb + 0.05

	got, err := m.PredictSequence(steps(xs))
	if err != nil {
		t.Fatalf("predict: %v", err)
	}
	if math.Abs(got-want) > 1e-12 {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestGRUMatchesScalarRecurrence(t *testing.T) {
	wi := []float64{0.3, -0.5, 0.9}
	wh := []float64{0.2, 0.1, -0.4}
	bi := []float64{0.05, 0.1, 0.2}
	bh := []float64{-0.1, 0.3, 0.15}
	sd := StateDict{
		"gru.weight_ih_l0": col(wi...),
		"gru.weight_hh_l0": col(wh...),
		"gru.bias_ih_l0":   vec(bi...),
		"gru.bias_hh_l0":   vec(bh...),
		"fc.weight":        {Shape: []int{1, 1}, Data: []float64{2}},
		"fc.bias":          scalar(-0.3),
	}
	m, err := LoadGRURegressor(sd)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	xs := []float64{0.5, 0.45, 0.7}
	h := 0.0
	for _, x := range xs {
		r := sigmoid(wi[0]*x + bi[0] + wh[0]*h + bh[0])
		z := sigmoid(wi[1]*x + bi[1] + wh[1]*h + bh[1])
		n := math.Tanh(wi[2]*x + bi[2] + r*(wh[2]*h+bh[2]))
		h = (1-z)*n + z*h
	}
	want := 2*h - 0.3

	got, err := m.PredictSequence(steps(xs))
	if err != nil {
		t.Fatalf("predict: %v", err)
	}
	if math.Abs(got-want) > 1e-12 {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestConv1dSamePaddingAndReLU(t *testing.T) {
	sd := StateDict{
		"cnn.weight": {Shape: []int{2, 1, 3}, Data: []float64{1, 2, 3, -1, -1, -1}},
		"cnn.bias":   vec(0, 0.5),
	}
	w, err := sd.Matrix("cnn.weight", 2, 3)
	if err != nil {
		t.Fatalf("matrix: %v", err)
	}
	c := &conv1d{weight: w, bias: []float64{0, 0.5}, padding: 1}
	out := c.apply([]float64{1, 2, 3})
	if len(out) != 3 {
		t.Fatalf("want 3 timesteps, got %d", len(out))
	}
	// channel 0: [0*1+1*2+2*3, 1+4+9, 2+6+0]
	want0 := []float64{8, 14, 8}
	for i, v := range want0 {
		if got := out[i].AtVec(0); got != v {
			t.Fatalf("ch0[%d] = %v, want %v", i, got, v)
		}
		if got := out[i].AtVec(1); got != 0 {
			t.Fatalf("ch1[%d] = %v, want ReLU-clipped 0", i, got)
		}
	}
}

func TestCNNBiLSTMLoadsAndPredicts(t *testing.T) {
	sd := StateDict{
		"cnn.weight": {Shape: []int{1, 1, 3}, Data: []float64{0.2, 0.5, 0.3}},
		"cnn.bias":   vec(0.01),
		"fc.weight":  {Shape: []int{1, 2}, Data: []float64{1, 1}},
		"fc.bias":    scalar(0),
	}
	fwdParams.put(sd, "bilstm", "_l0")
	revParams.put(sd, "bilstm", "_l0_reverse")
	m, err := LoadCNNBiLSTM(sd)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	xs := []float64{0.1, 0.2, 0.3, 0.4}
	conv := make([]float64, len(xs))
	for i := range xs {
		sum := 0.01
		for j, w := range []float64{0.2, 0.5, 0.3} {
			if k := i + j - 1; k >= 0 && k < len(xs) {
				sum += w * xs[k]
			}
		}
		conv[i] = math.Max(0, sum)
	}
	var hf, cf float64
	for _, x := range conv {
		hf, cf = fwdParams.step(x, hf, cf)
	}
	hb, _ := revParams.step(conv[len(conv)-1], 0, 0)

	got, err := m.PredictSequence(steps(xs))
	if err != nil {
		t.Fatalf("predict: %v", err)
	}
	if want := hf + hb; math.Abs(got-want) > 1e-12 {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestLoadRecurrentShapeErrors(t *testing.T) {
	sd := StateDict{"fc.weight": {Shape: []int{1, 1}, Data: []float64{1}}, "fc.bias": scalar(0)}
	fwdParams.put(sd, "lstm", "_l0")
	sd["lstm.bias_hh_l0"] = vec(1, 2, 3)
	if _, err := LoadLSTMRegressor(sd); !errors.Is(err, ErrShape) {
		t.Fatalf("want ErrShape, got %v", err)
	}

	delete(sd, "fc.bias")
	sd["lstm.bias_hh_l0"] = vec(0, 0, 0, 0)
	if _, err := LoadLSTMRegressor(sd); err == nil {
		t.Fatalf("expected missing tensor error")
	}

	if _, err := LoadGRURegressor(StateDict{}); err == nil {
		t.Fatalf("expected error for empty state dict")
	}
}

func TestPredictSequenceRejectsBadInput(t *testing.T) {
	sd := StateDict{"fc.weight": {Shape: []int{1, 1}, Data: []float64{1}}, "fc.bias": scalar(0)}
	fwdParams.put(sd, "lstm", "_l0")
	m, err := LoadLSTMRegressor(sd)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, err := m.PredictSequence(nil); !errors.Is(err, ErrShape) {
		t.Fatalf("empty: want ErrShape, got %v", err)
	}
	if _, err := m.PredictSequence([][]float64{{1, 2}}); !errors.Is(err, ErrShape) {
		t.Fatalf("wide step: want ErrShape, got %v", err)
	}
}

func steps(xs []float64) [][]float64 {
	out := make([][]float64, len(xs))
	for i, x := range xs {
		out[i] = []float64{x}
	}
	return out
}
