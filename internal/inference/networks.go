package inference

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// RecurrentRegressor is a recurrent encoder with an optional Conv1d+ReLU
// front-end and a single-output linear head applied to the last timestep.
type RecurrentRegressor struct {
	name string
	conv *conv1d
	rnn  *recurrentStack
	fcW  []float64
	fcB  float64
}

// conv1d is a single-input-channel convolution with zero padding.
type conv1d struct {
	weight  *mat.Dense // C x K
	bias    []float64
	padding int
}

// apply maps a scalar series to a series of ReLU-activated channel vectors.
func (c *conv1d) apply(xs []float64) []*mat.VecDense {
	ch, k := c.weight.Dims()
	outLen := len(xs) + 2*c.padding - k + 1
	if outLen <= 0 {
		return nil
	}
	out := make([]*mat.VecDense, outLen)
	for t := 0; t < outLen; t++ {
		v := make([]float64, ch)
		for o := 0; o < ch; o++ {
			sum := c.bias[o]
			for j := 0; j < k; j++ {
				idx := t + j - c.padding
				if idx < 0 || idx >= len(xs) {
					continue
				}
				sum += c.weight.At(o, j) * xs[idx]
			}
			if sum < 0 {
				sum = 0
			}
			v[o] = sum
		}
		out[t] = mat.NewVecDense(ch, v)
	}
	return out
}

// LoadLSTMRegressor builds the plain or bidirectional LSTM regressor
// (parameters under "lstm." and "fc."). Direction count is detected.
func LoadLSTMRegressor(sd StateDict) (*RecurrentRegressor, error) {
	rnn, err := loadRecurrentStack(sd, "lstm", cellLSTM)
	if err != nil {
		return nil, fmt.Errorf("lstm: %w", err)
	}
	name := "lstm"
	if rnn.bidirectional() {
		name = "bilstm"
	}
	return withHead(sd, name, nil, rnn)
}

// LoadGRURegressor builds the GRU regressor ("gru." and "fc.").
func LoadGRURegressor(sd StateDict) (*RecurrentRegressor, error) {
	rnn, err := loadRecurrentStack(sd, "gru", cellGRU)
	if err != nil {
		return nil, fmt.Errorf("gru: %w", err)
	}
	return withHead(sd, "gru", nil, rnn)
}

// LoadCNNBiLSTM builds the Conv1d -> BiLSTM regressor ("cnn.", "bilstm.", "fc.").
func LoadCNNBiLSTM(sd StateDict) (*RecurrentRegressor, error) {
	shape, err := sd.dims("cnn.weight")
	if err != nil {
		return nil, fmt.Errorf("cnn_bilstm: %w", err)
	}
	if len(shape) != 3 || shape[1] != 1 || shape[0] <= 0 || shape[2] <= 0 {
		return nil, fmt.Errorf("cnn_bilstm: cnn.weight shape %v, want [C 1 K]: %w", shape, ErrShape)
	}
	ch, k := shape[0], shape[2]
	w, err := sd.Matrix("cnn.weight", ch, k)
	if err != nil {
		return nil, fmt.Errorf("cnn_bilstm: %w", err)
	}
	b, err := sd.Vector("cnn.bias", ch)
	if err != nil {
		return nil, fmt.Errorf("cnn_bilstm: %w", err)
	}
	conv := &conv1d{weight: w, bias: b.RawVector().Data, padding: k / 2}

	rnn, err := loadRecurrentStack(sd, "bilstm", cellLSTM)
	if err != nil {
		return nil, fmt.Errorf("cnn_bilstm: %w", err)
	}
	if rnn.inputSize != ch {
		return nil, fmt.Errorf("cnn_bilstm: lstm input %d != conv channels %d: %w", rnn.inputSize, ch, ErrShape)
	}
	return withHead(sd, "cnn_bilstm", conv, rnn)
}

func withHead(sd StateDict, name string, conv *conv1d, rnn *recurrentStack) (*RecurrentRegressor, error) {
	d := rnn.outputSize()
	w, err := sd.Matrix("fc.weight", 1, d)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	b, err := sd.Vector("fc.bias", 1)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return &RecurrentRegressor{
		name: name,
		conv: conv,
		rnn:  rnn,
		fcW:  w.RawRowView(0),
		fcB:  b.AtVec(0),
	}, nil
}

func (m *RecurrentRegressor) Name() string { return m.name }

// InputSize is the number of features expected per timestep.
func (m *RecurrentRegressor) InputSize() int {
	if m.conv != nil {
		return 1
	}
	return m.rnn.inputSize
}

// PredictSequence runs one forward pass over timesteps (oldest first).
func (m *RecurrentRegressor) PredictSequence(steps [][]float64) (float64, error) {
	if len(steps) == 0 {
		return 0, fmt.Errorf("%s: empty sequence: %w", m.name, ErrShape)
	}
	in := m.InputSize()
	for t, s := range steps {
		if len(s) != in {
			return 0, fmt.Errorf("%s: timestep %d has %d features, want %d: %w", m.name, t, len(s), in, ErrShape)
		}
	}

	var seq []*mat.VecDense
	if m.conv != nil {
		xs := make([]float64, len(steps))
		for t, s := range steps {
			xs[t] = s[0]
		}
		seq = m.conv.apply(xs)
		if len(seq) == 0 {
			return 0, fmt.Errorf("%s: sequence shorter than kernel: %w", m.name, ErrShape)
		}
	} else {
		seq = make([]*mat.VecDense, len(steps))
		for t, s := range steps {
			v := make([]float64, len(s))
			copy(v, s)
			seq[t] = mat.NewVecDense(len(v), v)
		}
	}

	last := m.rnn.encode(seq)
	return floats.Dot(m.fcW, last.RawVector().Data) + m.fcB, nil
}
