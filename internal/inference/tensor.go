package inference

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// ErrShape reports a tensor or input whose dimensions do not fit the model.
var ErrShape = errors.New("shape mismatch")

// Tensor is one exported state-dict entry, data in row-major order.
type Tensor struct {
	Shape []int     `json:"shape"`
	Data  []float64 `json:"data"`
}

// StateDict maps PyTorch parameter names to tensors.
type StateDict map[string]Tensor

func (t Tensor) size() int {
	if len(t.Shape) == 0 {
		return 0
	}
	n := 1
	for _, d := range t.Shape {
		n *= d
	}
	return n
}

func (sd StateDict) get(name string) (Tensor, error) {
	t, ok := sd[name]
	if !ok {
		return Tensor{}, fmt.Errorf("missing tensor %q", name)
	}
	if t.size() != len(t.Data) {
		return Tensor{}, fmt.Errorf("tensor %q: shape %v wants %d values, has %d: %w", name, t.Shape, t.size(), len(t.Data), ErrShape)
	}
	return t, nil
}

func (sd StateDict) has(name string) bool {
	_, ok := sd[name]
	return ok
}

// Matrix returns a rows×cols matrix. Trailing singleton dims are tolerated
// so Conv1d weights [C, 1, K] load as C×K.
func (sd StateDict) Matrix(name string, rows, cols int) (*mat.Dense, error) {
	t, err := sd.get(name)
	if err != nil {
		return nil, err
	}
	if len(t.Shape) == 0 || len(t.Data) != rows*cols || t.Shape[0] != rows {
		return nil, fmt.Errorf("tensor %q: want %dx%d, got %v: %w", name, rows, cols, t.Shape, ErrShape)
	}
	data := make([]float64, len(t.Data))
	copy(data, t.Data)
	return mat.NewDense(rows, cols, data), nil
}

// Vector returns a length-n vector.
func (sd StateDict) Vector(name string, n int) (*mat.VecDense, error) {
	t, err := sd.get(name)
	if err != nil {
		return nil, err
	}
	if len(t.Data) != n {
		return nil, fmt.Errorf("tensor %q: want %d values, got %v: %w", name, n, t.Shape, ErrShape)
	}
	data := make([]float64, n)
	copy(data, t.Data)
	return mat.NewVecDense(n, data), nil
}

// dims returns the shape of a tensor, validating its data length.
func (sd StateDict) dims(name string) ([]int, error) {
	t, err := sd.get(name)
	if err != nil {
		return nil, err
	}
	return t.Shape, nil
}
