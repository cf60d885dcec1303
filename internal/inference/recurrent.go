package inference

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// recurrentCell runs one direction of one layer over a whole sequence.
// Every run starts from a zero hidden state; nothing is carried between calls.
type recurrentCell interface {
	run(seq []*mat.VecDense, reverse bool) []*mat.VecDense
	hiddenSize() int
}

// lstmCell holds PyTorch LSTM parameters, gate order i, f, g, o.
type lstmCell struct {
	wih  *mat.Dense // 4H x in
	whh  *mat.Dense // 4H x H
	bias *mat.VecDense
	h    int
}

func (c *lstmCell) hiddenSize() int { return c.h }

func (c *lstmCell) run(seq []*mat.VecDense, reverse bool) []*mat.VecDense {
	h := mat.NewVecDense(c.h, nil)
	cell := make([]float64, c.h)
	out := make([]*mat.VecDense, len(seq))
	gates := mat.NewVecDense(4*c.h, nil)
	rec := mat.NewVecDense(4*c.h, nil)

	for step := range seq {
		t := step
		if reverse {
			t = len(seq) - 1 - step
		}
		gates.MulVec(c.wih, seq[t])
		rec.MulVec(c.whh, h)
		gates.AddVec(gates, rec)
		gates.AddVec(gates, c.bias)

		next := make([]float64, c.h)
		for j := 0; j < c.h; j++ {
			i := sigmoid(gates.AtVec(j))
			f := sigmoid(gates.AtVec(c.h + j))
			g := math.Tanh(gates.AtVec(2*c.h + j))
			o := sigmoid(gates.AtVec(3*c.h + j))
			cell[j] = f*cell[j] + i*g
			next[j] = o * math.Tanh(cell[j])
		}
		h = mat.NewVecDense(c.h, next)
		out[t] = h
	}
	return out
}

// gruCell holds PyTorch GRU parameters, gate order r, z, n. Biases stay
// separate because the hidden bias of n is gated by r.
type gruCell struct {
	wih *mat.Dense // 3H x in
	whh *mat.Dense // 3H x H
	bih *mat.VecDense
	bhh *mat.VecDense
	h   int
}

func (c *gruCell) hiddenSize() int { return c.h }

func (c *gruCell) run(seq []*mat.VecDense, reverse bool) []*mat.VecDense {
	h := mat.NewVecDense(c.h, nil)
	out := make([]*mat.VecDense, len(seq))
	gi := mat.NewVecDense(3*c.h, nil)
	gh := mat.NewVecDense(3*c.h, nil)

	for step := range seq {
		t := step
		if reverse {
			t = len(seq) - 1 - step
		}
		gi.MulVec(c.wih, seq[t])
		gi.AddVec(gi, c.bih)
		gh.MulVec(c.whh, h)
		gh.AddVec(gh, c.bhh)

		next := make([]float64, c.h)
		for j := 0; j < c.h; j++ {
			r := sigmoid(gi.AtVec(j) + gh.AtVec(j))
			z := sigmoid(gi.AtVec(c.h+j) + gh.AtVec(c.h+j))
			n := math.Tanh(gi.AtVec(2*c.h+j) + r*gh.AtVec(2*c.h+j))
			next[j] = (1-z)*n + z*h.AtVec(j)
		}
		h = mat.NewVecDense(c.h, next)
		out[t] = h
	}
	return out
}

// recurrentStack is a multi-layer, optionally bidirectional recurrent
// encoder. Each layer holds one cell per direction.
type recurrentStack struct {
	inputSize int
	layers    [][]recurrentCell
}

// outputSize is the width of each output timestep.
func (s *recurrentStack) outputSize() int {
	last := s.layers[len(s.layers)-1]
	return last[0].hiddenSize() * len(last)
}

func (s *recurrentStack) bidirectional() bool { return len(s.layers[0]) == 2 }

// encode returns the top layer output at the final timestep. For a
// bidirectional stack the backward half at the final timestep has seen only
// the last input, matching out[:, -1, :] in PyTorch.
func (s *recurrentStack) encode(seq []*mat.VecDense) *mat.VecDense {
	cur := seq
	for _, dirs := range s.layers {
		fwd := dirs[0].run(cur, false)
		if len(dirs) == 1 {
			cur = fwd
			continue
		}
		bwd := dirs[1].run(cur, true)
		merged := make([]*mat.VecDense, len(cur))
		for t := range cur {
			merged[t] = concatVec(fwd[t], bwd[t])
		}
		cur = merged
	}
	return cur[len(cur)-1]
}

type cellKind int

const (
	cellLSTM cellKind = iota
	cellGRU
)

func (k cellKind) gates() int {
	if k == cellGRU {
		return 3
	}
	return 4
}

// loadRecurrentStack reads "<prefix>.weight_ih_l{k}[_reverse]" style tensors.
// Input width, layer count, hidden size and direction count all come from
// the state dict.
func loadRecurrentStack(sd StateDict, prefix string, kind cellKind) (*recurrentStack, error) {
	first := fmt.Sprintf("%s.weight_hh_l0", prefix)
	shape, err := sd.dims(first)
	if err != nil {
		return nil, err
	}
	if len(shape) != 2 || shape[1] <= 0 || shape[0] != kind.gates()*shape[1] {
		return nil, fmt.Errorf("%s: unexpected shape %v: %w", first, shape, ErrShape)
	}
	hidden := shape[1]
	directions := 1
	if sd.has(first + "_reverse") {
		directions = 2
	}
	inShape, err := sd.dims(fmt.Sprintf("%s.weight_ih_l0", prefix))
	if err != nil {
		return nil, err
	}
	if len(inShape) != 2 || inShape[1] <= 0 {
		return nil, fmt.Errorf("%s.weight_ih_l0: unexpected shape %v: %w", prefix, inShape, ErrShape)
	}

	stack := &recurrentStack{inputSize: inShape[1]}
	in := inShape[1]
	for layer := 0; sd.has(fmt.Sprintf("%s.weight_ih_l%d", prefix, layer)); layer++ {
		var dirs []recurrentCell
		for d := 0; d < directions; d++ {
			suffix := fmt.Sprintf("_l%d", layer)
			if d == 1 {
				suffix += "_reverse"
			}
			cell, err := loadCell(sd, prefix, suffix, kind, in, hidden)
			if err != nil {
				return nil, err
			}
			dirs = append(dirs, cell)
		}
		stack.layers = append(stack.layers, dirs)
		in = hidden * directions
	}
	if len(stack.layers) == 0 {
		return nil, fmt.Errorf("%s: no layers found", prefix)
	}
	return stack, nil
}

func loadCell(sd StateDict, prefix, suffix string, kind cellKind, in, hidden int) (recurrentCell, error) {
	g := kind.gates() * hidden
	wih, err := sd.Matrix(prefix+".weight_ih"+suffix, g, in)
	if err != nil {
		return nil, err
	}
	whh, err := sd.Matrix(prefix+".weight_hh"+suffix, g, hidden)
	if err != nil {
		return nil, err
	}
	bih, err := sd.Vector(prefix+".bias_ih"+suffix, g)
	if err != nil {
		return nil, err
	}
	bhh, err := sd.Vector(prefix+".bias_hh"+suffix, g)
	if err != nil {
		return nil, err
	}
	if kind == cellGRU {
		return &gruCell{wih: wih, whh: whh, bih: bih, bhh: bhh, h: hidden}, nil
	}
	bias := mat.NewVecDense(g, nil)
	bias.AddVec(bih, bhh)
	return &lstmCell{wih: wih, whh: whh, bias: bias, h: hidden}, nil
}

func sigmoid(x float64) float64 { return 1 / (1 + math.Exp(-x)) }

func concatVec(a, b *mat.VecDense) *mat.VecDense {
	out := make([]float64, 0, a.Len()+b.Len())
	for i := 0; i < a.Len(); i++ {
		out = append(out, a.AtVec(i))
	}
	for i := 0; i < b.Len(); i++ {
		out = append(out, b.AtVec(i))
	}
	return mat.NewVecDense(len(out), out)
}
