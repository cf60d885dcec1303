package inference

import (
	"errors"
	"testing"

	"CoinCast/internal/domain/models"
)

func TestRegistryResolve(t *testing.T) {
	r := NewRegistry()
	lin := NewTabularAdapter(models.ModelLinearRegression, &LinearRegression{Coef: []float64{1, 1}, Intercept: 0})
	if err := r.Register(models.ModelLinearRegression, lin); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := r.Register(models.ModelLinearRegression, lin); err == nil {
		t.Fatalf("expected duplicate registration error")
	}

	p, err := r.Resolve(models.ModelLinearRegression)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if p.Kind() != models.KindTabular {
		t.Fatalf("kind = %s", p.Kind())
	}
	y, err := p.PredictOne([]float64{0.25, 0.5})
	if err != nil || y != 0.75 {
		t.Fatalf("predict = %v, %v", y, err)
	}

	if _, err := r.Resolve("arima"); !errors.Is(err, ErrUnknownModel) {
		t.Fatalf("want ErrUnknownModel, got %v", err)
	}
}

func TestRegistryModelsFollowCatalogueOrder(t *testing.T) {
	r := NewRegistry()
	sd := StateDict{"fc.weight": {Shape: []int{1, 1}, Data: []float64{1}}, "fc.bias": scalar(0)}
	fwdParams.put(sd, "lstm", "_l0")
	lstm, err := LoadLSTMRegressor(sd)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	_ = r.Register(models.ModelLSTM, NewSequenceAdapter(models.ModelLSTM, lstm))
	_ = r.Register(models.ModelLinearRegression, NewTabularAdapter(models.ModelLinearRegression, &LinearRegression{Coef: []float64{1}}))

	got := r.Models()
	if len(got) != 2 || got[0].ID != models.ModelLinearRegression || got[1].ID != models.ModelLSTM {
		t.Fatalf("unexpected order %+v", got)
	}
	if got[1].Kind != models.KindSequential {
		t.Fatalf("lstm kind = %s", got[1].Kind)
	}
}

func TestAdaptersCheckWindowShape(t *testing.T) {
	tab := NewTabularAdapter(models.ModelLinearRegression, &LinearRegression{Coef: []float64{1, 2, 3}})
	if _, err := tab.PredictOne([]float64{1, 2}); !errors.Is(err, ErrShape) {
		t.Fatalf("tabular: want ErrShape, got %v", err)
	}

	sd := StateDict{"fc.weight": {Shape: []int{1, 1}, Data: []float64{1}}, "fc.bias": scalar(0)}
	fwdParams.put(sd, "lstm", "_l0")
	lstm, _ := LoadLSTMRegressor(sd)
	seq := NewSequenceAdapter(models.ModelLSTM, lstm)
	window := []float64{0.1, 0.2, 0.3}
	a, err := seq.PredictOne(window)
	if err != nil {
		t.Fatalf("sequence: %v", err)
	}
	b, _ := lstm.PredictSequence(steps(window))
	if a != b {
		t.Fatalf("adapter %v != direct %v", a, b)
	}
	if window[0] != 0.1 {
		t.Fatalf("window mutated")
	}
}
