package artifacts

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"CoinCast/internal/domain/models"
	domsvc "CoinCast/internal/domain/service"
	"CoinCast/internal/inference"
	"CoinCast/pkg/logger"
)

// File names inside the artifacts directory.
const (
	ScalerFile           = "minmax_scaler.json"
	LinearRegressionFile = "linear_regression.json"
	RandomForestFile     = "random_forest.json"
	XGBFile              = "xgb_best.json"
	LSTMFile             = "lstm_model.json"
	BiLSTMFile           = "bilstm_model.json"
	CNNBiLSTMFile        = "cnn_bilstm_model.json"
	GRUFile              = "gru_model.json"
)

// Store holds everything loaded at startup. It is never modified afterwards.
type Store struct {
	Dir      string
	Scaler   *inference.MinMaxScaler
	Registry *inference.Registry
	LoadedAt time.Time
}

type Option func(*loader)

type loader struct {
	log        *logger.Logger
	windowSize int
}

func WithLogger(l *logger.Logger) Option {
	return func(o *loader) { o.log = l }
}

// WithWindowSize makes Load reject models whose input width differs.
func WithWindowSize(n int) Option {
	return func(o *loader) { o.windowSize = n }
}

// Load reads the scaler and all seven models from dir. The first missing or
// malformed artifact aborts the load.
func Load(dir string, opts ...Option) (*Store, error) {
	ld := &loader{log: logger.Nop()}
	for _, opt := range opts {
		opt(ld)
	}

	var params inference.ScalerParams
	if err := readJSON(dir, ScalerFile, &params); err != nil {
		return nil, err
	}
	scaler, err := inference.NewMinMaxScaler(params)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ScalerFile, err)
	}

	reg := inference.NewRegistry()
	steps := []struct {
		id   models.ModelID
		file string
		load func([]byte) (any, error)
	}{
		{models.ModelLinearRegression, LinearRegressionFile, loadLinear},
		{models.ModelRandomForest, RandomForestFile, func(b []byte) (any, error) { return inference.ParseRandomForest(b) }},
		{models.ModelXGB, XGBFile, func(b []byte) (any, error) { return inference.ParseGradientBoosted(b) }},
		{models.ModelLSTM, LSTMFile, stateDictLoader(inference.LoadLSTMRegressor)},
		{models.ModelBiLSTM, BiLSTMFile, stateDictLoader(inference.LoadLSTMRegressor)},
		{models.ModelCNNBiLSTM, CNNBiLSTMFile, stateDictLoader(inference.LoadCNNBiLSTM)},
		{models.ModelGRU, GRUFile, stateDictLoader(inference.LoadGRURegressor)},
	}
	for _, s := range steps {
		raw, err := os.ReadFile(filepath.Join(dir, s.file))
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", s.id, err)
		}
		m, err := s.load(raw)
		if err != nil {
			return nil, fmt.Errorf("load %s from %s: %w", s.id, s.file, err)
		}
		p, err := adapt(s.id, m, ld.windowSize)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", s.id, err)
		}
		if err := reg.Register(s.id, p); err != nil {
			return nil, err
		}
		ld.log.Debug("model loaded", logger.String("model", string(s.id)), logger.String("file", s.file))
	}

	ld.log.Info("artifacts loaded",
		logger.String("dir", dir),
		logger.Int("models", reg.Len()),
		logger.Float64("scaler_min", scaler.DataMin),
		logger.Float64("scaler_max", scaler.DataMax),
	)
	return &Store{Dir: dir, Scaler: scaler, Registry: reg, LoadedAt: time.Now()}, nil
}

func adapt(id models.ModelID, m any, windowSize int) (domsvc.Predictor, error) {
	switch v := m.(type) {
	case inference.RowModel:
		if windowSize > 0 && v.NumFeatures() != windowSize {
			return nil, fmt.Errorf("model has %d features, window is %d: %w", v.NumFeatures(), windowSize, inference.ErrShape)
		}
		return inference.NewTabularAdapter(id, v), nil
	case inference.SequenceModel:
		if v.InputSize() != 1 {
			return nil, fmt.Errorf("model wants %d features per step: %w", v.InputSize(), inference.ErrShape)
		}
		return inference.NewSequenceAdapter(id, v), nil
	default:
		return nil, fmt.Errorf("unsupported model type %T", m)
	}
}

func loadLinear(b []byte) (any, error) {
	var m inference.LinearRegression
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

func stateDictLoader(build func(inference.StateDict) (*inference.RecurrentRegressor, error)) func([]byte) (any, error) {
	return func(b []byte) (any, error) {
		var sd inference.StateDict
		if err := json.Unmarshal(b, &sd); err != nil {
			return nil, fmt.Errorf("decode state dict: %w", err)
		}
		return build(sd)
	}
}

func readJSON(dir, name string, v any) error {
	b, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		return fmt.Errorf("load %s: %w", name, err)
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("decode %s: %w", name, err)
	}
	return nil
}
