package service

import "CoinCast/internal/domain/models"

// Predictor produces the next normalized value from a normalized window.
// Implementations must not retain or mutate the window.
type Predictor interface {
	PredictOne(window []float64) (float64, error)
	Kind() models.ModelKind
}

// Scaler maps raw prices to the normalized range the models were trained on.
type Scaler interface {
	Transform(x float64) float64
	InverseTransform(y float64) float64
}

// ModelResolver looks up a predictor by model id.
type ModelResolver interface {
	Resolve(id models.ModelID) (Predictor, error)
}

// ModelRegistry resolves predictors and lists what is loaded.
type ModelRegistry interface {
	ModelResolver
	Models() []models.ModelInfo
}
