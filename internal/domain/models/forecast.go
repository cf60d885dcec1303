package models

import "time"

// PredictRequest is the body of POST /predict. Horizon is a pointer so an
// explicit 0 survives defaulting and is rejected by validation.
type PredictRequest struct {
	Crypto  string `json:"crypto" validate:"required,crypto"`
	Model   string `json:"model" validate:"required,model_id"`
	Horizon *int   `json:"horizon" default:"1" validate:"required,gte=1,max_horizon"`
}

// HorizonOrDefault returns the requested horizon, 1 when unset.
func (r PredictRequest) HorizonOrDefault() int {
	if r.Horizon == nil {
		return 1
	}
	return *r.Horizon
}

type PredictResponse struct {
	PredictedPrices []float64 `json:"predicted_prices"`
}

// ForecastStep is streamed once per predicted day.
type ForecastStep struct {
	Step  int     `json:"step"`
	Price float64 `json:"price"`
}

// ForecastEvent is published after a successful forecast.
type ForecastEvent struct {
	ID        string    `json:"id"`
	Crypto    string    `json:"crypto"`
	Model     string    `json:"model"`
	Horizon   int       `json:"horizon"`
	Prices    []float64 `json:"predicted_prices"`
	Cached    bool      `json:"cached"`
	CreatedAt time.Time `json:"created_at"`
}
