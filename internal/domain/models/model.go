package models

// ModelID identifies one of the pre-trained forecasting models.
type ModelID string

const (
	ModelLinearRegression ModelID = "linear_regression"
	ModelRandomForest     ModelID = "random_forest"
	ModelXGB              ModelID = "xgb"
	ModelLSTM             ModelID = "lstm"
	ModelBiLSTM           ModelID = "bilstm"
	ModelCNNBiLSTM        ModelID = "cnn_bilstm"
	ModelGRU              ModelID = "gru"
)

// ModelKind is the calling convention a model expects.
type ModelKind string

const (
	// KindTabular models take the window as one flat feature row.
	KindTabular ModelKind = "tabular"
	// KindSequential models take the window as single-feature timesteps.
	KindSequential ModelKind = "sequential"
)

type ModelInfo struct {
	ID   ModelID   `json:"id"`
	Name string    `json:"name"`
	Kind ModelKind `json:"kind"`
}

var modelCatalog = []ModelInfo{
	{ID: ModelLinearRegression, Name: "Linear Regression", Kind: KindTabular},
	{ID: ModelRandomForest, Name: "Random Forest", Kind: KindTabular},
	{ID: ModelXGB, Name: "XGBoost", Kind: KindTabular},
	{ID: ModelLSTM, Name: "LSTM", Kind: KindSequential},
	{ID: ModelBiLSTM, Name: "Bidirectional LSTM", Kind: KindSequential},
	{ID: ModelCNNBiLSTM, Name: "CNN + BiLSTM", Kind: KindSequential},
	{ID: ModelGRU, Name: "GRU", Kind: KindSequential},
}

// Models returns the model catalogue in a stable order.
func Models() []ModelInfo {
	out := make([]ModelInfo, len(modelCatalog))
	copy(out, modelCatalog)
	return out
}

func LookupModel(id ModelID) (ModelInfo, bool) {
	for _, m := range modelCatalog {
		if m.ID == id {
			return m, true
		}
	}
	return ModelInfo{}, false
}

func IsKnownModel(id string) bool {
	_, ok := LookupModel(ModelID(id))
	return ok
}
