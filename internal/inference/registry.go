package inference

import (
	"errors"
	"fmt"
	"sort"

	"CoinCast/internal/domain/models"
	domsvc "CoinCast/internal/domain/service"
)

// ErrUnknownModel is returned by Resolve for ids that were never registered.
var ErrUnknownModel = errors.New("unknown model")

// Registry maps model ids to ready predictors. It is filled once at startup
// and only read afterwards.
type Registry struct {
	predictors map[models.ModelID]domsvc.Predictor
}

func NewRegistry() *Registry {
	return &Registry{predictors: make(map[models.ModelID]domsvc.Predictor)}
}

// Register adds a predictor. Registering an id twice is an error.
func (r *Registry) Register(id models.ModelID, p domsvc.Predictor) error {
	if p == nil {
		return fmt.Errorf("register %s: nil predictor", id)
	}
	if _, dup := r.predictors[id]; dup {
		return fmt.Errorf("register %s: already registered", id)
	}
	r.predictors[id] = p
	return nil
}

func (r *Registry) Resolve(id models.ModelID) (domsvc.Predictor, error) {
	p, ok := r.predictors[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownModel, id)
	}
	return p, nil
}

// Models lists registered models in catalogue order; ids outside the
// catalogue come last, sorted.
func (r *Registry) Models() []models.ModelInfo {
	out := make([]models.ModelInfo, 0, len(r.predictors))
	seen := make(map[models.ModelID]bool, len(r.predictors))
	for _, info := range models.Models() {
		if _, ok := r.predictors[info.ID]; ok {
			out = append(out, info)
			seen[info.ID] = true
		}
	}
	var extra []models.ModelInfo
	for id, p := range r.predictors {
		if !seen[id] {
			extra = append(extra, models.ModelInfo{ID: id, Name: string(id), Kind: p.Kind()})
		}
	}
	sort.Slice(extra, func(i, j int) bool { return extra[i].ID < extra[j].ID })
	return append(out, extra...)
}

func (r *Registry) Len() int { return len(r.predictors) }

var _ domsvc.ModelResolver = (*Registry)(nil)
