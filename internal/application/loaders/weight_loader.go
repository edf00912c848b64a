package loaders

import (
	"context"
	"time"

	"github.com/graph-gophers/dataloader/v7"
)

// BatchWeights resolves many users' weights at one place
type BatchWeights interface {
	Weights(ctx context.Context, placeID string, userIDs []string) map[string]float64
}

// WeightLoader batches weight lookups for a single place. A loader is meant to
// live for one request; its memo must not outlive the read it serves.
type WeightLoader struct {
	loader *dataloader.Loader[string, float64]
}

// NewWeightLoader creates a loader bound to placeID
func NewWeightLoader(placeID string, weights BatchWeights) *WeightLoader {
	batch := func(ctx context.Context, userIDs []string) []*dataloader.Result[float64] {
		byUser := weights.Weights(ctx, placeID, userIDs)
		results := make([]*dataloader.Result[float64], len(userIDs))
		for i, userID := range userIDs {
			results[i] = &dataloader.Result[float64]{Data: byUser[userID]}
		}
		return results
	}

	return &WeightLoader{
		loader: dataloader.NewBatchedLoader(batch,
			dataloader.WithWait[string, float64](time.Millisecond),
			dataloader.WithBatchCapacity[string, float64](500),
		),
	}
}

// Load returns the weight of one user
func (l *WeightLoader) Load(ctx context.Context, userID string) (float64, error) {
	return l.loader.Load(ctx, userID)()
}

// LoadAll returns the weights of userIDs keyed by user
func (l *WeightLoader) LoadAll(ctx context.Context, userIDs []string) (map[string]float64, error) {
	values, errs := l.loader.LoadMany(ctx, userIDs)()
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	weights := make(map[string]float64, len(userIDs))
	for i, userID := range userIDs {
		weights[userID] = values[i]
	}
	return weights, nil
}
