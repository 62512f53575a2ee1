// Package explain derives per-request and corpus-level explanations for
// classifier decisions.
package explain

import (
	"fmt"
	"math"
	"sort"

	"go.uber.org/zap"

	"veritext/internal/model"
	"veritext/internal/models"
)

// Attributor maps a request's active features back to tokens and their
// signed contribution to the decision.
type Attributor struct {
	adapter *model.Adapter
	logger  *zap.Logger
}

// NewAttributor creates an attributor over the given adapter.
func NewAttributor(adapter *model.Adapter, logger *zap.Logger) *Attributor {
	return &Attributor{adapter: adapter, logger: logger}
}

// Attribute computes token contributions for normalized text: each active
// feature's linear coefficient times its activation. Missing coefficients
// degrade to all-zero contributions; a hash-defined feature space degrades
// to synthetic per-index names. Both are logged, neither fails. The result
// is sorted by descending absolute magnitude, ties keeping first-seen order.
func (a *Attributor) Attribute(normalized string) (models.Contributions, error) {
	vec, err := a.adapter.Vectorize(normalized)
	if err != nil {
		return nil, err
	}
	if len(vec) == 0 {
		return models.Contributions{}, nil
	}

	coefs, hasCoefs := a.adapter.Coefficients()
	if !hasCoefs {
		a.logger.Warn("classifier exposes no coefficients, contributions degraded to zero")
	}

	out := make(models.Contributions, 0, len(vec))
	for _, entry := range vec {
		var value float64
		if hasCoefs {
			value = coefs[entry.Index] * entry.Value
		}
		word, ok := a.adapter.TokenForIndex(entry.Index)
		if !ok {
			word = fmt.Sprintf("feature_%d", entry.Index)
		}
		out = append(out, models.WordContribution{Word: word, Value: value})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return math.Abs(out[i].Value) > math.Abs(out[j].Value)
	})
	return out, nil
}
