package model

import "go.uber.org/zap"

// NeutralConfidence is reported when the classifier exposes neither
// probabilities nor a decision score.
const NeutralConfidence = 0.5

// ConfidenceEstimator derives a single certainty scalar in [0,1] from
// whatever scoring capability the classifier exposes.
type ConfidenceEstimator struct {
	logger *zap.Logger
}

// NewConfidenceEstimator creates a confidence estimator.
func NewConfidenceEstimator(logger *zap.Logger) *ConfidenceEstimator {
	return &ConfidenceEstimator{logger: logger}
}

// Estimate computes confidence for a vectorized input. Preference order:
// maximum class probability, then sigmoid of the raw decision score, then a
// neutral default logged as a degraded path. The result is clamped to [0,1]
// regardless of which path produced it.
func (e *ConfidenceEstimator) Estimate(adapter *Adapter, vec FeatureVector) (float64, error) {
	caps, err := adapter.Capabilities()
	if err != nil {
		return 0, err
	}

	var confidence float64
	switch {
	case caps.Probabilities:
		probs, err := adapter.Probabilities(vec)
		if err != nil {
			return 0, err
		}
		for _, p := range probs {
			if p > confidence {
				confidence = p
			}
		}
	case caps.DecisionScore:
		score, err := adapter.DecisionScore(vec)
		if err != nil {
			return 0, err
		}
		confidence = sigmoid(score)
	default:
		e.logger.Warn("classifier exposes no probability or score capability, using neutral confidence")
		confidence = NeutralConfidence
	}

	if confidence < 0 || confidence > 1 {
		e.logger.Warn("computed confidence outside [0,1], clamping",
			zap.Float64("confidence", confidence))
		confidence = clamp01(confidence)
	}
	return confidence, nil
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
