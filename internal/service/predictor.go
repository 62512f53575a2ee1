// Package service orchestrates normalization, vectorization, classification
// and confidence estimation into one prediction result.
package service

import (
	"errors"
	"math"
	"strings"

	"go.uber.org/zap"

	"veritext/internal/model"
	"veritext/internal/textnorm"
)

// ErrEmptyInput reports empty or whitespace-only input text.
var ErrEmptyInput = errors.New("text input cannot be empty")

// Display labels for the two-valued outcome.
const (
	LabelReal = "Real News"
	LabelFake = "Fake News"
)

// displayLabels canonicalizes whatever raw value the classifier emits,
// including numeric and boolean spellings. Unrecognized labels pass through
// unchanged.
var displayLabels = map[string]string{
	"fake":      LabelFake,
	"fake news": LabelFake,
	"1":         LabelFake,
	"true":      LabelFake,
	"real":      LabelReal,
	"real news": LabelReal,
	"0":         LabelReal,
	"false":     LabelReal,
}

// Prediction is one atomic classification result.
type Prediction struct {
	Label      string
	Confidence float64
	Normalized string
}

// Predictor runs the prediction pipeline. It has no side effects; callers
// decide whether to persist results.
type Predictor struct {
	adapter    *model.Adapter
	confidence *model.ConfidenceEstimator
	logger     *zap.Logger
}

// NewPredictor creates a predictor over the given adapter.
func NewPredictor(adapter *model.Adapter, confidence *model.ConfidenceEstimator, logger *zap.Logger) *Predictor {
	return &Predictor{
		adapter:    adapter,
		confidence: confidence,
		logger:     logger,
	}
}

// Predict classifies raw text and returns the display label, the confidence
// rounded to 3 decimals, and the normalized text the pipeline ran on.
// Fails with ErrEmptyInput on blank input and propagates
// model.ErrModelUnavailable from the adapter.
func (p *Predictor) Predict(rawText string) (*Prediction, error) {
	if strings.TrimSpace(rawText) == "" {
		return nil, ErrEmptyInput
	}

	normalized := textnorm.Normalize(rawText)

	vec, err := p.adapter.Vectorize(normalized)
	if err != nil {
		return nil, err
	}
	rawLabel, err := p.adapter.Classify(vec)
	if err != nil {
		return nil, err
	}
	confidence, err := p.confidence.Estimate(p.adapter, vec)
	if err != nil {
		return nil, err
	}

	return &Prediction{
		Label:      CanonicalLabel(rawLabel),
		Confidence: math.Round(confidence*1000) / 1000,
		Normalized: normalized,
	}, nil
}

// CanonicalLabel maps a raw classifier label to its display form. Labels
// outside the canonicalization table are passed through unchanged.
func CanonicalLabel(raw string) string {
	if display, ok := displayLabels[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return display
	}
	return raw
}
