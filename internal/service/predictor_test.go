package service

import (
	"errors"
	"math"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"veritext/internal/model"
)

func newTestPredictor(t *testing.T) *Predictor {
	t.Helper()
	dir := t.TempDir()
	vecPath := filepath.Join(dir, "vectorizer.bin")
	clfPath := filepath.Join(dir, "classifier.bin")

	vec := &model.VectorizerArtifact{
		Kind: model.VectorizerTFIDF,
		Vocabulary: map[string]int{
			"breaking": 0,
			"vaccines": 1,
			"cause":    2,
			"the":      3,
			"flu":      4,
			"safe":     5,
			"official": 6,
		},
	}
	clf := &model.ClassifierArtifact{
		Kind:          model.ClassifierLogistic,
		Classes:       []string{"real", "fake"},
		Weights:       []float64{1.0, 0.4, 0.6, 0.0, 0.5, -1.8, -1.2},
		ExposeWeights: true,
	}
	if err := model.SaveVectorizer(vecPath, vec); err != nil {
		t.Fatalf("SaveVectorizer: %v", err)
	}
	if err := model.SaveClassifier(clfPath, clf); err != nil {
		t.Fatalf("SaveClassifier: %v", err)
	}

	adapter := model.NewAdapter(vecPath, clfPath, zap.NewNop())
	return NewPredictor(adapter, model.NewConfidenceEstimator(zap.NewNop()), zap.NewNop())
}

func TestPredictEmptyInput(t *testing.T) {
	p := newTestPredictor(t)
	for _, text := range []string{"", "   ", "\n\t  "} {
		if _, err := p.Predict(text); !errors.Is(err, ErrEmptyInput) {
			t.Errorf("Predict(%q) error = %v, want ErrEmptyInput", text, err)
		}
	}
}

func TestPredictSensationalistText(t *testing.T) {
	p := newTestPredictor(t)

	got, err := p.Predict("BREAKING: vaccines cause the flu!!!")
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	if got.Label != LabelFake {
		t.Errorf("label = %q, want %q", got.Label, LabelFake)
	}
	if got.Normalized != "breaking vaccines cause the flu!" {
		t.Errorf("normalized = %q", got.Normalized)
	}
	if got.Confidence <= 0.5 || got.Confidence > 1 {
		t.Errorf("confidence = %f, want in (0.5, 1]", got.Confidence)
	}
	if math.Round(got.Confidence*1000)/1000 != got.Confidence {
		t.Errorf("confidence = %f, want rounded to 3 decimals", got.Confidence)
	}
}

func TestPredictReassuringText(t *testing.T) {
	p := newTestPredictor(t)

	got, err := p.Predict("vaccines safe official")
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	if got.Label != LabelReal {
		t.Errorf("label = %q, want %q", got.Label, LabelReal)
	}
}

func TestPredictModelUnavailable(t *testing.T) {
	adapter := model.NewAdapter("/missing/vec.bin", "/missing/clf.bin", zap.NewNop())
	p := NewPredictor(adapter, model.NewConfidenceEstimator(zap.NewNop()), zap.NewNop())

	if _, err := p.Predict("some text"); !errors.Is(err, model.ErrModelUnavailable) {
		t.Errorf("Predict error = %v, want ErrModelUnavailable", err)
	}
	// Blank input is rejected before the model is touched.
	if _, err := p.Predict("   "); !errors.Is(err, ErrEmptyInput) {
		t.Errorf("Predict blank error = %v, want ErrEmptyInput", err)
	}
}

func TestCanonicalLabel(t *testing.T) {
	cases := []struct {
		raw  string
		want string
	}{
		{"fake", LabelFake},
		{"FAKE", LabelFake},
		{"Fake News", LabelFake},
		{"1", LabelFake},
		{"true", LabelFake},
		{"real", LabelReal},
		{" Real News ", LabelReal},
		{"0", LabelReal},
		{"false", LabelReal},
		{"satire", "satire"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := CanonicalLabel(tc.raw); got != tc.want {
			t.Errorf("CanonicalLabel(%q) = %q, want %q", tc.raw, got, tc.want)
		}
	}
}
