package model

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"go.uber.org/zap"
)

func testVectorizer() *VectorizerArtifact {
	return &VectorizerArtifact{
		Kind: VectorizerTFIDF,
		Vocabulary: map[string]int{
			"vaccine":    0,
			"safe":       1,
			"propaganda": 2,
			"breaking":   3,
			"flu":        4,
			"vaccines":   5,
		},
	}
}

func testClassifier() *ClassifierArtifact {
	return &ClassifierArtifact{
		Kind:          ClassifierLogistic,
		Classes:       []string{"real", "fake"},
		Weights:       []float64{0.3, -1.5, 2.0, 1.0, 0.8, 0.3},
		Intercept:     0,
		ExposeWeights: true,
	}
}

func writeArtifacts(t *testing.T, vec *VectorizerArtifact, clf *ClassifierArtifact) (string, string) {
	t.Helper()
	dir := t.TempDir()
	vecPath := filepath.Join(dir, "vectorizer.bin")
	clfPath := filepath.Join(dir, "classifier.bin")
	if err := SaveVectorizer(vecPath, vec); err != nil {
		t.Fatalf("SaveVectorizer: %v", err)
	}
	if err := SaveClassifier(clfPath, clf); err != nil {
		t.Fatalf("SaveClassifier: %v", err)
	}
	return vecPath, clfPath
}

func newTestAdapter(t *testing.T) *Adapter {
	t.Helper()
	vecPath, clfPath := writeArtifacts(t, testVectorizer(), testClassifier())
	return NewAdapter(vecPath, clfPath, zap.NewNop())
}

func TestAdapterLoadMissingArtifacts(t *testing.T) {
	a := NewAdapter("/nonexistent/vec.bin", "/nonexistent/clf.bin", zap.NewNop())
	err := a.Load()
	if !errors.Is(err, ErrModelUnavailable) {
		t.Errorf("Load error = %v, want ErrModelUnavailable", err)
	}
	if a.Loaded() {
		t.Error("adapter should not report loaded after a failed load")
	}
}

func TestAdapterLoadCorruptArtifact(t *testing.T) {
	vecPath, clfPath := writeArtifacts(t, testVectorizer(), testClassifier())
	if err := os.WriteFile(clfPath, []byte("not msgpack"), 0644); err != nil {
		t.Fatal(err)
	}
	a := NewAdapter(vecPath, clfPath, zap.NewNop())
	if err := a.Load(); !errors.Is(err, ErrModelUnavailable) {
		t.Errorf("Load error = %v, want ErrModelUnavailable", err)
	}
}

func TestAdapterLoadDimensionMismatch(t *testing.T) {
	clf := testClassifier()
	clf.Weights = clf.Weights[:3]
	vecPath, clfPath := writeArtifacts(t, testVectorizer(), clf)
	a := NewAdapter(vecPath, clfPath, zap.NewNop())
	if err := a.Load(); !errors.Is(err, ErrModelUnavailable) {
		t.Errorf("Load error = %v, want ErrModelUnavailable", err)
	}
}

func TestAdapterRetriesAfterFailedLoad(t *testing.T) {
	dir := t.TempDir()
	vecPath := filepath.Join(dir, "vectorizer.bin")
	clfPath := filepath.Join(dir, "classifier.bin")

	a := NewAdapter(vecPath, clfPath, zap.NewNop())
	if err := a.Load(); !errors.Is(err, ErrModelUnavailable) {
		t.Fatalf("first Load error = %v, want ErrModelUnavailable", err)
	}

	if err := SaveVectorizer(vecPath, testVectorizer()); err != nil {
		t.Fatal(err)
	}
	if err := SaveClassifier(clfPath, testClassifier()); err != nil {
		t.Fatal(err)
	}
	if err := a.Load(); err != nil {
		t.Errorf("Load after artifacts appeared = %v, want nil", err)
	}
}

func TestAdapterVectorize(t *testing.T) {
	a := newTestAdapter(t)

	vec, err := a.Vectorize("vaccine safe propaganda unknownword")
	if err != nil {
		t.Fatalf("Vectorize: %v", err)
	}
	if len(vec) != 3 {
		t.Fatalf("active features = %d, want 3", len(vec))
	}

	// First-seen order is preserved.
	wantIndices := []int{0, 1, 2}
	var norm float64
	for i, e := range vec {
		if e.Index != wantIndices[i] {
			t.Errorf("entry %d index = %d, want %d", i, e.Index, wantIndices[i])
		}
		norm += e.Value * e.Value
	}
	if math.Abs(norm-1) > 1e-9 {
		t.Errorf("vector squared norm = %f, want 1 (L2 normalized)", norm)
	}
}

func TestAdapterVectorizeNoRecognizedTokens(t *testing.T) {
	a := newTestAdapter(t)
	vec, err := a.Vectorize("completely unknown words only")
	if err != nil {
		t.Fatalf("Vectorize: %v", err)
	}
	if len(vec) != 0 {
		t.Errorf("active features = %d, want 0", len(vec))
	}
}

func TestAdapterClassify(t *testing.T) {
	a := newTestAdapter(t)

	cases := []struct {
		text string
		want string
	}{
		{"propaganda breaking flu", "fake"},
		{"safe vaccine", "real"},
		{"", "real"}, // empty vector scores at the intercept
	}
	for _, tc := range cases {
		vec, err := a.Vectorize(tc.text)
		if err != nil {
			t.Fatalf("Vectorize(%q): %v", tc.text, err)
		}
		got, err := a.Classify(vec)
		if err != nil {
			t.Fatalf("Classify(%q): %v", tc.text, err)
		}
		if got != tc.want {
			t.Errorf("Classify(%q) = %q, want %q", tc.text, got, tc.want)
		}
	}
}

func TestAdapterProbabilitiesSumToOne(t *testing.T) {
	a := newTestAdapter(t)
	vec, _ := a.Vectorize("propaganda safe")
	probs, err := a.Probabilities(vec)
	if err != nil {
		t.Fatalf("Probabilities: %v", err)
	}
	if len(probs) != 2 {
		t.Fatalf("probabilities length = %d, want 2", len(probs))
	}
	if sum := probs[0] + probs[1]; math.Abs(sum-1) > 1e-9 {
		t.Errorf("probabilities sum = %f, want 1", sum)
	}
}

func TestAdapterCapabilities(t *testing.T) {
	a := newTestAdapter(t)
	caps, err := a.Capabilities()
	if err != nil {
		t.Fatal(err)
	}
	if !caps.Probabilities || !caps.DecisionScore || !caps.Coefficients || !caps.InvertibleVocab {
		t.Errorf("capabilities = %+v, want all true for tfidf+logistic with exposed weights", caps)
	}

	if tok, ok := a.TokenForIndex(2); !ok || tok != "propaganda" {
		t.Errorf("TokenForIndex(2) = %q, %v, want propaganda, true", tok, ok)
	}
}

func TestAdapterHashingVectorizer(t *testing.T) {
	vec := &VectorizerArtifact{Kind: VectorizerHashing, NumFeatures: 16}
	clf := &ClassifierArtifact{
		Kind:      ClassifierLinear,
		Classes:   []string{"real", "fake"},
		Weights:   make([]float64, 16),
		Intercept: 0.5,
	}
	vecPath, clfPath := writeArtifacts(t, vec, clf)
	a := NewAdapter(vecPath, clfPath, zap.NewNop())

	fv, err := a.Vectorize("some hashed tokens")
	if err != nil {
		t.Fatalf("Vectorize: %v", err)
	}
	for _, e := range fv {
		if e.Index < 0 || e.Index >= 16 {
			t.Errorf("hashed index %d out of range [0,16)", e.Index)
		}
	}

	caps, _ := a.Capabilities()
	if caps.InvertibleVocab {
		t.Error("hashing feature space must not report an invertible vocabulary")
	}
	if caps.Probabilities {
		t.Error("linear classifier must not report probabilities")
	}
	if _, ok := a.TokenForIndex(0); ok {
		t.Error("TokenForIndex should fail for a hashing vectorizer")
	}
	if _, ok := a.Coefficients(); ok {
		t.Error("Coefficients should be hidden when expose_weights is false")
	}
}

func TestAdapterConcurrentFirstLoad(t *testing.T) {
	a := newTestAdapter(t)

	var wg sync.WaitGroup
	errs := make([]error, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = a.Vectorize("vaccine propaganda")
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Errorf("concurrent Vectorize %d: %v", i, err)
		}
	}
	if !a.Loaded() {
		t.Error("adapter should be loaded after concurrent first access")
	}
}
