// Package model wraps the trained feature extractor and linear classifier
// behind a lazily loaded, capability-resolved adapter.
package model

import (
	"fmt"
	"hash/fnv"
	"math"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"veritext/internal/textnorm"
)

// FeatureEntry is one active dimension of a sparse feature vector.
type FeatureEntry struct {
	Index int
	Value float64
}

// FeatureVector is a sparse vector over the adapter's feature space, ordered
// by first token occurrence in the input.
type FeatureVector []FeatureEntry

// Capabilities describes what the loaded classifier pair can do, resolved
// once at load time rather than re-checked per request.
type Capabilities struct {
	Probabilities   bool // classifier can produce class probabilities
	DecisionScore   bool // classifier can produce a raw margin score
	Coefficients    bool // per-feature linear weights exposed for attribution
	InvertibleVocab bool // feature index maps back to a token string
}

// Adapter owns the vectorizer and classifier artifacts. Loading is lazy and
// guarded: the first call that needs either capability loads both, and
// concurrent first callers never observe partially initialized state. A
// failed load is not memoized, so the artifacts may be retried later.
type Adapter struct {
	vectorizerPath string
	classifierPath string
	logger         *zap.Logger

	mu    sync.Mutex
	ready atomic.Bool

	vectorizer *VectorizerArtifact
	classifier *ClassifierArtifact
	tokens     []string // index -> token, nil for hashing vectorizers
	caps       Capabilities
}

// NewAdapter creates an adapter for the artifacts at the given paths.
// Nothing is read from disk until Load or the first vectorize/classify call.
func NewAdapter(vectorizerPath, classifierPath string, logger *zap.Logger) *Adapter {
	return &Adapter{
		vectorizerPath: vectorizerPath,
		classifierPath: classifierPath,
		logger:         logger,
	}
}

// Load reads and validates both artifacts. It is idempotent and safe for
// concurrent use; subsequent calls after a success are no-ops.
func (a *Adapter) Load() error {
	if a.ready.Load() {
		return nil
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.ready.Load() {
		return nil
	}

	vec := &VectorizerArtifact{}
	if err := loadArtifact(a.vectorizerPath, vec); err != nil {
		return err
	}
	if err := vec.validate(); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrModelUnavailable, a.vectorizerPath, err)
	}

	clf := &ClassifierArtifact{}
	if err := loadArtifact(a.classifierPath, clf); err != nil {
		return err
	}
	if err := clf.validate(vec.dimensions()); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrModelUnavailable, a.classifierPath, err)
	}

	var tokens []string
	if vec.Kind == VectorizerTFIDF {
		tokens = make([]string, len(vec.Vocabulary))
		for tok, idx := range vec.Vocabulary {
			if idx < 0 || idx >= len(tokens) {
				return fmt.Errorf("%w: %s: vocabulary index %d out of range", ErrModelUnavailable, a.vectorizerPath, idx)
			}
			tokens[idx] = tok
		}
	}

	a.vectorizer = vec
	a.classifier = clf
	a.tokens = tokens
	a.caps = Capabilities{
		Probabilities:   clf.Kind == ClassifierLogistic,
		DecisionScore:   true,
		Coefficients:    clf.ExposeWeights,
		InvertibleVocab: tokens != nil,
	}
	a.ready.Store(true)

	a.logger.Info("model artifacts loaded",
		zap.String("vectorizer", vec.Kind),
		zap.String("classifier", clf.Kind),
		zap.Int("features", vec.dimensions()),
		zap.Strings("classes", clf.Classes))
	return nil
}

// Loaded reports whether the artifacts are in memory.
func (a *Adapter) Loaded() bool {
	return a.ready.Load()
}

// Capabilities returns the capability set resolved at load time.
func (a *Adapter) Capabilities() (Capabilities, error) {
	if err := a.Load(); err != nil {
		return Capabilities{}, err
	}
	return a.caps, nil
}

// Classes returns the classifier's raw label set, positive class last.
func (a *Adapter) Classes() ([]string, error) {
	if err := a.Load(); err != nil {
		return nil, err
	}
	return a.classifier.Classes, nil
}

// NumFeatures returns the size of the feature space.
func (a *Adapter) NumFeatures() (int, error) {
	if err := a.Load(); err != nil {
		return 0, err
	}
	return a.vectorizer.dimensions(), nil
}

// TokenForIndex inverts a feature dimension back to its token. The second
// return value is false when the feature space is hash-defined and no
// explicit vocabulary exists.
func (a *Adapter) TokenForIndex(index int) (string, bool) {
	if !a.ready.Load() || a.tokens == nil || index < 0 || index >= len(a.tokens) {
		return "", false
	}
	return a.tokens[index], true
}

// Vectorize converts normalized text into an L2-normalized sparse feature
// vector. Tokens outside the vocabulary are dropped; zero recognized tokens
// yield an empty vector, not an error.
func (a *Adapter) Vectorize(normalized string) (FeatureVector, error) {
	if err := a.Load(); err != nil {
		return nil, err
	}

	var vec FeatureVector
	position := make(map[int]int) // feature index -> slot in vec
	for _, token := range textnorm.Tokens(normalized) {
		idx, ok := a.featureIndex(token)
		if !ok {
			continue
		}
		if slot, seen := position[idx]; seen {
			vec[slot].Value++
			continue
		}
		position[idx] = len(vec)
		vec = append(vec, FeatureEntry{Index: idx, Value: 1})
	}

	if a.vectorizer.Kind == VectorizerTFIDF && len(a.vectorizer.IDF) > 0 {
		for i := range vec {
			vec[i].Value *= a.vectorizer.IDF[vec[i].Index]
		}
	}

	var norm float64
	for _, e := range vec {
		norm += e.Value * e.Value
	}
	if norm > 0 {
		norm = math.Sqrt(norm)
		for i := range vec {
			vec[i].Value /= norm
		}
	}
	return vec, nil
}

func (a *Adapter) featureIndex(token string) (int, bool) {
	if a.vectorizer.Kind == VectorizerHashing {
		h := fnv.New32a()
		h.Write([]byte(token))
		return int(h.Sum32() % uint32(a.vectorizer.NumFeatures)), true
	}
	idx, ok := a.vectorizer.Vocabulary[token]
	return idx, ok
}

// DecisionScore computes the raw linear margin w·x + b. Positive values
// predict Classes()[1].
func (a *Adapter) DecisionScore(vec FeatureVector) (float64, error) {
	if err := a.Load(); err != nil {
		return 0, err
	}
	score := a.classifier.Intercept
	for _, e := range vec {
		score += a.classifier.Weights[e.Index] * e.Value
	}
	return score, nil
}

// Classify predicts the raw label for a feature vector.
func (a *Adapter) Classify(vec FeatureVector) (string, error) {
	score, err := a.DecisionScore(vec)
	if err != nil {
		return "", err
	}
	if score > 0 {
		return a.classifier.Classes[1], nil
	}
	return a.classifier.Classes[0], nil
}

// Probabilities returns per-class probabilities ordered as Classes(). Only
// valid when Capabilities().Probabilities is true; callers gate on that.
func (a *Adapter) Probabilities(vec FeatureVector) ([]float64, error) {
	score, err := a.DecisionScore(vec)
	if err != nil {
		return nil, err
	}
	p := sigmoid(score)
	return []float64{1 - p, p}, nil
}

// Coefficients returns the per-feature linear weights when the artifact
// exposes them for attribution.
func (a *Adapter) Coefficients() ([]float64, bool) {
	if !a.ready.Load() || !a.caps.Coefficients {
		return nil, false
	}
	return a.classifier.Weights, true
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}
