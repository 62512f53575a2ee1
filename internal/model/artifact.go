package model

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/vmihailenco/msgpack/v5"
)

// ErrModelUnavailable reports that the model artifacts are missing or corrupt.
// Callers should treat it as a retryable service-degraded condition.
var ErrModelUnavailable = errors.New("model artifacts unavailable")

// Vectorizer artifact kinds.
const (
	VectorizerTFIDF   = "tfidf"
	VectorizerHashing = "hashing"
)

// Classifier artifact kinds.
const (
	ClassifierLogistic = "logistic"
	ClassifierLinear   = "linear"
)

// VectorizerArtifact is the serialized feature extractor. A "tfidf" artifact
// carries an explicit vocabulary and is invertible; a "hashing" artifact
// buckets tokens by hash and exposes no index-to-token mapping.
type VectorizerArtifact struct {
	Kind        string         `msgpack:"kind"`
	Vocabulary  map[string]int `msgpack:"vocabulary"`
	IDF         []float64      `msgpack:"idf"`
	NumFeatures int            `msgpack:"num_features"`
}

// ClassifierArtifact is the serialized linear classifier. Classes[1] is the
// positive class: a positive decision score predicts it. ExposeWeights
// controls whether per-feature coefficients are available for attribution.
type ClassifierArtifact struct {
	Kind          string    `msgpack:"kind"`
	Classes       []string  `msgpack:"classes"`
	Weights       []float64 `msgpack:"weights"`
	Intercept     float64   `msgpack:"intercept"`
	ExposeWeights bool      `msgpack:"expose_weights"`
}

func (a *VectorizerArtifact) validate() error {
	switch a.Kind {
	case VectorizerTFIDF:
		if len(a.Vocabulary) == 0 {
			return fmt.Errorf("tfidf vectorizer has empty vocabulary")
		}
		if len(a.IDF) != 0 && len(a.IDF) != len(a.Vocabulary) {
			return fmt.Errorf("idf length %d does not match vocabulary size %d", len(a.IDF), len(a.Vocabulary))
		}
	case VectorizerHashing:
		if a.NumFeatures <= 0 {
			return fmt.Errorf("hashing vectorizer has non-positive num_features %d", a.NumFeatures)
		}
	default:
		return fmt.Errorf("unknown vectorizer kind %q", a.Kind)
	}
	return nil
}

func (a *VectorizerArtifact) dimensions() int {
	if a.Kind == VectorizerHashing {
		return a.NumFeatures
	}
	return len(a.Vocabulary)
}

func (a *ClassifierArtifact) validate(dimensions int) error {
	switch a.Kind {
	case ClassifierLogistic, ClassifierLinear:
	default:
		return fmt.Errorf("unknown classifier kind %q", a.Kind)
	}
	if len(a.Classes) != 2 {
		return fmt.Errorf("classifier must have exactly 2 classes, got %d", len(a.Classes))
	}
	if len(a.Weights) == 0 {
		return fmt.Errorf("classifier has no weights")
	}
	if len(a.Weights) != dimensions {
		return fmt.Errorf("weight length %d does not match feature space size %d", len(a.Weights), dimensions)
	}
	return nil
}

func loadArtifact(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%w: read %s: %v", ErrModelUnavailable, path, err)
	}
	if err := msgpack.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: decode %s: %v", ErrModelUnavailable, path, err)
	}
	return nil
}

// saveArtifact writes an artifact atomically (tmp file + rename) so a killed
// process never leaves a truncated model on disk.
func saveArtifact(path string, v interface{}) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := msgpack.Marshal(v)
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// SaveVectorizer writes a vectorizer artifact to path.
func SaveVectorizer(path string, a *VectorizerArtifact) error {
	if err := a.validate(); err != nil {
		return err
	}
	return saveArtifact(path, a)
}

// SaveClassifier writes a classifier artifact to path.
func SaveClassifier(path string, a *ClassifierArtifact) error {
	return saveArtifact(path, a)
}
