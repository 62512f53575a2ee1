package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"veritext/internal/model"
	"veritext/internal/textnorm"
)

var initModelCmd = &cobra.Command{
	Use:   "init-model",
	Short: "Write small demo model artifacts so the service runs out of the box",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		vectorizer, classifier := demoModel()
		if err := model.SaveVectorizer(cfg.Model.VectorizerPath, vectorizer); err != nil {
			return fmt.Errorf("write vectorizer: %w", err)
		}
		if err := model.SaveClassifier(cfg.Model.ClassifierPath, classifier); err != nil {
			return fmt.Errorf("write classifier: %w", err)
		}

		fmt.Printf("Wrote %s and %s (%d features)\n",
			cfg.Model.VectorizerPath, cfg.Model.ClassifierPath, len(vectorizer.Vocabulary))
		return nil
	},
}

// demoModel builds a tiny hand-weighted logistic model. Positive weights
// pull toward "fake", negative toward "real". It exists for demos and local
// development, not for serious classification.
func demoModel() (*model.VectorizerArtifact, *model.ClassifierArtifact) {
	weighted := map[string]float64{
		// sensationalist vocabulary
		"breaking":     1.4,
		"shocking":     1.6,
		"miracle":      1.8,
		"cure":         1.2,
		"exposed":      1.3,
		"secret":       1.1,
		"hoax":         1.7,
		"conspiracy":   1.6,
		"banned":       1.2,
		"viral":        0.9,
		"unbelievable": 1.5,
		"truth":        0.8,
		"they":         0.4,
		"wake":         0.9,
		"sheeple":      2.0,
		"urgent":       1.0,
		"share":        0.7,
		"doctors":      0.6,
		"baffled":      1.4,
		// sober reporting vocabulary
		"study":       -1.1,
		"researchers": -1.2,
		"according":   -1.0,
		"published":   -1.1,
		"university":  -0.9,
		"data":        -0.8,
		"report":      -0.7,
		"official":    -0.6,
		"percent":     -0.8,
		"announced":   -0.6,
		"scientists":  -1.0,
		"evidence":    -1.1,
		"confirmed":   -0.5,
		"local":       -0.4,
		"community":   -0.6,
		"weekend":     -0.3,
		"vaccine":     -0.2,
		"safe":        -0.5,
		"sources":     -0.7,
		"verify":      -0.8,
	}
	// Links themselves lean slightly fake in the training distribution.
	weighted[textnorm.URLToken] = 0.5

	vocabulary := make(map[string]int, len(weighted))
	weights := make([]float64, 0, len(weighted))
	for word, w := range weighted {
		vocabulary[word] = len(weights)
		weights = append(weights, w)
	}

	vectorizer := &model.VectorizerArtifact{
		Kind:       model.VectorizerTFIDF,
		Vocabulary: vocabulary,
	}
	classifier := &model.ClassifierArtifact{
		Kind:          model.ClassifierLogistic,
		Classes:       []string{"real", "fake"},
		Weights:       weights,
		Intercept:     -0.1,
		ExposeWeights: true,
	}
	return vectorizer, classifier
}
