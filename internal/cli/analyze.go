package cli

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"veritext/internal/explain"
	"veritext/internal/model"
	"veritext/internal/service"
)

var analyzeTopN int

func init() {
	analyzeCmd.Flags().IntVarP(&analyzeTopN, "top", "n", 10, "Number of word contributions to show")
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze <text>",
	Short: "Classify a single text and show word contributions",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		logger := zap.NewNop()
		adapter := model.NewAdapter(cfg.Model.VectorizerPath, cfg.Model.ClassifierPath, logger)
		predictor := service.NewPredictor(adapter, model.NewConfidenceEstimator(logger), logger)
		attributor := explain.NewAttributor(adapter, logger)

		text := strings.Join(args, " ")
		prediction, err := predictor.Predict(text)
		if err != nil {
			return err
		}
		contributions, err := attributor.Attribute(prediction.Normalized)
		if err != nil {
			return err
		}

		labelColor := color.New(color.FgGreen, color.Bold)
		if strings.Contains(strings.ToLower(prediction.Label), "fake") {
			labelColor = color.New(color.FgRed, color.Bold)
		}
		fmt.Printf("Prediction: %s\n", labelColor.Sprint(prediction.Label))
		fmt.Printf("Confidence: %.3f\n", prediction.Confidence)

		if len(contributions) == 0 {
			fmt.Println("No recognized words to attribute.")
			return nil
		}
		// Positive contributions push toward the positive (fake) class.
		fmt.Println("Top word contributions:")
		for i, wc := range contributions {
			if i >= analyzeTopN {
				break
			}
			value := color.GreenString("%+.4f", wc.Value)
			if wc.Value > 0 {
				value = color.RedString("%+.4f", wc.Value)
			}
			fmt.Printf("  %-20s %s\n", wc.Word, value)
		}
		return nil
	},
}
