package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"veritext/internal/explain"
	"veritext/internal/store"
)

type InsightsHandler interface {
	DistinctWords(c *gin.Context)
	VisualData(c *gin.Context)
}

type insightsHandler struct {
	history  *store.HistoryStore
	limit    int
	minCount int
	logger   *zap.Logger
}

// NewInsightsHandler creates the corpus-level explainability handler.
func NewInsightsHandler(history *store.HistoryStore, limit, minCount int, logger *zap.Logger) InsightsHandler {
	return &insightsHandler{
		history:  history,
		limit:    limit,
		minCount: minCount,
		logger:   logger,
	}
}

// DistinctWords handles GET /insights/distinct-words: the signed log-odds
// ranking of vocabulary between the real and fake buckets.
func (h *insightsHandler) DistinctWords(c *gin.Context) {
	limit := queryInt(c, "limit", h.limit)
	minCount := queryInt(c, "min_count", h.minCount)

	ranking := explain.Rank(h.history.All(), limit, minCount)

	h.logger.Debug("distinctive words ranked",
		zap.Int("items", len(ranking.Items)),
		zap.Int("total_real", ranking.TotalReal),
		zap.Int("total_fake", ranking.TotalFake))

	c.JSON(http.StatusOK, ranking)
}

// chartData matches the Chart.js dataset structure the frontend consumes.
type chartData struct {
	Labels   []string       `json:"labels"`
	Datasets []chartDataset `json:"datasets"`
}

type chartDataset struct {
	Label           string    `json:"label,omitempty"`
	Data            []float64 `json:"data"`
	BackgroundColor []string  `json:"backgroundColor,omitempty"`
	BorderColor     string    `json:"borderColor,omitempty"`
	Fill            *bool     `json:"fill,omitempty"`
}

// trendWindow caps how many recent confidences the trend line shows.
const trendWindow = 20

// VisualData handles GET /visual-data, computing the class distribution and
// confidence trend from the accumulated history.
func (h *insightsHandler) VisualData(c *gin.Context) {
	stats := h.history.Stats()

	classDistribution := chartData{
		Labels: []string{"Real", "Fake"},
		Datasets: []chartDataset{{
			Data:            []float64{float64(stats.RealCount), float64(stats.FakeCount)},
			BackgroundColor: []string{"#22c55e", "#ef4444"},
		}},
	}

	records := h.history.All()
	if len(records) > trendWindow {
		records = records[len(records)-trendWindow:]
	}
	labels := make([]string, 0, len(records))
	confidences := make([]float64, 0, len(records))
	for _, rec := range records {
		labels = append(labels, fmt.Sprintf("#%d", rec.ID))
		confidences = append(confidences, rec.Confidence)
	}
	fill := false
	confidenceTrend := chartData{
		Labels: labels,
		Datasets: []chartDataset{{
			Label:       "Confidence",
			Data:        confidences,
			BorderColor: "#3b82f6",
			Fill:        &fill,
		}},
	}

	c.JSON(http.StatusOK, gin.H{
		"classDistribution": classDistribution,
		"confidenceTrend":   confidenceTrend,
	})
}
