package handler

import (
	"errors"
	"net/http"
	"strings"
	"unicode"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"veritext/internal/explain"
	"veritext/internal/model"
	"veritext/internal/service"
	"veritext/internal/store"
)

type PredictHandler interface {
	Predict(c *gin.Context)
	Health(c *gin.Context)
}

type predictHandler struct {
	predictor  *service.Predictor
	attributor *explain.Attributor
	history    *store.HistoryStore
	adapter    *model.Adapter
	maxTextLen int
	logger     *zap.Logger
}

// NewPredictHandler creates the prediction endpoint handler.
func NewPredictHandler(predictor *service.Predictor, attributor *explain.Attributor, history *store.HistoryStore, adapter *model.Adapter, maxTextLen int, logger *zap.Logger) PredictHandler {
	return &predictHandler{
		predictor:  predictor,
		attributor: attributor,
		history:    history,
		adapter:    adapter,
		maxTextLen: maxTextLen,
		logger:     logger,
	}
}

// PredictRequest is the body of POST /predict.
type PredictRequest struct {
	Text string `json:"text"`
}

// Predict handles POST /predict: validate, classify, attribute, record.
func (h *predictHandler) Predict(c *gin.Context) {
	var req PredictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if msg := h.validate(req.Text); msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}

	prediction, err := h.predictor.Predict(req.Text)
	if err != nil {
		h.respondPredictError(c, err)
		return
	}

	contributions, err := h.attributor.Attribute(prediction.Normalized)
	if err != nil {
		h.respondPredictError(c, err)
		return
	}

	rec := h.history.Insert(req.Text, prediction.Label, prediction.Confidence, contributions)

	c.JSON(http.StatusOK, gin.H{
		"prediction":    rec.Prediction,
		"confidence":    rec.Confidence,
		"id":            rec.ID,
		"contributions": rec.WordContributions,
	})
}

// validate enforces the request-level text bounds. Returns an empty string
// when the text is acceptable.
func (h *predictHandler) validate(text string) string {
	if strings.TrimSpace(text) == "" {
		return "Text input cannot be empty"
	}
	if len(text) > h.maxTextLen {
		return "Text input exceeds maximum length"
	}
	for _, r := range text {
		if unicode.IsLetter(r) {
			return ""
		}
	}
	return "Text input must contain alphabetic content"
}

// respondPredictError maps the error taxonomy onto status codes: client
// errors, degraded model, and everything else kept distinct.
func (h *predictHandler) respondPredictError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrEmptyInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, model.ErrModelUnavailable):
		h.logger.Error("model unavailable", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Prediction service temporarily degraded, try again later"})
	default:
		h.logger.Error("prediction failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Prediction failed"})
	}
}

// Health handles GET /health.
func (h *predictHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":       "ok",
		"model_loaded": h.adapter.Loaded(),
	})
}
