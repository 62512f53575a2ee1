package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"veritext/internal/store"
)

type HistoryHandler interface {
	List(c *gin.Context)
	GetByID(c *gin.Context)
	Stats(c *gin.Context)
	UpdateFeedback(c *gin.Context)
	Delete(c *gin.Context)
	ClearAll(c *gin.Context)
	Search(c *gin.Context)
}

type historyHandler struct {
	history     *store.HistoryStore
	pageSize    int
	searchLimit int
	logger      *zap.Logger
}

// NewHistoryHandler creates the analysis-history endpoint handler.
func NewHistoryHandler(history *store.HistoryStore, pageSize, searchLimit int, logger *zap.Logger) HistoryHandler {
	return &historyHandler{
		history:     history,
		pageSize:    pageSize,
		searchLimit: searchLimit,
		logger:      logger,
	}
}

// List handles GET /history with limit/offset pagination.
func (h *historyHandler) List(c *gin.Context) {
	limit := queryInt(c, "limit", h.pageSize)
	offset := queryInt(c, "offset", 0)

	items, total := h.history.List(offset, limit)

	h.logger.Debug("history page served",
		zap.Int("returned", len(items)),
		zap.Int("total", total),
		zap.Int("offset", offset),
		zap.Int("limit", limit))

	c.JSON(http.StatusOK, gin.H{
		"total":    total,
		"items":    items,
		"limit":    limit,
		"offset":   offset,
		"has_more": offset+limit < total,
	})
}

// GetByID handles GET /history/:id.
func (h *historyHandler) GetByID(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	rec, found := h.history.Get(id)
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("Analysis with ID %d not found", id)})
		return
	}
	c.JSON(http.StatusOK, rec)
}

// Stats handles GET /history/stats/summary.
func (h *historyHandler) Stats(c *gin.Context) {
	c.JSON(http.StatusOK, h.history.Stats())
}

// FeedbackRequest is the body of PUT /history/:id/feedback.
type FeedbackRequest struct {
	Feedback string `json:"feedback" binding:"required"`
}

// UpdateFeedback handles PUT /history/:id/feedback.
func (h *historyHandler) UpdateFeedback(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req FeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rec, err := h.history.UpdateFeedback(id, req.Feedback)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("Analysis with ID %d not found", id)})
			return
		}
		h.logger.Error("failed to update feedback", zap.Int64("id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update feedback"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "Feedback updated successfully",
		"analysis": rec,
	})
}

// Delete handles DELETE /history/:id.
func (h *historyHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.history.Delete(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("Analysis with ID %d not found", id)})
			return
		}
		h.logger.Error("failed to delete analysis", zap.Int64("id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete analysis"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":    "Analysis deleted successfully",
		"deleted_id": id,
	})
}

// ClearAll handles DELETE /history.
func (h *historyHandler) ClearAll(c *gin.Context) {
	count := h.history.Clear()
	c.JSON(http.StatusOK, gin.H{
		"message":       fmt.Sprintf("Cleared %d analyses from history", count),
		"cleared_count": count,
	})
}

// Search handles GET /history/search/:query.
func (h *historyHandler) Search(c *gin.Context) {
	query := strings.TrimSpace(c.Param("query"))
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Search query cannot be empty"})
		return
	}
	limit := queryInt(c, "limit", h.searchLimit)

	matches := h.history.Search(query, limit)

	c.JSON(http.StatusOK, gin.H{
		"query":         query,
		"matches":       matches,
		"total_matches": len(matches),
		"limit":         limit,
	})
}

// parseID reads the :id path parameter, answering 400 itself on garbage.
func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid analysis ID"})
		return 0, false
	}
	return id, true
}

func queryInt(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}
