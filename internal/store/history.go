// Package store keeps the in-process, append-only log of analysis records.
package store

import (
	"errors"
	"math"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"veritext/internal/models"
)

// ErrNotFound reports that no record exists for the requested id.
var ErrNotFound = errors.New("analysis not found")

// DefaultPageSize is used when a list or search limit is absent or negative.
const DefaultPageSize = 10

// HistoryStore is a mutex-guarded append-only record log with id lookup.
// Ids are assigned monotonically and never reused, even across Clear.
type HistoryStore struct {
	mu      sync.RWMutex
	records []*models.AnalysisRecord
	index   map[int64]int // id -> position in records
	nextID  int64
	logger  *zap.Logger
}

// NewHistoryStore creates an empty history store.
func NewHistoryStore(logger *zap.Logger) *HistoryStore {
	return &HistoryStore{
		index:  make(map[int64]int),
		logger: logger,
	}
}

// Insert appends a new record, assigning the next id and stamping the
// current time. The returned record is a copy.
func (s *HistoryStore) Insert(text, prediction string, confidence float64, contributions models.Contributions) *models.AnalysisRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	rec := &models.AnalysisRecord{
		ID:                s.nextID,
		Text:              text,
		Prediction:        prediction,
		Confidence:        confidence,
		Timestamp:         time.Now(),
		WordContributions: contributions,
	}
	s.index[rec.ID] = len(s.records)
	s.records = append(s.records, rec)

	s.logger.Debug("analysis recorded",
		zap.Int64("id", rec.ID),
		zap.String("prediction", prediction))
	return rec.Clone()
}

// Get returns a copy of the record with the given id.
func (s *HistoryStore) Get(id int64) (*models.AnalysisRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	pos, ok := s.index[id]
	if !ok {
		return nil, false
	}
	return s.records[pos].Clone(), true
}

// List slices the log in insertion order. An offset beyond the end yields an
// empty page; a negative or zero limit falls back to DefaultPageSize.
func (s *HistoryStore) List(offset, limit int) ([]*models.AnalysisRecord, int) {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if offset < 0 {
		offset = 0
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	total := len(s.records)
	if offset >= total {
		return []*models.AnalysisRecord{}, total
	}
	end := offset + limit
	if end > total {
		end = total
	}
	items := make([]*models.AnalysisRecord, 0, end-offset)
	for _, rec := range s.records[offset:end] {
		items = append(items, rec.Clone())
	}
	return items, total
}

// All returns a point-in-time snapshot of every record in insertion order.
func (s *HistoryStore) All() []*models.AnalysisRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.AnalysisRecord, 0, len(s.records))
	for _, rec := range s.records {
		out = append(out, rec.Clone())
	}
	return out
}

// UpdateFeedback overwrites the user feedback on a record.
func (s *HistoryStore) UpdateFeedback(id int64, feedback string) (*models.AnalysisRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pos, ok := s.index[id]
	if !ok {
		return nil, ErrNotFound
	}
	fb := strings.TrimSpace(feedback)
	s.records[pos].UserFeedback = &fb
	return s.records[pos].Clone(), nil
}

// Delete removes a record. The id counter is unaffected, so the id is never
// reassigned.
func (s *HistoryStore) Delete(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	pos, ok := s.index[id]
	if !ok {
		return ErrNotFound
	}
	s.records = append(s.records[:pos], s.records[pos+1:]...)
	delete(s.index, id)
	for i := pos; i < len(s.records); i++ {
		s.index[s.records[i].ID] = i
	}
	return nil
}

// Clear removes every record and returns the count removed. The id counter
// keeps its high-water mark: inserts after a clear continue the sequence
// rather than restarting at 1.
func (s *HistoryStore) Clear() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := len(s.records)
	s.records = nil
	s.index = make(map[int64]int)
	s.logger.Info("history cleared", zap.Int("removed", count))
	return count
}

// Search returns records whose text contains the query, case-insensitively,
// in insertion order, capped at limit.
func (s *HistoryStore) Search(query string, limit int) []*models.AnalysisRecord {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	needle := strings.ToLower(strings.TrimSpace(query))

	s.mu.RLock()
	defer s.mu.RUnlock()

	matches := []*models.AnalysisRecord{}
	for _, rec := range s.records {
		if strings.Contains(strings.ToLower(rec.Text), needle) {
			matches = append(matches, rec.Clone())
			if len(matches) >= limit {
				break
			}
		}
	}
	return matches
}

// Stats summarizes the accumulated predictions.
type Stats struct {
	TotalAnalyses  int     `json:"total_analyses"`
	FakeCount      int     `json:"fake_count"`
	RealCount      int     `json:"real_count"`
	AvgConfidence  float64 `json:"avg_confidence"`
	RecentAnalyses int     `json:"recent_analyses"`
}

// Stats computes summary statistics over the whole log. RecentAnalyses counts
// records from the last 24 hours.
func (s *HistoryStore) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := Stats{TotalAnalyses: len(s.records)}
	if len(s.records) == 0 {
		return stats
	}

	cutoff := time.Now().Add(-24 * time.Hour)
	var sum float64
	for _, rec := range s.records {
		if strings.Contains(strings.ToLower(rec.Prediction), "fake") {
			stats.FakeCount++
		} else {
			stats.RealCount++
		}
		sum += rec.Confidence
		if rec.Timestamp.After(cutoff) {
			stats.RecentAnalyses++
		}
	}
	stats.AvgConfidence = math.Round(sum/float64(len(s.records))*1000) / 1000
	return stats
}
