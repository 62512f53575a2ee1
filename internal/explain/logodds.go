package explain

import (
	"math"
	"sort"
	"strings"

	"veritext/internal/models"
	"veritext/internal/textnorm"
)

// Prior is the Dirichlet smoothing constant keeping rare tokens off the
// zero/infinite log-odds asymptotes.
const Prior = 0.01

// Default ranking parameters used when a caller passes non-positive values.
const (
	DefaultRankLimit = 30
	DefaultMinCount  = 2
)

// WordStat is one token's usage split across the two label populations.
type WordStat struct {
	Word      string  `json:"word"`
	LogOdds   float64 `json:"logodds"`
	CountReal int     `json:"count_real"`
	CountFake int     `json:"count_fake"`
	Sum       int     `json:"sum"`
}

// TopByLabel splits the top-ranked words per label for charting. Fake-side
// entries carry the magnitude of their log-odds so both lists plot as
// positive bars.
type TopByLabel struct {
	Real []WordStat `json:"real"`
	Fake []WordStat `json:"fake"`
}

// Ranking is the distinctive-word result over the accumulated history.
type Ranking struct {
	Items      []WordStat `json:"items"`
	TopByLabel TopByLabel `json:"top_by_label"`
	TotalReal  int        `json:"total_real"`
	TotalFake  int        `json:"total_fake"`
}

// labelBucket assigns a record's stored prediction to the real or fake
// population. The recognized vocabulary is a fixed set, matched
// case-insensitively; unrecognized labels skip the record entirely.
func labelBucket(prediction string) (fake bool, ok bool) {
	switch strings.ToLower(strings.TrimSpace(prediction)) {
	case "fake news", "fake", "1", "true":
		return true, true
	case "real news", "real", "0", "false":
		return false, true
	}
	lower := strings.ToLower(prediction)
	if strings.Contains(lower, "fake") {
		return true, true
	}
	if strings.Contains(lower, "real") {
		return false, true
	}
	return false, false
}

// Rank computes Dirichlet-smoothed log-odds of token usage between the real
// and fake labeled record populations. Tokens are the distinct lowercase
// alphanumeric words of each record's text; duplicates within one record
// count once. Positive log-odds associate with "real", negative with "fake".
// Results are sorted by descending absolute value and truncated to limit;
// tokens seen fewer than minCount times in total are dropped.
func Rank(records []*models.AnalysisRecord, limit, minCount int) *Ranking {
	if limit <= 0 {
		limit = DefaultRankLimit
	}
	if minCount <= 0 {
		minCount = DefaultMinCount
	}

	countReal := make(map[string]int)
	countFake := make(map[string]int)
	var totalReal, totalFake int

	for _, rec := range records {
		fake, ok := labelBucket(rec.Prediction)
		if !ok {
			continue
		}
		if fake {
			totalFake++
		} else {
			totalReal++
		}
		for token := range textnorm.TokenSet(strings.ToLower(rec.Text)) {
			if fake {
				countFake[token]++
			} else {
				countReal[token]++
			}
		}
	}

	// Denominators are floored at 1 so an empty label bucket cannot divide
	// by zero.
	tr := float64(totalReal)
	if tr < 1 {
		tr = 1
	}
	tf := float64(totalFake)
	if tf < 1 {
		tf = 1
	}

	words := make(map[string]struct{}, len(countReal)+len(countFake))
	for w := range countReal {
		words[w] = struct{}{}
	}
	for w := range countFake {
		words[w] = struct{}{}
	}

	items := make([]WordStat, 0, len(words))
	for w := range words {
		cr, cf := countReal[w], countFake[w]
		if cr+cf < minCount {
			continue
		}
		oddsReal := (float64(cr) + Prior) / (tr - float64(cr) + Prior)
		oddsFake := (float64(cf) + Prior) / (tf - float64(cf) + Prior)
		items = append(items, WordStat{
			Word:      w,
			LogOdds:   math.Log(oddsReal / oddsFake),
			CountReal: cr,
			CountFake: cf,
			Sum:       cr + cf,
		})
	}

	sort.Slice(items, func(i, j int) bool {
		ai, aj := math.Abs(items[i].LogOdds), math.Abs(items[j].LogOdds)
		if ai != aj {
			return ai > aj
		}
		if items[i].Sum != items[j].Sum {
			return items[i].Sum > items[j].Sum
		}
		return items[i].Word < items[j].Word
	})
	if len(items) > limit {
		items = items[:limit]
	}

	ranking := &Ranking{
		Items:      items,
		TopByLabel: TopByLabel{Real: []WordStat{}, Fake: []WordStat{}},
		TotalReal:  totalReal,
		TotalFake:  totalFake,
	}
	for _, it := range items {
		if it.LogOdds < 0 {
			flipped := it
			flipped.LogOdds = math.Abs(it.LogOdds)
			ranking.TopByLabel.Fake = append(ranking.TopByLabel.Fake, flipped)
		} else {
			ranking.TopByLabel.Real = append(ranking.TopByLabel.Real, it)
		}
	}
	return ranking
}
