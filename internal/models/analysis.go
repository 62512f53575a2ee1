package models

import (
	"bytes"
	"encoding/json"
	"time"
)

// WordContribution is one token's signed pull on the classifier decision.
type WordContribution struct {
	Word  string
	Value float64
}

// Contributions is an ordered token-to-contribution mapping, sorted by
// descending absolute magnitude. It marshals as a JSON object whose key
// order preserves that ranking, which chart consumers rely on.
type Contributions []WordContribution

// MarshalJSON renders the contributions as an ordered JSON object.
func (c Contributions) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, wc := range c {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(wc.Word)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(wc.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a JSON object back into ordered form.
func (c *Contributions) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok != json.Delim('{') {
		return &json.UnmarshalTypeError{Value: "non-object", Type: nil}
	}
	var out Contributions
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		var value float64
		if err := dec.Decode(&value); err != nil {
			return err
		}
		out = append(out, WordContribution{Word: keyTok.(string), Value: value})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*c = out
	return nil
}

// AnalysisRecord is one classified text with its explanation. Records are
// owned by the history store; every accessor hands out copies.
type AnalysisRecord struct {
	ID                int64         `json:"id"`
	Text              string        `json:"text"`
	Prediction        string        `json:"prediction"`
	Confidence        float64       `json:"confidence"`
	Timestamp         time.Time     `json:"timestamp"`
	UserFeedback      *string       `json:"user_feedback"`
	WordContributions Contributions `json:"word_contributions"`
}

// Clone returns a deep copy safe to hand outside the store.
func (r *AnalysisRecord) Clone() *AnalysisRecord {
	cp := *r
	if r.UserFeedback != nil {
		fb := *r.UserFeedback
		cp.UserFeedback = &fb
	}
	if r.WordContributions != nil {
		cp.WordContributions = make(Contributions, len(r.WordContributions))
		copy(cp.WordContributions, r.WordContributions)
	}
	return &cp
}
