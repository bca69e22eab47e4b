package domain

import (
	"time"
)

// Baseline is the per-detection outcome of an earlier batch, kept so a later
// run can spot detections that got worse.
type Baseline struct {
	CreatedAt  time.Time                `json:"created_at"`
	ConfigHash string                   `json:"config_hash"`
	Entries    map[string]BaselineEntry `json:"entries"`
}

type BaselineEntry struct {
	Status          Status  `json:"status"`
	ConfidenceScore float64 `json:"confidence_score"`
}

// Regression is a detection whose outcome is worse than in the baseline.
type Regression struct {
	DetectionID string        `json:"detection_id"`
	Before      BaselineEntry `json:"before"`
	After       BaselineEntry `json:"after"`
}

// NewBaseline captures the outcome of br.
func NewBaseline(br *BatchResult, configHash string) *Baseline {
	b := &Baseline{
		CreatedAt:  time.Now().UTC(),
		ConfigHash: configHash,
		Entries:    make(map[string]BaselineEntry, len(br.Results)),
	}
	for id, r := range br.Results {
		b.Entries[id] = BaselineEntry{Status: r.Status, ConfidenceScore: r.ConfidenceScore}
	}
	return b
}

// IsInvalidated reports whether the baseline was taken under another config.
func (b *Baseline) IsInvalidated(configHash string) bool {
	return b.ConfigHash != configHash
}

// Regressions lists, in submission order, the detections of br whose status
// got worse, or whose confidence dropped while the status held, since the
// baseline. Detections new to br are skipped.
func (b *Baseline) Regressions(br *BatchResult) []Regression {
	var out []Regression
	for _, id := range br.Order {
		before, ok := b.Entries[id]
		r := br.Results[id]
		if !ok || r == nil {
			continue
		}
		after := BaselineEntry{Status: r.Status, ConfidenceScore: r.ConfidenceScore}
		rb, ra := statusRank(before.Status), statusRank(after.Status)
		if ra > rb || (ra == rb && after.ConfidenceScore < before.ConfidenceScore) {
			out = append(out, Regression{DetectionID: id, Before: before, After: after})
		}
	}
	return out
}

func statusRank(s Status) int {
	switch s {
	case StatusSuccess:
		return 0
	case StatusWarning:
		return 1
	default:
		return 2
	}
}
