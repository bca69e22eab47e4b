package domain

import "time"

// ConfigLoader loads engine configuration for a project directory.
type ConfigLoader interface {
	Load(projectPath string) (EngineConfig, error)
}

// RunEntry is one recorded batch run.
type RunEntry struct {
	Timestamp      time.Time `json:"timestamp"`
	CommitHash     string    `json:"commit_hash,omitempty"`
	Total          int       `json:"total"`
	Valid          int       `json:"valid"`
	Invalid        int       `json:"invalid"`
	MeanConfidence float64   `json:"mean_confidence"`
}

// RunHistory stores batch run summaries for a rules repository.
type RunHistory interface {
	Save(projectPath string, entry RunEntry) error
	Load(projectPath string) ([]RunEntry, error)
}

// GitInfo reports the commit a rules repository is at.
type GitInfo interface {
	CommitHash(projectPath string) (string, error)
}

// ValidationObserver is notified of validation outcomes.
type ValidationObserver interface {
	ObserveValidation(r *ValidationResult, elapsed time.Duration)
	ObserveBatch(s BatchSummary, elapsed time.Duration)
}

// BatchSummary aggregates terminal statuses over one batch.
type BatchSummary struct {
	Total   int `json:"total"`
	Valid   int `json:"valid"`
	Invalid int `json:"invalid"`
}

// BatchResult is the outcome of one batch: one result per submitted id and
// the ids in submission order.
type BatchResult struct {
	Results map[string]*ValidationResult `json:"results"`
	Order   []string                     `json:"order"`
	Summary BatchSummary                 `json:"summary"`
}

// Summarize reduces completed results into a summary. Total is the number of
// submitted detections, which may exceed len(results) for duplicate ids.
func Summarize(total int, results []*ValidationResult) BatchSummary {
	s := BatchSummary{Total: total}
	for _, r := range results {
		if r != nil && r.Status != StatusError {
			s.Valid++
		}
	}
	s.Invalid = s.Total - s.Valid
	return s
}

// MeanConfidence averages the confidence over the results of b.
func (b *BatchResult) MeanConfidence() float64 {
	if len(b.Results) == 0 {
		return 0
	}
	var sum float64
	for _, r := range b.Results {
		sum += r.ConfidenceScore
	}
	return sum / float64(len(b.Results))
}
