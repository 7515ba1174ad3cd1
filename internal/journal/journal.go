// Package journal persists analysis outcomes to a JSON file so
// repeated runs build up an auditable history of what the engine
// recommended and why it refused.
package journal

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"
)

// Record captures one analysis outcome.
type Record struct {
	Timestamp      time.Time `json:"timestamp"`
	Instrument     string    `json:"instrument"`
	Signal         string    `json:"signal"`
	Profile        string    `json:"profile"`
	Proceed        bool      `json:"proceed"`
	Reasons        []string  `json:"reasons,omitempty"`
	SelectedStrike float64   `json:"selected_strike,omitempty"`
	Score          float64   `json:"score,omitempty"`
	RankedCount    int       `json:"ranked_count"`
	Spot           float64   `json:"spot"`
	IVRank         float64   `json:"iv_rank"`
}

// Statistics aggregates journal history.
type Statistics struct {
	TotalAnalyses   int            `json:"total_analyses"`
	Proceeded       int            `json:"proceeded"`
	Rejected        int            `json:"rejected"`
	ProceedRate     float64        `json:"proceed_rate"`
	RejectionCounts map[string]int `json:"rejection_counts"`
}

type journalData struct {
	Records     []Record    `json:"records"`
	Statistics  *Statistics `json:"statistics"`
	LastUpdated time.Time   `json:"last_updated"`
}

// Journal is a mutex-guarded JSON-file store of analysis records.
type Journal struct {
	mu       sync.RWMutex
	filepath string
	data     *journalData
}

// NewJournal opens or creates a journal at the given path. Existing
// history is loaded.
func NewJournal(filepath string) (*Journal, error) {
	j := &Journal{
		filepath: filepath,
		data: &journalData{
			Statistics: &Statistics{RejectionCounts: make(map[string]int)},
		},
	}

	if _, err := os.Stat(filepath); err == nil {
		if err := j.load(); err != nil {
			return nil, fmt.Errorf("loading journal: %w", err)
		}
	}

	return j, nil
}

func (j *Journal) load() error {
	raw, err := os.ReadFile(j.filepath)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, j.data); err != nil {
		return err
	}
	if j.data.Statistics == nil {
		j.data.Statistics = &Statistics{}
	}
	if j.data.Statistics.RejectionCounts == nil {
		j.data.Statistics.RejectionCounts = make(map[string]int)
	}
	return nil
}

// Append adds a record, updates statistics, and persists the journal.
func (j *Journal) Append(r Record) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.data.Records = append(j.data.Records, r)
	j.updateStatistics(r)

	return j.save()
}

func (j *Journal) updateStatistics(r Record) {
	stats := j.data.Statistics
	stats.TotalAnalyses++
	if r.Proceed {
		stats.Proceeded++
	} else {
		stats.Rejected++
		for _, reason := range r.Reasons {
			stats.RejectionCounts[reason]++
		}
	}
	stats.ProceedRate = float64(stats.Proceeded) / float64(stats.TotalAnalyses)
}

// save writes via a temp file and atomic rename so a crash never
// leaves a torn journal. Callers must hold the write lock.
func (j *Journal) save() error {
	j.data.LastUpdated = time.Now()

	raw, err := json.MarshalIndent(j.data, "", "  ")
	if err != nil {
		return err
	}

	tmpFile := j.filepath + ".tmp"
	if err := os.WriteFile(tmpFile, raw, 0o600); err != nil {
		return err
	}

	return os.Rename(tmpFile, j.filepath)
}

// Records returns a copy of the journal history.
func (j *Journal) Records() []Record {
	j.mu.RLock()
	defer j.mu.RUnlock()

	out := make([]Record, len(j.data.Records))
	copy(out, j.data.Records)
	return out
}

// Stats returns a copy of the aggregate statistics.
func (j *Journal) Stats() Statistics {
	j.mu.RLock()
	defer j.mu.RUnlock()

	stats := *j.data.Statistics
	counts := make(map[string]int, len(stats.RejectionCounts))
	for k, v := range stats.RejectionCounts {
		counts[k] = v
	}
	stats.RejectionCounts = counts
	return stats
}
