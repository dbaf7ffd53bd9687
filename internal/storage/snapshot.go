package storage

import (
	"sort"

	"github.com/apgr0ss/covid19-scraper/internal/workbook"
)

// StateTotals is the aggregate row of one state at a point in time
type StateTotals struct {
	Name         string  `json:"name"`
	Confirmed    int64   `json:"confirmed"`
	Deaths       int64   `json:"deaths"`
	FatalityRate float64 `json:"fatality_rate"`
	Counties     int     `json:"counties"`
}

// Snapshot represents the state totals of one run
type Snapshot struct {
	RunID     string                  `json:"run_id"`
	States    map[string]*StateTotals `json:"states"`     // keyed by state name
	UpdatedAt string                  `json:"updated_at"` // RFC3339 timestamp
}

// NewSnapshot creates an empty snapshot
func NewSnapshot() *Snapshot {
	return &Snapshot{
		States: make(map[string]*StateTotals),
	}
}

// CreateSnapshot captures the state rows of a collection
func CreateSnapshot(c *workbook.Collection, runID, updatedAt string) *Snapshot {
	snap := NewSnapshot()
	snap.RunID = runID
	snap.UpdatedAt = updatedAt

	for _, t := range c.Tables() {
		row := t.StateRow()
		snap.States[t.Name] = &StateTotals{
			Name:         t.Name,
			Confirmed:    row.Confirmed,
			Deaths:       row.Deaths,
			FatalityRate: row.FatalityRate,
			Counties:     len(t.Counties()),
		}
	}

	return snap
}

// StateChange describes how one state's totals moved between two snapshots
type StateChange struct {
	State          string `json:"state"`
	New            bool   `json:"new,omitempty"`
	ConfirmedDelta int64  `json:"confirmed_delta"`
	DeathsDelta    int64  `json:"deaths_delta"`
}

// DiffResult contains the results of comparing two snapshots
type DiffResult struct {
	Changes []*StateChange `json:"changes"`
	Missing []string       `json:"missing,omitempty"` // states in previous but not current
}

// Diff compares the current snapshot against a previous one. States whose totals did
// not move are left out.
func Diff(previous, current *Snapshot) *DiffResult {
	result := &DiffResult{
		Changes: make([]*StateChange, 0),
	}

	if previous == nil {
		previous = NewSnapshot()
	}

	for name, cur := range current.States {
		prev, exists := previous.States[name]
		if !exists {
			result.Changes = append(result.Changes, &StateChange{
				State:          name,
				New:            true,
				ConfirmedDelta: cur.Confirmed,
				DeathsDelta:    cur.Deaths,
			})
			continue
		}

		if cur.Confirmed == prev.Confirmed && cur.Deaths == prev.Deaths {
			continue
		}
		result.Changes = append(result.Changes, &StateChange{
			State:          name,
			ConfirmedDelta: cur.Confirmed - prev.Confirmed,
			DeathsDelta:    cur.Deaths - prev.Deaths,
		})
	}

	for name := range previous.States {
		if _, exists := current.States[name]; !exists {
			result.Missing = append(result.Missing, name)
		}
	}

	// Sort for consistent output
	sort.Slice(result.Changes, func(i, j int) bool {
		return result.Changes[i].State < result.Changes[j].State
	})
	sort.Strings(result.Missing)

	return result
}
