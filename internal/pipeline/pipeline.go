package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/apgr0ss/covid19-scraper/internal/county"
	"github.com/apgr0ss/covid19-scraper/internal/logger"
	"github.com/apgr0ss/covid19-scraper/internal/source"
	"github.com/apgr0ss/covid19-scraper/internal/table"
	"github.com/apgr0ss/covid19-scraper/internal/token"
	"github.com/apgr0ss/covid19-scraper/internal/workbook"
)

// ErrNoData is returned for a state whose block holds no tokens
var ErrNoData = errors.New("no data for state")

// Options control how a run treats failing states
type Options struct {
	// Strict aborts the run on the first failing state.
	Strict bool
}

// Failure records a state that was skipped
type Failure struct {
	Index int    `json:"index"`
	State string `json:"state"`
	Err   error  `json:"-"`
}

// Reason returns the failure message
func (f Failure) Reason() string {
	if f.Err == nil {
		return ""
	}
	return f.Err.Error()
}

// Result is the outcome of a run
type Result struct {
	Collection *workbook.Collection
	Failures   []Failure
	Total      int
}

// ParseState turns one pair of raw blocks into a StateTable.
func ParseState(pair source.BlockPair) (*table.StateTable, error) {
	state := token.CleanState(pair.State)
	if len(state) == 0 {
		return nil, ErrNoData
	}

	groups := county.GroupTokens(token.Clean(pair.Counties))
	return table.Assemble(state, groups)
}

// Run reads every block pair from src and assembles a collection of state tables.
// Parsing for all states completes before Run returns; nothing is exported here.
func Run(ctx context.Context, src source.Source, opts Options) (*Result, error) {
	pairs, err := src.StateBlocks(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading state blocks: %w", err)
	}

	result := &Result{
		Collection: workbook.NewCollection(),
		Total:      len(pairs),
	}

	for i, pair := range pairs {
		start := time.Now()

		t, err := ParseState(pair)
		if err == nil {
			err = result.Collection.Add(t)
		}
		logger.RecordTiming("state.assemble", time.Since(start))

		if err != nil {
			label := stateLabel(pair)
			if opts.Strict {
				return nil, fmt.Errorf("state %d (%s): %w", i, label, err)
			}

			logger.Error("Skipping state", logger.Fields{"index": i, "state": label}, err)
			logger.IncrCounter("states.skipped")
			result.Failures = append(result.Failures, Failure{Index: i, State: label, Err: err})
			continue
		}

		logger.Debug("Assembled state", logger.Fields{"state": t.Name, "counties": len(t.Counties())})
		logger.IncrCounter("states.parsed")
	}

	logger.SetGauge("states.exported", float64(result.Collection.Len()))
	return result, nil
}

// stateLabel names a pair for reporting, even when it could not be parsed. The first
// name token wins so a leading count or delta line does not stand in for the state.
func stateLabel(pair source.BlockPair) string {
	for _, tok := range token.Clean(pair.State) {
		if tok.IsName() {
			return tok.Text
		}
	}
	for _, line := range strings.Split(pair.State, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return line
		}
	}
	return "(empty)"
}
