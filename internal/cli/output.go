package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/apgr0ss/covid19-scraper/internal/pipeline"
	"github.com/apgr0ss/covid19-scraper/internal/storage"
	"github.com/apgr0ss/covid19-scraper/internal/workbook"
	"github.com/fatih/color"
	"github.com/montanaflynn/stats"
)

// OutputFormat specifies the output format
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
)

// StateSummary describes one exported sheet
type StateSummary struct {
	Name             string  `json:"name"`
	Sheet            string  `json:"sheet"`
	Counties         int     `json:"counties"`
	Confirmed        int64   `json:"confirmed"`
	Deaths           int64   `json:"deaths"`
	FatalityRate     float64 `json:"fatality_rate"`
	CountyRateMean   float64 `json:"county_rate_mean"`
	CountyRateMedian float64 `json:"county_rate_median"`
}

// SkippedState describes a state left out of the workbook
type SkippedState struct {
	Index  int    `json:"index"`
	State  string `json:"state"`
	Reason string `json:"reason"`
}

// OutputResult contains data to be output
type OutputResult struct {
	RunID     string                 `json:"run_id"`
	CheckedAt time.Time              `json:"checked_at"`
	Source    string                 `json:"source"`
	Output    string                 `json:"output"`
	Total     int                    `json:"total"`
	Exported  int                    `json:"exported"`
	States    []StateSummary         `json:"states"`
	Skipped   []SkippedState         `json:"skipped,omitempty"`
	Changes   *storage.DiffResult    `json:"changes,omitempty"`
	Parsed    int64                  `json:"parsed"`
	Metrics   map[string]interface{} `json:"metrics,omitempty"`
}

// Summarize builds per-state summaries and skip reasons from a pipeline result.
func Summarize(result *pipeline.Result) ([]StateSummary, []SkippedState) {
	summaries := make([]StateSummary, 0, result.Collection.Len())
	for _, t := range result.Collection.Tables() {
		row := t.StateRow()
		summary := StateSummary{
			Name:         t.Name,
			Sheet:        workbook.SheetName(t.Name),
			Counties:     len(t.Counties()),
			Confirmed:    row.Confirmed,
			Deaths:       row.Deaths,
			FatalityRate: row.FatalityRate,
		}

		rates := make(stats.Float64Data, 0, len(t.Counties()))
		for _, c := range t.Counties() {
			rates = append(rates, c.FatalityRate)
		}
		// Both fail only on empty input, which leaves the zero values.
		if mean, err := rates.Mean(); err == nil {
			summary.CountyRateMean, _ = stats.Round(mean, 2)
		}
		if median, err := rates.Median(); err == nil {
			summary.CountyRateMedian, _ = stats.Round(median, 2)
		}

		summaries = append(summaries, summary)
	}

	skipped := make([]SkippedState, 0, len(result.Failures))
	for _, f := range result.Failures {
		skipped = append(skipped, SkippedState{Index: f.Index, State: f.State, Reason: f.Reason()})
	}

	return summaries, skipped
}

// WriteOutput writes the result in the specified format
func WriteOutput(w io.Writer, result *OutputResult, format OutputFormat, verbose bool) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, result)
	case FormatText:
		return writeText(w, result, verbose)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// writeJSON outputs results as JSON
func writeJSON(w io.Writer, result *OutputResult) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

// writeText outputs results as human-readable text
func writeText(w io.Writer, result *OutputResult, verbose bool) error {
	bold := color.New(color.Bold)
	red := color.New(color.FgRed)
	green := color.New(color.FgGreen)

	if result.Exported == 0 {
		fmt.Fprintln(w, "No states exported.")
	} else {
		bold.Fprintf(w, "Exported %d of %d states to %s\n", result.Exported, result.Total, result.Output) // nolint:errcheck
	}

	for _, s := range result.States {
		fmt.Fprintf(w, "  %-24s %5d counties  %9d confirmed  %7d deaths  %6.2f%%\n",
			s.Name, s.Counties, s.Confirmed, s.Deaths, s.FatalityRate)
		if verbose {
			if s.Sheet != s.Name {
				fmt.Fprintf(w, "       Sheet: %s\n", s.Sheet)
			}
			if s.Counties > 0 {
				fmt.Fprintf(w, "       County fatality rate: mean %.2f%%, median %.2f%%\n", s.CountyRateMean, s.CountyRateMedian)
			}
		}
	}

	if len(result.Skipped) > 0 {
		red.Fprintf(w, "\nSkipped %d states:\n", len(result.Skipped)) // nolint:errcheck
		for _, s := range result.Skipped {
			fmt.Fprintf(w, "  #%d %s: %s\n", s.Index, s.State, s.Reason)
		}
	}

	if verbose && result.Metrics != nil {
		writeMetrics(w, result)
	}

	if result.Changes != nil && (len(result.Changes.Changes) > 0 || len(result.Changes.Missing) > 0) {
		fmt.Fprintln(w, "\nChanges since last run:")
		for _, c := range result.Changes.Changes {
			if c.New {
				green.Fprintf(w, "  NEW %s: %d confirmed, %d deaths\n", c.State, c.ConfirmedDelta, c.DeathsDelta) // nolint:errcheck
				continue
			}
			fmt.Fprintf(w, "  %s: %+d confirmed, %+d deaths\n", c.State, c.ConfirmedDelta, c.DeathsDelta)
		}
		for _, name := range result.Changes.Missing {
			red.Fprintf(w, "  GONE %s\n", name) // nolint:errcheck
		}
	}

	return nil
}

// writeMetrics prints the run counters and timings
func writeMetrics(w io.Writer, result *OutputResult) {
	fmt.Fprintf(w, "\nParsed %d states\n", result.Parsed)

	timings, _ := result.Metrics["timings"].(map[string]map[string]interface{})
	names := make([]string, 0, len(timings))
	for name := range timings {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		t := timings[name]
		fmt.Fprintf(w, "  %s: %v calls, avg %v, max %v\n", name, t["count"], t["average"], t["max"])
	}
}
