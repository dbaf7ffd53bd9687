package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/apgr0ss/covid19-scraper/internal/logger"
	"github.com/apgr0ss/covid19-scraper/internal/pipeline"
	"github.com/apgr0ss/covid19-scraper/internal/source"
	"github.com/apgr0ss/covid19-scraper/internal/storage"
	"github.com/apgr0ss/covid19-scraper/internal/workbook"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

const (
	ExitSuccess = 0
	ExitError   = 1
	ExitPartial = 2
)

// ErrPartial is returned when the workbook was written but some states were skipped.
var ErrPartial = errors.New("some states were skipped")

var (
	flagSource         string
	flagClassPrefix    string
	flagStateSelector  string
	flagCountySelector string
	flagOutput         string
	flagFormat         string
	flagSort           string
	flagStrict         bool
	flagDataDir        string
	flagNoSnapshot     bool
	flagEnvFile        string
	flagLogLevel       string
	flagVerbose        bool
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "covid19-scrape",
		Short: "Export per-county COVID-19 statistics to an Excel workbook",
		Long: `Reads a rendered COVID-19 tracker page, extracts the statistics of every state
and its counties, and writes one workbook sheet per state with the columns
state, confirmed, deaths and fatality_rate (%).`,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return loadEnv(cmd.Flags(), flagEnvFile)
		},
		RunE:          runScrape,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Define flags
	cmd.Flags().StringVar(&flagSource, "source", "", "URL or file of the rendered page (env: COVID_SOURCE)")
	cmd.Flags().StringVar(&flagClassPrefix, "class-prefix", source.DefaultClassPrefix, "Generated class prefix of the stat rows (env: COVID_CLASS_PREFIX)")
	cmd.Flags().StringVar(&flagStateSelector, "state-selector", "", "CSS selector for state rows (overrides --class-prefix)")
	cmd.Flags().StringVar(&flagCountySelector, "county-selector", "", "CSS selector for county lists (overrides --class-prefix)")
	cmd.Flags().StringVar(&flagOutput, "output", "covid_19_by_county.xlsx", "Workbook path (env: COVID_OUTPUT)")
	cmd.Flags().StringVar(&flagFormat, "format", "text", "Summary format: text or json")
	cmd.Flags().StringVar(&flagSort, "sort", "page", "Summary order: page, name, confirmed or deaths")
	cmd.Flags().BoolVar(&flagStrict, "strict", false, "Abort on the first state that fails to parse")
	cmd.Flags().StringVar(&flagDataDir, "data-dir", "~/.local/share/covid19-scraper", "Data directory for run snapshots (env: COVID_DATA_DIR)")
	cmd.Flags().BoolVar(&flagNoSnapshot, "no-snapshot", false, "Do not load or save the run snapshot")
	cmd.Flags().StringVar(&flagEnvFile, "env-file", ".env", "Optional dotenv file with defaults")
	cmd.Flags().StringVar(&flagLogLevel, "log-level", "info", "Log level: debug, info, warn or error (env: COVID_LOG_LEVEL)")
	cmd.Flags().BoolVar(&flagVerbose, "verbose", false, "Enable verbose logging and summary (same as --log-level debug)")

	return cmd
}

// runScrape is the main command logic
func runScrape(cmd *cobra.Command, args []string) error {
	location := strings.TrimSpace(flagSource)
	if location == "" {
		return fmt.Errorf("--source is required")
	}

	// Validate format
	format := OutputFormat(strings.ToLower(flagFormat))
	if format != FormatText && format != FormatJSON {
		return fmt.Errorf("invalid format: %s (must be 'text' or 'json')", flagFormat)
	}

	order := SortOrder(strings.ToLower(flagSort))
	if !validSortOrder(order) {
		return fmt.Errorf("invalid sort: %s (must be 'page', 'name', 'confirmed' or 'deaths')", flagSort)
	}

	level, err := logger.ParseLevel(flagLogLevel)
	if err != nil {
		return err
	}
	if flagVerbose {
		level = logger.LevelDebug
	}
	logger.SetDefault(logger.New(level, cmd.ErrOrStderr()))

	runID := uuid.NewString()
	logger.Info("Starting run", logger.Fields{"run_id": runID, "source": location})

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	// Parse every state before any export I/O
	src := source.NewHTML(location, source.WithSelectors(selectors()))
	defer src.Close() // nolint:errcheck

	result, err := pipeline.Run(ctx, src, pipeline.Options{Strict: flagStrict})
	if err != nil {
		return fmt.Errorf("parsing states: %w", err)
	}

	if result.Collection.Len() == 0 {
		return fmt.Errorf("no states parsed from %s (%d skipped)", location, len(result.Failures))
	}

	if err := workbook.WriteFile(result.Collection, flagOutput); err != nil {
		return fmt.Errorf("exporting workbook: %w", err)
	}
	logger.Info("Wrote workbook", logger.Fields{"path": flagOutput, "sheets": result.Collection.Len()})

	states, skipped := Summarize(result)
	sortStates(states, order)

	out := &OutputResult{
		RunID:     runID,
		CheckedAt: time.Now().UTC(),
		Source:    location,
		Output:    flagOutput,
		Total:     result.Total,
		Exported:  result.Collection.Len(),
		States:    states,
		Skipped:   skipped,
		Parsed:    logger.DefaultMetrics().Counter("states.parsed"),
	}

	if !flagNoSnapshot {
		changes, err := recordSnapshot(result.Collection, runID, out.CheckedAt)
		if err != nil {
			return err
		}
		out.Changes = changes
	}

	out.Metrics = logger.GetMetricsSnapshot()
	logger.Debug("Run metrics", logger.Fields{"run_id": runID, "metrics": out.Metrics})

	if err := WriteOutput(cmd.OutOrStdout(), out, format, flagVerbose); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}

	if len(skipped) > 0 {
		return ErrPartial
	}
	return nil
}

// selectors resolves the element selectors from the flags
func selectors() source.Selectors {
	sel := source.DefaultSelectors(flagClassPrefix)
	if flagStateSelector != "" {
		sel.State = flagStateSelector
	}
	if flagCountySelector != "" {
		sel.Counties = flagCountySelector
	}
	return sel
}

// recordSnapshot compares this run with the previous one and saves it as the new baseline.
func recordSnapshot(c *workbook.Collection, runID string, at time.Time) (*storage.DiffResult, error) {
	store, err := storage.New(flagDataDir)
	if err != nil {
		return nil, fmt.Errorf("initializing storage: %w", err)
	}

	previous, err := store.LoadSnapshot()
	if err != nil {
		return nil, fmt.Errorf("loading snapshot: %w", err)
	}

	current := storage.CreateSnapshot(c, runID, at.Format(time.RFC3339))
	changes := storage.Diff(previous, current)

	if err := store.SaveSnapshot(current); err != nil {
		return nil, fmt.Errorf("saving snapshot: %w", err)
	}
	logger.Debug("Saved snapshot", logger.Fields{"path": store.Path(), "changes": len(changes.Changes)})

	return changes, nil
}

// Execute runs the CLI
func Execute() {
	err := NewRootCmd().ExecuteContext(context.Background())
	switch {
	case err == nil:
		os.Exit(ExitSuccess)
	case errors.Is(err, ErrPartial):
		os.Exit(ExitPartial)
	default:
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(ExitError)
	}
}
