package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"tunepull/internal/config"
	"tunepull/internal/deps"
	"tunepull/internal/history"
	"tunepull/internal/logging"
	"tunepull/internal/pipeline"
	"tunepull/internal/preflight"
	"tunepull/internal/services"
	"tunepull/internal/track"
)

type fetchReport struct {
	RunID      string              `json:"run_id"`
	Kind       track.Kind          `json:"kind"`
	Collection string              `json:"collection"`
	SourceURL  string              `json:"source_url"`
	Cancelled  bool                `json:"cancelled,omitempty"`
	Summary    track.Summary       `json:"summary"`
	Results    []track.FetchResult `json:"results"`
}

func newFetchCommand(ctx *commandContext) *cobra.Command {
	var (
		selectFlag    string
		overwriteFlag bool
		asJSON        bool
	)

	cmd := &cobra.Command{
		Use:   "fetch <spotify-url>",
		Short: "Download and tag every track behind a Spotify link",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			if missing := missingTools(cfg); missing != "" {
				return fmt.Errorf("%s not found on PATH (run 'tunepull status')", missing)
			}

			lock, err := acquireLibraryLock(cfg.LockPath(), cfg.Paths.OutputDir)
			if err != nil {
				return err
			}
			defer lock.Release()

			resolver, err := ctx.newResolver()
			if err != nil {
				return err
			}
			runCtx := cmd.Context()
			cat, err := resolver.Resolve(runCtx, args[0])
			if err != nil {
				return err
			}
			selection, err := pipeline.ParseSelection(selectFlag, cat.Len())
			if err != nil {
				return err
			}

			var last track.FetchResult
			p, err := ctx.newPipeline(overwriteFlag || cfg.Tagging.OverwriteExisting, func(_ int, result track.FetchResult) {
				last = result
			})
			if err != nil {
				return err
			}

			store, err := history.Open(cfg)
			if err != nil {
				return fmt.Errorf("open history: %w", err)
			}
			defer store.Close()
			run, err := store.Begin(runCtx, cat)
			if err != nil {
				return err
			}
			runCtx = services.WithRunID(runCtx, run.ID)

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			total := cat.Len()
			if selection != nil {
				total = len(selection)
			}
			if !asJSON {
				fmt.Fprintf(out, "Fetching %s from %s %q\n", plural(total, "track", "tracks"), cat.Kind, cat.CollectionName)
			}

			results, runErr := p.Run(runCtx, cat, selection, func(completed, total int) {
				if !asJSON {
					fmt.Fprintln(out, progressLine(completed, total, last, colorize))
				}
			})
			cancelled := errors.Is(runErr, context.Canceled)
			finishRun(runCtx, logger, store, run, results, cancelled)
			if runErr != nil && !cancelled {
				return runErr
			}

			summary := track.Summarize(results)
			if asJSON {
				if err := writeJSON(cmd, fetchReport{
					RunID:      run.ID,
					Kind:       cat.Kind,
					Collection: cat.CollectionName,
					SourceURL:  cat.SourceURL,
					Cancelled:  cancelled,
					Summary:    summary,
					Results:    results,
				}); err != nil {
					return err
				}
			} else {
				printFetchSummary(cmd, run.ID, results, summary, cancelled)
			}

			if cancelled {
				return runErr
			}
			if summary.Failed > 0 {
				return fmt.Errorf("%d of %d tracks failed (see 'tunepull history show %s')", summary.Failed, summary.Total, shortID(run.ID))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&selectFlag, "select", "", "Tracks to fetch by position, e.g. 1,3-5 (default all)")
	cmd.Flags().BoolVar(&overwriteFlag, "overwrite", false, "Replace tracks that already exist")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output JSON")
	return cmd
}

// finishRun closes a history run. The write ignores cancellation so an
// interrupted batch is still recorded; failures are only logged.
func finishRun(ctx context.Context, logger *slog.Logger, store *history.Store, run *history.Run, results []track.FetchResult, cancelled bool) {
	if err := store.Finish(context.WithoutCancel(ctx), run, results, cancelled); err != nil {
		logging.WarnWithContext(ctx, logger, "history not saved", "history_write_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "delete "+store.Path()+" if it is corrupt"),
		)
	}
}

// missingTools names required binaries that are not on PATH.
func missingTools(cfg *config.Config) string {
	var names []string
	for _, status := range deps.Missing(preflight.CheckSystemDeps(cfg)) {
		names = append(names, status.Name)
	}
	return strings.Join(names, ", ")
}

func printFetchSummary(cmd *cobra.Command, runID string, results []track.FetchResult, summary track.Summary, cancelled bool) {
	out := cmd.OutOrStdout()
	if failed := failedRows(results); len(failed) > 0 {
		fmt.Fprintln(out, renderTable([]string{"#", "Track", "Outcome", "Detail"}, failed,
			[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft}))
	}
	stored := summary.Succeeded - summary.Skipped
	line := fmt.Sprintf("%s: %d stored, %d already present, %d failed",
		plural(summary.Total, "track", "tracks"), stored, summary.Skipped, summary.Failed)
	if cancelled {
		line += " (cancelled)"
	}
	fmt.Fprintln(out, line)
	fmt.Fprintf(out, "Run %s\n", shortID(runID))
}

func failedRows(results []track.FetchResult) [][]string {
	var rows [][]string
	for _, r := range results {
		if r.Succeeded() {
			continue
		}
		rows = append(rows, []string{strconv.Itoa(r.Position), r.Record.Label(), string(r.Outcome), firstLine(r.Detail)})
	}
	return rows
}

func firstLine(value string) string {
	value = strings.TrimSpace(value)
	if idx := strings.IndexByte(value, '\n'); idx >= 0 {
		return value[:idx]
	}
	return value
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
