package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"tunepull/internal/history"
)

type historyDetail struct {
	Run     *history.Run    `json:"run"`
	Entries []history.Entry `json:"entries"`
}

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var (
		limit  int
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List past fetch runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openHistory(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			runs, err := store.List(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if asJSON {
				if runs == nil {
					runs = []history.Run{}
				}
				return writeJSON(cmd, runs)
			}

			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs recorded")
				return nil
			}
			rows := make([][]string, 0, len(runs))
			for _, run := range runs {
				rows = append(rows, []string{
					shortID(run.ID),
					relativeTime(run.StartedAt),
					string(run.Kind),
					run.Collection,
					strconv.Itoa(run.Total),
					strconv.Itoa(run.Succeeded),
					strconv.Itoa(run.Failed),
					runState(run),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Run", "Started", "Kind", "Collection", "Tracks", "OK", "Failed", "State"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignLeft},
			))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum runs to list (0 for all)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output JSON")
	cmd.AddCommand(newHistoryShowCommand(ctx))
	cmd.AddCommand(newHistoryClearCommand(ctx))
	return cmd
}

func newHistoryShowCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show per-track outcomes for a run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openHistory(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			run, err := store.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			entries, err := store.Entries(cmd.Context(), run.ID)
			if err != nil {
				return err
			}
			if asJSON {
				if entries == nil {
					entries = []history.Entry{}
				}
				return writeJSON(cmd, historyDetail{Run: run, Entries: entries})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Run %s: %s %q (%s)\n", run.ID, run.Kind, run.Collection, runState(*run))
			fmt.Fprintf(out, "Source: %s\n", run.SourceURL)
			fmt.Fprintf(out, "Started: %s\n", run.StartedAt.Local().Format("2006-01-02 15:04:05"))
			if len(entries) == 0 {
				return nil
			}
			rows := make([][]string, 0, len(entries))
			for _, e := range entries {
				outcome := string(e.Outcome)
				if e.Skipped {
					outcome += " (existing)"
				}
				where := e.OutputPath
				if where == "" {
					where = firstLine(e.Detail)
				}
				rows = append(rows, []string{strconv.Itoa(e.Position), e.Record.Label(), outcome, where})
			}
			fmt.Fprintln(out, renderTable([]string{"#", "Track", "Outcome", "Output / Detail"}, rows,
				[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft}))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output JSON")
	return cmd
}

func newHistoryClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Forget every recorded run",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openHistory(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			removed, err := store.Clear(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", plural(int(removed), "run", "runs"))
			return nil
		},
	}
}

func openHistory(ctx *commandContext) (*history.Store, error) {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return nil, err
	}
	store, err := history.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("open history: %w", err)
	}
	return store, nil
}

func runState(run history.Run) string {
	switch {
	case run.Cancelled:
		return "cancelled"
	case !run.Finished():
		return "incomplete"
	case run.Failed > 0:
		return "partial"
	default:
		return "complete"
	}
}
