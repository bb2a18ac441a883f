package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Syfer2025/Catlogodepeas-sub005/internal/autocateg"
	"github.com/Syfer2025/Catlogodepeas-sub005/internal/storage"
)

var (
	reviewMinConfidence int
	reviewSort          string
	reviewLimit         int
	reviewOnlySelected  bool
	reviewHideCorrect   bool
	reviewOnlyUnapplied bool
)

var reviewCmd = &cobra.Command{
	Use:   "review [run-id]",
	Short: "List the suggestions of a run (latest run when no id is given)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		run, err := resolveRun(store, args)
		if err != nil {
			return err
		}

		suggestions, err := store.GetSuggestions(run.ID, storage.SuggestionFilter{
			MinConfidence:      reviewMinConfidence,
			OnlySelected:       reviewOnlySelected,
			HideAlreadyCorrect: reviewHideCorrect,
			OnlyUnapplied:      reviewOnlyUnapplied,
			OrderBy:            reviewSort,
			Limit:              reviewLimit,
		})
		if err != nil {
			return err
		}

		fmt.Printf("Run %s  %s  %s  (%d/%d analyzed, %d matched)\n\n",
			run.ID, run.Source, run.Status, run.Analyzed, run.TotalProducts, run.Matched)

		if len(suggestions) == 0 {
			fmt.Println("No suggestions match the given filters.")
			return nil
		}

		fmt.Printf("%4s %3s %-12s %-42s %s\n", "CONF", "SEL", "SKU", "TITLE", "SUGGESTED")
		for _, s := range suggestions {
			marker := " "
			if s.Selected {
				marker = "*"
			}
			if s.Applied {
				marker = "a"
			}

			suggested := s.SuggestedPath
			if suggested == "" {
				suggested = "(no match)"
			}
			if s.AlreadyCorrect {
				suggested += "  [already correct]"
			} else if s.CurrentCategory != "" {
				suggested = fmt.Sprintf("%s  (now: %s)", suggested, s.CurrentCategory)
			}

			fmt.Printf("%4d %3s %-12s %-42s %s\n",
				s.Confidence, marker, s.SKU, truncate(s.Titulo, 42), suggested)
		}

		fmt.Printf("\n%d suggestion(s). Selected rows are marked *, applied rows a.\n", len(suggestions))
		return nil
	},
}

var (
	selectSKUs          []string
	selectMinConfidence int
	selectClear         bool
)

var selectCmd = &cobra.Command{
	Use:   "select [run-id]",
	Short: "Mark suggestions for apply, by confidence threshold or by SKU",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		run, err := resolveRun(store, args)
		if err != nil {
			return err
		}

		if len(selectSKUs) > 0 {
			if err := store.SetSelected(run.ID, selectSKUs, !selectClear); err != nil {
				return err
			}
			fmt.Printf("Updated %d suggestion(s) in run %s.\n", len(selectSKUs), run.ID)
			return nil
		}

		changed, err := store.SelectByConfidence(run.ID, selectMinConfidence, !selectClear)
		if err != nil {
			return err
		}
		verb := "Selected"
		if selectClear {
			verb = "Deselected"
		}
		fmt.Printf("%s %d suggestion(s) with confidence >= %d in run %s.\n",
			verb, changed, selectMinConfidence, run.ID)
		return nil
	},
}

var runsLimit int

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recorded analysis runs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		runs, err := store.ListRuns(runsLimit)
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			fmt.Println("No runs recorded yet. Start with: autocateg analyze")
			return nil
		}

		fmt.Printf("%-36s %-16s %-6s %-9s %8s %8s %8s %6s %8s\n",
			"RUN", "STARTED", "SOURCE", "STATUS", "PRODUCTS", "ANALYZED", "MATCHED", "HIGH", "CORRECT")
		for _, r := range runs {
			fmt.Printf("%-36s %-16s %-6s %-9s %8d %8d %8d %6d %8d\n",
				r.ID,
				r.StartedAt.Local().Format("2006-01-02 15:04"),
				r.Source,
				r.Status,
				r.TotalProducts,
				r.Analyzed,
				r.Matched,
				r.HighConfidence,
				r.AlreadyCorrect)
		}
		return nil
	},
}

func init() {
	reviewCmd.Flags().IntVar(&reviewMinConfidence, "min-confidence", 0, "hide suggestions below this confidence")
	reviewCmd.Flags().StringVar(&reviewSort, "sort", "confidence", "sort order: confidence, sku or titulo")
	reviewCmd.Flags().IntVar(&reviewLimit, "limit", 0, "show at most this many suggestions (0 = all)")
	reviewCmd.Flags().BoolVar(&reviewOnlySelected, "selected", false, "show only selected suggestions")
	reviewCmd.Flags().BoolVar(&reviewHideCorrect, "hide-correct", false, "hide products already in the suggested category")
	reviewCmd.Flags().BoolVar(&reviewOnlyUnapplied, "pending", false, "hide suggestions that were already applied")

	selectCmd.Flags().StringSliceVar(&selectSKUs, "sku", nil, "select these SKUs instead of using a threshold")
	selectCmd.Flags().IntVar(&selectMinConfidence, "min-confidence", autocateg.DefaultThreshold, "select suggestions at or above this confidence")
	selectCmd.Flags().BoolVar(&selectClear, "clear", false, "deselect instead of select")

	runsCmd.Flags().IntVar(&runsLimit, "limit", 20, "show at most this many runs (0 = all)")
}

// resolveRun picks the run named by the first positional argument, or the
// most recent run when none is given.
func resolveRun(store *storage.SQLiteStore, args []string) (*storage.Run, error) {
	if len(args) > 0 {
		run, err := store.GetRun(args[0])
		if err != nil {
			return nil, err
		}
		if run == nil {
			return nil, fmt.Errorf("run %s not found", args[0])
		}
		return run, nil
	}

	run, err := store.LatestRun()
	if err != nil {
		return nil, err
	}
	if run == nil {
		return nil, errors.New("no runs recorded yet; start with 'autocateg analyze'")
	}
	return run, nil
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return strings.TrimSpace(string(runes[:max-1])) + "…"
}
