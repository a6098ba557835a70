package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"modplan/internal/history"
	"modplan/internal/plan"
)

var (
	historyLimit  int
	historyFormat string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Browse recorded planning runs",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded runs, newest first",
	Run:   runHistoryList,
}

var historyShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show one recorded run with its plan",
	Args:  cobra.ExactArgs(1),
	Run:   runHistoryShow,
}

func init() {
	historyCmd.PersistentFlags().StringVar(&historyFormat, "format", "human", "Output format (json, human)")
	historyListCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Maximum number of runs to show")
	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyShowCmd)
	rootCmd.AddCommand(historyCmd)
}

func openHistory() *history.Store {
	logger := newLogger(historyFormat)

	cfg, _, err := loadWorkspace()
	if err != nil {
		fail("loading workspace", err)
	}

	store, err := history.Open(cfg.History.Dir, logger)
	if err != nil {
		fail("opening history", err)
	}
	return store
}

func runHistoryList(cmd *cobra.Command, args []string) {
	store := openHistory()
	defer store.Close()

	runs, err := store.List(historyLimit)
	if err != nil {
		fail("listing runs", err)
	}

	out, err := FormatResponse(runs, OutputFormat(historyFormat))
	if err != nil {
		fail("formatting output", err)
	}
	fmt.Println(out)
}

// recordedRun is the JSON shape of `history show`.
type recordedRun struct {
	Run  history.Run `json:"run"`
	Plan *plan.Plan  `json:"plan"`
}

func runHistoryShow(cmd *cobra.Command, args []string) {
	store := openHistory()
	defer store.Close()

	run, p, err := store.Get(args[0])
	if err != nil {
		fail("loading run", err)
	}

	out, err := FormatResponse(&recordedRun{Run: *run, Plan: p}, OutputFormat(historyFormat))
	if err != nil {
		fail("formatting output", err)
	}
	fmt.Println(out)
}
