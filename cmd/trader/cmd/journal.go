package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/valuecell/trader/journal"
)

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Query recorded backtest runs",
	Long: `Query and display backtest runs from the SQLite journal.

Subcommands:
  runs   - List recorded runs
  run    - Show one run's summary
  trades - List a run's closed trades

Examples:
  trader journal --db runs.sqlite runs
  trader journal --db runs.sqlite trades <run-id>`,
}

var journalRunsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recorded runs, newest first",
	Args:  cobra.NoArgs,
	RunE:  runJournalRuns,
}

var journalRunCmd = &cobra.Command{
	Use:   "run <run-id>",
	Short: "Show one run's summary",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalRun,
}

var journalTradesCmd = &cobra.Command{
	Use:   "trades <run-id>",
	Short: "List a run's closed trades",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalTrades,
}

var journalDBPath string

func init() {
	rootCmd.AddCommand(journalCmd)
	journalCmd.AddCommand(journalRunsCmd)
	journalCmd.AddCommand(journalRunCmd)
	journalCmd.AddCommand(journalTradesCmd)

	journalCmd.PersistentFlags().StringVarP(&journalDBPath, "db", "d", "./runs.sqlite", "path to SQLite journal DB")
}

func openJournal() (*journal.SQLite, error) {
	j, err := journal.NewSQLite(journalDBPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	return j, nil
}

func runJournalRuns(cmd *cobra.Command, args []string) error {
	j, err := openJournal()
	if err != nil {
		return err
	}
	defer j.Close()

	runs, err := j.ListRuns()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs recorded")
		return nil
	}

	for _, r := range runs {
		fmt.Printf("%s  %s  %s..%s  return %.2f%%  trades %d\n",
			r.RunID, r.Created.Format("2006-01-02 15:04"),
			r.Start.Format("2006-01-02"), r.End.Format("2006-01-02"),
			r.TotalReturn, r.NumTrades)
	}
	return nil
}

func runJournalRun(cmd *cobra.Command, args []string) error {
	j, err := openJournal()
	if err != nil {
		return err
	}
	defer j.Close()

	r, err := j.GetRun(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("Run %s (recorded %s)\n", r.RunID, r.Created.Format("2006-01-02 15:04"))
	fmt.Printf("  Window:       %s .. %s\n", r.Start.Format("2006-01-02"), r.End.Format("2006-01-02"))
	fmt.Printf("  Capital:      $%.2f -> $%.2f\n", r.InitialCapital, r.FinalCapital)
	fmt.Printf("  Return:       %.2f%% (Sharpe %.2f, max DD %.2f%%)\n", r.TotalReturn, r.Sharpe, r.MaxDrawdown)
	fmt.Printf("  Trades:       %d (win rate %.1f%%)\n", r.NumTrades, r.WinRate)
	if len(r.ConfigJSON) > 0 {
		fmt.Printf("  Config:       %s\n", r.ConfigJSON)
	}
	return nil
}

func runJournalTrades(cmd *cobra.Command, args []string) error {
	j, err := openJournal()
	if err != nil {
		return err
	}
	defer j.Close()

	trades, err := j.ListTradesByRun(args[0])
	if err != nil {
		return err
	}
	if len(trades) == 0 {
		fmt.Println("no trades for run")
		return nil
	}

	for _, t := range trades {
		fmt.Printf("%s  %-5s  %s -> %s  qty %.2f  %.2f -> %.2f  pnl %+.2f (%+.2f%%)  %s\n",
			t.TradeID, t.Ticker,
			t.EntryTime.Format("01-02 15:04"), t.ExitTime.Format("01-02 15:04"),
			t.Quantity, t.EntryPrice, t.ExitPrice, t.PnL, t.PnLPct, t.ExitReason)
	}
	return nil
}
