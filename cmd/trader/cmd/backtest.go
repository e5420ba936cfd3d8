package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/valuecell/trader/backtest"
	"github.com/valuecell/trader/config"
	"github.com/valuecell/trader/feed"
	"github.com/valuecell/trader/journal"
	"github.com/valuecell/trader/market"
	"github.com/valuecell/trader/pkg/id"
)

var backtestCmd = &cobra.Command{
	Use:   "backtest",
	Short: "Replay bars and events through the scoring pipeline",
	Long: `Backtest runs the full pipeline over a historical window: visible
events and bar history are scored per ticker, positions are sized and opened
when the smoothed score clears the entry threshold, and protective exits close
them.

Bars and events load from CSV or Parquet based on file extension.

Example:
  trader backtest --config sim.yaml --bars data/bars.csv --events data/events.csv --db runs.sqlite`,
	RunE: runBacktest,
}

var (
	btConfigPath string
	btBarsPath   string
	btEventsPath string
	btDBPath     string
	btStart      string
	btEnd        string
	btJSONOut    bool
)

func init() {
	rootCmd.AddCommand(backtestCmd)

	backtestCmd.Flags().StringVarP(&btConfigPath, "config", "c", "", "path to config file (default: built-in defaults)")
	backtestCmd.Flags().StringVarP(&btBarsPath, "bars", "b", "", "path to bars file, CSV or Parquet (required)")
	backtestCmd.Flags().StringVarP(&btEventsPath, "events", "e", "", "path to events file, CSV or Parquet")
	backtestCmd.Flags().StringVarP(&btDBPath, "db", "d", "", "path to SQLite journal DB (no journaling when empty)")
	backtestCmd.Flags().StringVar(&btStart, "start", "", "window start, RFC3339 (default: first bar)")
	backtestCmd.Flags().StringVar(&btEnd, "end", "", "window end, RFC3339 (default: last bar)")
	backtestCmd.Flags().BoolVar(&btJSONOut, "json", false, "print the full report as JSON")

	backtestCmd.MarkFlagRequired("bars")
}

func runBacktest(cmd *cobra.Command, args []string) error {
	cfg := config.Default()
	if btConfigPath != "" {
		var err error
		if cfg, err = config.LoadFromFile(btConfigPath); err != nil {
			return fmt.Errorf("load config: %w", err)
		}
	}

	bars, err := feed.LoadBars(btBarsPath)
	if err != nil {
		return fmt.Errorf("load bars: %w", err)
	}
	if len(bars) == 0 {
		return fmt.Errorf("no bars in %s", btBarsPath)
	}
	barsByTicker, err := feed.GroupByTicker(bars)
	if err != nil {
		return fmt.Errorf("group bars: %w", err)
	}

	var evs []market.TextEvent
	if btEventsPath != "" {
		if evs, err = feed.LoadEvents(btEventsPath); err != nil {
			return fmt.Errorf("load events: %w", err)
		}
	}

	start, end := bars[0].TS, bars[len(bars)-1].TS
	if btStart != "" {
		if start, err = time.Parse(time.RFC3339, btStart); err != nil {
			return fmt.Errorf("bad --start: %w", err)
		}
	}
	if btEnd != "" {
		if end, err = time.Parse(time.RFC3339, btEnd); err != nil {
			return fmt.Errorf("bad --end: %w", err)
		}
	}

	engine, err := backtest.New(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	report, err := engine.Run(ctx, start, end, barsByTicker, evs)
	if err != nil {
		return fmt.Errorf("run backtest: %w", err)
	}

	if btDBPath != "" {
		if err := journalRun(cfg, report); err != nil {
			return err
		}
	}

	if btJSONOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	printReport(report)
	return nil
}

func journalRun(cfg *config.Config, report *backtest.Report) error {
	j, err := journal.NewSQLite(btDBPath)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer j.Close()

	cfgJSON, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	runID := id.New()
	run, trades, equity := journal.FromReport(runID, time.Now().UTC(), report, cfgJSON)
	if err := j.RecordRun(run, trades, equity); err != nil {
		return fmt.Errorf("record run: %w", err)
	}

	fmt.Printf("Journaled run %s to %s\n\n", runID, btDBPath)
	return nil
}

func printReport(r *backtest.Report) {
	fmt.Printf("\nBacktest Complete!\n")
	fmt.Printf("  Window:        %s .. %s\n", r.StartTime.Format("2006-01-02"), r.EndTime.Format("2006-01-02"))
	fmt.Printf("  Capital:       $%.2f -> $%.2f\n", r.InitialCapital, r.FinalCapital)
	fmt.Printf("  Total Return:  %.2f%%\n", r.TotalReturn)
	fmt.Printf("  CAGR:          %.2f%%\n", r.CAGR)
	fmt.Printf("  Sharpe:        %.2f\n", r.Sharpe)
	fmt.Printf("  Sortino:       %.2f\n", r.Sortino)
	fmt.Printf("  Max Drawdown:  %.2f%%\n", r.MaxDrawdown)
	fmt.Printf("  Trades:        %d (win rate %.1f%%)\n", r.NumTrades, r.WinRate)
	fmt.Printf("  Avg Win/Loss:  $%.2f / $%.2f\n", r.AvgWin, r.AvgLoss)
}
