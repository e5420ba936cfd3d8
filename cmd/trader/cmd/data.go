package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/valuecell/trader/feed"
)

var dataCmd = &cobra.Command{
	Use:   "data",
	Short: "Convert market data files",
	Long: `Data utilities for the feed formats.

Subcommands:
  convert - Convert bars or events between CSV and Parquet

Examples:
  trader data convert --kind bars --in data/bars.csv --out data/bars.parquet
  trader data convert --kind events --in data/events.csv --out data/events.parquet`,
}

var dataConvertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert bars or events between CSV and Parquet",
	RunE:  runDataConvert,
}

var (
	convertKind string
	convertIn   string
	convertOut  string
)

func init() {
	rootCmd.AddCommand(dataCmd)
	dataCmd.AddCommand(dataConvertCmd)

	dataConvertCmd.Flags().StringVarP(&convertKind, "kind", "k", "bars", "data kind: bars or events")
	dataConvertCmd.Flags().StringVarP(&convertIn, "in", "i", "", "input file, CSV or Parquet (required)")
	dataConvertCmd.Flags().StringVarP(&convertOut, "out", "o", "", "output Parquet file (required)")
	dataConvertCmd.MarkFlagRequired("in")
	dataConvertCmd.MarkFlagRequired("out")
}

func runDataConvert(cmd *cobra.Command, args []string) error {
	switch convertKind {
	case "bars":
		bars, err := feed.LoadBars(convertIn)
		if err != nil {
			return fmt.Errorf("load bars: %w", err)
		}
		if err := feed.WriteBarsParquet(convertOut, bars); err != nil {
			return err
		}
		fmt.Printf("Wrote %d bars to %s\n", len(bars), convertOut)

	case "events":
		events, err := feed.LoadEvents(convertIn)
		if err != nil {
			return fmt.Errorf("load events: %w", err)
		}
		if err := feed.WriteEventsParquet(convertOut, events); err != nil {
			return err
		}
		fmt.Printf("Wrote %d events to %s\n", len(events), convertOut)

	default:
		return fmt.Errorf("unknown kind %q (supported: bars, events)", convertKind)
	}
	return nil
}
