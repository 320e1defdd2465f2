package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/backtester/backtest"
	"github.com/rustyeddy/backtester/feed"
	"github.com/rustyeddy/backtester/market"
)

func newDataCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "data",
		Short: "Price data utilities",
	}

	var in, out, from, symbol string
	convertCmd := &cobra.Command{
		Use:   "convert",
		Short: "Convert a price series between CSV, Parquet and SQLite",
		Long: `Read a price series and write it in the format given by the output
file extension (.csv, .csv.xz, .csv.gz, .parquet, .db/.sqlite).

--from selects one symbol from a Parquet or SQLite input holding several.
--symbol tags the bars written to a Parquet or SQLite output.

Examples:
  backtester data convert -i data/spy.csv -o data/spy.parquet --symbol SPY
  backtester data convert -i data/all.db --from QQQ -o data/qqq.csv`,
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := feed.Open("", in, from)
			if err != nil {
				return err
			}
			s, err := src.Load(cmd.Context())
			if err != nil {
				return fmt.Errorf("load %s: %w", in, err)
			}

			if err := writeSeries(cmd, out, symbol, s); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d bars to %s\n", s.Len(), out)
			return nil
		},
	}
	convertCmd.Flags().StringVarP(&in, "in", "i", "", "input price file (required)")
	convertCmd.Flags().StringVarP(&out, "out", "o", "", "output price file (required)")
	convertCmd.Flags().StringVar(&from, "from", "", "symbol to read from a parquet or sqlite input (default all rows)")
	convertCmd.Flags().StringVar(&symbol, "symbol", backtest.DefaultSymbol, "symbol stored in parquet and sqlite outputs")
	convertCmd.MarkFlagRequired("in")
	convertCmd.MarkFlagRequired("out")

	cmd.AddCommand(convertCmd)
	return cmd
}

func writeSeries(cmd *cobra.Command, path, symbol string, s market.Series) error {
	switch feed.KindFromPath(path) {
	case feed.KindCSV:
		return feed.CreateCSV(path, s)
	case feed.KindParquet:
		return feed.WriteParquet(path, symbol, s)
	case feed.KindSQLite:
		return feed.WriteSQLite(cmd.Context(), path, symbol, s)
	default:
		return market.Configf("out", "cannot infer format of %q", path)
	}
}
