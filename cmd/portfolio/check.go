package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/google/subcommands"

	"cryptotrack/internal/domain/portfolio"
)

type checkCmd struct {
	out  io.Writer
	file string
}

func (*checkCmd) Name() string     { return "check" }
func (*checkCmd) Synopsis() string { return "verify no sell exceeds the quantity held" }
func (*checkCmd) Usage() string {
	return `portfolio check -file <history.csv>

  Replays the history in timestamp order and reports the first sell that
  takes a coin below zero. Exits non-zero when one is found.
`
}

func (c *checkCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.file, "file", "", "CSV file with the transaction history.")
}

func (c *checkCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.file == "" {
		fmt.Fprintln(os.Stderr, "-file is required")
		return subcommands.ExitUsageError
	}

	txs, err := readHistory(c.file)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	err = portfolio.ValidateHistory(txs)
	var oversell *portfolio.OversellError
	switch {
	case err == nil:
		fmt.Fprintf(c.out, "%d transactions, no oversells\n", len(txs))
		return subcommands.ExitSuccess
	case errors.As(err, &oversell):
		fmt.Fprintf(c.out, "oversell: %s sold %s at %s with only %s held\n",
			oversell.CoinID,
			oversell.Requested,
			oversell.Timestamp.Format("2006-01-02 15:04:05"),
			oversell.Available,
		)
		return subcommands.ExitFailure
	default:
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
}
