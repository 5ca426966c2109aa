package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/davecgh/go-spew/spew"
	"github.com/google/subcommands"
	"github.com/shopspring/decimal"

	"cryptotrack/config"
	csvcodec "cryptotrack/internal/adapters/csv"
	coingeckoadapter "cryptotrack/internal/adapters/coingecko"
	"cryptotrack/internal/domain/portfolio"
	"cryptotrack/internal/domain/price"
	"cryptotrack/internal/domain/transaction"
)

// localUser owns transactions read from a file.
const localUser = "local"

// priceFlags collects repeated -price coin=value flags.
type priceFlags map[string]decimal.Decimal

func (p priceFlags) String() string {
	parts := make([]string, 0, len(p))
	for coin, v := range p {
		parts = append(parts, coin+"="+v.String())
	}
	return strings.Join(parts, ",")
}

func (p priceFlags) Set(s string) error {
	coin, value, ok := strings.Cut(s, "=")
	coin = strings.TrimSpace(coin)
	if !ok || coin == "" {
		return fmt.Errorf("expected coin=price, got %q", s)
	}
	v, err := decimal.NewFromString(strings.TrimSpace(value))
	if err != nil {
		return fmt.Errorf("invalid price for %s: %w", coin, err)
	}
	p[coin] = v
	return nil
}

type reportCmd struct {
	out      io.Writer
	file     string
	currency string
	live     bool
	dump     bool
	prices   priceFlags
	provider price.Provider
}

func (*reportCmd) Name() string     { return "report" }
func (*reportCmd) Synopsis() string { return "value a CSV transaction history" }
func (*reportCmd) Usage() string {
	return `portfolio report -file <history.csv> [-price coin=value]... [-live] [-currency usd] [-dump]

  Replays the history with average-cost accounting and prints one line per
  coin followed by portfolio totals. Prices given with -price win over
  quotes fetched with -live; coins without a price are valued at zero.
`
}

func (r *reportCmd) SetFlags(f *flag.FlagSet) {
	r.prices = priceFlags{}
	f.StringVar(&r.file, "file", "", "CSV file with the transaction history.")
	f.StringVar(&r.currency, "currency", "usd", "Quote currency.")
	f.BoolVar(&r.live, "live", false, "Fetch current prices from CoinGecko.")
	f.BoolVar(&r.dump, "dump", false, "Dump the raw metrics after the report.")
	f.Var(r.prices, "price", "Current price as coin=value. Repeatable.")
}

func (r *reportCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if r.file == "" {
		fmt.Fprintln(os.Stderr, "-file is required")
		return subcommands.ExitUsageError
	}

	txs, err := readHistory(r.file)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	currency := price.NormalizeCurrency(r.currency)
	current := make(map[string]decimal.Decimal)
	if r.live {
		quotes, err := r.priceProvider().GetPrices(ctx, transaction.CoinIDs(txs), currency)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error fetching prices: %v\n", err)
			return subcommands.ExitFailure
		}
		current = price.Values(quotes)
	}
	for coin, v := range r.prices {
		current[coin] = v
	}

	m := portfolio.Aggregate(txs, current)
	if err := writeReport(r.out, m, currency); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	if r.dump {
		spew.Fdump(r.out, m)
	}
	return subcommands.ExitSuccess
}

func (r *reportCmd) priceProvider() price.Provider {
	if r.provider != nil {
		return r.provider
	}
	cfg := config.Load()
	client := coingeckoadapter.NewClient(
		&http.Client{Timeout: cfg.Price.RequestTimeout},
		cfg.Price.CoinGeckoURL,
		cfg.Price.CoinGeckoAPIKey,
	)
	return coingeckoadapter.NewPriceProvider(client)
}

func readHistory(file string) ([]transaction.Transaction, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, fmt.Errorf("failed to open history: %w", err)
	}
	defer f.Close()

	txs, err := csvcodec.Decode(f, localUser)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", file, err)
	}
	return txs, nil
}

func writeReport(w io.Writer, m portfolio.Metrics, currency string) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "COIN\tQUANTITY\tCOST\tAVG PRICE\tPRICE\tVALUE\tUNREALIZED\t%\tREALIZED\t")
	for _, h := range m.Holdings {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t\n",
			h.CoinID,
			h.Quantity.String(),
			formatMoney(h.TotalCost, currency),
			formatMoney(h.AveragePrice, currency),
			formatMoney(h.CurrentPrice, currency),
			formatMoney(h.Value, currency),
			formatSigned(h.ProfitLoss, currency),
			formatPercent(h.ProfitLossPercent),
			formatSigned(h.RealizedProfitLoss, currency),
		)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	_, err := fmt.Fprintf(w, "\nTotal value: %s\nTotal P/L:   %s (%s)\n",
		formatMoney(m.TotalValue, currency),
		formatSigned(m.TotalProfitLoss, currency),
		formatPercent(m.TotalProfitLossPercent),
	)
	return err
}
