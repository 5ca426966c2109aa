package main

import (
	"bytes"
	"context"
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/subcommands"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coingeckoadapter "cryptotrack/internal/adapters/coingecko"
)

const history = `coinId,coinSymbol,type,quantity,pricePerCoin,timestamp,fee
bitcoin,BTC,sell,0.75,60000,2023-03-01T00:00:00Z,15
bitcoin,BTC,buy,1,40000,2023-01-01T00:00:00Z,
bitcoin,BTC,buy,0.5,50000,2023-02-01T00:00:00Z,30
`

func writeHistory(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "history.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func execute(t *testing.T, cmd subcommands.Command, args ...string) subcommands.ExitStatus {
	t.Helper()
	fs := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
	cmd.SetFlags(fs)
	require.NoError(t, fs.Parse(args))
	return cmd.Execute(context.Background(), fs)
}

func TestReport(t *testing.T) {
	var out bytes.Buffer
	cmd := &reportCmd{out: &out}

	status := execute(t, cmd, "-file", writeHistory(t, history), "-price", "bitcoin=45000")
	require.Equal(t, subcommands.ExitSuccess, status)

	report := out.String()
	assert.Contains(t, report, "bitcoin")
	assert.Contains(t, report, "COST")
	assert.Contains(t, report, "$32,515.00")
	assert.Contains(t, report, "$43,353.33")
	assert.Contains(t, report, "+$12,470.00")
	assert.Contains(t, report, "Total value: $33,750.00")
	assert.Contains(t, report, "Total P/L:   +$13,705.00 (+21.07%)")
}

func TestReport_LivePricesAndDump(t *testing.T) {
	var out bytes.Buffer
	cmd := &reportCmd{
		out:      &out,
		provider: coingeckoadapter.NewMockProvider(map[string]decimal.Decimal{"bitcoin": decimal.NewFromInt(50000)}),
	}

	status := execute(t, cmd, "-file", writeHistory(t, history), "-live", "-dump")
	require.Equal(t, subcommands.ExitSuccess, status)

	assert.Contains(t, out.String(), "Total value: $37,500.00")
	assert.Contains(t, out.String(), "portfolio.Metrics")
}

func TestReport_MissingPriceValuesAtZero(t *testing.T) {
	var out bytes.Buffer
	status := execute(t, &reportCmd{out: &out}, "-file", writeHistory(t, history))
	require.Equal(t, subcommands.ExitSuccess, status)
	assert.Contains(t, out.String(), "Total value: $0.00")
}

func TestReport_Errors(t *testing.T) {
	assert.Equal(t, subcommands.ExitUsageError, execute(t, &reportCmd{out: &bytes.Buffer{}}))
	assert.Equal(t, subcommands.ExitFailure,
		execute(t, &reportCmd{out: &bytes.Buffer{}}, "-file", filepath.Join(t.TempDir(), "missing.csv")))

	fs := flag.NewFlagSet("report", flag.ContinueOnError)
	(&reportCmd{}).SetFlags(fs)
	assert.Error(t, fs.Parse([]string{"-price", "bitcoin"}))
}

func TestCheck(t *testing.T) {
	var out bytes.Buffer
	status := execute(t, &checkCmd{out: &out}, "-file", writeHistory(t, history))
	require.Equal(t, subcommands.ExitSuccess, status)
	assert.Equal(t, "3 transactions, no oversells\n", out.String())

	oversold := history + "bitcoin,BTC,sell,1,60000,2023-04-01T00:00:00Z,\n"
	out.Reset()
	status = execute(t, &checkCmd{out: &out}, "-file", writeHistory(t, oversold))
	assert.Equal(t, subcommands.ExitFailure, status)
	assert.Contains(t, out.String(), "oversell: bitcoin sold 1 at 2023-04-01 00:00:00 with only 0.75 held")
}

func TestFormatMoney(t *testing.T) {
	assert.Equal(t, "$1,234.56", formatMoney(decimal.RequireFromString("1234.555"), "usd"))
	assert.Equal(t, "-$12.34", formatMoney(decimal.RequireFromString("-12.34"), "USD"))
	assert.Equal(t, "0.50 XYZ", formatMoney(decimal.RequireFromString("0.5"), "xyz"))
	assert.Equal(t, "+$0.00", formatSigned(decimal.Zero, "usd"))
	assert.Equal(t, "-1.50%", formatPercent(decimal.RequireFromString("-1.5")))
}
