// Package csv reads and writes transaction histories in the
// spreadsheet-friendly column layout used by import and export.
package csv

import (
	encodingcsv "encoding/csv"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"cryptotrack/internal/domain/transaction"
)

var (
	ErrMissingColumns = errors.New("missing required columns")
	ErrInvalidValue   = errors.New("invalid value")
)

const (
	colCoinID       = "coinId"
	colCoinSymbol   = "coinSymbol"
	colType         = "type"
	colQuantity     = "quantity"
	colPricePerCoin = "pricePerCoin"
	colTimestamp    = "timestamp"
	colFee          = "fee"
	colExchange     = "exchange"
	colNotes        = "notes"
)

var (
	requiredColumns = []string{colCoinID, colCoinSymbol, colType, colQuantity, colPricePerCoin, colTimestamp}
	exportColumns   = append(slices.Clone(requiredColumns), colFee, colExchange, colNotes)
)

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// Decode parses a CSV document into transactions owned by userID. Columns
// are matched by header name, case-insensitively, in any order. The first
// bad row aborts the whole decode.
func Decode(r io.Reader, userID string) ([]transaction.Transaction, error) {
	reader := encodingcsv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: header: %w", ErrInvalidValue, err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))] = i
	}

	var missing []string
	for _, col := range requiredColumns {
		if _, ok := index[strings.ToLower(col)]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))
	}

	var txs []transaction.Transaction
	for row := 2; ; row++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: %w", ErrInvalidValue, row, err)
		}
		if isBlank(record) {
			continue
		}

		t, err := decodeRow(rowReader{index: index, record: record}, userID, row)
		if err != nil {
			return nil, err
		}
		txs = append(txs, *t)
	}

	return txs, nil
}

type rowReader struct {
	index  map[string]int
	record []string
}

func (r rowReader) get(col string) string {
	i, ok := r.index[strings.ToLower(col)]
	if !ok || i >= len(r.record) {
		return ""
	}
	return strings.TrimSpace(r.record[i])
}

func decodeRow(r rowReader, userID string, row int) (*transaction.Transaction, error) {
	var missing []string
	for _, col := range requiredColumns {
		if r.get(col) == "" {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: row %d: %s", ErrMissingColumns, row, strings.Join(missing, ", "))
	}

	invalid := func(col string, err error) error {
		return fmt.Errorf("%w: row %d, column %s: %w", ErrInvalidValue, row, col, err)
	}

	t := transaction.NewTransaction(userID, "")
	t.CoinID = r.get(colCoinID)
	t.CoinSymbol = strings.ToUpper(r.get(colCoinSymbol))
	t.Exchange = r.get(colExchange)
	t.Notes = r.get(colNotes)

	var err error
	if t.Type, err = transaction.ParseType(r.get(colType)); err != nil {
		return nil, invalid(colType, err)
	}
	if t.Quantity, err = decimal.NewFromString(r.get(colQuantity)); err != nil {
		return nil, invalid(colQuantity, err)
	}
	if t.PricePerCoin, err = decimal.NewFromString(r.get(colPricePerCoin)); err != nil {
		return nil, invalid(colPricePerCoin, err)
	}
	if fee := r.get(colFee); fee != "" {
		if t.Fee, err = decimal.NewFromString(fee); err != nil {
			return nil, invalid(colFee, err)
		}
	}
	if t.Timestamp, err = parseTimestamp(r.get(colTimestamp)); err != nil {
		return nil, invalid(colTimestamp, err)
	}

	if err := t.Validate(); err != nil {
		return nil, fmt.Errorf("%w: row %d: %w", ErrInvalidValue, row, err)
	}
	return t, nil
}

func parseTimestamp(s string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", s)
}

func isBlank(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

// Encode writes txs in ascending timestamp order, ties in input order.
func Encode(w io.Writer, txs []transaction.Transaction) error {
	sorted := slices.Clone(txs)
	slices.SortStableFunc(sorted, func(a, b transaction.Transaction) int {
		return a.Timestamp.Compare(b.Timestamp)
	})

	writer := encodingcsv.NewWriter(w)
	if err := writer.Write(exportColumns); err != nil {
		return err
	}
	for _, t := range sorted {
		record := []string{
			t.CoinID,
			t.CoinSymbol,
			string(t.Type),
			t.Quantity.String(),
			t.PricePerCoin.String(),
			t.Timestamp.UTC().Format(time.RFC3339),
			t.Fee.String(),
			t.Exchange,
			t.Notes,
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
