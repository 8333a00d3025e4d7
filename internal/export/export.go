// Package export renders the ledger for download and for spreadsheet
// snapshots.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"bookkeeping/internal/core"
	"bookkeeping/internal/ledger"
)

type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

// Header is the column order shared by CSV files and sheet snapshots.
var Header = []string{"id", "date", "type", "category", "note", "amount", "createdAt"}

// ParseFormat maps a query value to a Format. Empty means JSON.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatJSON:
		return FormatJSON, nil
	case FormatCSV:
		return FormatCSV, nil
	}
	return "", fmt.Errorf("unsupported export format %q", s)
}

func (f Format) ContentType() string {
	if f == FormatCSV {
		return "text/csv; charset=utf-8"
	}
	return "application/json; charset=utf-8"
}

// FileName is the suggested download name for an export taken at now.
func (f Format) FileName(now time.Time) string {
	return fmt.Sprintf("bookkeeping-%s.%s", now.Format("20060102-150405"), string(f))
}

// Row converts one record into the Header column order.
func Row(r core.Record) []string {
	return []string{
		r.ID,
		r.Date,
		string(r.Type),
		r.Category,
		r.Note,
		core.FormatAmount(r.Amount),
		strconv.FormatInt(r.CreatedAt, 10),
	}
}

// Rows returns the header followed by one row per record.
func Rows(records []core.Record) [][]string {
	rows := make([][]string, 0, len(records)+1)
	rows = append(rows, Header)
	for _, r := range records {
		rows = append(rows, Row(r))
	}
	return rows
}

// WriteCSV writes records as CSV with a header line.
func WriteCSV(w io.Writer, records []core.Record) error {
	cw := csv.NewWriter(w)
	for _, row := range Rows(records) {
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Encode renders records in the requested format.
func Encode(f Format, records []core.Record) ([]byte, error) {
	switch f {
	case FormatJSON:
		return ledger.EncodeJSON(records)
	case FormatCSV:
		var buf bytes.Buffer
		if err := WriteCSV(&buf, records); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}
	return nil, fmt.Errorf("unsupported export format %q", f)
}
