package source

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"iter"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"transit-catalog/core/reconcile"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Row is one data line of a GTFS file, addressed by header name.
type Row struct {
	Line   int
	File   string
	values map[string]string
}

// NewRow builds a row from column values. It is mostly useful in tests.
func NewRow(file string, line int, values map[string]string) Row {
	return Row{Line: line, File: file, values: values}
}

// Get returns the trimmed value of a column, or "" when absent.
func (r Row) Get(column string) string {
	return strings.TrimSpace(r.values[column])
}

// Require returns a column value, failing when it is empty.
func (r Row) Require(column string) (string, error) {
	v := r.Get(column)
	if v == "" {
		return "", reconcile.Malformed(r.Line, "%s: %s is empty", r.File, column)
	}
	return v, nil
}

// Int parses a required integer column.
func (r Row) Int(column string) (int64, error) {
	v, err := r.Require(column)
	if err != nil {
		return 0, err
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, reconcile.Malformed(r.Line, "%s: %s %q is not an integer", r.File, column, v)
	}
	return n, nil
}

// Float parses a required decimal column.
func (r Row) Float(column string) (float64, error) {
	v, err := r.Require(column)
	if err != nil {
		return 0, err
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, reconcile.Malformed(r.Line, "%s: %s %q is not a number", r.File, column, v)
	}
	return f, nil
}

// ParseFunc turns a GTFS row into a catalog record.
type ParseFunc func(Row) (reconcile.Record, error)

// Rows lazily reads a header-labelled GTFS file. The file is opened when
// iteration starts and closed when it ends, early exits included.
func Rows(dir, file string, required []string) iter.Seq2[Row, error] {
	return func(yield func(Row, error) bool) {
		f, err := os.Open(filepath.Join(dir, file))
		if err != nil {
			yield(Row{}, fmt.Errorf("failed to open %s: %w", file, err))
			return
		}
		defer f.Close()

		r := csv.NewReader(skipBOM(f))
		r.FieldsPerRecord = -1

		header, err := r.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				err = reconcile.Malformed(1, "%s: missing header", file)
			}
			yield(Row{}, err)
			return
		}
		for i := range header {
			header[i] = strings.TrimSpace(header[i])
		}
		for _, col := range required {
			if !containsColumn(header, col) {
				yield(Row{}, reconcile.Malformed(1, "%s: missing column %s", file, col))
				return
			}
		}

		for {
			fields, err := r.Read()
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				yield(Row{}, fmt.Errorf("%w: %s: %v", reconcile.ErrMalformedRecord, file, err))
				return
			}
			line, _ := r.FieldPos(0)
			if len(fields) == 1 && strings.TrimSpace(fields[0]) == "" {
				continue
			}

			values := make(map[string]string, len(header))
			for i, col := range header {
				if i < len(fields) {
					values[col] = fields[i]
				}
			}
			if !yield(Row{Line: line, File: file, values: values}, nil) {
				return
			}
		}
	}
}

// Open reads a GTFS file and converts each row with parse.
func Open(dir, file string, required []string, parse ParseFunc) iter.Seq2[reconcile.Record, error] {
	return func(yield func(reconcile.Record, error) bool) {
		for row, err := range Rows(dir, file, required) {
			if err != nil {
				yield(reconcile.Record{}, err)
				return
			}
			rec, err := parse(row)
			if err != nil {
				yield(reconcile.Record{}, err)
				return
			}
			rec.Line = row.Line
			if !yield(rec, nil) {
				return
			}
		}
	}
}

func skipBOM(r io.Reader) io.Reader {
	br := bufio.NewReader(r)
	if head, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}
	return br
}

func containsColumn(header []string, col string) bool {
	for _, h := range header {
		if h == col {
			return true
		}
	}
	return false
}
