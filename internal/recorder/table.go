package recorder

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/san-kum/phasesim/internal/dynamo"
)

// Table is a column-named snapshot of recorded samples.
type Table struct {
	Names []string
	Times []float64
	Rows  [][]float64
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.Times) }

// Column returns the values of one channel, or false if it is not tracked.
// The name "time" returns the sample times.
func (t *Table) Column(name string) ([]float64, bool) {
	if name == "time" {
		return append([]float64(nil), t.Times...), true
	}
	for j, n := range t.Names {
		if n != name {
			continue
		}
		col := make([]float64, len(t.Rows))
		for i, row := range t.Rows {
			col[i] = row[j]
		}
		return col, true
	}
	return nil, false
}

// Until returns the rows sampled at or before t, sharing row storage with
// the receiver.
func (t *Table) Until(at float64) *Table {
	n := sort.Search(len(t.Times), func(i int) bool { return t.Times[i] > at })
	return &Table{Names: t.Names, Times: t.Times[:n], Rows: t.Rows[:n]}
}

// Header returns the CSV header: time followed by the channel names.
func (t *Table) Header() []string {
	return append([]string{"time"}, t.Names...)
}

// Record returns row i formatted as CSV fields.
func (t *Table) Record(i int) []string {
	rec := make([]string, 0, len(t.Names)+1)
	rec = append(rec, FormatFloat(t.Times[i]))
	for _, v := range t.Rows[i] {
		rec = append(rec, FormatFloat(v))
	}
	return rec
}

// WriteCSV writes the header and every row to w.
func (t *Table) WriteCSV(w io.Writer) error {
	return writeRecords(w, func(write func([]string) error) error {
		if err := write(t.Header()); err != nil {
			return err
		}
		for i := range t.Times {
			if err := write(t.Record(i)); err != nil {
				return err
			}
		}
		return nil
	})
}

// ReadCSV parses a table written by WriteCSV.
func ReadCSV(r io.Reader) (*Table, error) {
	records, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("read csv: missing header: %w", dynamo.ErrInvalidConfig)
	}
	header := records[0]
	if len(header) == 0 || header[0] != "time" {
		return nil, fmt.Errorf("read csv: first column must be time: %w", dynamo.ErrInvalidConfig)
	}

	t := &Table{Names: append([]string(nil), header[1:]...)}
	for line, rec := range records[1:] {
		vals := make([]float64, len(rec))
		for j, field := range rec {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("read csv: line %d column %d: %w", line+2, j+1, err)
			}
			vals[j] = v
		}
		t.Times = append(t.Times, vals[0])
		t.Rows = append(t.Rows, vals[1:])
	}
	return t, nil
}
