package recorder

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/san-kum/phasesim/internal/dynamo"
)

// Accessor reads one channel from the state.
type Accessor[S any] func(state *S) float64

// Recorder buffers samples in memory. It implements sim.Sampler.
type Recorder[S any] struct {
	names     []string
	accessors []Accessor[S]
	index     map[string]int

	times []float64
	rows  [][]float64

	path string
	w    io.Writer
}

// New returns a recorder that writes its CSV to path on Flush. An empty path
// keeps the samples in memory only.
func New[S any](path string) *Recorder[S] {
	return &Recorder[S]{path: path, index: make(map[string]int)}
}

// NewWriter returns a recorder that writes its CSV to w on Flush.
func NewWriter[S any](w io.Writer) *Recorder[S] {
	return &Recorder[S]{w: w, index: make(map[string]int)}
}

// Track adds a named channel. Channels are fixed once the first sample is
// taken.
func (r *Recorder[S]) Track(name string, fn Accessor[S]) error {
	if len(r.times) > 0 {
		return fmt.Errorf("track %q after sampling started: %w", name, dynamo.ErrRegistrationClosed)
	}
	if name == "" || name == "time" || fn == nil {
		return fmt.Errorf("track %q: %w", name, dynamo.ErrInvalidConfig)
	}
	if _, ok := r.index[name]; ok {
		return fmt.Errorf("channel %q tracked twice: %w", name, dynamo.ErrInvalidConfig)
	}
	r.index[name] = len(r.names)
	r.names = append(r.names, name)
	r.accessors = append(r.accessors, fn)
	return nil
}

// Sample appends one row read from state at time t.
func (r *Recorder[S]) Sample(state *S, t float64) {
	row := make([]float64, len(r.accessors))
	for i, fn := range r.accessors {
		row[i] = fn(state)
	}
	r.times = append(r.times, t)
	r.rows = append(r.rows, row)
}

// Flush writes every buffered row. It may be called more than once; each
// call rewrites the whole table.
func (r *Recorder[S]) Flush() error {
	switch {
	case r.w != nil:
		return r.WriteCSV(r.w)
	case r.path != "":
		f, err := os.Create(r.path)
		if err != nil {
			return fmt.Errorf("create %s: %w", r.path, err)
		}
		if err := r.WriteCSV(f); err != nil {
			f.Close()
			return err
		}
		return f.Close()
	}
	return nil
}

// WriteCSV writes the header and all rows to w.
func (r *Recorder[S]) WriteCSV(w io.Writer) error {
	return r.Table().WriteCSV(w)
}

// Len returns the number of samples taken.
func (r *Recorder[S]) Len() int { return len(r.times) }

// Names returns the tracked channel names in tracking order.
func (r *Recorder[S]) Names() []string {
	return append([]string(nil), r.names...)
}

// Last returns the most recent sample, or false when nothing was sampled.
func (r *Recorder[S]) Last() (float64, []float64, bool) {
	if len(r.times) == 0 {
		return 0, nil, false
	}
	n := len(r.times) - 1
	return r.times[n], append([]float64(nil), r.rows[n]...), true
}

// Table returns a copy of everything sampled so far.
func (r *Recorder[S]) Table() *Table {
	t := &Table{
		Names: append([]string(nil), r.names...),
		Times: append([]float64(nil), r.times...),
		Rows:  make([][]float64, len(r.rows)),
	}
	for i, row := range r.rows {
		t.Rows[i] = append([]float64(nil), row...)
	}
	return t
}

// FormatFloat renders a sample value the way the CSV output does: the
// shortest representation that parses back to the same float64.
func FormatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func writeRecords(w io.Writer, records func(yield func([]string) error) error) error {
	cw := csv.NewWriter(w)
	if err := records(cw.Write); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}
