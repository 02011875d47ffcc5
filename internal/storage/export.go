package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"sort"

	_ "github.com/mattn/go-sqlite3"
	"github.com/xuri/excelize/v2"

	"github.com/san-kum/phasesim/internal/recorder"
)

// ExportData is the JSON form of a run.
type ExportData struct {
	RunMetadata
	Times   []float64            `json:"times"`
	Samples map[string][]float64 `json:"samples"`
}

func NewExportData(meta RunMetadata, table *recorder.Table) ExportData {
	data := ExportData{
		RunMetadata: meta,
		Times:       table.Times,
		Samples:     make(map[string][]float64, len(table.Names)),
	}
	for _, name := range table.Names {
		col, _ := table.Column(name)
		data.Samples[name] = col
	}
	return data
}

func ExportJSON(w io.Writer, meta RunMetadata, table *recorder.Table) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(NewExportData(meta, table))
}

const (
	samplesSheet = "samples"
	eventsSheet  = "events"
	summarySheet = "summary"
)

// ExportXLSX writes a workbook with the samples, the applied events and the
// run summary on separate sheets.
func ExportXLSX(path string, meta RunMetadata, table *recorder.Table) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), samplesSheet); err != nil {
		return err
	}
	if err := writeRow(f, samplesSheet, 1, toAny(table.Header())); err != nil {
		return err
	}
	for i := 0; i < table.Len(); i++ {
		row := make([]any, 0, len(table.Names)+1)
		row = append(row, table.Times[i])
		for _, v := range table.Rows[i] {
			row = append(row, v)
		}
		if err := writeRow(f, samplesSheet, i+2, row); err != nil {
			return err
		}
	}

	if _, err := f.NewSheet(eventsSheet); err != nil {
		return err
	}
	if err := writeRow(f, eventsSheet, 1, []any{"name", "time", "step", "iterations", "converged"}); err != nil {
		return err
	}
	for i, ev := range meta.Events {
		if err := writeRow(f, eventsSheet, i+2, []any{ev.Name, ev.Time, ev.Step, ev.Iterations, ev.Converged}); err != nil {
			return err
		}
	}

	if _, err := f.NewSheet(summarySheet); err != nil {
		return err
	}
	for i, key := range sortedKeys(meta.Summary) {
		if err := writeRow(f, summarySheet, i+1, []any{key, meta.Summary[key]}); err != nil {
			return err
		}
	}

	return f.SaveAs(path)
}

func writeRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

// ExportSQLite writes the run into a SQLite database. Several runs can share
// one database; rows are keyed by run ID.
func ExportSQLite(path string, meta RunMetadata, table *recorder.Table) error {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(1)

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck

	for _, stmt := range []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			scenario TEXT NOT NULL,
			integrator TEXT NOT NULL,
			dt REAL NOT NULL,
			duration REAL NOT NULL,
			steps INTEGER NOT NULL,
			final_time REAL NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS samples (
			run_id TEXT NOT NULL,
			idx INTEGER NOT NULL,
			time REAL NOT NULL,
			channel TEXT NOT NULL,
			value REAL NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS events (
			run_id TEXT NOT NULL,
			name TEXT NOT NULL,
			time REAL NOT NULL,
			step INTEGER NOT NULL,
			iterations INTEGER NOT NULL,
			converged INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS summary (
			run_id TEXT NOT NULL,
			key TEXT NOT NULL,
			value REAL NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS samples_run ON samples (run_id, channel, idx)`,
	} {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}

	if _, err := tx.Exec(
		`INSERT OR REPLACE INTO runs (id, scenario, integrator, dt, duration, steps, final_time) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		meta.ID, meta.Scenario, meta.Integrator, meta.Dt, meta.Duration, meta.Steps, meta.FinalTime,
	); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	for _, stmt := range []string{
		`DELETE FROM samples WHERE run_id = ?`,
		`DELETE FROM events WHERE run_id = ?`,
		`DELETE FROM summary WHERE run_id = ?`,
	} {
		if _, err := tx.Exec(stmt, meta.ID); err != nil {
			return err
		}
	}

	insert, err := tx.Prepare(`INSERT INTO samples (run_id, idx, time, channel, value) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer insert.Close()
	for i := 0; i < table.Len(); i++ {
		for j, name := range table.Names {
			if _, err := insert.Exec(meta.ID, i, table.Times[i], name, table.Rows[i][j]); err != nil {
				return fmt.Errorf("insert sample: %w", err)
			}
		}
	}

	for _, ev := range meta.Events {
		if _, err := tx.Exec(
			`INSERT INTO events (run_id, name, time, step, iterations, converged) VALUES (?, ?, ?, ?, ?, ?)`,
			meta.ID, ev.Name, ev.Time, ev.Step, ev.Iterations, ev.Converged,
		); err != nil {
			return fmt.Errorf("insert event: %w", err)
		}
	}
	for _, key := range sortedKeys(meta.Summary) {
		if _, err := tx.Exec(`INSERT INTO summary (run_id, key, value) VALUES (?, ?, ?)`,
			meta.ID, key, meta.Summary[key]); err != nil {
			return fmt.Errorf("insert summary: %w", err)
		}
	}

	return tx.Commit()
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
