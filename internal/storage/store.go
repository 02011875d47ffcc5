package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/rs/xid"

	"github.com/san-kum/phasesim/internal/recorder"
)

const (
	metadataFile = "metadata.json"
	samplesFile  = "samples.csv"
)

// ErrRunNotFound is returned when no run directory exists for an ID.
var ErrRunNotFound = errors.New("phasesim: run not found")

// Store keeps finished runs on disk, one directory per run.
type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

// Dir returns the directory holding the run with the given ID.
func (s *Store) Dir(runID string) string {
	return filepath.Join(s.baseDir, runID)
}

type EventMeta struct {
	Name       string  `json:"name"`
	Time       float64 `json:"time"`
	Step       uint64  `json:"step"`
	Iterations int     `json:"iterations"`
	Converged  bool    `json:"converged"`
}

type RunMetadata struct {
	ID         string             `json:"id"`
	Scenario   string             `json:"scenario"`
	Preset     string             `json:"preset,omitempty"`
	Timestamp  time.Time          `json:"timestamp"`
	Dt         float64            `json:"dt"`
	Duration   float64            `json:"duration"`
	Integrator string             `json:"integrator"`
	Params     map[string]float64 `json:"params,omitempty"`
	Steps      uint64             `json:"steps"`
	FinalTime  float64            `json:"final_time"`
	Events     []EventMeta        `json:"events"`
	Summary    map[string]float64 `json:"summary"`
	Channels   []string           `json:"channels"`
}

// Save assigns the run an ID and timestamp, then writes its metadata and
// samples.
func (s *Store) Save(meta RunMetadata, table *recorder.Table) (string, error) {
	meta.ID = xid.New().String()
	meta.Timestamp = time.Now().UTC()
	if table != nil {
		meta.Channels = append([]string(nil), table.Names...)
	}

	runDir := s.Dir(meta.ID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", fmt.Errorf("write metadata: %w", err)
	}

	if table == nil {
		return meta.ID, nil
	}
	f, err := os.Create(filepath.Join(runDir, samplesFile))
	if err != nil {
		return "", err
	}
	if err := table.WriteCSV(f); err != nil {
		f.Close()
		return "", fmt.Errorf("write samples: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return meta.ID, nil
}

// List returns the stored runs, oldest first. Directories without readable
// metadata are skipped.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
	return runs, nil
}

// Latest returns the most recent run.
func (s *Store) Latest() (*RunMetadata, error) {
	runs, err := s.List()
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, ErrRunNotFound
	}
	return &runs[len(runs)-1], nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.Dir(runID), metadataFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", runID, ErrRunNotFound)
		}
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("%s: parse metadata: %w", runID, err)
	}
	return &meta, nil
}

// LoadSamples reads back the samples written by Save.
func (s *Store) LoadSamples(runID string) (*recorder.Table, error) {
	f, err := os.Open(filepath.Join(s.Dir(runID), samplesFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", runID, ErrRunNotFound)
		}
		return nil, err
	}
	defer f.Close()

	return recorder.ReadCSV(f)
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
