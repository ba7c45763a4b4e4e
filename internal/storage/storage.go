// Package storage persists simulation runs: one directory per run with a
// JSON metadata file and a CSV of the per-step damage series.
package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/san-kum/peridyn/internal/sim"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID          string             `json:"id"`
	Problem     string             `json:"problem"`
	Timestamp   time.Time          `json:"timestamp"`
	Particles   int                `json:"particles"`
	Horizon     float64            `json:"horizon"`
	Dt          float64            `json:"dt"`
	Steps       int                `json:"steps"`
	LoadRate    float64            `json:"load_rate"`
	Cracked     bool               `json:"cracked"`
	Truncated   int                `json:"truncated_rows"`
	FinalDamage float64            `json:"final_mean_damage"`
	Metrics     map[string]float64 `json:"metrics"`
}

// Save writes metadata.json and damage.csv for the run and returns its id.
func (s *Store) Save(meta RunMetadata, result *sim.Result) (string, error) {
	runID := fmt.Sprintf("%s_%d", meta.Problem, time.Now().Unix())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta.ID = runID
	meta.Timestamp = time.Now()
	meta.Metrics = result.Metrics
	if n := len(result.MeanDamage); n > 0 {
		meta.FinalDamage = result.MeanDamage[n-1]
	}

	metaFile, err := os.Create(filepath.Join(runDir, "metadata.json"))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, "damage.csv"))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	defer w.Flush()

	if err := w.Write([]string{"time", "mean_damage", "max_damage", "active_bonds"}); err != nil {
		return "", err
	}
	for i := range result.Times {
		row := []string{
			strconv.FormatFloat(result.Times[i], 'f', 6, 64),
			strconv.FormatFloat(result.MeanDamage[i], 'f', 6, 64),
			strconv.FormatFloat(result.MaxDamage[i], 'f', 6, 64),
			strconv.Itoa(result.ActiveBonds[i]),
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}

	return runID, nil
}

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
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}
	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// Series is the damage history of a stored run.
type Series struct {
	Times       []float64
	MeanDamage  []float64
	MaxDamage   []float64
	ActiveBonds []int
}

func (s *Store) LoadSeries(runID string) (*Series, error) {
	f, err := os.Open(filepath.Join(s.baseDir, runID, "damage.csv"))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 1 {
		return nil, fmt.Errorf("storage: empty damage series for %s", runID)
	}

	out := &Series{}
	for _, rec := range records[1:] {
		if len(rec) != 4 {
			return nil, fmt.Errorf("storage: bad damage row %v", rec)
		}
		t, err := strconv.ParseFloat(rec[0], 64)
		if err != nil {
			return nil, err
		}
		mean, err := strconv.ParseFloat(rec[1], 64)
		if err != nil {
			return nil, err
		}
		max, err := strconv.ParseFloat(rec[2], 64)
		if err != nil {
			return nil, err
		}
		bonds, err := strconv.Atoi(rec[3])
		if err != nil {
			return nil, err
		}
		out.Times = append(out.Times, t)
		out.MeanDamage = append(out.MeanDamage, mean)
		out.MaxDamage = append(out.MaxDamage, max)
		out.ActiveBonds = append(out.ActiveBonds, bonds)
	}
	return out, nil
}
