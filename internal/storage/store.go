package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/orbsim/internal/dynamo"
)

const (
	metadataFile   = "metadata.json"
	trajectoryFile = "trajectory.csv"
)

var trajectoryHeader = []string{"step", "time", "body", "mass", "radius", "x", "y", "z", "vx", "vy", "vz"}

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
	ID        string             `json:"id"`
	Preset    string             `json:"preset"`
	Timestamp time.Time          `json:"timestamp"`
	Dt        float64            `json:"dt"`
	FPS       int                `json:"fps"`
	TimeScale float64            `json:"time_scale"`
	Steps     int                `json:"steps"`
	Duration  float64            `json:"duration"`
	Bodies    []string           `json:"bodies"`
	Colors    map[string]string  `json:"colors,omitempty"`
	Skipped   int                `json:"skipped_pairs"`
	Metrics   map[string]float64 `json:"metrics"`
}

// Save writes meta and the recorded samples under a fresh run directory and
// returns the run id. meta.ID and meta.Timestamp are filled in.
func (s *Store) Save(meta RunMetadata, samples []Sample) (string, error) {
	now := time.Now()
	runID := fmt.Sprintf("%s_%d", meta.Preset, now.UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta.ID = runID
	meta.Timestamp = now

	metaFile, err := os.Create(filepath.Join(runDir, metadataFile))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, trajectoryFile))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	if err := writeSamples(w, samples); err != nil {
		return "", err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}

	return runID, nil
}

func writeSamples(w *csv.Writer, samples []Sample) error {
	if err := w.Write(trajectoryHeader); err != nil {
		return err
	}
	for _, s := range samples {
		for _, b := range s.Bodies {
			row := []string{
				strconv.Itoa(s.Step),
				formatFloat(s.Time),
				b.Name,
				formatFloat(b.Mass),
				formatFloat(b.Radius),
				formatFloat(b.Position.X),
				formatFloat(b.Position.Y),
				formatFloat(b.Position.Z),
				formatFloat(b.Velocity.X),
				formatFloat(b.Velocity.Y),
				formatFloat(b.Velocity.Z),
			}
			if err := w.Write(row); err != nil {
				return err
			}
		}
	}
	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// List returns all runs sorted oldest first. Directories without readable
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

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})

	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

// LoadTrajectory reads the samples written by Save. Rows of the same step
// are grouped back into one Sample.
func (s *Store) LoadTrajectory(runID string) ([]Sample, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, trajectoryFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = len(trajectoryHeader)

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}

	samples := make([]Sample, 0)
	for i := 1; i < len(records); i++ {
		record := records[i]

		step, err := strconv.Atoi(record[0])
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}

		vals := make([]float64, 0, 9)
		for _, idx := range []int{1, 3, 4, 5, 6, 7, 8, 9, 10} {
			v, err := strconv.ParseFloat(record[idx], 64)
			if err != nil {
				return nil, fmt.Errorf("row %d: %w", i, err)
			}
			vals = append(vals, v)
		}

		body := dynamo.Body{
			Name:     record[2],
			Mass:     vals[1],
			Radius:   vals[2],
			Position: dynamo.Vec3{X: vals[3], Y: vals[4], Z: vals[5]},
			Velocity: dynamo.Vec3{X: vals[6], Y: vals[7], Z: vals[8]},
		}

		if n := len(samples); n > 0 && samples[n-1].Step == step {
			samples[n-1].Bodies = append(samples[n-1].Bodies, body)
			continue
		}
		samples = append(samples, Sample{Step: step, Time: vals[0], Bodies: []dynamo.Body{body}})
	}

	return samples, nil
}
