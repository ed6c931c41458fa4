package storage

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/orbsim/internal/dynamo"
)

func sampleRun() (RunMetadata, []Sample) {
	rec := NewRecorder(2)
	bodies := []dynamo.Body{
		{Name: "Earth", Mass: 5.9742e24, Radius: 6.378e6},
		{Name: "Moon", Mass: 7.36e22, Radius: 1.738e6, Position: dynamo.Vec3{X: -3.84e8}, Velocity: dynamo.Vec3{Y: -1020}},
	}
	for step := 0; step < 5; step++ {
		bodies[1].Position.Y += 1000
		rec.OnStep(step, float64(step)*576, bodies)
	}

	meta := RunMetadata{
		Preset:  "earth_moon",
		Dt:      576,
		Steps:   5,
		Bodies:  []string{"Earth", "Moon"},
		Metrics: map[string]float64{"energy_drift": 1.5e-6},
	}
	return meta, rec.Samples()
}

func TestRecorderSamplesEveryN(t *testing.T) {
	_, samples := sampleRun()

	if len(samples) != 3 {
		t.Fatalf("expected 3 samples, got %d", len(samples))
	}
	if samples[1].Step != 2 || samples[2].Step != 4 {
		t.Errorf("unexpected sample steps: %d %d", samples[1].Step, samples[2].Step)
	}

	track := Track(samples, "Moon")
	if len(track) != 3 {
		t.Fatalf("expected 3 points, got %d", len(track))
	}
	if track[0].Y == track[2].Y {
		t.Error("expected samples to be independent copies")
	}
}

func TestStoreSaveLoad(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)

	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	meta, samples := sampleRun()
	runID, err := st.Save(meta, samples)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	if runID == "" {
		t.Error("expected non-empty run id")
	}

	loaded, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if loaded.Preset != "earth_moon" {
		t.Errorf("expected preset 'earth_moon', got '%s'", loaded.Preset)
	}
	if loaded.ID != runID {
		t.Errorf("expected id %s, got %s", runID, loaded.ID)
	}
	if loaded.Metrics["energy_drift"] != 1.5e-6 {
		t.Errorf("expected energy_drift 1.5e-6, got %g", loaded.Metrics["energy_drift"])
	}

	got, err := st.LoadTrajectory(runID)
	if err != nil {
		t.Fatalf("load trajectory failed: %v", err)
	}

	if len(got) != len(samples) {
		t.Fatalf("expected %d samples, got %d", len(samples), len(got))
	}
	for i := range got {
		if got[i].Step != samples[i].Step || got[i].Time != samples[i].Time {
			t.Errorf("sample %d: step/time mismatch", i)
		}
		for j := range got[i].Bodies {
			if got[i].Bodies[j] != samples[i].Bodies[j] {
				t.Errorf("sample %d body %d: got %+v want %+v", i, j, got[i].Bodies[j], samples[i].Bodies[j])
			}
		}
	}
}

func TestStoreList(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected 0 runs, got %d", len(runs))
	}

	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	meta, samples := sampleRun()
	if _, err := st.Save(meta, samples); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if _, err := st.Save(meta, nil); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if err := os.Mkdir(filepath.Join(tmpDir, "junk"), 0755); err != nil {
		t.Fatal(err)
	}

	runs, err = st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 2 {
		t.Errorf("expected 2 runs, got %d", len(runs))
	}
}

func TestStoreFileStructure(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)

	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	runID, err := st.Save(RunMetadata{Preset: "empty"}, nil)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	runDir := filepath.Join(tmpDir, runID)
	if _, err := os.Stat(filepath.Join(runDir, "metadata.json")); os.IsNotExist(err) {
		t.Error("metadata.json not created")
	}
	if _, err := os.Stat(filepath.Join(runDir, "trajectory.csv")); os.IsNotExist(err) {
		t.Error("trajectory.csv not created")
	}

	samples, err := st.LoadTrajectory(runID)
	if err != nil {
		t.Fatalf("load trajectory failed: %v", err)
	}
	if len(samples) != 0 {
		t.Errorf("expected no samples, got %d", len(samples))
	}
}

func TestExport(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatal(err)
	}

	meta, samples := sampleRun()
	runID, err := st.Save(meta, samples)
	if err != nil {
		t.Fatal(err)
	}

	data, err := st.Export(runID)
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}

	var buf bytes.Buffer
	if err := WriteJSON(&buf, data); err != nil {
		t.Fatal(err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded["preset"] != "earth_moon" {
		t.Errorf("expected flattened preset field, got %v", decoded["preset"])
	}
	if s, ok := decoded["samples"].([]any); !ok || len(s) != 3 {
		t.Errorf("expected 3 samples in export, got %v", decoded["samples"])
	}
}
