package storage

import "github.com/san-kum/orbsim/internal/dynamo"

// Sample is a snapshot of every body at one simulation instant.
type Sample struct {
	Step   int           `json:"step"`
	Time   float64       `json:"time"`
	Bodies []dynamo.Body `json:"bodies"`
}

// Recorder is an observer that keeps every Nth step.
type Recorder struct {
	every   int
	samples []Sample
}

func NewRecorder(every int) *Recorder {
	if every < 1 {
		every = 1
	}
	return &Recorder{every: every}
}

func (r *Recorder) OnStep(step int, t float64, bodies []dynamo.Body) {
	if step%r.every != 0 {
		return
	}
	r.samples = append(r.samples, Sample{
		Step:   step,
		Time:   t,
		Bodies: dynamo.CloneBodies(bodies),
	})
}

func (r *Recorder) Samples() []Sample {
	return r.samples
}

func (r *Recorder) Len() int {
	return len(r.samples)
}

func (r *Recorder) Reset() {
	r.samples = r.samples[:0]
}

// Track returns the recorded positions of one body.
func Track(samples []Sample, name string) []dynamo.Vec3 {
	var out []dynamo.Vec3
	for _, s := range samples {
		for _, b := range s.Bodies {
			if b.Name == name {
				out = append(out, b.Position)
				break
			}
		}
	}
	return out
}
