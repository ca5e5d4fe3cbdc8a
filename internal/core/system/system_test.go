package system

import (
	"testing"
	"time"
)

type recordingSystem struct {
	phase Phase
	name  string
	log   *[]string
}

func (s *recordingSystem) Phase() Phase { return s.phase }
func (s *recordingSystem) Update(dt time.Duration) {
	*s.log = append(*s.log, s.name)
}

func TestPipelineRunsInPhaseOrder(t *testing.T) {
	var log []string
	p := NewPipeline(
		&recordingSystem{phase: PhaseOutput, name: "output", log: &log},
		&recordingSystem{phase: PhaseInput, name: "input", log: &log},
		&recordingSystem{phase: PhaseUpdate, name: "update", log: &log},
		&recordingSystem{phase: PhasePreUpdate, name: "pre", log: &log},
		&recordingSystem{phase: PhasePostUpdate, name: "post", log: &log},
	)
	p.Tick(50 * time.Millisecond)

	want := []string{"input", "pre", "update", "post", "output"}
	if len(log) != len(want) {
		t.Fatalf("ran %d systems, want %d", len(log), len(want))
	}
	for i := range want {
		if log[i] != want[i] {
			t.Fatalf("order = %v, want %v", log, want)
		}
	}
}

func TestPipelinePreservesRegistrationOrderWithinPhase(t *testing.T) {
	var log []string
	p := NewPipeline(
		&recordingSystem{phase: PhaseUpdate, name: "first", log: &log},
		&recordingSystem{phase: PhaseUpdate, name: "second", log: &log},
		&recordingSystem{phase: PhaseUpdate, name: "third", log: &log},
	)
	p.Tick(time.Millisecond)
	if log[0] != "first" || log[1] != "second" || log[2] != "third" {
		t.Fatalf("order = %v", log)
	}
}
