package seq

import (
	"reflect"
	"testing"

	"github.com/cwbudde/algo-synth/engine/core"
)

func TestNewPatternShape(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	p := NewPattern(cfg)

	if len(p.Tracks) != cfg.MaxTracks {
		t.Fatalf("tracks = %d, want %d", len(p.Tracks), cfg.MaxTracks)
	}
	for i, tr := range p.Tracks {
		if len(tr.Steps) != cfg.PatternSteps {
			t.Fatalf("track %d steps = %d, want %d", i, len(tr.Steps), cfg.PatternSteps)
		}
	}
	if p.Length != cfg.PatternSteps {
		t.Errorf("length = %d, want %d", p.Length, cfg.PatternSteps)
	}
	if p.Next != -1 {
		t.Errorf("next = %d, want -1 (self)", p.Next)
	}
}

func TestSetStepValidation(t *testing.T) {
	t.Parallel()

	p := NewPattern(testConfig())

	if err := p.SetStep(99, 0, Step{}); err == nil {
		t.Error("expected error for bad track")
	}
	if err := p.SetStep(0, 99, Step{}); err == nil {
		t.Error("expected error for bad step index")
	}

	tooManyLocks := make([]ParamLock, MaxStepLocks+1)
	if err := p.SetStep(0, 0, Step{On: true, Locks: tooManyLocks}); err == nil {
		t.Error("expected error for too many locks")
	}
}

func TestStepAtOutOfRangeReadsEmpty(t *testing.T) {
	t.Parallel()

	p := NewPattern(testConfig())
	if got := p.StepAt(99, 99); got.On {
		t.Error("out-of-range step should read as empty")
	}
}

func TestSetLengthValidation(t *testing.T) {
	t.Parallel()

	p := NewPattern(testConfig())
	if err := p.SetLength(0); err == nil {
		t.Error("expected error for zero length")
	}
	if err := p.SetLength(99); err == nil {
		t.Error("expected error beyond step capacity")
	}
	if err := p.SetLength(8); err != nil {
		t.Errorf("SetLength(8): %v", err)
	}
}

func TestClear(t *testing.T) {
	t.Parallel()

	p := NewPattern(testConfig())
	if err := p.SetStep(1, 3, Step{On: true, Note: 60, Velocity: 100}); err != nil {
		t.Fatalf("SetStep: %v", err)
	}

	p.Clear()
	if p.StepAt(1, 3).On {
		t.Error("Clear should remove triggers")
	}
}

// TestExportImportRoundTrip verifies the persisted-state contract:
// serializing and re-importing patterns reproduces identical triggers,
// notes, velocities and parameter locks.
func TestExportImportRoundTrip(t *testing.T) {
	t.Parallel()

	s := newTestSequencer(t)
	p := s.Pattern(2)
	p.Next = 3
	if err := p.SetLength(12); err != nil {
		t.Fatalf("SetLength: %v", err)
	}
	if err := p.SetStep(0, 0, Step{On: true, Note: 60, Velocity: 100}); err != nil {
		t.Fatalf("SetStep: %v", err)
	}
	if err := p.SetStep(1, 7, Step{
		On: true, Note: 43, Velocity: 80,
		Locks: []ParamLock{{Param: 0, Value: 1200}, {Param: 2, Value: 0.3}},
	}); err != nil {
		t.Fatalf("SetStep: %v", err)
	}

	data, err := s.ExportPatterns()
	if err != nil {
		t.Fatalf("ExportPatterns: %v", err)
	}

	restored := newTestSequencer(t)
	if err := restored.ImportPatterns(data); err != nil {
		t.Fatalf("ImportPatterns: %v", err)
	}

	for i := 0; i < testConfig().MaxPatterns; i++ {
		if !reflect.DeepEqual(restored.Pattern(i), s.Pattern(i)) {
			t.Fatalf("pattern %d differs after round trip", i)
		}
	}
}

func TestImportRejectsInvalidJSON(t *testing.T) {
	t.Parallel()

	s := newTestSequencer(t)
	if err := s.ImportPatterns([]byte("not json")); err == nil {
		t.Error("expected error for invalid json")
	}
}

// TestImportConformsOversizedData ensures foreign data cannot grow the
// fixed-capacity pattern storage.
func TestImportConformsOversizedData(t *testing.T) {
	t.Parallel()

	big := core.DefaultConfig()
	big.MaxTracks = 8
	big.PatternSteps = 64
	donor, err := New(big)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := donor.Pattern(0).SetStep(7, 63, Step{On: true, Note: 99, Velocity: 1}); err != nil {
		t.Fatalf("SetStep: %v", err)
	}

	data, err := donor.ExportPatterns()
	if err != nil {
		t.Fatalf("ExportPatterns: %v", err)
	}

	s := newTestSequencer(t)
	if err := s.ImportPatterns(data); err != nil {
		t.Fatalf("ImportPatterns: %v", err)
	}

	cfg := testConfig()
	p := s.Pattern(0)
	if len(p.Tracks) != cfg.MaxTracks {
		t.Fatalf("tracks grew to %d, want %d", len(p.Tracks), cfg.MaxTracks)
	}
	if len(p.Tracks[0].Steps) != cfg.PatternSteps {
		t.Fatalf("steps grew to %d, want %d", len(p.Tracks[0].Steps), cfg.PatternSteps)
	}
	if p.Length > cfg.PatternSteps {
		t.Fatalf("length = %d exceeds capacity %d", p.Length, cfg.PatternSteps)
	}
}
