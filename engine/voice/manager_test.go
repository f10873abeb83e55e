package voice

import (
	"testing"

	"github.com/cwbudde/algo-synth/engine/core"
	"github.com/cwbudde/algo-synth/engine/node"
)

func testConfig(voices int) core.Config {
	cfg := core.DefaultConfig()
	cfg.MaxVoices = voices
	return cfg
}

func testProfile() Profile {
	p := DefaultProfile()
	p.Release = 0.01
	return p
}

func TestNoteOnAssignsFreeVoice(t *testing.T) {
	t.Parallel()

	m, err := NewManager(testConfig(4), testProfile())
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	m.NoteOn(60, 100)
	if got := m.CountInState(StateActive); got != 1 {
		t.Fatalf("active voices = %d, want 1", got)
	}
	if got := m.CountInState(StateFree); got != 3 {
		t.Fatalf("free voices = %d, want 3", got)
	}
}

// TestStealOldestActive covers the documented policy: with every voice
// Active, a further note-on steals the earliest-triggered voice, and the
// stolen voice restarts from a reset envelope.
func TestStealOldestActive(t *testing.T) {
	t.Parallel()

	m, err := NewManager(testConfig(4), testProfile())
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	for _, n := range []uint8{60, 62, 64, 65} {
		m.NoteOn(n, 100)
	}

	m.NoteOn(67, 100)

	if got := m.CountInState(StateActive); got != 4 {
		t.Fatalf("active voices = %d, want 4", got)
	}

	notes := map[uint8]bool{}
	for _, v := range m.Voices() {
		notes[v.Note()] = true
	}
	if notes[60] {
		t.Error("oldest note 60 should have been stolen")
	}
	if !notes[67] {
		t.Error("new note 67 should be sounding")
	}

	// The stolen voice restarted its envelope from scratch.
	for _, v := range m.Voices() {
		if v.Note() == 67 && v.env.Stage() != node.StageAttack {
			t.Errorf("stolen voice envelope stage = %v, want attack", v.env.Stage())
		}
	}
}

// TestStealPrefersReleasing verifies that Releasing voices are stolen
// before any Active voice.
func TestStealPrefersReleasing(t *testing.T) {
	t.Parallel()

	m, err := NewManager(testConfig(4), testProfile())
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	for _, n := range []uint8{60, 62, 64, 65} {
		m.NoteOn(n, 100)
	}
	m.NoteOff(64)

	m.NoteOn(67, 100)

	notes := map[uint8]State{}
	for _, v := range m.Voices() {
		notes[v.Note()] = v.State()
	}

	// 64 (the releasing voice) was recycled; 60 survives even though it
	// is the oldest active note.
	if notes[60] != StateActive {
		t.Error("active note 60 should survive while a releasing voice exists")
	}
	if notes[67] != StateActive {
		t.Error("new note 67 should be active")
	}
	if m.CountInState(StateReleasing) != 0 {
		t.Error("the releasing voice should have been stolen")
	}
}

func TestNoteOffMatchesMostRecent(t *testing.T) {
	t.Parallel()

	m, err := NewManager(testConfig(4), testProfile())
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	// Same pitch twice: note-off must release the later trigger first.
	m.NoteOn(60, 100)
	m.NoteOn(60, 100)

	m.NoteOff(60)

	var released, active *Voice
	for _, v := range m.Voices() {
		switch v.State() {
		case StateReleasing:
			released = v
		case StateActive:
			active = v
		}
	}
	if released == nil || active == nil {
		t.Fatal("expected one releasing and one active voice")
	}
	if released.seq < active.seq {
		t.Error("note-off should release the most recently triggered match")
	}
}

func TestNoteOffUnknownNoteIsNoOp(t *testing.T) {
	t.Parallel()

	m, err := NewManager(testConfig(2), testProfile())
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	m.NoteOn(60, 100)
	m.NoteOff(61)

	if got := m.CountInState(StateActive); got != 1 {
		t.Fatalf("active voices = %d, want 1", got)
	}
}

// TestLifecyclePassesThroughReleasing renders a released voice until its
// envelope completes and checks it returns to the pool via TickRelease.
func TestLifecyclePassesThroughReleasing(t *testing.T) {
	t.Parallel()

	cfg := testConfig(2)
	m, err := NewManager(cfg, testProfile())
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	m.NoteOn(60, 100)
	m.NoteOff(60)

	if got := m.CountInState(StateReleasing); got != 1 {
		t.Fatalf("releasing voices = %d, want 1", got)
	}

	dst := make([]float64, cfg.BlockSize)
	for b := 0; b < 100; b++ {
		core.Zero(dst)
		m.RenderBlock(dst, node.NoParams{})
		m.TickRelease()
	}

	if got := m.CountInState(StateFree); got != 2 {
		t.Fatalf("free voices after decay = %d, want 2", got)
	}
}

func TestReleaseAll(t *testing.T) {
	t.Parallel()

	m, err := NewManager(testConfig(4), testProfile())
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	for _, n := range []uint8{60, 64, 67} {
		m.NoteOn(n, 100)
	}
	m.ReleaseAll()

	if got := m.CountInState(StateActive); got != 0 {
		t.Fatalf("active voices = %d, want 0", got)
	}
	if got := m.CountInState(StateReleasing); got != 3 {
		t.Fatalf("releasing voices = %d, want 3", got)
	}
}

func TestRenderBlockProducesSignal(t *testing.T) {
	t.Parallel()

	cfg := testConfig(2)
	m, err := NewManager(cfg, testProfile())
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	m.NoteOn(69, 127)

	dst := make([]float64, cfg.BlockSize)
	nonZero := false
	for b := 0; b < 10; b++ {
		core.Zero(dst)
		m.RenderBlock(dst, node.NoParams{})
		for _, v := range dst {
			if v != 0 {
				nonZero = true
			}
		}
	}
	if !nonZero {
		t.Fatal("active voice rendered pure silence")
	}
}

func TestRenderBlockDoesNotAllocate(t *testing.T) {
	cfg := testConfig(4)
	m, err := NewManager(cfg, testProfile())
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	for _, n := range []uint8{60, 64, 67, 72} {
		m.NoteOn(n, 100)
	}

	dst := make([]float64, cfg.BlockSize)
	allocs := testing.AllocsPerRun(100, func() {
		core.Zero(dst)
		m.RenderBlock(dst, node.NoParams{})
		m.TickRelease()
	})
	if allocs != 0 {
		t.Fatalf("render path allocates %v times per block, want 0", allocs)
	}
}

func BenchmarkManagerRenderBlock(b *testing.B) {
	cfg := testConfig(8)
	m, err := NewManager(cfg, DefaultProfile())
	if err != nil {
		b.Fatalf("NewManager: %v", err)
	}

	for _, n := range []uint8{48, 52, 55, 60, 64, 67, 71, 72} {
		m.NoteOn(n, 100)
	}

	dst := make([]float64, cfg.BlockSize)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		core.Zero(dst)
		m.RenderBlock(dst, node.NoParams{})
		m.TickRelease()
	}
}
