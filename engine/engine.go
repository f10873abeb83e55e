package engine

import (
	"fmt"

	"github.com/cwbudde/algo-synth/engine/core"
	"github.com/cwbudde/algo-synth/engine/event"
	"github.com/cwbudde/algo-synth/engine/graph"
	"github.com/cwbudde/algo-synth/engine/node"
	"github.com/cwbudde/algo-synth/engine/param"
	"github.com/cwbudde/algo-synth/engine/seq"
	"github.com/cwbudde/algo-synth/engine/transport"
	"github.com/cwbudde/algo-synth/engine/voice"
)

// Engine-wide parameter ids, fixed at compile time.
const (
	ParamCutoff = iota
	ParamResonance
	ParamMasterCutoff
	ParamMasterLevel

	paramCount
)

// ParamDefs returns the engine's parameter table. The slice index is the
// parameter id.
func ParamDefs() []param.Def {
	return []param.Def{
		ParamCutoff:       {Name: "cutoff", Min: 20, Max: 8000, Default: 2000},
		ParamResonance:    {Name: "resonance", Min: 0.5, Max: 10, Default: 0.7},
		ParamMasterCutoff: {Name: "master-cutoff", Min: 20, Max: 8000, Default: 8000},
		ParamMasterLevel:  {Name: "master-level", Min: 0, Max: 1, Default: 0.8},
	}
}

// Engine wires the parameter store, transport queue, sequencer, voice pool
// and master graph into one playable instrument.
//
// Two call surfaces, two contexts: RenderBlock belongs to the render
// context and is driven by the audio output collaborator once per block.
// Everything else is control-context API; note and transport commands
// travel through the event queue and take effect at the next block
// boundary.
type Engine struct {
	cfg core.Config

	store  *param.Store
	queue  *transport.Queue
	seq    *seq.Sequencer
	voices *voice.Manager
	graph  *graph.Graph
	source *node.Source

	evScratch    []event.Event
	flushScratch []event.Event

	blocks uint64
}

// New builds an engine with the default voice profile bound to the engine
// parameter table.
func New(opts ...core.Option) (*Engine, error) {
	profile := voice.DefaultProfile()
	profile.CutoffParam = ParamCutoff
	profile.ResonanceParam = ParamResonance
	return NewWithProfile(profile, opts...)
}

// NewWithProfile builds an engine around a caller-supplied voice profile.
func NewWithProfile(profile voice.Profile, opts ...core.Option) (*Engine, error) {
	cfg := core.ApplyOptions(opts...)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	store, err := param.New(ParamDefs())
	if err != nil {
		return nil, err
	}

	queue, err := transport.NewQueue(cfg.EventQueueDepth)
	if err != nil {
		return nil, err
	}

	sequencer, err := seq.New(cfg)
	if err != nil {
		return nil, err
	}

	voices, err := voice.NewManager(cfg, profile)
	if err != nil {
		return nil, err
	}

	source := node.NewSource(cfg.BlockSize)

	masterFilter, err := node.NewSVF(cfg.SampleRate)
	if err != nil {
		return nil, err
	}
	masterFilter.BindCutoff(ParamMasterCutoff)

	masterGain := node.NewGain()
	masterGain.BindGain(ParamMasterLevel)

	g, err := graph.Build(cfg,
		[]graph.Spec{
			{ID: "voices", Node: source},
			{ID: "filter", Node: masterFilter},
			{ID: "master", Node: masterGain},
		},
		[]graph.Connection{
			{From: "voices", To: "filter"},
			{From: "filter", To: "master"},
		},
		"master",
	)
	if err != nil {
		return nil, fmt.Errorf("engine: master graph: %w", err)
	}

	e := &Engine{
		cfg:    cfg,
		store:  store,
		queue:  queue,
		seq:    sequencer,
		voices: voices,
		graph:  g,
		source: source,
	}

	// Scratch capacity covers the worst case of one block: a full queue
	// drain plus every track retriggering with full locks on every step
	// crossing at the maximum tempo.
	crossings := int(core.WholeTicks(core.TicksPerBlockQ32(
		seq.MaxTempoBPM, cfg.SampleRate, cfg.BlockSize))/core.TicksPerStep) + 2
	perStep := cfg.MaxTracks * (2 + seq.MaxStepLocks)
	e.evScratch = make([]event.Event, 0, cfg.EventQueueDepth+crossings*perStep)
	e.flushScratch = make([]event.Event, 0, cfg.MaxTracks)

	return e, nil
}

// Config returns the engine's resource envelope.
func (e *Engine) Config() core.Config {
	return e.cfg
}

// RenderBlock renders one block into dst. It is the render-context entry
// point: infallible, allocation-free, bounded by the block size. dst should
// hold Config.BlockSize samples; extra samples are left untouched.
func (e *Engine) RenderBlock(dst []float64) {
	e.evScratch = e.queue.Drain(e.evScratch[:0])
	for _, ev := range e.evScratch {
		e.apply(ev)
	}

	e.evScratch = e.seq.Advance(e.evScratch[:0])
	for _, ev := range e.evScratch {
		e.apply(ev)
	}

	mix := e.source.Buffer()
	core.Zero(mix)
	e.voices.RenderBlock(mix, e.store)

	out := e.graph.RenderBlock(e.store)
	core.CopyInto(dst, out)

	e.voices.TickRelease()
	e.blocks++
}

// apply delivers one event to its consumer. Runs on the render context.
func (e *Engine) apply(ev event.Event) {
	switch ev.Kind {
	case event.KindNoteOn:
		e.voices.NoteOn(ev.Note, ev.Velocity)
	case event.KindNoteOff:
		e.voices.NoteOff(ev.Note)
	case event.KindParamChange:
		// Queue events cross the context boundary, so the id is checked
		// here instead of letting Set enforce its contract.
		if ev.Param >= 0 && ev.Param < e.store.Len() {
			e.store.Set(ev.Param, ev.Value)
		}
	case event.KindStart:
		e.seq.Start()
	case event.KindStop:
		e.flushScratch = e.seq.Stop(e.flushScratch[:0])
		for _, off := range e.flushScratch {
			e.voices.NoteOff(off.Note)
		}
	case event.KindTempo:
		// Range was validated on the control side.
		_ = e.seq.SetTempo(ev.Value)
	case event.KindPatternSelect:
		// Range was validated on the control side.
		_ = e.seq.SetActivePattern(ev.Param)
	}
}

// NoteOn queues a live note-on for the next block boundary.
func (e *Engine) NoteOn(note, velocity uint8) {
	e.queue.Push(event.NoteOn(0, note, velocity))
}

// NoteOff queues a live note-off.
func (e *Engine) NoteOff(note uint8) {
	e.queue.Push(event.NoteOff(0, note))
}

// Start queues a transport start.
func (e *Engine) Start() {
	e.queue.Push(event.Start())
}

// Stop queues a transport stop. The sequencer flushes note-offs for every
// gated note before halting, so no voice is left stuck.
func (e *Engine) Stop() {
	e.queue.Push(event.Stop())
}

// SetTempo validates bpm and queues the change.
func (e *Engine) SetTempo(bpm float64) error {
	if bpm < seq.MinTempoBPM || bpm > seq.MaxTempoBPM || !core.IsFinite(bpm) {
		return fmt.Errorf("engine: tempo must be in [%d, %d] bpm: %f",
			seq.MinTempoBPM, seq.MaxTempoBPM, bpm)
	}
	e.queue.Push(event.Tempo(bpm))
	return nil
}

// SetParam clamps and publishes a parameter value. The store is lock-free,
// so this takes effect without queueing, visible by the next block
// boundary.
func (e *Engine) SetParam(id int, value float64) {
	e.store.Set(id, value)
}

// GetParam returns the current value of a parameter.
func (e *Engine) GetParam(id int) float64 {
	return e.store.Get(id)
}

// Pattern returns pattern i for editing. Pattern edits are control-context
// operations; during playback they land on step boundaries at worst one
// block late.
func (e *Engine) Pattern(i int) *seq.Pattern {
	return e.seq.Pattern(i)
}

// SetActivePattern validates i and queues the switch for the next block
// boundary. The step position carries over; use Pattern.Next chaining for
// switches aligned to pattern ends.
func (e *Engine) SetActivePattern(i int) error {
	if i < 0 || i >= e.cfg.MaxPatterns {
		return fmt.Errorf("engine: pattern %d out of range [0, %d)", i, e.cfg.MaxPatterns)
	}
	e.queue.Push(event.PatternSelect(i))
	return nil
}

// ExportPatterns serializes the pattern bank for external persistence.
func (e *Engine) ExportPatterns() ([]byte, error) {
	return e.seq.ExportPatterns()
}

// ImportPatterns replaces the pattern bank from serialized data.
func (e *Engine) ImportPatterns(data []byte) error {
	return e.seq.ImportPatterns(data)
}

// SnapshotParams serializes the current parameter values as a preset.
func (e *Engine) SnapshotParams() ([]byte, error) {
	return e.store.Snapshot()
}

// RestoreParams applies a serialized preset.
func (e *Engine) RestoreParams(data []byte) error {
	return e.store.Restore(data)
}

// Dropped returns how many control events the transport queue has
// discarded under overflow.
func (e *Engine) Dropped() uint64 {
	return e.queue.Dropped()
}

// BlocksRendered returns the number of blocks rendered since construction.
func (e *Engine) BlocksRendered() uint64 {
	return e.blocks
}

// ActiveVoices returns the number of currently sounding (non-free) voices.
func (e *Engine) ActiveVoices() int {
	return e.cfg.MaxVoices - e.voices.CountInState(voice.StateFree)
}
