// Package event defines the flat event record exchanged between the control
// and render contexts. Events are plain values; producing or consuming one
// never allocates.
package event

// Kind tags the event variants.
type Kind uint8

const (
	// KindNone is the zero value; queues return it when empty.
	KindNone Kind = iota
	KindNoteOn
	KindNoteOff
	KindParamChange
	KindStart
	KindStop
	KindTempo
	KindPatternSelect
)

// String returns the kind name for logs and test failures.
func (k Kind) String() string {
	switch k {
	case KindNoteOn:
		return "note-on"
	case KindNoteOff:
		return "note-off"
	case KindParamChange:
		return "param-change"
	case KindStart:
		return "start"
	case KindStop:
		return "stop"
	case KindTempo:
		return "tempo"
	case KindPatternSelect:
		return "pattern-select"
	default:
		return "none"
	}
}

// Event is a single control message. The meaning of the payload fields
// depends on Kind:
//
//   - KindNoteOn:      Note, Velocity, Track
//   - KindNoteOff:     Note, Track
//   - KindParamChange:   Param, Value
//   - KindTempo:         Value (bpm)
//   - KindPatternSelect: Param (pattern index)
//   - KindStart/Stop:    no payload
type Event struct {
	Kind     Kind
	Track    uint8
	Note     uint8
	Velocity uint8
	Param    int
	Value    float64
}

// NoteOn builds a note-on event.
func NoteOn(track, note, velocity uint8) Event {
	return Event{Kind: KindNoteOn, Track: track, Note: note, Velocity: velocity}
}

// NoteOff builds a note-off event.
func NoteOff(track, note uint8) Event {
	return Event{Kind: KindNoteOff, Track: track, Note: note}
}

// ParamChange builds a parameter change event.
func ParamChange(param int, value float64) Event {
	return Event{Kind: KindParamChange, Param: param, Value: value}
}

// Start builds a transport start event.
func Start() Event {
	return Event{Kind: KindStart}
}

// Stop builds a transport stop event.
func Stop() Event {
	return Event{Kind: KindStop}
}

// Tempo builds a tempo change event.
func Tempo(bpm float64) Event {
	return Event{Kind: KindTempo, Value: bpm}
}

// PatternSelect builds a pattern switch event; the pattern index travels in
// Param.
func PatternSelect(index int) Event {
	return Event{Kind: KindPatternSelect, Param: index}
}
