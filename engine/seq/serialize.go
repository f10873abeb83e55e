package seq

import (
	"encoding/json"
	"fmt"
)

// bank is the JSON shape of a serialized pattern set.
type bank struct {
	Patterns []*Pattern `json:"patterns"`
}

// ExportPatterns serializes every pattern as JSON. The engine does not
// define a storage medium; callers hand the bytes to whatever persistence
// the platform offers.
func (s *Sequencer) ExportPatterns() ([]byte, error) {
	return json.Marshal(bank{Patterns: s.patterns})
}

// ImportPatterns replaces the pattern set from ExportPatterns output.
// Imported data is conformed to the configured limits: excess patterns,
// tracks, steps and locks are dropped, missing ones stay empty, and lengths
// are clamped.
func (s *Sequencer) ImportPatterns(data []byte) error {
	var b bank
	if err := json.Unmarshal(data, &b); err != nil {
		return fmt.Errorf("seq: invalid pattern json: %w", err)
	}

	for i := range s.patterns {
		fresh := NewPattern(s.cfg)
		if i < len(b.Patterns) && b.Patterns[i] != nil {
			conformPattern(fresh, b.Patterns[i], s.cfg.PatternSteps)
		}
		s.patterns[i] = fresh
	}
	return nil
}

func conformPattern(dst, src *Pattern, maxSteps int) {
	if src.Length >= 1 && src.Length <= maxSteps {
		dst.Length = src.Length
	}
	if src.Next >= -1 {
		dst.Next = src.Next
	}

	for t := 0; t < len(dst.Tracks) && t < len(src.Tracks); t++ {
		for i := 0; i < len(dst.Tracks[t].Steps) && i < len(src.Tracks[t].Steps); i++ {
			step := src.Tracks[t].Steps[i]
			if len(step.Locks) > MaxStepLocks {
				step.Locks = step.Locks[:MaxStepLocks]
			}
			dst.Tracks[t].Steps[i] = step
		}
	}
}
