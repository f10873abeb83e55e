package param

import (
	"encoding/json"
	"fmt"
)

// preset is the JSON shape of a parameter snapshot, keyed by parameter name
// so presets survive id reordering between builds.
type preset struct {
	Params map[string]float64 `json:"params"`
}

// Snapshot serializes the current parameter values as a JSON preset.
func (s *Store) Snapshot() ([]byte, error) {
	p := preset{Params: make(map[string]float64, len(s.defs))}
	for i, d := range s.defs {
		p.Params[d.Name] = s.Get(i)
	}
	return json.Marshal(p)
}

// Restore applies a JSON preset produced by Snapshot. Values are clamped to
// the declared ranges; names that no longer exist are ignored and parameters
// missing from the preset keep their current value.
func (s *Store) Restore(data []byte) error {
	var p preset
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("param: invalid preset json: %w", err)
	}

	for i, d := range s.defs {
		if v, ok := p.Params[d.Name]; ok {
			s.Set(i, v)
		}
	}
	return nil
}
