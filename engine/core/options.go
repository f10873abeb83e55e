package core

import "fmt"

// Config defines the fixed resource envelope of one engine instance.
// Every capacity is set once at construction and validated; nothing in the
// render path grows past these bounds at runtime.
type Config struct {
	SampleRate float64
	BlockSize  int

	// MaxVoices bounds the polyphonic voice pool.
	MaxVoices int

	// MaxNodes and MaxConnections bound the audio graph topology.
	MaxNodes       int
	MaxConnections int

	// MaxTracks, PatternSteps and MaxPatterns bound the sequencer storage.
	MaxTracks    int
	PatternSteps int
	MaxPatterns  int

	// EventQueueDepth bounds the control-to-render event queue.
	EventQueueDepth int
}

// Option mutates a Config.
type Option func(*Config)

// DefaultConfig returns a small envelope suitable for prototyping and for
// microcontroller-class targets.
func DefaultConfig() Config {
	return Config{
		SampleRate:      48000,
		BlockSize:       64,
		MaxVoices:       8,
		MaxNodes:        16,
		MaxConnections:  32,
		MaxTracks:       4,
		PatternSteps:    16,
		MaxPatterns:     8,
		EventQueueDepth: 128,
	}
}

// WithSampleRate sets the engine sample rate.
func WithSampleRate(sampleRate float64) Option {
	return func(cfg *Config) {
		if sampleRate > 0 {
			cfg.SampleRate = sampleRate
		}
	}
}

// WithBlockSize sets the render block size in samples.
func WithBlockSize(blockSize int) Option {
	return func(cfg *Config) {
		if blockSize > 0 {
			cfg.BlockSize = blockSize
		}
	}
}

// WithMaxVoices sets the polyphonic voice pool size.
func WithMaxVoices(voices int) Option {
	return func(cfg *Config) {
		if voices > 0 {
			cfg.MaxVoices = voices
		}
	}
}

// WithGraphLimits sets the audio graph node and connection maxima.
func WithGraphLimits(nodes, connections int) Option {
	return func(cfg *Config) {
		if nodes > 0 {
			cfg.MaxNodes = nodes
		}
		if connections > 0 {
			cfg.MaxConnections = connections
		}
	}
}

// WithPatternLimits sets the sequencer track, step and pattern maxima.
func WithPatternLimits(tracks, steps, patterns int) Option {
	return func(cfg *Config) {
		if tracks > 0 {
			cfg.MaxTracks = tracks
		}
		if steps > 0 {
			cfg.PatternSteps = steps
		}
		if patterns > 0 {
			cfg.MaxPatterns = patterns
		}
	}
}

// WithEventQueueDepth sets the control-to-render queue capacity.
func WithEventQueueDepth(depth int) Option {
	return func(cfg *Config) {
		if depth > 0 {
			cfg.EventQueueDepth = depth
		}
	}
}

// ApplyOptions applies zero or more options to the default config.
func ApplyOptions(opts ...Option) Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// Validate reports the first invalid field, if any.
func (cfg Config) Validate() error {
	switch {
	case cfg.SampleRate <= 0:
		return fmt.Errorf("sample rate must be > 0: %f", cfg.SampleRate)
	case cfg.BlockSize <= 0:
		return fmt.Errorf("block size must be > 0: %d", cfg.BlockSize)
	case cfg.MaxVoices <= 0:
		return fmt.Errorf("voice pool must be > 0: %d", cfg.MaxVoices)
	case cfg.MaxNodes <= 0 || cfg.MaxConnections <= 0:
		return fmt.Errorf("graph limits must be > 0: %d nodes, %d connections",
			cfg.MaxNodes, cfg.MaxConnections)
	case cfg.MaxTracks <= 0 || cfg.PatternSteps <= 0 || cfg.MaxPatterns <= 0:
		return fmt.Errorf("pattern limits must be > 0: %d tracks, %d steps, %d patterns",
			cfg.MaxTracks, cfg.PatternSteps, cfg.MaxPatterns)
	case cfg.EventQueueDepth <= 0:
		return fmt.Errorf("event queue depth must be > 0: %d", cfg.EventQueueDepth)
	}
	return nil
}
