package config

// EngineConfig holds the engine settings decoded from a Store: the
// sample interval, origin, condition poll divisor, worker count, RNG
// seed, and per-worker inbox size (SPEC_FULL.md §4.7). Only Dt and Seed
// are applied, by parallel.GlobalClock.Reload; T0, K, Workers and
// QueueSize are decoded but not read by the clock or parallel packages,
// which use their own constants (clock.K, parallel's inboxCapacity).
type EngineConfig struct {
	Dt        float64 `yaml:"dt"`
	T0        float64 `yaml:"t0"`
	K         int     `yaml:"k"`
	Workers   int     `yaml:"workers"`
	Seed      uint64  `yaml:"seed"`
	QueueSize int     `yaml:"queue_size"`
}

// DefaultEngineConfig returns the defaults used when no store overrides
// them: Δt=0 (no periodic tick until periodic()/conditions ask for
// one), K=1000 per spec.md §9's open question, a single worker (master
// only, no fork), and a fixed seed for reproducibility.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		Dt:        0,
		T0:        0,
		K:         1000,
		Workers:   1,
		Seed:      1,
		QueueSize: 64,
	}
}

// FromStore loads an EngineConfig by reading the individual keys out of
// store, falling back to defaults for anything absent.
func FromStore(s Store) (EngineConfig, error) {
	cfg := DefaultEngineConfig()
	if s == nil {
		return cfg, nil
	}
	if err := s.Load(); err != nil {
		return cfg, err
	}
	all, err := s.GetAll()
	if err != nil {
		return cfg, err
	}
	if v, ok := all["dt"]; ok {
		cfg.Dt = toFloat(v, cfg.Dt)
	}
	if v, ok := all["t0"]; ok {
		cfg.T0 = toFloat(v, cfg.T0)
	}
	if v, ok := all["k"]; ok {
		cfg.K = int(toFloat(v, float64(cfg.K)))
	}
	if v, ok := all["workers"]; ok {
		cfg.Workers = int(toFloat(v, float64(cfg.Workers)))
	}
	if v, ok := all["seed"]; ok {
		cfg.Seed = uint64(toFloat(v, float64(cfg.Seed)))
	}
	if v, ok := all["queue_size"]; ok {
		cfg.QueueSize = int(toFloat(v, float64(cfg.QueueSize)))
	}
	return cfg, nil
}

func toFloat(v interface{}, fallback float64) float64 {
	switch x := v.(type) {
	case float64:
		return x
	case float32:
		return float64(x)
	case int:
		return float64(x)
	case int64:
		return float64(x)
	case uint64:
		return float64(x)
	default:
		return fallback
	}
}
