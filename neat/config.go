package neat

import (
	"fmt"
	"math/rand"

	"gopkg.in/ini.v1"
)

// Config stores the configuration parameters for the NEAT engine.
type Config struct {
	Neat         NeatConfig
	Genome       GenomeConfig
	Reproduction ReproductionConfig
	Speciation   SpeciationConfig
}

// NeatConfig holds run-level parameters.
type NeatConfig struct {
	MaxGenerations   int     `ini:"max_generations"` // 0 disables the generation cap
	FitnessTarget    float64 `ini:"fitness_target"`  // best fitness at which evolution stops
	UseFitnessTarget bool    `ini:"use_fitness_target"`
	SaveDirectory    string  `ini:"save_directory"`
	ArchivePath      string  `ini:"archive_path"` // optional sqlite run archive
	Seed             int64   `ini:"seed"`         // 0 means seed from the clock

	// SnapshotInterval keeps a frozen copy of the run every N generations
	// under <name>_gen_<N>.neat, usable as a fixed-strength opponent.
	// 0 disables snapshots.
	SnapshotInterval int `ini:"snapshot_interval"`
}

// GenomeConfig holds parameters governing genome structure and mutation.
type GenomeConfig struct {
	Activation string `ini:"activation"`

	// InitialConnection selects the first generation's wiring: "full"
	// connects every input to every output, "unconnected" starts bare.
	InitialConnection string `ini:"initial_connection"`

	WeightMutateRate  float64 `ini:"weight_mutate_rate"`
	WeightReplaceRate float64 `ini:"weight_replace_rate"`
	WeightMutatePower float64 `ini:"weight_mutate_power"`
	WeightInitRange   float64 `ini:"weight_init_range"`
	WeightMinValue    float64 `ini:"weight_min_value"`
	WeightMaxValue    float64 `ini:"weight_max_value"`

	ConnAddProb       float64 `ini:"conn_add_prob"`
	NodeAddProb       float64 `ini:"node_add_prob"`
	EnabledMutateRate float64 `ini:"enabled_mutate_rate"`

	// CrossoverDisableProb is the chance a gene disabled in either parent
	// stays disabled in the child.
	CrossoverDisableProb float64 `ini:"crossover_disable_prob"`

	CompatibilityDisjointCoefficient float64 `ini:"compatibility_disjoint_coefficient"`
	CompatibilityWeightCoefficient   float64 `ini:"compatibility_weight_coefficient"`

	// MaxAddConnAttempts bounds the search for a valid new connection pair
	// before the mutation gives up for this cycle.
	MaxAddConnAttempts int `ini:"max_add_conn_attempts"`
}

// ReproductionConfig holds parameters related to reproduction.
type ReproductionConfig struct {
	EliteFraction     float64 `ini:"elite_fraction"`
	SurvivalThreshold float64 `ini:"survival_threshold"`
}

// SpeciationConfig holds parameters related to species formation.
type SpeciationConfig struct {
	CompatibilityThreshold float64 `ini:"compatibility_threshold"`
	MaxStagnation          int     `ini:"max_stagnation"`
}

// DefaultConfig returns a configuration usable without an INI file, tuned for
// small board-game populations.
func DefaultConfig() *Config {
	return &Config{
		Neat: NeatConfig{
			MaxGenerations: 100,
			SaveDirectory:  ".",
		},
		Genome: GenomeConfig{
			Activation:                       "sigmoid",
			InitialConnection:                "full",
			WeightMutateRate:                 0.8,
			WeightReplaceRate:                0.1,
			WeightMutatePower:                0.5,
			WeightInitRange:                  2.0,
			WeightMinValue:                   -4.0,
			WeightMaxValue:                   4.0,
			ConnAddProb:                      0.4,
			NodeAddProb:                      0.1,
			EnabledMutateRate:                0.01,
			CrossoverDisableProb:             0.75,
			CompatibilityDisjointCoefficient: 1.0,
			CompatibilityWeightCoefficient:   0.5,
			MaxAddConnAttempts:               20,
		},
		Reproduction: ReproductionConfig{
			EliteFraction:     0.1,
			SurvivalThreshold: 0.5,
		},
		Speciation: SpeciationConfig{
			CompatibilityThreshold: 3.0,
			MaxStagnation:          15,
		},
	}
}

// LoadConfig loads configuration parameters from an INI file, applying the
// defaults for any key the file omits.
func LoadConfig(filePath string) (*Config, error) {
	cfg, err := ini.LoadSources(ini.LoadOptions{
		IgnoreInlineComment:         true,
		UnescapeValueCommentSymbols: true,
	}, filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config file '%s': %w", filePath, err)
	}

	config := DefaultConfig()
	if err := cfg.Section("NEAT").MapTo(&config.Neat); err != nil {
		return nil, fmt.Errorf("failed to map [NEAT] section: %w", err)
	}
	if err := cfg.Section("Genome").MapTo(&config.Genome); err != nil {
		return nil, fmt.Errorf("failed to map [Genome] section: %w", err)
	}
	if err := cfg.Section("Reproduction").MapTo(&config.Reproduction); err != nil {
		return nil, fmt.Errorf("failed to map [Reproduction] section: %w", err)
	}
	if err := cfg.Section("Speciation").MapTo(&config.Speciation); err != nil {
		return nil, fmt.Errorf("failed to map [Speciation] section: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks the configuration for values the engine cannot work with.
func (c *Config) Validate() error {
	g := &c.Genome
	if _, err := GetActivation(g.Activation); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	for name, v := range map[string]float64{
		"weight_mutate_rate":     g.WeightMutateRate,
		"weight_replace_rate":    g.WeightReplaceRate,
		"conn_add_prob":          g.ConnAddProb,
		"node_add_prob":          g.NodeAddProb,
		"enabled_mutate_rate":    g.EnabledMutateRate,
		"crossover_disable_prob": g.CrossoverDisableProb,
		"elite_fraction":         c.Reproduction.EliteFraction,
		"survival_threshold":     c.Reproduction.SurvivalThreshold,
	} {
		if v < 0 || v > 1 {
			return fmt.Errorf("config error: %s must be between 0 and 1", name)
		}
	}
	if g.WeightMaxValue < g.WeightMinValue {
		return fmt.Errorf("config error: weight_max_value cannot be less than weight_min_value")
	}
	if g.InitialConnection != "full" && g.InitialConnection != "unconnected" {
		return fmt.Errorf("config error: invalid initial_connection type '%s'", g.InitialConnection)
	}
	if g.MaxAddConnAttempts <= 0 {
		return fmt.Errorf("config error: max_add_conn_attempts must be positive")
	}
	if g.CompatibilityDisjointCoefficient < 0 || g.CompatibilityWeightCoefficient < 0 {
		return fmt.Errorf("config error: compatibility coefficients cannot be negative")
	}
	if c.Speciation.CompatibilityThreshold < 0 {
		return fmt.Errorf("config error: compatibility_threshold cannot be negative")
	}
	if c.Speciation.MaxStagnation <= 0 {
		return fmt.Errorf("config error: max_stagnation must be positive")
	}
	if c.Neat.MaxGenerations < 0 {
		return fmt.Errorf("config error: max_generations cannot be negative")
	}
	if c.Neat.SnapshotInterval < 0 {
		return fmt.Errorf("config error: snapshot_interval cannot be negative")
	}
	return nil
}

// randomWeight samples a fresh connection weight from the configured init
// range.
func (gc *GenomeConfig) randomWeight(rng *rand.Rand) float64 {
	w := (rng.Float64()*2 - 1) * gc.WeightInitRange
	return clamp(w, gc.WeightMinValue, gc.WeightMaxValue)
}
