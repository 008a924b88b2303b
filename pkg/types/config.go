package types

// NormalizeConfig holds settings for the document normalization stage.
type NormalizeConfig struct {
	// MinSizeBytes is the minimum raw document size; smaller documents
	// are skipped with a recorded reason (default 16).
	MinSizeBytes int64 `json:"min_size_bytes" yaml:"min_size_bytes"`
}

// ExtractionConfig holds settings for the pattern extraction stage.
type ExtractionConfig struct {
	// CataloguePath optionally points at a YAML rule catalogue. Empty
	// selects the built-in catalogue.
	CataloguePath string `json:"catalogue_path,omitempty" yaml:"catalogue_path,omitempty"`

	// Workers bounds the parallel per-document extraction workers
	// (default 4).
	Workers int `json:"workers" yaml:"workers"`
}

// EvolutionConfig holds settings for the survival engine.
type EvolutionConfig struct {
	// Generations is the number of evolutionary passes per run (default 1).
	Generations int `json:"generations" yaml:"generations"`

	// OptimalMin and OptimalMax bound the optimal connection band
	// (defaults 2 and 4).
	OptimalMin int `json:"optimal_min" yaml:"optimal_min"`
	OptimalMax int `json:"optimal_max" yaml:"optimal_max"`

	// IsolationPenalty, OptimalBonus, and OvercrowdPenalty are the
	// fitness multipliers for the three connection regimes
	// (defaults 0.6, 1.3, 0.75).
	IsolationPenalty float64 `json:"isolation_penalty" yaml:"isolation_penalty"`
	OptimalBonus     float64 `json:"optimal_bonus" yaml:"optimal_bonus"`
	OvercrowdPenalty float64 `json:"overcrowd_penalty" yaml:"overcrowd_penalty"`

	// SurvivalThreshold is the minimum fitness for a triple to remain in
	// the corpus after a pass (default 0.3).
	SurvivalThreshold float64 `json:"survival_threshold" yaml:"survival_threshold"`
}

// StoreConfig holds settings for the run registry.
type StoreConfig struct {
	// StoreDir is the base directory for the registry database
	// (contains index/).
	StoreDir string `json:"store_dir" yaml:"store_dir"`
}

// EngineConfig groups all stage configurations.
type EngineConfig struct {
	Normalize  NormalizeConfig  `json:"normalize" yaml:"normalize"`
	Extraction ExtractionConfig `json:"extraction" yaml:"extraction"`
	Evolution  EvolutionConfig  `json:"evolution" yaml:"evolution"`
	Store      StoreConfig      `json:"store" yaml:"store"`
}
