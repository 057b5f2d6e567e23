package model

// VersionedRecord captures schema and codec evolution for journal data.
type VersionedRecord struct {
	SchemaVersion int `json:"schema_version"`
	CodecVersion  int `json:"codec_version"`
}

// RunRecord describes one interactive or headless breeding session.
type RunRecord struct {
	VersionedRecord
	ID             string `json:"id"`
	CreatedAtUTC   string `json:"created_at_utc"`
	Mode           string `json:"mode"`
	PopulationSize int    `json:"population_size"`
	KernelSize     int    `json:"kernel_size"`
	Layers         int    `json:"layers"`
	Selection      string `json:"selection"`
	Seed           int64  `json:"seed"`
}

// ComparisonRecord is one judged pair.
type ComparisonRecord struct {
	VersionedRecord
	Generation  int    `json:"generation"`
	Step        int    `json:"step"`
	Left        int    `json:"left"`
	Right       int    `json:"right"`
	LeftRuleID  string `json:"left_rule_id"`
	RightRuleID string `json:"right_rule_id"`
	Outcome     string `json:"outcome"`
}

// GenerationRecord summarises a completed ranking pass.
type GenerationRecord struct {
	VersionedRecord
	Generation  int      `json:"generation"`
	Comparisons int      `json:"comparisons"`
	RankedIDs   []string `json:"ranked_ids"`
	EliteID     string   `json:"elite_id"`
}

// LineageRecord tells where a rule of a new generation came from.
type LineageRecord struct {
	VersionedRecord
	RuleID     string   `json:"rule_id"`
	ParentIDs  []string `json:"parent_ids,omitempty"`
	Generation int      `json:"generation"`
	Operation  string   `json:"operation"`
}

const (
	OperationInitial   = "initial"
	OperationElite     = "elite"
	OperationCrossover = "crossover"
	OperationRandom    = "random"
)
