package constants

// ImportStatus is the outcome recorded for one file in a batch import.
type ImportStatus string

const (
	ImportStatusSkipped  ImportStatus = "SKIPPED"  // duplicate content, not parsed again
	ImportStatusParsed   ImportStatus = "PARSED"   // classes extracted, not saved
	ImportStatusSaved    ImportStatus = "SAVED"    // classes written to the sink
	ImportStatusDegraded ImportStatus = "DEGRADED" // heuristic parser produced the result
	ImportStatusFailed   ImportStatus = "FAILED"
)

// Extraction strategies reported in warnings.
const (
	StrategyAI        = "ai"
	StrategyHeuristic = "heuristic"
)
