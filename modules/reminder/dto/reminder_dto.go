package dto

// CheckSummary aggregates one reminder check invocation for the caller.
// Per-block failures are counted, never raised.
type CheckSummary struct {
	Checked int `json:"checked"`
	Due     int `json:"due"`
	Sent    int `json:"sent"`
	Failed  int `json:"failed"`
	Skipped int `json:"skipped"`
}
