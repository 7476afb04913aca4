package domain

import "time"

// RunStats holds statistics about one ingestion run.
type RunStats struct {
	Sources   int
	Fetched   int
	Rejected  int
	Attempted int
	Processed int
	Errors    int
	Duration  time.Duration
}
