package models

import "time"

// FetchStatus is the outcome of fetching a single record.
type FetchStatus string

const (
	// FetchStatusFetched means the retrieval command succeeded
	FetchStatusFetched FetchStatus = "fetched"
	// FetchStatusSkipped means a local file already existed and overwrite was off
	FetchStatusSkipped FetchStatus = "skipped"
	// FetchStatusFailed means the retrieval command failed
	FetchStatusFailed FetchStatus = "failed"
	// FetchStatusPlanned means the record would be fetched (dry run)
	FetchStatusPlanned FetchStatus = "planned"
)

// FetchOutcome records what happened to one record during a fetch run.
type FetchOutcome struct {
	Record      FileRecord
	Destination string
	Status      FetchStatus
	Error       error
	Duration    time.Duration
}

// ErrorMessage returns the outcome's error text, or "" when it succeeded.
func (o FetchOutcome) ErrorMessage() string {
	if o.Error == nil {
		return ""
	}
	return o.Error.Error()
}

// FetchSummary aggregates the outcomes of one fetch run.
type FetchSummary struct {
	RunID    string
	Fetched  int
	Skipped  int
	Failed   int
	Planned  int
	Duration time.Duration
	Outcomes []FetchOutcome
}

// Add records an outcome and updates the counters.
func (s *FetchSummary) Add(outcome FetchOutcome) {
	s.Outcomes = append(s.Outcomes, outcome)
	switch outcome.Status {
	case FetchStatusFetched:
		s.Fetched++
	case FetchStatusSkipped:
		s.Skipped++
	case FetchStatusFailed:
		s.Failed++
	case FetchStatusPlanned:
		s.Planned++
	}
}

// FailedRecords returns the records whose retrieval failed, in run order.
func (s *FetchSummary) FailedRecords() []FileRecord {
	var failed []FileRecord
	for _, o := range s.Outcomes {
		if o.Status == FetchStatusFailed {
			failed = append(failed, o.Record)
		}
	}
	return failed
}
