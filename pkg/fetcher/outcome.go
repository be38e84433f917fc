package fetcher

import "github.com/samber/lo"

// Status classifies the result of one index
type Status string

const (
	// StatusSaved means the image was written to disk
	StatusSaved Status = "saved"
	// StatusAPIFailure means the API answered with a non-200 status
	StatusAPIFailure Status = "api_failure"
	// StatusTransportFailure covers network errors, timeouts, cancellation
	// and undecodable responses
	StatusTransportFailure Status = "transport_failure"
	// StatusStorageFailure means the image could not be written
	StatusStorageFailure Status = "storage_failure"
)

// Outcome is the result for a single 1-based index
type Outcome struct {
	Index   int
	Status  Status
	Path    string
	Bytes   int64
	PhotoID string
	Err     error
}

// Fatal reports whether this outcome stops the run
func (o Outcome) Fatal() bool {
	return o.Status == StatusTransportFailure || o.Status == StatusStorageFailure
}

// Report aggregates the outcomes of a run
type Report struct {
	Requested int
	Outcomes  []Outcome
}

// Saved returns the number of images written
func (r *Report) Saved() int {
	return lo.CountBy(r.Outcomes, func(o Outcome) bool { return o.Status == StatusSaved })
}

// Failed returns the number of indices that did not produce a file
func (r *Report) Failed() int {
	return len(r.Outcomes) - r.Saved()
}

// Failures returns the outcomes that did not produce a file
func (r *Report) Failures() []Outcome {
	return lo.Filter(r.Outcomes, func(o Outcome, _ int) bool { return o.Status != StatusSaved })
}

// TotalBytes returns the number of bytes written
func (r *Report) TotalBytes() int64 {
	return lo.SumBy(r.Outcomes, func(o Outcome) int64 { return o.Bytes })
}

// Complete reports whether every requested image was saved
func (r *Report) Complete() bool {
	return r.Saved() == r.Requested
}
