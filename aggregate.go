package refine

// Aggregator accumulates validation failures across one field scan. It is
// additive: the same field appears once per failing validator, in the order
// failures were recorded.
type Aggregator struct {
	failures []Failure
}

// Record appends a failure.
func (a *Aggregator) Record(field string, tag TagKind, message string) {
	a.failures = append(a.failures, Failure{Field: field, Tag: tag, Message: message})
}

// HasFailures reports whether anything was recorded.
func (a *Aggregator) HasFailures() bool {
	return len(a.failures) > 0
}

// Len returns the number of recorded failures.
func (a *Aggregator) Len() int {
	return len(a.failures)
}

// Drain returns the recorded failures in order and resets the aggregator.
func (a *Aggregator) Drain() []Failure {
	out := a.failures
	a.failures = nil
	return out
}

// Err drains the aggregator into a ValidationError, or returns nil when
// nothing was recorded.
func (a *Aggregator) Err() error {
	if !a.HasFailures() {
		return nil
	}
	return &ValidationError{Failures: a.Drain()}
}
