package domain

// PageRef identifies a document that exists in the knowledge store.
type PageRef struct {
	ID    string
	URL   string
	Title string
}

// WriteOutcome is the result of a knowledge-store write: exactly one of
// Created or Duplicate is set.
type WriteOutcome struct {
	Created   *PageRef
	Duplicate *PageRef
}

// IsDuplicate reports whether the write was skipped for an existing page.
func (o WriteOutcome) IsDuplicate() bool {
	return o.Duplicate != nil
}
