package engine

import (
	"errors"
	"fmt"
)

// ErrEmptyQuery is returned when the query text is blank.
var ErrEmptyQuery = errors.New("query text is empty")

// RetrievalError wraps a failure in the retrieval half of the pipeline
// (embedding or vector search). Retrieval failures are fatal for a query;
// there is nothing to answer from.
type RetrievalError struct {
	Stage string
	Err   error
}

func (e *RetrievalError) Error() string {
	return fmt.Sprintf("retrieval failed at %s: %v", e.Stage, e.Err)
}

func (e *RetrievalError) Unwrap() error {
	return e.Err
}

// SynthesisError wraps a failure in answer synthesis. Synthesis failures are
// not fatal: the engine degrades to returning passages and citations without
// a generated answer.
type SynthesisError struct {
	Err error
}

func (e *SynthesisError) Error() string {
	return fmt.Sprintf("answer synthesis failed: %v", e.Err)
}

func (e *SynthesisError) Unwrap() error {
	return e.Err
}
