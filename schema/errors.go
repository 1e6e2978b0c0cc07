package schema

import (
	"errors"
	"sort"
)

// Record-level failures. They are wrapped with context, stored on the record
// and counted; they never abort a run.
var (
	ErrInvalidRotationMatrix = errors.New("invalid rotation matrix")
	ErrUnmatchedImage        = errors.New("unmatched image")
	ErrMissingComparisonData = errors.New("missing comparison data")
	ErrDegenerateVote        = errors.New("degenerate vote")
	ErrMissingRotation       = errors.New("missing rotation")
	ErrMalformedPose         = errors.New("malformed pose")
)

// ErrorKind is the short name of a record-level failure.
type ErrorKind string

// All error kinds.
const (
	KindInvalidRotationMatrix ErrorKind = "invalid_rotation_matrix"
	KindUnmatchedImage        ErrorKind = "unmatched_image"
	KindMissingComparisonData ErrorKind = "missing_comparison_data"
	KindDegenerateVote        ErrorKind = "degenerate_vote"
	KindMissingRotation       ErrorKind = "missing_rotation"
	KindMalformedPose         ErrorKind = "malformed_pose"
	KindOther                 ErrorKind = "other"
)

var errorKinds = []struct {
	err  error
	kind ErrorKind
}{
	{ErrInvalidRotationMatrix, KindInvalidRotationMatrix},
	{ErrUnmatchedImage, KindUnmatchedImage},
	{ErrMissingComparisonData, KindMissingComparisonData},
	{ErrDegenerateVote, KindDegenerateVote},
	{ErrMissingRotation, KindMissingRotation},
	{ErrMalformedPose, KindMalformedPose},
}

// KindOf classifies an error by the sentinel it wraps.
func KindOf(err error) ErrorKind {
	for _, ek := range errorKinds {
		if errors.Is(err, ek.err) {
			return ek.kind
		}
	}
	return KindOther
}

// ErrorSummary counts record-level failures by kind.
type ErrorSummary struct {
	Records int               `json:"records"`
	Failed  int               `json:"failed"`
	Counts  map[ErrorKind]int `json:"counts"`
}

// NewErrorSummary creates an empty summary.
func NewErrorSummary() *ErrorSummary {
	return &ErrorSummary{Counts: make(map[ErrorKind]int)}
}

// Add records the outcome of one record; a nil error counts as a success.
func (s *ErrorSummary) Add(err error) {
	s.Records++
	if err == nil {
		return
	}
	s.Failed++
	s.Counts[KindOf(err)]++
}

// AddDegenerateVotes counts consensus votes that fell back to a tie.
func (s *ErrorSummary) AddDegenerateVotes(n int) {
	if n > 0 {
		s.Counts[KindDegenerateVote] += n
	}
}

// Kinds returns the recorded kinds in a stable order.
func (s *ErrorSummary) Kinds() []ErrorKind {
	kinds := make([]ErrorKind, 0, len(s.Counts))
	for k := range s.Counts {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}
