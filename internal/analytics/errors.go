// Package analytics holds the pure grade analytics engine: subject tree
// averages, cross-workspace aggregation, timelines and the year in review.
// Nothing in this package performs I/O; callers hand it materialised rows.
package analytics

import "errors"

// Data-integrity faults. Callers must surface these instead of dropping rows,
// since skipping a row would produce a wrong average rather than a missing one.
var (
	ErrUnknownSubject   = errors.New("unknown subject")
	ErrUnknownParent    = errors.New("subject references an unknown parent")
	ErrDuplicateSubject = errors.New("duplicate subject id")
	ErrSubjectCycle     = errors.New("subject parent graph contains a cycle")
	ErrGradeOnDisplay   = errors.New("grade attached to a display subject")
	ErrUnsortedSeries   = errors.New("timeline series is not sorted ascending")
)
