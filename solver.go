package vase

// Validity is the tri-valued result of a validity check: is Query.Goal
// implied by Query.Constraints, refuted by them, or neither.
type Validity int

const (
	// ValidityFalse means the constraints refute the goal.
	ValidityFalse Validity = iota
	// ValidityTrue means the constraints imply the goal.
	ValidityTrue
	// ValidityUnknown means the underlying solver could not decide either
	// way (a model exists for both the goal and its negation).
	ValidityUnknown
)

// String returns the string representation of v.
func (v Validity) String() string {
	switch v {
	case ValidityFalse:
		return "False"
	case ValidityTrue:
		return "True"
	case ValidityUnknown:
		return "Unknown"
	default:
		return "Invalid"
	}
}

// SolverRunStatus reports the outcome of the most recently completed
// solver operation, mirroring the "getOperationStatusCode" pass-through
// named in spec.md §4.6.
type SolverRunStatus int

const (
	SolverRunStatusSuccess SolverRunStatus = iota
	SolverRunStatusTimeout
	SolverRunStatusCanceled
	SolverRunStatusResourceLimit
	SolverRunStatusUnknown
	SolverRunStatusFailure
)

// String returns the string representation of s.
func (s SolverRunStatus) String() string {
	switch s {
	case SolverRunStatusSuccess:
		return "Success"
	case SolverRunStatusTimeout:
		return "Timeout"
	case SolverRunStatusCanceled:
		return "Canceled"
	case SolverRunStatusResourceLimit:
		return "ResourceLimit"
	case SolverRunStatusUnknown:
		return "Unknown"
	default:
		return "Failure"
	}
}

// Solver is the capability set every underlying constraint solver, and the
// VASE wrapper itself, must implement. It is the six-operation contract
// named in spec.md §4.6/§9: the wrapper is polymorphic over this interface
// and exclusively owns whichever concrete implementation it wraps, so a
// Solver built around another Solver is itself a valid Solver.
type Solver interface {
	// ComputeValidity reports whether query.Constraints imply, refute, or
	// leave undecided query.Goal. Returns a non-nil error only when the
	// underlying solver itself failed (timeout, cancellation, crash); the
	// error is one of the Err* sentinels in vase.go where applicable.
	ComputeValidity(query Query) (Validity, error)

	// ComputeTruth reports whether query.Goal must be true under
	// query.Constraints. It is equivalent to (ComputeValidity(query) ==
	// ValidityTrue) but implementations may compute it more cheaply with a
	// single satisfiability check.
	ComputeTruth(query Query) (bool, error)

	// ComputeValue returns a concrete expression equal to query.Goal under
	// some model satisfying query.Constraints.
	ComputeValue(query Query) (Expr, error)

	// ComputeInitialValues returns, for each array in objects, a byte
	// slice consistent with a single model of query.Constraints.
	// query.Goal is not consulted. hasSolution is false when the
	// constraint set itself is unsatisfiable; err is non-nil only on
	// solver failure.
	ComputeInitialValues(query Query, objects []*Array) (values [][]byte, hasSolution bool, err error)

	// OperationStatusCode reports the outcome of the most recently
	// completed operation on this Solver.
	OperationStatusCode() SolverRunStatus

	// ConstraintLog renders query for offline inspection (e.g. as SMT-LIB).
	ConstraintLog(query Query) ([]byte, error)
}
