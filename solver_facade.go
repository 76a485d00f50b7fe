package vase

import "github.com/sirupsen/logrus"

// SolverFacade wraps an underlying Solver and transparently strengthens
// every query with a VASE candidate constraint before delegating,
// implementing the full rewrite pipeline described in spec.md §4: load
// the map once, extract the query's location, look up its ValueBundle,
// trial candidates, and forward the (possibly rewritten) query (spec.md
// §4.6).
type SolverFacade struct {
	underlying Solver
	store      *ValueStore
	engine     *RewriteEngine
	options    Options
}

// NewSolverFacade returns a SolverFacade delegating to underlying. store
// and engine are typically fresh (NewValueStore, NewRewriteEngine), but
// a ValueStore may be shared across multiple facades that read the same
// map.
func NewSolverFacade(underlying Solver, store *ValueStore, options Options) *SolverFacade {
	return &SolverFacade{
		underlying: underlying,
		store:      store,
		engine:     NewRewriteEngine(logrus.StandardLogger(), options),
		options:    options,
	}
}

// rewrite performs the common prologue for all six operations: ensure
// the map is loaded, extract the location, look it up, and trial
// candidates against the underlying solver. If nothing applies, it
// returns query unchanged.
func (f *SolverFacade) rewrite(query Query) Query {
	if !f.store.EnsureLoadedOnce(f.options) {
		return query
	}

	location := ExtractLocation(query)
	bundle, ok := f.store.Lookup(location)
	if !ok {
		return query
	}

	result := f.engine.Rewrite(query, bundle, f.underlying)
	return result.Query
}

// ComputeValidity delegates to the underlying solver with the
// (possibly rewritten) query.
func (f *SolverFacade) ComputeValidity(query Query) (Validity, error) {
	return f.underlying.ComputeValidity(f.rewrite(query))
}

// ComputeTruth delegates to the underlying solver with the (possibly
// rewritten) query.
func (f *SolverFacade) ComputeTruth(query Query) (bool, error) {
	return f.underlying.ComputeTruth(f.rewrite(query))
}

// ComputeValue delegates to the underlying solver with the (possibly
// rewritten) query.
func (f *SolverFacade) ComputeValue(query Query) (Expr, error) {
	return f.underlying.ComputeValue(f.rewrite(query))
}

// ComputeInitialValues delegates to the underlying solver with the
// (possibly rewritten) query. objects passes through unchanged
// regardless of whether the query was rewritten (SPEC_FULL.md §3).
func (f *SolverFacade) ComputeInitialValues(query Query, objects []*Array) ([][]byte, bool, error) {
	return f.underlying.ComputeInitialValues(f.rewrite(query), objects)
}

// OperationStatusCode passes through to the underlying solver unchanged;
// VASE rewriting never changes the solver's own health.
func (f *SolverFacade) OperationStatusCode() SolverRunStatus {
	return f.underlying.OperationStatusCode()
}

// ConstraintLog passes through to the underlying solver unchanged.
func (f *SolverFacade) ConstraintLog(query Query) ([]byte, error) {
	return f.underlying.ConstraintLog(query)
}
