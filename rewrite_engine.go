package vase

import "github.com/sirupsen/logrus"

// RewriteResult is the outcome of a single rewrite attempt (spec.md §4.5).
type RewriteResult struct {
	Query   Query
	Changed bool
}

// RewriteEngine trials candidates against an underlying solver and
// accepts the first one the solver does not prove infeasible (spec.md
// §4.5, GLOSSARY "accept-first"). It holds no state of its own; every
// call is self-contained given a query, its location's ValueBundle, and
// the solver to trial against.
type RewriteEngine struct {
	log     logrus.FieldLogger
	options Options
}

// NewRewriteEngine returns a RewriteEngine using options for the family
// caps (MaxArrays, MaxBytesPerArray, MaxValuesPerSite, TryPairSum) and
// for the Verbose diagnostic switch. A nil logger falls back to logrus's
// standard logger.
func NewRewriteEngine(log logrus.FieldLogger, options Options) *RewriteEngine {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &RewriteEngine{log: log, options: options}
}

// Rewrite attempts to strengthen query with a candidate constraint drawn
// from bundle. It streams candidates from BuildCandidates in priority
// order and, for each, asks underlying whether query's constraints plus
// the candidate are still possibly satisfiable (computeValidity !=
// ValidityFalse, with no solver error). The first such candidate is
// appended to query's constraints and returned with Changed=true. If no
// candidate survives, or bundle is empty, Rewrite returns the original
// query unchanged.
func (e *RewriteEngine) Rewrite(query Query, bundle ValueBundle, underlying Solver) RewriteResult {
	if bundle == nil {
		return RewriteResult{Query: query, Changed: false}
	}

	scan := ScanArrays(query)
	if len(scan.Arrays) == 0 {
		return RewriteResult{Query: query, Changed: false}
	}

	for _, candidate := range BuildCandidates(bundle, scan, e.options) {
		candidateQuery := Query{
			Constraints: query.Constraints.Clone(),
			Goal:        query.Goal,
		}
		candidateQuery.Constraints = append(candidateQuery.Constraints, candidate.Constraints...)

		if !e.trySolve(candidateQuery, query.Goal, underlying) {
			continue
		}

		if e.options.Verbose {
			e.logAccepted(candidate)
		}

		return RewriteResult{
			Query:   query.WithAppendedConstraints(candidate.Constraints...),
			Changed: true,
		}
	}

	return RewriteResult{Query: query, Changed: false}
}

// trySolve reports whether candidateQuery's constraints, paired with the
// original query's goal, are not proven infeasible: any validity other
// than ValidityFalse counts as acceptable, and a solver error is treated
// as rejection (spec.md §4.5, mirroring
// original_source/src/VaseSolver.cpp's trySolve, which treats
// computeValidity returning anything but Solver::False as success).
func (e *RewriteEngine) trySolve(candidateQuery Query, goal Expr, underlying Solver) bool {
	validity, err := underlying.ComputeValidity(Query{
		Constraints: candidateQuery.Constraints,
		Goal:        goal,
	})
	if err != nil {
		return false
	}
	return validity != ValidityFalse
}

// logAccepted emits the "VASE applied" diagnostic line for an accepted
// candidate. Each family logs a slightly different shape, mirroring the
// three distinct message formats in
// original_source/src/VaseSolver.cpp's rewriteWithVase (see
// SPEC_FULL.md §3).
func (e *RewriteEngine) logAccepted(c Candidate) {
	fields := logrus.Fields{
		"family": c.Family.String(),
		"value":  c.Value,
	}
	switch c.Family {
	case FamilyByteEquality:
		fields["array"] = c.Arrays[0].ID
		fields["bytes"] = c.Bytes[0]
	case FamilyPacked32:
		fields["array"] = c.Arrays[0].ID
		fields["bytes"] = c.Bytes[0]
	case FamilyPairSum:
		fields["arrays"] = [2]uint64{c.Arrays[0].ID, c.Arrays[1].ID}
		fields["bytes"] = c.Bytes
	}
	e.log.WithFields(fields).Info("vase: applied candidate constraint")
}
