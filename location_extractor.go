package vase

import "regexp"

// locationPattern matches the instrumentation markers `loc:<N>` and
// `loc:<N>:branch:<B>` that the (out-of-scope) instrumentation pass
// embeds in constraints it constructs (spec.md §4.2).
var locationPattern = regexp.MustCompile(`loc:(\d+)(:branch:(\d+))?`)

// ExtractLocation renders each of query's constraints, then its goal, to
// text and returns the canonical location key of the first match. A
// branch-tagged match returns "loc:N:branch:B"; a branchless match
// returns "loc:N". If nothing matches, ExtractLocation returns the
// sentinel "loc:0".
//
// Scanning rendered text rather than the expression tree structurally is
// a deliberate decoupling from the hosting engine's internal
// representation (spec.md §4.2 Rationale, §9).
func ExtractLocation(query Query) string {
	for _, c := range query.Constraints {
		if key, ok := scanForLocationTag(c); ok {
			return key
		}
	}
	if key, ok := scanForLocationTag(query.Goal); ok {
		return key
	}
	return "loc:0"
}

// scanForLocationTag returns the canonical location key embedded in
// expr's textual form, if any. The leftmost match wins.
func scanForLocationTag(expr Expr) (string, bool) {
	if expr == nil {
		return "", false
	}
	m := locationPattern.FindStringSubmatch(expr.String())
	if m == nil {
		return "", false
	}
	if m[3] != "" {
		return "loc:" + m[1] + ":branch:" + m[3], true
	}
	return "loc:" + m[1], true
}
