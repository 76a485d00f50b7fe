package vase

// ArrayScan is the result of scanning a Query for the symbolic arrays it
// reads from (spec.md §4.3).
type ArrayScan struct {
	// Arrays holds the distinct arrays referenced by any read in the
	// query (constraints, then goal), in first-encounter order,
	// deduplicated by identity.
	Arrays []*Array

	maxIndex map[uint64]uint64
	sawIndex map[uint64]bool
}

// BytesUsed returns 1 + the maximum concrete byte index at which a was
// read, clamped to [1, 8]. If no concrete index was observed for a, it
// returns the default of 4. Only constant (non-symbolic) index reads
// contribute; symbolic indices are ignored entirely by this component
// (spec.md §4.3 Notes).
func (s *ArrayScan) BytesUsed(a *Array) uint {
	if !s.sawIndex[a.ID] {
		return 4
	}
	n := s.maxIndex[a.ID] + 1
	if n < 1 {
		n = 1
	} else if n > 8 {
		n = 8
	}
	return uint(n)
}

// ScanArrays visits query's constraints, then its goal, and returns the
// arrays they read from along with each array's observed byte width.
func ScanArrays(query Query) *ArrayScan {
	v := &arrayScanVisitor{
		seen:     make(map[uint64]bool),
		maxIndex: make(map[uint64]uint64),
		sawIndex: make(map[uint64]bool),
	}
	for _, c := range query.Constraints {
		WalkExpr(v, c)
	}
	if query.Goal != nil {
		WalkExpr(v, query.Goal)
	}
	return &ArrayScan{
		Arrays:   v.order,
		maxIndex: v.maxIndex,
		sawIndex: v.sawIndex,
	}
}

// arrayScanVisitor implements ExprVisitor (expr.go), collecting every
// array read by a SelectExpr and, for reads at a constant index, the
// largest index observed.
type arrayScanVisitor struct {
	order    []*Array
	seen     map[uint64]bool
	maxIndex map[uint64]uint64
	sawIndex map[uint64]bool
}

func (v *arrayScanVisitor) Visit(expr Expr) (Expr, ExprVisitor) {
	sel, ok := expr.(*SelectExpr)
	if !ok {
		return expr, v
	}

	a := sel.Array
	if !v.seen[a.ID] {
		v.seen[a.ID] = true
		v.order = append(v.order, a)
	}

	if idx, ok := sel.Index.(*ConstantExpr); ok {
		if !v.sawIndex[a.ID] || idx.Value > v.maxIndex[a.ID] {
			v.maxIndex[a.ID] = idx.Value
		}
		v.sawIndex[a.ID] = true
	}

	return expr, v
}
