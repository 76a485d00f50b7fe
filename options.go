package vase

// Options holds the configuration surface named in spec.md §6. The core
// captures these once, at ValueStore.EnsureLoadedOnce time, and never
// re-reads them afterward (spec.md §5, "Shared-state discipline").
type Options struct {
	// MapPath is the JSON file backing the ValueStore. Empty disables
	// rewriting entirely: SolverFacade becomes a transparent pass-through.
	MapPath string

	// MaxArrays caps how many distinct arrays a single rewrite considers.
	MaxArrays int

	// MaxBytesPerArray caps the little-endian byte width used when
	// building per-array equalities.
	MaxBytesPerArray int

	// MaxValuesPerSite caps how many distinct observed values are tried
	// per location.
	MaxValuesPerSite int

	// TryPairSum enables the family-3 (pairwise sum) candidate.
	TryPairSum bool

	// Verbose enables the "VASE applied: ..." diagnostic line on
	// acceptance.
	Verbose bool

	// CachePath, if non-empty, names a bbolt database used to cache the
	// parsed ValueStore across process runs (§2.1 of SPEC_FULL.md). This
	// is a performance convenience with no effect on correctness or on
	// any of the invariants in spec.md §3.
	CachePath string
}

// DefaultOptions returns the Options with every default from spec.md §6.
func DefaultOptions() Options {
	return Options{
		MapPath:          "",
		MaxArrays:        4,
		MaxBytesPerArray: 4,
		MaxValuesPerSite: 4,
		TryPairSum:       true,
		Verbose:          true,
		CachePath:        "",
	}
}
