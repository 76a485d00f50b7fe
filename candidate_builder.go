package vase

import (
	"sort"
	"strconv"
)

// CandidateFamily identifies the structural shape of a Candidate
// (spec.md §4.4/GLOSSARY).
type CandidateFamily int

const (
	// FamilyByteEquality is a per-byte equality on a single array.
	FamilyByteEquality CandidateFamily = iota + 1
	// FamilyPacked32 is a little-endian 32-bit packed equality on a
	// single array.
	FamilyPacked32
	// FamilyPairSum is a sum-of-two-arrays equality (only ever produced
	// for exactly two arrays).
	FamilyPairSum
)

// String returns the family's diagnostic name.
func (f CandidateFamily) String() string {
	switch f {
	case FamilyByteEquality:
		return "array-bytes-eq"
	case FamilyPacked32:
		return "u32-eq"
	case FamilyPairSum:
		return "u32-pair-sum"
	default:
		return "unknown"
	}
}

// Candidate is a single proposed constraint addition: a group of boolean
// expressions to be appended to a query's constraint set as one atomic,
// all-or-nothing unit (spec.md GLOSSARY, §4.4).
type Candidate struct {
	Family      CandidateFamily
	Constraints []Expr
	Arrays      []*Array // one array for families 1/2, two for family 3
	Bytes       []uint   // per-array byte width used, aligned with Arrays
	Value       int64    // the observed value this candidate encodes
}

// BuildCandidates returns the ordered stream of candidates for a single
// query, given the ValueBundle at its location and a scan of the arrays
// it reads from. The order defines RewriteEngine's trial priority: family
// 1 (byte equality) before family 2 (packed 32-bit) before family 3
// (pair sum), and within each family, values before arrays (spec.md
// §4.4).
func BuildCandidates(bundle ValueBundle, scan *ArrayScan, options Options) []Candidate {
	values := collectLimitedValues(bundle, options.MaxValuesPerSite)
	if len(values) == 0 {
		return nil
	}

	arrays := scan.Arrays
	if options.MaxArrays > 0 && len(arrays) > options.MaxArrays {
		arrays = arrays[:options.MaxArrays]
	}
	if len(arrays) == 0 {
		return nil
	}

	var candidates []Candidate
	candidates = append(candidates, buildByteEqualityCandidates(values, arrays, scan, options)...)
	candidates = append(candidates, buildPacked32Candidates(values, arrays, scan, options)...)
	if options.TryPairSum && len(arrays) == 2 {
		candidates = append(candidates, buildPairSumCandidates(values, arrays, scan, options)...)
	}
	return candidates
}

// collectLimitedValues gathers the first limit distinct value strings
// whose ObservedValue.Type is 0, across every variable in bundle.
// Variable names are ignored for selection purposes (spec.md §4.4), but
// Go map iteration order is unspecified, so this module iterates
// variable names in lexical order for determinism; see DESIGN.md.
func collectLimitedValues(bundle ValueBundle, limit int) []string {
	if limit <= 0 {
		limit = 4
	}

	names := make([]string, 0, len(bundle))
	for name := range bundle {
		names = append(names, name)
	}
	sort.Strings(names)

	seen := make(map[string]bool)
	var values []string
	for _, name := range names {
		for _, ov := range bundle[name] {
			if ov.Type != 0 {
				continue
			}
			if seen[ov.Value] {
				continue
			}
			seen[ov.Value] = true
			values = append(values, ov.Value)
			if len(values) >= limit {
				return values
			}
		}
	}
	return values
}

// clampedByteWidth returns the byte width to use for a, folding
// spec.md's "n = min(bytesUsed(a), VaseMaxBytesPerArray)" clamp (shared,
// per SPEC_FULL.md §3, by families 1 and 2, which build it identically in
// the original C++).
func clampedByteWidth(scan *ArrayScan, a *Array, options Options) uint {
	n := scan.BytesUsed(a)
	if options.MaxBytesPerArray > 0 && n > uint(options.MaxBytesPerArray) {
		n = uint(options.MaxBytesPerArray)
	}
	if n == 0 {
		n = 4
	}
	return n
}

func buildByteEqualityCandidates(values []string, arrays []*Array, scan *ArrayScan, options Options) []Candidate {
	var out []Candidate
	for _, sv := range values {
		iv, err := strconv.ParseInt(sv, 10, 64)
		if err != nil {
			continue
		}
		for _, a := range arrays {
			n := clampedByteWidth(scan, a, options)
			constraints := make([]Expr, 0, n)
			for i := uint(0); i < n; i++ {
				b := (uint64(iv) >> (8 * i)) & 0xff
				read := a.Select(NewConstantExpr64(uint64(i)), Width8, false)
				constraints = append(constraints, NewBinaryExpr(EQ, read, NewConstantExpr8(b)))
			}
			out = append(out, Candidate{
				Family:      FamilyByteEquality,
				Constraints: constraints,
				Arrays:      []*Array{a},
				Bytes:       []uint{n},
				Value:       iv,
			})
		}
	}
	return out
}

func buildPacked32Candidates(values []string, arrays []*Array, scan *ArrayScan, options Options) []Candidate {
	var out []Candidate
	for _, sv := range values {
		iv, err := strconv.ParseInt(sv, 10, 64)
		if err != nil {
			continue
		}
		for _, a := range arrays {
			n := clampedByteWidth(scan, a, options)
			packed := packUint32LE(a, n)
			eq := NewBinaryExpr(EQ, packed, NewConstantExpr32(uint64(iv)))
			out = append(out, Candidate{
				Family:      FamilyPacked32,
				Constraints: []Expr{eq},
				Arrays:      []*Array{a},
				Bytes:       []uint{n},
				Value:       iv,
			})
		}
	}
	return out
}

func buildPairSumCandidates(values []string, arrays []*Array, scan *ArrayScan, options Options) []Candidate {
	a0, a1 := arrays[0], arrays[1]
	var out []Candidate
	for _, sv := range values {
		iv, err := strconv.ParseInt(sv, 10, 64)
		if err != nil {
			continue
		}
		n0 := clampedByteWidth(scan, a0, options)
		n1 := clampedByteWidth(scan, a1, options)
		sum := NewBinaryExpr(ADD, packUint32LE(a0, n0), packUint32LE(a1, n1))
		eq := NewBinaryExpr(EQ, sum, NewConstantExpr32(uint64(iv)))
		out = append(out, Candidate{
			Family:      FamilyPairSum,
			Constraints: []Expr{eq},
			Arrays:      []*Array{a0, a1},
			Bytes:       []uint{n0, n1},
			Value:       iv,
		})
	}
	return out
}

// packUint32LE builds the little-endian 32-bit packing of the first n
// bytes of a: OR across i of (zext8to32(read(a,i)) << (8*i)), matching
// original_source/src/VaseSolver.cpp's packUInt32LE.
func packUint32LE(a *Array, n uint) Expr {
	if n == 0 {
		n = 4
	}
	if n > 4 {
		n = 4
	}

	var acc Expr = NewConstantExpr(0, Width32)
	for i := uint(0); i < n; i++ {
		b := a.Select(NewConstantExpr64(uint64(i)), Width8, false)
		ext := NewCastExpr(b, Width32, false)
		if i > 0 {
			ext = NewBinaryExpr(SHL, ext, NewConstantExpr(uint64(8*i), Width32))
		}
		acc = NewBinaryExpr(OR, acc, ext)
	}
	return acc
}
