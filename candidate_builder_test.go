package vase_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vaselabs/vase"
)

func selectByte(a *vase.Array, i uint64) vase.Expr {
	return a.Select(vase.NewConstantExpr64(i), vase.Width8, false)
}

func TestBuildCandidates(t *testing.T) {
	options := vase.DefaultOptions()

	t.Run("EmptyBundleYieldsNoCandidates", func(t *testing.T) {
		a := vase.NewArray(1, 8)
		q := vase.Query{
			Constraints: vase.ConstraintSet{vase.NewBinaryExpr(vase.EQ, selectByte(a, 0), vase.NewConstantExpr8(0))},
			Goal:        vase.NewConstantExpr(1, vase.WidthBool),
		}
		scan := vase.ScanArrays(q)
		got := vase.BuildCandidates(vase.ValueBundle{}, scan, options)
		assert.Empty(t, got)
	})

	t.Run("IgnoresNonNumericType", func(t *testing.T) {
		a := vase.NewArray(1, 8)
		q := vase.Query{
			Constraints: vase.ConstraintSet{vase.NewBinaryExpr(vase.EQ, selectByte(a, 0), vase.NewConstantExpr8(0))},
			Goal:        vase.NewConstantExpr(1, vase.WidthBool),
		}
		scan := vase.ScanArrays(q)
		bundle := vase.ValueBundle{
			"x": []vase.ObservedValue{{Type: 1, Value: "not-numeric"}},
		}
		got := vase.BuildCandidates(bundle, scan, options)
		assert.Empty(t, got)
	})

	t.Run("FamilyOrderIsByteThenPacked32ThenPairSum", func(t *testing.T) {
		a := vase.NewArray(1, 8)
		b := vase.NewArray(2, 8)
		q := vase.Query{
			Constraints: vase.ConstraintSet{
				vase.NewBinaryExpr(vase.EQ, selectByte(a, 0), vase.NewConstantExpr8(0)),
				vase.NewBinaryExpr(vase.EQ, selectByte(b, 0), vase.NewConstantExpr8(0)),
			},
			Goal: vase.NewConstantExpr(1, vase.WidthBool),
		}
		scan := vase.ScanArrays(q)
		bundle := vase.ValueBundle{
			"x": []vase.ObservedValue{{Type: 0, Value: "10"}},
		}

		got := vase.BuildCandidates(bundle, scan, options)
		require.Len(t, got, 5) // 2 byte-eq + 2 packed32 + 1 pair-sum

		families := make([]vase.CandidateFamily, len(got))
		for i, c := range got {
			families[i] = c.Family
		}
		assert.Equal(t, []vase.CandidateFamily{
			vase.FamilyByteEquality, vase.FamilyByteEquality,
			vase.FamilyPacked32, vase.FamilyPacked32,
			vase.FamilyPairSum,
		}, families)
	})

	t.Run("DistinctValuesCappedAtMaxValuesPerSite", func(t *testing.T) {
		a := vase.NewArray(1, 8)
		q := vase.Query{
			Constraints: vase.ConstraintSet{vase.NewBinaryExpr(vase.EQ, selectByte(a, 0), vase.NewConstantExpr8(0))},
			Goal:        vase.NewConstantExpr(1, vase.WidthBool),
		}
		scan := vase.ScanArrays(q)
		opts := options
		opts.MaxValuesPerSite = 2
		opts.MaxBytesPerArray = 1
		bundle := vase.ValueBundle{
			"x": []vase.ObservedValue{
				{Type: 0, Value: "1"},
				{Type: 0, Value: "1"}, // duplicate, does not count twice
				{Type: 0, Value: "2"},
				{Type: 0, Value: "3"}, // beyond the cap, never tried
			},
		}
		got := vase.BuildCandidates(bundle, scan, opts)
		var values []int64
		for _, c := range got {
			if c.Family == vase.FamilyByteEquality {
				values = append(values, c.Value)
			}
		}
		assert.Equal(t, []int64{1, 2}, values)
	})

	t.Run("PairSumOnlyWithExactlyTwoArrays", func(t *testing.T) {
		a := vase.NewArray(1, 8)
		b := vase.NewArray(2, 8)
		c := vase.NewArray(3, 8)
		q := vase.Query{
			Constraints: vase.ConstraintSet{
				vase.NewBinaryExpr(vase.EQ, selectByte(a, 0), vase.NewConstantExpr8(0)),
				vase.NewBinaryExpr(vase.EQ, selectByte(b, 0), vase.NewConstantExpr8(0)),
				vase.NewBinaryExpr(vase.EQ, selectByte(c, 0), vase.NewConstantExpr8(0)),
			},
			Goal: vase.NewConstantExpr(1, vase.WidthBool),
		}
		scan := vase.ScanArrays(q)
		opts := options
		opts.MaxArrays = 3
		bundle := vase.ValueBundle{"x": []vase.ObservedValue{{Type: 0, Value: "5"}}}

		got := vase.BuildCandidates(bundle, scan, opts)
		for _, cand := range got {
			assert.NotEqual(t, vase.FamilyPairSum, cand.Family, "pair-sum must not fire with three arrays")
		}
	})

	t.Run("PairSumDisabledByOption", func(t *testing.T) {
		a := vase.NewArray(1, 8)
		b := vase.NewArray(2, 8)
		q := vase.Query{
			Constraints: vase.ConstraintSet{
				vase.NewBinaryExpr(vase.EQ, selectByte(a, 0), vase.NewConstantExpr8(0)),
				vase.NewBinaryExpr(vase.EQ, selectByte(b, 0), vase.NewConstantExpr8(0)),
			},
			Goal: vase.NewConstantExpr(1, vase.WidthBool),
		}
		scan := vase.ScanArrays(q)
		opts := options
		opts.TryPairSum = false
		bundle := vase.ValueBundle{"x": []vase.ObservedValue{{Type: 0, Value: "5"}}}

		got := vase.BuildCandidates(bundle, scan, opts)
		for _, cand := range got {
			assert.NotEqual(t, vase.FamilyPairSum, cand.Family)
		}
	})

	t.Run("MaxArraysCapsConsideredArrays", func(t *testing.T) {
		a := vase.NewArray(1, 8)
		b := vase.NewArray(2, 8)
		c := vase.NewArray(3, 8)
		q := vase.Query{
			Constraints: vase.ConstraintSet{
				vase.NewBinaryExpr(vase.EQ, selectByte(a, 0), vase.NewConstantExpr8(0)),
				vase.NewBinaryExpr(vase.EQ, selectByte(b, 0), vase.NewConstantExpr8(0)),
				vase.NewBinaryExpr(vase.EQ, selectByte(c, 0), vase.NewConstantExpr8(0)),
			},
			Goal: vase.NewConstantExpr(1, vase.WidthBool),
		}
		scan := vase.ScanArrays(q)
		opts := options
		opts.MaxArrays = 1
		bundle := vase.ValueBundle{"x": []vase.ObservedValue{{Type: 0, Value: "5"}}}

		got := vase.BuildCandidates(bundle, scan, opts)
		seen := map[uint64]bool{}
		for _, cand := range got {
			for _, arr := range cand.Arrays {
				seen[arr.ID] = true
			}
		}
		assert.Len(t, seen, 1)
	})
}
