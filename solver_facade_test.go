package vase

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	passert "github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// facadeRecordingSolver is a minimal vase.Solver double that records
// every query it is asked to validate, accepting every candidate it
// sees, so tests can assert purely on what SolverFacade delegated.
type facadeRecordingSolver struct {
	queries []Query
}

func (s *facadeRecordingSolver) ComputeValidity(q Query) (Validity, error) {
	s.queries = append(s.queries, q)
	return ValidityUnknown, nil
}
func (s *facadeRecordingSolver) ComputeTruth(Query) (bool, error) { return true, nil }
func (s *facadeRecordingSolver) ComputeValue(Query) (Expr, error) {
	return NewConstantExpr(0, WidthBool), nil
}
func (s *facadeRecordingSolver) ComputeInitialValues(Query, []*Array) ([][]byte, bool, error) {
	return nil, true, nil
}
func (s *facadeRecordingSolver) OperationStatusCode() SolverRunStatus { return SolverRunStatusSuccess }
func (s *facadeRecordingSolver) ConstraintLog(Query) ([]byte, error)  { return nil, nil }

func writeMapFile(t *testing.T, doc map[string]map[string][]map[string]any) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "vase-map.json")
	data, err := json.Marshal(doc)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func TestSolverFacade_ComputeValidity(t *testing.T) {
	t.Run("RewritesWhenLocationMatches", func(t *testing.T) {
		path := writeMapFile(t, map[string]map[string][]map[string]any{
			"loc:1": {"x": {{"type": 0, "value": "7"}}},
		})

		options := DefaultOptions()
		options.MapPath = path

		underlying := &facadeRecordingSolver{}
		store := NewValueStore(nil)
		facade := NewSolverFacade(underlying, store, options)

		a := NewArray(1, 8)
		q := Query{
			Constraints: ConstraintSet{
				NewBinaryExpr(EQ, a.Select(NewConstantExpr64(0), Width8, false), NewConstantExpr8(0)),
			},
			Goal: &taggedExpr{"loc:1"},
		}

		_, err := facade.ComputeValidity(q)
		require.NoError(t, err)
		require.Len(t, underlying.queries, 1)
		passert.Len(t, underlying.queries[0].Constraints, 2, "facade must have appended a candidate constraint")
	})

	t.Run("PassesThroughWhenMapEmpty", func(t *testing.T) {
		options := DefaultOptions() // MapPath == ""

		underlying := &facadeRecordingSolver{}
		store := NewValueStore(nil)
		facade := NewSolverFacade(underlying, store, options)

		a := NewArray(1, 8)
		q := Query{
			Constraints: ConstraintSet{
				NewBinaryExpr(EQ, a.Select(NewConstantExpr64(0), Width8, false), NewConstantExpr8(0)),
			},
			Goal: &taggedExpr{"loc:1"},
		}

		_, err := facade.ComputeValidity(q)
		require.NoError(t, err)
		require.Len(t, underlying.queries, 1)
		passert.Len(t, underlying.queries[0].Constraints, 1, "no map loaded means the query is forwarded unchanged")
	})

	t.Run("PassThroughOperationsAreUnaffected", func(t *testing.T) {
		options := DefaultOptions()
		underlying := &facadeRecordingSolver{}
		store := NewValueStore(nil)
		facade := NewSolverFacade(underlying, store, options)

		passert.Equal(t, SolverRunStatusSuccess, facade.OperationStatusCode())
	})
}
