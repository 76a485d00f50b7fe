package vase

import (
	"encoding/json"
	"os"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// ObservedValue is a single concrete value captured at a branch site by
// the (out-of-scope) instrumentation pass. Type 0 denotes a value that
// parses as a signed 64-bit integer; other type tags are preserved on
// load but ignored by rewriting (spec.md §3).
type ObservedValue struct {
	Type  int
	Value string
	Ops   []string
}

// ValueBundle maps a variable name to its ordered list of observed
// values, in JSON input order.
type ValueBundle map[string][]ObservedValue

// rawObservedValue mirrors the on-disk schema with pointer fields so a
// missing "type" or "value" key is distinguishable from a zero value.
type rawObservedValue struct {
	Type  *int     `json:"type"`
	Value *string  `json:"value"`
	Ops   []string `json:"ops,omitempty"`
}

// ValueStore is the in-memory, process-wide index from location key to
// ValueBundle described in spec.md §3/§4.1. It is created empty,
// populated once by Load or EnsureLoadedOnce, and read-only thereafter:
// Load publishes a fully-built map before any reader can observe it, and
// Lookup never takes a lock.
type ValueStore struct {
	log logrus.FieldLogger

	// mu serializes Load; it is never held by a reader.
	mu         sync.Mutex
	loadedPath string

	// data is published by Load/publish with release semantics; Lookup
	// reads it with acquire semantics and never blocks.
	data atomic.Pointer[map[string]ValueBundle]

	// once and onceOK back EnsureLoadedOnce. They are deliberately
	// independent of mu/loadedPath: a direct Load call does not mark the
	// lazy path as attempted, matching original_source/src/VaseSolver.cpp
	// (ensureMapLoadedOnce keeps its own function-local static bool,
	// distinct from the vaseMapLoaded flag Load maintains).
	once   sync.Once
	onceOK atomic.Bool
}

// NewValueStore returns an empty ValueStore. A nil logger falls back to
// logrus's standard logger.
func NewValueStore(log logrus.FieldLogger) *ValueStore {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &ValueStore{log: log}
}

// Load parses filename and replaces the store's contents. Calling Load a
// second time with the same path that was last loaded successfully is a
// no-op that returns true without touching the filesystem. Calling it
// with a different path always re-parses and atomically replaces the
// store (spec.md §3 invariant; VaseSolver.cpp:64-65).
//
// On I/O or top-level JSON parse failure, Load warns, leaves the store
// empty, and returns false. A malformed individual entry (missing "type"
// or "value") only warns and skips that entry; the overall load still
// succeeds.
func (s *ValueStore) Load(filename string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.loadedPath == filename && s.data.Load() != nil {
		return true
	}

	raw, err := os.ReadFile(filename)
	if err != nil {
		s.log.Warnf("vase: %v", errors.Wrapf(err, "failed to open VASE map %q", filename))
		s.publishLocked(nil, "")
		return false
	}

	var doc map[string]map[string][]rawObservedValue
	if err := json.Unmarshal(raw, &doc); err != nil {
		s.log.Warnf("vase: %v", errors.Wrapf(err, "JSON parse error in VASE map %q", filename))
		s.publishLocked(nil, "")
		return false
	}

	store := make(map[string]ValueBundle, len(doc))
	for location, vars := range doc {
		bundle := make(ValueBundle, len(vars))
		for varName, entries := range vars {
			values := make([]ObservedValue, 0, len(entries))
			for _, e := range entries {
				if e.Type == nil || e.Value == nil {
					s.log.Warnf("vase: missing type or value in VASE entry at %s var %s", location, varName)
					continue
				}
				values = append(values, ObservedValue{Type: *e.Type, Value: *e.Value, Ops: e.Ops})
			}
			bundle[varName] = values
		}
		store[location] = bundle
	}

	s.publishLocked(store, filename)
	s.log.Infof("vase: loaded VASE map %q with %d entries", filename, len(store))
	return true
}

// publishLocked installs store as the new readable snapshot. Callers must
// hold s.mu.
func (s *ValueStore) publishLocked(store map[string]ValueBundle, path string) {
	s.loadedPath = path
	if store == nil {
		s.data.Store(nil)
		return
	}
	s.data.Store(&store)
}

// EnsureLoadedOnce performs the configured load exactly once for the
// lifetime of the store. Subsequent calls are no-ops that return the
// first call's outcome, regardless of what Load has done since. When
// options.MapPath is empty, the store is marked permanently empty and
// every Lookup subsequently misses, making the facade a transparent
// pass-through (spec.md §4.1, §7).
func (s *ValueStore) EnsureLoadedOnce(options Options) bool {
	s.once.Do(func() {
		if options.MapPath == "" {
			s.log.Warn("vase: VASE map not set (--vase-map), VASE rewrites disabled")
			s.mu.Lock()
			s.publishLocked(nil, "")
			s.mu.Unlock()
			s.onceOK.Store(false)
			return
		}
		if options.CachePath != "" {
			s.onceOK.Store(s.LoadCached(options.MapPath, options.CachePath))
			return
		}
		s.onceOK.Store(s.Load(options.MapPath))
	})
	return s.onceOK.Load()
}

// Lookup returns the ValueBundle for key, trying the exact key first and
// then, if key has a ":branch:" suffix, the branchless base key
// (spec.md §3 "Key fallback"). Lookup takes no lock.
func (s *ValueStore) Lookup(key string) (ValueBundle, bool) {
	m := s.data.Load()
	if m == nil {
		return nil, false
	}
	if bundle, ok := (*m)[key]; ok {
		return bundle, true
	}
	if idx := strings.Index(key, ":branch:"); idx >= 0 {
		if bundle, ok := (*m)[key[:idx]]; ok {
			return bundle, true
		}
	}
	return nil, false
}
