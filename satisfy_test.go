// Copyright 2016 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package depengine

import (
	"errors"
	"testing"
)

var errDiscardedByDesign = errors.New("advisory solver error, discarded by Unsatisfied")
var errFakeCachePut = errors.New("fake cache put failure")

// fakeCache is a minimal DependencyCache whose Put can be made to fail, to
// exercise cacheAndReturn's permanent-disable-on-write-failure path.
type fakeCache struct {
	entries map[string]int
	putErr  error
	gets    int
	puts    int
}

func newFakeCache() *fakeCache { return &fakeCache{entries: map[string]int{}} }

func (c *fakeCache) Get(dnevr string) (int, bool) {
	c.gets++
	v, ok := c.entries[dnevr]
	return v, ok
}

func (c *fakeCache) Put(dnevr string, result int) error {
	c.puts++
	if c.putErr != nil {
		return c.putErr
	}
	c.entries[dnevr] = result
	return nil
}

func (c *fakeCache) Close() error { return nil }

func TestUnsatisfiedCacheHitShortCircuits(t *testing.T) {
	ts := NewTransactionSet(nil)
	cache := newFakeCache()
	ts.SetCache(cache)

	dep := Dep{Name: "bar"}
	cache.entries[dep.DNEVR(RoleRequires)] = 1

	result, err := Unsatisfied(ts, dep, RoleRequires)
	if err != nil {
		t.Fatalf("Unsatisfied: %v", err)
	}
	if result != 1 {
		t.Errorf("result = %d, want the cached 1", result)
	}
	if cache.puts != 0 {
		t.Errorf("a cache hit must not write back: puts = %d", cache.puts)
	}
}

func TestUnsatisfiedRPMLibName(t *testing.T) {
	ts := NewTransactionSet(nil)

	var name string
	for n := range rpmlibCapabilities {
		name = n
		break
	}
	known := Dep{Name: name}

	result, err := Unsatisfied(ts, known, RoleRequires)
	if err != nil {
		t.Fatalf("Unsatisfied: %v", err)
	}
	if result != 0 {
		t.Errorf("a known rpmlib capability should be satisfied, got %d", result)
	}

	unknown := Dep{Name: rpmlibPrefix + "SomeFeatureThatDoesNotExist"}
	result, err = Unsatisfied(ts, unknown, RoleRequires)
	if err != nil {
		t.Fatalf("Unsatisfied: %v", err)
	}
	if result != 1 {
		t.Errorf("an unknown rpmlib capability must be unsatisfied, got %d", result)
	}
}

func TestUnsatisfiedResolvedByAddedIndex(t *testing.T) {
	ts := NewTransactionSet(nil)
	bar := &fakeHeader{name: "bar", evr: EVR{Version: "1.0"}}
	if err := AddPackage(ts, bar, "bar", false, nil); err != nil {
		t.Fatalf("AddPackage: %v", err)
	}

	result, err := Unsatisfied(ts, Dep{Name: "bar"}, RoleRequires)
	if err != nil {
		t.Fatalf("Unsatisfied: %v", err)
	}
	if result != 0 {
		t.Errorf("result = %d, want 0 (satisfied by the added package's self-provide)", result)
	}
}

func TestUnsatisfiedDBBaseNameMatch(t *testing.T) {
	db := &fakeDB{}
	owner := &fakeHeader{name: "owner", evr: EVR{Version: "1.0"}, files: []string{"/usr/bin/tool"}}
	db.install(owner)

	ts := NewTransactionSet(db)
	result, err := Unsatisfied(ts, Dep{Name: "/usr/bin/tool"}, RoleRequires)
	if err != nil {
		t.Fatalf("Unsatisfied: %v", err)
	}
	if result != 0 {
		t.Errorf("result = %d, want 0 (satisfied by an installed file owner)", result)
	}
}

func TestUnsatisfiedDBProvideNameAndEVR(t *testing.T) {
	db := &fakeDB{}
	foo := &fakeHeader{name: "foo", evr: EVR{Version: "2.0"}, provides: []Dep{{Name: "foo-iface", Flags: FlagEqual, EVR: EVR{Version: "2.0"}}}}
	db.install(foo)

	ts := NewTransactionSet(db)

	satisfied := Dep{Name: "foo-iface", Flags: FlagEqual, EVR: EVR{Version: "2.0"}}
	result, err := Unsatisfied(ts, satisfied, RoleRequires)
	if err != nil {
		t.Fatalf("Unsatisfied: %v", err)
	}
	if result != 0 {
		t.Errorf("result = %d, want 0 (exact EVR match)", result)
	}

	tooNew := Dep{Name: "foo-iface", Flags: FlagGreater, EVR: EVR{Version: "3.0"}}
	result, err = Unsatisfied(ts, tooNew, RoleRequires)
	if err != nil {
		t.Fatalf("Unsatisfied: %v", err)
	}
	if result != 1 {
		t.Errorf("result = %d, want 1 (installed provide too old for > 3.0)", result)
	}
}

// TestUnsatisfiedDBSelfProvideFallback exercises dbProvideMatches' self-name
// fallback: a header matched purely by its own Name (not listed in its
// explicit Provides) must still satisfy a name+EVR requirement.
func TestUnsatisfiedDBSelfProvideFallback(t *testing.T) {
	db := &fakeDB{}
	foo := &fakeHeader{name: "foo", evr: EVR{Version: "1.0"}} // no explicit Provides entry
	db.install(foo)

	ts := NewTransactionSet(db)
	dep := Dep{Name: "foo", Flags: FlagEqual, EVR: EVR{Version: "1.0"}}

	result, err := Unsatisfied(ts, dep, RoleRequires)
	if err != nil {
		t.Fatalf("Unsatisfied: %v", err)
	}
	if result != 0 {
		t.Errorf("result = %d, want 0: foo's own name-EVR is an implicit self-provide", result)
	}
}

func TestUnsatisfiedSolverCallbackAdvisoryOnly(t *testing.T) {
	ts := NewTransactionSet(nil)

	var called bool
	ts.SetSolver(func(ts *TransactionSet, dep Dep) error {
		called = true
		return errDiscardedByDesign // return value is discarded; Unsatisfied still reports 1
	})

	result, err := Unsatisfied(ts, Dep{Name: "missing"}, RoleRequires)
	if err != nil {
		t.Fatalf("Unsatisfied: %v", err)
	}
	if !called {
		t.Error("the solver callback should have been invoked")
	}
	if result != 1 {
		t.Errorf("result = %d, want 1: the solver's return value is advisory only", result)
	}
}

func TestUnsatisfiedNoSuggestsSkipsSolver(t *testing.T) {
	ts := NewTransactionSet(nil)
	ts.NoSuggests = true

	var called bool
	ts.SetSolver(func(ts *TransactionSet, dep Dep) error {
		called = true
		return nil
	})

	if _, err := Unsatisfied(ts, Dep{Name: "missing"}, RoleRequires); err != nil {
		t.Fatalf("Unsatisfied: %v", err)
	}
	if called {
		t.Error("NoSuggests should prevent the solver callback from running")
	}
}

func TestUnsatisfiedCacheWriteFailureDisablesCache(t *testing.T) {
	ts := NewTransactionSet(nil)
	cache := newFakeCache()
	cache.putErr = errFakeCachePut
	ts.SetCache(cache)

	if _, err := Unsatisfied(ts, Dep{Name: "missing"}, RoleRequires); err != nil {
		t.Fatalf("Unsatisfied: %v", err)
	}
	if ts.cacheEnabled {
		t.Error("a cache write failure must permanently disable the cache")
	}
	if cache.puts != 1 {
		t.Errorf("puts = %d, want 1 (the failing write)", cache.puts)
	}

	// A second lookup must not consult the now-disabled cache at all.
	gets := cache.gets
	if _, err := Unsatisfied(ts, Dep{Name: "missing"}, RoleRequires); err != nil {
		t.Fatalf("Unsatisfied (second call): %v", err)
	}
	if cache.gets != gets {
		t.Error("a disabled cache must not be consulted")
	}
}
