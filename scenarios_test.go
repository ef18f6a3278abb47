// Copyright 2016 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package depengine_test

import (
	"testing"

	"github.com/rpmtrans/depengine"
	"github.com/rpmtrans/depengine/internal/memdb"
)

// TestScenarioEndToEndCheckThenOrder runs the full Check-then-Order pipeline
// over a small realistic graph: a library, a plugin that requires it, and an
// application that requires the plugin via a versioned constraint.
func TestScenarioEndToEndCheckThenOrder(t *testing.T) {
	ts := depengine.NewTransactionSet(nil)

	lib := memdb.NewPackage("libcore", "2.1").WithProvides("libcore.so = 2.1")
	plugin := memdb.NewPackage("plugin-x", "1.0").WithRequires("libcore.so >= 2.0")
	app := memdb.NewPackage("app", "3.0").WithRequires("plugin-x")

	for _, p := range []*memdb.Package{lib, plugin, app} {
		if err := depengine.AddPackage(ts, p, p.PkgName, false, nil); err != nil {
			t.Fatalf("AddPackage(%s): %v", p.PkgName, err)
		}
	}

	if err := depengine.Check(ts); err != nil {
		t.Fatalf("Check: %v", err)
	}
	if !ts.Problems().Empty() {
		t.Fatalf("Problems() = %v, want none", ts.Problems().Problems())
	}

	if _, err := depengine.Order(ts); err != nil {
		t.Fatalf("Order: %v", err)
	}

	pos := make(map[string]int)
	for i, e := range ts.Order() {
		pos[e.N] = i
	}
	if pos["libcore"] >= pos["plugin-x"] {
		t.Errorf("libcore must order before plugin-x: %v", pos)
	}
	if pos["plugin-x"] >= pos["app"] {
		t.Errorf("plugin-x must order before app: %v", pos)
	}
}

// TestScenarioMissingVersionedRequireIsReported confirms that a too-old
// installed provider is reported as Missing, not silently accepted.
func TestScenarioMissingVersionedRequireIsReported(t *testing.T) {
	db := memdb.New()
	db.Install(memdb.NewPackage("libcore", "1.0").WithProvides("libcore.so = 1.0"))

	ts := depengine.NewTransactionSet(db)
	app := memdb.NewPackage("app", "1.0").WithRequires("libcore.so >= 2.0")
	if err := depengine.AddPackage(ts, app, "app", false, nil); err != nil {
		t.Fatalf("AddPackage: %v", err)
	}

	if err := depengine.Check(ts); err != nil {
		t.Fatalf("Check: %v", err)
	}

	probs := ts.Problems().Problems()
	if len(probs) != 1 || probs[0].Kind != depengine.Missing {
		t.Fatalf("Problems() = %v, want one Missing (installed libcore.so is too old)", probs)
	}
}

// TestScenarioWhiteoutSuppressesOrderingEdge confirms the §4.6 whiteout
// mechanism: a "P>Q" entry removes the ordering edge a requirement would
// otherwise create, without affecting Check's satisfaction verdict.
func TestScenarioWhiteoutSuppressesOrderingEdge(t *testing.T) {
	ts := depengine.NewTransactionSet(nil)
	ts.SetMacroExpander(memdb.Expander{"%{?_dependency_whiteout}": "a>b"})

	a := memdb.NewPackage("a", "1.0").WithRequires("b")
	b := memdb.NewPackage("b", "1.0")

	if err := depengine.AddPackage(ts, a, "a", false, nil); err != nil {
		t.Fatalf("AddPackage(a): %v", err)
	}
	if err := depengine.AddPackage(ts, b, "b", false, nil); err != nil {
		t.Fatalf("AddPackage(b): %v", err)
	}

	if err := depengine.Check(ts); err != nil {
		t.Fatalf("Check: %v", err)
	}
	if !ts.Problems().Empty() {
		t.Fatalf("Problems() = %v, want none: a's requirement on b is still satisfied by the added package", ts.Problems().Problems())
	}

	if _, err := depengine.Order(ts); err != nil {
		t.Fatalf("Order: %v", err)
	}

	pos := make(map[string]int)
	for i, e := range ts.Order() {
		pos[e.N] = i
	}
	if pos["a"] >= pos["b"] {
		t.Errorf("with the a>b whiteout entry in force, a's edge on b should be suppressed, giving presentation order (a before b): %v", pos)
	}
}

// TestScenarioUpgradeWithObsoletesFullPipeline runs Check and Order together
// across an upgrade that both replaces an older same-named package and
// obsoletes an unrelated legacy package.
func TestScenarioUpgradeWithObsoletesFullPipeline(t *testing.T) {
	db := memdb.New()
	oldApp := db.Install(memdb.NewPackage("app", "1.0").WithProvides("app"))
	_ = oldApp
	db.Install(memdb.NewPackage("app-legacy-helper", "1.0").WithProvides("app-helper"))

	ts := depengine.NewTransactionSet(db)
	newApp := memdb.NewPackage("app", "2.0").WithObsoletes("app-helper")
	if err := depengine.AddPackage(ts, newApp, "app", true, nil); err != nil {
		t.Fatalf("AddPackage: %v", err)
	}

	if err := depengine.Check(ts); err != nil {
		t.Fatalf("Check: %v", err)
	}
	if !ts.Problems().Empty() {
		t.Fatalf("Problems() = %v, want none", ts.Problems().Problems())
	}

	if _, err := depengine.Order(ts); err != nil {
		t.Fatalf("Order: %v", err)
	}

	var sawAppAdd, sawOldAppRemove, sawHelperRemove bool
	var appAddIdx, oldAppRemoveIdx, helperRemoveIdx int
	for i, e := range ts.Order() {
		switch {
		case e.N == "app" && e.Type == depengine.Add:
			sawAppAdd, appAddIdx = true, i
		case e.N == "app" && e.Type == depengine.Remove:
			sawOldAppRemove, oldAppRemoveIdx = true, i
		case e.N == "app-legacy-helper" && e.Type == depengine.Remove:
			sawHelperRemove, helperRemoveIdx = true, i
		}
	}
	if !sawAppAdd || !sawOldAppRemove || !sawHelperRemove {
		t.Fatalf("expected an app add plus both removals, got %v", ts.Order())
	}
	if oldAppRemoveIdx != appAddIdx+1 && helperRemoveIdx != appAddIdx+1 {
		t.Errorf("one of the two removals should immediately follow the app add (upgrade/obsolete locality): add=%d removes=%d,%d", appAddIdx, oldAppRemoveIdx, helperRemoveIdx)
	}
}
