// Copyright 2016 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package depengine

import "testing"

// fakeHeader is a minimal Header for whitebox tests that don't want the
// internal/memdb import cycle (memdb imports depengine).
type fakeHeader struct {
	name      string
	evr       EVR
	requires  []Dep
	provides  []Dep
	conflicts []Dep
	obsoletes []Dep
	files     []string
	source    bool
}

func (h *fakeHeader) Name() string           { return h.name }
func (h *fakeHeader) EVR() EVR               { return h.evr }
func (h *fakeHeader) Requires() []Dep        { return h.requires }
func (h *fakeHeader) Provides() []Dep        { return h.provides }
func (h *fakeHeader) Conflicts() []Dep       { return h.conflicts }
func (h *fakeHeader) Obsoletes() []Dep       { return h.obsoletes }
func (h *fakeHeader) Files() []string        { return h.files }
func (h *fakeHeader) IsSourcePackage() bool  { return h.source }
func (h *fakeHeader) MultilibMask() uint32   { return 0 }

func TestCheckMissingRequires(t *testing.T) {
	ts := NewTransactionSet(nil)
	foo := &fakeHeader{name: "foo", evr: EVR{Version: "1.0"}, requires: []Dep{{Name: "bar"}}}
	if err := AddPackage(ts, foo, "foo", false, nil); err != nil {
		t.Fatalf("AddPackage: %v", err)
	}

	if err := Check(ts); err != nil {
		t.Fatalf("Check: %v", err)
	}

	probs := ts.Problems().Problems()
	if len(probs) != 1 {
		t.Fatalf("Problems() = %d, want 1", len(probs))
	}
	if probs[0].Kind != Missing {
		t.Errorf("Kind = %v, want Missing", probs[0].Kind)
	}
	if probs[0].NEVR != "foo-1.0" {
		t.Errorf("NEVR = %q, want foo-1.0", probs[0].NEVR)
	}
}

func TestCheckSatisfiedByAddedPackage(t *testing.T) {
	ts := NewTransactionSet(nil)
	bar := &fakeHeader{name: "bar", evr: EVR{Version: "1.0"}}
	foo := &fakeHeader{name: "foo", evr: EVR{Version: "1.0"}, requires: []Dep{{Name: "bar"}}}

	if err := AddPackage(ts, bar, "bar", false, nil); err != nil {
		t.Fatalf("AddPackage(bar): %v", err)
	}
	if err := AddPackage(ts, foo, "foo", false, nil); err != nil {
		t.Fatalf("AddPackage(foo): %v", err)
	}

	if err := Check(ts); err != nil {
		t.Fatalf("Check: %v", err)
	}
	if !ts.Problems().Empty() {
		t.Errorf("Problems() = %v, want none", ts.Problems().Problems())
	}
}

func TestCheckConflictBetweenAddedAndInstalled(t *testing.T) {
	db := &fakeDB{}
	installed := &fakeHeader{name: "bar", evr: EVR{Version: "1.0"}, provides: []Dep{{Name: "bar"}}}
	db.install(installed)

	ts := NewTransactionSet(db)
	foo := &fakeHeader{name: "foo", evr: EVR{Version: "1.0"}, conflicts: []Dep{{Name: "bar"}}}
	if err := AddPackage(ts, foo, "foo", false, nil); err != nil {
		t.Fatalf("AddPackage: %v", err)
	}

	if err := Check(ts); err != nil {
		t.Fatalf("Check: %v", err)
	}

	probs := ts.Problems().Problems()
	if len(probs) != 1 || probs[0].Kind != Conflict {
		t.Fatalf("Problems() = %v, want one Conflict", probs)
	}
}

func TestCheckRemovalBlockedByDependent(t *testing.T) {
	db := &fakeDB{}
	bar := &fakeHeader{name: "bar", evr: EVR{Version: "1.0"}, provides: []Dep{{Name: "bar"}}}
	baz := &fakeHeader{name: "baz", evr: EVR{Version: "1.0"}, requires: []Dep{{Name: "bar"}}}
	barOffset := db.install(bar)
	db.install(baz)

	ts := NewTransactionSet(db)
	if err := RemovePackage(ts, bar, barOffset, NoKey); err != nil {
		t.Fatalf("RemovePackage: %v", err)
	}

	if err := Check(ts); err != nil {
		t.Fatalf("Check: %v", err)
	}

	probs := ts.Problems().Problems()
	if len(probs) != 1 || probs[0].Kind != Missing {
		t.Fatalf("Problems() = %v, want one Missing (baz now unsatisfied)", probs)
	}
}

func TestCheckRemovalNotBlockedWhenDependentAlsoRemoved(t *testing.T) {
	db := &fakeDB{}
	bar := &fakeHeader{name: "bar", evr: EVR{Version: "1.0"}, provides: []Dep{{Name: "bar"}}}
	baz := &fakeHeader{name: "baz", evr: EVR{Version: "1.0"}, requires: []Dep{{Name: "bar"}}}
	barOffset := db.install(bar)
	bazOffset := db.install(baz)

	ts := NewTransactionSet(db)
	if err := RemovePackage(ts, bar, barOffset, NoKey); err != nil {
		t.Fatalf("RemovePackage(bar): %v", err)
	}
	if err := RemovePackage(ts, baz, bazOffset, NoKey); err != nil {
		t.Fatalf("RemovePackage(baz): %v", err)
	}

	if err := Check(ts); err != nil {
		t.Fatalf("Check: %v", err)
	}
	if !ts.Problems().Empty() {
		t.Errorf("Problems() = %v, want none (baz removed too)", ts.Problems().Problems())
	}
}

// fakeDB is a minimal PackageDB for whitebox tests.
type fakeDB struct {
	records []fakeRecord
	opened  bool
}

type fakeRecord struct {
	h      Header
	offset int64
}

func (db *fakeDB) install(h Header) int64 {
	offset := int64(len(db.records))
	db.records = append(db.records, fakeRecord{h: h, offset: offset})
	return offset
}

func (db *fakeDB) Open() error  { db.opened = true; return nil }
func (db *fakeDB) Close() error { db.opened = false; return nil }

func (db *fakeDB) Init(tag QueryTag, value string) (DBIterator, error) {
	var matches []fakeRecord
	for _, r := range db.records {
		if fakeRecordMatches(r.h, tag, value) {
			matches = append(matches, r)
		}
	}
	return &fakeIterator{records: matches}, nil
}

func fakeRecordMatches(h Header, tag QueryTag, value string) bool {
	switch tag {
	case QueryName:
		return h.Name() == value
	case QueryProvideName:
		for _, d := range h.Provides() {
			if d.Name == value {
				return true
			}
		}
		return h.Name() == value
	case QueryRequireName:
		for _, d := range h.Requires() {
			if d.Name == value {
				return true
			}
		}
		return false
	case QueryConflictName:
		for _, d := range h.Conflicts() {
			if d.Name == value {
				return true
			}
		}
		return false
	case QueryBaseNames:
		for _, f := range h.Files() {
			if f == value {
				return true
			}
		}
		return false
	default:
		return false
	}
}

type fakeIterator struct {
	records []fakeRecord
	pos     int
}

func (it *fakeIterator) Next() (Header, int64, bool) {
	if it.pos >= len(it.records) {
		return nil, 0, false
	}
	r := it.records[it.pos]
	it.pos++
	return r.h, r.offset, true
}

func (it *fakeIterator) Prune(offsets []int64) {
	if len(offsets) == 0 {
		return
	}
	pruned := make(map[int64]bool, len(offsets))
	for _, o := range offsets {
		pruned[o] = true
	}
	kept := it.records[:0:0]
	for _, r := range it.records {
		if !pruned[r.offset] {
			kept = append(kept, r)
		}
	}
	it.records = kept
}

func (it *fakeIterator) Close() error { return nil }
