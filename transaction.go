// Copyright 2016 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package depengine

import (
	"sort"

	"github.com/rpmtrans/depengine/log"
)

// TransactionSet is the TS of §3: the complete state of one proposed
// transaction, combining the ordered element list, the added- and
// available-package indices, a lazily opened database handle, the
// dependency cache gate, and the accumulated problem set.
type TransactionSet struct {
	order          []*Element
	removedOffsets []int64 // sorted, deduplicated (§3 invariant 1)

	addedPackages     *AddedIndex
	availablePackages *AddedIndex

	db     PackageDB
	dbOpen bool // true if *this TS* holds the handle open

	cache        DependencyCache
	cacheEnabled bool

	probs  ProblemSet
	solver Solver
	macro  MacroExpander

	Logger *log.Logger

	// Chainsaw selects whether presentation order is preserved across
	// tsort ties (true) or upgrade REMOVEs are pulled immediately after
	// their triggering ADD (false, the default) -- §4.7 T5, T-final.
	Chainsaw bool

	// NoSuggests disables invoking the solver callback during
	// Unsatisfied (§4.4 step 6).
	NoSuggests bool

	// RescanBudget bounds how many times the orderer will retry T5 after
	// breaking co-requisite edges (§4.7 T8.4). Zero selects the default
	// of 10.
	RescanBudget int
}

// NewTransactionSet constructs an empty TS. db may be nil if the caller
// never needs database-backed satisfaction checks (e.g. pure in-memory
// scenarios against only added packages).
func NewTransactionSet(db PackageDB) *TransactionSet {
	return &TransactionSet{
		addedPackages:     NewAddedIndex(),
		availablePackages: NewAddedIndex(),
		db:                db,
		cacheEnabled:      false,
		Logger:            log.New(discard{}),
		RescanBudget:      10,
	}
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }

// SetCache installs a DependencyCache and enables write-through caching.
func (ts *TransactionSet) SetCache(c DependencyCache) {
	ts.cache = c
	ts.cacheEnabled = c != nil
}

// SetSolver installs the advisory suggester callback (§9).
func (ts *TransactionSet) SetSolver(s Solver) { ts.solver = s }

// SetMacroExpander installs the collaborator used to resolve the
// cycle-ignore whiteout list (§4.6).
func (ts *TransactionSet) SetMacroExpander(m MacroExpander) { ts.macro = m }

// Order returns every transaction element in its current sequence.
func (ts *TransactionSet) Order() []*Element { return append([]*Element(nil), ts.order...) }

// Len returns the number of elements currently in the transaction.
func (ts *TransactionSet) Len() int { return len(ts.order) }

// AddedPackages exposes the added-package index for read access (tests,
// CLI reporting).
func (ts *TransactionSet) AddedPackages() *AddedIndex { return ts.addedPackages }

// AvailablePackages exposes the available-package (suggester) index.
func (ts *TransactionSet) AvailablePackages() *AddedIndex { return ts.availablePackages }

// Problems returns the accumulated problem set from the last Check call.
func (ts *TransactionSet) Problems() *ProblemSet { return &ts.probs }

// removedOffset reports whether offset has been scheduled for removal,
// via binary search over the sorted removedOffsets slice (§3 invariant 1).
func (ts *TransactionSet) removedOffset(offset int64) bool {
	i := sort.Search(len(ts.removedOffsets), func(i int) bool {
		return ts.removedOffsets[i] >= offset
	})
	return i < len(ts.removedOffsets) && ts.removedOffsets[i] == offset
}

// insertRemovedOffset inserts offset into the sorted, deduplicated set.
func (ts *TransactionSet) insertRemovedOffset(offset int64) {
	i := sort.Search(len(ts.removedOffsets), func(i int) bool {
		return ts.removedOffsets[i] >= offset
	})
	if i < len(ts.removedOffsets) && ts.removedOffsets[i] == offset {
		return
	}
	ts.removedOffsets = append(ts.removedOffsets, 0)
	copy(ts.removedOffsets[i+1:], ts.removedOffsets[i:])
	ts.removedOffsets[i] = offset
}

// ensureDBOpen opens ts.db if it is not already open, recording whether
// this call was the one to open it so the caller can close it again on
// exit (§5 "Shared resources: DB handle").
func (ts *TransactionSet) ensureDBOpen() (openedHere bool, err error) {
	if ts.db == nil {
		return false, nil
	}
	if ts.dbOpen {
		return false, nil
	}
	if err := ts.db.Open(); err != nil {
		return false, &DBOpenError{Cause: err}
	}
	ts.dbOpen = true
	return true, nil
}

func (ts *TransactionSet) closeDBIfOpenedHere(openedHere bool) {
	if openedHere && ts.db != nil {
		ts.db.Close()
		ts.dbOpen = false
	}
}
