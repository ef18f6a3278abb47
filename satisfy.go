// Copyright 2016 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package depengine

import "strings"

// Unsatisfied is the dependency-satisfaction oracle at the heart of the
// checker (§4.4 "unsatisfied"): 0 means dep is satisfied, 1 means it is
// not, 2 signals an internal failure that aborts the whole Check call.
// role only affects the DNEVR cache key; it does not change how dep is
// resolved.
func Unsatisfied(ts *TransactionSet, dep Dep, role Role) (int, error) {
	dnevr := dep.DNEVR(role)

	if ts.cacheEnabled {
		if result, ok := ts.cache.Get(dnevr); ok {
			return result, nil
		}
	}

	if isRPMLibName(dep.Name) {
		if rpmlibSatisfied(dep.Name) {
			return cacheAndReturn(ts, dnevr, 0), nil
		}
		return cacheAndReturn(ts, dnevr, 1), nil
	}

	if _, _, hit := ts.addedPackages.Satisfies(dep); hit {
		return cacheAndReturn(ts, dnevr, 0), nil
	}

	if ts.db != nil && strings.HasPrefix(dep.Name, "/") {
		it, err := ts.db.Init(QueryBaseNames, dep.Name)
		if err != nil {
			return 2, err
		}
		satisfied, err := dbHasSurvivor(it, ts.removedOffsets)
		if err != nil {
			return 2, err
		}
		if satisfied {
			return cacheAndReturn(ts, dnevr, 0), nil
		}
	}

	if ts.db != nil {
		it, err := ts.db.Init(QueryProvideName, dep.Name)
		if err != nil {
			return 2, err
		}
		satisfied, err := dbProvideMatches(it, ts.removedOffsets, dep)
		if err != nil {
			return 2, err
		}
		if satisfied {
			return cacheAndReturn(ts, dnevr, 0), nil
		}
	}

	if !ts.NoSuggests && ts.solver != nil {
		_ = ts.solver(ts, dep) // advisory only; return value discarded
	}

	return cacheAndReturn(ts, dnevr, 1), nil
}

// cacheAndReturn writes result to the cache (if enabled), demoting the
// cache to permanently disabled on a write failure (§4.4 step 8), then
// returns result unchanged.
func cacheAndReturn(ts *TransactionSet, dnevr string, result int) int {
	if ts.cacheEnabled {
		if err := ts.cache.Put(dnevr, result); err != nil {
			ts.cacheEnabled = false
		}
	}
	return result
}

// dbHasSurvivor reports whether it yields any entry whose offset is not in
// removed.
func dbHasSurvivor(it DBIterator, removed []int64) (bool, error) {
	defer it.Close()
	it.Prune(removed)
	_, _, ok := it.Next()
	return ok, nil
}

// dbProvideMatches reports whether any surviving PROVIDENAME hit actually
// matches dep's EVR constraint (§4.1), not merely its name. A header's own
// name-EVR is an implicit self-provide (the same rule AddedIndex.matches
// applies), so a hit that matched only by name (not an explicit Provides
// entry) is checked against the header's own EVR.
func dbProvideMatches(it DBIterator, removed []int64, dep Dep) (bool, error) {
	defer it.Close()
	it.Prune(removed)
	for {
		h, _, ok := it.Next()
		if !ok {
			return false, nil
		}
		for _, prov := range h.Provides() {
			if prov.Name != dep.Name {
				continue
			}
			if matchesEVR(dep.Flags, dep.EVR, prov.Flags, prov.EVR) {
				return true, nil
			}
		}
		if h.Name() == dep.Name && matchesEVR(dep.Flags, dep.EVR, FlagEqual, h.EVR()) {
			return true, nil
		}
	}
}
