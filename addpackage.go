// Copyright 2016 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package depengine

// AddPackage inserts h into the transaction as an ADD element (§4.5). If an
// ADD element with the same name and EVR already occupies a slot, that slot is
// reused and its TE replaced (§3 invariant 4, §9): a warning is logged and
// the older element is superseded in place rather than appended.
//
// When upgrade is true and h is not a source package, AddPackage also walks
// the installed database for same-named and obsoleted packages, scheduling
// the appropriate REMOVE elements (§4.5).
func AddPackage(ts *TransactionSet, h Header, externalKey interface{}, upgrade bool, relocs []string) error {
	thisEVR := h.EVR()
	thisDep := Dep{Name: h.Name(), Flags: FlagEqual | FlagLess, EVR: thisEVR}

	hint := NoKey
	for _, e := range ts.order {
		if e.Type != Add {
			continue
		}
		otherDep := Dep{Name: e.N, Flags: FlagEqual | FlagLess, EVR: e.Header.EVR()}
		if !thisDep.Equal(otherDep) {
			continue
		}
		ts.Logger.Warnf("%s supersedes already-added %s", h.Name(), e.NEVR)
		hint = e.AddedKey
		break
	}

	elem := newElement(Add, h, externalKey)
	elem.Relocations = relocs

	if hint == NoKey {
		ts.order = append(ts.order, elem)
	} else {
		for i, e := range ts.order {
			if e.Type == Add && e.AddedKey == hint {
				ts.order[i] = elem
				break
			}
		}
	}

	key := ts.addedPackages.Add(hint, elem)
	if key == NoKey {
		if hint == NoKey {
			ts.order = ts.order[:len(ts.order)-1]
		}
		return &IndexRefusalError{NEVR: elem.NEVR}
	}

	if !upgrade || h.IsSourcePackage() {
		return nil
	}

	// The DB handle opened here is left open for the rest of the TS's
	// lifetime (§5: "otherwise it lives with the TS"); only Check's own
	// open is paired with a matching close.
	if _, err := ts.ensureDBOpen(); err != nil {
		return err
	}

	if err := scheduleSameNameRemovals(ts, elem); err != nil {
		return err
	}
	if err := scheduleObsoletesRemovals(ts, elem); err != nil {
		return err
	}

	return nil
}

// scheduleSameNameRemovals walks the installed database for headers
// providing elem's own name: a differing version is scheduled for
// replacement; a matching version applies the multilib mixing rule
// instead of being removed (§4.5).
func scheduleSameNameRemovals(ts *TransactionSet, elem *Element) error {
	if ts.db == nil {
		return nil
	}
	it, err := ts.db.Init(QueryProvideName, elem.N)
	if err != nil {
		return err
	}
	defer it.Close()

	for {
		h, offset, ok := it.Next()
		if !ok {
			return nil
		}
		if ts.removedOffset(offset) {
			continue
		}

		if compareEVR(h.EVR(), elem.Header.EVR()) != 0 {
			if err := RemovePackage(ts, h, offset, elem.AddedKey); err != nil {
				return err
			}
			continue
		}

		dbMask := h.MultilibMask()
		if dbMask != 0 && elem.MultilibMask != 0 && dbMask&elem.MultilibMask == 0 {
			elem.MultilibMask = dbMask
		}
	}
}

// scheduleObsoletesRemovals walks elem's Obsoletes entries and schedules
// removal of any installed package whose provide matches, honoring the
// legacy unversioned-obsoletes-matches-all rule (§4.5, §9).
func scheduleObsoletesRemovals(ts *TransactionSet, elem *Element) error {
	if ts.db == nil {
		return nil
	}

	obsoletes := elem.obsoletesSet()
	for obsoletes.Next() >= 0 {
		obs := obsoletes.GetDep()
		if obs.Name == elem.N {
			continue
		}

		it, err := ts.db.Init(QueryProvideName, obs.Name)
		if err != nil {
			return err
		}

		for {
			h, offset, ok := it.Next()
			if !ok {
				break
			}
			if ts.removedOffset(offset) {
				continue
			}

			matched := legacyObsoletesAllowAll(obs.Flags, obs.EVR)
			if !matched {
				for _, prov := range h.Provides() {
					if prov.Name != obs.Name {
						continue
					}
					if matchesEVR(obs.Flags, obs.EVR, prov.Flags, prov.EVR) {
						matched = true
						break
					}
				}
			}
			if !matched && h.Name() == obs.Name {
				matched = matchesEVR(obs.Flags, obs.EVR, FlagEqual, h.EVR())
			}
			if matched {
				if err := RemovePackage(ts, h, offset, elem.AddedKey); err != nil {
					it.Close()
					return err
				}
			}
		}
		it.Close()
	}
	return nil
}

// AddAvailable registers h as a candidate in the suggester domain
// (available_packages, §3): it never participates in ordering or
// checking directly, only as a source of suggestions for MISSING
// problems (§4.4 step 4).
func AddAvailable(ts *TransactionSet, h Header, externalKey interface{}) {
	elem := newElement(Add, h, externalKey)
	ts.availablePackages.Add(NoKey, elem)
}

// RemovePackage schedules offset (an installed-database record) for
// removal, inserting a REMOVE TE into ts.order. dependsOnKey is the
// AddedKey of the ADD element that triggered this removal (upgrade or
// obsoletes sweep), or NoKey for an explicit user-requested removal. A
// repeat request for an already-scheduled offset is a no-op (§4.5).
func RemovePackage(ts *TransactionSet, h Header, offset int64, dependsOnKey int) error {
	if ts.removedOffset(offset) {
		return nil
	}
	ts.insertRemovedOffset(offset)

	elem := newElement(Remove, h, nil)
	elem.DependsOnKey = dependsOnKey
	ts.order = append(ts.order, elem)
	return nil
}
