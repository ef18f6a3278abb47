// Copyright 2016 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package depengine

import "github.com/pkg/errors"

// Check is the checker's entry point (§4.4): it validates every ADD
// element's Requires/Conflicts against the added and installed packages,
// and confirms every REMOVE element is not still depended upon. The
// accumulated ProblemSet (ts.Problems()) is the externally visible
// diagnostic: a removal that leaves an installed dependent unsatisfied is
// recorded there as a Missing problem, not returned as an error. A non-nil
// error indicates an internal failure (database open or query; cache I/O
// is never fatal).
func Check(ts *TransactionSet) error {
	openedHere, err := ts.ensureDBOpen()
	if err != nil {
		return err
	}
	defer ts.closeDBIfOpenedHere(openedHere)

	ts.probs.Reset()

	ts.addedPackages.MakeIndex()
	ts.availablePackages.MakeIndex()

	for _, p := range ts.order {
		if p.Type != Add {
			continue
		}
		if err := checkPackageDeps(ts, p, "", p.MultilibMask); err != nil {
			return err
		}
		for _, prov := range p.Header.Provides() {
			if err := checkDependentConflicts(ts, prov.Name); err != nil {
				return err
			}
		}
	}

	for _, p := range ts.order {
		if p.Type != Remove {
			continue
		}
		names := make([]string, 0, len(p.Header.Provides())+len(p.Header.Files()))
		for _, prov := range p.Header.Provides() {
			names = append(names, prov.Name)
		}
		names = append(names, p.Header.Files()...)
		for _, name := range names {
			if err := checkDependentPackages(ts, name); err != nil {
				return err
			}
		}
	}

	return nil
}

// checkPackageDeps walks requires and conflicts, pushing problems for
// anything unsatisfied or newly conflicting (§4.4 "check_package_deps").
// filter, if non-empty, restricts the scan to a single dependency name.
func checkPackageDeps(ts *TransactionSet, p *Element, filter string, multilib uint32) error {
	requires := p.requiresSet()
	for requires.Next() >= 0 {
		dep := requires.GetDep()
		if filter != "" && dep.Name != filter {
			continue
		}
		if multilib != 0 && dep.Flags&FlagMultilib == 0 {
			continue
		}

		rc, err := Unsatisfied(ts, dep, RoleRequires)
		if err != nil {
			return err
		}
		if rc == 1 {
			ts.probs.Add(Problem{
				Kind:        Missing,
				NEVR:        p.NEVR,
				DNEVR:       dep.DNEVR(RoleRequires),
				Dep:         dep,
				Role:        RoleRequires,
				Suggestions: ts.availablePackages.AllSatisfies(dep),
			})
		}
	}

	conflicts := p.conflictsSet()
	for conflicts.Next() >= 0 {
		dep := conflicts.GetDep()
		if filter != "" && dep.Name != filter {
			continue
		}
		if multilib != 0 && dep.Flags&FlagMultilib == 0 {
			continue
		}

		// A conflict dependency is checked the same way a requirement
		// is: rc == 0 means "satisfied", i.e. a conflicting package is
		// actually present, which is the problem case here (§4.4:
		// "0 means the conflict IS satisfied... push problem").
		rc, err := Unsatisfied(ts, dep, RoleConflicts)
		if err != nil {
			return err
		}
		if rc == 0 {
			ts.probs.Add(Problem{
				Kind:  Conflict,
				NEVR:  p.NEVR,
				DNEVR: dep.DNEVR(RoleConflicts),
				Dep:   dep,
				Role:  RoleConflicts,
			})
		}
	}

	return nil
}

// checkDependentConflicts checks provideName (something an ADD element now
// provides) against every installed package's Conflicts, via checkPackageSet
// (§4.4 step 4). Every match is recorded as a problem and the scan goes
// on; only an internal error stops it. Matching the original
// (checkDependentConflicts in depends.c), only the installed database is
// consulted here -- sibling ADD elements' conflicts are already covered
// when each of them runs its own checkPackageDeps in Check's ADD loop.
func checkDependentConflicts(ts *TransactionSet, provideName string) error {
	if ts.db == nil {
		return nil
	}
	it, err := ts.db.Init(QueryConflictName, provideName)
	if err != nil {
		return errors.Wrap(err, "querying installed conflicts")
	}
	return checkPackageSet(ts, provideName, it)
}

// checkDependentPackages checks name (a provide name or owned file path of
// a REMOVE element) against every installed package's Requires, via
// checkPackageSet (§4.4 step 5). A dependent left unsatisfied is recorded
// as a Missing problem; only an internal error is returned.
func checkDependentPackages(ts *TransactionSet, name string) error {
	if ts.db == nil {
		return nil
	}
	it, err := ts.db.Init(QueryRequireName, name)
	if err != nil {
		return errors.Wrap(err, "querying installed requires")
	}
	return checkPackageSet(ts, name, it)
}

// checkPackageSet prunes it by the removed-offset set and, for every
// surviving installed header, runs checkPackageDeps filtered to depName --
// reusing the exact same satisfiability machinery Check uses for ADD
// elements, rather than duplicating it (depends.c's checkPackageSet does
// the same: "Adding: check name/provides dep against conflicts matches.
// Erasing: check name/provides/filename dep against requiredby matches").
func checkPackageSet(ts *TransactionSet, depName string, it DBIterator) error {
	defer it.Close()
	it.Prune(ts.removedOffsets)

	for {
		h, _, ok := it.Next()
		if !ok {
			return nil
		}
		elem := newElement(Add, h, nil)
		if err := checkPackageDeps(ts, elem, depName, 0); err != nil {
			return err
		}
	}
}
