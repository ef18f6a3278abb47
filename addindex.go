// Copyright 2016 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package depengine

import (
	"sort"

	"github.com/armon/go-radix"
)

// AddedIndex is the added-package index (AI, §4.3): a keyed associative
// structure mapping a provide-name or file path to the set of ADD elements
// that satisfy it. Provide names and file paths are kept in two separate
// radix trees (the machinery the teacher's typed_radix.go used for
// import-path deduction), each looked up by exact key: a file dependency
// matches only an identical owned path, with no directory-prefix matching.
type AddedIndex struct {
	slots []*Element // index == AddedKey; nil once freed

	names *radix.Tree // provide name -> []int slot indices
	files *radix.Tree // exact file path -> []int slot indices
	built bool
}

// NewAddedIndex returns an empty AddedIndex.
func NewAddedIndex() *AddedIndex {
	return &AddedIndex{names: radix.New(), files: radix.New()}
}

// Add inserts elem into the index. If hint is NoKey, a fresh slot is
// allocated; otherwise the existing slot at hint is reused and replaced
// (the duplicate-add slot-reuse behavior of §4.5/§9). Add returns the slot
// key, or NoKey if hint pointed outside the current slot range.
func (ai *AddedIndex) Add(hint int, elem *Element) int {
	var key int
	if hint == NoKey {
		key = len(ai.slots)
		ai.slots = append(ai.slots, elem)
	} else {
		if hint < 0 || hint >= len(ai.slots) {
			return NoKey
		}
		key = hint
		ai.slots[key] = elem
	}
	elem.AddedKey = key
	ai.built = false
	return key
}

// LookupExact returns the element stored at key, or nil if key is stale or
// out of range.
func (ai *AddedIndex) LookupExact(key int) *Element {
	if key < 0 || key >= len(ai.slots) {
		return nil
	}
	return ai.slots[key]
}

// MakeIndex (re)builds the inverted provide-name and file-path maps from
// every live slot. Called lazily by Satisfies/AllSatisfies, and explicitly
// by the checker before a run (§4.4 step 3).
func (ai *AddedIndex) MakeIndex() {
	ai.names = radix.New()
	ai.files = radix.New()

	for key, e := range ai.slots {
		if e == nil {
			continue
		}
		for _, p := range e.Header.Provides() {
			ai.insert(ai.names, p.Name, key)
		}
		// The package's own name-EVR is an implicit self-provide.
		ai.insert(ai.names, e.N, key)
		for _, f := range e.Header.Files() {
			ai.insert(ai.files, f, key)
		}
	}
	ai.built = true
}

func (ai *AddedIndex) insert(t *radix.Tree, k string, key int) {
	if v, ok := t.Get(k); ok {
		t.Insert(k, append(v.([]int), key))
	} else {
		t.Insert(k, []int{key})
	}
}

func (ai *AddedIndex) ensureBuilt() {
	if !ai.built {
		ai.MakeIndex()
	}
}

// candidateKeys returns the slot keys that might satisfy dep: file-path
// entries (name begins with "/") are looked up by exact path; everything
// else is looked up by provide name.
func (ai *AddedIndex) candidateKeys(dep Dep) []int {
	ai.ensureBuilt()

	if len(dep.Name) > 0 && dep.Name[0] == '/' {
		if v, ok := ai.files.Get(dep.Name); ok {
			return v.([]int)
		}
		return nil
	}
	if v, ok := ai.names.Get(dep.Name); ok {
		return v.([]int)
	}
	return nil
}

// Satisfies returns the single best ADD element that satisfies dep, plus
// its external key, preferring the newest EVR when more than one element
// provides the same name (§4.3). It returns ok == false if nothing
// matches.
func (ai *AddedIndex) Satisfies(dep Dep) (externalKey interface{}, addedKey int, ok bool) {
	keys := ai.candidateKeys(dep)
	best := NoKey
	for _, k := range keys {
		e := ai.slots[k]
		if e == nil {
			continue
		}
		if !ai.matches(e, dep) {
			continue
		}
		if best == NoKey || compareEVR(e.Header.EVR(), ai.slots[best].Header.EVR()) > 0 {
			best = k
		}
	}
	if best == NoKey {
		return nil, NoKey, false
	}
	return ai.slots[best].Key, best, true
}

// AllSatisfies returns the external keys of every ADD element that
// satisfies dep, in deterministic (slot) order -- used as suggestion
// candidates for the checker's problem set (§4.4 step 4 "missing").
func (ai *AddedIndex) AllSatisfies(dep Dep) []interface{} {
	keys := ai.candidateKeys(dep)
	sorted := append([]int(nil), keys...)
	sort.Ints(sorted)

	var out []interface{}
	for _, k := range sorted {
		e := ai.slots[k]
		if e == nil || !ai.matches(e, dep) {
			continue
		}
		out = append(out, e.Key)
	}
	return out
}

// matches decides whether e satisfies dep: a file-path dependency matches
// any element owning that exact path (no version comparison applies to
// files); a name dependency matches if any of e's provides (or its own
// NEVR, as an implicit self-provide) satisfy dep's version constraint.
func (ai *AddedIndex) matches(e *Element, dep Dep) bool {
	if len(dep.Name) > 0 && dep.Name[0] == '/' {
		for _, f := range e.Header.Files() {
			if f == dep.Name {
				return true
			}
		}
		return false
	}

	for _, p := range e.Header.Provides() {
		if p.Name != dep.Name {
			continue
		}
		if matchesEVR(dep.Flags, dep.EVR, p.Flags, p.EVR) {
			return true
		}
	}
	if e.N == dep.Name {
		if matchesEVR(dep.Flags, dep.EVR, FlagEqual, e.Header.EVR()) {
			return true
		}
	}
	return false
}
