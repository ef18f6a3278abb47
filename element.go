// Copyright 2016 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package depengine

// ElementType distinguishes an ADD transaction element (a package being
// installed or upgraded) from a REMOVE element (a package being erased,
// either explicitly or as the trailing half of an upgrade).
type ElementType int

const (
	Add ElementType = iota
	Remove
)

func (t ElementType) String() string {
	if t == Add {
		return "add"
	}
	return "remove"
}

// NoKey marks an AI slot reference that does not resolve to anything --
// NOMATCH in spec.md's terms.
const NoKey = -1

// Element is one node in the transaction (TE, §3).
type Element struct {
	Type   ElementType
	Header Header

	// NEVR/N are display strings derived from Header at construction
	// time so the element keeps a stable identity even if Header's
	// backing store is later mutated by the caller.
	NEVR string
	N    string

	// Key is the caller-supplied external identity; the engine never
	// interprets it.
	Key interface{}

	// AddedKey is this element's own slot in the added-package index
	// (ADD only); NoKey for REMOVE.
	AddedKey int

	// DependsOnKey is the AddedKey of the ADD element that triggered
	// this REMOVE (upgrade-replace or obsolete sweep); NoKey otherwise.
	DependsOnKey int

	// MultilibMask is the 32-bit color mask driving the checker's
	// multilib requirement filter (§4.5's multilib mixing rule).
	MultilibMask uint32

	// Relocations is an optional list of path relocations requested for
	// this element; the engine does not interpret its contents.
	Relocations []string

	// tsi is allocated lazily before ordering and released once
	// ordering completes (§3 Lifecycle, §4.7).
	tsi *tsortInfo

	// Ordering output, populated by Order (§3's depth/tree/degree/
	// parent/npreds).
	Depth  int
	Tree   int
	Degree int
	Parent *Element
	NPreds int
}

// requiresSet builds a positionally indexed DependencySet over the
// element's Requires, for use by the checker and orderer.
func (e *Element) requiresSet() *DependencySet {
	return NewDependencySet(RoleRequires, e.Header.Requires())
}

func (e *Element) conflictsSet() *DependencySet {
	return NewDependencySet(RoleConflicts, e.Header.Conflicts())
}

func (e *Element) providesSet() *DependencySet {
	return NewDependencySet(RoleProvides, e.Header.Provides())
}

func (e *Element) obsoletesSet() *DependencySet {
	return NewDependencySet(RoleObsoletes, e.Header.Obsoletes())
}

// newElement builds an Element from h, deriving NEVR/N once up front.
func newElement(t ElementType, h Header, key interface{}) *Element {
	evr := h.EVR()
	nevr := h.Name()
	if !evr.Empty() {
		nevr = h.Name() + "-" + evr.String()
	}
	return &Element{
		Type:         t,
		Header:       h,
		NEVR:         nevr,
		N:            h.Name(),
		Key:          key,
		AddedKey:     NoKey,
		DependsOnKey: NoKey,
	}
}
