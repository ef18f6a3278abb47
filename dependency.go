// Copyright 2016 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package depengine

import "fmt"

// Role identifies which dependency role a DependencySet entry belongs to.
type Role int

const (
	RoleRequires Role = iota
	RoleProvides
	RoleConflicts
	RoleObsoletes
)

// roleChar is the DNEVR role-char: one of "PRrCO" (§3). The 'r' variant
// (reduced prereq) is chosen by classifyRole below, not stored here.
func (r Role) roleChar() byte {
	switch r {
	case RoleProvides:
		return 'P'
	case RoleConflicts:
		return 'C'
	case RoleObsoletes:
		return 'O'
	default:
		return 'R'
	}
}

// Dep is a single (name, EVR, flags) entry of a DependencySet.
type Dep struct {
	Name  string
	EVR   EVR
	Flags SenseFlags
}

// classifyRole chooses the DNEVR role-char for a Requires entry: 'r' for a
// reduced prereq (legacy PREREQ without an install/erase script phase
// bit), 'R' otherwise. Provides/Conflicts/Obsoletes never reduce.
func classifyRole(role Role, flags SenseFlags) byte {
	if role == RoleRequires && flags.IsLegacyPreReq() && !flags.IsInstallPreReq() && !flags.IsErasePreReq() {
		return 'r'
	}
	return role.roleChar()
}

// DNEVR renders the canonical cache-key string for d under role: "<role-char>
// <name>[ <op> <EVR>]". This must be stable across invocations since it is
// the dependency cache's key.
func (d Dep) DNEVR(role Role) string {
	rc := classifyRole(role, d.Flags)
	if d.Flags.sense() == 0 || d.EVR.Empty() {
		return fmt.Sprintf("%c %s", rc, d.Name)
	}
	return fmt.Sprintf("%c %s %s %s", rc, d.Name, senseOp(d.Flags), d.EVR)
}

func senseOp(f SenseFlags) string {
	switch f.sense() {
	case FlagLess:
		return "<"
	case FlagLess | FlagEqual:
		return "<="
	case FlagEqual:
		return "="
	case FlagGreater | FlagEqual:
		return ">="
	case FlagGreater:
		return ">"
	default:
		return "?"
	}
}

// Equal reports whether d and o carry the same name, EVR, and sense bits --
// the comparison used for duplicate-add detection (§4.5: "if an ADD
// element's NAME-DS compares non-zero with this_dep").
func (d Dep) Equal(o Dep) bool {
	return d.Name == o.Name && d.Flags.sense() == o.Flags.sense() && d.EVR == o.EVR
}

// DependencySet is an iterable, positionally indexed list of dependency
// entries attached to a header under a single Role. It provides the lazy
// cursor described in §4.2.
type DependencySet struct {
	role    Role
	entries []Dep
	cur     int
}

// NewDependencySet builds a DependencySet over entries, attached under role.
func NewDependencySet(role Role, entries []Dep) *DependencySet {
	return &DependencySet{role: role, entries: entries, cur: -1}
}

// Role returns the role this set was built under.
func (ds *DependencySet) Role() Role { return ds.role }

// Len returns the number of entries.
func (ds *DependencySet) Len() int { return len(ds.entries) }

// Init resets the cursor to before the first entry.
func (ds *DependencySet) Init() { ds.cur = -1 }

// Next advances the cursor and returns the new index, or -1 once the set
// is exhausted.
func (ds *DependencySet) Next() int {
	if ds == nil {
		return -1
	}
	ds.cur++
	if ds.cur >= len(ds.entries) {
		ds.cur = len(ds.entries)
		return -1
	}
	return ds.cur
}

// CurrentIndex returns the cursor's current position.
func (ds *DependencySet) CurrentIndex() int { return ds.cur }

// SetIndex repositions the cursor directly at i.
func (ds *DependencySet) SetIndex(i int) { ds.cur = i }

func (ds *DependencySet) at() (Dep, bool) {
	if ds == nil || ds.cur < 0 || ds.cur >= len(ds.entries) {
		return Dep{}, false
	}
	return ds.entries[ds.cur], true
}

// GetName returns the name at the cursor, or "" past the end.
func (ds *DependencySet) GetName() string {
	d, _ := ds.at()
	return d.Name
}

// GetEVR returns the EVR at the cursor.
func (ds *DependencySet) GetEVR() EVR {
	d, _ := ds.at()
	return d.EVR
}

// GetFlags returns the sense/qualifier flags at the cursor.
func (ds *DependencySet) GetFlags() SenseFlags {
	d, _ := ds.at()
	return d.Flags
}

// GetDep returns the full entry at the cursor.
func (ds *DependencySet) GetDep() Dep {
	d, _ := ds.at()
	return d
}

// GetDNEVR returns the canonical cache-key string for the entry at the
// cursor.
func (ds *DependencySet) GetDNEVR() string {
	d, ok := ds.at()
	if !ok {
		return ""
	}
	return d.DNEVR(ds.role)
}

// All returns every entry, ignoring cursor position.
func (ds *DependencySet) All() []Dep {
	if ds == nil {
		return nil
	}
	return ds.entries
}
