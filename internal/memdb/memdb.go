// Copyright 2016 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package memdb is an in-memory depengine.PackageDB, depengine.Header and
// depengine.MacroExpander implementation for tests: a fixture catalog in
// the spirit of the teacher's bestiary_test.go, adapted from semver
// project atoms to RPM-style headers with Requires/Provides/Conflicts/
// Obsoletes dependency sets.
package memdb

import (
	"sort"
	"strings"

	"github.com/rpmtrans/depengine"
)

// Package is a depengine.Header backed by plain Go fields.
type Package struct {
	PkgName      string
	PkgEVR       depengine.EVR
	PkgRequires  []depengine.Dep
	PkgProvides  []depengine.Dep
	PkgConflicts []depengine.Dep
	PkgObsoletes []depengine.Dep
	PkgFiles     []string
	Source       bool
	Multilib     uint32
}

var _ depengine.Header = (*Package)(nil)

func (p *Package) Name() string               { return p.PkgName }
func (p *Package) EVR() depengine.EVR         { return p.PkgEVR }
func (p *Package) Requires() []depengine.Dep  { return p.PkgRequires }
func (p *Package) Provides() []depengine.Dep  { return p.PkgProvides }
func (p *Package) Conflicts() []depengine.Dep { return p.PkgConflicts }
func (p *Package) Obsoletes() []depengine.Dep { return p.PkgObsoletes }
func (p *Package) Files() []string            { return p.PkgFiles }
func (p *Package) IsSourcePackage() bool      { return p.Source }
func (p *Package) MultilibMask() uint32       { return p.Multilib }

// NewPackage returns a minimal Package named name at version ver (plain
// "version" or "version-release", optionally prefixed "epoch:").
func NewPackage(name, ver string) *Package {
	return &Package{PkgName: name, PkgEVR: ParseEVR(ver)}
}

// WithRequires parses deps (see ParseDep) and appends them to p's
// Requires, returning p for fixture-building chains:
// memdb.NewPackage("a", "1").WithRequires("b").
func (p *Package) WithRequires(deps ...string) *Package {
	for _, d := range deps {
		p.PkgRequires = append(p.PkgRequires, ParseDep(d))
	}
	return p
}

func (p *Package) WithProvides(deps ...string) *Package {
	for _, d := range deps {
		p.PkgProvides = append(p.PkgProvides, ParseDep(d))
	}
	return p
}

func (p *Package) WithConflicts(deps ...string) *Package {
	for _, d := range deps {
		p.PkgConflicts = append(p.PkgConflicts, ParseDep(d))
	}
	return p
}

func (p *Package) WithObsoletes(deps ...string) *Package {
	for _, d := range deps {
		p.PkgObsoletes = append(p.PkgObsoletes, ParseDep(d))
	}
	return p
}

func (p *Package) WithFiles(files ...string) *Package {
	p.PkgFiles = append(p.PkgFiles, files...)
	return p
}

// ParseEVR parses "[epoch:]version[-release]" into an EVR.
func ParseEVR(s string) depengine.EVR {
	var evr depengine.EVR
	if i := strings.IndexByte(s, ':'); i >= 0 {
		var epoch int
		for _, c := range s[:i] {
			epoch = epoch*10 + int(c-'0')
		}
		evr.Epoch = &epoch
		s = s[i+1:]
	}
	if i := strings.IndexByte(s, '-'); i >= 0 {
		evr.Release = s[i+1:]
		s = s[:i]
	}
	evr.Version = s
	return evr
}

// ParseDep parses a terse fixture string into a Dep: "name", "name op
// evr" (op one of <, <=, =, >=, >), or "/path" for a file dependency.
// "name PREREQ" and "name SCRIPT_PRE" etc. append the named sense bit.
func ParseDep(s string) depengine.Dep {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return depengine.Dep{}
	}

	dep := depengine.Dep{Name: fields[0]}
	rest := fields[1:]

	if len(rest) >= 2 {
		if flags, ok := opFlags(rest[0]); ok {
			dep.Flags |= flags
			dep.EVR = ParseEVR(rest[1])
			rest = rest[2:]
		}
	}

	for _, tok := range rest {
		dep.Flags |= namedFlag(tok)
	}

	return dep
}

func opFlags(op string) (depengine.SenseFlags, bool) {
	switch op {
	case "<":
		return depengine.FlagLess, true
	case "<=":
		return depengine.FlagLess | depengine.FlagEqual, true
	case "=":
		return depengine.FlagEqual, true
	case ">=":
		return depengine.FlagGreater | depengine.FlagEqual, true
	case ">":
		return depengine.FlagGreater, true
	default:
		return 0, false
	}
}

func namedFlag(tok string) depengine.SenseFlags {
	switch tok {
	case "PREREQ":
		return depengine.FlagPreReq
	case "SCRIPT_PRE":
		return depengine.FlagScriptPre
	case "SCRIPT_POST":
		return depengine.FlagScriptPost
	case "SCRIPT_PREUN":
		return depengine.FlagScriptPreUn
	case "SCRIPT_POSTUN":
		return depengine.FlagScriptPostUn
	case "MULTILIB":
		return depengine.FlagMultilib
	default:
		return 0
	}
}

// record is one installed-database entry: a header plus its stable
// offset.
type record struct {
	h      depengine.Header
	offset int64
}

// DB is an in-memory depengine.PackageDB: every Install call appends a
// record at the next offset, and Init linear-scans for matches, exactly
// the "flat slice, scan on query" shape a fixture database needs.
type DB struct {
	records []record
	opened  bool
}

var _ depengine.PackageDB = (*DB)(nil)

// New returns an empty DB.
func New() *DB { return &DB{} }

// Install adds h to the database at the next offset and returns that
// offset.
func (db *DB) Install(h depengine.Header) int64 {
	offset := int64(len(db.records))
	db.records = append(db.records, record{h: h, offset: offset})
	return offset
}

func (db *DB) Open() error  { db.opened = true; return nil }
func (db *DB) Close() error { db.opened = false; return nil }

func (db *DB) Init(tag depengine.QueryTag, value string) (depengine.DBIterator, error) {
	var matches []record
	for _, r := range db.records {
		if recordMatches(r.h, tag, value) {
			matches = append(matches, r)
		}
	}
	return &iterator{records: matches}, nil
}

func recordMatches(h depengine.Header, tag depengine.QueryTag, value string) bool {
	switch tag {
	case depengine.QueryName:
		return h.Name() == value
	case depengine.QueryProvideName:
		for _, d := range h.Provides() {
			if d.Name == value {
				return true
			}
		}
		return h.Name() == value
	case depengine.QueryRequireName:
		for _, d := range h.Requires() {
			if d.Name == value {
				return true
			}
		}
		return false
	case depengine.QueryConflictName:
		for _, d := range h.Conflicts() {
			if d.Name == value {
				return true
			}
		}
		return false
	case depengine.QueryBaseNames:
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

// iterator is the depengine.DBIterator produced by DB.Init.
type iterator struct {
	records []record
	pos     int
}

var _ depengine.DBIterator = (*iterator)(nil)

func (it *iterator) Next() (depengine.Header, int64, bool) {
	if it.pos >= len(it.records) {
		return nil, 0, false
	}
	r := it.records[it.pos]
	it.pos++
	return r.h, r.offset, true
}

func (it *iterator) Prune(offsets []int64) {
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

func (it *iterator) Close() error { return nil }

// Expander is a depengine.MacroExpander backed by a plain map, keyed by
// the literal macro string passed to Expand.
type Expander map[string]string

var _ depengine.MacroExpander = Expander(nil)

func (e Expander) Expand(macro string) string { return e[macro] }

// SortedNames returns every package name currently installed in db, sorted
// -- a convenience for assertions in tests.
func (db *DB) SortedNames() []string {
	names := make([]string, 0, len(db.records))
	for _, r := range db.records {
		names = append(names, r.h.Name())
	}
	sort.Strings(names)
	return names
}
