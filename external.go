// Copyright 2016 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package depengine

// This file describes the external collaborators the engine consults (§6):
// the header accessor, the package database iterator, the macro expander,
// and the suggester callback. The engine never implements these itself --
// internal/memdb and internal/fsdb provide reference implementations for
// tests and for a filesystem-backed database, respectively.

// Header is an opaque handle for tag lookups over a single package. A real
// implementation typically wraps a generic tag/value accessor; this engine
// asks only for the specific tags listed in spec.md §6 (NAME, VERSION,
// RELEASE, EPOCH, REQUIRE*/PROVIDE*/CONFLICT*/OBSOLETE*, BASENAMES,
// DIRNAMES, DIRINDEXES, SOURCEPACKAGE, MULTILIBS), so they are exposed
// directly as typed methods rather than as a generic has_tag/get_entry
// pair -- see DESIGN.md for why.
type Header interface {
	// Name is the package name (NAME tag).
	Name() string
	// EVR is the package's own (epoch, version, release).
	EVR() EVR
	// Requires returns the header's Requires dependency set.
	Requires() []Dep
	// Provides returns the header's Provides dependency set.
	Provides() []Dep
	// Conflicts returns the header's Conflicts dependency set.
	Conflicts() []Dep
	// Obsoletes returns the header's Obsoletes dependency set.
	Obsoletes() []Dep
	// Files returns every file path owned by the package (BASENAMES +
	// DIRNAMES + DIRINDEXES, reassembled).
	Files() []string
	// IsSourcePackage reports the SOURCEPACKAGE tag.
	IsSourcePackage() bool
	// MultilibMask reports the MULTILIBS tag, or 0 if absent.
	MultilibMask() uint32
}

// QueryTag names a package-database query dimension (§6: "Supported query
// tags").
type QueryTag string

const (
	QueryProvideName  QueryTag = "PROVIDENAME"
	QueryBaseNames    QueryTag = "BASENAMES"
	QueryRequireName  QueryTag = "REQUIRENAME"
	QueryConflictName QueryTag = "CONFLICTNAME"
	QueryName         QueryTag = "NAME"
)

// DBIterator yields (header, offset) pairs for one database query and
// supports offset-based pruning (§3 invariant 1: removed_offsets is used to
// prune database iterators).
type DBIterator interface {
	// Next advances the iterator. ok is false once exhausted.
	Next() (h Header, offset int64, ok bool)
	// Prune removes, from the remainder of the iteration, any entry whose
	// offset is in offsets.
	Prune(offsets []int64)
	// Close releases cursor resources. Safe to call more than once.
	Close() error
}

// PackageDB is the read-only view of the installed package database (§1:
// "out of scope... consulted through well-defined operations").
type PackageDB interface {
	// Open opens the database for read-only access. Idempotent.
	Open() error
	// Close releases the database handle. Idempotent.
	Close() error
	// Init begins an iteration over records matching tag/value.
	Init(tag QueryTag, value string) (DBIterator, error)
}

// MacroExpander expands a macro reference, e.g. the whiteout list's
// "%{?_dependency_whiteout}" (§4.6).
type MacroExpander interface {
	Expand(macro string) string
}

// Solver is the advisory suggester callback (§4.4 step 6, §9 "solver
// callback"). Its return value is discarded by the engine; the callback
// may have side effects (e.g. queuing a candidate for later display) but
// cannot change whether a dependency is judged satisfied.
type Solver func(ts *TransactionSet, dep Dep) error
