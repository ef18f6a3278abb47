// Copyright 2016 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package fsdb is a filesystem-backed depengine.PackageDB: every installed
// package is one "*.toml" header file under a root directory, walked with
// github.com/karrick/godirwalk into an in-memory index on Open.
package fsdb

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/karrick/godirwalk"
	"github.com/pelletier/go-toml"
	"github.com/pkg/errors"
	"github.com/rpmtrans/depengine"
)

// header is the on-disk representation of one installed package, one file
// per package under the DB root.
type header struct {
	Name      string   `toml:"name"`
	EVR       string   `toml:"evr"`
	Requires  []string `toml:"requires"`
	Provides  []string `toml:"provides"`
	Conflicts []string `toml:"conflicts"`
	Obsoletes []string `toml:"obsoletes"`
	Files     []string `toml:"files"`
	Source    bool     `toml:"source"`
	Multilib  uint32   `toml:"multilib"`
}

// Header adapts a decoded on-disk header into depengine.Header.
type Header struct {
	h header
}

var _ depengine.Header = Header{}

func (h Header) Name() string       { return h.h.Name }
func (h Header) EVR() depengine.EVR { return parseEVR(h.h.EVR) }
func (h Header) Requires() []depengine.Dep {
	return parseDeps(h.h.Requires)
}
func (h Header) Provides() []depengine.Dep {
	return parseDeps(h.h.Provides)
}
func (h Header) Conflicts() []depengine.Dep {
	return parseDeps(h.h.Conflicts)
}
func (h Header) Obsoletes() []depengine.Dep {
	return parseDeps(h.h.Obsoletes)
}
func (h Header) Files() []string         { return h.h.Files }
func (h Header) IsSourcePackage() bool   { return h.h.Source }
func (h Header) MultilibMask() uint32    { return h.h.Multilib }

func parseEVR(s string) depengine.EVR {
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

// parseDeps parses "name[ op evr]" entries, the comparison part of
// internal/memdb.ParseDep's grammar; flag words such as PREREQ are not
// recognised (duplicated here rather than imported, to keep fsdb
// independent of the test-only memdb package).
func parseDeps(entries []string) []depengine.Dep {
	out := make([]depengine.Dep, 0, len(entries))
	for _, e := range entries {
		fields := strings.Fields(e)
		if len(fields) == 0 {
			continue
		}
		dep := depengine.Dep{Name: fields[0]}
		if len(fields) >= 3 {
			switch fields[1] {
			case "<":
				dep.Flags = depengine.FlagLess
			case "<=":
				dep.Flags = depengine.FlagLess | depengine.FlagEqual
			case "=":
				dep.Flags = depengine.FlagEqual
			case ">=":
				dep.Flags = depengine.FlagGreater | depengine.FlagEqual
			case ">":
				dep.Flags = depengine.FlagGreater
			}
			dep.EVR = parseEVR(fields[2])
		}
		out = append(out, dep)
	}
	return out
}

type record struct {
	h      Header
	offset int64
}

// DB is a depengine.PackageDB rooted at a directory of per-package "*.toml"
// header files.
type DB struct {
	root    string
	records []record
}

var _ depengine.PackageDB = (*DB)(nil)

// New returns a DB rooted at dir. The directory is walked lazily, on Open.
func New(dir string) *DB {
	return &DB{root: dir}
}

// Open walks root with godirwalk, decoding every "*.toml" file into a
// record keyed by a stable offset (its position in sorted walk order).
func (db *DB) Open() error {
	db.records = db.records[:0]

	var paths []string
	err := godirwalk.Walk(db.root, &godirwalk.Options{
		Callback: func(osPathname string, de *godirwalk.Dirent) error {
			if de.IsDir() || !strings.HasSuffix(osPathname, ".toml") {
				return nil
			}
			paths = append(paths, osPathname)
			return nil
		},
	})
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return errors.Wrapf(err, "walking package database root %s", db.root)
	}
	sort.Strings(paths)

	for i, p := range paths {
		raw, err := os.ReadFile(p)
		if err != nil {
			return errors.Wrapf(err, "reading package header %s", p)
		}
		var h header
		if err := toml.Unmarshal(raw, &h); err != nil {
			return errors.Wrapf(err, "parsing package header %s", p)
		}
		db.records = append(db.records, record{h: Header{h: h}, offset: int64(i)})
	}
	return nil
}

func (db *DB) Close() error {
	db.records = nil
	return nil
}

func (db *DB) Init(tag depengine.QueryTag, value string) (depengine.DBIterator, error) {
	var matches []record
	for _, r := range db.records {
		if recordMatches(r.h, tag, value) {
			matches = append(matches, r)
		}
	}
	return &iterator{records: matches}, nil
}

func recordMatches(h Header, tag depengine.QueryTag, value string) bool {
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

// PackageSpec is the exported shape of an on-disk header file, for tests
// and the CLI's database-population tooling to construct without reaching
// into fsdb's internal decoding type.
type PackageSpec struct {
	Name      string
	EVR       string
	Requires  []string
	Provides  []string
	Conflicts []string
	Obsoletes []string
	Files     []string
	Source    bool
	Multilib  uint32
}

// WritePackage writes spec as a "<name>.toml" file under dir.
func WritePackage(dir string, spec PackageSpec) error {
	h := header{
		Name:      spec.Name,
		EVR:       spec.EVR,
		Requires:  spec.Requires,
		Provides:  spec.Provides,
		Conflicts: spec.Conflicts,
		Obsoletes: spec.Obsoletes,
		Files:     spec.Files,
		Source:    spec.Source,
		Multilib:  spec.Multilib,
	}
	out, err := toml.Marshal(h)
	if err != nil {
		return errors.Wrap(err, "marshaling package header")
	}
	return errors.Wrap(
		os.WriteFile(filepath.Join(dir, h.Name+".toml"), out, 0o644),
		"writing package header",
	)
}
