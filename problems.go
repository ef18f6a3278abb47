// Copyright 2016 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package depengine

import "fmt"

// ProblemKind classifies an entry in the problem set.
type ProblemKind int

const (
	// Missing records an unsatisfied Requires.
	Missing ProblemKind = iota
	// Conflict records a satisfied Conflicts (i.e. a real conflict).
	Conflict
)

func (k ProblemKind) String() string {
	if k == Conflict {
		return "conflict"
	}
	return "missing"
}

// Problem is one diagnostic entry (§6: "append (kind, NEVR, dep-DNEVR,
// suggestions[])").
type Problem struct {
	Kind        ProblemKind
	NEVR        string
	DNEVR       string
	Dep         Dep
	Role        Role
	Suggestions []interface{}
}

func (p Problem) String() string {
	switch p.Kind {
	case Conflict:
		return fmt.Sprintf("%s conflicts with %s", p.NEVR, p.DNEVR)
	default:
		return fmt.Sprintf("%s has missing requires: %s", p.NEVR, p.DNEVR)
	}
}

// ProblemSet accumulates diagnostics produced by a Checker run. It is the
// externally visible result of Check (§4.4).
type ProblemSet struct {
	problems []Problem
}

// Reset clears the set.
func (ps *ProblemSet) Reset() { ps.problems = nil }

// Add appends one problem.
func (ps *ProblemSet) Add(p Problem) { ps.problems = append(ps.problems, p) }

// Problems returns every accumulated problem, in the order they were
// found.
func (ps *ProblemSet) Problems() []Problem { return ps.problems }

// Empty reports whether no problems were recorded.
func (ps *ProblemSet) Empty() bool { return len(ps.problems) == 0 }
