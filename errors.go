// Copyright 2016 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package depengine

import "fmt"

// This file's typed errors correspond to spec.md §7's error kinds. Unlike
// the teacher's errors.go (whose errorLevel bitmask distinguished
// warning/mustResolve/cannotResolve severities for its CDCL backtracking
// solver), this engine never backtracks: each kind below maps to exactly
// one outcome, so the severity bitmask has no counterpart here.

// IndexRefusalError reports that the added-package index refused to admit
// a new element (§4.5: "rollback and fail if AI insert yields NOMATCH").
type IndexRefusalError struct {
	NEVR string
}

func (e *IndexRefusalError) Error() string {
	return fmt.Sprintf("could not add %s to the transaction: index refused the slot", e.NEVR)
}

// DBOpenError reports that the installed-package database could not be
// opened for read access.
type DBOpenError struct {
	Cause error
}

func (e *DBOpenError) Error() string {
	return fmt.Sprintf("could not open package database: %s", e.Cause)
}

func (e *DBOpenError) Unwrap() error { return e.Cause }

// CycleError reports that the orderer could not fully linearize the
// transaction: Remaining elements were still blocked when no co-requisite
// edge could be broken or the rescan budget was exhausted (§4.7 T8.5).
type CycleError struct {
	Remaining int
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("dependency loop: %d transaction element(s) could not be ordered", e.Remaining)
}
