// Copyright 2016 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package depengine

import "strings"

// rpmlibPrefix is the name prefix that marks a dependency as an implicit
// requirement on a packaging-format feature rather than on another
// package (§4.4 step 2).
const rpmlibPrefix = "rpmlib("

// rpmlibCapabilities is the built-in table of packaging-format feature
// names this engine understands, mirroring the original's hardcoded
// rpmlib provides list (depends.c rpmCheckRpmlibProvides). Each entry here
// is always satisfied; an rpmlib(...) name absent from the table is
// unsatisfied, exactly like an unrecognized feature in the original.
var rpmlibCapabilities = map[string]bool{
	"rpmlib(VersionedDependencies)":  true,
	"rpmlib(CompressedFileNames)":    true,
	"rpmlib(PayloadFilesHavePrefix)": true,
	"rpmlib(PartialHardlinkSets)":    true,
	"rpmlib(PayloadIsBzip2)":         true,
}

// isRPMLibName reports whether name denotes an rpmlib(...) feature probe.
func isRPMLibName(name string) bool {
	return strings.HasPrefix(name, rpmlibPrefix)
}

// rpmlibSatisfied reports whether name is a recognized, always-satisfied
// rpmlib feature.
func rpmlibSatisfied(name string) bool {
	return rpmlibCapabilities[name]
}
