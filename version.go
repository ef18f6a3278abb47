// Copyright 2016 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package depengine implements the dependency checker and topological
// orderer at the core of a package-management transaction system: given a
// set of added packages and a read-only view of an installed database, it
// detects unsatisfied requirements and new conflicts, and computes an
// execution order over a transaction's elements that respects
// predecessor/successor relations derived from package requirements.
package depengine

import (
	"strconv"
	"strings"
)

// SenseFlags is a bitmask describing how a dependency compares against a
// version, plus bits describing when and how strongly it must be honored.
type SenseFlags uint32

// Flag bits. LESS/GREATER/EQUAL are the comparison ("sense") bits; the rest
// qualify the prerequisite strength or scope of the dependency.
const (
	FlagLess SenseFlags = 1 << iota
	FlagGreater
	FlagEqual
	FlagPreReq       // legacy, undifferentiated prerequisite
	FlagScriptPre    // must be present before %pre
	FlagScriptPost   // must be present before %post
	FlagScriptPreUn  // must be present before %preun
	FlagScriptPostUn // must be present before %postun
	FlagScriptVerify
	FlagFindRequires
	FlagRPMLib
	FlagMultilib
)

// senseMask isolates the comparison bits from every other bit a SenseFlags
// value may carry.
const senseMask = FlagLess | FlagGreater | FlagEqual

func (f SenseFlags) sense() SenseFlags { return f & senseMask }

// IsInstallPreReq reports whether f marks a dependency that must be
// satisfied before a package's pre- or post-install script runs.
func (f SenseFlags) IsInstallPreReq() bool {
	return f&(FlagScriptPre|FlagScriptPost) != 0
}

// IsErasePreReq reports whether f marks a dependency that must be
// satisfied before a package's pre- or post-uninstall script runs.
func (f SenseFlags) IsErasePreReq() bool {
	return f&(FlagScriptPreUn|FlagScriptPostUn) != 0
}

// IsLegacyPreReq reports whether f carries the old, undifferentiated
// PREREQ bit (neither install- nor erase-specific).
func (f SenseFlags) IsLegacyPreReq() bool {
	return f&FlagPreReq != 0
}

// EVR is the (epoch, version, release) triple identifying a package
// revision. Epoch is optional; a nil Epoch compares as zero against an
// explicit epoch on the other side (see compareEVR), which is the legacy
// rule this engine preserves verbatim.
type EVR struct {
	Epoch   *int
	Version string
	Release string
}

// String renders the canonical "[epoch:]version[-release]" form.
func (e EVR) String() string {
	var b strings.Builder
	if e.Epoch != nil {
		b.WriteString(strconv.Itoa(*e.Epoch))
		b.WriteByte(':')
	}
	b.WriteString(e.Version)
	if e.Release != "" {
		b.WriteByte('-')
		b.WriteString(e.Release)
	}
	return b.String()
}

// Empty reports whether e carries no version information. An empty EVR on
// either side of a comparison matches unconditionally (§4.1), subject to
// the legacy-obsoletes exception documented on matchesEVR.
func (e EVR) Empty() bool {
	return e.Epoch == nil && e.Version == "" && e.Release == ""
}

func epochVal(e *int) int {
	if e == nil {
		return 0
	}
	return *e
}

// compareEVR implements the RPM EVR comparison rule: epochs compare
// numerically first (an absent epoch is treated as zero), then version,
// then release, each field compared with rpmvercmp.
func compareEVR(a, b EVR) int {
	if c := epochVal(a.Epoch) - epochVal(b.Epoch); c != 0 {
		if c < 0 {
			return -1
		}
		return 1
	}
	if c := rpmvercmp(a.Version, b.Version); c != 0 {
		return c
	}
	return rpmvercmp(a.Release, b.Release)
}

// rpmvercmp compares two version (or release) strings using RPM's rule:
// the strings are walked as alternating runs of digits and non-digits.
// Numeric runs compare numerically after stripping leading zeros;
// alphabetic runs compare byte-lexicographically; a numeric run always
// outranks an alphabetic one. A leading tilde sorts before anything,
// including the end of string; a leading caret sorts after the end of
// string but before any other segment.
func rpmvercmp(a, b string) int {
	if a == b {
		return 0
	}

	for len(a) > 0 || len(b) > 0 {
		a = strings.TrimLeftFunc(a, isSeparator)
		b = strings.TrimLeftFunc(b, isSeparator)

		if strings.HasPrefix(a, "~") || strings.HasPrefix(b, "~") {
			at, bt := strings.HasPrefix(a, "~"), strings.HasPrefix(b, "~")
			switch {
			case at && !bt:
				return -1
			case !at && bt:
				return 1
			}
			a, b = a[1:], b[1:]
			continue
		}

		if strings.HasPrefix(a, "^") || strings.HasPrefix(b, "^") {
			ac, bc := strings.HasPrefix(a, "^"), strings.HasPrefix(b, "^")
			switch {
			case ac && !bc && b == "":
				return 1
			case ac && !bc:
				return -1
			case !ac && bc && a == "":
				return -1
			case !ac && bc:
				return 1
			}
			a, b = a[1:], b[1:]
			continue
		}

		if a == "" || b == "" {
			break
		}

		if isDigit(a[0]) {
			var na, nb string
			na, a = splitRun(a, isDigit)
			nb, b = splitRun(b, isDigit)
			if !isDigit(firstByte(nb)) {
				// A numeric segment always outranks an alphabetic one,
				// including an empty (exhausted) one on the other side.
				return 1
			}
			na = strings.TrimLeft(na, "0")
			nb = strings.TrimLeft(nb, "0")
			if len(na) != len(nb) {
				if len(na) > len(nb) {
					return 1
				}
				return -1
			}
			if na != nb {
				if na > nb {
					return 1
				}
				return -1
			}
			continue
		}

		// a[0] is alphabetic.
		if isDigit(firstByte(b)) {
			return -1
		}
		var sa, sb string
		sa, a = splitRun(a, isAlpha)
		sb, b = splitRun(b, isAlpha)
		if sa != sb {
			if sa > sb {
				return 1
			}
			return -1
		}
	}

	switch {
	case a == "" && b == "":
		return 0
	case a == "":
		return -1
	default:
		return 1
	}
}

func firstByte(s string) byte {
	if s == "" {
		return 0
	}
	return s[0]
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isAlpha(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isSeparator(r rune) bool {
	if r == '~' || r == '^' {
		return false
	}
	return !(r >= '0' && r <= '9') && !((r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r == '_')
}

func splitRun(s string, class func(byte) bool) (run, rest string) {
	i := 0
	for i < len(s) && class(s[i]) {
		i++
	}
	return s[:i], s[i:]
}

// matchesEVR reports whether a dependency carrying senseFlags and depEVR is
// satisfied by a candidate qualified by provFlags/provEVR. An unversioned
// dependency (no sense bits, or an empty EVR) matches anything. Otherwise
// an unversioned candidate cannot satisfy a versioned dependency, except
// where legacyObsoletesAllowAll below overrides this for Obsoletes
// processing (§9: "rpm prior to 3.0.3 does not have versioned obsoletes;
// if no obsoletes EVR, match all names").
func matchesEVR(senseFlags SenseFlags, depEVR EVR, provFlags SenseFlags, provEVR EVR) bool {
	if senseFlags.sense() == 0 || depEVR.Empty() {
		return true
	}
	if provFlags.sense() == 0 || provEVR.Empty() {
		return false
	}

	switch sense := compareEVR(provEVR, depEVR); {
	case sense < 0:
		return senseFlags&FlagLess != 0
	case sense > 0:
		return senseFlags&FlagGreater != 0
	default:
		return senseFlags&FlagEqual != 0
	}
}

// legacyObsoletesAllowAll implements the §9 legacy rule: an Obsoletes entry
// with no EVR at all matches every provided name regardless of the
// candidate's own version, mirroring rpm's pre-3.0.3 behavior. Unlike
// matchesEVR, this never consults provEVR.
func legacyObsoletesAllowAll(senseFlags SenseFlags, depEVR EVR) bool {
	return senseFlags.sense() == 0 || depEVR.Empty()
}
