// Copyright 2016 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package depengine

import (
	"strings"
	"sync"
)

// whiteoutPair is one "p>q" entry: an edge the orderer should suppress
// even though p genuinely requires q (§4.6).
type whiteoutPair struct {
	p, q string
}

// whiteoutList is the cycle-ignoring whitelist (§4.6, §9 "Process-wide
// whitelist"). It is process-wide state in the original, lazily populated
// from a macro-expanded configuration string and torn down when an Order
// call returns, whether or not it succeeded. Wrapped here behind an
// explicit lifecycle (initOnce/free, plus resetWhiteout) so tests can
// reset it deterministically, per §9's design note.
type whiteoutList struct {
	mu    sync.Mutex
	once  bool
	pairs map[whiteoutPair]bool
}

var globalWhiteout whiteoutList

// resetWhiteout clears the process-wide whiteout list. Exposed for tests
// that need a clean slate between runs.
func resetWhiteout() {
	globalWhiteout.mu.Lock()
	defer globalWhiteout.mu.Unlock()
	globalWhiteout.once = false
	globalWhiteout.pairs = nil
}

// initOnce populates the whiteout list on first use by expanding
// "%{?_dependency_whiteout}" through expander and splitting on whitespace.
// A nil expander leaves the list empty (no whiteout configured).
func (w *whiteoutList) initOnce(expander MacroExpander) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.once {
		return
	}
	w.once = true
	w.pairs = make(map[whiteoutPair]bool)

	if expander == nil {
		return
	}
	raw := expander.Expand("%{?_dependency_whiteout}")
	for _, tok := range strings.Fields(raw) {
		p, q, ok := strings.Cut(tok, ">")
		if !ok {
			continue
		}
		w.pairs[whiteoutPair{p: p, q: q}] = true
	}
}

// whitelisted reports whether the edge "p requires q" (named by NEVR-less
// package names) should be suppressed during ordering.
func (w *whiteoutList) whitelisted(p, q string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.pairs[whiteoutPair{p: p, q: q}]
}

// free tears down the whiteout list; Order defers it, so it runs on every
// Order return (§4.6: "The list is freed at the end of order()").
func (w *whiteoutList) free() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.once = false
	w.pairs = nil
}
