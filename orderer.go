// Copyright 2016 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package depengine

import "sort"

// tsortEdge is one outgoing edge q -> p recorded against q's tsi_suc list:
// p depends on q, so q must be emitted first.
type tsortEdge struct {
	next *tsortEdge
	to   *Element
	hard bool // PREREQ edge; never broken by loop-breaking (§4.7 T8.3)
}

// tsortInfo is the TSI allocated on every ADD element for the duration of
// Order (§4.7).
type tsortInfo struct {
	count   int // in-degree: predecessors still pending
	suc     *tsortEdge
	chain   *Element // predecessor backpointer, loop detection only
	qcnt    int      // secondary sort key for the work queue
	emitted bool
}

// Order runs the modified Knuth tsort over every ADD element (§4.7),
// replacing ts.order with a permutation that respects every non-broken
// dependency edge, then splicing REMOVE elements in according to their
// DependsOnKey locality. It returns the count of elements that could not
// be ordered (0 on success) together with a non-nil error iff that count
// is non-zero.
func Order(ts *TransactionSet) (int, error) {
	adds := make([]*Element, 0, len(ts.order))
	for _, e := range ts.order {
		if e.Type != Add {
			continue
		}
		e.tsi = &tsortInfo{}
		adds = append(adds, e)
	}
	defer func() {
		for _, e := range adds {
			e.tsi = nil
		}
	}()

	globalWhiteout.initOnce(ts.macro)
	defer globalWhiteout.free()

	recordEdges(ts, adds)
	for i, e := range adds {
		e.NPreds = e.tsi.count
		if e.tsi.count == 0 {
			e.Tree = i
		} else {
			e.Tree = -1
		}
	}

	var ordering []int
	rescanBudget := ts.RescanBudget
	if rescanBudget <= 0 {
		rescanBudget = 10
	}

	for {
		runRound(ts, adds, &ordering)

		remaining := 0
		for _, e := range adds {
			if !e.tsi.emitted {
				remaining++
			}
		}
		if remaining == 0 {
			break
		}

		nzaps := breakCycles(ts, adds)
		if nzaps > 0 && rescanBudget > 0 {
			rescanBudget--
			continue
		}
		return remaining, &CycleError{Remaining: remaining}
	}

	permute(ts, adds, ordering)
	return 0, nil
}

// recordEdges is §4.7 T2-T3: for every ADD element p and every requirement
// r resolved to an added element q, insert the edge q -> p.
func recordEdges(ts *TransactionSet, adds []*Element) {
	for _, p := range adds {
		for pass := 0; pass < 2; pass++ {
			wantHard := pass == 0
			selected := make(map[*Element]bool)

			reqs := p.requiresSet()
			for reqs.Next() >= 0 {
				dep := reqs.GetDep()
				if isRPMLibName(dep.Name) {
					continue
				}

				q := resolveAdded(ts, dep)
				if q == nil {
					continue
				}
				if q == p {
					continue
				}
				if globalWhiteout.whitelisted(p.N, q.N) {
					continue
				}
				if selected[q] {
					continue
				}

				hard, skip := classifyEdge(p.Type, dep.Flags)
				if skip {
					continue
				}
				if hard != wantHard {
					continue
				}
				selected[q] = true

				q.tsi.suc = &tsortEdge{next: q.tsi.suc, to: p, hard: hard}
				p.tsi.count++
				q.tsi.qcnt++
				if p.Depth < q.Depth+1 {
					p.Depth = q.Depth + 1
				}
			}
		}
	}
}

// resolveAdded maps dep to the ADD element that satisfies it via the
// added-package index's own slot lookup.
func resolveAdded(ts *TransactionSet, dep Dep) *Element {
	_, addedKey, ok := ts.addedPackages.Satisfies(dep)
	if !ok {
		return nil
	}
	return ts.addedPackages.LookupExact(addedKey)
}

// classifyEdge reports whether a requirement with flags, attached to a
// source element of type pType, is a hard (pre-requisite) edge, a
// co-requisite edge, or should be skipped entirely because it belongs to
// neither pass for this element type (§4.7 T2-T3 classification bullets).
func classifyEdge(pType ElementType, flags SenseFlags) (hard, skip bool) {
	if pType == Add {
		if flags.IsErasePreReq() {
			return false, true
		}
		if flags.IsInstallPreReq() || flags.IsLegacyPreReq() {
			return true, false
		}
		return false, false
	}
	// Remove.
	if flags.IsInstallPreReq() {
		return false, true
	}
	if flags.IsErasePreReq() || flags.IsLegacyPreReq() {
		return true, false
	}
	return false, false
}

// runRound is §4.7 T5: builds a work queue from every not-yet-emitted node
// with zero in-degree, drains it, and appends emitted added keys to
// *ordering. It returns the number of elements emitted this round.
func runRound(ts *TransactionSet, adds []*Element, ordering *[]int) int {
	if !ts.Chainsaw {
		for i, e := range adds {
			e.tsi.qcnt = len(adds) - i
		}
	}

	type qitem struct {
		e   *Element
		seq int
	}
	var q []qitem
	seq := 0
	for _, e := range adds {
		if e.tsi.emitted || e.tsi.count != 0 {
			continue
		}
		insertQueue(&q, qitem{e, seq}, func(a, b qitem) bool {
			if a.e.tsi.qcnt != b.e.tsi.qcnt {
				return a.e.tsi.qcnt > b.e.tsi.qcnt
			}
			return a.seq < b.seq
		})
		seq++
	}

	emitted := 0
	qlen := len(q)
	stallChecked := false
	for len(q) > 0 {
		head := q[0]
		q = q[1:]

		head.e.tsi.emitted = true
		*ordering = append(*ordering, head.e.AddedKey)
		emitted++

		if !stallChecked && len(q) > 0 && qlen == len(adds)-emitted {
			ts.Logger.Debugf("tsort stall heuristic triggered at %d remaining", len(q))
			stallChecked = true
		}

		edge := head.e.tsi.suc
		head.e.tsi.suc = nil
		for edge != nil {
			p := edge.to
			p.tsi.count--
			if p.tsi.count == 0 {
				p.Tree = head.e.Tree
				p.Depth = head.e.Depth + 1
				p.Parent = head.e
				head.e.Degree++
				seq++
				insertQueue(&q, qitem{p, seq}, func(a, b qitem) bool {
					if a.e.tsi.qcnt != b.e.tsi.qcnt {
						return a.e.tsi.qcnt > b.e.tsi.qcnt
					}
					return a.seq < b.seq
				})
			}
			edge = edge.next
		}
	}
	return emitted
}

func insertQueue[T any](q *[]T, item T, less func(a, b T) bool) {
	i := sort.Search(len(*q), func(i int) bool { return less(item, (*q)[i]) })
	*q = append(*q, item)
	copy((*q)[i+1:], (*q)[i:])
	(*q)[i] = item
}

// breakCycles is §4.7 T8: for every still-blocked node, label it with a
// predecessor via chain pointers, then walk each blocked node's chain back
// to a repeated (cycle) node and break the first non-hard edge found along
// that cycle. It returns the number of edges broken (nzaps).
func breakCycles(ts *TransactionSet, adds []*Element) int {
	for _, e := range adds {
		if e.tsi.emitted {
			continue
		}
		e.tsi.chain = nil
	}

	for _, q := range adds {
		if q.tsi.emitted {
			continue
		}
		for edge := q.tsi.suc; edge != nil; edge = edge.next {
			p := edge.to
			if p.tsi.emitted || p.tsi.chain != nil {
				continue
			}
			p.tsi.chain = q
		}
	}

	nzaps := 0
	for _, r := range adds {
		if r.tsi.emitted || r.tsi.count == 0 {
			continue
		}

		visited := make(map[*Element]bool)
		cur := r
		for cur != nil && !visited[cur] {
			visited[cur] = true
			cur = cur.tsi.chain
		}
		if cur == nil {
			continue
		}
		loopStart := cur

		node := loopStart
		for {
			pred := node.tsi.chain
			if pred == nil {
				break
			}
			if zapEdge(pred, node) {
				ts.Logger.Debugf("tsort: broke co-requisite edge %s -> %s to resolve a cycle", pred.N, node.N)
				nzaps++
				break
			}
			node = pred
			if node == loopStart {
				break
			}
		}
	}
	return nzaps
}

// zapEdge removes the first non-hard edge from q to p, if one exists.
func zapEdge(q, p *Element) bool {
	var prev *tsortEdge
	for edge := q.tsi.suc; edge != nil; edge = edge.next {
		if edge.to == p && !edge.hard {
			if prev == nil {
				q.tsi.suc = edge.next
			} else {
				prev.next = edge.next
			}
			p.tsi.count--
			return true
		}
		prev = edge
	}
	return false
}

// permute is §4.7 T-final: walks ordering (emitted ADD added_keys) and
// rebuilds ts.order, splicing each REMOVE element in immediately after the
// ADD it depends on when chainsaw is off (upgrade locality), and appending
// any untouched elements (REMOVEs with no depends_on_key chase, or anything
// left over) in their original relative order.
func permute(ts *TransactionSet, adds []*Element, ordering []int) {
	byAddedKey := make(map[int]*Element, len(adds))
	for _, e := range adds {
		byAddedKey[e.AddedKey] = e
	}

	consumed := make(map[*Element]bool, len(ts.order))
	newOrder := make([]*Element, 0, len(ts.order))

	for _, key := range ordering {
		e := byAddedKey[key]
		if e == nil || consumed[e] {
			continue
		}
		newOrder = append(newOrder, e)
		consumed[e] = true

		if !ts.Chainsaw {
			for _, r := range ts.order {
				if r.Type == Remove && r.DependsOnKey == key && !consumed[r] {
					newOrder = append(newOrder, r)
					consumed[r] = true
				}
			}
		}
	}

	for _, e := range ts.order {
		if !consumed[e] {
			newOrder = append(newOrder, e)
			consumed[e] = true
		}
	}

	ts.order = newOrder
}
