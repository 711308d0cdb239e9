// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.
package synth

import (
	"fmt"
	"sort"
	"strings"

	"github.com/microsoft/Quantum/pkg/tt"
	"github.com/microsoft/Quantum/pkg/xag"
)

// cut is a structural cut: a sorted set of leaf nodes separating a root from
// the primary inputs.
type cut struct {
	leaves []xag.Node
}

// enumerateCuts computes, for every node, up to cutLimit structural cuts of
// at most cutSize leaves, by merging fanin cuts bottom-up.  The trivial cut
// {n} is always included last.
func enumerateCuts(p *xag.Network, cutSize, cutLimit int) [][]cut {
	cuts := make([][]cut, p.Size())
	//
	for i := 0; i < p.Size(); i++ {
		n := xag.Node(i)
		//
		if !p.IsGate(n) {
			cuts[i] = []cut{{leaves: []xag.Node{n}}}
			continue
		}
		//
		fanin := p.Fanins(n)
		var merged []cut
		//
		for _, c0 := range cuts[fanin[0].Node()] {
			for _, c1 := range cuts[fanin[1].Node()] {
				leaves := unionLeaves(c0.leaves, c1.leaves)
				if len(leaves) > cutSize {
					continue
				}
				//
				merged = append(merged, cut{leaves})
			}
		}
		//
		merged = dedupCuts(merged)
		// Prefer smaller cuts when pruning.
		sort.SliceStable(merged, func(a, b int) bool {
			return len(merged[a].leaves) < len(merged[b].leaves)
		})
		//
		if len(merged) > cutLimit {
			merged = merged[:cutLimit]
		}
		//
		cuts[i] = append(merged, cut{leaves: []xag.Node{n}})
	}
	//
	return cuts
}

// cutTable simulates the function of root over the cut leaves, assigning the
// i-th leaf the i-th truth-table variable.
func cutTable(p *xag.Network, root xag.Node, leaves []xag.Node) tt.Table {
	vars := uint(len(leaves))
	memo := make(map[xag.Node]tt.Table)
	//
	for i, leaf := range leaves {
		memo[leaf] = tt.Var(vars, uint(i))
	}
	//
	var eval func(n xag.Node) tt.Table
	//
	eval = func(n xag.Node) tt.Table {
		if t, ok := memo[n]; ok {
			return t
		}
		//
		if p.IsConstant(n) {
			return tt.New(vars)
		}
		//
		fanin := p.Fanins(n)
		a := eval(fanin[0].Node())
		if fanin[0].IsComplemented() {
			a = a.Not()
		}
		//
		b := eval(fanin[1].Node())
		if fanin[1].IsComplemented() {
			b = b.Not()
		}
		//
		var t tt.Table
		if p.IsAnd(n) {
			t = a.And(b)
		} else {
			t = a.Xor(b)
		}
		//
		memo[n] = t
		//
		return t
	}
	//
	return eval(root)
}

// mffcAndCount counts the AND gates which would become dangling if root were
// replaced, i.e. the AND gates in root's maximal fanout-free cone above the
// cut leaves.
func mffcAndCount(p *xag.Network, root xag.Node, leaves []xag.Node, refs []int) int {
	leafSet := make(map[xag.Node]bool, len(leaves))
	for _, l := range leaves {
		leafSet[l] = true
	}
	//
	remaining := make(map[xag.Node]int)
	//
	var deref func(n xag.Node) int
	//
	deref = func(n xag.Node) int {
		count := 0
		if p.IsAnd(n) {
			count++
		}
		//
		for _, f := range p.Fanins(n) {
			child := f.Node()
			if leafSet[child] || !p.IsGate(child) {
				continue
			}
			//
			if _, ok := remaining[child]; !ok {
				remaining[child] = refs[child]
			}
			//
			remaining[child]--
			if remaining[child] == 0 {
				count += deref(child)
			}
		}
		//
		return count
	}
	//
	return deref(root)
}

// referenceCounts computes fanout counts for every node, counting primary
// outputs as references.
func referenceCounts(p *xag.Network) []int {
	refs := make([]int, p.Size())
	//
	for i := 0; i < p.Size(); i++ {
		if !p.IsGate(xag.Node(i)) {
			continue
		}
		//
		for _, f := range p.Fanins(xag.Node(i)) {
			refs[f.Node()]++
		}
	}
	//
	for _, po := range p.Outputs() {
		refs[po.Node()]++
	}
	//
	return refs
}

func unionLeaves(a, b []xag.Node) []xag.Node {
	out := make([]xag.Node, 0, len(a)+len(b))
	i, j := 0, 0
	//
	for i < len(a) && j < len(b) {
		switch {
		case a[i] < b[j]:
			out = append(out, a[i])
			i++
		case a[i] > b[j]:
			out = append(out, b[j])
			j++
		default:
			out = append(out, a[i])
			i++
			j++
		}
	}
	//
	out = append(out, a[i:]...)
	out = append(out, b[j:]...)
	//
	return out
}

func dedupCuts(cs []cut) []cut {
	seen := make(map[string]bool, len(cs))
	out := cs[:0]
	//
	for _, c := range cs {
		var key strings.Builder
		for _, l := range c.leaves {
			fmt.Fprintf(&key, "%d,", l)
		}
		//
		if !seen[key.String()] {
			seen[key.String()] = true
			out = append(out, c)
		}
	}
	//
	return out
}
