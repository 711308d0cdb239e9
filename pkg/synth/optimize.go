// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.
package synth

import (
	log "github.com/sirupsen/logrus"

	"github.com/microsoft/Quantum/pkg/xag"
)

// Config controls the optimizer stages.  The zero value selects the built-in
// database with the reference parameters.
type Config struct {
	// Resynthesizer used for collapse-based resynthesis and cut rewriting.
	// Nil selects the built-in MinMC database.
	Resynthesizer Resynthesizer
	// CutSize bounds the number of leaves per structural cut.
	CutSize int
	// CutLimit bounds the number of cuts kept per node.
	CutLimit int
}

const (
	// collapseThreshold is the widest input count for which the whole
	// network is collapsed to truth tables and resynthesized from scratch.
	collapseThreshold = 8
	// databaseWidth is the widest function the database handles directly;
	// wider collapsed functions go through Shannon decomposition first.
	databaseWidth = 5
	// rewriteRounds caps the greedy best-gain rewriting loop.
	rewriteRounds = 100
)

func (c Config) normalize() Config {
	if c.Resynthesizer == nil {
		c.Resynthesizer = MinMC{}
	}
	//
	if c.CutSize == 0 {
		c.CutSize = 5
	}
	//
	if c.CutLimit == 0 {
		c.CutLimit = 12
	}
	//
	return c
}

// Optimize minimizes the AND count of a network and converts it to abstract
// form.  The AND count after optimization never exceeds the input's, and the
// conversion itself never increases it (it can only merge ANDs that become
// identical in abstract form); on pathological inputs the network
// is returned unoptimized rather than failing.
func Optimize(p *xag.Network, cfg Config) *xag.AbstractNetwork {
	cfg = cfg.normalize()
	orig := xag.Cleanup(p)
	m0 := orig.AndCount()
	log.Infof("initial XAG from IR: %d AND gates, %d XOR gates", m0, orig.NumGates()-m0)
	//
	work := orig
	// Collapse-based resynthesis canonicalizes small functions.
	if work.NumInputs() <= collapseThreshold {
		work = collapse(work, cfg.Resynthesizer)
	}
	// Cut rewriting.
	work = rewrite(xag.Cleanup(work), cfg)
	// The AND count must never regress across the stages.
	if work.AndCount() > m0 {
		work = orig
	}
	//
	m1 := work.AndCount()
	log.Infof("optimized XAG:       %d AND gates, %d XOR gates", m1, work.NumGates()-m1)
	//
	return xag.ToAbstract(work)
}

// collapse simulates every output into a truth table and resynthesizes the
// network from scratch, so all implementations of the same small function
// converge on the same structure.
func collapse(p *xag.Network, resyn Resynthesizer) *xag.Network {
	tables := xag.Simulate(p)
	fresh := xag.New()
	leaves := make([]xag.Signal, p.NumInputs())
	//
	for i := range leaves {
		leaves[i] = fresh.CreatePI()
	}
	//
	if uint(p.NumInputs()) > databaseWidth {
		resyn = Shannon{Width: databaseWidth, Inner: resyn}
	}
	//
	for _, fn := range tables {
		fresh.CreatePO(resyn.Resynthesize(fresh, fn, leaves))
	}
	//
	return fresh
}

// rewrite repeatedly applies the best strictly-improving cut replacement.
// Each round enumerates structural cuts, scores every candidate against the
// AND count of its maximal fanout-free cone, applies the best gain, and
// cleans up.  Returns the original network if no round improved it.
func rewrite(p *xag.Network, cfg Config) *xag.Network {
	orig := p
	//
	for round := 0; round < rewriteRounds; round++ {
		node, c, gain := bestRewrite(p, cfg)
		if gain <= 0 {
			break
		}
		//
		log.Debugf("cut rewriting: replacing node %d saves %d AND gates", node, gain)
		p = applyRewrite(p, node, c, cfg.Resynthesizer)
	}
	// The loop only ever improves, but guard the contract regardless.
	if p.AndCount() > orig.AndCount() {
		return orig
	}
	//
	return p
}

func bestRewrite(p *xag.Network, cfg Config) (xag.Node, cut, int) {
	cuts := enumerateCuts(p, cfg.CutSize, cfg.CutLimit)
	refs := referenceCounts(p)
	//
	var (
		bestNode xag.Node
		bestCut  cut
		bestGain int
	)
	//
	for i := 0; i < p.Size(); i++ {
		n := xag.Node(i)
		if !p.IsGate(n) {
			continue
		}
		//
		for _, c := range cuts[i] {
			// Skip trivial and single-leaf cuts.
			if len(c.leaves) < 2 {
				continue
			}
			//
			fn := cutTable(p, n, c.leaves)
			// Cost of the candidate, counted on a scratch network.
			scratch := xag.New()
			scratchLeaves := make([]xag.Signal, len(c.leaves))
			for j := range scratchLeaves {
				scratchLeaves[j] = scratch.CreatePI()
			}
			//
			scratch.CreatePO(cfg.Resynthesizer.Resynthesize(scratch, fn, scratchLeaves))
			gain := mffcAndCount(p, n, c.leaves, refs) - scratch.AndCount()
			//
			if gain > bestGain {
				bestNode, bestCut, bestGain = n, c, gain
			}
		}
	}
	//
	return bestNode, bestCut, bestGain
}

// applyRewrite rebuilds the network with the chosen node re-expressed over
// its cut leaves; the displaced cone dangles and is cleaned up.
func applyRewrite(p *xag.Network, target xag.Node, c cut, resyn Resynthesizer) *xag.Network {
	q := xag.New()
	remap := make([]xag.Signal, p.Size())
	remap[0] = q.ConstFalse()
	//
	for _, in := range p.Inputs() {
		remap[in] = q.CreatePI()
	}
	//
	mapSignal := func(s xag.Signal) xag.Signal {
		return remap[s.Node()].NotIf(s.IsComplemented())
	}
	//
	for i := 0; i < p.Size(); i++ {
		n := xag.Node(i)
		if !p.IsGate(n) {
			continue
		}
		//
		if n == target {
			fn := cutTable(p, n, c.leaves)
			leaves := make([]xag.Signal, len(c.leaves))
			for j, leaf := range c.leaves {
				leaves[j] = remap[leaf]
			}
			//
			remap[i] = resyn.Resynthesize(q, fn, leaves)
			continue
		}
		//
		fanin := p.Fanins(n)
		if p.IsAnd(n) {
			remap[i] = q.CreateAnd(mapSignal(fanin[0]), mapSignal(fanin[1]))
		} else {
			remap[i] = q.CreateXor(mapSignal(fanin[0]), mapSignal(fanin[1]))
		}
	}
	//
	for _, po := range p.Outputs() {
		q.CreatePO(mapSignal(po))
	}
	//
	return xag.Cleanup(q)
}
