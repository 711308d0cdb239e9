// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.

// Package synth optimizes XAG networks before emission, with the number of
// AND gates (multiplicative complexity) as the cost function.
package synth

import (
	"github.com/microsoft/Quantum/pkg/tt"
	"github.com/microsoft/Quantum/pkg/xag"
)

// Resynthesizer rebuilds a function, given as a truth table, on top of the
// given leaf signals of a network.  Implementations must be deterministic in
// the truth table so that equal functions resynthesize to equal AND counts.
type Resynthesizer interface {
	Resynthesize(p *xag.Network, fn tt.Table, leaves []xag.Signal) xag.Signal
}

// MinMC is the built-in resynthesis database for functions of at most five
// inputs: affine functions cost no AND gate, functions of the form
// l0 ⊕ (l1 ∧ l2) with linear l1, l2 cost exactly one, and everything else
// decomposes recursively on the top variable.
type MinMC struct{}

// Resynthesize implements the Resynthesizer contract.
func (m MinMC) Resynthesize(p *xag.Network, fn tt.Table, leaves []xag.Signal) xag.Signal {
	// Constants
	if isConst, val := fn.IsConst(); isConst {
		return p.ConstFalse().NotIf(val)
	}
	// Affine functions need XOR gates only.
	if mask, c, ok := fn.AffineDecomposition(); ok {
		return linearChain(p, mask, leaves).NotIf(c)
	}
	// Single-AND forms: f = l0 ⊕ (l1 ∧ l2) with l1, l2 linear.  The
	// enumeration is only feasible on database-sized functions.
	if fn.NumVars() <= 5 {
		if s, ok := m.resynthesizeSingleAnd(p, fn, leaves); ok {
			return s
		}
	}
	// Shannon decomposition on the top variable.
	f0, f1 := fn.TopCofactors()
	pivot := leaves[fn.NumVars()-1]
	s0 := m.Resynthesize(p, f0, leaves[:fn.NumVars()-1])
	s1 := m.Resynthesize(p, f1, leaves[:fn.NumVars()-1])
	//
	return p.CreateIte(pivot, s1, s0)
}

// resynthesizeSingleAnd searches for a decomposition f = l0 ⊕ (l1 ∧ l2)
// where l1 and l2 are linear and l0 is affine.  The search order is fixed,
// so the result is canonical in the truth table.
func (MinMC) resynthesizeSingleAnd(p *xag.Network, fn tt.Table, leaves []xag.Signal) (xag.Signal, bool) {
	vars := fn.NumVars()
	//
	for m1 := uint(1); m1 < 1<<vars; m1++ {
		l1 := tt.Linear(vars, m1)
		//
		for m2 := m1 + 1; m2 < 1<<vars; m2++ {
			l2 := tt.Linear(vars, m2)
			rest := fn.Xor(l1.And(l2))
			//
			mask, c, ok := rest.AffineDecomposition()
			if !ok {
				continue
			}
			//
			and := p.CreateAnd(linearChain(p, m1, leaves), linearChain(p, m2, leaves))
			//
			return p.CreateXor(and, linearChain(p, mask, leaves)).NotIf(c), true
		}
	}
	//
	return 0, false
}

// linearChain XORs together the leaves selected by mask.
func linearChain(p *xag.Network, mask uint, leaves []xag.Signal) xag.Signal {
	acc := p.ConstFalse()
	//
	for i, leaf := range leaves {
		if mask&(1<<uint(i)) != 0 {
			acc = p.CreateXor(acc, leaf)
		}
	}
	//
	return acc
}
