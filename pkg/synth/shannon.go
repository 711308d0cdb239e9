// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.
package synth

import (
	"github.com/microsoft/Quantum/pkg/tt"
	"github.com/microsoft/Quantum/pkg/xag"
)

// Shannon wraps a database resynthesizer, splitting functions wider than the
// pivot width on their top variable until the database applies.
type Shannon struct {
	// Width is the widest function handed to the inner database.
	Width uint
	// Inner resynthesizes the database-sized subfunctions.
	Inner Resynthesizer
}

// Resynthesize implements the Resynthesizer contract.
func (s Shannon) Resynthesize(p *xag.Network, fn tt.Table, leaves []xag.Signal) xag.Signal {
	if fn.NumVars() <= s.Width {
		return s.Inner.Resynthesize(p, fn, leaves)
	}
	//
	f0, f1 := fn.TopCofactors()
	pivot := leaves[fn.NumVars()-1]
	s0 := s.Resynthesize(p, f0, leaves[:fn.NumVars()-1])
	s1 := s.Resynthesize(p, f1, leaves[:fn.NumVars()-1])
	//
	return p.CreateIte(pivot, s1, s0)
}
