// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.
package xag

// Cleanup copies the network, keeping only nodes reachable from a primary
// output.  All primary inputs are preserved in order, so dangling gates
// disappear while the interface stays intact.
func Cleanup(p *Network) *Network {
	q := New()
	remap := make(map[Node]Signal, len(p.nodes))
	remap[0] = q.ConstFalse()
	// Inputs first, preserving order.
	for _, in := range p.inputs {
		remap[in] = q.CreatePI()
	}
	// Copy reachable gates.
	var copyCone func(n Node) Signal
	//
	copyCone = func(n Node) Signal {
		if s, ok := remap[n]; ok {
			return s
		}
		//
		fanin := p.nodes[n].fanin
		a := copyCone(fanin[0].Node()).NotIf(fanin[0].IsComplemented())
		b := copyCone(fanin[1].Node()).NotIf(fanin[1].IsComplemented())
		//
		var s Signal
		if p.IsAnd(n) {
			s = q.CreateAnd(a, b)
		} else {
			s = q.CreateXor(a, b)
		}
		//
		remap[n] = s
		//
		return s
	}
	//
	for _, po := range p.outputs {
		s := copyCone(po.Node())
		q.CreatePO(s.NotIf(po.IsComplemented()))
	}
	//
	return q
}
