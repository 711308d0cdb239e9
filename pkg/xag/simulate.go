// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.
package xag

import "github.com/microsoft/Quantum/pkg/tt"

// Simulate computes the truth table of every primary output, treating the
// i-th primary input as the i-th truth-table variable.  Only feasible for
// small input counts; the optimizer uses it for networks with at most eight
// inputs.
func Simulate(p *Network) []tt.Table {
	vars := uint(p.NumInputs())
	tables := make([]tt.Table, len(p.nodes))
	tables[0] = tt.New(vars)
	//
	for i, in := range p.inputs {
		tables[in] = tt.Var(vars, uint(i))
	}
	// Creation order is topological.
	for n := range p.nodes {
		fanin := p.nodes[n].fanin
		//
		switch p.nodes[n].op {
		case opAnd:
			tables[n] = faninTable(tables, fanin[0]).And(faninTable(tables, fanin[1]))
		case opXor:
			tables[n] = faninTable(tables, fanin[0]).Xor(faninTable(tables, fanin[1]))
		}
	}
	//
	outputs := make([]tt.Table, len(p.outputs))
	for i, po := range p.outputs {
		outputs[i] = faninTable(tables, po)
	}
	//
	return outputs
}

func faninTable(tables []tt.Table, s Signal) tt.Table {
	t := tables[s.Node()]
	if s.IsComplemented() {
		t = t.Not()
	}
	//
	return t
}
