// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.
package xag

import (
	"fmt"
	"strings"
)

// AbstractNetwork is the normalized form used for reversible-circuit
// emission: AND gates keep fan-in 2, XOR gates are n-ary (fan-in ≥ 2), no
// edge is complemented except primary-output edges, and XOR fanins refer to
// AND or input nodes only.
type AbstractNetwork struct {
	nodes   []anode
	inputs  []Node
	outputs []Signal
	andHash map[[2]Node]Node
	xorHash map[string]Node
}

type anode struct {
	op    opKind
	fanin []Node
}

func newAbstract() *AbstractNetwork {
	return &AbstractNetwork{
		nodes:   []anode{{op: opConst}},
		andHash: make(map[[2]Node]Node),
		xorHash: make(map[string]Node),
	}
}

func (p *AbstractNetwork) createInput() Node {
	n := Node(len(p.nodes))
	p.nodes = append(p.nodes, anode{op: opInput})
	p.inputs = append(p.inputs, n)
	//
	return n
}

func (p *AbstractNetwork) createAnd(a, b Node) Node {
	if a > b {
		a, b = b, a
	}
	//
	key := [2]Node{a, b}
	if n, ok := p.andHash[key]; ok {
		return n
	}
	//
	n := Node(len(p.nodes))
	p.nodes = append(p.nodes, anode{op: opAnd, fanin: []Node{a, b}})
	p.andHash[key] = n
	//
	return n
}

// materialize turns a linear set into a single node: the constant for the
// empty set, the node itself for singletons, and a hashed n-ary XOR node
// otherwise.
func (p *AbstractNetwork) materialize(set []Node) Node {
	switch len(set) {
	case 0:
		return 0
	case 1:
		return set[0]
	}
	//
	var key strings.Builder
	for _, n := range set {
		fmt.Fprintf(&key, "%d,", n)
	}
	//
	if n, ok := p.xorHash[key.String()]; ok {
		return n
	}
	//
	n := Node(len(p.nodes))
	fanin := make([]Node, len(set))
	copy(fanin, set)
	p.nodes = append(p.nodes, anode{op: opXor, fanin: fanin})
	p.xorHash[key.String()] = n
	//
	return n
}

// Size returns the total number of nodes, including the constant and inputs.
func (p *AbstractNetwork) Size() int {
	return len(p.nodes)
}

// NumInputs returns the number of primary inputs.
func (p *AbstractNetwork) NumInputs() int {
	return len(p.inputs)
}

// NumOutputs returns the number of primary outputs.
func (p *AbstractNetwork) NumOutputs() int {
	return len(p.outputs)
}

// Inputs returns the primary input nodes in creation order.
func (p *AbstractNetwork) Inputs() []Node {
	return p.inputs
}

// Outputs returns the primary output signals in creation order.  These are
// the only edges which may carry a complement.
func (p *AbstractNetwork) Outputs() []Signal {
	return p.outputs
}

// IsConstant reports whether the node is the constant node.
func (p *AbstractNetwork) IsConstant(n Node) bool {
	return p.nodes[n].op == opConst
}

// IsInput reports whether the node is a primary input.
func (p *AbstractNetwork) IsInput(n Node) bool {
	return p.nodes[n].op == opInput
}

// IsAnd reports whether the node is an AND gate.
func (p *AbstractNetwork) IsAnd(n Node) bool {
	return p.nodes[n].op == opAnd
}

// IsNaryXor reports whether the node is an n-ary XOR gate.
func (p *AbstractNetwork) IsNaryXor(n Node) bool {
	return p.nodes[n].op == opXor
}

// Fanins returns the fanin nodes of a gate: two for an AND, two or more for
// an n-ary XOR.
func (p *AbstractNetwork) Fanins(n Node) []Node {
	return p.nodes[n].fanin
}

// AndNodes returns all AND nodes in topological order.
func (p *AbstractNetwork) AndNodes() []Node {
	var ands []Node
	//
	for n := range p.nodes {
		if p.nodes[n].op == opAnd {
			ands = append(ands, Node(n))
		}
	}
	//
	return ands
}

// AndCount returns the multiplicative complexity.
func (p *AbstractNetwork) AndCount() int {
	return len(p.andHash)
}

// LinearFanin returns the nodes whose XOR forms the value of n: the fanin
// list for an n-ary XOR, nothing for the constant, and n itself otherwise.
func (p *AbstractNetwork) LinearFanin(n Node) []Node {
	switch p.nodes[n].op {
	case opXor:
		return p.nodes[n].fanin
	case opConst:
		return nil
	default:
		return []Node{n}
	}
}

// linset tracks, during conversion, a signal as the XOR over a sorted set of
// abstract AND/input nodes plus a complement flag.
type linset struct {
	nodes []Node
	compl bool
}

// ToAbstract converts an XAG into its abstract form.  Chains of binary XOR
// fuse into n-ary XOR nodes, and all internal complementation is pushed onto
// primary-output edges; the AND count never increases.
func ToAbstract(p *Network) *AbstractNetwork {
	q := newAbstract()
	sets := make([]linset, p.Size())
	sets[0] = linset{}
	//
	for _, in := range p.inputs {
		sets[in] = linset{nodes: []Node{q.createInput()}}
	}
	//
	resolve := func(s Signal) linset {
		ls := sets[s.Node()]
		//
		return linset{ls.nodes, ls.compl != s.IsComplemented()}
	}
	//
	for n := range p.nodes {
		if !p.IsGate(Node(n)) {
			continue
		}
		//
		fanin := p.nodes[n].fanin
		s0, s1 := resolve(fanin[0]), resolve(fanin[1])
		//
		if p.IsXor(Node(n)) {
			sets[n] = linset{symdiff(s0.nodes, s1.nodes), s0.compl != s1.compl}
			continue
		}
		//
		sets[n] = convertAnd(q, s0, s1)
	}
	//
	for _, po := range p.outputs {
		ls := resolve(po)
		q.outputs = append(q.outputs, MakeSignal(q.materialize(ls.nodes), ls.compl))
	}
	//
	return q
}

// convertAnd lowers the conjunction of two linear sets.  Complemented sides
// expand via (a⊕p)∧(b⊕q) = ab ⊕ qa ⊕ pb, with the residual complement p∧q
// carried outward on the resulting set.
func convertAnd(q *AbstractNetwork, s0, s1 linset) linset {
	// Constant sides fold away.
	if len(s0.nodes) == 0 {
		if s0.compl {
			return s1
		}
		//
		return linset{}
	}
	//
	if len(s1.nodes) == 0 {
		if s1.compl {
			return s0
		}
		//
		return linset{}
	}
	//
	n0 := q.materialize(s0.nodes)
	n1 := q.materialize(s1.nodes)
	// Identical linear parts collapse without a gate.
	if n0 == n1 {
		if s0.compl != s1.compl {
			return linset{}
		}
		//
		return linset{s0.nodes, s0.compl}
	}
	//
	set := []Node{q.createAnd(n0, n1)}
	if s1.compl {
		set = symdiff(set, s0.nodes)
	}
	//
	if s0.compl {
		set = symdiff(set, s1.nodes)
	}
	//
	return linset{set, s0.compl && s1.compl}
}

// symdiff merges two sorted node sets into their sorted symmetric difference.
func symdiff(a, b []Node) []Node {
	out := make([]Node, 0, len(a)+len(b))
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
