// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.
package xag

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// evalAbstract executes an abstract network on one input assignment.
func evalAbstract(p *AbstractNetwork, inputs []bool) []bool {
	values := make([]bool, p.Size())
	//
	for i, in := range p.Inputs() {
		values[in] = inputs[i]
	}
	//
	for i := 0; i < p.Size(); i++ {
		n := Node(i)
		//
		switch {
		case p.IsAnd(n):
			fanin := p.Fanins(n)
			values[i] = values[fanin[0]] && values[fanin[1]]
		case p.IsNaryXor(n):
			acc := false
			for _, f := range p.Fanins(n) {
				acc = acc != values[f]
			}
			//
			values[i] = acc
		}
	}
	//
	outs := make([]bool, 0, p.NumOutputs())
	for _, po := range p.Outputs() {
		outs = append(outs, values[po.Node()] != po.IsComplemented())
	}
	//
	return outs
}

// assertEquivalent checks that conversion preserved every output function.
func assertEquivalent(t *testing.T, p *Network, q *AbstractNetwork) {
	t.Helper()
	//
	tables := Simulate(p)
	n := p.NumInputs()
	//
	for row := uint(0); row < 1<<uint(n); row++ {
		inputs := make([]bool, n)
		for i := 0; i < n; i++ {
			inputs[i] = row&(1<<uint(i)) != 0
		}
		//
		outs := evalAbstract(q, inputs)
		for i, table := range tables {
			assert.Equal(t, table.Get(row), outs[i], "output %d row %d", i, row)
		}
	}
}

func TestAbstractXorFusion(t *testing.T) {
	p := New()
	a := p.CreatePI()
	b := p.CreatePI()
	c := p.CreatePI()
	d := p.CreatePI()
	p.CreatePO(p.CreateXor(p.CreateXor(a, b), p.CreateXor(c, d)))
	//
	q := ToAbstract(p)
	assert.Equal(t, 0, q.AndCount())
	// The binary XOR chain fuses into one 4-ary XOR node.
	po := q.Outputs()[0]
	assert.False(t, po.IsComplemented())
	require.True(t, q.IsNaryXor(po.Node()))
	assert.Len(t, q.Fanins(po.Node()), 4)
	//
	assertEquivalent(t, p, q)
}

func TestAbstractComplementPropagation(t *testing.T) {
	tests := []struct {
		name  string
		build func(p *Network) Signal
	}{
		{"negated and", func(p *Network) Signal {
			return p.CreateAnd(p.CreatePI(), p.CreatePI()).Not()
		}},
		{"and of negations", func(p *Network) Signal {
			return p.CreateAnd(p.CreatePI().Not(), p.CreatePI().Not())
		}},
		{"or", func(p *Network) Signal {
			return p.CreateOr(p.CreatePI(), p.CreatePI())
		}},
		{"mixed negation", func(p *Network) Signal {
			a, b := p.CreatePI(), p.CreatePI()
			return p.CreateAnd(a.Not(), b)
		}},
		{"xnor", func(p *Network) Signal {
			return p.CreateXnor(p.CreatePI(), p.CreatePI())
		}},
		{"ite of negated", func(p *Network) Signal {
			a, b, c := p.CreatePI(), p.CreatePI(), p.CreatePI()
			return p.CreateIte(a, b.Not(), c)
		}},
	}
	//
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := New()
			p.CreatePO(tc.build(p))
			q := ToAbstract(p)
			// Conversion must not add AND gates.
			assert.LessOrEqual(t, q.AndCount(), p.AndCount())
			assertEquivalent(t, p, q)
		})
	}
}

func TestAbstractXorFaninsAreNotXor(t *testing.T) {
	p := New()
	a := p.CreatePI()
	b := p.CreatePI()
	c := p.CreatePI()
	// AND on top of XORs, XOR on top of the AND.
	and := p.CreateAnd(p.CreateXor(a, b), p.CreateXor(a, c))
	p.CreatePO(p.CreateXor(and, p.CreateXor(b, c)))
	//
	q := ToAbstract(p)
	//
	for i := 0; i < q.Size(); i++ {
		n := Node(i)
		if !q.IsNaryXor(n) {
			continue
		}
		// n-ary XOR fanins must be AND or input nodes only, so the
		// writer can always resolve them to qubits.
		for _, f := range q.Fanins(n) {
			assert.False(t, q.IsNaryXor(f), "nested n-ary XOR at node %d", n)
			assert.False(t, q.IsConstant(f), "constant fanin at node %d", n)
		}
		//
		assert.GreaterOrEqual(t, len(q.Fanins(n)), 2)
	}
	//
	assertEquivalent(t, p, q)
}

func TestAbstractAndCountPreserved(t *testing.T) {
	p := New()
	a := p.CreatePI()
	b := p.CreatePI()
	c := p.CreatePI()
	d := p.CreatePI()
	x := p.CreateAnd(a, b)
	y := p.CreateAnd(c.Not(), d)
	p.CreatePO(p.CreateXor(x, y))
	p.CreatePO(p.CreateOr(x, c))
	//
	q := ToAbstract(p)
	assert.Equal(t, p.AndCount(), q.AndCount())
	assertEquivalent(t, p, q)
}

func TestAbstractConstantOutputs(t *testing.T) {
	p := New()
	a := p.CreatePI()
	p.CreatePO(p.ConstFalse())
	p.CreatePO(p.ConstTrue())
	p.CreatePO(p.CreateXor(a, a))
	//
	q := ToAbstract(p)
	outs := evalAbstract(q, []bool{true})
	assert.Equal(t, []bool{false, true, false}, outs)
	//
	assert.Empty(t, q.LinearFanin(q.Outputs()[0].Node()))
	assert.True(t, q.Outputs()[1].IsComplemented())
}
