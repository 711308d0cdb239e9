// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.
package qir

import (
	"testing"

	"github.com/llir/llvm/ir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const phiFixture = `
define i1 @f(i1 %c, i1 %a, i1 %b) {
entry:
  br i1 %c, label %then, label %else
then:
  br label %done
else:
  br label %done
done:
  %r = phi i1 [ %a, %then ], [ %b, %else ]
  ret i1 %r
}
`

func countPhis(fn *ir.Func) int {
	count := 0
	//
	for _, block := range fn.Blocks {
		for _, inst := range block.Insts {
			if _, ok := inst.(*ir.InstPhi); ok {
				count++
			}
		}
	}
	//
	return count
}

func TestDemotePhis(t *testing.T) {
	fn := findFunc(t, parseModule(t, phiFixture), "f")
	require.Equal(t, 1, countPhis(fn))
	//
	DemotePhis(fn)
	assert.Zero(t, countPhis(fn))
	// The entry block gained the stack slot.
	_, ok := fn.Blocks[0].Insts[0].(*ir.InstAlloca)
	assert.True(t, ok)
	// Each predecessor gained a store.
	for _, name := range []string{"then", "else"} {
		var block *ir.Block
		//
		for _, b := range fn.Blocks {
			if b.Name() == name {
				block = b
			}
		}
		//
		require.NotNil(t, block)
		_, ok := block.Insts[len(block.Insts)-1].(*ir.InstStore)
		assert.True(t, ok, "store missing in %s", name)
	}
}

func TestDemotePhisIdempotent(t *testing.T) {
	fn := findFunc(t, parseModule(t, phiFixture), "f")
	DemotePhis(fn)
	//
	before := len(fn.Blocks[0].Insts)
	DemotePhis(fn)
	assert.Equal(t, before, len(fn.Blocks[0].Insts))
}

func TestDemotePhisSemantics(t *testing.T) {
	// The demoted function must still lower to if-then-else semantics.
	net := readFunc(t, phiFixture, "f")
	//
	for row := uint(0); row < 8; row++ {
		c, a, b := row&1 != 0, row&2 != 0, row&4 != 0
		expected := uint64(0)
		//
		val := b
		if c {
			val = a
		}
		//
		if val {
			expected = 1
		}
		//
		assert.Equal(t, expected, decodeRow(net, row), "row %d", row)
	}
}
