// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.
package tt

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVarProjection(t *testing.T) {
	x0 := Var(3, 0)
	x2 := Var(3, 2)
	//
	for row := uint(0); row < 8; row++ {
		assert.Equal(t, row&1 != 0, x0.Get(row))
		assert.Equal(t, row&4 != 0, x2.Get(row))
	}
}

func TestBitwiseOps(t *testing.T) {
	a := Var(2, 0)
	b := Var(2, 1)
	and := a.And(b)
	xor := a.Xor(b)
	or := a.Or(b)
	//
	for row := uint(0); row < 4; row++ {
		x := row&1 != 0
		y := row&2 != 0
		assert.Equal(t, x && y, and.Get(row), "and row %d", row)
		assert.Equal(t, x != y, xor.Get(row), "xor row %d", row)
		assert.Equal(t, x || y, or.Get(row), "or row %d", row)
	}
	//
	assert.True(t, a.Not().Xor(a).Equal(New(2).Not()))
}

func TestIsConst(t *testing.T) {
	zero := New(3)
	one := New(3).Not()
	//
	isConst, val := zero.IsConst()
	assert.True(t, isConst)
	assert.False(t, val)
	//
	isConst, val = one.IsConst()
	assert.True(t, isConst)
	assert.True(t, val)
	//
	isConst, _ = Var(3, 1).IsConst()
	assert.False(t, isConst)
}

func TestTopCofactors(t *testing.T) {
	// f = x0 ∧ x2 over three variables.
	f := Var(3, 0).And(Var(3, 2))
	f0, f1 := f.TopCofactors()
	// With x2 = 0 the function vanishes; with x2 = 1 it is x0.
	isConst, val := f0.IsConst()
	assert.True(t, isConst)
	assert.False(t, val)
	assert.True(t, f1.Equal(Var(2, 0)))
}

func TestAffineDecomposition(t *testing.T) {
	tests := []struct {
		name  string
		table Table
		mask  uint
		c     bool
		ok    bool
	}{
		{"constant false", New(3), 0, false, true},
		{"constant true", New(3).Not(), 0, true, true},
		{"single variable", Var(3, 1), 2, false, true},
		{"xor of all", Var(3, 0).Xor(Var(3, 1)).Xor(Var(3, 2)), 7, false, true},
		{"complemented xor", Var(3, 0).Xor(Var(3, 2)).Not(), 5, true, true},
		{"and is not affine", Var(3, 0).And(Var(3, 1)), 0, false, false},
	}
	//
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			mask, c, ok := tc.table.AffineDecomposition()
			assert.Equal(t, tc.ok, ok)
			//
			if tc.ok {
				assert.Equal(t, tc.mask, mask)
				assert.Equal(t, tc.c, c)
			}
		})
	}
}

func TestLinearMask(t *testing.T) {
	l := Linear(4, 0b1010)
	//
	for row := uint(0); row < 16; row++ {
		expected := (row>>1)&1 != (row>>3)&1
		assert.Equal(t, expected, l.Get(row), "row %d", row)
	}
}

func TestKeyDistinguishesFunctions(t *testing.T) {
	assert.NotEqual(t, Var(3, 0).Key(), Var(3, 1).Key())
	assert.Equal(t, Var(3, 0).Key(), Var(3, 0).Clone().Key())
	// Same bits over different arity must not collide.
	assert.NotEqual(t, New(2).Key(), New(3).Key())
}
