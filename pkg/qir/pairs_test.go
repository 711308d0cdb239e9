// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.
package qir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindPairs(t *testing.T) {
	m := parseModule(t, `
define i1 @Ns__Classical__Maj__body(i1 %a) {
entry:
  ret i1 %a
}

define void @Ns__Maj__body(%Qubit* %in, %Qubit* %out) {
entry:
  ret void
}

define i1 @Ns__Classical__Helper__body(i1 %a) {
entry:
  ret i1 %a
}

define i1 @Ns__Lonely__body(i1 %a) {
entry:
  ret i1 %a
}

define void @__quantum__rt__ignored__body() {
entry:
  ret void
}
`)
	//
	pairs := FindPairs(m)
	require.Len(t, pairs, 1)
	assert.Equal(t, "Ns__Classical__Maj__body", pairs[0].Function.Name())
	assert.Equal(t, "Ns__Maj__body", pairs[0].Operation.Name())
}

func TestFindPairsDeepNamespace(t *testing.T) {
	m := parseModule(t, `
define i1 @A__B__Classical__F__body(i1 %a) {
entry:
  ret i1 %a
}

define void @A__B__F__body(%Qubit* %in, %Qubit* %out) {
entry:
  ret void
}
`)
	//
	pairs := FindPairs(m)
	require.Len(t, pairs, 1)
	assert.Equal(t, "A__B__Classical__F__body", pairs[0].Function.Name())
}

func TestFindPairsIgnoresOtherSuffixes(t *testing.T) {
	m := parseModule(t, `
define i1 @Ns__Classical__F__adj(i1 %a) {
entry:
  ret i1 %a
}

define void @Ns__F__adj(%Qubit* %in, %Qubit* %out) {
entry:
  ret void
}
`)
	//
	assert.Empty(t, FindPairs(m))
}
