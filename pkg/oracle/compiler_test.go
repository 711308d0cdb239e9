// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.
package oracle

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/llir/llvm/asm"
	"github.com/llir/llvm/ir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/microsoft/Quantum/internal/circuitsim"
	"github.com/microsoft/Quantum/pkg/synth"
)

// oracleModule is an end-to-end fixture: a majority oracle, a nested-call
// oracle, and a helper without an operation of its own.
const oracleModule = `
%Qubit = type opaque
%Array = type opaque
%TupleHeader = type opaque

define i1 @Sample__Classical__Maj__body(i1 %a, i1 %b, i1 %c) {
entry:
  %0 = and i1 %a, %b
  %1 = and i1 %a, %c
  %2 = and i1 %b, %c
  %3 = xor i1 %0, %1
  %4 = xor i1 %3, %2
  ret i1 %4
}

define void @Sample__Maj__body({ %Qubit*, %Qubit*, %Qubit* }* %in, %Qubit* %out) {
entry:
  ret void
}

define i1 @Sample__Classical__Invert__body(i1 %x) {
entry:
  %0 = xor i1 %x, true
  ret i1 %0
}

define i1 @Sample__Classical__Nand__body(i1 %a, i1 %b) {
entry:
  %0 = and i1 %a, %b
  %1 = call i1 @Sample__Classical__Invert__body(i1 %0)
  ret i1 %1
}

define void @Sample__Nand__body({ %Qubit*, %Qubit* }* %in, %Qubit* %out) {
entry:
  ret void
}
`

func parseFixture(t *testing.T) *ir.Module {
	t.Helper()
	//
	m, err := asm.ParseString("fixture.ll", oracleModule)
	require.NoError(t, err)
	//
	return m
}

func opBody(t *testing.T, m *ir.Module, name string) *ir.Func {
	t.Helper()
	//
	for _, f := range m.Funcs {
		if f.Name() == name {
			return f
		}
	}
	//
	t.Fatalf("function %s not found", name)
	//
	return nil
}

func TestCompileModule(t *testing.T) {
	m := parseFixture(t)
	reports, err := Compile(m, synth.Config{})
	require.NoError(t, err)
	// Maj and Nand have operations; Invert does not.
	require.Len(t, reports, 2)
	//
	byOp := make(map[string]PairReport)
	for _, r := range reports {
		byOp[r.Operation] = r
	}
	//
	maj := byOp["Sample__Maj__body"]
	assert.Equal(t, 3, maj.Inputs)
	assert.Equal(t, 1, maj.Outputs)
	assert.Equal(t, 3, maj.AndsBefore)
	assert.Equal(t, 1, maj.AndsAfter)
	//
	nand := byOp["Sample__Nand__body"]
	assert.Equal(t, 2, nand.Inputs)
	assert.Equal(t, 1, nand.AndsAfter)
	// The helper's own body is untouched: it still has no operation and
	// keeps its classical definition.
	helper := opBody(t, m, "Sample__Classical__Invert__body")
	assert.Len(t, helper.Blocks, 1)
}

func TestCompiledMajorityRoundTrip(t *testing.T) {
	m := parseFixture(t)
	_, err := Compile(m, synth.Config{})
	require.NoError(t, err)
	//
	op := opBody(t, m, "Sample__Maj__body")
	//
	for row := 0; row < 8; row++ {
		sim := circuitsim.New()
		qubits := make([]any, 3)
		//
		for i := range qubits {
			qubits[i] = sim.Alloc(row&(1<<i) != 0)
		}
		//
		out := sim.Alloc(false)
		require.NoError(t, sim.Run(op, &circuitsim.Tuple{Fields: qubits}, out))
		//
		votes := 0
		for i := 0; i < 3; i++ {
			if row&(1<<i) != 0 {
				votes++
			}
		}
		//
		assert.Equal(t, votes >= 2, sim.Get(out), "row %d", row)
		assert.True(t, sim.AncillasClean(), "row %d", row)
		assert.Zero(t, sim.AliasBalance, "row %d", row)
	}
}

func TestCompiledNestedCallRoundTrip(t *testing.T) {
	m := parseFixture(t)
	_, err := Compile(m, synth.Config{})
	require.NoError(t, err)
	//
	op := opBody(t, m, "Sample__Nand__body")
	//
	for row := 0; row < 4; row++ {
		sim := circuitsim.New()
		a := sim.Alloc(row&1 != 0)
		b := sim.Alloc(row&2 != 0)
		out := sim.Alloc(false)
		//
		require.NoError(t, sim.Run(op, &circuitsim.Tuple{Fields: []any{a, b}}, out))
		assert.Equal(t, !(row&1 != 0 && row&2 != 0), sim.Get(out), "row %d", row)
		assert.True(t, sim.AncillasClean(), "row %d", row)
	}
}

func TestWriteModuleRoundTrip(t *testing.T) {
	m := parseFixture(t)
	_, err := Compile(m, synth.Config{})
	require.NoError(t, err)
	//
	path := filepath.Join(t.TempDir(), "out.ll")
	require.NoError(t, WriteModule(m, path))
	// The serialized module must parse again with the emitted bodies.
	reparsed, err := asm.ParseFile(path)
	require.NoError(t, err)
	//
	op := opBody(t, reparsed, "Sample__Maj__body")
	assert.Greater(t, len(op.Blocks[0].Insts), 0)
	//
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Microsoft__Quantum__Intrinsic__CNOT__body")
}

func TestAnalyzeDoesNotMutate(t *testing.T) {
	m := parseFixture(t)
	reports, networks, err := Analyze(m, synth.Config{})
	require.NoError(t, err)
	require.Len(t, reports, 2)
	require.Len(t, networks, 2)
	// Operation bodies stay empty.
	op := opBody(t, m, "Sample__Maj__body")
	assert.Len(t, op.Blocks[0].Insts, 0)
}
