// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.

// Package oracle orchestrates oracle synthesis over a QIR module: it pairs
// classical functions with empty operations, lowers each function to an XAG,
// optimizes it, and emits the reversible circuit into the operation body.
package oracle

import (
	"fmt"
	"os"

	"github.com/llir/llvm/asm"
	"github.com/llir/llvm/ir"
	log "github.com/sirupsen/logrus"

	"github.com/microsoft/Quantum/pkg/qir"
	"github.com/microsoft/Quantum/pkg/synth"
	"github.com/microsoft/Quantum/pkg/xag"
)

// PairReport records what was synthesized for one function/operation pair.
type PairReport struct {
	Function  string `json:"function"`
	Operation string `json:"operation"`
	Inputs    int    `json:"inputs"`
	Outputs   int    `json:"outputs"`
	// AndsBefore is the AND count of the XAG as read from the function.
	AndsBefore int `json:"ands_before"`
	// AndsAfter is the AND count after optimization, which is also the
	// number of ancilla qubits the emitted circuit borrows.
	AndsAfter int `json:"ands_after"`
}

// Compile synthesizes every discovered pair of the module in place.  Any
// rejected construct aborts the whole compilation: partial output is worse
// than none.
func Compile(m *ir.Module, cfg synth.Config) ([]PairReport, error) {
	ctx, err := qir.NewContext(m)
	if err != nil {
		return nil, err
	}
	//
	pairs := qir.FindPairs(m)
	reports := make([]PairReport, 0, len(pairs))
	//
	for _, pair := range pairs {
		log.Infof("generate operation %s from function %s", pair.Operation.Name(), pair.Function.Name())
		//
		report, err := compilePair(ctx, pair, cfg)
		if err != nil {
			return nil, err
		}
		//
		reports = append(reports, report)
	}
	//
	return reports, nil
}

func compilePair(ctx *qir.Context, pair qir.Pair, cfg synth.Config) (PairReport, error) {
	net, err := qir.ReadFunction(pair.Function)
	if err != nil {
		return PairReport{}, err
	}
	//
	before := net.AndCount()
	axag := synth.Optimize(net, cfg)
	//
	if err := qir.WriteOperation(axag, pair.Function, ctx, pair.Operation); err != nil {
		return PairReport{}, err
	}
	//
	return PairReport{
		Function:   pair.Function.Name(),
		Operation:  pair.Operation.Name(),
		Inputs:     net.NumInputs(),
		Outputs:    net.NumOutputs(),
		AndsBefore: before,
		AndsAfter:  axag.AndCount(),
	}, nil
}

// Analyze runs pair discovery, lowering and optimization without mutating
// any operation body; it backs the inspect command.
func Analyze(m *ir.Module, cfg synth.Config) ([]PairReport, []*xag.AbstractNetwork, error) {
	reports := make([]PairReport, 0)
	networks := make([]*xag.AbstractNetwork, 0)
	//
	for _, pair := range qir.FindPairs(m) {
		net, err := qir.ReadFunction(pair.Function)
		if err != nil {
			return nil, nil, err
		}
		//
		before := net.AndCount()
		axag := synth.Optimize(net, cfg)
		//
		reports = append(reports, PairReport{
			Function:   pair.Function.Name(),
			Operation:  pair.Operation.Name(),
			Inputs:     net.NumInputs(),
			Outputs:    net.NumOutputs(),
			AndsBefore: before,
			AndsAfter:  axag.AndCount(),
		})
		networks = append(networks, axag)
	}
	//
	return reports, networks, nil
}

// ParseModule reads a textual QIR module from disk.
func ParseModule(path string) (*ir.Module, error) {
	m, err := asm.ParseFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading module: %w", err)
	}
	//
	return m, nil
}

// WriteModule serializes the module textually.
func WriteModule(m *ir.Module, path string) error {
	if err := os.WriteFile(path, []byte(m.String()), 0o644); err != nil {
		return fmt.Errorf("error writing module: %w", err)
	}
	//
	return nil
}
