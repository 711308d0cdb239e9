// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.
package qir

import (
	"slices"
	"strings"

	"github.com/llir/llvm/ir"
)

const bodySuffix = "__body"

// Pair associates a classical function with the empty operation whose body is
// to be synthesized from it.
type Pair struct {
	// Function is the classical specification.
	Function *ir.Func
	// Operation receives the synthesized circuit.
	Operation *ir.Func
}

// FindPairs discovers synthesis targets by the naming convention: operation
// Ns__Name__body pairs with classical function Ns__Classical__Name__body.
// Pairs are returned in module order, so processing is deterministic.
func FindPairs(m *ir.Module) []Pair {
	// Collect candidate functions by qualified path.
	candidates := make(map[string]*ir.Func)
	//
	for _, f := range m.Funcs {
		if qualified, ok := qualifiedPath(f.Name()); ok {
			candidates[qualified] = f
		}
	}
	//
	var pairs []Pair
	//
	for _, f := range m.Funcs {
		qualified, ok := qualifiedPath(f.Name())
		if !ok {
			continue
		}
		// Insert the Classical token before the last path component.
		parts := strings.Split(qualified, "__")
		parts = slices.Insert(parts, len(parts)-1, "Classical")
		//
		if classical, ok := candidates[strings.Join(parts, "__")]; ok {
			pairs = append(pairs, Pair{Function: classical, Operation: f})
		}
	}
	//
	return pairs
}

// qualifiedPath strips the __body suffix, rejecting runtime-reserved names.
func qualifiedPath(name string) (string, bool) {
	if !strings.HasSuffix(name, bodySuffix) || strings.HasPrefix(name, "__") {
		return "", false
	}
	//
	return strings.TrimSuffix(name, bodySuffix), true
}
