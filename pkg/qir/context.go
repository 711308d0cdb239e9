// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.
package qir

import (
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/types"
)

// Runtime symbols the emitted circuits call into.
const (
	xGate            = "__quantum__qis__x__body"
	cnotGate         = "Microsoft__Quantum__Intrinsic__CNOT__body"
	ccnotGate        = "Microsoft__Quantum__Intrinsic__CCNOT__body"
	allocateArray    = "__quantum__rt__qubit_allocate_array"
	releaseArray     = "__quantum__rt__qubit_release_array"
	updateAliasCount = "__quantum__rt__array_update_alias_count"
	getElementPtr1d  = "__quantum__rt__array_get_element_ptr_1d"
	tupleCreate      = "__quantum__rt__tuple_create"
)

// Context resolves the QIR types and runtime intrinsics of a host module,
// inserting declarations for any intrinsic the module does not already
// declare.
type Context struct {
	Module *ir.Module

	ArrayTy    *types.StructType
	QubitTy    *types.StructType
	ArrayPtrTy *types.PointerType
	QubitPtrTy *types.PointerType

	X                *ir.Func
	CNOT             *ir.Func
	CCNOT            *ir.Func
	AllocateArray    *ir.Func
	ReleaseArray     *ir.Func
	UpdateAliasCount *ir.Func
	GetElement       *ir.Func
}

// NewContext binds a context against a parsed QIR module.
func NewContext(m *ir.Module) (*Context, error) {
	ctx := &Context{Module: m}
	//
	var err error
	if ctx.ArrayTy, err = namedStruct(m, "Array"); err != nil {
		return nil, err
	}
	//
	if ctx.QubitTy, err = namedStruct(m, "Qubit"); err != nil {
		return nil, err
	}
	//
	ctx.ArrayPtrTy = types.NewPointer(ctx.ArrayTy)
	ctx.QubitPtrTy = types.NewPointer(ctx.QubitTy)
	//
	ctx.X = getOrInsertFunc(m, xGate, types.Void, ctx.QubitPtrTy)
	ctx.CNOT = getOrInsertFunc(m, cnotGate, types.Void, ctx.QubitPtrTy, ctx.QubitPtrTy)
	ctx.CCNOT = getOrInsertFunc(m, ccnotGate, types.Void, ctx.QubitPtrTy, ctx.QubitPtrTy, ctx.QubitPtrTy)
	ctx.AllocateArray = getOrInsertFunc(m, allocateArray, ctx.ArrayPtrTy, types.I64)
	ctx.ReleaseArray = getOrInsertFunc(m, releaseArray, types.Void, ctx.ArrayPtrTy)
	ctx.UpdateAliasCount = getOrInsertFunc(m, updateAliasCount, types.Void, ctx.ArrayPtrTy, types.I32)
	ctx.GetElement = getOrInsertFunc(m, getElementPtr1d, types.NewPointer(types.I8), ctx.ArrayPtrTy, types.I64)
	//
	return ctx, nil
}

// namedStruct finds a named struct type definition of the module.
func namedStruct(m *ir.Module, name string) (*types.StructType, error) {
	for _, def := range m.TypeDefs {
		if st, ok := def.(*types.StructType); ok && st.TypeName == name {
			return st, nil
		}
	}
	//
	return nil, shapeErrorf("type %s not defined in source QIR", name)
}

// getOrInsertFunc finds a function by linkage name, declaring it when absent.
func getOrInsertFunc(m *ir.Module, name string, ret types.Type, params ...types.Type) *ir.Func {
	for _, f := range m.Funcs {
		if f.Name() == name {
			return f
		}
	}
	//
	irParams := make([]*ir.Param, len(params))
	for i, p := range params {
		irParams[i] = ir.NewParam("", p)
	}
	//
	return m.NewFunc(name, ret, irParams...)
}
