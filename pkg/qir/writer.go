// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.
package qir

import (
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"

	"github.com/microsoft/Quantum/pkg/xag"
)

// writer emits one abstract XAG into one operation body.
type writer struct {
	ctx   *Context
	axag  *xag.AbstractNetwork
	entry *ir.Block
	// nodeValue maps every input and computed AND node to the qubit
	// holding its value.
	nodeValue map[xag.Node]value.Value
	temps     value.Value
}

// WriteOperation replaces the body of an operation with the reversible
// circuit computing the abstract XAG: X, CNOT and CCNOT calls only, with one
// borrowed ancilla per AND gate and Bennett-style uncomputation so every
// ancilla returns to zero before release.
func WriteOperation(axag *xag.AbstractNetwork, source *ir.Func, ctx *Context, op *ir.Func) error {
	if len(op.Params) != 2 {
		return shapeErrorf("operation %s must take an input and an output tuple", op.Name())
	}
	//
	op.Blocks = nil
	w := &writer{
		ctx:       ctx,
		axag:      axag,
		entry:     op.NewBlock("entry"),
		nodeValue: make(map[xag.Node]value.Value),
	}
	//
	if err := w.bindInputs(source, op); err != nil {
		return err
	}
	//
	outputs, err := w.bindOutputs(source, op)
	if err != nil {
		return err
	}
	// One ancilla per AND gate.
	numAnds := axag.AndCount()
	if numAnds > 0 {
		w.temps = w.entry.NewCall(ctx.AllocateArray, constant.NewInt(types.I64, int64(numAnds)))
		w.entry.NewCall(ctx.UpdateAliasCount, w.temps, constant.NewInt(types.I32, 1))
	}
	// Compute every AND on its ancilla, in topological order.
	ands := axag.AndNodes()
	for i, n := range ands {
		if err := w.translateAndGate(n, i, true); err != nil {
			return err
		}
	}
	// Copy the outputs out.
	for i, po := range axag.Outputs() {
		for _, q := range axag.LinearFanin(po.Node()) {
			w.entry.NewCall(ctx.CNOT, w.nodeValue[q], outputs[i])
		}
		//
		if po.IsComplemented() {
			w.entry.NewCall(ctx.X, outputs[i])
		}
	}
	// Uncompute in reverse order, restoring every ancilla to zero.
	for i := len(ands) - 1; i >= 0; i-- {
		if err := w.translateAndGate(ands[i], i, false); err != nil {
			return err
		}
	}
	//
	if numAnds > 0 {
		w.entry.NewCall(ctx.ReleaseArray, w.temps)
		w.entry.NewCall(ctx.UpdateAliasCount, w.temps, constant.NewInt(types.I32, -1))
	}
	//
	w.entry.NewRet(nil)
	//
	return nil
}

// bindInputs maps every primary input to its qubit.  A single-parameter
// source binds against the operation's first parameter directly; otherwise
// the parameter is a tuple of qubits and qubit arrays, stepped through with
// struct indices.
func (w *writer) bindInputs(source *ir.Func, op *ir.Func) error {
	pis := w.axag.Inputs()
	//
	if len(source.Params) == 1 {
		if intWidth(source.Params[0].Type()) == 1 {
			w.nodeValue[pis[0]] = op.Params[0]
			return nil
		}
		//
		w.bindQubitArray(op.Params[0], pis)
		//
		return nil
	}
	//
	tuple, ok := pointeeStruct(op.Params[0].Type())
	if !ok || len(tuple.Fields) < len(source.Params) {
		return shapeErrorf("input tuple of operation %s does not match function arity", op.Name())
	}
	//
	next := 0
	//
	for i, param := range source.Params {
		field := w.loadTupleField(op.Params[0], tuple, i)
		//
		if intWidth(param.Type()) == 1 {
			w.nodeValue[pis[next]] = field
			next++
			//
			continue
		}
		//
		w.bindQubitArray(field, pis[next:next+64])
		next += 64
	}
	//
	return nil
}

// bindOutputs resolves the qubits receiving the primary outputs from the
// operation's second parameter: one qubit for a Boolean return, a 64-qubit
// array for an integer return, and a tuple of qubits otherwise.
func (w *writer) bindOutputs(source *ir.Func, op *ir.Func) ([]value.Value, error) {
	out := op.Params[1]
	//
	switch intWidth(source.Sig.RetType) {
	case 1:
		return []value.Value{out}, nil
	case 64:
		qubits := make([]value.Value, 64)
		for j := range qubits {
			qubits[j] = w.loadArrayElement(out, int64(j))
		}
		//
		return qubits, nil
	}
	//
	tuple, ok := pointeeStruct(out.Type())
	if !ok || len(tuple.Fields) < w.axag.NumOutputs() {
		return nil, shapeErrorf("output tuple of operation %s does not match function outputs", op.Name())
	}
	//
	qubits := make([]value.Value, w.axag.NumOutputs())
	for i := range qubits {
		qubits[i] = w.loadTupleField(out, tuple, i)
	}
	//
	return qubits, nil
}

// translateAndGate emits the in-place linearization trick for one AND gate:
// XOR each side's linear fanin onto a side-exclusive target, CCNOT the two
// targets onto the ancilla, then replay the XORs in reverse to restore the
// targets.
func (w *writer) translateAndGate(n xag.Node, index int, compute bool) error {
	fanin := w.axag.Fanins(n)
	lf0 := w.axag.LinearFanin(fanin[0])
	lf1 := w.axag.LinearFanin(fanin[1])
	diff0 := difference(lf0, lf1)
	diff1 := difference(lf1, lf0)
	// Pick a target per side.  A side whose fanin is contained in the
	// other's borrows a shared element as target; it must then be
	// prepared last so the other side still sees original values.
	var t0, t1 xag.Node
	firstSide := 0
	//
	switch {
	case len(diff0) == 0 && len(diff1) == 0:
		return shapeErrorf("degenerate AND gate with identical fanin sides")
	case len(diff0) == 0:
		t1, t0 = diff1[0], lf0[0]
		firstSide = 1
	case len(diff1) == 0:
		t0, t1 = diff0[0], lf1[0]
	default:
		t0, t1 = diff0[0], diff1[0]
	}
	//
	sides := [2][]xag.Node{lf0, lf1}
	targets := [2]xag.Node{t0, t1}
	//
	prepare := func(side int) {
		for _, q := range sides[side] {
			if q == targets[side] {
				continue
			}
			//
			w.entry.NewCall(w.ctx.CNOT, w.nodeValue[q], w.nodeValue[targets[side]])
		}
	}
	//
	prepare(firstSide)
	prepare(1 - firstSide)
	//
	ancilla := w.loadArrayElement(w.temps, int64(index))
	w.entry.NewCall(w.ctx.CCNOT, w.nodeValue[t0], w.nodeValue[t1], ancilla)
	//
	if compute {
		w.nodeValue[n] = ancilla
	}
	// Restore in reverse order.
	prepare(1 - firstSide)
	prepare(firstSide)
	//
	return nil
}

// bindQubitArray binds consecutive primary inputs to the 64 qubits of a
// qubit array.
func (w *writer) bindQubitArray(array value.Value, pis []xag.Node) {
	for j, pi := range pis {
		w.nodeValue[pi] = w.loadArrayElement(array, int64(j))
	}
}

// loadArrayElement reads the qubit pointer stored at an array index.
func (w *writer) loadArrayElement(array value.Value, index int64) value.Value {
	elem := w.entry.NewCall(w.ctx.GetElement, array, constant.NewInt(types.I64, index))
	cast := w.entry.NewBitCast(elem, types.NewPointer(w.ctx.QubitPtrTy))
	//
	return w.entry.NewLoad(w.ctx.QubitPtrTy, cast)
}

// loadTupleField reads field i of a pointed-to tuple struct.
func (w *writer) loadTupleField(tuple value.Value, st *types.StructType, i int) value.Value {
	gep := w.entry.NewGetElementPtr(st, tuple,
		constant.NewInt(types.I32, 0), constant.NewInt(types.I32, int64(i)))
	//
	return w.entry.NewLoad(st.Fields[i], gep)
}

// pointeeStruct unwraps a pointer-to-struct type.
func pointeeStruct(t types.Type) (*types.StructType, bool) {
	ptr, ok := t.(*types.PointerType)
	if !ok {
		return nil, false
	}
	//
	st, ok := ptr.ElemType.(*types.StructType)
	//
	return st, ok
}

// difference returns the elements of a not present in b; both inputs are
// sorted and the order of a is preserved.
func difference(a, b []xag.Node) []xag.Node {
	var out []xag.Node
	i, j := 0, 0
	//
	for i < len(a) {
		switch {
		case j >= len(b) || a[i] < b[j]:
			out = append(out, a[i])
			i++
		case a[i] > b[j]:
			j++
		default:
			i++
			j++
		}
	}
	//
	return out
}
