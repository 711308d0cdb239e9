// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.
package qir

import (
	"slices"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"
	log "github.com/sirupsen/logrus"

	"github.com/microsoft/Quantum/pkg/xag"
)

// maxBlockDepth bounds the recursive block descent.  Cyclic control flow
// (unbounded loops) trips it and is rejected rather than diverging.
const maxBlockDepth = 1024

// tupleCursor addresses one slot of a tuple's signal vector.  It is the
// binding of a struct-index computation, resolved when a store or load hits
// the computed address.
type tupleCursor struct {
	base  value.Value
	index int
}

// frame holds the value-to-signal map of one function lowering.  Recursive
// call descent pushes a fresh frame, so formal parameters and locals of the
// callee never clash with the caller's.
type frame struct {
	signals map[value.Value][]xag.Signal
}

type reader struct {
	net    *xag.Network
	frames []*frame
	// Tuple-header aliases (bitcast value to original allocation) and
	// tuple-element addresses (struct-index result to slot cursor).
	tupleAlias map[value.Value]value.Value
	tupleSlot  map[value.Value]tupleCursor
	depth      int
}

// ReadFunction lowers the body of a classical function into a fresh XAG:
// every parameter bit becomes a primary input and every return bit a primary
// output.  Dangling nodes are cleaned up before the network is returned.
func ReadFunction(fn *ir.Func) (*xag.Network, error) {
	log.Infof("process function %s", fn.Name())
	//
	r := &reader{
		net:        xag.New(),
		tupleAlias: make(map[value.Value]value.Value),
		tupleSlot:  make(map[value.Value]tupleCursor),
	}
	//
	if err := ValidateSignature(fn); err != nil {
		return nil, err
	}
	//
	r.push()
	r.bindParams(fn)
	//
	outs, err := r.processFunction(fn)
	if err != nil {
		return nil, err
	}
	//
	for _, s := range outs {
		r.net.CreatePO(s)
	}
	//
	return xag.Cleanup(r.net), nil
}

// ValidateSignature checks that a function is lowerable: parameters must be
// 1-bit or 64-bit integers, and the return type a 1-bit or 64-bit integer or
// a pointer to the tuple-header struct.
func ValidateSignature(fn *ir.Func) error {
	for i, param := range fn.Params {
		if w := intWidth(param.Type()); w != 1 && w != 64 {
			return signatureErrorf("unsupported type %s for argument %d of %s", param.Type(), i, fn.Name())
		}
	}
	//
	ret := fn.Sig.RetType
	if w := intWidth(ret); w == 1 || w == 64 {
		return nil
	}
	//
	if isTupleHeaderPtr(ret) {
		return nil
	}
	//
	return signatureErrorf("unsupported return type %s of %s", ret, fn.Name())
}

func (r *reader) bindParams(fn *ir.Func) {
	for _, param := range fn.Params {
		vec := make([]xag.Signal, intWidth(param.Type()))
		for i := range vec {
			vec[i] = r.net.CreatePI()
		}
		//
		r.bind(param, vec)
	}
}

// processFunction normalizes a function body and walks it from the entry
// block.  It is also the entry point for recursive lowering of called
// classical functions.
func (r *reader) processFunction(fn *ir.Func) ([]xag.Signal, error) {
	if len(fn.Blocks) == 0 {
		return nil, shapeErrorf("function %s has no body", fn.Name())
	}
	//
	DemotePhis(fn)
	//
	return r.processBlock(fn.Blocks[0])
}

// processBlock interprets the instructions of one basic block in order,
// recursing into branch successors; the result is the signal vector of the
// block's terminator.
func (r *reader) processBlock(b *ir.Block) ([]xag.Signal, error) {
	r.depth++
	defer func() { r.depth-- }()
	//
	if r.depth > maxBlockDepth {
		return nil, shapeErrorf("control flow too deep in block %s: unbounded loops are not supported", b.Name())
	}
	//
	var prev ir.Instruction
	//
	for _, inst := range b.Insts {
		if err := r.processInst(inst, prev); err != nil {
			return nil, err
		}
		//
		prev = inst
	}
	//
	return r.processTerm(b.Term)
}

//nolint:gocyclo
func (r *reader) processInst(inst, prev ir.Instruction) error {
	switch inst := inst.(type) {
	case *ir.InstAnd:
		return r.bitwise(inst, inst.X, inst.Y, r.net.CreateAnd)
	case *ir.InstOr:
		return r.bitwise(inst, inst.X, inst.Y, r.net.CreateOr)
	case *ir.InstXor:
		return r.bitwise(inst, inst.X, inst.Y, r.net.CreateXor)
	case *ir.InstICmp:
		return r.compare(inst)
	case *ir.InstSelect:
		return r.selectInst(inst)
	case *ir.InstAdd:
		lhs, rhs, err := r.operands(inst.X, inst.Y)
		if err != nil {
			return err
		}
		//
		sum := slices.Clone(lhs)
		xag.ModularAdderInplace(r.net, sum, rhs)
		r.bind(inst, sum)
		//
		return nil
	case *ir.InstMul:
		// A bare multiplication has no modulus; it only becomes
		// meaningful as the predecessor of an srem, which synthesizes
		// the modular product.  Nothing is bound here.
		return nil
	case *ir.InstSRem:
		return r.modularRemainder(inst, prev)
	case *ir.InstCall:
		return r.call(inst)
	case *ir.InstAlloca:
		if inst.NElems != nil || intWidth(inst.ElemType) != 1 {
			return shapeErrorf("unsupported alloca instruction: %s", inst.LLString())
		}
		//
		r.bind(inst, []xag.Signal{r.net.ConstFalse()})
		//
		return nil
	case *ir.InstLoad:
		return r.load(inst)
	case *ir.InstBitCast:
		return r.bitcast(inst)
	case *ir.InstGetElementPtr:
		return r.elementPtr(inst)
	case *ir.InstStore:
		return r.store(inst)
	default:
		return opcodeErrorf("unsupported op code: %s", inst.LLString())
	}
}

func (r *reader) processTerm(term ir.Terminator) ([]xag.Signal, error) {
	switch term := term.(type) {
	case *ir.TermRet:
		if term.X == nil {
			return nil, shapeErrorf("classical function returns void")
		}
		//
		return r.getSignal(term.X)
	case *ir.TermBr:
		return r.processBlock(term.Target.(*ir.Block))
	case *ir.TermCondBr:
		cond, err := r.getSignal(term.Cond)
		if err != nil {
			return nil, err
		}
		// Both successors lower regardless of the condition; the 1-bit
		// results combine into an if-then-else.
		thn, err := r.processBlock(term.TargetTrue.(*ir.Block))
		if err != nil {
			return nil, err
		}
		//
		els, err := r.processBlock(term.TargetFalse.(*ir.Block))
		if err != nil {
			return nil, err
		}
		//
		return []xag.Signal{r.net.CreateIte(cond[0], thn[0], els[0])}, nil
	default:
		return nil, opcodeErrorf("unsupported terminator: %s", term.LLString())
	}
}

// bitwise combines two operand vectors element-wise.
func (r *reader) bitwise(inst value.Value, x, y value.Value, gate func(xag.Signal, xag.Signal) xag.Signal) error {
	lhs, rhs, err := r.operands(x, y)
	if err != nil {
		return err
	}
	//
	out := make([]xag.Signal, len(lhs))
	for i := range lhs {
		out[i] = gate(lhs[i], rhs[i])
	}
	//
	r.bind(inst, out)
	//
	return nil
}

func (r *reader) compare(inst *ir.InstICmp) error {
	lhs, rhs, err := r.operands(inst.X, inst.Y)
	if err != nil {
		return err
	}
	//
	switch inst.Pred {
	case enum.IPredEQ:
		// Element-wise equivalence, conjoined across all bits.
		xnors := make([]xag.Signal, len(lhs))
		for i := range lhs {
			xnors[i] = r.net.CreateXnor(lhs[i], rhs[i])
		}
		//
		r.bind(inst, []xag.Signal{r.net.CreateNaryAnd(xnors)})
	case enum.IPredNE:
		xors := make([]xag.Signal, len(lhs))
		for i := range lhs {
			xors[i] = r.net.CreateXor(lhs[i], rhs[i])
		}
		//
		r.bind(inst, []xag.Signal{r.net.CreateNaryOr(xors)})
	case enum.IPredSGT:
		// Subtract lhs from rhs; the borrow-out decides the comparison.
		diff := slices.Clone(rhs)
		borrow := r.net.ConstTrue()
		xag.CarryRippleSubtractorInplace(r.net, diff, lhs, &borrow)
		r.bind(inst, []xag.Signal{borrow})
	default:
		return predicateErrorf("unsupported icmp predicate %s", inst.Pred)
	}
	//
	return nil
}

func (r *reader) selectInst(inst *ir.InstSelect) error {
	cond, err := r.getSignal(inst.Cond)
	if err != nil {
		return err
	}
	//
	thn, els, err := r.operands(inst.ValueTrue, inst.ValueFalse)
	if err != nil {
		return err
	}
	//
	switch intWidth(inst.Type()) {
	case 1:
		r.bind(inst, []xag.Signal{r.net.CreateIte(cond[0], thn[0], els[0])})
	case 64:
		r.bind(inst, xag.Mux(r.net, cond[0], thn, els))
	default:
		return shapeErrorf("unsupported select operation: %s", inst.LLString())
	}
	//
	return nil
}

// modularRemainder applies the srem-annotates-previous rule: the remainder
// of an immediately preceding add or mul by a constant divisor becomes the
// modular variant of that operation, rebuilt from its original operands.
func (r *reader) modularRemainder(inst *ir.InstSRem, prev ir.Instruction) error {
	divisor, ok := inst.Y.(*constant.Int)
	if !ok {
		return shapeErrorf("srem with non-constant divisor: %s", inst.LLString())
	}
	//
	m := constUint64(divisor)
	if m == 0 {
		return shapeErrorf("srem with zero divisor: %s", inst.LLString())
	}
	//
	switch prev := prev.(type) {
	case *ir.InstAdd:
		if inst.X != value.Value(prev) {
			return shapeErrorf("srem operand is not the preceding add: %s", inst.LLString())
		}
		//
		lhs, rhs, err := r.operands(prev.X, prev.Y)
		if err != nil {
			return err
		}
		//
		sum := slices.Clone(lhs)
		xag.ModularAdderInplaceMod(r.net, sum, rhs, m)
		r.bind(inst, sum)
	case *ir.InstMul:
		if inst.X != value.Value(prev) {
			return shapeErrorf("srem operand is not the preceding mul: %s", inst.LLString())
		}
		//
		lhs, rhs, err := r.operands(prev.X, prev.Y)
		if err != nil {
			return err
		}
		//
		product := slices.Clone(lhs)
		xag.ModularMultiplierInplaceMod(r.net, product, rhs, m)
		r.bind(inst, product)
	default:
		return shapeErrorf("srem without a preceding add or mul: %s", inst.LLString())
	}
	//
	return nil
}

func (r *reader) call(inst *ir.InstCall) error {
	callee, ok := inst.Callee.(*ir.Func)
	if !ok {
		return shapeErrorf("unsupported indirect call: %s", inst.LLString())
	}
	//
	if callee.Name() == tupleCreate {
		size, err := tupleCreateSize(inst)
		if err != nil {
			return err
		}
		// Fresh tuples start as constant false in every slot.
		vec := make([]xag.Signal, size)
		for i := range vec {
			vec[i] = r.net.ConstFalse()
		}
		//
		r.bind(inst, vec)
		//
		return nil
	}
	// Classical calls inline: bind formals to actuals and lower the body.
	if err := ValidateSignature(callee); err != nil || len(callee.Blocks) == 0 {
		return opcodeErrorf("unsupported function call to %s", callee.Name())
	}
	//
	args := make([][]xag.Signal, len(inst.Args))
	//
	for i, arg := range inst.Args {
		vec, err := r.getSignal(arg)
		if err != nil {
			return err
		}
		//
		args[i] = vec
	}
	//
	r.push()
	//
	for i, param := range callee.Params {
		r.bind(param, args[i])
	}
	//
	outs, err := r.processFunction(callee)
	r.pop()
	//
	if err != nil {
		return err
	}
	//
	r.bind(inst, outs)
	//
	return nil
}

func (r *reader) load(inst *ir.InstLoad) error {
	// Loading through a tuple-element address reads one slot.
	if cursor, ok := r.tupleSlot[inst.Src]; ok {
		vec, err := r.getSignal(cursor.base)
		if err != nil {
			return err
		}
		//
		r.bind(inst, []xag.Signal{vec[cursor.index]})
		//
		return nil
	}
	//
	vec, err := r.getSignal(inst.Src)
	if err != nil {
		return err
	}
	//
	r.bind(inst, slices.Clone(vec))
	//
	return nil
}

func (r *reader) bitcast(inst *ir.InstBitCast) error {
	// A cast of a value with signals aliases the tuple header.
	if base, ok := r.resolveBase(inst.From); ok {
		r.tupleAlias[inst] = base
		return nil
	}
	// Integer-to-integer casts of constants rebuild the constant word at
	// the declared width.
	if c, ok := inst.From.(*constant.Int); ok {
		if w := intWidth(inst.To); w > 0 {
			r.bind(inst, xag.ConstantWord(r.net, constUint64(c), w))
			return nil
		}
	}
	//
	return shapeErrorf("unsupported bitcast instruction: %s", inst.LLString())
}

func (r *reader) elementPtr(inst *ir.InstGetElementPtr) error {
	base, ok := r.resolveBase(inst.Src)
	if !ok {
		return shapeErrorf("getelementptr into unknown tuple: %s", inst.LLString())
	}
	//
	if len(inst.Indices) != 2 {
		return shapeErrorf("expecting two getelementptr indices: %s", inst.LLString())
	}
	//
	first, ok := inst.Indices[0].(*constant.Int)
	if !ok || first.X.Sign() != 0 {
		return shapeErrorf("expecting zero first getelementptr index: %s", inst.LLString())
	}
	//
	second, ok := inst.Indices[1].(*constant.Int)
	if !ok {
		return shapeErrorf("expecting constant getelementptr indices: %s", inst.LLString())
	}
	// Field k of the tuple struct addresses slot k-1: field 0 is the
	// reserved header.
	vec, err := r.getSignal(base)
	if err != nil {
		return err
	}
	//
	k := int(second.X.Int64())
	if k < 1 || k > len(vec) {
		return shapeErrorf("getelementptr index out of tuple bounds: %s", inst.LLString())
	}
	//
	r.tupleSlot[inst] = tupleCursor{base: base, index: k - 1}
	//
	return nil
}

func (r *reader) store(inst *ir.InstStore) error {
	src, err := r.getSignal(inst.Src)
	if err != nil {
		return err
	}
	// A store through a tuple-element address overwrites one slot.
	if cursor, ok := r.tupleSlot[inst.Dst]; ok {
		vec, err := r.getSignal(cursor.base)
		if err != nil {
			return err
		}
		//
		vec[cursor.index] = src[0]
		//
		return nil
	}
	//
	r.bind(inst.Dst, slices.Clone(src))
	//
	return nil
}

// ============================================================================
// Value resolution
// ============================================================================

func (r *reader) push() {
	r.frames = append(r.frames, &frame{signals: make(map[value.Value][]xag.Signal)})
}

func (r *reader) pop() {
	r.frames = r.frames[:len(r.frames)-1]
}

func (r *reader) top() *frame {
	return r.frames[len(r.frames)-1]
}

func (r *reader) bind(v value.Value, vec []xag.Signal) {
	r.top().signals[v] = vec
}

// resolveBase follows tuple-header aliases to the value owning the signal
// vector, accepting the owner itself.
func (r *reader) resolveBase(v value.Value) (value.Value, bool) {
	for {
		if base, ok := r.tupleAlias[v]; ok {
			v = base
			continue
		}
		//
		break
	}
	//
	if _, ok := r.top().signals[v]; ok {
		return v, true
	}
	//
	return nil, false
}

// getSignal resolves the signal vector of a value: frame bindings first,
// then integer constants (llir does not intern them, so they resolve by
// value), then tuple-header aliases.
func (r *reader) getSignal(v value.Value) ([]xag.Signal, error) {
	if vec, ok := r.top().signals[v]; ok {
		return vec, nil
	}
	//
	if c, ok := v.(*constant.Int); ok {
		switch c.Typ.BitSize {
		case 1:
			return []xag.Signal{r.net.ConstFalse().NotIf(c.X.Sign() != 0)}, nil
		default:
			vec := xag.ConstantWord(r.net, constUint64(c), int(c.Typ.BitSize))
			r.bind(v, vec)
			//
			return vec, nil
		}
	}
	//
	if base, ok := r.tupleAlias[v]; ok {
		return r.getSignal(base)
	}
	//
	if _, ok := v.(*ir.InstMul); ok {
		return nil, shapeErrorf("64-bit multiplication requires an enclosing srem")
	}
	//
	return nil, shapeErrorf("cannot find value %s", v.Ident())
}

// ============================================================================
// Helpers
// ============================================================================

// operands resolves two operand vectors and checks they agree in width.
func (r *reader) operands(x, y value.Value) ([]xag.Signal, []xag.Signal, error) {
	lhs, err := r.getSignal(x)
	if err != nil {
		return nil, nil, err
	}
	//
	rhs, err := r.getSignal(y)
	if err != nil {
		return nil, nil, err
	}
	//
	if len(lhs) != len(rhs) {
		return nil, nil, shapeErrorf("operand width mismatch between %s and %s", x.Ident(), y.Ident())
	}
	//
	return lhs, rhs, nil
}

// tupleCreateSize extracts the element count from the sizing argument of a
// __quantum__rt__tuple_create call.  The canonical frontend form is the
// constant expression mul(sizeof-ptrtoint, count); the struct-layout form
// ptrtoint(gep(S* null, 1)) is also recognized as len(fields)-1.
func tupleCreateSize(inst *ir.InstCall) (int, error) {
	if len(inst.Args) != 1 {
		return 0, shapeErrorf("unexpected arguments to %s call", tupleCreate)
	}
	//
	switch arg := inst.Args[0].(type) {
	case *constant.ExprMul:
		if count, ok := arg.Y.(*constant.Int); ok {
			return int(count.X.Int64()), nil
		}
	case *constant.ExprPtrToInt:
		if gep, ok := arg.From.(*constant.ExprGetElementPtr); ok {
			if st, ok := gep.ElemType.(*types.StructType); ok {
				return len(st.Fields) - 1, nil
			}
		}
	}
	//
	return 0, shapeErrorf("unexpected expression in %s call: %s", tupleCreate, inst.LLString())
}

// intWidth returns the bit width of an integer type, or 0 otherwise.
func intWidth(t types.Type) int {
	if it, ok := t.(*types.IntType); ok {
		return int(it.BitSize)
	}
	//
	return 0
}

// isTupleHeaderPtr recognizes a pointer to the QIR tuple-header struct.
func isTupleHeaderPtr(t types.Type) bool {
	ptr, ok := t.(*types.PointerType)
	if !ok {
		return false
	}
	//
	st, ok := ptr.ElemType.(*types.StructType)
	//
	return ok && st.TypeName == "TupleHeader"
}

// constUint64 reads an integer constant as its unsigned two's-complement
// word.
func constUint64(c *constant.Int) uint64 {
	if c.X.Sign() < 0 {
		return uint64(c.X.Int64())
	}
	//
	return c.X.Uint64()
}
