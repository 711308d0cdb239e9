// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.
package qir

import (
	"fmt"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/value"
)

// DemotePhis rewrites every φ instruction into an entry-block stack slot:
// each predecessor stores its incoming value before branching, and the φ
// itself becomes a load from the slot.  This is the register-to-memory
// demotion the block walker relies on; it collapses SSA merge points into
// store/load chains.  Running it on a function without φs changes nothing,
// so the pass is idempotent.
func DemotePhis(fn *ir.Func) {
	if len(fn.Blocks) == 0 {
		return
	}
	//
	entry := fn.Blocks[0]
	slot := 0
	//
	for _, block := range fn.Blocks {
		for idx := 0; idx < len(block.Insts); idx++ {
			phi, ok := block.Insts[idx].(*ir.InstPhi)
			if !ok {
				continue
			}
			//
			alloca := ir.NewAlloca(phi.Type())
			alloca.SetName(fmt.Sprintf("phi.slot.%d", slot))
			entry.Insts = append([]ir.Instruction{alloca}, entry.Insts...)
			//
			if block == entry {
				idx++
			}
			// Every predecessor writes its incoming value before its
			// terminator runs.
			for _, inc := range phi.Incs {
				pred := inc.Pred.(*ir.Block)
				pred.Insts = append(pred.Insts, ir.NewStore(inc.X, alloca))
			}
			//
			load := ir.NewLoad(phi.Type(), alloca)
			load.SetName(fmt.Sprintf("phi.reload.%d", slot))
			block.Insts[idx] = load
			slot++
			//
			replaceUses(fn, phi, load)
		}
	}
}

// replaceUses swaps every operand reference to old for new across the
// function body.
func replaceUses(fn *ir.Func, old, repl value.Value) {
	swap := func(v *value.Value) {
		if *v == old {
			*v = repl
		}
	}
	//
	for _, block := range fn.Blocks {
		for _, inst := range block.Insts {
			switch inst := inst.(type) {
			case *ir.InstAnd:
				swap(&inst.X)
				swap(&inst.Y)
			case *ir.InstOr:
				swap(&inst.X)
				swap(&inst.Y)
			case *ir.InstXor:
				swap(&inst.X)
				swap(&inst.Y)
			case *ir.InstAdd:
				swap(&inst.X)
				swap(&inst.Y)
			case *ir.InstMul:
				swap(&inst.X)
				swap(&inst.Y)
			case *ir.InstSRem:
				swap(&inst.X)
				swap(&inst.Y)
			case *ir.InstICmp:
				swap(&inst.X)
				swap(&inst.Y)
			case *ir.InstSelect:
				swap(&inst.Cond)
				swap(&inst.ValueTrue)
				swap(&inst.ValueFalse)
			case *ir.InstLoad:
				swap(&inst.Src)
			case *ir.InstStore:
				swap(&inst.Src)
				swap(&inst.Dst)
			case *ir.InstBitCast:
				swap(&inst.From)
			case *ir.InstGetElementPtr:
				swap(&inst.Src)
				//
				for i := range inst.Indices {
					swap(&inst.Indices[i])
				}
			case *ir.InstCall:
				for i := range inst.Args {
					swap(&inst.Args[i])
				}
			case *ir.InstPhi:
				for _, inc := range inst.Incs {
					swap(&inc.X)
				}
			}
		}
		//
		switch term := block.Term.(type) {
		case *ir.TermRet:
			if term.X != nil {
				swap(&term.X)
			}
		case *ir.TermCondBr:
			swap(&term.Cond)
		}
	}
}
