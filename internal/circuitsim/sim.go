// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.

// Package circuitsim executes emitted operation bodies on computational
// basis states.  It understands exactly the instruction shapes the writer
// produces (struct indexing, runtime array access, and the X/CNOT/CCNOT
// intrinsics) and exists to let tests check the |x⟩|0⟩ → |x⟩|f(x)⟩ contract,
// ancilla restoration, and alias-count balance.
package circuitsim

import (
	"fmt"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/value"
)

// Qubit identifies one simulated qubit.
type Qubit int

// Array is a runtime qubit array.
type Array struct {
	Qubits []Qubit
}

// Tuple is a struct of qubits or arrays.
type Tuple struct {
	Fields []any
}

// cell is a loadable address into a tuple or array.
type cell struct {
	get func() any
}

// Simulator holds classical basis-state amplitudes for a set of qubits.
type Simulator struct {
	state []bool
	// Ancilla arrays allocated during the run, in allocation order.
	Allocated []*Array
	// Released counts release_array calls.
	Released int
	// AliasBalance sums every update_alias_count delta.
	AliasBalance int
}

// New creates a simulator without qubits.
func New() *Simulator {
	return &Simulator{}
}

// Alloc creates a fresh qubit in the given basis state.
func (s *Simulator) Alloc(v bool) Qubit {
	s.state = append(s.state, v)
	//
	return Qubit(len(s.state) - 1)
}

// AllocWord creates a little-endian register holding the low bits of v.
func (s *Simulator) AllocWord(v uint64, width int) *Array {
	arr := &Array{}
	//
	for i := 0; i < width; i++ {
		arr.Qubits = append(arr.Qubits, s.Alloc(v&(1<<uint(i)) != 0))
	}
	//
	return arr
}

// Get reads a qubit's basis state.
func (s *Simulator) Get(q Qubit) bool {
	return s.state[q]
}

// Word reads a register back as an integer.
func (s *Simulator) Word(arr *Array) uint64 {
	v := uint64(0)
	//
	for i, q := range arr.Qubits {
		if s.state[q] {
			v |= 1 << uint(i)
		}
	}
	//
	return v
}

// Run interprets the entry block of an operation whose parameters are bound
// to the given runtime values (Qubit, *Array or *Tuple).
func (s *Simulator) Run(op *ir.Func, args ...any) error {
	if len(op.Blocks) != 1 {
		return fmt.Errorf("expected a single emitted block in %s, got %d", op.Name(), len(op.Blocks))
	}
	//
	env := make(map[value.Value]any)
	for i, arg := range args {
		env[op.Params[i]] = arg
	}
	//
	for _, inst := range op.Blocks[0].Insts {
		if err := s.step(inst, env); err != nil {
			return err
		}
	}
	//
	return nil
}

func (s *Simulator) step(inst ir.Instruction, env map[value.Value]any) error {
	resolve := func(v value.Value) any {
		if c, ok := v.(*constant.Int); ok {
			return c.X.Int64()
		}
		//
		return env[v]
	}
	//
	switch inst := inst.(type) {
	case *ir.InstGetElementPtr:
		tuple, ok := resolve(inst.Src).(*Tuple)
		if !ok {
			return fmt.Errorf("getelementptr into non-tuple: %s", inst.LLString())
		}
		//
		idx := resolve(inst.Indices[len(inst.Indices)-1]).(int64)
		env[inst] = cell{get: func() any { return tuple.Fields[idx] }}
	case *ir.InstBitCast:
		env[inst] = resolve(inst.From)
	case *ir.InstLoad:
		c, ok := resolve(inst.Src).(cell)
		if !ok {
			return fmt.Errorf("load from non-address: %s", inst.LLString())
		}
		//
		env[inst] = c.get()
	case *ir.InstCall:
		return s.call(inst, env, resolve)
	default:
		return fmt.Errorf("unexpected instruction in emitted body: %s", inst.LLString())
	}
	//
	return nil
}

func (s *Simulator) call(inst *ir.InstCall, env map[value.Value]any, resolve func(value.Value) any) error {
	callee, ok := inst.Callee.(*ir.Func)
	if !ok {
		return fmt.Errorf("indirect call in emitted body")
	}
	//
	qubitArg := func(i int) Qubit {
		return resolve(inst.Args[i]).(Qubit)
	}
	//
	switch callee.Name() {
	case "__quantum__qis__x__body":
		q := qubitArg(0)
		s.state[q] = !s.state[q]
	case "Microsoft__Quantum__Intrinsic__CNOT__body":
		ctrl, tgt := qubitArg(0), qubitArg(1)
		if s.state[ctrl] {
			s.state[tgt] = !s.state[tgt]
		}
	case "Microsoft__Quantum__Intrinsic__CCNOT__body":
		c1, c2, tgt := qubitArg(0), qubitArg(1), qubitArg(2)
		if s.state[c1] && s.state[c2] {
			s.state[tgt] = !s.state[tgt]
		}
	case "__quantum__rt__qubit_allocate_array":
		n := resolve(inst.Args[0]).(int64)
		arr := &Array{}
		//
		for i := int64(0); i < n; i++ {
			arr.Qubits = append(arr.Qubits, s.Alloc(false))
		}
		//
		s.Allocated = append(s.Allocated, arr)
		env[inst] = arr
	case "__quantum__rt__qubit_release_array":
		s.Released++
	case "__quantum__rt__array_update_alias_count":
		s.AliasBalance += int(resolve(inst.Args[1]).(int64))
	case "__quantum__rt__array_get_element_ptr_1d":
		arr, ok := resolve(inst.Args[0]).(*Array)
		if !ok {
			return fmt.Errorf("array access into non-array: %s", inst.LLString())
		}
		//
		idx := resolve(inst.Args[1]).(int64)
		env[inst] = cell{get: func() any { return arr.Qubits[idx] }}
	default:
		return fmt.Errorf("unexpected call to %s in emitted body", callee.Name())
	}
	//
	return nil
}

// AncillasClean reports whether every allocated ancilla returned to zero.
func (s *Simulator) AncillasClean() bool {
	for _, arr := range s.Allocated {
		for _, q := range arr.Qubits {
			if s.state[q] {
				return false
			}
		}
	}
	//
	return true
}
