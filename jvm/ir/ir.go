// Copyright 2015 Google Inc. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package ir

import (
	"math"
	"sort"

	"hookinject/jvm/cpool"
	"hookinject/jvm/ops"
	"hookinject/jvm/scalars"
	"hookinject/util"
)

// Instructions roughly correspond to JVM bytecode instructions, with constant
// pool references kept in symbolic form and branch offsets replaced by
// pointers to LABEL instructions. Instructions are identified by pointer, so
// the same *Instruction must never appear in two lists at once.
type insTag uint8

const (
	INVALID_INS insTag = iota
	LABEL
	VAR
	IINC
	JUMP
	SWITCH
	CONSTANT
	MEMBER
	TYPEREF
	INDY
	PUSH
	OTHER
)

type Instruction struct {
	Op  byte
	Tag insTag
	Var
	Jump
	Switch
	Ref cpool.Const
	// BIPUSH/SIPUSH value, NEWARRAY element type, MULTIANEWARRAY dimensions
	Operand int32
}

// Local variable access. Delta is only used by IINC.
type Var struct {
	Slot  uint16
	T     scalars.T
	Delta int16
}

type Jump struct {
	Target *Instruction
}

// Keys are sorted. For TABLESWITCH they are contiguous.
type Switch struct {
	Default *Instruction
	Keys    []int32
	Targets []*Instruction
}

func (self *Instruction) IsLabel() bool { return self.Tag == LABEL }

func (self *Instruction) IsJump() bool {
	return self.Tag == JUMP || self.Tag == SWITCH
}

func (self *Instruction) IsReturn() bool {
	return self.Tag == OTHER && ops.IsReturn(self.Op)
}

func (self *Instruction) IsVarAccess() bool {
	return self.Tag == VAR || self.Tag == IINC
}

// Writes reports whether the instruction assigns a local variable.
func (self *Instruction) Writes() bool {
	return self.Tag == IINC || (self.Tag == VAR && ops.IsStore(self.Op))
}

func (self *Instruction) Fallsthrough() bool {
	switch self.Tag {
	case SWITCH:
		return false
	case JUMP:
		return !(self.Op == ops.GOTO || self.Op == ops.GOTO_W)
	case VAR:
		return self.Op != ops.RET
	case OTHER:
		return !(self.Op == ops.ATHROW || ops.IsReturn(self.Op))
	default:
		return true
	}
}

func (self *Instruction) Successors() []*Instruction {
	switch self.Tag {
	case JUMP:
		return []*Instruction{self.Jump.Target}
	case SWITCH:
		result := make([]*Instruction, 0, 1+len(self.Switch.Targets))
		result = append(result, self.Switch.Targets...)
		return append(result, self.Default)
	default:
		return nil
	}
}

// Copy returns a shallow copy with branch targets translated through labels.
// Targets missing from labels are kept as is.
func (self *Instruction) Copy(labels map[*Instruction]*Instruction) *Instruction {
	dup := *self
	lookup := func(target *Instruction) *Instruction {
		if mapped, ok := labels[target]; ok {
			return mapped
		}
		return target
	}
	switch self.Tag {
	case JUMP:
		dup.Jump.Target = lookup(self.Jump.Target)
	case SWITCH:
		dup.Default = lookup(self.Default)
		dup.Keys = append([]int32(nil), self.Keys...)
		dup.Targets = make([]*Instruction, len(self.Targets))
		for i, t := range self.Targets {
			dup.Targets[i] = lookup(t)
		}
	case INDY, CONSTANT:
		if self.Ref.Bootstrap != nil {
			b := *self.Ref.Bootstrap
			b.Args = append([]cpool.Const(nil), b.Args...)
			dup.Ref.Bootstrap = &b
		}
	}
	return &dup
}

func NewLabel() *Instruction {
	return &Instruction{Tag: LABEL}
}

// NewVar builds a long form load, store or RET.
func NewVar(op byte, slot uint16) *Instruction {
	util.Assert(ops.IsLoad(op) || ops.IsStore(op) || op == ops.RET)
	return &Instruction{Op: op, Tag: VAR, Var: Var{Slot: slot, T: ops.VarType(op)}}
}

func NewLoad(st scalars.T, slot uint16) *Instruction  { return NewVar(ops.LoadOp(st), slot) }
func NewStore(st scalars.T, slot uint16) *Instruction { return NewVar(ops.StoreOp(st), slot) }

func NewIinc(slot uint16, delta int16) *Instruction {
	return &Instruction{Op: ops.IINC, Tag: IINC, Var: Var{Slot: slot, T: scalars.INT, Delta: delta}}
}

func NewJump(op byte, target *Instruction) *Instruction {
	util.Assert(target != nil && target.Tag == LABEL)
	return &Instruction{Op: op, Tag: JUMP, Jump: Jump{target}}
}

func NewGoto(target *Instruction) *Instruction { return NewJump(ops.GOTO, target) }

// NewSwitch picks between TABLESWITCH and LOOKUPSWITCH by encoded size.
func NewSwitch(def *Instruction, jumps map[int32]*Instruction) *Instruction {
	util.Assert(len(jumps) > 0)
	keys := make([]int32, 0, len(jumps))
	for k := range jumps {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	low, high := int64(keys[0]), int64(keys[len(keys)-1])

	tableCount := high - low + 1
	tableSize := 4 * (tableCount + 1)
	jumpSize := 8 * int64(len(jumps))

	self := &Instruction{Tag: SWITCH, Switch: Switch{Default: def}}
	if jumpSize > tableSize {
		self.Op = ops.TABLESWITCH
		for k := low; k <= high; k++ {
			target, ok := jumps[int32(k)]
			if !ok {
				target = def
			}
			self.Keys = append(self.Keys, int32(k))
			self.Targets = append(self.Targets, target)
		}
	} else {
		self.Op = ops.LOOKUPSWITCH
		for _, k := range keys {
			self.Keys = append(self.Keys, k)
			self.Targets = append(self.Targets, jumps[k])
		}
	}
	return self
}

// NewConst loads a constant pool value with the LDC family.
func NewConst(c cpool.Const) *Instruction {
	op := byte(ops.LDC)
	if c.Tag == cpool.CONSTANT_Long || c.Tag == cpool.CONSTANT_Double {
		op = ops.LDC2_W
	}
	return &Instruction{Op: op, Tag: CONSTANT, Ref: c}
}

func NewInt(v int32) *Instruction {
	switch {
	case -1 <= v && v <= 5:
		return NewOther(byte(int32(ops.ICONST_0) + v))
	case v == int32(int8(v)):
		return NewPush(ops.BIPUSH, v)
	case v == int32(int16(v)):
		return NewPush(ops.SIPUSH, v)
	}
	return NewConst(cpool.Const{Tag: cpool.CONSTANT_Integer, X: uint64(uint32(v))})
}

func NewLong(v int64) *Instruction {
	if v == 0 || v == 1 {
		return NewOther(ops.LCONST_0 + byte(v))
	}
	return NewConst(cpool.Const{Tag: cpool.CONSTANT_Long, X: uint64(v)})
}

func NewFloat(v float32) *Instruction {
	bits := math.Float32bits(v)
	switch bits {
	case math.Float32bits(0), math.Float32bits(1), math.Float32bits(2):
		return NewOther(ops.FCONST_0 + byte(v))
	}
	return NewConst(cpool.Const{Tag: cpool.CONSTANT_Float, X: uint64(bits)})
}

func NewDouble(v float64) *Instruction {
	bits := math.Float64bits(v)
	switch bits {
	case math.Float64bits(0), math.Float64bits(1):
		return NewOther(ops.DCONST_0 + byte(v))
	}
	return NewConst(cpool.Const{Tag: cpool.CONSTANT_Double, X: bits})
}

func NewString(s string) *Instruction {
	return NewConst(cpool.Const{Tag: cpool.CONSTANT_String, S: s})
}

func NewClassConst(name string) *Instruction {
	return NewConst(cpool.Const{Tag: cpool.CONSTANT_Class, S: name})
}

// NewMember builds a field access or an invoke. itf marks members of
// interfaces, which is implied for INVOKEINTERFACE.
func NewMember(op byte, owner, name, desc string, itf bool) *Instruction {
	tag := byte(cpool.CONSTANT_Methodref)
	switch op {
	case ops.GETSTATIC, ops.PUTSTATIC, ops.GETFIELD, ops.PUTFIELD:
		tag = cpool.CONSTANT_Fieldref
	case ops.INVOKEINTERFACE:
		tag = cpool.CONSTANT_InterfaceMethodref
	case ops.INVOKESPECIAL, ops.INVOKESTATIC:
		if itf {
			tag = cpool.CONSTANT_InterfaceMethodref
		}
	}
	return &Instruction{Op: op, Tag: MEMBER, Ref: cpool.Const{Tag: tag, Owner: owner, Name: name, Desc: desc}}
}

func NewTypeRef(op byte, class string) *Instruction {
	return &Instruction{Op: op, Tag: TYPEREF, Ref: cpool.Const{Tag: cpool.CONSTANT_Class, S: class}}
}

func NewMultiANewArray(class string, dims uint8) *Instruction {
	ins := NewTypeRef(ops.MULTIANEWARRAY, class)
	ins.Operand = int32(dims)
	return ins
}

func NewPush(op byte, v int32) *Instruction {
	return &Instruction{Op: op, Tag: PUSH, Operand: v}
}

func NewIndy(name, desc string, bsm *cpool.Bootstrap) *Instruction {
	return &Instruction{Op: ops.INVOKEDYNAMIC, Tag: INDY,
		Ref: cpool.Const{Tag: cpool.CONSTANT_InvokeDynamic, Name: name, Desc: desc, Bootstrap: bsm}}
}

func NewOther(op byte) *Instruction { return &Instruction{Op: op, Tag: OTHER} }
