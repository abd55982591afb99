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
package classfile

import (
	"hookinject/byteio"
	"hookinject/jvm/cpool"
	"hookinject/jvm/errors"
	"hookinject/jvm/ir"
	"hookinject/jvm/ops"
	"hookinject/jvm/scalars"
	"hookinject/util"
)

type codeWriter struct {
	pool   *cpool.Pool
	instrs []*ir.Instruction
	// constant pool index of each CONSTANT, MEMBER, TYPEREF and INDY
	index map[*ir.Instruction]uint16
	// list index of each label
	labels map[*ir.Instruction]int
	wide   map[*ir.Instruction]bool
}

func newCodeWriter(pool *cpool.Pool, code *ir.List) *codeWriter {
	self := &codeWriter{
		pool:   pool,
		instrs: code.Instructions(),
		index:  make(map[*ir.Instruction]uint16),
		labels: make(map[*ir.Instruction]int),
		wide:   make(map[*ir.Instruction]bool),
	}
	for i, ins := range self.instrs {
		switch ins.Tag {
		case ir.LABEL:
			self.labels[ins] = i
		case ir.CONSTANT, ir.MEMBER, ir.TYPEREF, ir.INDY:
			self.index[ins] = pool.Intern(ins.Ref)
		}
	}
	for _, ins := range self.instrs {
		for _, target := range ins.Successors() {
			if _, ok := self.labels[target]; !ok {
				panic(errors.Malformedf("%s jumps to a label outside the method", ops.Name(ins.Op)))
			}
		}
	}
	return self
}

func switchPad(pos uint32) uint32 { return (^pos) % 4 }

func (self *codeWriter) length(ins *ir.Instruction, pos uint32) uint32 {
	switch ins.Tag {
	case ir.LABEL:
		return 0
	case ir.VAR:
		if ins.Op != ops.RET && ins.Slot < 4 {
			return 1
		}
		if ins.Slot < 256 {
			return 2
		}
		return 4
	case ir.IINC:
		if ins.Slot < 256 && ins.Delta == int16(int8(ins.Delta)) {
			return 3
		}
		return 6
	case ir.JUMP:
		if !self.wide[ins] {
			return 3
		}
		if ins.Op == ops.GOTO || ins.Op == ops.JSR {
			return 5
		}
		return 8
	case ir.SWITCH:
		n := uint32(len(ins.Keys))
		if ins.Op == ops.TABLESWITCH {
			return 1 + switchPad(pos) + 12 + 4*n
		}
		return 1 + switchPad(pos) + 8 + 8*n
	case ir.CONSTANT:
		if ins.Op == ops.LDC2_W || self.index[ins] >= 256 {
			return 3
		}
		return 2
	case ir.MEMBER:
		if ins.Op == ops.INVOKEINTERFACE {
			return 5
		}
		return 3
	case ir.INDY:
		return 5
	case ir.TYPEREF:
		if ins.Op == ops.MULTIANEWARRAY {
			return 4
		}
		return 3
	case ir.PUSH:
		if ins.Op == ops.SIPUSH {
			return 3
		}
		return 2
	case ir.OTHER:
		return 1
	}
	panic(errors.Malformedf("cannot encode instruction with tag %d", ins.Tag))
}

func (self *codeWriter) positions() (res []uint32, pos uint32) {
	res = make([]uint32, len(self.instrs))
	for i, ins := range self.instrs {
		res[i] = pos
		pos += self.length(ins, pos)
	}
	return
}

func (self *codeWriter) offset(positions []uint32, pos uint32, target *ir.Instruction) int32 {
	return int32(positions[self.labels[target]] - pos)
}

// Branch offsets of more than +-32767 need the long form. Everything starts
// narrow and jumps are widened until the layout stops changing, since
// widening one jump can push another out of range.
func (self *codeWriter) optimizeJumps() {
	done := false
	for !done {
		done = true
		positions, _ := self.positions()
		for i, ins := range self.instrs {
			if ins.Tag != ir.JUMP || self.wide[ins] {
				continue
			}
			offset := self.offset(positions, positions[i], ins.Target)
			if offset != int32(int16(offset)) {
				self.wide[ins] = true
				done = false
			}
		}
	}
}

func oppositeOp(op uint8) uint8 {
	if op >= ops.IFNULL {
		return op ^ 1
	}
	return ((op + 1) ^ 1) - 1
}

func (self *codeWriter) bytecode() ([]byte, []uint32) {
	self.optimizeJumps()
	positions, endpos := self.positions()
	if endpos > 65535 {
		panic(&errors.ClassfileLimitExceeded{What: "method code"})
	}

	stream := byteio.NewWriter()
	for i, ins := range self.instrs {
		pos := positions[i]
		switch ins.Tag {
		case ir.LABEL:
		case ir.VAR:
			switch {
			case ins.Op != ops.RET && ins.Slot < 4:
				base := byte(ops.ILOAD_0)
				if ops.IsStore(ins.Op) {
					base = ops.ISTORE_0
				}
				stream.U8(base + ops.IlfdaOrd[ins.T]*4 + byte(ins.Slot))
			case ins.Slot < 256:
				stream.WriteString(byteio.BB(ins.Op, byte(ins.Slot)))
			default:
				stream.WriteString(byteio.BBH(ops.WIDE, ins.Op, ins.Slot))
			}
		case ir.IINC:
			if ins.Slot < 256 && ins.Delta == int16(int8(ins.Delta)) {
				stream.WriteString(byteio.Bytes(ops.IINC, byte(ins.Slot), byte(ins.Delta)))
			} else {
				stream.WriteString(byteio.BBH(ops.WIDE, ops.IINC, ins.Slot))
				stream.S16(ins.Delta)
			}
		case ir.JUMP:
			offset := self.offset(positions, pos, ins.Target)
			switch {
			case !self.wide[ins]:
				stream.WriteString(byteio.Bh(ins.Op, int16(offset)))
			case ins.Op == ops.GOTO:
				stream.WriteString(byteio.Bi(ops.GOTO_W, offset))
			case ins.Op == ops.JSR:
				stream.WriteString(byteio.Bi(ops.JSR_W, offset))
			default:
				// if x goto A; B: ...  becomes  if !x goto B; goto_w A; B: ...
				stream.WriteString(byteio.BhBi(oppositeOp(ins.Op), 8, ops.GOTO_W, offset-3))
			}
		case ir.SWITCH:
			stream.U8(ins.Op)
			for pad := switchPad(pos); pad > 0; pad-- {
				stream.U8(0)
			}
			stream.S32(self.offset(positions, pos, ins.Default))
			if ins.Op == ops.TABLESWITCH {
				stream.S32(ins.Keys[0])
				stream.S32(ins.Keys[len(ins.Keys)-1])
				for _, target := range ins.Targets {
					stream.S32(self.offset(positions, pos, target))
				}
			} else {
				stream.U32(uint32(len(ins.Keys)))
				for j, k := range ins.Keys {
					stream.S32(k)
					stream.S32(self.offset(positions, pos, ins.Targets[j]))
				}
			}
		case ir.CONSTANT:
			index := self.index[ins]
			switch {
			case ins.Op == ops.LDC2_W:
				stream.WriteString(byteio.BH(ops.LDC2_W, index))
			case index < 256:
				stream.WriteString(byteio.BB(ops.LDC, byte(index)))
			default:
				stream.WriteString(byteio.BH(ops.LDC_W, index))
			}
		case ir.MEMBER:
			stream.WriteString(byteio.BH(ins.Op, self.index[ins]))
			if ins.Op == ops.INVOKEINTERFACE {
				stream.WriteString(byteio.BB(interfaceArgCount(ins.Ref.Desc), 0))
			}
		case ir.INDY:
			stream.WriteString(byteio.BH(ins.Op, self.index[ins]))
			stream.U16(0)
		case ir.TYPEREF:
			stream.WriteString(byteio.BH(ins.Op, self.index[ins]))
			if ins.Op == ops.MULTIANEWARRAY {
				stream.U8(byte(ins.Operand))
			}
		case ir.PUSH:
			if ins.Op == ops.SIPUSH {
				stream.WriteString(byteio.Bh(ins.Op, int16(ins.Operand)))
			} else {
				stream.WriteString(byteio.BB(ins.Op, byte(ins.Operand)))
			}
		case ir.OTHER:
			stream.U8(ins.Op)
		}
	}
	util.Assert(int(endpos) == stream.Len())
	return stream.Bytes(), positions
}

// count operand of invokeinterface: the receiver plus the argument slots
func interfaceArgCount(desc string) byte {
	ptypes, err := scalars.ParamTypes(desc)
	if err != nil {
		panic(err)
	}
	n := 1
	for _, st := range ptypes {
		n += st.Size()
	}
	return byte(n)
}

// maxLocals is the first slot past every local the code touches and the
// parameters.
func maxLocals(m *Method) uint16 {
	_, end, err := m.ParamSlots()
	if err != nil {
		panic(err)
	}
	for _, ins := range m.Code.Instructions() {
		if ins.IsVarAccess() {
			if top := int(ins.Slot) + ins.T.Size(); top > end {
				end = top
			}
		}
	}
	if end > 65535 {
		panic(&errors.ClassfileLimitExceeded{What: "max locals"})
	}
	if uint16(end) < m.MaxLocals {
		return m.MaxLocals
	}
	return uint16(end)
}

func (self *Class) writeCode(m *Method) []byte {
	cw := newCodeWriter(self.pool, m.Code)
	bytecode, positions := cw.bytecode()

	type entry struct{ start, end, handler, ctype uint16 }
	var excepts []entry
	for _, h := range m.Handlers {
		for _, lbl := range []*ir.Instruction{h.Start, h.End, h.Handler} {
			if _, ok := cw.labels[lbl]; !ok {
				panic(errors.Malformedf("exception handler of %s refers to a label outside the method", m.Name))
			}
		}
		start := positions[cw.labels[h.Start]]
		end := positions[cw.labels[h.End]]
		// ranges that became empty are illegal in the class file
		if start >= end {
			continue
		}
		e := entry{uint16(start), uint16(end), uint16(positions[cw.labels[h.Handler]]), 0}
		if h.Type != "" {
			e.ctype = self.pool.Class(h.Type)
		}
		excepts = append(excepts, e)
	}

	stream := byteio.NewWriter()
	// Computing the real stack height is not worth it; 300 covers anything
	// hooks are expected to add without provoking StackOverflowErrors.
	maxStack := m.MaxStack
	if maxStack < 300 {
		maxStack = 300
	}
	stream.U16(maxStack)
	stream.U16(maxLocals(m))
	stream.U32(uint32(len(bytecode)))
	stream.Write(bytecode)
	stream.U16(uint16(len(excepts)))
	for _, e := range excepts {
		stream.U16(e.start)
		stream.U16(e.end)
		stream.U16(e.handler)
		stream.U16(e.ctype)
	}
	// line numbers, local variable tables and stack map frames are dropped
	stream.U16(0)
	return stream.Bytes()
}

func (self *Class) writeAttributes(stream *byteio.Writer, attrs []Attribute) {
	stream.U16(uint16(len(attrs)))
	for _, attr := range attrs {
		stream.U16(self.pool.Utf8(attr.Name))
		stream.U32(uint32(len(attr.Data)))
		stream.Write(attr.Data)
	}
}

func (self *Class) writeMethod(stream *byteio.Writer, m *Method) {
	stream.U16(m.Access)
	stream.U16(self.pool.Utf8(m.Name))
	stream.U16(self.pool.Utf8(m.Desc))

	attrs := m.Attributes
	switch {
	case m.Code != nil && (m.Modified || m.rawCode == nil):
		attrs = append(attrs[:len(attrs):len(attrs)], Attribute{"Code", self.writeCode(m)})
	case m.rawCode != nil:
		attrs = append(attrs[:len(attrs):len(attrs)], Attribute{"Code", m.rawCode})
	}
	self.writeAttributes(stream, attrs)
}

func (self *Class) afterPool() *byteio.Writer {
	stream := byteio.NewWriter()
	stream.U16(self.Access)
	stream.U16(self.pool.Class(self.Name))
	if self.Super == "" {
		stream.U16(0)
	} else {
		stream.U16(self.pool.Class(self.Super))
	}

	stream.U16(uint16(len(self.Interfaces)))
	for _, i := range self.Interfaces {
		stream.U16(self.pool.Class(i))
	}

	stream.U16(uint16(len(self.Fields)))
	for _, f := range self.Fields {
		stream.U16(f.Access)
		stream.U16(self.pool.Utf8(f.Name))
		stream.U16(self.pool.Utf8(f.Desc))
		self.writeAttributes(stream, f.Attributes)
	}

	stream.U16(uint16(len(self.Methods)))
	for _, m := range self.Methods {
		self.writeMethod(stream, m)
	}

	// methods may have added bootstrap entries, so this goes last
	attrs := self.Attributes
	if self.pool.HasBootstraps() {
		bsm := byteio.NewWriter()
		self.pool.WriteBootstraps(bsm)
		attrs = append(attrs[:len(attrs):len(attrs)], Attribute{"BootstrapMethods", bsm.Bytes()})
	}
	self.writeAttributes(stream, attrs)
	return stream
}

// Encode writes the class file. Constant pool entries of a decoded class keep
// their indices, so unmodified code and raw attributes are copied verbatim.
func (self *Class) Encode() (result []byte, err error) {
	defer catch(&err)
	if self.pool == nil {
		self.pool = cpool.New()
	}

	stream := byteio.NewWriter()
	stream.U32(MAGIC)
	stream.U16(self.Minor)
	stream.U16(self.Major)

	rest := self.afterPool()
	self.pool.Write(stream)
	stream.Append(rest)
	return stream.Bytes(), nil
}
