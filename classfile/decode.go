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
)

const MAGIC = 0xCAFEBABE

// MethodVisitor is called once per method declaration, in declaration order.
// Returning a non-nil sink requests that the method's code be decoded into
// it; returning nil skips the code, which is then carried through encoding
// untouched.
type MethodVisitor func(access uint16, name, desc, signature string, exceptions []string) *Method

// recovers the panics raised by byteio.Reader and the constant pool
func catch(err *error) {
	if r := recover(); r != nil {
		switch e := r.(type) {
		case *errors.Truncated:
			*err = e
		case *errors.Malformed:
			*err = e
		case *errors.ClassfileLimitExceeded:
			*err = e
		default:
			panic(r)
		}
	}
}

type rawMember struct {
	access     uint16
	name, desc string
	attrs      []Attribute
	code       []byte
}

func readAttributes(pool *cpool.Pool, stream *byteio.Reader) (attrs []Attribute) {
	n := int(stream.U16())
	for i := 0; i < n; i++ {
		name := pool.Utf8At(stream.U16())
		data := stream.Bytes(stream.U32())
		attrs = append(attrs, Attribute{name, data})
	}
	return
}

func readMember(pool *cpool.Pool, stream *byteio.Reader) rawMember {
	self := rawMember{access: stream.U16()}
	self.name = pool.Utf8At(stream.U16())
	self.desc = pool.Utf8At(stream.U16())
	for _, attr := range readAttributes(pool, stream) {
		if attr.Name == "Code" {
			self.code = attr.Data
		} else {
			self.attrs = append(self.attrs, attr)
		}
	}
	return self
}

func methodMeta(pool *cpool.Pool, attrs []Attribute) (signature string, exceptions []string) {
	for _, attr := range attrs {
		switch attr.Name {
		case "Signature":
			signature = pool.Utf8At(byteio.NewReader(attr.Data).U16())
		case "Exceptions":
			st := byteio.NewReader(attr.Data)
			n := int(st.U16())
			for i := 0; i < n; i++ {
				exceptions = append(exceptions, pool.ClassAt(st.U16()))
			}
		}
	}
	return
}

// Parse decodes a class and the code of all of its methods.
func Parse(data []byte) (*Class, error) {
	return Decode(data, func(uint16, string, string, string, []string) *Method { return &Method{} })
}

func Decode(data []byte, visit MethodVisitor) (class *Class, err error) {
	defer catch(&err)

	stream := byteio.NewReader(data)
	if stream.U32() != MAGIC {
		return nil, errors.Malformedf("bad magic")
	}
	class = &Class{}
	class.Minor = stream.U16()
	class.Major = stream.U16()
	pool := cpool.Read(stream)
	class.pool = pool

	class.Access = stream.U16()
	class.Name = pool.ClassAt(stream.U16())
	if super := stream.U16(); super != 0 {
		class.Super = pool.ClassAt(super)
	}
	n := int(stream.U16())
	for i := 0; i < n; i++ {
		class.Interfaces = append(class.Interfaces, pool.ClassAt(stream.U16()))
	}

	n = int(stream.U16())
	for i := 0; i < n; i++ {
		f := readMember(pool, stream)
		attrs := f.attrs
		if f.code != nil {
			attrs = append(attrs, Attribute{"Code", f.code})
		}
		class.Fields = append(class.Fields, &Field{f.access, f.name, f.desc, attrs})
	}

	n = int(stream.U16())
	methods := make([]rawMember, n)
	for i := range methods {
		methods[i] = readMember(pool, stream)
	}

	// code may refer to bootstrap methods, so class attributes come first
	for _, attr := range readAttributes(pool, stream) {
		if attr.Name == "BootstrapMethods" {
			pool.ReadBootstraps(byteio.NewReader(attr.Data))
		} else {
			class.Attributes = append(class.Attributes, attr)
		}
	}

	for _, raw := range methods {
		signature, exceptions := methodMeta(pool, raw.attrs)
		var m *Method
		if visit != nil {
			m = visit(raw.access, raw.name, raw.desc, signature, exceptions)
		}
		decodeCode := m != nil
		if m == nil {
			m = &Method{}
		}
		m.Access, m.Name, m.Desc = raw.access, raw.name, raw.desc
		m.Signature, m.Exceptions = signature, exceptions
		m.Attributes = raw.attrs
		m.rawCode = raw.code
		if raw.code != nil {
			header := byteio.NewReader(raw.code)
			m.MaxStack = header.U16()
			m.MaxLocals = header.U16()
			if decodeCode {
				readCode(pool, raw.code, m)
			}
		}
		class.Methods = append(class.Methods, m)
	}
	return class, nil
}

type codeReader struct {
	pool   *cpool.Pool
	labels map[int]*ir.Instruction
}

func (self *codeReader) label(pc int) *ir.Instruction {
	if lbl, ok := self.labels[pc]; ok {
		return lbl
	}
	lbl := ir.NewLabel()
	self.labels[pc] = lbl
	return lbl
}

func (self *codeReader) member(op byte, index uint16) *ir.Instruction {
	ref := self.pool.Resolve(index)
	switch ref.Tag {
	case cpool.CONSTANT_Fieldref, cpool.CONSTANT_Methodref, cpool.CONSTANT_InterfaceMethodref:
	default:
		panic(errors.Malformedf("%s refers to constant with tag %d", ops.Name(op), ref.Tag))
	}
	return &ir.Instruction{Op: op, Tag: ir.MEMBER, Ref: ref}
}

func (self *codeReader) typeRef(op byte, index uint16) *ir.Instruction {
	return ir.NewTypeRef(op, self.pool.ClassAt(index))
}

func (self *codeReader) instruction(stream *byteio.Reader, codeLen int) *ir.Instruction {
	pc := int(stream.Pos)
	op := stream.U8()
	if long, slot, ok := ops.ShortVar(op); ok {
		return ir.NewVar(long, slot)
	}

	branch := func(off int) *ir.Instruction {
		target := pc + off
		if target < 0 || target >= codeLen {
			panic(errors.Malformedf("branch at %d targets %d outside code", pc, target))
		}
		return self.label(target)
	}

	switch {
	case ops.IsLoad(op) || ops.IsStore(op) || op == ops.RET:
		return ir.NewVar(op, uint16(stream.U8()))
	case ops.IFEQ <= op && op <= ops.JSR, op == ops.IFNULL, op == ops.IFNONNULL:
		return &ir.Instruction{Op: op, Tag: ir.JUMP, Jump: ir.Jump{Target: branch(int(stream.S16()))}}
	}

	switch op {
	case ops.WIDE:
		op2 := stream.U8()
		if op2 == ops.IINC {
			slot := stream.U16()
			return ir.NewIinc(slot, stream.S16())
		}
		if !(ops.IsLoad(op2) || ops.IsStore(op2) || op2 == ops.RET) {
			panic(errors.Malformedf("bad wide opcode %#x at %d", op2, pc))
		}
		return ir.NewVar(op2, stream.U16())
	case ops.IINC:
		slot := stream.U8()
		return ir.NewIinc(uint16(slot), int16(stream.S8()))
	case ops.BIPUSH:
		return ir.NewPush(op, int32(stream.S8()))
	case ops.SIPUSH:
		return ir.NewPush(op, int32(stream.S16()))
	case ops.NEWARRAY:
		return ir.NewPush(op, int32(stream.U8()))
	case ops.LDC:
		return ir.NewConst(self.pool.Resolve(uint16(stream.U8())))
	case ops.LDC_W, ops.LDC2_W:
		return ir.NewConst(self.pool.Resolve(stream.U16()))
	case ops.GETSTATIC, ops.PUTSTATIC, ops.GETFIELD, ops.PUTFIELD,
		ops.INVOKEVIRTUAL, ops.INVOKESPECIAL, ops.INVOKESTATIC:
		return self.member(op, stream.U16())
	case ops.INVOKEINTERFACE:
		ins := self.member(op, stream.U16())
		stream.Skip(2) // count and zero, recomputed when encoding
		return ins
	case ops.INVOKEDYNAMIC:
		ref := self.pool.Resolve(stream.U16())
		stream.Skip(2)
		if ref.Tag != cpool.CONSTANT_InvokeDynamic {
			panic(errors.Malformedf("invokedynamic at %d refers to constant with tag %d", pc, ref.Tag))
		}
		return &ir.Instruction{Op: op, Tag: ir.INDY, Ref: ref}
	case ops.NEW, ops.ANEWARRAY, ops.CHECKCAST, ops.INSTANCEOF:
		return self.typeRef(op, stream.U16())
	case ops.MULTIANEWARRAY:
		ins := self.typeRef(op, stream.U16())
		ins.Operand = int32(stream.U8())
		return ins
	case ops.GOTO_W:
		return &ir.Instruction{Op: ops.GOTO, Tag: ir.JUMP, Jump: ir.Jump{Target: branch(int(stream.S32()))}}
	case ops.JSR_W:
		return &ir.Instruction{Op: ops.JSR, Tag: ir.JUMP, Jump: ir.Jump{Target: branch(int(stream.S32()))}}
	case ops.TABLESWITCH, ops.LOOKUPSWITCH:
		for stream.Pos%4 != 0 {
			stream.U8()
		}
		ins := &ir.Instruction{Op: op, Tag: ir.SWITCH}
		ins.Default = branch(int(stream.S32()))
		if op == ops.TABLESWITCH {
			low, high := stream.S32(), stream.S32()
			if low > high {
				panic(errors.Malformedf("tableswitch at %d has low %d > high %d", pc, low, high))
			}
			for k := int64(low); k <= int64(high); k++ {
				ins.Keys = append(ins.Keys, int32(k))
				ins.Targets = append(ins.Targets, branch(int(stream.S32())))
			}
		} else {
			npairs := stream.S32()
			if npairs < 0 {
				panic(errors.Malformedf("lookupswitch at %d has %d pairs", pc, npairs))
			}
			for i := int32(0); i < npairs; i++ {
				ins.Keys = append(ins.Keys, stream.S32())
				ins.Targets = append(ins.Targets, branch(int(stream.S32())))
			}
		}
		return ins
	}

	if !ops.Valid(op) || ops.Table[op].Len != 1 {
		panic(errors.Malformedf("unsupported opcode %#x at %d", op, pc))
	}
	return ir.NewOther(op)
}

func readCode(pool *cpool.Pool, data []byte, m *Method) {
	stream := byteio.NewReader(data)
	m.MaxStack = stream.U16()
	m.MaxLocals = stream.U16()
	codeLen := stream.U32()
	code := stream.Bytes(codeLen)

	self := &codeReader{pool, make(map[int]*ir.Instruction)}
	type located struct {
		pc  int
		ins *ir.Instruction
	}
	var decoded []located
	starts := make(map[int]bool)
	codeStream := byteio.NewReader(code)
	for codeStream.Remaining() > 0 {
		pc := int(codeStream.Pos)
		starts[pc] = true
		decoded = append(decoded, located{pc, self.instruction(codeStream, int(codeLen))})
	}

	n := int(stream.U16())
	handlers := make([]Handler, 0, n)
	for i := 0; i < n; i++ {
		start, end, handler := int(stream.U16()), int(stream.U16()), int(stream.U16())
		if start >= end || end > int(codeLen) || handler >= int(codeLen) {
			panic(errors.Malformedf("bad exception table entry %d-%d -> %d", start, end, handler))
		}
		h := Handler{Start: self.label(start), End: self.label(end), Handler: self.label(handler)}
		if ctype := stream.U16(); ctype != 0 {
			h.Type = pool.ClassAt(ctype)
		}
		handlers = append(handlers, h)
	}
	// remaining attributes (line numbers, locals, frames) go stale once the
	// code is edited and are not carried over

	for pc := range self.labels {
		if pc != int(codeLen) && !starts[pc] {
			panic(errors.Malformedf("jump into the middle of an instruction at %d", pc))
		}
	}

	list := ir.NewList()
	for _, item := range decoded {
		if lbl, ok := self.labels[item.pc]; ok {
			list.Add(lbl)
		}
		list.Add(item.ins)
	}
	if lbl, ok := self.labels[int(codeLen)]; ok {
		list.Add(lbl)
	}
	m.Code = list
	m.Handlers = handlers
}
