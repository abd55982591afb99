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
package cpool

import (
	"fmt"
	"strings"

	"hookinject/byteio"
	"hookinject/jvm/errors"
)

const CONSTANT_Utf8 = 1
const CONSTANT_Integer = 3
const CONSTANT_Float = 4
const CONSTANT_Long = 5
const CONSTANT_Double = 6
const CONSTANT_Class = 7
const CONSTANT_String = 8
const CONSTANT_Fieldref = 9
const CONSTANT_Methodref = 10
const CONSTANT_InterfaceMethodref = 11
const CONSTANT_NameAndType = 12
const CONSTANT_MethodHandle = 15
const CONSTANT_MethodType = 16
const CONSTANT_Dynamic = 17
const CONSTANT_InvokeDynamic = 18
const CONSTANT_Module = 19
const CONSTANT_Package = 20

const MAX_CONST = CONSTANT_Package

// Method handle reference kinds
const (
	REF_getField = iota + 1
	REF_getStatic
	REF_putField
	REF_putStatic
	REF_invokeVirtual
	REF_invokeStatic
	REF_invokeSpecial
	REF_newInvokeSpecial
	REF_invokeInterface
)

func width(tag byte) int {
	if tag == CONSTANT_Double || tag == CONSTANT_Long {
		return 2
	}
	return 1
}

// Raw entry payload. s holds the encoded bytes of Utf8 entries.
type Data struct {
	s      string
	p1, p2 uint16
	X      uint64
}

type Pair struct {
	Tag byte
	Data
}

// Const is the class independent form of a constant pool entry. Instructions
// carry these so that code can move between classes; the owning pool is only
// consulted when decoding or encoding.
type Const struct {
	Tag byte
	// Integer and Float bits in the low word, Long and Double bits
	X uint64
	// Utf8, String, Class, MethodType, Module and Package payload
	S string
	// member references, NameAndType, method handles and dynamic constants
	Owner, Name, Desc string
	Kind              byte
	Interface         bool
	Bootstrap         *Bootstrap
}

type Bootstrap struct {
	Handle Const
	Args   []Const
}

type bootstrapEntry struct {
	method uint16
	args   []uint16
}

type Pool struct {
	lookup     [MAX_CONST + 1]map[Data]uint16
	vals       []Pair
	bootstraps []bootstrapEntry
	bsmLookup  map[string]uint16
}

func New() *Pool {
	self := &Pool{vals: make([]Pair, 1), bsmLookup: make(map[string]uint16)}
	for i := 0; i < len(self.lookup); i++ {
		self.lookup[i] = make(map[Data]uint16)
	}
	return self
}

// Read decodes a constant_pool_count followed by its entries. Indices of the
// decoded entries are preserved by later interning and writing.
func Read(stream *byteio.Reader) *Pool {
	self := New()
	count := int(stream.U16())
	if count == 0 {
		panic(errors.Malformedf("empty constant pool"))
	}
	self.vals = make([]Pair, count)

	for i := 1; i < count; i++ {
		tag := stream.U8()
		data := Data{}
		switch tag {
		case CONSTANT_Utf8:
			data.s = string(stream.Bytes(uint32(stream.U16())))
		case CONSTANT_Integer, CONSTANT_Float:
			data.X = uint64(stream.U32())
		case CONSTANT_Long, CONSTANT_Double:
			data.X = stream.U64()
		case CONSTANT_Class, CONSTANT_String, CONSTANT_MethodType, CONSTANT_Module, CONSTANT_Package:
			data.p1 = stream.U16()
		case CONSTANT_MethodHandle:
			data.p1 = uint16(stream.U8())
			data.p2 = stream.U16()
		case CONSTANT_Fieldref, CONSTANT_Methodref, CONSTANT_InterfaceMethodref,
			CONSTANT_NameAndType, CONSTANT_Dynamic, CONSTANT_InvokeDynamic:
			data.p1 = stream.U16()
			data.p2 = stream.U16()
		default:
			panic(errors.Malformedf("unknown constant pool tag %d at index %d", tag, i))
		}

		self.vals[i] = Pair{tag, data}
		if _, ok := self.lookup[tag][data]; !ok {
			self.lookup[tag][data] = uint16(i)
		}
		if width(tag) == 2 {
			i++
		}
	}
	return self
}

// ReadBootstraps loads the payload of a BootstrapMethods attribute.
func (self *Pool) ReadBootstraps(stream *byteio.Reader) {
	n := int(stream.U16())
	for i := 0; i < n; i++ {
		entry := bootstrapEntry{method: stream.U16()}
		nargs := int(stream.U16())
		for j := 0; j < nargs; j++ {
			entry.args = append(entry.args, stream.U16())
		}
		self.bsmLookup[entry.key()] = uint16(len(self.bootstraps))
		self.bootstraps = append(self.bootstraps, entry)
	}
}

func (self bootstrapEntry) key() string {
	parts := make([]string, 0, len(self.args)+1)
	parts = append(parts, fmt.Sprint(self.method))
	for _, a := range self.args {
		parts = append(parts, fmt.Sprint(a))
	}
	return strings.Join(parts, ",")
}

func (self *Pool) Len() int { return len(self.vals) }

func (self *Pool) HasBootstraps() bool { return len(self.bootstraps) > 0 }

func (self *Pool) Get(index uint16) Pair {
	if index == 0 || int(index) >= len(self.vals) || self.vals[index].Tag == 0 {
		panic(errors.Malformedf("bad constant pool index %d", index))
	}
	return self.vals[index]
}

func (self *Pool) expect(index uint16, tag byte) Pair {
	p := self.Get(index)
	if p.Tag != tag {
		panic(errors.Malformedf("constant pool index %d has tag %d, expected %d", index, p.Tag, tag))
	}
	return p
}

func (self *Pool) Utf8At(index uint16) string {
	return DecodeMUTF8(self.expect(index, CONSTANT_Utf8).s)
}

func (self *Pool) ClassAt(index uint16) string {
	return self.Utf8At(self.expect(index, CONSTANT_Class).p1)
}

func (self *Pool) natAt(index uint16) (name, desc string) {
	p := self.expect(index, CONSTANT_NameAndType)
	return self.Utf8At(p.p1), self.Utf8At(p.p2)
}

func (self *Pool) bootstrapAt(index uint16) *Bootstrap {
	if int(index) >= len(self.bootstraps) {
		panic(errors.Malformedf("bad bootstrap method index %d", index))
	}
	entry := self.bootstraps[index]
	b := &Bootstrap{Handle: self.Resolve(entry.method)}
	for _, a := range entry.args {
		b.Args = append(b.Args, self.Resolve(a))
	}
	return b
}

// Resolve converts the entry at index into its symbolic form.
func (self *Pool) Resolve(index uint16) Const {
	p := self.Get(index)
	c := Const{Tag: p.Tag}
	switch p.Tag {
	case CONSTANT_Utf8:
		c.S = DecodeMUTF8(p.s)
	case CONSTANT_Integer, CONSTANT_Float, CONSTANT_Long, CONSTANT_Double:
		c.X = p.X
	case CONSTANT_Class, CONSTANT_String, CONSTANT_MethodType, CONSTANT_Module, CONSTANT_Package:
		c.S = self.Utf8At(p.p1)
	case CONSTANT_Fieldref, CONSTANT_Methodref, CONSTANT_InterfaceMethodref:
		c.Owner = self.ClassAt(p.p1)
		c.Name, c.Desc = self.natAt(p.p2)
	case CONSTANT_NameAndType:
		c.Name, c.Desc = self.natAt(index)
	case CONSTANT_MethodHandle:
		ref := self.Resolve(p.p2)
		c.Kind = byte(p.p1)
		c.Owner, c.Name, c.Desc = ref.Owner, ref.Name, ref.Desc
		c.Interface = ref.Tag == CONSTANT_InterfaceMethodref
	case CONSTANT_Dynamic, CONSTANT_InvokeDynamic:
		c.Name, c.Desc = self.natAt(p.p2)
		c.Bootstrap = self.bootstrapAt(p.p1)
	}
	return c
}

func (self *Pool) get(tag byte, data Data) uint16 {
	d := self.lookup[tag]
	if val, ok := d[data]; ok {
		return val
	}

	w := width(tag)
	if len(self.vals)+w > 65535 {
		panic(&errors.ClassfileLimitExceeded{What: "constant pool"})
	}
	index := uint16(len(self.vals))
	self.vals = append(self.vals, Pair{tag, data})
	if w == 2 {
		self.vals = append(self.vals, Pair{})
	}
	d[data] = index
	return index
}

func (self *Pool) Utf8(s string) uint16 {
	enc := EncodeMUTF8(s)
	if len(enc) > 65535 {
		panic(&errors.ClassfileLimitExceeded{What: "utf8 constant"})
	}
	return self.get(CONSTANT_Utf8, Data{s: enc})
}

func (self *Pool) Class(s string) uint16 {
	return self.get(CONSTANT_Class, Data{p1: self.Utf8(s)})
}

func (self *Pool) String(s string) uint16 {
	return self.get(CONSTANT_String, Data{p1: self.Utf8(s)})
}

func (self *Pool) Nat(name, desc string) uint16 {
	return self.get(CONSTANT_NameAndType, Data{p1: self.Utf8(name), p2: self.Utf8(desc)})
}

func (self *Pool) triple(tag byte, owner, name, desc string) uint16 {
	return self.get(tag, Data{p1: self.Class(owner), p2: self.Nat(name, desc)})
}

func (self *Pool) Field(owner, name, desc string) uint16 {
	return self.triple(CONSTANT_Fieldref, owner, name, desc)
}

func (self *Pool) Method(owner, name, desc string) uint16 {
	return self.triple(CONSTANT_Methodref, owner, name, desc)
}

func (self *Pool) IMethod(owner, name, desc string) uint16 {
	return self.triple(CONSTANT_InterfaceMethodref, owner, name, desc)
}

func (self *Pool) Int(x uint32) uint16 {
	return self.get(CONSTANT_Integer, Data{X: uint64(x)})
}

func (self *Pool) Float(x uint32) uint16 {
	return self.get(CONSTANT_Float, Data{X: uint64(x)})
}

func (self *Pool) Long(x uint64) uint16 {
	return self.get(CONSTANT_Long, Data{X: x})
}

func (self *Pool) Double(x uint64) uint16 {
	return self.get(CONSTANT_Double, Data{X: x})
}

func (self *Pool) bootstrap(b *Bootstrap) uint16 {
	entry := bootstrapEntry{method: self.Intern(b.Handle)}
	for _, a := range b.Args {
		entry.args = append(entry.args, self.Intern(a))
	}
	key := entry.key()
	if index, ok := self.bsmLookup[key]; ok {
		return index
	}
	index := uint16(len(self.bootstraps))
	self.bsmLookup[key] = index
	self.bootstraps = append(self.bootstraps, entry)
	return index
}

// Intern returns the index of c in this pool, adding entries as needed.
func (self *Pool) Intern(c Const) uint16 {
	switch c.Tag {
	case CONSTANT_Utf8:
		return self.Utf8(c.S)
	case CONSTANT_Integer:
		return self.Int(uint32(c.X))
	case CONSTANT_Float:
		return self.Float(uint32(c.X))
	case CONSTANT_Long:
		return self.Long(c.X)
	case CONSTANT_Double:
		return self.Double(c.X)
	case CONSTANT_Class:
		return self.Class(c.S)
	case CONSTANT_String:
		return self.String(c.S)
	case CONSTANT_MethodType, CONSTANT_Module, CONSTANT_Package:
		return self.get(c.Tag, Data{p1: self.Utf8(c.S)})
	case CONSTANT_Fieldref, CONSTANT_Methodref, CONSTANT_InterfaceMethodref:
		return self.triple(c.Tag, c.Owner, c.Name, c.Desc)
	case CONSTANT_NameAndType:
		return self.Nat(c.Name, c.Desc)
	case CONSTANT_MethodHandle:
		tag := byte(CONSTANT_Methodref)
		if c.Kind <= REF_putStatic {
			tag = CONSTANT_Fieldref
		} else if c.Interface {
			tag = CONSTANT_InterfaceMethodref
		}
		ref := self.triple(tag, c.Owner, c.Name, c.Desc)
		return self.get(CONSTANT_MethodHandle, Data{p1: uint16(c.Kind), p2: ref})
	case CONSTANT_Dynamic, CONSTANT_InvokeDynamic:
		if c.Bootstrap == nil {
			panic(errors.Malformedf("dynamic constant %s without bootstrap method", c.Name))
		}
		bsm := self.bootstrap(c.Bootstrap)
		return self.get(c.Tag, Data{p1: bsm, p2: self.Nat(c.Name, c.Desc)})
	}
	panic(errors.Malformedf("cannot intern constant with tag %d", c.Tag))
}

func (self *Pool) writeEntry(stream *byteio.Writer, item Pair) {
	if item.Tag == 0 {
		return
	}

	stream.U8(item.Tag)
	switch item.Tag {
	case CONSTANT_Utf8:
		stream.U16(uint16(len(item.s)))
		stream.WriteString(item.s)
	case CONSTANT_Integer, CONSTANT_Float:
		stream.U32(uint32(item.X))
	case CONSTANT_Long, CONSTANT_Double:
		stream.U64(item.X)
	case CONSTANT_Class, CONSTANT_String, CONSTANT_MethodType, CONSTANT_Module, CONSTANT_Package:
		stream.U16(item.p1)
	case CONSTANT_MethodHandle:
		stream.U8(uint8(item.p1))
		stream.U16(item.p2)
	default:
		stream.U16(item.p1)
		stream.U16(item.p2)
	}
}

func (self *Pool) Write(stream *byteio.Writer) {
	stream.U16(uint16(len(self.vals)))
	for _, item := range self.vals {
		self.writeEntry(stream, item)
	}
}

// WriteBootstraps writes the payload of the BootstrapMethods attribute.
func (self *Pool) WriteBootstraps(stream *byteio.Writer) {
	stream.U16(uint16(len(self.bootstraps)))
	for _, entry := range self.bootstraps {
		stream.U16(entry.method)
		stream.U16(uint16(len(entry.args)))
		for _, a := range entry.args {
			stream.U16(a)
		}
	}
}
