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
	"hookinject/jvm"
	"hookinject/jvm/cpool"
	"hookinject/jvm/ir"
	"hookinject/jvm/scalars"
)

// Attribute is kept as raw bytes. Any constant pool indices inside stay valid
// because encoding preserves the indices of the decoded pool.
type Attribute struct {
	Name string
	Data []byte
}

type Field struct {
	Access     uint16
	Name, Desc string
	Attributes []Attribute
}

// Handler is an exception table entry. An empty Type catches everything.
type Handler struct {
	Start, End, Handler *ir.Instruction
	Type                string
}

type Method struct {
	Access     uint16
	Name, Desc string
	Signature  string
	Exceptions []string

	// Code is nil for abstract and native methods, and for methods whose
	// code was not requested when decoding.
	Code                *ir.List
	Handlers            []Handler
	MaxStack, MaxLocals uint16

	// Attributes other than Code
	Attributes []Attribute
	// Set when Code has been edited so that Encode regenerates it.
	Modified bool

	rawCode []byte
}

func (self *Method) IsStatic() bool { return jvm.IsStatic(self.Access) }

func (self *Method) ParamTypes() ([]scalars.T, error) {
	return scalars.ParamTypes(self.Desc)
}

// ParamSlots gives the first slot of each declared parameter and the first
// slot past them.
func (self *Method) ParamSlots() ([]int, int, error) {
	ptypes, err := self.ParamTypes()
	if err != nil {
		return nil, 0, err
	}
	slots, end := scalars.ParamSlots(self.IsStatic(), ptypes)
	return slots, end, nil
}

// Clone deep copies the code and handlers.
func (self *Method) Clone() *Method {
	dup := *self
	dup.Exceptions = append([]string(nil), self.Exceptions...)
	dup.Attributes = append([]Attribute(nil), self.Attributes...)
	dup.Handlers = nil
	if self.Code != nil {
		code, labels := self.Code.Clone()
		dup.Code = code
		dup.Handlers = CopyHandlers(self.Handlers, labels)
	}
	return &dup
}

// CopyHandlers translates handler labels through a map returned by
// ir.List.Clone.
func CopyHandlers(handlers []Handler, labels map[*ir.Instruction]*ir.Instruction) []Handler {
	if len(handlers) == 0 {
		return nil
	}
	lookup := func(lbl *ir.Instruction) *ir.Instruction {
		if mapped, ok := labels[lbl]; ok {
			return mapped
		}
		return lbl
	}
	result := make([]Handler, len(handlers))
	for i, h := range handlers {
		result[i] = Handler{lookup(h.Start), lookup(h.End), lookup(h.Handler), h.Type}
	}
	return result
}

type Class struct {
	Minor, Major uint16
	Access       uint16
	Name, Super  string
	Interfaces   []string
	Fields       []*Field
	Methods      []*Method
	// Attributes other than BootstrapMethods, which is regenerated
	Attributes []Attribute

	pool *cpool.Pool
}

// NewClass starts an empty class. New classes are written as
// version 49.0, which does not require stack map frames.
func NewClass(name, super string, access uint16) *Class {
	return &Class{Major: 49, Access: access, Name: name, Super: super, pool: cpool.New()}
}

// Method returns the first method with the given name.
func (self *Class) Method(name string) *Method {
	for _, m := range self.Methods {
		if m.Name == name {
			return m
		}
	}
	return nil
}

// MethodDesc matches on name and descriptor. An empty desc matches any.
func (self *Class) MethodDesc(name, desc string) *Method {
	if desc == "" {
		return self.Method(name)
	}
	for _, m := range self.Methods {
		if m.Name == name && m.Desc == desc {
			return m
		}
	}
	return nil
}

func (self *Class) AddMethod(m *Method) *Method {
	self.Methods = append(self.Methods, m)
	return m
}

// MakeMethodsPublic widens every method that is not already public.
func MakeMethodsPublic(class *Class) {
	for _, m := range class.Methods {
		m.Access = jvm.Publicize(m.Access)
	}
}
