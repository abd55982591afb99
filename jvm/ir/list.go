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

import "golang.org/x/exp/slices"

// List is an ordered, mutable instruction sequence. Insertions that take
// another List move its elements, leaving the other list empty.
type List struct {
	instrs []*Instruction
}

func NewList(instrs ...*Instruction) *List {
	return &List{append([]*Instruction(nil), instrs...)}
}

func (self *List) Len() int { return len(self.instrs) }

func (self *List) At(i int) *Instruction { return self.instrs[i] }

func (self *List) First() *Instruction {
	if len(self.instrs) == 0 {
		return nil
	}
	return self.instrs[0]
}

func (self *List) Last() *Instruction {
	if len(self.instrs) == 0 {
		return nil
	}
	return self.instrs[len(self.instrs)-1]
}

// Instructions returns a snapshot of the elements.
func (self *List) Instructions() []*Instruction {
	return slices.Clone(self.instrs)
}

func (self *List) Index(ins *Instruction) int {
	return slices.Index(self.instrs, ins)
}

func (self *List) Contains(ins *Instruction) bool { return self.Index(ins) >= 0 }

// Next returns the element following ins, or nil.
func (self *List) Next(ins *Instruction) *Instruction {
	i := self.Index(ins)
	if i < 0 || i+1 >= len(self.instrs) {
		return nil
	}
	return self.instrs[i+1]
}

func (self *List) Add(instrs ...*Instruction) {
	self.instrs = append(self.instrs, instrs...)
}

func (self *List) take(other *List) []*Instruction {
	moved := other.instrs
	other.instrs = nil
	return moved
}

func (self *List) AddAll(other *List) {
	if other == self {
		return
	}
	self.instrs = append(self.instrs, self.take(other)...)
}

func (self *List) Prepend(other *List) {
	if other == self {
		return
	}
	self.instrs = slices.Insert(self.instrs, 0, self.take(other)...)
}

// InsertBefore moves other's elements in front of ref. It reports false,
// leaving both lists untouched, when ref is not an element.
func (self *List) InsertBefore(ref *Instruction, other *List) bool {
	i := self.Index(ref)
	if i < 0 || other == self {
		return false
	}
	self.instrs = slices.Insert(self.instrs, i, self.take(other)...)
	return true
}

func (self *List) InsertAfter(ref *Instruction, other *List) bool {
	i := self.Index(ref)
	if i < 0 || other == self {
		return false
	}
	self.instrs = slices.Insert(self.instrs, i+1, self.take(other)...)
	return true
}

func (self *List) Set(old, replacement *Instruction) bool {
	i := self.Index(old)
	if i < 0 {
		return false
	}
	self.instrs[i] = replacement
	return true
}

func (self *List) Remove(ins *Instruction) bool {
	i := self.Index(ins)
	if i < 0 {
		return false
	}
	self.instrs = slices.Delete(self.instrs, i, i+1)
	return true
}

// Clone deep copies the list. Branches to labels inside the list are
// redirected to the copied labels; the returned map translates old labels
// to new ones so that side tables (exception handlers) can follow.
func (self *List) Clone() (*List, map[*Instruction]*Instruction) {
	labels := make(map[*Instruction]*Instruction)
	for _, ins := range self.instrs {
		if ins.Tag == LABEL {
			labels[ins] = NewLabel()
		}
	}

	dup := make([]*Instruction, len(self.instrs))
	for i, ins := range self.instrs {
		if ins.Tag == LABEL {
			dup[i] = labels[ins]
		} else {
			dup[i] = ins.Copy(labels)
		}
	}
	return &List{dup}, labels
}
