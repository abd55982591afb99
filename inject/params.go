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
package inject

import (
	"hookinject/jvm/ir"
	"hookinject/jvm/scalars"
)

type sourceKind uint8

const (
	invalidSource sourceKind = iota
	slotSource
	valueSource
	sequenceSource
)

// Source supplies the value of one hook parameter: an existing local of the
// target, a single instruction pushing the value, or a sequence of
// instructions pushing it. The zero Source is invalid.
type Source struct {
	kind  sourceKind
	slot  int
	value *ir.Instruction
	seq   *ir.List
}

func Slot(slot int) Source             { return Source{kind: slotSource, slot: slot} }
func Value(ins *ir.Instruction) Source { return Source{kind: valueSource, value: ins} }
func Sequence(instrs *ir.List) Source  { return Source{kind: sequenceSource, seq: instrs} }

func (self Source) IsSlot() bool   { return self.kind == slotSource }
func (self Source) SlotIndex() int { return self.slot }

func (self Source) valid() bool {
	switch self.kind {
	case slotSource:
		return checkSlot(self.slot) == nil
	case valueSource:
		return self.value != nil
	case sequenceSource:
		return self.seq != nil
	}
	return false
}

// instructions returns a copy of the source's code, so that a Source can be
// bound more than once.
func (self Source) instructions() *ir.List {
	if self.kind == valueSource {
		return ir.NewList(self.value.Copy(nil))
	}
	dup, _ := self.seq.Clone()
	return dup
}

// BindParameters assigns a target slot to each hook parameter. Slot sources
// are used as is. Computed sources are evaluated in order and stored into
// fresh slots above start, each stored with the opcode of its declared type.
// It returns the slot of each parameter position, the store sequence, and
// the highest slot the bound parameters occupy (start if none is higher).
func BindParameters(sources []Source, types []scalars.T, start int) (map[int]int, *ir.List, int, error) {
	if len(sources) != len(types) {
		return nil, nil, 0, &ParameterArityError{Want: len(types), Got: len(sources)}
	}

	// fresh slots also stay clear of slot sources above start
	last := start
	for i, src := range sources {
		if !src.valid() {
			return nil, nil, 0, &InvalidParameterSourceError{i}
		}
		if src.kind == slotSource {
			if top := src.slot + types[i].Size() - 1; top > last {
				last = top
			}
		}
	}

	slots := make(map[int]int, len(sources))
	setup := ir.NewList()
	next := last + 1
	for i, src := range sources {
		st := types[i]
		if src.kind == slotSource {
			slots[i] = src.slot
			continue
		}

		slot := next
		if err := checkSlot(slot + st.Size() - 1); err != nil {
			return nil, nil, 0, err
		}
		next += st.Size()
		slots[i] = slot
		setup.AddAll(src.instructions())
		setup.Add(ir.NewStore(st, uint16(slot)))
		if top := slot + st.Size() - 1; top > last {
			last = top
		}
	}
	return slots, setup, last, nil
}
