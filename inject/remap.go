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
	"hookinject/classfile"
	"hookinject/jvm/errors"
	"hookinject/jvm/ir"
	"hookinject/jvm/scalars"
)

// SuggestedStart returns a slot at or above every local variable the method
// may hold at point: the highest slot accessed before point (counting the
// upper half of long and double accesses), floored by the slots taken by the
// receiver and the declared parameters. A nil point scans the whole method.
// Slots above the result are free to allocate.
//
// The floor is the full parameter frontier with no one-slot adjustment for
// either kind of method, so the result never lands on the last parameter.
//
// This is not a live range analysis; slots first used after point are not
// seen.
func SuggestedStart(m *classfile.Method, point *ir.Instruction) int {
	observed := 0
	if m.Code != nil {
		for _, ins := range m.Code.Instructions() {
			if ins == point {
				break
			}
			if !ins.IsVarAccess() {
				continue
			}
			top := int(ins.Slot)
			if ins.Tag == ir.VAR && ins.T.Wide() {
				top++
			}
			if top > observed {
				observed = top
			}
		}
	}

	frontier := 0
	if _, end, err := m.ParamSlots(); err == nil {
		frontier = end
	} else if !m.IsStatic() {
		frontier = 1
	}
	if frontier > observed {
		return frontier
	}
	return observed
}

func checkSlot(slot int) error {
	if slot < 0 || slot > 65535 {
		return &errors.ClassfileLimitExceeded{What: "local variable slot"}
	}
	return nil
}

// remap rewrites code in place. slots maps a declared parameter position of
// the hook to the target slot it is bound to.
func remap(code *ir.List, static bool, ptypes []scalars.T, remapReturns bool, offset int, slots map[int]int) error {
	pslots, _ := scalars.ParamSlots(static, ptypes)
	position := make(map[int]int, len(pslots))
	for p, s := range pslots {
		position[s] = p
	}

	var end *ir.Instruction
	if remapReturns {
		end = ir.NewLabel()
		code.Add(end)
	}

	for _, ins := range code.Instructions() {
		switch {
		case ins.IsVarAccess():
			s := int(ins.Slot)
			target := s + offset
			if p, ok := position[s]; ok {
				if mapped, ok := slots[p]; ok {
					target = mapped
				}
			}
			if err := checkSlot(target); err != nil {
				return err
			}
			ins.Slot = uint16(target)
		case remapReturns && ins.IsReturn():
			code.Set(ins, ir.NewGoto(end))
		}
	}
	return nil
}

// Remap returns a rewritten copy of the hook's code; the hook itself is not
// modified. Accesses to a parameter with an entry in slots go to that slot,
// every other local moves up by offset. With remapReturns, each return
// becomes a GOTO to a label appended at the end.
func Remap(hook *classfile.Method, remapReturns bool, offset int, slots map[int]int) (*ir.List, error) {
	if hook.Code == nil {
		return nil, &ConfigurationError{"hook code"}
	}
	ptypes, err := hook.ParamTypes()
	if err != nil {
		return nil, err
	}
	code, _ := hook.Code.Clone()
	if err := remap(code, hook.IsStatic(), ptypes, remapReturns, offset, slots); err != nil {
		return nil, err
	}
	return code, nil
}
