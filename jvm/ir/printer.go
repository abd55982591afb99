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
	"fmt"
	"math"
	"strconv"
	"strings"

	"hookinject/jvm/cpool"
	"hookinject/jvm/ops"
)

// LabelNames numbers the labels of the list in order of appearance.
func (self *List) LabelNames() map[*Instruction]string {
	names := make(map[*Instruction]string)
	for _, ins := range self.instrs {
		if ins.Tag == LABEL {
			names[ins] = fmt.Sprintf("L%d", len(names))
		}
	}
	return names
}

// Dump renders one line per instruction.
func (self *List) Dump() []string {
	names := self.LabelNames()
	lines := make([]string, 0, len(self.instrs))
	for _, ins := range self.instrs {
		lines = append(lines, ins.Format(names))
	}
	return lines
}

func (self *List) String() string {
	return strings.Join(self.Dump(), "\n")
}

func labelName(names map[*Instruction]string, lbl *Instruction) string {
	if name, ok := names[lbl]; ok {
		return name
	}
	return "L?"
}

func FormatConst(c cpool.Const) string {
	switch c.Tag {
	case cpool.CONSTANT_Integer:
		return strconv.Itoa(int(int32(uint32(c.X))))
	case cpool.CONSTANT_Long:
		return strconv.FormatInt(int64(c.X), 10) + "L"
	case cpool.CONSTANT_Float:
		return strconv.FormatFloat(float64(math.Float32frombits(uint32(c.X))), 'g', -1, 32) + "F"
	case cpool.CONSTANT_Double:
		return strconv.FormatFloat(math.Float64frombits(c.X), 'g', -1, 64) + "D"
	case cpool.CONSTANT_String:
		return strconv.Quote(c.S)
	case cpool.CONSTANT_Class:
		return c.S + ".class"
	case cpool.CONSTANT_MethodType:
		return c.S
	case cpool.CONSTANT_MethodHandle:
		return fmt.Sprintf("handle(%d) %s.%s %s", c.Kind, c.Owner, c.Name, c.Desc)
	case cpool.CONSTANT_Dynamic:
		return fmt.Sprintf("dynamic %s %s", c.Name, c.Desc)
	}
	return fmt.Sprintf("const(%d)", c.Tag)
}

func (self *Instruction) Format(names map[*Instruction]string) string {
	name := ops.Name(self.Op)
	switch self.Tag {
	case LABEL:
		return labelName(names, self) + ":"
	case VAR:
		return fmt.Sprintf("%s %d", name, self.Slot)
	case IINC:
		return fmt.Sprintf("%s %d %d", name, self.Slot, self.Delta)
	case JUMP:
		return fmt.Sprintf("%s %s", name, labelName(names, self.Jump.Target))
	case SWITCH:
		cases := make([]string, len(self.Keys))
		for i, k := range self.Keys {
			cases[i] = fmt.Sprintf("%d: %s", k, labelName(names, self.Targets[i]))
		}
		return fmt.Sprintf("%s [%s] default: %s", name, strings.Join(cases, ", "), labelName(names, self.Default))
	case CONSTANT:
		return fmt.Sprintf("%s %s", name, FormatConst(self.Ref))
	case MEMBER:
		return fmt.Sprintf("%s %s.%s %s", name, self.Ref.Owner, self.Ref.Name, self.Ref.Desc)
	case TYPEREF:
		if self.Op == ops.MULTIANEWARRAY {
			return fmt.Sprintf("%s %s %d", name, self.Ref.S, self.Operand)
		}
		return fmt.Sprintf("%s %s", name, self.Ref.S)
	case INDY:
		return fmt.Sprintf("%s %s %s", name, self.Ref.Name, self.Ref.Desc)
	case PUSH:
		return fmt.Sprintf("%s %d", name, self.Operand)
	}
	return name
}
