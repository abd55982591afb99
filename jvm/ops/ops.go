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
package ops

import (
	"fmt"
	"strings"

	"hookinject/jvm/scalars"
)

var IlfdaOrd = map[scalars.T]uint8{scalars.INT: 0, scalars.LONG: 1, scalars.FLOAT: 2, scalars.DOUBLE: 3, scalars.OBJ: 4}

// Inverse of IlfdaOrd
var ordIlfda = [5]scalars.T{scalars.INT, scalars.LONG, scalars.FLOAT, scalars.DOUBLE, scalars.OBJ}

func LoadOp(st scalars.T) byte   { return ILOAD + IlfdaOrd[st] }
func StoreOp(st scalars.T) byte  { return ISTORE + IlfdaOrd[st] }
func ReturnOp(st scalars.T) byte { return IRETURN + IlfdaOrd[st] }

func IsLoad(op byte) bool   { return ILOAD <= op && op <= ALOAD }
func IsStore(op byte) bool  { return ISTORE <= op && op <= ASTORE }
func IsReturn(op byte) bool { return IRETURN <= op && op <= RETURN }

// VarType gives the category accessed by a long form load or store.
func VarType(op byte) scalars.T {
	switch {
	case IsLoad(op):
		return ordIlfda[op-ILOAD]
	case IsStore(op):
		return ordIlfda[op-ISTORE]
	}
	return scalars.OBJ
}

// ShortVar expands the xLOAD_n / xSTORE_n forms into the long opcode and slot.
func ShortVar(op byte) (long byte, slot uint16, ok bool) {
	switch {
	case ILOAD_0 <= op && op <= ALOAD_3:
		d := op - ILOAD_0
		return ILOAD + d/4, uint16(d % 4), true
	case ISTORE_0 <= op && op <= ASTORE_3:
		d := op - ISTORE_0
		return ISTORE + d/4, uint16(d % 4), true
	}
	return 0, 0, false
}

func Valid(op byte) bool { return Table[op].Name != "" }

func Name(op byte) string {
	if !Valid(op) {
		return fmt.Sprintf("op_%#02x", op)
	}
	return strings.ToUpper(Table[op].Name)
}

var byName map[string]byte

func init() {
	byName = make(map[string]byte, len(Table))
	for op, info := range Table {
		if info.Name != "" {
			byName[info.Name] = byte(op)
		}
	}
}

// Lookup resolves a mnemonic in either case.
func Lookup(name string) (byte, bool) {
	op, ok := byName[strings.ToLower(name)]
	return op, ok
}
