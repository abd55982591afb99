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
package scalars

import "hookinject/jvm/errors"

type T uint32

const INVALID T = 0
const INT T = 1 << 0
const FLOAT T = 1 << 1
const OBJ T = 1 << 2
const LONG T = 1 << 3
const DOUBLE T = 1 << 4

const ZERO T = INT | FLOAT | OBJ
const C32 T = INT | FLOAT
const C64 T = LONG | DOUBLE
const ALL T = ZERO | C64

func FromDesc(desc string) T {
	switch desc[0] {
	case 'Z', 'B', 'S', 'C', 'I':
		return INT
	case 'F':
		return FLOAT
	case 'J':
		return LONG
	case 'D':
		return DOUBLE
	case 'V':
		return INVALID
	default:
		return OBJ
	}
}

func (st T) Wide() bool { return st&C64 != 0 }

// Size is the number of local slots a value of this category occupies.
func (st T) Size() int {
	if st.Wide() {
		return 2
	}
	return 1
}

func (st T) String() string {
	switch st {
	case INT:
		return "int"
	case FLOAT:
		return "float"
	case OBJ:
		return "object"
	case LONG:
		return "long"
	case DOUBLE:
		return "double"
	}
	return "invalid"
}

// SplitDesc splits a method descriptor into its parameter descriptors and
// return descriptor.
func SplitDesc(desc string) (params []string, ret string, err error) {
	if len(desc) < 3 || desc[0] != '(' {
		return nil, "", errors.Malformedf("bad method descriptor %q", desc)
	}
	i := 1
	for i < len(desc) && desc[i] != ')' {
		start := i
		for i < len(desc) && desc[i] == '[' {
			i++
		}
		if i >= len(desc) {
			break
		}
		if desc[i] == 'L' {
			for i < len(desc) && desc[i] != ';' {
				i++
			}
			if i >= len(desc) {
				break
			}
		}
		i++
		params = append(params, desc[start:i])
	}
	if i >= len(desc)-1 || desc[i] != ')' {
		return nil, "", errors.Malformedf("bad method descriptor %q", desc)
	}
	return params, desc[i+1:], nil
}

func ParamTypes(desc string) ([]T, error) {
	params, _, err := SplitDesc(desc)
	if err != nil {
		return nil, err
	}
	ptypes := make([]T, len(params))
	for i, p := range params {
		ptypes[i] = FromDesc(p)
	}
	return ptypes, nil
}

func ReturnType(desc string) (T, error) {
	_, ret, err := SplitDesc(desc)
	if err != nil {
		return INVALID, err
	}
	return FromDesc(ret), nil
}

// ParamSlots gives the first local slot of every declared parameter, taking
// the receiver of instance methods and wide categories into account. The
// second result is the first slot past the parameters.
func ParamSlots(static bool, ptypes []T) (slots []int, end int) {
	if !static {
		end = 1
	}
	slots = make([]int, len(ptypes))
	for i, st := range ptypes {
		slots[i] = end
		end += st.Size()
	}
	return
}
