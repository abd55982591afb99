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
	"hookinject/jvm/ir"
)

func build(loc *Locator, configure func(*Request)) (*Request, error) {
	req := NewRequest(loc)
	configure(req)
	if err := req.Finalize(); err != nil {
		return nil, err
	}
	return req, nil
}

// InjectInstructions configures a request, finalizes it and injects it.
func InjectInstructions(loc *Locator, configure func(*Request)) error {
	req, err := build(loc, configure)
	if err != nil {
		return err
	}
	return req.Inject()
}

// InjectInstructionsWithHandlers also merges the hook's exception handlers.
func InjectInstructionsWithHandlers(loc *Locator, configure func(*Request)) error {
	req, err := build(loc, configure)
	if err != nil {
		return err
	}
	if err := req.Inject(); err != nil {
		return err
	}
	return req.InjectHandlers()
}

// Instructions returns the spliced code without attaching it.
func Instructions(loc *Locator, configure func(*Request)) (*ir.List, error) {
	req, err := build(loc, configure)
	if err != nil {
		return nil, err
	}
	code, _ := req.Result()
	return code, nil
}

func InstructionsWithHandlers(loc *Locator, configure func(*Request)) (*ir.List, []classfile.Handler, error) {
	req, err := build(loc, configure)
	if err != nil {
		return nil, nil, err
	}
	code, handlers := req.Result()
	return code, handlers, nil
}

// MethodInstructions locates a hook and remaps it with a caller chosen
// offset. slots[i] is the target slot bound to the hook's i-th parameter;
// unbound parameters are offset like any other local.
func MethodInstructions(loc *Locator, ref HookRef, remapReturns bool, offset int, slots ...int) (*ir.List, error) {
	hook, err := loc.Locate(ref)
	if err != nil {
		return nil, err
	}
	mapping := make(map[int]int, len(slots))
	for i, s := range slots {
		mapping[i] = s
	}
	return Remap(hook, remapReturns, offset, mapping)
}

// MethodInstructionsWithNewVars locates a hook and stores each of params,
// in order, into a fresh slot above offset before the hook body. There must
// be one sequence per hook parameter.
func MethodInstructionsWithNewVars(loc *Locator, ref HookRef, remapReturns bool, offset int, params ...*ir.List) (*ir.List, error) {
	hook, err := loc.Locate(ref)
	if err != nil {
		return nil, err
	}
	ptypes, err := hook.ParamTypes()
	if err != nil {
		return nil, err
	}
	sources := make([]Source, len(params))
	for i, p := range params {
		sources[i] = Sequence(p)
	}
	slots, setup, last, err := BindParameters(sources, ptypes, offset)
	if err != nil {
		if arity, ok := err.(*ParameterArityError); ok {
			arity.Hook = ref.String()
		}
		return nil, err
	}

	lowest := 0
	if hook.IsStatic() {
		_, lowest, _ = hook.ParamSlots()
	}
	code, err := Remap(hook, remapReturns, last+1-lowest, slots)
	if err != nil {
		return nil, err
	}
	code.Prepend(setup)
	return code, nil
}
