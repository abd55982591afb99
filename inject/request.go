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

type State uint8

const (
	Configuring State = iota
	Finalized
	Injected
)

func (self State) String() string {
	switch self {
	case Configuring:
		return "configuring"
	case Finalized:
		return "finalized"
	case Injected:
		return "injected"
	}
	return "invalid"
}

// Request collects the pieces of one splice: the target method, the hook,
// where the hook goes and how its parameters are supplied. Finalize builds
// the spliced code once; Inject attaches it to the target.
//
// Setters return the request for chaining. A setter called after Finalize
// has no effect and makes the next Finalize or Inject fail.
type Request struct {
	loc     *Locator
	target  *classfile.Method
	hook    *classfile.Method
	hookRef *HookRef

	before, after *ir.Instruction
	sources       []Source
	remapReturns  bool

	state State
	err   error

	instructions *ir.List
	handlers     []classfile.Handler
}

// NewRequest starts a splice. loc resolves hooks given with Of and may be nil
// when the hook is given with OfMethod.
func NewRequest(loc *Locator) *Request {
	return &Request{loc: loc, remapReturns: true}
}

func (self *Request) configure(op string) bool {
	if self.state != Configuring {
		if self.err == nil {
			self.err = &StateError{op, self.state}
		}
		return false
	}
	return true
}

func (self *Request) Target(m *classfile.Method) *Request {
	if self.configure("set target of") {
		self.target = m
	}
	return self
}

func (self *Request) Into(m *classfile.Method) *Request { return self.Target(m) }

// Of names the hook; it is located when the request is finalized.
func (self *Request) Of(ref HookRef) *Request {
	if self.configure("set hook of") {
		self.hookRef, self.hook = &ref, nil
	}
	return self
}

func (self *Request) From(ref HookRef) *Request { return self.Of(ref) }

func (self *Request) OfMethod(hook *classfile.Method) *Request {
	if self.configure("set hook of") {
		self.hook, self.hookRef = hook, nil
	}
	return self
}

// Before, After and Append select the insertion point; the last call wins.
func (self *Request) Before(ins *ir.Instruction) *Request {
	if self.configure("set insertion point of") {
		self.before, self.after = ins, nil
	}
	return self
}

func (self *Request) After(ins *ir.Instruction) *Request {
	if self.configure("set insertion point of") {
		self.before, self.after = nil, ins
	}
	return self
}

func (self *Request) Append() *Request {
	if self.configure("set insertion point of") {
		self.before, self.after = nil, nil
	}
	return self
}

func (self *Request) ParamSource(src Source) *Request {
	if self.configure("add parameter to") {
		self.sources = append(self.sources, src)
	}
	return self
}

func (self *Request) Param(slot int) *Request { return self.ParamSource(Slot(slot)) }

func (self *Request) Params(slots ...int) *Request {
	for _, s := range slots {
		self.Param(s)
	}
	return self
}

func (self *Request) ParamValue(ins *ir.Instruction) *Request { return self.ParamSource(Value(ins)) }

func (self *Request) ParamSequence(instrs *ir.List) *Request {
	return self.ParamSource(Sequence(instrs))
}

// KeepReturns leaves the hook's return instructions in place.
func (self *Request) KeepReturns() *Request {
	if self.configure("keep returns of") {
		self.remapReturns = false
	}
	return self
}

func (self *Request) State() State { return self.state }

// Result returns the spliced code and the hook's exception handlers,
// retargeted to the spliced labels. Both are nil before Finalize. Once
// injected, the instructions belong to the target, so a fresh copy is
// returned instead.
func (self *Request) Result() (*ir.List, []classfile.Handler) {
	if self.state == Injected {
		code, labels := self.instructions.Clone()
		return code, classfile.CopyHandlers(self.handlers, labels)
	}
	return self.instructions, self.handlers
}

func (self *Request) resolveHook() error {
	if self.hook != nil {
		return nil
	}
	if self.hookRef == nil {
		return &ConfigurationError{"hook"}
	}
	if self.loc == nil {
		return &ConfigurationError{"locator"}
	}
	hook, err := self.loc.Locate(*self.hookRef)
	if err != nil {
		return err
	}
	self.hook = hook
	return nil
}

// point is the instruction the spliced code will precede, nil at the end.
func (self *Request) point() (*ir.Instruction, error) {
	switch {
	case self.before != nil:
		if !self.target.Code.Contains(self.before) {
			return nil, &ConfigurationError{"insertion point"}
		}
		return self.before, nil
	case self.after != nil:
		if !self.target.Code.Contains(self.after) {
			return nil, &ConfigurationError{"insertion point"}
		}
		return self.target.Code.Next(self.after), nil
	}
	return nil, nil
}

// Finalize builds the spliced code. It runs once.
func (self *Request) Finalize() error {
	if self.err != nil {
		return self.err
	}
	if self.state != Configuring {
		return &StateError{"finalize", self.state}
	}
	if self.target == nil {
		return &ConfigurationError{"target"}
	}
	if self.target.Code == nil {
		return &ConfigurationError{"target code"}
	}
	if err := self.resolveHook(); err != nil {
		return err
	}
	if self.hook.Code == nil {
		return &ConfigurationError{"hook code"}
	}

	ptypes, err := self.hook.ParamTypes()
	if err != nil {
		return err
	}
	if len(ptypes) != len(self.sources) {
		return &ParameterArityError{self.hook.Name, len(ptypes), len(self.sources)}
	}
	point, err := self.point()
	if err != nil {
		return err
	}
	index := SuggestedStart(self.target, point)
	// Bound slots may lie above anything seen before point. The copies made
	// below must still land above them.
	for p, src := range self.sources {
		if src.IsSlot() && src.SlotIndex() >= 0 {
			if top := src.SlotIndex() + ptypes[p].Size() - 1; top > index {
				index = top
			}
		}
	}

	// A hook that assigns one of its parameters must not clobber the target
	// slot the parameter was bound to, so it gets a private copy.
	static := self.hook.IsStatic()
	pslots, hookEnd, _ := self.hook.ParamSlots()
	sources := append([]Source(nil), self.sources...)
	for _, ins := range self.hook.Code.Instructions() {
		if !ins.Writes() {
			continue
		}
		for p, s := range pslots {
			if int(ins.Slot) == s && sources[p].IsSlot() {
				log.Debugf("hook %s writes parameter %d, copying slot %d", self.hook.Name, p, sources[p].SlotIndex())
				sources[p] = Value(ir.NewLoad(ptypes[p], uint16(sources[p].SlotIndex())))
			}
		}
	}

	slots, setup, last, err := BindParameters(sources, ptypes, index)
	if err != nil {
		return err
	}

	// Everything of the hook's that is not a bound parameter, the receiver
	// included, moves above the last bound slot.
	lowest := 0
	if static {
		lowest = hookEnd
	}
	offset := last + 1 - lowest

	hook := self.hook.Clone()
	if err := remap(hook.Code, static, ptypes, self.remapReturns, offset, slots); err != nil {
		return err
	}
	hook.Code.Prepend(setup)

	self.instructions = hook.Code
	self.handlers = hook.Handlers
	self.state = Finalized
	log.Debugf("finalized %s into %s: start %d, offset %d, %d instructions",
		self.hook.Name, self.target.Name, index, offset, self.instructions.Len())
	return nil
}

// Inject attaches the finalized code to the target at the insertion point
// and marks the target modified. The spliced instructions then belong to the
// target; a request injects once.
func (self *Request) Inject() error {
	if self.err != nil {
		return self.err
	}
	if self.state != Finalized {
		return &StateError{"inject", self.state}
	}

	code := ir.NewList(self.instructions.Instructions()...)
	switch {
	case self.before != nil:
		if !self.target.Code.InsertBefore(self.before, code) {
			return &ConfigurationError{"insertion point"}
		}
	case self.after != nil:
		if !self.target.Code.InsertAfter(self.after, code) {
			return &ConfigurationError{"insertion point"}
		}
	default:
		self.target.Code.AddAll(code)
	}
	self.target.Modified = true
	self.state = Injected
	log.Debugf("injected %d instructions into %s%s", self.instructions.Len(), self.target.Name, self.target.Desc)
	return nil
}

// InjectHandlers appends the hook's exception handlers to the target's
// table. It is only valid after Inject, since the handlers refer to the
// spliced labels.
func (self *Request) InjectHandlers() error {
	if self.err != nil {
		return self.err
	}
	if self.state != Injected {
		return &StateError{"inject handlers of", self.state}
	}
	if len(self.handlers) > 0 {
		self.target.Handlers = append(self.target.Handlers, self.handlers...)
		self.target.Modified = true
	}
	return nil
}
