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
// Package inject splices compiled hook methods into target methods.
//
// The hook's local variable slots are moved above those in use by the target
// at the insertion point, its parameters are bound to target slots or to
// freshly stored values, and its returns become jumps to a label at the end
// of the spliced code so that execution continues in the target.
package inject

import (
	"strings"

	"github.com/tliron/commonlog"

	"hookinject/classfile"
)

var log = commonlog.GetLogger("hookinject.inject")

// Loader returns the class file bytes of owner, given in internal form.
type Loader interface {
	Load(owner string) ([]byte, error)
}

// HookRef names a compiled hook by its declaring class and method name.
// Overloads are not distinguished; the first method with the name wins.
type HookRef struct {
	Owner, Name string
}

// Hook accepts the owner in either dotted or internal form.
func Hook(owner, name string) HookRef {
	return HookRef{strings.ReplaceAll(owner, ".", "/"), name}
}

func (self HookRef) String() string { return self.Owner + "." + self.Name }

type Locator struct {
	loader Loader
	cache  map[HookRef]*classfile.Method
}

func NewLocator(loader Loader) *Locator {
	return &Locator{loader, make(map[HookRef]*classfile.Method)}
}

// Locate decodes the hook's class, extracting only the named method. Each
// call returns an independent copy.
func (self *Locator) Locate(ref HookRef) (*classfile.Method, error) {
	ref = Hook(ref.Owner, ref.Name)
	if m, ok := self.cache[ref]; ok {
		return m.Clone(), nil
	}

	data, err := self.loader.Load(ref.Owner)
	if err != nil {
		return nil, &ResourceError{ref.Owner, err}
	}

	var found *classfile.Method
	_, err = classfile.Decode(data, func(access uint16, name, desc, signature string, exceptions []string) *classfile.Method {
		if found != nil || name != ref.Name {
			return nil
		}
		found = &classfile.Method{}
		return found
	})
	if err != nil {
		return nil, &ResourceError{ref.Owner, err}
	}
	if found == nil || found.Code == nil {
		return nil, &NotFoundError{ref.Owner, ref.Name}
	}
	log.Debugf("located %s%s (%d instructions)", ref, found.Desc, found.Code.Len())
	self.cache[ref] = found
	return found.Clone(), nil
}
