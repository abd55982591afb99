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
package plan

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/tliron/commonlog"

	"hookinject/classfile"
	"hookinject/classpath"
	"hookinject/inject"
	"hookinject/jvm/ir"
	"hookinject/jvm/ops"
)

var log = commonlog.GetLogger("hookinject.plan")

func (self Param) source() inject.Source {
	switch {
	case self.Slot != nil:
		return inject.Slot(*self.Slot)
	case self.Int != nil:
		return inject.Value(ir.NewInt(*self.Int))
	case self.Long != nil:
		return inject.Value(ir.NewLong(*self.Long))
	case self.Float != nil:
		return inject.Value(ir.NewFloat(*self.Float))
	case self.Double != nil:
		return inject.Value(ir.NewDouble(*self.Double))
	case self.String != nil:
		return inject.Value(ir.NewString(*self.String))
	case self.Null:
		return inject.Value(ir.NewOther(ops.ACONST_NULL))
	}
	return inject.Source{}
}

// decoded forms never use the wide jump and ldc variants
func normalizeOp(op byte) byte {
	switch op {
	case ops.GOTO_W:
		return ops.GOTO
	case ops.JSR_W:
		return ops.JSR
	case ops.LDC_W:
		return ops.LDC
	}
	return op
}

func (self Match) matches(ins *ir.Instruction, op byte) bool {
	if ins.IsLabel() || ins.Op != op {
		return false
	}
	if self.Owner != "" {
		owner := ins.Ref.Owner
		if ins.Tag == ir.TYPEREF {
			owner = ins.Ref.S
		}
		if owner != classpath.InternalName(self.Owner) {
			return false
		}
	}
	return self.Name == "" || ins.Ref.Name == self.Name
}

// Find returns the Ordinal-th instruction of code matching self.
func (self Match) Find(code *ir.List) (*ir.Instruction, error) {
	op, ok := ops.Lookup(self.Opcode)
	if !ok {
		return nil, fmt.Errorf("unknown opcode %q", self.Opcode)
	}
	op = normalizeOp(op)
	seen := 0
	for _, ins := range code.Instructions() {
		if self.matches(ins, op) {
			if seen == self.Ordinal {
				return ins, nil
			}
			seen++
		}
	}
	return nil, fmt.Errorf("no instruction matches %s (ordinal %d, %d found)", self.Opcode, self.Ordinal, seen)
}

func (self *Splice) request(loc *inject.Locator, target *classfile.Method) (*inject.Request, error) {
	req := inject.NewRequest(loc).
		Target(target).
		Of(inject.Hook(self.Hook.Class, self.Hook.Method))

	switch self.At {
	case AtHead:
		if first := target.Code.First(); first != nil {
			req.Before(first)
		}
	case AtBefore, AtAfter:
		ins, err := self.Match.Find(target.Code)
		if err != nil {
			return nil, err
		}
		if self.At == AtBefore {
			req.Before(ins)
		} else {
			req.After(ins)
		}
	}

	for _, param := range self.Params {
		req.ParamSource(param.source())
	}
	if self.KeepReturns {
		req.KeepReturns()
	}
	return req, nil
}

type targetClass struct {
	class *classfile.Class
	name  string
}

// Apply performs every splice of the plan and writes each modified class
// under the output directory. It returns the paths written.
func (self *Plan) Apply() ([]string, error) {
	loader, err := classpath.New(self.ClasspathPaths()...)
	if err != nil {
		return nil, err
	}
	return self.ApplyWith(loader, self.OutputDir())
}

// ApplyWith is Apply with an explicit loader and output directory.
func (self *Plan) ApplyWith(loader classpath.Loader, output string) ([]string, error) {
	loc := inject.NewLocator(loader)
	var order []*targetClass
	classes := make(map[string]*targetClass)

	for i := range self.Splices {
		s := &self.Splices[i]
		name := classpath.InternalName(s.Target.Class)
		tc, ok := classes[name]
		if !ok {
			data, err := loader.Load(name)
			if err != nil {
				return nil, fmt.Errorf("splice %d: %w", i, &inject.ResourceError{Owner: name, Err: err})
			}
			class, err := classfile.Parse(data)
			if err != nil {
				return nil, fmt.Errorf("splice %d: %w", i, &inject.ResourceError{Owner: name, Err: err})
			}
			tc = &targetClass{class, name}
			classes[name] = tc
			order = append(order, tc)
		}

		target := tc.class.MethodDesc(s.Target.Method, s.Target.Desc)
		if target == nil || target.Code == nil {
			return nil, fmt.Errorf("splice %d: %w", i, &inject.NotFoundError{Owner: name, Name: s.Target.Method})
		}
		req, err := s.request(loc, target)
		if err != nil {
			return nil, fmt.Errorf("splice %d: %w", i, err)
		}
		if err := req.Finalize(); err != nil {
			return nil, fmt.Errorf("splice %d: %w", i, err)
		}
		if err := req.Inject(); err != nil {
			return nil, fmt.Errorf("splice %d: %w", i, err)
		}
		if s.Handlers {
			if err := req.InjectHandlers(); err != nil {
				return nil, fmt.Errorf("splice %d: %w", i, err)
			}
		}
		log.Infof("spliced %s.%s into %s.%s%s", s.Hook.Class, s.Hook.Method, name, target.Name, target.Desc)
	}

	var written []string
	for _, tc := range order {
		data, err := tc.class.Encode()
		if err != nil {
			return written, fmt.Errorf("encoding %s: %w", tc.name, err)
		}
		path := filepath.Join(output, filepath.FromSlash(tc.name)+".class")
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return written, err
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return written, err
		}
		log.Infof("wrote %s", path)
		written = append(written, path)
	}
	return written, nil
}
