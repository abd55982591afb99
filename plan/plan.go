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
// Package plan reads splice plans from TOML files and applies them to the
// classes on a classpath.
package plan

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"hookinject/jvm/ops"
)

const DefaultOutput = "out"

type Plan struct {
	Classpath []string `toml:"classpath"`
	Output    string   `toml:"output"`
	Splices   []Splice `toml:"splice"`

	// Dir is the directory containing the plan file (set at load time).
	Dir string `toml:"-"`
}

type MethodRef struct {
	Class  string `toml:"class"`
	Method string `toml:"method"`
	// Empty matches any descriptor.
	Desc string `toml:"desc"`
}

// Match selects an instruction of the target method. Owner and Name filter
// member and type references; Ordinal picks among several matches.
type Match struct {
	Opcode  string `toml:"opcode"`
	Owner   string `toml:"owner"`
	Name    string `toml:"name"`
	Ordinal int    `toml:"ordinal"`
}

// Param supplies one hook parameter. Exactly one field is set.
type Param struct {
	Slot   *int     `toml:"slot"`
	Int    *int32   `toml:"int"`
	Long   *int64   `toml:"long"`
	Float  *float32 `toml:"float"`
	Double *float64 `toml:"double"`
	String *string  `toml:"string"`
	Null   bool     `toml:"null"`
}

type Splice struct {
	Target      MethodRef `toml:"target"`
	Hook        MethodRef `toml:"hook"`
	At          string    `toml:"at"`
	Match       Match     `toml:"match"`
	KeepReturns bool      `toml:"keep_returns"`
	Handlers    bool      `toml:"handlers"`
	Params      []Param   `toml:"params"`
}

const (
	AtHead   = "head"
	AtAppend = "append"
	AtBefore = "before"
	AtAfter  = "after"
)

// Load parses a plan file.
func Load(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	var p Plan
	if err := toml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}

	p.Dir, err = filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", path, err)
	}

	// Defaults
	if p.Output == "" {
		p.Output = DefaultOutput
	}
	for i := range p.Splices {
		if p.Splices[i].At == "" {
			p.Splices[i].At = AtAppend
		}
	}

	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &p, nil
}

func (self *Plan) Validate() error {
	if len(self.Splices) == 0 {
		return fmt.Errorf("no splices")
	}
	for i, s := range self.Splices {
		if s.Target.Class == "" || s.Target.Method == "" {
			return fmt.Errorf("splice %d: target needs class and method", i)
		}
		if s.Hook.Class == "" || s.Hook.Method == "" {
			return fmt.Errorf("splice %d: hook needs class and method", i)
		}
		switch s.At {
		case AtHead, AtAppend:
		case AtBefore, AtAfter:
			if _, ok := ops.Lookup(s.Match.Opcode); !ok {
				return fmt.Errorf("splice %d: unknown opcode %q", i, s.Match.Opcode)
			}
			if s.Match.Ordinal < 0 {
				return fmt.Errorf("splice %d: negative ordinal", i)
			}
		default:
			return fmt.Errorf("splice %d: unknown insertion point %q", i, s.At)
		}
		for j, param := range s.Params {
			if n := param.count(); n != 1 {
				return fmt.Errorf("splice %d: parameter %d sets %d values", i, j, n)
			}
		}
	}
	return nil
}

func (self Param) count() (n int) {
	for _, set := range []bool{self.Slot != nil, self.Int != nil, self.Long != nil, self.Float != nil,
		self.Double != nil, self.String != nil, self.Null} {
		if set {
			n++
		}
	}
	return
}

// ClasspathPaths returns the classpath entries resolved against the plan's
// directory.
func (self *Plan) ClasspathPaths() []string {
	var paths []string
	for _, entry := range self.Classpath {
		paths = append(paths, self.resolve(entry))
	}
	return paths
}

func (self *Plan) OutputDir() string { return self.resolve(self.Output) }

func (self *Plan) resolve(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(self.Dir, path)
}
