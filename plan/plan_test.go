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
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePlan(t *testing.T, text string) string {
	dir := t.TempDir()
	path := filepath.Join(dir, "plan.toml")
	require.NoError(t, os.WriteFile(path, []byte(text), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writePlan(t, `
classpath = ["classes", "/opt/lib/hooks.jar"]

[[splice]]
target = { class = "a.Game", method = "tick" }
hook = { class = "a.Hooks", method = "log" }
params = [{ slot = 1 }, { string = "tick" }, { null = true }]

[[splice]]
target = { class = "a.Game", method = "tick", desc = "(I)V" }
hook = { class = "a.Hooks", method = "five" }
at = "before"
match = { opcode = "invokevirtual", owner = "a.Game", name = "step", ordinal = 1 }
keep_returns = true
handlers = true
`)
	p, err := Load(path)
	require.NoError(t, err)

	dir := filepath.Dir(path)
	assert.Equal(t, dir, p.Dir)
	assert.Equal(t, DefaultOutput, p.Output)
	assert.Equal(t, filepath.Join(dir, DefaultOutput), p.OutputDir())
	assert.Equal(t, []string{filepath.Join(dir, "classes"), "/opt/lib/hooks.jar"}, p.ClasspathPaths())

	require.Len(t, p.Splices, 2)
	first := p.Splices[0]
	assert.Equal(t, AtAppend, first.At)
	assert.Equal(t, "a.Game", first.Target.Class)
	require.Len(t, first.Params, 3)
	require.NotNil(t, first.Params[0].Slot)
	assert.Equal(t, 1, *first.Params[0].Slot)
	require.NotNil(t, first.Params[1].String)
	assert.Equal(t, "tick", *first.Params[1].String)
	assert.True(t, first.Params[2].Null)

	second := p.Splices[1]
	assert.Equal(t, AtBefore, second.At)
	assert.Equal(t, "(I)V", second.Target.Desc)
	assert.Equal(t, Match{Opcode: "invokevirtual", Owner: "a.Game", Name: "step", Ordinal: 1}, second.Match)
	assert.True(t, second.KeepReturns)
	assert.True(t, second.Handlers)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = Load(writePlan(t, `[[splice]`))
	assert.ErrorContains(t, err, "parse error")

	for _, tc := range []struct {
		text, want string
	}{
		{`output = "x"`, "no splices"},
		{`
[[splice]]
hook = { class = "a.Hooks", method = "log" }`, "target needs class and method"},
		{`
[[splice]]
target = { class = "a.Game", method = "tick" }
hook = { class = "a.Hooks" }`, "hook needs class and method"},
		{`
[[splice]]
target = { class = "a.Game", method = "tick" }
hook = { class = "a.Hooks", method = "log" }
at = "middle"`, `unknown insertion point "middle"`},
		{`
[[splice]]
target = { class = "a.Game", method = "tick" }
hook = { class = "a.Hooks", method = "log" }
at = "after"
match = { opcode = "frobnicate" }`, `unknown opcode "frobnicate"`},
		{`
[[splice]]
target = { class = "a.Game", method = "tick" }
hook = { class = "a.Hooks", method = "log" }
at = "after"
match = { opcode = "return", ordinal = -1 }`, "negative ordinal"},
		{`
[[splice]]
target = { class = "a.Game", method = "tick" }
hook = { class = "a.Hooks", method = "log" }
params = [{ slot = 1, int = 2 }]`, "parameter 0 sets 2 values"},
		{`
[[splice]]
target = { class = "a.Game", method = "tick" }
hook = { class = "a.Hooks", method = "log" }
params = [{}]`, "parameter 0 sets 0 values"},
	} {
		_, err := Load(writePlan(t, tc.text))
		assert.ErrorContains(t, err, tc.want)
	}
}
