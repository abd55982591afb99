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
package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hookinject/classfile"
	"hookinject/jvm"
	"hookinject/jvm/ir"
	"hookinject/jvm/ops"
)

func sampleClassFile(t *testing.T) string {
	class := classfile.NewClass("a/Game", "java/lang/Object", jvm.ACC_PUBLIC)
	start, end, handler := ir.NewLabel(), ir.NewLabel(), ir.NewLabel()
	tick := class.AddMethod(&classfile.Method{Access: jvm.ACC_PRIVATE, Name: "tick", Desc: "()V", Code: ir.NewList(
		start,
		ir.NewMember(ops.INVOKESTATIC, "a/Game", "step", "()V", false),
		end,
		ir.NewOther(ops.RETURN),
		handler,
		ir.NewOther(ops.ATHROW),
	)})
	tick.Handlers = []classfile.Handler{{Start: start, End: end, Handler: handler}}
	class.AddMethod(&classfile.Method{Access: jvm.ACC_PROTECTED | jvm.ACC_STATIC, Name: "idle", Desc: "()V", Code: ir.NewList(
		ir.NewOther(ops.RETURN),
	)})

	data, err := class.Encode()
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "Game.class")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestDump(t *testing.T) {
	path := sampleClassFile(t)

	out, err := run(t, "dump", path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "a/Game extends java/lang/Object (version "), out)
	assert.Contains(t, out, "tick()V [access 0x0002")
	assert.Contains(t, out, "INVOKESTATIC a/Game.step ()V")
	assert.Contains(t, out, "catch any L0-L1 -> L2")
	assert.Contains(t, out, "idle()V")

	out, err = run(t, "dump", "-m", "idle", path)
	require.NoError(t, err)
	assert.NotContains(t, out, "tick")
	assert.Contains(t, out, "RETURN")

	_, err = run(t, "dump", filepath.Join(t.TempDir(), "missing.class"))
	assert.Error(t, err)
}

func TestPublicize(t *testing.T) {
	path := sampleClassFile(t)
	out := filepath.Join(t.TempDir(), "Public.class")
	_, err := run(t, "publicize", path, "-o", out)
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	class, err := classfile.Parse(data)
	require.NoError(t, err)
	assert.Equal(t, uint16(jvm.ACC_PUBLIC), class.Method("tick").Access)
	assert.Equal(t, uint16(jvm.ACC_PUBLIC|jvm.ACC_STATIC), class.Method("idle").Access)
	assert.Equal(t, []string{"L0:", "INVOKESTATIC a/Game.step ()V", "L1:", "RETURN", "L2:", "ATHROW"},
		class.Method("tick").Code.Dump())
	require.Len(t, class.Method("tick").Handlers, 1)
}

func TestApplyCommandNeedsPlan(t *testing.T) {
	_, err := run(t, "apply")
	assert.Error(t, err)
	_, err = run(t, "apply", filepath.Join(t.TempDir(), "plan.toml"))
	assert.ErrorContains(t, err, "cannot read")
}
