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
	"fmt"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hookinject/classfile"
	"hookinject/jvm"
	"hookinject/jvm/errors"
	"hookinject/jvm/ir"
	"hookinject/jvm/ops"
)

type mapLoader struct {
	classes map[string][]byte
	loads   int
}

func (self *mapLoader) Load(owner string) ([]byte, error) {
	self.loads++
	data, ok := self.classes[owner]
	if !ok {
		return nil, fmt.Errorf("%s: %w", owner, fs.ErrNotExist)
	}
	return data, nil
}

// hooksClass compiles a small class of hooks the way javac would lay them
// out.
func hooksClass(t *testing.T) []byte {
	class := classfile.NewClass("a/Hooks", "java/lang/Object", jvm.ACC_PUBLIC)

	// static void log(int x) { Logger.log(x); }
	class.AddMethod(method(jvm.ACC_PUBLIC|jvm.ACC_STATIC, "log", "(I)V",
		ir.NewVar(ops.ILOAD, 0),
		ir.NewMember(ops.INVOKESTATIC, "a/Logger", "log", "(I)V", false),
		ir.NewOther(ops.RETURN),
	))

	// static int five() { return 5; }
	class.AddMethod(method(jvm.ACC_PUBLIC|jvm.ACC_STATIC, "five", "()I",
		ir.NewInt(5),
		ir.NewOther(ops.IRETURN),
	))

	// static void guarded() { try { risky(); } catch (Exception e) { } }
	start, end, handler, done := ir.NewLabel(), ir.NewLabel(), ir.NewLabel(), ir.NewLabel()
	guarded := method(jvm.ACC_PUBLIC|jvm.ACC_STATIC, "guarded", "()V",
		start,
		ir.NewMember(ops.INVOKESTATIC, "a/Hooks", "risky", "()V", false),
		end,
		ir.NewGoto(done),
		handler,
		ir.NewVar(ops.ASTORE, 0),
		done,
		ir.NewOther(ops.RETURN),
	)
	guarded.Handlers = []classfile.Handler{{Start: start, End: end, Handler: handler, Type: "java/lang/Exception"}}
	class.AddMethod(guarded)

	// static void bump(int x) { x++; Logger.log(x); }
	class.AddMethod(method(jvm.ACC_PUBLIC|jvm.ACC_STATIC, "bump", "(I)V",
		ir.NewIinc(0, 1),
		ir.NewVar(ops.ILOAD, 0),
		ir.NewMember(ops.INVOKESTATIC, "a/Logger", "log", "(I)V", false),
		ir.NewOther(ops.RETURN),
	))

	// abstract void nothing();
	class.AddMethod(&classfile.Method{Access: jvm.ACC_PUBLIC | jvm.ACC_ABSTRACT, Name: "nothing", Desc: "()V"})

	data, err := class.Encode()
	require.NoError(t, err)
	return data
}

func newLocator(t *testing.T) (*Locator, *mapLoader) {
	loader := &mapLoader{classes: map[string][]byte{"a/Hooks": hooksClass(t)}}
	return NewLocator(loader), loader
}

// void tick(int n) { Game.step(); return; }
func tickMethod() *classfile.Method {
	return method(jvm.ACC_PUBLIC, "tick", "(I)V",
		ir.NewVar(ops.ALOAD, 0),
		ir.NewMember(ops.INVOKEVIRTUAL, "a/Game", "step", "()V", false),
		ir.NewOther(ops.RETURN),
	)
}

func TestLocate(t *testing.T) {
	loc, loader := newLocator(t)
	m, err := loc.Locate(Hook("a.Hooks", "log"))
	require.NoError(t, err)
	assert.Equal(t, "(I)V", m.Desc)
	assert.True(t, m.IsStatic())
	assert.Equal(t, []string{"ILOAD 0", "INVOKESTATIC a/Logger.log (I)V", "RETURN"}, m.Code.Dump())

	// callers get their own copy
	m.Code.At(0).Slot = 7
	again, err := loc.Locate(HookRef{"a/Hooks", "log"})
	require.NoError(t, err)
	assert.Equal(t, uint16(0), again.Code.At(0).Slot)
	assert.Equal(t, 1, loader.loads)

	guarded, err := loc.Locate(HookRef{"a/Hooks", "guarded"})
	require.NoError(t, err)
	require.Len(t, guarded.Handlers, 1)
	assert.True(t, guarded.Code.Contains(guarded.Handlers[0].Start))
}

func TestLocateErrors(t *testing.T) {
	loc, loader := newLocator(t)

	_, err := loc.Locate(HookRef{"a/Hooks", "missing"})
	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "missing", notFound.Name)

	_, err = loc.Locate(HookRef{"a/Hooks", "nothing"})
	assert.ErrorAs(t, err, &notFound, "abstract methods have no code to splice")

	_, err = loc.Locate(HookRef{"a/Elsewhere", "log"})
	var resource *ResourceError
	require.ErrorAs(t, err, &resource)
	assert.Equal(t, "a/Elsewhere", resource.Owner)
	assert.ErrorIs(t, err, fs.ErrNotExist)

	loader.classes["a/Broken"] = []byte{0xca, 0xfe, 0xba, 0xbe, 0, 0}
	_, err = loc.Locate(HookRef{"a/Broken", "log"})
	require.ErrorAs(t, err, &resource)
	var truncated *errors.Truncated
	assert.ErrorAs(t, err, &truncated)
}

func TestPassThroughParameter(t *testing.T) {
	loc, _ := newLocator(t)
	target := tickMethod()
	first := target.Code.First()
	assert.GreaterOrEqual(t, SuggestedStart(target, target.Code.Next(first)), 2)

	req := NewRequest(loc).Target(target).Of(Hook("a/Hooks", "log")).After(first).Params(1)
	require.NoError(t, req.Finalize())
	out, handlers := req.Result()
	assert.Empty(t, handlers)
	assert.Equal(t, []string{
		"ILOAD 1",
		"INVOKESTATIC a/Logger.log (I)V",
		"GOTO L0",
		"L0:",
	}, out.Dump(), "no setup code, the hook's slot 0 reads the target's slot 1")

	require.NoError(t, req.Inject())
	assert.True(t, target.Modified)
	assert.Equal(t, []string{
		"ALOAD 0",
		"ILOAD 1",
		"INVOKESTATIC a/Logger.log (I)V",
		"GOTO L0",
		"L0:",
		"INVOKEVIRTUAL a/Game.step ()V",
		"RETURN",
	}, target.Code.Dump())
}

func TestReturnBecomesJump(t *testing.T) {
	loc, _ := newLocator(t)
	code, err := Instructions(loc, func(r *Request) {
		r.Target(tickMethod()).Of(HookRef{"a/Hooks", "five"})
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"ICONST_5", "GOTO L0", "L0:"}, code.Dump())
	assert.Same(t, code.Last(), code.At(1).Target)
}

func TestKeepReturns(t *testing.T) {
	loc, _ := newLocator(t)
	code, err := Instructions(loc, func(r *Request) {
		r.Target(tickMethod()).Of(HookRef{"a/Hooks", "five"}).KeepReturns()
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"ICONST_5", "IRETURN"}, code.Dump())
}

func TestWrittenParameterIsCopied(t *testing.T) {
	loc, _ := newLocator(t)
	target := tickMethod()
	req := NewRequest(loc).Into(target).From(HookRef{"a/Hooks", "bump"}).Before(target.Code.Last()).Param(1)
	require.NoError(t, req.Finalize())
	out, _ := req.Result()
	assert.Equal(t, []string{
		"ILOAD 1",
		"ISTORE 3",
		"IINC 3 1",
		"ILOAD 3",
		"INVOKESTATIC a/Logger.log (I)V",
		"GOTO L0",
		"L0:",
	}, out.Dump())
}

// assertNoWriteTo checks that nothing in code stores into slots lo..hi.
func assertNoWriteTo(t *testing.T, code *ir.List, lo, hi int) {
	for _, ins := range code.Instructions() {
		if !ins.Writes() {
			continue
		}
		bottom, top := int(ins.Slot), int(ins.Slot)
		if ins.Tag == ir.VAR && ins.T.Wide() {
			top++
		}
		assert.False(t, bottom <= hi && top >= lo, "%s writes a bound slot", ins.Format(nil))
	}
}

func TestWrittenParameterAboveScanIsCopied(t *testing.T) {
	// the bound slot is only assigned after the insertion point
	point := ir.NewOther(ops.NOP)
	target := method(jvm.ACC_STATIC, "t", "()V",
		point,
		ir.NewVar(ops.ISTORE, 1),
		ir.NewOther(ops.RETURN),
	)
	hook := method(jvm.ACC_STATIC, "h", "(I)V", ir.NewIinc(0, 1), ir.NewOther(ops.RETURN))
	code, err := Instructions(nil, func(r *Request) {
		r.Target(target).OfMethod(hook).Before(point).Param(1)
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"ILOAD 1", "ISTORE 2", "IINC 2 1", "GOTO L0", "L0:"}, code.Dump())
	assertNoWriteTo(t, code, 1, 1)

	wide := method(jvm.ACC_STATIC, "h", "(J)V",
		ir.NewVar(ops.LLOAD, 0),
		ir.NewLong(1),
		ir.NewOther(ops.LADD),
		ir.NewVar(ops.LSTORE, 0),
		ir.NewOther(ops.RETURN),
	)
	target = method(jvm.ACC_STATIC, "t", "()V", ir.NewOther(ops.NOP), ir.NewOther(ops.RETURN))
	code, err = Instructions(nil, func(r *Request) {
		r.Target(target).OfMethod(wide).Before(target.Code.First()).Param(3)
	})
	require.NoError(t, err)
	assert.Equal(t, []string{
		"LLOAD 3",
		"LSTORE 5",
		"LLOAD 5",
		"LCONST_1",
		"LADD",
		"LSTORE 5",
		"GOTO L0",
		"L0:",
	}, code.Dump())
	assertNoWriteTo(t, code, 3, 4)
}

func TestInstanceHookReceiverMoves(t *testing.T) {
	hook := method(0, "h", "(I)V",
		ir.NewVar(ops.ALOAD, 0),
		ir.NewVar(ops.ILOAD, 1),
		ir.NewVar(ops.ISTORE, 2),
		ir.NewOther(ops.RETURN),
	)
	target := method(jvm.ACC_STATIC, "t", "(I)V", ir.NewOther(ops.RETURN))
	code, err := Instructions(nil, func(r *Request) {
		r.Target(target).OfMethod(hook).Before(target.Code.First()).Param(0)
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"ALOAD 2", "ILOAD 0", "ISTORE 4", "GOTO L0", "L0:"}, code.Dump())
}

func TestWideParameters(t *testing.T) {
	hook := method(jvm.ACC_STATIC, "h", "(JI)V",
		ir.NewVar(ops.LLOAD, 0),
		ir.NewVar(ops.ILOAD, 2),
		ir.NewVar(ops.ISTORE, 3),
		ir.NewOther(ops.RETURN),
	)
	target := method(jvm.ACC_STATIC, "t", "()V", ir.NewOther(ops.RETURN))
	code, err := Instructions(nil, func(r *Request) {
		r.Target(target).OfMethod(hook).Param(5).ParamValue(ir.NewInt(7))
	})
	require.NoError(t, err)
	assert.Equal(t, []string{
		"BIPUSH 7",
		"ISTORE 7",
		"LLOAD 5",
		"ILOAD 7",
		"ISTORE 8",
		"GOTO L0",
		"L0:",
	}, code.Dump())
}

func TestArity(t *testing.T) {
	for n := 0; n <= 3; n++ {
		req := NewRequest(nil).Target(tickMethod()).OfMethod(method(jvm.ACC_STATIC, "h", "(IJ)V", ir.NewOther(ops.RETURN)))
		for i := 0; i < n; i++ {
			req.ParamValue(ir.NewInt(int32(i)))
		}
		err := req.Finalize()
		var arity *ParameterArityError
		if n == 2 {
			assert.NoError(t, err)
		} else {
			require.ErrorAs(t, err, &arity, "%d sources", n)
			assert.Equal(t, "h", arity.Hook)
			assert.Equal(t, 2, arity.Want)
			assert.Equal(t, n, arity.Got)
			assert.Equal(t, Configuring, req.State())
		}
	}
}

func TestConfigurationErrors(t *testing.T) {
	hook := method(jvm.ACC_STATIC, "h", "()V", ir.NewOther(ops.RETURN))
	var config *ConfigurationError

	err := NewRequest(nil).OfMethod(hook).Finalize()
	require.ErrorAs(t, err, &config)
	assert.Equal(t, "target", config.Missing)

	err = NewRequest(nil).Target(tickMethod()).Finalize()
	require.ErrorAs(t, err, &config)
	assert.Equal(t, "hook", config.Missing)

	err = NewRequest(nil).Target(tickMethod()).Of(HookRef{"a/Hooks", "five"}).Finalize()
	require.ErrorAs(t, err, &config)
	assert.Equal(t, "locator", config.Missing)

	err = NewRequest(nil).Target(tickMethod()).OfMethod(hook).Before(ir.NewOther(ops.NOP)).Finalize()
	require.ErrorAs(t, err, &config)
	assert.Equal(t, "insertion point", config.Missing)

	// OfMethod after Of replaces the reference
	err = NewRequest(nil).Target(tickMethod()).Of(HookRef{"a/Hooks", "five"}).OfMethod(hook).Finalize()
	assert.NoError(t, err)
}

func TestLifecycle(t *testing.T) {
	hook := method(jvm.ACC_STATIC, "h", "()V", ir.NewOther(ops.RETURN))
	target := tickMethod()
	req := NewRequest(nil).Target(target).OfMethod(hook)
	var state *StateError

	require.ErrorAs(t, req.Inject(), &state)
	assert.Equal(t, Configuring, state.State)
	require.ErrorAs(t, req.InjectHandlers(), &state)

	require.NoError(t, req.Finalize())
	require.ErrorAs(t, req.Finalize(), &state)
	assert.Equal(t, "finalize", state.Op)
	assert.Equal(t, Finalized, state.State)

	require.NoError(t, req.Inject())
	assert.Equal(t, Injected, req.State())
	require.ErrorAs(t, req.Inject(), &state)
	require.NoError(t, req.InjectHandlers())

	// output stays available after injection
	out, _ := req.Result()
	assert.Equal(t, 2, out.Len())
	assert.Equal(t, 5, target.Code.Len())

	// after injection the result is a copy the target does not share
	for _, ins := range out.Instructions() {
		assert.False(t, target.Code.Contains(ins))
	}

	late := NewRequest(nil).Target(target).OfMethod(hook)
	require.NoError(t, late.Finalize())
	late.Param(3)
	require.ErrorAs(t, late.Inject(), &state)
	assert.Equal(t, Finalized, state.State)
}

func TestInsertionPoints(t *testing.T) {
	hook := method(jvm.ACC_STATIC, "h", "()V", ir.NewOther(ops.NOP), ir.NewOther(ops.RETURN))
	for _, tc := range []struct {
		name  string
		setup func(r *Request, code *ir.List)
		want  int
	}{
		{"append", func(r *Request, code *ir.List) {}, 3},
		{"before", func(r *Request, code *ir.List) { r.Before(code.At(1)) }, 1},
		{"after", func(r *Request, code *ir.List) { r.After(code.At(1)) }, 2},
		{"last wins", func(r *Request, code *ir.List) { r.Before(code.At(1)).Append() }, 3},
		{"after last", func(r *Request, code *ir.List) { r.After(code.Last()) }, 3},
	} {
		target := tickMethod()
		req := NewRequest(nil).Target(target).OfMethod(hook)
		tc.setup(req, target.Code)
		require.NoError(t, req.Finalize(), tc.name)
		require.NoError(t, req.Inject(), tc.name)
		assert.Equal(t, byte(ops.NOP), target.Code.At(tc.want).Op, tc.name)
		assert.Equal(t, 6, target.Code.Len(), tc.name)
	}
}

func TestInjectHandlers(t *testing.T) {
	loc, _ := newLocator(t)
	target := tickMethod()
	require.NoError(t, InjectInstructionsWithHandlers(loc, func(r *Request) {
		r.Target(target).Of(HookRef{"a/Hooks", "guarded"}).Before(target.Code.Last())
	}))
	require.Len(t, target.Handlers, 1)
	h := target.Handlers[0]
	assert.Equal(t, "java/lang/Exception", h.Type)
	for _, lbl := range []*ir.Instruction{h.Start, h.End, h.Handler} {
		assert.True(t, target.Code.Contains(lbl))
	}
	// the handler's own local moved above the target's
	for _, ins := range target.Code.Instructions() {
		if ins.Op == ops.ASTORE {
			assert.GreaterOrEqual(t, int(ins.Slot), 2)
		}
	}

	plain := tickMethod()
	require.NoError(t, InjectInstructions(loc, func(r *Request) {
		r.Target(plain).Of(HookRef{"a/Hooks", "guarded"})
	}))
	assert.Empty(t, plain.Handlers)

	copied := tickMethod()
	req := NewRequest(loc).Target(copied).Of(HookRef{"a/Hooks", "guarded"})
	require.NoError(t, req.Finalize())
	require.NoError(t, req.Inject())
	out, outHandlers := req.Result()
	require.Len(t, outHandlers, 1)
	assert.True(t, out.Contains(outHandlers[0].Start))
	assert.False(t, copied.Code.Contains(outHandlers[0].Start))

	code, handlers, err := InstructionsWithHandlers(loc, func(r *Request) {
		r.Target(tickMethod()).Of(HookRef{"a/Hooks", "guarded"})
	})
	require.NoError(t, err)
	require.Len(t, handlers, 1)
	assert.True(t, code.Contains(handlers[0].Handler))
}

func TestInjectedClassEncodes(t *testing.T) {
	loc, _ := newLocator(t)
	class := classfile.NewClass("a/Game", "java/lang/Object", jvm.ACC_PUBLIC)
	target := class.AddMethod(tickMethod())
	require.NoError(t, InjectInstructionsWithHandlers(loc, func(r *Request) {
		r.Target(target).Of(HookRef{"a/Hooks", "guarded"}).Before(target.Code.Last())
	}))

	data, err := class.Encode()
	require.NoError(t, err)
	back, err := classfile.Parse(data)
	require.NoError(t, err)
	tick := back.Method("tick")
	assert.Equal(t, target.Code.Dump(), tick.Code.Dump())
	require.Len(t, tick.Handlers, 1)
	assert.Equal(t, "java/lang/Exception", tick.Handlers[0].Type)
}

func TestMethodInstructions(t *testing.T) {
	loc, _ := newLocator(t)
	code, err := MethodInstructions(loc, HookRef{"a/Hooks", "bump"}, true, 10, 4)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"IINC 4 1",
		"ILOAD 4",
		"INVOKESTATIC a/Logger.log (I)V",
		"GOTO L0",
		"L0:",
	}, code.Dump())

	code, err = MethodInstructionsWithNewVars(loc, HookRef{"a/Hooks", "log"}, false, 6,
		ir.NewList(ir.NewVar(ops.ALOAD, 0), ir.NewMember(ops.GETFIELD, "a/Game", "score", "I", false)))
	require.NoError(t, err)
	assert.Equal(t, []string{
		"ALOAD 0",
		"GETFIELD a/Game.score I",
		"ISTORE 7",
		"ILOAD 7",
		"INVOKESTATIC a/Logger.log (I)V",
		"RETURN",
	}, code.Dump())

	_, err = MethodInstructionsWithNewVars(loc, HookRef{"a/Hooks", "log"}, false, 6)
	var arity *ParameterArityError
	require.ErrorAs(t, err, &arity)
	assert.Equal(t, "a/Hooks.log", arity.Hook)
}
