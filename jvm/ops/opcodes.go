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

const (
	NOP = 0x00
	ACONST_NULL = 0x01
	ICONST_M1 = 0x02
	ICONST_0 = 0x03
	ICONST_1 = 0x04
	ICONST_2 = 0x05
	ICONST_3 = 0x06
	ICONST_4 = 0x07
	ICONST_5 = 0x08
	LCONST_0 = 0x09
	LCONST_1 = 0x0a
	FCONST_0 = 0x0b
	FCONST_1 = 0x0c
	FCONST_2 = 0x0d
	DCONST_0 = 0x0e
	DCONST_1 = 0x0f
	BIPUSH = 0x10
	SIPUSH = 0x11
	LDC = 0x12
	LDC_W = 0x13
	LDC2_W = 0x14
	ILOAD = 0x15
	LLOAD = 0x16
	FLOAD = 0x17
	DLOAD = 0x18
	ALOAD = 0x19
	ILOAD_0 = 0x1a
	ILOAD_1 = 0x1b
	ILOAD_2 = 0x1c
	ILOAD_3 = 0x1d
	LLOAD_0 = 0x1e
	LLOAD_1 = 0x1f
	LLOAD_2 = 0x20
	LLOAD_3 = 0x21
	FLOAD_0 = 0x22
	FLOAD_1 = 0x23
	FLOAD_2 = 0x24
	FLOAD_3 = 0x25
	DLOAD_0 = 0x26
	DLOAD_1 = 0x27
	DLOAD_2 = 0x28
	DLOAD_3 = 0x29
	ALOAD_0 = 0x2a
	ALOAD_1 = 0x2b
	ALOAD_2 = 0x2c
	ALOAD_3 = 0x2d
	IALOAD = 0x2e
	LALOAD = 0x2f
	FALOAD = 0x30
	DALOAD = 0x31
	AALOAD = 0x32
	BALOAD = 0x33
	CALOAD = 0x34
	SALOAD = 0x35
	ISTORE = 0x36
	LSTORE = 0x37
	FSTORE = 0x38
	DSTORE = 0x39
	ASTORE = 0x3a
	ISTORE_0 = 0x3b
	ISTORE_1 = 0x3c
	ISTORE_2 = 0x3d
	ISTORE_3 = 0x3e
	LSTORE_0 = 0x3f
	LSTORE_1 = 0x40
	LSTORE_2 = 0x41
	LSTORE_3 = 0x42
	FSTORE_0 = 0x43
	FSTORE_1 = 0x44
	FSTORE_2 = 0x45
	FSTORE_3 = 0x46
	DSTORE_0 = 0x47
	DSTORE_1 = 0x48
	DSTORE_2 = 0x49
	DSTORE_3 = 0x4a
	ASTORE_0 = 0x4b
	ASTORE_1 = 0x4c
	ASTORE_2 = 0x4d
	ASTORE_3 = 0x4e
	IASTORE = 0x4f
	LASTORE = 0x50
	FASTORE = 0x51
	DASTORE = 0x52
	AASTORE = 0x53
	BASTORE = 0x54
	CASTORE = 0x55
	SASTORE = 0x56
	POP = 0x57
	POP2 = 0x58
	DUP = 0x59
	DUP_X1 = 0x5a
	DUP_X2 = 0x5b
	DUP2 = 0x5c
	DUP2_X1 = 0x5d
	DUP2_X2 = 0x5e
	SWAP = 0x5f
	IADD = 0x60
	LADD = 0x61
	FADD = 0x62
	DADD = 0x63
	ISUB = 0x64
	LSUB = 0x65
	FSUB = 0x66
	DSUB = 0x67
	IMUL = 0x68
	LMUL = 0x69
	FMUL = 0x6a
	DMUL = 0x6b
	IDIV = 0x6c
	LDIV = 0x6d
	FDIV = 0x6e
	DDIV = 0x6f
	IREM = 0x70
	LREM = 0x71
	FREM = 0x72
	DREM = 0x73
	INEG = 0x74
	LNEG = 0x75
	FNEG = 0x76
	DNEG = 0x77
	ISHL = 0x78
	LSHL = 0x79
	ISHR = 0x7a
	LSHR = 0x7b
	IUSHR = 0x7c
	LUSHR = 0x7d
	IAND = 0x7e
	LAND = 0x7f
	IOR = 0x80
	LOR = 0x81
	IXOR = 0x82
	LXOR = 0x83
	IINC = 0x84
	I2L = 0x85
	I2F = 0x86
	I2D = 0x87
	L2I = 0x88
	L2F = 0x89
	L2D = 0x8a
	F2I = 0x8b
	F2L = 0x8c
	F2D = 0x8d
	D2I = 0x8e
	D2L = 0x8f
	D2F = 0x90
	I2B = 0x91
	I2C = 0x92
	I2S = 0x93
	LCMP = 0x94
	FCMPL = 0x95
	FCMPG = 0x96
	DCMPL = 0x97
	DCMPG = 0x98
	IFEQ = 0x99
	IFNE = 0x9a
	IFLT = 0x9b
	IFGE = 0x9c
	IFGT = 0x9d
	IFLE = 0x9e
	IF_ICMPEQ = 0x9f
	IF_ICMPNE = 0xa0
	IF_ICMPLT = 0xa1
	IF_ICMPGE = 0xa2
	IF_ICMPGT = 0xa3
	IF_ICMPLE = 0xa4
	IF_ACMPEQ = 0xa5
	IF_ACMPNE = 0xa6
	GOTO = 0xa7
	JSR = 0xa8
	RET = 0xa9
	TABLESWITCH = 0xaa
	LOOKUPSWITCH = 0xab
	IRETURN = 0xac
	LRETURN = 0xad
	FRETURN = 0xae
	DRETURN = 0xaf
	ARETURN = 0xb0
	RETURN = 0xb1
	GETSTATIC = 0xb2
	PUTSTATIC = 0xb3
	GETFIELD = 0xb4
	PUTFIELD = 0xb5
	INVOKEVIRTUAL = 0xb6
	INVOKESPECIAL = 0xb7
	INVOKESTATIC = 0xb8
	INVOKEINTERFACE = 0xb9
	INVOKEDYNAMIC = 0xba
	NEW = 0xbb
	NEWARRAY = 0xbc
	ANEWARRAY = 0xbd
	ARRAYLENGTH = 0xbe
	ATHROW = 0xbf
	CHECKCAST = 0xc0
	INSTANCEOF = 0xc1
	MONITORENTER = 0xc2
	MONITOREXIT = 0xc3
	WIDE = 0xc4
	MULTIANEWARRAY = 0xc5
	IFNULL = 0xc6
	IFNONNULL = 0xc7
	GOTO_W = 0xc8
	JSR_W = 0xc9
)

// Info describes the encoded shape of an opcode. Len is the full length of
// the instruction including the opcode byte, or 0 for the variable length
// opcodes (switches and wide).
type Info struct {
	Name string
	Len  int
}

var Table = [256]Info{
	NOP: {"nop", 1},
	ACONST_NULL: {"aconst_null", 1},
	ICONST_M1: {"iconst_m1", 1},
	ICONST_0: {"iconst_0", 1},
	ICONST_1: {"iconst_1", 1},
	ICONST_2: {"iconst_2", 1},
	ICONST_3: {"iconst_3", 1},
	ICONST_4: {"iconst_4", 1},
	ICONST_5: {"iconst_5", 1},
	LCONST_0: {"lconst_0", 1},
	LCONST_1: {"lconst_1", 1},
	FCONST_0: {"fconst_0", 1},
	FCONST_1: {"fconst_1", 1},
	FCONST_2: {"fconst_2", 1},
	DCONST_0: {"dconst_0", 1},
	DCONST_1: {"dconst_1", 1},
	BIPUSH: {"bipush", 2},
	SIPUSH: {"sipush", 3},
	LDC: {"ldc", 2},
	LDC_W: {"ldc_w", 3},
	LDC2_W: {"ldc2_w", 3},
	ILOAD: {"iload", 2},
	LLOAD: {"lload", 2},
	FLOAD: {"fload", 2},
	DLOAD: {"dload", 2},
	ALOAD: {"aload", 2},
	ILOAD_0: {"iload_0", 1},
	ILOAD_1: {"iload_1", 1},
	ILOAD_2: {"iload_2", 1},
	ILOAD_3: {"iload_3", 1},
	LLOAD_0: {"lload_0", 1},
	LLOAD_1: {"lload_1", 1},
	LLOAD_2: {"lload_2", 1},
	LLOAD_3: {"lload_3", 1},
	FLOAD_0: {"fload_0", 1},
	FLOAD_1: {"fload_1", 1},
	FLOAD_2: {"fload_2", 1},
	FLOAD_3: {"fload_3", 1},
	DLOAD_0: {"dload_0", 1},
	DLOAD_1: {"dload_1", 1},
	DLOAD_2: {"dload_2", 1},
	DLOAD_3: {"dload_3", 1},
	ALOAD_0: {"aload_0", 1},
	ALOAD_1: {"aload_1", 1},
	ALOAD_2: {"aload_2", 1},
	ALOAD_3: {"aload_3", 1},
	IALOAD: {"iaload", 1},
	LALOAD: {"laload", 1},
	FALOAD: {"faload", 1},
	DALOAD: {"daload", 1},
	AALOAD: {"aaload", 1},
	BALOAD: {"baload", 1},
	CALOAD: {"caload", 1},
	SALOAD: {"saload", 1},
	ISTORE: {"istore", 2},
	LSTORE: {"lstore", 2},
	FSTORE: {"fstore", 2},
	DSTORE: {"dstore", 2},
	ASTORE: {"astore", 2},
	ISTORE_0: {"istore_0", 1},
	ISTORE_1: {"istore_1", 1},
	ISTORE_2: {"istore_2", 1},
	ISTORE_3: {"istore_3", 1},
	LSTORE_0: {"lstore_0", 1},
	LSTORE_1: {"lstore_1", 1},
	LSTORE_2: {"lstore_2", 1},
	LSTORE_3: {"lstore_3", 1},
	FSTORE_0: {"fstore_0", 1},
	FSTORE_1: {"fstore_1", 1},
	FSTORE_2: {"fstore_2", 1},
	FSTORE_3: {"fstore_3", 1},
	DSTORE_0: {"dstore_0", 1},
	DSTORE_1: {"dstore_1", 1},
	DSTORE_2: {"dstore_2", 1},
	DSTORE_3: {"dstore_3", 1},
	ASTORE_0: {"astore_0", 1},
	ASTORE_1: {"astore_1", 1},
	ASTORE_2: {"astore_2", 1},
	ASTORE_3: {"astore_3", 1},
	IASTORE: {"iastore", 1},
	LASTORE: {"lastore", 1},
	FASTORE: {"fastore", 1},
	DASTORE: {"dastore", 1},
	AASTORE: {"aastore", 1},
	BASTORE: {"bastore", 1},
	CASTORE: {"castore", 1},
	SASTORE: {"sastore", 1},
	POP: {"pop", 1},
	POP2: {"pop2", 1},
	DUP: {"dup", 1},
	DUP_X1: {"dup_x1", 1},
	DUP_X2: {"dup_x2", 1},
	DUP2: {"dup2", 1},
	DUP2_X1: {"dup2_x1", 1},
	DUP2_X2: {"dup2_x2", 1},
	SWAP: {"swap", 1},
	IADD: {"iadd", 1},
	LADD: {"ladd", 1},
	FADD: {"fadd", 1},
	DADD: {"dadd", 1},
	ISUB: {"isub", 1},
	LSUB: {"lsub", 1},
	FSUB: {"fsub", 1},
	DSUB: {"dsub", 1},
	IMUL: {"imul", 1},
	LMUL: {"lmul", 1},
	FMUL: {"fmul", 1},
	DMUL: {"dmul", 1},
	IDIV: {"idiv", 1},
	LDIV: {"ldiv", 1},
	FDIV: {"fdiv", 1},
	DDIV: {"ddiv", 1},
	IREM: {"irem", 1},
	LREM: {"lrem", 1},
	FREM: {"frem", 1},
	DREM: {"drem", 1},
	INEG: {"ineg", 1},
	LNEG: {"lneg", 1},
	FNEG: {"fneg", 1},
	DNEG: {"dneg", 1},
	ISHL: {"ishl", 1},
	LSHL: {"lshl", 1},
	ISHR: {"ishr", 1},
	LSHR: {"lshr", 1},
	IUSHR: {"iushr", 1},
	LUSHR: {"lushr", 1},
	IAND: {"iand", 1},
	LAND: {"land", 1},
	IOR: {"ior", 1},
	LOR: {"lor", 1},
	IXOR: {"ixor", 1},
	LXOR: {"lxor", 1},
	IINC: {"iinc", 3},
	I2L: {"i2l", 1},
	I2F: {"i2f", 1},
	I2D: {"i2d", 1},
	L2I: {"l2i", 1},
	L2F: {"l2f", 1},
	L2D: {"l2d", 1},
	F2I: {"f2i", 1},
	F2L: {"f2l", 1},
	F2D: {"f2d", 1},
	D2I: {"d2i", 1},
	D2L: {"d2l", 1},
	D2F: {"d2f", 1},
	I2B: {"i2b", 1},
	I2C: {"i2c", 1},
	I2S: {"i2s", 1},
	LCMP: {"lcmp", 1},
	FCMPL: {"fcmpl", 1},
	FCMPG: {"fcmpg", 1},
	DCMPL: {"dcmpl", 1},
	DCMPG: {"dcmpg", 1},
	IFEQ: {"ifeq", 3},
	IFNE: {"ifne", 3},
	IFLT: {"iflt", 3},
	IFGE: {"ifge", 3},
	IFGT: {"ifgt", 3},
	IFLE: {"ifle", 3},
	IF_ICMPEQ: {"if_icmpeq", 3},
	IF_ICMPNE: {"if_icmpne", 3},
	IF_ICMPLT: {"if_icmplt", 3},
	IF_ICMPGE: {"if_icmpge", 3},
	IF_ICMPGT: {"if_icmpgt", 3},
	IF_ICMPLE: {"if_icmple", 3},
	IF_ACMPEQ: {"if_acmpeq", 3},
	IF_ACMPNE: {"if_acmpne", 3},
	GOTO: {"goto", 3},
	JSR: {"jsr", 3},
	RET: {"ret", 2},
	TABLESWITCH: {"tableswitch", 0},
	LOOKUPSWITCH: {"lookupswitch", 0},
	IRETURN: {"ireturn", 1},
	LRETURN: {"lreturn", 1},
	FRETURN: {"freturn", 1},
	DRETURN: {"dreturn", 1},
	ARETURN: {"areturn", 1},
	RETURN: {"return", 1},
	GETSTATIC: {"getstatic", 3},
	PUTSTATIC: {"putstatic", 3},
	GETFIELD: {"getfield", 3},
	PUTFIELD: {"putfield", 3},
	INVOKEVIRTUAL: {"invokevirtual", 3},
	INVOKESPECIAL: {"invokespecial", 3},
	INVOKESTATIC: {"invokestatic", 3},
	INVOKEINTERFACE: {"invokeinterface", 5},
	INVOKEDYNAMIC: {"invokedynamic", 5},
	NEW: {"new", 3},
	NEWARRAY: {"newarray", 2},
	ANEWARRAY: {"anewarray", 3},
	ARRAYLENGTH: {"arraylength", 1},
	ATHROW: {"athrow", 1},
	CHECKCAST: {"checkcast", 3},
	INSTANCEOF: {"instanceof", 3},
	MONITORENTER: {"monitorenter", 1},
	MONITOREXIT: {"monitorexit", 1},
	WIDE: {"wide", 0},
	MULTIANEWARRAY: {"multianewarray", 4},
	IFNULL: {"ifnull", 3},
	IFNONNULL: {"ifnonnull", 3},
	GOTO_W: {"goto_w", 5},
	JSR_W: {"jsr_w", 5},
}
