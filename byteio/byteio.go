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
package byteio

import (
	"bytes"
	"encoding/binary"

	"hookinject/jvm/errors"
)

// Reader walks big-endian class file data. Reads past the end panic with
// *errors.Truncated; decoders recover it at their entry point.
type Reader struct {
	Data []byte
	Pos  uint32
}

func NewReader(data []byte) *Reader {
	return &Reader{Data: data}
}

func (self *Reader) take(n uint32) []byte {
	if uint64(self.Pos)+uint64(n) > uint64(len(self.Data)) {
		panic(&errors.Truncated{Pos: int(self.Pos), Want: int(n), Len: len(self.Data)})
	}
	self.Pos += n
	return self.Data[self.Pos-n : self.Pos]
}

func (self *Reader) U8() uint8 {
	return self.take(1)[0]
}

func (self *Reader) S8() int8 { return int8(self.U8()) }

func (self *Reader) U16() uint16 {
	return binary.BigEndian.Uint16(self.take(2))
}

func (self *Reader) S16() int16 { return int16(self.U16()) }

func (self *Reader) U32() uint32 {
	return binary.BigEndian.Uint32(self.take(4))
}

func (self *Reader) S32() int32 { return int32(self.U32()) }

func (self *Reader) U64() uint64 {
	return binary.BigEndian.Uint64(self.take(8))
}

// Bytes returns the next n bytes without copying.
func (self *Reader) Bytes(n uint32) []byte {
	return self.take(n)
}

func (self *Reader) Skip(n uint32) {
	self.take(n)
}

func (self *Reader) Remaining() int {
	return len(self.Data) - int(self.Pos)
}

// Sub returns a reader over the next n bytes and advances past them.
func (self *Reader) Sub(n uint32) *Reader {
	return NewReader(self.take(n))
}

type Writer struct {
	bytes.Buffer
	Endianess binary.ByteOrder
}

func (self *Writer) write(data interface{}) {
	if err := binary.Write(self, self.Endianess, data); err != nil {
		panic(err)
	}
}

func (self *Writer) U8(data uint8) {
	self.write(&data)
}
func (self *Writer) S8(data int8) { self.U8(uint8(data)) }
func (self *Writer) U16(data uint16) {
	self.write(&data)
}
func (self *Writer) S16(data int16) { self.U16(uint16(data)) }
func (self *Writer) U32(data uint32) {
	self.write(&data)
}
func (self *Writer) S32(data int32) { self.U32(uint32(data)) }
func (self *Writer) U64(data uint64) {
	self.write(&data)
}

func (self *Writer) Append(other *Writer) {
	if _, err := self.Write(other.Bytes()); err != nil {
		panic(err)
	}
}

func NewWriter() *Writer {
	return &Writer{Endianess: binary.BigEndian}
}

// Packing helpers for fixed instruction shapes
func Bytes(x ...byte) string   { return string(x) }
func B(x byte) string          { return Bytes(x) }
func BB(x byte, y byte) string { return Bytes(x, y) }
func BH(x byte, y uint16) string {
	w := NewWriter()
	w.U8(x)
	w.U16(y)
	return w.String()
}
func Bh(x byte, y int16) string { return BH(x, uint16(y)) }
func Bi(x byte, y int32) string {
	w := NewWriter()
	w.U8(x)
	w.U32(uint32(y))
	return w.String()
}
func BhBi(x byte, y int16, z byte, w int32) string { return Bh(x, y) + Bi(z, w) }

func BBH(x, y byte, z uint16) string {
	w := NewWriter()
	w.U8(x)
	w.U8(y)
	w.U16(z)
	return w.String()
}
