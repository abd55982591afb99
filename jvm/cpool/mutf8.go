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
package cpool

import (
	"strings"
	"unicode/utf8"
)

// Class files store strings in "modified" UTF-8: NUL is encoded in two bytes
// and supplementary characters are written as surrogate pairs.

func decode(b []byte) (out []rune) {
	// decode arbitrary utf8 codepoints, tolerating surrogate pairs, nonstandard encodings, etc.
	ind := 0
	for ind < len(b) {
		x := b[ind]
		ind++
		if x < 128 {
			out = append(out, rune(x))
		} else {
			// figure out how many bytes
			extra := 0
			for i := 6; i >= 0 && (x&(1<<uint(i)) > 0); i-- {
				extra++
			}

			bits := rune(x % (1 << uint(6-extra)))
			for i := 0; i < extra && ind < len(b); i++ {
				bits = (bits << 6) ^ (rune(b[ind]) & 63)
				ind++
			}
			out = append(out, bits)
		}
	}
	return
}

func fixPairs(codes []rune) (out []rune) {
	// convert surrogate pairs to single code points
	ind := 0
	for ind < len(codes) {
		x := codes[ind]
		ind++
		if 0xD800 <= x && x < 0xDC00 && ind < len(codes) {
			high := x - 0xD800
			low := codes[ind] - 0xDC00
			ind++
			x = 0x10000 + (high << 10) + (low & 1023)
		}
		out = append(out, x)
	}
	return
}

func DecodeMUTF8(s string) string {
	if utf8.ValidString(s) && strings.IndexByte(s, 0) < 0 {
		return s
	}
	return string(fixPairs(decode([]byte(s))))
}

func encode3(out []byte, r rune) []byte {
	return append(out, byte(0xE0|(r>>12)), byte(0x80|((r>>6)&63)), byte(0x80|(r&63)))
}

func EncodeMUTF8(s string) string {
	ascii := true
	for i := 0; i < len(s); i++ {
		if s[i] == 0 || s[i] >= 128 {
			ascii = false
			break
		}
	}
	if ascii {
		return s
	}

	out := make([]byte, 0, len(s)+8)
	for _, r := range s {
		switch {
		case r == 0:
			out = append(out, 0xC0, 0x80)
		case r < 0x80:
			out = append(out, byte(r))
		case r < 0x800:
			out = append(out, byte(0xC0|(r>>6)), byte(0x80|(r&63)))
		case r < 0x10000:
			out = encode3(out, r)
		default:
			r -= 0x10000
			out = encode3(out, 0xD800+(r>>10))
			out = encode3(out, 0xDC00+(r&1023))
		}
	}
	return string(out)
}
