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
package errors

import "fmt"

// Raised when a value does not fit the limits of the class file format, e.g.
// a local slot above 65535 or a constant pool with more than 65535 entries.
type ClassfileLimitExceeded struct {
	What string
}

func (self *ClassfileLimitExceeded) Error() string {
	if self.What == "" {
		return "classfile limit exceeded"
	}
	return "classfile limit exceeded: " + self.What
}

type Truncated struct {
	Pos, Want, Len int
}

func (self *Truncated) Error() string {
	return fmt.Sprintf("truncated class data: need %d bytes at offset %d, have %d", self.Want, self.Pos, self.Len)
}

type Malformed struct {
	Reason string
}

func (self *Malformed) Error() string {
	return "malformed class file: " + self.Reason
}

func Malformedf(format string, args ...interface{}) *Malformed {
	return &Malformed{fmt.Sprintf(format, args...)}
}
