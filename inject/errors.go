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
)

// ConfigurationError reports a splice that was finalized without a required
// piece of configuration.
type ConfigurationError struct {
	Missing string
}

func (self *ConfigurationError) Error() string {
	return "splice has no " + self.Missing
}

type NotFoundError struct {
	Owner, Name string
}

func (self *NotFoundError) Error() string {
	return fmt.Sprintf("method %s.%s not found", self.Owner, self.Name)
}

// ResourceError wraps a failure to load or decode the class declaring a
// hook.
type ResourceError struct {
	Owner string
	Err   error
}

func (self *ResourceError) Error() string {
	return fmt.Sprintf("loading %s: %v", self.Owner, self.Err)
}

func (self *ResourceError) Unwrap() error { return self.Err }

type ParameterArityError struct {
	Hook      string
	Want, Got int
}

func (self *ParameterArityError) Error() string {
	return fmt.Sprintf("hook %s declares %d parameters, %d supplied", self.Hook, self.Want, self.Got)
}

type InvalidParameterSourceError struct {
	Index int
}

func (self *InvalidParameterSourceError) Error() string {
	return fmt.Sprintf("parameter %d has no valid source", self.Index)
}

// StateError reports an operation invoked in the wrong lifecycle state.
type StateError struct {
	Op    string
	State State
}

func (self *StateError) Error() string {
	return fmt.Sprintf("cannot %s a splice that is %s", self.Op, self.State)
}
