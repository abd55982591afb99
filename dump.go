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
	"fmt"

	"github.com/xlab/treeprint"

	"hookinject/classfile"
)

func dumpTree(class *classfile.Class, method string) string {
	tree := treeprint.New()
	title := class.Name
	if class.Super != "" {
		title += " extends " + class.Super
	}
	tree.SetValue(fmt.Sprintf("%s (version %d.%d)", title, class.Major, class.Minor))

	for _, f := range class.Fields {
		tree.AddNode(fmt.Sprintf("field %s %s", f.Name, f.Desc))
	}
	for _, m := range class.Methods {
		if method != "" && m.Name != method {
			continue
		}
		branch := tree.AddBranch(fmt.Sprintf("%s%s [access %#04x, stack %d, locals %d]",
			m.Name, m.Desc, m.Access, m.MaxStack, m.MaxLocals))
		if m.Code == nil {
			continue
		}
		names := m.Code.LabelNames()
		for _, line := range m.Code.Dump() {
			branch.AddNode(line)
		}
		for _, h := range m.Handlers {
			catch := h.Type
			if catch == "" {
				catch = "any"
			}
			branch.AddNode(fmt.Sprintf("catch %s %s-%s -> %s", catch, names[h.Start], names[h.End], names[h.Handler]))
		}
	}
	return tree.String()
}
