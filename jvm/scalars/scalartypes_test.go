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
package scalars

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromDesc(t *testing.T) {
	for desc, want := range map[string]T{
		"Z": INT, "B": INT, "S": INT, "C": INT, "I": INT,
		"F": FLOAT, "J": LONG, "D": DOUBLE, "V": INVALID,
		"Ljava/lang/String;": OBJ, "[I": OBJ, "[[J": OBJ,
	} {
		assert.Equal(t, want, FromDesc(desc), desc)
	}
	assert.Equal(t, 2, LONG.Size())
	assert.Equal(t, 2, DOUBLE.Size())
	assert.Equal(t, 1, OBJ.Size())
}

func TestSplitDesc(t *testing.T) {
	params, ret, err := SplitDesc("(IJ[Ljava/lang/Object;Ljava/lang/String;[[D)Z")
	require.NoError(t, err)
	assert.Equal(t, []string{"I", "J", "[Ljava/lang/Object;", "Ljava/lang/String;", "[[D"}, params)
	assert.Equal(t, "Z", ret)

	params, ret, err = SplitDesc("()V")
	require.NoError(t, err)
	assert.Empty(t, params)
	assert.Equal(t, "V", ret)

	for _, bad := range []string{"", "I", "(I", "(Ljava/lang/String)V", "(I)"} {
		_, _, err := SplitDesc(bad)
		assert.Error(t, err, bad)
	}
}

func TestParamSlots(t *testing.T) {
	ptypes, err := ParamTypes("(IJLjava/lang/Object;D)V")
	require.NoError(t, err)
	assert.Equal(t, []T{INT, LONG, OBJ, DOUBLE}, ptypes)

	slots, end := ParamSlots(true, ptypes)
	assert.Equal(t, []int{0, 1, 3, 4}, slots)
	assert.Equal(t, 6, end)

	slots, end = ParamSlots(false, ptypes)
	assert.Equal(t, []int{1, 2, 4, 5}, slots)
	assert.Equal(t, 7, end)

	_, end = ParamSlots(false, nil)
	assert.Equal(t, 1, end)

	ret, err := ReturnType("(I)J")
	require.NoError(t, err)
	assert.Equal(t, LONG, ret)
}
