// Copyright (c) 2017 Uber Technologies, Inc.
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

package fruit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type greeterIface interface{ Greet() string }
type prodTag struct{}
type devTag struct{}

func TestTypeIdOfIsInjective(t *testing.T) {
	require.NotEqual(t, typeIdOf[int](), typeIdOf[string]())
	require.NotEqual(t, typeIdOf[greeterIface](), typeIdOf[int]())
}

func TestTypeIdOfInterfaceIsNotDynamicType(t *testing.T) {
	// reflect.TypeOf((*greeterIface)(nil)) would report a nil *greeterIface,
	// not the interface; typeIdOf must avoid that trap.
	ifaceID := typeIdOf[greeterIface]()
	assert.Equal(t, "fruit.greeterIface", ifaceID.String())
}

func TestAnnotatedTypeIdOfDistinguishesTags(t *testing.T) {
	prod := annotatedTypeIdOf[prodTag, string]()
	dev := annotatedTypeIdOf[devTag, string]()
	plain := typeIdOf[string]()

	assert.NotEqual(t, prod, dev)
	assert.NotEqual(t, prod, plain)
	assert.Equal(t, prod, annotatedTypeIdOf[prodTag, string]())
}

func TestTypeIdStringAndValid(t *testing.T) {
	var zero TypeId
	assert.False(t, zero.IsValid())
	assert.Equal(t, "<invalid TypeId>", zero.String())

	id := typeIdOf[int]()
	assert.True(t, id.IsValid())
	assert.Equal(t, "int", id.String())

	tagged := annotatedTypeIdOf[prodTag, int]()
	assert.Contains(t, tagged.String(), "#")
	assert.Contains(t, tagged.String(), "prodTag")
}
