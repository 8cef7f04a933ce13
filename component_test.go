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
	"go.uber.org/multierr"
)

type speaker interface{ Speak() string }
type speakerImpl struct{}

func (speakerImpl) Speak() string { return "hi" }

func newSpeakerImpl() *speakerImpl { return &speakerImpl{} }

type speakerImpl2 struct{}

func (speakerImpl2) Speak() string { return "yo" }

func newSpeakerImpl2() *speakerImpl2 { return &speakerImpl2{} }

func TestSealEmptyComponent(t *testing.T) {
	c, err := CreateComponent().Seal()
	require.NoError(t, err)
	assert.Empty(t, c.RequiredTypes())
}

func TestSealDetectsDuplicateBinding(t *testing.T) {
	p := CreateComponent()
	RegisterConstructor(p, newSpeakerImpl)
	RegisterProvider(p, newSpeakerImpl)

	_, err := p.Seal()
	require.Error(t, err)

	var found bool
	for _, e := range multierr.Errors(err) {
		if _, ok := e.(*DuplicateBindingError); ok {
			found = true
		}
	}
	assert.True(t, found)
}

func TestSealToleratesRepeatedIdenticalBindTo(t *testing.T) {
	p := CreateComponent()
	Bind[speaker, *speakerImpl](p)
	Bind[speaker, *speakerImpl](p)
	RegisterConstructor(p, newSpeakerImpl)

	_, err := p.Seal()
	require.NoError(t, err)
}

func TestSealRejectsConflictingBindTo(t *testing.T) {
	p := CreateComponent()
	Bind[speaker, *speakerImpl](p)
	Bind[speaker, *speakerImpl2](p)
	RegisterConstructor(p, newSpeakerImpl)
	RegisterConstructor(p, newSpeakerImpl2)

	_, err := p.Seal()
	require.Error(t, err)

	var found bool
	for _, e := range multierr.Errors(err) {
		if _, ok := e.(*DuplicateBindingError); ok {
			found = true
		}
	}
	assert.True(t, found)
}

func TestSealDetectsUnsatisfiedDependency(t *testing.T) {
	p := CreateComponent()
	RegisterConstructor(p, newEnglishGreeter) // needs string, never provided

	_, err := p.Seal()
	require.Error(t, err)

	var found bool
	for _, e := range multierr.Errors(err) {
		if _, ok := e.(*UnsatisfiedDependencyError); ok {
			found = true
		}
	}
	assert.True(t, found)
}

func TestSealAllowsDeclaredRequirement(t *testing.T) {
	p := CreateComponent()
	RegisterConstructor(p, newEnglishGreeter)

	c, err := p.Seal(typeIdOf[string]())
	require.NoError(t, err)
	assert.Contains(t, c.RequiredTypes(), typeIdOf[string]())
}

type cycleA struct{ b *cycleB }
type cycleB struct{ a *cycleA }

func newCycleA(b *cycleB) *cycleA { return &cycleA{b: b} }
func newCycleB(a *cycleA) *cycleB { return &cycleB{a: a} }

func TestSealDetectsCycle(t *testing.T) {
	p := CreateComponent()
	RegisterConstructor(p, newCycleA)
	RegisterConstructor(p, newCycleB)

	_, err := p.Seal()
	require.Error(t, err)
	assert.IsType(t, &CyclicDependencyError{}, err)
}

func TestSealDetectsBindToSelfLoop(t *testing.T) {
	p := CreateComponent()
	Bind[speaker, speaker](p)

	_, err := p.Seal()
	require.Error(t, err)
}

func TestBindToAliasChainCollapses(t *testing.T) {
	type base interface{ Speak() string }
	p := CreateComponent()
	Bind[base, speaker](p)
	Bind[speaker, *speakerImpl](p)
	RegisterConstructor(p, newSpeakerImpl)

	c, err := p.Seal()
	require.NoError(t, err)
	assert.True(t, c.Provided(typeIdOf[base]()))
}

func TestInstallAssociativity(t *testing.T) {
	leaf := CreateComponent()
	BindInstance(leaf, "hello")
	leafSealed, err := leaf.Seal()
	require.NoError(t, err)

	mid := CreateComponent()
	Install(mid, leafSealed)
	RegisterConstructor(mid, newEnglishGreeter)
	midSealed, err := mid.Seal()
	require.NoError(t, err)

	top := CreateComponent()
	Install(top, midSealed)
	Bind[greeter, *englishGreeter](top)
	topSealed, err := top.Seal()
	require.NoError(t, err)

	assert.True(t, topSealed.Provided(typeIdOf[greeter]()))
	assert.True(t, topSealed.Provided(typeIdOf[string]()))
	assert.Empty(t, topSealed.RequiredTypes())
}

func TestMultibindingsPreserveDeclarationOrder(t *testing.T) {
	p := CreateComponent()
	AddMultibindingInstance(p, "first")
	AddMultibindingInstance(p, "second")

	c, err := p.Seal()
	require.NoError(t, err)

	list := c.multibindings[typeIdOf[string]()]
	require.Len(t, list, 2)
	assert.Equal(t, 0, list[0].SourceIndex)
	assert.Equal(t, 1, list[1].SourceIndex)
}
