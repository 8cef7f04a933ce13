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
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestInjectorSimpleChain(t *testing.T) {
	p := CreateComponent()
	BindInstance(p, "hi")
	RegisterConstructor(p, newEnglishGreeter)
	Bind[greeter, *englishGreeter](p)

	c, err := p.Seal()
	require.NoError(t, err)
	inj, err := NewInjector(c)
	require.NoError(t, err)
	defer inj.Close()

	g, err := Get[greeter](inj)
	require.NoError(t, err)
	assert.Equal(t, "hi, world", g.Greet())
}

func TestInjectorMemoizesAcrossAliases(t *testing.T) {
	p := CreateComponent()
	BindInstance(p, "hi")
	RegisterConstructor(p, newEnglishGreeter)
	Bind[greeter, *englishGreeter](p)

	c, err := p.Seal()
	require.NoError(t, err)
	inj, err := NewInjector(c)
	require.NoError(t, err)
	defer inj.Close()

	concrete, err := Get[*englishGreeter](inj)
	require.NoError(t, err)
	iface, err := Get[greeter](inj)
	require.NoError(t, err)

	assert.Same(t, concrete, iface.(*englishGreeter))
}

func TestInjectorNewInjectorRejectsUnsatisfiedRequirements(t *testing.T) {
	p := CreateComponent()
	RegisterConstructor(p, newEnglishGreeter)
	c, err := p.Seal(typeIdOf[string]())
	require.NoError(t, err)

	_, err = NewInjector(c)
	require.Error(t, err)
	assert.IsType(t, &RequirementsNotSatisfiedError{}, err)
}

func TestInjectorAssistedFactory(t *testing.T) {
	p := CreateComponent()
	RegisterFactory(p, newEnglishGreeter, 0)

	c, err := p.Seal()
	require.NoError(t, err)
	inj, err := NewInjector(c)
	require.NoError(t, err)
	defer inj.Close()

	make_, err := Get[func(string) *englishGreeter](inj)
	require.NoError(t, err)

	g := make_("hola")
	assert.Equal(t, "hola, world", g.Greet())
}

func TestInjectorAssistedFactoryMixesInjectedAndAssisted(t *testing.T) {
	type loudGreeter struct {
		volume int
		prefix string
	}
	newLoudGreeter := func(volume int, prefix string) *loudGreeter {
		return &loudGreeter{volume: volume, prefix: prefix}
	}

	p := CreateComponent()
	BindInstance(p, 11)
	RegisterFactory(p, newLoudGreeter, 1) // index 1 (prefix) is assisted

	c, err := p.Seal()
	require.NoError(t, err)
	inj, err := NewInjector(c)
	require.NoError(t, err)
	defer inj.Close()

	make_, err := Get[func(string) *loudGreeter](inj)
	require.NoError(t, err)

	g := make_("hey")
	assert.Equal(t, 11, g.volume)
	assert.Equal(t, "hey", g.prefix)
}

func TestInjectorMultibindings(t *testing.T) {
	p := CreateComponent()
	AddMultibindingInstance(p, "first")
	AddMultibindingInstance(p, "second")

	c, err := p.Seal()
	require.NoError(t, err)
	inj, err := NewInjector(c)
	require.NoError(t, err)
	defer inj.Close()

	vals, err := GetMultibindings[string](inj)
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second"}, vals)
}

func TestInjectorEmptyMultibindingSetIsNotAnError(t *testing.T) {
	p := CreateComponent()
	c, err := p.Seal()
	require.NoError(t, err)
	inj, err := NewInjector(c)
	require.NoError(t, err)
	defer inj.Close()

	vals, err := GetMultibindings[string](inj)
	require.NoError(t, err)
	assert.Empty(t, vals)
}

func TestInjectorExternalInstanceIsNeverConstructedOrTornDown(t *testing.T) {
	closed := false
	owned := &closerWidget{closedFlag: &closed}

	p := CreateComponent()
	BindInstance[*closerWidget](p, owned)

	c, err := p.Seal()
	require.NoError(t, err)
	inj, err := NewInjector(c)
	require.NoError(t, err)

	got, err := Get[*closerWidget](inj)
	require.NoError(t, err)
	assert.Same(t, owned, got)

	require.NoError(t, inj.Close())
	assert.False(t, closed, "an externally-owned instance must not be torn down")
}

type closerWidget struct{ closedFlag *bool }

func (c *closerWidget) Close() error {
	*c.closedFlag = true
	return nil
}

type orderedCloser struct {
	name  string
	order *[]string
}

func (c *orderedCloser) Close() error {
	*c.order = append(*c.order, c.name)
	return nil
}

type first struct{ *orderedCloser }
type second struct{ *orderedCloser }

func TestInjectorTeardownRunsInReverseConstructionOrder(t *testing.T) {
	var closeOrder []string

	p := CreateComponent()
	RegisterConstructor(p, func() *first {
		return &first{&orderedCloser{name: "first", order: &closeOrder}}
	})
	RegisterConstructor(p, func(f *first) *second {
		return &second{&orderedCloser{name: "second", order: &closeOrder}}
	})

	c, err := p.Seal()
	require.NoError(t, err)
	inj, err := NewInjector(c)
	require.NoError(t, err)

	_, err = Get[*second](inj)
	require.NoError(t, err)

	require.NoError(t, inj.Close())
	assert.Equal(t, []string{"second", "first"}, closeOrder)
}

func TestInjectorConstructorErrorPropagates(t *testing.T) {
	wantErr := errors.New("boom")
	p := CreateComponent()
	RegisterConstructor(p, func() (*widget, error) { return nil, wantErr })

	c, err := p.Seal()
	require.NoError(t, err)
	inj, err := NewInjector(c)
	require.NoError(t, err)
	defer inj.Close()

	_, err = Get[*widget](inj)
	require.Error(t, err)
	assert.ErrorIs(t, err, wantErr)
}

func TestInjectorNilProviderIsRejected(t *testing.T) {
	p := CreateComponent()
	RegisterConstructor(p, func() *widget { return nil })

	c, err := p.Seal()
	require.NoError(t, err)
	inj, err := NewInjector(c)
	require.NoError(t, err)
	defer inj.Close()

	_, err = Get[*widget](inj)
	require.Error(t, err)
	assert.IsType(t, &ProviderReturnedNilError{}, err)
}
