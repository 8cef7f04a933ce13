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

// This file is the generic surface users actually call. Every function
// here does one of two things: capture a static Go type as a TypeId and
// hand it to a dynamic-kernel method on Partial or Injector (bind,
// registerConstructor, get, ...), or wrap that kernel call's error return
// into the chain-friendly Partial.fail pattern. Keeping the type-erased
// machinery in partial.go/injector.go and the generics here is the same
// split dig.go draws between its reflection-heavy graph package and its
// typed package-level In/Out helpers.
package fruit

import "github.com/pkg/errors"

// Bind declares that requests for I should be satisfied by C. I must be
// an interface and C a type implementing it (C may itself be an
// interface bound further on).
func Bind[I, C any](p *Partial) *Partial {
	iface := typeIdOf[I]()
	impl := typeIdOf[C]()
	if err := p.bind(iface, impl, reflectTypeOf[I](), false); err != nil {
		return p.fail(err)
	}
	return p
}

// AddMultibindingBind is Bind's multibinding counterpart: I's
// multibinding set gains one more contribution resolving to C.
func AddMultibindingBind[I, C any](p *Partial) *Partial {
	iface := typeIdOf[I]()
	impl := typeIdOf[C]()
	if err := p.bind(iface, impl, reflectTypeOf[I](), true); err != nil {
		return p.fail(err)
	}
	return p
}

// RegisterConstructor registers fn as the canonical way to build its
// return type. fn's parameters become Injected dependencies.
func RegisterConstructor(p *Partial, fn interface{}) *Partial {
	if err := p.registerConstructor(fn, false); err != nil {
		return p.fail(err)
	}
	return p
}

// AddMultibindingConstructor adds fn as one more contribution to its
// return type's multibinding set.
func AddMultibindingConstructor(p *Partial, fn interface{}) *Partial {
	if err := p.registerConstructor(fn, true); err != nil {
		return p.fail(err)
	}
	return p
}

// BindInstance wires a caller-owned value of type T into the graph. The
// Partial never takes ownership: value is never constructed or torn down
// by the resulting Injector.
func BindInstance[T any](p *Partial, value T) *Partial {
	target := typeIdOf[T]()
	if err := p.bindInstance(target, value, false); err != nil {
		return p.fail(err)
	}
	return p
}

// AddMultibindingInstance adds value as one more contribution to T's
// multibinding set.
func AddMultibindingInstance[T any](p *Partial, value T) *Partial {
	target := typeIdOf[T]()
	if err := p.bindInstance(target, value, true); err != nil {
		return p.fail(err)
	}
	return p
}

// BindInstanceAnnotated is BindInstance for an Annotated[Tag, T] binding:
// value is keyed by both T's identity and Tag, so it coexists with an
// unannotated (or differently-tagged) binding for the same T.
func BindInstanceAnnotated[Tag, T any](p *Partial, value T) *Partial {
	target := annotatedTypeIdOf[Tag, T]()
	if err := p.bindInstance(target, value, false); err != nil {
		return p.fail(err)
	}
	return p
}

// RegisterProvider registers fn as a stateless factory for its return
// type. Unlike RegisterConstructor, fn is expected to be a free function
// or a func literal with no captured receiver: registerProvider rejects
// bound method values.
func RegisterProvider(p *Partial, fn interface{}) *Partial {
	if err := p.registerProvider(fn, false); err != nil {
		return p.fail(err)
	}
	return p
}

// AddMultibindingProvider adds fn as one more contribution to its return
// type's multibinding set.
func AddMultibindingProvider(p *Partial, fn interface{}) *Partial {
	if err := p.registerProvider(fn, true); err != nil {
		return p.fail(err)
	}
	return p
}

// RegisterFactory registers fn as an assisted-injection factory: the
// parameters at assistedIdx (by position) are supplied by the caller at
// invocation time rather than resolved from the graph. The Partial
// provides not fn's return type but the callable producing it; retrieve
// it with Get using the concrete func type fn reduces to once its
// Injected parameters are dropped, e.g.
// Get[func(int) *Request](injector).
func RegisterFactory(p *Partial, fn interface{}, assistedIdx ...int) *Partial {
	if err := p.registerFactory(fn, assistedIdx, false); err != nil {
		return p.fail(err)
	}
	return p
}

// AddMultibindingFactory adds fn as one more contribution to its
// callable's multibinding set.
func AddMultibindingFactory(p *Partial, fn interface{}, assistedIdx ...int) *Partial {
	if err := p.registerFactory(fn, assistedIdx, true); err != nil {
		return p.fail(err)
	}
	return p
}

// Install merges a sealed Component's declarations into p. other may be
// nil, in which case Install is a no-op.
func Install(p *Partial, other *Component) *Partial {
	return p.install(other)
}

// Get resolves T from inj, constructing it (and its dependencies) the
// first time it's requested and returning the memoized value on every
// later call for the same T.
func Get[T any](inj *Injector) (T, error) {
	var zero T
	v, err := inj.get(typeIdOf[T]())
	if err != nil {
		return zero, err
	}
	out, ok := v.Interface().(T)
	if !ok {
		return zero, errors.Errorf("fruit: resolved value for %T is not assignable to requested type", v.Interface())
	}
	return out, nil
}

// MustGet is Get, panicking on error. Intended for wiring code at
// startup where an unsatisfied or cyclic dependency is a programmer
// error, not a condition to recover from.
func MustGet[T any](inj *Injector) T {
	v, err := Get[T](inj)
	if err != nil {
		panic(err)
	}
	return v
}

// GetAnnotated is Get for an Annotated[Tag, T] binding.
func GetAnnotated[Tag, T any](inj *Injector) (T, error) {
	var zero T
	v, err := inj.get(annotatedTypeIdOf[Tag, T]())
	if err != nil {
		return zero, err
	}
	out, ok := v.Interface().(T)
	if !ok {
		return zero, errors.Errorf("fruit: resolved value for %T is not assignable to requested type", v.Interface())
	}
	return out, nil
}

// GetMultibindings returns every contribution registered for T via
// AddMultibinding*, in declaration order. A T with no multibinding
// contributions yields an empty, non-nil slice.
func GetMultibindings[T any](inj *Injector) ([]T, error) {
	vs, err := inj.getMultibindings(typeIdOf[T]())
	if err != nil {
		return nil, err
	}
	out := make([]T, len(vs))
	for i, v := range vs {
		item, ok := v.Interface().(T)
		if !ok {
			return nil, errors.Errorf("fruit: resolved multibinding value for %T is not assignable to requested type", v.Interface())
		}
		out[i] = item
	}
	return out, nil
}
