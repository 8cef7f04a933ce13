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

// Package fruit is a reflection-based dependency-injection container.
//
// It builds an object graph from a set of binding declarations (bind an
// interface to an implementation, register a constructor, wire in an
// instance the caller already owns) and compiles them into an
// injectable runtime that resolves, memoizes, and tears down the graph
// for you.
//
// Status
//
// The API favors explicit declaration and compile-time (well, Seal-time)
// validation over magic: nothing is constructed until Seal succeeds, and
// Seal fails fast with a specific, attributable error for every binding
// mistake it can detect: duplicate bindings, unsatisfied dependencies,
// dependency cycles, unmet requirements contracts.
//
// Building a graph
//
// CreateComponent starts an empty Partial. Chain Bind, RegisterConstructor,
// BindInstance, RegisterProvider, RegisterFactory and Install onto it to
// declare the graph:
//
//	p := fruit.CreateComponent()
//	fruit.Bind[Greeter, *EnglishGreeter](p)
//	fruit.RegisterConstructor(p, NewEnglishGreeter)
//
// Each call widens what the Partial provides and, for any dependency it
// doesn't already provide, what it still requires. A failing call doesn't
// stop the chain; it latches the first error onto the Partial, the way
// bytes.Buffer and html/template do, so Seal can surface it once instead
// of forcing every intermediate call to check an error return.
//
// Sealing and running
//
//	c, err := p.Seal()
//	if err != nil {
//	    // duplicate binding, unsatisfied dependency, cycle, ...
//	}
//	inj, err := fruit.NewInjector(c)
//	greeter, err := fruit.Get[Greeter](inj)
//	defer inj.Close()
//
// Seal runs the full compiler pipeline (flatten installed Components,
// index declarations, collapse BindTo alias chains, check closure,
// detect cycles, and emit a BindingMap) before an Injector ever exists.
// Once a Component is sealed it's immutable; the Injector built from it
// memoizes every constructed value and, on Close, tears values down in
// the reverse of the order they were built in.
//
// Multibindings and assisted factories
//
// AddMultibindingConstructor and its siblings contribute one more value
// to a set bound at the same TypeId, retrieved with GetMultibindings
// rather than Get. RegisterFactory registers a constructor some of whose
// parameters are supplied by the caller at call time rather than resolved
// from the graph; the Partial provides not the constructed type but a
// callable producing it, retrieved with Get using that callable's
// concrete Go func type.
//
// Concurrency
//
// Partial and Injector take no locks: each is meant to be used by one
// owner at a time, and sharing one across goroutines needs external
// synchronization. A sealed Component is never mutated after Seal and can
// back any number of Injectors.
package fruit
