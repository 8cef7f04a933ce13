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

import "reflect"

// BindingKind is the tagged-variant family of everything a Declaration can
// say about how to produce a value. There is no inheritance hierarchy
// here by design: each concrete type below is a plain struct, and code
// that needs to distinguish them does so with a type switch (see
// component.go and injector.go).
type BindingKind interface {
	// bindingTarget is the TypeId this declaration provides. InstallBinding
	// has no single target and returns the zero TypeId.
	bindingTarget() TypeId
	bindingKindName() string
}

// ConstructorBinding registers the canonical way to build Target: reflect
// on a Go constructor func and treat every parameter as Injected.
type ConstructorBinding struct {
	Target    TypeId
	Signature Signature
	Thunk     reflect.Value
}

func (b ConstructorBinding) bindingTarget() TypeId    { return b.Target }
func (b ConstructorBinding) bindingKindName() string { return "constructor" }

// InstanceBinding wires a caller-owned value into the graph. The
// container never takes ownership: it is not constructed, and teardown
// never destroys it.
type InstanceBinding struct {
	Target TypeId
	Handle reflect.Value
}

func (b InstanceBinding) bindingTarget() TypeId    { return b.Target }
func (b InstanceBinding) bindingKindName() string { return "instance" }

// ProviderBinding registers a stateless factory func for Target. Unlike
// ConstructorBinding it exists for types the caller can't or doesn't want
// to add an INJECT-style constructor to, e.g. third-party types, or a
// type that needs different wiring in different components.
type ProviderBinding struct {
	Target    TypeId
	Signature Signature
	Thunk     reflect.Value
}

func (b ProviderBinding) bindingTarget() TypeId    { return b.Target }
func (b ProviderBinding) bindingKindName() string { return "provider" }

// BindToBinding aliases Interface to Impl: resolving Interface transparently
// resolves Impl, and the two share one realized instance.
type BindToBinding struct {
	Interface TypeId
	Impl      TypeId
}

func (b BindToBinding) bindingTarget() TypeId    { return b.Interface }
func (b BindToBinding) bindingKindName() string { return "bindTo" }

// FactoryBinding registers a thunk that produces Target from a mix of
// Injected and Assisted parameters. It is exposed to the user not as
// Target itself but as a callable; see injector.go's handling of
// FactoryBinding in get().
type FactoryBinding struct {
	Target    TypeId
	Signature Signature
	Thunk     reflect.Value
}

func (b FactoryBinding) bindingTarget() TypeId    { return b.Target }
func (b FactoryBinding) bindingKindName() string { return "factory" }

// InstallBinding merges another (already-sealed) Component's declarations
// into this Partial. Source identifies the installed Component's
// underlying partial, which is the dedup key the compiler's flatten step
// uses: installing the same Component twice, directly or via two
// different paths, contributes its declarations only once.
type InstallBinding struct {
	Source *Partial
}

func (b InstallBinding) bindingTarget() TypeId    { return TypeId{} }
func (b InstallBinding) bindingKindName() string { return "install" }

// Declaration is a BindingKind plus the bookkeeping the compiler needs for
// deterministic, attributable diagnostics: the order the binding was
// registered in, tagged as a multibinding contribution or not, and the
// formatted caller that registered it.
type Declaration struct {
	Kind        BindingKind
	Multibind   bool
	SourceIndex int
	Caller      string
}
