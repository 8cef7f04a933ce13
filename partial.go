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
	"reflect"

	"github.com/pkg/errors"

	"github.com/fruit-go/fruit/internal/dilog"
	"github.com/fruit-go/fruit/internal/fxreflect"
)

// Partial accumulates binding declarations while tracking what it
// provides and what it still requires. It is mutated in place by each
// chained operation and returned for further chaining: there is only
// ever one live reference to a given Partial's state, expressed the way
// dig's graph mutates its nodes map in place rather than copying on
// every Register call.
//
// Partial is not safe for concurrent use; see the package doc for the
// single-owner concurrency model this type (and Component, and Injector)
// share.
type Partial struct {
	decls    []Declaration
	provided map[TypeId]bool
	required map[TypeId]bool
	// installed remembers which Partials have already contributed
	// declarations directly to this one, so that installing the same
	// Component twice is a no-op rather than a duplicate-binding error.
	installed map[*Partial]bool
	logger    dilog.Logger

	// err latches the first error a builder call produced. Builder
	// methods are meant to be chained (createComponent().bind[...]().
	// registerConstructor(...)...); threading an error return through
	// every link in that chain would defeat the chaining. Instead, like
	// bytes.Buffer or html/template, a failing call records err and
	// becomes a no-op; Seal surfaces it.
	err error
}

// Err returns the first error recorded by a builder call, or nil.
func (p *Partial) Err() error { return p.err }

func (p *Partial) fail(err error) *Partial {
	if p.err == nil {
		p.err = err
	}
	return p
}

// CreateComponent returns an empty Partial: no provided or required
// types, ready for chained builder calls.
func CreateComponent() *Partial {
	return &Partial{
		provided:  make(map[TypeId]bool),
		required:  make(map[TypeId]bool),
		installed: make(map[*Partial]bool),
		logger:    dilog.NopLogger,
	}
}

// WithLogger attaches a structured event sink to the Partial; it is
// carried forward into the Component and Injector built from it. The
// zero value logs nothing, matching fxevent.NopLogger's default.
func (p *Partial) WithLogger(logger dilog.Logger) *Partial {
	if logger != nil {
		p.logger = logger
	}
	return p
}

// Provided reports whether t is currently a provided key (normal or
// multibinding).
func (p *Partial) Provided(t TypeId) bool { return p.provided[t] }

// Required reports whether t is currently in the required set.
func (p *Partial) Required(t TypeId) bool { return p.required[t] }

func (p *Partial) addProvided(t TypeId) {
	p.provided[t] = true
	delete(p.required, t)
}

func (p *Partial) addRequired(t TypeId) {
	if !p.provided[t] {
		p.required[t] = true
	}
}

func (p *Partial) append(kind BindingKind, multibind bool) *Declaration {
	d := Declaration{
		Kind:        kind,
		Multibind:   multibind,
		SourceIndex: len(p.decls),
		Caller:      fxreflect.Caller(),
	}
	p.decls = append(p.decls, d)
	p.logger.LogEvent(dilog.BindEvent{
		Kind:   kind.bindingKindName(),
		Type:   kind.bindingTarget().String(),
		Caller: d.Caller,
	})
	return &p.decls[len(p.decls)-1]
}

// bind is the dynamic-capture kernel behind the generic Bind[I, C]
// façade in generics.go: bind<I,C>() adds I to provided and, unless C is
// already provided, C to required.
func (p *Partial) bind(iface, impl TypeId, ifaceType reflect.Type, multibind bool) error {
	if ifaceType.Kind() != reflect.Interface || !impl.rtype.Implements(ifaceType) {
		return &NotABaseClassOfError{Interface: iface, Impl: impl}
	}
	p.append(BindToBinding{Interface: iface, Impl: impl}, multibind)
	p.addProvided(iface)
	p.addRequired(impl)
	return nil
}

// registerConstructor is the dynamic kernel behind RegisterConstructor:
// it reflects on fn to build a Signature, adds the return type to
// provided, and adds every injected parameter to required.
func (p *Partial) registerConstructor(fn interface{}, multibind bool) error {
	sig, thunk, err := signatureOfFunc(fn)
	if err != nil {
		return errors.Wrap(err, "registerConstructor")
	}
	p.append(ConstructorBinding{Target: sig.Return, Signature: sig, Thunk: thunk}, multibind)
	p.addProvided(sig.Return)
	for _, param := range sig.Params {
		p.addRequired(param.Type)
	}
	return nil
}

// bindInstance is the dynamic kernel behind BindInstance[T]: a value the
// caller already owns, added to provided with no new requirements.
func (p *Partial) bindInstance(target TypeId, value interface{}, multibind bool) error {
	p.append(InstanceBinding{Target: target, Handle: reflect.ValueOf(value)}, multibind)
	p.addProvided(target)
	return nil
}

// registerProvider is like registerConstructor but additionally rejects
// bound method values (a func bound to a receiver). registerProvider and
// registerFactory both apply this check; a func literal that captures
// local variables is not detected and is accepted.
func (p *Partial) registerProvider(fn interface{}, multibind bool) error {
	if fxreflect.IsBoundMethodValue(fn) {
		return errors.Errorf("registerProvider: %s is a bound method value, not a stateless function", fxreflect.FuncName(fn))
	}
	sig, thunk, err := signatureOfFunc(fn)
	if err != nil {
		return errors.Wrap(err, "registerProvider")
	}
	p.append(ProviderBinding{Target: sig.Return, Signature: sig, Thunk: thunk}, multibind)
	p.addProvided(sig.Return)
	for _, param := range sig.Params {
		p.addRequired(param.Type)
	}
	return nil
}

// registerFactory is the dynamic kernel behind RegisterFactory: the
// parameter positions listed in assistedIdx are Assisted rather than
// Injected. The target provided is the *callable* producing T, not T
// itself; callers retrieve it via Get with that callable's func type
// (see generics.go).
func (p *Partial) registerFactory(fn interface{}, assistedIdx []int, multibind bool) error {
	if fxreflect.IsBoundMethodValue(fn) {
		return errors.Errorf("registerFactory: %s is a bound method value, not a stateless function", fxreflect.FuncName(fn))
	}
	sig, thunk, err := signatureOfFunc(fn)
	if err != nil {
		return errors.Wrap(err, "registerFactory")
	}
	assisted := make(map[int]bool, len(assistedIdx))
	for _, idx := range assistedIdx {
		if idx < 0 || idx >= len(sig.Params) {
			return errors.Errorf("registerFactory: assisted index %d out of range for %d params", idx, len(sig.Params))
		}
		assisted[idx] = true
	}
	for i := range sig.Params {
		if assisted[i] {
			sig.Params[i].Kind = Assisted
		}
	}

	callableID := callableTypeId(sig, returnsError(thunk))
	p.append(FactoryBinding{Target: callableID, Signature: sig, Thunk: thunk}, multibind)
	p.addProvided(callableID)
	for _, param := range sig.InjectedParams() {
		p.addRequired(param.Type)
	}
	return nil
}

// install merges other's declarations into p. The merge itself is
// deferred to Component compilation: here we only record the
// InstallBinding and eagerly widen provided/required so that subsequent
// chained calls on p see other's contributions without waiting for
// Seal.
func (p *Partial) install(other *Component) *Partial {
	if other == nil {
		return p
	}
	if p.installed[other.source] {
		return p
	}
	p.installed[other.source] = true
	p.append(InstallBinding{Source: other.source}, false)

	for t := range other.provided {
		p.addProvided(t)
	}
	for t := range other.required {
		p.addRequired(t)
	}
	return p
}
