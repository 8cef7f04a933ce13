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
)

// ParamKind distinguishes a signature parameter the injector must resolve
// from one the caller supplies at factory-invocation time.
type ParamKind int

const (
	// Injected parameters are resolved from the binding map.
	Injected ParamKind = iota
	// Assisted parameters are supplied by the caller when invoking a
	// Factory-produced callable; they are not edges in the dependency
	// graph.
	Assisted
)

func (k ParamKind) String() string {
	if k == Assisted {
		return "assisted"
	}
	return "injected"
}

// Param is one parameter of a Signature.
type Param struct {
	Type TypeId
	Kind ParamKind
}

// Signature describes a callable: the TypeId it produces and its ordered
// parameter list. registerConstructor, registerProvider and
// registerFactory all populate a Signature by reflecting on the Go func
// the caller hands them, the same technique dig/graph.go's
// registerConstructor uses to build a funcNode's deps from
// reflect.Type.In/Out.
type Signature struct {
	Return TypeId
	Params []Param
}

// InjectedParams returns the subset of Params with Kind == Injected, in
// declared order. This is the edge list the compiler's cycle detector and
// the injector's construction walk both use; Assisted params are
// deliberately excluded: they are not graph edges.
func (s Signature) InjectedParams() []Param {
	out := make([]Param, 0, len(s.Params))
	for _, p := range s.Params {
		if p.Kind == Injected {
			out = append(out, p)
		}
	}
	return out
}

// signatureOfFunc reflects on fn, which must be a func with exactly one
// non-error return value, and builds a Signature whose parameters are all
// Injected. Used by registerConstructor and registerProvider, which infer
// their signature entirely from the Go function; registerFactory calls
// signatureOfFunc too and then reclassifies the assisted positions by
// index.
func signatureOfFunc(fn interface{}) (Signature, reflect.Value, error) {
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func {
		return Signature{}, reflect.Value{}, errors.Errorf("expected a func, got %T", fn)
	}
	t := v.Type()

	if t.IsVariadic() {
		return Signature{}, reflect.Value{}, errors.New("variadic constructors are not supported")
	}

	out, err := singleReturnType(t)
	if err != nil {
		return Signature{}, reflect.Value{}, err
	}

	params := make([]Param, t.NumIn())
	for i := range params {
		params[i] = Param{Type: typeIdFromReflect(t.In(i)), Kind: Injected}
	}

	return Signature{Return: typeIdFromReflect(out), Params: params}, v, nil
}

// singleReturnType enforces "constructor function must return exactly one
// value" the way dig.go's errReturnCount does, generalized to also accept
// the common Go idiom of returning (T, error); the error, if present, is
// not part of the Signature and is instead checked at construction time
// (see ProviderReturnedNilError's sibling handling in injector.go).
func singleReturnType(t reflect.Type) (reflect.Type, error) {
	switch t.NumOut() {
	case 1:
		return t.Out(0), nil
	case 2:
		if !t.Out(1).Implements(errorType) {
			return nil, errors.New("a two-valued constructor's second return must be error")
		}
		return t.Out(0), nil
	default:
		return nil, errors.New("constructor function must return exactly one value (or a value and an error)")
	}
}

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// returnsError reports whether fn's signature was one of the two-valued
// (T, error) forms singleReturnType accepted.
func returnsError(fn reflect.Value) bool {
	t := fn.Type()
	return t.NumOut() == 2 && t.Out(1).Implements(errorType)
}

// callableTypeId synthesizes the TypeId for the callable a Factory
// binding exposes to the user: a plain Go func type, built with
// reflect.FuncOf, taking exactly sig's Assisted parameters in order and
// returning sig.Return (plus a trailing error if the registered thunk
// itself returns one, so a factory's own failure isn't swallowed).
// Since it's a real reflect.Type like any other, a caller retrieves it
// with the ordinary Get[F] façade where F is that func type spelled out
// at the call site, e.g. Get[func(int) (*Request, error)].
func callableTypeId(sig Signature, withError bool) TypeId {
	var in []reflect.Type
	for _, p := range sig.Params {
		if p.Kind == Assisted {
			in = append(in, p.Type.rtype)
		}
	}
	out := []reflect.Type{sig.Return.rtype}
	if withError {
		out = append(out, errorType)
	}
	return typeIdFromReflect(reflect.FuncOf(in, out, false))
}
