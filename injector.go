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
	"io"
	"reflect"

	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"github.com/fruit-go/fruit/internal/dilog"
)

// Injector is the realized object graph a sealed Component compiles down
// to. It memoizes every normal binding's value the first time it's
// requested, tracks construction order for reverse-order teardown, and
// guards against the re-entrant construction that Seal's own cycle check
// should already have ruled out.
//
// Injector is not safe for concurrent use; see the package doc.
type Injector struct {
	component *Component
	logger    dilog.Logger

	memo     map[*ResolvedBinding]reflect.Value
	building map[*ResolvedBinding]bool
	order    []*ResolvedBinding
}

// NewInjector builds the realized object graph from a sealed Component.
// It refuses a Component whose required set is non-empty: that Component
// is only meant to be installed into a larger Partial, never run on its
// own. Construction always starts from a fully-closed BindingMap.
func NewInjector(c *Component) (*Injector, error) {
	if len(c.required) > 0 {
		return nil, &RequirementsNotSatisfiedError{Missing: c.RequiredTypes()}
	}
	return &Injector{
		component: c,
		logger:    c.logger,
		memo:      make(map[*ResolvedBinding]reflect.Value),
		building:  make(map[*ResolvedBinding]bool),
	}, nil
}

// get resolves target to its realized reflect.Value, constructing it (and
// anything it transitively depends on) on first request.
func (inj *Injector) get(target TypeId) (reflect.Value, error) {
	rb, ok := inj.component.bindings[target]
	if !ok {
		return reflect.Value{}, &UnsatisfiedDependencyError{Type: target}
	}
	return inj.resolve(rb)
}

// resolve realizes a single BindingMap entry, dispatching on its
// BindingKind with a type switch here rather than a virtual method on
// BindingKind itself.
func (inj *Injector) resolve(rb *ResolvedBinding) (reflect.Value, error) {
	if v, ok := inj.memo[rb]; ok {
		return v, nil
	}
	if inj.building[rb] {
		return reflect.Value{}, &CycleAtRuntimeError{Type: rb.Target}
	}
	inj.building[rb] = true
	defer delete(inj.building, rb)

	switch kind := rb.Kind.(type) {
	case BindToBinding:
		implRB, ok := inj.component.bindings[rb.Deps[0]]
		if !ok {
			return reflect.Value{}, &UnsatisfiedDependencyError{Type: rb.Deps[0], Dependant: rb.Target}
		}
		v, err := inj.resolve(implRB)
		if err != nil {
			return reflect.Value{}, err
		}
		inj.memo[rb] = v
		return v, nil

	case InstanceBinding:
		// An InstanceBinding is never appended to order: the caller owns
		// it, so Close never touches it.
		inj.memo[rb] = kind.Handle
		return kind.Handle, nil

	case ConstructorBinding:
		v, err := inj.construct(rb.Target, kind.Signature, kind.Thunk)
		if err != nil {
			return reflect.Value{}, err
		}
		inj.memo[rb] = v
		inj.order = append(inj.order, rb)
		inj.logger.LogEvent(dilog.ConstructEvent{Type: rb.Target.String()})
		return v, nil

	case ProviderBinding:
		v, err := inj.construct(rb.Target, kind.Signature, kind.Thunk)
		if err != nil {
			return reflect.Value{}, err
		}
		inj.memo[rb] = v
		inj.order = append(inj.order, rb)
		inj.logger.LogEvent(dilog.ConstructEvent{Type: rb.Target.String()})
		return v, nil

	case FactoryBinding:
		// Deliberately not memoized: the callable itself is cheap to
		// build, and rebuilding it on every Get keeps each invocation
		// free to resolve its injected arguments against the Injector's
		// current memo state rather than pinning them at first Get.
		return inj.makeFactoryCallable(rb.Target, kind), nil

	default:
		return reflect.Value{}, errors.Errorf("fruit: unresolvable binding kind for %s", rb.Target)
	}
}

// construct calls a Constructor or Provider thunk after recursively
// resolving its injected parameters, then applies two runtime checks: a
// returned error aborts construction, and a nil
// pointer/interface/map/slice/chan/func result is rejected outright
// rather than silently handed to a dependent.
func (inj *Injector) construct(target TypeId, sig Signature, thunk reflect.Value) (reflect.Value, error) {
	args := make([]reflect.Value, len(sig.Params))
	for i, p := range sig.Params {
		v, err := inj.get(p.Type)
		if err != nil {
			return reflect.Value{}, errors.Wrapf(err, "constructing %s", target)
		}
		args[i] = v
	}

	results := thunk.Call(args)
	out := results[0]
	if returnsError(thunk) {
		if errVal, _ := results[1].Interface().(error); errVal != nil {
			return reflect.Value{}, errors.Wrapf(errVal, "constructing %s", target)
		}
	}
	if isNilable(out) && out.IsNil() {
		return reflect.Value{}, &ProviderReturnedNilError{Type: target}
	}
	return out, nil
}

func isNilable(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Chan, reflect.Func, reflect.Interface, reflect.Map, reflect.Ptr, reflect.Slice:
		return true
	default:
		return false
	}
}

// makeFactoryCallable synthesizes the reflect.MakeFunc closure a Factory
// binding exposes to the user. The closure's Go func type is the one
// callableTypeId built at registerFactory time, so reflect.MakeFunc's own
// argument/return-count checks double as a sanity check that the wiring
// is internally consistent.
func (inj *Injector) makeFactoryCallable(target TypeId, kind FactoryBinding) reflect.Value {
	fnType := target.rtype
	sig := kind.Signature
	thunk := kind.Thunk
	hasError := fnType.NumOut() == 2

	return reflect.MakeFunc(fnType, func(args []reflect.Value) []reflect.Value {
		callArgs := make([]reflect.Value, len(sig.Params))
		next := 0
		for i, p := range sig.Params {
			if p.Kind == Assisted {
				callArgs[i] = args[next]
				next++
				continue
			}
			v, err := inj.get(p.Type)
			if err != nil {
				// Unreachable once Seal's closure check has passed: every
				// Injected param of a Factory is either bound or declared
				// required, and NewInjector refuses a Component with a
				// non-empty required set.
				panic(errors.Wrapf(err, "invoking factory for %s", target))
			}
			callArgs[i] = v
		}

		inj.logger.LogEvent(dilog.FactoryInvokedEvent{Type: target.String()})
		results := thunk.Call(callArgs)
		if hasError {
			return []reflect.Value{results[0], results[1]}
		}
		return results[:1]
	})
}

// getMultibindings resolves every contribution registered for target via
// a Multibind declaration, in declaration order. An unbound target with
// no multibinding contributions returns an empty,
// non-nil slice: requesting a multibinding set that happens to be empty
// is not an error.
func (inj *Injector) getMultibindings(target TypeId) ([]reflect.Value, error) {
	rbs := inj.component.multibindings[target]
	out := make([]reflect.Value, 0, len(rbs))
	for _, rb := range rbs {
		v, err := inj.resolve(rb)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// Close tears down every Constructor- or Provider-built value that
// implements io.Closer, in the reverse of the order it was constructed,
// the same discipline dig's graph.go and fx's lifecycle hooks both apply
// to OnStop. InstanceBindings are skipped: the
// Injector never took ownership of them. Every Close error is collected
// rather than short-circuited, so one failing teardown doesn't prevent
// the rest from running.
func (inj *Injector) Close() error {
	var errs error
	for i := len(inj.order) - 1; i >= 0; i-- {
		rb := inj.order[i]
		v, ok := inj.memo[rb]
		if !ok || !v.IsValid() {
			continue
		}
		closer, ok := v.Interface().(io.Closer)
		if !ok {
			continue
		}
		if err := closer.Close(); err != nil {
			err = errors.Wrapf(err, "closing %s", rb.Target)
			errs = multierr.Append(errs, err)
			inj.logger.LogEvent(dilog.TeardownEvent{Type: rb.Target.String(), Err: err})
			continue
		}
		inj.logger.LogEvent(dilog.TeardownEvent{Type: rb.Target.String()})
	}
	return errs
}
