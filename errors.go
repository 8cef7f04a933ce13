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
	"fmt"
	"strings"
)

// NotABaseClassOfError is returned by Bind[I, C] when I is not an
// interface that C implements.
type NotABaseClassOfError struct {
	Interface TypeId
	Impl      TypeId
}

func (e *NotABaseClassOfError) Error() string {
	return fmt.Sprintf("%s is not a base class of %s", e.Interface, e.Impl)
}

// DuplicateBindingError reports two non-idempotent bindings registered
// for the same TypeId. BindTo duplicates with an identical (interface,
// impl) pair are idempotent and never produce this error.
type DuplicateBindingError struct {
	Type         TypeId
	FirstIndex   int
	FirstCaller  string
	SecondIndex  int
	SecondCaller string
}

func (e *DuplicateBindingError) Error() string {
	return fmt.Sprintf(
		"duplicate binding for %s: first registered at declaration #%d (%s), again at #%d (%s)",
		e.Type, e.FirstIndex, e.FirstCaller, e.SecondIndex, e.SecondCaller,
	)
}

// UnsatisfiedDependencyError reports a dependency that is neither a
// BindingMap key nor in the declared required set.
type UnsatisfiedDependencyError struct {
	Type      TypeId
	Dependant TypeId
}

func (e *UnsatisfiedDependencyError) Error() string {
	return fmt.Sprintf("%s depends on %s, which is neither bound nor required", e.Dependant, e.Type)
}

// CyclicDependencyError reports a back-edge found while walking the
// injected-dependency graph. Path lists the TypeIds in cycle order,
// repeating the first element at the end (e.g. [A, B, A]).
type CyclicDependencyError struct {
	Path []TypeId
}

func (e *CyclicDependencyError) Error() string {
	parts := make([]string, len(e.Path))
	for i, t := range e.Path {
		parts[i] = t.String()
	}
	return fmt.Sprintf("cyclic dependency: %s", strings.Join(parts, " -> "))
}

// RequirementsNotSatisfiedError is returned by Seal when the Partial's
// required set (after flattening every Install) isn't empty, or doesn't
// match the contract the caller passed to Seal, or by NewInjector when
// given a Component whose required set is non-empty.
type RequirementsNotSatisfiedError struct {
	Missing []TypeId
}

func (e *RequirementsNotSatisfiedError) Error() string {
	parts := make([]string, len(e.Missing))
	for i, t := range e.Missing {
		parts[i] = t.String()
	}
	return fmt.Sprintf("requirements not satisfied: %s", strings.Join(parts, ", "))
}

// ProviderReturnedNilError is a runtime abort: a Provider or Constructor
// thunk returned a nil pointer or nil interface.
type ProviderReturnedNilError struct {
	Type TypeId
}

func (e *ProviderReturnedNilError) Error() string {
	return fmt.Sprintf("provider for %s returned a nil value", e.Type)
}

// CycleAtRuntimeError is a defense-in-depth check: Injector.get(T) was
// re-entered while T was already mid-construction. Compile-time cycle
// detection should make this unreachable; if it fires, it means a
// binding's dependency list diverged from what the compiler saw.
type CycleAtRuntimeError struct {
	Type TypeId
}

func (e *CycleAtRuntimeError) Error() string {
	return fmt.Sprintf("cycle detected at runtime while constructing %s", e.Type)
}
