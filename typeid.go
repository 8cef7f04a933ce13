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
	"reflect"
)

// TypeId is an opaque, comparable identifier for a Go type, optionally
// qualified by an annotation tag. Two TypeIds compare equal iff they
// identify the same underlying reflect.Type and carry the same tag;
// Annotated[Tag, T] and T therefore never collide.
type TypeId struct {
	rtype reflect.Type
	tag   reflect.Type
}

// String renders a TypeId for diagnostics, e.g. "fruit.Greeter" or
// "fruit.Config#fruit.Production".
func (id TypeId) String() string {
	if id.rtype == nil {
		return "<invalid TypeId>"
	}
	if id.tag == nil {
		return id.rtype.String()
	}
	return fmt.Sprintf("%s#%s", id.rtype.String(), id.tag.String())
}

// IsValid reports whether id was produced by typeIdOf, annotatedTypeIdOf
// or typeIdFromReflect,
// as opposed to being a TypeId zero value.
func (id TypeId) IsValid() bool {
	return id.rtype != nil
}

// typeIdOf derives the TypeId for T using Go's own static type
// information. It is injective: distinct Go types never collide, and an
// interface type's TypeId is distinct from any of its implementations'.
func typeIdOf[T any]() TypeId {
	return TypeId{rtype: reflectTypeOf[T]()}
}

// annotatedTypeIdOf derives the TypeId for Annotated[Tag, T]: the same
// underlying type T, distinguished by the marker type Tag. Tag is never
// instantiated; only its reflect.Type identity is used, so Tag can be an
// empty struct with no fields.
func annotatedTypeIdOf[Tag, T any]() TypeId {
	return TypeId{rtype: reflectTypeOf[T](), tag: reflectTypeOf[Tag]()}
}

// reflectTypeOf returns the reflect.Type of T, including interface types,
// for which reflect.TypeOf(zeroValue) alone would report the dynamic type
// of nil (i.e. untyped nil) rather than the interface.
func reflectTypeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// typeIdFromReflect builds a TypeId directly from a reflect.Type, for the
// cases (constructor/provider/factory registration) where the signature
// is discovered via reflection on a user-supplied func rather than known
// at a Go generic call site.
func typeIdFromReflect(t reflect.Type) TypeId {
	return TypeId{rtype: t}
}
