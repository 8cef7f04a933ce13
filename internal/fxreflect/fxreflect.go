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

// Package fxreflect holds the reflection helpers shared by the binding
// graph packages: formatting constructor names for diagnostics and
// identifying the caller that registered a binding.
package fxreflect

import (
	"fmt"
	"reflect"
	"runtime"
	"strings"
)

// Caller returns the formatted name of the function that registered a
// binding, ascending past this module's own frames.
func Caller() string {
	pcs := make([]uintptr, 16)

	// Don't include this frame.
	n := runtime.Callers(2, pcs)
	if n == 0 {
		return "n/a"
	}

	frames := runtime.CallersFrames(pcs[:n])
	for f, more := frames.Next(); more; f, more = frames.Next() {
		if shouldIgnoreFrame(f) {
			continue
		}
		return fmt.Sprintf("%s (%s:%d)", f.Function, trimGoPath(f.File), f.Line)
	}
	return "n/a"
}

// FuncName returns a func's formatted name, e.g. "pkg.NewThing()".
func FuncName(fn interface{}) string {
	fnV := reflect.ValueOf(fn)
	if fnV.Kind() != reflect.Func {
		return "n/a"
	}

	fnName := runtime.FuncForPC(fnV.Pointer()).Name()
	return fmt.Sprintf("%s()", fnName)
}

// IsBoundMethodValue reports whether fn is a method value bound to a
// receiver (e.g. `someStruct.Method`), as opposed to a plain function or a
// capture-free closure. The Go compiler names the generated wrapper with a
// "-fm" suffix, which is the only way to tell the two apart through
// reflection alone.
func IsBoundMethodValue(fn interface{}) bool {
	fnV := reflect.ValueOf(fn)
	if fnV.Kind() != reflect.Func {
		return false
	}
	name := runtime.FuncForPC(fnV.Pointer()).Name()
	return strings.HasSuffix(name, "-fm")
}

// Ascend the call stack until we leave this module's own production code.
// This allows callers to avoid hard-coding a frame skip, and keeps working
// even when Caller() is wrapped by a generic helper.
func shouldIgnoreFrame(f runtime.Frame) bool {
	if strings.Contains(f.File, "_test.go") {
		return false
	}
	return strings.Contains(f.File, "github.com/fruit-go/fruit")
}

func trimGoPath(file string) string {
	if idx := strings.LastIndex(file, "/fruit-go/fruit/"); idx >= 0 {
		return file[idx+len("/fruit-go/fruit/"):]
	}
	return file
}
