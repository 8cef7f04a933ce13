// Copyright (c) 2020 Uber Technologies, Inc.
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

// Package dilog carries structured logging events for the binding-graph
// compiler and the injector runtime. It mirrors fx's own event-sink design:
// a small closed set of Event types, a Logger that receives them, and a
// zap-backed implementation plus a no-op default.
package dilog

import (
	"go.uber.org/zap"
)

// Logger receives structured events as the container compiles and runs.
type Logger interface {
	LogEvent(Event)
}

// Event is the marker interface implemented by every event this package
// emits.
type Event interface {
	event()
}

// BindEvent is emitted whenever a declaration is accepted onto a Partial.
type BindEvent struct {
	Kind   string // "constructor", "provider", "instance", "bindTo", "factory", "install"
	Type   string
	Caller string
}

// SealSucceededEvent is emitted when a Partial compiles into a Component.
type SealSucceededEvent struct {
	Provided int
	Required int
}

// SealFailedEvent is emitted when compilation fails.
type SealFailedEvent struct {
	Err error
}

// ConstructEvent is emitted when the injector realizes a binding.
type ConstructEvent struct {
	Type string
}

// TeardownEvent is emitted when the injector destroys a memoized instance.
type TeardownEvent struct {
	Type string
	Err  error
}

// FactoryInvokedEvent is emitted each time an assisted-injection callable
// produced by the injector is invoked.
type FactoryInvokedEvent struct {
	Type string
}

func (BindEvent) event()           {}
func (SealSucceededEvent) event()  {}
func (SealFailedEvent) event()     {}
func (ConstructEvent) event()      {}
func (TeardownEvent) event()       {}
func (FactoryInvokedEvent) event() {}

type nopLogger struct{}

func (nopLogger) LogEvent(Event) {}

// NopLogger discards every event. It is the default for a Partial or
// Injector that isn't given an explicit Logger.
var NopLogger Logger = nopLogger{}

var _ Logger = (*zapLogger)(nil)

type zapLogger struct {
	logger *zap.Logger
}

// NewZapLogger adapts a *zap.Logger into a Logger.
func NewZapLogger(logger *zap.Logger) Logger {
	return &zapLogger{logger: logger}
}

func (l *zapLogger) LogEvent(event Event) {
	switch e := event.(type) {
	case BindEvent:
		l.logger.Debug("bind",
			zap.String("kind", e.Kind),
			zap.String("type", e.Type),
			zap.String("caller", e.Caller),
		)
	case SealSucceededEvent:
		l.logger.Info("sealed",
			zap.Int("provided", e.Provided),
			zap.Int("required", e.Required),
		)
	case SealFailedEvent:
		l.logger.Error("seal failed", zap.Error(e.Err))
	case ConstructEvent:
		l.logger.Debug("constructed", zap.String("type", e.Type))
	case TeardownEvent:
		if e.Err != nil {
			l.logger.Error("teardown failed", zap.String("type", e.Type), zap.Error(e.Err))
			return
		}
		l.logger.Debug("torn down", zap.String("type", e.Type))
	case FactoryInvokedEvent:
		l.logger.Debug("factory invoked", zap.String("type", e.Type))
	}
}
