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
	"sort"

	"go.uber.org/multierr"

	"github.com/fruit-go/fruit/internal/dilog"
)

// ResolvedBinding is a BindingMap entry: the strategy used to produce
// Target plus its injected dependencies in canonical (construction)
// order, resolved once at Seal time so the Injector never has to walk
// declarations again.
type ResolvedBinding struct {
	Target      TypeId
	Kind        BindingKind
	Deps        []TypeId
	SourceIndex int
	Caller      string
}

// Component is a sealed, validated, immutable Partial. Its BindingMap
// has already passed the duplicate, closure and acyclicity checks; an
// Injector can be built from it without repeating any of that work.
type Component struct {
	bindings      map[TypeId]*ResolvedBinding
	multibindings map[TypeId][]*ResolvedBinding
	provided      map[TypeId]bool
	required      map[TypeId]bool
	source        *Partial
	logger        dilog.Logger
}

// Provided reports whether t is a BindingMap key (normal or multibind).
func (c *Component) Provided(t TypeId) bool { return c.provided[t] }

// RequiredTypes returns the TypeIds this Component still needs supplied
// by installing another Component, in no particular order. An empty
// result means the Component can be handed to NewInjector directly.
func (c *Component) RequiredTypes() []TypeId {
	out := make([]TypeId, 0, len(c.required))
	for t := range c.required {
		out = append(out, t)
	}
	return out
}

// Seal compiles p into a Component. requiredContract, if given, is the
// set of types the caller promises to supply later by installing this
// Component into another Partial; any type left in p's required set
// that isn't covered by requiredContract fails with
// RequirementsNotSatisfiedError. With no requiredContract, Seal demands
// the required set be empty: the Component is immediately injectable.
func (p *Partial) Seal(requiredContract ...TypeId) (*Component, error) {
	if p.err != nil {
		p.logger.LogEvent(dilog.SealFailedEvent{Err: p.err})
		return nil, p.err
	}

	decls := flatten(p)

	nonMulti, multi, err := indexDeclarations(decls)
	if err != nil {
		p.logger.LogEvent(dilog.SealFailedEvent{Err: err})
		return nil, err
	}

	aliasOf, err := resolveAliases(nonMulti)
	if err != nil {
		p.logger.LogEvent(dilog.SealFailedEvent{Err: err})
		return nil, err
	}

	providedKeys := make(map[TypeId]bool, len(nonMulti)+len(multi))
	for t := range nonMulti {
		providedKeys[t] = true
	}
	for t := range multi {
		providedKeys[t] = true
	}

	contractSet := make(map[TypeId]bool, len(requiredContract))
	for _, t := range requiredContract {
		contractSet[t] = true
	}
	if err := checkClosure(decls, providedKeys, contractSet); err != nil {
		p.logger.LogEvent(dilog.SealFailedEvent{Err: err})
		return nil, err
	}

	if err := detectCycles(nonMulti, multi, aliasOf); err != nil {
		p.logger.LogEvent(dilog.SealFailedEvent{Err: err})
		return nil, err
	}

	finalRequired := map[TypeId]bool{}
	for t := range p.required {
		if !providedKeys[t] {
			finalRequired[t] = true
		}
	}
	if err := checkContract(finalRequired, requiredContract); err != nil {
		p.logger.LogEvent(dilog.SealFailedEvent{Err: err})
		return nil, err
	}

	bindings := make(map[TypeId]*ResolvedBinding, len(nonMulti))
	for t, d := range nonMulti {
		bindings[t] = resolve(t, d, aliasOf)
	}
	multibindings := make(map[TypeId][]*ResolvedBinding, len(multi))
	for t, ds := range multi {
		sort.Slice(ds, func(i, j int) bool { return ds[i].SourceIndex < ds[j].SourceIndex })
		list := make([]*ResolvedBinding, len(ds))
		for i, d := range ds {
			list[i] = resolve(t, d, aliasOf)
		}
		multibindings[t] = list
	}

	c := &Component{
		bindings:      bindings,
		multibindings: multibindings,
		provided:      providedKeys,
		required:      finalRequired,
		source:        p,
		logger:        p.logger,
	}
	p.logger.LogEvent(dilog.SealSucceededEvent{Provided: len(providedKeys), Required: len(finalRequired)})
	return c, nil
}

// flatten performs a depth-first collection of p's declarations: the
// same child Partial, reached via Install through any number of paths,
// contributes its declarations exactly once. Declaration.SourceIndex is
// renumbered to flatten (pre-)order, which is what makes installing a
// Component through different paths produce an equivalent result, up
// to that renumbering.
func flatten(p *Partial) []Declaration {
	visited := map[*Partial]bool{}
	var out []Declaration

	var visit func(p *Partial)
	visit = func(p *Partial) {
		if visited[p] {
			return
		}
		visited[p] = true
		for _, d := range p.decls {
			if ib, ok := d.Kind.(InstallBinding); ok {
				visit(ib.Source)
				continue
			}
			out = append(out, d)
		}
	}
	visit(p)

	for i := range out {
		out[i].SourceIndex = i
	}
	return out
}

// indexDeclarations builds the temporary per-TypeId indices used by the
// rest of Seal, failing with one combined error if any TypeId has two
// non-idempotent non-multibinding declarations.
func indexDeclarations(decls []Declaration) (map[TypeId]*Declaration, map[TypeId][]*Declaration, error) {
	nonMulti := make(map[TypeId]*Declaration)
	multi := make(map[TypeId][]*Declaration)
	var errs []error

	for i := range decls {
		d := &decls[i]
		target := d.Kind.bindingTarget()
		if !target.IsValid() {
			continue // InstallBinding; already consumed by flatten
		}
		if d.Multibind {
			multi[target] = append(multi[target], d)
			continue
		}
		if existing, ok := nonMulti[target]; ok {
			if isIdempotentDuplicate(existing.Kind, d.Kind) {
				continue
			}
			errs = append(errs, &DuplicateBindingError{
				Type:         target,
				FirstIndex:   existing.SourceIndex,
				FirstCaller:  existing.Caller,
				SecondIndex:  d.SourceIndex,
				SecondCaller: d.Caller,
			})
			continue
		}
		nonMulti[target] = d
	}

	if len(errs) > 0 {
		return nil, nil, multierr.Combine(errs...)
	}
	return nonMulti, multi, nil
}

// isIdempotentDuplicate carves out one tolerated case: two BindTo
// declarations for the same (interface, impl) pair. No other
// BindingKind gets this leniency; registering the same constructor,
// provider, factory, or instance twice is always a DuplicateBinding.
func isIdempotentDuplicate(a, b BindingKind) bool {
	ba, ok := a.(BindToBinding)
	if !ok {
		return false
	}
	bb, ok := b.(BindToBinding)
	if !ok {
		return false
	}
	return ba.Interface == bb.Interface && ba.Impl == bb.Impl
}

// resolveAliases collapses BindTo chains (A -> B -> C becomes A -> C)
// and rejects alias self-loops. The result maps every BindTo interface
// to the terminal TypeId the injector should actually realize.
func resolveAliases(nonMulti map[TypeId]*Declaration) (map[TypeId]TypeId, error) {
	aliasOf := make(map[TypeId]TypeId)

	for target, d := range nonMulti {
		bt, ok := d.Kind.(BindToBinding)
		if !ok {
			continue
		}
		seen := map[TypeId]bool{target: true}
		chain := []TypeId{target}
		cur := bt.Impl
		for {
			if seen[cur] {
				for i, t := range chain {
					if t == cur {
						return nil, &CyclicDependencyError{Path: append(append([]TypeId{}, chain[i:]...), cur)}
					}
				}
			}
			next, ok := nonMulti[cur]
			if !ok {
				break
			}
			nextBt, ok := next.Kind.(BindToBinding)
			if !ok {
				break
			}
			seen[cur] = true
			chain = append(chain, cur)
			cur = nextBt.Impl
		}
		aliasOf[target] = cur
	}
	return aliasOf, nil
}

// checkClosure verifies that every injected dependency of every binding
// is either a BindingMap key or in the declared required set.
func checkClosure(decls []Declaration, providedKeys, required map[TypeId]bool) error {
	var errs []error
	for i := range decls {
		d := &decls[i]
		dependant := d.Kind.bindingTarget()
		for _, dep := range injectedDepsOf(d.Kind) {
			if providedKeys[dep] || required[dep] {
				continue
			}
			errs = append(errs, &UnsatisfiedDependencyError{Type: dep, Dependant: dependant})
		}
	}
	if len(errs) > 0 {
		return multierr.Combine(errs...)
	}
	return nil
}

// injectedDepsOf extracts the Injected-kind parameter TypeIds of a
// BindingKind. Instance and BindTo bindings have none: an Instance is a
// leaf, and a BindTo's dependency is its alias target, checked instead by
// resolveAliases/detectCycles.
func injectedDepsOf(kind BindingKind) []TypeId {
	var sig Signature
	switch k := kind.(type) {
	case ConstructorBinding:
		sig = k.Signature
	case ProviderBinding:
		sig = k.Signature
	case FactoryBinding:
		sig = k.Signature
	default:
		return nil
	}
	params := sig.InjectedParams()
	out := make([]TypeId, len(params))
	for i, p := range params {
		out[i] = p.Type
	}
	return out
}

// detectCycles runs a classical gray/black DFS over the
// injected-dependency graph. BindTo edges are followed through aliasOf so
// that a cycle passing through an interface alias is still caught.
func detectCycles(nonMulti map[TypeId]*Declaration, multi map[TypeId][]*Declaration, aliasOf map[TypeId]TypeId) error {
	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make(map[TypeId]int)
	var path []TypeId
	var cycleErr error

	aliasResolve := func(t TypeId) TypeId {
		if r, ok := aliasOf[t]; ok {
			return r
		}
		return t
	}

	var visit func(t TypeId) bool
	visit = func(t TypeId) bool {
		switch color[t] {
		case black:
			return false
		case gray:
			idx := 0
			for i, p := range path {
				if p == t {
					idx = i
					break
				}
			}
			cyc := append(append([]TypeId{}, path[idx:]...), t)
			cycleErr = &CyclicDependencyError{Path: cyc}
			return true
		}
		color[t] = gray
		path = append(path, t)
		if d, ok := nonMulti[t]; ok {
			for _, dep := range injectedDepsOf(d.Kind) {
				if visit(aliasResolve(dep)) {
					return true
				}
			}
		}
		color[t] = black
		path = path[:len(path)-1]
		return false
	}

	for t := range nonMulti {
		if visit(aliasResolve(t)) {
			return cycleErr
		}
	}
	for _, list := range multi {
		for _, d := range list {
			for _, dep := range injectedDepsOf(d.Kind) {
				if visit(aliasResolve(dep)) {
					return cycleErr
				}
			}
		}
	}
	return nil
}

// checkContract implements RequirementsNotSatisfiedError: every type left
// in finalRequired must be covered by the caller's declared contract (or
// the contract must be empty and so must finalRequired).
func checkContract(finalRequired map[TypeId]bool, contract []TypeId) error {
	allowed := make(map[TypeId]bool, len(contract))
	for _, t := range contract {
		allowed[t] = true
	}
	var missing []TypeId
	for t := range finalRequired {
		if !allowed[t] {
			missing = append(missing, t)
		}
	}
	if len(missing) > 0 {
		return &RequirementsNotSatisfiedError{Missing: missing}
	}
	return nil
}

// resolve builds the final ResolvedBinding for target, rewriting a BindTo
// declaration's dependency list to its alias chain's terminal impl so the
// Injector needs no BindTo-specific lookup logic beyond a single rule:
// delegate to the impl's resolution, then memoize the result under the
// interface's TypeId too.
func resolve(target TypeId, d *Declaration, aliasOf map[TypeId]TypeId) *ResolvedBinding {
	deps := injectedDepsOf(d.Kind)
	if bt, ok := d.Kind.(BindToBinding); ok {
		impl := aliasOf[bt.Interface]
		if d.Multibind {
			// aliasOf only covers normal BindTo declarations; a
			// multibinding contribution follows its own Impl.
			impl = bt.Impl
			if r, ok := aliasOf[impl]; ok {
				impl = r
			}
		}
		deps = []TypeId{impl}
	}
	return &ResolvedBinding{
		Target:      target,
		Kind:        d.Kind,
		Deps:        deps,
		SourceIndex: d.SourceIndex,
		Caller:      d.Caller,
	}
}
