// Package symtab implements the name-to-binding mapping the IR generator
// stacks by lexical scope (spec.md §4.1). A vector-backed list-of-scopes
// is sufficient — lookup is O(depth·scope-size) but compilation is
// short-lived, exactly as the source's design notes recommend.
package symtab

import (
	"github.com/xyproto/furnc/internal/ctimeval"
	"github.com/xyproto/furnc/internal/typeval"
)

// External identifies a symbol bound to an externally linked runtime
// routine or global (spec.md §3 IRNode.ExternalReadPush64).
type External struct {
	Name        string
	PackageName string
	IsConst     bool
}

// Variable is a single name binding. Exactly one of GlobalPos, StackLoc,
// ConstVal, External identifies how to materialize it (spec.md §3).
type Variable struct {
	Name     string
	Type     typeval.Type
	GlobalPos *int
	StackLoc  *int
	ConstVal  *ctimeval.Value
	External  *External
}

// IsConstant reports whether this variable's value is fully known at
// compile time (a const binding occupies no storage, per spec.md §3).
func (v Variable) IsConstant() bool {
	return v.ConstVal != nil
}

// Scope is an ordered, most-recent-first sequence of variables.
type Scope struct {
	vars []Variable
}

func NewScope() *Scope {
	return &Scope{}
}

// Add pushes a new, most-recently-declared variable into the scope.
func (s *Scope) Add(v Variable) {
	s.vars = append(s.vars, Variable{})
	copy(s.vars[1:], s.vars)
	s.vars[0] = v
}

// Lookup finds the innermost (most recently declared) variable with this
// name, or nil. Duplicate names shadow in declaration order.
func (s *Scope) Lookup(name string) *Variable {
	for i := range s.vars {
		if s.vars[i].Name == name {
			return &s.vars[i]
		}
	}
	return nil
}

// LookupMut is Lookup with a mutable result, for callers that patch a
// binding in place (e.g. backfilling GlobalPos once a global segment
// offset is assigned).
func (s *Scope) LookupMut(name string) *Variable {
	return s.Lookup(name)
}

// Iter returns the scope's variables, most-recent-first.
func (s *Scope) Iter() []Variable {
	return s.vars
}

// LocalsSize returns the total byte size of every local binding in this
// scope (storage-occupying bindings only — constants contribute 0).
func (s *Scope) LocalsSize() int {
	total := 0
	for _, v := range s.vars {
		if v.StackLoc != nil {
			total += v.Type.Size()
		}
	}
	return total
}

// ScopeStack is the generator's stack of open lexical scopes, innermost
// first, plus the dedicated global scope.
type ScopeStack struct {
	global *Scope
	scopes []*Scope
}

func NewScopeStack() *ScopeStack {
	return &ScopeStack{global: NewScope()}
}

// Global returns the dedicated global scope.
func (s *ScopeStack) Global() *Scope { return s.global }

// HasLocalScope reports whether any local scope is currently open.
func (s *ScopeStack) HasLocalScope() bool {
	return len(s.scopes) > 0
}

// OpenScope pushes a new innermost local scope.
func (s *ScopeStack) OpenScope() {
	s.scopes = append(s.scopes, NewScope())
}

// CloseScope pops the innermost local scope and returns the total byte
// size of its locals — the caller emits a matching StackDealloc for it
// (spec.md §4.1).
func (s *ScopeStack) CloseScope() int {
	n := len(s.scopes)
	top := s.scopes[n-1]
	s.scopes = s.scopes[:n-1]
	return top.LocalsSize()
}

// FrontScope returns the innermost open local scope, or nil.
func (s *ScopeStack) FrontScope() *Scope {
	if len(s.scopes) == 0 {
		return nil
	}
	return s.scopes[len(s.scopes)-1]
}

// Add adds a binding to the innermost local scope if one is open,
// otherwise to the global scope.
func (s *ScopeStack) Add(v Variable) {
	if front := s.FrontScope(); front != nil {
		front.Add(v)
	} else {
		s.global.Add(v)
	}
}

// Lookup searches innermost scope outward, then the global scope.
func (s *ScopeStack) Lookup(name string) *Variable {
	for i := len(s.scopes) - 1; i >= 0; i-- {
		if v := s.scopes[i].Lookup(name); v != nil {
			return v
		}
	}
	return s.global.Lookup(name)
}
