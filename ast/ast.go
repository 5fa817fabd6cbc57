// This file is part of stackc - https://github.com/Callum-Irving/stackc
//
// Copyright 2016 Denis Bernard <db047h@gmail.com>
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package ast holds the program representation produced by package parser
// and consumed read-only by package codegen.
//
// Supported surface (see package parser for the grammar):
//
//	const NAME +42          scalar integer constant (sign required)
//	const NAME "hi\n"       scalar string constant
//	const NAME 16           array: reserves 16 bytes
//
//	name (int ptr) (int) { ... }   function: input sig, output sig, body
//
// Statements inside a body are one of: an integer or string literal, an
// identifier (resolved at codegen time to a constant, array, function or
// built-in), a math op (+ - * / %), a comparison op (=? != > <), or an
// if/else block.
package ast

import (
	"fmt"
	"text/scanner"
)

// Type is a primitive stack-signature type.
type Type int

// The only two primitive types a function signature may name.
const (
	TypeInt Type = iota
	TypePtr
)

func (t Type) String() string {
	if t == TypePtr {
		return "ptr"
	}
	return "int"
}

// Program is a compilation unit: functions, scalar constants and byte-count
// array reservations, keyed by name. The three name spaces are disjoint; the
// parser rejects a name reused across them.
type Program struct {
	Functions map[string]*Function
	Constants map[string]Literal
	Arrays    map[string]int

	// FuncOrder, ConstOrder and ArrayOrder record insertion order so that
	// codegen emits .data/.bss entries deterministically, byte-for-byte
	// reproducible across runs.
	FuncOrder  []string
	ConstOrder []string
	ArrayOrder []string
}

// NewProgram returns an empty, ready-to-populate Program.
func NewProgram() *Program {
	return &Program{
		Functions: make(map[string]*Function),
		Constants: make(map[string]Literal),
		Arrays:    make(map[string]int),
	}
}

// AddFunction registers f, recording insertion order.
func (p *Program) AddFunction(f *Function) {
	if _, ok := p.Functions[f.Name]; !ok {
		p.FuncOrder = append(p.FuncOrder, f.Name)
	}
	p.Functions[f.Name] = f
}

// AddConstant registers a scalar constant, recording insertion order.
func (p *Program) AddConstant(name string, lit Literal) {
	if _, ok := p.Constants[name]; !ok {
		p.ConstOrder = append(p.ConstOrder, name)
	}
	p.Constants[name] = lit
}

// AddArray registers an array (byte reservation), recording insertion order.
func (p *Program) AddArray(name string, bytes int) {
	if _, ok := p.Arrays[name]; !ok {
		p.ArrayOrder = append(p.ArrayOrder, name)
	}
	p.Arrays[name] = bytes
}

// Function is a named, typed block of statements.
type Function struct {
	Name   string
	Input  []Type
	Output []Type
	Body   Expr
}

// Literal is either a signed 64-bit integer or a raw (verbatim, including
// quotes and escapes) string token. Escape decoding is deferred to codegen.
type Literal struct {
	IsString bool
	Int      int64
	Raw      string // only meaningful when IsString
}

// IntLiteral builds an integer Literal.
func IntLiteral(v int64) Literal { return Literal{Int: v} }

// StringLiteral builds a string Literal from its raw quoted source text.
func StringLiteral(raw string) Literal { return Literal{IsString: true, Raw: raw} }

func (l Literal) String() string {
	if l.IsString {
		return l.Raw
	}
	return fmt.Sprintf("%d", l.Int)
}

// Expr is an ordered sequence of statements: a block.
type Expr []Stmt

// Stmt is implemented by LitStmt, IdentStmt, MathOp, ComparisonOp and IfStmt.
type Stmt interface {
	stmt()
}

// LitStmt pushes a literal value.
type LitStmt struct {
	Value Literal
}

func (LitStmt) stmt() {}

// IdentStmt names a constant, array, function or built-in. Pos is the
// identifier's source position, reported back by codegen if name resolves
// to nothing.
type IdentStmt struct {
	Name string
	Pos  scanner.Position
}

func (IdentStmt) stmt() {}

// MathOpKind enumerates the arithmetic operators.
type MathOpKind byte

const (
	OpAdd MathOpKind = '+'
	OpSub MathOpKind = '-'
	OpMul MathOpKind = '*'
	OpDiv MathOpKind = '/'
	OpMod MathOpKind = '%'
)

// MathOp is one of +, -, *, /, %.
type MathOp struct {
	Kind MathOpKind
}

func (MathOp) stmt() {}

// ComparisonOpKind enumerates the comparison operators.
type ComparisonOpKind byte

// Comparison operator kinds. Each produces 0 or 1 on the stack.
const (
	CmpEq ComparisonOpKind = iota
	CmpNeq
	CmpGt
	CmpLt
)

func (k ComparisonOpKind) String() string {
	switch k {
	case CmpEq:
		return "=?"
	case CmpNeq:
		return "!="
	case CmpGt:
		return ">"
	case CmpLt:
		return "<"
	}
	return "?"
}

// ComparisonOp is one of =?, !=, >, <.
type ComparisonOp struct {
	Kind ComparisonOpKind
}

func (ComparisonOp) stmt() {}

// IfStmt is `if { Then } else { Else }`, with Else optional (nil).
type IfStmt struct {
	Then Expr
	Else Expr // nil when no else-block
}

func (IfStmt) stmt() {}

// BuiltinNames are the six predefined words every program may call without
// declaring them.
var BuiltinNames = map[string]bool{
	"puts":  true,
	"print": true,
	"drop":  true,
	"dup":   true,
	"swap":  true,
	"read":  true,
}
