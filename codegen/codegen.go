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

// Package codegen lowers an *ast.Program into NASM-syntax x86-64 assembly
// implementing the split-stack calling convention: the parameter stack is
// the machine stack (rsp), the return stack is a dedicated BSS buffer whose
// top is kept at [ret_sp]. See Emitter.Generate.
package codegen

import (
	"fmt"
	"io"
	"strings"
	"text/scanner"

	"github.com/Callum-Irving/stackc/ast"
	"github.com/Callum-Irving/stackc/compileerr"
	"github.com/Callum-Irving/stackc/internal/ioerr"
)

// DefaultRetStackSize is the number of 64-bit slots reserved for the return
// stack when an Emitter does not override it.
const DefaultRetStackSize = 256

// Emitter lowers programs to assembly. The zero value is usable and defaults
// RetStackSize to DefaultRetStackSize on first use. An Emitter holds no
// per-generation state, so a single value may be shared by concurrent calls
// to Generate.
type Emitter struct {
	// RetStackSize overrides the number of slots reserved for the return
	// stack. Zero means DefaultRetStackSize.
	RetStackSize int
}

// Generate writes prog's assembly to w. All per-generation state (string and
// if-label counters) lives in a value local to this call, so concurrent
// calls against the same Emitter never interfere.
func (e *Emitter) Generate(w io.Writer, prog *ast.Program) error {
	retStackSize := e.RetStackSize
	if retStackSize == 0 {
		retStackSize = DefaultRetStackSize
	}

	g := &gen{
		prog:         prog,
		w:            ioerr.New(w),
		retStackSize: retStackSize,
	}
	return g.run()
}

// gen holds the counters threaded through one Generate call: the string
// literal counter and the if-label counter.
type gen struct {
	prog         *ast.Program
	w            *ioerr.Writer
	retStackSize int

	strs      []string // raw string tokens, in encounter order -> str_N
	ifCounter int
	err       error
}

func (g *gen) run() error {
	if _, ok := g.prog.Functions["main"]; !ok {
		return compileerr.ErrNoMain
	}

	fmt.Fprintln(g.w, "global main")
	fmt.Fprintln(g.w, "extern fputs, printf, fflush, stdout, malloc, free")
	fmt.Fprintln(g.w)

	fmt.Fprintln(g.w, "section .text")
	for _, name := range g.prog.FuncOrder {
		g.emitFunction(g.prog.Functions[name])
		if g.err != nil {
			return g.err
		}
	}

	fmt.Fprintln(g.w)
	fmt.Fprintln(g.w, "section .data")
	for _, name := range g.prog.ConstOrder {
		g.emitConstant(name, g.prog.Constants[name])
	}
	for i, raw := range g.strs {
		fmt.Fprintf(g.w, "str_%d: db %s\n", i, escapeString(raw))
	}
	fmt.Fprintln(g.w, `fint: db "%d", 0`)

	fmt.Fprintln(g.w)
	fmt.Fprintln(g.w, "section .bss")
	fmt.Fprintln(g.w, "ret_sp: resq 1")
	fmt.Fprintf(g.w, "ret_stack: resq %d\n", g.retStackSize)
	fmt.Fprintln(g.w, "ret_stack_end: equ $")
	for _, name := range g.prog.ArrayOrder {
		fmt.Fprintf(g.w, "%s: resb %d\n", name, g.prog.Arrays[name])
	}

	if g.err != nil {
		return g.err
	}
	return compileerr.NewIOError("write assembly", g.w.Err)
}

func (g *gen) emitConstant(name string, lit ast.Literal) {
	if lit.IsString {
		fmt.Fprintf(g.w, "%s: db %s\n", name, escapeString(lit.Raw))
		return
	}
	fmt.Fprintf(g.w, "%s: %d\n", name, lit.Int)
}

func (g *gen) emitFunction(fn *ast.Function) {
	fmt.Fprintf(g.w, "%s:\n", fn.Name)
	if fn.Name == "main" {
		fmt.Fprintln(g.w, "    mov qword [ret_sp], ret_stack_end")
	} else {
		fmt.Fprintln(g.w, "    mov [ret_sp], rsp")
		fmt.Fprintln(g.w, "    mov rsp, rax")
	}

	g.emitExpr(fn.Body)

	if fn.Name == "main" {
		fmt.Fprintln(g.w, "    xor eax, eax")
		fmt.Fprintln(g.w, "    ret")
	} else {
		fmt.Fprintln(g.w, "    mov rax, rsp")
		fmt.Fprintln(g.w, "    mov rsp, [ret_sp]")
		fmt.Fprintln(g.w, "    ret")
	}
}

func (g *gen) emitExpr(e ast.Expr) {
	for _, s := range e {
		g.emitStmt(s)
		if g.err != nil {
			return
		}
	}
}

func (g *gen) emitStmt(s ast.Stmt) {
	switch v := s.(type) {
	case ast.LitStmt:
		g.emitLiteral(v.Value)
	case ast.IdentStmt:
		g.emitIdent(v.Name, v.Pos)
	case ast.MathOp:
		g.emitMathOp(v.Kind)
	case ast.ComparisonOp:
		g.emitComparisonOp(v.Kind)
	case ast.IfStmt:
		g.emitIf(v)
	default:
		g.err = fmt.Errorf("codegen: unhandled statement type %T", s)
	}
}

func (g *gen) emitLiteral(l ast.Literal) {
	if l.IsString {
		n := len(g.strs)
		g.strs = append(g.strs, l.Raw)
		fmt.Fprintf(g.w, "    push str_%d\n", n)
		return
	}
	fmt.Fprintf(g.w, "    push %d\n", l.Int)
}

func (g *gen) emitMathOp(k ast.MathOpKind) {
	switch k {
	case ast.OpAdd:
		g.asm("pop rbx", "pop rax", "add rax, rbx", "push rax")
	case ast.OpSub:
		g.asm("pop rbx", "pop rax", "sub rax, rbx", "push rax")
	case ast.OpMul:
		g.asm("pop rbx", "pop rax", "imul rbx", "push rax")
	case ast.OpDiv:
		// No sign-extension of rax into rdx before idiv: preserved exactly
		// as specified, not fixed. Wrong for negative or large dividends.
		g.asm("pop rbx", "pop rax", "idiv rbx", "push rax")
	case ast.OpMod:
		g.asm("xor rdx, rdx", "pop rbx", "pop rax", "idiv rbx", "push rdx")
	default:
		g.err = fmt.Errorf("codegen: unknown math op %q", byte(k))
	}
}

func (g *gen) emitComparisonOp(k ast.ComparisonOpKind) {
	var set string
	switch k {
	case ast.CmpEq:
		set = "sete"
	case ast.CmpNeq:
		set = "setne"
	case ast.CmpGt:
		set = "setg"
	case ast.CmpLt:
		set = "setl"
	default:
		g.err = fmt.Errorf("codegen: unknown comparison op %v", k)
		return
	}
	g.asm("xor rax, rax", "pop rcx", "pop rbx", "cmp rbx, rcx", set+" al", "push rax")
}

func (g *gen) emitIf(v ast.IfStmt) {
	n := g.ifCounter
	g.ifCounter++

	g.asm("pop rax", "cmp rax, 0")
	fmt.Fprintf(g.w, "    je IF_%d\n", n)
	g.emitExpr(v.Then)
	if g.err != nil {
		return
	}
	if v.Else != nil {
		fmt.Fprintf(g.w, "    jmp ELSE_%d\n", n)
	}
	fmt.Fprintf(g.w, "IF_%d:\n", n)
	if v.Else != nil {
		g.emitExpr(v.Else)
		if g.err != nil {
			return
		}
		fmt.Fprintf(g.w, "ELSE_%d:\n", n)
	}
}

// emitIdent resolves name with priority scalar constant -> array -> user
// function -> built-in -> error.
func (g *gen) emitIdent(name string, pos scanner.Position) {
	if lit, ok := g.prog.Constants[name]; ok {
		if lit.IsString {
			fmt.Fprintf(g.w, "    push %s\n", name)
		} else {
			fmt.Fprintf(g.w, "    push qword [%s]\n", name)
		}
		return
	}
	if _, ok := g.prog.Arrays[name]; ok {
		fmt.Fprintf(g.w, "    push %s\n", name)
		return
	}
	if _, ok := g.prog.Functions[name]; ok {
		g.asm("mov rax, rsp", "mov rsp, [ret_sp]")
		fmt.Fprintf(g.w, "    call %s\n", name)
		g.asm("mov [ret_sp], rsp", "mov rsp, rax")
		return
	}
	if ast.BuiltinNames[name] {
		g.emitBuiltin(name)
		return
	}
	g.err = &compileerr.UnknownIdentifierError{Name: name, Pos: pos}
}

func (g *gen) emitBuiltin(name string) {
	switch name {
	case "dup":
		g.asm("pop rax", "push rax", "push rax")
	case "drop":
		g.asm("pop rax")
	case "swap":
		g.asm("pop rax", "pop rbx", "push rax", "push rbx")
	case "puts":
		g.asm("pop rdi", "mov rsi, [stdout]", "call fputs", "mov rdi, [stdout]", "call fflush")
	case "print":
		g.asm("mov rdi, fint", "pop rsi", "mov al, 0", "call printf")
	case "read":
		g.asm("mov rax, 0", "mov rdi, 0", "pop rdx", "pop rsi", "syscall", "push rax")
	default:
		g.err = fmt.Errorf("codegen: unhandled built-in %q", name)
	}
}

// asm writes each instruction on its own indented line.
func (g *gen) asm(lines ...string) {
	for _, l := range lines {
		fmt.Fprintf(g.w, "    %s\n", l)
	}
}

// escapeString turns a raw quoted source token (quotes included) into a
// NASM db initializer: a trailing \n" becomes ", 10; remaining \n
// occurrences split the quoted run around a literal byte 10; a final , 0
// terminates the db line.
func escapeString(raw string) string {
	s := raw
	if strings.HasSuffix(s, `\n"`) {
		s = strings.TrimSuffix(s, `\n"`) + `", 10`
	}
	s = strings.ReplaceAll(s, `\n`, `", 10, "`)
	return s + ", 0"
}
