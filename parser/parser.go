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

// Package parser turns source text into an *ast.Program.
//
// Grammar:
//
//	program   = { constDecl | funcDecl } ;
//	constDecl = "const" ident value ;
//	value     = string | sign integer | integer ;   (* see note below *)
//	funcDecl  = ident "(" { type } ")" "(" { type } ")" block ;
//	type      = "int" | "ptr" ;
//	block     = "{" { stmt } "}" ;
//	stmt      = integer | string | mathop | cmpop | ident | ifstmt ;
//	ifstmt    = "if" block [ "else" block ] ;
//	mathop    = "+" | "-" | "*" | "/" | "%" ;
//	cmpop     = "=?" | "!=" | ">" | "<" ;
//
// Note on `value`: a constant declaration whose right-hand side carries an
// explicit sign (`+42`, `-3`) or is a string literal is a scalar constant; a
// bare (unsigned) integer is an array byte-count. Both forms are plain
// digits once an optional sign is stripped, so the sign is the only lexical
// marker available to tell the two apart; this reading was chosen over
// treating every integer right-hand side as an array, since that would
// leave no way to ever declare a negative or non-trivial scalar constant.
package parser

import (
	"fmt"
	"io"
	"strconv"
	"text/scanner"

	"github.com/Callum-Irving/stackc/ast"
	"github.com/Callum-Irving/stackc/compileerr"
)

// defSite records where a name was first bound, to detect collisions across
// the three disjoint name spaces (functions, constants, arrays).
type defSite struct {
	kind string // "function", "constant" or "array"
	pos  scanner.Position
}

type parser struct {
	s    scanner.Scanner
	errs compileerr.SyntaxError
	prog *ast.Program
	defs map[string]defSite

	// pending holds a token consumed by ifStmt while probing for "else" that
	// turned out to belong to the enclosing block. text/scanner has no
	// pushback, so the next call to nextTok returns it instead of scanning.
	pending    bool
	pendingTok rune
}

// nextTok returns the next token, preferring one stashed by ifStmt.
func (p *parser) nextTok() rune {
	if p.pending {
		p.pending = false
		return p.pendingTok
	}
	return p.s.Scan()
}

// Parse reads source text named name (used only in error messages) from r
// and returns the resulting Program. The returned error, if non-nil, is
// always a compileerr.SyntaxError.
func Parse(name string, r io.Reader) (*ast.Program, error) {
	p := &parser{prog: ast.NewProgram(), defs: make(map[string]defSite)}
	p.s.Init(r)
	p.s.Filename = name
	p.s.Mode = scanner.ScanIdents | scanner.ScanInts | scanner.ScanStrings
	p.s.Error = func(_ *scanner.Scanner, msg string) {
		p.error(p.s.Position, msg)
	}

	tok := p.s.Scan()
	for tok != scanner.EOF && !p.errs.Full() {
		p.topLevel(tok)
		tok = p.s.Scan()
	}

	if len(p.errs) > 0 {
		return nil, p.errs
	}
	return p.prog, nil
}

func (p *parser) error(pos scanner.Position, format string, args ...interface{}) {
	if p.errs.Full() {
		return
	}
	p.errs = p.errs.Append(pos, fmt.Sprintf(format, args...))
}

// register records name's definition site, flagging a cross-category or
// same-category collision: constants, arrays and functions share one name
// space.
func (p *parser) register(name string, kind string, pos scanner.Position) bool {
	if prev, ok := p.defs[name]; ok {
		p.error(pos, "%s %s already defined as %s, previous definition here: %s", kind, name, prev.kind, prev.pos)
		return false
	}
	p.defs[name] = defSite{kind: kind, pos: pos}
	return true
}

func (p *parser) topLevel(tok rune) {
	if tok != scanner.Ident {
		p.error(p.s.Position, "unexpected token %q, expected a declaration", p.s.TokenText())
		return
	}
	if p.s.TokenText() == "const" {
		p.constDecl()
		return
	}
	p.funcDecl(p.s.TokenText())
}

func (p *parser) constDecl() {
	pos := p.s.Position
	if p.s.Scan() != scanner.Ident {
		p.error(pos, "expected constant name after 'const'")
		return
	}
	name := p.s.TokenText()
	namePos := p.s.Position

	tok := p.s.Scan()
	switch tok {
	case scanner.String:
		if p.register(name, "constant", namePos) {
			p.prog.AddConstant(name, ast.StringLiteral(p.s.TokenText()))
		}
	case '+', '-':
		sign := tok
		if p.s.Scan() != scanner.Int {
			p.error(p.s.Position, "expected integer after sign in constant declaration")
			return
		}
		n := mustParseInt(p.s.TokenText())
		if sign == '-' {
			n = -n
		}
		if p.register(name, "constant", namePos) {
			p.prog.AddConstant(name, ast.IntLiteral(n))
		}
	case scanner.Int:
		n := mustParseInt(p.s.TokenText())
		if n < 0 {
			p.error(p.s.Position, "array byte count must not be negative: %d", n)
			return
		}
		if p.register(name, "array", namePos) {
			p.prog.AddArray(name, int(n))
		}
	default:
		p.error(p.s.Position, "expected a literal or integer after constant name, got %q", p.s.TokenText())
	}
}

func (p *parser) funcDecl(name string) {
	namePos := p.s.Position
	fn := &ast.Function{Name: name}

	if p.s.Scan() != '(' {
		p.error(p.s.Position, "expected '(' to start input signature")
		return
	}
	fn.Input = p.typeList()

	if p.s.Scan() != '(' {
		p.error(p.s.Position, "expected '(' to start output signature")
		return
	}
	fn.Output = p.typeList()

	if p.s.Scan() != '{' {
		p.error(p.s.Position, "expected '{' to start function body")
		return
	}
	fn.Body = p.block()

	if p.register(name, "function", namePos) {
		p.prog.AddFunction(fn)
	}
}

// typeList reads identifiers until ')', validating each against int/ptr.
func (p *parser) typeList() []ast.Type {
	var types []ast.Type
	for {
		tok := p.s.Scan()
		if tok == ')' {
			return types
		}
		if tok != scanner.Ident {
			p.error(p.s.Position, "expected a type name or ')', got %q", p.s.TokenText())
			return types
		}
		switch p.s.TokenText() {
		case "int":
			types = append(types, ast.TypeInt)
		case "ptr":
			types = append(types, ast.TypePtr)
		default:
			p.error(p.s.Position, "unknown type %q, expected 'int' or 'ptr'", p.s.TokenText())
		}
	}
}

// block parses statements up to and including the closing '}'.
func (p *parser) block() ast.Expr {
	var expr ast.Expr
	for {
		if p.errs.Full() {
			return expr
		}
		tok := p.nextTok()
		if tok == '}' || tok == scanner.EOF {
			if tok == scanner.EOF {
				p.error(p.s.Position, "unexpected end of input, expected '}'")
			}
			return expr
		}
		if s, ok := p.stmt(tok); ok {
			expr = append(expr, s)
		}
	}
}

func (p *parser) stmt(tok rune) (ast.Stmt, bool) {
	switch tok {
	case scanner.Int:
		return ast.LitStmt{Value: ast.IntLiteral(mustParseInt(p.s.TokenText()))}, true
	case scanner.String:
		return ast.LitStmt{Value: ast.StringLiteral(p.s.TokenText())}, true
	case '-':
		if isDigit(p.s.Peek()) {
			if p.s.Scan() != scanner.Int {
				p.error(p.s.Position, "expected integer after '-'")
				return nil, false
			}
			return ast.LitStmt{Value: ast.IntLiteral(-mustParseInt(p.s.TokenText()))}, true
		}
		return ast.MathOp{Kind: ast.OpSub}, true
	case '+':
		return ast.MathOp{Kind: ast.OpAdd}, true
	case '*':
		return ast.MathOp{Kind: ast.OpMul}, true
	case '/':
		return ast.MathOp{Kind: ast.OpDiv}, true
	case '%':
		return ast.MathOp{Kind: ast.OpMod}, true
	case '=':
		if p.s.Peek() != '?' {
			p.error(p.s.Position, "expected '=?' comparison operator")
			return nil, false
		}
		p.s.Next()
		return ast.ComparisonOp{Kind: ast.CmpEq}, true
	case '!':
		if p.s.Peek() != '=' {
			p.error(p.s.Position, "expected '!=' comparison operator")
			return nil, false
		}
		p.s.Next()
		return ast.ComparisonOp{Kind: ast.CmpNeq}, true
	case '>':
		return ast.ComparisonOp{Kind: ast.CmpGt}, true
	case '<':
		return ast.ComparisonOp{Kind: ast.CmpLt}, true
	case scanner.Ident:
		name := p.s.TokenText()
		if name == "if" {
			return p.ifStmt(), true
		}
		return ast.IdentStmt{Name: name, Pos: p.s.Position}, true
	default:
		p.error(p.s.Position, "unexpected token %q in statement", p.s.TokenText())
		return nil, false
	}
}

func (p *parser) ifStmt() ast.Stmt {
	if p.s.Scan() != '{' {
		p.error(p.s.Position, "expected '{' after 'if'")
		return ast.IfStmt{}
	}
	st := ast.IfStmt{Then: p.block()}

	// peek for "else" without permanently consuming on mismatch: text/scanner
	// has no token pushback, so we scan and, if it's not "else", hand the
	// token back to the enclosing block through p.pending (below).
	tok := p.s.Scan()
	if tok == scanner.Ident && p.s.TokenText() == "else" {
		if p.s.Scan() != '{' {
			p.error(p.s.Position, "expected '{' after 'else'")
			return st
		}
		st.Else = p.block()
		return st
	}
	// Not an else: this token belongs to the enclosing block. Stash it so
	// the next nextTok() call (from the caller's block() loop) returns it
	// instead of scanning past it.
	p.pending = true
	p.pendingTok = tok
	return st
}

func mustParseInt(s string) int64 {
	n, _ := strconv.ParseInt(s, 10, 64)
	return n
}

func isDigit(ch rune) bool {
	return ch >= '0' && ch <= '9'
}
