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

package parser

import (
	"bytes"
	"strings"
	"testing"

	"github.com/Callum-Irving/stackc/ast"
)

func mustParse(t *testing.T, src string) *ast.Program {
	t.Helper()
	prog, err := Parse("test", strings.NewReader(src))
	if err != nil {
		t.Fatalf("Parse(%q): %v", src, err)
	}
	return prog
}

func TestParse_function(t *testing.T) {
	prog := mustParse(t, `main (int) (int) { 34 35 + print }`)
	fn, ok := prog.Functions["main"]
	if !ok {
		t.Fatal("main not registered")
	}
	if len(fn.Input) != 1 || fn.Input[0] != ast.TypeInt {
		t.Fatalf("input signature = %v", fn.Input)
	}
	if len(fn.Output) != 1 || fn.Output[0] != ast.TypeInt {
		t.Fatalf("output signature = %v", fn.Output)
	}
	if len(fn.Body) != 4 {
		t.Fatalf("body length = %d, want 4", len(fn.Body))
	}
	if _, ok := fn.Body[2].(ast.MathOp); !ok {
		t.Fatalf("body[2] = %T, want MathOp", fn.Body[2])
	}
}

// S3: a bare-looking RHS that carries an explicit sign is a scalar
// constant, not an array byte-count (see the grammar note in parser.go for
// why the sign is the chosen disambiguator).
func TestParse_scalarConstant(t *testing.T) {
	prog := mustParse(t, `const N +42`)
	lit, ok := prog.Constants["N"]
	if !ok {
		t.Fatal("N not registered as a constant")
	}
	if lit.IsString || lit.Int != 42 {
		t.Fatalf("N = %+v, want scalar int 42", lit)
	}
	if _, ok := prog.Arrays["N"]; ok {
		t.Fatal("N should not also be an array")
	}
}

// S4: a bare unsigned integer RHS is an array byte-count.
func TestParse_arrayConstant(t *testing.T) {
	prog := mustParse(t, `const BUF 16`)
	n, ok := prog.Arrays["BUF"]
	if !ok {
		t.Fatal("BUF not registered as an array")
	}
	if n != 16 {
		t.Fatalf("BUF = %d, want 16", n)
	}
	if _, ok := prog.Constants["BUF"]; ok {
		t.Fatal("BUF should not also be a scalar constant")
	}
}

func TestParse_stringConstant(t *testing.T) {
	prog := mustParse(t, `const GREETING "hi\n"`)
	lit, ok := prog.Constants["GREETING"]
	if !ok || !lit.IsString {
		t.Fatalf("GREETING = %+v, want scalar string", lit)
	}
	if lit.Raw != `"hi\n"` {
		t.Fatalf("GREETING raw = %q", lit.Raw)
	}
}

func TestParse_ifElse(t *testing.T) {
	prog := mustParse(t, `main () () { 1 0 =? if { 10 print } else { 20 print } }`)
	fn := prog.Functions["main"]
	if len(fn.Body) != 4 {
		t.Fatalf("body length = %d, want 4 (1, 0, =?, if)", len(fn.Body))
	}
	ifs, ok := fn.Body[3].(ast.IfStmt)
	if !ok {
		t.Fatalf("body[3] = %T, want IfStmt", fn.Body[3])
	}
	if len(ifs.Then) != 2 || len(ifs.Else) != 2 {
		t.Fatalf("then/else lengths = %d/%d, want 2/2", len(ifs.Then), len(ifs.Else))
	}
}

func TestParse_ifNoElse(t *testing.T) {
	prog := mustParse(t, `main () () { dup if { drop } 1 }`)
	fn := prog.Functions["main"]
	if len(fn.Body) != 3 {
		t.Fatalf("body length = %d, want 3", len(fn.Body))
	}
	ifs, ok := fn.Body[1].(ast.IfStmt)
	if !ok {
		t.Fatalf("body[1] = %T, want IfStmt", fn.Body[1])
	}
	if ifs.Else != nil {
		t.Fatalf("else = %v, want nil", ifs.Else)
	}
	// The token following the if's closing brace (the trailing "1" literal)
	// must still land in the enclosing block, not get swallowed.
	if _, ok := fn.Body[2].(ast.LitStmt); !ok {
		t.Fatalf("body[2] = %T, want LitStmt", fn.Body[2])
	}
}

func TestParse_nestedIf(t *testing.T) {
	prog := mustParse(t, `main () () {
		1 if { 2 if { 3 } }
		4 if { 5 }
	}`)
	fn := prog.Functions["main"]
	if len(fn.Body) != 4 {
		t.Fatalf("body length = %d, want 4", len(fn.Body))
	}
	outer1, ok := fn.Body[1].(ast.IfStmt)
	if !ok {
		t.Fatalf("body[1] = %T, want IfStmt", fn.Body[1])
	}
	if len(outer1.Then) != 2 {
		t.Fatalf("outer1.Then length = %d, want 2", len(outer1.Then))
	}
	if _, ok := outer1.Then[1].(ast.IfStmt); !ok {
		t.Fatalf("outer1.Then[1] = %T, want IfStmt", outer1.Then[1])
	}
	if _, ok := fn.Body[3].(ast.IfStmt); !ok {
		t.Fatalf("body[3] = %T, want IfStmt", fn.Body[3])
	}
}

// A name reused across functions/constants/arrays is rejected.
func TestParse_nameCollision(t *testing.T) {
	cases := []string{
		`const X 4
		 const X 8`,
		`const X +1
		 X () () {}`,
		`foo () () {}
		 foo () () {}`,
	}
	for _, src := range cases {
		_, err := Parse("test", strings.NewReader(src))
		if err == nil {
			t.Fatalf("Parse(%q): expected a collision error, got none", src)
		}
	}
}

func TestParse_unknownType(t *testing.T) {
	_, err := Parse("test", strings.NewReader(`f (weird) () {}`))
	if err == nil {
		t.Fatal("expected a syntax error for an unknown signature type")
	}
}

// Round-trip: re-parsing a canonical pretty-print of a Program yields a
// structurally equal Program.
func TestParse_roundTrip(t *testing.T) {
	src := `const N +42
const BUF 16
const GREETING "hi\n"
main (int ptr) (int) {
  34 35 +
  if {
    10 print
  } else {
    20 print
  }
  N
  BUF
  GREETING
  swap
  dup
  drop
  read
  =?
  !=
  >
  <
}
`
	prog := mustParse(t, src)

	var buf bytes.Buffer
	if err := prog.Fprint(&buf); err != nil {
		t.Fatalf("Fprint: %v", err)
	}

	reparsed, err := Parse("roundtrip", &buf)
	if err != nil {
		t.Fatalf("re-parse of pretty-print failed: %v\n--- pretty-printed source ---\n%s", err, buf.String())
	}

	var buf2 bytes.Buffer
	if err := reparsed.Fprint(&buf2); err != nil {
		t.Fatalf("Fprint (2nd): %v", err)
	}

	var original bytes.Buffer
	if err := prog.Fprint(&original); err != nil {
		t.Fatalf("Fprint (original): %v", err)
	}
	if original.String() != buf2.String() {
		t.Fatalf("round-trip mismatch:\n--- original ---\n%s\n--- reparsed ---\n%s", original.String(), buf2.String())
	}
}
