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

// Package compiler ties package parser and package codegen together behind
// a three-call contract: New, SetDebug, Compile.
package compiler

import (
	"fmt"
	"strings"

	"github.com/Callum-Irving/stackc/codegen"
	"github.com/Callum-Irving/stackc/parser"
)

// Compiler turns stackc source text into NASM assembly.
type Compiler struct {
	name    string
	source  string
	debug   bool
	emitter codegen.Emitter
}

// New returns a Compiler for source, identified as name in error messages
// (typically the input file path).
func New(name, source string) *Compiler {
	return &Compiler{name: name, source: source}
}

// SetDebug toggles a leading comment banner in the emitted assembly
// reporting source size and function count, in lieu of a debugger-trap
// instruction (this language has no breakpoint convention).
func (c *Compiler) SetDebug(debug bool) *Compiler {
	c.debug = debug
	return c
}

// Compile parses c's source and lowers it to assembly. The returned error,
// when non-nil, is one of compileerr.SyntaxError, UnknownIdentifierError or
// ErrNoMain.
func (c *Compiler) Compile() (string, error) {
	prog, err := parser.Parse(c.name, strings.NewReader(c.source))
	if err != nil {
		return "", err
	}

	var out strings.Builder
	if c.debug {
		fmt.Fprintf(&out, "; debug: %s, %d bytes, %d functions\n", c.name, len(c.source), len(prog.FuncOrder))
	}
	if err := c.emitter.Generate(&out, prog); err != nil {
		return "", err
	}
	return out.String(), nil
}
