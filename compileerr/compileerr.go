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

// Package compileerr holds the error taxonomy shared by the parser,
// codegen, compiler and driver packages: SyntaxError, UnknownIdentifierError,
// IOError and ToolchainError. None of them are recoverable; the compiler has
// no warning category.
package compileerr

import (
	"fmt"
	"strings"
	"text/scanner"

	"github.com/pkg/errors"
)

const maxErrors = 10

// ErrorItem is a single syntax complaint at a source position.
type ErrorItem struct {
	Pos scanner.Position
	Msg string
}

func (e ErrorItem) String() string {
	return fmt.Sprintf("%s: %s", e.Pos, e.Msg)
}

// SyntaxError accumulates grammar rejections and bad signature tokens, up to
// maxErrors entries. Reported with source position; fatal.
type SyntaxError []ErrorItem

func (e SyntaxError) Error() string {
	l := make([]string, 0, len(e))
	for _, i := range e {
		l = append(l, i.String())
	}
	return strings.Join(l, "\n")
}

// Full is true once the list has reached the reporting cap and the parser
// should stop accumulating further errors.
func (e SyntaxError) Full() bool { return len(e) >= maxErrors }

// Append returns e with a new item recorded at pos.
func (e SyntaxError) Append(pos scanner.Position, msg string) SyntaxError {
	return append(e, ErrorItem{Pos: pos, Msg: msg})
}

// UnknownIdentifierError is raised when a statement names something that is
// not a scalar constant, array, user function or built-in.
type UnknownIdentifierError struct {
	Name string
	Pos  scanner.Position
}

func (e *UnknownIdentifierError) Error() string {
	return fmt.Sprintf("%s: unknown identifier %q", e.Pos, e.Name)
}

// ErrNoMain is returned by codegen when a Program has no function named
// "main"; there is nothing for the linker to call into.
var ErrNoMain = errors.New("no function named \"main\"")

// IOError wraps a failure to read the source file, or to write or flush the
// generated assembly.
type IOError struct {
	Op  string
	Err error
}

func (e *IOError) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *IOError) Unwrap() error { return e.Err }

// NewIOError wraps err with the phase description op, e.g. "read source",
// "write assembly", "flush assembly".
func NewIOError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &IOError{Op: op, Err: errors.Wrap(err, op)}
}

// ToolchainError reports a non-zero exit from the assembler or linker.
type ToolchainError struct {
	Cmd    []string
	Stderr string
	Err    error
}

func (e *ToolchainError) Error() string {
	msg := fmt.Sprintf("%s: %v", strings.Join(e.Cmd, " "), e.Err)
	if e.Stderr != "" {
		msg += "\n" + e.Stderr
	}
	return msg
}

func (e *ToolchainError) Unwrap() error { return e.Err }

// NewToolchainError wraps the failure of an invocation of cmd with its
// captured stderr.
func NewToolchainError(cmd []string, stderr string, err error) error {
	return &ToolchainError{Cmd: cmd, Stderr: stderr, Err: errors.Wrap(err, "toolchain invocation failed")}
}
