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

// Package driver invokes the external toolchain (nasm, gcc) that turns the
// assembly emitted by package codegen into a native executable. None of
// this is part of the compiler core; it is orchestration glue.
package driver

import (
	"bytes"
	"os"
	"os/exec"
	"strings"

	"github.com/Callum-Irving/stackc/compileerr"
)

// Options controls how Build invokes the external toolchain.
type Options struct {
	// Assembler and Linker override the nasm/gcc binaries. Empty means
	// "nasm" and "gcc" respectively, resolved via PATH.
	Assembler string
	Linker    string

	// KeepAsm, if false, removes the intermediate .asm file once the
	// executable has been linked successfully.
	KeepAsm bool
}

// Build assembles and links asmPath (expected to end in ".asm") into the
// executable at outPath, running nasm then gcc. Tool stdout is passed
// through to the driver's own stdout. Tool stderr is captured and written
// to the driver's stderr only when the tool fails; a non-zero exit from
// either tool is reported as a compileerr.ToolchainError carrying the
// captured stderr.
func Build(asmPath, outPath string, opts Options) error {
	asm := opts.Assembler
	if asm == "" {
		asm = "nasm"
	}
	linker := opts.Linker
	if linker == "" {
		linker = "gcc"
	}

	objPath := strings.TrimSuffix(asmPath, ".asm") + ".o"

	if err := run(asm, []string{"-felf64", "-g", "-o", objPath, asmPath}); err != nil {
		return err
	}
	if err := run(linker, []string{"-no-pie", "-g", "-o", outPath, objPath}); err != nil {
		return err
	}

	if !opts.KeepAsm {
		if err := os.Remove(asmPath); err != nil {
			return compileerr.NewIOError("remove intermediate assembly", err)
		}
	}
	return nil
}

func run(name string, args []string) error {
	cmd := exec.Command(name, args...)
	cmd.Stdout = os.Stdout
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		os.Stderr.Write(stderr.Bytes())
		return compileerr.NewToolchainError(append([]string{name}, args...), stderr.String(), err)
	}
	return nil
}
