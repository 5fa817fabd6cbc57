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

// Command stackc compiles a stackc source file to a native x86-64 Linux
// executable: parse, generate assembly, then invoke nasm and gcc.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Callum-Irving/stackc/compileerr"
	"github.com/Callum-Irving/stackc/compiler"
	"github.com/Callum-Irving/stackc/driver"
	"github.com/pkg/errors"
)

const version = "0.1.0"

var (
	outFileName string
	asmOnly     bool
	keepAsm     bool
	debug       bool
	showVersion bool
	nasmPath    string
	gccPath     string
)

func atExit(err error) {
	if err == nil {
		return
	}
	if !debug {
		fmt.Fprintf(os.Stderr, "stackc: %v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stderr, "stackc: %+v\n", err)
	os.Exit(1)
}

func main() {
	var err error
	defer func() { atExit(err) }()

	flag.StringVar(&outFileName, "o", "", "output `path` for the linked executable")
	flag.BoolVar(&asmOnly, "S", false, "stop after emitting assembly")
	flag.BoolVar(&keepAsm, "keep-asm", false, "keep the intermediate .asm file")
	flag.BoolVar(&debug, "debug", false, "enable debug diagnostics and a build-info comment banner")
	flag.BoolVar(&showVersion, "version", false, "print version and exit")
	flag.StringVar(&nasmPath, "nasm", "", "override the nasm binary used to assemble")
	flag.StringVar(&gccPath, "gcc", "", "override the gcc binary used to link")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] source.stc\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if showVersion {
		fmt.Println("stackc", version)
		return
	}

	if flag.NArg() != 1 {
		flag.Usage()
		err = errors.New("expected exactly one source file argument")
		return
	}

	srcPath := flag.Arg(0)
	src, readErr := os.ReadFile(srcPath)
	if readErr != nil {
		flag.Usage()
		err = compileerr.NewIOError("read source", readErr)
		return
	}

	c := compiler.New(srcPath, string(src)).SetDebug(debug)
	asm, compileErr := c.Compile()
	if compileErr != nil {
		err = compileErr
		return
	}

	base := strings.TrimSuffix(filepath.Base(srcPath), filepath.Ext(srcPath))
	asmPath := base + ".asm"
	if err = os.WriteFile(asmPath, []byte(asm), 0o644); err != nil {
		err = compileerr.NewIOError("write assembly", err)
		return
	}

	if asmOnly {
		return
	}

	out := outFileName
	if out == "" {
		out = base
	}
	err = driver.Build(asmPath, out, driver.Options{
		Assembler: nasmPath,
		Linker:    gccPath,
		KeepAsm:   keepAsm,
	})
}
