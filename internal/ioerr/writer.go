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

// Package ioerr provides an io.Writer wrapper that latches its first write
// error, so that callers emitting many small writes (as codegen does, one
// instruction at a time) need only check err once at the end instead of
// after every individual Fprintf.
package ioerr

import "github.com/pkg/errors"

// Writer wraps a destination io.Writer, latching the first error any Write
// returns. Once Err is set, subsequent Write calls are no-ops that return
// the latched error without touching the underlying writer.
type Writer struct {
	W   writer
	Err error
}

type writer interface {
	Write(p []byte) (n int, err error)
}

// New wraps w.
func New(w writer) *Writer {
	return &Writer{W: w}
}

func (w *Writer) Write(p []byte) (n int, err error) {
	if w.Err != nil {
		return 0, w.Err
	}
	n, err = w.W.Write(p)
	if err != nil {
		w.Err = errors.Wrap(err, "write failed")
	}
	return n, err
}
