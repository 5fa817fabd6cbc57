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

package ast

import (
	"fmt"
	"io"
)

// Fprint writes a canonical, re-parseable rendering of p to w: every
// constant, then every array, then every function in insertion order.
// Re-parsing Fprint's output with package parser must yield a structurally
// equal Program.
func (p *Program) Fprint(w io.Writer) error {
	for _, name := range p.ConstOrder {
		lit := p.Constants[name]
		// A non-negative scalar integer constant needs an explicit '+' on
		// re-print: without it, "const N 42" reparses as a bare integer and
		// lands in the arrays table instead of the constants table (see the
		// grammar note in package parser).
		if !lit.IsString && lit.Int >= 0 {
			if _, err := fmt.Fprintf(w, "const %s +%d\n", name, lit.Int); err != nil {
				return err
			}
			continue
		}
		if _, err := fmt.Fprintf(w, "const %s %s\n", name, lit); err != nil {
			return err
		}
	}
	for _, name := range p.ArrayOrder {
		if _, err := fmt.Fprintf(w, "const %s %d\n", name, p.Arrays[name]); err != nil {
			return err
		}
	}
	for _, name := range p.FuncOrder {
		if err := p.Functions[name].fprint(w); err != nil {
			return err
		}
	}
	return nil
}

func (f *Function) fprint(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "%s (%s) (%s) {\n", f.Name, typeList(f.Input), typeList(f.Output)); err != nil {
		return err
	}
	if err := fprintExpr(w, f.Body, 1); err != nil {
		return err
	}
	_, err := io.WriteString(w, "}\n")
	return err
}

func typeList(ts []Type) string {
	s := ""
	for i, t := range ts {
		if i > 0 {
			s += " "
		}
		s += t.String()
	}
	return s
}

func fprintExpr(w io.Writer, e Expr, depth int) error {
	indent := ""
	for i := 0; i < depth; i++ {
		indent += "  "
	}
	for _, s := range e {
		switch v := s.(type) {
		case LitStmt:
			if _, err := fmt.Fprintf(w, "%s%s\n", indent, v.Value); err != nil {
				return err
			}
		case IdentStmt:
			if _, err := fmt.Fprintf(w, "%s%s\n", indent, v.Name); err != nil {
				return err
			}
		case MathOp:
			if _, err := fmt.Fprintf(w, "%s%c\n", indent, v.Kind); err != nil {
				return err
			}
		case ComparisonOp:
			if _, err := fmt.Fprintf(w, "%s%s\n", indent, v.Kind); err != nil {
				return err
			}
		case IfStmt:
			if _, err := fmt.Fprintf(w, "%sif {\n", indent); err != nil {
				return err
			}
			if err := fprintExpr(w, v.Then, depth+1); err != nil {
				return err
			}
			if v.Else != nil {
				if _, err := fmt.Fprintf(w, "%s} else {\n", indent); err != nil {
					return err
				}
				if err := fprintExpr(w, v.Else, depth+1); err != nil {
					return err
				}
			}
			if _, err := fmt.Fprintf(w, "%s}\n", indent); err != nil {
				return err
			}
		default:
			return fmt.Errorf("ast: unhandled statement type %T", s)
		}
	}
	return nil
}
