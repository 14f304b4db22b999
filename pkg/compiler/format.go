package compiler

import (
	"fmt"
	"strconv"
	"strings"
)

// fmtIndent is the canonical indent unit `patakha fmt` emits, matching
// original formatter.py's INDENT constant.
const fmtIndent = "    "

// FormatProgram renders prog back to canonical Patakha source text: one
// statement per line, 4-space indentation, no blank lines inside a block.
// Grounded on original formatter.py's format_program/_emit_stmt/_format_expr,
// adapted to this package's actual AST node names.
func FormatProgram(prog *Program) string {
	var lines []string

	for _, imp := range prog.Imports {
		lines = append(lines, fmt.Sprintf("laao %s", quoteString(imp.Path)))
	}
	if len(prog.Imports) > 0 {
		lines = append(lines, "")
	}

	for _, ag := range prog.Aggregates {
		lines = emitAggregate(lines, ag)
		lines = append(lines, "")
	}

	for _, fn := range prog.Functions {
		lines = emitFunction(lines, fn)
		lines = append(lines, "")
	}

	lines = append(lines, "shuru")
	for _, s := range prog.MainBody {
		lines = emitStmt(lines, s, 0)
	}
	lines = append(lines, "bass")
	return strings.Join(lines, "\n") + "\n"
}

func emitAggregate(lines []string, ag *AggregateDecl) []string {
	kw := "struct"
	if ag.Keyword == TokKwKaksha {
		kw = "kaksha"
	}
	lines = append(lines, fmt.Sprintf("%s %s {", kw, ag.Name))
	for _, f := range ag.Fields {
		lines = append(lines, fmt.Sprintf("%s%s %s%s;", fmtIndent, fieldTypeText(f.Type), f.Name, arraySuffix(f.Type)))
	}
	lines = append(lines, "};")
	return lines
}

// fieldTypeText renders a declaration's type with the array suffix on the
// name side, matching the actual `bhai nums[4];` surface syntax rather than
// Type.String()'s `bhai[4]` debug form.
func fieldTypeText(t *Type) string {
	if t != nil && t.IsArray {
		return t.Elem.String()
	}
	return t.String()
}

func arraySuffix(t *Type) string {
	if t != nil && t.IsArray {
		return fmt.Sprintf("[%d]", t.ArraySize)
	}
	return ""
}

func emitFunction(lines []string, fn *FunctionDecl) []string {
	parts := make([]string, len(fn.Params))
	for i, p := range fn.Params {
		parts[i] = fmt.Sprintf("%s%s %s", fieldTypeText(p.Type), arraySuffix(p.Type), p.Name)
	}
	lines = append(lines, fmt.Sprintf("%s %s(%s) {", fn.RetType, fn.Name, strings.Join(parts, ", ")))
	for _, s := range fn.Body.Stmts {
		lines = emitStmt(lines, s, 1)
	}
	lines = append(lines, "}")
	return lines
}

func emitStmt(lines []string, s Stmt, depth int) []string {
	pad := strings.Repeat(fmtIndent, depth)
	switch st := s.(type) {
	case *VarDecl:
		decl := fmt.Sprintf("%s %s%s", fieldTypeText(st.Type), st.Name, arraySuffix(st.Type))
		if st.Init == nil {
			return append(lines, fmt.Sprintf("%s%s;", pad, decl))
		}
		return append(lines, fmt.Sprintf("%s%s = %s;", pad, decl, formatExpr(st.Init)))
	case *Assignment:
		return append(lines, fmt.Sprintf("%s%s = %s;", pad, formatExpr(st.Target), formatExpr(st.Value)))
	case *IfStmt:
		lines = append(lines, fmt.Sprintf("%sagar (%s) {", pad, formatExpr(st.Cond)))
		lines = emitBlockBody(lines, st.Then, depth+1)
		lines = append(lines, pad+"}")
		if st.Else != nil {
			lines = append(lines, pad+"warna {")
			lines = emitBlockBody(lines, st.Else, depth+1)
			lines = append(lines, pad+"}")
		}
		return lines
	case *WhileStmt:
		lines = append(lines, fmt.Sprintf("%stabtak (%s) {", pad, formatExpr(st.Cond)))
		lines = emitBlockBody(lines, st.Body, depth+1)
		return append(lines, pad+"}")
	case *ForStmt:
		init := formatForPart(st.Init)
		cond := ""
		if st.Cond != nil {
			cond = formatExpr(st.Cond)
		}
		post := formatForPart(st.Post)
		lines = append(lines, fmt.Sprintf("%sjabtak (%s; %s; %s) {", pad, init, cond, post))
		lines = emitBlockBody(lines, st.Body, depth+1)
		return append(lines, pad+"}")
	case *DoWhileStmt:
		lines = append(lines, pad+"kar {")
		lines = emitBlockBody(lines, st.Body, depth+1)
		return append(lines, fmt.Sprintf("%s} tabtak (%s);", pad, formatExpr(st.Cond)))
	case *SwitchStmt:
		lines = append(lines, fmt.Sprintf("%sswitch (%s) {", pad, formatExpr(st.Discrim)))
		for _, c := range st.Cases {
			lines = append(lines, fmt.Sprintf("%s%scase %s:", pad, fmtIndent, formatExpr(c.Value)))
			for _, inner := range c.Body {
				lines = emitStmt(lines, inner, depth+2)
			}
		}
		if st.HasDefault {
			lines = append(lines, pad+fmtIndent+"default:")
			for _, inner := range st.Default {
				lines = emitStmt(lines, inner, depth+2)
			}
		}
		return append(lines, pad+"}")
	case *BreakStmt:
		return append(lines, pad+"tod;")
	case *ContinueStmt:
		return append(lines, pad+"jari;")
	case *PrintStmt:
		return append(lines, fmt.Sprintf("%sbol(%s);", pad, formatExpr(st.Value)))
	case *ReturnStmt:
		if st.Value == nil {
			return append(lines, pad+"nikal;")
		}
		return append(lines, fmt.Sprintf("%snikal %s;", pad, formatExpr(st.Value)))
	case *ExprStmt:
		return append(lines, fmt.Sprintf("%s%s;", pad, formatExpr(st.X)))
	case *BlockStmt:
		lines = append(lines, pad+"{")
		for _, inner := range st.Stmts {
			lines = emitStmt(lines, inner, depth+1)
		}
		return append(lines, pad+"}")
	}
	return lines
}

// emitBlockBody unwraps a *BlockStmt body into its statements at depth,
// since if/while/for/do bodies are always braces the caller already opened.
func emitBlockBody(lines []string, body Stmt, depth int) []string {
	if blk, ok := body.(*BlockStmt); ok {
		for _, inner := range blk.Stmts {
			lines = emitStmt(lines, inner, depth)
		}
		return lines
	}
	return emitStmt(lines, body, depth)
}

func formatForPart(s Stmt) string {
	switch st := s.(type) {
	case nil:
		return ""
	case *VarDecl:
		if st.Init == nil {
			return fmt.Sprintf("%s %s%s", fieldTypeText(st.Type), st.Name, arraySuffix(st.Type))
		}
		return fmt.Sprintf("%s %s%s = %s", fieldTypeText(st.Type), st.Name, arraySuffix(st.Type), formatExpr(st.Init))
	case *Assignment:
		return fmt.Sprintf("%s = %s", formatExpr(st.Target), formatExpr(st.Value))
	case *ExprStmt:
		return formatExpr(st.X)
	}
	return ""
}

func formatExpr(e Expr) string {
	switch x := e.(type) {
	case *NameRef:
		return x.Name
	case *Literal:
		return formatLiteral(x)
	case *UnaryExpr:
		return fmt.Sprintf("%s%s", x.Op, formatExpr(x.Operand))
	case *BinaryExpr:
		return fmt.Sprintf("(%s %s %s)", formatExpr(x.Left), x.Op, formatExpr(x.Right))
	case *LogicalExpr:
		return fmt.Sprintf("(%s %s %s)", formatExpr(x.Left), x.Op, formatExpr(x.Right))
	case *CallExpr:
		args := make([]string, len(x.Args))
		for i, a := range x.Args {
			args[i] = formatExpr(a)
		}
		return fmt.Sprintf("%s(%s)", x.Callee, strings.Join(args, ", "))
	case *IndexExpr:
		return fmt.Sprintf("%s[%s]", formatExpr(x.Base), formatExpr(x.Index))
	case *FieldExpr:
		return fmt.Sprintf("%s.%s", formatExpr(x.Base), x.Field)
	case *CastExpr:
		return fmt.Sprintf("%s(%s)", x.Target, formatExpr(x.Inner))
	case *InputExpr:
		return "bata()"
	case *IncDecExpr:
		if x.Post {
			return fmt.Sprintf("%s%s", formatExpr(x.Target), x.Op)
		}
		return fmt.Sprintf("%s%s", x.Op, formatExpr(x.Target))
	case *ErrorExpr:
		return "<error>"
	}
	return "0"
}

func formatLiteral(l *Literal) string {
	switch l.Kind {
	case TokBool:
		if l.BoolVal {
			return "true"
		}
		return "false"
	case TokFloat:
		text := strconv.FormatFloat(l.FloatVal, 'g', -1, 64)
		if !strings.ContainsAny(text, ".eE") {
			text += ".0"
		}
		return text
	case TokString:
		return quoteString(l.StrVal)
	default:
		return strconv.FormatInt(l.IntVal, 10)
	}
}

func quoteString(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}
