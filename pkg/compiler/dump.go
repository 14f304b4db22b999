package compiler

import (
	"fmt"
	"sort"
	"strings"
)

// dumpAST renders prog as an indented text tree for --dump-ast.
func dumpAST(prog *Program) string {
	var b strings.Builder
	b.WriteString("Program\n")
	for _, imp := range prog.Imports {
		fmt.Fprintf(&b, "  Import %q\n", imp.Path)
	}
	for _, ag := range prog.Aggregates {
		fmt.Fprintf(&b, "  Aggregate %s %s\n", ag.Keyword, ag.Name)
		for _, f := range ag.Fields {
			fmt.Fprintf(&b, "    Field %s %s\n", f.Name, f.Type)
		}
	}
	for _, fn := range prog.Functions {
		fmt.Fprintf(&b, "  Function %s(%s) %s\n", fn.Name, paramsString(fn.Params), fn.RetType)
		dumpStmts(&b, fn.Body.Stmts, 4)
	}
	b.WriteString("  Main\n")
	dumpStmts(&b, prog.MainBody, 4)
	return b.String()
}

func paramsString(params []Param) string {
	parts := make([]string, len(params))
	for i, p := range params {
		parts[i] = fmt.Sprintf("%s %s", p.Name, p.Type)
	}
	return strings.Join(parts, ", ")
}

func dumpStmts(b *strings.Builder, stmts []Stmt, indent int) {
	pad := strings.Repeat(" ", indent)
	for _, s := range stmts {
		fmt.Fprintf(b, "%s%s\n", pad, describeStmt(s))
	}
}

func describeStmt(s Stmt) string {
	switch st := s.(type) {
	case *VarDecl:
		return fmt.Sprintf("VarDecl %s %s", st.Name, st.Type)
	case *Assignment:
		return "Assignment"
	case *ExprStmt:
		return "ExprStmt"
	case *PrintStmt:
		return "PrintStmt"
	case *ReturnStmt:
		return "ReturnStmt"
	case *BlockStmt:
		return fmt.Sprintf("Block (%d stmts)", len(st.Stmts))
	case *IfStmt:
		return "IfStmt"
	case *WhileStmt:
		return "WhileStmt"
	case *ForStmt:
		return "ForStmt"
	case *DoWhileStmt:
		return "DoWhileStmt"
	case *SwitchStmt:
		return fmt.Sprintf("SwitchStmt (%d cases)", len(st.Cases))
	case *BreakStmt:
		return "BreakStmt"
	case *ContinueStmt:
		return "ContinueStmt"
	case *AggregateDecl:
		return fmt.Sprintf("AggregateDecl %s", st.Name)
	case *ErrorStmt:
		return "ErrorStmt"
	}
	return fmt.Sprintf("%T", s)
}

// dumpASTDot renders a minimal Graphviz digraph of the function/statement
// tree for --dump-ast-dot — coarse (one node per statement, not per
// expression) but enough to eyeball control structure.
func dumpASTDot(prog *Program) string {
	var b strings.Builder
	b.WriteString("digraph AST {\n")
	id := 0
	next := func() int { id++; return id }
	var walk func(parent int, stmts []Stmt)
	walk = func(parent int, stmts []Stmt) {
		for _, s := range stmts {
			n := next()
			fmt.Fprintf(&b, "  n%d [label=%q];\n", n, describeStmt(s))
			fmt.Fprintf(&b, "  n%d -> n%d;\n", parent, n)
			if blk, ok := s.(*BlockStmt); ok {
				walk(n, blk.Stmts)
			}
			if ifs, ok := s.(*IfStmt); ok {
				walk(n, []Stmt{ifs.Then})
				if ifs.Else != nil {
					walk(n, []Stmt{ifs.Else})
				}
			}
		}
	}
	root := next()
	b.WriteString("  n0 [label=\"Program\"];\n")
	fmt.Fprintf(&b, "  n0 -> n%d [label=\"main\"];\n", root)
	b.WriteString(fmt.Sprintf("  n%d [label=\"Main\"];\n", root))
	walk(root, prog.MainBody)
	for _, fn := range prog.Functions {
		fnNode := next()
		fmt.Fprintf(&b, "  n0 -> n%d [label=%q];\n", fnNode, fn.Name)
		fmt.Fprintf(&b, "  n%d [label=%q];\n", fnNode, fn.Name)
		walk(fnNode, fn.Body.Stmts)
	}
	b.WriteString("}\n")
	return b.String()
}

// dumpSymbols renders the hoisted function/aggregate tables for
// --dump-symbols, reading Analyzer's unexported maps directly since this
// file lives in the same package.
func dumpSymbols(a *Analyzer) string {
	var b strings.Builder
	names := make([]string, 0, len(a.funcs))
	for n := range a.funcs {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		sig := a.funcs[n]
		fmt.Fprintf(&b, "func %s(%s) %s\n", n, paramsString(sig.Params), sig.RetType)
	}
	aggNames := make([]string, 0, len(a.aggregates))
	for n := range a.aggregates {
		aggNames = append(aggNames, n)
	}
	sort.Strings(aggNames)
	for _, n := range aggNames {
		ag := a.aggregates[n]
		fmt.Fprintf(&b, "aggregate %s {\n", n)
		for _, f := range ag.Fields {
			fmt.Fprintf(&b, "  %s %s\n", f.Name, f.Type)
		}
		b.WriteString("}\n")
	}
	return b.String()
}

// dumpModule renders the pre-CFG, pre-optimization flat IR for
// --emit-raw-ir.
func dumpModule(mod *Module) string {
	var b strings.Builder
	for _, fn := range mod.Functions {
		fmt.Fprintf(&b, "function %s:\n", fn.Name)
		for _, ins := range fn.Instrs {
			fmt.Fprintf(&b, "  %s\n", ins)
		}
	}
	b.WriteString("function __main__:\n")
	for _, ins := range mod.Main.Instrs {
		fmt.Fprintf(&b, "  %s\n", ins)
	}
	return b.String()
}

// dumpCFGs renders the optimized, block-structured IR for --emit-ir.
func dumpCFGs(mod *Module, cfgs map[string]*CFG, mainCFG *CFG) string {
	var b strings.Builder
	for _, fn := range mod.Functions {
		writeCFGBlocks(&b, fn.Name, cfgs[fn.Name])
	}
	writeCFGBlocks(&b, "__main__", mainCFG)
	return b.String()
}

func writeCFGBlocks(b *strings.Builder, name string, cfg *CFG) {
	fmt.Fprintf(b, "function %s:\n", name)
	if cfg == nil {
		return
	}
	for _, blk := range cfg.Blocks {
		fmt.Fprintf(b, " block%d (%s) preds=%v succs=%v\n", blk.ID, blk.Label, blk.Pred, blk.Succ)
		for _, ins := range blk.Instrs {
			fmt.Fprintf(b, "    %s\n", ins)
		}
	}
}

// dumpCFGText is the same shape as dumpCFGs, kept distinct because
// --dump-cfg and --emit-ir are independently toggled flags that happen to
// want the same rendering today.
func dumpCFGText(mod *Module, cfgs map[string]*CFG, mainCFG *CFG) string {
	return dumpCFGs(mod, cfgs, mainCFG)
}

// dumpCFGDot renders every function's CFG as one Graphviz digraph for
// --dump-cfg-dot.
func dumpCFGDot(mod *Module, cfgs map[string]*CFG, mainCFG *CFG) string {
	var b strings.Builder
	b.WriteString("digraph CFG {\n")
	write := func(name string, cfg *CFG) {
		if cfg == nil {
			return
		}
		for _, blk := range cfg.Blocks {
			fmt.Fprintf(&b, "  %q [label=%q];\n", nodeName(name, blk.ID), fmt.Sprintf("%s:block%d", name, blk.ID))
			for _, s := range blk.Succ {
				fmt.Fprintf(&b, "  %q -> %q;\n", nodeName(name, blk.ID), nodeName(name, s))
			}
		}
	}
	for _, fn := range mod.Functions {
		write(fn.Name, cfgs[fn.Name])
	}
	write("__main__", mainCFG)
	b.WriteString("}\n")
	return b.String()
}

func nodeName(fn string, id int) string {
	return fmt.Sprintf("%s_b%d", fn, id)
}
