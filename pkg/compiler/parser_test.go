package compiler

import "testing"

func parseSrc(t *testing.T, src string) (*Program, *Sink) {
	t.Helper()
	sink := NewSink()
	toks := Lex("test.bhai", src, sink)
	prog := ParseProgram("test.bhai", toks, sink)
	return prog, sink
}

func TestParseMinimalProgram(t *testing.T) {
	prog, sink := parseSrc(t, "shuru\nbass")
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %v", sink.Render())
	}
	if !prog.HasMain {
		t.Error("expected HasMain = true")
	}
	if len(prog.MainBody) != 0 {
		t.Errorf("expected empty main body, got %d stmts", len(prog.MainBody))
	}
}

func TestParseVarDeclAndPrint(t *testing.T) {
	prog, sink := parseSrc(t, "shuru\nbhai x = 2 + 3 * 4\nbol(x)\nbass")
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %v", sink.Render())
	}
	if len(prog.MainBody) != 2 {
		t.Fatalf("expected 2 statements, got %d", len(prog.MainBody))
	}
	decl, ok := prog.MainBody[0].(*VarDecl)
	if !ok {
		t.Fatalf("stmt[0] = %T; want *VarDecl", prog.MainBody[0])
	}
	if decl.Name != "x" || !decl.Type.Equal(PrimitiveType(PrimInt)) {
		t.Errorf("decl = %+v", decl)
	}
	add, ok := decl.Init.(*BinaryExpr)
	if !ok || add.Op != TokPlus {
		t.Fatalf("init = %#v; want top-level '+'", decl.Init)
	}
	mul, ok := add.Right.(*BinaryExpr)
	if !ok || mul.Op != TokStar {
		t.Fatalf("precedence broken: right of '+' = %#v; want '*'", add.Right)
	}
	if _, ok := prog.MainBody[1].(*PrintStmt); !ok {
		t.Fatalf("stmt[1] = %T; want *PrintStmt", prog.MainBody[1])
	}
}

func TestParseFunctionDecl(t *testing.T) {
	prog, sink := parseSrc(t, "bhai add(bhai a, bhai b) { nikal a + b }\nshuru\nbass")
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %v", sink.Render())
	}
	if len(prog.Functions) != 1 {
		t.Fatalf("expected 1 function, got %d", len(prog.Functions))
	}
	fn := prog.Functions[0]
	if fn.Name != "add" || len(fn.Params) != 2 {
		t.Fatalf("fn = %+v", fn)
	}
	if fn.Params[0].Name != "a" || fn.Params[1].Name != "b" {
		t.Errorf("params = %+v", fn.Params)
	}
}

func TestParseIfElse(t *testing.T) {
	prog, sink := parseSrc(t, "shuru\nagar (x > 0) { bol(1) } warna { bol(0) }\nbass")
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %v", sink.Render())
	}
	ifs, ok := prog.MainBody[0].(*IfStmt)
	if !ok {
		t.Fatalf("stmt = %T; want *IfStmt", prog.MainBody[0])
	}
	if ifs.Else == nil {
		t.Error("expected an else branch")
	}
}

func TestParseForLoop(t *testing.T) {
	prog, sink := parseSrc(t, "shuru\njabtak (bhai i = 0; i < 10; i++) { bol(i) }\nbass")
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %v", sink.Render())
	}
	fs, ok := prog.MainBody[0].(*ForStmt)
	if !ok {
		t.Fatalf("stmt = %T; want *ForStmt", prog.MainBody[0])
	}
	if fs.Init == nil || fs.Cond == nil || fs.Post == nil {
		t.Errorf("for-loop clauses missing: %+v", fs)
	}
}

func TestParsePostAndPreIncDecInExpr(t *testing.T) {
	prog, sink := parseSrc(t, "shuru\nbhai y = x++ + ++z\nbass")
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %v", sink.Render())
	}
	decl := prog.MainBody[0].(*VarDecl)
	add := decl.Init.(*BinaryExpr)
	post, ok := add.Left.(*IncDecExpr)
	if !ok || !post.Post {
		t.Errorf("left = %#v; want post IncDecExpr", add.Left)
	}
	pre, ok := add.Right.(*IncDecExpr)
	if !ok || pre.Post {
		t.Errorf("right = %#v; want pre IncDecExpr", add.Right)
	}
}

func TestParseBareIncDecStmtDesugarsToAssignment(t *testing.T) {
	prog, sink := parseSrc(t, "shuru\nx++\nbass")
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %v", sink.Render())
	}
	asn, ok := prog.MainBody[0].(*Assignment)
	if !ok {
		t.Fatalf("stmt = %T; want *Assignment", prog.MainBody[0])
	}
	bin, ok := asn.Value.(*BinaryExpr)
	if !ok || bin.Op != TokPlus {
		t.Errorf("value = %#v; want x + 1", asn.Value)
	}
}

func TestParseCompoundAssignment(t *testing.T) {
	prog, sink := parseSrc(t, "shuru\nx += 5\nbass")
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %v", sink.Render())
	}
	asn := prog.MainBody[0].(*Assignment)
	bin, ok := asn.Value.(*BinaryExpr)
	if !ok || bin.Op != TokPlus {
		t.Errorf("value = %#v; want target + 5", asn.Value)
	}
}

func TestParseSwitchWithDuplicateDefault(t *testing.T) {
	_, sink := parseSrc(t, "shuru\nswitch (x) {\ncase 1: bol(1)\ndefault: bol(0)\ndefault: bol(2)\n}\nbass")
	if !sink.HasErrors() {
		t.Error("expected a duplicate_default diagnostic")
	}
}

func TestParseMissingSemicolonRecovers(t *testing.T) {
	// No terminator between the two declarations, but they're on
	// separate lines so the NEWLINE token still terminates each one; force
	// a genuine miss by putting them on the same line with no separator.
	prog, sink := parseSrc(t, "shuru\nbhai x = 1 bhai y = 2\nbass")
	if !sink.HasErrors() {
		t.Error("expected a missing_semicolon diagnostic")
	}
	// Parser should still recover and keep parsing subsequent declarations.
	if len(prog.MainBody) == 0 {
		t.Error("expected parser to recover and produce at least one statement")
	}
}

func TestParseImportCollected(t *testing.T) {
	prog, sink := parseSrc(t, "laao \"util.bhai\"\nshuru\nbass")
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %v", sink.Render())
	}
	if len(prog.Imports) != 1 || prog.Imports[0].Path != "util.bhai" {
		t.Errorf("imports = %+v", prog.Imports)
	}
}

func TestParseAggregateTypedLocalDecl(t *testing.T) {
	prog, sink := parseSrc(t, "struct Point { bhai x bhai y }\nshuru\nPoint p\np.x = 1\nbass")
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %v", sink.Render())
	}
	decl, ok := prog.MainBody[0].(*VarDecl)
	if !ok {
		t.Fatalf("stmt[0] = %T; want *VarDecl", prog.MainBody[0])
	}
	if decl.Name != "p" || decl.Type.Name != "Point" {
		t.Errorf("decl = %+v", decl)
	}
}

func TestParseArrayVarDecl(t *testing.T) {
	prog, sink := parseSrc(t, "shuru\nbhai nums[4]\nbass")
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %v", sink.Render())
	}
	decl, ok := prog.MainBody[0].(*VarDecl)
	if !ok {
		t.Fatalf("stmt[0] = %T; want *VarDecl", prog.MainBody[0])
	}
	if !decl.Type.IsArray || decl.Type.ArraySize != 4 || !decl.Type.Elem.Equal(PrimitiveType(PrimInt)) {
		t.Errorf("decl.Type = %v; want int[4]", decl.Type)
	}
}

func TestParseArrayFieldInAggregate(t *testing.T) {
	prog, sink := parseSrc(t, "struct Row { bhai cells[3] }\nshuru\nbass")
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %v", sink.Render())
	}
	ag := prog.Aggregates[0]
	if len(ag.Fields) != 1 || !ag.Fields[0].Type.IsArray || ag.Fields[0].Type.ArraySize != 3 {
		t.Errorf("field = %+v", ag.Fields[0])
	}
}

func TestParseArrayIndexExpr(t *testing.T) {
	prog, sink := parseSrc(t, "shuru\nbhai nums[4]\nbhai x = nums[1]\nbass")
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %v", sink.Render())
	}
	decl := prog.MainBody[1].(*VarDecl)
	idx, ok := decl.Init.(*IndexExpr)
	if !ok {
		t.Fatalf("init = %T; want *IndexExpr", decl.Init)
	}
	base, ok := idx.Base.(*NameRef)
	if !ok || base.Name != "nums" {
		t.Errorf("base = %#v; want ident 'nums'", idx.Base)
	}
}

func TestParseAggregateDecl(t *testing.T) {
	prog, sink := parseSrc(t, "struct Point { bhai x bhai y }\nshuru\nbass")
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %v", sink.Render())
	}
	if len(prog.Aggregates) != 1 {
		t.Fatalf("expected 1 aggregate, got %d", len(prog.Aggregates))
	}
	ag := prog.Aggregates[0]
	if ag.Name != "Point" || len(ag.Fields) != 2 {
		t.Errorf("aggregate = %+v", ag)
	}
}
