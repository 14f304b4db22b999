package stackvm

import (
	"bytes"
	"strings"
	"testing"

	"patakha/pkg/compiler"
)

func runAsm(t *testing.T, src string, stdin string) string {
	t.Helper()
	prog, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	var out bytes.Buffer
	vm := New(prog, strings.NewReader(stdin), &out)
	if _, err := vm.Run(); err != nil {
		t.Fatalf("Run error: %v", err)
	}
	return out.String()
}

func TestVMArithmeticAndPrint(t *testing.T) {
	out := runAsm(t, `MAIN:
	PUSH 2
	PUSH 3
	ADD
	PRINT
	HALT
`, "")
	if strings.TrimSpace(out) != "5" {
		t.Errorf("output = %q; want \"5\"", out)
	}
}

func TestVMStoreAndLoadVariable(t *testing.T) {
	out := runAsm(t, `MAIN:
	PUSH 10
	STORE x
	LOAD x
	PUSH 1
	ADD
	PRINT
	HALT
`, "")
	if strings.TrimSpace(out) != "11" {
		t.Errorf("output = %q; want \"11\"", out)
	}
}

func TestVMConditionalJumpTakenWhenZero(t *testing.T) {
	out := runAsm(t, `MAIN:
	PUSH 0
	JZ skip
	PUSH 1
	PRINT
skip:
	PUSH 2
	PRINT
	HALT
`, "")
	lines := strings.Fields(out)
	if len(lines) != 1 || lines[0] != "2" {
		t.Errorf("output lines = %v; want [2] (JZ should have skipped the first PRINT)", lines)
	}
}

func TestVMConditionalJumpNotTakenWhenNonzero(t *testing.T) {
	out := runAsm(t, `MAIN:
	PUSH 1
	JZ skip
	PUSH 1
	PRINT
skip:
	PUSH 2
	PRINT
	HALT
`, "")
	lines := strings.Fields(out)
	if len(lines) != 2 || lines[0] != "1" || lines[1] != "2" {
		t.Errorf("output lines = %v; want [1 2]", lines)
	}
}

func TestVMFunctionCallPassesArgsAndReturnsValue(t *testing.T) {
	out := runAsm(t, `FN add
	STORE b
	STORE a
	LOAD a
	LOAD b
	ADD
	RET
END

MAIN:
	PUSH 2
	PUSH 3
	CALL add/2
	PRINT
	HALT
`, "")
	if strings.TrimSpace(out) != "5" {
		t.Errorf("output = %q; want \"5\"", out)
	}
}

func TestVMReadConsumesTypedInput(t *testing.T) {
	out := runAsm(t, `MAIN:
	READ int
	PUSH 1
	ADD
	PRINT
	HALT
`, "41\n")
	if strings.TrimSpace(out) != "42" {
		t.Errorf("output = %q; want \"42\"", out)
	}
}

func TestVMComparisonOpcodes(t *testing.T) {
	out := runAsm(t, `MAIN:
	PUSH 3
	PUSH 5
	LT
	PRINT
	HALT
`, "")
	if strings.TrimSpace(out) != "1" {
		t.Errorf("output = %q; want \"1\" (3 < 5)", out)
	}
}

func TestParseRejectsProgramWithNoMainSegment(t *testing.T) {
	_, err := Parse("FN foo\nRET\nEND\n")
	if err == nil {
		t.Fatal("expected an error for a program with no MAIN: segment")
	}
}

func TestParseKeepsQuotedStringTokenIntact(t *testing.T) {
	prog, err := Parse(`MAIN:
	PUSH "hi there"
	PRINT
	HALT
`)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if len(prog.main.instrs) != 3 {
		t.Fatalf("expected 3 instructions, got %d", len(prog.main.instrs))
	}
	if prog.main.instrs[0].args[0] != `"hi there"` {
		t.Errorf("args[0] = %q; want quoted string kept as one token", prog.main.instrs[0].args[0])
	}
}

func TestVMArrayNewIndexAndLen(t *testing.T) {
	out := runAsm(t, `MAIN:
	ARRNEW 4
	STORE nums
	LOAD nums
	PUSH 0
	PUSH 7
	ASTORE
	LOAD nums
	PUSH 0
	AIDX
	PRINT
	LOAD nums
	LEN
	PRINT
	HALT
`, "")
	lines := strings.Fields(out)
	if len(lines) != 2 || lines[0] != "7" || lines[1] != "4" {
		t.Errorf("output lines = %v; want [7 4]", lines)
	}
}

func TestVMMaxPicksLargerOperand(t *testing.T) {
	out := runAsm(t, `MAIN:
	PUSH 3
	PUSH 9
	MAX
	PRINT
	HALT
`, "")
	if strings.TrimSpace(out) != "9" {
		t.Errorf("output = %q; want \"9\"", out)
	}
}

// TestVMExecutesStackBackendOutputForSimpleExpression cross-checks the stack
// backend's emitted assembly against the VM end to end, the same observable
// behavior pkg/interp is checked against for the tree-walking oracle.
func TestVMExecutesStackBackendOutputForSimpleExpression(t *testing.T) {
	sink := compiler.NewSink()
	toks := compiler.Lex("t.bhai", "shuru\nbol(2 + 3 * 4)\nbass", sink)
	prog := compiler.ParseProgram("t.bhai", toks, sink)
	compiler.NewAnalyzer(sink).Analyze(prog)
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %v", sink.Render())
	}
	mod := compiler.BuildModule(prog)
	mainCFG := compiler.BuildCFG(mod.Main)
	compiler.Optimize(mainCFG, false)
	asm := compiler.GenerateStack(mod, map[string]*compiler.CFG{}, mainCFG).Source

	vmProg, err := Parse(asm)
	if err != nil {
		t.Fatalf("Parse error on generated assembly: %v\n%s", err, asm)
	}
	var out bytes.Buffer
	vm := New(vmProg, strings.NewReader(""), &out)
	if _, err := vm.Run(); err != nil {
		t.Fatalf("Run error: %v\n%s", err, asm)
	}
	if strings.TrimSpace(out.String()) != "14" {
		t.Errorf("output = %q; want \"14\"", out.String())
	}
}
