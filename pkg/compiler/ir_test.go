package compiler

import "testing"

func buildModule(t *testing.T, src string) *Module {
	t.Helper()
	sink := NewSink()
	toks := Lex("test.bhai", src, sink)
	prog := ParseProgram("test.bhai", toks, sink)
	NewAnalyzer(sink).Analyze(prog)
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %v", sink.Render())
	}
	return BuildModule(prog)
}

func countOp(instrs []Instruction, op Opcode) int {
	n := 0
	for _, ins := range instrs {
		if ins.Op == op {
			n++
		}
	}
	return n
}

func TestIRSimpleArithmetic(t *testing.T) {
	mod := buildModule(t, "shuru\nbhai x = 2 + 3 * 4\nbol(x)\nbass")
	instrs := mod.Main.Instrs
	if countOp(instrs, OpBin) != 2 {
		t.Errorf("expected 2 OpBin instructions, got %d: %v", countOp(instrs, OpBin), instrs)
	}
	if countOp(instrs, OpStore) != 1 {
		t.Errorf("expected 1 OpStore, got %d", countOp(instrs, OpStore))
	}
	if countOp(instrs, OpPrint) != 1 {
		t.Errorf("expected 1 OpPrint, got %d", countOp(instrs, OpPrint))
	}
}

func TestIRLogicalAndShortCircuitsViaBranches(t *testing.T) {
	mod := buildModule(t, "shuru\nbool a = true\nbool b = false\nbool c = a && b\nbass")
	instrs := mod.Main.Instrs
	if countOp(instrs, OpBranchZ) == 0 {
		t.Error("expected && to lower to at least one conditional branch")
	}
	// && must never become an OpBin with Op2 == TokAndAnd — arithmetic ops
	// only see comparison/arithmetic operators.
	for _, ins := range instrs {
		if ins.Op == OpBin && ins.Op2 == TokAndAnd {
			t.Error("&& must not lower to an arithmetic OpBin")
		}
	}
}

func TestIRContinueInsideSwitchInsideLoopTargetsLoop(t *testing.T) {
	mod := buildModule(t, `shuru
bhai i = 0
tabtak (i < 10) {
  switch (i) {
  case 1:
    jari
  }
  i = i + 1
}
bass`)
	instrs := mod.Main.Instrs
	// The continue inside the switch must jump to the while loop's header
	// label (while_start_N), not to any switch-local label. Together with the
	// loop's own back-edge jump that makes two jumps to the header.
	jumps := 0
	for _, ins := range instrs {
		if ins.Op == OpJump && len(ins.Label) >= len("while_start") && ins.Label[:len("while_start")] == "while_start" {
			jumps++
		}
	}
	if jumps != 2 {
		t.Errorf("expected 2 jumps targeting the while loop's header label (continue and back edge), got %d, instrs: %v", jumps, instrs)
	}
}

func TestIRPostIncrementYieldsPreUpdateValue(t *testing.T) {
	mod := buildModule(t, "shuru\nbhai x = 5\nbhai y = x++\nbass")
	instrs := mod.Main.Instrs
	// y's store must copy from the temp holding x's value *before* the
	// increment's OpBin executed (the builder returns `old`, not `newT`).
	var incIdx = -1
	for i, ins := range instrs {
		if ins.Op == OpBin && ins.Op2 == TokPlus {
			incIdx = i
			break
		}
	}
	if incIdx == -1 {
		t.Fatal("expected an OpBin(+) for the increment")
	}
	// y's OpStore should reference the temp loaded before the increment's
	// OpBin, i.e. a temp number less than the increment's result temp.
	var yStore *Instruction
	for i := incIdx + 1; i < len(instrs); i++ {
		if instrs[i].Op == OpStore && instrs[i].Name == "y" {
			yStore = &instrs[i]
			break
		}
	}
	if yStore == nil {
		t.Fatal("expected an OpStore into y")
	}
	if yStore.Arg1.Temp >= instrs[incIdx].Result {
		t.Errorf("post-increment should yield the pre-update temp; y stores t%d, increment result is t%d", yStore.Arg1.Temp, instrs[incIdx].Result)
	}
}

func TestIRArrayDeclEmitsArrayNew(t *testing.T) {
	mod := buildModule(t, "shuru\nbhai nums[4]\nbass")
	instrs := mod.Main.Instrs
	if countOp(instrs, OpArrayNew) != 1 {
		t.Fatalf("expected 1 OpArrayNew, got %d: %v", countOp(instrs, OpArrayNew), instrs)
	}
	for _, ins := range instrs {
		if ins.Op == OpArrayNew {
			if ins.Name != "nums" || ins.Type == nil || ins.Type.ArraySize != 4 {
				t.Errorf("OpArrayNew = %+v; want name nums, size 4", ins)
			}
		}
	}
}

func TestIRLenAndMaxLowerToDedicatedOpcodes(t *testing.T) {
	mod := buildModule(t, "shuru\nbhai nums[4]\nbhai n = len(nums)\nbhai m = max(n, 2)\nbass")
	instrs := mod.Main.Instrs
	if countOp(instrs, OpLen) != 1 {
		t.Errorf("expected 1 OpLen, got %d: %v", countOp(instrs, OpLen), instrs)
	}
	if countOp(instrs, OpMax) != 1 {
		t.Errorf("expected 1 OpMax, got %d: %v", countOp(instrs, OpMax), instrs)
	}
	// len/max never go through the generic call path.
	for _, ins := range instrs {
		if ins.Op == OpCall && (ins.Name == "len" || ins.Name == "max") {
			t.Errorf("len/max must not lower to OpCall, got %+v", ins)
		}
	}
}

func TestIRArrayIndexLoadAndStore(t *testing.T) {
	mod := buildModule(t, "shuru\nbhai nums[4]\nnums[0] = 7\nbhai x = nums[0]\nbass")
	instrs := mod.Main.Instrs
	if countOp(instrs, OpIndexStore) != 1 {
		t.Errorf("expected 1 OpIndexStore, got %d", countOp(instrs, OpIndexStore))
	}
	if countOp(instrs, OpIndexLoad) != 1 {
		t.Errorf("expected 1 OpIndexLoad, got %d", countOp(instrs, OpIndexLoad))
	}
}

func TestIRForLoopHasLatchBeforeJumpBack(t *testing.T) {
	mod := buildModule(t, "shuru\njabtak (bhai i = 0; i < 3; i++) { bol(i) }\nbass")
	instrs := mod.Main.Instrs
	latchSeen := false
	for _, ins := range instrs {
		if ins.Op == OpLabel && len(ins.Label) >= len("for_latch") && ins.Label[:len("for_latch")] == "for_latch" {
			latchSeen = true
		}
	}
	if !latchSeen {
		t.Error("expected a for_latch label in the lowered IR")
	}
}
