package compiler

import (
	"strings"
	"testing"
)

func generateCFor(t *testing.T, src string) string {
	t.Helper()
	mod := buildModule(t, src)
	cfgs := map[string]*CFG{}
	for _, fn := range mod.Functions {
		cfg := BuildCFG(fn)
		Optimize(cfg, false)
		cfgs[fn.Name] = cfg
	}
	mainCFG := BuildCFG(mod.Main)
	Optimize(mainCFG, false)
	return GenerateC(mod, cfgs, mainCFG).Source
}

func TestGenerateCEmitsRuntimePreludeAndMain(t *testing.T) {
	out := generateCFor(t, "shuru\nbol(1 + 2)\nbass")
	if !strings.Contains(out, "typedef struct pt_value pt_value;") {
		t.Error("expected the pt_value runtime prelude in the output")
	}
	if !strings.Contains(out, "int main(void) {") {
		t.Error("expected an int main(void) entry point")
	}
	if !strings.Contains(out, "pt_print(") {
		t.Error("expected bol(...) to lower to pt_print(...)")
	}
}

func TestGenerateCRenamesUserMainToAvoidCollision(t *testing.T) {
	out := generateCFor(t, "bhai main() { nikal 0 }\nshuru\nbass")
	if !strings.Contains(out, "patakha_main") {
		t.Error("expected a user function literally named 'main' to be renamed to avoid colliding with the emitted entry point")
	}
}

func TestGenerateCUsesUniformPTValueType(t *testing.T) {
	out := generateCFor(t, "bhai add(bhai a, bhai b) { nikal a + b }\nshuru\nbass")
	if !strings.Contains(out, "pt_value add(pt_value a, pt_value b)") {
		t.Errorf("expected uniform pt_value typing on function signature, got:\n%s", out)
	}
}

func TestGenerateCDeclaresEachVariableOnce(t *testing.T) {
	out := generateCFor(t, "shuru\nbhai x = 1\nx = 2\nx = 3\nbol(x)\nbass")
	count := strings.Count(out, "pt_value x;")
	if count != 1 {
		t.Errorf("expected exactly one declaration of x, found %d in:\n%s", count, out)
	}
}

func TestGenerateCArrayDeclUsesPtNewArray(t *testing.T) {
	out := generateCFor(t, "shuru\nbhai nums[4]\nbass")
	if !strings.Contains(out, "nums = pt_new_array(4);") {
		t.Errorf("expected pt_new_array(4) allocation for nums, got:\n%s", out)
	}
}

func TestGenerateCIndexLoadAndStoreUseRuntimeHelpers(t *testing.T) {
	out := generateCFor(t, "shuru\nbhai nums[4]\nnums[0] = 7\nbol(nums[0])\nbass")
	if !strings.Contains(out, "pt_index_store(&") {
		t.Errorf("expected pt_index_store(&nums, ...) for the index assignment, got:\n%s", out)
	}
	if !strings.Contains(out, "pt_index_load(") {
		t.Errorf("expected pt_index_load(...) for the index read, got:\n%s", out)
	}
}

func TestGenerateCLenAndMaxUseRuntimeHelpers(t *testing.T) {
	out := generateCFor(t, "shuru\nbhai nums[4]\nbhai n = len(nums)\nbhai m = max(n, 2)\nbass")
	if !strings.Contains(out, "pt_len(") {
		t.Errorf("expected pt_len(...) call, got:\n%s", out)
	}
	if !strings.Contains(out, "pt_max(") {
		t.Errorf("expected pt_max(...) call, got:\n%s", out)
	}
}

func TestGenerateCBranchesEmitGoto(t *testing.T) {
	out := generateCFor(t, `shuru
bhai x = 1
agar (x > 0) {
  bol(1)
}
bass`)
	if !strings.Contains(out, "goto ") {
		t.Error("expected if-statement lowering to produce at least one goto")
	}
}
