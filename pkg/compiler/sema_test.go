package compiler

import "testing"

func analyzeSrc(t *testing.T, src string) *Sink {
	t.Helper()
	sink := NewSink()
	toks := Lex("test.bhai", src, sink)
	prog := ParseProgram("test.bhai", toks, sink)
	NewAnalyzer(sink).Analyze(prog)
	return sink
}

func TestSemaUndeclaredVariable(t *testing.T) {
	sink := analyzeSrc(t, "shuru\nbol(x)\nbass")
	if !sink.HasErrors() {
		t.Fatal("expected undeclared_variable error")
	}
	found := false
	for _, d := range sink.Diagnostics() {
		if d.Code == "undeclared_variable" {
			found = true
		}
	}
	if !found {
		t.Errorf("diagnostics = %v; want undeclared_variable", sink.Diagnostics())
	}
}

func TestSemaUndeclaredWithSuggestion(t *testing.T) {
	sink := analyzeSrc(t, "shuru\nbhai count = 1\nbol(count1)\nbass")
	var msg string
	for _, d := range sink.Diagnostics() {
		if d.Code == "undeclared_variable" {
			msg = d.Message
		}
	}
	if msg == "" {
		t.Fatal("expected undeclared_variable diagnostic")
	}
	if !contains(msg, "count") {
		t.Errorf("message = %q; expected a did-you-mean suggestion for 'count'", msg)
	}
}

func TestSemaRedeclaredVariable(t *testing.T) {
	sink := analyzeSrc(t, "shuru\nbhai x = 1\nbhai x = 2\nbass")
	if !sink.HasErrors() {
		t.Fatal("expected redeclared_variable error")
	}
}

func TestSemaTypeMismatchOnInit(t *testing.T) {
	sink := analyzeSrc(t, `shuru
bool b = 1
bass`)
	if !sink.HasErrors() {
		t.Fatal("expected type_mismatch error")
	}
}

func TestSemaFloatAcceptsIntWidening(t *testing.T) {
	sink := analyzeSrc(t, "shuru\ndecimal d = 5\nbass")
	if sink.HasErrors() {
		t.Fatalf("int-to-float widening should be allowed: %v", sink.Render())
	}
}

func TestSemaBreakOutsideLoop(t *testing.T) {
	sink := analyzeSrc(t, "shuru\ntod\nbass")
	if !sink.HasErrors() {
		t.Fatal("expected break_outside_loop error")
	}
}

func TestSemaBreakInsideSwitchAllowed(t *testing.T) {
	sink := analyzeSrc(t, "shuru\nbhai x = 1\nswitch (x) {\ncase 1:\ntod\n}\nbass")
	for _, d := range sink.Diagnostics() {
		if d.Code == "break_outside_loop" {
			t.Errorf("unexpected break_outside_loop: %v", d.Message)
		}
	}
}

func TestSemaContinueOutsideLoop(t *testing.T) {
	sink := analyzeSrc(t, "shuru\njari\nbass")
	if !sink.HasErrors() {
		t.Fatal("expected continue_outside_loop error")
	}
}

func TestSemaConditionMustBeBool(t *testing.T) {
	sink := analyzeSrc(t, "shuru\nbhai x = 1\nagar (x) { bol(x) }\nbass")
	if !sink.HasErrors() {
		t.Fatal("expected invalid_condition error for non-bool if-condition")
	}
}

func TestSemaFunctionArityMismatch(t *testing.T) {
	sink := analyzeSrc(t, "bhai add(bhai a, bhai b) { nikal a + b }\nshuru\nbol(add(1))\nbass")
	if !sink.HasErrors() {
		t.Fatal("expected arity_mismatch error")
	}
}

func TestSemaUnknownFunctionCall(t *testing.T) {
	sink := analyzeSrc(t, "shuru\nbol(ghost(1))\nbass")
	if !sink.HasErrors() {
		t.Fatal("expected undeclared_function error")
	}
}

func TestSemaUnusedVariableWarning(t *testing.T) {
	sink := analyzeSrc(t, "shuru\nbhai unused = 1\nbass")
	found := false
	for _, d := range sink.Diagnostics() {
		if d.Code == "unused_variable" {
			found = true
		}
	}
	if !found {
		t.Error("expected an unused_variable warning")
	}
}

func TestSemaDuplicateCaseLabel(t *testing.T) {
	sink := analyzeSrc(t, "shuru\nbhai x = 1\nswitch (x) {\ncase 1: bol(1)\ncase 1: bol(2)\n}\nbass")
	if !sink.HasErrors() {
		t.Fatal("expected duplicate_case error")
	}
}

func TestSemaArrayDeclWithInitializerRejected(t *testing.T) {
	sink := analyzeSrc(t, "shuru\nbhai nums[4] = 1\nbass")
	found := false
	for _, d := range sink.Diagnostics() {
		if d.Code == "array_init_not_supported" {
			found = true
		}
	}
	if !found {
		t.Errorf("diagnostics = %v; want array_init_not_supported", sink.Diagnostics())
	}
}

func TestSemaArraySizeMustBePositive(t *testing.T) {
	sink := analyzeSrc(t, "shuru\nbhai nums[0]\nbass")
	if !sink.HasErrors() {
		t.Fatal("expected type_mismatch error for non-positive array size")
	}
}

func TestSemaArrayDeclNotFlaggedUnused(t *testing.T) {
	sink := analyzeSrc(t, "shuru\nbhai nums[4]\nbol(nums[0])\nbass")
	for _, d := range sink.Diagnostics() {
		if d.Code == "unused_variable" {
			t.Errorf("unexpected unused_variable: %v", d.Message)
		}
	}
}

func TestSemaArrayIndexAndLenMax(t *testing.T) {
	sink := analyzeSrc(t, "shuru\nbhai nums[4]\nnums[0] = 7\nbhai n = len(nums)\nbhai m = max(n, 2)\nbass")
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %v", sink.Render())
	}
}

func TestSemaIndexingNonArrayRejected(t *testing.T) {
	sink := analyzeSrc(t, "shuru\nbhai x = 1\nbhai y = x[0]\nbass")
	if !sink.HasErrors() {
		t.Fatal("expected type_mismatch error indexing a non-array/text value")
	}
}

func TestSemaLenArityMismatch(t *testing.T) {
	sink := analyzeSrc(t, "shuru\nbhai nums[4]\nbhai n = len(nums, nums)\nbass")
	found := false
	for _, d := range sink.Diagnostics() {
		if d.Code == "arity_mismatch" {
			found = true
		}
	}
	if !found {
		t.Errorf("diagnostics = %v; want arity_mismatch", sink.Diagnostics())
	}
}

func TestSemaMaxRejectsNonNumeric(t *testing.T) {
	sink := analyzeSrc(t, "shuru\ntext s = \"hi\"\nbhai m = max(s, 2)\nbass")
	if !sink.HasErrors() {
		t.Fatal("expected type_mismatch error for max() with a text argument")
	}
}

func TestSemaValidProgramHasNoErrors(t *testing.T) {
	sink := analyzeSrc(t, `bhai add(bhai a, bhai b) {
  nikal a + b
}
shuru
bhai x = add(2, 3)
bol(x)
bass`)
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %v", sink.Render())
	}
}

func contains(s, sub string) bool {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return true
		}
	}
	return false
}
